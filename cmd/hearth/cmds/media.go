package cmds

import (
	"fmt"
	"os"
	"path/filepath"

	"github.com/spf13/cobra"

	"github.com/hearth-labs/hearth/pkg/assistant"
)

func newTranscribeCmd() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "transcribe <audio-file>",
		Short: "Transcribe an audio file",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			app, err := wireApp()
			if err != nil {
				return err
			}
			defer app.Close()

			result, err := app.service.ProcessMultimodal(cmd.Context(), assistant.MultimodalInput{
				AudioPath: args[0],
			})
			if err != nil {
				return err
			}
			fmt.Println(result)
			return nil
		},
	}
	return cmd
}

func newDescribeImageCmd() *cobra.Command {
	var model string
	cmd := &cobra.Command{
		Use:   "describe-image <image-file>",
		Short: "Summarize an image and store it with its summary",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			app, err := wireApp()
			if err != nil {
				return err
			}
			defer app.Close()

			imageBytes, err := os.ReadFile(args[0])
			if err != nil {
				return err
			}
			result, err := app.service.ProcessMultimodal(cmd.Context(), assistant.MultimodalInput{
				ImageBytes: imageBytes,
				ImageExt:   filepath.Ext(args[0]),
				Model:      model,
			})
			if err != nil {
				return err
			}
			fmt.Println(result)
			return nil
		},
	}
	cmd.Flags().StringVar(&model, "model", "gpt-4o", "vision model to use")
	return cmd
}
