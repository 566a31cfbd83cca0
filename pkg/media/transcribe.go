package media

import (
	"context"
	"strings"

	"github.com/pkg/errors"
	openai "github.com/sashabaranov/go-openai"
)

// Transcript is the tagged result of a transcription. Failures are errors,
// never error strings disguised as transcript text.
type Transcript struct {
	Text  string
	Model string
}

// Transcriber turns recorded audio into text via the Whisper endpoint.
type Transcriber struct {
	client *openai.Client
	model  string
}

func NewTranscriber(client *openai.Client, model string) (*Transcriber, error) {
	if client == nil {
		return nil, errors.New("openai client is nil")
	}
	if model == "" {
		model = openai.Whisper1
	}
	return &Transcriber{client: client, model: model}, nil
}

func (t *Transcriber) Transcribe(ctx context.Context, audioPath string) (Transcript, error) {
	if strings.TrimSpace(audioPath) == "" {
		return Transcript{}, errors.New("no voice input provided")
	}
	resp, err := t.client.CreateTranscription(ctx, openai.AudioRequest{
		Model:    t.model,
		FilePath: audioPath,
	})
	if err != nil {
		return Transcript{}, errors.Wrap(err, "transcribe audio")
	}
	return Transcript{Text: resp.Text, Model: t.model}, nil
}
