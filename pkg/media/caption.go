package media

import (
	"context"
	"encoding/base64"
	"fmt"
	"mime"
	"strings"

	"github.com/pkg/errors"
	openai "github.com/sashabaranov/go-openai"
)

const captionPrompt = "Please describe this image in detail."

// Caption is the tagged result of an image summarization.
type Caption struct {
	Summary string
	Model   string
}

// Captioner summarizes images through a vision-capable chat model. The
// model selector is validated against the configured set; every configured
// model is reached through the same OpenAI-compatible endpoint.
type Captioner struct {
	client *openai.Client
	models map[string]struct{}
}

func NewCaptioner(client *openai.Client, models []string) (*Captioner, error) {
	if client == nil {
		return nil, errors.New("openai client is nil")
	}
	if len(models) == 0 {
		models = []string{"gpt-4o"}
	}
	allowed := make(map[string]struct{}, len(models))
	for _, m := range models {
		allowed[m] = struct{}{}
	}
	return &Captioner{client: client, models: allowed}, nil
}

func (c *Captioner) Describe(ctx context.Context, imageBytes []byte, ext string, model string) (Caption, error) {
	if _, ok := c.models[model]; !ok {
		return Caption{}, errors.Errorf("unsupported model %q", model)
	}
	if len(imageBytes) == 0 {
		return Caption{}, errors.New("empty image")
	}

	dataURL := fmt.Sprintf("data:%s;base64,%s", mimeTypeForExt(ext), base64.StdEncoding.EncodeToString(imageBytes))
	resp, err := c.client.CreateChatCompletion(ctx, openai.ChatCompletionRequest{
		Model:     model,
		MaxTokens: 512,
		Messages: []openai.ChatCompletionMessage{
			{
				Role: openai.ChatMessageRoleUser,
				MultiContent: []openai.ChatMessagePart{
					{Type: openai.ChatMessagePartTypeText, Text: captionPrompt},
					{
						Type:     openai.ChatMessagePartTypeImageURL,
						ImageURL: &openai.ChatMessageImageURL{URL: dataURL},
					},
				},
			},
		},
	})
	if err != nil {
		return Caption{}, errors.Wrapf(err, "describe image with %s", model)
	}
	if len(resp.Choices) == 0 || strings.TrimSpace(resp.Choices[0].Message.Content) == "" {
		return Caption{}, errors.New("vision backend returned no description")
	}
	return Caption{Summary: resp.Choices[0].Message.Content, Model: model}, nil
}

func mimeTypeForExt(ext string) string {
	if !strings.HasPrefix(ext, ".") {
		ext = "." + ext
	}
	if mt := mime.TypeByExtension(ext); mt != "" {
		return mt
	}
	return "application/octet-stream"
}
