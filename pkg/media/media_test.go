package media

import (
	"context"
	"os"
	"testing"

	openai "github.com/sashabaranov/go-openai"
	"github.com/stretchr/testify/require"
)

func TestTranscriber_EmptyPath(t *testing.T) {
	tr, err := NewTranscriber(openai.NewClient("test-key"), "")
	require.NoError(t, err)

	_, err = tr.Transcribe(context.Background(), "")
	require.Error(t, err)
}

func TestCaptioner_UnsupportedModel(t *testing.T) {
	c, err := NewCaptioner(openai.NewClient("test-key"), []string{"gpt-4o"})
	require.NoError(t, err)

	_, err = c.Describe(context.Background(), []byte{1, 2, 3}, ".png", "dall-e")
	require.Error(t, err)
	require.Contains(t, err.Error(), "unsupported model")
}

func TestCaptioner_EmptyImage(t *testing.T) {
	c, err := NewCaptioner(openai.NewClient("test-key"), []string{"gpt-4o"})
	require.NoError(t, err)

	_, err = c.Describe(context.Background(), nil, ".png", "gpt-4o")
	require.Error(t, err)
}

func TestImageStore_Put(t *testing.T) {
	dir := t.TempDir()
	store, err := NewImageStore(dir+"/images", dir+"/summaries")
	require.NoError(t, err)

	stored, err := store.Put([]byte("fake-png"), "png", "a picture of a cat")
	require.NoError(t, err)
	require.NotEmpty(t, stored.ID)

	imageBytes, err := os.ReadFile(stored.ImagePath)
	require.NoError(t, err)
	require.Equal(t, []byte("fake-png"), imageBytes)

	summary, err := os.ReadFile(stored.SummaryPath)
	require.NoError(t, err)
	require.Equal(t, "a picture of a cat", string(summary))
}

func TestImageStore_EmptyImage(t *testing.T) {
	dir := t.TempDir()
	store, err := NewImageStore(dir+"/images", dir+"/summaries")
	require.NoError(t, err)

	_, err = store.Put(nil, ".png", "summary")
	require.Error(t, err)
}

func TestMimeTypeForExt(t *testing.T) {
	require.Equal(t, "image/png", mimeTypeForExt(".png"))
	require.Equal(t, "image/png", mimeTypeForExt("png"))
	require.Equal(t, "application/octet-stream", mimeTypeForExt(".unknownext"))
}
