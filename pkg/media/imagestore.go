package media

import (
	"os"
	"path/filepath"
	"strings"

	"github.com/google/uuid"
	"github.com/pkg/errors"
)

// Stored locates a persisted image and its summary on disk.
type Stored struct {
	ID          string
	ImagePath   string
	SummaryPath string
}

// ImageStore keeps uploaded images and their generated summaries as
// uuid-addressed files under two directories.
type ImageStore struct {
	imageDir   string
	summaryDir string
}

func NewImageStore(imageDir, summaryDir string) (*ImageStore, error) {
	if imageDir == "" || summaryDir == "" {
		return nil, errors.New("image store directories not configured")
	}
	for _, dir := range []string{imageDir, summaryDir} {
		if err := os.MkdirAll(dir, 0o755); err != nil {
			return nil, errors.Wrapf(err, "create %s", dir)
		}
	}
	return &ImageStore{imageDir: imageDir, summaryDir: summaryDir}, nil
}

func (s *ImageStore) Put(imageBytes []byte, ext string, summary string) (Stored, error) {
	if len(imageBytes) == 0 {
		return Stored{}, errors.New("empty image")
	}
	if ext != "" && !strings.HasPrefix(ext, ".") {
		ext = "." + ext
	}
	id := uuid.New().String()
	imagePath := filepath.Join(s.imageDir, id+ext)
	summaryPath := filepath.Join(s.summaryDir, id+".txt")

	if err := os.WriteFile(imagePath, imageBytes, 0o644); err != nil {
		return Stored{}, errors.Wrap(err, "write image")
	}
	if err := os.WriteFile(summaryPath, []byte(summary), 0o644); err != nil {
		return Stored{}, errors.Wrap(err, "write summary")
	}
	return Stored{ID: id, ImagePath: imagePath, SummaryPath: summaryPath}, nil
}
