package deck

import (
	"context"
	"encoding/json"
	"fmt"
	"os"
	"path/filepath"

	"github.com/vidpoint/vidpoint/internal/source"
	"github.com/vidpoint/vidpoint/pkg/file"
)

// Renderer turns slide descriptors into a downloadable artifact and returns a
// reference to it. Office-document and cloud slide backends plug in here; the
// default writes the deck as a JSON document.
type Renderer interface {
	Render(ctx context.Context, id source.VideoID, slides []SlideDescriptor) (string, error)
}

type JSONRenderer struct {
	outputDir string
}

func NewJSONRenderer(outputDir string) *JSONRenderer {
	return &JSONRenderer{outputDir: outputDir}
}

func (r *JSONRenderer) Render(_ context.Context, id source.VideoID, slides []SlideDescriptor) (string, error) {
	if err := file.EnsureDir(r.outputDir); err != nil {
		return "", fmt.Errorf("create output dir: %w", err)
	}

	payload, err := json.MarshalIndent(struct {
		VideoID source.VideoID    `json:"video_id"`
		Slides  []SlideDescriptor `json:"slides"`
	}{VideoID: id, Slides: slides}, "", "  ")
	if err != nil {
		return "", fmt.Errorf("marshal deck: %w", err)
	}

	path := filepath.Join(r.outputDir, fmt.Sprintf("%s.deck.json", id))
	if err := os.WriteFile(path, payload, 0o644); err != nil {
		return "", fmt.Errorf("write deck: %w", err)
	}
	return path, nil
}
