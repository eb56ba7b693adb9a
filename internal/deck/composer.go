package deck

import (
	"errors"
	"fmt"

	"golang.org/x/text/cases"
	"golang.org/x/text/language"

	"github.com/vidpoint/vidpoint/internal/analyze"
)

// ErrCompositionFailed indicates a programmer or data error (no points, bad
// batching config). It is never retried.
var ErrCompositionFailed = errors.New("deck composition failed")

type Layout string

const (
	LayoutTitleOnly        Layout = "TITLE_ONLY"
	LayoutTitleAndSubtitle Layout = "TITLE_AND_SUBTITLE"
	LayoutTitleAndBody     Layout = "TITLE_AND_BODY"
)

// SlideDescriptor is one slide of the output deck. Bullets is empty for
// title layouts.
type SlideDescriptor struct {
	Title   string   `json:"title"`
	Bullets []string `json:"bullets,omitempty"`
	Layout  Layout   `json:"layout"`
}

var titleCaser = cases.Title(language.English, cases.NoLower)

// Compose batches key points into slides: one leading title slide, then
// TitleAndBody slides of at most maxPointsPerSlide bullets each. No point is
// ever dropped; the bullet total always equals len(points).
func Compose(points []analyze.KeyPoint, summary analyze.Summary, maxPointsPerSlide int) ([]SlideDescriptor, error) {
	if len(points) == 0 {
		return nil, fmt.Errorf("%w: no key points", ErrCompositionFailed)
	}
	if maxPointsPerSlide < 1 {
		return nil, fmt.Errorf("%w: points per slide must be at least 1", ErrCompositionFailed)
	}

	title := summary.Title
	if title == "" {
		title = "Key Takeaways"
	}

	slides := make([]SlideDescriptor, 0, 1+(len(points)+maxPointsPerSlide-1)/maxPointsPerSlide)
	slides = append(slides, SlideDescriptor{
		Title:   titleCaser.String(title),
		Bullets: subtitleBullets(summary),
		Layout:  titleLayout(summary),
	})

	for start := 0; start < len(points); start += maxPointsPerSlide {
		end := start + maxPointsPerSlide
		if end > len(points) {
			end = len(points)
		}

		bullets := make([]string, 0, end-start)
		for _, point := range points[start:end] {
			bullets = append(bullets, point.Text)
		}
		slides = append(slides, SlideDescriptor{
			Title:   "Key Points",
			Bullets: bullets,
			Layout:  LayoutTitleAndBody,
		})
	}

	return slides, nil
}

func titleLayout(summary analyze.Summary) Layout {
	if summary.Text == "" {
		return LayoutTitleOnly
	}
	return LayoutTitleAndSubtitle
}

func subtitleBullets(summary analyze.Summary) []string {
	if summary.Text == "" {
		return nil
	}
	return []string{summary.Text}
}
