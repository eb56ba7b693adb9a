package analyze

import (
	"context"
	"fmt"
	"strings"

	"github.com/vidpoint/vidpoint/internal/transcribe"
	"github.com/vidpoint/vidpoint/pkg/log"
)

// chatBackend is the slice of the LLM client the analyzer needs.
type chatBackend interface {
	SimpleChat(ctx context.Context, prompt string, systemPrompt string) (string, error)
}

const generativeSystemPrompt = `You are a professional content analyzer that extracts key points from video transcripts.
Format all key points as bullet points starting with a hyphen (-).
After the bullet points, add one line starting with "Summary:" containing a concise summary,
and one line starting with "Title:" containing a short title of at most six words.`

// GenerativeAnalyzer asks a text-generation backend for exactly n key points
// plus a summary and parses the bullet-prefixed response. A backend error is
// returned as-is; an unparseable response yields an empty point list.
type GenerativeAnalyzer struct {
	backend chatBackend
}

func NewGenerativeAnalyzer(backend chatBackend) *GenerativeAnalyzer {
	return &GenerativeAnalyzer{backend: backend}
}

func (a *GenerativeAnalyzer) Extract(ctx context.Context, transcript transcribe.Transcript, n int) ([]KeyPoint, Summary, error) {
	prompt := fmt.Sprintf(`Extract the %d most important key points from this video transcript.
Focus on actionable insights and main concepts. Format each point as a clear, concise sentence.
Make sure each point is unique and provides valuable information.

Transcript:
%s`, n, transcript.Text)

	response, err := a.backend.SimpleChat(ctx, prompt, generativeSystemPrompt)
	if err != nil {
		return nil, Summary{}, fmt.Errorf("generation backend: %w", err)
	}

	points, summary := parseResponse(response, n)
	if len(points) == 0 {
		log.Warn("Generative analyzer returned no parseable points for video %s", transcript.VideoID)
	}
	return points, summary, nil
}

// parseResponse pulls hyphen-prefixed bullets plus the trailing Summary and
// Title lines out of the model response, applying the same cleaning and
// validation as the extractive path.
func parseResponse(response string, n int) ([]KeyPoint, Summary) {
	points := make([]KeyPoint, 0, n)
	summary := Summary{}

	for _, line := range strings.Split(response, "\n") {
		line = strings.TrimSpace(line)
		switch {
		case strings.HasPrefix(line, "-") || strings.HasPrefix(line, "•") || strings.HasPrefix(line, "*"):
			if len(points) == n {
				continue
			}
			cleaned := CleanSentence(strings.TrimLeft(line, "-•* "))
			if cleaned == "" || !validPoint(cleaned, points) {
				continue
			}
			points = append(points, KeyPoint{
				Text:     cleaned,
				Score:    float64(n - len(points)),
				Position: len(points),
			})
		case strings.HasPrefix(strings.ToLower(line), "summary:"):
			summary.Text = strings.TrimSpace(line[len("summary:"):])
		case strings.HasPrefix(strings.ToLower(line), "title:"):
			summary.Title = strings.Trim(strings.TrimSpace(line[len("title:"):]), `"'`)
		}
	}

	if summary.Title == "" && len(points) > 0 {
		summary.Title = titleFrom(points[0].Text)
	}
	return points, summary
}
