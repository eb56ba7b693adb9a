package analyze

import (
	"context"
	"regexp"
	"sort"
	"strings"

	"github.com/vidpoint/vidpoint/internal/transcribe"
	"github.com/vidpoint/vidpoint/pkg/log"
)

// scoreRule pairs a sentence pattern with a score multiplier. The filler set
// models greetings, outros and channel boilerplate that never carry a thesis.
type scoreRule struct {
	pattern    *regexp.Regexp
	multiplier float64
}

var fillerRules = []scoreRule{
	{regexp.MustCompile(`(?i)thanks? for watching`), 0.2},
	{regexp.MustCompile(`(?i)\bsubscribe\b`), 0.2},
	{regexp.MustCompile(`(?i)hit the (like|bell)`), 0.2},
	{regexp.MustCompile(`(?i)smash that like`), 0.2},
	{regexp.MustCompile(`(?i)welcome back to`), 0.3},
	{regexp.MustCompile(`(?i)in today'?s video`), 0.3},
	{regexp.MustCompile(`(?i)see you (in the next|next time)`), 0.2},
	{regexp.MustCompile(`(?i)don'?t forget to`), 0.3},
	{regexp.MustCompile(`(?i)link in the description`), 0.2},
	{regexp.MustCompile(`(?i)\bhey (guys|everyone|everybody)\b`), 0.3},
}

// Weighted combination of term density and positional bonus, mirrored by the
// length sweet-spot multiplier applied afterwards.
const (
	densityWeight  = 0.7
	positionWeight = 0.3

	openingBonus = 1.5 // first 20% of the transcript
	closingBonus = 1.2 // last 20%
)

// ExtractiveAnalyzer scores transcript sentences with data-driven heuristics
// and selects the top N. Deterministic, no network, no API key. It is the
// default strategy.
type ExtractiveAnalyzer struct{}

func NewExtractiveAnalyzer() *ExtractiveAnalyzer {
	return &ExtractiveAnalyzer{}
}

func (a *ExtractiveAnalyzer) Extract(_ context.Context, transcript transcribe.Transcript, n int) ([]KeyPoint, Summary, error) {
	sentences := splitSentences(transcript.Text)
	if len(sentences) == 0 || n <= 0 {
		return nil, Summary{}, nil
	}

	scores := scoreSentences(sentences)

	// Rank by score, keeping the original index for the final re-sort.
	type candidate struct {
		index int
		score float64
	}
	ranked := make([]candidate, len(sentences))
	for i, score := range scores {
		ranked[i] = candidate{index: i, score: score}
	}
	sort.SliceStable(ranked, func(i, j int) bool {
		return ranked[i].score > ranked[j].score
	})

	// Accept cleaned candidates until we have n valid points. Validation
	// rejects empties, out-of-bounds lengths, and near-duplicates of points
	// accepted earlier in the same pass.
	points := make([]KeyPoint, 0, n)
	for _, cand := range ranked {
		if len(points) == n {
			break
		}
		cleaned := CleanSentence(sentences[cand.index])
		if cleaned == "" || !validPoint(cleaned, points) {
			continue
		}
		points = append(points, KeyPoint{
			Text:     cleaned,
			Score:    cand.score,
			Position: cand.index,
		})
	}

	if len(points) == 0 {
		log.Warn("Extractive analyzer produced no valid points for video %s", transcript.VideoID)
		return nil, Summary{}, nil
	}

	// Selection order is score-based; presentation order is transcript order.
	sort.Slice(points, func(i, j int) bool {
		return points[i].Position < points[j].Position
	})

	return points, a.summarize(sentences, scores, points), nil
}

// summarySentences is how many sentences the summary draws on.
const summarySentences = 3

// summarize builds the summary from the strongest sentences of the whole
// transcript, in transcript order, and derives the title from the single
// strongest selected point.
func (a *ExtractiveAnalyzer) summarize(sentences []string, scores []float64, points []KeyPoint) Summary {
	type candidate struct {
		index int
		text  string
		score float64
	}
	ranked := make([]candidate, len(sentences))
	for i, score := range scores {
		ranked[i] = candidate{index: i, score: score}
	}
	sort.SliceStable(ranked, func(i, j int) bool {
		return ranked[i].score > ranked[j].score
	})

	picked := make([]candidate, 0, summarySentences)
	for _, cand := range ranked {
		if len(picked) == summarySentences {
			break
		}
		if cleaned := CleanSentence(sentences[cand.index]); cleaned != "" {
			cand.text = cleaned
			picked = append(picked, cand)
		}
	}
	sort.Slice(picked, func(i, j int) bool { return picked[i].index < picked[j].index })

	parts := make([]string, len(picked))
	for i, cand := range picked {
		parts[i] = cand.text
	}

	best := points[0]
	for _, point := range points[1:] {
		if point.Score > best.Score {
			best = point
		}
	}

	return Summary{
		Text:  strings.Join(parts, " "),
		Title: titleFrom(best.Text),
	}
}

// titleFrom keeps the leading words of a point as a short deck title.
func titleFrom(text string) string {
	words := strings.Fields(strings.TrimRight(text, ".!?"))
	if len(words) > 6 {
		words = words[:6]
	}
	return strings.Join(words, " ")
}

// scoreSentences computes the heuristic score for every sentence:
// (0.7 * term density + 0.3 * position bonus) * length multiplier * filler
// penalty. Term density is the stopword-filtered frequency mass of the
// sentence's words, normalized by the densest sentence in the transcript.
func scoreSentences(sentences []string) []float64 {
	freq := make(map[string]int)
	for _, sentence := range sentences {
		for _, token := range tokenize(sentence) {
			if !stopwords[token] {
				freq[token]++
			}
		}
	}

	density := make([]float64, len(sentences))
	maxDensity := 0.0
	for i, sentence := range sentences {
		tokens := tokenize(sentence)
		if len(tokens) == 0 {
			continue
		}
		sum := 0
		for _, token := range tokens {
			sum += freq[token]
		}
		density[i] = float64(sum) / float64(len(tokens))
		if density[i] > maxDensity {
			maxDensity = density[i]
		}
	}

	scores := make([]float64, len(sentences))
	for i, sentence := range sentences {
		normDensity := 0.0
		if maxDensity > 0 {
			normDensity = density[i] / maxDensity
		}

		position := 1.0
		switch {
		case float64(i) < float64(len(sentences))*0.2:
			position = openingBonus
		case float64(i) >= float64(len(sentences))*0.8:
			position = closingBonus
		}

		score := (densityWeight*normDensity + positionWeight*position) * lengthMultiplier(sentence)

		for _, rule := range fillerRules {
			if rule.pattern.MatchString(sentence) {
				score *= rule.multiplier
				break
			}
		}
		scores[i] = score
	}
	return scores
}

// lengthMultiplier favors the 8-15 word sweet spot, penalizes rambling
// sentences and heavily penalizes fragments.
func lengthMultiplier(sentence string) float64 {
	n := len(strings.Fields(sentence))
	switch {
	case n < 5:
		return 0.3
	case n >= 8 && n <= 15:
		return 1.3
	case n > 20:
		return 0.8
	default:
		return 1.0
	}
}
