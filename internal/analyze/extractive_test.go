package analyze

import (
	"context"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/vidpoint/vidpoint/internal/source"
	"github.com/vidpoint/vidpoint/internal/transcribe"
)

func sampleTranscript(text string) transcribe.Transcript {
	return transcribe.Transcript{
		VideoID:  source.VideoID("abcdefghijk"),
		Text:     text,
		Language: "en",
	}
}

func TestExtractive_SelectsPointsInTranscriptOrder(t *testing.T) {
	text := strings.Join([]string{
		"Database indexes speed up query execution for common access patterns.",
		"The weather outside is nice.",
		"Composite indexes cover queries that filter on several columns together.",
		"Cats sleep a lot during the day.",
		"Index maintenance slows down write heavy workloads considerably over time.",
		"Partial indexes keep the index small for sparse predicates.",
	}, " ")

	analyzer := NewExtractiveAnalyzer()
	points, summary, err := analyzer.Extract(context.Background(), sampleTranscript(text), 3)

	require.NoError(t, err)
	require.NotEmpty(t, points)
	assert.LessOrEqual(t, len(points), 3)

	for i := 1; i < len(points); i++ {
		assert.Less(t, points[i-1].Position, points[i].Position)
	}

	assert.NotEmpty(t, summary.Text)
	assert.NotEmpty(t, summary.Title)
	assert.LessOrEqual(t, len(strings.Fields(summary.Title)), 6)
}

func TestExtractive_SummaryDrawsOnWholeTranscript(t *testing.T) {
	text := strings.Join([]string{
		"Write ahead logging guarantees durability for committed transactions under crashes.",
		"Checkpoints bound recovery time by flushing dirty pages to disk regularly.",
		"Group commit amortizes fsync cost across many concurrent transactions nicely.",
		"Log shipping replays the same records on warm standby replicas continuously.",
		"Torn page detection relies on checksums stored inside every page header.",
	}, " ")

	analyzer := NewExtractiveAnalyzer()
	points, summary, err := analyzer.Extract(context.Background(), sampleTranscript(text), 1)

	require.NoError(t, err)
	require.Len(t, points, 1)

	// The summary ranks every transcript sentence, so even with a single
	// selected point it keeps several of the strongest sentences.
	require.NotEmpty(t, summary.Text)
	assert.GreaterOrEqual(t, strings.Count(summary.Text, "."), 2)
	assert.NotEqual(t, points[0].Text, summary.Text)
}

func TestExtractive_PenalizesChannelBoilerplate(t *testing.T) {
	text := strings.Join([]string{
		"Connection pooling reuses database connections across many requests.",
		"Pool sizing depends on workload concurrency and database limits.",
		"Idle connections waste server memory without doing useful work.",
		"Thanks for watching and do not forget to subscribe.",
	}, " ")

	analyzer := NewExtractiveAnalyzer()
	points, _, err := analyzer.Extract(context.Background(), sampleTranscript(text), 3)

	require.NoError(t, err)
	require.NotEmpty(t, points)
	for _, point := range points {
		assert.NotContains(t, strings.ToLower(point.Text), "subscribe")
	}
}

func TestExtractive_FewerSentencesThanRequested(t *testing.T) {
	text := "Load balancers spread traffic across healthy backends. Health checks remove failing backends from rotation."

	analyzer := NewExtractiveAnalyzer()
	points, _, err := analyzer.Extract(context.Background(), sampleTranscript(text), 5)

	require.NoError(t, err)
	assert.LessOrEqual(t, len(points), 2)
	assert.NotEmpty(t, points)
}

func TestExtractive_EmptyTranscript(t *testing.T) {
	analyzer := NewExtractiveAnalyzer()

	points, summary, err := analyzer.Extract(context.Background(), sampleTranscript(""), 5)

	require.NoError(t, err)
	assert.Empty(t, points)
	assert.Empty(t, summary.Text)
}

func TestExtractive_ZeroPointsRequested(t *testing.T) {
	analyzer := NewExtractiveAnalyzer()

	points, _, err := analyzer.Extract(context.Background(), sampleTranscript("Some text here for testing purposes only."), 0)

	require.NoError(t, err)
	assert.Empty(t, points)
}

func TestScoreSentences_OpeningBonus(t *testing.T) {
	// Twenty identical-density sentences: only the positional bonus differs.
	sentences := make([]string, 20)
	for i := range sentences {
		sentences[i] = "alpha beta gamma delta epsilon zeta eta theta"
	}

	scores := scoreSentences(sentences)

	require.Len(t, scores, 20)
	assert.Greater(t, scores[0], scores[10])
	assert.Greater(t, scores[19], scores[10])
	assert.Greater(t, scores[0], scores[19])
}

func TestValidPoint_RejectsNearDuplicates(t *testing.T) {
	accepted := []KeyPoint{{Text: "Incremental backups reduce restore time for clusters."}}

	assert.False(t, validPoint("Incremental backups reduce restore time for clusters.", accepted))
	assert.True(t, validPoint("Partial indexes keep the index small.", accepted))
}

func TestValidPoint_WordBounds(t *testing.T) {
	assert.False(t, validPoint("Too short.", nil))
	long := strings.Repeat("word ", maxPointWords+1)
	assert.False(t, validPoint(strings.TrimSpace(long), nil))
	assert.True(t, validPoint("A point with exactly enough words.", nil))
}
