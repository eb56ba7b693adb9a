package analyze

import (
	"context"
	"errors"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

type fakeBackend struct {
	response string
	err      error
	prompts  []string
}

func (f *fakeBackend) SimpleChat(_ context.Context, prompt string, _ string) (string, error) {
	f.prompts = append(f.prompts, prompt)
	return f.response, f.err
}

func TestGenerative_ParsesBulletsAndSummary(t *testing.T) {
	backend := &fakeBackend{response: `Here are the key points:
- The cache layer reduces latency for all reads
- Sharding spreads write load across nodes
Summary: Cache and sharding carry the load.
Title: Scaling The Data Layer`}

	analyzer := NewGenerativeAnalyzer(backend)
	points, summary, err := analyzer.Extract(context.Background(), sampleTranscript("long enough transcript text"), 5)

	require.NoError(t, err)
	require.Len(t, points, 2)
	assert.Equal(t, "The cache layer reduces latency for all reads.", points[0].Text)
	assert.Equal(t, "Sharding spreads write load across nodes.", points[1].Text)
	assert.Greater(t, points[0].Score, points[1].Score)
	assert.Equal(t, "Cache and sharding carry the load.", summary.Text)
	assert.Equal(t, "Scaling The Data Layer", summary.Title)
}

func TestGenerative_CapsPointsAtRequested(t *testing.T) {
	backend := &fakeBackend{response: `- Point one about database replication lag
- Point two about consumer group rebalancing
- Point three about retry budgets and backoff`}

	analyzer := NewGenerativeAnalyzer(backend)
	points, _, err := analyzer.Extract(context.Background(), sampleTranscript("text"), 2)

	require.NoError(t, err)
	assert.Len(t, points, 2)
}

func TestGenerative_BackendError(t *testing.T) {
	backend := &fakeBackend{err: errors.New("rate limited")}

	analyzer := NewGenerativeAnalyzer(backend)
	_, _, err := analyzer.Extract(context.Background(), sampleTranscript("text"), 3)

	require.Error(t, err)
}

func TestGenerative_UnparseableResponse(t *testing.T) {
	backend := &fakeBackend{response: "I could not find any key points in this transcript."}

	analyzer := NewGenerativeAnalyzer(backend)
	points, _, err := analyzer.Extract(context.Background(), sampleTranscript("text"), 3)

	require.NoError(t, err)
	assert.Empty(t, points)
}

func TestGenerative_TitleFallsBackToFirstPoint(t *testing.T) {
	backend := &fakeBackend{response: `- Observability starts with structured logs everywhere
Summary: Logs come first.`}

	analyzer := NewGenerativeAnalyzer(backend)
	points, summary, err := analyzer.Extract(context.Background(), sampleTranscript("text"), 3)

	require.NoError(t, err)
	require.Len(t, points, 1)
	assert.Equal(t, "Observability starts with structured logs everywhere", summary.Title)
}
