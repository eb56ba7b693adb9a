package httpapi

import (
	"context"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/vidpoint/vidpoint/internal/jobs"
	"github.com/vidpoint/vidpoint/internal/source"
)

func newTestServer(t *testing.T, opts ...Option) (*Server, *jobs.Tracker) {
	t.Helper()
	tracker := jobs.NewTracker(jobs.NewMemoryStore())
	queue := jobs.NewQueue(1)
	t.Cleanup(queue.Stop)
	return NewServer(tracker, queue, opts...), tracker
}

func postProcess(t *testing.T, server *Server, body string) *httptest.ResponseRecorder {
	t.Helper()
	req := httptest.NewRequest(http.MethodPost, "/api/process", strings.NewReader(body))
	rec := httptest.NewRecorder()
	server.Handler().ServeHTTP(rec, req)
	return rec
}

func decodeJob(t *testing.T, rec *httptest.ResponseRecorder) jobResponse {
	t.Helper()
	var resp jobResponse
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &resp))
	return resp
}

func TestHandleProcess_AcceptsNewVideo(t *testing.T) {
	server, _ := newTestServer(t)

	rec := postProcess(t, server, `{"url": "https://youtu.be/abcdefghijk"}`)

	require.Equal(t, http.StatusAccepted, rec.Code)
	resp := decodeJob(t, rec)
	assert.Equal(t, "abcdefghijk", resp.VideoID)
	assert.Equal(t, string(jobs.StatusPending), resp.Status)
}

func TestHandleProcess_ExistingJobReturnsSnapshot(t *testing.T) {
	server, tracker := newTestServer(t)

	first := postProcess(t, server, `{"url": "https://youtu.be/abcdefghijk"}`)
	require.Equal(t, http.StatusAccepted, first.Code)

	_, err := tracker.Advance(context.Background(), source.VideoID("abcdefghijk"), jobs.StatusCompleted, jobs.WithResultRef("ref"))
	require.NoError(t, err)

	second := postProcess(t, server, `{"url": "https://www.youtube.com/watch?v=abcdefghijk"}`)
	require.Equal(t, http.StatusOK, second.Code)
	resp := decodeJob(t, second)
	assert.Equal(t, string(jobs.StatusCompleted), resp.Status)
	assert.Equal(t, "ref", resp.ResultRef)
}

func TestHandleProcess_InvalidURL(t *testing.T) {
	server, _ := newTestServer(t)

	rec := postProcess(t, server, `{"url": "https://example.com/watch?v=abcdefghijk"}`)
	assert.Equal(t, http.StatusBadRequest, rec.Code)
}

func TestHandleProcess_MalformedBody(t *testing.T) {
	server, _ := newTestServer(t)

	rec := postProcess(t, server, `{not json`)
	assert.Equal(t, http.StatusBadRequest, rec.Code)
}

func TestHandleProcess_MethodNotAllowed(t *testing.T) {
	server, _ := newTestServer(t)

	req := httptest.NewRequest(http.MethodGet, "/api/process", nil)
	rec := httptest.NewRecorder()
	server.Handler().ServeHTTP(rec, req)

	assert.Equal(t, http.StatusMethodNotAllowed, rec.Code)
}

type denyingGate struct{}

func (denyingGate) CanProcess(context.Context, source.VideoID) (bool, error) { return false, nil }
func (denyingGate) RecordUsage(context.Context, source.VideoID) error        { return nil }

func TestHandleProcess_BillingGateDenies(t *testing.T) {
	server, _ := newTestServer(t, WithBillingGate(denyingGate{}))

	rec := postProcess(t, server, `{"url": "https://youtu.be/abcdefghijk"}`)
	assert.Equal(t, http.StatusPaymentRequired, rec.Code)
}

func TestHandleStatus(t *testing.T) {
	server, tracker := newTestServer(t)

	_, _, err := tracker.GetOrCreate(context.Background(), source.VideoID("abcdefghijk"), "https://youtu.be/abcdefghijk")
	require.NoError(t, err)
	_, err = tracker.Advance(context.Background(), source.VideoID("abcdefghijk"), jobs.StatusTranscribing)
	require.NoError(t, err)

	req := httptest.NewRequest(http.MethodGet, "/api/status/abcdefghijk", nil)
	rec := httptest.NewRecorder()
	server.Handler().ServeHTTP(rec, req)

	require.Equal(t, http.StatusOK, rec.Code)
	resp := decodeJob(t, rec)
	assert.Equal(t, string(jobs.StatusTranscribing), resp.Status)
	assert.Equal(t, "transcribing", resp.Step)
}

func TestHandleStatus_UnknownVideo(t *testing.T) {
	server, _ := newTestServer(t)

	req := httptest.NewRequest(http.MethodGet, "/api/status/unknownvid1", nil)
	rec := httptest.NewRecorder()
	server.Handler().ServeHTTP(rec, req)

	assert.Equal(t, http.StatusNotFound, rec.Code)
}

func TestHandleStatus_MissingID(t *testing.T) {
	server, _ := newTestServer(t)

	req := httptest.NewRequest(http.MethodGet, "/api/status/", nil)
	rec := httptest.NewRecorder()
	server.Handler().ServeHTTP(rec, req)

	assert.Equal(t, http.StatusBadRequest, rec.Code)
}

func TestHandleHealth(t *testing.T) {
	server, _ := newTestServer(t)

	req := httptest.NewRequest(http.MethodGet, "/api/healthz", nil)
	rec := httptest.NewRecorder()
	server.Handler().ServeHTTP(rec, req)

	assert.Equal(t, http.StatusOK, rec.Code)
}

func TestHandleProcess_FailedJobSurfacesError(t *testing.T) {
	server, tracker := newTestServer(t)

	first := postProcess(t, server, `{"url": "https://youtu.be/abcdefghijk"}`)
	require.Equal(t, http.StatusAccepted, first.Code)

	require.NoError(t, tracker.Fail(context.Background(), source.VideoID("abcdefghijk"), "video could not be downloaded"))

	second := postProcess(t, server, `{"url": "https://youtu.be/abcdefghijk"}`)
	require.Equal(t, http.StatusOK, second.Code)
	resp := decodeJob(t, second)
	// Failed jobs report "error" on the wire, not the internal status name.
	assert.Equal(t, "error", resp.Status)
	assert.Equal(t, "video could not be downloaded", resp.Error)
}

func TestHandleStatus_FailedJobReportsErrorStatus(t *testing.T) {
	server, tracker := newTestServer(t)

	_, _, err := tracker.GetOrCreate(context.Background(), source.VideoID("abcdefghijk"), "https://youtu.be/abcdefghijk")
	require.NoError(t, err)
	require.NoError(t, tracker.Fail(context.Background(), source.VideoID("abcdefghijk"), "transcription failed or produced no usable speech"))

	req := httptest.NewRequest(http.MethodGet, "/api/status/abcdefghijk", nil)
	rec := httptest.NewRecorder()
	server.Handler().ServeHTTP(rec, req)

	require.Equal(t, http.StatusOK, rec.Code)
	resp := decodeJob(t, rec)
	assert.Equal(t, "error", resp.Status)
	assert.Equal(t, "transcription failed or produced no usable speech", resp.Error)
}

func TestHandleProcess_QueueRejectionFailsJob(t *testing.T) {
	tracker := jobs.NewTracker(jobs.NewMemoryStore())
	queue := jobs.NewQueue(1)
	t.Cleanup(queue.Stop)
	server := NewServer(tracker, queue)

	// Occupy the video's queue slot so the handler's submission is refused.
	require.True(t, queue.Submit(source.VideoID("abcdefghijk"), "https://youtu.be/abcdefghijk"))

	rec := postProcess(t, server, `{"url": "https://youtu.be/abcdefghijk"}`)
	require.Equal(t, http.StatusServiceUnavailable, rec.Code)

	// The fresh record must not linger as pending with no task behind it.
	job, err := tracker.Get(context.Background(), source.VideoID("abcdefghijk"))
	require.NoError(t, err)
	assert.Equal(t, jobs.StatusFailed, job.Status)
	assert.Equal(t, "processing queue is full", job.Error)
}
