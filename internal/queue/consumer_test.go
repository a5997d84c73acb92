package queue

import (
	"context"
	"encoding/json"
	"errors"
	"sync"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/peoplehub/hr-backend/internal/model"
	"github.com/peoplehub/hr-backend/internal/polish"
)

// fakeResultStore mirrors the feedback table's guarded UPDATE: a result
// is applied only while the row is still POLISHING and still waiting on
// exactly that job id. Anything else matches nothing and is dropped.
type fakeResultStore struct {
	mu sync.Mutex

	jobID     string
	status    string
	polished  *string
	polishErr *string
}

func (s *fakeResultStore) SetPolishResult(_ context.Context, _ uint64, jobID, status string, polished, polishErr *string) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	if s.status != model.PolishPolishing || s.jobID != jobID {
		return nil
	}
	s.status = status
	s.polished = polished
	s.polishErr = polishErr
	return nil
}

type failingPolisher struct{ err error }

func (p failingPolisher) Polish(context.Context, string, string) (string, error) {
	return "", p.err
}

func marshalEvent(t *testing.T, ev PolishRequestedEvent) []byte {
	t.Helper()
	body, err := json.Marshal(ev)
	require.NoError(t, err)
	return body
}

func TestHandleJobRecordsReady(t *testing.T) {
	store := &fakeResultStore{jobID: "job-1", status: model.PolishPolishing}
	body := marshalEvent(t, PolishRequestedEvent{
		JobID:       "job-1",
		FeedbackID:  7,
		Content:     "grate work",
		RequestedAt: time.Now().UTC(),
	})

	require.NoError(t, handleJob(body, polish.Mock{}, store))

	assert.Equal(t, model.PolishReady, store.status)
	require.NotNil(t, store.polished)
	assert.Equal(t, "grate work [polished]", *store.polished)
	assert.Nil(t, store.polishErr)
}

func TestHandleJobDiscardsSupersededJob(t *testing.T) {
	// The row was re-edited after job-1 was published: it now waits on
	// job-2. job-1's result must not overwrite the newer content's state.
	store := &fakeResultStore{jobID: "job-2", status: model.PolishPolishing}
	body := marshalEvent(t, PolishRequestedEvent{
		JobID:      "job-1",
		FeedbackID: 7,
		Content:    "the old content",
	})

	// Acked, not redelivered: the outcome simply no longer matters.
	require.NoError(t, handleJob(body, polish.Mock{}, store))

	assert.Equal(t, model.PolishPolishing, store.status)
	assert.Nil(t, store.polished)
	assert.Nil(t, store.polishErr)

	// The live job still lands afterwards.
	body = marshalEvent(t, PolishRequestedEvent{JobID: "job-2", FeedbackID: 7, Content: "the new content"})
	require.NoError(t, handleJob(body, polish.Mock{}, store))
	assert.Equal(t, model.PolishReady, store.status)
	require.NotNil(t, store.polished)
	assert.Equal(t, "the new content [polished]", *store.polished)
}

func TestHandleJobRecordsFailure(t *testing.T) {
	store := &fakeResultStore{jobID: "job-1", status: model.PolishPolishing}
	body := marshalEvent(t, PolishRequestedEvent{JobID: "job-1", FeedbackID: 7, Content: "x"})

	require.NoError(t, handleJob(body, failingPolisher{err: errors.New("upstream 503")}, store))

	assert.Equal(t, model.PolishFailed, store.status)
	assert.Nil(t, store.polished)
	require.NotNil(t, store.polishErr)
	assert.Equal(t, "upstream 503", *store.polishErr)
}

func TestHandleJobRejectsMalformedBody(t *testing.T) {
	store := &fakeResultStore{jobID: "job-1", status: model.PolishPolishing}
	assert.Error(t, handleJob([]byte("{not json"), polish.Mock{}, store))
	assert.Equal(t, model.PolishPolishing, store.status)
}
