package realtime

import (
	"context"
	"encoding/json"
	"io"
	"log"
	"sync"
	"testing"
	"time"

	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/pageza/smartscheduler/internal/domain"
)

type fakeEventLogRepo struct {
	mu      sync.Mutex
	entries []*domain.EventLog
	failAdd bool
}

func (f *fakeEventLogRepo) GetByID(ctx context.Context, id uuid.UUID) (*domain.EventLog, error) {
	return nil, domain.NotFound("not implemented in fake")
}

func (f *fakeEventLogRepo) Add(ctx context.Context, e *domain.EventLog) error {
	if f.failAdd {
		return assert.AnError
	}
	f.mu.Lock()
	defer f.mu.Unlock()
	f.entries = append(f.entries, e)
	return nil
}

func (f *fakeEventLogRepo) GetSince(ctx context.Context, since time.Time) ([]*domain.EventLog, error) {
	return f.entries, nil
}

func silentLogger() *log.Logger {
	return log.New(io.Discard, "", 0)
}

func TestPublishRecommendationReadyTargetsDispatchOnly(t *testing.T) {
	repo := &fakeEventLogRepo{}
	hub := NewHub(silentLogger())
	p := NewPublisher(hub, repo, silentLogger())

	jobID := uuid.New()
	p.PublishRecommendationReady(context.Background(), RecommendationReadyEvent{
		JobID:         jobID,
		RequestID:     uuid.New(),
		Region:        "west",
		ConfigVersion: 3,
		GeneratedAt:   time.Now().UTC(),
	})

	require.Len(t, repo.entries, 1)
	entry := repo.entries[0]
	assert.Equal(t, EventRecommendationReady, entry.EventType)
	assert.Equal(t, []string{"dispatch/west"}, entry.PublishedTo)
}

func TestPublishJobAssignedTargetsDispatchAndContractor(t *testing.T) {
	repo := &fakeEventLogRepo{}
	hub := NewHub(silentLogger())
	p := NewPublisher(hub, repo, silentLogger())

	contractorID := uuid.New()
	p.PublishJobAssigned(context.Background(), JobAssignedEvent{
		JobID:        uuid.New(),
		ContractorID: contractorID,
		AssignmentID: uuid.New(),
		StartUTC:     time.Now().UTC(),
		EndUTC:       time.Now().UTC().Add(time.Hour),
		Region:       "east",
		Source:       "auto",
		AuditID:      uuid.New(),
	})

	require.Len(t, repo.entries, 1)
	assert.ElementsMatch(t, []string{"dispatch/east", ContractorGroup(contractorID)}, repo.entries[0].PublishedTo)
}

func TestPublishJobCancelledDefaultsReason(t *testing.T) {
	repo := &fakeEventLogRepo{}
	hub := NewHub(silentLogger())
	p := NewPublisher(hub, repo, silentLogger())

	p.PublishJobCancelled(context.Background(), JobCancelledEvent{
		JobID:  uuid.New(),
		Region: "west",
	}, []uuid.UUID{uuid.New(), uuid.New()})

	require.Len(t, repo.entries, 1)
	var decoded JobCancelledEvent
	require.NoError(t, json.Unmarshal(repo.entries[0].PayloadJSON, &decoded))
	assert.Equal(t, DefaultCancelReason, decoded.Reason)
	assert.Len(t, repo.entries[0].PublishedTo, 3)
}

func TestPublishSwallowsEventLogFailure(t *testing.T) {
	repo := &fakeEventLogRepo{failAdd: true}
	hub := NewHub(silentLogger())
	p := NewPublisher(hub, repo, silentLogger())

	assert.NotPanics(t, func() {
		p.PublishJobCancelled(context.Background(), JobCancelledEvent{JobID: uuid.New(), Region: "west"}, nil)
	})
}
