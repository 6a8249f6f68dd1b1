package realtime

import (
	"context"
	"encoding/json"
	"log"
	"time"

	"github.com/google/uuid"

	"github.com/pageza/smartscheduler/internal/domain"
	"github.com/pageza/smartscheduler/internal/repository"
)

// Publisher fans out typed events to subscriber groups over the Hub and
// appends one EventLog row per successful publish. Every method swallows
// its own errors (logs them instead): a realtime or audit failure must
// never fail the mutation that triggered it.
type Publisher struct {
	hub    *Hub
	events repository.EventLogRepo
	logger *log.Logger
}

// NewPublisher wires a Hub and the EventLog repository into a Publisher.
func NewPublisher(hub *Hub, events repository.EventLogRepo, logger *log.Logger) *Publisher {
	return &Publisher{hub: hub, events: events, logger: logger}
}

// publish marshals payload, sends it to every group, and records the
// publish in the event log. All failures are logged and swallowed.
func (p *Publisher) publish(ctx context.Context, eventType string, payload interface{}, groups ...string) {
	frame, err := json.Marshal(payload)
	if err != nil {
		p.logger.Printf("realtime: failed to marshal %s event: %v", eventType, err)
		return
	}

	for _, group := range groups {
		p.hub.send(group, frame)
	}

	entry := &domain.EventLog{
		ID:             uuid.New(),
		EventType:      eventType,
		PayloadJSON:    json.RawMessage(frame),
		PublishedAtUTC: time.Now().UTC(),
		PublishedTo:    groups,
	}
	if err := p.events.Add(ctx, entry); err != nil {
		p.logger.Printf("realtime: failed to persist event log entry for %s: %v", eventType, err)
	}
}

// PublishRecommendationReady fans out to the dispatch group only.
func (p *Publisher) PublishRecommendationReady(ctx context.Context, evt RecommendationReadyEvent) {
	evt.Type = EventRecommendationReady
	p.publish(ctx, EventRecommendationReady, evt, DispatchGroup(evt.Region))
}

// PublishJobAssigned fans out to the dispatch group and the assigned
// contractor's group.
func (p *Publisher) PublishJobAssigned(ctx context.Context, evt JobAssignedEvent) {
	evt.Type = EventJobAssigned
	p.publish(ctx, EventJobAssigned, evt, DispatchGroup(evt.Region), ContractorGroup(evt.ContractorID))
}

// PublishJobRescheduled fans out to the dispatch group and every contractor
// currently assigned to the job.
func (p *Publisher) PublishJobRescheduled(ctx context.Context, evt JobRescheduledEvent, assignedContractors []uuid.UUID) {
	evt.Type = EventJobRescheduled
	groups := make([]string, 0, len(assignedContractors)+1)
	groups = append(groups, DispatchGroup(evt.Region))
	for _, id := range assignedContractors {
		groups = append(groups, ContractorGroup(id))
	}
	p.publish(ctx, EventJobRescheduled, evt, groups...)
}

// PublishJobCancelled fans out to the dispatch group and every contractor
// assigned to the job. If reason is empty, DefaultCancelReason is used.
func (p *Publisher) PublishJobCancelled(ctx context.Context, evt JobCancelledEvent, assignedContractors []uuid.UUID) {
	evt.Type = EventJobCancelled
	if evt.Reason == "" {
		evt.Reason = DefaultCancelReason
	}
	groups := make([]string, 0, len(assignedContractors)+1)
	groups = append(groups, DispatchGroup(evt.Region))
	for _, id := range assignedContractors {
		groups = append(groups, ContractorGroup(id))
	}
	p.publish(ctx, EventJobCancelled, evt, groups...)
}
