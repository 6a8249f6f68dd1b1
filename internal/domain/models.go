package domain

import (
	"encoding/json"
	"strings"
	"time"

	"github.com/google/uuid"
)

// Event is a domain event queued on an aggregate's outbox until DrainEvents
// is called. The mutation handlers in internal/services neither raise nor
// drain these events; they call the realtime publisher directly.
type Event struct {
	Type      string
	Payload   interface{}
	OccuredAt time.Time
}

// outbox is embedded by aggregates that raise domain events. It is never
// serialized and never copied across aggregate boundaries.
type outbox struct {
	events []Event
}

func (o *outbox) raise(eventType string, payload interface{}) {
	o.events = append(o.events, Event{Type: eventType, Payload: payload, OccuredAt: time.Now().UTC()})
}

// DrainEvents returns and clears the queued events. Call exactly once per
// commit, after persistence succeeds.
func (o *outbox) DrainEvents() []Event {
	drained := o.events
	o.events = nil
	return drained
}

// Contractor is a workforce member.
type Contractor struct {
	ID             uuid.UUID            `json:"id" db:"id"`
	Name           string               `json:"name" db:"name"`
	BaseLocation   GeoLocation          `json:"baseLocation" db:"base_location"`
	WorkingHours   []WorkingHours       `json:"workingHours" db:"working_hours"`
	Skills         []string             `json:"skills" db:"skills"`
	Calendar       ContractorCalendar   `json:"calendar" db:"calendar"`
	Rating         float64              `json:"rating" db:"rating"`
	MaxJobsPerDay  int                  `json:"maxJobsPerDay" db:"max_jobs_per_day"`
	CreatedAt      time.Time            `json:"createdAt" db:"created_at"`
	UpdatedAt      time.Time            `json:"updatedAt" db:"updated_at"`
}

// NormalizeSkills trims, lower-cases and deduplicates the skill set. Called
// on write so every stored Contractor has a canonical skill set.
func NormalizeSkills(skills []string) []string {
	seen := make(map[string]struct{}, len(skills))
	out := make([]string, 0, len(skills))
	for _, s := range skills {
		n := strings.ToLower(strings.TrimSpace(s))
		if n == "" {
			continue
		}
		if _, ok := seen[n]; ok {
			continue
		}
		seen[n] = struct{}{}
		out = append(out, n)
	}
	return out
}

// Validate enforces the Contractor invariants.
func (c *Contractor) Validate() error {
	if len(c.WorkingHours) == 0 {
		return InvalidArgument("contractor must have at least one working-hours entry")
	}
	for _, wh := range c.WorkingHours {
		if wh.StartLocal == "" || wh.EndLocal == "" {
			return InvalidArgument("working hours entry missing start or end")
		}
	}
	if c.BaseLocation.Latitude < -90 || c.BaseLocation.Latitude > 90 {
		return InvalidArgument("contractor latitude out of range")
	}
	if c.BaseLocation.Longitude < -180 || c.BaseLocation.Longitude > 180 {
		return InvalidArgument("contractor longitude out of range")
	}
	c.Skills = NormalizeSkills(c.Skills)
	return nil
}

// HasSkills reports whether c's normalized skill set is a superset of required.
func (c *Contractor) HasSkills(required []string) bool {
	have := make(map[string]struct{}, len(c.Skills))
	for _, s := range c.Skills {
		have[s] = struct{}{}
	}
	for _, r := range NormalizeSkills(required) {
		if _, ok := have[r]; !ok {
			return false
		}
	}
	return true
}

// JobStatus is the job status-machine state. See DESIGN.md for the
// resolution collapsing two conflicting status enums into one.
type JobStatus string

const (
	JobScheduled  JobStatus = "Scheduled"
	JobInProgress JobStatus = "InProgress"
	JobCompleted  JobStatus = "Completed"
	JobCancelled  JobStatus = "Cancelled"
)

var jobTransitions = map[JobStatus][]JobStatus{
	JobScheduled:  {JobInProgress, JobCancelled},
	JobInProgress: {JobCompleted, JobCancelled},
	JobCompleted:  {},
	JobCancelled:  {},
}

// CanTransition reports whether moving from s to next is a legal job status
// transition.
func (s JobStatus) CanTransition(next JobStatus) bool {
	for _, allowed := range jobTransitions[s] {
		if allowed == next {
			return true
		}
	}
	return false
}

// JobPriority ranks urgency; Rush jobs bypass the fatigue soft-cap.
type JobPriority string

const (
	PriorityNormal JobPriority = "Normal"
	PriorityHigh   JobPriority = "High"
	PriorityRush   JobPriority = "Rush"
)

// Job is a unit of work. AssignmentIDs is not capped: nothing here or in
// AssignConfirm stops a second assignment from being appended.
type Job struct {
	outbox
	ID                   uuid.UUID   `json:"id" db:"id"`
	Type                 string      `json:"type" db:"type"`
	DurationMinutes      int         `json:"durationMinutes" db:"duration_minutes"`
	Location             GeoLocation `json:"location" db:"location"`
	ServiceWindow        TimeWindow  `json:"serviceWindow" db:"service_window"`
	Priority             JobPriority `json:"priority" db:"priority"`
	DesiredDate          time.Time   `json:"desiredDate" db:"desired_date"`
	RequiredSkills       []string    `json:"requiredSkills" db:"required_skills"`
	Status               JobStatus   `json:"status" db:"status"`
	AssignmentIDs        []uuid.UUID `json:"assignmentIds" db:"assignment_ids"`
	LatestAuditID        *uuid.UUID  `json:"latestAuditId,omitempty" db:"latest_audit_id"`
	CreatedAt            time.Time   `json:"createdAt" db:"created_at"`
	UpdatedAt            time.Time   `json:"updatedAt" db:"updated_at"`
}

// NewJob constructs a Job in its initial Scheduled status.
func NewJob(jobType string, durationMinutes int, location GeoLocation, window TimeWindow, priority JobPriority, requiredSkills []string) (*Job, error) {
	if durationMinutes <= 0 {
		return nil, InvalidArgument("job duration must be positive")
	}
	return &Job{
		ID:              uuid.New(),
		Type:            jobType,
		DurationMinutes: durationMinutes,
		Location:        location,
		ServiceWindow:   window,
		Priority:        priority,
		RequiredSkills:  NormalizeSkills(requiredSkills),
		Status:          JobScheduled,
		CreatedAt:        time.Now().UTC(),
		UpdatedAt:        time.Now().UTC(),
	}, nil
}

// Transition moves the job to next, raising no event itself; mutation
// handlers publish the matching realtime event after persistence succeeds.
func (j *Job) Transition(next JobStatus) error {
	if !j.Status.CanTransition(next) {
		return InvalidState("cannot transition job from " + string(j.Status) + " to " + string(next))
	}
	j.Status = next
	j.UpdatedAt = time.Now().UTC()
	return nil
}

// Reschedule replaces the job's service window, used by the Reschedule
// mutation handler after re-validating availability.
func (j *Job) Reschedule(window TimeWindow) error {
	if j.Status == JobCompleted || j.Status == JobCancelled {
		return InvalidState("cannot reschedule a " + string(j.Status) + " job")
	}
	j.ServiceWindow = window
	j.UpdatedAt = time.Now().UTC()
	return nil
}

// AssignmentStatus is the Assignment status-machine state.
type AssignmentStatus string

const (
	AssignmentPending    AssignmentStatus = "Pending"
	AssignmentConfirmed  AssignmentStatus = "Confirmed"
	AssignmentInProgress AssignmentStatus = "InProgress"
	AssignmentCompleted  AssignmentStatus = "Completed"
	AssignmentCancelled  AssignmentStatus = "Cancelled"
)

func (s AssignmentStatus) IsTerminal() bool {
	return s == AssignmentCompleted || s == AssignmentCancelled
}

// AssignmentSource distinguishes an automated recommendation acceptance from
// a manually created assignment.
type AssignmentSource string

const (
	SourceAuto   AssignmentSource = "Auto"
	SourceManual AssignmentSource = "Manual"
)

// Assignment binds a Job to a Contractor for a concrete window.
type Assignment struct {
	outbox
	ID           uuid.UUID        `json:"id" db:"id"`
	JobID        uuid.UUID        `json:"jobId" db:"job_id"`
	ContractorID uuid.UUID        `json:"contractorId" db:"contractor_id"`
	Window       TimeWindow       `json:"window" db:"window"`
	Status       AssignmentStatus `json:"status" db:"status"`
	Source       AssignmentSource `json:"source" db:"source"`
	AuditID      *uuid.UUID       `json:"auditId,omitempty" db:"audit_id"`
	CreatedAt    time.Time        `json:"createdAt" db:"created_at"`
	UpdatedAt    time.Time        `json:"updatedAt" db:"updated_at"`
}

// NewAssignment constructs a Pending (or directly Confirmed, for the manual
// path) assignment for the given job/contractor/window.
func NewAssignment(jobID, contractorID uuid.UUID, window TimeWindow, source AssignmentSource) *Assignment {
	status := AssignmentPending
	if source == SourceManual {
		status = AssignmentConfirmed
	}
	return &Assignment{
		ID:           uuid.New(),
		JobID:        jobID,
		ContractorID: contractorID,
		Window:       window,
		Status:       status,
		Source:       source,
		CreatedAt:    time.Now().UTC(),
		UpdatedAt:    time.Now().UTC(),
	}
}

// Cancel marks the assignment Cancelled unless it is already terminal.
func (a *Assignment) Cancel() error {
	if a.Status.IsTerminal() {
		return InvalidState("assignment already " + string(a.Status))
	}
	a.Status = AssignmentCancelled
	a.UpdatedAt = time.Now().UTC()
	return nil
}

// Reschedule moves a non-terminal assignment to a new window.
func (a *Assignment) Reschedule(window TimeWindow) error {
	if a.Status.IsTerminal() {
		return InvalidState("cannot reschedule a " + string(a.Status) + " assignment")
	}
	a.Window = window
	a.UpdatedAt = time.Now().UTC()
	return nil
}

// AuditRecommendation is an immutable snapshot of one recommendation request.
type AuditRecommendation struct {
	ID                     uuid.UUID       `json:"id" db:"id"`
	RequestID              uuid.UUID       `json:"requestId" db:"request_id"`
	RequestPayload         json.RawMessage `json:"requestPayload" db:"request_payload"`
	CandidatesJSON         json.RawMessage `json:"candidatesJson" db:"candidates_json"`
	ConfigVersion          int             `json:"configVersion" db:"config_version"`
	ActorID                string          `json:"actorId" db:"actor_id"`
	SelectedContractorID   *uuid.UUID      `json:"selectedContractorId,omitempty" db:"selected_contractor_id"`
	CreatedAt              time.Time       `json:"createdAt" db:"created_at"`
}

// EventLog is the append-only audit trail of every outbound realtime event.
type EventLog struct {
	ID             uuid.UUID       `json:"id" db:"id"`
	EventType      string          `json:"eventType" db:"event_type"`
	PayloadJSON    json.RawMessage `json:"payloadJson" db:"payload_json"`
	PublishedAtUTC time.Time       `json:"publishedAtUtc" db:"published_at_utc"`
	PublishedTo    []string        `json:"publishedTo" db:"published_to"`
}

// SystemConfiguration carries the versioned lists of allowed job types and
// skills.
type SystemConfiguration struct {
	Version       int      `json:"version" db:"version"`
	AllowedTypes  []string `json:"allowedTypes" db:"allowed_types"`
	AllowedSkills []string `json:"allowedSkills" db:"allowed_skills"`
}

// RotationConfig controls the scoring pipeline's rotation boost.
type RotationConfig struct {
	Enabled                   bool    `json:"enabled"`
	Boost                     float64 `json:"boost"`
	UnderUtilizationThreshold float64 `json:"underUtilizationThreshold"`
}

// WeightsConfig is the versioned scoring configuration; exactly one instance
// has IsActive=true at any time.
type WeightsConfig struct {
	Version               int             `json:"version" db:"version"`
	IsActive              bool            `json:"isActive" db:"is_active"`
	AvailabilityWeight    float64         `json:"availabilityWeight" db:"availability_weight"`
	RatingWeight          float64         `json:"ratingWeight" db:"rating_weight"`
	DistanceWeight        float64         `json:"distanceWeight" db:"distance_weight"`
	TieBreakers           []string        `json:"tieBreakers" db:"tie_breakers"`
	Rotation              RotationConfig  `json:"rotation" db:"rotation"`
}

// Validate enforces the weight-sum and range constraints.
func (w *WeightsConfig) Validate() error {
	for _, v := range []float64{w.AvailabilityWeight, w.RatingWeight, w.DistanceWeight} {
		if v < 0 || v > 1 {
			return InvalidConfig("scoring weights must each be in [0,1]")
		}
	}
	sum := w.AvailabilityWeight + w.RatingWeight + w.DistanceWeight
	if sum < 0.99 || sum > 1.01 {
		return InvalidConfig("scoring weights must sum to 1.0")
	}
	if w.Rotation.Boost < 0 || w.Rotation.Boost > 20 {
		return InvalidConfig("rotation boost must be in [0,20]")
	}
	if w.Rotation.Enabled && (w.Rotation.UnderUtilizationThreshold <= 0 || w.Rotation.UnderUtilizationThreshold >= 1) {
		return InvalidConfig("rotation underutilization threshold must be in (0,1)")
	}
	return nil
}

// RaiseEvent exposes the embedded outbox's raise method to callers outside
// the package (mutation handlers live in internal/services).
func (j *Job) RaiseEvent(eventType string, payload interface{}) {
	j.raise(eventType, payload)
}

func (a *Assignment) RaiseEvent(eventType string, payload interface{}) {
	a.raise(eventType, payload)
}
