package attendance

import (
	"context"
	"time"

	"github.com/google/uuid"

	"rollcall/internal/clock"
	"rollcall/internal/member"
)

// Event is one recorded check-in. Events are append-only: reporting reads
// them, and only a member deletion removes them. The member is referenced by
// name, freezing attribution at write time.
type Event struct {
	ID         string    `json:"id"`
	OwnerID    string    `json:"-"`
	MemberName string    `json:"name"`
	OccurredAt time.Time `json:"checkin"`
}

// Directory is the read-only view of the member registry.
type Directory interface {
	FindByCode(ctx context.Context, code string) (*member.Member, error)
	ListByOwner(ctx context.Context, ownerID string) ([]member.Member, error)
}

// EventRepository persists and reads check-in events. Insert must be atomic
// per (owner, member, day): concurrent duplicates get ErrAlreadyMarked.
type EventRepository interface {
	Insert(ctx context.Context, evt Event) error
	LatestByMember(ctx context.Context, ownerID string, from, to time.Time) (map[string]time.Time, error)
	ListByOwner(ctx context.Context, ownerID string, from, to time.Time) ([]Event, error)
}

// MarkingService validates and records check-ins.
type MarkingService struct {
	directory Directory
	events    EventRepository
	clock     clock.Clock
}

// NewMarkingService creates a marking service.
func NewMarkingService(directory Directory, events EventRepository, clk clock.Clock) *MarkingService {
	return &MarkingService{directory: directory, events: events, clock: clk}
}

// Mark records a check-in for the member holding code. The gates run in
// order and the first failure wins; nothing is written on any failure path.
func (s *MarkingService) Mark(ctx context.Context, code string) (Event, error) {
	if code == "" {
		return Event{}, ErrCodeRequired
	}

	now := s.clock.Now()
	if err := validateWindow(now); err != nil {
		return Event{}, err
	}

	m, err := s.directory.FindByCode(ctx, code)
	if err != nil {
		return Event{}, err
	}
	if m == nil {
		return Event{}, ErrUnknownCode
	}

	evt := Event{
		ID:         uuid.NewString(),
		OwnerID:    m.OwnerID,
		MemberName: m.Name,
		OccurredAt: now,
	}
	if err := s.events.Insert(ctx, evt); err != nil {
		return Event{}, err
	}
	return evt, nil
}

// MemberStatus is one member's check-in state for a given day. A missing
// check-in is an ordinary state, not an error.
type MemberStatus struct {
	Name        string     `json:"name"`
	Code        string     `json:"code"`
	LastCheckin *time.Time `json:"last_checkin,omitempty"`
}

// CheckinRecord is one event resolved against the current member snapshot.
type CheckinRecord struct {
	Name    string    `json:"name"`
	Code    string    `json:"code"`
	Checkin time.Time `json:"checkin"`
}

// ReportingService reads events; it never writes.
type ReportingService struct {
	directory Directory
	events    EventRepository
	clock     clock.Clock
}

// NewReportingService creates a reporting service.
func NewReportingService(directory Directory, events EventRepository, clk clock.Clock) *ReportingService {
	return &ReportingService{directory: directory, events: events, clock: clk}
}

// ListMembersWithStatus returns every member of the owner with their latest
// check-in inside the given day, or nil when they have none. A zero date
// means today.
func (s *ReportingService) ListMembersWithStatus(ctx context.Context, ownerID string, date time.Time) ([]MemberStatus, error) {
	if date.IsZero() {
		date = s.clock.Now()
	}
	from, to := dayBounds(date)

	members, err := s.directory.ListByOwner(ctx, ownerID)
	if err != nil {
		return nil, err
	}
	latest, err := s.events.LatestByMember(ctx, ownerID, from, to)
	if err != nil {
		return nil, err
	}

	statuses := make([]MemberStatus, 0, len(members))
	for _, m := range members {
		status := MemberStatus{Name: m.Name, Code: m.Code}
		if ts, ok := latest[m.Name]; ok {
			checkin := ts
			status.LastCheckin = &checkin
		}
		statuses = append(statuses, status)
	}
	return statuses, nil
}

// MonthlyReport groups the owner's check-ins for a month by local calendar
// date (YYYY-MM-DD), chronological within each day. Days without events are
// omitted. Events whose member has been deleted or renamed report code "N/A".
func (s *ReportingService) MonthlyReport(ctx context.Context, ownerID string, year, month int) (map[string][]CheckinRecord, error) {
	if year < 1000 || year > 9999 || month < 1 || month > 12 {
		return nil, ErrBadPeriod
	}

	loc := s.clock.Now().Location()
	from, to := monthBounds(year, month, loc)

	events, err := s.events.ListByOwner(ctx, ownerID, from, to)
	if err != nil {
		return nil, err
	}
	members, err := s.directory.ListByOwner(ctx, ownerID)
	if err != nil {
		return nil, err
	}

	codes := make(map[string]string, len(members))
	for _, m := range members {
		codes[m.Name] = m.Code
	}

	grouped := make(map[string][]CheckinRecord)
	for _, evt := range events {
		code, ok := codes[evt.MemberName]
		if !ok {
			code = "N/A"
		}
		key := dayKey(evt.OccurredAt.In(loc))
		grouped[key] = append(grouped[key], CheckinRecord{
			Name:    evt.MemberName,
			Code:    code,
			Checkin: evt.OccurredAt,
		})
	}
	return grouped, nil
}
