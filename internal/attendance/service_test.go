package attendance

import (
	"context"
	"errors"
	"sort"
	"sync"
	"testing"
	"time"

	"rollcall/internal/clock"
	"rollcall/internal/member"
)

func TestMarkingService_Mark(t *testing.T) {
	t.Parallel()

	// Monday inside the check-in window.
	now := time.Date(2025, 1, 6, 7, 30, 0, 0, time.UTC)
	owner := "owner-1"

	makeSvc := func(clk clock.Clock, members ...member.Member) (*MarkingService, *fakeEventRepo) {
		repo := newFakeEventRepo()
		dir := &fakeDirectory{members: members}
		return NewMarkingService(dir, repo, clk), repo
	}
	alice := member.Member{ID: "m-1", OwnerID: owner, Name: "Alice", Code: "A100"}

	t.Run("valid code succeeds exactly once per day", func(t *testing.T) {
		svc, repo := makeSvc(clock.NewFixed(now), alice)

		evt, err := svc.Mark(context.Background(), "A100")
		if err != nil {
			t.Fatalf("expected no error, got %v", err)
		}
		if evt.MemberName != "Alice" || evt.OwnerID != owner {
			t.Fatalf("unexpected event %+v", evt)
		}
		if !evt.OccurredAt.Equal(now) {
			t.Fatalf("event timestamp %v, want %v", evt.OccurredAt, now)
		}

		if _, err := svc.Mark(context.Background(), "A100"); !errors.Is(err, ErrAlreadyMarked) {
			t.Fatalf("second mark: expected ErrAlreadyMarked, got %v", err)
		}
		if repo.count() != 1 {
			t.Fatalf("expected 1 stored event, got %d", repo.count())
		}
	})

	t.Run("empty code writes nothing", func(t *testing.T) {
		svc, repo := makeSvc(clock.NewFixed(now), alice)

		if _, err := svc.Mark(context.Background(), ""); !errors.Is(err, ErrCodeRequired) {
			t.Fatalf("expected ErrCodeRequired, got %v", err)
		}
		if repo.count() != 0 {
			t.Fatalf("expected no stored events, got %d", repo.count())
		}
	})

	t.Run("unknown code writes nothing", func(t *testing.T) {
		svc, repo := makeSvc(clock.NewFixed(now), alice)

		if _, err := svc.Mark(context.Background(), "NOPE"); !errors.Is(err, ErrUnknownCode) {
			t.Fatalf("expected ErrUnknownCode, got %v", err)
		}
		if repo.count() != 0 {
			t.Fatalf("expected no stored events, got %d", repo.count())
		}
	})

	t.Run("weekend rejected even inside window", func(t *testing.T) {
		saturday := time.Date(2025, 1, 4, 7, 30, 0, 0, time.UTC)
		svc, repo := makeSvc(clock.NewFixed(saturday), alice)

		if _, err := svc.Mark(context.Background(), "A100"); !errors.Is(err, ErrWeekend) {
			t.Fatalf("expected ErrWeekend, got %v", err)
		}
		if repo.count() != 0 {
			t.Fatalf("expected no stored events, got %d", repo.count())
		}
	})

	t.Run("outside window rejected regardless of code validity", func(t *testing.T) {
		late := time.Date(2025, 1, 6, 8, 30, 0, int(time.Millisecond), time.UTC)
		svc, repo := makeSvc(clock.NewFixed(late), alice)

		if _, err := svc.Mark(context.Background(), "A100"); !errors.Is(err, ErrOutsideWindow) {
			t.Fatalf("expected ErrOutsideWindow, got %v", err)
		}
		// The window gate fires before code resolution.
		if _, err := svc.Mark(context.Background(), "NOPE"); !errors.Is(err, ErrOutsideWindow) {
			t.Fatalf("expected ErrOutsideWindow for bad code too, got %v", err)
		}
		if repo.count() != 0 {
			t.Fatalf("expected no stored events, got %d", repo.count())
		}
	})

	t.Run("next day allows marking again", func(t *testing.T) {
		svc, repo := makeSvc(clock.NewFixed(now), alice)
		if _, err := svc.Mark(context.Background(), "A100"); err != nil {
			t.Fatalf("first day: %v", err)
		}

		tuesday := now.AddDate(0, 0, 1)
		svc2 := NewMarkingService(&fakeDirectory{members: []member.Member{alice}}, repo, clock.NewFixed(tuesday))
		if _, err := svc2.Mark(context.Background(), "A100"); err != nil {
			t.Fatalf("next day: %v", err)
		}
		if repo.count() != 2 {
			t.Fatalf("expected 2 stored events, got %d", repo.count())
		}
	})

	t.Run("concurrent duplicates yield one success", func(t *testing.T) {
		svc, repo := makeSvc(clock.NewFixed(now), alice)

		const callers = 2
		errs := make(chan error, callers)
		var wg sync.WaitGroup
		for i := 0; i < callers; i++ {
			wg.Add(1)
			go func() {
				defer wg.Done()
				_, err := svc.Mark(context.Background(), "A100")
				errs <- err
			}()
		}
		wg.Wait()
		close(errs)

		var successes, duplicates int
		for err := range errs {
			switch {
			case err == nil:
				successes++
			case errors.Is(err, ErrAlreadyMarked):
				duplicates++
			default:
				t.Fatalf("unexpected error: %v", err)
			}
		}
		if successes != 1 || duplicates != 1 {
			t.Fatalf("got %d successes and %d duplicates, want 1 and 1", successes, duplicates)
		}
		if repo.count() != 1 {
			t.Fatalf("expected exactly 1 stored event, got %d", repo.count())
		}
	})
}

func TestReportingService_ListMembersWithStatus(t *testing.T) {
	t.Parallel()

	now := time.Date(2025, 1, 6, 9, 0, 0, 0, time.UTC)
	owner := "owner-1"
	dir := &fakeDirectory{members: []member.Member{
		{OwnerID: owner, Name: "Alice", Code: "A100"},
		{OwnerID: owner, Name: "Bob", Code: "B200"},
		{OwnerID: owner, Name: "Cara", Code: "C300"},
	}}

	t.Run("absent check-in is an ordinary state", func(t *testing.T) {
		repo := newFakeEventRepo()
		checkin := time.Date(2025, 1, 6, 7, 12, 0, 0, time.UTC)
		repo.add(Event{ID: "e-1", OwnerID: owner, MemberName: "Bob", OccurredAt: checkin})

		svc := NewReportingService(dir, repo, clock.NewFixed(now))
		statuses, err := svc.ListMembersWithStatus(context.Background(), owner, time.Time{})
		if err != nil {
			t.Fatalf("expected no error, got %v", err)
		}
		if len(statuses) != 3 {
			t.Fatalf("expected 3 statuses, got %d", len(statuses))
		}

		var present int
		for _, st := range statuses {
			if st.LastCheckin == nil {
				continue
			}
			present++
			if st.Name != "Bob" {
				t.Fatalf("unexpected member with check-in: %s", st.Name)
			}
			if !st.LastCheckin.Equal(checkin) {
				t.Fatalf("last checkin %v, want %v", st.LastCheckin, checkin)
			}
		}
		if present != 1 {
			t.Fatalf("expected exactly 1 present member, got %d", present)
		}
	})

	t.Run("events outside the requested day are ignored", func(t *testing.T) {
		repo := newFakeEventRepo()
		repo.add(Event{ID: "e-1", OwnerID: owner, MemberName: "Alice",
			OccurredAt: time.Date(2025, 1, 3, 7, 12, 0, 0, time.UTC)})

		svc := NewReportingService(dir, repo, clock.NewFixed(now))
		statuses, err := svc.ListMembersWithStatus(context.Background(), owner, now)
		if err != nil {
			t.Fatalf("expected no error, got %v", err)
		}
		for _, st := range statuses {
			if st.LastCheckin != nil {
				t.Fatalf("expected no check-ins on %v, found one for %s", now, st.Name)
			}
		}
	})
}

func TestReportingService_MonthlyReport(t *testing.T) {
	t.Parallel()

	now := time.Date(2024, 3, 15, 10, 0, 0, 0, time.UTC)
	owner := "owner-1"
	dir := &fakeDirectory{members: []member.Member{
		{OwnerID: owner, Name: "Alice", Code: "A100"},
	}}

	t.Run("groups by local calendar date across a leap february", func(t *testing.T) {
		repo := newFakeEventRepo()
		repo.add(Event{ID: "e-1", OwnerID: owner, MemberName: "Alice",
			OccurredAt: time.Date(2024, 2, 29, 7, 15, 0, 0, time.UTC)})
		repo.add(Event{ID: "e-2", OwnerID: owner, MemberName: "Alice",
			OccurredAt: time.Date(2024, 2, 1, 8, 0, 0, 0, time.UTC)})
		repo.add(Event{ID: "e-3", OwnerID: owner, MemberName: "Alice",
			OccurredAt: time.Date(2024, 3, 1, 7, 5, 0, 0, time.UTC)})

		svc := NewReportingService(dir, repo, clock.NewFixed(now))
		grouped, err := svc.MonthlyReport(context.Background(), owner, 2024, 2)
		if err != nil {
			t.Fatalf("expected no error, got %v", err)
		}
		if len(grouped) != 2 {
			t.Fatalf("expected 2 day keys, got %d: %v", len(grouped), grouped)
		}
		if _, ok := grouped["2024-02-29"]; !ok {
			t.Fatalf("expected leap day key, got %v", grouped)
		}
		if _, ok := grouped["2024-03-01"]; ok {
			t.Fatalf("march event leaked into february report")
		}
		recs := grouped["2024-02-29"]
		if len(recs) != 1 || recs[0].Code != "A100" {
			t.Fatalf("unexpected leap day records %+v", recs)
		}
	})

	t.Run("deleted member reports code N/A", func(t *testing.T) {
		repo := newFakeEventRepo()
		repo.add(Event{ID: "e-1", OwnerID: owner, MemberName: "Ghost",
			OccurredAt: time.Date(2024, 2, 5, 7, 30, 0, 0, time.UTC)})

		svc := NewReportingService(dir, repo, clock.NewFixed(now))
		grouped, err := svc.MonthlyReport(context.Background(), owner, 2024, 2)
		if err != nil {
			t.Fatalf("expected no error, got %v", err)
		}
		recs := grouped["2024-02-05"]
		if len(recs) != 1 || recs[0].Code != "N/A" {
			t.Fatalf("expected code N/A for deleted member, got %+v", recs)
		}
	})

	t.Run("chronological order within a day", func(t *testing.T) {
		repo := newFakeEventRepo()
		dir := &fakeDirectory{members: []member.Member{
			{OwnerID: owner, Name: "Alice", Code: "A100"},
			{OwnerID: owner, Name: "Bob", Code: "B200"},
		}}
		repo.add(Event{ID: "e-2", OwnerID: owner, MemberName: "Bob",
			OccurredAt: time.Date(2024, 2, 5, 8, 10, 0, 0, time.UTC)})
		repo.add(Event{ID: "e-1", OwnerID: owner, MemberName: "Alice",
			OccurredAt: time.Date(2024, 2, 5, 7, 5, 0, 0, time.UTC)})

		svc := NewReportingService(dir, repo, clock.NewFixed(now))
		grouped, err := svc.MonthlyReport(context.Background(), owner, 2024, 2)
		if err != nil {
			t.Fatalf("expected no error, got %v", err)
		}
		recs := grouped["2024-02-05"]
		if len(recs) != 2 || recs[0].Name != "Alice" || recs[1].Name != "Bob" {
			t.Fatalf("expected chronological order Alice,Bob, got %+v", recs)
		}
	})

	t.Run("invalid period rejected before any query", func(t *testing.T) {
		repo := newFakeEventRepo()
		svc := NewReportingService(dir, repo, clock.NewFixed(now))

		for _, in := range []struct{ year, month int }{
			{0, 2}, {99, 2}, {2024, 0}, {2024, 13},
		} {
			if _, err := svc.MonthlyReport(context.Background(), owner, in.year, in.month); !errors.Is(err, ErrBadPeriod) {
				t.Fatalf("MonthlyReport(%d, %d): expected ErrBadPeriod, got %v", in.year, in.month, err)
			}
		}
	})
}

// fakeDirectory is an in-memory read-only member registry.
type fakeDirectory struct {
	members []member.Member
}

func (f *fakeDirectory) FindByCode(_ context.Context, code string) (*member.Member, error) {
	for i := range f.members {
		if f.members[i].Code == code {
			m := f.members[i]
			return &m, nil
		}
	}
	return nil, nil
}

func (f *fakeDirectory) ListByOwner(_ context.Context, ownerID string) ([]member.Member, error) {
	var out []member.Member
	for _, m := range f.members {
		if m.OwnerID == ownerID {
			out = append(out, m)
		}
	}
	return out, nil
}

// fakeEventRepo enforces the same per-day uniqueness the Postgres index does.
type fakeEventRepo struct {
	mu     sync.Mutex
	events []Event
}

func newFakeEventRepo() *fakeEventRepo {
	return &fakeEventRepo{}
}

func (f *fakeEventRepo) Insert(_ context.Context, evt Event) error {
	f.mu.Lock()
	defer f.mu.Unlock()
	for _, e := range f.events {
		if e.OwnerID == evt.OwnerID && e.MemberName == evt.MemberName && dayKey(e.OccurredAt) == dayKey(evt.OccurredAt) {
			return ErrAlreadyMarked
		}
	}
	f.events = append(f.events, evt)
	return nil
}

func (f *fakeEventRepo) LatestByMember(_ context.Context, ownerID string, from, to time.Time) (map[string]time.Time, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	latest := make(map[string]time.Time)
	for _, e := range f.events {
		if e.OwnerID != ownerID || e.OccurredAt.Before(from) || e.OccurredAt.After(to) {
			continue
		}
		if cur, ok := latest[e.MemberName]; !ok || e.OccurredAt.After(cur) {
			latest[e.MemberName] = e.OccurredAt
		}
	}
	return latest, nil
}

func (f *fakeEventRepo) ListByOwner(_ context.Context, ownerID string, from, to time.Time) ([]Event, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	var out []Event
	for _, e := range f.events {
		if e.OwnerID != ownerID || e.OccurredAt.Before(from) || e.OccurredAt.After(to) {
			continue
		}
		out = append(out, e)
	}
	sort.Slice(out, func(i, j int) bool { return out[i].OccurredAt.Before(out[j].OccurredAt) })
	return out, nil
}

func (f *fakeEventRepo) add(evt Event) {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.events = append(f.events, evt)
}

func (f *fakeEventRepo) count() int {
	f.mu.Lock()
	defer f.mu.Unlock()
	return len(f.events)
}
