package service

import (
	"context"
	"errors"
	"sync/atomic"
	"testing"
	"time"

	"trainer-availability/internal/models"
	"trainer-availability/internal/status"
)

func newAvailabilityFixture() (*AvailabilityService, *slotRepoStub, *absenceRepoStub, *trainerRepoStub, *recordingInvalidator) {
	trainers := twoTrainers()
	slots := newSlotRepoStub()
	absences := &absenceRepoStub{trainers: trainers}
	sync := &recordingInvalidator{}
	svc := NewAvailabilityService(slots, absences, trainers, sync, fixedWindow(), quietLogger())
	return svc, slots, absences, trainers, sync
}

func TestSetAvailabilityRejectsBeforeFloorWithoutStoreCall(t *testing.T) {
	t.Parallel()

	svc, slots, _, _, sync := newAvailabilityFixture()

	err := svc.SetAvailability(context.Background(), "1", d("2024-03-08"), true)
	if !errors.Is(err, models.ErrBeforeEditableFloor) {
		t.Fatalf("expected ErrBeforeEditableFloor, got %v", err)
	}
	if slots.calls != 0 {
		t.Fatalf("store must not be touched, got %d calls", slots.calls)
	}
	if sync.count() != 0 {
		t.Fatalf("failed edit must not invalidate")
	}
}

func TestSetAvailabilityInvalidatesOnSuccessOnly(t *testing.T) {
	t.Parallel()

	svc, slots, _, _, sync := newAvailabilityFixture()
	ctx := context.Background()

	if err := svc.SetAvailability(ctx, "1", d("2024-03-09"), true); err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if v, ok := slots.has(1, d("2024-03-09")); !ok || !v {
		t.Fatalf("slot not saved")
	}
	if sync.count() != 1 {
		t.Fatalf("expected one invalidation, got %d", sync.count())
	}

	slots.err = errStore
	if err := svc.SetAvailability(ctx, "1", d("2024-03-10"), true); !errors.Is(err, errStore) {
		t.Fatalf("expected store error, got %v", err)
	}
	if sync.count() != 1 {
		t.Fatalf("failure must not invalidate, got %d", sync.count())
	}
}

func TestSetAvailabilityUnknownTrainer(t *testing.T) {
	t.Parallel()

	svc, _, _, _, _ := newAvailabilityFixture()
	for _, id := range []models.TrainerID{"42", "abc"} {
		if err := svc.SetAvailability(context.Background(), id, d("2024-03-10"), true); !errors.Is(err, models.ErrTrainerNotFound) {
			t.Errorf("%s: expected ErrTrainerNotFound, got %v", id, err)
		}
	}
}

func TestClearAvailability(t *testing.T) {
	t.Parallel()

	svc, slots, _, _, sync := newAvailabilityFixture()
	ctx := context.Background()
	_ = slots.SetDay(ctx, 2, d("2024-03-12"), true)

	if err := svc.ClearAvailability(ctx, "2", d("2024-03-12")); err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if _, ok := slots.has(2, d("2024-03-12")); ok {
		t.Fatalf("slot must be removed")
	}
	if sync.count() != 1 {
		t.Fatalf("expected invalidation")
	}
}

func TestLookupSlotsGroupsByTrainer(t *testing.T) {
	t.Parallel()

	svc, slots, _, _, _ := newAvailabilityFixture()
	ctx := context.Background()
	_ = slots.SetDay(ctx, 1, d("2024-03-05"), true)
	_ = slots.SetDay(ctx, 1, d("2024-04-05"), true)

	got, err := svc.LookupSlots(ctx, d("2024-03-01"), d("2024-03-31"))
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if len(got) != 2 {
		t.Fatalf("expected rows for both trainers (admins excluded), got %d", len(got))
	}
	if got[0].ID != "1" || got[0].Name != "Anna" || len(got[0].Slots) != 1 {
		t.Fatalf("unexpected first row %+v", got[0])
	}
	if got[1].Slots == nil || len(got[1].Slots) != 0 {
		t.Fatalf("trainer without slots must have an empty list, got %+v", got[1].Slots)
	}

	if _, err := svc.LookupSlots(ctx, d("2024-03-31"), d("2024-03-01")); !errors.Is(err, models.ErrInvalidDateRange) {
		t.Fatalf("expected ErrInvalidDateRange, got %v", err)
	}
}

func TestLookupAbsenceDatesClipsToWindow(t *testing.T) {
	t.Parallel()

	svc, _, absences, _, _ := newAvailabilityFixture()
	absences.add(1, "2024-02-27", "2024-03-02", models.RequestApproved)
	absences.add(1, "2024-03-10", "2024-03-11", models.RequestPending)
	absences.add(2, "2024-03-15", "2024-03-15", models.RequestRejected)

	got, err := svc.LookupAbsenceDates(context.Background(), d("2024-03-01"), d("2024-03-31"))
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	anna := got[0]
	if len(anna.ApprovedDates) != 2 || anna.ApprovedDates[0] != d("2024-03-01") || anna.ApprovedDates[1] != d("2024-03-02") {
		t.Fatalf("approved dates must be clipped to window: %v", anna.ApprovedDates)
	}
	if len(anna.PendingDates) != 2 {
		t.Fatalf("expected 2 pending dates, got %v", anna.PendingDates)
	}
	if len(got[1].ApprovedDates)+len(got[1].PendingDates) != 0 {
		t.Fatalf("rejected requests must not produce dates: %+v", got[1])
	}
}

func TestLoadTablesDegradesOnLookupFailure(t *testing.T) {
	t.Parallel()

	svc, slots, absences, _, _ := newAvailabilityFixture()
	ctx := context.Background()
	_ = slots.SetDay(ctx, 1, d("2024-03-05"), true)
	absences.add(1, "2024-03-06", "2024-03-06", models.RequestApproved)
	slots.err = errStore

	tables := svc.LoadTables(ctx, d("2024-03-01"), d("2024-03-31"))
	if got := status.Resolve("1", d("2024-03-05"), tables); got != models.StatusNone {
		t.Fatalf("failed slot lookup must resolve to none, got %s", got)
	}
	if got := status.Resolve("1", d("2024-03-06"), tables); got != models.StatusApprovedAbsence {
		t.Fatalf("absence lookup still works, got %s", got)
	}
}

func TestResolveWindow(t *testing.T) {
	t.Parallel()

	svc, slots, absences, _, _ := newAvailabilityFixture()
	ctx := context.Background()
	_ = slots.SetDay(ctx, 1, d("2024-03-05"), true)
	_ = slots.SetDay(ctx, 1, d("2024-03-06"), false)
	absences.add(1, "2024-03-05", "2024-03-05", models.RequestApproved)

	cells, err := svc.ResolveWindow(ctx, "1", d("2024-03-05"), d("2024-03-07"))
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	want := []models.DayStatus{models.StatusApprovedAbsence, models.StatusUnavailable, models.StatusNone}
	for i, c := range cells {
		if c.Status != want[i] {
			t.Errorf("%s: expected %s, got %s", c.Date, want[i], c.Status)
		}
	}
}

func TestLookupAfterMutationSeesTheWrite(t *testing.T) {
	t.Parallel()

	svc, slots, _, _, sync := newAvailabilityFixture()
	ctx := context.Background()
	from, to := d("2024-03-01"), d("2024-03-31")

	entered := make(chan struct{})
	release := make(chan struct{})
	var blocked atomic.Bool
	slots.afterSnapshot = func() {
		if blocked.CompareAndSwap(false, true) {
			close(entered)
			<-release
		}
	}

	early := make(chan []models.TrainerSlots, 1)
	go func() {
		got, _ := svc.LookupSlots(ctx, from, to)
		early <- got
	}()
	<-entered

	if err := svc.SetAvailability(ctx, "1", d("2024-03-12"), true); err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if sync.count() != 1 {
		t.Fatalf("expected one invalidation, got %d", sync.count())
	}

	// перечитывание после сигнала не ждет запроса, начатого до записи
	got, err := svc.LookupSlots(ctx, from, to)
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if got[0].ID != "1" || len(got[0].Slots) != 1 || got[0].Slots[0].Date != d("2024-03-12") {
		t.Fatalf("lookup after the write must include it, got %+v", got[0])
	}

	close(release)
	if stale := <-early; len(stale[0].Slots) != 0 {
		t.Fatalf("earlier lookup read before the write, got %+v", stale[0])
	}
}

func TestInvalidateFromOtherServicesResetsSharedLookups(t *testing.T) {
	t.Parallel()

	svc, _, absences, trainers, sync := newAvailabilityFixture()
	absenceSvc := NewAbsenceService(absences, trainers, svc, fixedWindow(), quietLogger())
	ctx := context.Background()
	from, to := d("2024-03-01"), d("2024-03-31")

	before := svc.lookupKey("absences", from, to)
	if _, err := absenceSvc.Submit(ctx, "1", d("2024-03-10"), d("2024-03-11"), ""); err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if svc.lookupKey("absences", from, to) == before {
		t.Fatalf("a mutation elsewhere must start a new lookup generation")
	}
	if sync.count() != 1 {
		t.Fatalf("signal must reach subscribers, got %d", sync.count())
	}

	got, err := svc.LookupAbsenceDates(ctx, from, to)
	if err != nil || len(got[0].PendingDates) != 2 {
		t.Fatalf("expected the new pending dates, got %+v %v", got, err)
	}
}

func TestSharedLookupSurvivesCallerCancellation(t *testing.T) {
	t.Parallel()

	svc, slots, _, _, _ := newAvailabilityFixture()
	_ = slots.SetDay(context.Background(), 1, d("2024-03-05"), true)
	from, to := d("2024-03-01"), d("2024-03-31")

	entered := make(chan struct{})
	release := make(chan struct{})
	var blocked atomic.Bool
	slots.afterSnapshot = func() {
		if blocked.CompareAndSwap(false, true) {
			close(entered)
			<-release
		}
	}

	ctx, cancel := context.WithCancel(context.Background())
	first := make(chan error, 1)
	go func() {
		_, err := svc.LookupSlots(ctx, from, to)
		first <- err
	}()
	<-entered

	joined := make(chan []models.TrainerSlots, 1)
	joinedErr := make(chan error, 1)
	go func() {
		got, err := svc.LookupSlots(context.Background(), from, to)
		joined <- got
		joinedErr <- err
	}()
	time.Sleep(20 * time.Millisecond)

	cancel()
	select {
	case err := <-first:
		if !errors.Is(err, context.Canceled) {
			t.Fatalf("cancelled caller must get context.Canceled, got %v", err)
		}
	case <-time.After(2 * time.Second):
		t.Fatalf("cancelled caller must not wait for the shared lookup")
	}

	close(release)
	got := <-joined
	if err := <-joinedErr; err != nil {
		t.Fatalf("other callers must not fail when one cancels: %v", err)
	}
	if len(got[0].Slots) != 1 {
		t.Fatalf("unexpected slots %+v", got[0])
	}
}

func TestLookupWindowIsCapped(t *testing.T) {
	t.Parallel()

	svc, slots, _, _, _ := newAvailabilityFixture()
	ctx := context.Background()

	if _, err := svc.ResolveWindow(ctx, "1", d("0001-01-01"), d("9999-12-31")); !errors.Is(err, models.ErrWindowTooLarge) {
		t.Fatalf("expected ErrWindowTooLarge, got %v", err)
	}
	if _, err := svc.LookupSlots(ctx, d("2024-01-01"), d("2025-01-01")); !errors.Is(err, models.ErrWindowTooLarge) {
		t.Fatalf("367 days must be rejected, got %v", err)
	}
	if slots.calls != 0 {
		t.Fatalf("oversized windows must not reach the store, got %d calls", slots.calls)
	}
	if _, err := svc.LookupAbsenceDates(ctx, d("2024-01-01"), d("2024-12-31")); err != nil {
		t.Fatalf("366 days must be accepted: %v", err)
	}
}
