package api

import (
	"bytes"
	"context"
	"encoding/json"
	"io"
	"net/http"
	"net/http/httptest"
	"sync"
	"testing"
	"time"

	"trainer-availability/internal/models"
	"trainer-availability/internal/repository"
	"trainer-availability/internal/service"
	"trainer-availability/pkg/calendar"

	"github.com/gofiber/fiber/v2"
	"github.com/sirupsen/logrus"
	"gorm.io/driver/sqlite"
	"gorm.io/gorm"
	"gorm.io/gorm/logger"
)

type envelope struct {
	Code    int               `json:"code"`
	Status  string            `json:"status"`
	Message string            `json:"message"`
	Data    json.RawMessage   `json:"data"`
	Errors  map[string]string `json:"errors"`
}

type countingInvalidator struct {
	mu sync.Mutex
	n  int
}

func (c *countingInvalidator) Invalidate(string) {
	c.mu.Lock()
	c.n++
	c.mu.Unlock()
}

func (c *countingInvalidator) count() int {
	c.mu.Lock()
	defer c.mu.Unlock()
	return c.n
}

type fixture struct {
	app     *fiber.App
	sync    *countingInvalidator
	trainer *models.Trainer
}

func newFixture(t *testing.T) *fixture {
	t.Helper()

	db, err := gorm.Open(sqlite.Open(":memory:"), &gorm.Config{
		DisableForeignKeyConstraintWhenMigrating: true,
		Logger:                                   logger.Default.LogMode(logger.Silent),
	})
	if err != nil {
		t.Fatalf("open sqlite: %v", err)
	}
	sqlDB, _ := db.DB()
	sqlDB.SetMaxOpenConns(1)
	t.Cleanup(func() { _ = sqlDB.Close() })

	log := logrus.New()
	log.SetOutput(io.Discard)

	trainers, err := repository.NewGormTrainerRepository(db)
	if err != nil {
		t.Fatalf("trainer repo: %v", err)
	}
	slots, err := repository.NewGormAvailabilitySlotRepository(db, log)
	if err != nil {
		t.Fatalf("slot repo: %v", err)
	}
	absences, err := repository.NewGormAbsenceRequestRepository(db)
	if err != nil {
		t.Fatalf("absence repo: %v", err)
	}

	trainer := &models.Trainer{ChatID: 11, FirstName: "Anna", Role: models.RoleTrainer}
	if err := trainers.Create(context.Background(), trainer); err != nil {
		t.Fatalf("seed trainer: %v", err)
	}

	now := time.Date(2024, 3, 8, 12, 0, 0, 0, time.UTC)
	window := calendar.EditWindow{Now: func() time.Time { return now }, Lead: 24 * time.Hour}
	inv := &countingInvalidator{}

	availability := service.NewAvailabilityService(slots, absences, trainers, inv, window, log)
	app := NewApp(Handlers{
		Availability: &AvailabilityController{
			Availability: availability,
			Bulk:         service.NewBulkService(slots, absences, availability, window, log),
		},
		Absences: &AbsenceController{
			Absences: service.NewAbsenceService(absences, trainers, availability, window, log),
		},
	}, log)

	return &fixture{app: app, sync: inv, trainer: trainer}
}

func (f *fixture) do(t *testing.T, method, target string, body any) (*http.Response, envelope) {
	t.Helper()

	var reader io.Reader
	if body != nil {
		payload, err := json.Marshal(body)
		if err != nil {
			t.Fatalf("marshal: %v", err)
		}
		reader = bytes.NewReader(payload)
	}
	req := httptest.NewRequest(method, target, reader)
	if body != nil {
		req.Header.Set("Content-Type", "application/json")
	}

	resp, err := f.app.Test(req, -1)
	if err != nil {
		t.Fatalf("%s %s: %v", method, target, err)
	}
	defer resp.Body.Close()

	var env envelope
	if err := json.NewDecoder(resp.Body).Decode(&env); err != nil {
		t.Fatalf("%s %s: decode envelope: %v", method, target, err)
	}
	return resp, env
}

func TestWindowQueryValidation(t *testing.T) {
	f := newFixture(t)

	resp, env := f.do(t, http.MethodGet, "/api/availability/slots?date_from=2024-03-01", nil)
	if resp.StatusCode != fiber.StatusBadRequest {
		t.Fatalf("expected 400, got %d", resp.StatusCode)
	}
	if env.Status != "error" || env.Errors["DateTo"] != "required" {
		t.Fatalf("unexpected envelope %+v", env)
	}

	resp, env = f.do(t, http.MethodGet, "/api/availability/slots?date_from=2024-03-01&date_to=01.04.2024", nil)
	if resp.StatusCode != fiber.StatusBadRequest || env.Errors["DateTo"] != "isodate" {
		t.Fatalf("expected isodate error, got %d %+v", resp.StatusCode, env)
	}

	resp, _ = f.do(t, http.MethodGet, "/api/availability/slots?date_from=2024-03-31&date_to=2024-03-01", nil)
	if resp.StatusCode != fiber.StatusBadRequest {
		t.Fatalf("reversed window must be rejected, got %d", resp.StatusCode)
	}
}

func TestWindowLengthIsCapped(t *testing.T) {
	f := newFixture(t)

	for _, target := range []string{
		"/api/availability/status?trainer_id=1&date_from=0001-01-01&date_to=9999-12-31",
		"/api/availability/slots?date_from=2024-01-01&date_to=2025-01-01",
		"/api/availability/absence-dates?date_from=2000-01-01&date_to=2024-12-31",
	} {
		resp, env := f.do(t, http.MethodGet, target, nil)
		if resp.StatusCode != fiber.StatusBadRequest {
			t.Fatalf("%s: expected 400, got %d", target, resp.StatusCode)
		}
		if env.Message != models.ErrWindowTooLarge.Error() {
			t.Fatalf("%s: unexpected message %q", target, env.Message)
		}
	}

	// ровно год укладывается в лимит
	resp, _ := f.do(t, http.MethodGet, "/api/availability/status?trainer_id=1&date_from=2024-01-01&date_to=2024-12-31", nil)
	if resp.StatusCode != fiber.StatusOK {
		t.Fatalf("366-day window must be accepted, got %d", resp.StatusCode)
	}
}

func TestSetAvailabilityAndLookup(t *testing.T) {
	f := newFixture(t)

	resp, env := f.do(t, http.MethodPut, "/api/trainers/1/availability", map[string]any{"date": "2024-03-10", "available": true})
	if resp.StatusCode != fiber.StatusOK {
		t.Fatalf("expected 200, got %d: %s", resp.StatusCode, env.Message)
	}
	if resp.Header.Get("X-Request-ID") == "" {
		t.Fatalf("response must carry a request id")
	}
	if f.sync.count() != 1 {
		t.Fatalf("expected one invalidation, got %d", f.sync.count())
	}

	_, env = f.do(t, http.MethodGet, "/api/availability/slots?date_from=2024-03-01&date_to=2024-03-31", nil)
	var slots []models.TrainerSlots
	if err := json.Unmarshal(env.Data, &slots); err != nil {
		t.Fatalf("decode slots: %v", err)
	}
	if len(slots) != 1 || slots[0].ID != "1" || len(slots[0].Slots) != 1 {
		t.Fatalf("unexpected slots %+v", slots)
	}
	if s := slots[0].Slots[0]; s.StartTime != "00:00" || s.EndTime != "23:59" || !s.IsAvailable {
		t.Fatalf("expected full-day available slot, got %+v", s)
	}

	_, env = f.do(t, http.MethodGet, "/api/availability/status?trainer_id=1&date_from=2024-03-10&date_to=2024-03-11", nil)
	var cells []models.DayCell
	if err := json.Unmarshal(env.Data, &cells); err != nil {
		t.Fatalf("decode cells: %v", err)
	}
	if len(cells) != 2 || cells[0].Status != models.StatusAvailable || cells[1].Status != models.StatusNone {
		t.Fatalf("unexpected cells %+v", cells)
	}

	resp, _ = f.do(t, http.MethodDelete, "/api/trainers/1/availability/2024-03-10", nil)
	if resp.StatusCode != fiber.StatusOK {
		t.Fatalf("clear: expected 200, got %d", resp.StatusCode)
	}
}

func TestSetAvailabilityErrors(t *testing.T) {
	f := newFixture(t)

	resp, _ := f.do(t, http.MethodPut, "/api/trainers/1/availability", map[string]any{"date": "2024-03-08", "available": true})
	if resp.StatusCode != fiber.StatusBadRequest {
		t.Fatalf("before floor: expected 400, got %d", resp.StatusCode)
	}
	resp, _ = f.do(t, http.MethodPut, "/api/trainers/9/availability", map[string]any{"date": "2024-03-10", "available": true})
	if resp.StatusCode != fiber.StatusNotFound {
		t.Fatalf("unknown trainer: expected 404, got %d", resp.StatusCode)
	}
	resp, env := f.do(t, http.MethodPut, "/api/trainers/1/availability", map[string]any{"date": "2024-03-10"})
	if resp.StatusCode != fiber.StatusBadRequest || env.Errors["Available"] != "required" {
		t.Fatalf("missing flag: expected 400, got %d %+v", resp.StatusCode, env)
	}
	if f.sync.count() != 0 {
		t.Fatalf("failed edits must not invalidate")
	}
}

func TestAbsenceWorkflow(t *testing.T) {
	f := newFixture(t)

	resp, env := f.do(t, http.MethodPost, "/api/absence-requests", map[string]any{
		"trainer_id": 1, "date_from": "2024-03-10", "date_to": "2024-03-12", "reason": "отпуск",
	})
	if resp.StatusCode != fiber.StatusCreated {
		t.Fatalf("submit: expected 201, got %d: %s", resp.StatusCode, env.Message)
	}
	var created models.AbsenceRequestView
	if err := json.Unmarshal(env.Data, &created); err != nil {
		t.Fatalf("decode request: %v", err)
	}
	if created.Status != models.RequestPending || created.TrainerName != "Anna" {
		t.Fatalf("unexpected request %+v", created)
	}

	_, env = f.do(t, http.MethodGet, "/api/absence-requests?status=pending", nil)
	var list []models.AbsenceRequestView
	_ = json.Unmarshal(env.Data, &list)
	if len(list) != 1 {
		t.Fatalf("expected one pending request, got %d", len(list))
	}

	resp, _ = f.do(t, http.MethodPost, "/api/absence-requests/1/approve", nil)
	if resp.StatusCode != fiber.StatusOK {
		t.Fatalf("approve: expected 200, got %d", resp.StatusCode)
	}
	resp, _ = f.do(t, http.MethodPost, "/api/absence-requests/1/reject", map[string]any{"reason": "поздно"})
	if resp.StatusCode != fiber.StatusConflict {
		t.Fatalf("decided request: expected 409, got %d", resp.StatusCode)
	}
	resp, _ = f.do(t, http.MethodPost, "/api/absence-requests/99/approve", nil)
	if resp.StatusCode != fiber.StatusNotFound {
		t.Fatalf("missing request: expected 404, got %d", resp.StatusCode)
	}
	resp, _ = f.do(t, http.MethodPost, "/api/absence-requests/abc/approve", nil)
	if resp.StatusCode != fiber.StatusBadRequest {
		t.Fatalf("bad id: expected 400, got %d", resp.StatusCode)
	}

	_, env = f.do(t, http.MethodGet, "/api/availability/absence-dates?date_from=2024-03-01&date_to=2024-03-31", nil)
	var dates []models.TrainerAbsenceDates
	_ = json.Unmarshal(env.Data, &dates)
	if len(dates) != 1 || len(dates[0].ApprovedDates) != 3 || len(dates[0].PendingDates) != 0 {
		t.Fatalf("unexpected absence dates %+v", dates)
	}

	// submit + approve
	if f.sync.count() != 2 {
		t.Fatalf("expected two invalidations, got %d", f.sync.count())
	}
}

func TestBulkSkipsAbsenceDates(t *testing.T) {
	f := newFixture(t)

	f.do(t, http.MethodPost, "/api/absence-requests", map[string]any{
		"trainer_id": "1", "date_from": "2024-03-11", "date_to": "2024-03-12",
	})

	resp, env := f.do(t, http.MethodPost, "/api/trainers/1/availability/bulk", map[string]any{
		"month": "2024-03-01", "classification": "weekday",
	})
	if resp.StatusCode != fiber.StatusOK {
		t.Fatalf("bulk: expected 200, got %d: %s", resp.StatusCode, env.Message)
	}
	var result models.BulkResult
	if err := json.Unmarshal(env.Data, &result); err != nil {
		t.Fatalf("decode result: %v", err)
	}
	if len(result.Applied) != 13 || len(result.Skipped) != 2 {
		t.Fatalf("expected 13 applied and 2 skipped, got %d/%d", len(result.Applied), len(result.Skipped))
	}

	resp, env = f.do(t, http.MethodPost, "/api/trainers/1/availability/bulk", map[string]any{
		"month": "2024-03-01", "classification": "holidays",
	})
	if resp.StatusCode != fiber.StatusBadRequest || env.Errors["Classification"] != "oneof" {
		t.Fatalf("expected validation error, got %d %+v", resp.StatusCode, env)
	}
}
