package service

import (
	"context"
	"errors"
	"testing"

	"github.com/happeningnu/happening/internal/metrics"
	"github.com/happeningnu/happening/internal/model"
	"github.com/happeningnu/happening/internal/testutil/memstore"
	"github.com/happeningnu/happening/internal/validation"
)

func newEventService(t *testing.T) (*EventService, *memstore.Store, *metrics.InMemoryRecorder) {
	t.Helper()
	store := memstore.New()
	rec := metrics.NewInMemory()
	return NewEventService(store, rec, nil), store, rec
}

func seedUser(t *testing.T, store *memstore.Store, username string) *model.User {
	t.Helper()
	u := &model.User{Username: username, Email: username + "@example.com", Password: "x"}
	if err := store.CreateUser(context.Background(), u); err != nil {
		t.Fatalf("CreateUser failed: %v", err)
	}
	return u
}

func boardGames() validation.NewEventForm {
	return validation.NewEventForm{
		Title:    "Board Games Night",
		URL:      "https://example.com",
		Location: "Lund",
		Date:     "2025-06-01",
		Category: "Social",
	}
}

func TestEventService_Create(t *testing.T) {
	t.Parallel()

	svc, store, rec := newEventService(t)
	ctx := context.Background()
	alice := seedUser(t, store, "alice")

	event, err := svc.Create(ctx, alice.ID, boardGames())
	if err != nil {
		t.Fatalf("Create failed: %v", err)
	}
	if event.ID == 0 || event.UserID != alice.ID {
		t.Errorf("unexpected event: %+v", event)
	}
	if rec.Snapshot().EventsCreated != 1 {
		t.Error("creation should be counted")
	}
}

func TestEventService_CreateRejects(t *testing.T) {
	t.Parallel()

	svc, store, _ := newEventService(t)
	ctx := context.Background()
	alice := seedUser(t, store, "alice")

	if _, err := svc.Create(ctx, 0, boardGames()); !errors.Is(err, ErrUnauthenticated) {
		t.Errorf("anonymous: expected ErrUnauthenticated, got %v", err)
	}

	// Authentication is checked before the form.
	bad := boardGames()
	bad.Title = "x"
	if _, err := svc.Create(ctx, 0, bad); !errors.Is(err, ErrUnauthenticated) {
		t.Errorf("anonymous invalid: expected ErrUnauthenticated, got %v", err)
	}

	bad.URL = "nope"
	_, err := svc.Create(ctx, alice.ID, bad)
	msgs, ok := validation.Messages(err)
	if !ok || len(msgs) != 2 {
		t.Errorf("expected two validation messages, got %v", err)
	}

	all, _ := svc.ListAll(ctx)
	if len(all) != 0 {
		t.Errorf("nothing should be persisted, got %d events", len(all))
	}
}

func TestEventService_Listings(t *testing.T) {
	t.Parallel()

	svc, store, _ := newEventService(t)
	ctx := context.Background()
	alice := seedUser(t, store, "alice")
	bob := seedUser(t, store, "bobby")

	late := boardGames()
	late.Title, late.Date = "Christmas Party", "2025-12-24"
	early := boardGames()
	early.Title, early.Date = "New Year Run", "2025-01-01"

	if _, err := svc.Create(ctx, alice.ID, late); err != nil {
		t.Fatalf("Create failed: %v", err)
	}
	if _, err := svc.Create(ctx, bob.ID, early); err != nil {
		t.Fatalf("Create failed: %v", err)
	}

	all, err := svc.ListAll(ctx)
	if err != nil {
		t.Fatalf("ListAll failed: %v", err)
	}
	if len(all) != 2 || all[0].Title != "New Year Run" || all[1].Title != "Christmas Party" {
		t.Fatalf("unexpected order: %+v", all)
	}
	if all[0].Username != "bobby" || all[1].Username != "alice" {
		t.Errorf("usernames not joined: %q, %q", all[0].Username, all[1].Username)
	}

	mine, err := svc.ListByOwner(ctx, alice.ID)
	if err != nil {
		t.Fatalf("ListByOwner failed: %v", err)
	}
	if len(mine) != 1 || mine[0].Title != "Christmas Party" {
		t.Errorf("unexpected owner listing: %+v", mine)
	}

	anon, err := svc.ListByOwner(ctx, 0)
	if err != nil || len(anon) != 0 {
		t.Errorf("anonymous owner listing should be empty, got %v %v", anon, err)
	}
}

func TestEventService_Delete(t *testing.T) {
	t.Parallel()

	svc, store, rec := newEventService(t)
	ctx := context.Background()
	alice := seedUser(t, store, "alice")
	bob := seedUser(t, store, "bobby")

	event, _ := svc.Create(ctx, alice.ID, boardGames())
	if _, err := svc.ToggleAttendance(ctx, bob.ID, event.ID); err != nil {
		t.Fatalf("ToggleAttendance failed: %v", err)
	}

	tests := []struct {
		name    string
		userID  int64
		eventID int64
		wantErr error
	}{
		{"anonymous", 0, event.ID, ErrUnauthenticated},
		{"not owner", bob.ID, event.ID, ErrNotOwner},
		{"missing", alice.ID, 9999, ErrEventNotFound},
	}
	for _, tt := range tests {
		if err := svc.Delete(ctx, tt.userID, tt.eventID); !errors.Is(err, tt.wantErr) {
			t.Errorf("%s: error = %v, want %v", tt.name, err, tt.wantErr)
		}
	}
	if n, _ := store.CountAttendees(ctx, event.ID); n != 1 {
		t.Fatalf("rejected deletes must not touch attendance, got %d", n)
	}

	if err := svc.Delete(ctx, alice.ID, event.ID); err != nil {
		t.Fatalf("owner Delete failed: %v", err)
	}
	if _, err := store.GetEventByID(ctx, event.ID); err == nil {
		t.Error("event should be gone")
	}
	if n, _ := store.CountAttendees(ctx, event.ID); n != 0 {
		t.Errorf("attendance should cascade, got %d", n)
	}
	if rec.Snapshot().EventsDeleted != 1 {
		t.Error("deletion should be counted once")
	}
}

func TestEventService_ToggleAttendance(t *testing.T) {
	t.Parallel()

	svc, store, rec := newEventService(t)
	ctx := context.Background()
	alice := seedUser(t, store, "alice")
	bob := seedUser(t, store, "bobby")
	event, _ := svc.Create(ctx, alice.ID, boardGames())

	steps := []struct {
		name   string
		userID int64
		want   int64
	}{
		{"alice joins", alice.ID, 1},
		{"bob joins", bob.ID, 2},
		{"anonymous sees count", 0, 2},
		{"alice leaves", alice.ID, 1},
		{"alice rejoins", alice.ID, 2},
	}
	for _, step := range steps {
		got, err := svc.ToggleAttendance(ctx, step.userID, event.ID)
		if err != nil {
			t.Fatalf("%s: %v", step.name, err)
		}
		if got != step.want {
			t.Errorf("%s: count = %d, want %d", step.name, got, step.want)
		}
	}

	snap := rec.Snapshot()
	if snap.AttendanceJoined != 3 || snap.AttendanceLeft != 1 {
		t.Errorf("toggle counters = %d/%d, want 3/1", snap.AttendanceJoined, snap.AttendanceLeft)
	}

	if _, err := svc.ToggleAttendance(ctx, alice.ID, 9999); !errors.Is(err, ErrEventNotFound) {
		t.Errorf("unknown event: expected ErrEventNotFound, got %v", err)
	}
	if n, _ := svc.ToggleAttendance(ctx, 0, 9999); n != 0 {
		t.Errorf("anonymous unknown event should report 0, got %d", n)
	}
}
