package chat

import (
	"context"
	"errors"
	"testing"
	"time"

	"github.com/jackc/pgx/v5/pgconn"
	pgxmock "github.com/pashagolub/pgxmock/v4"

	"github.com/corvohq/helpdesk-ai/internal/customer"
)

func newTranscriptMock(t *testing.T) pgxmock.PgxPoolIface {
	t.Helper()
	mock, err := pgxmock.NewPool()
	if err != nil {
		t.Fatalf("failed to create pgx mock: %v", err)
	}
	t.Cleanup(mock.Close)
	return mock
}

func TestPostgresTranscriptStore_Append(t *testing.T) {
	mock := newTranscriptMock(t)
	store := newPostgresTranscriptStoreWithQuerier(mock)

	mock.ExpectExec("INSERT INTO chat_messages").
		WithArgs(pgxmock.AnyArg(), "room-1", RoleUser, "hello").
		WillReturnResult(pgxmock.NewResult("INSERT", 1))

	if err := store.Append(context.Background(), "room-1", RoleUser, "hello"); err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if err := mock.ExpectationsWereMet(); err != nil {
		t.Fatalf("unmet expectations: %v", err)
	}
}

func TestPostgresTranscriptStore_Append_UnknownRoom(t *testing.T) {
	mock := newTranscriptMock(t)
	store := newPostgresTranscriptStoreWithQuerier(mock)

	mock.ExpectExec("INSERT INTO chat_messages").
		WithArgs(pgxmock.AnyArg(), "ghost", RoleAssistant, "hi").
		WillReturnError(&pgconn.PgError{Code: "23503"})

	err := store.Append(context.Background(), "ghost", RoleAssistant, "hi")
	if !errors.Is(err, customer.ErrChatRoomNotFound) {
		t.Fatalf("expected ErrChatRoomNotFound, got %v", err)
	}
}

func TestPostgresTranscriptStore_Append_RejectsUnknownRole(t *testing.T) {
	mock := newTranscriptMock(t)
	store := newPostgresTranscriptStoreWithQuerier(mock)

	if err := store.Append(context.Background(), "room-1", "system", "nope"); err == nil {
		t.Fatal("expected role validation error")
	}
	// No query must reach the database.
	if err := mock.ExpectationsWereMet(); err != nil {
		t.Fatalf("unexpected database traffic: %v", err)
	}
}

func TestPostgresTranscriptStore_List(t *testing.T) {
	mock := newTranscriptMock(t)
	store := newPostgresTranscriptStoreWithQuerier(mock)
	base := time.Date(2026, 3, 1, 9, 0, 0, 0, time.UTC)

	mock.ExpectQuery("SELECT id, chat_room_id, role, content, created_at").
		WithArgs("room-1", 2).
		WillReturnRows(pgxmock.NewRows([]string{"id", "chat_room_id", "role", "content", "created_at"}).
			AddRow("m1", "room-1", RoleUser, "hi", base).
			AddRow("m2", "room-1", RoleAssistant, "hello!", base.Add(time.Second)))

	msgs, err := store.List(context.Background(), "room-1", 2)
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if len(msgs) != 2 {
		t.Fatalf("expected 2 messages, got %d", len(msgs))
	}
	if msgs[0].Content != "hi" || msgs[1].Content != "hello!" {
		t.Errorf("unexpected order: %+v", msgs)
	}
	if err := mock.ExpectationsWereMet(); err != nil {
		t.Fatalf("unmet expectations: %v", err)
	}
}

func TestPostgresTranscriptStore_List_DefaultLimit(t *testing.T) {
	mock := newTranscriptMock(t)
	store := newPostgresTranscriptStoreWithQuerier(mock)

	mock.ExpectQuery("SELECT id, chat_room_id, role, content, created_at").
		WithArgs("room-1", 100).
		WillReturnRows(pgxmock.NewRows([]string{"id", "chat_room_id", "role", "content", "created_at"}))

	msgs, err := store.List(context.Background(), "room-1", 0)
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if len(msgs) != 0 {
		t.Errorf("expected empty result, got %d", len(msgs))
	}
}

func TestInMemoryTranscriptStore_OrderAndLimit(t *testing.T) {
	store := NewInMemoryTranscriptStore()
	ctx := context.Background()

	for _, content := range []string{"one", "two", "three"} {
		if err := store.Append(ctx, "room-1", RoleUser, content); err != nil {
			t.Fatal(err)
		}
	}

	msgs, err := store.List(ctx, "room-1", 2)
	if err != nil {
		t.Fatal(err)
	}
	if len(msgs) != 2 || msgs[0].Content != "two" || msgs[1].Content != "three" {
		t.Errorf("expected the two most recent turns in order, got %+v", msgs)
	}
}
