package customer

import (
	"context"
	"errors"
	"testing"
	"time"

	pgx "github.com/jackc/pgx/v5"
	pgxmock "github.com/pashagolub/pgxmock/v4"
)

func newMock(t *testing.T) pgxmock.PgxPoolIface {
	t.Helper()
	mock, err := pgxmock.NewPool()
	if err != nil {
		t.Fatalf("failed to create pgx mock: %v", err)
	}
	t.Cleanup(mock.Close)
	return mock
}

func TestPostgresRepository_FindByEmailPrefix(t *testing.T) {
	mock := newMock(t)
	repo := newPostgresRepositoryWithQuerier(mock)
	created := time.Date(2026, 3, 1, 9, 0, 0, 0, time.UTC)

	mock.ExpectQuery("SELECT c.id, c.domain_id, c.email").
		WithArgs("dom-1", "bob@example.com").
		WillReturnRows(pgxmock.NewRows([]string{
			"id", "domain_id", "email", "created_at",
			"room_id", "live", "mailed", "room_created_at",
		}).AddRow("cust-1", "dom-1", "bob@example.com", created, "room-1", false, false, created))

	rec, err := repo.FindByEmailPrefix(context.Background(), "dom-1", "bob@example.com")
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if rec.Customer.Email != "bob@example.com" || rec.ChatRoom.ID != "room-1" {
		t.Errorf("unexpected record: %+v", rec)
	}
	if rec.ChatRoom.Live || rec.ChatRoom.Mailed {
		t.Errorf("expected fresh room flags, got %+v", rec.ChatRoom)
	}

	if err := mock.ExpectationsWereMet(); err != nil {
		t.Fatalf("unmet expectations: %v", err)
	}
}

func TestPostgresRepository_FindByEmailPrefix_NotFound(t *testing.T) {
	mock := newMock(t)
	repo := newPostgresRepositoryWithQuerier(mock)

	mock.ExpectQuery("SELECT c.id, c.domain_id, c.email").
		WithArgs("dom-1", "ghost@example.com").
		WillReturnError(pgx.ErrNoRows)

	_, err := repo.FindByEmailPrefix(context.Background(), "dom-1", "ghost@example.com")
	if !errors.Is(err, ErrCustomerNotFound) {
		t.Fatalf("expected ErrCustomerNotFound, got %v", err)
	}
}

func TestPostgresRepository_CreateWithQuestions(t *testing.T) {
	mock := newMock(t)
	repo := newPostgresRepositoryWithQuerier(mock)
	created := time.Date(2026, 3, 1, 9, 0, 0, 0, time.UTC)

	mock.ExpectBegin()
	mock.ExpectQuery("INSERT INTO customers").
		WithArgs(pgxmock.AnyArg(), "dom-1", "bob@example.com").
		WillReturnRows(pgxmock.NewRows([]string{"created_at"}).AddRow(created))
	mock.ExpectExec("INSERT INTO customer_questions").
		WithArgs(pgxmock.AnyArg(), pgxmock.AnyArg(), "What is your budget?").
		WillReturnResult(pgxmock.NewResult("INSERT", 1))
	mock.ExpectExec("INSERT INTO customer_questions").
		WithArgs(pgxmock.AnyArg(), pgxmock.AnyArg(), "Which product interests you?").
		WillReturnResult(pgxmock.NewResult("INSERT", 1))
	mock.ExpectQuery("INSERT INTO chat_rooms").
		WithArgs(pgxmock.AnyArg(), pgxmock.AnyArg()).
		WillReturnRows(pgxmock.NewRows([]string{"created_at"}).AddRow(created))
	mock.ExpectCommit()

	rec, err := repo.CreateWithQuestions(context.Background(), "dom-1", "bob@example.com",
		[]string{"What is your budget?", "Which product interests you?"})
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if rec.Customer.ID == "" || rec.ChatRoom.ID == "" {
		t.Errorf("expected generated ids, got %+v", rec)
	}
	if rec.ChatRoom.Live || rec.ChatRoom.Mailed {
		t.Errorf("new room must be non-live and unmailed: %+v", rec.ChatRoom)
	}

	if err := mock.ExpectationsWereMet(); err != nil {
		t.Fatalf("unmet expectations: %v", err)
	}
}

func TestPostgresRepository_CreateWithQuestions_RollsBackOnFailure(t *testing.T) {
	mock := newMock(t)
	repo := newPostgresRepositoryWithQuerier(mock)

	mock.ExpectBegin()
	mock.ExpectQuery("INSERT INTO customers").
		WithArgs(pgxmock.AnyArg(), "dom-1", "bob@example.com").
		WillReturnError(errors.New("disk full"))
	mock.ExpectRollback()

	_, err := repo.CreateWithQuestions(context.Background(), "dom-1", "bob@example.com", nil)
	if err == nil {
		t.Fatal("expected error")
	}

	if err := mock.ExpectationsWereMet(); err != nil {
		t.Fatalf("unmet expectations: %v", err)
	}
}

func TestPostgresRepository_FirstUnansweredQuestion(t *testing.T) {
	mock := newMock(t)
	repo := newPostgresRepositoryWithQuerier(mock)

	mock.ExpectQuery("SELECT id, question, answered").
		WithArgs("cust-1").
		WillReturnRows(pgxmock.NewRows([]string{"id", "question", "answered"}).
			AddRow("q-1", "What is your budget?", nil))

	qa, err := repo.FirstUnansweredQuestion(context.Background(), "cust-1")
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if qa.ID != "q-1" || qa.Answered != nil {
		t.Errorf("unexpected question: %+v", qa)
	}

	mock.ExpectQuery("SELECT id, question, answered").
		WithArgs("cust-done").
		WillReturnError(pgx.ErrNoRows)

	if _, err := repo.FirstUnansweredQuestion(context.Background(), "cust-done"); !errors.Is(err, ErrNoUnansweredQuestions) {
		t.Fatalf("expected ErrNoUnansweredQuestions, got %v", err)
	}
}

func TestPostgresRepository_SetLiveResetsMailed(t *testing.T) {
	mock := newMock(t)
	repo := newPostgresRepositoryWithQuerier(mock)

	mock.ExpectExec("UPDATE chat_rooms").
		WithArgs("room-1", true).
		WillReturnResult(pgxmock.NewResult("UPDATE", 1))

	if err := repo.SetLive(context.Background(), "room-1", true); err != nil {
		t.Fatalf("unexpected error: %v", err)
	}

	mock.ExpectExec("UPDATE chat_rooms").
		WithArgs("room-missing", true).
		WillReturnResult(pgxmock.NewResult("UPDATE", 0))

	if err := repo.SetLive(context.Background(), "room-missing", true); !errors.Is(err, ErrChatRoomNotFound) {
		t.Fatalf("expected ErrChatRoomNotFound, got %v", err)
	}
}

func TestPostgresRepository_SetMailed(t *testing.T) {
	mock := newMock(t)
	repo := newPostgresRepositoryWithQuerier(mock)

	mock.ExpectExec("UPDATE chat_rooms SET mailed").
		WithArgs("room-1").
		WillReturnResult(pgxmock.NewResult("UPDATE", 1))

	if err := repo.SetMailed(context.Background(), "room-1"); err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
}

func TestInMemoryRepository_QuestionLifecycle(t *testing.T) {
	repo := NewInMemoryRepository()
	ctx := context.Background()

	rec, err := repo.CreateWithQuestions(ctx, "dom-1", "bob@example.com",
		[]string{"Zebra question?", "Alpha question?"})
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}

	qa, err := repo.FirstUnansweredQuestion(ctx, rec.Customer.ID)
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if qa.Question != "Alpha question?" {
		t.Errorf("expected ascending text order, got %q", qa.Question)
	}

	if err := repo.AnswerQuestion(ctx, qa.ID, "my budget is 100"); err != nil {
		t.Fatalf("unexpected error: %v", err)
	}

	next, err := repo.FirstUnansweredQuestion(ctx, rec.Customer.ID)
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if next.Question != "Zebra question?" {
		t.Errorf("expected next question, got %q", next.Question)
	}

	if err := repo.AnswerQuestion(ctx, next.ID, "everything"); err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if _, err := repo.FirstUnansweredQuestion(ctx, rec.Customer.ID); !errors.Is(err, ErrNoUnansweredQuestions) {
		t.Fatalf("expected ErrNoUnansweredQuestions, got %v", err)
	}

	// Answering again must not revert or change anything.
	if err := repo.AnswerQuestion(ctx, qa.ID, "second answer"); err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
}

func TestInMemoryRepository_LiveAndMailedFlags(t *testing.T) {
	repo := NewInMemoryRepository()
	ctx := context.Background()

	rec, err := repo.CreateWithQuestions(ctx, "dom-1", "bob@example.com", nil)
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	roomID := rec.ChatRoom.ID

	if err := repo.SetLive(ctx, roomID, true); err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if err := repo.SetMailed(ctx, roomID); err != nil {
		t.Fatalf("unexpected error: %v", err)
	}

	got, err := repo.FindByEmailPrefix(ctx, "dom-1", "bob@")
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if !got.ChatRoom.Live || !got.ChatRoom.Mailed {
		t.Errorf("expected live+mailed, got %+v", got.ChatRoom)
	}

	// Re-activating resets the mailed flag.
	if err := repo.SetLive(ctx, roomID, true); err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	got, _ = repo.FindByEmailPrefix(ctx, "dom-1", "bob@")
	if got.ChatRoom.Mailed {
		t.Error("expected mailed reset on activation")
	}

	if err := repo.SetLive(ctx, "missing", true); !errors.Is(err, ErrChatRoomNotFound) {
		t.Fatalf("expected ErrChatRoomNotFound, got %v", err)
	}
}
