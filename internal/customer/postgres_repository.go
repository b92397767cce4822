package customer

import (
	"context"
	"errors"
	"fmt"

	"github.com/google/uuid"
	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgconn"
	"github.com/jackc/pgx/v5/pgxpool"
)

type querier interface {
	Begin(ctx context.Context) (pgx.Tx, error)
	Exec(ctx context.Context, sql string, args ...any) (pgconn.CommandTag, error)
	Query(ctx context.Context, sql string, args ...any) (pgx.Rows, error)
	QueryRow(ctx context.Context, sql string, args ...any) pgx.Row
}

// PostgresRepository stores customers in the relational database.
type PostgresRepository struct {
	pool querier
}

// NewPostgresRepository initializes a repo backed by pgxpool.
func NewPostgresRepository(pool *pgxpool.Pool) *PostgresRepository {
	if pool == nil {
		panic("customer: pgx pool required")
	}
	return &PostgresRepository{pool: pool}
}

func newPostgresRepositoryWithQuerier(q querier) *PostgresRepository {
	if q == nil {
		panic("customer: querier required")
	}
	return &PostgresRepository{pool: q}
}

// FindByEmailPrefix fetches a customer by domain + email prefix with its room.
func (r *PostgresRepository) FindByEmailPrefix(ctx context.Context, domainID, emailPrefix string) (*Record, error) {
	query := `
		SELECT c.id, c.domain_id, c.email, c.created_at,
		       cr.id, cr.live, cr.mailed, cr.created_at
		FROM customers c
		JOIN chat_rooms cr ON cr.customer_id = c.id
		WHERE c.domain_id = $1 AND c.email LIKE $2 || '%'
		ORDER BY c.created_at ASC
		LIMIT 1
	`
	var rec Record
	if err := r.pool.QueryRow(ctx, query, domainID, emailPrefix).Scan(
		&rec.Customer.ID,
		&rec.Customer.DomainID,
		&rec.Customer.Email,
		&rec.Customer.CreatedAt,
		&rec.ChatRoom.ID,
		&rec.ChatRoom.Live,
		&rec.ChatRoom.Mailed,
		&rec.ChatRoom.CreatedAt,
	); err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, ErrCustomerNotFound
		}
		return nil, fmt.Errorf("customer: select by email prefix: %w", err)
	}
	return &rec, nil
}

// CreateWithQuestions creates the customer, question copies and chat room in
// one transaction so a partial write never survives.
func (r *PostgresRepository) CreateWithQuestions(ctx context.Context, domainID, email string, questions []string) (*Record, error) {
	tx, err := r.pool.Begin(ctx)
	if err != nil {
		return nil, fmt.Errorf("customer: begin create: %w", err)
	}
	defer func() { _ = tx.Rollback(ctx) }()

	var rec Record
	customerID := uuid.New()
	if err := tx.QueryRow(ctx,
		`INSERT INTO customers (id, domain_id, email) VALUES ($1, $2, $3) RETURNING created_at`,
		customerID, domainID, email,
	).Scan(&rec.Customer.CreatedAt); err != nil {
		return nil, fmt.Errorf("customer: insert customer: %w", err)
	}
	rec.Customer.ID = customerID.String()
	rec.Customer.DomainID = domainID
	rec.Customer.Email = email

	for _, q := range questions {
		if _, err := tx.Exec(ctx,
			`INSERT INTO customer_questions (id, customer_id, question) VALUES ($1, $2, $3)`,
			uuid.New(), customerID, q,
		); err != nil {
			return nil, fmt.Errorf("customer: insert question: %w", err)
		}
	}

	roomID := uuid.New()
	if err := tx.QueryRow(ctx,
		`INSERT INTO chat_rooms (id, customer_id) VALUES ($1, $2) RETURNING created_at`,
		roomID, customerID,
	).Scan(&rec.ChatRoom.CreatedAt); err != nil {
		return nil, fmt.Errorf("customer: insert chat room: %w", err)
	}
	rec.ChatRoom.ID = roomID.String()

	if err := tx.Commit(ctx); err != nil {
		return nil, fmt.Errorf("customer: commit create: %w", err)
	}
	return &rec, nil
}

// FirstUnansweredQuestion returns the unanswered question first in ascending
// text order.
func (r *PostgresRepository) FirstUnansweredQuestion(ctx context.Context, customerID string) (*QuestionAnswer, error) {
	query := `
		SELECT id, question, answered
		FROM customer_questions
		WHERE customer_id = $1 AND answered IS NULL
		ORDER BY question ASC
		LIMIT 1
	`
	var qa QuestionAnswer
	if err := r.pool.QueryRow(ctx, query, customerID).Scan(&qa.ID, &qa.Question, &qa.Answered); err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, ErrNoUnansweredQuestions
		}
		return nil, fmt.Errorf("customer: select unanswered question: %w", err)
	}
	return &qa, nil
}

// UnansweredQuestions lists unanswered question texts ascending.
func (r *PostgresRepository) UnansweredQuestions(ctx context.Context, customerID string) ([]string, error) {
	query := `
		SELECT question
		FROM customer_questions
		WHERE customer_id = $1 AND answered IS NULL
		ORDER BY question ASC
	`
	rows, err := r.pool.Query(ctx, query, customerID)
	if err != nil {
		return nil, fmt.Errorf("customer: select unanswered questions: %w", err)
	}
	defer rows.Close()

	var questions []string
	for rows.Next() {
		var q string
		if err := rows.Scan(&q); err != nil {
			return nil, fmt.Errorf("customer: scan unanswered question: %w", err)
		}
		questions = append(questions, q)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("customer: iterate unanswered questions: %w", err)
	}
	return questions, nil
}

// AnswerQuestion records an answer for a still-unanswered question.
func (r *PostgresRepository) AnswerQuestion(ctx context.Context, questionID, answer string) error {
	query := `UPDATE customer_questions SET answered = $2 WHERE id = $1 AND answered IS NULL`
	if _, err := r.pool.Exec(ctx, query, questionID, answer); err != nil {
		return fmt.Errorf("customer: answer question: %w", err)
	}
	return nil
}

// SetLive flips the live flag; activation resets mailed so the next handoff
// can notify the owner again.
func (r *PostgresRepository) SetLive(ctx context.Context, chatRoomID string, live bool) error {
	query := `
		UPDATE chat_rooms
		SET live = $2, mailed = CASE WHEN $2 THEN FALSE ELSE mailed END
		WHERE id = $1
	`
	ct, err := r.pool.Exec(ctx, query, chatRoomID, live)
	if err != nil {
		return fmt.Errorf("customer: set live: %w", err)
	}
	if ct.RowsAffected() == 0 {
		return ErrChatRoomNotFound
	}
	return nil
}

// SetMailed marks the room notified for the current activation.
func (r *PostgresRepository) SetMailed(ctx context.Context, chatRoomID string) error {
	ct, err := r.pool.Exec(ctx, `UPDATE chat_rooms SET mailed = TRUE WHERE id = $1`, chatRoomID)
	if err != nil {
		return fmt.Errorf("customer: set mailed: %w", err)
	}
	if ct.RowsAffected() == 0 {
		return ErrChatRoomNotFound
	}
	return nil
}

var _ Repository = (*PostgresRepository)(nil)
var _ Repository = (*InMemoryRepository)(nil)
