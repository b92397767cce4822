package tenant

import (
	"context"
	"errors"
	"fmt"

	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgxpool"
)

type querier interface {
	Query(ctx context.Context, sql string, args ...any) (pgx.Rows, error)
	QueryRow(ctx context.Context, sql string, args ...any) pgx.Row
}

// PostgresRepository stores domains in the relational database.
type PostgresRepository struct {
	pool querier
}

// NewPostgresRepository initializes a repo backed by pgxpool.
func NewPostgresRepository(pool *pgxpool.Pool) *PostgresRepository {
	if pool == nil {
		panic("tenant: pgx pool required")
	}
	return &PostgresRepository{pool: pool}
}

func newPostgresRepositoryWithQuerier(q querier) *PostgresRepository {
	if q == nil {
		panic("tenant: querier required")
	}
	return &PostgresRepository{pool: q}
}

// GetByID fetches a domain with its predefined questions.
func (r *PostgresRepository) GetByID(ctx context.Context, id string) (*Domain, error) {
	query := `
		SELECT id, owner_id, name, helpdesk_enabled, widget_theme, created_at
		FROM domains
		WHERE id = $1
	`
	var domain Domain
	if err := r.pool.QueryRow(ctx, query, id).Scan(
		&domain.ID,
		&domain.OwnerID,
		&domain.Name,
		&domain.HelpdeskEnabled,
		&domain.WidgetTheme,
		&domain.CreatedAt,
	); err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, ErrDomainNotFound
		}
		return nil, fmt.Errorf("tenant: select domain: %w", err)
	}

	rows, err := r.pool.Query(ctx,
		`SELECT question FROM domain_questions WHERE domain_id = $1 ORDER BY question ASC`, id)
	if err != nil {
		return nil, fmt.Errorf("tenant: select domain questions: %w", err)
	}
	defer rows.Close()

	for rows.Next() {
		var q string
		if err := rows.Scan(&q); err != nil {
			return nil, fmt.Errorf("tenant: scan domain question: %w", err)
		}
		domain.Questions = append(domain.Questions, q)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("tenant: iterate domain questions: %w", err)
	}

	return &domain, nil
}

// ChatbotConfig fetches the widget projection for a domain.
func (r *PostgresRepository) ChatbotConfig(ctx context.Context, id string) (*ChatbotConfig, error) {
	query := `
		SELECT helpdesk_enabled, name, widget_theme
		FROM domains
		WHERE id = $1
	`
	var cfg ChatbotConfig
	if err := r.pool.QueryRow(ctx, query, id).Scan(
		&cfg.HelpdeskEnabled,
		&cfg.DomainName,
		&cfg.WidgetTheme,
	); err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, ErrDomainNotFound
		}
		return nil, fmt.Errorf("tenant: select chatbot config: %w", err)
	}
	return &cfg, nil
}

var _ Repository = (*PostgresRepository)(nil)
var _ Repository = (*InMemoryRepository)(nil)
