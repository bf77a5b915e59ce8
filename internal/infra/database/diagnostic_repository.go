package database

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"strings"
	"time"

	"github.com/google/uuid"

	"github.com/xavierca1/automatik-diagnostic/internal/entity"
)

type DiagnosticRepository struct {
	DB *sql.DB
}

func NewDiagnosticRepository(db *sql.DB) *DiagnosticRepository {
	return &DiagnosticRepository{DB: db}
}

func (r *DiagnosticRepository) Create(ctx context.Context, record *entity.DiagnosticRecord) error {
	if strings.TrimSpace(record.URL) == "" {
		return entity.ErrMissingURL
	}
	if record.ID == "" {
		record.ID = uuid.New().String()
	}

	query := `
		INSERT INTO blog_diagnostics (id, url, nome, email, telefone, faturamento, results)
		VALUES ($1, $2, $3, $4, $5, $6, $7)
		RETURNING created_at, updated_at
	`

	err := r.DB.QueryRowContext(
		ctx,
		query,
		record.ID,
		record.URL,
		record.Nome,
		record.Email,
		record.Telefone,
		record.Faturamento,
		record.Results,
	).Scan(&record.CreatedAt, &record.UpdatedAt)
	if err != nil {
		return fmt.Errorf("erro ao inserir diagnóstico: %w", err)
	}

	return nil
}

// FindResultsByID devolve "" enquanto o worker não gravou um resultado real.
func (r *DiagnosticRepository) FindResultsByID(ctx context.Context, id string) (string, error) {
	if _, err := uuid.Parse(id); err != nil {
		return "", entity.ErrDiagnosticNotFound
	}

	var results string
	err := r.DB.QueryRowContext(ctx, `SELECT results FROM blog_diagnostics WHERE id = $1`, id).Scan(&results)
	if errors.Is(err, sql.ErrNoRows) {
		return "", entity.ErrDiagnosticNotFound
	}
	if err != nil {
		return "", fmt.Errorf("erro ao buscar diagnóstico: %w", err)
	}

	if !entity.HasResult(results) {
		return "", nil
	}
	return results, nil
}

func (r *DiagnosticRepository) UpdateFromWebhook(ctx context.Context, id string, update entity.DiagnosticUpdate) (*entity.DiagnosticRecord, error) {
	if _, err := uuid.Parse(id); err != nil {
		return nil, entity.ErrDiagnosticNotFound
	}

	// COALESCE preserva as colunas de contato que o webhook não enviou.
	query := `
		UPDATE blog_diagnostics
		SET url = COALESCE($2, url),
			nome = COALESCE($3, nome),
			email = COALESCE($4, email),
			telefone = COALESCE($5, telefone),
			faturamento = COALESCE($6, faturamento),
			results = $7,
			updated_at = NOW()
		WHERE id = $1
		RETURNING id, url, nome, email, telefone, faturamento, results, created_at, updated_at
	`

	var rec entity.DiagnosticRecord
	err := r.DB.QueryRowContext(
		ctx,
		query,
		id,
		update.URL,
		update.Nome,
		update.Email,
		update.Telefone,
		update.Faturamento,
		update.Results,
	).Scan(
		&rec.ID,
		&rec.URL,
		&rec.Nome,
		&rec.Email,
		&rec.Telefone,
		&rec.Faturamento,
		&rec.Results,
		&rec.CreatedAt,
		&rec.UpdatedAt,
	)
	if errors.Is(err, sql.ErrNoRows) {
		return nil, entity.ErrDiagnosticNotFound
	}
	if err != nil {
		return nil, fmt.Errorf("erro ao atualizar diagnóstico: %w", err)
	}

	return &rec, nil
}

// CountPendingOlderThan conta registros sem resultado real, incluindo os que só têm o ack do
// workflow. O predicado repete o do índice idx_blog_diagnostics_pending.
func (r *DiagnosticRepository) CountPendingOlderThan(ctx context.Context, age time.Duration) (int, error) {
	query := `
		SELECT COUNT(*)
		FROM blog_diagnostics
		WHERE (results = '' OR btrim(results) = '{"message":"Workflow was started"}')
			AND created_at < $1
	`

	var count int
	if err := r.DB.QueryRowContext(ctx, query, time.Now().Add(-age)).Scan(&count); err != nil {
		return 0, fmt.Errorf("erro ao contar diagnósticos pendentes: %w", err)
	}
	return count, nil
}
