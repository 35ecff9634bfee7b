package postgres

import (
	"context"
	"fmt"

	"github.com/jackc/pgx/v4/pgxpool"

	"github.com/The-Veteran-Culture-Project/site-sub000/internal/domain"
)

// CatalogStore serves the question catalog from Postgres. It is both the
// loader behind the survey-side cache and the admin-side CRUD store.
type CatalogStore struct {
	pool *pgxpool.Pool
}

func NewCatalogStore(pool *pgxpool.Pool) *CatalogStore {
	return &CatalogStore{pool: pool}
}

// LoadQuestions returns the full catalog in display order.
func (s *CatalogStore) LoadQuestions(ctx context.Context) ([]domain.Question, error) {
	rows, err := s.pool.Query(ctx,
		`SELECT id, text, axis, category, active, position FROM questions ORDER BY position, id`)
	if err != nil {
		return nil, fmt.Errorf("load questions: %w", err)
	}
	defer rows.Close()

	var questions []domain.Question
	for rows.Next() {
		var q domain.Question
		if err := rows.Scan(&q.ID, &q.Text, &q.Axis, &q.Category, &q.Active, &q.Position); err != nil {
			return nil, fmt.Errorf("scan question: %w", err)
		}
		questions = append(questions, q)
	}
	return questions, rows.Err()
}

func (s *CatalogStore) ListQuestions(ctx context.Context) ([]domain.Question, error) {
	return s.LoadQuestions(ctx)
}

func (s *CatalogStore) CreateQuestion(ctx context.Context, q domain.Question) error {
	_, err := s.pool.Exec(ctx,
		`INSERT INTO questions (id, text, axis, category, active, position) VALUES ($1, $2, $3, $4, $5, $6)`,
		q.ID, q.Text, q.Axis, q.Category, q.Active, q.Position)
	if err != nil {
		return fmt.Errorf("create question: %w", err)
	}
	return nil
}

func (s *CatalogStore) UpdateQuestion(ctx context.Context, q domain.Question) error {
	tag, err := s.pool.Exec(ctx,
		`UPDATE questions SET text=$2, axis=$3, category=$4, active=$5, position=$6 WHERE id=$1`,
		q.ID, q.Text, q.Axis, q.Category, q.Active, q.Position)
	if err != nil {
		return fmt.Errorf("update question: %w", err)
	}
	if tag.RowsAffected() == 0 {
		return domain.ErrQuestionNotFound
	}
	return nil
}

func (s *CatalogStore) DeleteQuestion(ctx context.Context, id string) error {
	tag, err := s.pool.Exec(ctx, `DELETE FROM questions WHERE id=$1`, id)
	if err != nil {
		return fmt.Errorf("delete question: %w", err)
	}
	if tag.RowsAffected() == 0 {
		return domain.ErrQuestionNotFound
	}
	return nil
}
