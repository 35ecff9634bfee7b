package postgres

import (
	"context"
	"errors"
	"fmt"

	"github.com/jackc/pgx/v4"
	"github.com/jackc/pgx/v4/pgxpool"

	"github.com/The-Veteran-Culture-Project/site-sub000/internal/domain"
)

// AnalyticsRepository stores response analytics sessions in Postgres.
type AnalyticsRepository struct {
	pool *pgxpool.Pool
}

func NewAnalyticsRepository(pool *pgxpool.Pool) *AnalyticsRepository {
	return &AnalyticsRepository{pool: pool}
}

func (r *AnalyticsRepository) GetSession(ctx context.Context, id string) (domain.AnalyticsSession, error) {
	row := r.pool.QueryRow(ctx,
		`SELECT id, total_questions, questions_answered, completion_rate,
		        started_at, completed_at, device_type, browser, dropped_at_question
		 FROM response_sessions WHERE id=$1`, id)
	var s domain.AnalyticsSession
	err := row.Scan(&s.ID, &s.TotalQuestions, &s.QuestionsAnswered, &s.CompletionRate,
		&s.StartedAt, &s.CompletedAt, &s.DeviceType, &s.Browser, &s.DroppedAtQuestion)
	if errors.Is(err, pgx.ErrNoRows) {
		return domain.AnalyticsSession{}, domain.ErrSessionNotFound
	}
	if err != nil {
		return domain.AnalyticsSession{}, fmt.Errorf("get session: %w", err)
	}
	return s, nil
}

func (r *AnalyticsRepository) SaveSession(ctx context.Context, s domain.AnalyticsSession) error {
	_, err := r.pool.Exec(ctx,
		`INSERT INTO response_sessions
			(id, total_questions, questions_answered, completion_rate,
			 started_at, completed_at, device_type, browser, dropped_at_question)
		 VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9)
		 ON CONFLICT (id) DO UPDATE SET
			total_questions=EXCLUDED.total_questions,
			questions_answered=EXCLUDED.questions_answered,
			completion_rate=EXCLUDED.completion_rate,
			completed_at=EXCLUDED.completed_at,
			device_type=EXCLUDED.device_type,
			browser=EXCLUDED.browser,
			dropped_at_question=EXCLUDED.dropped_at_question`,
		s.ID, s.TotalQuestions, s.QuestionsAnswered, s.CompletionRate,
		s.StartedAt, s.CompletedAt, s.DeviceType, s.Browser, s.DroppedAtQuestion)
	if err != nil {
		return fmt.Errorf("save session: %w", err)
	}
	return nil
}

// RelinkSession rewrites the session keyed by oldID to the replacement
// record's id in a single statement.
func (r *AnalyticsRepository) RelinkSession(ctx context.Context, oldID string, s domain.AnalyticsSession) error {
	tag, err := r.pool.Exec(ctx,
		`UPDATE response_sessions SET
			id=$2, total_questions=$3, questions_answered=$4, completion_rate=$5,
			completed_at=$6, dropped_at_question=$7
		 WHERE id=$1`,
		oldID, s.ID, s.TotalQuestions, s.QuestionsAnswered, s.CompletionRate,
		s.CompletedAt, s.DroppedAtQuestion)
	if err != nil {
		return fmt.Errorf("relink session: %w", err)
	}
	if tag.RowsAffected() == 0 {
		return domain.ErrSessionNotFound
	}
	return nil
}

func (r *AnalyticsRepository) ListSessions(ctx context.Context) ([]domain.AnalyticsSession, error) {
	rows, err := r.pool.Query(ctx,
		`SELECT id, total_questions, questions_answered, completion_rate,
		        started_at, completed_at, device_type, browser, dropped_at_question
		 FROM response_sessions ORDER BY started_at`)
	if err != nil {
		return nil, fmt.Errorf("list sessions: %w", err)
	}
	defer rows.Close()

	var out []domain.AnalyticsSession
	for rows.Next() {
		var s domain.AnalyticsSession
		if err := rows.Scan(&s.ID, &s.TotalQuestions, &s.QuestionsAnswered, &s.CompletionRate,
			&s.StartedAt, &s.CompletedAt, &s.DeviceType, &s.Browser, &s.DroppedAtQuestion); err != nil {
			return nil, fmt.Errorf("scan session: %w", err)
		}
		out = append(out, s)
	}
	return out, rows.Err()
}
