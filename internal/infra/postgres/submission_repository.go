package postgres

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"

	"github.com/jackc/pgx/v4"
	"github.com/jackc/pgx/v4/pgxpool"

	"github.com/The-Veteran-Culture-Project/site-sub000/internal/domain"
)

// SubmissionRepository persists canonical submissions and their per-question
// detail rows in Postgres. Demographics and benefits land as JSONB blobs.
type SubmissionRepository struct {
	pool *pgxpool.Pool
}

func NewSubmissionRepository(pool *pgxpool.Pool) *SubmissionRepository {
	return &SubmissionRepository{pool: pool}
}

func (r *SubmissionRepository) CreateSubmission(ctx context.Context, sub domain.SurveySubmission) error {
	demographics, err := json.Marshal(sub.Demographics)
	if err != nil {
		return fmt.Errorf("marshal demographics: %w", err)
	}
	benefits, err := json.Marshal(sub.Benefits)
	if err != nil {
		return fmt.Errorf("marshal benefits: %w", err)
	}
	_, err = r.pool.Exec(ctx,
		`INSERT INTO survey_responses
			(id, created_at, first_name, last_name, email, subscribe, story_opt_in,
			 military_score, civilian_score, strategy, demographics, va_benefits)
		 VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9, $10, $11::jsonb, $12::jsonb)`,
		sub.ID, sub.CreatedAt, sub.FirstName, sub.LastName, sub.Email,
		sub.Subscribe, sub.StoryOptIn, sub.MilitaryScore, sub.CivilianScore,
		sub.Strategy, string(demographics), string(benefits))
	if err != nil {
		return fmt.Errorf("insert submission: %w", err)
	}
	return nil
}

func (r *SubmissionRepository) AddQuestionResponse(ctx context.Context, row domain.QuestionResponse) error {
	_, err := r.pool.Exec(ctx,
		`INSERT INTO question_responses
			(survey_response_id, question, category, axis, response_value, response_time_ms)
		 VALUES ($1, $2, $3, $4, $5, $6)`,
		row.SubmissionID, row.Question, row.Category, row.Axis, row.Value, row.ResponseTimeMS)
	if err != nil {
		return fmt.Errorf("insert question response: %w", err)
	}
	return nil
}

func (r *SubmissionRepository) GetSubmission(ctx context.Context, id string) (domain.SurveySubmission, error) {
	row := r.pool.QueryRow(ctx,
		`SELECT id, created_at, first_name, last_name, email, subscribe, story_opt_in,
		        military_score, civilian_score, strategy, demographics, va_benefits
		 FROM survey_responses WHERE id=$1`, id)
	sub, err := scanSubmission(row)
	if errors.Is(err, pgx.ErrNoRows) {
		return domain.SurveySubmission{}, domain.ErrSubmissionNotFound
	}
	return sub, err
}

func (r *SubmissionRepository) ListSubmissions(ctx context.Context) ([]domain.SurveySubmission, error) {
	rows, err := r.pool.Query(ctx,
		`SELECT id, created_at, first_name, last_name, email, subscribe, story_opt_in,
		        military_score, civilian_score, strategy, demographics, va_benefits
		 FROM survey_responses ORDER BY created_at DESC`)
	if err != nil {
		return nil, fmt.Errorf("list submissions: %w", err)
	}
	defer rows.Close()

	var out []domain.SurveySubmission
	for rows.Next() {
		sub, err := scanSubmission(rows)
		if err != nil {
			return nil, err
		}
		out = append(out, sub)
	}
	return out, rows.Err()
}

func (r *SubmissionRepository) ListQuestionResponses(ctx context.Context, submissionID string) ([]domain.QuestionResponse, error) {
	rows, err := r.pool.Query(ctx,
		`SELECT survey_response_id, question, category, axis, response_value, response_time_ms
		 FROM question_responses WHERE survey_response_id=$1 ORDER BY id`, submissionID)
	if err != nil {
		return nil, fmt.Errorf("list question responses: %w", err)
	}
	defer rows.Close()

	var out []domain.QuestionResponse
	for rows.Next() {
		var qr domain.QuestionResponse
		if err := rows.Scan(&qr.SubmissionID, &qr.Question, &qr.Category, &qr.Axis, &qr.Value, &qr.ResponseTimeMS); err != nil {
			return nil, fmt.Errorf("scan question response: %w", err)
		}
		out = append(out, qr)
	}
	return out, rows.Err()
}

// DeleteSubmission removes the submission; the detail rows go with it via the
// ON DELETE CASCADE foreign key, the analytics session by explicit delete
// (the relinked session shares the submission id, not a foreign key).
func (r *SubmissionRepository) DeleteSubmission(ctx context.Context, id string) error {
	tag, err := r.pool.Exec(ctx, `DELETE FROM survey_responses WHERE id=$1`, id)
	if err != nil {
		return fmt.Errorf("delete submission: %w", err)
	}
	if tag.RowsAffected() == 0 {
		return domain.ErrSubmissionNotFound
	}
	_, _ = r.pool.Exec(ctx, `DELETE FROM response_sessions WHERE id=$1`, id)
	return nil
}

func scanSubmission(row pgx.Row) (domain.SurveySubmission, error) {
	var sub domain.SurveySubmission
	var demographics, benefits []byte
	err := row.Scan(&sub.ID, &sub.CreatedAt, &sub.FirstName, &sub.LastName, &sub.Email,
		&sub.Subscribe, &sub.StoryOptIn, &sub.MilitaryScore, &sub.CivilianScore,
		&sub.Strategy, &demographics, &benefits)
	if err != nil {
		return domain.SurveySubmission{}, err
	}
	if len(demographics) > 0 {
		if err := json.Unmarshal(demographics, &sub.Demographics); err != nil {
			return domain.SurveySubmission{}, fmt.Errorf("unmarshal demographics: %w", err)
		}
	}
	if len(benefits) > 0 {
		if err := json.Unmarshal(benefits, &sub.Benefits); err != nil {
			return domain.SurveySubmission{}, fmt.Errorf("unmarshal benefits: %w", err)
		}
	}
	return sub, nil
}
