package postgres

import (
	"context"
	"errors"
	"fmt"

	"github.com/jackc/pgx/v4"
	"github.com/jackc/pgx/v4/pgxpool"

	"github.com/The-Veteran-Culture-Project/site-sub000/internal/domain"
)

// AccessRepository stores admin accounts and beta access requests in Postgres.
type AccessRepository struct {
	pool *pgxpool.Pool
}

func NewAccessRepository(pool *pgxpool.Pool) *AccessRepository {
	return &AccessRepository{pool: pool}
}

func (r *AccessRepository) AdminByEmail(ctx context.Context, email string) (*domain.AdminAccount, error) {
	row := r.pool.QueryRow(ctx,
		`SELECT id, email, password_hash, created_at FROM admin_accounts WHERE email=$1`, email)
	var admin domain.AdminAccount
	err := row.Scan(&admin.ID, &admin.Email, &admin.PasswordHash, &admin.CreatedAt)
	if errors.Is(err, pgx.ErrNoRows) {
		return nil, nil
	}
	if err != nil {
		return nil, fmt.Errorf("get admin: %w", err)
	}
	return &admin, nil
}

func (r *AccessRepository) CreateAdmin(ctx context.Context, admin domain.AdminAccount) error {
	_, err := r.pool.Exec(ctx,
		`INSERT INTO admin_accounts (id, email, password_hash, created_at) VALUES ($1, $2, $3, $4)`,
		admin.ID, admin.Email, admin.PasswordHash, admin.CreatedAt)
	if err != nil {
		return fmt.Errorf("create admin: %w", err)
	}
	return nil
}

func (r *AccessRepository) CreateAccessRequest(ctx context.Context, req domain.AccessRequest) error {
	_, err := r.pool.Exec(ctx,
		`INSERT INTO access_requests (id, email, phone, status, created_at, decided_at)
		 VALUES ($1, $2, $3, $4, $5, $6)`,
		req.ID, req.Email, req.Phone, req.Status, req.CreatedAt, req.DecidedAt)
	if err != nil {
		return fmt.Errorf("create access request: %w", err)
	}
	return nil
}

func (r *AccessRepository) GetAccessRequest(ctx context.Context, id string) (*domain.AccessRequest, error) {
	row := r.pool.QueryRow(ctx,
		`SELECT id, email, phone, status, created_at, decided_at FROM access_requests WHERE id=$1`, id)
	var req domain.AccessRequest
	err := row.Scan(&req.ID, &req.Email, &req.Phone, &req.Status, &req.CreatedAt, &req.DecidedAt)
	if errors.Is(err, pgx.ErrNoRows) {
		return nil, nil
	}
	if err != nil {
		return nil, fmt.Errorf("get access request: %w", err)
	}
	return &req, nil
}

func (r *AccessRepository) UpdateAccessRequest(ctx context.Context, req domain.AccessRequest) error {
	tag, err := r.pool.Exec(ctx,
		`UPDATE access_requests SET status=$2, decided_at=$3 WHERE id=$1`,
		req.ID, req.Status, req.DecidedAt)
	if err != nil {
		return fmt.Errorf("update access request: %w", err)
	}
	if tag.RowsAffected() == 0 {
		return domain.ErrRequestNotFound
	}
	return nil
}

func (r *AccessRepository) ListAccessRequests(ctx context.Context) ([]domain.AccessRequest, error) {
	rows, err := r.pool.Query(ctx,
		`SELECT id, email, phone, status, created_at, decided_at
		 FROM access_requests ORDER BY created_at DESC`)
	if err != nil {
		return nil, fmt.Errorf("list access requests: %w", err)
	}
	defer rows.Close()

	var out []domain.AccessRequest
	for rows.Next() {
		var req domain.AccessRequest
		if err := rows.Scan(&req.ID, &req.Email, &req.Phone, &req.Status, &req.CreatedAt, &req.DecidedAt); err != nil {
			return nil, fmt.Errorf("scan access request: %w", err)
		}
		out = append(out, req)
	}
	return out, rows.Err()
}
