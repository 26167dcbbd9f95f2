package repository

import (
	"context"

	"unimarket/internal/database"
	"unimarket/internal/domain/audit"
)

type AuditRepository interface {
	Insert(ctx context.Context, l audit.Log) error
	List(ctx context.Context, f audit.Filter) ([]audit.Log, error)
}

type PostgresAuditRepository struct {
	db database.DB
}

func NewPostgresAuditRepository(db database.DB) *PostgresAuditRepository {
	return &PostgresAuditRepository{db: db}
}

func (r *PostgresAuditRepository) Insert(ctx context.Context, l audit.Log) error {
	_, err := r.db.Exec(ctx,
		`INSERT INTO audit_logs (id, user_id, action, method, path, status, ip, user_agent, latency_ms)
		 VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9)`,
		l.ID, l.UserID, l.Action, l.Method, l.Path, l.Status, l.IP, l.UserAgent, l.LatencyMs,
	)
	return err
}

func (r *PostgresAuditRepository) List(ctx context.Context, f audit.Filter) ([]audit.Log, error) {
	limit, offset := clampPage(f.Limit, f.Offset, 50, 200)

	query := `SELECT id, user_id, action, method, path, status, ip, user_agent, latency_ms, created_at FROM audit_logs WHERE 1 = 1`
	args := []any{}
	if f.Action != "" {
		args = append(args, f.Action)
		query += ` AND action = $` + itoa(len(args))
	}
	if f.UserID != nil {
		args = append(args, *f.UserID)
		query += ` AND user_id = $` + itoa(len(args))
	}
	args = append(args, limit, offset)
	query += ` ORDER BY created_at DESC LIMIT $` + itoa(len(args)-1) + ` OFFSET $` + itoa(len(args))

	rows, err := r.db.Query(ctx, query, args...)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	out := make([]audit.Log, 0)
	for rows.Next() {
		var l audit.Log
		if err := rows.Scan(&l.ID, &l.UserID, &l.Action, &l.Method, &l.Path, &l.Status, &l.IP, &l.UserAgent, &l.LatencyMs, &l.CreatedAt); err != nil {
			return nil, err
		}
		out = append(out, l)
	}
	if err := rows.Err(); err != nil {
		return nil, err
	}
	return out, nil
}
