package repository

import (
	"context"

	"github.com/jackc/pgx/v5/pgxpool"

	"github.com/spec-kit/retailer-dashboard/internal/domain"
)

// AccessAuditRepository stores access denials.
type AccessAuditRepository interface {
	Create(ctx context.Context, denial *domain.AccessDenial) error
}

type accessAuditRepository struct {
	pool *pgxpool.Pool
}

// NewAccessAuditRepository builds repository.
func NewAccessAuditRepository(pool *pgxpool.Pool) AccessAuditRepository {
	return &accessAuditRepository{pool: pool}
}

func (r *accessAuditRepository) Create(ctx context.Context, denial *domain.AccessDenial) error {
	const query = `
        INSERT INTO access_denials (id, path, role, route_class, request_id, remote_ip, user_agent, occurred_at)
        VALUES ($1,$2,$3,$4,$5,$6,$7,$8)`
	_, err := r.pool.Exec(ctx, query,
		denial.ID,
		denial.Path,
		denial.Role,
		denial.RouteClass,
		denial.RequestID,
		denial.RemoteIP,
		denial.UserAgent,
		denial.OccurredAt,
	)
	return err
}
