package repository

import (
	"context"

	"github.com/spec-kit/helpdesk-core/internal/domain"
	"github.com/spec-kit/helpdesk-core/internal/persistence"
)

// AuditRepository is an append-only sink for completed mutations.
type AuditRepository interface {
	Append(ctx context.Context, entry *domain.AuditEntry) error
}

type auditRepository struct {
	q persistence.Querier
}

// NewAuditRepository builds the repository.
func NewAuditRepository(q persistence.Querier) AuditRepository {
	return &auditRepository{q: q}
}

func (r *auditRepository) Append(ctx context.Context, entry *domain.AuditEntry) error {
	const query = `
        INSERT INTO audit_log (action, actor_id, resource_kind, details)
        VALUES ($1,$2,$3,$4)
        RETURNING id, created_at`
	return r.q.QueryRow(ctx, query,
		entry.Action,
		entry.ActorID,
		entry.ResourceKind,
		entry.Details,
	).Scan(&entry.ID, &entry.CreatedAt)
}
