package repository

import (
	"context"
	"fmt"
	"strings"

	"github.com/jackc/pgx/v5"

	"github.com/spec-kit/helpdesk-core/internal/domain"
	"github.com/spec-kit/helpdesk-core/internal/persistence"
	apperrors "github.com/spec-kit/helpdesk-core/pkg/errorutil"
)

// TicketPatch carries the fields an optimistic-lock update may change.
type TicketPatch struct {
	Subject      *string
	Description  *string
	Status       *domain.TicketStatus
	Priority     *domain.TicketPriority
	AssigneeID   *string
	AssigneeName *string
}

// TicketRepository encapsulates ticket persistence. Bulk methods are
// conditional set-based updates scoped to a department; they never touch
// tickets outside the given scope regardless of the requested ID set.
type TicketRepository interface {
	// WithQuerier rebinds the repository to a transactional session.
	WithQuerier(q persistence.Querier) TicketRepository

	GetByID(ctx context.Context, id string) (*domain.Ticket, error)
	ListByIDs(ctx context.Context, ids []string) ([]domain.Ticket, error)

	// AssignOpenTickets moves OPEN tickets in the department to ASSIGNED
	// with the given assignee. Returns the number of rows modified.
	AssignOpenTickets(ctx context.Context, ids []string, departmentID, assigneeID, assigneeName string) (int64, error)

	// ReassignActiveTickets changes the assignee of non-OPEN, non-CLOSED
	// tickets in the department without touching their status.
	ReassignActiveTickets(ctx context.Context, ids []string, departmentID, assigneeID, assigneeName string) (int64, error)

	// BulkSetStatus applies status to the requested tickets in the
	// department, excluding CLOSED ones. RESOLVED stamps resolved_at in the
	// same write. Returns the affected tickets.
	BulkSetStatus(ctx context.Context, ids []string, departmentID string, status domain.TicketStatus) ([]domain.Ticket, error)

	// ListAssigned returns the subset of ids now carrying assigneeID, used
	// to compute the true affected set after an assign plan.
	ListAssigned(ctx context.Context, ids []string, assigneeID string) ([]domain.Ticket, error)

	// UpdateWithVersion performs a version-stamped conditional update and
	// fails with a CONCURRENT_MODIFICATION error when another writer got
	// there first.
	UpdateWithVersion(ctx context.Context, id string, expectedVersion int64, patch TicketPatch) (*domain.Ticket, error)
}

type ticketRepository struct {
	q persistence.Querier
}

// NewTicketRepository instantiates the repository over a pool or session.
func NewTicketRepository(q persistence.Querier) TicketRepository {
	return &ticketRepository{q: q}
}

func (r *ticketRepository) WithQuerier(q persistence.Querier) TicketRepository {
	return &ticketRepository{q: q}
}

const ticketColumns = `id, external_key, requester_user_id, department_id, assignee_staff_id, assignee_name,
               subject, description, status, priority, version, created_at, updated_at, resolved_at, closed_at`

func (r *ticketRepository) GetByID(ctx context.Context, id string) (*domain.Ticket, error) {
	query := fmt.Sprintf(`SELECT %s FROM tickets WHERE id=$1`, ticketColumns)
	var ticket domain.Ticket
	if err := scanTicket(r.q.QueryRow(ctx, query, id), &ticket); err != nil {
		return nil, err
	}
	return &ticket, nil
}

func (r *ticketRepository) ListByIDs(ctx context.Context, ids []string) ([]domain.Ticket, error) {
	if len(ids) == 0 {
		return nil, nil
	}
	query := fmt.Sprintf(`SELECT %s FROM tickets WHERE id = ANY($1) ORDER BY created_at`, ticketColumns)
	rows, err := r.q.Query(ctx, query, ids)
	if err != nil {
		return nil, err
	}
	defer rows.Close()
	return scanTickets(rows)
}

func (r *ticketRepository) AssignOpenTickets(ctx context.Context, ids []string, departmentID, assigneeID, assigneeName string) (int64, error) {
	if len(ids) == 0 {
		return 0, nil
	}
	const query = `
        UPDATE tickets
        SET status=$1, assignee_staff_id=$2, assignee_name=$3, version=version+1, updated_at=NOW()
        WHERE id = ANY($4) AND department_id=$5 AND status=$6`
	cmd, err := r.q.Exec(ctx, query,
		domain.TicketStatusAssigned, assigneeID, assigneeName, ids, departmentID, domain.TicketStatusOpen)
	if err != nil {
		return 0, err
	}
	return cmd.RowsAffected(), nil
}

func (r *ticketRepository) ReassignActiveTickets(ctx context.Context, ids []string, departmentID, assigneeID, assigneeName string) (int64, error) {
	if len(ids) == 0 {
		return 0, nil
	}
	const query = `
        UPDATE tickets
        SET assignee_staff_id=$1, assignee_name=$2, version=version+1, updated_at=NOW()
        WHERE id = ANY($3) AND department_id=$4 AND status NOT IN ($5, $6)`
	cmd, err := r.q.Exec(ctx, query,
		assigneeID, assigneeName, ids, departmentID, domain.TicketStatusOpen, domain.TicketStatusClosed)
	if err != nil {
		return 0, err
	}
	return cmd.RowsAffected(), nil
}

func (r *ticketRepository) BulkSetStatus(ctx context.Context, ids []string, departmentID string, status domain.TicketStatus) ([]domain.Ticket, error) {
	if len(ids) == 0 {
		return nil, nil
	}
	resolvedClause := "resolved_at"
	if status == domain.TicketStatusResolved {
		resolvedClause = "NOW()"
	}
	query := fmt.Sprintf(`
        UPDATE tickets
        SET status=$1, resolved_at=%s, version=version+1, updated_at=NOW()
        WHERE id = ANY($2) AND department_id=$3 AND status <> $4
        RETURNING %s`, resolvedClause, ticketColumns)
	rows, err := r.q.Query(ctx, query, status, ids, departmentID, domain.TicketStatusClosed)
	if err != nil {
		return nil, err
	}
	defer rows.Close()
	return scanTickets(rows)
}

func (r *ticketRepository) ListAssigned(ctx context.Context, ids []string, assigneeID string) ([]domain.Ticket, error) {
	if len(ids) == 0 {
		return nil, nil
	}
	query := fmt.Sprintf(`SELECT %s FROM tickets WHERE id = ANY($1) AND assignee_staff_id=$2`, ticketColumns)
	rows, err := r.q.Query(ctx, query, ids, assigneeID)
	if err != nil {
		return nil, err
	}
	defer rows.Close()
	return scanTickets(rows)
}

func (r *ticketRepository) UpdateWithVersion(ctx context.Context, id string, expectedVersion int64, patch TicketPatch) (*domain.Ticket, error) {
	sets := []string{"version=version+1", "updated_at=NOW()"}
	args := []any{}

	addSet := func(column string, value any) {
		args = append(args, value)
		sets = append(sets, fmt.Sprintf("%s=$%d", column, len(args)))
	}
	if patch.Subject != nil {
		addSet("subject", *patch.Subject)
	}
	if patch.Description != nil {
		addSet("description", *patch.Description)
	}
	if patch.Status != nil {
		addSet("status", *patch.Status)
	}
	if patch.Priority != nil {
		addSet("priority", *patch.Priority)
	}
	if patch.AssigneeID != nil {
		addSet("assignee_staff_id", *patch.AssigneeID)
	}
	if patch.AssigneeName != nil {
		addSet("assignee_name", *patch.AssigneeName)
	}

	args = append(args, id)
	idArg := len(args)
	args = append(args, expectedVersion)
	versionArg := len(args)

	query := fmt.Sprintf(`UPDATE tickets SET %s WHERE id=$%d AND version=$%d RETURNING %s`,
		strings.Join(sets, ", "), idArg, versionArg, ticketColumns)

	var ticket domain.Ticket
	if err := scanTicket(r.q.QueryRow(ctx, query, args...), &ticket); err != nil {
		if err == pgx.ErrNoRows {
			return nil, apperrors.NewConcurrentModification("ticket", map[string]any{
				"ticket_id":        id,
				"expected_version": expectedVersion,
			})
		}
		return nil, err
	}
	return &ticket, nil
}

func scanTicket(row pgx.Row, ticket *domain.Ticket) error {
	return row.Scan(
		&ticket.ID,
		&ticket.ExternalKey,
		&ticket.RequesterID,
		&ticket.DepartmentID,
		&ticket.AssigneeID,
		&ticket.AssigneeName,
		&ticket.Subject,
		&ticket.Description,
		&ticket.Status,
		&ticket.Priority,
		&ticket.Version,
		&ticket.CreatedAt,
		&ticket.UpdatedAt,
		&ticket.ResolvedAt,
		&ticket.ClosedAt,
	)
}

func scanTickets(rows pgx.Rows) ([]domain.Ticket, error) {
	var result []domain.Ticket
	for rows.Next() {
		var ticket domain.Ticket
		if err := scanTicket(rows, &ticket); err != nil {
			return nil, err
		}
		result = append(result, ticket)
	}
	return result, rows.Err()
}
