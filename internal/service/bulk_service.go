package service

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/google/uuid"
	"github.com/jackc/pgx/v5"
	"go.uber.org/zap"

	"github.com/spec-kit/helpdesk-core/internal/domain"
	"github.com/spec-kit/helpdesk-core/internal/events"
	"github.com/spec-kit/helpdesk-core/internal/persistence"
	"github.com/spec-kit/helpdesk-core/internal/repository"
	apperrors "github.com/spec-kit/helpdesk-core/pkg/errorutil"
)

// BulkService runs the bulk ticket mutations issued by department heads.
// Write plans execute inside a store transaction when the deployment
// supports one, degrading to independent best-effort writes otherwise.
// Callers may assume atomicity is attempted, never that it is guaranteed.
type BulkService struct {
	tickets    repository.TicketRepository
	staff      repository.StaffRepository
	audit      repository.AuditRepository
	runner     *persistence.TxRunner
	fallback   persistence.Querier
	notifier   *LifecycleNotifier
	dispatcher events.Dispatcher
	logger     *zap.Logger
}

// BulkDependencies bundles collaborators for the bulk service.
type BulkDependencies struct {
	TicketRepo repository.TicketRepository
	StaffRepo  repository.StaffRepository
	AuditRepo  repository.AuditRepository
	Runner     *persistence.TxRunner
	// Fallback is the non-transactional querier (the pool) used when the
	// store reports transactions unsupported.
	Fallback   persistence.Querier
	Notifier   *LifecycleNotifier
	Dispatcher events.Dispatcher
	Logger     *zap.Logger
}

// NewBulkService constructs the service.
func NewBulkService(deps BulkDependencies) *BulkService {
	return &BulkService{
		tickets:    deps.TicketRepo,
		staff:      deps.StaffRepo,
		audit:      deps.AuditRepo,
		runner:     deps.Runner,
		fallback:   deps.Fallback,
		notifier:   deps.Notifier,
		dispatcher: deps.Dispatcher,
		logger:     deps.Logger,
	}
}

// BulkAssign assigns the requested tickets of the actor's department to a
// member of that department. OPEN tickets transition to ASSIGNED; tickets
// already in flight keep their status and only change assignee.
func (s *BulkService) BulkAssign(ctx context.Context, actor *domain.StaffMember, ticketIDs []string, assigneeID string) (result *domain.BulkResult, err error) {
	department, verr := requireActingHead(actor)
	if verr != nil {
		return nil, verr
	}
	if len(ticketIDs) == 0 {
		return nil, apperrors.NewValidationError("ticketIds required", nil)
	}

	assignee, err := s.staff.GetByID(ctx, assigneeID)
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, apperrors.NewNotFound("assignee", map[string]any{"staff_id": assigneeID})
		}
		return nil, apperrors.MapError(err)
	}
	if assignee.IsHead || assignee.Role == domain.StaffRoleDepartmentHead {
		return nil, apperrors.NewForbidden("department heads cannot receive ticket assignments")
	}
	if assignee.Role != domain.StaffRoleDepartmentMember || assignee.Department() != department {
		return nil, apperrors.NewForbidden("assignee must be a member of your department")
	}
	if !assignee.Active {
		return nil, apperrors.NewConflict("assignee inactive", map[string]any{"staff_id": assigneeID})
	}

	op := domain.BulkOperation{
		ID:             uuid.NewString(),
		Kind:           domain.BulkOperationAssign,
		ActorID:        actor.ID,
		RequestedCount: len(ticketIDs),
	}
	s.notifier.OperationStarted(ctx, op)

	var processed int64
	defer func() {
		s.emitCompletion(ctx, op, result, err)
	}()

	// Re-executed from the top on transient-conflict retry, so the tally
	// resets inside the plan.
	plan := func(ctx context.Context, q persistence.Querier) error {
		repo := s.tickets.WithQuerier(q)
		processed = 0
		opened, err := repo.AssignOpenTickets(ctx, ticketIDs, department, assignee.ID, assignee.Name)
		if err != nil {
			return err
		}
		reassigned, err := repo.ReassignActiveTickets(ctx, ticketIDs, department, assignee.ID, assignee.Name)
		if err != nil {
			return err
		}
		processed = opened + reassigned
		return nil
	}

	mode, err := s.runPlan(ctx, plan)
	if err != nil {
		return nil, apperrors.MapError(err)
	}

	affected, err := s.tickets.ListAssigned(ctx, ticketIDs, assignee.ID)
	if err != nil {
		return nil, apperrors.MapError(err)
	}
	for i := range affected {
		ticket := &affected[i]
		if ticket.RequesterID == assignee.ID {
			continue
		}
		s.publishEvent(ctx, events.Event{
			Type:        events.EventTicketAssigned,
			TicketID:    ticket.ID,
			OperationID: op.ID,
			ActorID:     actor.ID,
			Payload: events.TicketAssignedPayload{
				TicketKey:     ticket.ExternalKey,
				TicketSubject: ticket.Subject,
				RequesterID:   ticket.RequesterID,
				AssigneeID:    assignee.ID,
				AssigneeName:  assignee.Name,
			},
		})
	}

	s.recordAudit(ctx, "bulk_assign", actor.ID, map[string]any{
		"operation_id":   op.ID,
		"assignee_id":    assignee.ID,
		"requested":      len(ticketIDs),
		"modified_count": processed,
		"execution_mode": string(mode),
	})

	result = &domain.BulkResult{
		OperationID:    op.ID,
		Success:        true,
		Message:        fmt.Sprintf("assigned %d of %d tickets to %s", processed, len(ticketIDs), assignee.Name),
		ProcessedCount: int(processed),
		FailedCount:    len(ticketIDs) - int(processed),
		RequestedCount: len(ticketIDs),
		Mode:           mode,
		AssigneeID:     &assignee.ID,
		AssigneeName:   &assignee.Name,
	}
	return result, nil
}

// BulkUpdateStatus applies a status to the requested tickets of the actor's
// department. CLOSED tickets are immutable through this path; a RESOLVED
// target stamps the resolution time in the same write.
func (s *BulkService) BulkUpdateStatus(ctx context.Context, actor *domain.StaffMember, ticketIDs []string, newStatus domain.TicketStatus) (result *domain.BulkResult, err error) {
	department, verr := requireActingHead(actor)
	if verr != nil {
		return nil, verr
	}
	if len(ticketIDs) == 0 {
		return nil, apperrors.NewValidationError("ticketIds required", nil)
	}
	if !domain.ValidTicketStatus(newStatus) {
		return nil, apperrors.NewValidationError("unknown ticket status", map[string]any{"status": newStatus})
	}

	op := domain.BulkOperation{
		ID:             uuid.NewString(),
		Kind:           domain.BulkOperationStatus,
		ActorID:        actor.ID,
		RequestedCount: len(ticketIDs),
	}
	s.notifier.OperationStarted(ctx, op)

	var affected []domain.Ticket
	defer func() {
		s.emitCompletion(ctx, op, result, err)
	}()

	plan := func(ctx context.Context, q persistence.Querier) error {
		repo := s.tickets.WithQuerier(q)
		affected = nil
		rows, err := repo.BulkSetStatus(ctx, ticketIDs, department, newStatus)
		if err != nil {
			return err
		}
		affected = rows
		return nil
	}

	mode, err := s.runPlan(ctx, plan)
	if err != nil {
		return nil, apperrors.MapError(err)
	}

	for i := range affected {
		ticket := &affected[i]
		s.publishEvent(ctx, events.Event{
			Type:        events.EventTicketStatusChanged,
			TicketID:    ticket.ID,
			OperationID: op.ID,
			ActorID:     actor.ID,
			Payload: events.TicketStatusChangedPayload{
				TicketKey:     ticket.ExternalKey,
				TicketSubject: ticket.Subject,
				RequesterID:   ticket.RequesterID,
				NewStatus:     newStatus,
			},
		})
	}

	processed := len(affected)
	s.recordAudit(ctx, "bulk_update_status", actor.ID, map[string]any{
		"operation_id":   op.ID,
		"status":         string(newStatus),
		"requested":      len(ticketIDs),
		"modified_count": processed,
		"execution_mode": string(mode),
	})

	result = &domain.BulkResult{
		OperationID:    op.ID,
		Success:        true,
		Message:        fmt.Sprintf("moved %d of %d tickets to %s", processed, len(ticketIDs), newStatus),
		ProcessedCount: processed,
		FailedCount:    len(ticketIDs) - processed,
		RequestedCount: len(ticketIDs),
		Mode:           mode,
		Status:         &newStatus,
	}
	return result, nil
}

// runPlan executes the write plan transactionally, falling back to the
// non-transactional querier when the store reports transactions
// unsupported. The returned mode tags which path ran.
func (s *BulkService) runPlan(ctx context.Context, plan func(context.Context, persistence.Querier) error) (domain.ExecutionMode, error) {
	err := s.runner.WithTransaction(ctx, func(ctx context.Context, session persistence.Session) error {
		return plan(ctx, session)
	}, persistence.TxOptions{})
	if err == nil {
		return domain.ExecutionModeTransactional, nil
	}
	if !errors.Is(err, persistence.ErrTransactionsUnsupported) {
		return domain.ExecutionModeTransactional, err
	}

	s.logger.Warn("transactions unsupported, executing bulk plan non-atomically")
	if err := plan(ctx, s.fallback); err != nil {
		return domain.ExecutionModeFallback, err
	}
	return domain.ExecutionModeFallback, nil
}

func (s *BulkService) emitCompletion(ctx context.Context, op domain.BulkOperation, result *domain.BulkResult, err error) {
	if err != nil {
		s.notifier.OperationCompleted(ctx, op, false, "bulk operation failed: "+err.Error(), 0, op.RequestedCount)
		return
	}
	if result != nil {
		s.notifier.OperationCompleted(ctx, op, true, result.Message, result.ProcessedCount, result.FailedCount)
	}
}

func (s *BulkService) publishEvent(ctx context.Context, event events.Event) {
	if s.dispatcher == nil {
		return
	}
	if event.ID == "" {
		event.ID = uuid.NewString()
	}
	if event.Timestamp.IsZero() {
		event.Timestamp = time.Now()
	}
	_ = s.dispatcher.Publish(ctx, event)
}

// recordAudit is best-effort: the mutation is already committed, so an
// audit failure is logged rather than unwinding the operation.
func (s *BulkService) recordAudit(ctx context.Context, action, actorID string, details map[string]any) {
	if s.audit == nil {
		return
	}
	entry := &domain.AuditEntry{
		Action:       action,
		ActorID:      actorID,
		ResourceKind: "tickets",
		Details:      details,
	}
	if err := s.audit.Append(ctx, entry); err != nil {
		s.logger.Warn("audit append failed", zap.String("action", action), zap.Error(err))
	}
}

func requireActingHead(actor *domain.StaffMember) (string, error) {
	if actor == nil {
		return "", apperrors.NewUnauthorized("staff required")
	}
	if actor.Role != domain.StaffRoleDepartmentHead && !actor.IsHead {
		return "", apperrors.NewForbidden("department head role required")
	}
	department := actor.Department()
	if department == "" {
		return "", apperrors.NewForbidden("acting head has no department scope")
	}
	return department, nil
}
