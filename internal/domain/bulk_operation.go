package domain

// BulkOperationKind identifies which bulk mutation is running.
type BulkOperationKind string

const (
	BulkOperationAssign BulkOperationKind = "BULK_ASSIGN"
	BulkOperationStatus BulkOperationKind = "BULK_STATUS"
)

// ExecutionMode tags how a bulk write plan ran: inside a store transaction,
// or degraded to independent best-effort writes.
type ExecutionMode string

const (
	ExecutionModeTransactional ExecutionMode = "TRANSACTIONAL"
	ExecutionModeFallback      ExecutionMode = "FALLBACK"
)

// BulkOperation tracks a single bulk mutation for the duration of one
// request. It is never persisted; only the final result reaches the audit
// log.
type BulkOperation struct {
	ID             string
	Kind           BulkOperationKind
	ActorID        string
	RequestedCount int
}

// BulkResult is the outcome reported to the actor and the HTTP layer.
type BulkResult struct {
	OperationID    string
	Success        bool
	Message        string
	ProcessedCount int
	FailedCount    int
	RequestedCount int
	Mode           ExecutionMode
	AssigneeID     *string
	AssigneeName   *string
	Status         *TicketStatus
}
