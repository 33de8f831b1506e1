package dto

import "github.com/spec-kit/helpdesk-core/internal/domain"

// BulkAssignRequest is the body of POST /department/tickets/bulk-assign.
type BulkAssignRequest struct {
	TicketIDs  []string `json:"ticketIds"`
	AssignedTo string   `json:"assignedTo"`
}

// BulkStatusRequest is the body of POST /department/tickets/bulk-status.
type BulkStatusRequest struct {
	TicketIDs []string            `json:"ticketIds"`
	Status    domain.TicketStatus `json:"status"`
}

// BulkOperationData is the data payload of a successful bulk response.
type BulkOperationData struct {
	OperationID    string  `json:"operationId"`
	ProcessedCount int     `json:"processedCount"`
	FailedCount    int     `json:"failedCount"`
	RequestedCount int     `json:"requestedCount"`
	ExecutionMode  string  `json:"executionMode"`
	AssignedTo     *string `json:"assignedTo,omitempty"`
	AssigneeName   *string `json:"assigneeName,omitempty"`
	Status         *string `json:"status,omitempty"`
}

// Envelope is the standard success response shape.
type Envelope struct {
	Success bool   `json:"success"`
	Message string `json:"message"`
	Data    any    `json:"data,omitempty"`
}

// BulkResultData maps a domain result to the wire payload.
func BulkResultData(result *domain.BulkResult) BulkOperationData {
	data := BulkOperationData{
		OperationID:    result.OperationID,
		ProcessedCount: result.ProcessedCount,
		FailedCount:    result.FailedCount,
		RequestedCount: result.RequestedCount,
		ExecutionMode:  string(result.Mode),
		AssignedTo:     result.AssigneeID,
		AssigneeName:   result.AssigneeName,
	}
	if result.Status != nil {
		status := string(*result.Status)
		data.Status = &status
	}
	return data
}
