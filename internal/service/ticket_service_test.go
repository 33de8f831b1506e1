package service

import (
	"context"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/spec-kit/helpdesk-core/internal/domain"
	"github.com/spec-kit/helpdesk-core/internal/repository"
	apperrors "github.com/spec-kit/helpdesk-core/pkg/errorutil"
)

func newTicketFixture() (*TicketService, *memTicketRepo, *domain.StaffMember) {
	dept := "it-support"
	actor := &domain.StaffMember{
		ID:           "staff-1",
		Role:         domain.StaffRoleDepartmentMember,
		DepartmentID: &dept,
		Active:       true,
	}
	repo := &memTicketRepo{tickets: []*domain.Ticket{
		{ID: "t1", ExternalKey: "HD-101", DepartmentID: dept, RequesterID: "user-1",
			Subject: "Printer jam", Status: domain.TicketStatusOpen, Version: 4},
		{ID: "t9", ExternalKey: "HD-900", DepartmentID: "facilities", RequesterID: "user-9",
			Subject: "Broken chair", Status: domain.TicketStatusOpen, Version: 1},
		{ID: "tc", ExternalKey: "HD-777", DepartmentID: dept, RequesterID: "user-7",
			Subject: "Done deal", Status: domain.TicketStatusClosed, Version: 2},
	}}
	return NewTicketService(repo), repo, actor
}

func TestGetForStaffScopesDepartment(t *testing.T) {
	svc, _, actor := newTicketFixture()
	ctx := context.Background()

	ticket, err := svc.GetForStaff(ctx, actor, "t1")
	require.NoError(t, err)
	assert.Equal(t, "HD-101", ticket.ExternalKey)

	_, err = svc.GetForStaff(ctx, actor, "t9")
	assert.True(t, apperrors.IsCode(err, "FORBIDDEN"))

	_, err = svc.GetForStaff(ctx, actor, "missing")
	assert.True(t, apperrors.IsCode(err, "NOT_FOUND"))

	admin := &domain.StaffMember{ID: "staff-admin", Role: domain.StaffRoleAdmin}
	ticket, err = svc.GetForStaff(ctx, admin, "t9")
	require.NoError(t, err)
	assert.Equal(t, "HD-900", ticket.ExternalKey)
}

func TestUpdateWithVersionOneWriterWins(t *testing.T) {
	svc, repo, actor := newTicketFixture()
	ctx := context.Background()

	subjectA := "Printer jam (building A)"
	updated, err := svc.UpdateWithVersion(ctx, actor, "t1", 4, repository.TicketPatch{Subject: &subjectA})
	require.NoError(t, err)
	assert.Equal(t, int64(5), updated.Version)
	assert.Equal(t, subjectA, updated.Subject)

	// A second writer still holding version 4 must lose.
	subjectB := "Printer jam (urgent)"
	_, err = svc.UpdateWithVersion(ctx, actor, "t1", 4, repository.TicketPatch{Subject: &subjectB})
	require.Error(t, err)
	assert.True(t, apperrors.IsCode(err, "CONCURRENT_MODIFICATION"))
	assert.Equal(t, subjectA, repo.find("t1").Subject, "the losing write changes nothing")
}

func TestUpdateWithVersionClosedTicketImmutable(t *testing.T) {
	svc, _, actor := newTicketFixture()
	ctx := context.Background()

	subject := "new subject"
	_, err := svc.UpdateWithVersion(ctx, actor, "tc", 2, repository.TicketPatch{Subject: &subject})
	require.Error(t, err)
	assert.True(t, apperrors.IsCode(err, "CONFLICT"))

	// Reopening is the one mutation a closed ticket accepts.
	reopened := domain.TicketStatusReopened
	updated, err := svc.UpdateWithVersion(ctx, actor, "tc", 2, repository.TicketPatch{Status: &reopened})
	require.NoError(t, err)
	assert.Equal(t, domain.TicketStatusReopened, updated.Status)
}

func TestUpdateWithVersionRejectsUnknownStatus(t *testing.T) {
	svc, _, actor := newTicketFixture()

	bogus := domain.TicketStatus("SHREDDED")
	_, err := svc.UpdateWithVersion(context.Background(), actor, "t1", 4, repository.TicketPatch{Status: &bogus})
	assert.True(t, apperrors.IsCode(err, "VALIDATION_FAILED"))
}
