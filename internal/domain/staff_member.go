package domain

import "time"

// StaffRole enumerates internal operator roles.
type StaffRole string

const (
	StaffRoleDepartmentMember StaffRole = "DEPARTMENT_MEMBER"
	StaffRoleDepartmentHead   StaffRole = "DEPARTMENT_HEAD"
	StaffRoleAdmin            StaffRole = "ADMIN"
)

// StaffMember models a department member, head, or administrator. IsHead is
// carried separately from Role so an admin acting within a department can
// still be flagged as its head.
type StaffMember struct {
	ID           string
	Name         string
	Email        string
	PasswordHash string
	Role         StaffRole
	DepartmentID *string
	IsHead       bool
	Active       bool
	CreatedAt    time.Time
	UpdatedAt    time.Time
}

// Department returns the staff member's department or empty when unscoped.
func (s *StaffMember) Department() string {
	if s == nil || s.DepartmentID == nil {
		return ""
	}
	return *s.DepartmentID
}
