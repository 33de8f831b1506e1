package dto

import "time"

// StaffLoginRequest is the body of POST /auth/staff/login.
type StaffLoginRequest struct {
	Email    string `json:"email"`
	Password string `json:"password"`
}

// StaffLoginResponse carries the issued token.
type StaffLoginResponse struct {
	Token     string    `json:"token"`
	ExpiresAt time.Time `json:"expiresAt"`
	StaffID   string    `json:"staffId"`
	Name      string    `json:"name"`
	Role      string    `json:"role"`
	IsHead    bool      `json:"isHead"`
}

// ChangePasswordRequest is the body of POST /auth/password/change.
type ChangePasswordRequest struct {
	CurrentPassword string `json:"currentPassword"`
	NewPassword     string `json:"newPassword"`
}
