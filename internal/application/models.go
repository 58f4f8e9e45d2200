package application

import (
	"time"

	"github.com/example/meeting-calendar/internal/meeting"
)

// Principal represents the authenticated user invoking a service method.
type Principal struct {
	UserID string
	Email  string
}

// User represents a calendar account exposed by the application services.
type User struct {
	ID        string
	Email     string
	Name      string
	CreatedAt time.Time
	UpdatedAt time.Time
}

// MeetingInput captures caller provided fields for creating a meeting.
// The owner is referenced by email and resolved (created if absent)
// before construction.
type MeetingInput struct {
	Title       string
	Start       time.Time
	End         time.Time
	IsImportant bool
	OwnerEmail  string
}

// CreateMeetingParams wraps the data required to create a meeting.
type CreateMeetingParams struct {
	Input MeetingInput
}

// UpdateMeetingParams wraps a partial detail update for an existing meeting.
type UpdateMeetingParams struct {
	MeetingID   string
	RequesterID string
	Input       meeting.UpdateInput
}

// AddParticipantParams wraps the data required to invite a participant.
// The requester is identified by email in this flow.
type AddParticipantParams struct {
	MeetingID      string
	RequesterEmail string
	InviteeEmail   string
	InviteeName    string
}

// RemoveParticipantParams wraps the data required to remove a participant.
// Requester carries the email-like identity string supplied by the caller;
// it is compared against the owner's email.
type RemoveParticipantParams struct {
	MeetingID     string
	ParticipantID string
	Requester     string
}

// WeeklyStatsParams identifies the user and the week to aggregate.
type WeeklyStatsParams struct {
	UserID    string
	WeekStart time.Time
}

// UserCredentials models the authentication attributes persisted for a user.
type UserCredentials struct {
	User         User
	PasswordHash string
}

// Session represents an authenticated session issued to a user.
type Session struct {
	ID        string
	UserID    string
	Token     string
	ExpiresAt time.Time
	CreatedAt time.Time
	RevokedAt *time.Time
}

// AuthenticateParams captures the data required to authenticate a user.
type AuthenticateParams struct {
	Email    string
	Password string
}

// AuthenticateResult captures the outcome of a successful authentication.
type AuthenticateResult struct {
	User    User
	Session Session
}
