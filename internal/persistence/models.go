package persistence

import "time"

// User represents a calendar account stored in persistence.
type User struct {
	ID           string
	Email        string
	DisplayName  string
	PasswordHash string
	CreatedAt    time.Time
	UpdatedAt    time.Time
}

// Meeting represents a calendar entry with its participant snapshots.
type Meeting struct {
	ID           string
	Title        string
	Start        time.Time
	End          time.Time
	IsImportant  bool
	OwnerID      string
	Participants []Participant
	CreatedAt    time.Time
	UpdatedAt    time.Time
}

// Participant is a denormalized snapshot of a user who joined a meeting.
// The name and email columns are frozen at join time.
type Participant struct {
	ID        string
	MeetingID string
	UserID    string
	UserName  string
	UserEmail string
	JoinedAt  time.Time
}

// Session represents an authentication session persisted for a user.
type Session struct {
	ID        string
	UserID    string
	Token     string
	ExpiresAt time.Time
	CreatedAt time.Time
	RevokedAt *time.Time
}
