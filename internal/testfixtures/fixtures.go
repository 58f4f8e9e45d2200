package testfixtures

import (
	"fmt"
	"sync/atomic"
	"time"

	"github.com/example/meeting-calendar/internal/meeting"
	"github.com/example/meeting-calendar/internal/persistence"
)

var (
	userCounter    uint64
	meetingCounter uint64
)

var referenceTime = time.Date(2025, time.March, 3, 9, 0, 0, 0, time.UTC)

// ReferenceTime returns the canonical baseline timestamp used by fixtures.
// It is a Monday, so week-aligned stats windows can start here directly.
func ReferenceTime() time.Time {
	return referenceTime
}

// UserFixture represents a deterministic user record that can be materialised
// for application or persistence tests.
type UserFixture struct {
	ID           string
	Email        string
	DisplayName  string
	PasswordHash string
	CreatedAt    time.Time
	UpdatedAt    time.Time
}

// UserOption configures the generated user fixture.
type UserOption func(*UserFixture)

// NewUserFixture returns a deterministic user fixture with optional overrides.
func NewUserFixture(opts ...UserOption) UserFixture {
	idx := atomic.AddUint64(&userCounter, 1)
	id := fmt.Sprintf("user-%03d", idx)
	created := referenceTime.Add(time.Duration(idx) * time.Minute)
	fixture := UserFixture{
		ID:           id,
		Email:        fmt.Sprintf("%s@example.com", id),
		DisplayName:  fmt.Sprintf("User %03d", idx),
		PasswordHash: fmt.Sprintf("hash-%03d", idx),
		CreatedAt:    created,
		UpdatedAt:    created,
	}
	for _, opt := range opts {
		opt(&fixture)
	}
	return fixture
}

// WithUserID overrides the generated user ID.
func WithUserID(id string) UserOption {
	return func(f *UserFixture) {
		f.ID = id
	}
}

// WithUserEmail overrides the generated email address.
func WithUserEmail(email string) UserOption {
	return func(f *UserFixture) {
		f.Email = email
	}
}

// WithUserDisplayName overrides the generated display name.
func WithUserDisplayName(name string) UserOption {
	return func(f *UserFixture) {
		f.DisplayName = name
	}
}

// Persistence returns the fixture as a persistence.User value.
func (f UserFixture) Persistence() persistence.User {
	return persistence.User{
		ID:           f.ID,
		Email:        f.Email,
		DisplayName:  f.DisplayName,
		PasswordHash: f.PasswordHash,
		CreatedAt:    f.CreatedAt,
		UpdatedAt:    f.UpdatedAt,
	}
}

// Domain returns the fixture as a meeting.User value for roster operations.
func (f UserFixture) Domain() meeting.User {
	return meeting.User{
		ID:    f.ID,
		Name:  f.DisplayName,
		Email: f.Email,
	}
}

// MeetingFixture represents a deterministic meeting record.
type MeetingFixture struct {
	ID           string
	Title        string
	Start        time.Time
	End          time.Time
	IsImportant  bool
	OwnerID      string
	Participants []persistence.Participant
	CreatedAt    time.Time
	UpdatedAt    time.Time
}

// MeetingOption configures the generated meeting fixture.
type MeetingOption func(*MeetingFixture)

// NewMeetingFixture returns a deterministic one-hour meeting fixture with
// optional overrides. Successive fixtures start on successive days.
func NewMeetingFixture(opts ...MeetingOption) MeetingFixture {
	idx := atomic.AddUint64(&meetingCounter, 1)
	start := referenceTime.AddDate(0, 0, int(idx-1)).Add(time.Hour)
	fixture := MeetingFixture{
		ID:          fmt.Sprintf("meeting-%03d", idx),
		Title:       fmt.Sprintf("定例会議 %03d", idx),
		Start:       start,
		End:         start.Add(time.Hour),
		OwnerID:     fmt.Sprintf("user-%03d", idx),
		CreatedAt:   referenceTime,
		UpdatedAt:   referenceTime,
	}
	for _, opt := range opts {
		opt(&fixture)
	}
	return fixture
}

// WithMeetingID overrides the generated meeting ID.
func WithMeetingID(id string) MeetingOption {
	return func(f *MeetingFixture) {
		f.ID = id
	}
}

// WithMeetingTitle overrides the generated title.
func WithMeetingTitle(title string) MeetingOption {
	return func(f *MeetingFixture) {
		f.Title = title
	}
}

// WithMeetingOwner overrides the generated owner ID.
func WithMeetingOwner(ownerID string) MeetingOption {
	return func(f *MeetingFixture) {
		f.OwnerID = ownerID
	}
}

// WithMeetingSpan sets the start and end instants.
func WithMeetingSpan(start, end time.Time) MeetingOption {
	return func(f *MeetingFixture) {
		f.Start = start
		f.End = end
	}
}

// WithMeetingImportant marks the fixture as important.
func WithMeetingImportant(important bool) MeetingOption {
	return func(f *MeetingFixture) {
		f.IsImportant = important
	}
}

// WithMeetingParticipant appends a participant snapshot for the given user.
func WithMeetingParticipant(participantID string, user UserFixture, joinedAt time.Time) MeetingOption {
	return func(f *MeetingFixture) {
		f.Participants = append(f.Participants, persistence.Participant{
			ID:        participantID,
			MeetingID: f.ID,
			UserID:    user.ID,
			UserName:  user.DisplayName,
			UserEmail: user.Email,
			JoinedAt:  joinedAt,
		})
	}
}

// Persistence returns the fixture as a persistence.Meeting value.
func (f MeetingFixture) Persistence() persistence.Meeting {
	participants := make([]persistence.Participant, len(f.Participants))
	copy(participants, f.Participants)
	for i := range participants {
		participants[i].MeetingID = f.ID
	}
	return persistence.Meeting{
		ID:           f.ID,
		Title:        f.Title,
		Start:        f.Start,
		End:          f.End,
		IsImportant:  f.IsImportant,
		OwnerID:      f.OwnerID,
		Participants: participants,
		CreatedAt:    f.CreatedAt,
		UpdatedAt:    f.UpdatedAt,
	}
}

// Domain returns the fixture as a meeting.Meeting aggregate value.
func (f MeetingFixture) Domain() meeting.Meeting {
	participants := make([]meeting.Participant, 0, len(f.Participants))
	for _, p := range f.Participants {
		participants = append(participants, meeting.Participant{
			ID:        p.ID,
			UserID:    p.UserID,
			UserName:  p.UserName,
			UserEmail: p.UserEmail,
			JoinedAt:  p.JoinedAt,
		})
	}
	return meeting.Meeting{
		ID:           f.ID,
		Title:        f.Title,
		Start:        f.Start,
		End:          f.End,
		IsImportant:  f.IsImportant,
		OwnerID:      f.OwnerID,
		Participants: participants,
		CreatedAt:    f.CreatedAt,
		UpdatedAt:    f.UpdatedAt,
	}
}
