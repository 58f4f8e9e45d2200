package meeting

import (
	"strings"
	"time"
)

// MinDuration is the shortest span a meeting may occupy.
const MinDuration = 15 * time.Minute

// MaxParticipants caps the roster size of a single meeting.
const MaxParticipants = 50

// User carries the resolved display fields of a user joining a meeting.
type User struct {
	ID    string
	Name  string
	Email string
}

// Participant is a snapshot of a user at the moment of joining. Later
// changes to the source user do not update past participant records.
type Participant struct {
	ID        string
	UserID    string
	UserName  string
	UserEmail string
	JoinedAt  time.Time
}

// Meeting is the aggregate root. It is mutated only through its own
// methods; every invariant check happens before any field assignment.
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

// CreateInput captures caller provided fields for a new meeting.
type CreateInput struct {
	Title       string
	Start       time.Time
	End         time.Time
	IsImportant bool
	OwnerID     string
}

// UpdateInput captures a partial detail update. Nil fields are left unchanged.
type UpdateInput struct {
	Title       *string
	Start       *time.Time
	End         *time.Time
	IsImportant *bool
}

// New validates the input and constructs a meeting with an empty roster.
// Checks run in a fixed order and the first violated rule determines the
// returned message.
func New(input CreateInput, id string, now time.Time) (Meeting, error) {
	title := strings.TrimSpace(input.Title)
	if title == "" {
		return Meeting{}, &ValidationError{Message: "タイトルは必須です"}
	}
	if input.Start.IsZero() || input.End.IsZero() {
		return Meeting{}, &ValidationError{Message: "開始日時と終了日時は必須です"}
	}
	if err := validateTimeSpan(input.Start, input.End); err != nil {
		return Meeting{}, err
	}
	owner := strings.TrimSpace(input.OwnerID)
	if owner == "" {
		return Meeting{}, &ValidationError{Message: "オーナーは必須です"}
	}

	return Meeting{
		ID:          id,
		Title:       title,
		Start:       input.Start,
		End:         input.End,
		IsImportant: input.IsImportant,
		OwnerID:     owner,
		CreatedAt:   now,
		UpdatedAt:   now,
	}, nil
}

// ModifyDetails applies a partial update after authorization and lifecycle
// checks. The lifecycle guard evaluates the stored start time, before any
// new start is applied.
func (m *Meeting) ModifyDetails(input UpdateInput, requesterID string, now time.Time) error {
	if requesterID != m.OwnerID {
		return &ForbiddenError{Message: "オーナーのみが会議を編集できます"}
	}
	if !m.Start.After(now) {
		return &BadRequestError{Message: "開始済みの会議は編集できません"}
	}

	title := m.Title
	if input.Title != nil {
		title = strings.TrimSpace(*input.Title)
		if title == "" {
			return &ValidationError{Message: "タイトルは必須です"}
		}
	}

	if input.Start != nil || input.End != nil {
		start := m.Start
		end := m.End
		if input.Start != nil {
			start = *input.Start
		}
		if input.End != nil {
			end = *input.End
		}
		if start.IsZero() || end.IsZero() {
			return &ValidationError{Message: "開始日時と終了日時は必須です"}
		}
		if err := validateTimeSpan(start, end); err != nil {
			return err
		}
		m.Start = start
		m.End = end
	}

	m.Title = title
	if input.IsImportant != nil {
		m.IsImportant = *input.IsImportant
	}
	m.UpdatedAt = now
	return nil
}

// AddParticipant appends a snapshot of the user to the roster. Ownership
// authorization is the caller's responsibility; the aggregate enforces only
// the structural invariants of the roster.
func (m *Meeting) AddParticipant(user User, id string, now time.Time) error {
	if len(m.Participants) >= MaxParticipants {
		return &ValidationError{Message: "参加者は50名までです"}
	}
	for _, p := range m.Participants {
		if p.UserID == user.ID {
			return &ValidationError{Message: "この参加者は既に追加されています"}
		}
	}

	m.Participants = append(m.Participants, Participant{
		ID:        id,
		UserID:    user.ID,
		UserName:  user.Name,
		UserEmail: user.Email,
		JoinedAt:  now,
	})
	m.UpdatedAt = now
	return nil
}

// RemoveParticipant deletes the first roster entry matching the user ID.
// A missing entry is a no-op, not an error; UpdatedAt is refreshed only
// when a removal occurred.
func (m *Meeting) RemoveParticipant(userID string, now time.Time) bool {
	for i, p := range m.Participants {
		if p.UserID == userID {
			m.Participants = append(m.Participants[:i], m.Participants[i+1:]...)
			m.UpdatedAt = now
			return true
		}
	}
	return false
}

// ParticipantByID looks up a roster entry by its participant identifier.
func (m Meeting) ParticipantByID(id string) (Participant, bool) {
	for _, p := range m.Participants {
		if p.ID == id {
			return p, true
		}
	}
	return Participant{}, false
}

func validateTimeSpan(start, end time.Time) error {
	if !start.Before(end) {
		return &ValidationError{Message: "終了日時は開始日時より後である必要があります"}
	}
	if end.Sub(start) < MinDuration {
		return &ValidationError{Message: "会議は15分以上である必要があります"}
	}
	return nil
}
