package testfixtures

import (
	"testing"
	"time"
)

func TestUserFixtureOverrides(t *testing.T) {
	fixture := NewUserFixture(
		WithUserID("user-custom"),
		WithUserEmail("custom@example.com"),
		WithUserDisplayName("カスタム"),
	)

	record := fixture.Persistence()
	if record.ID != "user-custom" || record.Email != "custom@example.com" {
		t.Fatalf("unexpected persistence record %+v", record)
	}

	domainUser := fixture.Domain()
	if domainUser.Name != "カスタム" {
		t.Fatalf("unexpected domain user %+v", domainUser)
	}
}

func TestMeetingFixtureParticipantsFollowID(t *testing.T) {
	owner := NewUserFixture()
	guest := NewUserFixture()

	fixture := NewMeetingFixture(
		WithMeetingOwner(owner.ID),
		WithMeetingID("meeting-renamed"),
		WithMeetingParticipant("participant-1", guest, ReferenceTime()),
	)

	record := fixture.Persistence()
	if len(record.Participants) != 1 {
		t.Fatalf("expected one participant, got %d", len(record.Participants))
	}
	if record.Participants[0].MeetingID != "meeting-renamed" {
		t.Fatalf("expected participant to follow the meeting ID, got %q", record.Participants[0].MeetingID)
	}
	if record.Participants[0].UserEmail != guest.Email {
		t.Fatalf("expected participant snapshot of %q, got %q", guest.Email, record.Participants[0].UserEmail)
	}

	aggregate := fixture.Domain()
	if aggregate.ID != "meeting-renamed" || len(aggregate.Participants) != 1 {
		t.Fatalf("unexpected aggregate %+v", aggregate)
	}
	if aggregate.End.Sub(aggregate.Start) != time.Hour {
		t.Fatalf("expected one-hour default span, got %s", aggregate.End.Sub(aggregate.Start))
	}
}
