package notify

import (
	"strings"
	"testing"

	"github.com/restreamkit/volunteer-system/models"
	"github.com/restreamkit/volunteer-system/services"
)

func int64Ptr(i int64) *int64 { return &i }

func TestFormatRoleRequestMessage(t *testing.T) {
	tests := []struct {
		status models.RoleRequestStatus
		want   string
	}{
		{models.RequestPending, "awaiting review"},
		{models.RequestApproved, "has been approved"},
		{models.RequestRejected, "has been declined"},
		{models.RequestAborted, "no longer active"},
	}
	for _, tt := range tests {
		msg := FormatRoleRequestMessage(services.RoleRequestNote{
			RoleTypeName: "Commentator",
			EventName:    "Season 1",
			Status:       tt.status,
		})
		if !strings.Contains(msg, tt.want) {
			t.Errorf("%s: expected %q in %q", tt.status, tt.want, msg)
		}
		if !strings.Contains(msg, "Commentator") || !strings.Contains(msg, "Season 1") {
			t.Errorf("%s: expected role and event names in %q", tt.status, msg)
		}
	}
}

func TestFormatSignupMessage(t *testing.T) {
	t.Run("confirmed", func(t *testing.T) {
		msg := FormatSignupMessage(services.SignupNote{
			RoleTypeName:    "Tracker",
			RaceDescription: "Round 1: A vs B",
			Status:          models.SignupConfirmed,
		})
		if !strings.Contains(msg, "confirmed as Tracker") {
			t.Errorf("unexpected message %q", msg)
		}
	})

	t.Run("declined by overlap resolution carries its own wording", func(t *testing.T) {
		msg := FormatSignupMessage(services.SignupNote{
			RaceDescription: "Round 1: A vs B",
			Status:          models.SignupDeclined,
		})
		if !strings.Contains(msg, "overlaps a match you were just confirmed for") {
			t.Errorf("unexpected message %q", msg)
		}
	})

	t.Run("declined by an organizer names the role", func(t *testing.T) {
		msg := FormatSignupMessage(services.SignupNote{
			RoleTypeName:    "Tracker",
			RaceDescription: "Round 1: A vs B",
			Status:          models.SignupDeclined,
		})
		if !strings.Contains(msg, "as Tracker") || !strings.Contains(msg, "was declined") {
			t.Errorf("unexpected message %q", msg)
		}
	})

	t.Run("revoked confirmation mentions pending again", func(t *testing.T) {
		msg := FormatSignupMessage(services.SignupNote{
			RoleTypeName:    "Tracker",
			RaceDescription: "Round 1: A vs B",
			Status:          models.SignupPending,
		})
		if !strings.Contains(msg, "pending again") {
			t.Errorf("unexpected message %q", msg)
		}
	})
}

func TestFormatRosterMessage(t *testing.T) {
	streamURL := "https://twitch.tv/example"
	note := services.RosterNote{
		RaceDescription: "Finals: A vs B",
		EventName:       "Season 1",
		StreamURL:       &streamURL,
		Slots: []services.RosterSlot{
			{RoleTypeName: "Tracker", UserDisplayName: "carol"},
			{RoleTypeName: "Commentator", UserDisplayName: "alice"},
			{RoleTypeName: "Commentator", UserDisplayName: "bob"},
			{RoleTypeName: "Restreamer", UserDiscordID: int64Ptr(123)},
		},
	}

	msg := FormatRosterMessage(note)
	lines := strings.Split(msg, "\n")
	want := []string{
		"Volunteer roster for Season 1 - Finals: A vs B",
		"Commentator: alice, bob",
		"Restreamer: <@123>",
		"Tracker: carol",
		"Watch live: https://twitch.tv/example",
	}
	if len(lines) != len(want) {
		t.Fatalf("expected %d lines, got %d: %q", len(want), len(lines), msg)
	}
	for i, line := range want {
		if lines[i] != line {
			t.Errorf("line %d: got %q, want %q", i, lines[i], line)
		}
	}
}

func TestFormatRosterMessageWithoutStream(t *testing.T) {
	msg := FormatRosterMessage(services.RosterNote{
		RaceDescription: "Finals: A vs B",
		EventName:       "Season 1",
	})
	if strings.Contains(msg, "Watch live") {
		t.Errorf("expected no stream line, got %q", msg)
	}
	if strings.HasSuffix(msg, "\n") {
		t.Errorf("expected trailing newlines trimmed, got %q", msg)
	}
}
