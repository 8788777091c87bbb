package models

import (
	"testing"
	"time"
)

func TestRoleRequestStatusTransitions(t *testing.T) {
	tests := []struct {
		from, to RoleRequestStatus
		want     bool
	}{
		{RequestPending, RequestApproved, true},
		{RequestPending, RequestRejected, true},
		{RequestPending, RequestAborted, true},
		{RequestApproved, RequestPending, true},
		{RequestApproved, RequestAborted, true},
		{RequestApproved, RequestRejected, false},
		{RequestRejected, RequestPending, false},
		{RequestRejected, RequestApproved, false},
		{RequestAborted, RequestPending, false},
		{RequestPending, RequestPending, false},
	}
	for _, tt := range tests {
		if got := tt.from.CanTransitionTo(tt.to); got != tt.want {
			t.Errorf("%s -> %s: got %v, want %v", tt.from, tt.to, got, tt.want)
		}
	}
}

func TestRoleRequestStatusIsActive(t *testing.T) {
	active := map[RoleRequestStatus]bool{
		RequestPending:  true,
		RequestApproved: true,
		RequestRejected: false,
		RequestAborted:  false,
	}
	for status, want := range active {
		if got := status.IsActive(); got != want {
			t.Errorf("%s.IsActive(): got %v, want %v", status, got, want)
		}
	}
}

func TestSignupStatusTransitions(t *testing.T) {
	tests := []struct {
		from, to SignupStatus
		want     bool
	}{
		{SignupPending, SignupConfirmed, true},
		{SignupPending, SignupDeclined, true},
		{SignupPending, SignupAborted, true},
		{SignupConfirmed, SignupPending, true},
		{SignupConfirmed, SignupDeclined, false},
		{SignupConfirmed, SignupAborted, false},
		{SignupDeclined, SignupPending, false},
		{SignupAborted, SignupConfirmed, false},
	}
	for _, tt := range tests {
		if got := tt.from.CanTransitionTo(tt.to); got != tt.want {
			t.Errorf("%s -> %s: got %v, want %v", tt.from, tt.to, got, tt.want)
		}
	}
}

func TestPendingSignupWindowOverlaps(t *testing.T) {
	at := func(hour, minute int) time.Time {
		return time.Date(2026, time.March, 14, hour, minute, 0, 0, time.UTC)
	}
	hour := time.Hour
	start := at(10, 30)

	tests := []struct {
		name   string
		window PendingSignupWindow
		start  time.Time
		want   bool
	}{
		{"partial overlap", PendingSignupWindow{Start: &start, Duration: hour}, at(10, 0), true},
		{"contained window", PendingSignupWindow{Start: &start, Duration: 10 * time.Minute}, at(10, 0), true},
		{"identical window", PendingSignupWindow{Start: &start, Duration: hour}, at(10, 30), true},
		{"touching at the end", PendingSignupWindow{Start: &start, Duration: hour}, at(9, 30), false},
		{"touching at the start", PendingSignupWindow{Start: &start, Duration: hour}, at(11, 30), false},
		{"disjoint", PendingSignupWindow{Start: &start, Duration: hour}, at(14, 0), false},
		{"no known start", PendingSignupWindow{Start: nil, Duration: hour}, at(10, 30), false},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if got := tt.window.Overlaps(tt.start, hour); got != tt.want {
				t.Errorf("Overlaps(%v): got %v, want %v", tt.start, got, tt.want)
			}
		})
	}
}

func TestEventHasEnded(t *testing.T) {
	now := time.Date(2026, time.March, 14, 12, 0, 0, 0, time.UTC)
	past := now.Add(-time.Hour)
	future := now.Add(time.Hour)

	if (&Event{}).HasEnded(now) {
		t.Error("event without end date must never be ended")
	}
	if !(&Event{EndDate: &past}).HasEnded(now) {
		t.Error("event with a past end date must be ended")
	}
	if (&Event{EndDate: &future}).HasEnded(now) {
		t.Error("event with a future end date must not be ended")
	}
}

func TestRaceDescription(t *testing.T) {
	phase := "Semifinals"
	round := "Round 2"
	tests := []struct {
		name string
		race Race
		want string
	}{
		{"matchup only", Race{Matchup: "A vs B"}, "A vs B"},
		{"phase and round", Race{Phase: &phase, Round: &round, Matchup: "A vs B"}, "Semifinals Round 2: A vs B"},
		{"phase only", Race{Phase: &phase, Matchup: "A vs B"}, "Semifinals: A vs B"},
		{"round only", Race{Round: &round, Matchup: "A vs B"}, "Round 2: A vs B"},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if got := tt.race.Description(); got != tt.want {
				t.Errorf("got %q, want %q", got, tt.want)
			}
		})
	}
}
