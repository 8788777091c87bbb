package notify

import (
	"fmt"
	"sort"
	"strings"

	"github.com/restreamkit/volunteer-system/models"
	"github.com/restreamkit/volunteer-system/services"
)

// Сборка текста отделена от доставки, чтобы сообщения можно было проверять
// без сети.

func FormatRoleRequestMessage(note services.RoleRequestNote) string {
	switch note.Status {
	case models.RequestPending:
		return fmt.Sprintf("Your application for the %s role at %s has been submitted and is awaiting review.", note.RoleTypeName, note.EventName)
	case models.RequestApproved:
		return fmt.Sprintf("Your application for the %s role at %s has been approved. You can now sign up for matches.", note.RoleTypeName, note.EventName)
	case models.RequestRejected:
		return fmt.Sprintf("Your application for the %s role at %s has been declined.", note.RoleTypeName, note.EventName)
	default:
		return fmt.Sprintf("Your application for the %s role at %s is no longer active.", note.RoleTypeName, note.EventName)
	}
}

func FormatSignupMessage(note services.SignupNote) string {
	switch note.Status {
	case models.SignupConfirmed:
		return fmt.Sprintf("You are confirmed as %s for %s.", note.RoleTypeName, note.RaceDescription)
	case models.SignupDeclined:
		if note.RoleTypeName == "" {
			return fmt.Sprintf("Your signup for %s was declined because it overlaps a match you were just confirmed for.", note.RaceDescription)
		}
		return fmt.Sprintf("Your signup as %s for %s was declined.", note.RoleTypeName, note.RaceDescription)
	case models.SignupPending:
		return fmt.Sprintf("Your confirmation as %s for %s was withdrawn; the signup is pending again.", note.RoleTypeName, note.RaceDescription)
	default:
		return fmt.Sprintf("Your signup for %s is no longer active.", note.RaceDescription)
	}
}

// FormatRosterMessage строит анонс состава, сгруппированный по ролям.
func FormatRosterMessage(note services.RosterNote) string {
	var b strings.Builder
	fmt.Fprintf(&b, "Volunteer roster for %s - %s\n", note.EventName, note.RaceDescription)

	byRole := make(map[string][]string)
	for _, slot := range note.Slots {
		name := slot.UserDisplayName
		if name == "" && slot.UserDiscordID != nil {
			name = fmt.Sprintf("<@%d>", *slot.UserDiscordID)
		}
		byRole[slot.RoleTypeName] = append(byRole[slot.RoleTypeName], name)
	}

	roles := make([]string, 0, len(byRole))
	for role := range byRole {
		roles = append(roles, role)
	}
	sort.Strings(roles)

	for _, role := range roles {
		fmt.Fprintf(&b, "%s: %s\n", role, strings.Join(byRole[role], ", "))
	}
	if note.StreamURL != nil && *note.StreamURL != "" {
		fmt.Fprintf(&b, "Watch live: %s\n", *note.StreamURL)
	}
	return strings.TrimRight(b.String(), "\n")
}
