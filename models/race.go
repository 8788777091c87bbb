package models

import "time"

// ScheduleKind различает живые и асинхронные гонки: асинхронные гонки не
// имеют живого ростера волонтёров.
type ScheduleKind string

const (
	ScheduleLive  ScheduleKind = "live"
	ScheduleAsync ScheduleKind = "async"
)

// Race — один запланированный матч. Расписание приходит извне и здесь
// только потребляется.
type Race struct {
	ID        int          `json:"id" db:"id"`
	Series    string       `json:"series" db:"series"`
	Event     string       `json:"event" db:"event"`
	Phase     *string      `json:"phase,omitempty" db:"phase"`
	Round     *string      `json:"round,omitempty" db:"round"`
	Matchup   string       `json:"matchup" db:"matchup"`
	StartTime *time.Time   `json:"start_time,omitempty" db:"start_time"`
	EndedAt   *time.Time   `json:"ended_at,omitempty" db:"ended_at"`
	Kind      ScheduleKind `json:"schedule_kind" db:"schedule_kind"`
	StreamURL *string      `json:"stream_url,omitempty" db:"stream_url"`
}

// HasEnded reports whether the race already finished.
func (r *Race) HasEnded(now time.Time) bool {
	return r.EndedAt != nil && r.EndedAt.Before(now)
}

// Description возвращает человекочитаемое описание матча для уведомлений,
// например "Semifinals Round 2: Team A vs Team B".
func (r *Race) Description() string {
	desc := r.Matchup
	switch {
	case r.Phase != nil && r.Round != nil:
		desc = *r.Phase + " " + *r.Round + ": " + desc
	case r.Phase != nil:
		desc = *r.Phase + ": " + desc
	case r.Round != nil:
		desc = *r.Round + ": " + desc
	}
	return desc
}
