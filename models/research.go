// Package models defines the records persisted by the portal and the view
// models rendered by its pages.
// File: models/research.go
package models

import "time"

// ----------------------- competition -----------------------

// Competition is a contest teams can recruit for. Titles are compared by value;
// nothing in the schema makes them unique.
type Competition struct {
	ID         int64     `db:"id" json:"id"`
	Title      string    `db:"title" json:"title"`
	Organizer  string    `db:"organizer" json:"organizer"`
	ApplyStart string    `db:"apply_start" json:"apply_start"`
	ApplyEnd   string    `db:"apply_end" json:"apply_end"`
	EventStart string    `db:"event_start" json:"event_start"`
	EventEnd   string    `db:"event_end" json:"event_end"`
	Summary    string    `db:"summary" json:"summary"`
	Mode       string    `db:"mode" json:"mode"`
	Tags       string    `db:"tags" json:"tags"` // comma separated; holds the location for catalog imports
	Difficulty string    `db:"difficulty" json:"difficulty"`
	CoverImage string    `db:"cover_image" json:"cover_image"`
	Approved   bool      `db:"approved" json:"approved"`
	CreatedAt  time.Time `db:"created_at" json:"created_at"`
}

// ----------------------- team board -----------------------

// TeamPost is a team-recruitment post. It links to a Competition or names a
// competition in free text.
type TeamPost struct {
	ID                int64     `db:"id" json:"id"`
	CompetitionID     *int64    `db:"competition_id" json:"competition_id"`
	CustomCompetition string    `db:"custom_competition" json:"custom_competition"`
	EventStart        string    `db:"event_start" json:"event_start"`
	EventEnd          string    `db:"event_end" json:"event_end"`
	Title             string    `db:"title" json:"title"`
	Owner             string    `db:"owner" json:"owner"`
	Summary           string    `db:"summary" json:"summary"`
	Requirements      string    `db:"requirements" json:"requirements"`
	Tags              string    `db:"tags" json:"tags"`
	TeamSize          string    `db:"team_size" json:"team_size"`
	Level             string    `db:"level" json:"level"`
	UseRandomMatching bool      `db:"use_random_matching" json:"use_random_matching"`
	Phase             Phase     `db:"phase" json:"phase"`
	CoverImage        string    `db:"cover_image" json:"cover_image"`
	CreatedAt         time.Time `db:"created_at" json:"created_at"`

	Competition  *Competition      `db:"-" json:"competition,omitempty"`
	Applications []TeamApplication `db:"-" json:"-"`
}

// TeamApplication is an application to one TeamPost.
type TeamApplication struct {
	ID            int64     `db:"id" json:"id"`
	PostID        int64     `db:"post_id" json:"post_id"`
	UserID        *int64    `db:"user_id" json:"user_id"`
	ApplicantName string    `db:"applicant_name" json:"applicant_name"`
	Contact       string    `db:"contact" json:"contact"`
	Message       string    `db:"message" json:"message"`
	DesiredRole   string    `db:"desired_role" json:"desired_role"`
	Level         string    `db:"level" json:"level"`
	CreatedAt     time.Time `db:"created_at" json:"created_at"`
}

// ----------------------- phases and levels -----------------------

// Phase is the lifecycle stage of a team post. PhaseAll only exists as a list filter.
type Phase string

const (
	PhaseAll        Phase = "all"
	PhaseRecruiting Phase = "recruiting"
	PhaseInProgress Phase = "in-progress"
	PhaseDone       Phase = "done"
)

// PhaseTabs lists the board tabs in display order.
var PhaseTabs = []Phase{PhaseAll, PhaseRecruiting, PhaseInProgress, PhaseDone}

var phaseLabels = map[Phase]string{
	PhaseAll:        "All",
	PhaseRecruiting: "Recruiting",
	PhaseInProgress: "In progress",
	PhaseDone:       "Done",
}

// Label is the display name of the phase.
func (p Phase) Label() string {
	if label, ok := phaseLabels[p]; ok {
		return label
	}
	return string(p)
}

// SanitizePhase returns the phase named by value, or PhaseAll for anything
// outside the enumeration.
func SanitizePhase(value string) Phase {
	p := Phase(value)
	if _, ok := phaseLabels[p]; ok {
		return p
	}
	return PhaseAll
}

// Levels used by posts, applications and wargame difficulty.
const (
	LevelBeginner     = "beginner"
	LevelIntermediate = "intermediate"
	LevelAdvanced     = "advanced"
)

// Levels lists the selectable levels.
var Levels = []string{LevelBeginner, LevelIntermediate, LevelAdvanced}

// IsLevel reports whether value is one of Levels.
func IsLevel(value string) bool {
	for _, l := range Levels {
		if l == value {
			return true
		}
	}
	return false
}

// MatchFilter narrows the random-match candidate set. Empty fields match everything.
type MatchFilter struct {
	CompetitionID    *int64
	CompetitionTitle string
	Level            string
}
