// internal/models/tournament.go
// Tournament domain model and the kind/status enums the plugin dispatch table
// switches on.

package models

import (
	"database/sql/driver"
	"encoding/json"
	"fmt"
	"time"
)

// TournamentKind is the dispatch tag every plugin registers under.
type TournamentKind string

const (
	KindRoundRobin             TournamentKind = "ROUND_ROBIN"
	KindPlayoff                TournamentKind = "PLAYOFF"
	KindSwiss                  TournamentKind = "SWISS"
	KindPrelimWithFinalRR      TournamentKind = "PRELIM_WITH_FINAL_RR"
	KindPrelimWithFinalPlayoff TournamentKind = "PRELIM_WITH_FINAL_PLAYOFF"
	// KindSingleMatch is a degenerate one-match "tournament" with two
	// participants; standalone matches without a tournament do not use it.
	// It always uses Mode A rating, never Mode B.
	KindSingleMatch TournamentKind = "SINGLE_MATCH"
)

// TournamentStatus is the two-state lifecycle: ACTIVE -> COMPLETED,
// transitioned exactly once, plus an orthogonal Cancelled flag.
type TournamentStatus string

const (
	StatusActive    TournamentStatus = "ACTIVE"
	StatusCompleted TournamentStatus = "COMPLETED"
)

// Tournament is the root entity. A tournament with ParentID set is a
// preliminary group (GroupNumber non-nil) or a final child (GroupNumber nil).
type Tournament struct {
	ID          string           `json:"id" db:"id"`
	Kind        TournamentKind   `json:"kind" db:"kind"`
	Name        string           `json:"name" db:"name"`
	OrganizerID string           `json:"organizer_id" db:"organizer_id"`
	Status      TournamentStatus `json:"status" db:"status"`
	Cancelled   bool             `json:"cancelled" db:"cancelled"`
	ParentID    *string          `json:"parent_id,omitempty" db:"parent_id"`
	GroupNumber *int             `json:"group_number,omitempty" db:"group_number"`
	// Config holds kind-specific creation parameters (protected seed count,
	// Swiss round count override, group count / final size for compounds).
	Config    TournamentConfig `json:"config" db:"config"`
	CreatedAt time.Time        `json:"created_at" db:"created_at"`
	// RecordedAt is set exactly once, at the moment the tournament
	// transitions to COMPLETED.
	RecordedAt *time.Time `json:"recorded_at,omitempty" db:"recorded_at"`
}

// TournamentConfig is the JSON-column configuration bag, scanned/valued as
// a single JSON blob via Scan/Value.
type TournamentConfig struct {
	ProtectedSeeds  *int `json:"protected_seeds,omitempty"`
	SwissRounds     *int `json:"swiss_rounds,omitempty"`
	NumberOfGroups  int  `json:"number_of_groups,omitempty"`
	FinalSize       int  `json:"final_size,omitempty"`
	AutoQualifiers  int  `json:"auto_qualifiers,omitempty"`
	FinalIsPlayoff  bool `json:"final_is_playoff,omitempty"`
}

func (c *TournamentConfig) Scan(value interface{}) error {
	if value == nil {
		return nil
	}
	bytes, ok := value.([]byte)
	if !ok {
		return fmt.Errorf("cannot scan %T into TournamentConfig", value)
	}
	if len(bytes) == 0 {
		return nil
	}
	return json.Unmarshal(bytes, c)
}

func (c TournamentConfig) Value() (driver.Value, error) {
	return json.Marshal(c)
}

// IsBasic reports whether the kind is an elementary (non-compound) kind.
func (k TournamentKind) IsBasic() bool {
	switch k {
	case KindRoundRobin, KindPlayoff, KindSwiss, KindSingleMatch:
		return true
	default:
		return false
	}
}
