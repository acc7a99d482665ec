package model

import (
	"fmt"
	"time"

	"github.com/go-playground/validator/v10"
)

var validate = validator.New()

// TeamSide tells whether a team played at home or away.
type TeamSide string

const (
	SideHome TeamSide = "home"
	SideAway TeamSide = "away"
)

// Period holds the frame and wall-clock anchors of one match period.
type Period struct {
	ID            int `validate:"min=1,max=5"`
	StartFrame    int
	EndFrame      int
	StartDatetime time.Time
	EndDatetime   time.Time
}

// Player is a squad member listed in the metadata. ID is MissingInt when the
// vendor id carries no number.
type Player struct {
	ID         int
	FullName   string
	ShirtNum   int
	Position   string
	StartFrame int
	EndFrame   int
}

// Metadata describes the match the event data belongs to.
type Metadata struct {
	// PitchDimensions is (length, width) in metres.
	PitchDimensions [2]float64 `validate:"dive,gt=0"`
	FrameRate       int        `validate:"gt=0"`
	HomeTeamID      string     `validate:"required"`
	AwayTeamID      string     `validate:"required,nefield=HomeTeamID"`
	HomeTeamName    string
	AwayTeamName    string
	HomeScore       int
	AwayScore       int
	Periods         []Period `validate:"required,min=1,dive"`
	HomePlayers     []Player `validate:"dive"`
	AwayPlayers     []Player `validate:"dive"`
}

// Validate checks field constraints and that period 1 is present.
func (m *Metadata) Validate() error {
	if m == nil {
		return fmt.Errorf("metadata is nil")
	}
	if err := validate.Struct(m); err != nil {
		return err
	}
	if _, ok := m.Period(1); !ok {
		return fmt.Errorf("metadata has no first period")
	}
	return nil
}

// Period returns the period with the given id.
func (m *Metadata) Period(id int) (Period, bool) {
	for _, p := range m.Periods {
		if p.ID == id {
			return p, true
		}
	}
	return Period{}, false
}

// SideOf maps a team id to its side. Unknown ids count as away, the same way
// the builder decides team_side.
func (m *Metadata) SideOf(teamID string) TeamSide {
	if teamID == m.HomeTeamID {
		return SideHome
	}
	return SideAway
}
