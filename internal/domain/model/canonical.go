package model

import (
	"time"
)

// XTNotComputed marks an expected-threat value that was never calculated.
const XTNotComputed = -1.0

// Shot outcomes.
const (
	ShotGoal = "goal"
	ShotMiss = "miss"
)

// Pass outcomes.
const (
	PassSuccessful   = "successful"
	PassUnsuccessful = "unsuccessful"
	PassNotSpecified = "not_specified"
)

// Defaults for fields the event feed does not carry.
const (
	PassTypeNotSpecified = "not_specified"
	SetPieceUnspecified  = "unspecified_set_piece"
)

// BaseOnBallEvent carries the fields every canonical event shares.
type BaseOnBallEvent struct {
	EventID   int
	PeriodID  int     `validate:"min=1,max=5"`
	Minutes   int     `validate:"min=0"`
	Seconds   float64 `validate:"min=0"`
	Datetime  time.Time
	StartX    float64
	StartY    float64
	TeamID    string     `validate:"required"`
	TeamSide  TeamSide   `validate:"oneof=home away"`
	PitchSize [2]float64 `validate:"dive,gt=0"`
	XT        float64
	PlayerID  int
}

func (b BaseOnBallEvent) equal(o BaseOnBallEvent) bool {
	return b.EventID == o.EventID &&
		b.PeriodID == o.PeriodID &&
		b.Minutes == o.Minutes &&
		floatEqual(b.Seconds, o.Seconds) &&
		b.Datetime.Equal(o.Datetime) &&
		floatEqual(b.StartX, o.StartX) &&
		floatEqual(b.StartY, o.StartY) &&
		b.TeamID == o.TeamID &&
		b.TeamSide == o.TeamSide &&
		b.PitchSize == o.PitchSize &&
		floatEqual(b.XT, o.XT) &&
		b.PlayerID == o.PlayerID
}

var baseAttributes = []string{
	"event_id", "period_id", "minutes", "seconds", "datetime", "start_x",
	"start_y", "team_id", "team_side", "xT", "player_id",
}

func withBase(extra ...string) []string {
	out := make([]string, 0, len(baseAttributes)+len(extra))
	out = append(out, baseAttributes...)
	return append(out, extra...)
}

// ShotEvent is a canonical shot.
type ShotEvent struct {
	BaseOnBallEvent
	ShotOutcome        string `validate:"oneof=goal miss"`
	YTarget            float64
	ZTarget            float64
	BodyPart           *string
	TypeOfPlay         *string
	FirstTouch         *bool
	CreatedOpportunity *string
	RelatedEventID     int
}

// Validate checks the field constraints.
func (e ShotEvent) Validate() error { return validate.Struct(e) }

// Attributes lists the exported column names.
func (e ShotEvent) Attributes() []string {
	return withBase("shot_outcome", "y_target", "z_target", "body_part",
		"type_of_play", "first_touch", "created_opportunity", "related_event_id")
}

// Equal compares two shots, treating NaN targets as equal.
func (e ShotEvent) Equal(o ShotEvent) bool {
	return e.BaseOnBallEvent.equal(o.BaseOnBallEvent) &&
		e.ShotOutcome == o.ShotOutcome &&
		floatEqual(e.YTarget, o.YTarget) &&
		floatEqual(e.ZTarget, o.ZTarget) &&
		strPtrEqual(e.BodyPart, o.BodyPart) &&
		strPtrEqual(e.TypeOfPlay, o.TypeOfPlay) &&
		boolPtrEqual(e.FirstTouch, o.FirstTouch) &&
		strPtrEqual(e.CreatedOpportunity, o.CreatedOpportunity) &&
		e.RelatedEventID == o.RelatedEventID
}

// PassEvent is a canonical pass.
type PassEvent struct {
	BaseOnBallEvent
	Outcome  string `validate:"oneof=successful unsuccessful not_specified"`
	EndX     float64
	EndY     float64
	PassType string `validate:"required"`
	SetPiece string `validate:"required"`
}

// Validate checks the field constraints.
func (e PassEvent) Validate() error { return validate.Struct(e) }

// Attributes lists the exported column names.
func (e PassEvent) Attributes() []string {
	return withBase("outcome", "end_x", "end_y", "pass_type", "set_piece")
}

// Equal compares two passes, treating NaN end coordinates as equal.
func (e PassEvent) Equal(o PassEvent) bool {
	return e.BaseOnBallEvent.equal(o.BaseOnBallEvent) &&
		e.Outcome == o.Outcome &&
		floatEqual(e.EndX, o.EndX) &&
		floatEqual(e.EndY, o.EndY) &&
		e.PassType == o.PassType &&
		e.SetPiece == o.SetPiece
}

// DribbleEvent is a canonical dribble (a carry in Metrica terms).
type DribbleEvent struct {
	BaseOnBallEvent
	RelatedEventID int
	DuelType       *string `validate:"omitempty,oneof=offensive defensive"`
	// Outcome is nil when the feed ended before the carry could be resolved.
	Outcome     *bool
	HasOpponent bool
}

// Validate checks the field constraints.
func (e DribbleEvent) Validate() error { return validate.Struct(e) }

// Attributes lists the exported column names.
func (e DribbleEvent) Attributes() []string {
	return withBase("related_event_id", "duel_type", "outcome", "has_opponent")
}

// Equal compares two dribbles.
func (e DribbleEvent) Equal(o DribbleEvent) bool {
	return e.BaseOnBallEvent.equal(o.BaseOnBallEvent) &&
		e.RelatedEventID == o.RelatedEventID &&
		strPtrEqual(e.DuelType, o.DuelType) &&
		boolPtrEqual(e.Outcome, o.Outcome) &&
		e.HasOpponent == o.HasOpponent
}

// Events groups the canonical events of a match by category, keyed by event id.
type Events struct {
	Shots    map[int]ShotEvent
	Passes   map[int]PassEvent
	Dribbles map[int]DribbleEvent
}

// NewEvents returns empty, non-nil maps.
func NewEvents() Events {
	return Events{
		Shots:    map[int]ShotEvent{},
		Passes:   map[int]PassEvent{},
		Dribbles: map[int]DribbleEvent{},
	}
}

// Len returns the total number of canonical events.
func (e Events) Len() int {
	return len(e.Shots) + len(e.Passes) + len(e.Dribbles)
}

func strPtrEqual(a, b *string) bool {
	if a == nil || b == nil {
		return a == nil && b == nil
	}
	return *a == *b
}

func boolPtrEqual(a, b *bool) bool {
	if a == nil || b == nil {
		return a == nil && b == nil
	}
	return *a == *b
}
