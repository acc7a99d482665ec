package export

import (
	"fmt"
	"io"
	"sort"
	"time"

	"github.com/bytedance/sonic"

	"github.com/okian/touchline/internal/domain/model"
)

// EventRow is the JSON shape of one event table row. Absent coordinates
// are null; absent integers keep the -999 sentinel.
type EventRow struct {
	EventID        int       `json:"event_id"`
	TypeID         int       `json:"type_id"`
	CanonicalEvent *string   `json:"canonical_event"`
	PeriodID       int       `json:"period_id"`
	Minutes        int       `json:"minutes"`
	Seconds        float64   `json:"seconds"`
	PlayerID       int       `json:"player_id"`
	PlayerName     string    `json:"player_name"`
	TeamID         string    `json:"team_id"`
	Outcome        int       `json:"outcome"`
	StartX         *float64  `json:"start_x"`
	StartY         *float64  `json:"start_y"`
	ToPlayerID     int       `json:"to_player_id"`
	ToPlayerName   *string   `json:"to_player_name"`
	EndX           *float64  `json:"end_x"`
	EndY           *float64  `json:"end_y"`
	Frame          int       `json:"td_frame"`
	VendorEvent    string    `json:"vendor_event"`
	Datetime       time.Time `json:"datetime"`
}

// NewEventRow converts a table row.
func NewEventRow(r model.EventRecord) EventRow {
	var category *string
	if r.Category != model.CategoryNone {
		c := string(r.Category)
		category = &c
	}
	return EventRow{
		EventID:        r.EventID,
		TypeID:         r.TypeID,
		CanonicalEvent: category,
		PeriodID:       r.PeriodID,
		Minutes:        r.Minutes,
		Seconds:        r.Seconds,
		PlayerID:       r.PlayerID,
		PlayerName:     r.PlayerName,
		TeamID:         r.TeamID,
		Outcome:        r.Outcome,
		StartX:         floatPtr(r.StartX),
		StartY:         floatPtr(r.StartY),
		ToPlayerID:     r.ToPlayerID,
		ToPlayerName:   r.ToPlayerName,
		EndX:           floatPtr(r.EndX),
		EndY:           floatPtr(r.EndY),
		Frame:          r.Frame,
		VendorEvent:    r.VendorEvent,
		Datetime:       r.Datetime,
	}
}

// WriteEventsJSON writes the event table as a JSON array.
func WriteEventsJSON(w io.Writer, data *model.EventData) error {
	rows := make([]EventRow, 0, data.Len())
	if data != nil {
		for _, r := range data.Records {
			rows = append(rows, NewEventRow(r))
		}
	}
	return encode(w, rows)
}

// Base is the JSON shape of the fields every canonical event shares.
type Base struct {
	EventID   int        `json:"event_id"`
	PeriodID  int        `json:"period_id"`
	Minutes   int        `json:"minutes"`
	Seconds   float64    `json:"seconds"`
	Datetime  time.Time  `json:"datetime"`
	StartX    *float64   `json:"start_x"`
	StartY    *float64   `json:"start_y"`
	TeamID    string     `json:"team_id"`
	TeamSide  string     `json:"team_side"`
	PitchSize [2]float64 `json:"pitch_size"`
	XT        float64    `json:"xT"`
	PlayerID  int        `json:"player_id"`
}

// Shot is the JSON shape of a canonical shot.
type Shot struct {
	Base
	ShotOutcome        string   `json:"shot_outcome"`
	YTarget            *float64 `json:"y_target"`
	ZTarget            *float64 `json:"z_target"`
	BodyPart           *string  `json:"body_part"`
	TypeOfPlay         *string  `json:"type_of_play"`
	FirstTouch         *bool    `json:"first_touch"`
	CreatedOpportunity *string  `json:"created_opportunity"`
	RelatedEventID     int      `json:"related_event_id"`
}

// Pass is the JSON shape of a canonical pass.
type Pass struct {
	Base
	Outcome  string   `json:"outcome"`
	EndX     *float64 `json:"end_x"`
	EndY     *float64 `json:"end_y"`
	PassType string   `json:"pass_type"`
	SetPiece string   `json:"set_piece"`
}

// Dribble is the JSON shape of a canonical dribble.
type Dribble struct {
	Base
	RelatedEventID int     `json:"related_event_id"`
	DuelType       *string `json:"duel_type"`
	Outcome        *bool   `json:"outcome"`
	HasOpponent    bool    `json:"has_opponent"`
}

// Canonical groups the exported canonical events, each list sorted by id.
// Empty lists are omitted.
type Canonical struct {
	Shots    []Shot    `json:"shots,omitempty"`
	Passes   []Pass    `json:"passes,omitempty"`
	Dribbles []Dribble `json:"dribbles,omitempty"`
}

func newBase(b model.BaseOnBallEvent) Base {
	return Base{
		EventID:   b.EventID,
		PeriodID:  b.PeriodID,
		Minutes:   b.Minutes,
		Seconds:   b.Seconds,
		Datetime:  b.Datetime,
		StartX:    floatPtr(b.StartX),
		StartY:    floatPtr(b.StartY),
		TeamID:    b.TeamID,
		TeamSide:  string(b.TeamSide),
		PitchSize: b.PitchSize,
		XT:        b.XT,
		PlayerID:  b.PlayerID,
	}
}

// NewCanonical converts the events of the given categories, or of every
// category when none is given.
func NewCanonical(events model.Events, categories ...model.Category) Canonical {
	if len(categories) == 0 {
		categories = model.Categories()
	}
	var out Canonical
	for _, c := range categories {
		switch c {
		case model.CategoryShot:
			out.Shots = make([]Shot, 0, len(events.Shots))
			for _, id := range sortedKeys(events.Shots) {
				e := events.Shots[id]
				out.Shots = append(out.Shots, Shot{
					Base:               newBase(e.BaseOnBallEvent),
					ShotOutcome:        e.ShotOutcome,
					YTarget:            floatPtr(e.YTarget),
					ZTarget:            floatPtr(e.ZTarget),
					BodyPart:           e.BodyPart,
					TypeOfPlay:         e.TypeOfPlay,
					FirstTouch:         e.FirstTouch,
					CreatedOpportunity: e.CreatedOpportunity,
					RelatedEventID:     e.RelatedEventID,
				})
			}
		case model.CategoryPass:
			out.Passes = make([]Pass, 0, len(events.Passes))
			for _, id := range sortedKeys(events.Passes) {
				e := events.Passes[id]
				out.Passes = append(out.Passes, Pass{
					Base:     newBase(e.BaseOnBallEvent),
					Outcome:  e.Outcome,
					EndX:     floatPtr(e.EndX),
					EndY:     floatPtr(e.EndY),
					PassType: e.PassType,
					SetPiece: e.SetPiece,
				})
			}
		case model.CategoryDribble:
			out.Dribbles = make([]Dribble, 0, len(events.Dribbles))
			for _, id := range sortedKeys(events.Dribbles) {
				e := events.Dribbles[id]
				out.Dribbles = append(out.Dribbles, Dribble{
					Base:           newBase(e.BaseOnBallEvent),
					RelatedEventID: e.RelatedEventID,
					DuelType:       e.DuelType,
					Outcome:        e.Outcome,
					HasOpponent:    e.HasOpponent,
				})
			}
		}
	}
	return out
}

// WriteCanonicalJSON writes the canonical events of the given categories.
func WriteCanonicalJSON(w io.Writer, events model.Events, categories ...model.Category) error {
	return encode(w, NewCanonical(events, categories...))
}

func encode(w io.Writer, v any) error {
	if err := sonic.ConfigDefault.NewEncoder(w).Encode(v); err != nil {
		return fmt.Errorf("failed to encode json: %w", err)
	}
	return nil
}

func sortedKeys[V any](m map[int]V) []int {
	keys := make([]int, 0, len(m))
	for k := range m {
		keys = append(keys, k)
	}
	sort.Ints(keys)
	return keys
}
