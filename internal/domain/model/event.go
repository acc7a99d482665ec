// Package model contains domain models passed between layers.
package model

import (
	"math"
	"time"
)

// MissingInt marks an optional integer the vendor did not provide.
const MissingInt = -999

// Category is the canonical event vocabulary. The zero value means the
// vendor label has no canonical counterpart.
type Category string

const (
	CategoryNone    Category = ""
	CategoryShot    Category = "shot"
	CategoryPass    Category = "pass"
	CategoryDribble Category = "dribble"
)

// Categories lists the canonical categories in a stable order.
func Categories() []Category {
	return []Category{CategoryShot, CategoryPass, CategoryDribble}
}

// Valid reports whether c is one of the canonical categories.
func (c Category) Valid() bool {
	switch c {
	case CategoryShot, CategoryPass, CategoryDribble:
		return true
	}
	return false
}

// EventRecord is one row of the normalized event table.
// Absent optional integers hold MissingInt, absent floats hold NaN.
type EventRecord struct {
	EventID      int
	TypeID       int
	Category     Category
	PeriodID     int
	Minutes      int
	Seconds      float64
	PlayerID     int
	PlayerName   string
	TeamID       string
	Outcome      int
	StartX       float64
	StartY       float64
	ToPlayerID   int
	ToPlayerName *string
	EndX         float64
	EndY         float64
	Frame        int
	VendorEvent  string
	Datetime     time.Time
}

// HasOutcome reports whether the outcome was resolved.
func (r EventRecord) HasOutcome() bool {
	return r.Outcome != MissingInt
}

// EventData is the ordered event table of one match.
type EventData struct {
	Records []EventRecord
}

// NewEventData wraps records without copying.
func NewEventData(records []EventRecord) *EventData {
	return &EventData{Records: records}
}

// Len returns the number of rows.
func (d *EventData) Len() int {
	if d == nil {
		return 0
	}
	return len(d.Records)
}

// Filter returns a copy of the rows mapped to category c, in order.
func (d *EventData) Filter(c Category) []EventRecord {
	if d == nil {
		return nil
	}
	out := make([]EventRecord, 0)
	for _, r := range d.Records {
		if r.Category == c {
			out = append(out, r)
		}
	}
	return out
}

// Find returns the row with the given event id.
func (d *EventData) Find(eventID int) (EventRecord, bool) {
	if d == nil {
		return EventRecord{}, false
	}
	for _, r := range d.Records {
		if r.EventID == eventID {
			return r, true
		}
	}
	return EventRecord{}, false
}

var eventColumns = []string{
	"event_id",
	"type_id",
	"canonical_event",
	"period_id",
	"minutes",
	"seconds",
	"player_id",
	"player_name",
	"team_id",
	"outcome",
	"start_x",
	"start_y",
	"to_player_id",
	"to_player_name",
	"end_x",
	"end_y",
	"td_frame",
	"vendor_event",
	"datetime",
}

// Columns returns the table column names in export order.
func Columns() []string {
	out := make([]string, len(eventColumns))
	copy(out, eventColumns)
	return out
}

// Values returns the row cells in Columns order. NaN floats, MissingInt
// sentinels and a nil target name are kept as-is for the caller to render.
func (r EventRecord) Values() []any {
	var category any
	if r.Category != CategoryNone {
		category = string(r.Category)
	}
	var toName any
	if r.ToPlayerName != nil {
		toName = *r.ToPlayerName
	}
	return []any{
		r.EventID,
		r.TypeID,
		category,
		r.PeriodID,
		r.Minutes,
		r.Seconds,
		r.PlayerID,
		r.PlayerName,
		r.TeamID,
		r.Outcome,
		r.StartX,
		r.StartY,
		r.ToPlayerID,
		toName,
		r.EndX,
		r.EndY,
		r.Frame,
		r.VendorEvent,
		r.Datetime,
	}
}

// floatEqual treats two NaNs as equal.
func floatEqual(a, b float64) bool {
	if math.IsNaN(a) || math.IsNaN(b) {
		return math.IsNaN(a) && math.IsNaN(b)
	}
	return a == b
}
