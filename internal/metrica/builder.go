package metrica

import (
	"math"

	"github.com/okian/touchline/internal/domain/model"
	"github.com/okian/touchline/pkg/metrics"
)

// BuildEvents turns the canonical rows of the event table into shot, pass
// and dribble events keyed by event id. Every event is validated; a failure
// is a type-mismatch error.
func BuildEvents(data *model.EventData, md *model.Metadata) (model.Events, error) {
	events := model.NewEvents()
	if data == nil {
		return events, nil
	}
	if md == nil {
		return events, malformedMetadata("metadata is nil")
	}

	for _, r := range data.Records {
		switch r.Category {
		case model.CategoryShot:
			e := NewShotEvent(r, md)
			if err := e.Validate(); err != nil {
				return events, wrapMark(err, ErrTypeMismatch, "shot event %d", r.EventID)
			}
			events.Shots[r.EventID] = e
			metrics.RecordCanonicalEvent(string(r.Category), e.ShotOutcome)
		case model.CategoryPass:
			e := NewPassEvent(r, md)
			if err := e.Validate(); err != nil {
				return events, wrapMark(err, ErrTypeMismatch, "pass event %d", r.EventID)
			}
			events.Passes[r.EventID] = e
			metrics.RecordCanonicalEvent(string(r.Category), e.Outcome)
		case model.CategoryDribble:
			e := NewDribbleEvent(r, md)
			if err := e.Validate(); err != nil {
				return events, wrapMark(err, ErrTypeMismatch, "dribble event %d", r.EventID)
			}
			events.Dribbles[r.EventID] = e
			metrics.RecordCanonicalEvent(string(r.Category), dribbleOutcomeLabel(e.Outcome))
		}
	}
	return events, nil
}

func baseEvent(r model.EventRecord, md *model.Metadata) model.BaseOnBallEvent {
	return model.BaseOnBallEvent{
		EventID:   r.EventID,
		PeriodID:  r.PeriodID,
		Minutes:   r.Minutes,
		Seconds:   r.Seconds,
		Datetime:  r.Datetime,
		StartX:    r.StartX,
		StartY:    r.StartY,
		TeamID:    r.TeamID,
		TeamSide:  md.SideOf(r.TeamID),
		PitchSize: md.PitchDimensions,
		XT:        model.XTNotComputed,
		PlayerID:  r.PlayerID,
	}
}

// NewShotEvent builds a shot from a table row.
func NewShotEvent(r model.EventRecord, md *model.Metadata) model.ShotEvent {
	outcome := model.ShotMiss
	if r.Outcome == OutcomeSuccessful {
		outcome = model.ShotGoal
	}
	return model.ShotEvent{
		BaseOnBallEvent: baseEvent(r, md),
		ShotOutcome:     outcome,
		YTarget:         math.NaN(),
		ZTarget:         math.NaN(),
		RelatedEventID:  model.MissingInt,
	}
}

// NewPassEvent builds a pass from a table row.
func NewPassEvent(r model.EventRecord, md *model.Metadata) model.PassEvent {
	outcome := model.PassNotSpecified
	switch r.Outcome {
	case OutcomeSuccessful:
		outcome = model.PassSuccessful
	case OutcomeUnsuccessful:
		outcome = model.PassUnsuccessful
	}
	return model.PassEvent{
		BaseOnBallEvent: baseEvent(r, md),
		Outcome:         outcome,
		EndX:            r.EndX,
		EndY:            r.EndY,
		PassType:        model.PassTypeNotSpecified,
		SetPiece:        model.SetPieceUnspecified,
	}
}

// NewDribbleEvent builds a dribble from a table row. An unresolved outcome
// stays nil.
func NewDribbleEvent(r model.EventRecord, md *model.Metadata) model.DribbleEvent {
	var outcome *bool
	if r.HasOutcome() {
		ok := r.Outcome == OutcomeSuccessful
		outcome = &ok
	}
	return model.DribbleEvent{
		BaseOnBallEvent: baseEvent(r, md),
		RelatedEventID:  model.MissingInt,
		Outcome:         outcome,
	}
}

func dribbleOutcomeLabel(outcome *bool) string {
	switch {
	case outcome == nil:
		return "not_specified"
	case *outcome:
		return "successful"
	default:
		return "unsuccessful"
	}
}
