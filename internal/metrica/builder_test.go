package metrica_test

import (
	"math"
	"testing"
	"time"

	"github.com/cockroachdb/errors"

	"github.com/okian/touchline/internal/domain/model"
	"github.com/okian/touchline/internal/metrica"
	. "github.com/smartystreets/goconvey/convey"
)

func builderMetadata() *model.Metadata {
	return &model.Metadata{
		PitchDimensions: [2]float64{105, 68},
		FrameRate:       25,
		HomeTeamID:      teamA,
		AwayTeamID:      teamB,
		Periods:         []model.Period{{ID: 1, StartFrame: 1}},
	}
}

func row(id int, category model.Category, team string, outcome int) model.EventRecord {
	return model.EventRecord{
		EventID:     id,
		TypeID:      1,
		Category:    category,
		PeriodID:    1,
		Minutes:     12,
		Seconds:     34.5,
		PlayerID:    3578,
		PlayerName:  "Player1",
		TeamID:      team,
		Outcome:     outcome,
		StartX:      10.5,
		StartY:      -3.25,
		ToPlayerID:  model.MissingInt,
		EndX:        20,
		EndY:        math.NaN(),
		Frame:       18000,
		VendorEvent: string(category),
		Datetime:    time.Date(2019, 2, 21, 0, 12, 34, 500_000_000, time.UTC),
	}
}

func TestBuildEvents(t *testing.T) {
	Convey("Given canonical and unmapped rows", t, func() {
		md := builderMetadata()
		data := model.NewEventData([]model.EventRecord{
			row(1, model.CategoryShot, teamA, metrica.OutcomeSuccessful),
			row(2, model.CategoryShot, teamB, metrica.OutcomeUnsuccessful),
			row(3, model.CategoryPass, teamA, metrica.OutcomeSuccessful),
			row(4, model.CategoryPass, teamB, metrica.OutcomeUnsuccessful),
			row(5, model.CategoryPass, teamA, model.MissingInt),
			row(6, model.CategoryDribble, teamA, metrica.OutcomeSuccessful),
			row(7, model.CategoryDribble, teamB, model.MissingInt),
			row(8, model.CategoryNone, teamA, model.MissingInt),
		})

		events, err := metrica.BuildEvents(data, md)
		So(err, ShouldBeNil)

		Convey("Rows land in the map of their category keyed by event id", func() {
			So(events.Shots, ShouldHaveLength, 2)
			So(events.Passes, ShouldHaveLength, 3)
			So(events.Dribbles, ShouldHaveLength, 2)
			So(events.Len(), ShouldEqual, 7)
		})

		Convey("Shared fields read back exactly as in the row", func() {
			for _, r := range data.Records {
				var base model.BaseOnBallEvent
				switch r.Category {
				case model.CategoryShot:
					base = events.Shots[r.EventID].BaseOnBallEvent
				case model.CategoryPass:
					base = events.Passes[r.EventID].BaseOnBallEvent
				case model.CategoryDribble:
					base = events.Dribbles[r.EventID].BaseOnBallEvent
				default:
					continue
				}
				So(base.EventID, ShouldEqual, r.EventID)
				So(base.PeriodID, ShouldEqual, r.PeriodID)
				So(base.Minutes, ShouldEqual, r.Minutes)
				So(base.Seconds, ShouldEqual, r.Seconds)
				So(base.Datetime.Equal(r.Datetime), ShouldBeTrue)
				So(base.StartX, ShouldEqual, r.StartX)
				So(base.StartY, ShouldEqual, r.StartY)
				So(base.TeamID, ShouldEqual, r.TeamID)
				So(base.PlayerID, ShouldEqual, r.PlayerID)
				So(base.PitchSize, ShouldResemble, md.PitchDimensions)
				So(base.XT, ShouldEqual, model.XTNotComputed)
			}
		})

		Convey("Team side follows the home team id", func() {
			So(events.Shots[1].TeamSide, ShouldEqual, model.SideHome)
			So(events.Shots[2].TeamSide, ShouldEqual, model.SideAway)
		})

		Convey("Shots carry their outcome and defaults", func() {
			So(events.Shots[1].ShotOutcome, ShouldEqual, model.ShotGoal)
			So(events.Shots[2].ShotOutcome, ShouldEqual, model.ShotMiss)
			So(math.IsNaN(events.Shots[1].YTarget), ShouldBeTrue)
			So(math.IsNaN(events.Shots[1].ZTarget), ShouldBeTrue)
			So(events.Shots[1].BodyPart, ShouldBeNil)
			So(events.Shots[1].FirstTouch, ShouldBeNil)
			So(events.Shots[1].RelatedEventID, ShouldEqual, model.MissingInt)
		})

		Convey("Passes map outcomes and keep the end location", func() {
			So(events.Passes[3].Outcome, ShouldEqual, model.PassSuccessful)
			So(events.Passes[4].Outcome, ShouldEqual, model.PassUnsuccessful)
			So(events.Passes[5].Outcome, ShouldEqual, model.PassNotSpecified)
			So(events.Passes[3].EndX, ShouldEqual, 20.0)
			So(math.IsNaN(events.Passes[3].EndY), ShouldBeTrue)
			So(events.Passes[3].PassType, ShouldEqual, model.PassTypeNotSpecified)
			So(events.Passes[3].SetPiece, ShouldEqual, model.SetPieceUnspecified)
		})

		Convey("Dribbles keep an unresolved outcome as nil", func() {
			So(*events.Dribbles[6].Outcome, ShouldBeTrue)
			So(events.Dribbles[7].Outcome, ShouldBeNil)
			So(events.Dribbles[6].DuelType, ShouldBeNil)
			So(events.Dribbles[6].HasOpponent, ShouldBeFalse)
			So(events.Dribbles[6].RelatedEventID, ShouldEqual, model.MissingInt)
		})

		Convey("Built events equal the ones the constructors produce", func() {
			So(events.Passes[5].Equal(metrica.NewPassEvent(data.Records[4], md)), ShouldBeTrue)
			So(events.Shots[1].Equal(metrica.NewShotEvent(data.Records[0], md)), ShouldBeTrue)
		})
	})

	Convey("Given a row that breaks the event constraints", t, func() {
		bad := row(1, model.CategoryPass, teamA, metrica.OutcomeSuccessful)
		bad.PeriodID = 0

		Convey("Building fails with a type mismatch", func() {
			_, err := metrica.BuildEvents(model.NewEventData([]model.EventRecord{bad}), builderMetadata())
			So(errors.Is(err, metrica.ErrTypeMismatch), ShouldBeTrue)
			So(metrica.Kind(err), ShouldEqual, metrica.KindTypeMismatch)
		})
	})

	Convey("Given no rows", t, func() {
		events, err := metrica.BuildEvents(model.NewEventData(nil), builderMetadata())

		Convey("The maps are empty but usable", func() {
			So(err, ShouldBeNil)
			So(events.Shots, ShouldNotBeNil)
			So(events.Len(), ShouldEqual, 0)
		})
	})
}
