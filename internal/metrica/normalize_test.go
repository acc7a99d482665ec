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

func TestRescale(t *testing.T) {
	Convey("Given rows in vendor coordinates", t, func() {
		dims := [2]float64{105, 68}
		data := model.NewEventData([]model.EventRecord{
			{StartX: 0, StartY: 0, EndX: 1, EndY: 1},
			{StartX: 0.5, StartY: 0.5, EndX: 0.25, EndY: 0.75},
			{StartX: 0.3, StartY: 0.9, EndX: math.NaN(), EndY: math.NaN()},
		})

		Convey("Rescale is affine onto a pitch centred at the origin", func() {
			metrica.Rescale(data, dims)
			So(data.Records[0].StartX, ShouldEqual, -52.5)
			So(data.Records[0].StartY, ShouldEqual, -34.0)
			So(data.Records[0].EndX, ShouldEqual, 52.5)
			So(data.Records[0].EndY, ShouldEqual, 34.0)
			So(data.Records[1].StartX, ShouldEqual, 0.0)
			So(data.Records[1].EndX, ShouldAlmostEqual, -26.25)
			So(math.IsNaN(data.Records[2].EndX), ShouldBeTrue)
		})

		Convey("Unscale inverts Rescale", func() {
			metrica.Rescale(data, dims)
			metrica.Unscale(data, dims)
			So(data.Records[2].StartX, ShouldAlmostEqual, 0.3, 1e-12)
			So(data.Records[2].StartY, ShouldAlmostEqual, 0.9, 1e-12)
			So(data.Records[1].EndY, ShouldAlmostEqual, 0.75, 1e-12)
			So(math.IsNaN(data.Records[2].EndY), ShouldBeTrue)
		})
	})
}

func TestAttachDatetimes(t *testing.T) {
	Convey("Given metadata with a first period", t, func() {
		start := time.Date(2019, 2, 21, 0, 0, 0, 40_000_000, time.UTC)
		md := &model.Metadata{
			FrameRate: 25,
			Periods:   []model.Period{{ID: 1, StartFrame: 1, StartDatetime: start}},
		}
		data := model.NewEventData([]model.EventRecord{{Frame: 1}, {Frame: 26}, {Frame: 76}})

		Convey("Datetimes are offset from the first frame", func() {
			So(metrica.AttachDatetimes(data, md), ShouldBeNil)
			So(data.Records[0].Datetime.Equal(start), ShouldBeTrue)
			So(data.Records[1].Datetime.Equal(start.Add(time.Second)), ShouldBeTrue)
			So(data.Records[2].Datetime.Equal(start.Add(3*time.Second)), ShouldBeTrue)
			So(data.Records[2].Datetime.Location(), ShouldEqual, time.UTC)
		})

		Convey("Offsets are rounded to the microsecond", func() {
			md.FrameRate = 7
			data := model.NewEventData([]model.EventRecord{{Frame: 2}, {Frame: 4}})
			So(metrica.AttachDatetimes(data, md), ShouldBeNil)
			So(data.Records[0].Datetime.Sub(start), ShouldEqual, 142857*time.Microsecond)
			So(data.Records[1].Datetime.Sub(start), ShouldEqual, 428571*time.Microsecond)
		})

		Convey("Metadata without a first period is malformed", func() {
			md.Periods[0].ID = 2
			err := metrica.AttachDatetimes(data, md)
			So(errors.Is(err, metrica.ErrMalformedMetadata), ShouldBeTrue)
		})
	})
}

func shotRow(period int, team string, x float64) model.EventRecord {
	return model.EventRecord{
		Category: model.CategoryShot, PeriodID: period, TeamID: team,
		StartX: x, StartY: 5, EndX: x, EndY: 0,
	}
}

func TestNormalizePlayingDirection(t *testing.T) {
	Convey("Given shots that reveal the ends", t, func() {
		data := model.NewEventData([]model.EventRecord{
			shotRow(1, teamA, -40),
			shotRow(1, teamB, 45),
			{Category: model.CategoryPass, PeriodID: 1, TeamID: teamA, StartX: -10, StartY: 3, EndX: -20, EndY: -3},
			shotRow(2, teamA, 38),
			{Category: model.CategoryPass, PeriodID: 2, TeamID: teamB, StartX: 10, StartY: 3, EndX: 20, EndY: -3},
			{Category: model.CategoryPass, PeriodID: 3, TeamID: teamA, StartX: 7, StartY: 1, EndX: 8, EndY: 2},
		})

		metrica.NormalizePlayingDirection(data, teamA)

		Convey("Every shot ends up attacking +x", func() {
			for _, r := range data.Filter(model.CategoryShot) {
				So(r.StartX, ShouldBeGreaterThan, 0)
			}
		})

		Convey("Rows of a team defending +x are mirrored in x and y", func() {
			home := data.Records[2]
			So(home.StartX, ShouldEqual, 10.0)
			So(home.StartY, ShouldEqual, -3.0)
			So(home.EndX, ShouldEqual, 20.0)
			So(home.EndY, ShouldEqual, 3.0)

			away := data.Records[4]
			So(away.StartX, ShouldEqual, -10.0)
			So(away.EndX, ShouldEqual, -20.0)
		})

		Convey("A period without shots alternates from its neighbour", func() {
			// Home attacks +x in period 2, so -x in period 3.
			r := data.Records[5]
			So(r.StartX, ShouldEqual, -7.0)
			So(r.EndY, ShouldEqual, -2.0)
		})
	})

	Convey("Given no shots at all", t, func() {
		data := model.NewEventData([]model.EventRecord{
			{PeriodID: 1, TeamID: teamA, StartX: 5},
			{PeriodID: 1, TeamID: teamB, StartX: 5},
			{PeriodID: 2, TeamID: teamA, StartX: 5},
		})
		metrica.NormalizePlayingDirection(data, teamA)

		Convey("Home attacks +x in odd periods", func() {
			So(data.Records[0].StartX, ShouldEqual, 5.0)
			So(data.Records[1].StartX, ShouldEqual, -5.0)
			So(data.Records[2].StartX, ShouldEqual, -5.0)
		})
	})
}
