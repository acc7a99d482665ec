package export

import (
	"bytes"
	"context"
	"encoding/csv"
	"math"
	"os"
	"strings"
	"testing"
	"time"

	"github.com/bytedance/sonic"
	. "github.com/smartystreets/goconvey/convey"

	"github.com/okian/touchline/internal/domain/model"
)

func sampleData() *model.EventData {
	name := "Player 2"
	return model.NewEventData([]model.EventRecord{
		{
			EventID: 1, TypeID: 1, Category: model.CategoryPass, PeriodID: 1,
			Minutes: 0, Seconds: 14.44, PlayerID: 1, PlayerName: "Player 1",
			TeamID: "FIFATMA", Outcome: 1, StartX: -5.3, StartY: 1.2,
			ToPlayerID: 2, ToPlayerName: &name, EndX: 10.4, EndY: -3.1,
			Frame: 1, VendorEvent: "pass",
			Datetime: time.Date(2019, 2, 21, 3, 30, 7, 0, time.UTC),
		},
		{
			EventID: 2, TypeID: 5, PeriodID: 1, Minutes: 0, Seconds: 20,
			PlayerID: 2, PlayerName: "Player 2", TeamID: "FIFATMA",
			Outcome: model.MissingInt, StartX: math.NaN(), StartY: math.NaN(),
			ToPlayerID: model.MissingInt, EndX: math.NaN(), EndY: math.NaN(),
			Frame: 500, VendorEvent: "ball out",
		},
	})
}

func sampleEvents() model.Events {
	events := model.NewEvents()
	base := model.BaseOnBallEvent{
		PeriodID: 1, TeamID: "FIFATMA", TeamSide: model.SideHome,
		PitchSize: [2]float64{106, 68}, XT: model.XTNotComputed, PlayerID: 1,
	}
	for _, id := range []int{7, 3} {
		b := base
		b.EventID = id
		b.StartX = float64(id)
		events.Passes[id] = model.PassEvent{
			BaseOnBallEvent: b, Outcome: model.PassSuccessful,
			EndX: math.NaN(), EndY: 2,
			PassType: model.PassTypeNotSpecified, SetPiece: model.SetPieceUnspecified,
		}
	}
	b := base
	b.EventID = 9
	events.Shots[9] = model.ShotEvent{
		BaseOnBallEvent: b, ShotOutcome: model.ShotGoal,
		YTarget: math.NaN(), ZTarget: math.NaN(), RelatedEventID: model.MissingInt,
	}
	return events
}

func TestWriteEventsCSV(t *testing.T) {
	Convey("Given a small event table", t, func() {
		var buf bytes.Buffer
		So(WriteEventsCSV(&buf, sampleData()), ShouldBeNil)
		rows, err := csv.NewReader(&buf).ReadAll()
		So(err, ShouldBeNil)

		Convey("The header matches the column order", func() {
			So(rows, ShouldHaveLength, 3)
			So(rows[0], ShouldResemble, model.Columns())
		})

		Convey("Present values are rendered", func() {
			So(rows[1][2], ShouldEqual, "pass")
			So(rows[1][5], ShouldEqual, "14.44")
			So(rows[1][13], ShouldEqual, "Player 2")
			So(rows[1][18], ShouldEqual, "2019-02-21T03:30:07Z")
		})

		Convey("Absent values are empty or keep the sentinel", func() {
			So(rows[2][2], ShouldEqual, "")
			So(rows[2][9], ShouldEqual, "-999")
			So(rows[2][10], ShouldEqual, "")
			So(rows[2][13], ShouldEqual, "")
			So(rows[2][18], ShouldEqual, "")
		})
	})

	Convey("A nil table writes only the header", t, func() {
		var buf bytes.Buffer
		So(WriteEventsCSV(&buf, nil), ShouldBeNil)
		So(strings.Count(buf.String(), "\n"), ShouldEqual, 1)
	})
}

func TestWriteEventsJSON(t *testing.T) {
	Convey("NaN coordinates are written as null", t, func() {
		var buf bytes.Buffer
		So(WriteEventsJSON(&buf, sampleData()), ShouldBeNil)

		var rows []map[string]any
		So(sonic.Unmarshal(buf.Bytes(), &rows), ShouldBeNil)
		So(rows, ShouldHaveLength, 2)
		So(rows[0]["canonical_event"], ShouldEqual, "pass")
		So(rows[0]["start_x"], ShouldEqual, -5.3)
		So(rows[1]["canonical_event"], ShouldBeNil)
		So(rows[1]["start_x"], ShouldBeNil)
		So(rows[1]["to_player_name"], ShouldBeNil)
		So(rows[1]["outcome"], ShouldEqual, float64(model.MissingInt))
	})
}

func TestWriteCanonicalJSON(t *testing.T) {
	Convey("Given canonical events", t, func() {
		events := sampleEvents()

		Convey("Every category is written and sorted by id", func() {
			c := NewCanonical(events)
			So(c.Passes, ShouldHaveLength, 2)
			So(c.Passes[0].EventID, ShouldEqual, 3)
			So(c.Passes[1].EventID, ShouldEqual, 7)
			So(c.Passes[0].EndX, ShouldBeNil)
			So(*c.Passes[0].EndY, ShouldEqual, 2.0)
			So(c.Shots, ShouldHaveLength, 1)
			So(c.Dribbles, ShouldNotBeNil)
			So(c.Dribbles, ShouldBeEmpty)
		})

		Convey("A category filter limits the output", func() {
			var buf bytes.Buffer
			So(WriteCanonicalJSON(&buf, events, model.CategoryShot), ShouldBeNil)

			var out map[string]any
			So(sonic.Unmarshal(buf.Bytes(), &out), ShouldBeNil)
			So(out, ShouldContainKey, "shots")
			So(out, ShouldNotContainKey, "passes")
			shot := out["shots"].([]any)[0].(map[string]any)
			So(shot["shot_outcome"], ShouldEqual, model.ShotGoal)
			So(shot["y_target"], ShouldBeNil)
			So(shot["pitch_size"], ShouldResemble, []any{106.0, 68.0})
		})
	})
}

func TestSQLValues(t *testing.T) {
	Convey("Absent values become NULL", t, func() {
		data := sampleData()

		present := sqlValues(data.Records[0])
		So(present, ShouldHaveLength, len(model.Columns()))
		So(present[9], ShouldEqual, 1)
		So(present[13], ShouldEqual, "Player 2")

		absent := sqlValues(data.Records[1])
		So(absent[9], ShouldBeNil)
		So(absent[10], ShouldBeNil)
		So(absent[12], ShouldBeNil)
		So(absent[18], ShouldBeNil)
		So(absent[0], ShouldEqual, 2)
	})
}

func TestPostgresSink(t *testing.T) {
	dsn := os.Getenv("TOUCHLINE_TEST_POSTGRES_DSN")
	if dsn == "" {
		t.Skip("TOUCHLINE_TEST_POSTGRES_DSN not set")
	}

	Convey("Given a live database", t, func() {
		ctx := context.Background()
		sink, err := OpenPostgres(ctx, dsn)
		So(err, ShouldBeNil)
		defer sink.Close()
		So(sink.EnsureSchema(ctx), ShouldBeNil)

		run := Run{
			MatchID: "export-test", RunID: "run-1", HomeTeam: "Team A", AwayTeam: "Team B",
			Records: 2, ParsedAt: time.Now().UTC(),
		}

		Convey("Writing twice replaces the rows", func() {
			So(sink.Write(ctx, run, sampleData()), ShouldBeNil)
			So(sink.Write(ctx, run, sampleData()), ShouldBeNil)
			n, err := sink.CountEvents(ctx, run.MatchID)
			So(err, ShouldBeNil)
			So(n, ShouldEqual, 2)
		})
	})
}
