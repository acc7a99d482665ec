package main

import (
	"context"
	"flag"
	"io"
	"os"
	"path/filepath"
	"testing"

	"github.com/okian/touchline/internal/config"
	"github.com/okian/touchline/internal/sample"
	"github.com/okian/touchline/pkg/logger"
	"github.com/smartystreets/goconvey/convey"
)

func writeSample(t *testing.T, dir string, seed uint64) (string, string) {
	t.Helper()
	cfg := sample.DefaultConfig()
	cfg.Seed = seed
	cfg.EventsPerPeriod = 40
	m, err := sample.Generate(cfg)
	if err != nil {
		t.Fatal(err)
	}
	events, err := sample.EncodeEvents(m)
	if err != nil {
		t.Fatal(err)
	}
	metadata, err := sample.EncodeMetadata(m)
	if err != nil {
		t.Fatal(err)
	}
	eventsPath := filepath.Join(dir, filepath.Base(t.Name())+"_"+string(rune('a'+seed))+".json")
	metadataPath := eventsPath + ".xml"
	if err := os.WriteFile(eventsPath, events, 0o600); err != nil {
		t.Fatal(err)
	}
	if err := os.WriteFile(metadataPath, metadata, 0o600); err != nil {
		t.Fatal(err)
	}
	return eventsPath, metadataPath
}

func TestApplyFlags(t *testing.T) {
	convey.Convey("Flags override the loaded configuration", t, func() {
		cfg := config.New()
		cfg.Addr = ":1111"
		fs := flag.NewFlagSet("touchline", flag.ContinueOnError)
		applyFlags(fs, []string{"-events", "e.json", "-metadata", "m.xml", "-format", "json"}, cfg)

		convey.So(cfg.EventsPath, convey.ShouldEqual, "e.json")
		convey.So(cfg.MetadataPath, convey.ShouldEqual, "m.xml")
		convey.So(cfg.OutputFormat, convey.ShouldEqual, config.FormatJSON)
		convey.So(cfg.Addr, convey.ShouldEqual, ":1111")
	})
}

func TestRequestID(t *testing.T) {
	convey.Convey("Match ids come from file names", t, func() {
		convey.So(requestID("/data/game1_events.json", 0), convey.ShouldEqual, "game1_events")
		convey.So(requestID(`{"data": []}`, 2), convey.ShouldEqual, "match-3")
	})
}

func TestRun(t *testing.T) {
	log := logger.New(logger.WithWriter(io.Discard))
	ctx := context.Background()

	convey.Convey("Given two matches on disk", t, func() {
		dir := t.TempDir()
		e1, m1 := writeSample(t, dir, 1)
		e2, m2 := writeSample(t, dir, 2)
		out := filepath.Join(dir, "out")

		cfg := config.New()
		cfg.EventsPath = e1 + "," + e2
		cfg.MetadataPath = m1 + "," + m2
		cfg.OutputDir = out
		convey.So(cfg.Validate(), convey.ShouldBeNil)

		convey.Convey("When parsing to CSV", func() {
			convey.So(run(ctx, cfg, log), convey.ShouldBeNil)

			convey.Convey("Then every match gets a table and canonical events", func() {
				for _, events := range []string{e1, e2} {
					id := requestID(events, 0)
					_, err := os.Stat(filepath.Join(out, id+"_events.csv"))
					convey.So(err, convey.ShouldBeNil)
					_, err = os.Stat(filepath.Join(out, id+"_canonical.json"))
					convey.So(err, convey.ShouldBeNil)
				}
			})
		})

		convey.Convey("When parsing to JSON", func() {
			cfg.OutputFormat = config.FormatJSON
			convey.So(run(ctx, cfg, log), convey.ShouldBeNil)
			_, err := os.Stat(filepath.Join(out, requestID(e1, 0)+"_events.json"))
			convey.So(err, convey.ShouldBeNil)
		})

		convey.Convey("When one input is missing the other is still written", func() {
			cfg.EventsPath = e1 + "," + filepath.Join(dir, "missing.json")
			err := run(ctx, cfg, log)
			convey.So(err, convey.ShouldNotBeNil)
			_, statErr := os.Stat(filepath.Join(out, requestID(e1, 0)+"_events.csv"))
			convey.So(statErr, convey.ShouldBeNil)
		})
	})
}
