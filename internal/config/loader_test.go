package config_test

import (
	"context"
	"errors"
	"os"
	"path/filepath"
	"testing"

	"github.com/okian/touchline/internal/config"
	"github.com/smartystreets/goconvey/convey"
)

func TestConfigLoader(t *testing.T) {
	convey.Convey("Given a config loader", t, func() {
		ctx := context.Background()

		convey.Convey("When loading config with defaults only", func() {
			clearConfigEnvVars(t)

			cfg, err := config.Load(ctx)

			convey.Convey("Then it should load successfully with defaults", func() {
				convey.So(err, convey.ShouldBeNil)
				convey.So(cfg.Addr, convey.ShouldEqual, ":9080")
				convey.So(cfg.Store, convey.ShouldEqual, config.StoreMemory)
				convey.So(cfg.MaxMatches, convey.ShouldEqual, 1_000)
			})
		})

		convey.Convey("When loading config with environment variables", func() {
			clearConfigEnvVars(t)
			t.Setenv("TOUCHLINE_ADDR", ":8080")
			t.Setenv("TOUCHLINE_EVENTS_PATH", "/data/events.json")
			t.Setenv("TOUCHLINE_BATCH_WORKERS", "3")
			t.Setenv("TOUCHLINE_SERVE", "true")
			t.Setenv("TOUCHLINE_REDIS_TTL_SECONDS", "60")

			cfg, err := config.Load(ctx)

			convey.Convey("Then it should override defaults with env vars", func() {
				convey.So(err, convey.ShouldBeNil)
				convey.So(cfg.Addr, convey.ShouldEqual, ":8080")
				convey.So(cfg.EventsPath, convey.ShouldEqual, "/data/events.json")
				convey.So(cfg.BatchWorkers, convey.ShouldEqual, 3)
				convey.So(cfg.Serve, convey.ShouldBeTrue)
				convey.So(cfg.RedisTTL().Seconds(), convey.ShouldEqual, 60.0)
			})
		})

		convey.Convey("When loading config with a YAML file", func() {
			clearConfigEnvVars(t)
			path := filepath.Join(t.TempDir(), "touchline.yaml")
			yamlContent := `
addr: ":9090"
output_format: json
output_dir: /tmp/out
store: redis
redis_url: redis://localhost:6379/1
max_matches: 50
`
			convey.So(os.WriteFile(path, []byte(yamlContent), 0o600), convey.ShouldBeNil)
			t.Setenv("TOUCHLINE_CONFIG", path)

			convey.Convey("Then it should load from the file", func() {
				cfg, err := config.Load(ctx)
				convey.So(err, convey.ShouldBeNil)
				convey.So(cfg.Addr, convey.ShouldEqual, ":9090")
				convey.So(cfg.OutputFormat, convey.ShouldEqual, config.FormatJSON)
				convey.So(cfg.OutputDir, convey.ShouldEqual, "/tmp/out")
				convey.So(cfg.Store, convey.ShouldEqual, config.StoreRedis)
				convey.So(cfg.MaxMatches, convey.ShouldEqual, 50)
				convey.So(cfg.LogLevel, convey.ShouldEqual, "info")
			})

			convey.Convey("Then env vars win over the file", func() {
				t.Setenv("TOUCHLINE_ADDR", ":7070")
				cfg, err := config.Load(ctx)
				convey.So(err, convey.ShouldBeNil)
				convey.So(cfg.Addr, convey.ShouldEqual, ":7070")
			})
		})

		convey.Convey("When the config file does not exist", func() {
			clearConfigEnvVars(t)
			t.Setenv("TOUCHLINE_CONFIG", "/nonexistent/touchline.yaml")

			_, err := config.Load(ctx)

			convey.Convey("Then it should fail to load", func() {
				convey.So(errors.Is(err, config.ErrLoadConfig), convey.ShouldBeTrue)
			})
		})
	})
}

func clearConfigEnvVars(t *testing.T) {
	t.Helper()
	for _, key := range []string{
		"TOUCHLINE_CONFIG", "TOUCHLINE_ADDR", "TOUCHLINE_EVENTS_PATH", "TOUCHLINE_METADATA_PATH",
		"TOUCHLINE_BATCH_WORKERS", "TOUCHLINE_SERVE", "TOUCHLINE_REDIS_TTL_SECONDS",
		"TOUCHLINE_STORE", "TOUCHLINE_OUTPUT_FORMAT", "TOUCHLINE_MAX_MATCHES",
	} {
		t.Setenv(key, "")
		_ = os.Unsetenv(key)
	}
}
