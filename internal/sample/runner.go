package sample

import (
	"context"
	"fmt"
	"os"
	"path/filepath"
	"time"

	"github.com/okian/touchline/pkg/logger"
)

// File permission constants.
const (
	directoryPermission = 0750
	filePermission      = 0600
)

// Run generates a match, writes it to cfg.OutputDir and, when cfg.BaseURL is
// set, uploads it to a running server.
func Run(ctx context.Context, cfg Config) (*Stats, error) {
	stats := &Stats{StartTime: time.Now()}

	logger.Get().Info(ctx, "generating synthetic match",
		logger.Int("seed", int(cfg.Seed)),
		logger.Int("periods", cfg.Periods),
		logger.Int("eventsPerPeriod", cfg.EventsPerPeriod),
		logger.String("outputDir", cfg.OutputDir),
		logger.String("baseURL", cfg.BaseURL))

	match, err := Generate(cfg)
	if err != nil {
		return nil, fmt.Errorf("match generation failed: %w", err)
	}
	stats.EventsGenerated = len(match.Events)
	stats.Goals = match.HomeScore + match.AwayScore

	events, err := EncodeEvents(match)
	if err != nil {
		return nil, err
	}
	metadata, err := EncodeMetadata(match)
	if err != nil {
		return nil, err
	}

	if err := os.MkdirAll(cfg.OutputDir, directoryPermission); err != nil {
		return nil, fmt.Errorf("failed to create directory: %w", err)
	}
	base := fmt.Sprintf("synthetic_%d", cfg.Seed)
	stats.EventsPath = filepath.Join(cfg.OutputDir, base+"_events.json")
	stats.MetadataPath = filepath.Join(cfg.OutputDir, base+"_metadata.xml")
	if err := os.WriteFile(stats.EventsPath, events, filePermission); err != nil {
		return nil, fmt.Errorf("failed to write events: %w", err)
	}
	if err := os.WriteFile(stats.MetadataPath, metadata, filePermission); err != nil {
		return nil, fmt.Errorf("failed to write metadata: %w", err)
	}
	logger.Get().Info(ctx, "match written",
		logger.String("events", stats.EventsPath),
		logger.String("metadata", stats.MetadataPath))

	if cfg.BaseURL != "" {
		client := newHTTPClient(cfg.Timeout)
		if err := checkServiceHealth(ctx, client, cfg.BaseURL); err != nil {
			return nil, fmt.Errorf("service health check failed: %w", err)
		}
		resp, err := client.Upload(ctx, cfg.BaseURL, events, metadata)
		if err != nil {
			return nil, err
		}
		stats.MatchID = resp.ID
		logger.Get().Info(ctx, "match uploaded",
			logger.String("id", resp.ID),
			logger.String("runID", resp.RunID))
	}

	stats.EndTime = time.Now()
	stats.Duration = stats.EndTime.Sub(stats.StartTime)
	logger.Get().Info(ctx, "final statistics",
		logger.Int("eventsGenerated", stats.EventsGenerated),
		logger.Int("goals", stats.Goals),
		logger.String("duration", stats.Duration.String()))
	return stats, nil
}

// checkServiceHealth verifies the service is running.
func checkServiceHealth(ctx context.Context, client *HTTPClient, baseURL string) error {
	resp, err := client.Get(ctx, baseURL+"/healthz")
	if err != nil {
		return fmt.Errorf("failed to connect to service: %w", err)
	}
	defer func() {
		if err := resp.Body.Close(); err != nil {
			logger.Get().Error(context.Background(), "failed to close response body", logger.Error(err))
		}
	}()

	if resp.StatusCode != StatusOK {
		return fmt.Errorf("service health check failed with status: %d", resp.StatusCode)
	}
	return nil
}
