// Package seeder inserts sample detection logs for local development and
// demos. Production logs are written by the classifier, never by this
// package.
package seeder

import (
	"context"
	"fmt"
	"log/slog"
	"time"

	"github.com/heartmarshall/modlog-backend/internal/domain"
)

// DefaultSamples returns the built-in sample decisions.
func DefaultSamples() []Sample {
	return []Sample{
		{Text: "This is a safe message.", Confidence: 0.05, Model: "koelectra-v1"},
		{Text: "I hate you!", Confidence: 0.95, Model: "koelectra-v1"},
		{Text: "Have a nice day.", Confidence: 0.01, Model: "kanana-v1"},
		{Text: "You are stupid.", Confidence: 0.88, Model: "kanana-v1"},
		{Text: "Suspicious content here.", Confidence: 0.6, Model: "koelectra-v1"},
	}
}

type logInserter interface {
	InsertMany(ctx context.Context, logs []domain.DetectionLog) error
}

// Result summarises one run.
type Result struct {
	Inserted int
	Batches  int
	Duration time.Duration
}

// Seeder inserts the configured samples.
type Seeder struct {
	log  *slog.Logger
	repo logInserter
	cfg  Config
}

// New creates a Seeder.
func New(logger *slog.Logger, repo logInserter, cfg Config) *Seeder {
	return &Seeder{log: logger.With("component", "seeder"), repo: repo, cfg: cfg}
}

// Build expands the configured samples into logs. A sample is harmful when
// its confidence reaches the threshold.
func (s *Seeder) Build() []domain.DetectionLog {
	logs := make([]domain.DetectionLog, 0, len(s.cfg.Samples)*s.cfg.Copies)
	for c := 1; c <= s.cfg.Copies; c++ {
		for _, smp := range s.cfg.Samples {
			l := domain.DetectionLog{
				TextContent:   smp.Text,
				Confidence:    smp.Confidence,
				ThresholdUsed: s.cfg.Threshold,
				IsHarmful:     smp.Confidence >= s.cfg.Threshold,
				Metadata:      map[string]any{"source": "seed", "copy": c},
			}
			if smp.Model != "" {
				model := smp.Model
				l.ModelVersion = &model
			}
			if s.cfg.UserID != "" {
				uid := s.cfg.UserID
				l.UserID = &uid
			}
			logs = append(logs, l)
		}
	}
	return logs
}

// Run inserts the built logs in batches. In dry-run mode nothing is written.
func (s *Seeder) Run(ctx context.Context) (Result, error) {
	start := time.Now()
	logs := s.Build()
	var res Result

	if s.cfg.DryRun {
		s.log.InfoContext(ctx, "dry run, nothing inserted", slog.Int("logs", len(logs)))
		res.Duration = time.Since(start)
		return res, nil
	}

	for i := 0; i < len(logs); i += s.cfg.BatchSize {
		end := min(i+s.cfg.BatchSize, len(logs))
		if err := s.repo.InsertMany(ctx, logs[i:end]); err != nil {
			res.Duration = time.Since(start)
			return res, fmt.Errorf("insert batch %d: %w", res.Batches+1, err)
		}
		res.Inserted += end - i
		res.Batches++
		s.log.DebugContext(ctx, "batch inserted", slog.Int("batch", res.Batches), slog.Int("size", end-i))
	}

	res.Duration = time.Since(start)
	s.log.InfoContext(ctx, "seed completed",
		slog.Int("inserted", res.Inserted),
		slog.Int("batches", res.Batches),
		slog.Duration("duration", res.Duration),
	)
	return res, nil
}
