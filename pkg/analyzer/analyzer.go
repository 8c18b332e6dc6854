// Package analyzer runs the analytics pipeline: normalization, then the
// aggregator, classifier and ranking stages in parallel, then report
// assembly.
package analyzer

import (
	"context"
	"encoding/json"
	"fmt"
	"time"

	"github.com/google/uuid"
	"golang.org/x/sync/errgroup"

	"iganalyzer/pkg/config"
	"iganalyzer/pkg/content"
	"iganalyzer/pkg/errors"
	"iganalyzer/pkg/logger"
	"iganalyzer/pkg/metrics"
	"iganalyzer/pkg/normalize"
	"iganalyzer/pkg/ranking"
	"iganalyzer/pkg/report"
	"iganalyzer/pkg/source"
	"iganalyzer/pkg/stats"
)

// Stage names used in logs and metrics
const (
	StageLoad      = "load"
	StageNormalize = "normalize"
	StageAggregate = "aggregate"
	StageClassify  = "classify"
	StageRank      = "rank"
	StageAssemble  = "assemble"
	StageWrite     = "write"
)

// Analyzer turns raw post metadata into a report
type Analyzer struct {
	cfg      *config.Config
	logger   logger.Logger
	metrics  *metrics.Collector
	location *time.Location
	runID    string
}

// New creates an analyzer. A nil collector disables metrics.
func New(cfg *config.Config, log logger.Logger, collector *metrics.Collector) (*Analyzer, error) {
	loc, err := cfg.Analysis.ResolveLocation()
	if err != nil {
		return nil, errors.Config("invalid timezone settings", err)
	}
	if log == nil {
		log = logger.NewNopLogger()
	}

	runID := uuid.NewString()
	return &Analyzer{
		cfg:      cfg,
		logger:   log.WithField("run_id", runID),
		metrics:  collector,
		location: loc,
		runID:    runID,
	}, nil
}

// RunID identifies this analyzer's log lines. It never enters a report.
func (a *Analyzer) RunID() string {
	return a.runID
}

// Parameters returns the report parameters for an analysis config
func Parameters(cfg config.AnalysisConfig) report.Parameters {
	return report.Parameters{
		TopN: cfg.TopN,
		ScoreWeights: ranking.Weights{
			Likes:    cfg.ScoreWeights.Likes,
			Comments: cfg.ScoreWeights.Comments,
		},
		TimezoneConvention: cfg.TimezoneConvention,
		TopKHashtags:       cfg.TopKHashtags,
		TopKTokens:         cfg.TopKTokens,
		TopKMentions:       cfg.TopKMentions,
		MinTokenLength:     cfg.MinTokenLength,
		TierThresholds: report.TierThresholds{
			High:    cfg.TierThresholds.High,
			Growing: cfg.TierThresholds.Growing,
		},
		HashtagCategoryMap: cfg.HashtagCategoryMap,
	}
}

// Analyze normalizes items and builds the report. items are not modified.
// The context only allows abandoning a run before assembly.
func (a *Analyzer) Analyze(ctx context.Context, items []json.RawMessage) (*report.Report, error) {
	start := time.Now()
	norm := normalize.Normalize(items)
	a.observe(StageNormalize, len(items), time.Since(start))
	a.recordDiagnostics(norm.Diagnostics)

	records := norm.Records
	analysis := a.cfg.Analysis

	var (
		agg     stats.Result
		profile content.Profile
		top     []ranking.Entry
	)

	g, gctx := errgroup.WithContext(ctx)
	g.Go(func() error {
		defer a.timed(StageAggregate, len(records))()
		agg = stats.Aggregate(records, stats.Options{
			Location:    a.location,
			HighTier:    analysis.TierThresholds.High,
			GrowingTier: analysis.TierThresholds.Growing,
		})
		return gctx.Err()
	})
	g.Go(func() error {
		defer a.timed(StageClassify, len(records))()
		profile = content.Classify(records, content.Options{
			TopKHashtags:   analysis.TopKHashtags,
			TopKTokens:     analysis.TopKTokens,
			TopKMentions:   analysis.TopKMentions,
			MinTokenLength: analysis.MinTokenLength,
			CategoryMap:    analysis.HashtagCategoryMap,
		})
		return gctx.Err()
	})
	g.Go(func() error {
		defer a.timed(StageRank, len(records))()
		top = ranking.Rank(records, ranking.Weights{
			Likes:    analysis.ScoreWeights.Likes,
			Comments: analysis.ScoreWeights.Comments,
		}, analysis.TopN)
		return gctx.Err()
	})
	if err := g.Wait(); err != nil {
		return nil, fmt.Errorf("analysis cancelled: %w", err)
	}

	defer a.timed(StageAssemble, len(records))()
	r := report.Assemble(Parameters(analysis), agg, profile, top, norm.Diagnostics)

	a.logger.InfoWithFields("Analysis completed", map[string]interface{}{
		"posts":    r.Summary.TotalPosts,
		"rejected": r.Diagnostics.Rejected,
		"warnings": len(r.Diagnostics.Warnings),
		"theme":    r.ContentProfile.Theme,
		"duration": time.Since(start),
	})
	return r, nil
}

// Run loads the input at path, analyzes it and writes the report to the
// configured location. When writing fails the computed report is returned
// together with the serialization error.
func (a *Analyzer) Run(ctx context.Context, path string) (*report.Report, error) {
	logger.LogComponentStart(a.logger, "analyzer", map[string]interface{}{
		"input":  path,
		"output": a.cfg.ReportPath(),
		"top_n":  a.cfg.Analysis.TopN,
	})

	start := time.Now()
	items, err := source.NewLoader(a.cfg.Input.Skip).
		WithWorkers(a.cfg.Input.Workers).
		WithLogger(a.logger).
		Load(ctx, path)
	if err != nil {
		return nil, err
	}
	a.observe(StageLoad, len(items), time.Since(start))

	r, err := a.Analyze(ctx, items)
	if err != nil {
		return nil, err
	}

	if err := a.Write(r); err != nil {
		return r, err
	}
	return r, nil
}

// Write stores the report and, when configured, the metrics textfile
func (a *Analyzer) Write(r *report.Report) error {
	start := time.Now()
	if err := report.NewWriter(a.logger).Write(a.cfg.ReportPath(), r); err != nil {
		a.logger.WithError(err).Error("Failed to write report")
		return err
	}
	a.observe(StageWrite, r.Summary.TotalPosts, time.Since(start))

	if a.metrics != nil && a.cfg.Output.MetricsFile != "" {
		a.metrics.MarkCompleted(time.Now())
		if err := a.metrics.WriteTextfile(a.cfg.Output.MetricsFile); err != nil {
			// A metrics failure does not fail the run
			a.logger.WithError(err).Warn("Failed to write metrics")
		}
	}
	return nil
}

func (a *Analyzer) recordDiagnostics(d normalize.Diagnostics) {
	for _, r := range d.Rejections {
		logger.LogRejection(a.logger, r.Index, r.ID, string(r.Reason), r.Detail)
	}
	if len(d.Warnings) > 0 {
		a.logger.WarnWithFields("Records with unusable fields", map[string]interface{}{
			"warnings": len(d.Warnings),
			"reasons":  d.WarningsByReason(),
		})
	}

	if a.metrics == nil {
		return
	}
	a.metrics.RecordOutcome(metrics.OutcomeAccepted, d.Accepted)
	a.metrics.RecordOutcome(metrics.OutcomeRejected, d.Rejected())
	a.metrics.RecordRejections(d.RejectedByReason())
	a.metrics.RecordWarnings(d.WarningsByReason())
}

func (a *Analyzer) timed(stage string, records int) func() {
	start := time.Now()
	return func() {
		a.observe(stage, records, time.Since(start))
	}
}

func (a *Analyzer) observe(stage string, records int, elapsed time.Duration) {
	logger.LogStage(a.logger, stage, records, elapsed)
	if a.metrics != nil {
		a.metrics.ObserveStage(stage, elapsed)
	}
}
