// Copyright Mesh Intelligence Inc., 2026. All rights reserved.

// Package harvest drives one source through discovery, fetch, extraction,
// and persistence, keeping the output directory resumable at every step.
package harvest

import (
	"context"
	"errors"
	"fmt"
	"log/slog"

	"go.opentelemetry.io/otel"
	"go.opentelemetry.io/otel/attribute"
	"go.opentelemetry.io/otel/codes"

	"github.com/pdiddy/rhino-harvest/internal/extract"
	"github.com/pdiddy/rhino-harvest/internal/frontier"
	"github.com/pdiddy/rhino-harvest/internal/httputil"
	"github.com/pdiddy/rhino-harvest/internal/resume"
	"github.com/pdiddy/rhino-harvest/internal/summary"
	"github.com/pdiddy/rhino-harvest/pkg/types"
)

const defaultCheckpointEvery = 50

// Source is one harvestable provider: its discovery channels, its content
// fetch, and the extractor for what it fetches.
type Source interface {
	Name() string
	Channels() []frontier.Channel
	Fetch(ctx context.Context, item types.WorkItem) (types.FetchResult, error)
	Extractor() extract.Extractor
}

// Orchestrator runs a source into an output directory.
type Orchestrator struct {
	src       Source
	outputDir string
	cfg       types.HarvestConfig
	logger    *slog.Logger
}

// New returns an orchestrator writing src's records under outputDir.
func New(src Source, outputDir string, cfg types.HarvestConfig, logger *slog.Logger) *Orchestrator {
	if logger == nil {
		logger = slog.Default()
	}
	if cfg.CheckpointEvery <= 0 {
		cfg.CheckpointEvery = defaultCheckpointEvery
	}
	return &Orchestrator{src: src, outputDir: outputDir, cfg: cfg, logger: logger.With("source", src.Name())}
}

// outcome is what happened to one work item.
type outcome int

const (
	written outcome = iota
	gone
	skipped
	failed
)

// Run discovers every work item and processes those not already done. A
// failing item never stops the run. Cancellation stops the loop between
// items; the final summary is written in every case and returned together
// with the context error.
func (o *Orchestrator) Run(ctx context.Context) (types.RunSummary, error) {
	store, err := resume.OpenDir(o.outputDir, o.logger)
	if err != nil {
		return types.RunSummary{}, fmt.Errorf("opening resume store: %w", err)
	}
	defer store.Close()

	rep := summary.NewReporter(o.src.Name(), o.outputDir, store.RecordsDir(), o.logger)

	disc, err := frontier.NewAggregator(o.src.Channels(), o.logger).Discover(ctx)
	if errors.Is(err, frontier.ErrNoChannels) {
		return types.RunSummary{}, err
	}
	rep.Discovered(len(disc.Items), disc.Reports)
	o.logger.Info("discovery complete", "items", len(disc.Items), "duplicates", disc.Duplicates, "channels", len(disc.Reports))

	processed := 0
	for _, item := range disc.Items {
		if ctx.Err() != nil {
			break
		}
		if store.IsDone(item.ID) {
			rep.AlreadyDone()
			continue
		}

		o.process(ctx, store, rep, item)
		processed++
		if processed%o.cfg.CheckpointEvery == 0 {
			if err := rep.Checkpoint(); err != nil {
				o.logger.Warn("checkpoint failed", "error", err)
			}
		}
	}

	sum, err := rep.Finalize()
	if err != nil {
		return sum, fmt.Errorf("writing summary: %w", err)
	}
	if err := ctx.Err(); err != nil {
		o.logger.Info("harvest interrupted", "processed", processed)
		return sum, err
	}
	o.logger.Info("harvest complete", "processed", processed, "records", sum.Records)
	return sum, nil
}

// process handles one item inside its own span and updates the reporter.
func (o *Orchestrator) process(ctx context.Context, store *resume.Store, rep *summary.Reporter, item types.WorkItem) {
	ctx, span := otel.Tracer("internal/harvest").Start(ctx, "harvest.item")
	defer span.End()
	span.SetAttributes(
		attribute.String("harvest.source", o.src.Name()),
		attribute.String("harvest.item_id", item.ID),
	)

	res, records, out, err := o.handle(ctx, store, item)
	switch out {
	case written:
		rep.Fetched()
		rep.Written(records)
		span.SetAttributes(attribute.Int("harvest.records", len(records)))
		o.logger.Debug("item done", "id", item.ID, "records", len(records), "title", res.Title)
	case gone:
		rep.Gone(httputil.ReasonOf(err))
		o.logger.Info("item gone", "id", item.ID, "reason", httputil.ReasonOf(err))
	case skipped:
		rep.Failed(httputil.ReasonOf(err), true)
		o.logger.Warn("item skipped", "id", item.ID, "reason", httputil.ReasonOf(err), "error", err)
	case failed:
		rep.Failed(httputil.ReasonOf(err), false)
		o.logger.Error("item failed", "id", item.ID, "reason", httputil.ReasonOf(err), "error", err)
	}
	if err != nil && out != gone {
		span.RecordError(err)
		span.SetStatus(codes.Error, err.Error())
	}
}

// handle fetches, extracts, writes, and marks one item. A panic anywhere
// in that sequence is reported as a failure of this item alone.
func (o *Orchestrator) handle(ctx context.Context, store *resume.Store, item types.WorkItem) (res types.FetchResult, records []types.ExtractedRecord, out outcome, err error) {
	defer func() {
		if p := recover(); p != nil {
			out = failed
			err = &httputil.Failure{
				Outcome: httputil.PermanentFailure,
				Reason:  httputil.ReasonUnexpected,
				Err:     fmt.Errorf("panic processing %s: %v", item.ID, p),
			}
		}
	}()

	res, err = o.src.Fetch(ctx, item)
	if err != nil {
		switch {
		case httputil.IsNotFound(err), httputil.IsRejected(err):
			if werr := o.persist(store, item.ID, nil); werr != nil {
				return res, nil, failed, werr
			}
			return res, nil, gone, err
		case httputil.OutcomeOf(err) == httputil.RetryableFailure:
			return res, nil, skipped, err
		default:
			return res, nil, failed, err
		}
	}

	records = o.src.Extractor().Extract(res)
	if err := o.persist(store, item.ID, records); err != nil {
		return res, records, failed, err
	}
	return res, records, written, nil
}

// persist writes the record file of id, then marks id done. The marker is
// only appended once the file is closed.
func (o *Orchestrator) persist(store *resume.Store, id string, records []types.ExtractedRecord) error {
	if err := resume.WriteRecords(store.RecordPath(id), records); err != nil {
		return err
	}
	if err := store.MarkDone(id); err != nil {
		return fmt.Errorf("marking %s done: %w", id, err)
	}
	return nil
}
