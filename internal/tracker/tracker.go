// Package tracker runs one rank check: read the last observation, fetch the
// current ranks, report the change and append the new observation.
package tracker

import (
	"context"
	"ctfrank/internal/assert"
	"ctfrank/internal/chrono"
	"ctfrank/internal/history"
	"ctfrank/internal/notify"
	"ctfrank/internal/ranking"
	"ctfrank/internal/telemetry"

	"go.opentelemetry.io/otel"
	"go.opentelemetry.io/otel/attribute"
	"go.opentelemetry.io/otel/codes"
	"go.opentelemetry.io/otel/metric"
)

var (
	tracer = otel.Tracer("ctfrank/tracker")
	meter  = otel.Meter("ctfrank/tracker")
)

const (
	report_tracker_run = "tracker.run"
	report_world_rank  = "world_rank"
	report_region_rank = "region_rank"
)

// Fetcher reads the team's current ranks, see scrapers/ctftime.Client.
type Fetcher interface {
	FetchWorldRank(ctx context.Context) (ranking.Rank, error)
	FetchRegionRank(ctx context.Context) (ranking.Rank, error)
}

type Notifier interface {
	Notify(ctx context.Context, msg notify.Message) error
}

type Tracker struct {
	store    history.Store
	fetcher  Fetcher
	notifier Notifier
	identity notify.Identity
	time     chrono.TimeAPI
	tel      telemetry.API

	worldGauge  metric.Int64Gauge
	regionGauge metric.Int64Gauge
}

func NewTracker(
	store history.Store,
	fetcher Fetcher,
	notifier Notifier,
	identity notify.Identity,
	time chrono.TimeAPI,
	tel telemetry.API,
) Tracker {
	assert.NotNil(store, "store")
	assert.NotNil(fetcher, "fetcher")
	assert.NotNil(notifier, "notifier")
	assert.NotNil(time, "time")
	assert.NotNil(tel, "telemetry")

	tel = telemetry.NewScopedAPI("tracker", tel)

	// instruments from the global meter never fail to build, a no-op
	// provider just records nothing
	worldGauge, _ := meter.Int64Gauge("ctfrank.world_rank")
	regionGauge, _ := meter.Int64Gauge("ctfrank.region_rank")

	return Tracker{
		store:       store,
		fetcher:     fetcher,
		notifier:    notifier,
		identity:    identity,
		time:        time,
		tel:         tel,
		worldGauge:  worldGauge,
		regionGauge: regionGauge,
	}
}

type RunOptions struct {
	// DryRun stops after the message is built, nothing is sent, stored or
	// recorded as a rank metric.
	DryRun bool
}

type Result struct {
	Current     ranking.Observation
	Previous    ranking.Observation
	HasPrevious bool
	Change      ranking.Change
	Message     notify.Message
	Notified    bool
	Stored      bool
}

// Run executes the pipeline once. The first error aborts the run, in
// particular nothing is stored unless the notification went out.
func (t Tracker) Run(ctx context.Context, opts RunOptions) (Result, error) {
	ctx, span := tracer.Start(ctx, "tracker:Run")
	defer span.End()
	span.SetAttributes(attribute.Bool("dry_run", opts.DryRun))

	result, err := t.run(ctx, opts)
	if err != nil {
		span.RecordError(err)
		span.SetStatus(codes.Error, "run failed")
		t.tel.ReportBroken(report_tracker_run, err)
	}
	return result, err
}

func (t Tracker) run(ctx context.Context, opts RunOptions) (Result, error) {
	var result Result

	previous, ok, err := t.store.GetLatest(ctx)
	if err != nil {
		return result, err
	}
	result.Previous = previous
	result.HasPrevious = ok
	if !ok {
		t.tel.ReportDebug("no previous observation")
	}

	world, err := t.fetcher.FetchWorldRank(ctx)
	if err != nil {
		return result, err
	}
	region, err := t.fetcher.FetchRegionRank(ctx)
	if err != nil {
		return result, err
	}

	result.Current = ranking.Observation{
		ObservedAt: t.time.Now(),
		World:      world,
		Region:     region,
	}
	result.Change = ranking.Compare(result.Current, previous)

	result.Message = notify.BuildMessage(t.identity, notify.Summary{
		Current:  result.Current,
		Change:   result.Change,
		Previous: previous,
	})

	if opts.DryRun {
		return result, nil
	}

	t.tel.ReportCount(report_world_rank, int64(world))
	t.tel.ReportCount(report_region_rank, int64(region))
	t.worldGauge.Record(ctx, int64(world))
	t.regionGauge.Record(ctx, int64(region))

	err = t.notifier.Notify(ctx, result.Message)
	if err != nil {
		return result, err
	}
	result.Notified = true

	err = t.store.Append(ctx, result.Current)
	if err != nil {
		return result, err
	}
	result.Stored = true

	return result, nil
}
