package services

import (
	"context"
	"errors"
	"fmt"
	"sync"
	"time"

	"realestate-insights/charts"
	"realestate-insights/models"
	"realestate-insights/storage"
	"realestate-insights/telemetry"
	"realestate-insights/utils"
)

// Defaults used when the pipeline is built without overrides.
const (
	DefaultCity            = models.CityKrakow
	DefaultGroupField      = "buildingType"
	DefaultFilterParameter = models.StatMedianPricePerMeter
	DefaultFetchTimeout    = 30 * time.Second
	DefaultMaxConcurrency  = 2
)

// Recompute triggers, as reported to metrics.
const (
	TriggerCity       = "city"
	TriggerGroupField = "groupField"
)

var (
	// ErrPipelineClosed is returned by triggers after Shutdown.
	ErrPipelineClosed = errors.New("pipeline closed")
	// ErrServerAggregationUnsupported is returned when the source cannot
	// aggregate on its side.
	ErrServerAggregationUnsupported = errors.New("source does not support server-side aggregation")
)

// Subscriber receives a copy of the state after every transition.
// Deliveries from concurrent transitions may interleave; Version orders them.
type Subscriber func(EngineState)

// Option configures a Pipeline.
type Option func(*Pipeline)

// WithLogger sets the logger. The default discards output.
func WithLogger(l *utils.Logger) Option {
	return func(p *Pipeline) { p.logger = l }
}

// WithMetrics enables Prometheus instrumentation.
func WithMetrics(m *telemetry.Metrics) Option {
	return func(p *Pipeline) { p.metrics = m }
}

// WithFetchTimeout bounds each dataset fetch.
func WithFetchTimeout(d time.Duration) Option {
	return func(p *Pipeline) {
		if d > 0 {
			p.fetchTimeout = d
		}
	}
}

// WithMaxConcurrency bounds the number of fetches running at once.
func WithMaxConcurrency(n int) Option {
	return func(p *Pipeline) {
		if n > 0 {
			p.maxWorkers = n
		}
	}
}

// WithInitialSelection sets the city and grouping field used before the
// first trigger.
func WithInitialSelection(city, groupField string) Option {
	return func(p *Pipeline) {
		if city != "" {
			p.state.SelectedCity = city
		}
		if groupField != "" {
			p.state.SelectedGroupField = groupField
		}
	}
}

// WithFilterParameter sets the statistic shown in the filtered chart.
func WithFilterParameter(name string) Option {
	return func(p *Pipeline) {
		if name != "" {
			p.state.FilterParameter = name
		}
	}
}

// Pipeline owns the engine state and recomputes it when the selected
// city or grouping field changes. Fetches run asynchronously on a worker
// pool; every other step is a pure function of its inputs. Fetched
// datasets are held as delivered and never modified.
//
// Each city fetch gets a sequence number. Only the response carrying the
// latest issued number is applied, so a slow fetch for a previously
// selected city can never overwrite the current one.
type Pipeline struct {
	source       storage.DatasetSource
	insights     *InsightService
	logger       *utils.Logger
	metrics      *telemetry.Metrics
	pool         *utils.WorkerPool
	fetchTimeout time.Duration
	maxWorkers   int

	ctx    context.Context
	cancel context.CancelFunc

	mu          sync.Mutex
	state       EngineState
	seq         uint64            // last issued fetch sequence
	latest      uint64            // the fetch whose response may be applied
	pending     map[string]uint64 // city → sequence of its in-flight fetch
	generation  uint64            // bumped by every trigger; stale computations are dropped
	closed      bool
	subscribers map[int]Subscriber
	nextSubID   int
}

// NewPipeline builds an idle pipeline over source with an empty dataset.
// Call Start to issue the first fetch.
func NewPipeline(source storage.DatasetSource, opts ...Option) *Pipeline {
	empty := EmptyProjection()
	p := &Pipeline{
		source:       source,
		logger:       utils.NewNopLogger(),
		fetchTimeout: DefaultFetchTimeout,
		maxWorkers:   DefaultMaxConcurrency,
		pending:      make(map[string]uint64),
		subscribers:  make(map[int]Subscriber),
		state: EngineState{
			Status:             StatusIdle,
			SelectedCity:       DefaultCity,
			SelectedGroupField: DefaultGroupField,
			FilterParameter:    DefaultFilterParameter,
			CurrentDataset:     &models.PropertyDataset{Records: []models.PropertyRecord{}},
			Timeline:           []models.TimelinePoint{},
		},
	}
	p.state.applyProjection(empty)

	for _, opt := range opts {
		opt(p)
	}

	p.logger = p.logger.With("component", "pipeline")
	p.insights = NewInsightService(p.logger)
	p.state.Insights = p.insights.Generate(p.state.SelectedCity, p.state.CurrentDataset)
	p.state.AveragePriceText = AveragePriceText(p.state.Insights)
	p.state.AveragePricePerMeterText = AveragePricePerMeterText(p.state.Insights)
	p.pool = utils.NewWorkerPool(p.maxWorkers, 0)
	p.ctx, p.cancel = context.WithCancel(context.Background())
	return p
}

// Start fetches the initially selected city.
func (p *Pipeline) Start() error {
	p.mu.Lock()
	city := p.state.SelectedCity
	p.mu.Unlock()
	return p.SetCity(city)
}

// Snapshot returns a copy of the current state.
func (p *Pipeline) Snapshot() EngineState {
	p.mu.Lock()
	defer p.mu.Unlock()
	return p.state.clone()
}

// Subscribe registers fn for state transitions and returns a function
// that removes it.
func (p *Pipeline) Subscribe(fn Subscriber) func() {
	p.mu.Lock()
	defer p.mu.Unlock()

	id := p.nextSubID
	p.nextSubID++
	p.subscribers[id] = fn

	return func() {
		p.mu.Lock()
		defer p.mu.Unlock()
		delete(p.subscribers, id)
	}
}

// SetCity selects city and fetches its dataset in the background. When a
// fetch for city is already in flight no second one is issued; that
// fetch becomes the one whose result is applied.
func (p *Pipeline) SetCity(city string) error {
	if !models.IsAllowedCity(city) {
		return fmt.Errorf("services: set city %q: %w", city, models.ErrUnknownCity)
	}

	p.mu.Lock()
	if p.closed {
		p.mu.Unlock()
		return ErrPipelineClosed
	}

	p.generation++
	p.state.SelectedCity = city
	p.state.Status = StatusFetching
	p.state.FetchInFlight = true

	if seq, ok := p.pending[city]; ok {
		p.latest = seq
		snap := p.publishLocked()
		p.mu.Unlock()

		p.logger.Debug("fetch for %s already in flight (seq %d), not issuing another", city, seq)
		p.metrics.ObserveFetch(city, telemetry.OutcomeSkipped)
		p.notify(snap)
		return nil
	}

	p.seq++
	seq := p.seq
	p.latest = seq
	p.pending[city] = seq
	ctx := p.ctx
	p.pool.Submit(func() { p.fetch(ctx, city, seq) })
	snap := p.publishLocked()
	p.mu.Unlock()

	p.logger.Info("fetching dataset for %s (seq %d)", city, seq)
	p.notify(snap)
	return nil
}

// SetGroupField selects the grouping path and recomputes the charts from
// the dataset already held. While a fetch for the selected city is in
// flight the new field is only recorded; the fetch completion computes
// with it.
func (p *Pipeline) SetGroupField(field string) error {
	if !models.IsAllowedGroupField(field) {
		return fmt.Errorf("services: set group field %q: %w", field, models.ErrUnsupportedGroupField)
	}

	p.mu.Lock()
	if p.closed {
		p.mu.Unlock()
		return ErrPipelineClosed
	}

	p.state.SelectedGroupField = field
	if p.fetchInFlightLocked() {
		p.generation++
		snap := p.publishLocked()
		p.mu.Unlock()
		p.notify(snap)
		return nil
	}

	job := p.beginComputeLocked()
	snap := p.publishLocked()
	p.mu.Unlock()

	p.notify(snap)
	p.runCompute(TriggerGroupField, job)
	return nil
}

// Wait blocks until every fetch issued so far has been handled.
func (p *Pipeline) Wait() {
	p.pool.Wait()
}

// Shutdown stops accepting triggers, cancels in-flight fetches and waits
// for their handlers to return or ctx to expire.
func (p *Pipeline) Shutdown(ctx context.Context) error {
	p.mu.Lock()
	if p.closed {
		p.mu.Unlock()
		return nil
	}
	p.closed = true
	p.cancel()
	p.mu.Unlock()

	done := make(chan struct{})
	go func() {
		p.pool.Wait()
		close(done)
	}()

	select {
	case <-done:
		p.logger.Info("pipeline stopped")
		return nil
	case <-ctx.Done():
		return fmt.Errorf("services: shutdown: %w", ctx.Err())
	}
}

// ServerStatistics asks the source to aggregate the selected city by the
// selected field, returning the grouped and the filtered chart.
func (p *Pipeline) ServerStatistics(ctx context.Context) (grouped, filtered models.ChartSeriesData, err error) {
	fetcher, ok := p.source.(storage.Fetcher)
	if !ok {
		return charts.Empty(), charts.Empty(), ErrServerAggregationUnsupported
	}

	snap := p.Snapshot()
	grouped, err = fetcher.FetchGroupedStatistics(ctx, snap.SelectedGroupField, snap.SelectedCity)
	if err != nil {
		p.logger.Warn("server-side grouped statistics failed: %v", err)
		return charts.Empty(), charts.Empty(), err
	}
	filtered, err = fetcher.FetchFilteredByParameter(ctx, snap.SelectedGroupField, snap.SelectedCity, snap.FilterParameter)
	if err != nil {
		p.logger.Warn("server-side filtered statistics failed: %v", err)
		return grouped, charts.Empty(), err
	}
	return grouped, filtered, nil
}

func (p *Pipeline) fetch(ctx context.Context, city string, seq uint64) {
	fetchCtx, cancel := context.WithTimeout(ctx, p.fetchTimeout)
	defer cancel()

	dataset, err := p.source.FetchDashboardData(fetchCtx, city)

	timeline := []models.TimelinePoint{}
	if err == nil {
		if ts, ok := p.source.(storage.TimelineSource); ok {
			points, terr := ts.FetchTimeline(fetchCtx, city)
			if terr != nil {
				p.logger.Warn("timeline fetch for %s failed: %v", city, terr)
			} else if points != nil {
				timeline = points
			}
		}
	}

	p.completeFetch(city, seq, dataset, timeline, err)
}

func (p *Pipeline) completeFetch(city string, seq uint64, dataset *models.PropertyDataset, timeline []models.TimelinePoint, err error) {
	p.mu.Lock()
	if p.pending[city] == seq {
		delete(p.pending, city)
	}

	if p.closed || seq != p.latest {
		p.state.FetchInFlight = p.fetchInFlightLocked()
		p.mu.Unlock()

		p.logger.Debug("discarding stale response for %s (seq %d)", city, seq)
		p.metrics.ObserveFetch(city, telemetry.OutcomeStale)
		return
	}

	p.state.FetchInFlight = false

	if err != nil {
		p.state.Status = StatusFailed
		p.state.LastError = err.Error()
		p.state.applyProjection(EmptyProjection())
		snap := p.publishLocked()
		p.mu.Unlock()

		p.logger.Error("fetch for %s failed: %v", city, err)
		p.metrics.ObserveFetch(city, telemetry.OutcomeFailure)
		p.notify(snap)
		return
	}

	report := p.insights.Generate(city, dataset)
	p.state.CurrentDataset = dataset
	p.state.Timeline = timeline
	p.state.Insights = report
	p.state.AveragePriceText = AveragePriceText(report)
	p.state.AveragePricePerMeterText = AveragePricePerMeterText(report)
	p.state.LastError = ""

	job := p.beginComputeLocked()
	snap := p.publishLocked()
	p.mu.Unlock()

	p.logger.Info("fetched %d offers for %s", dataset.Len(), city)
	p.metrics.ObserveFetch(city, telemetry.OutcomeSuccess)
	p.notify(snap)
	p.runCompute(TriggerCity, job)
}

// computeJob captures the exact inputs of one computation pass.
type computeJob struct {
	generation uint64
	dataset    *models.PropertyDataset
	groupField string
	parameter  string
}

func (p *Pipeline) beginComputeLocked() computeJob {
	p.generation++
	p.state.Status = StatusComputing
	return computeJob{
		generation: p.generation,
		dataset:    p.state.CurrentDataset,
		groupField: p.state.SelectedGroupField,
		parameter:  p.state.FilterParameter,
	}
}

func (p *Pipeline) runCompute(trigger string, job computeJob) {
	start := time.Now()
	projection := Compute(job.dataset, job.groupField, job.parameter)
	elapsed := time.Since(start)

	p.mu.Lock()
	if job.generation != p.generation {
		p.mu.Unlock()
		p.logger.Debug("computation superseded (generation %d)", job.generation)
		return
	}
	p.state.applyProjection(projection)
	p.state.Status = StatusReady
	snap := p.publishLocked()
	p.mu.Unlock()

	p.metrics.ObserveCompute(trigger, elapsed, job.dataset.Len())
	p.logger.Debug("recomputed %s charts by %s in %v", trigger, job.groupField, elapsed)
	p.notify(snap)
}

func (p *Pipeline) fetchInFlightLocked() bool {
	seq, ok := p.pending[p.state.SelectedCity]
	return ok && seq == p.latest
}

func (p *Pipeline) publishLocked() EngineState {
	p.state.Version++
	return p.state.clone()
}

func (p *Pipeline) notify(snap EngineState) {
	p.mu.Lock()
	subs := make([]Subscriber, 0, len(p.subscribers))
	for id := 0; id < p.nextSubID; id++ {
		if fn, ok := p.subscribers[id]; ok {
			subs = append(subs, fn)
		}
	}
	p.mu.Unlock()

	for _, fn := range subs {
		fn(snap)
	}
}
