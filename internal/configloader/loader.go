package configloader

import (
	"context"
	"log/slog"
	"sync"
	"time"

	"github.com/google/uuid"

	"movs/internal/appconfig"
	"movs/internal/logging"
	"movs/internal/services"
	"movs/internal/tmdb"
)

// Trigger requests one load cycle.
type Trigger struct{}

// RemoteSource fetches the two remote halves of the configuration.
type RemoteSource = tmdb.ConfigSource

// Store holds the last good configuration.
type Store interface {
	Load() (appconfig.Config, bool)
	Store(cfg appconfig.Config)
}

// Failure is published on the failure stream once per failed cycle.
// Fallback reports whether a cached config was published for the cycle.
type Failure struct {
	Cycle    uint64
	ID       string
	Err      error
	Fallback bool
}

// Loader turns triggers into resolved configurations and failure
// notifications. Each trigger starts an independent cycle; overlapping cycles
// publish in completion order. Cache access happens on a single goroutine.
type Loader struct {
	ctx      context.Context
	cancel   context.CancelFunc
	triggers <-chan Trigger
	source   RemoteSource
	store    Store
	logger   *slog.Logger
	metrics  *Metrics
	now      func() time.Time

	configs  *feed[appconfig.Config]
	failures *feed[Failure]
	outcomes chan outcome
	cycles   sync.WaitGroup
	done     chan struct{}
}

// Option configures a Loader.
type Option func(*Loader)

// WithLogger sets the loader logger.
func WithLogger(logger *slog.Logger) Option {
	return func(l *Loader) {
		if logger != nil {
			l.logger = logger
		}
	}
}

// WithMetrics attaches Prometheus collectors.
func WithMetrics(m *Metrics) Option {
	return func(l *Loader) { l.metrics = m }
}

// WithClock overrides the time source used for fetch durations.
func WithClock(now func() time.Time) Option {
	return func(l *Loader) {
		if now != nil {
			l.now = now
		}
	}
}

// New starts a loader reading triggers until ctx ends, Close is called, or
// triggers is closed and every pending cycle has resolved. Nothing is fetched
// before the first trigger. Streams are hot: subscribe before sending
// triggers to observe every cycle.
func New(ctx context.Context, triggers <-chan Trigger, source RemoteSource, store Store, opts ...Option) *Loader {
	if ctx == nil {
		ctx = context.Background()
	}
	ctx, cancel := context.WithCancel(ctx)

	l := &Loader{
		ctx:      ctx,
		cancel:   cancel,
		triggers: triggers,
		source:   source,
		store:    store,
		logger:   logging.NewNop(),
		now:      time.Now,
		configs:  newFeed(appconfig.Config.Clone),
		failures: newFeed[Failure](nil),
		outcomes: make(chan outcome),
		done:     make(chan struct{}),
	}
	for _, opt := range opts {
		opt(l)
	}
	l.logger = logging.NewComponentLogger(l.logger, "configloader")
	go l.run()
	return l
}

// SubscribeConfigs returns a subscription to the resolved-config stream.
// Fresh and cached configs are indistinguishable on this stream.
func (l *Loader) SubscribeConfigs() *Subscription[appconfig.Config] {
	return l.configs.subscribe()
}

// SubscribeFailures returns a subscription to the failure stream.
func (l *Loader) SubscribeFailures() *Subscription[Failure] {
	return l.failures.subscribe()
}

// Close stops the loader, cancels in-flight fetches, drops their results and
// waits for the pipeline to finish. Subscriptions are closed once their queued
// events have been received.
func (l *Loader) Close() {
	l.cancel()
	<-l.done
}

// Done is closed when the loader has stopped.
func (l *Loader) Done() <-chan struct{} { return l.done }

func (l *Loader) run() {
	defer close(l.done)
	defer l.failures.close()
	defer l.configs.close()

	var (
		seq      uint64
		pending  int
		triggers = l.triggers
	)

	l.logger.Debug("config loader started")
	defer l.logger.Debug("config loader stopped")

	for {
		if triggers == nil && pending == 0 {
			return
		}
		if l.ctx.Err() != nil {
			l.cycles.Wait()
			return
		}

		select {
		case <-l.ctx.Done():
			l.cycles.Wait()
			return
		case _, ok := <-triggers:
			if !ok {
				triggers = nil
				continue
			}
			seq++
			pending++
			l.cycles.Add(1)
			go l.runCycle(seq)
		case out := <-l.outcomes:
			pending--
			l.resolve(out)
		}
	}
}

func (l *Loader) runCycle(seq uint64) {
	defer l.cycles.Done()

	id := uuid.NewString()
	ctx := services.WithCycle(l.ctx, seq)
	ctx = services.WithRequestID(ctx, id)
	logger := logging.WithContext(ctx, l.logger)
	logger.Debug("config cycle started")

	start := l.now()
	cfg, err := fetchBoth(ctx, l.source)
	elapsed := l.now().Sub(start)
	l.metrics.observeDuration(elapsed)

	out := outcome{cycle: seq, id: id, config: cfg, err: err}
	select {
	case l.outcomes <- out:
	case <-l.ctx.Done():
		l.metrics.observeCycle(OutcomeDropped)
		logger.Debug("config cycle dropped", logging.Duration("elapsed", elapsed))
	}
}

// resolve applies the fallback policy to one finished cycle. It runs only on
// the run goroutine.
func (l *Loader) resolve(out outcome) {
	ctx := services.WithRequestID(services.WithCycle(l.ctx, out.cycle), out.id)
	logger := logging.WithContext(ctx, l.logger)

	if l.ctx.Err() != nil {
		l.metrics.observeCycle(OutcomeDropped)
		logger.Debug("config cycle dropped after shutdown")
		return
	}

	if out.err == nil {
		l.store.Store(out.config)
		l.configs.publish(out.config)
		l.metrics.observeCycle(OutcomeFresh)
		logger.Info("config resolved",
			logging.String("source", "remote"),
			logging.Int("genre_count", len(out.config.Genres)))
		return
	}

	branch := BranchOf(out.err)
	l.metrics.observeFailure(branch)

	cached, ok := l.store.Load()
	if ok {
		l.configs.publish(cached)
		l.metrics.observeCycle(OutcomeCached)
	} else {
		l.metrics.observeCycle(OutcomeEmpty)
	}

	impact := "no config published for this cycle"
	if ok {
		impact = "serving cached config"
	}
	logging.WarnWithContext(logger, "config fetch failed",
		"config_fetch_failed",
		logging.Error(out.err),
		logging.String("branch", branch),
		logging.String("error_kind", services.Kind(out.err)),
		logging.Bool("fallback", ok),
		logging.String(logging.FieldErrorHint, "check network access and tmdb.api_key"),
		logging.String(logging.FieldImpact, impact))

	l.failures.publish(Failure{Cycle: out.cycle, ID: out.id, Err: out.err, Fallback: ok})
}
