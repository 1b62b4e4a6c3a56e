package mirror

import (
	"context"
	"errors"
	"fmt"
	"io"
	"log/slog"
	"net/http"
	"net/url"
	"strings"
	"time"

	"github.com/sony/gobreaker/v2"

	"github.com/roach88/tabard/internal/metrics"
	"github.com/roach88/tabard/internal/record"
)

// DefaultTimeout bounds a single webhook call.
const DefaultTimeout = 10 * time.Second

// Config holds the replicator's operator-facing settings. Enabled off
// turns the whole package into a no-op: Mirror discards immediately and
// Run returns without starting a loop.
type Config struct {
	Enabled bool
	URL     string
	Retry   RetryPolicy
	Breaker Breaker
	Timeout time.Duration
}

// Replicator owns the mirror queue and the worker that drains it.
//
// Thread-safety model:
//   - Mirror(): safe from any goroutine
//   - Run(): must be called from exactly one goroutine; deliveries are
//     serialized so the webhook observes mutations in commit order
//   - Stop(): safe from any goroutine
type Replicator struct {
	enabled bool
	url     string
	retry   RetryPolicy
	client  *http.Client
	breaker *gobreaker.CircuitBreaker[struct{}]
	queue   *eventQueue
	clock   *Clock
	log     *slog.Logger
	sleep   func(ctx context.Context, d time.Duration) error
}

// Option configures a Replicator beyond its Config.
type Option func(*Replicator)

// WithLogger replaces the default slog logger.
func WithLogger(l *slog.Logger) Option {
	return func(r *Replicator) {
		r.log = l
	}
}

// WithHTTPClient replaces the default webhook client. The replacement
// owns its own timeout; Config.Timeout is ignored.
func WithHTTPClient(c *http.Client) Option {
	return func(r *Replicator) {
		r.client = c
	}
}

// WithSleep replaces the backoff sleeper. Tests substitute a recorder
// so retry progressions run instantly.
func WithSleep(fn func(ctx context.Context, d time.Duration) error) Option {
	return func(r *Replicator) {
		r.sleep = fn
	}
}

// New creates a Replicator from cfg. Zero-valued retry, breaker, and
// timeout fields fall back to package defaults.
func New(cfg Config, opts ...Option) *Replicator {
	timeout := cfg.Timeout
	if timeout <= 0 {
		timeout = DefaultTimeout
	}

	r := &Replicator{
		enabled: cfg.Enabled,
		url:     cfg.URL,
		retry:   cfg.Retry.normalized(),
		client:  &http.Client{Timeout: timeout},
		queue:   newEventQueue(),
		clock:   NewClock(),
		log:     slog.Default(),
		sleep:   sleepContext,
	}

	br := cfg.Breaker.normalized()
	r.breaker = gobreaker.NewCircuitBreaker[struct{}](gobreaker.Settings{
		Name:        "backup-webhook",
		MaxRequests: 1,
		Timeout:     br.Cooldown,
		ReadyToTrip: func(counts gobreaker.Counts) bool {
			return counts.ConsecutiveFailures >= br.TripAfter
		},
		OnStateChange: func(name string, from, to gobreaker.State) {
			r.log.Warn("webhook circuit state changed",
				"breaker", name,
				"from", from.String(),
				"to", to.String(),
			)
		},
	})

	for _, opt := range opts {
		opt(r)
	}

	return r
}

// Enabled reports whether mirroring is configured on.
func (r *Replicator) Enabled() bool {
	return r.enabled
}

// QueueLen returns the number of events awaiting delivery.
func (r *Replicator) QueueLen() int {
	return r.queue.Len()
}

// Mirror enqueues a best-effort delivery of rec under the action
// derived from verb and table. It never blocks and never reports
// failure to the caller: the primary response is already decided by
// the time a mirror event exists. The payload is canonicalized here so
// every retry sends identical bytes.
func (r *Replicator) Mirror(verb Verb, table string, rec *record.Record) {
	if !r.enabled {
		return
	}

	action := ActionFor(verb, table)

	data, err := record.MarshalCanonical(rec)
	if err != nil {
		r.log.Warn("mirror payload not serializable, event discarded",
			"action", action,
			"error", err,
		)
		metrics.MirrorDeliveries.WithLabelValues("rejected").Inc()
		return
	}

	ev := Event{Action: action, Data: data, Seq: r.clock.Next()}
	if !r.queue.Enqueue(ev) {
		r.log.Warn("mirror event rejected, replicator stopped",
			"action", ev.Action,
			"seq", ev.Seq,
		)
		metrics.MirrorDeliveries.WithLabelValues("rejected").Inc()
		return
	}

	metrics.MirrorQueueDepth.Set(float64(r.queue.Len()))
	r.log.Debug("mirror event queued", "action", ev.Action, "seq", ev.Seq)
}

// Run starts the delivery loop. It blocks until ctx is cancelled or
// Stop is called; events still queued at that point are dropped, not
// drained, because a mirror that outlives its gateway has nothing to
// be consistent with. Must be called from exactly one goroutine.
func (r *Replicator) Run(ctx context.Context) error {
	if !r.enabled {
		return nil
	}

	r.log.Info("mirror worker starting", "webhook", redactURL(r.url))

	for {
		if r.queue.Closed() {
			if n := r.queue.Len(); n > 0 {
				r.log.Warn("mirror worker stopping, pending events dropped", "dropped", n)
				metrics.MirrorDeliveries.WithLabelValues("dropped").Add(float64(n))
			}
			metrics.MirrorQueueDepth.Set(0)
			r.log.Info("mirror worker stopped")
			return nil
		}

		ev, ok := r.queue.TryDequeue()
		if ok {
			metrics.MirrorQueueDepth.Set(float64(r.queue.Len()))
			r.deliver(ctx, ev)
			continue
		}

		// No event ready, wait for a signal or cancellation
		select {
		case <-ctx.Done():
			r.log.Info("mirror worker stopping: context cancelled")
			r.queue.Close()
			return ctx.Err()

		case <-r.queue.Wait():
			// Loop back to TryDequeue. The signal channel closes when
			// the queue closes, so this also fires on Stop.
		}
	}
}

// Stop closes the queue, which makes Run return after the in-flight
// delivery finishes.
func (r *Replicator) Stop() {
	r.queue.Close()
}

// deliver pushes one event at the webhook, retrying per the policy.
// Failure is terminal after MaxAttempts, or immediately while the
// circuit is open; the event is logged and dropped either way. Nothing
// propagates to the caller side.
func (r *Replicator) deliver(ctx context.Context, ev Event) {
	for attempt := 1; ; attempt++ {
		err := r.attempt(ctx, ev)
		if err == nil {
			r.log.Debug("mirror delivered",
				"action", ev.Action,
				"seq", ev.Seq,
				"attempt", attempt,
			)
			metrics.MirrorDeliveries.WithLabelValues("delivered").Inc()
			return
		}

		if errors.Is(err, gobreaker.ErrOpenState) || errors.Is(err, gobreaker.ErrTooManyRequests) {
			r.log.Warn("mirror delivery shed, webhook circuit open",
				"action", ev.Action,
				"seq", ev.Seq,
			)
			metrics.MirrorDeliveries.WithLabelValues("shed").Inc()
			return
		}

		if attempt >= r.retry.MaxAttempts {
			r.log.Warn("mirror delivery dropped, retries exhausted",
				"action", ev.Action,
				"seq", ev.Seq,
				"attempts", attempt,
				"error", err,
			)
			metrics.MirrorDeliveries.WithLabelValues("dropped").Inc()
			return
		}

		delay := r.retry.Delay(attempt)
		r.log.Warn("mirror delivery failed, retrying",
			"action", ev.Action,
			"seq", ev.Seq,
			"attempt", attempt,
			"backoff", delay,
			"error", err,
		)
		if err := r.sleep(ctx, delay); err != nil {
			r.log.Warn("mirror delivery abandoned, context cancelled",
				"action", ev.Action,
				"seq", ev.Seq,
			)
			metrics.MirrorDeliveries.WithLabelValues("dropped").Inc()
			return
		}
	}
}

// attempt performs one webhook call through the circuit breaker.
func (r *Replicator) attempt(ctx context.Context, ev Event) error {
	_, err := r.breaker.Execute(func() (struct{}, error) {
		return struct{}{}, r.call(ctx, ev)
	})
	return err
}

// call issues the GET the webhook contract expects: the action name and
// the JSON payload travel as query parameters. The response body is
// read and discarded; only the status matters.
func (r *Replicator) call(ctx context.Context, ev Event) error {
	q := url.Values{}
	q.Set("action", ev.Action)
	q.Set("data", string(ev.Data))

	sep := "?"
	if strings.Contains(r.url, "?") {
		sep = "&"
	}

	req, err := http.NewRequestWithContext(ctx, http.MethodGet, r.url+sep+q.Encode(), nil)
	if err != nil {
		return fmt.Errorf("building webhook request: %w", err)
	}

	resp, err := r.client.Do(req)
	if err != nil {
		return fmt.Errorf("calling webhook: %w", err)
	}
	defer resp.Body.Close()

	// Drain so the connection can be reused
	_, _ = io.Copy(io.Discard, io.LimitReader(resp.Body, 1<<20))

	if resp.StatusCode < 200 || resp.StatusCode > 299 {
		return fmt.Errorf("webhook returned %s", resp.Status)
	}
	return nil
}

// sleepContext pauses for d unless ctx is cancelled first.
func sleepContext(ctx context.Context, d time.Duration) error {
	t := time.NewTimer(d)
	defer t.Stop()
	select {
	case <-ctx.Done():
		return ctx.Err()
	case <-t.C:
		return nil
	}
}

// redactURL strips credentials and query from a webhook URL so it can
// be logged. Sheet webhooks routinely embed tokens in the query.
func redactURL(raw string) string {
	u, err := url.Parse(raw)
	if err != nil {
		return "(unparseable)"
	}
	u.User = nil
	u.RawQuery = ""
	return u.String()
}
