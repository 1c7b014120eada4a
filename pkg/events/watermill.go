// Package events is the Postgres-backed event bus built on Watermill's SQL
// transport. Repositories publish through NewTxPublisher inside their write
// transaction; the forwarder daemon moves those rows to the real topics and
// the worker process subscribes to them.
//
// Subscribers of one service share a consumer group, so each message is
// handled by a single instance. Handlers must be idempotent: a failing handler
// is retried with exponential backoff and then Nacked.
package events

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"sync"
	"time"

	"github.com/ThreeDotsLabs/watermill"
	watermillsql "github.com/ThreeDotsLabs/watermill-sql/v3/pkg/sql"
	"github.com/ThreeDotsLabs/watermill/components/forwarder"
	"github.com/ThreeDotsLabs/watermill/message"
	_ "github.com/jackc/pgx/v5/stdlib" // registers the "pgx" database/sql driver

	"github.com/ghuser/mall/pkg/config"
	"github.com/ghuser/mall/pkg/logger"
)

const (
	outboxTopic  = "_forwarder_queue"
	outboxGroup  = "mall-outbox"
	errorBuffer  = 100
	drainTimeout = 30 * time.Second
)

var (
	errNotForwarder     = errors.New("events: bus was not created with a forwarder")
	errForwarderRunning = errors.New("events: forwarder already started")
)

// Handler processes one message. A nil return Acks it.
type Handler func(ctx context.Context, msg *message.Message) error

// retryPolicy doubles the delay after each failed attempt, up to maxDelay.
type retryPolicy struct {
	attempts  int
	baseDelay time.Duration
	maxDelay  time.Duration
}

var defaultRetry = retryPolicy{attempts: 3, baseDelay: time.Second, maxDelay: 10 * time.Second}

// EventBus publishes and subscribes over watermill-sql tables in Postgres.
type EventBus struct {
	db        *sql.DB
	wlog      watermill.LoggerAdapter
	log       logger.Logger
	publisher message.Publisher
	sub       *watermillsql.Subscriber
	outbox    bool
	retry     retryPolicy

	mu  sync.Mutex
	fwd *forwarder.Forwarder
	wg  sync.WaitGroup
}

// NewEventBus publishes straight to the target topic.
func NewEventBus(cfg *config.Config, log logger.Logger) (*EventBus, error) {
	return open(cfg, log, false)
}

// NewEventBusWithForwarder routes every publish through the outbox topic.
// Exactly one process must call StartForwarder to drain it.
func NewEventBusWithForwarder(cfg *config.Config, log logger.Logger) (*EventBus, error) {
	return open(cfg, log, true)
}

func open(cfg *config.Config, log logger.Logger, outbox bool) (*EventBus, error) {
	db, err := sql.Open("pgx", cfg.DatabaseURL)
	if err != nil {
		return nil, fmt.Errorf("events: open db: %w", err)
	}
	db.SetMaxOpenConns(int(cfg.DatabaseMaxConns))
	db.SetConnMaxLifetime(cfg.DatabaseMaxLifetime)
	db.SetConnMaxIdleTime(cfg.DatabaseIdleTimeout)

	bus := &EventBus{
		db:     db,
		wlog:   watermill.NewSlogLogger(log.ToSlog()),
		log:    log,
		outbox: outbox,
		retry:  defaultRetry,
	}

	pub, err := bus.publisherOn(db)
	if err != nil {
		_ = db.Close()
		return nil, err
	}
	bus.publisher = bus.routed(pub)

	bus.sub, err = bus.subscriber(cfg.ServiceName + "-consumer")
	if err != nil {
		_ = pub.Close()
		_ = db.Close()
		return nil, err
	}
	return bus, nil
}

func (q *EventBus) publisherOn(db *sql.DB) (*watermillsql.Publisher, error) {
	pub, err := watermillsql.NewPublisher(db, watermillsql.PublisherConfig{
		SchemaAdapter:        watermillsql.DefaultPostgreSQLSchema{},
		AutoInitializeSchema: true,
	}, q.wlog)
	if err != nil {
		return nil, fmt.Errorf("events: new publisher: %w", err)
	}
	return pub, nil
}

func (q *EventBus) subscriber(group string) (*watermillsql.Subscriber, error) {
	sub, err := watermillsql.NewSubscriber(q.db, watermillsql.SubscriberConfig{
		SchemaAdapter:    watermillsql.DefaultPostgreSQLSchema{},
		OffsetsAdapter:   watermillsql.DefaultPostgreSQLOffsetsAdapter{},
		InitializeSchema: true,
		ConsumerGroup:    group,
	}, q.wlog)
	if err != nil {
		return nil, fmt.Errorf("events: new subscriber for %s: %w", group, err)
	}
	return sub, nil
}

// routed sends publishes to the outbox topic when the bus runs in outbox mode.
func (q *EventBus) routed(pub message.Publisher) message.Publisher {
	if !q.outbox {
		return pub
	}
	return forwarder.NewPublisher(pub, forwarder.PublisherConfig{ForwarderTopic: outboxTopic})
}

// StartForwarder runs the outbox daemon in the background until ctx is done.
// It returns once the daemon is consuming.
func (q *EventBus) StartForwarder(ctx context.Context) error {
	if !q.outbox {
		return errNotForwarder
	}

	q.mu.Lock()
	defer q.mu.Unlock()
	if q.fwd != nil {
		return errForwarderRunning
	}

	in, err := q.subscriber(outboxGroup)
	if err != nil {
		return err
	}
	out, err := q.publisherOn(q.db)
	if err != nil {
		_ = in.Close()
		return err
	}
	fwd, err := forwarder.NewForwarder(in, out, q.wlog, forwarder.Config{ForwarderTopic: outboxTopic})
	if err != nil {
		_ = out.Close()
		_ = in.Close()
		return fmt.Errorf("events: create forwarder: %w", err)
	}
	q.fwd = fwd

	q.wg.Go(func() {
		if err := fwd.Run(ctx); err != nil {
			q.log.ErrorContext(ctx, "outbox forwarder stopped", "error", err)
		}
	})

	select {
	case <-fwd.Running():
		q.log.InfoContext(ctx, "outbox forwarder running", "topic", outboxTopic)
		return nil
	case <-ctx.Done():
		return fmt.Errorf("events: waiting for forwarder: %w", ctx.Err())
	}
}

// NewTxPublisher returns a publisher bound to tx, so events commit or roll
// back with the rows they describe. The schema must already exist, which
// holds once any EventBus has been opened.
func (q *EventBus) NewTxPublisher(tx *sql.Tx) (message.Publisher, error) {
	pub, err := watermillsql.NewPublisher(tx, watermillsql.PublisherConfig{
		SchemaAdapter: watermillsql.DefaultPostgreSQLSchema{},
	}, q.wlog)
	if err != nil {
		return nil, fmt.Errorf("events: tx publisher: %w", err)
	}
	return q.routed(pub), nil
}

// Publish stamps the trace context of ctx onto msgs and sends them to topic.
func (q *EventBus) Publish(ctx context.Context, topic string, msgs ...*message.Message) error {
	InjectTrace(ctx, msgs...)
	if err := q.publisher.Publish(topic, msgs...); err != nil { //nolint:contextcheck
		return fmt.Errorf("events: publish to %s: %w", topic, err)
	}
	return nil
}

// Subscribe consumes topic in the background. Handler errors that outlive
// the retry policy are sent on the returned channel, which the caller must
// drain; it is closed when the subscription ends.
func (q *EventBus) Subscribe(ctx context.Context, topic string, handler Handler) (<-chan error, error) {
	msgs, err := q.sub.Subscribe(ctx, topic)
	if err != nil {
		return nil, fmt.Errorf("events: subscribe to %s: %w", topic, err)
	}

	failures := make(chan error, errorBuffer)
	q.wg.Go(func() {
		defer close(failures)
		for msg := range msgs {
			q.dispatch(ExtractTrace(ctx, msg), topic, msg, handler, failures)
		}
	})
	return failures, nil
}

func (q *EventBus) dispatch(ctx context.Context, topic string, msg *message.Message, handler Handler, failures chan<- error) {
	err := q.retry.run(ctx, msg, handler, q.log)
	if err == nil {
		msg.Ack()
		return
	}
	msg.Nack()
	select {
	case failures <- fmt.Errorf("%s: %w", topic, err):
	default:
		q.log.ErrorContext(ctx, "dropping subscriber failure, channel full",
			"topic", topic, "message_uuid", msg.UUID, "error", err)
	}
}

func (p retryPolicy) run(ctx context.Context, msg *message.Message, handler Handler, log logger.Logger) error {
	delay := p.baseDelay
	var err error
	for attempt := 1; ; attempt++ {
		if err = handler(ctx, msg); err == nil {
			return nil
		}
		if attempt >= p.attempts {
			return fmt.Errorf("events: handler failed after %d attempts: %w", attempt, err)
		}
		log.WarnContext(ctx, "event handler failed, retrying",
			"message_uuid", msg.UUID,
			"attempt", attempt,
			"next_delay", delay,
			"error", err,
		)

		t := time.NewTimer(delay)
		select {
		case <-ctx.Done():
			t.Stop()
			return ctx.Err()
		case <-t.C:
		}
		delay = min(delay*2, p.maxDelay)
	}
}

// Ping checks the bus database connection.
func (q *EventBus) Ping(ctx context.Context) error {
	if err := q.db.PingContext(ctx); err != nil {
		return fmt.Errorf("events: ping db: %w", err)
	}
	return nil
}

// Close stops consuming, waits for in-flight handlers and then releases the
// publisher and the database.
func (q *EventBus) Close() error {
	errs := []error{q.sub.Close()}
	q.mu.Lock()
	if q.fwd != nil {
		errs = append(errs, q.fwd.Close())
	}
	q.mu.Unlock()

	done := make(chan struct{})
	go func() {
		q.wg.Wait()
		close(done)
	}()
	select {
	case <-done:
	case <-time.After(drainTimeout):
		q.log.Error("event handlers still running at shutdown", "waited", drainTimeout)
	}

	errs = append(errs, q.publisher.Close(), q.db.Close())
	if err := errors.Join(errs...); err != nil {
		return fmt.Errorf("events: close: %w", err)
	}
	return nil
}
