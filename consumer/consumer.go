package consumer

import (
	"context"
	"encoding/json"
	"fmt"
	"time"

	"github.com/cenkalti/backoff/v4"
	"github.com/nats-io/nats.go"
	"github.com/sirupsen/logrus"

	"github.com/sqlguard/sqlguard"
	"github.com/sqlguard/sqlguard/config"
	"github.com/sqlguard/sqlguard/normalize"
	"github.com/sqlguard/sqlguard/orchestrator"
	"github.com/sqlguard/sqlguard/rewriter"
	"github.com/sqlguard/sqlguard/sqlast"
)

var log = logrus.WithField("component", "consumer")

// Persister is the subset of the persistence store the consumer writes
// through; kept as an interface so processEvent can be unit tested
// without a live database.
type Persister interface {
	Append(ctx context.Context, report sqlguard.AuditReport) error
}

// Config configures one Consumer instance.
type Config struct {
	Subject         string
	Durable         string
	DeadLetterSubject string
	FetchBatch      int
	MaxAttempts     uint64
	BaseBackoff     time.Duration
	Multiplier      float64
	CheckInterval   time.Duration
}

func (c Config) withDefaults() Config {
	if c.FetchBatch <= 0 {
		c.FetchBatch = 20
	}
	if c.MaxAttempts <= 0 {
		c.MaxAttempts = 3
	}
	if c.BaseBackoff <= 0 {
		c.BaseBackoff = time.Second
	}
	if c.Multiplier <= 0 {
		c.Multiplier = 2.0
	}
	if c.CheckInterval <= 0 {
		c.CheckInterval = 5 * time.Second
	}
	return c
}

// Consumer pulls events off a JetStream subject, runs them through the
// orchestrator, and writes the resulting report through persistence.
type Consumer struct {
	js       nats.JetStreamContext
	persist  Persister
	orch     *orchestrator.Orchestrator
	cfgStore *config.Store
	cfg      Config
	bp       *BackpressureController
	dialects *sqlguard.DialectRegistry
}

// New builds a Consumer. js is an already-connected JetStream context.
// dialects memoizes per-data-source dialect detection across events; pass
// a freshly constructed registry unless callers share one deliberately.
func New(js nats.JetStreamContext, persist Persister, orch *orchestrator.Orchestrator, cfgStore *config.Store, cfg Config, dialects *sqlguard.DialectRegistry) *Consumer {
	if dialects == nil {
		dialects = sqlguard.NewDialectRegistry()
	}
	return &Consumer{
		js:       js,
		persist:  persist,
		orch:     orch,
		cfgStore: cfgStore,
		cfg:      cfg.withDefaults(),
		bp:       NewBackpressureController(0, 0),
		dialects: dialects,
	}
}

// Start opens a durable pull subscription and runs the fetch loop in a
// background goroutine until ctx is cancelled.
func (c *Consumer) Start(ctx context.Context) error {
	sub, err := c.js.PullSubscribe(c.cfg.Subject, c.cfg.Durable)
	if err != nil {
		return fmt.Errorf("consumer: pull subscribe: %w", err)
	}

	log.WithFields(logrus.Fields{"subject": c.cfg.Subject, "durable": c.cfg.Durable}).Info("consumer started")

	go c.runBackpressureTicker(ctx)

	go func() {
		for {
			select {
			case <-ctx.Done():
				log.Info("consumer stopping")
				return
			default:
				if c.bp.Paused() {
					time.Sleep(100 * time.Millisecond)
					continue
				}
				msgs, err := sub.Fetch(c.cfg.FetchBatch, nats.Context(ctx))
				if err != nil {
					continue // timeout on an empty queue, not an error
				}
				for _, msg := range msgs {
					c.processMessage(ctx, msg)
				}
			}
		}
	}()

	return nil
}

func (c *Consumer) runBackpressureTicker(ctx context.Context) {
	ticker := time.NewTicker(c.cfg.CheckInterval)
	defer ticker.Stop()
	for {
		select {
		case <-ctx.Done():
			return
		case <-ticker.C:
			c.bp.Tick()
		}
	}
}

// processMessage handles ack/nak/term/dead-letter around processEvent,
// keeping NATS plumbing separate from the business logic in processEvent.
func (c *Consumer) processMessage(ctx context.Context, msg *nats.Msg) {
	start := time.Now()
	err := c.processEventWithRetry(ctx, msg.Data)
	c.bp.RecordLatency(time.Since(start))

	if err != nil {
		if ppe, ok := isPoisonPill(err); ok {
			log.WithError(ppe).Warn("terminating poison-pill audit event")
			c.deadLetter(ctx, msg.Data, ppe.Error(), 1)
			msg.Term()
			return
		}
		log.WithError(err).Error("dead-lettering audit event after retry exhaustion")
		c.bp.RecordFailure()
		c.deadLetter(ctx, msg.Data, err.Error(), int(c.cfg.MaxAttempts))
		msg.Ack() // commit the offset only after dead-lettering, never before
		return
	}
	msg.Ack()
}

// processEventWithRetry retries transient failures with exponential
// backoff starting at BaseBackoff with Multiplier, up to MaxAttempts.
// Schema failures are never retried.
func (c *Consumer) processEventWithRetry(ctx context.Context, data []byte) error {
	event, err := parseEvent(data)
	if err != nil {
		return &poisonPillError{msg: fmt.Sprintf("unmarshal event: %v", err)}
	}
	if event.Sql == "" {
		return &poisonPillError{msg: "missing sql field"}
	}

	policy := backoff.NewExponentialBackOff()
	policy.InitialInterval = c.cfg.BaseBackoff
	policy.Multiplier = c.cfg.Multiplier
	bounded := backoff.WithMaxRetries(policy, c.cfg.MaxAttempts-1)
	bounded = backoff.WithContext(bounded, ctx)

	return backoff.Retry(func() error {
		return c.processEvent(ctx, event)
	}, bounded)
}

// processEvent is the pure business logic: normalize, parse, orchestrate,
// persist. No NATS dependency, so it is directly unit-testable.
func (c *Consumer) processEvent(ctx context.Context, event Event) error {
	caps := c.dialects.Detect(event.DataSource, "")
	dialect := caps.TokenizerDialect()
	_, cmd, fp := normalize.Normalize(event.Sql, dialect)

	ast, parseErr := sqlast.Parse(event.Sql, dialect)
	if parseErr != nil {
		ast = nil // static-scan mode degrades gracefully; checkers tolerate nil AST
	}

	errMsg := ""
	if event.ErrorMessage != nil {
		errMsg = *event.ErrorMessage
	}

	sqlCtx := sqlguard.SqlContext{
		AST:         ast,
		RawSQL:      event.Sql,
		Command:     cmd,
		Fingerprint: fp,
		Dialect:     caps.Dialect,
		Exec: &sqlguard.ExecMetadata{
			ElapsedMs:    event.ExecutionTimeMs,
			RowsAffected: int64(event.RowsAffected),
			ErrorMessage: errMsg,
			DataSource:   event.DataSource,
			MapperID:     event.MapperID,
			Timestamp:    event.Timestamp,
		},
	}

	rc := c.cfgStore.Snapshot()
	chain := rc.RewriteChain
	if chain == nil {
		chain = rewriter.NewChain()
	}
	rewritten := chain.Run(sqlCtx)
	if rewritten.Err != nil {
		return backoff.Permanent(&poisonPillError{msg: rewritten.Err.Error()})
	}
	sqlCtx = rewritten.Context

	report := c.orch.Run(ctx, event.MapperID, sqlCtx, rc)

	if err := c.persist.Append(ctx, report); err != nil {
		return fmt.Errorf("persist report: %w", err)
	}
	return nil
}

func (c *Consumer) deadLetter(ctx context.Context, data []byte, reason string, attempt int) {
	if c.cfg.DeadLetterSubject == "" {
		return
	}
	var payload map[string]any
	_ = json.Unmarshal(data, &payload)
	if payload == nil {
		payload = map[string]any{}
	}
	payload["failureReason"] = reason
	payload["attempt"] = attempt

	encoded, err := json.Marshal(payload)
	if err != nil {
		log.WithError(err).Error("failed to encode dead-letter payload")
		return
	}
	if _, err := c.js.Publish(c.cfg.DeadLetterSubject, encoded, nats.Context(ctx)); err != nil {
		log.WithError(err).Error("failed to publish to dead-letter subject")
	}
}
