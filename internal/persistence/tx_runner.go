package persistence

import (
	"context"
	"errors"
	"time"

	"github.com/cenkalti/backoff/v4"
	"go.uber.org/zap"
)

// UnitOfWork is the body of a transaction. It receives a live session and
// must route every write through it.
type UnitOfWork func(ctx context.Context, session Session) error

// TxRunner executes units of work inside store transactions with bounded
// retry on transient conflicts. A unit of work may run more than once, so it
// must be safe to re-execute from the top.
type TxRunner struct {
	starter    TxStarter
	logger     *zap.Logger
	maxRetries int
	retryDelay time.Duration

	// timer overrides backoff's wall-clock timer in tests.
	timer backoff.Timer
}

// RunnerOption customizes a TxRunner.
type RunnerOption func(*TxRunner)

// WithMaxRetries bounds the total number of attempts.
func WithMaxRetries(n int) RunnerOption {
	return func(r *TxRunner) {
		if n > 0 {
			r.maxRetries = n
		}
	}
}

// WithRetryDelay sets the base inter-attempt delay. The actual delay grows
// linearly with the attempt number.
func WithRetryDelay(d time.Duration) RunnerOption {
	return func(r *TxRunner) {
		if d > 0 {
			r.retryDelay = d
		}
	}
}

// WithTimer swaps the retry timer, letting tests fast-forward virtual time.
func WithTimer(t backoff.Timer) RunnerOption {
	return func(r *TxRunner) { r.timer = t }
}

// NewTxRunner constructs a runner with default bounds (3 attempts, 100ms
// base delay).
func NewTxRunner(starter TxStarter, logger *zap.Logger, opts ...RunnerOption) *TxRunner {
	r := &TxRunner{
		starter:    starter,
		logger:     logger,
		maxRetries: 3,
		retryDelay: 100 * time.Millisecond,
	}
	for _, opt := range opts {
		opt(r)
	}
	return r
}

// WithTransaction opens a session, runs fn inside a transaction, and commits.
// On failure the transaction is rolled back; transient conflicts are retried
// with linearly increasing delay until the attempt budget is spent. The
// session is terminated on every exit path. ErrTransactionsUnsupported is
// returned unwrapped so callers can choose a non-transactional fallback.
func (r *TxRunner) WithTransaction(ctx context.Context, fn UnitOfWork, txOpts TxOptions) error {
	attempt := 0

	operation := func() error {
		attempt++
		session, err := r.starter.Begin(ctx, txOpts)
		if err != nil {
			if errors.Is(err, ErrTransactionsUnsupported) {
				return backoff.Permanent(err)
			}
			if IsTransientTxError(err) {
				return err
			}
			return backoff.Permanent(err)
		}

		if err := fn(ctx, session); err != nil {
			_ = session.Rollback(ctx)
			if IsTransientTxError(err) {
				return err
			}
			return backoff.Permanent(err)
		}

		start := time.Now()
		if err := session.Commit(ctx); err != nil {
			_ = session.Rollback(ctx)
			if IsTransientTxError(err) {
				return err
			}
			return backoff.Permanent(err)
		}
		r.logger.Debug("transaction committed",
			zap.Duration("commit_duration", time.Since(start)),
			zap.Int("attempt", attempt),
		)
		return nil
	}

	policy := backoff.WithContext(&linearBackOff{
		baseDelay:   r.retryDelay,
		maxAttempts: r.maxRetries,
	}, ctx)

	notify := func(err error, delay time.Duration) {
		r.logger.Warn("transient transaction conflict, retrying",
			zap.Int("attempt", attempt),
			zap.Duration("retry_delay", delay),
			zap.Error(err),
		)
	}

	if err := backoff.RetryNotifyWithTimer(operation, policy, notify, r.timer); err != nil {
		return err
	}
	if attempt > 1 {
		r.logger.Info("transaction succeeded after retry", zap.Int("attempts", attempt))
	}
	return nil
}

// linearBackOff yields baseDelay * attemptNumber and stops once the attempt
// budget is exhausted.
type linearBackOff struct {
	baseDelay   time.Duration
	maxAttempts int
	failures    int
}

func (b *linearBackOff) Reset() {
	b.failures = 0
}

func (b *linearBackOff) NextBackOff() time.Duration {
	b.failures++
	if b.failures >= b.maxAttempts {
		return backoff.Stop
	}
	return b.baseDelay * time.Duration(b.failures)
}
