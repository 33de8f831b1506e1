package persistence

import (
	"context"
	"errors"
	"testing"
	"time"

	"github.com/jackc/pgx/v5/pgconn"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"

	"github.com/jackc/pgx/v5"
)

type fakeSession struct {
	committed  bool
	rolledBack bool
	commitErr  error
}

func (s *fakeSession) Exec(ctx context.Context, sql string, args ...any) (pgconn.CommandTag, error) {
	return pgconn.CommandTag{}, nil
}

func (s *fakeSession) Query(ctx context.Context, sql string, args ...any) (pgx.Rows, error) {
	return nil, errors.New("not implemented")
}

func (s *fakeSession) QueryRow(ctx context.Context, sql string, args ...any) pgx.Row {
	return nil
}

func (s *fakeSession) Commit(ctx context.Context) error {
	if s.commitErr != nil {
		return s.commitErr
	}
	s.committed = true
	return nil
}

func (s *fakeSession) Rollback(ctx context.Context) error {
	s.rolledBack = true
	return nil
}

type fakeStarter struct {
	beginErr error
	sessions []*fakeSession
}

func (f *fakeStarter) Begin(ctx context.Context, opts TxOptions) (Session, error) {
	if f.beginErr != nil {
		return nil, f.beginErr
	}
	session := &fakeSession{}
	f.sessions = append(f.sessions, session)
	return session, nil
}

// instantTimer satisfies backoff.Timer, firing immediately and recording
// every requested delay.
type instantTimer struct {
	delays []time.Duration
	ch     chan time.Time
}

func (t *instantTimer) Start(d time.Duration) {
	t.delays = append(t.delays, d)
	t.ch = make(chan time.Time, 1)
	t.ch <- time.Now()
}

func (t *instantTimer) C() <-chan time.Time { return t.ch }

func (t *instantTimer) Stop() {}

func transientErr() error {
	return &pgconn.PgError{Code: "40001", Message: "could not serialize access"}
}

func TestWithTransactionCommitsOnSuccess(t *testing.T) {
	starter := &fakeStarter{}
	runner := NewTxRunner(starter, zap.NewNop())

	calls := 0
	err := runner.WithTransaction(context.Background(), func(ctx context.Context, s Session) error {
		calls++
		return nil
	}, TxOptions{})

	require.NoError(t, err)
	assert.Equal(t, 1, calls)
	require.Len(t, starter.sessions, 1)
	assert.True(t, starter.sessions[0].committed)
	assert.False(t, starter.sessions[0].rolledBack)
}

func TestWithTransactionRollsBackOnFailure(t *testing.T) {
	starter := &fakeStarter{}
	runner := NewTxRunner(starter, zap.NewNop())

	boom := errors.New("write two failed")
	err := runner.WithTransaction(context.Background(), func(ctx context.Context, s Session) error {
		return boom
	}, TxOptions{})

	require.ErrorIs(t, err, boom)
	require.Len(t, starter.sessions, 1, "non-retryable errors must not be retried")
	assert.False(t, starter.sessions[0].committed, "nothing may be committed after a failed unit of work")
	assert.True(t, starter.sessions[0].rolledBack)
}

func TestWithTransactionRetriesTransientConflicts(t *testing.T) {
	starter := &fakeStarter{}
	timer := &instantTimer{}
	baseDelay := 50 * time.Millisecond
	runner := NewTxRunner(starter, zap.NewNop(),
		WithMaxRetries(3),
		WithRetryDelay(baseDelay),
		WithTimer(timer),
	)

	attempts := 0
	err := runner.WithTransaction(context.Background(), func(ctx context.Context, s Session) error {
		attempts++
		return transientErr()
	}, TxOptions{})

	require.Error(t, err)
	assert.True(t, IsTransientTxError(err))
	assert.Equal(t, 3, attempts, "a persistent conflict is attempted exactly maxRetries times")

	require.Len(t, timer.delays, 2)
	assert.Equal(t, baseDelay, timer.delays[0])
	assert.Equal(t, 2*baseDelay, timer.delays[1])
	assert.Less(t, timer.delays[0], timer.delays[1], "inter-attempt delay must strictly increase")

	for _, session := range starter.sessions {
		assert.True(t, session.rolledBack)
		assert.False(t, session.committed)
	}
}

func TestWithTransactionRecoversAfterTransientConflict(t *testing.T) {
	starter := &fakeStarter{}
	runner := NewTxRunner(starter, zap.NewNop(), WithTimer(&instantTimer{}))

	attempts := 0
	err := runner.WithTransaction(context.Background(), func(ctx context.Context, s Session) error {
		attempts++
		if attempts == 1 {
			return transientErr()
		}
		return nil
	}, TxOptions{})

	require.NoError(t, err)
	assert.Equal(t, 2, attempts)
	require.Len(t, starter.sessions, 2)
	assert.True(t, starter.sessions[0].rolledBack)
	assert.True(t, starter.sessions[1].committed)
}

func TestWithTransactionSurfacesUnsupported(t *testing.T) {
	starter := &fakeStarter{beginErr: ErrTransactionsUnsupported}
	runner := NewTxRunner(starter, zap.NewNop())

	calls := 0
	err := runner.WithTransaction(context.Background(), func(ctx context.Context, s Session) error {
		calls++
		return nil
	}, TxOptions{})

	require.ErrorIs(t, err, ErrTransactionsUnsupported)
	assert.Zero(t, calls, "the unit of work must not run without a session")
}

func TestIsTransientTxError(t *testing.T) {
	assert.True(t, IsTransientTxError(&pgconn.PgError{Code: "40001"}))
	assert.True(t, IsTransientTxError(&pgconn.PgError{Code: "40P01"}))
	assert.False(t, IsTransientTxError(&pgconn.PgError{Code: "23505"}))
	assert.False(t, IsTransientTxError(errors.New("plain")))
	assert.False(t, IsTransientTxError(nil))
}
