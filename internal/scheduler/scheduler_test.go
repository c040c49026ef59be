package scheduler_test

import (
	"context"
	"errors"
	"sync/atomic"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"

	"github.com/popeskul/crm-inbox/internal/scheduler"
)

// every fires at a fixed sub-second interval, which cron descriptors cannot express.
type every time.Duration

func (e every) Next(t time.Time) time.Time { return t.Add(time.Duration(e)) }

func noop(context.Context) error { return nil }

func TestParseSchedule(t *testing.T) {
	tests := []struct {
		name    string
		expr    string
		wantErr bool
	}{
		{name: "six fields with seconds", expr: "0 0 3 * * *"},
		{name: "five fields", expr: "0 3 * * *"},
		{name: "descriptor", expr: "@daily"},
		{name: "every", expr: "@every 1h"},
		{name: "garbage", expr: "every night", wantErr: true},
		{name: "empty", expr: "", wantErr: true},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			schedule, err := scheduler.ParseSchedule(tt.expr)
			if tt.wantErr {
				assert.ErrorIs(t, err, scheduler.ErrInvalidSchedule)
				return
			}
			require.NoError(t, err)
			assert.NotNil(t, schedule)
		})
	}
}

func TestParseSchedule_NextActivation(t *testing.T) {
	schedule, err := scheduler.ParseSchedule("0 0 3 * * *")
	require.NoError(t, err)

	from := time.Date(2024, 5, 1, 12, 0, 0, 0, time.UTC)
	assert.Equal(t, time.Date(2024, 5, 2, 3, 0, 0, 0, time.UTC), schedule.Next(from))
}

func TestScheduler_Start(t *testing.T) {
	tests := []struct {
		name           string
		setupScheduler func() *scheduler.Scheduler
		expectedError  error
	}{
		{
			name: "success",
			setupScheduler: func() *scheduler.Scheduler {
				return scheduler.NewScheduler(zap.NewNop(), "test", every(100*time.Millisecond), noop)
			},
			expectedError: nil,
		},
		{
			name: "already running",
			setupScheduler: func() *scheduler.Scheduler {
				s := scheduler.NewScheduler(zap.NewNop(), "test", every(100*time.Millisecond), noop)
				require.NoError(t, s.Start(context.Background()))
				return s
			},
			expectedError: scheduler.ErrSchedulerAlreadyRunning,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			s := tt.setupScheduler()
			defer func() {
				if s.IsRunning() {
					_ = s.Stop()
				}
			}()

			err := s.Start(context.Background())
			assert.Equal(t, tt.expectedError, err)
		})
	}
}

func TestScheduler_Stop(t *testing.T) {
	tests := []struct {
		name           string
		setupScheduler func() *scheduler.Scheduler
		expectedError  error
	}{
		{
			name: "success",
			setupScheduler: func() *scheduler.Scheduler {
				s := scheduler.NewScheduler(zap.NewNop(), "test", every(100*time.Millisecond), noop)
				require.NoError(t, s.Start(context.Background()))
				return s
			},
			expectedError: nil,
		},
		{
			name: "not running",
			setupScheduler: func() *scheduler.Scheduler {
				return scheduler.NewScheduler(zap.NewNop(), "test", every(100*time.Millisecond), noop)
			},
			expectedError: scheduler.ErrSchedulerNotRunning,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			s := tt.setupScheduler()
			err := s.Stop()
			assert.Equal(t, tt.expectedError, err)
			assert.False(t, s.IsRunning())
		})
	}
}

func TestScheduler_TaskExecution(t *testing.T) {
	tests := []struct {
		name         string
		taskFunc     func(context.Context) error
		interval     time.Duration
		testDuration time.Duration
		minCalls     int32
		maxCalls     int32
	}{
		{
			name:         "task executes on every activation",
			taskFunc:     noop,
			interval:     50 * time.Millisecond,
			testDuration: 275 * time.Millisecond,
			minCalls:     4,
			maxCalls:     6,
		},
		{
			name: "task errors do not stop the schedule",
			taskFunc: func(ctx context.Context) error {
				return errors.New("task error")
			},
			interval:     50 * time.Millisecond,
			testDuration: 175 * time.Millisecond,
			minCalls:     2,
			maxCalls:     4,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			var calls atomic.Int32
			taskFunc := func(ctx context.Context) error {
				calls.Add(1)
				return tt.taskFunc(ctx)
			}

			s := scheduler.NewScheduler(zap.NewNop(), "test", every(tt.interval), taskFunc)
			require.NoError(t, s.Start(context.Background()))
			time.Sleep(tt.testDuration)
			require.NoError(t, s.Stop())

			assert.GreaterOrEqual(t, calls.Load(), tt.minCalls)
			assert.LessOrEqual(t, calls.Load(), tt.maxCalls)
		})
	}
}

func TestScheduler_TaskContextHasDeadline(t *testing.T) {
	deadlines := make(chan bool, 1)
	s := scheduler.NewScheduler(zap.NewNop(), "test", every(20*time.Millisecond), func(ctx context.Context) error {
		_, ok := ctx.Deadline()
		select {
		case deadlines <- ok:
		default:
		}
		return nil
	})

	require.NoError(t, s.Start(context.Background()))
	defer func() { _ = s.Stop() }()

	select {
	case ok := <-deadlines:
		assert.True(t, ok)
	case <-time.After(time.Second):
		t.Fatal("task never ran")
	}
}

func TestScheduler_RunNow(t *testing.T) {
	var calls atomic.Int32
	s := scheduler.NewScheduler(zap.NewNop(), "test", every(time.Hour), func(ctx context.Context) error {
		calls.Add(1)
		return errors.New("boom")
	})

	err := s.RunNow(context.Background())

	assert.EqualError(t, err, "boom")
	assert.Equal(t, int32(1), calls.Load())
	assert.False(t, s.IsRunning())
}

func TestScheduler_ContextCancellation(t *testing.T) {
	var calls atomic.Int32
	ctx, cancel := context.WithCancel(context.Background())
	s := scheduler.NewScheduler(zap.NewNop(), "test", every(50*time.Millisecond), func(ctx context.Context) error {
		calls.Add(1)
		return nil
	})

	require.NoError(t, s.Start(ctx))
	assert.True(t, s.IsRunning())

	time.Sleep(130 * time.Millisecond)
	callsBeforeCancel := calls.Load()
	assert.GreaterOrEqual(t, callsBeforeCancel, int32(2))

	cancel()

	time.Sleep(100 * time.Millisecond)
	assert.False(t, s.IsRunning())
	assert.LessOrEqual(t, calls.Load()-callsBeforeCancel, int32(1))
}

func TestScheduler_ConcurrentAccess(t *testing.T) {
	s := scheduler.NewScheduler(zap.NewNop(), "test", every(50*time.Millisecond), noop)

	done := make(chan bool)
	errs := make(chan error, 10)

	for i := 0; i < 5; i++ {
		go func() {
			if err := s.Start(context.Background()); err != nil && err != scheduler.ErrSchedulerAlreadyRunning {
				errs <- err
			}
			done <- true
		}()
	}

	for i := 0; i < 5; i++ {
		<-done
	}

	assert.True(t, s.IsRunning())
	assert.Len(t, errs, 0)
	assert.NoError(t, s.Stop())
}
