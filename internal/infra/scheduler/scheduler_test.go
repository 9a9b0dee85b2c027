package scheduler

import (
	"context"
	"sync"
	"testing"
	"time"

	"reminder_relay/internal/app"

	"github.com/sirupsen/logrus"
	"github.com/sirupsen/logrus/hooks/test"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

type recordingTrigger struct {
	mu      sync.Mutex
	actions []string
}

func (r *recordingTrigger) HandleBootCompleted(_ context.Context, action string) bool {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.actions = append(r.actions, action)
	return true
}

func (r *recordingTrigger) count() int {
	r.mu.Lock()
	defer r.mu.Unlock()
	return len(r.actions)
}

func newTestScheduler(trigger bootTrigger, spec string, onStart bool) *RescheduleScheduler {
	l, _ := test.NewNullLogger()
	return NewRescheduleScheduler(trigger, logrus.NewEntry(l), spec, onStart)
}

func TestScheduler_TriggersOnStart(t *testing.T) {
	trigger := &recordingTrigger{}
	s := newTestScheduler(trigger, "", true)

	require.NoError(t, s.Start(context.Background()))
	s.Stop()

	assert.Equal(t, []string{app.ActionBootCompleted}, trigger.actions)
}

func TestScheduler_NoStartTrigger(t *testing.T) {
	trigger := &recordingTrigger{}
	s := newTestScheduler(trigger, "", false)

	require.NoError(t, s.Start(context.Background()))
	s.Stop()

	assert.Equal(t, 0, trigger.count())
}

func TestScheduler_PeriodicJob(t *testing.T) {
	trigger := &recordingTrigger{}
	s := newTestScheduler(trigger, "@every 1s", false)

	require.NoError(t, s.Start(context.Background()))
	defer s.Stop()

	require.Eventually(t, func() bool { return trigger.count() >= 1 }, 3*time.Second, 50*time.Millisecond)
}

func TestScheduler_InvalidSpec(t *testing.T) {
	s := newTestScheduler(&recordingTrigger{}, "not a cron spec", true)
	assert.Error(t, s.Start(context.Background()))
}
