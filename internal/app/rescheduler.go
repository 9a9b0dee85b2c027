// internal/app/rescheduler.go
package app

import (
	"context"
	"errors"
	"sync"

	"reminder_relay/internal/domain/channel"

	"github.com/sirupsen/logrus"
)

// ActionBootCompleted is the system event that triggers a reschedule.
const ActionBootCompleted = "android.intent.action.BOOT_COMPLETED"

// Foreground presence shown while a reschedule runs.
const (
	PresenceTitle = "Rescheduling Reminders"
	PresenceText  = "Restoring scheduled notifications after reboot."
)

type RescheduleState string

const (
	StateIdle             RescheduleState = "IDLE"
	StateStarting         RescheduleState = "STARTING"
	StateAwaitingCallback RescheduleState = "AWAITING_CALLBACK"
	StateTerminated       RescheduleState = "TERMINATED"
)

type RescheduleOutcome string

const (
	OutcomeSkipped        RescheduleOutcome = "SKIPPED"     // another run holds the guard
	OutcomeGuardFailed    RescheduleOutcome = "GUARD_FAILED"
	OutcomeUnavailable    RescheduleOutcome = "UNAVAILABLE" // runtime handle could not be created
	OutcomeSuccess        RescheduleOutcome = "SUCCESS"
	OutcomeError          RescheduleOutcome = "ERROR"
	OutcomeNotImplemented RescheduleOutcome = "NOT_IMPLEMENTED"
)

// RescheduleResult records one run through the state machine.
type RescheduleResult struct {
	Outcome RescheduleOutcome
	States  []RescheduleState
	Err     error
}

// Presence announces that background work is in progress.
type Presence interface {
	Announce(ctx context.Context, title, text string)
}

// LogPresence announces through the log.
type LogPresence struct {
	Logger *logrus.Entry
}

func (p LogPresence) Announce(_ context.Context, title, text string) {
	p.Logger.WithField("presence", title).Info(text)
}

type engineCache interface {
	GetOrCreate(name string, create func() (channel.Invoker, error)) (channel.Invoker, bool, error)
}

// Rescheduler asks the application runtime to re-arm pending reminders after a restart.
type Rescheduler struct {
	guard      RunGuard
	engines    engineCache
	engineName string
	newEngine  func() (channel.Invoker, error)
	presence   Presence
	logger     *logrus.Entry

	wg sync.WaitGroup
}

func NewRescheduler(
	guard RunGuard,
	engines engineCache,
	engineName string,
	newEngine func() (channel.Invoker, error),
	presence Presence,
	logger *logrus.Entry,
) *Rescheduler {
	return &Rescheduler{
		guard:      guard,
		engines:    engines,
		engineName: engineName,
		newEngine:  newEngine,
		presence:   presence,
		logger:     logger,
	}
}

// HandleBootCompleted starts a background run when action is the boot-completed event.
// Other actions are logged and ignored. The run outlives ctx's cancellation.
func (r *Rescheduler) HandleBootCompleted(ctx context.Context, action string) bool {
	if action != ActionBootCompleted {
		r.logger.WithField("action", action).Debug("Ignoring system event")
		return false
	}

	runCtx := context.WithoutCancel(ctx)
	r.wg.Add(1)
	go func() {
		defer r.wg.Done()
		r.Run(runCtx)
	}()
	return true
}

// Wait blocks until every run started by HandleBootCompleted has terminated.
func (r *Rescheduler) Wait() {
	r.wg.Wait()
}

// Run drives one pass of Idle -> Starting -> AwaitingCallback -> Terminated.
// Every outcome ends in Terminated with the guard released.
func (r *Rescheduler) Run(ctx context.Context) RescheduleResult {
	res := RescheduleResult{States: []RescheduleState{StateIdle}}
	logCtx := r.logger

	terminate := func(outcome RescheduleOutcome, err error) RescheduleResult {
		res.Outcome = outcome
		res.Err = err
		res.States = append(res.States, StateTerminated)
		entry := logCtx.WithField("outcome", outcome)
		if err != nil {
			entry = entry.WithError(err)
		}
		entry.Info("Reschedule run terminated")
		return res
	}

	acquired, err := r.guard.TryAcquire(ctx)
	if err != nil {
		logCtx.WithError(err).Error("Could not read reschedule guard")
		return terminate(OutcomeGuardFailed, err)
	}
	if !acquired {
		logCtx.Info("Reschedule already running, stopping duplicate start")
		return terminate(OutcomeSkipped, nil)
	}
	defer func() {
		if err := r.guard.Release(ctx); err != nil {
			logCtx.WithError(err).Warn("Failed to release reschedule guard")
		}
	}()

	res.States = append(res.States, StateStarting)
	r.presence.Announce(ctx, PresenceTitle, PresenceText)

	engine, created, err := r.engines.GetOrCreate(r.engineName, r.newEngine)
	if err != nil {
		logCtx.WithError(err).Error("Could not obtain application runtime")
		return terminate(OutcomeUnavailable, err)
	}
	logCtx.WithFields(logrus.Fields{"engine": r.engineName, "created": created}).Debug("Application runtime obtained")

	res.States = append(res.States, StateAwaitingCallback)
	_, err = engine.Invoke(ctx, channel.MethodRescheduleNotifications, nil)

	var methodErr *channel.MethodError
	switch {
	case err == nil:
		logCtx.Info("Method call success")
		return terminate(OutcomeSuccess, nil)
	case errors.Is(err, channel.ErrNotImplemented):
		logCtx.Warn("Method call not implemented")
		return terminate(OutcomeNotImplemented, err)
	case errors.As(err, &methodErr):
		logCtx.WithFields(logrus.Fields{"code": methodErr.Code}).Errorf("Method call failed: %s", methodErr.Message)
		return terminate(OutcomeError, err)
	default:
		logCtx.WithError(err).Error("Method call failed")
		return terminate(OutcomeError, err)
	}
}
