// Package mailer delivers reminder emails on a dedicated background worker.
package mailer

import (
	"context"
	"errors"
	"sync"
	"time"

	"reminder_relay/internal/domain/mail"

	"github.com/sirupsen/logrus"
	"github.com/wb-go/wbf/retry"
)

var (
	ErrQueueFull   = errors.New("mail queue is full")
	ErrQueueClosed = errors.New("mail queue is closed")
)

type task struct {
	msg  mail.Message
	done func(mail.Result)
}

// Queue is a bounded task queue drained by a single worker, so at most one
// send is in flight at a time. Failed sends are retried per the strategy and
// then reported through the task's completion callback.
type Queue struct {
	sender   mail.Sender
	strategy retry.Strategy
	logger   *logrus.Entry

	tasks  chan task
	mu     sync.RWMutex
	closed bool
	wg     sync.WaitGroup
}

// NewQueue creates a queue holding up to size pending messages.
func NewQueue(sender mail.Sender, size int, strategy retry.Strategy, logger *logrus.Entry) *Queue {
	if size < 1 {
		size = 1
	}
	if strategy.Attempts < 1 {
		strategy.Attempts = 1
	}
	if strategy.Backoff < 1 {
		strategy.Backoff = 1
	}
	return &Queue{
		sender:   sender,
		strategy: strategy,
		logger:   logger,
		tasks:    make(chan task, size),
	}
}

// Start launches the worker. ctx bounds the sends and the waits between retries.
func (q *Queue) Start(ctx context.Context) {
	q.wg.Add(1)
	go func() {
		defer q.wg.Done()
		q.logger.Info("Mail worker started")
		for t := range q.tasks {
			q.process(ctx, t)
		}
		q.logger.Info("Mail worker stopped")
	}()
}

// Submit enqueues msg without blocking. done may be nil.
func (q *Queue) Submit(msg mail.Message, done func(mail.Result)) error {
	q.mu.RLock()
	defer q.mu.RUnlock()
	if q.closed {
		return ErrQueueClosed
	}

	select {
	case q.tasks <- task{msg: msg, done: done}:
		return nil
	default:
		return ErrQueueFull
	}
}

// Close stops accepting messages and waits for the worker to drain the queue.
func (q *Queue) Close() {
	q.mu.Lock()
	if !q.closed {
		q.closed = true
		close(q.tasks)
	}
	q.mu.Unlock()
	q.wg.Wait()
}

func (q *Queue) process(ctx context.Context, t task) {
	logCtx := q.logger.WithFields(logrus.Fields{
		"recipient": t.msg.Recipient,
		"subject":   t.msg.Subject,
	})

	res := mail.Result{Message: t.msg}
	delay := q.strategy.Delay

	for res.Attempts < q.strategy.Attempts {
		res.Attempts++
		res.Err = q.send(ctx, t.msg)
		if res.Err == nil {
			logCtx.WithField("attempt", res.Attempts).Info("Email successfully sent")
			break
		}

		logCtx.WithError(res.Err).Warnf("Failed to send email, attempt %d/%d", res.Attempts, q.strategy.Attempts)
		if res.Attempts >= q.strategy.Attempts {
			break
		}
		if err := sleep(ctx, delay); err != nil {
			res.Err = errors.Join(res.Err, err)
			break
		}
		delay = time.Duration(float64(delay) * q.strategy.Backoff)
	}

	if res.Err != nil {
		logCtx.WithError(res.Err).Errorf("Email dropped after %d attempt(s)", res.Attempts)
	}
	if t.done != nil {
		t.done(res)
	}
}

// send shields the worker from a panicking transport.
func (q *Queue) send(ctx context.Context, msg mail.Message) (err error) {
	defer func() {
		if r := recover(); r != nil {
			err = errors.New("mail transport panicked")
			q.logger.Errorf("Mail transport panicked: %v", r)
		}
	}()
	return q.sender.Send(ctx, msg)
}

func sleep(ctx context.Context, d time.Duration) error {
	if d <= 0 {
		return ctx.Err()
	}
	timer := time.NewTimer(d)
	defer timer.Stop()
	select {
	case <-ctx.Done():
		return ctx.Err()
	case <-timer.C:
		return nil
	}
}
