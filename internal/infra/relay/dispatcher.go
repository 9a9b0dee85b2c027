// Package relay is an in-process, typed publish/subscribe bus.
//
// Publishing never waits for subscribers: each subscriber owns a buffered
// inbox drained by its own goroutine. A message published with no
// subscriber, or to a subscriber whose inbox is full, is dropped.
package relay

import (
	"context"
	"errors"
	"sync"

	"github.com/sirupsen/logrus"
)

var ErrDispatcherClosed = errors.New("dispatcher is closed")

// Handler consumes one message.
type Handler[T any] func(ctx context.Context, msg T)

type subscription[T any] struct {
	id      int
	inbox   chan T
	handler Handler[T]
}

// Dispatcher fans messages of type T out to its subscribers.
type Dispatcher[T any] struct {
	name   string
	buffer int
	logger *logrus.Entry

	ctx    context.Context
	cancel context.CancelFunc

	mu     sync.RWMutex
	subs   map[int]*subscription[T]
	nextID int
	closed bool
	wg     sync.WaitGroup
}

// NewDispatcher creates a dispatcher whose subscribers each buffer up to buffer messages.
func NewDispatcher[T any](name string, buffer int, logger *logrus.Entry) *Dispatcher[T] {
	if buffer < 1 {
		buffer = 1
	}
	ctx, cancel := context.WithCancel(context.Background())
	return &Dispatcher[T]{
		name:   name,
		buffer: buffer,
		logger: logger.WithField("channel", name),
		ctx:    ctx,
		cancel: cancel,
		subs:   make(map[int]*subscription[T]),
	}
}

// Subscribe registers h and returns a function that removes it.
func (d *Dispatcher[T]) Subscribe(h Handler[T]) (func(), error) {
	d.mu.Lock()
	defer d.mu.Unlock()
	if d.closed {
		return nil, ErrDispatcherClosed
	}

	d.nextID++
	sub := &subscription[T]{id: d.nextID, inbox: make(chan T, d.buffer), handler: h}
	d.subs[sub.id] = sub

	d.wg.Add(1)
	go d.drain(sub)

	d.logger.WithField("subscriber", sub.id).Debug("Subscriber registered")

	var once sync.Once
	return func() {
		once.Do(func() { d.remove(sub.id) })
	}, nil
}

// Publish hands msg to every current subscriber and returns how many accepted it.
func (d *Dispatcher[T]) Publish(msg T) (int, error) {
	d.mu.RLock()
	defer d.mu.RUnlock()
	if d.closed {
		return 0, ErrDispatcherClosed
	}

	if len(d.subs) == 0 {
		d.logger.Debug("No subscribers registered, message dropped")
		return 0, nil
	}

	delivered := 0
	for _, sub := range d.subs {
		select {
		case sub.inbox <- msg:
			delivered++
		default:
			d.logger.WithField("subscriber", sub.id).Warn("Subscriber inbox full, message dropped")
		}
	}
	return delivered, nil
}

// Close stops accepting messages, lets subscribers drain their inboxes and waits for them.
func (d *Dispatcher[T]) Close() {
	d.mu.Lock()
	if d.closed {
		d.mu.Unlock()
		return
	}
	d.closed = true
	for id, sub := range d.subs {
		close(sub.inbox)
		delete(d.subs, id)
	}
	d.mu.Unlock()

	d.wg.Wait()
	d.cancel()
	d.logger.Info("Dispatcher closed")
}

func (d *Dispatcher[T]) remove(id int) {
	d.mu.Lock()
	defer d.mu.Unlock()
	sub, ok := d.subs[id]
	if !ok {
		return
	}
	close(sub.inbox)
	delete(d.subs, id)
}

func (d *Dispatcher[T]) drain(sub *subscription[T]) {
	defer d.wg.Done()
	for msg := range sub.inbox {
		d.deliver(sub, msg)
	}
}

func (d *Dispatcher[T]) deliver(sub *subscription[T], msg T) {
	defer func() {
		if r := recover(); r != nil {
			d.logger.WithField("subscriber", sub.id).Errorf("Subscriber panicked: %v", r)
		}
	}()
	sub.handler(d.ctx, msg)
}
