package app

import (
	"context"
	"sync"

	"reminder_relay/internal/domain/channel"
	"reminder_relay/internal/domain/mail"
	"reminder_relay/internal/domain/relay"
	"reminder_relay/internal/domain/settings"

	"github.com/sirupsen/logrus"
	"github.com/sirupsen/logrus/hooks/test"
)

func newTestLogger() (*logrus.Entry, *test.Hook) {
	l, hook := test.NewNullLogger()
	l.SetLevel(logrus.DebugLevel)
	return logrus.NewEntry(l), hook
}

type fakePublisher struct {
	mu     sync.Mutex
	events []relay.NotificationEvent
	err    error
}

func (f *fakePublisher) Publish(ev relay.NotificationEvent) (int, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	if f.err != nil {
		return 0, f.err
	}
	f.events = append(f.events, ev)
	return 1, nil
}

type fakeSettings struct {
	cfg   settings.MailConfig
	err   error
	reads int
}

func (f *fakeSettings) GetMailConfig(context.Context) (settings.MailConfig, error) {
	f.reads++
	return f.cfg, f.err
}

// fakeSubmitter records submissions and reports sendErr through the callback.
type fakeSubmitter struct {
	mu        sync.Mutex
	submitted []mail.Message
	submitErr error
	sendErr   error
}

func (f *fakeSubmitter) Submit(msg mail.Message, done func(mail.Result)) error {
	f.mu.Lock()
	if f.submitErr != nil {
		f.mu.Unlock()
		return f.submitErr
	}
	f.submitted = append(f.submitted, msg)
	f.mu.Unlock()
	if done != nil {
		done(mail.Result{Message: msg, Attempts: 1, Err: f.sendErr})
	}
	return nil
}

type fakeGuard struct {
	held       bool
	acquireErr error
	releases   int
}

func (g *fakeGuard) TryAcquire(context.Context) (bool, error) {
	if g.acquireErr != nil {
		return false, g.acquireErr
	}
	if g.held {
		return false, nil
	}
	g.held = true
	return true, nil
}

func (g *fakeGuard) Release(context.Context) error {
	g.releases++
	g.held = false
	return nil
}

type fakeInvoker struct {
	mu      sync.Mutex
	calls   []string
	err     error
	release chan struct{} // when set, Invoke blocks until closed
	entered chan struct{}
}

func (f *fakeInvoker) Invoke(_ context.Context, method string, _ map[string]any) (any, error) {
	f.mu.Lock()
	f.calls = append(f.calls, method)
	f.mu.Unlock()
	if f.entered != nil {
		f.entered <- struct{}{}
	}
	if f.release != nil {
		<-f.release
	}
	return nil, f.err
}

func (f *fakeInvoker) callCount() int {
	f.mu.Lock()
	defer f.mu.Unlock()
	return len(f.calls)
}

type fakeEngines struct {
	engine    channel.Invoker
	err       error
	lookups   int
	createdBy int
}

func (f *fakeEngines) GetOrCreate(_ string, create func() (channel.Invoker, error)) (channel.Invoker, bool, error) {
	f.lookups++
	if f.err != nil {
		return nil, false, f.err
	}
	if f.engine == nil {
		inv, err := create()
		if err != nil {
			return nil, false, err
		}
		f.engine = inv
		f.createdBy++
		return inv, true, nil
	}
	return f.engine, false, nil
}

type fakePresence struct {
	titles []string
}

func (p *fakePresence) Announce(_ context.Context, title, _ string) {
	p.titles = append(p.titles, title)
}
