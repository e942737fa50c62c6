// Package notify delivers mutation outcomes to logs, websocket clients and
// the event bus.
package notify

import (
	"context"
	"slices"
	"sync"

	"fintrack/internal/core"
	"fintrack/internal/ledger"
	"fintrack/internal/log"
)

// Multi fans a notification out to every non-nil notifier in order.
type Multi []ledger.Notifier

func (m Multi) Notify(ctx context.Context, n core.Notification) {
	for _, target := range m {
		if target != nil {
			target.Notify(ctx, n)
		}
	}
}

// LogNotifier records every notification in the structured log.
type LogNotifier struct {
	logger *log.Logger
}

func NewLogNotifier(logger *log.Logger) *LogNotifier {
	if logger == nil {
		logger = log.Discard()
	}
	return &LogNotifier{logger: logger.WithComponent(log.ComponentNotify)}
}

func (l *LogNotifier) Notify(ctx context.Context, n core.Notification) {
	args := []any{
		"kind", n.Kind,
		log.FieldCollection, n.Collection,
		log.FieldOperation, n.Operation,
	}
	if n.ID != "" {
		args = append(args, log.FieldRecordID, n.ID)
	}
	if n.Kind == core.NotifyError {
		l.logger.WarnContext(ctx, n.Message, args...)
		return
	}
	l.logger.DebugContext(ctx, n.Message, args...)
}

// Recorder keeps every notification it receives.
type Recorder struct {
	mu  sync.Mutex
	got []core.Notification
}

func (r *Recorder) Notify(_ context.Context, n core.Notification) {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.got = append(r.got, n)
}

func (r *Recorder) All() []core.Notification {
	r.mu.Lock()
	defer r.mu.Unlock()
	return slices.Clone(r.got)
}

// Last returns the most recent notification, if any.
func (r *Recorder) Last() (core.Notification, bool) {
	r.mu.Lock()
	defer r.mu.Unlock()
	if len(r.got) == 0 {
		return core.Notification{}, false
	}
	return r.got[len(r.got)-1], true
}

func (r *Recorder) Reset() {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.got = nil
}
