package relay

import (
	"context"
	"errors"
	"sync"
	"time"

	"github.com/dmitrijs2005/jotkeeper/internal/common"
	"github.com/dmitrijs2005/jotkeeper/internal/logging"
)

// Handler consumes one mailbox envelope. The envelope has already been
// removed from the store when the handler runs; handler errors are logged,
// never retried (the sender will simply sync again).
type Handler func(ctx context.Context, raw []byte)

// Watcher polls this device's mailbox slot and delivers consumed envelopes
// to a handler. The OS may kill the poll loop together with the rest of the
// process on suspend, so Start is restartable: call it again after the app
// returns to the foreground.
type Watcher struct {
	store    Store
	key      string
	interval time.Duration
	handler  Handler
	log      logging.Logger

	mu     sync.Mutex
	cancel context.CancelFunc
}

func NewWatcher(store Store, deviceID string, interval time.Duration, handler Handler, log logging.Logger) *Watcher {
	return &Watcher{
		store:    store,
		key:      MailboxKey(deviceID),
		interval: interval,
		handler:  handler,
		log:      log,
	}
}

// Start launches the poll loop. Calling Start while a loop is already
// running re-arms it (the old loop is stopped first), which is exactly what
// resuming from background needs.
func (w *Watcher) Start(ctx context.Context) {
	w.mu.Lock()
	if w.cancel != nil {
		w.cancel()
	}
	ctx, w.cancel = context.WithCancel(ctx)
	w.mu.Unlock()

	go w.loop(ctx)
}

// Stop halts the poll loop. Safe to call multiple times.
func (w *Watcher) Stop() {
	w.mu.Lock()
	defer w.mu.Unlock()
	if w.cancel != nil {
		w.cancel()
		w.cancel = nil
	}
}

func (w *Watcher) loop(ctx context.Context) {
	ticker := time.NewTicker(w.interval)
	defer ticker.Stop()

	for {
		select {
		case <-ctx.Done():
			return
		case <-ticker.C:
			w.poll(ctx)
		}
	}
}

// poll consumes at most one envelope: read, delete, then hand off. Deleting
// before handling keeps the mailbox's consumed-by-exactly-one-reader
// contract even if the handler fails.
func (w *Watcher) poll(ctx context.Context) {
	raw, err := w.store.Get(ctx, w.key)
	if err != nil {
		if !errors.Is(err, common.ErrorNotFound) {
			w.log.Warn(ctx, "mailbox poll failed", "error", err)
		}
		return
	}

	if err := w.store.Delete(ctx, w.key); err != nil {
		w.log.Warn(ctx, "clearing mailbox failed", "error", err)
	}

	w.handler(ctx, raw)
}
