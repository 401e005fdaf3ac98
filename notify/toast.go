package notify

import (
	"sync"
	"time"

	"planilhas/metrics"

	"github.com/google/uuid"
	"go.uber.org/zap"
)

// DefaultTTL is how long a toast stays visible.
const DefaultTTL = 4 * time.Second

// Toast is one transient notice.
type Toast struct {
	ID        string    `json:"id"`
	Message   string    `json:"message"`
	CreatedAt time.Time `json:"created_at"`
}

// Notifier keeps toasts in insertion order and expires each one on its own
// timer. Identical messages are never merged.
type Notifier struct {
	mu          sync.Mutex
	ttl         time.Duration
	toasts      []Toast
	timers      map[string]*time.Timer
	subscribers []chan struct{}
	logger      *zap.Logger
}

func NewNotifier(ttl time.Duration, logger *zap.Logger) *Notifier {
	if ttl <= 0 {
		ttl = DefaultTTL
	}
	if logger == nil {
		logger = zap.NewNop()
	}
	return &Notifier{
		ttl:    ttl,
		timers: make(map[string]*time.Timer),
		logger: logger,
	}
}

// Push appends a toast that removes itself after the TTL.
func (n *Notifier) Push(message string) Toast {
	t := Toast{ID: uuid.New().String(), Message: message, CreatedAt: time.Now()}

	n.mu.Lock()
	n.toasts = append(n.toasts, t)
	n.timers[t.ID] = time.AfterFunc(n.ttl, func() { n.dismiss(t.ID) })
	n.mu.Unlock()

	metrics.ToastsTotal.Inc()
	n.logger.Debug("Toast pushed", zap.String("toast_id", t.ID), zap.String("message", message))
	n.changed()
	return t
}

// Dismiss removes a toast before it expires.
func (n *Notifier) Dismiss(id string) bool {
	return n.dismiss(id)
}

func (n *Notifier) dismiss(id string) bool {
	n.mu.Lock()
	removed := false
	for i, t := range n.toasts {
		if t.ID == id {
			n.toasts = append(n.toasts[:i:i], n.toasts[i+1:]...)
			removed = true
			break
		}
	}
	if timer, ok := n.timers[id]; ok {
		timer.Stop()
		delete(n.timers, id)
	}
	n.mu.Unlock()

	if removed {
		n.changed()
	}
	return removed
}

// Active returns the visible toasts in insertion order.
func (n *Notifier) Active() []Toast {
	n.mu.Lock()
	defer n.mu.Unlock()
	out := make([]Toast, len(n.toasts))
	copy(out, n.toasts)
	return out
}

// Subscribe returns a channel signalled after every change. Signals are
// coalesced when the receiver lags.
func (n *Notifier) Subscribe() <-chan struct{} {
	ch := make(chan struct{}, 1)
	n.mu.Lock()
	n.subscribers = append(n.subscribers, ch)
	n.mu.Unlock()
	return ch
}

// Close stops all pending timers.
func (n *Notifier) Close() {
	n.mu.Lock()
	defer n.mu.Unlock()
	for id, timer := range n.timers {
		timer.Stop()
		delete(n.timers, id)
	}
}

func (n *Notifier) changed() {
	n.mu.Lock()
	subs := append([]chan struct{}(nil), n.subscribers...)
	n.mu.Unlock()
	for _, ch := range subs {
		select {
		case ch <- struct{}{}:
		default:
		}
	}
}
