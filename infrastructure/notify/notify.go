package notify

import (
	"log/slog"
	"sync"
	"time"
)

// Level classifies a notification for rendering and logging.
type Level string

const (
	LevelInfo    Level = "info"
	LevelSuccess Level = "success"
	LevelWarning Level = "warning"
	LevelError   Level = "error"
)

// Notification is one operator-visible event with a typed schema.
type Notification struct {
	Level       Level
	Message     string
	Workstation string
	At          time.Time
}

// Subscriber receives every published notification.
type Subscriber func(Notification)

// Center is an explicit in-process notification channel. Components get a
// *Center injected instead of dispatching through any ambient global.
type Center struct {
	mu   sync.RWMutex
	subs []Subscriber
}

func NewCenter() *Center {
	return &Center{}
}

// Subscribe registers fn for all future notifications.
func (c *Center) Subscribe(fn Subscriber) {
	if fn == nil {
		return
	}
	c.mu.Lock()
	defer c.mu.Unlock()
	c.subs = append(c.subs, fn)
}

// Publish fans the notification out to every subscriber, synchronously
// and in registration order.
func (c *Center) Publish(n Notification) {
	if n.At.IsZero() {
		n.At = time.Now()
	}
	c.mu.RLock()
	subs := make([]Subscriber, len(c.subs))
	copy(subs, c.subs)
	c.mu.RUnlock()
	for _, fn := range subs {
		fn(n)
	}
}

// SlogSink returns a subscriber that mirrors notifications into the log.
func SlogSink(logger *slog.Logger) Subscriber {
	return func(n Notification) {
		attrs := []any{
			slog.String("level", string(n.Level)),
			slog.String("workstation", n.Workstation),
		}
		switch n.Level {
		case LevelError:
			logger.Error(n.Message, attrs...)
		case LevelWarning:
			logger.Warn(n.Message, attrs...)
		default:
			logger.Info(n.Message, attrs...)
		}
	}
}
