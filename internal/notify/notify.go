// Package notify holds a UI session's transient notifications. Each failure
// surfaces once; entries auto-dismiss after their TTL and are consumed when
// read.
package notify

import (
	"sync"
	"time"

	"github.com/google/uuid"
)

type Level string

const (
	Success Level = "success"
	Error   Level = "error"
	Info    Level = "info"
)

type Notification struct {
	ID        string    `json:"id"`
	Level     Level     `json:"level"`
	Message   string    `json:"message"`
	CreatedAt time.Time `json:"createdAt"`
}

const defaultTTL = 5 * time.Second

type Center struct {
	mu    sync.Mutex
	items []Notification
	ttl   time.Duration
	now   func() time.Time
}

func NewCenter() *Center {
	return &Center{ttl: defaultTTL, now: time.Now}
}

func (c *Center) Push(level Level, message string) {
	c.mu.Lock()
	defer c.mu.Unlock()
	c.items = append(c.items, Notification{
		ID:        uuid.NewString(),
		Level:     level,
		Message:   message,
		CreatedAt: c.now(),
	})
}

// Flush returns the notifications that have not expired yet and clears the
// list either way.
func (c *Center) Flush() []Notification {
	c.mu.Lock()
	defer c.mu.Unlock()

	cutoff := c.now().Add(-c.ttl)
	var live []Notification
	for _, n := range c.items {
		if n.CreatedAt.After(cutoff) {
			live = append(live, n)
		}
	}
	c.items = nil
	return live
}
