package services

import (
	"strconv"
	"sync"
	"time"
)

// IDGenerator mints article ids from the creation time in milliseconds since
// the Unix epoch. Ids are strictly increasing within a process: when the clock
// has not moved past the last id, the next millisecond is used instead.
type IDGenerator struct {
	mu   sync.Mutex
	last int64
	now  func() time.Time
}

func NewIDGenerator() *IDGenerator {
	return &IDGenerator{now: time.Now}
}

// Next returns a new id.
func (g *IDGenerator) Next() string {
	g.mu.Lock()
	defer g.mu.Unlock()

	ms := g.now().UnixMilli()
	if ms <= g.last {
		ms = g.last + 1
	}
	g.last = ms
	return strconv.FormatInt(ms, 10)
}
