package services

import (
	"fmt"
	"sync"
	"time"
)

// messageClock mints message IDs from strictly increasing nanosecond
// readings. Both text and file messages take their ID and timestamp from
// the same reading, so conversation order never depends on which of two
// clock sources won.
type messageClock struct {
	mu     sync.Mutex
	lastNS int64
}

// next returns a reading guaranteed to be greater than every previous
// reading handed out by this clock.
func (c *messageClock) next() (int64, time.Time) {
	c.mu.Lock()
	defer c.mu.Unlock()

	ns := time.Now().UnixNano()
	if ns <= c.lastNS {
		ns = c.lastNS + 1
	}
	c.lastNS = ns
	return ns, time.Unix(0, ns)
}

// nextID mints a prefixed message ID and its timestamp.
func (c *messageClock) nextID(prefix string) (string, time.Time) {
	ns, at := c.next()
	return fmt.Sprintf("%s%d", prefix, ns), at
}
