package remote

import (
	"errors"
	"sync"
)

// ErrNotRegistered is returned when unregistering a receiver twice.
var ErrNotRegistered = errors.New("receiver not registered")

// Receiver handles intents delivered on a Channel.
type Receiver func(Intent)

// Channel fans intents out to the receivers registered by the hosting screen.
// The zero value is ready to use.
type Channel struct {
	mu        sync.RWMutex
	next      int
	receivers map[int]Receiver
}

// NewChannel returns an empty channel.
func NewChannel() *Channel {
	return &Channel{receivers: make(map[int]Receiver)}
}

// Register adds r and returns the handle needed to unregister it.
func (c *Channel) Register(r Receiver) int {
	c.mu.Lock()
	defer c.mu.Unlock()

	if c.receivers == nil {
		c.receivers = make(map[int]Receiver)
	}

	c.next++
	c.receivers[c.next] = r
	return c.next
}

// Unregister removes the receiver behind id. Removing an unknown or already
// removed receiver returns ErrNotRegistered.
func (c *Channel) Unregister(id int) error {
	c.mu.Lock()
	defer c.mu.Unlock()

	if _, ok := c.receivers[id]; !ok {
		return ErrNotRegistered
	}
	delete(c.receivers, id)
	return nil
}

// Len reports the number of registered receivers.
func (c *Channel) Len() int {
	c.mu.RLock()
	defer c.mu.RUnlock()
	return len(c.receivers)
}

// Send delivers intent to every registered receiver. Sending with no
// receivers is a no-op.
func (c *Channel) Send(intent Intent) {
	c.mu.RLock()
	receivers := make([]Receiver, 0, len(c.receivers))
	for _, r := range c.receivers {
		receivers = append(receivers, r)
	}
	c.mu.RUnlock()

	for _, r := range receivers {
		r(intent)
	}
}
