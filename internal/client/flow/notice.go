package flow

import (
	"sync"
	"time"
)

// notice is a transient informational message that clears itself after a
// delay. The clear timer is fire-and-forget; a sequence number makes sure a
// late timer never clobbers a newer message.
type notice struct {
	mu   sync.Mutex
	seq  uint64
	text string
}

func (n *notice) set(text string, clearAfter time.Duration) {
	n.mu.Lock()
	n.seq++
	seq := n.seq
	n.text = text
	n.mu.Unlock()

	if clearAfter <= 0 {
		return
	}

	time.AfterFunc(clearAfter, func() {
		n.mu.Lock()
		defer n.mu.Unlock()
		if n.seq == seq {
			n.text = ""
		}
	})
}

func (n *notice) get() string {
	n.mu.Lock()
	defer n.mu.Unlock()
	return n.text
}

func (n *notice) clear() {
	n.mu.Lock()
	defer n.mu.Unlock()
	n.seq++
	n.text = ""
}
