package compiler

import (
	"sync"
	"sync/atomic"
)

// mailbox is a single-slot, latest-wins handoff between one publisher and
// one consumer. publish never blocks: an unconsumed artifact is dropped and
// replaced. poll never blocks either.
type mailbox struct {
	slot  chan *Artifact
	mu    sync.Mutex // serializes publishers
	drops atomic.Uint64
}

func newMailbox() *mailbox {
	return &mailbox{slot: make(chan *Artifact, 1)}
}

// publish stores a, replacing any unconsumed artifact. It reports whether
// an older artifact was dropped.
func (m *mailbox) publish(a *Artifact) (dropped bool) {
	m.mu.Lock()
	defer m.mu.Unlock()

	select {
	case <-m.slot:
		m.drops.Add(1)
		dropped = true
	default:
	}
	// The slot is empty and only publishers fill it, so this cannot block.
	m.slot <- a
	return dropped
}

// poll takes the pending artifact, if any.
func (m *mailbox) poll() (*Artifact, bool) {
	select {
	case a := <-m.slot:
		return a, true
	default:
		return nil, false
	}
}
