package chord

import (
	"sync"

	"go.miragespace.co/chordring/spec/chord"
)

type fingerEntry struct {
	mu   sync.RWMutex
	node chord.VNode
}

func (f *fingerEntry) computeView(fn func(node chord.VNode)) {
	f.mu.RLock()
	defer f.mu.RUnlock()
	fn(f.node)
}

func (f *fingerEntry) computeUpdate(fn func(entry *fingerEntry)) {
	f.mu.Lock()
	defer f.mu.Unlock()
	fn(f)
}

func (n *LocalNode) getFinger(i int) chord.VNode {
	var node chord.VNode
	n.fingers[i].computeView(func(f chord.VNode) {
		node = f
	})
	return node
}

func (n *LocalNode) setFinger(i int, node chord.VNode) {
	n.fingers[i].computeUpdate(func(entry *fingerEntry) {
		entry.node = node
	})
}

// fingerRange iterates the finger table from index 0, stopping early when fn returns false.
// Empty entries are skipped.
func (n *LocalNode) fingerRange(fn func(i int, f chord.VNode) bool) {
	for i := range n.fingers {
		f := n.getFinger(i)
		if f == nil {
			continue
		}
		if !fn(i, f) {
			return
		}
	}
}

// closestPrecedingFinger scans from the farthest finger down and returns the first entry
// strictly between us and key, ignoring entries known to have failed
func (n *LocalNode) closestPrecedingFinger(key uint64, failed map[uint64]bool) chord.VNode {
	for i := len(n.fingers) - 1; i >= 0; i-- {
		f := n.getFinger(i)
		if f == nil || failed[f.ID()] {
			continue
		}
		if chord.BetweenStrict(n.ID(), f.ID(), key) {
			return f
		}
	}
	return n
}
