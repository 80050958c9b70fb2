package chord

import (
	"math/rand"

	"github.com/zeebo/xxh3"
)

const (
	// Also known as m in the original paper
	DefaultSpace Space = 32
	// Also known as r in the original paper
	ExtendedSuccessorEntries = 3
)

// Space is the number of bits in the identifier space. Identifiers live in [0, 2^Space).
type Space uint

func (s Space) Valid() bool {
	return s >= 1 && s <= 64
}

// Bits is the number of finger table entries for this space
func (s Space) Bits() int {
	return int(s)
}

// Max is the largest identifier in the space
func (s Space) Max() uint64 {
	return ^uint64(0) >> (64 - uint(s))
}

// Contains reports whether id is a valid identifier in the space
func (s Space) Contains(id uint64) bool {
	return id <= s.Max()
}

func (s Space) Modulo(x uint64) uint64 {
	return x & s.Max()
}

func (s Space) Hash(b []byte) uint64 {
	return s.Modulo(xxh3.Hash(b))
}

func (s Space) HashString(key string) uint64 {
	return s.Modulo(xxh3.HashString(key))
}

// Sum returns (x + y) mod 2^m. Unsigned overflow wraps at 2^64, which is a multiple of 2^m.
func (s Space) Sum(x, y uint64) uint64 {
	return s.Modulo(x + y)
}

// Distance is the forward distance from `from` to `to` walking the ring
func (s Space) Distance(from, to uint64) uint64 {
	return s.Modulo(to - from)
}

// Start is the first identifier covered by finger entry i (0-based) of node id
func (s Space) Start(id uint64, i int) uint64 {
	return s.Sum(id, 1<<uint(i))
}

func (s Space) Random() uint64 {
	return s.Modulo(rand.Uint64())
}

// target IN [low, high)
func BetweenInclusiveLow(low, target, high uint64) bool {
	if high > low {
		return low <= target && target < high
	} else {
		return low <= target || target < high
	}
}

// target IN (low, high]
func BetweenInclusiveHigh(low, target, high uint64) bool {
	if high > low {
		return low < target && target <= high
	} else {
		return low < target || target <= high
	}
}

// target IN (low, high)
func BetweenStrict(low, target, high uint64) bool {
	if high > low {
		return low < target && target < high
	} else {
		return low < target || target < high
	}
}

// make successor list that will not have duplicate VNodes
func MakeSuccList(immediate VNode, successors []VNode, maxLen int) []VNode {
	succList := []VNode{immediate}
	seen := make(map[uint64]bool)
	seen[immediate.ID()] = true

	for _, succ := range successors {
		if len(succList) >= maxLen {
			break
		}
		if succ == nil || seen[succ.ID()] {
			continue
		}
		seen[succ.ID()] = true
		succList = append(succList, succ)
	}
	return succList
}
