package chord

import (
	"context"
	"fmt"
	"testing"
	"time"

	"github.com/stretchr/testify/require"
	"github.com/zeebo/xxh3"
)

func TestHash(t *testing.T) {
	as := require.New(t)

	b := []byte("test key")
	as.Equal(xxh3.Hash(b)&DefaultSpace.Max(), DefaultSpace.Hash(b))
	as.Equal(DefaultSpace.Hash(b), DefaultSpace.HashString("test key"))
	as.LessOrEqual(Space(3).Hash(b), uint64(7))
}

func TestSpace(t *testing.T) {
	as := require.New(t)

	as.False(Space(0).Valid())
	as.False(Space(65).Valid())
	as.True(Space(1).Valid())
	as.True(Space(64).Valid())

	as.Equal(uint64(7), Space(3).Max())
	as.Equal(uint64(1<<32-1), DefaultSpace.Max())
	as.Equal(^uint64(0), Space(64).Max())
	as.Equal(32, DefaultSpace.Bits())
}

func TestModulo(t *testing.T) {
	var (
		as        = require.New(t)
		s         = Space(42)
		x  uint64 = 1 << 60
		y  uint64 = 1 << 28
	)

	as.Equal((x+y)%(1<<42), s.Sum(x, y))
	as.Equal(uint64(1), Space(3).Sum(5, 4))
	as.Equal(uint64(0), Space(64).Sum(^uint64(0), 1))
}

func TestDistance(t *testing.T) {
	tables := []struct {
		from uint64
		to   uint64
		dist uint64
	}{
		{from: 0, to: 5, dist: 5},
		{from: 5, to: 0, dist: 3},
		{from: 6, to: 6, dist: 0},
		{from: 7, to: 1, dist: 2},
	}

	s := Space(3)
	for _, table := range tables {
		t.Run(fmt.Sprintf("%d to %d", table.from, table.to), func(t *testing.T) {
			require.Equal(t, table.dist, s.Distance(table.from, table.to))
		})
	}
}

func TestContains(t *testing.T) {
	as := require.New(t)

	as.True(Space(8).Contains(0))
	as.True(Space(8).Contains(255))
	as.False(Space(8).Contains(256))
	as.False(Space(8).Contains(300))
	as.True(Space(64).Contains(^uint64(0)))
}

func TestStart(t *testing.T) {
	as := require.New(t)

	s := Space(3)
	as.Equal(uint64(6), s.Start(5, 0))
	as.Equal(uint64(7), s.Start(5, 1))
	as.Equal(uint64(1), s.Start(5, 2))
}

func TestRandom(t *testing.T) {
	as := require.New(t)

	seen := make(map[uint64]bool)
	for i := 0; i < 16; i++ {
		seen[DefaultSpace.Random()] = true
	}
	as.Greater(len(seen), 1)

	for i := 0; i < 64; i++ {
		as.LessOrEqual(Space(3).Random(), uint64(7))
	}
}

func TestBetween(t *testing.T) {
	tables := []struct {
		low    uint64
		target uint64
		high   uint64
		strict bool
		incLow bool
		incHi  bool
	}{
		{low: 10, target: 20, high: 10, strict: true, incLow: true, incHi: true},
		{low: 10, target: 10, high: 20, strict: false, incLow: true, incHi: false},
		{low: 10, target: 20, high: 20, strict: false, incLow: false, incHi: true},
		{low: 20, target: 10, high: 10, strict: false, incLow: false, incHi: true},
		{low: 20, target: 5, high: 10, strict: true, incLow: true, incHi: true},
		{low: 20, target: 15, high: 10, strict: false, incLow: false, incHi: false},
		{low: 6, target: 0, high: 0, strict: false, incLow: false, incHi: true},
		{low: 5, target: 5, high: 5, strict: false, incLow: true, incHi: true},
	}

	for _, table := range tables {
		t.Run(fmt.Sprintf("%d in (%d, %d)", table.target, table.low, table.high), func(t *testing.T) {
			as := require.New(t)
			as.Equal(table.strict, BetweenStrict(table.low, table.target, table.high))
			as.Equal(table.incLow, BetweenInclusiveLow(table.low, table.target, table.high))
			as.Equal(table.incHi, BetweenInclusiveHigh(table.low, table.target, table.high))
		})
	}
}

type fakeNode struct {
	VNode
	id uint64
}

func (f *fakeNode) ID() uint64 {
	return f.id
}

func TestSuccListNoDuplicate(t *testing.T) {
	as := require.New(t)

	nodes := []VNode{
		&fakeNode{nil, 2},
		&fakeNode{nil, 2},
		&fakeNode{nil, 2},
		&fakeNode{nil, 3},
		&fakeNode{nil, 4},
	}
	immediate := &fakeNode{nil, 1}

	list := MakeSuccList(immediate, nodes, 3)
	as.Len(list, 3)
	as.Equal(uint64(1), list[0].ID())
	as.Equal(uint64(2), list[1].ID())
	as.Equal(uint64(3), list[2].ID())
}

type flakyNode struct {
	fakeNode
	failures int
	calls    int
}

func (f *flakyNode) FindSuccessor(_ context.Context, _ uint64) (VNode, error) {
	f.calls++
	if f.calls <= f.failures {
		return nil, ErrRPCTimeout
	}
	return &f.fakeNode, nil
}

func (f *flakyNode) GetSuccessors(_ context.Context) ([]VNode, error) {
	f.calls++
	return nil, ErrNodeGone
}

func TestRetryWrapper(t *testing.T) {
	as := require.New(t)

	flaky := &flakyNode{fakeNode: fakeNode{id: 42}, failures: 2}
	wrapped := WrapRetry(flaky, time.Millisecond, 5)

	succ, err := wrapped.FindSuccessor(context.Background(), 1)
	as.NoError(err)
	as.Equal(uint64(42), succ.ID())
	as.Equal(3, flaky.calls)

	flaky.calls = 0
	_, err = wrapped.GetSuccessors(context.Background())
	as.ErrorIs(err, ErrNodeGone)
	as.Equal(1, flaky.calls)
}

func TestLookup(t *testing.T) {
	as := require.New(t)

	_, err := Lookup(context.Background(), nil, DefaultSpace, []byte("k"))
	as.ErrorIs(err, ErrNodeNil)

	flaky := &flakyNode{fakeNode: fakeNode{id: 7}}
	owner, err := Lookup(context.Background(), flaky, DefaultSpace, []byte("k"))
	as.NoError(err)
	as.Equal(uint64(7), owner.ID())
}
