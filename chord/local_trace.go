package chord

import (
	"context"
	"errors"
	"fmt"
	"sort"
	"strconv"
	"strings"

	"go.miragespace.co/chordring/spec/chord"
)

var errRingUnstable = errors.New("ring is unstable")

func minmax(nums []int) (min, max int) {
	min = nums[0]
	max = nums[0]
	for _, num := range nums {
		if num > max {
			max = num
		}
		if num < min {
			min = num
		}
	}
	return
}

type fingerRow struct {
	from, to int
	id       uint64
}

// fingerTrace groups consecutive finger indices by the node they point to
func (n *LocalNode) fingerTrace() []fingerRow {
	ftMap := map[uint64][]int{}
	n.fingerRange(func(i int, f chord.VNode) bool {
		ftMap[f.ID()] = append(ftMap[f.ID()], i)
		return true
	})

	rows := make([]fingerRow, 0, len(ftMap))
	for id, indices := range ftMap {
		min, max := minmax(indices)
		rows = append(rows, fingerRow{from: min, to: max, id: id})
	}
	sort.Slice(rows, func(i, j int) bool {
		return rows[i].from < rows[j].from
	})
	return rows
}

// ringWalk follows successors starting from us until it comes back around
func (n *LocalNode) ringWalk(ctx context.Context) ([]chord.VNode, error) {
	var (
		err  error
		next chord.VNode = n
		seen             = map[uint64]bool{n.ID(): true}
		ring             = []chord.VNode{n}
	)
	for {
		next, err = n.FindSuccessor(ctx, n.Space.Sum(next.ID(), 1))
		if err != nil {
			return ring, err
		}
		if next.ID() == n.ID() {
			return ring, nil
		}
		if seen[next.ID()] {
			return ring, fmt.Errorf("%w: %d visited twice", errRingUnstable, next.ID())
		}
		seen[next.ID()] = true
		ring = append(ring, next)
	}
}

func (n *LocalNode) ringTrace(ctx context.Context) string {
	ring, err := n.ringWalk(ctx)
	if errors.Is(err, errRingUnstable) {
		return "unstable"
	}

	var sb strings.Builder
	for i, node := range ring {
		if i > 0 {
			sb.WriteString(" -> ")
		}
		sb.WriteString(strconv.FormatUint(node.ID(), 10))
	}
	sb.WriteString(" -> ")
	if err != nil {
		sb.WriteString("error")
	} else {
		sb.WriteString(strconv.FormatUint(n.ID(), 10))
	}
	return sb.String()
}
