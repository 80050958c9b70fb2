package chord

import (
	"encoding/binary"
	"errors"
	"time"

	"go.miragespace.co/chordring/spec/chord"
	"go.miragespace.co/chordring/spec/rtt"
	"go.miragespace.co/chordring/util"

	"github.com/zeebo/xxh3"
	"go.uber.org/zap"
)

func v2d(n []chord.VNode) []uint64 {
	x := make([]uint64, 0)
	for _, xx := range n {
		if xx == nil {
			continue
		}
		x = append(x, xx.ID())
	}
	return x
}

// it is not safe to use xor under any ciscumstances as long as
// we have the possbility of cyclical ring that will have ourself
// in the successor list
func (n *LocalNode) hash(nodes []chord.VNode) uint64 {
	hasher := xxh3.New()
	buf := make([]byte, 8)
	for _, node := range nodes {
		if node == nil {
			continue
		}
		binary.BigEndian.PutUint64(buf, node.ID())
		hasher.Write(buf)
	}
	return hasher.Sum64()
}

// definitive errors mean the node will not come back under that identity
func isDefinitive(err error) bool {
	return errors.Is(err, chord.ErrNodeGone) || errors.Is(err, chord.ErrStaleHandle)
}

// routine based on pseudo code from the paper "How to Make Chord Correct"
func (n *LocalNode) stabilize() {
	ctx := n.stopCtx

	var (
		succList = n.getSuccessors()
		skipped  = make(map[uint64]bool)
		head     chord.VNode
		pre      chord.VNode
		headList []chord.VNode
		err      error
	)

	for i := 0; len(succList) > 0; i++ {
		head = succList[0]
		pre, err = head.GetPredecessor(ctx)
		if err == nil {
			headList, err = head.GetSuccessors(ctx)
		}
		if err == nil {
			break
		}
		if ctx.Err() != nil {
			return
		}
		stabilizeFailures.Inc()

		// give the current successor a few chances before giving up on it
		if i == 0 && !isDefinitive(err) {
			failures := n.succFailures.Inc()
			if int(failures) < n.StabilizeFailureThreshold {
				n.Logger.Debug("Successor is not responding, retrying next round",
					zap.Object("successor", head.Identity()),
					zap.Uint32("failures", failures),
					zap.Error(err),
				)
				return
			}
		}

		n.Logger.Info("Skipping over successor",
			zap.Object("head", head.Identity()),
			zap.Uint64s("succ", v2d(succList)),
			zap.Error(err),
		)
		successorReplacements.Inc()
		n.forgetPeer(head)
		skipped[head.ID()] = true
		succList = succList[1:]
		head = nil
	}
	n.succFailures.Store(0)

	if head == nil {
		head = n.firstLiveFinger(skipped)
		pre = nil
		headList = nil
		if head.ID() == n.ID() {
			headList = n.getSuccessors()
		} else if list, err := head.GetSuccessors(ctx); err == nil {
			headList = list
		}
		n.Logger.Info("Successor list exhausted, falling back to finger entry", zap.Object("successor", head.Identity()))
	}

	newList := chord.MakeSuccList(head, excludeNodes(headList, skipped), n.SuccessorListSize)

	if pre != nil && !skipped[pre.ID()] && chord.BetweenStrict(n.ID(), pre.ID(), head.ID()) {
		if list, err := pre.GetSuccessors(ctx); err == nil {
			newList = chord.MakeSuccList(pre, excludeNodes(list, skipped), n.SuccessorListSize)
		} else {
			n.Logger.Debug("Unable to adopt successor's predecessor", zap.Object("candidate", pre.Identity()), zap.Error(err))
		}
	}

	n.lastStabilized.Store(time.Now())

	listHash := n.hash(newList)
	if n.succListHash.Load() != listHash {
		n.successorsMu.Lock()
		n.updateSuccessorsList(listHash, newList)
		n.successorsMu.Unlock()
	}

	succ := newList[0]
	n.fingers[0].computeUpdate(func(entry *fingerEntry) {
		if entry.node == nil || entry.node.ID() != succ.ID() {
			entry.node = succ
		}
	})

	if n.checkNodeState(true) != nil { // don't re-notify our successor when we are leaving
		return
	}
	if err := succ.Notify(ctx, n); err != nil {
		n.Logger.Error("Error notifying successor about us", zap.Object("successor", succ.Identity()), zap.Error(err))
	}
}

func excludeNodes(list []chord.VNode, skipped map[uint64]bool) []chord.VNode {
	out := make([]chord.VNode, 0, len(list))
	for _, node := range list {
		if node == nil || skipped[node.ID()] {
			continue
		}
		out = append(out, node)
	}
	return out
}

// firstLiveFinger returns the nearest finger entry that still answers, or ourselves
func (n *LocalNode) firstLiveFinger(skipped map[uint64]bool) chord.VNode {
	var live chord.VNode = n
	tried := make(map[uint64]bool)
	n.fingerRange(func(_ int, f chord.VNode) bool {
		if f.ID() == n.ID() || skipped[f.ID()] || tried[f.ID()] {
			return true
		}
		tried[f.ID()] = true
		if err := f.Ping(n.stopCtx); err != nil {
			return true
		}
		live = f
		return false
	})
	return live
}

// caller must hold successorsMu
func (n *LocalNode) updateSuccessorsList(listHash uint64, succList []chord.VNode) {
	n.succListHash.Store(listHash)
	n.successors = succList

	n.Logger.Info("Discovered new successors via Stabilize",
		zap.Uint64s("successors", v2d(succList)),
	)
}

func (n *LocalNode) fixFinger(i int) (updated bool, err error) {
	var f chord.VNode
	start := n.Space.Start(n.ID(), i)
	f, err = n.FindSuccessor(n.stopCtx, start)
	if err != nil {
		fixFingerFailures.Inc()
		return
	}
	n.fingers[i].computeUpdate(func(entry *fingerEntry) {
		if entry.node == nil || entry.node.ID() != f.ID() {
			entry.node = f
			updated = true
		}
	})
	return
}

// fixNextFinger repairs one finger entry per call, round robin
func (n *LocalNode) fixNextFinger() {
	i := int((n.nextFinger.Inc() - 1) % uint32(len(n.fingers)))
	updated, err := n.fixFinger(i)
	if err != nil {
		n.Logger.Debug("Unable to fix finger entry", zap.Int("index", i), zap.Error(err))
		return
	}
	if updated {
		n.Logger.Debug("FingerTable entry updated", zap.Int("index", i), zap.Object("node", n.getFinger(i).Identity()))
	}
}

func (n *LocalNode) checkPredecessor() error {
	pre := n.getPredecessor()
	if pre == nil || pre.ID() == n.ID() {
		return nil
	}

	err := pre.Ping(n.stopCtx)
	if err != nil {
		if n.stopCtx.Err() != nil {
			return err
		}
		n.predecessorMu.Lock()
		if n.predecessor == pre {
			n.predecessor = nil
			predecessorEvictions.Inc()
			n.forgetPeer(pre)
			n.Logger.Info("Discovered dead predecessor",
				zap.Object("old", pre.Identity()),
				zap.String("new", "nil"),
			)
		}
		n.predecessorMu.Unlock()
	}
	return err
}

// forgetPeer drops the round trip history of a peer we stopped talking to
func (n *LocalNode) forgetPeer(node chord.VNode) {
	if n.NodesRTT == nil || node == nil {
		return
	}
	n.NodesRTT.Forget(rtt.PeerKey(node.Identity()))
}

func (n *LocalNode) periodic(name string, interval time.Duration, task func()) {
	defer n.stopWg.Done()

	timer := time.NewTimer(util.RandomTimeRange(interval))
	defer timer.Stop()

	for {
		select {
		case <-n.stopCtx.Done():
			n.Logger.Debug("Stopping periodic task", zap.String("task", name))
			return
		case <-timer.C:
			task()
			timer.Reset(util.RandomTimeRange(interval))
		}
	}
}

func (n *LocalNode) startTasks() {
	// run once
	n.stabilize()
	n.stopWg.Add(3)
	// then run periodically
	go n.periodic("Stabilize", n.StabilizeInterval, n.stabilize)
	go n.periodic("PredecessorCheck", n.PredecessorCheckInterval, func() {
		n.checkPredecessor()
	})
	go n.periodic("FixFinger", n.FixFingerInterval, n.fixNextFinger)
}

func (n *LocalNode) stopTasks() {
	n.stopFn()
	n.stopWg.Wait()
}
