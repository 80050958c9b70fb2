package chord

import (
	"context"
	"fmt"
	"io"
	"net/http"
	"strconv"
	"time"

	"go.miragespace.co/chordring/spec/chord"
	"go.miragespace.co/chordring/spec/rtt"

	"github.com/jedib0t/go-pretty/v6/table"
)

const rttWindow = time.Second * 10

func (n *LocalNode) rttSnapshot(node chord.VNode) string {
	if n.NodesRTT == nil || node == nil || node.ID() == n.ID() {
		return ""
	}
	return n.NodesRTT.Window(rtt.PeerKey(node.Identity()), rttWindow).String()
}

func (n *LocalNode) printSummary(ctx context.Context, w io.Writer) {
	pre := n.getPredecessor()
	succList := n.getSuccessors()

	fmt.Fprintf(w, "Current state: %s (for %s)\n", n.state.Get(), n.state.Since().Round(time.Second))
	fmt.Fprintf(w, "State history: %v\n", n.state.History())
	fmt.Fprintf(w, "Ring: %s\n", n.ringTrace(ctx))
	fmt.Fprintf(w, "---\n")

	nodesTable := table.NewWriter()
	nodesTable.SetOutputMirror(w)
	nodesTable.AppendHeader(table.Row{"Where", "ID", "Address", fmt.Sprintf("RTT (-%s)", rttWindow)})
	if pre != nil {
		nodesTable.AppendRow(table.Row{"Predecessor", pre.ID(), pre.Identity().GetAddress(), n.rttSnapshot(pre)})
	} else {
		nodesTable.AppendRow(table.Row{"Predecessor", "(nil)", "", ""})
	}
	nodesTable.AppendRow(table.Row{"Local", n.ID(), n.Identity().GetAddress(), ""})
	for _, succ := range succList {
		nodesTable.AppendRow(table.Row{
			fmt.Sprintf("Successor (L = %d)", n.SuccessorListSize),
			succ.ID(),
			succ.Identity().GetAddress(),
			n.rttSnapshot(succ),
		})
	}
	lastStabilized := "never"
	if ts := n.lastStabilized.Load(); !ts.IsZero() {
		lastStabilized = time.Since(ts).Round(time.Millisecond).String() + " ago"
	}
	nodesTable.SetCaption("(Last stabilized: %s)", lastStabilized)
	nodesTable.SetStyle(table.StyleDefault)
	nodesTable.Style().Options.SeparateRows = true
	nodesTable.Render()

	fmt.Fprintf(w, "---\n")

	fingerTable := table.NewWriter()
	fingerTable.SetOutputMirror(w)
	fingerTable.AppendHeader(table.Row{"Range", "ID"})
	for _, row := range n.fingerTrace() {
		fingerTable.AppendRow(table.Row{
			strconv.Itoa(row.from) + "/" + strconv.Itoa(row.to),
			row.id,
		})
	}
	fingerTable.SetCaption("(m = %d, identifiers in [0, %d])", n.Space.Bits(), n.Space.Max())
	fingerTable.SetStyle(table.StyleDefault)
	fingerTable.Style().Options.SeparateRows = true
	fingerTable.Render()
}

func (n *LocalNode) printKey(w http.ResponseWriter, r *http.Request, key string) {
	owner, err := n.Lookup(r.Context(), []byte(key))
	if err != nil {
		w.WriteHeader(http.StatusInternalServerError)
		fmt.Fprintf(w, "error looking up key: %v", err)
		return
	}
	keyTable := table.NewWriter()
	keyTable.SetOutputMirror(w)
	keyTable.AppendHeader(table.Row{"Key", "hash(Key)", "Owner", "Address"})
	keyTable.AppendRow(table.Row{key, n.Space.HashString(key), owner.ID(), owner.Identity().GetAddress()})
	keyTable.SetStyle(table.StyleDefault)
	keyTable.Render()
}

func (n *LocalNode) StatsHandler(w http.ResponseWriter, r *http.Request) {
	if err := n.checkNodeState(false); err != nil {
		w.WriteHeader(http.StatusServiceUnavailable)
		fmt.Fprintf(w, "node is not serving: %v", err)
		return
	}

	w.Header().Set("content-type", "text/plain; charset=utf-8")

	query := r.URL.Query()
	if query.Has("key") {
		n.printKey(w, r, query.Get("key"))
		return
	}
	n.printSummary(r.Context(), w)
}
