package chord

import (
	"net/http"

	"go.miragespace.co/chordring/spec/protocol"

	"github.com/dominikbraun/graph"
	"github.com/dominikbraun/graph/draw"
)

func formatNode(n *protocol.Node) string {
	return n.String()
}

var vOptions = []func(*graph.VertexProperties){
	graph.VertexAttribute("shape", "box"),
}

var rootVOptions = append(vOptions,
	graph.VertexAttribute("style", "filled"),
	graph.VertexAttribute("color", "yellow"),
)

func RingGraphHandler(root *LocalNode) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		ring, err := root.ringWalk(r.Context())
		if err != nil {
			http.Error(w, err.Error(), http.StatusInternalServerError)
			return
		}

		g := graph.New(formatNode, graph.Directed())

		for _, node := range ring {
			if node.ID() == root.ID() {
				g.AddVertex(node.Identity(), rootVOptions...)
			} else {
				g.AddVertex(node.Identity(), vOptions...)
			}
		}

		for i := 0; i < len(ring)-1; i++ {
			g.AddEdge(formatNode(ring[i].Identity()), formatNode(ring[i+1].Identity()))
		}
		if len(ring) > 1 {
			g.AddEdge(formatNode(ring[len(ring)-1].Identity()), formatNode(ring[0].Identity()))
		}

		w.Header().Set("content-type", "text/plain")
		draw.DOT(g, w)
	}
}
