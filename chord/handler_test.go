package chord

import (
	"context"
	"net/http"
	"net/http/httptest"
	"strconv"
	"testing"

	"go.miragespace.co/chordring/spec/chord"

	"github.com/stretchr/testify/require"
)

func serveDebug(handler http.Handler, target string) *httptest.ResponseRecorder {
	req := httptest.NewRequest(http.MethodGet, target, nil)
	rec := httptest.NewRecorder()
	handler.ServeHTTP(rec, req)
	return rec
}

func TestStatsHandler(t *testing.T) {
	as := require.New(t)

	nodes, done := makeRing(t, as, chord.Space(8), []uint64{10, 100, 200})
	defer done()

	handler := StatsHandler(nodes[1])

	rec := serveDebug(handler, "/stats")
	as.Equal(http.StatusOK, rec.Code)
	body := rec.Body.String()
	as.Contains(body, "Current state: Active")
	as.Contains(body, "Ring: 100 -> 200 -> 10 -> 100")
	as.Contains(body, "Predecessor")
	as.Contains(body, "node-10")
	as.Contains(body, "node-200")
	as.Contains(body, "m = 8")

	key := "hello"
	owner := expectedOwner(nodes, chord.Space(8).HashString(key))
	rec = serveDebug(handler, "/stats?key="+key)
	as.Equal(http.StatusOK, rec.Code)
	as.Contains(rec.Body.String(), "node-"+strconv.FormatUint(owner, 10))
}

func TestStatsHandlerNotServing(t *testing.T) {
	as := require.New(t)

	node := NewLocalNode(devConfig(t, chord.Space(8), 10))
	rec := serveDebug(StatsHandler(node), "/stats")
	as.Equal(http.StatusServiceUnavailable, rec.Code)
	as.Contains(rec.Body.String(), chord.ErrNodeNotStarted.Error())
}

func TestRingGraphHandler(t *testing.T) {
	as := require.New(t)

	nodes, done := makeRing(t, as, chord.Space(8), []uint64{10, 100, 200})
	defer done()

	rec := serveDebug(StatsHandler(nodes[0]), "/graph")
	as.Equal(http.StatusOK, rec.Code)
	body := rec.Body.String()
	as.Contains(body, "digraph")
	as.Contains(body, `"node-10/10" -> "node-100/100"`)
	as.Contains(body, `"node-100/100" -> "node-200/200"`)
	as.Contains(body, `"node-200/200" -> "node-10/10"`)
	as.Contains(body, "yellow")
}

func TestRingTrace(t *testing.T) {
	as := require.New(t)

	nodes, done := makeRing(t, as, chord.Space(8), []uint64{10, 100, 200})
	defer done()

	as.Equal("200 -> 10 -> 100 -> 200", nodes[2].ringTrace(context.Background()))

	// an abandoned request stops walking the ring
	ctx, cancel := context.WithCancel(context.Background())
	cancel()
	as.Equal("10 -> error", nodes[0].ringTrace(ctx))

	rows := nodes[0].fingerTrace()
	// starts of node 10 are 11, 12, 14, 18, 26, 42, 74, 138
	as.Equal([]fingerRow{
		{from: 0, to: 6, id: 100},
		{from: 7, to: 7, id: 200},
	}, rows)
}
