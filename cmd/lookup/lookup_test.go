package lookup

import (
	"net/http/httptest"
	"testing"

	chordImpl "go.miragespace.co/chordring/chord"
	"go.miragespace.co/chordring/spec/chord"
	"go.miragespace.co/chordring/spec/protocol"
	"go.miragespace.co/chordring/spec/rpc"

	"github.com/montanaflynn/stats"
	"github.com/stretchr/testify/require"
	"github.com/urfave/cli/v2"
	"go.uber.org/zap"
	"go.uber.org/zap/zaptest"
)

func startNode(t *testing.T, logger *zap.Logger) string {
	srv := httptest.NewUnstartedServer(nil)
	addr := srv.Listener.Addr().String()

	conf := chordImpl.DefaultNodeConfig()
	conf.Logger = logger
	conf.Identity = &protocol.Node{
		Id:      chord.DefaultSpace.HashString(addr),
		Address: addr,
	}
	conf.ChordClient = rpc.DynamicChordClient(nil)
	node := chordImpl.NewLocalNode(conf)

	srv.Config.Handler = rpc.NewChordServer(logger, &chordImpl.Server{
		LocalNode: node,
		Factory:   node.Resolve,
	})
	srv.Start()
	require.NoError(t, node.Create())

	t.Cleanup(func() {
		node.Leave()
		srv.Close()
	})
	return addr
}

func run(logger *zap.Logger, args ...string) error {
	app := &cli.App{
		Name: "test",
		Metadata: map[string]interface{}{
			"logger": logger,
		},
		Commands: []*cli.Command{
			Generate(),
			GenerateBench(),
		},
	}
	return app.Run(append([]string{"test"}, args...))
}

func TestLookupCommand(t *testing.T) {
	as := require.New(t)

	logger := zaptest.NewLogger(t)
	addr := startNode(t, logger)

	as.NoError(run(logger, "lookup", "--via", addr, "hello", "world"))
	as.Error(run(logger, "lookup", "--via", addr))
	as.Error(run(logger, "lookup", "--via", addr, "--space", "0", "hello"))
	as.Error(run(logger, "lookup", "hello"))
}

func TestLookupUnreachable(t *testing.T) {
	as := require.New(t)

	logger := zaptest.NewLogger(t)

	dead := httptest.NewServer(nil)
	addr := dead.Listener.Addr().String()
	dead.Close()

	err := run(logger, "lookup", "--via", addr, "--retries", "1", "hello")
	as.ErrorIs(err, chord.ErrRPCTimeout)
}

func TestBenchCommand(t *testing.T) {
	as := require.New(t)

	logger := zaptest.NewLogger(t)
	addr := startNode(t, logger)

	as.NoError(run(logger, "bench", "--via", addr, "--count", "20", "--concurrency", "2"))
	as.Error(run(logger, "bench", "--via", addr, "--count", "0"))
}

func TestBenchSummarize(t *testing.T) {
	as := require.New(t)

	result := &benchResult{
		latencies: stats.Float64Data{4, 1, 3, 2},
	}
	min, mean, p99, max, err := result.summarize()
	as.NoError(err)
	as.Equal(1.0, min)
	as.Equal(2.5, mean)
	as.Equal(4.0, max)
	as.GreaterOrEqual(p99, mean)
	as.LessOrEqual(p99, max)

	_, _, _, _, err = (&benchResult{}).summarize()
	as.Error(err)
}
