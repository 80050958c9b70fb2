package node

import (
	"context"
	"errors"
	"fmt"
	"net"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	chordImpl "go.miragespace.co/chordring/chord"
	"go.miragespace.co/chordring/metrics"
	rttImpl "go.miragespace.co/chordring/rtt"
	"go.miragespace.co/chordring/spec/chord"
	"go.miragespace.co/chordring/spec/protocol"
	"go.miragespace.co/chordring/spec/rpc"
	"go.miragespace.co/chordring/timing"
	"go.miragespace.co/chordring/util"

	"github.com/avast/retry-go/v4"
	"github.com/go-chi/chi/v5"
	"github.com/go-chi/chi/v5/middleware"
	"github.com/urfave/cli/v2"
	"go.uber.org/zap"
	"golang.org/x/sync/errgroup"
)

const (
	rttWindowSize = 20
)

func Generate() *cli.Command {
	ip := util.GetOutboundIP()
	listen := fmt.Sprintf("%s:18281", ip.String())
	return &cli.Command{
		Name:  "node",
		Usage: "start a chord node and join (or create) a ring",
		Description: `Start a chord node serving the ring RPC, debug pages under /debug/chord, and prometheus metrics under /metrics on one listener.

	The identifier of the node is derived from its advertise address. Absent of --join will create a new ring with current node as the only member.`,
		ArgsUsage: " ",
		Flags: []cli.Flag{
			&cli.PathFlag{
				Name:    "config",
				Aliases: []string{"c"},
				Usage:   "path to config yaml file. Flags set on the command line take precedence",
			},
			&cli.StringFlag{
				Name:     "listen",
				Value:    listen,
				Usage:    "address and port to listen for ring RPC and http requests",
				Category: "Network Options",
			},
			&cli.StringFlag{
				Name:        "advertise",
				DefaultText: "same as listen",
				Usage: `address and port to advertise to other nodes.
			Note that the identifier of the node is the hash of its advertise address`,
				Category: "Network Options",
			},
			&cli.StringFlag{
				Name: "join",
				Usage: `advertise address of a known member of the ring.
			Absent of this flag will create a new ring`,
				Category: "Chord Options",
			},
			&cli.UintFlag{
				Name:     "space",
				Value:    uint(chord.DefaultSpace),
				Usage:    "number of bits in the identifier space. Every member of the ring must agree",
				Category: "Chord Options",
			},
			&cli.IntFlag{
				Name:     "successors",
				Value:    chord.ExtendedSuccessorEntries,
				Usage:    "length of the successor list",
				Category: "Chord Options",
			},
			&cli.IntFlag{
				Name:     "failure-threshold",
				Value:    3,
				Usage:    "consecutive stabilize failures before the immediate successor is replaced",
				Category: "Chord Options",
			},
			&cli.DurationFlag{
				Name:     "stabilize-interval",
				Value:    timing.ChordStabilizeInterval,
				Category: "Timing Options",
			},
			&cli.DurationFlag{
				Name:     "fix-finger-interval",
				Value:    timing.ChordFixFingerInterval,
				Category: "Timing Options",
			},
			&cli.DurationFlag{
				Name:     "predecessor-check-interval",
				Value:    timing.ChordPredecessorCheckInterval,
				Category: "Timing Options",
			},
			&cli.DurationFlag{
				Name:     "rpc-timeout",
				Value:    timing.ChordRPCTimeout,
				Usage:    "deadline of a single ring RPC",
				Category: "Timing Options",
			},
		},
		Action: func(ctx *cli.Context) error {
			cfg, err := configFromContext(ctx, listen)
			if err != nil {
				return err
			}
			return cmdNode(ctx, cfg)
		},
	}
}

func newRouter(logger *zap.Logger, node *chordImpl.LocalNode) http.Handler {
	router := chi.NewRouter()
	router.Use(middleware.Recoverer)

	router.Handle(protocol.VNodeServicePathPrefix+"*", rpc.NewChordServer(logger.With(zap.String("component", "rpc")), &chordImpl.Server{
		LocalNode: node,
		Factory:   node.Resolve,
	}))
	router.Mount("/debug/chord", chordImpl.StatsHandler(node))
	router.Handle("/metrics", metrics.Handler())

	return router
}

func discoverSeed(ctx context.Context, logger *zap.Logger, node *chordImpl.LocalNode, address string) (chord.VNode, error) {
	return retry.DoWithData(func() (chord.VNode, error) {
		return node.Discover(ctx, address)
	},
		retry.Context(ctx),
		retry.Attempts(timing.ChordJoinRetryAttempts),
		retry.Delay(timing.ChordJoinRetryInterval),
		retry.LastErrorOnly(true),
		retry.RetryIf(chord.ErrorIsRetryable),
		retry.OnRetry(func(attempt uint, err error) {
			logger.Warn("Retrying on seed discovery error", zap.Uint("attempt", attempt), zap.String("seed", address), zap.Error(err))
		}),
	)
}

func cmdNode(ctx *cli.Context, cfg *Config) error {
	logger, ok := ctx.App.Metadata["logger"].(*zap.Logger)
	if !ok || logger == nil {
		return fmt.Errorf("unable to obtain logger from app context")
	}

	listener, err := net.Listen("tcp", cfg.Listen)
	if err != nil {
		return fmt.Errorf("error setting up listener: %w", err)
	}
	defer listener.Close()

	client := rpc.DynamicChordClient(&http.Client{
		Transport: &http.Transport{
			MaxIdleConnsPerHost: 4,
			IdleConnTimeout:     time.Minute,
		},
	})

	conf := cfg.nodeConfig(logger.With(zap.String("component", "chord")), client, rttImpl.NewTracker(rttWindowSize))
	if err := conf.Validate(); err != nil {
		return fmt.Errorf("invalid chord configuration: %w", err)
	}
	node := chordImpl.NewLocalNode(conf)

	srv := &http.Server{
		Handler:           newRouter(logger, node),
		ErrorLog:          util.GetStdLogger(logger, "http"),
		ReadHeaderTimeout: timing.ChordRPCTimeout,
	}

	sigCtx, stop := signal.NotifyContext(ctx.Context, os.Interrupt, syscall.SIGTERM)
	defer stop()

	g, gCtx := errgroup.WithContext(sigCtx)

	g.Go(func() error {
		logger.Info("Serving ring RPC and debug endpoints", zap.String("listen", listener.Addr().String()), zap.String("advertise", cfg.Advertise))
		if err := srv.Serve(listener); err != nil && !errors.Is(err, http.ErrServerClosed) {
			return fmt.Errorf("serving http: %w", err)
		}
		return nil
	})

	g.Go(func() error {
		if cfg.Join == "" {
			return node.Create()
		}
		seed, err := discoverSeed(gCtx, logger, node, cfg.Join)
		if err != nil {
			return fmt.Errorf("error discovering seed %s: %w", cfg.Join, err)
		}
		if err := node.Join(gCtx, seed); err != nil {
			return fmt.Errorf("error joining ring via %s: %w", cfg.Join, err)
		}
		return nil
	})

	g.Go(func() error {
		<-gCtx.Done()
		logger.Info("Shutting down node", zap.Error(context.Cause(gCtx)))

		node.Leave()

		shutdownCtx, cancel := context.WithTimeout(context.Background(), timing.HTTPShutdownTimeout)
		defer cancel()
		if err := srv.Shutdown(shutdownCtx); err != nil {
			return fmt.Errorf("shutting down http server: %w", err)
		}
		return nil
	})

	return g.Wait()
}
