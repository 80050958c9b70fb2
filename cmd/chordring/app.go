package chordring

import (
	"fmt"
	"math/rand"
	"runtime"
	"time"

	"go.miragespace.co/chordring/cmd/lookup"
	"go.miragespace.co/chordring/cmd/node"

	"github.com/urfave/cli/v2"
	"go.uber.org/zap"
	"go.uber.org/zap/zapcore"
)

var (
	Build = "head"
)

// New returns the chordring command line application
func New() *cli.App {
	return &cli.App{
		Name:                 "chordring",
		Usage:                fmt.Sprintf("build for %s on %s", runtime.GOARCH, runtime.GOOS),
		Version:              Build,
		HideHelpCommand:      true,
		EnableBashCompletion: true,
		Description:          "run and query a Chord ring whose members talk JSON over HTTP",
		Flags: []cli.Flag{
			&cli.BoolFlag{
				Name:  "verbose",
				Value: false,
				Usage: "log human readable output at debug level",
			},
			&cli.StringFlag{
				Name:        "log-level",
				Usage:       "minimum level to log: debug, info, warn or error",
				DefaultText: "debug when verbose, info otherwise",
			},
			&cli.Int64Flag{
				Name:   "rand",
				Hidden: true,
				Value:  time.Now().Unix(),
			},
		},
		Commands: []*cli.Command{
			node.Generate(),
			lookup.Generate(),
			lookup.GenerateBench(),
		},
		Before: ConfigLogger,
		After: func(ctx *cli.Context) error {
			if logger, ok := ctx.App.Metadata["logger"].(*zap.Logger); ok {
				// stderr does not support fsync on every platform
				_ = logger.Sync()
			}
			return nil
		},
	}
}

func buildLogger(verbose bool, level string) (*zap.Logger, error) {
	var config zap.Config
	if verbose {
		config = zap.NewDevelopmentConfig()
		config.EncoderConfig.EncodeLevel = zapcore.CapitalColorLevelEncoder
	} else {
		config = zap.NewProductionConfig()
	}
	if level != "" {
		lvl, err := zapcore.ParseLevel(level)
		if err != nil {
			return nil, fmt.Errorf("invalid log level %q: %w", level, err)
		}
		config.Level = zap.NewAtomicLevelAt(lvl)
	}
	// logs go to stderr, leaving stdout for command output
	config.OutputPaths = []string{"stderr"}
	config.ErrorOutputPaths = []string{"stderr"}
	return config.Build()
}

func ConfigLogger(ctx *cli.Context) error {
	logger, err := buildLogger(ctx.Bool("verbose"), ctx.String("log-level"))
	if err != nil {
		return err
	}
	if _, err := zap.RedirectStdLogAt(logger.Named("stdlog"), zapcore.InfoLevel); err != nil {
		return fmt.Errorf("redirecting stdlog output: %w", err)
	}
	if ctx.App.Metadata == nil {
		ctx.App.Metadata = make(map[string]interface{})
	}
	ctx.App.Metadata["logger"] = logger

	seed := ctx.Int64("rand")
	logger.Debug("Seeding math/rand", zap.Int64("rand", seed), zap.Bool("overridden", ctx.IsSet("rand")))
	rand.Seed(seed)

	return nil
}
