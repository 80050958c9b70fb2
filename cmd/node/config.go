package node

import (
	"errors"
	"fmt"
	"io"
	"net"
	"os"
	"time"

	chordImpl "go.miragespace.co/chordring/chord"
	"go.miragespace.co/chordring/spec/chord"
	"go.miragespace.co/chordring/spec/protocol"
	"go.miragespace.co/chordring/spec/rpc"
	"go.miragespace.co/chordring/spec/rtt"

	"github.com/urfave/cli/v2"
	"go.uber.org/zap"
	"gopkg.in/yaml.v3"
)

// Config is the on-disk representation of a node. Command line flags take precedence.
type Config struct {
	Listen    string `yaml:"listen" json:"listen"`
	Advertise string `yaml:"advertise,omitempty" json:"advertise,omitempty"`
	Join      string `yaml:"join,omitempty" json:"join,omitempty"`

	Space            uint `yaml:"space,omitempty" json:"space,omitempty"`
	Successors       int  `yaml:"successors,omitempty" json:"successors,omitempty"`
	FailureThreshold int  `yaml:"failureThreshold,omitempty" json:"failureThreshold,omitempty"`

	StabilizeInterval        time.Duration `yaml:"stabilizeInterval,omitempty" json:"stabilizeInterval,omitempty"`
	FixFingerInterval        time.Duration `yaml:"fixFingerInterval,omitempty" json:"fixFingerInterval,omitempty"`
	PredecessorCheckInterval time.Duration `yaml:"predecessorCheckInterval,omitempty" json:"predecessorCheckInterval,omitempty"`
	RPCTimeout               time.Duration `yaml:"rpcTimeout,omitempty" json:"rpcTimeout,omitempty"`
}

func defaultConfig(listen string) *Config {
	defaults := chordImpl.DefaultNodeConfig()
	return &Config{
		Listen:                   listen,
		Space:                    uint(defaults.Space),
		Successors:               defaults.SuccessorListSize,
		FailureThreshold:         defaults.StabilizeFailureThreshold,
		StabilizeInterval:        defaults.StabilizeInterval,
		FixFingerInterval:        defaults.FixFingerInterval,
		PredecessorCheckInterval: defaults.PredecessorCheckInterval,
		RPCTimeout:               defaults.RPCTimeout,
	}
}

// readFile overlays the values present in the yaml document at path
func (c *Config) readFile(path string) error {
	f, err := os.Open(path)
	if err != nil {
		return fmt.Errorf("opening config file: %w", err)
	}
	defer f.Close()

	decoder := yaml.NewDecoder(f)
	decoder.KnownFields(true)
	if err := decoder.Decode(c); err != nil && !errors.Is(err, io.EOF) {
		return fmt.Errorf("decoding config file %s: %w", path, err)
	}
	return nil
}

func (c *Config) applyFlags(ctx *cli.Context) {
	if ctx.IsSet("listen") {
		c.Listen = ctx.String("listen")
	}
	if ctx.IsSet("advertise") {
		c.Advertise = ctx.String("advertise")
	}
	if ctx.IsSet("join") {
		c.Join = ctx.String("join")
	}
	if ctx.IsSet("space") {
		c.Space = ctx.Uint("space")
	}
	if ctx.IsSet("successors") {
		c.Successors = ctx.Int("successors")
	}
	if ctx.IsSet("failure-threshold") {
		c.FailureThreshold = ctx.Int("failure-threshold")
	}
	if ctx.IsSet("stabilize-interval") {
		c.StabilizeInterval = ctx.Duration("stabilize-interval")
	}
	if ctx.IsSet("fix-finger-interval") {
		c.FixFingerInterval = ctx.Duration("fix-finger-interval")
	}
	if ctx.IsSet("predecessor-check-interval") {
		c.PredecessorCheckInterval = ctx.Duration("predecessor-check-interval")
	}
	if ctx.IsSet("rpc-timeout") {
		c.RPCTimeout = ctx.Duration("rpc-timeout")
	}
}

func (c *Config) validate() error {
	if _, _, err := net.SplitHostPort(c.Listen); err != nil {
		return fmt.Errorf("error parsing listen address: %w", err)
	}
	if c.Advertise == "" {
		c.Advertise = c.Listen
	}
	host, _, err := net.SplitHostPort(c.Advertise)
	if err != nil {
		return fmt.Errorf("error parsing advertise address: %w", err)
	}
	if ip := net.ParseIP(host); host == "" || (ip != nil && ip.IsUnspecified()) {
		return fmt.Errorf("advertise address %s is not reachable by peers", c.Advertise)
	}
	if c.Join != "" {
		if _, _, err := net.SplitHostPort(c.Join); err != nil {
			return fmt.Errorf("error parsing join address: %w", err)
		}
		if c.Join == c.Advertise {
			return fmt.Errorf("cannot join via our own advertise address %s", c.Join)
		}
	}
	if !chord.Space(c.Space).Valid() {
		return fmt.Errorf("identifier space must be between 1 and 64 bits, got %d", c.Space)
	}
	return nil
}

// nodeConfig derives the identity from the advertise address, so restarting with the same
// address rejoins under the same identifier
func (c *Config) nodeConfig(logger *zap.Logger, client rpc.ChordClient, recorder rtt.Recorder) chordImpl.NodeConfig {
	space := chord.Space(c.Space)
	return chordImpl.NodeConfig{
		Logger: logger,
		Identity: &protocol.Node{
			Id:      space.HashString(c.Advertise),
			Address: c.Advertise,
		},
		Space:                     space,
		ChordClient:               client,
		NodesRTT:                  recorder,
		SuccessorListSize:         c.Successors,
		StabilizeFailureThreshold: c.FailureThreshold,
		StabilizeInterval:         c.StabilizeInterval,
		FixFingerInterval:         c.FixFingerInterval,
		PredecessorCheckInterval:  c.PredecessorCheckInterval,
		RPCTimeout:                c.RPCTimeout,
	}
}

func configFromContext(ctx *cli.Context, listen string) (*Config, error) {
	cfg := defaultConfig(listen)
	if ctx.IsSet("config") {
		if err := cfg.readFile(ctx.Path("config")); err != nil {
			return nil, err
		}
	}
	cfg.applyFlags(ctx)
	if err := cfg.validate(); err != nil {
		return nil, err
	}
	return cfg, nil
}
