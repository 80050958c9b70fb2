package chord

import (
	"testing"

	"go.miragespace.co/chordring/spec/chord"
	"go.miragespace.co/chordring/spec/protocol"

	"github.com/stretchr/testify/require"
	"go.uber.org/zap/zaptest"
)

func TestNodeConfigValidate(t *testing.T) {
	valid := func() NodeConfig {
		conf := DefaultNodeConfig()
		conf.Logger = zaptest.NewLogger(t)
		conf.Identity = &protocol.Node{Id: 42, Address: "127.0.0.1:1234"}
		return conf
	}

	cases := []struct {
		name   string
		modify func(*NodeConfig)
		valid  bool
	}{
		{"default", func(*NodeConfig) {}, true},
		{"nil logger", func(c *NodeConfig) { c.Logger = nil }, false},
		{"nil identity", func(c *NodeConfig) { c.Identity = nil }, false},
		{"unknown identity", func(c *NodeConfig) { c.Identity.Unknown = true }, false},
		{"zero space", func(c *NodeConfig) { c.Space = 0 }, false},
		{"oversized space", func(c *NodeConfig) { c.Space = 65 }, false},
		{"full space", func(c *NodeConfig) { c.Space = 64; c.Identity.Id = ^uint64(0) }, true},
		{"id outside space", func(c *NodeConfig) { c.Space = chord.Space(3); c.Identity.Id = 8 }, false},
		{"id at edge of space", func(c *NodeConfig) { c.Space = chord.Space(3); c.Identity.Id = 7 }, true},
		{"empty successor list", func(c *NodeConfig) { c.SuccessorListSize = 0 }, false},
		{"zero threshold", func(c *NodeConfig) { c.StabilizeFailureThreshold = 0 }, false},
		{"zero stabilize interval", func(c *NodeConfig) { c.StabilizeInterval = 0 }, false},
		{"zero fix finger interval", func(c *NodeConfig) { c.FixFingerInterval = 0 }, false},
		{"zero predecessor interval", func(c *NodeConfig) { c.PredecessorCheckInterval = 0 }, false},
		{"negative timeout", func(c *NodeConfig) { c.RPCTimeout = -1 }, false},
	}

	for _, tc := range cases {
		tc := tc
		t.Run(tc.name, func(t *testing.T) {
			as := require.New(t)
			conf := valid()
			tc.modify(&conf)
			if tc.valid {
				as.NoError(conf.Validate())
			} else {
				as.Error(conf.Validate())
			}
		})
	}

	require.Panics(t, func() {
		NewLocalNode(NodeConfig{})
	})
}

func TestDefaultTimeouts(t *testing.T) {
	as := require.New(t)

	conf := DefaultNodeConfig()
	as.LessOrEqual(conf.RPCTimeout, conf.StabilizeInterval)
	as.LessOrEqual(conf.RPCTimeout, conf.FixFingerInterval)
	as.LessOrEqual(conf.RPCTimeout, conf.PredecessorCheckInterval)
}
