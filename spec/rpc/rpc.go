package rpc

import (
	"go.miragespace.co/chordring/spec/protocol"
)

// ChordClient calls the ring RPC contract on the node attached with WithNode
type ChordClient interface {
	protocol.VNodeService
}
