package protocol

import (
	"strconv"
)

// Node is the wire identity of a ring member
type Node struct {
	Id      uint64 `json:"id"`
	Address string `json:"address,omitempty"`
	// Unknown is set when only the address is known, such as the seed given on the command line
	Unknown bool `json:"unknown,omitempty"`
}

func (n *Node) GetId() uint64 {
	if n == nil {
		return 0
	}
	return n.Id
}

func (n *Node) GetAddress() string {
	if n == nil {
		return ""
	}
	return n.Address
}

func (n *Node) GetUnknown() bool {
	if n == nil {
		return false
	}
	return n.Unknown
}

func (n *Node) String() string {
	if n == nil {
		return "<nil>"
	}
	if n.Unknown {
		return n.Address + "/?"
	}
	return n.Address + "/" + strconv.FormatUint(n.Id, 10)
}
