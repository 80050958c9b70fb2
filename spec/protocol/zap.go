package protocol

import "go.uber.org/zap/zapcore"

var _ zapcore.ObjectMarshaler = (*Node)(nil)

func (n *Node) MarshalLogObject(enc zapcore.ObjectEncoder) error {
	if n.GetAddress() != "" {
		enc.AddString("address", n.GetAddress())
	}
	if n.GetUnknown() {
		enc.AddBool("unknown", true)
		return nil
	}
	enc.AddUint64("id", n.GetId())
	return nil
}
