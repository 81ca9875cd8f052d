package rpc

import (
	"encoding/json"

	"connectrpc.com/connect"
)

// jsonCodec serves plain Go structs as application/json. It replaces
// connect's protojson codec, so messages need no generated code.
type jsonCodec struct{}

var _ connect.Codec = jsonCodec{}

func (jsonCodec) Name() string { return "json" }

func (jsonCodec) Marshal(msg any) ([]byte, error) {
	return json.Marshal(msg)
}

func (jsonCodec) Unmarshal(data []byte, msg any) error {
	if len(data) == 0 {
		return nil
	}
	return json.Unmarshal(data, msg)
}

// Codec returns the option that installs the JSON codec on a handler or client.
func Codec() connect.Option {
	return connect.WithCodec(jsonCodec{})
}
