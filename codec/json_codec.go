package codec

import "encoding/json"

// JSONCodec is the default body encoding: readable on the wire and
// cross-language, at the cost of size and encode speed relative to the
// binary codec.
type JSONCodec struct{}

func (c *JSONCodec) Encode(v any) ([]byte, error) { return json.Marshal(v) }

func (c *JSONCodec) Decode(data []byte, v any) error { return json.Unmarshal(data, v) }

func (c *JSONCodec) Type() CodecType { return CodecTypeJSON }
