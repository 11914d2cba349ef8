// Package codec serializes envelope bodies for the wire. The codec type
// travels in the frame header, so each side decodes with whatever the peer
// encoded with.
package codec

type CodecType byte

const (
	CodecTypeJSON   CodecType = 0
	CodecTypeBinary CodecType = 1
)

type Codec interface {
	Encode(v any) ([]byte, error)
	Decode(data []byte, v any) error
	Type() CodecType
}

// GetCodec returns the codec for the given wire identifier. Unknown
// identifiers fall back to JSON — the permissive choice, since JSON can
// decode any envelope even if suboptimally.
func GetCodec(codecType CodecType) Codec {
	switch codecType {
	case CodecTypeBinary:
		return &BinaryCodec{}
	default:
		return &JSONCodec{}
	}
}
