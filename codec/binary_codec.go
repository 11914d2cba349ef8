package codec

import (
	"encoding/binary"
	"errors"
	"msgrpc/message"
)

// BinaryCodec serializes an Envelope as length-prefixed fields:
// short strings (ID, ServiceMethod, PayloadType, Error) use 2-byte lengths,
// the payload uses a 4-byte length.
type BinaryCodec struct{}

func (c *BinaryCodec) Encode(v any) ([]byte, error) {
	// v must be *Envelope
	env, ok := v.(*message.Envelope)
	if !ok {
		return nil, errors.New("BinaryCodec: v must be *Envelope")
	}
	total := 2 + len(env.ID) +
		2 + len(env.ServiceMethod) +
		2 + len(env.PayloadType) +
		4 + len(env.Payload) +
		2 + len(env.Error)
	buf := make([]byte, total)

	offset := 0
	offset = putString(buf, offset, env.ID)
	offset = putString(buf, offset, env.ServiceMethod)
	offset = putString(buf, offset, string(env.PayloadType))

	// Payload length -- 4 bytes
	binary.BigEndian.PutUint32(buf[offset:offset+4], uint32(len(env.Payload)))
	offset += 4
	copy(buf[offset:offset+len(env.Payload)], env.Payload)
	offset += len(env.Payload)

	putString(buf, offset, env.Error)
	return buf, nil
}

// errTruncated signals a body whose length prefixes point past the end of
// the data. The frame layer already guarantees a complete body, so this
// means a corrupt or non-conforming peer, never a short read.
var errTruncated = errors.New("BinaryCodec: truncated or malformed body")

func (c *BinaryCodec) Decode(data []byte, v any) error {
	// v must be *Envelope
	env, ok := v.(*message.Envelope)
	if !ok {
		return errors.New("BinaryCodec: v must be *Envelope")
	}

	var err error
	offset := 0
	if env.ID, offset, err = getString(data, offset); err != nil {
		return err
	}
	if env.ServiceMethod, offset, err = getString(data, offset); err != nil {
		return err
	}

	var payloadType string
	if payloadType, offset, err = getString(data, offset); err != nil {
		return err
	}
	env.PayloadType = message.TypeName(payloadType)

	if len(data) < offset+4 {
		return errTruncated
	}
	payloadLen := int(binary.BigEndian.Uint32(data[offset : offset+4]))
	offset += 4
	if payloadLen < 0 || len(data) < offset+payloadLen {
		return errTruncated
	}
	env.Payload = make([]byte, payloadLen)
	copy(env.Payload, data[offset:offset+payloadLen])
	offset += payloadLen

	env.Error, _, err = getString(data, offset)
	return err
}

func (c *BinaryCodec) Type() CodecType {
	return CodecTypeBinary
}

// putString writes a 2-byte length followed by the string bytes.
func putString(buf []byte, offset int, s string) int {
	binary.BigEndian.PutUint16(buf[offset:offset+2], uint16(len(s)))
	offset += 2
	copy(buf[offset:offset+len(s)], s)
	return offset + len(s)
}

// getString reads a 2-byte length followed by the string bytes, validating
// both against the remaining data.
func getString(data []byte, offset int) (string, int, error) {
	if len(data) < offset+2 {
		return "", 0, errTruncated
	}
	strLen := int(binary.BigEndian.Uint16(data[offset : offset+2]))
	offset += 2
	if len(data) < offset+strLen {
		return "", 0, errTruncated
	}
	return string(data[offset : offset+strLen]), offset + strLen, nil
}
