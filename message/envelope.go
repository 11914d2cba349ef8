package message

import "github.com/google/uuid"

// EnvelopeType is the registered type name of the wire envelope itself.
const EnvelopeType TypeName = "msgrpc.envelope"

// Envelope carries the data for a single RPC request, response, or one-way
// notify. It gets serialized by the codec layer and wrapped in a protocol
// frame for transmission over TCP.
//
//   - On request:  ServiceMethod is set, Payload contains the serialized args.
//   - On response: Payload contains the serialized reply, Error is non-empty
//     if the server-side handler returned an error.
//   - On notify:   PayloadType names the registered message type of Payload;
//     the server routes it through its dispatcher, no response is sent.
type Envelope struct {
	ID            string   // Unique per message, for correlation in logs
	ServiceMethod string   // Format: "ServiceName.MethodName", e.g., "Arith.Add"
	PayloadType   TypeName // Set on notify frames, empty for request/response
	Error         string   // Non-empty if the server-side handler returned an error
	Payload       []byte   // Serialized args, reply, or typed message as JSON bytes
}

// TypeName implements Message, so an envelope can itself flow through
// generalized callbacks (client-side async completion uses this).
func (e *Envelope) TypeName() TypeName { return EnvelopeType }

// NewEnvelope builds a request envelope with a fresh ID.
func NewEnvelope(serviceMethod string, payload []byte) *Envelope {
	return &Envelope{
		ID:            uuid.NewString(),
		ServiceMethod: serviceMethod,
		Payload:       payload,
	}
}

// NewNotifyEnvelope builds a one-way envelope carrying a typed payload.
func NewNotifyEnvelope(payloadType TypeName, payload []byte) *Envelope {
	return &Envelope{
		ID:          uuid.NewString(),
		PayloadType: payloadType,
		Payload:     payload,
	}
}

func init() {
	MustRegister(EnvelopeType, func() Message { return &Envelope{} })
}
