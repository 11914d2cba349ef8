package server

import (
	"encoding/json"
	"net"
	"sync/atomic"
	"testing"
	"time"

	"msgrpc/codec"
	"msgrpc/dispatch"
	"msgrpc/message"
	"msgrpc/protocol"
)

type Args struct {
	A, B int
}

type Reply struct {
	Result int
}

type Arith struct{}

func (a *Arith) Add(args *Args, reply *Reply) error {
	reply.Result = args.A + args.B
	return nil
}

type heartbeatEvent struct {
	Node string `json:"node"`
}

func (*heartbeatEvent) TypeName() message.TypeName { return "srv.heartbeat" }

func TestServer(t *testing.T) {
	// Start a server
	svr := NewServer()

	if err := svr.Register(&Arith{}); err != nil {
		t.Fatalf("Failed to register service: %v", err)
	}

	go svr.Serve("tcp", ":8888", "", nil)
	time.Sleep(100 * time.Millisecond)

	conn, err := net.Dial("tcp", ":8888")
	if err != nil {
		t.Fatal(err)
	}
	defer conn.Close()

	// Hand-roll one request frame to exercise the full server pipeline
	payload, err := json.Marshal(&Args{1, 2})
	if err != nil {
		t.Fatal(err)
	}

	env := message.Envelope{
		ID:            "req-1",
		ServiceMethod: "Arith.Add",
		Payload:       payload,
	}

	cdc := codec.GetCodec(codec.CodecType(protocol.CodecTypeJSON))
	body, err := cdc.Encode(&env)
	if err != nil {
		t.Fatal(err)
	}

	header := protocol.Header{
		CodecType: protocol.CodecTypeJSON,
		MsgType:   protocol.MsgTypeRequest,
		Seq:       uint32(123),
		BodyLen:   uint32(len(body)),
	}
	if err := protocol.Encode(conn, &header, body); err != nil {
		t.Fatal(err)
	}

	replyHeader, responseBody, err := protocol.Decode(conn)
	if err != nil {
		t.Fatal(err)
	}

	if replyHeader.Seq != header.Seq {
		t.Fatalf("Expect replyHeader with seq: %v, got %v", header.Seq, replyHeader.Seq)
	}
	if replyHeader.CodecType != header.CodecType {
		t.Fatalf("Expect replyHeader with CodecType: %v, got %v", header.CodecType, replyHeader.CodecType)
	}
	if replyHeader.MsgType != protocol.MsgTypeResponse {
		t.Fatalf("Expect replyHeader with MsgType: %v, got %v", protocol.MsgTypeResponse, replyHeader.MsgType)
	}

	responseEnv := message.Envelope{}
	if err := cdc.Decode(responseBody, &responseEnv); err != nil {
		t.Fatal(err)
	}
	if responseEnv.ID != "req-1" {
		t.Fatalf("Expect response ID req-1, got %v", responseEnv.ID)
	}

	var reply Reply
	if err := json.Unmarshal(responseEnv.Payload, &reply); err != nil {
		t.Fatal(err)
	}
	if reply.Result != 3 {
		t.Fatalf("Expect result = 3, got %v", reply.Result)
	}
}

func TestServerUnknownService(t *testing.T) {
	svr := NewServer()
	resp := svr.businessHandler(nil, &message.Envelope{ID: "x", ServiceMethod: "Nobody.Add"})
	if resp.Error == "" {
		t.Fatal("expect error for unknown service")
	}
}

// A body the binary codec cannot parse must yield an error envelope on the
// same seq, not kill the connection or the process.
func TestServerMalformedRequestBody(t *testing.T) {
	svr := NewServer()
	if err := svr.Register(&Arith{}); err != nil {
		t.Fatal(err)
	}
	go svr.Serve("tcp", ":8892", "", nil)
	time.Sleep(100 * time.Millisecond)

	conn, err := net.Dial("tcp", ":8892")
	if err != nil {
		t.Fatal(err)
	}
	defer conn.Close()

	// Garbage bytes whose length prefixes point past the end of the body
	body := []byte{0xff, 0xff, 0x01, 0x02, 0x03}
	header := protocol.Header{
		CodecType: protocol.CodecTypeBinary,
		MsgType:   protocol.MsgTypeRequest,
		Seq:       uint32(77),
		BodyLen:   uint32(len(body)),
	}
	if err := protocol.Encode(conn, &header, body); err != nil {
		t.Fatal(err)
	}

	replyHeader, responseBody, err := protocol.Decode(conn)
	if err != nil {
		t.Fatal(err)
	}
	if replyHeader.Seq != header.Seq {
		t.Fatalf("Expect replyHeader with seq: %v, got %v", header.Seq, replyHeader.Seq)
	}

	responseEnv := message.Envelope{}
	cdc := codec.GetCodec(codec.CodecTypeBinary)
	if err := cdc.Decode(responseBody, &responseEnv); err != nil {
		t.Fatal(err)
	}
	if responseEnv.Error == "" {
		t.Fatal("expect an error envelope for a malformed request body")
	}
}

func TestServerNotifyDispatch(t *testing.T) {
	message.MustRegister("srv.heartbeat", func() message.Message { return &heartbeatEvent{} })
	defer message.Unregister("srv.heartbeat")

	svr := NewServer()

	var handled atomic.Int64
	gotNode := make(chan string, 1)
	err := dispatch.Subscribe(svr.Dispatcher(), "srv.heartbeat", func(hb *heartbeatEvent) error {
		handled.Add(1)
		gotNode <- hb.Node
		return nil
	})
	if err != nil {
		t.Fatal(err)
	}

	go svr.Serve("tcp", ":8891", "", nil)
	time.Sleep(100 * time.Millisecond)

	conn, err := net.Dial("tcp", ":8891")
	if err != nil {
		t.Fatal(err)
	}
	defer conn.Close()

	payload, _ := json.Marshal(&heartbeatEvent{Node: "node-7"})
	env := message.NewNotifyEnvelope("srv.heartbeat", payload)

	cdc := codec.GetCodec(codec.CodecTypeJSON)
	body, err := cdc.Encode(env)
	if err != nil {
		t.Fatal(err)
	}

	header := protocol.Header{
		CodecType: protocol.CodecTypeJSON,
		MsgType:   protocol.MsgTypeNotify,
		Seq:       1,
		BodyLen:   uint32(len(body)),
	}
	if err := protocol.Encode(conn, &header, body); err != nil {
		t.Fatal(err)
	}

	select {
	case node := <-gotNode:
		if node != "node-7" {
			t.Fatalf("expect node-7, got %s", node)
		}
	case <-time.After(2 * time.Second):
		t.Fatal("notify was never dispatched")
	}

	if handled.Load() != 1 {
		t.Fatalf("expect exactly 1 dispatch, got %d", handled.Load())
	}
}
