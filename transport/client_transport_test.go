package transport

import (
	"encoding/json"
	"net"
	"sync"
	"testing"
	"time"

	"msgrpc/codec"
	"msgrpc/dispatch"
	"msgrpc/message"
	"msgrpc/server"
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

type tickEvent struct {
	N int `json:"n"`
}

func (*tickEvent) TypeName() message.TypeName { return "tr.tick" }

// Serial requests over a single connection.
func TestClientTransportSerial(t *testing.T) {
	svr := server.NewServer()
	if err := svr.Register(&Arith{}); err != nil {
		t.Fatal(err)
	}
	go svr.Serve("tcp", ":9001", "", nil)
	time.Sleep(100 * time.Millisecond)

	conn, err := net.Dial("tcp", ":9001")
	if err != nil {
		t.Fatal(err)
	}

	ct := NewClientTransport(conn, codec.CodecTypeJSON)

	cases := []struct {
		a, b, expect int
	}{
		{1, 2, 3},
		{10, 20, 30},
		{100, 200, 300},
	}

	for _, tc := range cases {
		_, ch, err := ct.Send("Arith.Add", &Args{A: tc.a, B: tc.b})
		if err != nil {
			t.Fatal(err)
		}

		resp := <-ch
		if resp.Error != "" {
			t.Fatalf("server error: %s", resp.Error)
		}

		var reply Reply
		if err := json.Unmarshal(resp.Payload, &reply); err != nil {
			t.Fatal(err)
		}

		if reply.Result != tc.expect {
			t.Fatalf("expect %d, got %d", tc.expect, reply.Result)
		}
	}
}

// Concurrent requests over a single connection (the multiplexing core).
func TestClientTransportConcurrent(t *testing.T) {
	svr := server.NewServer()
	if err := svr.Register(&Arith{}); err != nil {
		t.Fatal(err)
	}
	go svr.Serve("tcp", ":9002", "", nil)
	time.Sleep(100 * time.Millisecond)

	conn, err := net.Dial("tcp", ":9002")
	if err != nil {
		t.Fatal(err)
	}

	ct := NewClientTransport(conn, codec.CodecTypeJSON)

	// 50 concurrent requests
	var wg sync.WaitGroup
	for i := 0; i < 50; i++ {
		wg.Add(1)
		go func(n int) {
			defer wg.Done()

			_, ch, err := ct.Send("Arith.Add", &Args{A: n, B: n})
			if err != nil {
				t.Errorf("send failed: %v", err)
				return
			}

			resp := <-ch
			if resp.Error != "" {
				t.Errorf("server error: %s", resp.Error)
				return
			}

			var reply Reply
			if err := json.Unmarshal(resp.Payload, &reply); err != nil {
				t.Errorf("unmarshal failed: %v", err)
				return
			}

			if reply.Result != n*2 {
				t.Errorf("expect %d, got %d", n*2, reply.Result)
			}
		}(i)
	}

	wg.Wait()
}

// One-way notify frames reach the server's dispatcher.
func TestClientTransportNotify(t *testing.T) {
	message.MustRegister("tr.tick", func() message.Message { return &tickEvent{} })
	defer message.Unregister("tr.tick")

	svr := server.NewServer()
	got := make(chan int, 1)
	err := dispatch.Subscribe(svr.Dispatcher(), "tr.tick", func(e *tickEvent) error {
		got <- e.N
		return nil
	})
	if err != nil {
		t.Fatal(err)
	}

	go svr.Serve("tcp", ":9003", "", nil)
	time.Sleep(100 * time.Millisecond)

	conn, err := net.Dial("tcp", ":9003")
	if err != nil {
		t.Fatal(err)
	}

	ct := NewClientTransport(conn, codec.CodecTypeJSON)
	if err := ct.Notify(&tickEvent{N: 42}); err != nil {
		t.Fatal(err)
	}

	select {
	case n := <-got:
		if n != 42 {
			t.Fatalf("expect 42, got %d", n)
		}
	case <-time.After(2 * time.Second):
		t.Fatal("notify never arrived")
	}
}
