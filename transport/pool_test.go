package transport

import (
	"testing"
	"time"

	"msgrpc/codec"
	"msgrpc/server"
)

func TestTransportPoolReuse(t *testing.T) {
	svr := server.NewServer()
	if err := svr.Register(&Arith{}); err != nil {
		t.Fatal(err)
	}
	go svr.Serve("tcp", ":9004", "", nil)
	defer svr.Shutdown(3 * time.Second)
	time.Sleep(100 * time.Millisecond)

	p := NewTransportPool("127.0.0.1:9004", 2, codec.CodecTypeJSON)
	defer p.Close()

	t1, err := p.Get()
	if err != nil {
		t.Fatal(err)
	}
	p.Put(t1)

	t2, err := p.Get()
	if err != nil {
		t.Fatal(err)
	}
	if t2 != t1 {
		t.Fatal("expect the returned transport to be reused")
	}
	p.Put(t2)
}

func TestTransportPoolBlocksAtCapacity(t *testing.T) {
	svr := server.NewServer()
	if err := svr.Register(&Arith{}); err != nil {
		t.Fatal(err)
	}
	go svr.Serve("tcp", ":9005", "", nil)
	defer svr.Shutdown(3 * time.Second)
	time.Sleep(100 * time.Millisecond)

	p := NewTransportPool("127.0.0.1:9005", 1, codec.CodecTypeJSON)
	defer p.Close()

	t1, err := p.Get()
	if err != nil {
		t.Fatal(err)
	}

	got := make(chan *ClientTransport, 1)
	go func() {
		tr, err := p.Get()
		if err != nil {
			t.Error(err)
			return
		}
		got <- tr
	}()

	select {
	case <-got:
		t.Fatal("Get should block while the only transport is borrowed")
	case <-time.After(100 * time.Millisecond):
	}

	p.Put(t1)
	select {
	case tr := <-got:
		p.Put(tr)
	case <-time.After(2 * time.Second):
		t.Fatal("Get never unblocked after Put")
	}
}

func TestTransportPoolPutAfterClose(t *testing.T) {
	svr := server.NewServer()
	if err := svr.Register(&Arith{}); err != nil {
		t.Fatal(err)
	}
	go svr.Serve("tcp", ":9007", "", nil)
	defer svr.Shutdown(3 * time.Second)
	time.Sleep(100 * time.Millisecond)

	p := NewTransportPool("127.0.0.1:9007", 2, codec.CodecTypeJSON)

	t1, err := p.Get()
	if err != nil {
		t.Fatal(err)
	}
	if err := p.Close(); err != nil {
		t.Fatal(err)
	}

	// A transport still borrowed during Close comes back later — the pool
	// must absorb it, not panic
	p.Put(t1)
	if !t1.Closed() {
		t.Fatal("transport returned after Close should be closed, not recycled")
	}

	if _, err := p.Get(); err != ErrPoolClosed {
		t.Fatalf("Get after Close: expect ErrPoolClosed, got %v", err)
	}
}

func TestTransportPoolCloseUnblocksGet(t *testing.T) {
	svr := server.NewServer()
	if err := svr.Register(&Arith{}); err != nil {
		t.Fatal(err)
	}
	go svr.Serve("tcp", ":9008", "", nil)
	defer svr.Shutdown(3 * time.Second)
	time.Sleep(100 * time.Millisecond)

	p := NewTransportPool("127.0.0.1:9008", 1, codec.CodecTypeJSON)

	t1, err := p.Get()
	if err != nil {
		t.Fatal(err)
	}

	errCh := make(chan error, 1)
	go func() {
		_, err := p.Get()
		errCh <- err
	}()

	// Let the second Get reach the blocking branch, then close the pool
	time.Sleep(100 * time.Millisecond)
	if err := p.Close(); err != nil {
		t.Fatal(err)
	}

	select {
	case err := <-errCh:
		if err != ErrPoolClosed {
			t.Fatalf("blocked Get after Close: expect ErrPoolClosed, got %v", err)
		}
	case <-time.After(2 * time.Second):
		t.Fatal("Get stayed blocked after Close")
	}

	p.Put(t1)
}

func TestTransportPoolDiscardsDeadTransports(t *testing.T) {
	svr := server.NewServer()
	if err := svr.Register(&Arith{}); err != nil {
		t.Fatal(err)
	}
	go svr.Serve("tcp", ":9006", "", nil)
	defer svr.Shutdown(3 * time.Second)
	time.Sleep(100 * time.Millisecond)

	p := NewTransportPool("127.0.0.1:9006", 1, codec.CodecTypeJSON)
	defer p.Close()

	t1, err := p.Get()
	if err != nil {
		t.Fatal(err)
	}
	t1.Close()
	p.Put(t1)

	t2, err := p.Get()
	if err != nil {
		t.Fatal(err)
	}
	if t2 == t1 {
		t.Fatal("expect a fresh transport after the old one died")
	}
	if t2.Closed() {
		t.Fatal("fresh transport should not be closed")
	}
	p.Put(t2)
}
