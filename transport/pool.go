package transport

import (
	"errors"
	"fmt"
	"net"
	"sync"

	"msgrpc/codec"
)

// ErrPoolClosed is returned by Get once the pool has been closed.
var ErrPoolClosed = errors.New("transport: pool closed")

// TransportPool hands out multiplexed transports to a single address.
//
// A buffered channel is the pool: FIFO, goroutine-safe, and blocking on
// empty comes for free. Transports are created lazily up to max — the
// pool starts empty and dials on demand.
//
// The transports channel is never closed. Borrowed transports can outlive
// Close (an in-flight call still holds one), so Put must stay safe to call
// at any point in the pool's lifecycle; it discards instead of recycling
// once the pool is closed.
type TransportPool struct {
	mu         sync.Mutex
	transports chan *ClientTransport
	done       chan struct{} // Closed by Close; wakes Gets blocked at capacity
	addr       string
	max        int
	cur        int
	closed     bool
	codecType  codec.CodecType
}

// NewTransportPool creates an empty pool for addr; connections are dialed on
// first Get.
func NewTransportPool(addr string, max int, codecType codec.CodecType) *TransportPool {
	return &TransportPool{
		transports: make(chan *ClientTransport, max),
		done:       make(chan struct{}),
		addr:       addr,
		max:        max,
		codecType:  codecType,
	}
}

// Get borrows a transport:
//  1. reuse an idle one if available, discarding any whose connection died
//  2. dial a new one while under the limit
//  3. at the limit, block until a borrow is returned or the pool closes
//
// After Close, Get returns ErrPoolClosed.
func (p *TransportPool) Get() (*ClientTransport, error) {
	for {
		select {
		case t := <-p.transports:
			if t.Closed() {
				p.discard(t)
				continue
			}
			return t, nil
		case <-p.done:
			return nil, ErrPoolClosed
		default:
		}

		p.mu.Lock()
		if p.closed {
			p.mu.Unlock()
			return nil, ErrPoolClosed
		}
		under := p.cur < p.max
		if under {
			p.cur++
		}
		p.mu.Unlock()

		if under {
			t, err := p.dial()
			if err != nil {
				p.mu.Lock()
				p.cur--
				p.mu.Unlock()
				return nil, err
			}
			return t, nil
		}

		// At capacity — wait for a return or for the pool to close
		select {
		case t := <-p.transports:
			if t.Closed() {
				p.discard(t)
				continue
			}
			return t, nil
		case <-p.done:
			return nil, ErrPoolClosed
		}
	}
}

// Put returns a borrowed transport. Dead transports are discarded so the
// next Get dials a replacement instead of recycling a broken connection.
// On a closed pool the transport is closed rather than recycled — a late
// return from an in-flight call must not revive a torn-down pool.
func (p *TransportPool) Put(t *ClientTransport) {
	if t.Closed() {
		p.discard(t)
		return
	}
	p.mu.Lock()
	if p.closed {
		p.cur--
		p.mu.Unlock()
		t.Close()
		return
	}
	// Pool capacity bounds the live transport count, so a returned
	// transport always has buffer room: this send cannot block.
	p.transports <- t
	p.mu.Unlock()
}

// Close marks the pool closed, wakes Gets blocked at capacity, and closes
// every idle transport. Transports still borrowed are closed later by the
// Put that returns them.
func (p *TransportPool) Close() error {
	p.mu.Lock()
	defer p.mu.Unlock()
	if p.closed {
		return nil
	}
	p.closed = true
	close(p.done)
	for {
		select {
		case t := <-p.transports:
			t.Close()
			p.cur--
		default:
			return nil
		}
	}
}

func (p *TransportPool) discard(t *ClientTransport) {
	t.Close()
	p.mu.Lock()
	p.cur--
	p.mu.Unlock()
}

func (p *TransportPool) dial() (*ClientTransport, error) {
	conn, err := net.Dial("tcp", p.addr)
	if err != nil {
		return nil, fmt.Errorf("transport: dial %s: %w", p.addr, err)
	}
	return NewClientTransport(conn, p.codecType), nil
}
