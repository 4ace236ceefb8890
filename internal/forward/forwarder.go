package forward

import (
	"context"
	"fmt"
	"net"
	"sync"

	"github.com/hypebeast/go-osc/osc"

	"github.com/ayusman/kinectosc/internal/dispatch"
)

// Stats holds forwarder counters.
type Stats struct {
	Batches  uint64 `json:"batches"`
	Messages uint64 `json:"messages"`
	Errors   uint64 `json:"errors"`
}

// Forwarder sends message batches over one long-lived UDP sender.
// The sender is dialled on first use and replaced when the target changes.
type Forwarder struct {
	mu     sync.Mutex
	target Target
	conn   net.Conn
	stats  Stats
	dialer net.Dialer
}

// NewForwarder creates a Forwarder with no target. Sends are no-ops until
// SetTarget is called.
func NewForwarder() *Forwarder {
	return &Forwarder{}
}

// SetTarget changes the destination of future batches.
func (f *Forwarder) SetTarget(t Target) {
	f.mu.Lock()
	defer f.mu.Unlock()

	if t == f.target {
		return
	}
	f.target = t
	f.dropConn()
}

// Target returns the current target and whether one is set.
func (f *Forwarder) Target() (Target, bool) {
	f.mu.Lock()
	defer f.mu.Unlock()
	return f.target, f.target.IsSet()
}

// Stats returns a copy of the counters.
func (f *Forwarder) Stats() Stats {
	f.mu.Lock()
	defer f.mu.Unlock()
	return f.stats
}

// Send encodes every message as an OSC packet with arguments (gesture, value)
// and writes them in order. The sender is held for the whole batch.
// Without a target, Send does nothing and returns nil.
func (f *Forwarder) Send(ctx context.Context, msgs []dispatch.Message) error {
	if len(msgs) == 0 {
		return nil
	}

	f.mu.Lock()
	defer f.mu.Unlock()

	if !f.target.IsSet() {
		return nil
	}
	if err := ctx.Err(); err != nil {
		return err
	}

	conn, err := f.connLocked(ctx)
	if err != nil {
		f.stats.Errors++
		return err
	}

	// A zero deadline clears any previous one.
	deadline, _ := ctx.Deadline()
	if err := conn.SetWriteDeadline(deadline); err != nil {
		f.stats.Errors++
		f.dropConn()
		return fmt.Errorf("set write deadline for %s: %w", f.target, err)
	}

	f.stats.Batches++
	for _, m := range msgs {
		if err := ctx.Err(); err != nil {
			return err
		}

		packet, err := Encode(m)
		if err != nil {
			f.stats.Errors++
			return err
		}

		if _, err := conn.Write(packet); err != nil {
			f.stats.Errors++
			f.dropConn()
			return fmt.Errorf("send %s to %s: %w", m.Address, f.target, err)
		}
		f.stats.Messages++
	}

	return nil
}

// Close releases the sender. The forwarder can still be used afterwards.
func (f *Forwarder) Close() error {
	f.mu.Lock()
	defer f.mu.Unlock()

	if f.conn == nil {
		return nil
	}
	err := f.conn.Close()
	f.conn = nil
	return err
}

func (f *Forwarder) connLocked(ctx context.Context) (net.Conn, error) {
	if f.conn != nil {
		return f.conn, nil
	}

	conn, err := f.dialer.DialContext(ctx, "udp", f.target.String())
	if err != nil {
		return nil, fmt.Errorf("dial %s: %w", f.target, err)
	}
	f.conn = conn
	return conn, nil
}

func (f *Forwarder) dropConn() {
	if f.conn != nil {
		f.conn.Close()
		f.conn = nil
	}
}

// Encode returns the OSC wire form of m.
func Encode(m dispatch.Message) ([]byte, error) {
	msg := osc.NewMessage(m.Address, m.Gesture, m.Value)
	data, err := msg.MarshalBinary()
	if err != nil {
		return nil, fmt.Errorf("encode %s: %w", m.Address, err)
	}
	return data, nil
}
