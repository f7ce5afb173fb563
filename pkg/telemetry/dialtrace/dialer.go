package dialtrace

import (
	"context"
	"net"
	"sync"
)

// DialContextFunc has the signature of net.Dialer.DialContext.
type DialContextFunc func(ctx context.Context, network, address string) (net.Conn, error)

// DialContext calls d.
func (d DialContextFunc) DialContext(ctx context.Context, network, address string) (net.Conn, error) {
	return d(ctx, network, address)
}

// NewTracedDialer returns a DialContextFunc that dials with dial and reports
// connection lifecycle events to trace.
func NewTracedDialer(dial DialContextFunc, trace DialerTrace) DialContextFunc {
	return (&tracedDialer{
		dial:  dial,
		trace: trace,
	}).DialContext
}

// DialerTrace is a set of hooks to run at various stages of a dial operation.
// Any particular hook may be nil. Functions may be called concurrently
// from different goroutines.
type DialerTrace struct {
	// GotConn is called after a successful connection is obtained.
	GotConn func(network, address string)

	// ConnError is called when an attempt to establish a connection fails.
	ConnError func(network, address string, err error)

	// CloseConn is called after a connection is closed.
	CloseConn func(network, address string)
}

type tracedDialer struct {
	dial  DialContextFunc
	trace DialerTrace
}

func (d *tracedDialer) DialContext(ctx context.Context, network, address string) (net.Conn, error) {
	conn, err := d.dial(ctx, network, address)
	if err != nil {
		if d.trace.ConnError != nil {
			d.trace.ConnError(network, address, err)
		}
		return nil, err
	}

	if d.trace.GotConn != nil {
		d.trace.GotConn(network, address)
	}

	return &tracedConn{
		Conn: conn,
		closeFunc: func() {
			if d.trace.CloseConn != nil {
				d.trace.CloseConn(network, address)
			}
		},
	}, nil
}

type tracedConn struct {
	net.Conn

	closeOnce sync.Once
	closeFunc func()
}

// Close closes the connection and reports it once, however many times Close
// is called.
func (c *tracedConn) Close() error {
	defer c.closeOnce.Do(c.closeFunc)

	return c.Conn.Close()
}
