// Package listener is the transport loop: receive a datagram, decode it,
// route it, dispatch the results. UDP preserves message boundaries, so one
// read is always one whole message.
package listener

import (
	"context"
	"errors"
	"fmt"
	"net"
	"syscall"
	"time"

	"github.com/pixil98/go-log"
	"github.com/pixil98/go-worldsync/internal/dispatch"
	"github.com/pixil98/go-worldsync/internal/game"
	"github.com/pixil98/go-worldsync/internal/protocol"
)

const (
	// readPollInterval bounds how long a blocked read can delay noticing
	// a shutdown.
	readPollInterval = 500 * time.Millisecond

	DefaultBufferSize = 2048
)

type UDPListener struct {
	host    string
	port    uint16
	bufSize int

	router     *game.Router
	dispatcher *dispatch.Dispatcher
}

func NewUDPListener(host string, port uint16, bufSize int, router *game.Router, dispatcher *dispatch.Dispatcher) *UDPListener {
	if bufSize <= 0 {
		bufSize = DefaultBufferSize
	}
	return &UDPListener{
		host:       host,
		port:       port,
		bufSize:    bufSize,
		router:     router,
		dispatcher: dispatcher,
	}
}

// Start runs the receive loop until the context is canceled. Handling is
// single-threaded: decode, route, dispatch, repeat. The router's own lock
// already serializes state, and one goroutine keeps per-sender arrival
// order intact without extra machinery.
func (l *UDPListener) Start(ctx context.Context) error {
	logger := log.GetLogger(ctx)

	addr := &net.UDPAddr{IP: net.ParseIP(l.host), Port: int(l.port)}
	conn, err := net.ListenUDP("udp", addr)
	if err != nil {
		if errors.Is(err, syscall.EADDRINUSE) {
			return fmt.Errorf("port %d is already in use (another server running?)", l.port)
		}
		return fmt.Errorf("listening on udp port %d: %w", l.port, err)
	}
	defer conn.Close()

	l.dispatcher.Bind(conn)
	logger.Infof("udp listener on %s", conn.LocalAddr())

	buf := make([]byte, l.bufSize)
	for {
		select {
		case <-ctx.Done():
			return l.shutdown(ctx, conn)
		default:
		}

		if err := conn.SetReadDeadline(time.Now().Add(readPollInterval)); err != nil {
			return fmt.Errorf("setting read deadline: %w", err)
		}

		n, sender, err := conn.ReadFromUDP(buf)
		if err != nil {
			var netErr net.Error
			if errors.As(err, &netErr) && netErr.Timeout() {
				continue
			}
			return fmt.Errorf("reading datagram: %w", err)
		}
		if n == 0 {
			continue
		}

		env, err := protocol.Decode(buf[:n])
		if err != nil {
			// Can't route without an envelope; report straight to the
			// source address and move on.
			l.replyError(conn, sender, err)
			logger.Debugf("dropping undecodable datagram from %s: %v", sender, err)
			continue
		}

		dirs := l.router.HandleMessage(env, sender)
		if err := l.dispatcher.Dispatch(ctx, dirs); err != nil {
			logger.WithError(err).Warn("dispatching directives")
		}
	}
}

// shutdown flushes state and announces departures before the socket goes
// away.
func (l *UDPListener) shutdown(ctx context.Context, conn *net.UDPConn) error {
	// The parent context is done; give the goodbyes their own deadline.
	sendCtx, cancel := context.WithTimeout(context.Background(), time.Second)
	defer cancel()

	dirs := l.router.Shutdown()
	if err := l.dispatcher.Dispatch(sendCtx, dirs); err != nil {
		log.GetLogger(ctx).WithError(err).Warn("dispatching shutdown directives")
	}
	return nil
}

func (l *UDPListener) replyError(conn *net.UDPConn, sender *net.UDPAddr, cause error) {
	data, err := protocol.Encode(protocol.NewErrorResponse(cause.Error()))
	if err != nil {
		return
	}
	// Best effort; the sender may not even speak the protocol.
	_, _ = conn.WriteToUDP(data, sender)
}
