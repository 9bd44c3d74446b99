// Package transport carries command messages over UDP as JSON datagrams.
package transport

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"net"
	"sync"
	"time"

	"github.com/edaniels/golog"

	"github.com/elektrokombinacija/diffdrive-sim/internal/command"
)

const (
	MaxMsgSize  = 65536
	DefaultPort = 5555
)

// Ack statuses.
const (
	StatusQueued   = "queued"
	StatusRejected = "rejected"
)

// Ack is the reply a listener sends for each accepted datagram.
type Ack struct {
	ID     string `json:"id,omitempty"`
	Status string `json:"status"`
	Error  string `json:"error,omitempty"`
}

// Received is a decoded message and its source address.
type Received struct {
	Msg  command.Message
	From *net.UDPAddr
}

// Listener receives command messages on a UDP port.
type Listener struct {
	conn      *net.UDPConn
	localAddr *net.UDPAddr
	logger    golog.Logger
	recvCh    chan Received
	stopCh    chan struct{}
	stopOnce  sync.Once
	wg        sync.WaitGroup
}

// Listen binds a listener to port on all IPv4 interfaces. Port 0 picks a
// free port.
func Listen(port int, logger golog.Logger) (*Listener, error) {
	addr := &net.UDPAddr{IP: net.IPv4zero, Port: port}
	conn, err := net.ListenUDP("udp4", addr)
	if err != nil {
		return nil, fmt.Errorf("failed to bind UDP: %w", err)
	}

	return &Listener{
		conn:      conn,
		localAddr: conn.LocalAddr().(*net.UDPAddr),
		logger:    logger,
		recvCh:    make(chan Received, 256),
		stopCh:    make(chan struct{}),
	}, nil
}

// LocalAddr returns the bound address.
func (l *Listener) LocalAddr() *net.UDPAddr {
	return l.localAddr
}

// Start begins receiving in the background.
func (l *Listener) Start() {
	l.wg.Add(1)
	go l.receiveLoop()
}

func (l *Listener) receiveLoop() {
	defer l.wg.Done()
	buf := make([]byte, MaxMsgSize)

	for {
		n, src, err := l.conn.ReadFromUDP(buf)
		if err != nil {
			select {
			case <-l.stopCh:
				return
			default:
				l.logger.Warnw("UDP receive error", "error", err)
				continue
			}
		}

		msg, err := command.DecodeMessage(buf[:n])
		if err != nil {
			l.logger.Warnw("dropping malformed datagram", "from", src.String(), "error", err)
			_ = l.Reply(Ack{Status: StatusRejected, Error: err.Error()}, src)
			continue
		}

		select {
		case l.recvCh <- Received{Msg: msg, From: src}:
		default:
			l.logger.Warnw("receive channel full, dropping message", "from", src.String(), "command", msg.Command)
		}
	}
}

// Recv returns the channel of received messages.
func (l *Listener) Recv() <-chan Received {
	return l.recvCh
}

// Reply sends an ack to addr.
func (l *Listener) Reply(ack Ack, addr *net.UDPAddr) error {
	data, err := json.Marshal(ack)
	if err != nil {
		return fmt.Errorf("failed to marshal ack: %w", err)
	}
	if _, err := l.conn.WriteToUDP(data, addr); err != nil {
		return fmt.Errorf("failed to send to %s: %w", addr, err)
	}
	return nil
}

// Sink accepts command messages.
type Sink interface {
	SubmitMessage(m command.Message) (command.Command, error)
}

// AckFor submits m to sink and builds the matching ack.
func AckFor(sink Sink, m command.Message) Ack {
	c, err := sink.SubmitMessage(m)
	if err != nil {
		return Ack{ID: m.ID, Status: StatusRejected, Error: err.Error()}
	}
	return Ack{ID: c.ID().String(), Status: StatusQueued}
}

// Serve submits every received message to sink and replies with its ack
// until ctx is done or the listener stops.
func (l *Listener) Serve(ctx context.Context, sink Sink) {
	for {
		select {
		case <-ctx.Done():
			return
		case <-l.stopCh:
			return
		case recv := <-l.recvCh:
			ack := AckFor(sink, recv.Msg)
			if err := l.Reply(ack, recv.From); err != nil {
				l.logger.Warnw("failed to send ack", "to", recv.From.String(), "error", err)
			}
		}
	}
}

// Stop closes the socket and waits for the receive loop to exit.
func (l *Listener) Stop() {
	l.stopOnce.Do(func() {
		close(l.stopCh)
		l.conn.Close()
		l.wg.Wait()
	})
}

// Send writes one message to addr and returns without waiting for an ack.
func Send(addr string, msg command.Message) error {
	conn, err := dial(addr)
	if err != nil {
		return err
	}
	defer conn.Close()
	return write(conn, msg)
}

// Request writes one message to addr and waits for the listener's ack.
func Request(ctx context.Context, addr string, msg command.Message) (Ack, error) {
	conn, err := dial(addr)
	if err != nil {
		return Ack{}, err
	}
	defer conn.Close()

	if err := write(conn, msg); err != nil {
		return Ack{}, err
	}

	deadline, ok := ctx.Deadline()
	if !ok {
		deadline = time.Now().Add(2 * time.Second)
	}
	if err := conn.SetReadDeadline(deadline); err != nil {
		return Ack{}, err
	}

	buf := make([]byte, MaxMsgSize)
	n, err := conn.Read(buf)
	if err != nil {
		var netErr net.Error
		if errors.As(err, &netErr) && netErr.Timeout() {
			return Ack{}, fmt.Errorf("no ack from %s: %w", addr, context.DeadlineExceeded)
		}
		return Ack{}, fmt.Errorf("read ack: %w", err)
	}

	var ack Ack
	if err := json.Unmarshal(buf[:n], &ack); err != nil {
		return Ack{}, fmt.Errorf("decode ack: %w", err)
	}
	return ack, nil
}

func dial(addr string) (*net.UDPConn, error) {
	raddr, err := net.ResolveUDPAddr("udp4", addr)
	if err != nil {
		return nil, fmt.Errorf("resolve %s: %w", addr, err)
	}
	conn, err := net.DialUDP("udp4", nil, raddr)
	if err != nil {
		return nil, fmt.Errorf("dial %s: %w", addr, err)
	}
	return conn, nil
}

func write(conn *net.UDPConn, msg command.Message) error {
	data, err := msg.Encode()
	if err != nil {
		return fmt.Errorf("failed to marshal message: %w", err)
	}
	if len(data) > MaxMsgSize {
		return fmt.Errorf("message of %d bytes exceeds %d", len(data), MaxMsgSize)
	}
	if _, err := conn.Write(data); err != nil {
		return fmt.Errorf("failed to send to %s: %w", conn.RemoteAddr(), err)
	}
	return nil
}
