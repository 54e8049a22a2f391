package sink

import (
	"context"
	"encoding/json"
	"net"
	"sync"
	"time"

	"github.com/benbjohnson/clock"
	"github.com/pkg/errors"

	"go.viam.com/usercommand/usercommand"
)

const defaultWriteTimeout = time.Second

// UDP sends each command as a single JSON datagram.
type UDP struct {
	mu    sync.Mutex
	conn  net.Conn
	clock clock.Clock
}

// NewUDP dials the planner at addr ("host:port").
func NewUDP(addr string, clk clock.Clock) (*UDP, error) {
	conn, err := net.Dial("udp", addr)
	if err != nil {
		return nil, errors.Wrapf(err, "cannot dial planner at %q", addr)
	}
	if clk == nil {
		clk = clock.New()
	}
	return &UDP{conn: conn, clock: clk}, nil
}

// Publish sends the command.
func (u *UDP) Publish(ctx context.Context, cmd usercommand.UserCommand) error {
	data, err := json.Marshal(ToWire(cmd, u.clock.Now()))
	if err != nil {
		return err
	}

	u.mu.Lock()
	defer u.mu.Unlock()
	deadline := time.Now().Add(defaultWriteTimeout)
	if ctxDeadline, ok := ctx.Deadline(); ok && ctxDeadline.Before(deadline) {
		deadline = ctxDeadline
	}
	if err := u.conn.SetWriteDeadline(deadline); err != nil {
		return err
	}
	if _, err := u.conn.Write(data); err != nil {
		return errors.Wrap(err, "failed to send command")
	}
	return nil
}

// Close closes the socket.
func (u *UDP) Close(ctx context.Context) error {
	return u.conn.Close()
}
