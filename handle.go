//
//
// Tencent is pleased to support the open source community by making tRPC available.
//
// Copyright (C) 2023 THL A29 Limited, a Tencent company.
// All rights reserved.
//
// If you have downloaded a copy of the tRPC source code from Tencent,
// please note that tRPC source code is licensed under the  Apache 2.0 License,
// A copy of the Apache 2.0 License is included in this file.
//
//

package udpecho

import (
	"net"
	"time"

	goreuseport "github.com/kavu/go_reuseport"
	"github.com/netlab/udpecho/internal/netutil"
	"github.com/netlab/udpecho/metrics"
	"github.com/pkg/errors"
)

// Handle is an owned udp endpoint.
//
// A handle can be duplicated any number of times. Duplicates refer to the
// same socket as the original: they share its local address and receive
// queue, and may be used concurrently with it and with each other. Each
// handle is closed independently, the socket is released when the last
// handle referring to it is closed.
//
// A Handle must not be copied, duplicate it instead.
type Handle struct {
	sock  *socket
	raddr net.Addr

	closer
}

// Bind announces on the local network address and returns the primary handle.
// The network must be "udp", "udp4" or "udp6". A zero port asks the system for
// an ephemeral one. Reuseport sets SO_REUSEPORT on the socket, so that several
// processes may bind the same address.
//
// Any failure is reported as a *BindError.
func Bind(network, address string, reuseport bool) (*Handle, error) {
	if err := netutil.ValidateUDP(network); err != nil {
		return nil, errors.WithStack(&BindError{Network: network, Address: address, Err: err})
	}
	listenPacket := net.ListenPacket
	if reuseport {
		listenPacket = goreuseport.ListenPacket
	}
	pc, err := listenPacket(network, address)
	if err != nil {
		return nil, errors.WithStack(&BindError{Network: network, Address: address, Err: err})
	}
	conn, ok := pc.(*net.UDPConn)
	if !ok {
		pc.Close()
		return nil, errors.WithStack(&BindError{
			Network: network,
			Address: address,
			Err:     errors.Errorf("listener is %T, not *net.UDPConn", pc),
		})
	}
	return newHandle(conn, nil), nil
}

// Dial connects to the address on the named network within the timeout.
// The returned handle sends to address by default and only receives datagrams
// coming from it. Valid networks are "udp", "udp4" and "udp6".
func Dial(network, address string, timeout time.Duration) (*Handle, error) {
	if err := netutil.ValidateUDP(network); err != nil {
		return nil, errors.WithStack(err)
	}
	c, err := net.DialTimeout(network, address, timeout)
	if err != nil {
		return nil, errors.Wrapf(err, "dial network %s, address %s with timeout %+v", network, address, timeout)
	}
	conn, ok := c.(*net.UDPConn)
	if !ok {
		c.Close()
		return nil, errors.Errorf("dial returned %T, not *net.UDPConn", c)
	}
	return newHandle(conn, conn.RemoteAddr()), nil
}

func newHandle(conn *net.UDPConn, raddr net.Addr) *Handle {
	metrics.Add(metrics.HandlesOpened, 1)
	return &Handle{sock: newSocket(conn), raddr: raddr}
}

// ReceiveFrom blocks until one datagram arrives and copies it into b.
// It returns the number of bytes written and the sender address. One call
// yields at most one datagram, the part that doesn't fit into b is lost.
func (h *Handle) ReceiveFrom(b []byte) (int, net.Addr, error) {
	d, err := h.ReceiveDatagram(b)
	if err != nil {
		return 0, nil, err
	}
	return len(d.Payload), d.Addr, nil
}

// ReceiveDatagram is like ReceiveFrom but also reports whether the datagram
// was truncated. The payload of the returned datagram aliases b.
//
// Close doesn't interrupt a ReceiveDatagram in progress while duplicates
// still hold the socket. Use SetReadDeadline to bound the wait.
func (h *Handle) ReceiveDatagram(b []byte) (Datagram, error) {
	if h.closed() {
		return Datagram{}, ErrHandleClosed
	}
	n, _, flags, addr, err := h.sock.conn.ReadMsgUDP(b, nil)
	if err != nil {
		return Datagram{}, h.wrapErr(err, "receive")
	}
	d := Datagram{Payload: b[:n], Truncated: netutil.Truncated(flags)}
	if addr != nil {
		d.Addr = addr
	}
	return d, nil
}

// Recv reads one datagram into b, dropping the sender address. It is meant for
// handles created by Dial, which only receive from their peer.
func (h *Handle) Recv(b []byte) (int, error) {
	n, _, err := h.ReceiveFrom(b)
	return n, err
}

// SendTo transmits b as one datagram to addr.
func (h *Handle) SendTo(b []byte, addr net.Addr) (int, error) {
	if !h.beginJobSafely(apiSend) {
		return 0, ErrHandleClosed
	}
	defer h.endJobSafely(apiSend)
	n, err := h.sock.conn.WriteTo(b, addr)
	if err != nil {
		return n, h.wrapErr(err, "send to "+addrString(addr))
	}
	return n, nil
}

// Send transmits b as one datagram to the peer of a handle created by Dial.
func (h *Handle) Send(b []byte) (int, error) {
	if h.raddr == nil {
		return 0, ErrNotConnected
	}
	if !h.beginJobSafely(apiSend) {
		return 0, ErrHandleClosed
	}
	defer h.endJobSafely(apiSend)
	n, err := h.sock.conn.Write(b)
	if err != nil {
		return n, h.wrapErr(err, "send")
	}
	return n, nil
}

// Duplicate returns a new handle referring to the same socket. No system call
// is made, the duplicate takes one more reference on the socket.
func (h *Handle) Duplicate() (*Handle, error) {
	if !h.beginJobSafely(apiCtrl) {
		return nil, ErrHandleClosed
	}
	defer h.endJobSafely(apiCtrl)
	if !h.sock.acquire() {
		return nil, ErrHandleClosed
	}
	metrics.Add(metrics.HandlesDuplicated, 1)
	return &Handle{sock: h.sock, raddr: h.raddr}, nil
}

// DuplicateFD returns a new handle on a duplicated file descriptor of the
// same socket. Unlike Duplicate the new handle has its own deadlines.
func (h *Handle) DuplicateFD() (*Handle, error) {
	if !h.beginJobSafely(apiCtrl) {
		return nil, ErrHandleClosed
	}
	defer h.endJobSafely(apiCtrl)
	conn, err := netutil.DupUDP(h.sock.conn)
	if err != nil {
		return nil, h.wrapErr(err, "duplicate")
	}
	metrics.Add(metrics.HandlesDuplicated, 1)
	return &Handle{sock: newSocket(conn), raddr: h.raddr}, nil
}

// SetReadDeadline sets the deadline for future and pending receives.
// Handles made by Duplicate share their deadlines.
func (h *Handle) SetReadDeadline(t time.Time) error {
	if !h.beginJobSafely(apiCtrl) {
		return ErrHandleClosed
	}
	defer h.endJobSafely(apiCtrl)
	return h.sock.conn.SetReadDeadline(t)
}

// SetWriteDeadline sets the deadline for future and pending sends.
// Handles made by Duplicate share their deadlines.
func (h *Handle) SetWriteDeadline(t time.Time) error {
	if !h.beginJobSafely(apiCtrl) {
		return ErrHandleClosed
	}
	defer h.endJobSafely(apiCtrl)
	return h.sock.conn.SetWriteDeadline(t)
}

// LocalAddr returns the local network address.
func (h *Handle) LocalAddr() net.Addr {
	return h.sock.conn.LocalAddr()
}

// RemoteAddr returns the peer of a handle created by Dial, nil otherwise.
func (h *Handle) RemoteAddr() net.Addr {
	return h.raddr
}

// IsActive checks whether the handle is still open.
func (h *Handle) IsActive() bool {
	return !h.closed()
}

// Close closes the handle. It waits for sends running on this handle, then
// drops its socket reference. Closing a handle twice is a no-op.
func (h *Handle) Close() error {
	if !h.beginJobSafely(closeAll) {
		return nil
	}
	defer h.endJobSafely(closeAll)
	h.closeAllJobs()
	metrics.Add(metrics.HandlesClosed, 1)
	if err := h.sock.release(); err != nil {
		return errors.Wrap(err, "release udp socket")
	}
	return nil
}

func (h *Handle) wrapErr(err error, op string) error {
	if errors.Is(err, net.ErrClosed) {
		return ErrHandleClosed
	}
	return errors.Wrapf(err, "udp %s on %s", op, h.LocalAddr())
}

func addrString(addr net.Addr) string {
	if addr == nil {
		return "<nil>"
	}
	return addr.String()
}
