// SPDX-FileCopyrightText: 2025 Deutsche Telekom IT GmbH
//
// SPDX-License-Identifier: Apache-2.0

package probe

import (
	"context"
	"errors"
	"fmt"
	"net"
	"net/netip"
	"syscall"
	"time"

	"github.com/telekom/netdiag/internal/logger"
	"golang.org/x/net/ipv4"
	"golang.org/x/sys/unix"
)

// icmpConn is a raw ICMP socket that reads and writes whole IPv4 datagrams.
// Because the IP header is written with every datagram, the TTL of a probe
// is set in that header.
type icmpConn interface {
	ReadFrom(b []byte) (*ipv4.Header, []byte, *ipv4.ControlMessage, error)
	WriteTo(h *ipv4.Header, p []byte, cm *ipv4.ControlMessage) error
	SetReadDeadline(t time.Time) error
	Close() error
}

var _ icmpConn = (*ipv4.RawConn)(nil)

// listenICMP opens a raw ICMP socket.
// It returns [ErrPermission] if the process lacks NET_RAW capabilities.
func listenICMP() (icmpConn, error) {
	pc, err := net.ListenPacket("ip4:icmp", "0.0.0.0")
	if err != nil {
		if errors.Is(err, unix.EPERM) || errors.Is(err, unix.EACCES) {
			return nil, fmt.Errorf("%w: %w", ErrPermission, err)
		}
		return nil, fmt.Errorf("failed to open raw ICMP socket: %w", err)
	}

	rc, err := ipv4.NewRawConn(pc)
	if err != nil {
		_ = pc.Close()
		return nil, fmt.Errorf("failed to create raw IPv4 connection: %w", err)
	}
	return rc, nil
}

// icmpHeader returns the IPv4 header for an ICMP probe with the given TTL.
func icmpHeader(dst netip.Addr, ttl, payloadLen int) *ipv4.Header {
	return &ipv4.Header{
		Version:  ipv4.Version,
		Len:      ipv4.HeaderLen,
		TotalLen: ipv4.HeaderLen + payloadLen,
		TTL:      ttl,
		Protocol: protocolICMP,
		Dst:      net.IP(dst.AsSlice()),
	}
}

// dialUDP sets up a UDP socket to dst:dstPort with the desired TTL.
// It binds to srcPort so ICMP errors quote a known port pair, and falls back
// to an ephemeral port if srcPort is taken.
func dialUDP(ctx context.Context, dst netip.Addr, ttl, srcPort, dstPort int) (net.Conn, error) {
	dial := func(port int) (net.Conn, error) {
		dialer := net.Dialer{
			LocalAddr: &net.UDPAddr{Port: port},
			ControlContext: func(_ context.Context, _, _ string, c syscall.RawConn) error {
				var opErr error
				if err := c.Control(func(fd uintptr) {
					opErr = unix.SetsockoptInt(int(fd), unix.IPPROTO_IP, unix.IP_TTL, ttl) // #nosec G115
				}); err != nil {
					return err
				}
				return opErr
			},
		}
		addr := netip.AddrPortFrom(dst, uint16(dstPort)) // #nosec G115 // validated port range
		return dialer.DialContext(ctx, "udp4", addr.String())
	}

	conn, err := dial(srcPort)
	if errors.Is(err, unix.EADDRINUSE) && srcPort != 0 {
		logger.FromContext(ctx).DebugContext(ctx, "Source port in use, falling back to ephemeral port", "port", srcPort)
		conn, err = dial(0)
	}
	if err != nil {
		return nil, fmt.Errorf("failed to dial UDP socket: %w", err)
	}
	return conn, nil
}

// localPort returns the local port of a UDP connection.
func localPort(c net.Conn) int {
	if a, ok := c.LocalAddr().(*net.UDPAddr); ok {
		return a.Port
	}
	return 0
}
