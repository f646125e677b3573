// SPDX-FileCopyrightText: 2025 Deutsche Telekom IT GmbH
//
// SPDX-License-Identifier: Apache-2.0

package probe

import (
	"context"
	"errors"
	"fmt"
	"math/rand/v2"
	"net"
	"net/netip"
	"os"
	"time"

	"github.com/telekom/netdiag/internal/logger"
)

var _ Transport = (*transport)(nil)

// Transport sends single probes and waits for their replies.
//
//go:generate go tool moq -out transport_moq.go . Transport
type Transport interface {
	// Probe sends one probe and blocks until a correlated reply arrives or
	// the request's timeout elapses. Loss is not an error: it is reported as
	// [Lost]. Errors are only returned when the probe could not be sent,
	// e.g. [ErrPermission] when the raw socket cannot be opened.
	Probe(ctx context.Context, req Request) (Outcome, error)
}

// Config configures how probes are built.
type Config struct {
	// Paris keeps the flow identifying header fields constant across
	// probes: UDP probes use a fixed port pair and ICMP probes a fixed checksum.
	Paris bool `json:"paris" yaml:"paris" mapstructure:"paris"`
	// SourcePort is the local port of UDP probes.
	SourcePort int `json:"sourcePort" yaml:"sourcePort" mapstructure:"sourcePort"`
	// DestinationPort is the (first) destination port of UDP probes.
	DestinationPort int `json:"destinationPort" yaml:"destinationPort" mapstructure:"destinationPort"`
}

// parisChecksum is the constant ICMP checksum of Paris echo requests.
const parisChecksum uint16 = 0x4e44

// maxDatagramSize is the size of the receive buffer.
const maxDatagramSize = 1500

type transport struct {
	cfg Config
	// listenICMP opens the raw socket replies are read from.
	listenICMP func() (icmpConn, error)
	// dialUDP opens the socket UDP probes are sent from.
	dialUDP func(ctx context.Context, dst netip.Addr, ttl, srcPort, dstPort int) (net.Conn, error)
	// newID returns a fresh probe identifier.
	newID func() uint16
}

// NewTransport returns a [Transport] using raw sockets.
// Zero ports default to [DefaultSourcePort] and [DefaultDestinationPort].
func NewTransport(cfg Config) Transport {
	if cfg.SourcePort == 0 {
		cfg.SourcePort = DefaultSourcePort
	}
	if cfg.DestinationPort == 0 {
		cfg.DestinationPort = DefaultDestinationPort
	}
	return &transport{
		cfg:        cfg,
		listenICMP: listenICMP,
		dialUDP:    dialUDP,
		newID:      randomID,
	}
}

// randomID returns a random non-zero identifier.
func randomID() uint16 {
	return uint16(rand.N(0xffff) + 1) // #nosec G404 G115 // identifiers need no cryptographic randomness
}

// sentProbe is the state of the one outstanding probe of a [transport.Probe] call.
type sentProbe struct {
	id       uint16
	seq      uint16
	protocol Protocol
	dst      netip.Addr
	srcPort  int
	dstPort  int
	sentAt   time.Time
}

// Probe implements [Transport].
func (t *transport) Probe(ctx context.Context, req Request) (Outcome, error) {
	if err := req.Validate(); err != nil {
		return nil, err
	}
	log := logger.FromContext(ctx).With("destination", req.Destination, "ttl", req.TTL, "protocol", req.Protocol)

	// The listener is opened before sending so no reply can be missed.
	conn, err := t.listenICMP()
	if err != nil {
		return nil, err
	}
	defer func() { _ = conn.Close() }()

	p := &sentProbe{
		id:       t.newID(),
		seq:      req.Sequence,
		protocol: req.Protocol,
		dst:      req.Destination,
	}

	switch req.Protocol {
	case ProtocolICMP:
		msg := BuildEchoRequest(p.id, p.seq)
		if t.cfg.Paris {
			msg = BuildParisEchoRequest(p.id, p.seq, parisChecksum)
		}
		p.sentAt = time.Now()
		if err := conn.WriteTo(icmpHeader(p.dst, req.TTL, len(msg)), msg, nil); err != nil {
			return nil, fmt.Errorf("failed to send ICMP probe: %w", err)
		}
	case ProtocolUDP:
		p.dstPort = t.udpDestinationPort(req.Sequence)
		uc, err := t.dialUDP(ctx, p.dst, req.TTL, t.cfg.SourcePort, p.dstPort)
		if err != nil {
			return nil, err
		}
		defer func() { _ = uc.Close() }()
		p.srcPort = localPort(uc)

		p.sentAt = time.Now()
		if _, err := uc.Write(BuildUDPPayload(p.id)); err != nil {
			return nil, fmt.Errorf("failed to send UDP probe: %w", err)
		}
	}
	log.DebugContext(ctx, "Probe sent", "id", p.id, "seq", p.seq, "srcPort", p.srcPort, "dstPort", p.dstPort)

	return t.await(logger.IntoContext(ctx, log), conn, p, req.Timeout)
}

// udpDestinationPort returns the destination port of a UDP probe.
// Classic probes advance the port with the sequence, Paris probes keep it fixed.
func (t *transport) udpDestinationPort(seq uint16) int {
	if t.cfg.Paris {
		return t.cfg.DestinationPort
	}
	const maxPort = 65535
	return t.cfg.DestinationPort + int(seq)%(maxPort-t.cfg.DestinationPort+1)
}

// await reads datagrams until one correlates with p or the deadline passes.
// Malformed and foreign datagrams are ignored.
func (t *transport) await(ctx context.Context, conn icmpConn, p *sentProbe, timeout time.Duration) (Outcome, error) {
	log := logger.FromContext(ctx)

	deadline := p.sentAt.Add(timeout)
	if d, ok := ctx.Deadline(); ok && d.Before(deadline) {
		deadline = d
	}
	if err := conn.SetReadDeadline(deadline); err != nil {
		return nil, fmt.Errorf("failed to set read deadline: %w", err)
	}

	buf := make([]byte, maxDatagramSize)
	ignored := 0
	for {
		h, payload, _, err := conn.ReadFrom(buf)
		if err != nil {
			var sysErr *os.SyscallError
			switch {
			case errors.Is(err, os.ErrDeadlineExceeded):
				log.DebugContext(ctx, "No reply before deadline", "id", p.id, "ignored", ignored)
				return Lost{}, nil
			case errors.As(err, &sysErr), errors.Is(err, net.ErrClosed):
				return nil, fmt.Errorf("failed to read from ICMP socket: %w", err)
			default:
				ignored++
				log.DebugContext(ctx, "Ignoring unparsable datagram", "error", err)
				continue
			}
		}
		receivedAt := time.Now()

		raw := buf[:h.Len+len(payload)]
		reply, err := ParseReply(raw)
		if err != nil {
			ignored++
			log.DebugContext(ctx, "Ignoring malformed reply", "error", err, "packet", packetDump(raw))
			continue
		}
		reply.ReceivedAt = receivedAt

		terminal, ok := p.correlate(reply)
		if !ok {
			ignored++
			log.DebugContext(ctx, "Ignoring foreign reply",
				"source", reply.Source, "type", reply.Type, "code", reply.Code, "packet", packetDump(raw))
			continue
		}

		out := Answered{
			RTT:      reply.ReceivedAt.Sub(p.sentAt),
			Source:   reply.Source,
			Terminal: terminal,
			Type:     reply.Type,
			Code:     reply.Code,
			TTL:      reply.TTL,
			Size:     reply.Length,
		}
		log.DebugContext(ctx, "Probe answered", "source", out.Source, "rtt", out.RTT, "terminal", out.Terminal, "ignored", ignored)
		return out, nil
	}
}

// correlate reports whether r answers p and whether it was sent by the destination.
func (p *sentProbe) correlate(r Reply) (terminal, ok bool) {
	switch r.Type {
	case icmpTypeEchoReply:
		return true, p.protocol == ProtocolICMP && r.ID == p.id && r.Seq == p.seq
	case icmpTypeTimeExceeded, icmpTypeDstUnreachable:
		e := r.Embedded
		if e == nil || e.Destination != p.dst {
			return false, false
		}
		terminal = r.Type == icmpTypeDstUnreachable

		switch p.protocol {
		case ProtocolICMP:
			return terminal, e.Protocol == protocolICMP && e.ID == p.id && e.Seq == p.seq
		case ProtocolUDP:
			if e.Protocol != protocolUDP || e.SourcePort != p.srcPort || e.DestinationPort != p.dstPort {
				return false, false
			}
			if e.HasPayloadID && e.PayloadID != p.id {
				return false, false
			}
			return terminal, true
		}
	}
	return false, false
}
