// SPDX-FileCopyrightText: 2025 Deutsche Telekom IT GmbH
//
// SPDX-License-Identifier: Apache-2.0

package probe

import (
	"fmt"
	"net/netip"
	"slices"
	"strings"
	"time"
)

// Protocol is the protocol a probe is sent with.
type Protocol string

const (
	// ProtocolICMP sends ICMP echo requests.
	ProtocolICMP Protocol = "icmp"
	// ProtocolUDP sends UDP datagrams to an unprivileged high port.
	ProtocolUDP Protocol = "udp"
)

func (p Protocol) String() string {
	return string(p)
}

func (p Protocol) IsValid() bool {
	return slices.Contains([]Protocol{ProtocolICMP, ProtocolUDP}, p)
}

// ParseProtocol parses a case-insensitive protocol name.
func ParseProtocol(s string) (Protocol, error) {
	p := Protocol(strings.ToLower(strings.TrimSpace(s)))
	if !p.IsValid() {
		return "", fmt.Errorf("%w: %q", ErrInvalidProtocol, s)
	}
	return p, nil
}

// Request describes a single probe to send.
type Request struct {
	// Destination is the IPv4 address the probe is sent to.
	Destination netip.Addr
	// TTL is the IP time-to-live of the probe, between 1 and 255.
	TTL int
	// Timeout bounds the wait for a matching reply.
	Timeout time.Duration
	// Protocol is the protocol the probe is sent with.
	Protocol Protocol
	// Sequence is the ICMP sequence number of the probe. For classic UDP
	// probes it also offsets the destination port.
	Sequence uint16
}

// Validate checks that the request can be sent.
func (r Request) Validate() error {
	switch {
	case !r.Destination.Is4():
		return ErrInvalidRequest{Field: "destination", Reason: "must be an IPv4 address"}
	case r.TTL < 1 || r.TTL > maxTTL:
		return ErrInvalidRequest{Field: "ttl", Reason: fmt.Sprintf("must be between 1 and %d", maxTTL)}
	case r.Timeout <= 0:
		return ErrInvalidRequest{Field: "timeout", Reason: "must be positive"}
	case !r.Protocol.IsValid():
		return ErrInvalidRequest{Field: "protocol", Reason: fmt.Sprintf("unsupported protocol %q", r.Protocol)}
	}
	return nil
}

// Outcome is the result of a single probe. It is either [Answered] or [Lost].
type Outcome interface {
	isOutcome()
}

// Answered is the [Outcome] of a probe that drew a correlated reply.
type Answered struct {
	// RTT is the time between sending the probe and receiving the reply.
	RTT time.Duration
	// Source is the address that sent the reply.
	Source netip.Addr
	// Terminal is true if the reply was sent by the destination itself
	// (echo reply or destination unreachable) and not by a router on the way.
	Terminal bool
	// Type and Code are the ICMP type and code of the reply.
	Type int
	Code int
	// TTL is the time-to-live of the reply datagram.
	TTL int
	// Size is the length of the ICMP message in bytes.
	Size int
}

// EchoReply reports whether the reply is an ICMP echo reply.
func (a Answered) EchoReply() bool {
	return a.Type == icmpTypeEchoReply
}

// Lost is the [Outcome] of a probe that drew no correlated reply before its deadline.
type Lost struct{}

func (Answered) isOutcome() {}
func (Lost) isOutcome()     {}

// Reply is a parsed ICMP reply datagram.
type Reply struct {
	// Source is the sender of the datagram.
	Source netip.Addr
	// TTL is the time-to-live of the datagram.
	TTL int
	// Length is the length of the ICMP message.
	Length int
	Type   int
	Code   int
	// Checksum is the ICMP checksum as found on the wire.
	Checksum uint16
	// ID and Seq are the identifier and sequence fields of the ICMP header.
	// They only carry meaning for echo messages.
	ID  uint16
	Seq uint16
	// Embedded is the quoted original datagram of time-exceeded and
	// destination-unreachable messages.
	Embedded *EmbeddedDatagram
	// ReceivedAt is when the datagram was read from the socket.
	// [ParseReply] leaves it zero.
	ReceivedAt time.Time
}

// Identifier returns the identifier that correlates the reply with its probe:
// the quoted echo identifier or UDP payload for error messages and the
// header identifier otherwise. The boolean is false if none is available.
func (r Reply) Identifier() (uint16, bool) {
	if r.Embedded == nil {
		return r.ID, r.Type == icmpTypeEchoReply
	}
	switch r.Embedded.Protocol {
	case protocolICMP:
		return r.Embedded.ID, true
	case protocolUDP:
		return r.Embedded.PayloadID, r.Embedded.HasPayloadID
	default:
		return 0, false
	}
}

// EmbeddedDatagram is the start of the original datagram that an ICMP error
// message quotes: its IP header and at least the first 8 payload bytes.
type EmbeddedDatagram struct {
	// Protocol is the IP protocol number of the original datagram.
	Protocol int
	// Destination is the destination address of the original datagram.
	Destination netip.Addr
	// ID and Seq are the echo identifier and sequence of an original ICMP datagram.
	ID  uint16
	Seq uint16
	// SourcePort and DestinationPort are the ports of an original UDP datagram.
	SourcePort      int
	DestinationPort int
	// PayloadID is the identifier carried in the first two payload bytes of an
	// original UDP datagram, if the router quoted enough of it.
	PayloadID    uint16
	HasPayloadID bool
}
