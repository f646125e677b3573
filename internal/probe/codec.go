// SPDX-FileCopyrightText: 2025 Deutsche Telekom IT GmbH
//
// SPDX-License-Identifier: Apache-2.0

package probe

import (
	"encoding/binary"
	"net/netip"

	"golang.org/x/net/ipv4"
)

const (
	icmpHeaderLen = 8
	// quotedLen is the part of the original payload every router quotes.
	quotedLen = 8
	// udpPayloadLen is the length of the identifier sent in UDP probes.
	udpPayloadLen = 2

	protocolICMP = 1
	protocolUDP  = 17

	icmpTypeEchoReply      = int(ipv4.ICMPTypeEchoReply)
	icmpTypeDstUnreachable = int(ipv4.ICMPTypeDestinationUnreachable)
	icmpTypeEchoRequest    = int(ipv4.ICMPTypeEcho)
	icmpTypeTimeExceeded   = int(ipv4.ICMPTypeTimeExceeded)

	maxTTL = 255
)

const (
	// DefaultSourcePort is the source port of UDP probes.
	DefaultSourcePort = 33457
	// DefaultDestinationPort is the destination port of UDP probes.
	DefaultDestinationPort = 33456
)

// BuildEchoRequest returns an 8-byte ICMP echo request header with the
// given identifier and sequence and a valid checksum.
func BuildEchoRequest(id, seq uint16) []byte {
	b := make([]byte, icmpHeaderLen)
	putEchoHeader(b, id, seq)
	binary.BigEndian.PutUint16(b[2:4], Checksum(b))
	return b
}

// BuildParisEchoRequest returns an ICMP echo request whose checksum field
// always equals checksum, regardless of identifier and sequence. A two byte
// payload compensates the sum so the message still validates to zero. This
// keeps the first eight bytes that load balancers hash on constant per flow.
func BuildParisEchoRequest(id, seq, checksum uint16) []byte {
	b := make([]byte, icmpHeaderLen+2)
	putEchoHeader(b, id, seq)
	binary.BigEndian.PutUint16(b[2:4], checksum)
	binary.BigEndian.PutUint16(b[icmpHeaderLen:], Checksum(b[:icmpHeaderLen]))
	return b
}

func putEchoHeader(b []byte, id, seq uint16) {
	b[0] = byte(icmpTypeEchoRequest)
	b[1] = 0
	binary.BigEndian.PutUint16(b[4:6], id)
	binary.BigEndian.PutUint16(b[6:8], seq)
}

// BuildUDPPayload returns the payload of a UDP probe: the identifier in
// big-endian byte order.
func BuildUDPPayload(id uint16) []byte {
	b := make([]byte, udpPayloadLen)
	binary.BigEndian.PutUint16(b, id)
	return b
}

// ParseReply parses an IPv4 datagram carrying an ICMP message as read from a
// raw socket. The IP header length is taken from the header itself.
// Time-exceeded and destination-unreachable messages must quote the original
// IP header and at least eight bytes of its payload.
// All failures wrap [ErrMalformedReply].
func ParseReply(b []byte) (Reply, error) {
	h, err := ipv4.ParseHeader(b)
	if err != nil {
		return Reply{}, malformed("%v", err)
	}
	if h.Len < ipv4.HeaderLen {
		return Reply{}, malformed("ip header length %d too short", h.Len)
	}
	if h.Protocol != protocolICMP {
		return Reply{}, malformed("unexpected ip protocol %d", h.Protocol)
	}

	msg := b[h.Len:]
	if len(msg) < icmpHeaderLen {
		return Reply{}, malformed("icmp message of %d bytes too short", len(msg))
	}

	src, _ := netip.AddrFromSlice(h.Src.To4())
	r := Reply{
		Source:   src,
		TTL:      h.TTL,
		Length:   len(msg),
		Type:     int(msg[0]),
		Code:     int(msg[1]),
		Checksum: binary.BigEndian.Uint16(msg[2:4]),
		ID:       binary.BigEndian.Uint16(msg[4:6]),
		Seq:      binary.BigEndian.Uint16(msg[6:8]),
	}

	switch r.Type {
	case icmpTypeTimeExceeded, icmpTypeDstUnreachable:
		emb, err := parseEmbedded(msg[icmpHeaderLen:])
		if err != nil {
			return Reply{}, err
		}
		r.Embedded = emb
	}
	return r, nil
}

// parseEmbedded parses the original datagram quoted by an ICMP error message.
// The quoted header is parsed by hand since [ipv4.ParseHeader] adjusts
// fields for the byte order of the receiving platform.
func parseEmbedded(b []byte) (*EmbeddedDatagram, error) {
	if len(b) < ipv4.HeaderLen {
		return nil, malformed("quoted datagram of %d bytes too short", len(b))
	}
	hdrLen := int(b[0]&0x0f) << 2
	if hdrLen < ipv4.HeaderLen || len(b) < hdrLen+quotedLen {
		return nil, malformed("quoted datagram of %d bytes too short for header length %d", len(b), hdrLen)
	}

	dst, _ := netip.AddrFromSlice(b[16:20])
	emb := &EmbeddedDatagram{
		Protocol:    int(b[9]),
		Destination: dst,
	}

	payload := b[hdrLen:]
	switch emb.Protocol {
	case protocolICMP:
		emb.ID = binary.BigEndian.Uint16(payload[4:6])
		emb.Seq = binary.BigEndian.Uint16(payload[6:8])
	case protocolUDP:
		emb.SourcePort = int(binary.BigEndian.Uint16(payload[0:2]))
		emb.DestinationPort = int(binary.BigEndian.Uint16(payload[2:4]))
		if len(payload) >= quotedLen+udpPayloadLen {
			emb.PayloadID = binary.BigEndian.Uint16(payload[quotedLen : quotedLen+udpPayloadLen])
			emb.HasPayloadID = true
		}
	}
	return emb, nil
}
