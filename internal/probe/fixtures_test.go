// SPDX-FileCopyrightText: 2025 Deutsche Telekom IT GmbH
//
// SPDX-License-Identifier: Apache-2.0

package probe

import (
	"net"
	"testing"

	"github.com/google/gopacket"
	"github.com/google/gopacket/layers"
	"github.com/stretchr/testify/require"
)

// Addresses used by the datagram fixtures.
const (
	localAddr  = "10.0.0.1"
	routerAddr = "198.51.100.1"
	targetAddr = "192.0.2.10"
)

func serialize(t *testing.T, ls ...gopacket.SerializableLayer) []byte {
	t.Helper()
	buf := gopacket.NewSerializeBuffer()
	opts := gopacket.SerializeOptions{FixLengths: true, ComputeChecksums: true}
	require.NoError(t, gopacket.SerializeLayers(buf, opts, ls...))
	return buf.Bytes()
}

func ipLayer(src, dst string, ttl uint8, proto layers.IPProtocol) *layers.IPv4 {
	return &layers.IPv4{
		Version:  4,
		IHL:      5,
		TTL:      ttl,
		Protocol: proto,
		SrcIP:    net.ParseIP(src).To4(),
		DstIP:    net.ParseIP(dst).To4(),
	}
}

// echoReply is an echo reply from src.
func echoReply(t *testing.T, src string, id, seq uint16) []byte {
	t.Helper()
	return serialize(t,
		ipLayer(src, localAddr, 57, layers.IPProtocolICMPv4),
		&layers.ICMPv4{TypeCode: layers.CreateICMPv4TypeCode(layers.ICMPv4TypeEchoReply, 0), Id: id, Seq: seq},
	)
}

// icmpError is an ICMP error message from src quoting inner.
func icmpError(t *testing.T, src string, typ, code uint8, inner []byte) []byte {
	t.Helper()
	return serialize(t,
		ipLayer(src, localAddr, 250, layers.IPProtocolICMPv4),
		&layers.ICMPv4{TypeCode: layers.CreateICMPv4TypeCode(typ, code)},
		gopacket.Payload(inner),
	)
}

// quotedEcho is the echo request probe as quoted by a router.
func quotedEcho(t *testing.T, dst string, id, seq uint16) []byte {
	t.Helper()
	return serialize(t,
		ipLayer(localAddr, dst, 1, layers.IPProtocolICMPv4),
		&layers.ICMPv4{TypeCode: layers.CreateICMPv4TypeCode(layers.ICMPv4TypeEchoRequest, 0), Id: id, Seq: seq},
	)
}

// quotedUDP is the UDP probe as quoted by a router.
// If full is false only the first 8 bytes of the UDP datagram are quoted.
func quotedUDP(t *testing.T, dst string, srcPort, dstPort int, id uint16, full bool) []byte {
	t.Helper()
	ip := ipLayer(localAddr, dst, 1, layers.IPProtocolUDP)
	udp := &layers.UDP{SrcPort: layers.UDPPort(srcPort), DstPort: layers.UDPPort(dstPort)} // #nosec G115
	require.NoError(t, udp.SetNetworkLayerForChecksum(ip))
	b := serialize(t, ip, udp, gopacket.Payload(BuildUDPPayload(id)))
	if !full {
		return b[:20+8]
	}
	return b
}

func timeExceeded(t *testing.T, inner []byte) []byte {
	t.Helper()
	return icmpError(t, routerAddr, layers.ICMPv4TypeTimeExceeded, layers.ICMPv4CodeTTLExceeded, inner)
}

func portUnreachable(t *testing.T, inner []byte) []byte {
	t.Helper()
	return icmpError(t, targetAddr, layers.ICMPv4TypeDestinationUnreachable, layers.ICMPv4CodePort, inner)
}
