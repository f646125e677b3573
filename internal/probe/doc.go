// SPDX-FileCopyrightText: 2025 Deutsche Telekom IT GmbH
//
// SPDX-License-Identifier: Apache-2.0

// Package probe implements the wire-level part of the diagnostic tools:
// the Internet checksum, the ICMP/UDP probe codec and a [Transport]
// that sends exactly one probe per call and waits for the matching reply.
//
// A probe is sent with a caller-supplied TTL. Replies are read from a raw
// ICMP socket as whole IPv4 datagrams and correlated with the outstanding
// probe by identifier (ICMP) or by the quoted port pair and payload (UDP).
// Datagrams that do not correlate are ignored and the wait continues until
// the probe's deadline, after which the probe is reported as [Lost].
//
// Every call owns its sockets exclusively and releases them on return.
// Opening the raw socket needs NET_RAW capabilities; without them every
// call fails with [ErrPermission].
//
// Typical usage:
//
//	t := probe.NewTransport(probe.Config{})
//	out, err := t.Probe(ctx, probe.Request{
//		Destination: netip.MustParseAddr("192.0.2.1"),
//		TTL:         3,
//		Timeout:     4 * time.Second,
//		Protocol:    probe.ProtocolICMP,
//	})
//	switch o := out.(type) {
//	case probe.Answered:
//		fmt.Println(o.Source, o.RTT, o.Terminal)
//	case probe.Lost:
//		fmt.Println("*")
//	}
package probe
