// SPDX-FileCopyrightText: 2025 Deutsche Telekom IT GmbH
//
// SPDX-License-Identifier: Apache-2.0

package probe

import (
	"log/slog"

	"github.com/google/gopacket"
	"github.com/google/gopacket/layers"
)

// packetDump renders a received IPv4 datagram layer by layer.
// Decoding only happens if the log record is actually emitted.
type packetDump []byte

func (d packetDump) LogValue() slog.Value {
	pkt := gopacket.NewPacket(d, layers.LayerTypeIPv4, gopacket.NoCopy)
	return slog.StringValue(pkt.String())
}
