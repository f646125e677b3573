// SPDX-FileCopyrightText: 2025 Deutsche Telekom IT GmbH
//
// SPDX-License-Identifier: Apache-2.0

package probe

// Checksum computes the RFC 1071 Internet checksum of b.
// The buffer is summed as big-endian 16-bit words; a trailing odd byte is
// padded with a zero byte. The result is meant to be written back in
// network byte order, after which the checksum of the whole buffer is zero.
func Checksum(b []byte) uint16 {
	return ^fold(sum(b))
}

func sum(b []byte) uint32 {
	var s uint32
	n := len(b) &^ 1
	for i := 0; i < n; i += 2 {
		s += uint32(b[i])<<8 | uint32(b[i+1])
	}
	if len(b)%2 == 1 {
		s += uint32(b[len(b)-1]) << 8
	}
	return s
}

// fold adds the carries back into the low 16 bits.
func fold(s uint32) uint16 {
	for s>>16 != 0 {
		s = s&0xffff + s>>16
	}
	return uint16(s) // #nosec G115 // folded above
}
