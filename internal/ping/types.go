// SPDX-FileCopyrightText: 2025 Deutsche Telekom IT GmbH
//
// SPDX-License-Identifier: Apache-2.0

package ping

import (
	"errors"
	"fmt"
	"net/netip"
	"time"

	"golang.org/x/net/ipv4"
)

const (
	// DefaultTimeout is how long a probe waits for its echo reply.
	DefaultTimeout = 4 * time.Second
	// DefaultInterval is the time between two probes.
	DefaultInterval = time.Second
	// DefaultTTL is the TTL of echo requests. It is large enough to
	// reach any destination.
	DefaultTTL = 255
)

// Options contains the configuration of a ping run.
type Options struct {
	// Count is the number of probes to send. Zero sends until the context is done.
	Count int `json:"count" yaml:"count" mapstructure:"count"`
	// Timeout is the timeout of a single probe.
	Timeout time.Duration `json:"timeout" yaml:"timeout" mapstructure:"timeout"`
	// Interval is the time between the start of two probes.
	Interval time.Duration `json:"interval" yaml:"interval" mapstructure:"interval"`
	// TTL is the TTL of the echo requests.
	TTL int `json:"ttl" yaml:"ttl" mapstructure:"ttl"`
}

// DefaultOptions returns options pinging until interrupted.
func DefaultOptions() Options {
	return Options{
		Timeout:  DefaultTimeout,
		Interval: DefaultInterval,
		TTL:      DefaultTTL,
	}
}

// Validate checks the options and returns all violations joined.
func (o Options) Validate() error {
	var errs []error
	if o.Count < 0 {
		errs = append(errs, fmt.Errorf("%w: count must not be negative, got %d", ErrInvalidOptions, o.Count))
	}
	if o.Timeout <= 0 {
		errs = append(errs, fmt.Errorf("%w: timeout must be positive, got %v", ErrInvalidOptions, o.Timeout))
	}
	if o.Interval < 0 {
		errs = append(errs, fmt.Errorf("%w: interval must not be negative, got %v", ErrInvalidOptions, o.Interval))
	}
	if o.TTL < 1 || o.TTL > 255 {
		errs = append(errs, fmt.Errorf("%w: ttl must be between 1 and 255, got %d", ErrInvalidOptions, o.TTL))
	}
	return errors.Join(errs...)
}

// Reply is the outcome of one echo request.
// Answered is only true for echo replies. A request that drew an ICMP
// error instead is lost, Addr then holds the sender of the error and
// Error describes it.
type Reply struct {
	Seq      int           `json:"seq" yaml:"seq"`
	Answered bool          `json:"answered" yaml:"answered"`
	RTT      time.Duration `json:"rtt" yaml:"rtt"`
	Addr     netip.Addr    `json:"addr" yaml:"addr"`
	Name     string        `json:"name,omitempty" yaml:"name,omitempty"`
	TTL      int           `json:"ttl" yaml:"ttl"`
	// Size is the length of the ICMP reply in bytes.
	Size  int    `json:"size" yaml:"size"`
	Error string `json:"error,omitempty" yaml:"error,omitempty"`
}

// describeError returns the text ping prints for an ICMP error message.
func describeError(typ, code int) string {
	switch ipv4.ICMPType(typ) {
	case ipv4.ICMPTypeDestinationUnreachable:
		switch code {
		case 0:
			return "Destination Net Unreachable"
		case 1:
			return "Destination Host Unreachable"
		case 2:
			return "Destination Protocol Unreachable"
		case 3:
			return "Destination Port Unreachable"
		default:
			return fmt.Sprintf("Destination Unreachable, code %d", code)
		}
	case ipv4.ICMPTypeTimeExceeded:
		return "Time to live exceeded"
	default:
		return fmt.Sprintf("ICMP type %d, code %d", typ, code)
	}
}

// Statistics is the running summary of a ping run.
type Statistics struct {
	Target      string          `json:"target" yaml:"target"`
	Addr        netip.Addr      `json:"addr" yaml:"addr"`
	Transmitted int             `json:"transmitted" yaml:"transmitted"`
	Received    int             `json:"received" yaml:"received"`
	RTTs        []time.Duration `json:"rtts" yaml:"rtts"`
}

// add records the outcome of one probe.
func (s *Statistics) add(r Reply) {
	s.Transmitted++
	if r.Answered {
		s.Received++
		s.RTTs = append(s.RTTs, r.RTT)
	}
}

// Loss returns the fraction of lost probes in [0,1].
func (s Statistics) Loss() float64 {
	if s.Transmitted == 0 {
		return 0
	}
	return float64(s.Transmitted-s.Received) / float64(s.Transmitted)
}

// MinAvgMax returns the round trip time statistics of the answered probes.
// It returns false if no probe was answered.
func (s Statistics) MinAvgMax() (minRTT, avgRTT, maxRTT time.Duration, ok bool) {
	if len(s.RTTs) == 0 {
		return 0, 0, 0, false
	}
	var total time.Duration
	minRTT, maxRTT = s.RTTs[0], s.RTTs[0]
	for _, rtt := range s.RTTs {
		minRTT = min(minRTT, rtt)
		maxRTT = max(maxRTT, rtt)
		total += rtt
	}
	return minRTT, total / time.Duration(len(s.RTTs)), maxRTT, true
}
