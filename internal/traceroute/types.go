// SPDX-FileCopyrightText: 2025 Deutsche Telekom IT GmbH
//
// SPDX-License-Identifier: Apache-2.0

package traceroute

import (
	"errors"
	"fmt"
	"net/netip"
	"time"

	"github.com/telekom/netdiag/internal/helper"
	"github.com/telekom/netdiag/internal/probe"
)

const (
	// DefaultMaxTTL is the TTL ceiling of a walk.
	DefaultMaxTTL = 30
	// DefaultQueries is the number of probes sent per hop.
	DefaultQueries = 3
	// DefaultTimeout is how long a single probe waits for its reply.
	DefaultTimeout = 4 * time.Second
)

// Options contains the configuration of a traceroute.
type Options struct {
	// Protocol is the probe protocol.
	Protocol probe.Protocol `json:"protocol" yaml:"protocol" mapstructure:"protocol"`
	// MaxTTL is the maximum TTL to probe.
	MaxTTL int `json:"maxHops" yaml:"maxHops" mapstructure:"maxHops"`
	// Queries is the number of probes sent per hop.
	Queries int `json:"queries" yaml:"queries" mapstructure:"queries"`
	// Timeout is the timeout of a single probe.
	Timeout time.Duration `json:"timeout" yaml:"timeout" mapstructure:"timeout"`
	// Paris keeps the flow identifier of all probes constant.
	Paris bool `json:"paris" yaml:"paris" mapstructure:"paris"`
	// Retry configures how often a probe is resent when it could not be sent.
	Retry helper.RetryConfig `json:"retry" yaml:"retry" mapstructure:"retry"`
}

// DefaultOptions returns the options of a classic ICMP traceroute.
func DefaultOptions() Options {
	return Options{
		Protocol: probe.ProtocolICMP,
		MaxTTL:   DefaultMaxTTL,
		Queries:  DefaultQueries,
		Timeout:  DefaultTimeout,
		Retry:    helper.RetryConfig{Count: 1, Delay: 50 * time.Millisecond},
	}
}

// Validate checks the options and returns all violations joined.
func (o Options) Validate() error {
	var errs []error
	if !o.Protocol.IsValid() {
		errs = append(errs, fmt.Errorf("%w: %q", probe.ErrInvalidProtocol, o.Protocol))
	}
	if o.MaxTTL < 1 || o.MaxTTL > 255 {
		errs = append(errs, fmt.Errorf("%w: max hops must be between 1 and 255, got %d", ErrInvalidOptions, o.MaxTTL))
	}
	if o.Queries < 1 {
		errs = append(errs, fmt.Errorf("%w: queries must be at least 1, got %d", ErrInvalidOptions, o.Queries))
	}
	if o.Timeout <= 0 {
		errs = append(errs, fmt.Errorf("%w: timeout must be positive, got %v", ErrInvalidOptions, o.Timeout))
	}
	if o.Retry.Count < 0 {
		errs = append(errs, fmt.Errorf("%w: retry count must not be negative", ErrInvalidOptions))
	}
	return errors.Join(errs...)
}

// Sample is the outcome of one probe of a hop.
type Sample struct {
	RTT      time.Duration `json:"rtt" yaml:"rtt"`
	Answered bool          `json:"answered" yaml:"answered"`
}

// HopResult is the result of probing one TTL.
// Addr is invalid if no probe of the hop was answered.
type HopResult struct {
	TTL     int        `json:"ttl" yaml:"ttl"`
	Addr    netip.Addr `json:"addr" yaml:"addr"`
	Name    string     `json:"name,omitempty" yaml:"name,omitempty"`
	Samples []Sample   `json:"samples" yaml:"samples"`
	// Reached is true if the most recent answer came from the destination.
	Reached bool `json:"reached" yaml:"reached"`
}

// Stats are the round trip time statistics of the answered samples.
type Stats struct {
	Min time.Duration `json:"min" yaml:"min"`
	Avg time.Duration `json:"avg" yaml:"avg"`
	Max time.Duration `json:"max" yaml:"max"`
}

// Answered reports whether any probe of the hop was answered.
func (h HopResult) Answered() bool {
	return h.Addr.IsValid()
}

// Loss returns the fraction of lost samples in [0,1].
func (h HopResult) Loss() float64 {
	if len(h.Samples) == 0 {
		return 0
	}
	lost := 0
	for _, s := range h.Samples {
		if !s.Answered {
			lost++
		}
	}
	return float64(lost) / float64(len(h.Samples))
}

// Stats returns the statistics of the answered samples.
// It returns false if every sample was lost.
func (h HopResult) Stats() (Stats, bool) {
	return computeStats(h.Samples)
}

func computeStats(samples []Sample) (Stats, bool) {
	var (
		st    Stats
		n     int
		total time.Duration
	)
	for _, s := range samples {
		if !s.Answered {
			continue
		}
		if n == 0 || s.RTT < st.Min {
			st.Min = s.RTT
		}
		if n == 0 || s.RTT > st.Max {
			st.Max = s.RTT
		}
		total += s.RTT
		n++
	}
	if n == 0 {
		return Stats{}, false
	}
	st.Avg = total / time.Duration(n)
	return st, true
}

// Result is the result of a whole walk.
type Result struct {
	// Target is the host name or address the walk was started with.
	Target string `json:"target" yaml:"target"`
	// Addr is the resolved destination.
	Addr netip.Addr  `json:"addr" yaml:"addr"`
	Hops []HopResult `json:"hops" yaml:"hops"`
	// Reached is true if the destination answered.
	Reached bool `json:"reached" yaml:"reached"`
}

// Samples returns the samples of all hops.
func (r Result) Samples() []Sample {
	var s []Sample
	for _, h := range r.Hops {
		s = append(s, h.Samples...)
	}
	return s
}
