// SPDX-FileCopyrightText: 2025 Deutsche Telekom IT GmbH
//
// SPDX-License-Identifier: Apache-2.0

// Package report renders ping and traceroute results.
//
// The text format is line oriented and written while the run is in
// progress. The json and yaml formats write one document once the run
// has finished.
package report

import (
	"encoding/json"
	"fmt"
	"io"
	"strings"

	"github.com/telekom/netdiag/internal/ping"
	"github.com/telekom/netdiag/internal/traceroute"
	"gopkg.in/yaml.v3"
)

// Writer writes results in one [Format].
// It is not safe for concurrent use.
type Writer struct {
	out    io.Writer
	format Format
	// replies collects ping replies for the structured formats.
	replies []ping.Reply
}

// NewWriter returns a [Writer] writing to out.
func NewWriter(out io.Writer, format Format) *Writer {
	return &Writer{out: out, format: format}
}

// Header writes the line announcing a run, e.g. "Ping to: example.com...".
// Structured formats have no header.
func (w *Writer) Header(title, target string) error {
	if w.format != FormatText {
		return nil
	}
	_, err := fmt.Fprintf(w.out, "%s to: %s...\n", title, target)
	return err
}

// PingReply writes the outcome of one echo request.
func (w *Writer) PingReply(r ping.Reply) error {
	if w.format != FormatText {
		w.replies = append(w.replies, r)
		return nil
	}
	_, err := fmt.Fprintln(w.out, pingLine(r))
	return err
}

// PingSummary writes the statistics of a ping run.
func (w *Writer) PingSummary(s ping.Statistics) error {
	if w.format != FormatText {
		return w.encode(newPingDocument(s, w.replies))
	}
	minRTT, avgRTT, maxRTT, ok := s.MinAvgMax()
	return w.summary(s.Loss(), ok, millis(minRTT), millis(avgRTT), millis(maxRTT))
}

// Hop writes one hop of a walk followed by its statistics.
func (w *Writer) Hop(h traceroute.HopResult) error {
	if w.format != FormatText {
		return nil
	}
	if _, err := fmt.Fprintln(w.out, hopLine(h)); err != nil {
		return err
	}
	st, ok := h.Stats()
	return w.summary(h.Loss(), ok, millis(st.Min), millis(st.Avg), millis(st.Max))
}

// TraceSummary writes the result of a walk. Text output was already
// written hop by hop.
func (w *Writer) TraceSummary(r traceroute.Result) error {
	if w.format != FormatText {
		return w.encode(newTraceDocument(r))
	}
	return nil
}

// summary writes the loss line and, if anything was answered, the rtt line.
func (w *Writer) summary(loss float64, answered bool, minMs, avgMs, maxMs float64) error {
	if _, err := fmt.Fprintf(w.out, "%.2f%% packet loss\n", loss*100); err != nil {
		return err
	}
	if !answered {
		return nil
	}
	_, err := fmt.Fprintf(w.out, "rtt min/avg/max = %.2f/%.2f/%.2f ms\n", minMs, avgMs, maxMs)
	return err
}

func (w *Writer) encode(doc any) error {
	switch w.format {
	case FormatJSON:
		enc := json.NewEncoder(w.out)
		enc.SetIndent("", "  ")
		return enc.Encode(doc)
	case FormatYAML:
		enc := yaml.NewEncoder(w.out)
		enc.SetIndent(2)
		if err := enc.Encode(doc); err != nil {
			return err
		}
		return enc.Close()
	default:
		return fmt.Errorf("%w: %q", ErrInvalidFormat, w.format)
	}
}

// pingLine formats one echo request outcome.
func pingLine(r ping.Reply) string {
	if !r.Answered {
		if r.Error != "" {
			return fmt.Sprintf("From %s icmp_seq=%d %s", r.Addr, r.Seq, r.Error)
		}
		return fmt.Sprintf("Request timeout for icmp_seq %d", r.Seq)
	}
	if r.Name != "" {
		return fmt.Sprintf("%d bytes from %s (%s): ttl=%d time=%.2f ms", r.Size, r.Name, r.Addr, r.TTL, millis(r.RTT))
	}
	return fmt.Sprintf("%d bytes from %s: ttl=%d time=%.2f ms", r.Size, r.Addr, r.TTL, millis(r.RTT))
}

// hopLine formats one hop. Hops without any answer only show their
// TTL and a star per lost probe, the host name is left out when unknown.
func hopLine(h traceroute.HopResult) string {
	var b strings.Builder
	for _, s := range h.Samples {
		if s.Answered {
			b.WriteString(hopMillis(s.RTT))
			b.WriteString(" ms  ")
			continue
		}
		b.WriteString("* ")
	}
	samples := strings.TrimRight(b.String(), " ")

	if !h.Answered() {
		return fmt.Sprintf("%d %s", h.TTL, samples)
	}
	if h.Name == "" {
		return fmt.Sprintf("%d %s %s", h.TTL, h.Addr, samples)
	}
	return fmt.Sprintf("%d %s (%s) %s", h.TTL, h.Name, h.Addr, samples)
}
