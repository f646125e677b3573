// SPDX-FileCopyrightText: 2025 Deutsche Telekom IT GmbH
//
// SPDX-License-Identifier: Apache-2.0

package report

import (
	"github.com/telekom/netdiag/internal/ping"
	"github.com/telekom/netdiag/internal/traceroute"
)

// rttDocument holds round trip time statistics in milliseconds.
type rttDocument struct {
	Min float64 `json:"min" yaml:"min"`
	Avg float64 `json:"avg" yaml:"avg"`
	Max float64 `json:"max" yaml:"max"`
}

type replyDocument struct {
	Seq      int      `json:"seq" yaml:"seq"`
	Answered bool     `json:"answered" yaml:"answered"`
	Addr     string   `json:"addr,omitempty" yaml:"addr,omitempty"`
	Name     string   `json:"name,omitempty" yaml:"name,omitempty"`
	TTL      int      `json:"ttl,omitempty" yaml:"ttl,omitempty"`
	Size     int      `json:"size,omitempty" yaml:"size,omitempty"`
	RTT      *float64 `json:"rttMs,omitempty" yaml:"rttMs,omitempty"`
	Error    string   `json:"error,omitempty" yaml:"error,omitempty"`
}

type pingDocument struct {
	Target      string          `json:"target" yaml:"target"`
	Addr        string          `json:"addr" yaml:"addr"`
	Transmitted int             `json:"transmitted" yaml:"transmitted"`
	Received    int             `json:"received" yaml:"received"`
	LossPercent float64         `json:"lossPercent" yaml:"lossPercent"`
	RTT         *rttDocument    `json:"rttMs,omitempty" yaml:"rttMs,omitempty"`
	Replies     []replyDocument `json:"replies" yaml:"replies"`
}

func newPingDocument(s ping.Statistics, replies []ping.Reply) pingDocument {
	doc := pingDocument{
		Target:      s.Target,
		Addr:        addrString(s.Addr.IsValid(), s.Addr.String()),
		Transmitted: s.Transmitted,
		Received:    s.Received,
		LossPercent: s.Loss() * 100,
		Replies:     make([]replyDocument, 0, len(replies)),
	}
	if minRTT, avgRTT, maxRTT, ok := s.MinAvgMax(); ok {
		doc.RTT = &rttDocument{Min: millis(minRTT), Avg: millis(avgRTT), Max: millis(maxRTT)}
	}
	for _, r := range replies {
		rd := replyDocument{Seq: r.Seq, Answered: r.Answered}
		if r.Answered {
			rtt := millis(r.RTT)
			rd.Addr = r.Addr.String()
			rd.Name = r.Name
			rd.TTL = r.TTL
			rd.Size = r.Size
			rd.RTT = &rtt
		}
		if r.Error != "" {
			rd.Addr = r.Addr.String()
			rd.Error = r.Error
		}
		doc.Replies = append(doc.Replies, rd)
	}
	return doc
}

type hopDocument struct {
	TTL         int          `json:"ttl" yaml:"ttl"`
	Addr        string       `json:"addr,omitempty" yaml:"addr,omitempty"`
	Name        string       `json:"name,omitempty" yaml:"name,omitempty"`
	Reached     bool         `json:"reached" yaml:"reached"`
	Samples     []*float64   `json:"samplesMs" yaml:"samplesMs"`
	LossPercent float64      `json:"lossPercent" yaml:"lossPercent"`
	RTT         *rttDocument `json:"rttMs,omitempty" yaml:"rttMs,omitempty"`
}

type traceDocument struct {
	Target  string        `json:"target" yaml:"target"`
	Addr    string        `json:"addr" yaml:"addr"`
	Reached bool          `json:"reached" yaml:"reached"`
	Hops    []hopDocument `json:"hops" yaml:"hops"`
}

func newTraceDocument(r traceroute.Result) traceDocument {
	doc := traceDocument{
		Target:  r.Target,
		Addr:    addrString(r.Addr.IsValid(), r.Addr.String()),
		Reached: r.Reached,
		Hops:    make([]hopDocument, 0, len(r.Hops)),
	}
	for _, h := range r.Hops {
		hd := hopDocument{
			TTL:         h.TTL,
			Addr:        addrString(h.Answered(), h.Addr.String()),
			Name:        h.Name,
			Reached:     h.Reached,
			Samples:     make([]*float64, 0, len(h.Samples)),
			LossPercent: h.Loss() * 100,
		}
		// Lost samples are null.
		for _, s := range h.Samples {
			if !s.Answered {
				hd.Samples = append(hd.Samples, nil)
				continue
			}
			rtt := millis(s.RTT)
			hd.Samples = append(hd.Samples, &rtt)
		}
		if st, ok := h.Stats(); ok {
			hd.RTT = &rttDocument{Min: millis(st.Min), Avg: millis(st.Avg), Max: millis(st.Max)}
		}
		doc.Hops = append(doc.Hops, hd)
	}
	return doc
}

func addrString(valid bool, s string) string {
	if !valid {
		return ""
	}
	return s
}
