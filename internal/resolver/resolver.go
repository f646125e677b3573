// SPDX-FileCopyrightText: 2025 Deutsche Telekom IT GmbH
//
// SPDX-License-Identifier: Apache-2.0

// Package resolver resolves probe targets to IPv4 addresses and
// responding addresses back to host names.
package resolver

import (
	"context"
	"fmt"
	"net"
	"net/netip"
	"strings"
	"time"

	"github.com/jellydator/ttlcache/v3"
	"github.com/telekom/netdiag/internal/logger"
)

const (
	// defaultNameTTL is how long reverse lookups are cached.
	defaultNameTTL = 10 * time.Minute
	// defaultCapacity bounds the number of cached reverse lookups.
	defaultCapacity = 4096
)

//go:generate go tool moq -out resolver_moq.go . Resolver
type Resolver interface {
	// LookupTarget resolves host to an IPv4 address. Literal IPv4
	// addresses are returned as they are.
	LookupTarget(ctx context.Context, host string) (netip.Addr, error)
	// LookupName returns the host name of addr or an empty string
	// if it has none. It never fails.
	LookupName(ctx context.Context, addr netip.Addr) string
}

// lookuper is the subset of [net.Resolver] used by the resolver.
type lookuper interface {
	LookupNetIP(ctx context.Context, network, host string) ([]netip.Addr, error)
	LookupAddr(ctx context.Context, addr string) ([]string, error)
}

var _ Resolver = (*resolver)(nil)

type resolver struct {
	lookup lookuper
	names  *ttlcache.Cache[netip.Addr, string]
}

// New returns a [Resolver] using the system resolver.
// Reverse lookups are cached, including the ones that returned no name.
func New() Resolver {
	return newResolver(net.DefaultResolver, defaultNameTTL)
}

func newResolver(l lookuper, ttl time.Duration) *resolver {
	return &resolver{
		lookup: l,
		names: ttlcache.New(
			ttlcache.WithTTL[netip.Addr, string](ttl),
			ttlcache.WithCapacity[netip.Addr, string](defaultCapacity),
			ttlcache.WithDisableTouchOnHit[netip.Addr, string](),
		),
	}
}

func (r *resolver) LookupTarget(ctx context.Context, host string) (netip.Addr, error) {
	log := logger.FromContext(ctx).With("host", host)

	if addr, err := netip.ParseAddr(host); err == nil {
		addr = addr.Unmap()
		if !addr.Is4() {
			return netip.Addr{}, fmt.Errorf("%w %q: not an IPv4 address", ErrResolve, host)
		}
		return addr, nil
	}

	addrs, err := r.lookup.LookupNetIP(ctx, "ip4", host)
	if err != nil {
		log.DebugContext(ctx, "Forward lookup failed", "error", err)
		return netip.Addr{}, fmt.Errorf("%w %q: %w", ErrResolve, host, err)
	}
	for _, a := range addrs {
		if a = a.Unmap(); a.Is4() {
			log.DebugContext(ctx, "Resolved target", "addr", a)
			return a, nil
		}
	}
	return netip.Addr{}, fmt.Errorf("%w %q: no IPv4 address found", ErrResolve, host)
}

func (r *resolver) LookupName(ctx context.Context, addr netip.Addr) string {
	if !addr.IsValid() {
		return ""
	}
	if item := r.names.Get(addr); item != nil {
		return item.Value()
	}

	var name string
	names, err := r.lookup.LookupAddr(ctx, addr.String())
	switch {
	case err != nil:
		logger.FromContext(ctx).DebugContext(ctx, "Reverse lookup failed", "addr", addr, "error", err)
	case len(names) > 0:
		name = strings.TrimSuffix(names[0], ".")
	}

	r.names.Set(addr, name, ttlcache.DefaultTTL)
	return name
}
