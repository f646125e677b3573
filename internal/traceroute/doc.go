// Package traceroute discovers the path to a target by sending probes
// with increasing TTLs and collecting the ICMP time-exceeded replies of
// the routers along the way.
//
// The [Client] walks TTL 1 up to [Options.MaxTTL]. For every TTL it
// sends [Options.Queries] probes, one after another, through a
// [probe.Transport] and aggregates them into a [HopResult]. The walk
// stops as soon as the destination itself answers, either with an echo
// reply or a destination-unreachable message.
//
// Key features:
//   - ICMP and UDP probes, optionally in Paris mode where all probes of a
//     walk share one flow so load balancers keep them on one path
//   - Reverse DNS of responding routers through a cached [resolver.Resolver]
//   - OpenTelemetry spans for the walk and each hop
//   - Prometheus metrics for hop counts and round trip times
//
// Typical usage:
//
//	client := traceroute.NewClient(probe.NewTransport(probe.Config{}), resolver.New())
//	res, err := client.Run(ctx, "example.com", traceroute.DefaultOptions(), func(h traceroute.HopResult) {
//		fmt.Println(h.TTL, h.Addr)
//	})
package traceroute
