// Package station provides the typed data services the benchview UI reads.
//
// Two services are built by composition over a subscription.Subscription:
//
//   - DashboardService follows the fleet snapshot stream of one dashboard
//     backend and maintains a keyed store of Station records (key
//     "host:port"). Snapshots are authoritative: stations missing from the
//     latest snapshot are pruned.
//
//   - StationService follows the test stream of one station backend and
//     maintains a keyed store of TestState records (key test id). Updates
//     are incremental per test id and never pruned by snapshot diffing.
//
// Both services run every inbound frame through the same three-step
// pipeline: validate (reject malformed frames without killing the stream),
// parse (raw JSON into typed records, wire status strings into enums), and
// apply (merge into the store in place so record identity is stable across
// updates, and consumers holding a *Station or *TestState keep seeing
// fresh data).
//
// Side requests (the per-test phase descriptor list and operator plug
// responses) use plain HTTP and are independent of the subscription
// lifecycle.
package station
