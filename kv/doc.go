// Package kv wraps the shared Redis backend behind a small typed surface:
// hashes, sets, sorted sets, lists, strings with TTL, existence checks and
// liveness probing.
//
// Pooling:
//
// Connections come from a bounded pool (default 10) with FIFO reuse. When the
// pool is saturated, callers wait up to the command timeout instead of
// failing immediately.
//
// Liveness:
//
// Every command updates an availability flag that background loops consult
// before doing work. A backend outage therefore quiesces tickers rather than
// letting them spin; the next successful Ping restores them.
package kv
