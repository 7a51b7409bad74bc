// Package benchmark measures the request hot paths that do not touch the
// network: credential decoding, registry lookups under contention, join
// identifier parsing and page assembly.
//
// Protocol clients are stubs, so results reflect gateway overhead only.
// A typical run against the registry at each cached connection count:
//
//	go test -run=^$ -bench=Registry -benchmem ./internal/tests/benchmark
//
// Save two runs and diff them with benchstat.
package benchmark
