// Package usage records per-request token consumption and cost, backed by
// SQLite. The gateway writes one record per completed analysis and serves
// aggregated summaries from the same store.
package usage
