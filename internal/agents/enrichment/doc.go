// Package enrichment implements the Enrichment Agent: it
// calls a pluggable AI completion capability, rate-limited and bounded to
// K concurrent in-flight calls, and flushes successful results in one
// batched write.
package enrichment
