// Package ai defines the pluggable AI capabilities the Enrichment and
// Embedding agents depend on: a completion client for
// category/tags/summary/keyword generation and an embedding client for
// fixed-dimension bookmark vectors. Both ship a mock alongside the real
// implementation so agents can be exercised without a live API key.
package ai
