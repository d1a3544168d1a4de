// Package ratelimit wraps golang.org/x/time/rate for the Enrichment
// Agent's external AI call budget: a single process-wide limiter shared
// across concurrent bookmark enrichments.
package ratelimit
