// Package browserpool gives the Validation and Enrichment agents a shared,
// capacity-bounded way to fetch a bookmark's URL and parse the response: a
// weighted semaphore caps concurrent outbound requests and a goquery
// document gives callers structured access to title, meta description, and
// the error-page heuristic without each agent re-implementing HTTP fetch
// and parse plumbing. An LRU cache remembers each URL's last navigation
// result so repeated fetches of the same bookmark don't repeat the
// network round trip.
package browserpool
