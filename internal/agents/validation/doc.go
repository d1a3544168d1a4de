// Package validation implements the Validation Agent: it
// fetches each bookmark's URL through a shared browser pool, classifies
// the outcome, and merges the resulting metadata back onto the bookmark
// row.
package validation
