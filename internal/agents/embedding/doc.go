// Package embedding implements the Embedding Agent: it
// builds a textual representation of each bookmark, calls a pluggable
// embedding capability, and stores the resulting vector in
// internal/embedstore, processed in parallel batches.
package embedding
