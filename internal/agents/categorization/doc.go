// Package categorization implements the Categorization Agent (spec
// §4.6.4): confidence-scored category assignment built on
// internal/taxonomy's scoring function and internal/bookmarks' category
// repository, seeding the user's default taxonomy on first use.
package categorization
