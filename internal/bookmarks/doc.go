// Package bookmarks is the repository layer backing the five pipeline
// agents: bookmark rows, user category lists, URL/tag categorization
// rules, and import_history bookkeeping. It follows the same
// sqlx-over-pgx repository shape as internal/store, kept as a separate
// package because these tables belong to the bookmark domain rather than
// the A2A task/artifact/message core.
package bookmarks
