// Package taxonomy implements the Categorization Agent's confidence
// scoring: matching a bookmark against a user's category list using AI
// suggestions, tag overlap, URL patterns, and title keywords, with
// user-defined rules short-circuiting the score.
package taxonomy
