// Package netscape parses bookmark export files for the Import Agent: the
// Netscape Bookmark HTML format and a JSON alternate form. Parsing never
// touches the database; callers turn a ParsedBookmark slice into rows.
package netscape
