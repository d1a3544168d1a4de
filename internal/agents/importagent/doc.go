// Package importagent implements the Import Agent: it
// parses a Netscape-format or JSON bookmark export, inserts bookmarks in
// chunked transactions, and tracks the run in import_history.
package importagent
