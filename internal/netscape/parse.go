package netscape

import (
	"fmt"
	"io"
	"strconv"
	"strings"
	"time"

	"golang.org/x/net/html"
)

// ParsedBookmark is one entry recovered from an export file, before any
// database-specific validation (duplicate checking, user scoping) runs.
type ParsedBookmark struct {
	URL         string
	Title       string
	AddDate     time.Time
	Icon        string
	Tags        []string
	Folder      string
	Description string
}

// ParseHTML reads a Netscape Bookmark HTML export and returns every valid
// entry it finds inside <A HREF="..."> tags. Entries whose URL is empty,
// "about:blank", or not http(s) are silently skipped, per the format's
// long-standing tolerance for browser-internal placeholder links.
func ParseHTML(r io.Reader) ([]ParsedBookmark, error) {
	tokenizer := html.NewTokenizer(r)
	var bookmarks []ParsedBookmark
	var folderStack []string
	var pendingTitle string
	inAnchor := false
	var pending ParsedBookmark

	for {
		tt := tokenizer.Next()
		switch tt {
		case html.ErrorToken:
			if err := tokenizer.Err(); err != io.EOF {
				return nil, fmt.Errorf("parse netscape html: %w", err)
			}
			return bookmarks, nil

		case html.StartTagToken, html.SelfClosingTagToken:
			token := tokenizer.Token()
			switch strings.ToLower(token.Data) {
			case "a":
				inAnchor = true
				pending = ParsedBookmark{}
				if len(folderStack) > 0 {
					pending.Folder = folderStack[len(folderStack)-1]
				}
				for _, attr := range token.Attr {
					switch strings.ToUpper(attr.Key) {
					case "HREF":
						pending.URL = attr.Val
					case "ADD_DATE":
						if secs, err := strconv.ParseInt(attr.Val, 10, 64); err == nil {
							pending.AddDate = time.Unix(secs, 0).UTC()
						}
					case "ICON":
						pending.Icon = attr.Val
					case "TAGS":
						pending.Tags = splitTags(attr.Val)
					}
				}
			case "h3":
				pendingTitle = "" // next text token names a folder
			}

		case html.EndTagToken:
			token := tokenizer.Token()
			switch strings.ToLower(token.Data) {
			case "a":
				if inAnchor && isAcceptableURL(pending.URL) {
					pending.Title = strings.TrimSpace(pending.Title)
					bookmarks = append(bookmarks, pending)
				}
				inAnchor = false
			case "dl":
				if len(folderStack) > 0 {
					folderStack = folderStack[:len(folderStack)-1]
				}
			}

		case html.TextToken:
			text := string(tokenizer.Text())
			if inAnchor {
				pending.Title += text
			} else {
				pendingTitle += text
			}

		case html.CommentToken:
			// Netscape exports wrap some metadata in comments; ignored.
		}

		if tt == html.StartTagToken {
			token := tokenizer.Token()
			if strings.ToLower(token.Data) == "dl" && strings.TrimSpace(pendingTitle) != "" {
				folderStack = append(folderStack, strings.TrimSpace(pendingTitle))
				pendingTitle = ""
			}
		}
	}
}

// isAcceptableURL rejects empty URLs, about:blank, and any scheme other
// than http/https.
func isAcceptableURL(raw string) bool {
	if raw == "" || raw == "about:blank" {
		return false
	}
	lower := strings.ToLower(raw)
	return strings.HasPrefix(lower, "http://") || strings.HasPrefix(lower, "https://")
}

func splitTags(raw string) []string {
	if raw == "" {
		return nil
	}
	parts := strings.Split(raw, ",")
	tags := make([]string, 0, len(parts))
	for _, p := range parts {
		if t := strings.TrimSpace(p); t != "" {
			tags = append(tags, t)
		}
	}
	return tags
}
