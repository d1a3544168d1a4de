package netscape

import (
	"encoding/json"
	"fmt"
	"io"
	"time"

	"github.com/kaptinlin/jsonrepair"
)

// jsonExport is the JSON alternate export form: a top-level bookmarks
// array of { url, title, description?, tags?, folder?, dateAdded, icon? }.
type jsonExport struct {
	Bookmarks []jsonBookmark `json:"bookmarks"`
}

type jsonBookmark struct {
	URL         string   `json:"url"`
	Title       string   `json:"title"`
	Description string   `json:"description"`
	Tags        []string `json:"tags"`
	Folder      string   `json:"folder"`
	DateAdded   int64    `json:"dateAdded"`
	Icon        string   `json:"icon"`
}

// ParseJSON reads the JSON alternate export form. Malformed JSON (a
// trailing comma, an unquoted key) is repaired best-effort before parsing,
// since hand-edited exports are common in the wild.
func ParseJSON(r io.Reader) ([]ParsedBookmark, error) {
	raw, err := io.ReadAll(r)
	if err != nil {
		return nil, fmt.Errorf("read json export: %w", err)
	}

	var export jsonExport
	if err := json.Unmarshal(raw, &export); err != nil {
		repaired, repairErr := jsonrepair.JSONRepair(string(raw))
		if repairErr != nil {
			return nil, fmt.Errorf("parse json export: %w", err)
		}
		if err := json.Unmarshal([]byte(repaired), &export); err != nil {
			return nil, fmt.Errorf("parse repaired json export: %w", err)
		}
	}

	bookmarks := make([]ParsedBookmark, 0, len(export.Bookmarks))
	for _, b := range export.Bookmarks {
		if !isAcceptableURL(b.URL) {
			continue
		}
		parsed := ParsedBookmark{
			URL:         b.URL,
			Title:       b.Title,
			Description: b.Description,
			Tags:        b.Tags,
			Folder:      b.Folder,
			Icon:        b.Icon,
		}
		if b.DateAdded > 0 {
			parsed.AddDate = time.Unix(b.DateAdded, 0).UTC()
		}
		bookmarks = append(bookmarks, parsed)
	}
	return bookmarks, nil
}
