package netscape

import (
	"strings"
	"testing"

	"github.com/stretchr/testify/require"
)

const sampleHTML = `<!DOCTYPE NETSCAPE-Bookmark-file-1>
<DL><p>
    <DT><H3>Dev Tools</H3>
    <DL><p>
        <DT><A HREF="https://golang.org" ADD_DATE="1700000000" ICON="data:foo" TAGS="go,lang">The Go Programming Language</A>
        <DT><A HREF="about:blank">Skipped Blank</A>
        <DT><A HREF="ftp://example.com/file">Skipped Non-HTTP</A>
        <DT><A HREF="">Skipped Empty</A>
    </DL><p>
</DL><p>
`

func TestParseHTMLExtractsValidEntries(t *testing.T) {
	bookmarks, err := ParseHTML(strings.NewReader(sampleHTML))
	require.NoError(t, err)
	require.Len(t, bookmarks, 1)

	b := bookmarks[0]
	require.Equal(t, "https://golang.org", b.URL)
	require.Equal(t, "The Go Programming Language", b.Title)
	require.Equal(t, []string{"go", "lang"}, b.Tags)
	require.Equal(t, "Dev Tools", b.Folder)
	require.False(t, b.AddDate.IsZero())
}

func TestParseHTMLEmptyDocument(t *testing.T) {
	bookmarks, err := ParseHTML(strings.NewReader("<html></html>"))
	require.NoError(t, err)
	require.Empty(t, bookmarks)
}

func TestParseJSONValid(t *testing.T) {
	input := `{"bookmarks":[
		{"url":"https://example.com","title":"Example","tags":["a","b"],"dateAdded":1700000000},
		{"url":"about:blank","title":"skip me"}
	]}`
	bookmarks, err := ParseJSON(strings.NewReader(input))
	require.NoError(t, err)
	require.Len(t, bookmarks, 1)
	require.Equal(t, "https://example.com", bookmarks[0].URL)
}

func TestParseJSONRepairsTrailingComma(t *testing.T) {
	input := `{"bookmarks":[{"url":"https://example.com","title":"Example",},]}`
	bookmarks, err := ParseJSON(strings.NewReader(input))
	require.NoError(t, err)
	require.Len(t, bookmarks, 1)
}
