package render

import (
	"bytes"
	"testing"
	"time"

	"github.com/lepinkainen/libris/internal/books"
	"github.com/lepinkainen/libris/internal/testutil"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"gopkg.in/yaml.v3"
)

func sampleBook() books.Book {
	released := time.Date(1965, time.January, 1, 0, 0, 0, 0, time.UTC)
	isbn := "9780441172719"
	publisher := "Ace Books"
	overview := "American science fiction author."

	author := books.NewAuthor("OL1A", "Frank Herbert")
	author.Overview = &overview
	author.Metadata.Overview = &overview
	author.Metadata.Aliases = []string{"Frank Patrick Herbert"}

	book := books.Book{
		ForeignBookID: "OL2W",
		Title:         "Dune",
		ReleaseDate:   &released,
		Editions: []books.Edition{{
			ForeignEditionID: "OL7M",
			Title:            "Dune",
			ISBN13:           &isbn,
			Publisher:        &publisher,
			ReleaseDate:      &released,
			PageCount:        535,
			Format:           "Hardcover",
			Monitored:        true,
		}},
	}
	book.SetAuthor(author)
	return book
}

func TestParseFormat(t *testing.T) {
	testCases := []struct {
		in      string
		want    Format
		wantErr bool
	}{
		{in: "", want: FormatJSON},
		{in: "json", want: FormatJSON},
		{in: "JSON", want: FormatJSON},
		{in: "yaml", want: FormatYAML},
		{in: " yml ", want: FormatYAML},
		{in: "xml", wantErr: true},
	}

	for _, tc := range testCases {
		t.Run(tc.in, func(t *testing.T) {
			got, err := ParseFormat(tc.in)
			if tc.wantErr {
				require.Error(t, err)
				return
			}
			require.NoError(t, err)
			assert.Equal(t, tc.want, got)
		})
	}
}

func TestWriteJSON(t *testing.T) {
	var buf bytes.Buffer
	require.NoError(t, Write(&buf, FormatJSON, sampleBook()))

	golden := testutil.NewGoldenHelper(t, "testdata")
	golden.AssertGoldenJSON("book.json", buf.Bytes())
	assert.Contains(t, buf.String(), "\n  \"foreignBookId\"")
}

func TestWriteYAML(t *testing.T) {
	var buf bytes.Buffer
	require.NoError(t, Write(&buf, FormatYAML, sampleBook()))

	var decoded map[string]any
	require.NoError(t, yaml.Unmarshal(buf.Bytes(), &decoded))

	assert.Equal(t, "OL2W", decoded["foreignBookId"])
	assert.Equal(t, "Dune", decoded["title"])

	author, ok := decoded["author"].(map[string]any)
	require.True(t, ok)
	assert.Equal(t, "Frank Herbert", author["name"])

	editions, ok := decoded["editions"].([]any)
	require.True(t, ok)
	require.Len(t, editions, 1)
	edition := editions[0].(map[string]any)
	assert.Equal(t, 535, edition["pageCount"])
	assert.Equal(t, "9780441172719", edition["isbn13"])
	assert.NotContains(t, edition, "isbn10")
}

func TestWriteEmptySlice(t *testing.T) {
	var buf bytes.Buffer
	require.NoError(t, Write(&buf, FormatJSON, []books.Book{}))
	assert.Equal(t, "[]\n", buf.String())
}

func TestWriteUnknownFormat(t *testing.T) {
	var buf bytes.Buffer
	err := Write(&buf, Format("xml"), sampleBook())
	require.Error(t, err)
	assert.Empty(t, buf.String())
}
