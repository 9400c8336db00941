package cmd

import (
	"bytes"
	"encoding/json"
	stdErrors "errors"
	"os"
	"testing"

	"github.com/alecthomas/assert/v2"
	"github.com/alecthomas/kong"
	"github.com/lepinkainen/libris/internal/books"
	"github.com/lepinkainen/libris/internal/cache"
	"github.com/lepinkainen/libris/internal/config"
	"github.com/lepinkainen/libris/internal/errors"
	"github.com/lepinkainen/libris/internal/metadata"
	"github.com/lepinkainen/libris/internal/testutil"
	"github.com/lepinkainen/libris/internal/tui"
	"github.com/spf13/viper"
)

const (
	herbertJSON = `{
		"key": "/authors/OL1A",
		"name": "Frank Herbert",
		"birth_date": "8 October 1920",
		"bio": "American science fiction author."
	}`
	duneWorkJSON = `{
		"key": "/works/OL1W",
		"title": "Dune",
		"first_publish_date": "1965",
		"authors": [{"author": {"key": "/authors/OL1A"}}]
	}`
	duneSearchJSON = `{
		"numFound": 1,
		"start": 0,
		"docs": [{
			"key": "/works/OL1W",
			"title": "Dune",
			"author_key": ["OL1A"],
			"author_name": ["Frank Herbert"],
			"first_publish_year": 1965
		}]
	}`
)

type cmdFixture struct {
	env *testutil.TestEnv
	srv *testutil.CatalogServer
	out *bytes.Buffer
}

// newCmdFixture points the configuration at a fake catalog, stores the cache
// inside a temp dir and captures rendered output.
func newCmdFixture(t *testing.T) *cmdFixture {
	t.Helper()

	env := testutil.NewTestEnv(t)
	srv := testutil.NewCatalogServer(t)
	testutil.LoadTestConfig(t, env, srv.URL)

	out := &bytes.Buffer{}
	origStdout := stdout
	stdout = out
	t.Cleanup(func() { stdout = origStdout })

	return &cmdFixture{
		env: env,
		srv: srv,
		out: out,
	}
}

func parseCLI(t *testing.T, args ...string) (*CLI, *kong.Context) {
	t.Helper()

	originalArgs := os.Args
	os.Args = append([]string{"libris"}, args...)
	t.Cleanup(func() { os.Args = originalArgs })

	cli := &CLI{}
	opts := append(kongOptions(), kong.Exit(func(code int) {
		t.Fatalf("unexpected Kong exit %d", code)
	}))
	ctx := kong.Parse(cli, opts...)

	return cli, ctx
}

func runCLI(t *testing.T, args ...string) error {
	t.Helper()

	cli, ctx := parseCLI(t, args...)
	applyGlobalFlags(&cli.Globals)
	return ctx.Run(&cli.Globals)
}

func TestGlobalFlagParsing(t *testing.T) {
	testutil.ResetConfig(t)

	cli, ctx := parseCLI(t, "--cache-db-file", "/tmp/libris.db", "--no-cache", "-o", "yaml", "-v", "author", "OL1A")

	assert.Equal(t, "author <id>", ctx.Command())
	assert.Equal(t, "OL1A", cli.Author.ID)
	assert.Equal(t, "/tmp/libris.db", cli.CacheDBFile)
	assert.True(t, cli.NoCache)
	assert.True(t, cli.Verbose)
	assert.Equal(t, "yaml", cli.Format)

	applyGlobalFlags(&cli.Globals)
	assert.Equal(t, "/tmp/libris.db", viper.GetString(config.KeyCacheDBFile))
}

func TestGlobalFlagDefaults(t *testing.T) {
	testutil.ResetConfig(t)

	cli, _ := parseCLI(t, "book", "/works/OL1W")

	assert.Equal(t, "/works/OL1W", cli.Book.ID)
	assert.Equal(t, "json", cli.Format)
	assert.False(t, cli.NoCache)

	applyGlobalFlags(&cli.Globals)
	assert.Equal(t, "./cache.db", viper.GetString(config.KeyCacheDBFile))
}

func TestSearchCommandParsing(t *testing.T) {
	cli, ctx := parseCLI(t, "search", "Dune", "--author", "Frank Herbert", "-i", "--all-editions")

	assert.Equal(t, "search <title>", ctx.Command())
	assert.Equal(t, "Dune", cli.Search.Title)
	assert.Equal(t, "Frank Herbert", cli.Search.Author)
	assert.True(t, cli.Search.Interactive)
	assert.True(t, cli.Search.AllEditions)
}

func TestCacheCommandParsing(t *testing.T) {
	cli, ctx := parseCLI(t, "cache", "invalidate", "search")
	assert.Equal(t, "cache invalidate <source>", ctx.Command())
	assert.Equal(t, "search", cli.Cache.Invalidate.Source)

	_, ctx = parseCLI(t, "cache", "clear-expired")
	assert.Equal(t, "cache clear-expired", ctx.Command())
}

func TestAuthorCommand(t *testing.T) {
	f := newCmdFixture(t)
	f.srv.Handle("/authors/OL1A.json", herbertJSON)

	err := runCLI(t, "author", "/authors/OL1A")
	assert.NoError(t, err)

	var author books.Author
	assert.NoError(t, json.Unmarshal(f.out.Bytes(), &author))
	assert.Equal(t, "OL1A", author.ForeignAuthorID)
	assert.Equal(t, "Frank Herbert", author.Name)
	assert.True(t, f.env.FileExists("cache/test-cache.db"))
}

func TestAuthorCommandYAML(t *testing.T) {
	f := newCmdFixture(t)
	f.srv.Handle("/authors/OL1A.json", herbertJSON)

	err := runCLI(t, "--format", "yaml", "author", "OL1A")
	assert.NoError(t, err)
	assert.Contains(t, f.out.String(), "foreignAuthorId: OL1A")
	assert.Contains(t, f.out.String(), "name: Frank Herbert")
}

func TestAuthorCommandNotFound(t *testing.T) {
	newCmdFixture(t)

	err := runCLI(t, "author", "OL404A")
	assert.True(t, errors.IsNotFound(err))
}

func TestBookCommandUsesCacheAcrossRuns(t *testing.T) {
	f := newCmdFixture(t)
	f.srv.Handle("/works/OL1W.json", duneWorkJSON)
	f.srv.Handle("/authors/OL1A.json", herbertJSON)

	assert.NoError(t, runCLI(t, "book", "OL1W"))

	var info metadata.BookInfo
	assert.NoError(t, json.Unmarshal(f.out.Bytes(), &info))
	assert.Equal(t, "OL1W", info.ForeignBookID)
	assert.Equal(t, "Dune", info.Book.Title)
	assert.Equal(t, 1, len(info.Authors))
	assert.Equal(t, "OL1A", info.Authors[0].ForeignAuthorID)

	assert.NoError(t, runCLI(t, "book", "OL1W"))
	assert.Equal(t, 1, f.srv.Hits("/works/OL1W.json"))

	assert.NoError(t, runCLI(t, "--no-cache", "book", "OL1W"))
	assert.Equal(t, 2, f.srv.Hits("/works/OL1W.json"))
}

func TestCacheDisabledByConfig(t *testing.T) {
	f := newCmdFixture(t)
	f.srv.Handle("/authors/OL1A.json", herbertJSON)
	testutil.SetViperValue(t, config.KeyCacheOff, true)

	assert.NoError(t, runCLI(t, "author", "OL1A"))
	assert.NoError(t, runCLI(t, "author", "OL1A"))

	assert.Equal(t, 2, f.srv.Hits("/authors/OL1A.json"))
	assert.False(t, f.env.FileExists("cache/test-cache.db"))
}

func TestUnavailableCacheDoesNotFailLookups(t *testing.T) {
	f := newCmdFixture(t)
	f.srv.Handle("/authors/OL1A.json", herbertJSON)

	origOpen := openCache
	openCache = func(string) (*cache.CacheDB, error) { return nil, stdErrors.New("disk full") }
	t.Cleanup(func() { openCache = origOpen })

	assert.NoError(t, runCLI(t, "author", "OL1A"))
	assert.Contains(t, f.out.String(), `"foreignAuthorId": "OL1A"`)
}

func TestSearchCommand(t *testing.T) {
	f := newCmdFixture(t)
	f.srv.Handle("/search.json", duneSearchJSON)

	assert.NoError(t, runCLI(t, "search", "Dune", "--author", "Frank Herbert"))

	var results []books.Book
	assert.NoError(t, json.Unmarshal(f.out.Bytes(), &results))
	assert.Equal(t, 1, len(results))
	assert.Equal(t, "OL1W", results[0].ForeignBookID)
	assert.Equal(t, "Frank Herbert", results[0].Author.Name)

	queries := f.srv.Queries("/search.json")
	assert.Equal(t, 1, len(queries))
	assert.Contains(t, queries[0].Get("q"), "Dune")
	assert.Contains(t, queries[0].Get("q"), "Frank Herbert")
}

func TestSearchCommandUnreachableCatalogRendersEmpty(t *testing.T) {
	f := newCmdFixture(t)
	f.srv.Close()

	assert.NoError(t, runCLI(t, "search", "Dune"))
	assert.Equal(t, "[]\n", f.out.String())
}

func stubSelection(t *testing.T, result tui.SelectionResult) *[]books.Book {
	t.Helper()

	var offered []books.Book
	orig := selectBook
	selectBook = func(_ string, results []books.Book) (tui.SelectionResult, error) {
		offered = results
		if result.Action == tui.ActionSelected && len(results) > 0 {
			result.Selection = &results[0]
		}
		return result, nil
	}
	t.Cleanup(func() { selectBook = orig })

	return &offered
}

func TestSearchCommandInteractiveResolvesSelection(t *testing.T) {
	f := newCmdFixture(t)
	f.srv.Handle("/search.json", duneSearchJSON)
	f.srv.Handle("/works/OL1W.json", duneWorkJSON)
	f.srv.Handle("/authors/OL1A.json", herbertJSON)
	offered := stubSelection(t, tui.SelectionResult{Action: tui.ActionSelected})

	assert.NoError(t, runCLI(t, "search", "Dune", "--interactive"))
	assert.Equal(t, 1, len(*offered))

	var info metadata.BookInfo
	assert.NoError(t, json.Unmarshal(f.out.Bytes(), &info))
	assert.Equal(t, "OL1W", info.ForeignBookID)
	assert.Equal(t, 1, f.srv.Hits("/works/OL1W.json"))
}

func TestSearchCommandInteractiveSkip(t *testing.T) {
	f := newCmdFixture(t)
	f.srv.Handle("/search.json", duneSearchJSON)
	stubSelection(t, tui.SelectionResult{Action: tui.ActionSkipped})

	assert.NoError(t, runCLI(t, "search", "Dune", "-i"))
	assert.Equal(t, "", f.out.String())
	assert.Equal(t, 0, f.srv.Hits("/works/OL1W.json"))
}

func TestSearchCommandInteractiveStop(t *testing.T) {
	f := newCmdFixture(t)
	f.srv.Handle("/search.json", duneSearchJSON)
	stubSelection(t, tui.SelectionResult{Action: tui.ActionStopped})

	err := runCLI(t, "search", "Dune", "-i")
	assert.True(t, errors.IsStopProcessingError(err))
}

func TestSearchAuthorCommand(t *testing.T) {
	f := newCmdFixture(t)
	f.srv.Handle("/search.json", duneSearchJSON)

	assert.NoError(t, runCLI(t, "search-author", "Herbert"))

	var authors []books.Author
	assert.NoError(t, json.Unmarshal(f.out.Bytes(), &authors))
	assert.Equal(t, 1, len(authors))
	assert.Equal(t, "OL1A", authors[0].ForeignAuthorID)
}

func TestIsbnAndAsinCommands(t *testing.T) {
	for _, args := range [][]string{{"isbn", "9780441172719"}, {"asin", "0441172717"}} {
		t.Run(args[0], func(t *testing.T) {
			f := newCmdFixture(t)
			f.srv.Handle("/search.json", duneSearchJSON)
			f.srv.Handle("/works/OL1W.json", duneWorkJSON)
			f.srv.Handle("/authors/OL1A.json", herbertJSON)

			assert.NoError(t, runCLI(t, args...))

			var results []books.Book
			assert.NoError(t, json.Unmarshal(f.out.Bytes(), &results))
			assert.Equal(t, 1, len(results))
			assert.Equal(t, "OL1W", results[0].ForeignBookID)

			queries := f.srv.Queries("/search.json")
			assert.Equal(t, "isbn:"+args[1], queries[0].Get("q"))
		})
	}
}

func TestCacheClearExpiredCommand(t *testing.T) {
	f := newCmdFixture(t)
	dbPath := f.env.Path("maintenance.db")

	assert.NoError(t, runCLI(t, "--cache-db-file", dbPath, "cache", "clear-expired"))
	assert.True(t, f.env.FileExists("maintenance.db"))
}

func TestOpenSessionRejectsUnknownFormat(t *testing.T) {
	newCmdFixture(t)

	_, err := openSession(&Globals{Format: "xml"})
	assert.Error(t, err)
}

func TestOpenSessionRejectsInvalidConfig(t *testing.T) {
	newCmdFixture(t)
	testutil.SetViperValue(t, config.KeySearchLimit, 0)

	_, err := openSession(&Globals{Format: "json"})
	assert.Error(t, err)
}
