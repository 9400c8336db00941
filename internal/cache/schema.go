package cache

// SQL schemas for cache tables.
// Timestamps are unix nanoseconds; expires_at is fixed at write time from the caller's TTL.

// Table names
const (
	OpenLibraryTable       = "openlibrary_cache"
	OpenLibrarySearchTable = "openlibrary_search_cache"
)

// OpenLibraryCacheSchema defines the schema for author, work and edition payloads
const OpenLibraryCacheSchema = `
CREATE TABLE IF NOT EXISTS openlibrary_cache (
	cache_key TEXT PRIMARY KEY NOT NULL,
	data TEXT NOT NULL,
	cached_at INTEGER NOT NULL,
	expires_at INTEGER NOT NULL
);

CREATE INDEX IF NOT EXISTS idx_openlibrary_expires_at ON openlibrary_cache(expires_at);
`

// OpenLibrarySearchCacheSchema defines the schema for search.json responses
const OpenLibrarySearchCacheSchema = `
CREATE TABLE IF NOT EXISTS openlibrary_search_cache (
	cache_key TEXT PRIMARY KEY NOT NULL,
	data TEXT NOT NULL,
	cached_at INTEGER NOT NULL,
	expires_at INTEGER NOT NULL
);

CREATE INDEX IF NOT EXISTS idx_openlibrary_search_expires_at ON openlibrary_search_cache(expires_at);
`

// AllCacheSchemas contains all cache table schemas for easy initialization
var AllCacheSchemas = []string{
	OpenLibraryCacheSchema,
	OpenLibrarySearchCacheSchema,
}

// ValidCacheTableNames is the whitelist of allowed cache table names
// Used to prevent SQL injection when interpolating table names
var ValidCacheTableNames = map[string]bool{
	OpenLibraryTable:       true,
	OpenLibrarySearchTable: true,
}

// SourceTables maps the user-facing source names accepted by the CLI to cache tables.
var SourceTables = map[string]string{
	"openlibrary": OpenLibraryTable,
	"search":      OpenLibrarySearchTable,
}
