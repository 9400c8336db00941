package openlibrary

import "strings"

// Key prefixes used by the catalog for its namespaced identifiers.
const (
	AuthorPrefix  = "/authors/"
	WorkPrefix    = "/works/"
	EditionPrefix = "/books/"
)

// NormalizeKey strips one leading prefix from a catalog key, turning
// "/works/OL1W" into "OL1W". Keys without the prefix are returned unchanged,
// so the function is idempotent on canonical IDs.
func NormalizeKey(raw, prefix string) string {
	return strings.TrimPrefix(raw, prefix)
}
