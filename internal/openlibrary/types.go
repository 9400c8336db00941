package openlibrary

// KeyReference is the {"key": "..."} object the catalog uses for links.
type KeyReference struct {
	Key string `json:"key"`
}

// AuthorReference is an entry of a work's authors list.
type AuthorReference struct {
	Author *KeyReference `json:"author"`
	Type   *KeyReference `json:"type,omitempty"`
}

// Link is an external link on an author record.
type Link struct {
	URL   string        `json:"url"`
	Title string        `json:"title"`
	Type  *KeyReference `json:"type,omitempty"`
}

// AuthorResource is the payload of /authors/{id}.json.
type AuthorResource struct {
	Key            string   `json:"key"`
	Name           string   `json:"name"`
	BirthDate      string   `json:"birth_date"`
	DeathDate      string   `json:"death_date"`
	Bio            Text     `json:"bio"`
	AlternateNames []string `json:"alternate_names"`
	Links          []Link   `json:"links,omitempty"`
	Photos         []int    `json:"photos,omitempty"`
}

// WorkResource is the payload of /works/{id}.json.
type WorkResource struct {
	Key              string            `json:"key"`
	Title            string            `json:"title"`
	Authors          []AuthorReference `json:"authors"`
	Description      Text              `json:"description"`
	Covers           []int             `json:"covers,omitempty"`
	FirstPublishDate string            `json:"first_publish_date"`
	Subjects         []string          `json:"subjects,omitempty"`
}

// FirstAuthorID returns the canonical ID of the first credited author, if any.
func (w *WorkResource) FirstAuthorID() string {
	if len(w.Authors) == 0 || w.Authors[0].Author == nil {
		return ""
	}
	return NormalizeKey(w.Authors[0].Author.Key, AuthorPrefix)
}

// EditionResource is the payload of /books/{id}.json.
type EditionResource struct {
	Key            string         `json:"key"`
	Title          string         `json:"title"`
	Authors        []KeyReference `json:"authors"`
	PublishDate    string         `json:"publish_date"`
	Publishers     []string       `json:"publishers"`
	ISBN10         []string       `json:"isbn_10"`
	ISBN13         []string       `json:"isbn_13"`
	NumberOfPages  *int           `json:"number_of_pages"`
	Covers         []int          `json:"covers,omitempty"`
	Works          []KeyReference `json:"works"`
	Languages      []KeyReference `json:"languages,omitempty"`
	Format         string         `json:"format"`
	PhysicalFormat string         `json:"physical_format"`
}

// SearchResponse is the payload of /search.json. Documents are kept raw so
// that a single malformed entry cannot fail the whole response.
type SearchResponse struct {
	NumFound int            `json:"numFound"`
	Start    int            `json:"start"`
	Docs     []RawSearchDoc `json:"docs"`
}

// SearchDoc is one decoded search result.
type SearchDoc struct {
	Key              string   `json:"key"`
	Title            string   `json:"title"`
	AuthorName       []string `json:"author_name"`
	AuthorKey        []string `json:"author_key"`
	FirstPublishYear *int     `json:"first_publish_year"`
	ISBN             []string `json:"isbn"`
	EditionCount     *int     `json:"edition_count"`
	CoverID          *int     `json:"cover_i"`
	Publisher        []string `json:"publisher"`
	Language         []string `json:"language"`
	PublishYear      []int    `json:"publish_year"`
}
