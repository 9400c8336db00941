package openlibrary

import (
	"bytes"
	"encoding/json"
	"strconv"
	"strings"
	"time"
)

// now is swapped in tests to pin the year window.
var now = time.Now

// maxFutureYears bounds year-only dates relative to the current year.
const maxFutureYears = 10

var dateLayouts = []string{
	"2006-01-02",
	time.RFC3339,
	"January 2, 2006",
	"Jan 2, 2006",
	"2 January 2006",
	"2 Jan 2006",
	"January 2006",
	"Jan 2006",
	"2006/01/02",
	"01/02/2006",
	"2006-01",
}

// ParseDate converts the catalog's free-form date strings into a time.
// Full calendar dates are tried first; failing that, a leading year in
// (0, now+10] becomes January 1 of that year. Anything else yields nil.
func ParseDate(text string) *time.Time {
	text = strings.TrimSpace(text)
	if text == "" {
		return nil
	}

	for _, layout := range dateLayouts {
		if t, err := time.Parse(layout, text); err == nil {
			return &t
		}
	}

	first, _, _ := strings.Cut(text, " ")
	year, err := strconv.Atoi(first)
	if err != nil || year <= 0 || year > now().Year()+maxFutureYears {
		return nil
	}

	t := time.Date(year, time.January, 1, 0, 0, 0, 0, time.UTC)
	return &t
}

// yearDate returns January 1 of year, or nil for a missing year.
func yearDate(year *int) *time.Time {
	if year == nil {
		return nil
	}
	t := time.Date(*year, time.January, 1, 0, 0, 0, 0, time.UTC)
	return &t
}

// TextKind discriminates the shapes a catalog text field can take.
type TextKind int

const (
	// TextAbsent is a missing or null field.
	TextAbsent TextKind = iota
	// TextPlain is a bare JSON string.
	TextPlain
	// TextLocalized is an object carrying a "value" entry, e.g. {"type": "/type/text", "value": "..."}.
	TextLocalized
	// TextOther is any other JSON value, kept in its raw textual form.
	TextOther
)

// Text is a catalog text field such as an author bio or a work description.
type Text struct {
	Kind  TextKind
	Value string
}

// UnmarshalJSON decodes any JSON value into a Text. It never fails; shapes
// it does not recognise degrade to TextOther.
func (t *Text) UnmarshalJSON(data []byte) error {
	data = bytes.TrimSpace(data)
	*t = Text{}

	if len(data) == 0 || bytes.Equal(data, []byte("null")) {
		return nil
	}

	var plain string
	if err := json.Unmarshal(data, &plain); err == nil {
		*t = Text{Kind: TextPlain, Value: plain}
		return nil
	}

	var obj map[string]json.RawMessage
	if err := json.Unmarshal(data, &obj); err == nil {
		if raw, ok := obj["value"]; ok {
			if bytes.Equal(bytes.TrimSpace(raw), []byte("null")) {
				return nil
			}
			*t = Text{Kind: TextLocalized, Value: rawString(raw)}
			return nil
		}
	}

	*t = Text{Kind: TextOther, Value: rawString(data)}
	return nil
}

// MarshalJSON writes the text back as a plain string, or null when absent.
func (t Text) MarshalJSON() ([]byte, error) {
	if t.Kind == TextAbsent {
		return []byte("null"), nil
	}
	return json.Marshal(t.Value)
}

// ExtractText returns the text content of t, or nil when the field was absent.
func ExtractText(t Text) *string {
	if t.Kind == TextAbsent {
		return nil
	}
	value := t.Value
	return &value
}

// rawString renders a JSON value as text: strings lose their quotes,
// everything else keeps its JSON form.
func rawString(raw json.RawMessage) string {
	var s string
	if err := json.Unmarshal(raw, &s); err == nil {
		return s
	}
	return string(bytes.TrimSpace(raw))
}
