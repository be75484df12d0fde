package interfaces

import "context"

// Placement selects where Insert puts a new element.
type Placement int

const (
	// PlaceHead appends to the end of <head>.
	PlaceHead Placement = iota
	// PlaceBody appends to the end of <body>.
	PlaceBody
	// PlaceBodyStart inserts as the first child of <body>.
	PlaceBodyStart
)

func (p Placement) String() string {
	switch p {
	case PlaceBody:
		return "body"
	case PlaceBodyStart:
		return "body-start"
	default:
		return "head"
	}
}

// Attr is a single attribute. Element attributes are ordered so rendered
// output stays stable.
type Attr struct {
	Key   string
	Value string
}

// Element describes a node to create or update. Text is inserted as escaped
// text content; InnerHTML is inserted as raw markup and wins when both are set.
type Element struct {
	Tag       string
	Attrs     []Attr
	Text      string
	InnerHTML string
}

// Attr returns the value of the named attribute.
func (e Element) Attr(key string) (string, bool) {
	for _, attr := range e.Attrs {
		if attr.Key == key {
			return attr.Value, true
		}
	}
	return "", false
}

// DocumentSynchronizer abstracts the document the SEO and injection engines
// mutate. Implementations exist for parsed HTML and for live browser pages.
type DocumentSynchronizer interface {
	SetTitle(ctx context.Context, title string) error
	// UpsertTag updates the first head element matching selector to look like
	// el, or appends el to head when nothing matches. Extra matches are removed.
	UpsertTag(ctx context.Context, selector string, el Element) error
	Insert(ctx context.Context, el Element, placement Placement) error
	// RemoveAllTagged removes every element carrying the marker attribute and
	// returns how many were removed.
	RemoveAllTagged(ctx context.Context, marker string) (int, error)
	CurrentURL() string
}
