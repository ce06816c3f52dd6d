package cache

import "strings"

// ListID is the sentinel id of the tag that stands for a whole listing.
const ListID = "LIST"

// Tag names a cached resource. A tag without an ID invalidates every tag of its type.
type Tag struct {
	Type string `json:"type"`
	ID   string `json:"id,omitempty"`
}

// TypeTag returns an id-less tag.
func TypeTag(resourceType string) Tag {
	return Tag{Type: resourceType}
}

// ResourceTag returns a tag for one resource.
func ResourceTag(resourceType, id string) Tag {
	return Tag{Type: resourceType, ID: id}
}

// ListTag returns the listing sentinel tag of a type.
func ListTag(resourceType string) Tag {
	return Tag{Type: resourceType, ID: ListID}
}

func (t Tag) String() string {
	if t.ID == "" {
		return t.Type
	}
	return t.Type + ":" + t.ID
}

// Key identifies a cached read: the scope it belongs to, the endpoint and its arguments.
type Key struct {
	Scope    string
	Endpoint string
	Args     string
}

func (k Key) String() string {
	var b strings.Builder
	b.WriteString(k.Scope)
	b.WriteByte('|')
	b.WriteString(k.Endpoint)
	if k.Args != "" {
		b.WriteByte('(')
		b.WriteString(k.Args)
		b.WriteByte(')')
	}
	return b.String()
}

func tagStrings(tags []Tag) []string {
	out := make([]string, 0, len(tags))
	for _, t := range tags {
		out = append(out, t.String())
	}
	return out
}
