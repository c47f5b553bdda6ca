package kg

import (
	"fmt"

	"github.com/litkg/kgctl/internal/encoding"
)

// Entity is one extracted entity. Older extractor versions wrote the
// surface form under "name" instead of "text", so both are accepted.
type Entity struct {
	Text        string `json:"text"`
	Name        string `json:"name,omitempty"`
	Occurrences int    `json:"occurrences,omitempty"`
}

// Label returns the entity's surface form, preferring Text over the
// legacy Name field.
func (e Entity) Label() string {
	if e.Text != "" {
		return e.Text
	}

	return e.Name
}

// Count returns the occurrence count, defaulting to 1 when the
// extractor omitted it.
func (e Entity) Count() int {
	if e.Occurrences > 0 {
		return e.Occurrences
	}

	return 1
}

// Endpoint identifies one end of a relation by entity text and type.
type Endpoint struct {
	Text string `json:"text"`
	Type string `json:"type,omitempty"`
}

// Relation links two entities. Confidence is a pointer so that an
// absent value can be told apart from an explicit 0.
type Relation struct {
	Source     Endpoint `json:"source"`
	Target     Endpoint `json:"target"`
	Relation   string   `json:"relation"`
	Confidence *float64 `json:"confidence,omitempty"`
}

// Weight returns the relation confidence, defaulting to 0.5 when the
// extractor omitted it.
func (r Relation) Weight() float64 {
	if r.Confidence == nil {
		return 0.5
	}

	return *r.Confidence
}

// Metadata carries provenance for a merged or extracted document.
type Metadata struct {
	SourceCount   int      `json:"source_count"`
	EntityCount   int      `json:"entity_count"`
	RelationCount int      `json:"relation_count"`
	Sources       []string `json:"sources,omitempty"`
}

// Document is the knowledge-graph JSON document written by the
// extractor: entities grouped by type plus the relations between them.
type Document struct {
	Entities  map[string][]Entity `json:"entities"`
	Relations []Relation          `json:"relations"`
	Metadata  Metadata            `json:"metadata"`
}

// NewDocument returns an empty document ready to receive entities.
func NewDocument() *Document {
	return &Document{Entities: map[string][]Entity{}}
}

// EntityCount returns the total number of entities across all types.
func (d *Document) EntityCount() int {
	total := 0
	for _, entities := range d.Entities {
		total += len(entities)
	}

	return total
}

// LoadDocument reads a knowledge-graph JSON document from path.
func LoadDocument(path string) (*Document, error) {
	doc, err := encoding.LoadJSON[Document](path)
	if err != nil {
		return nil, err
	}

	if doc == nil {
		return nil, fmt.Errorf("knowledge graph file %s does not exist", path)
	}

	if doc.Entities == nil {
		doc.Entities = map[string][]Entity{}
	}

	return doc, nil
}

// SaveDocument writes the document as indented UTF-8 JSON.
func (d *Document) SaveDocument(path string) error {
	return encoding.SaveJSON(path, d)
}
