package kg

import (
	"errors"
	"fmt"
	"io/fs"
	"log/slog"
	"maps"
	"os"
	"path/filepath"
	"slices"
	"sort"
	"strconv"
	"strings"
	"time"

	"github.com/litkg/kgctl/internal/encoding"
)

// DefaultMergedName is the default output file for merged graphs.
const DefaultMergedName = "merged_knowledge_graph.json"

// relationNames maps English relation names from older extraction runs
// to the Chinese names the rest of the toolchain uses.
var relationNames = map[string]string{
	"inhibits":        "抑制",
	"activates":       "激活",
	"treats":          "治疗",
	"causes":          "引起",
	"binds":           "结合",
	"expresses":       "表达",
	"regulates":       "调节",
	"phosphorylates":  "磷酸化",
	"degrades":        "降解",
	"extracted_from":  "提取自",
	"part_of":         "组分",
	"isolated_from":   "分离自",
	"converts_to":     "转化为",
	"metabolizes_to":  "代谢为",
	"upregulates":     "上调",
	"downregulates":   "下调",
	"blocks":          "阻断",
	"mediates":        "介导",
	"correlates_with": "相关",
	"marks":           "标志",
	"indicates":       "指示",
}

// MergeOptions control a merge run.
type MergeOptions struct {
	// Inputs are knowledge-graph JSON files or directories to scan.
	Inputs []string

	// Output is the merged JSON path. The CSV exports are derived from
	// it. Defaults to merged_knowledge_graph.json.
	Output string

	// Recursive descends into subdirectories while scanning inputs.
	Recursive bool

	// MinConfidence drops relations below the threshold.
	MinConfidence float64

	// MaxEntities caps each entity type to its most frequent entries.
	// Relations referencing a capped-out entity are dropped with it.
	// Zero means no cap.
	MaxEntities int

	// EntityTypes limits the merge to the listed types when non-empty.
	EntityTypes []string

	Logger *slog.Logger
}

// MergeResult reports what a merge run produced.
type MergeResult struct {
	Files        int
	Entities     int
	Relations    int
	Output       string
	EntitiesCSV  string
	RelationsCSV string
	Duration     time.Duration
}

// Merge combines knowledge-graph files into a single document and
// writes it together with entity and relation CSV exports. Entities
// with the same normalized text and type are merged by summing
// occurrences, relations are deduplicated on the (source, source type,
// target, target type, relation) tuple keeping the highest confidence.
func Merge(opts MergeOptions) (*Document, *MergeResult, error) {
	logger := opts.Logger
	if logger == nil {
		logger = slog.Default()
	}

	if len(opts.Inputs) == 0 {
		return nil, nil, errors.New("at least one input file or directory is required")
	}

	if opts.Output == "" {
		opts.Output = DefaultMergedName
	}

	start := time.Now()

	var files []string

	seen := map[string]bool{}
	for _, input := range opts.Inputs {
		found, err := FindGraphFiles(input, opts.Recursive)
		if err != nil {
			return nil, nil, err
		}

		for _, f := range found {
			if !seen[f] {
				seen[f] = true
				files = append(files, f)
			}
		}
	}

	if len(files) == 0 {
		return nil, nil, fmt.Errorf("no knowledge graph files found in %s", strings.Join(opts.Inputs, ", "))
	}

	logger.Info("merging knowledge graph files", "files", len(files))

	m := newMerger(opts)

	var kgFiles, entityFiles []string

	relationFiles := map[string]bool{}
	for _, f := range files {
		switch base := filepath.Base(f); {
		case base == "entities.json":
			entityFiles = append(entityFiles, f)
		case base == "relations.json":
			relationFiles[f] = true
		default:
			kgFiles = append(kgFiles, f)
		}
	}

	for _, f := range kgFiles {
		doc, err := encoding.LoadJSON[Document](f)
		if err != nil || doc == nil {
			logger.Warn("skipping unreadable knowledge graph file", "path", f, "error", err)
			continue
		}

		m.addDocument(doc)
	}

	for _, f := range entityFiles {
		entities, err := encoding.LoadJSON[map[string][]Entity](f)
		if err != nil || entities == nil {
			logger.Warn("skipping unreadable entity file", "path", f, "error", err)
			continue
		}

		m.addEntities(*entities)

		relPath := filepath.Join(filepath.Dir(f), "relations.json")
		if relationFiles[relPath] {
			relations, err := encoding.LoadJSON[[]Relation](relPath)
			if err != nil || relations == nil {
				logger.Warn("skipping unreadable relation file", "path", relPath, "error", err)
			} else {
				m.addRelations(*relations)
			}
		}

		m.metadata.SourceCount++
	}

	merged := m.finalize(opts.MaxEntities)

	if err := merged.SaveDocument(opts.Output); err != nil {
		return nil, nil, err
	}

	base := strings.TrimSuffix(opts.Output, filepath.Ext(opts.Output))
	entitiesCSV := base + "_entities.csv"
	relationsCSV := base + "_relations.csv"

	if err := writeMergedEntitiesCSV(merged, entitiesCSV); err != nil {
		return nil, nil, err
	}

	if err := writeMergedRelationsCSV(merged, relationsCSV); err != nil {
		return nil, nil, err
	}

	res := &MergeResult{
		Files:        len(files),
		Entities:     merged.Metadata.EntityCount,
		Relations:    merged.Metadata.RelationCount,
		Output:       opts.Output,
		EntitiesCSV:  entitiesCSV,
		RelationsCSV: relationsCSV,
		Duration:     time.Since(start),
	}

	logger.Info("merge complete",
		"files", res.Files,
		"entities", res.Entities,
		"relations", res.Relations,
		"output", res.Output)

	return merged, res, nil
}

// FindGraphFiles returns the knowledge-graph JSON files under path. A
// file path is returned as-is when it has a .json extension. For
// directories the well-known names are collected: knowledge_graph.json,
// *_graph.json files, and entities.json/relations.json pairs.
// Subdirectories are only scanned when recursive is set.
func FindGraphFiles(path string, recursive bool) ([]string, error) {
	info, err := os.Stat(path)
	if err != nil {
		return nil, fmt.Errorf("failed to access %s: %w", path, err)
	}

	if !info.IsDir() {
		if strings.HasSuffix(path, ".json") {
			return []string{path}, nil
		}

		return nil, nil
	}

	var files []string

	err = filepath.WalkDir(path, func(p string, d fs.DirEntry, err error) error {
		if err != nil {
			return err
		}

		if d.IsDir() {
			if !recursive && p != path {
				return fs.SkipDir
			}

			return nil
		}

		if isGraphFile(filepath.Base(p)) {
			files = append(files, p)
		}

		return nil
	})
	if err != nil {
		return nil, err
	}

	return files, nil
}

func isGraphFile(name string) bool {
	return name == "knowledge_graph.json" ||
		name == "entities.json" ||
		name == "relations.json" ||
		strings.HasSuffix(name, "_graph.json")
}

// normalizeEntityText canonicalizes an entity surface form for
// deduplication. Text without CJK characters is lowercased, common
// English noise words are stripped, and whitespace collapses to single
// spaces.
func normalizeEntityText(text string) string {
	if !containsCJK(text) {
		text = strings.ToLower(text)
	}

	text = strings.ReplaceAll(text, "the ", "")
	text = strings.ReplaceAll(text, " protein", "")
	text = strings.ReplaceAll(text, " gene", "")

	return strings.Join(strings.Fields(text), " ")
}

func containsCJK(s string) bool {
	for _, r := range s {
		if r >= 0x4e00 && r <= 0x9fff {
			return true
		}
	}

	return false
}

type entityKey struct {
	norm       string
	entityType string
}

type entityAcc struct {
	text        string
	occurrences int
}

type relationKey struct {
	source     string
	sourceType string
	target     string
	targetType string
	relation   string
}

// merger accumulates entities and relations across input files.
// Entities are keyed by normalized text and type, so the same surface
// form under two types stays two entities; the first spelling seen
// wins. Insertion order is kept for deterministic output.
type merger struct {
	minConfidence float64
	types         map[string]bool

	entities    map[entityKey]*entityAcc
	entityOrder []entityKey

	relations     map[relationKey]*Relation
	relationOrder []relationKey

	metadata Metadata
}

func newMerger(opts MergeOptions) *merger {
	m := &merger{
		minConfidence: opts.MinConfidence,
		entities:      map[entityKey]*entityAcc{},
		relations:     map[relationKey]*Relation{},
	}

	if len(opts.EntityTypes) > 0 {
		m.types = map[string]bool{}
		for _, t := range opts.EntityTypes {
			m.types[t] = true
		}
	}

	return m
}

func (m *merger) typeAllowed(entityType string) bool {
	if m.types == nil {
		return true
	}

	return m.types[entityType]
}

func (m *merger) addDocument(doc *Document) {
	m.addEntities(doc.Entities)
	m.addRelations(doc.Relations)

	m.metadata.Sources = append(m.metadata.Sources, doc.Metadata.Sources...)

	if doc.Metadata.SourceCount > 0 {
		m.metadata.SourceCount += doc.Metadata.SourceCount
	} else {
		m.metadata.SourceCount++
	}
}

func (m *merger) addEntities(entities map[string][]Entity) {
	for _, typ := range slices.Sorted(maps.Keys(entities)) {
		if !m.typeAllowed(typ) {
			continue
		}

		for _, entity := range entities[typ] {
			text := entity.Label()

			norm := normalizeEntityText(text)
			if norm == "" {
				continue
			}

			key := entityKey{norm: norm, entityType: typ}

			if acc, ok := m.entities[key]; ok {
				acc.occurrences += entity.Count()
				continue
			}

			m.entities[key] = &entityAcc{text: text, occurrences: entity.Count()}
			m.entityOrder = append(m.entityOrder, key)
		}
	}
}

func (m *merger) addRelations(relations []Relation) {
	for _, rel := range relations {
		if rel.Weight() < m.minConfidence {
			continue
		}

		if !m.typeAllowed(rel.Source.Type) || !m.typeAllowed(rel.Target.Type) {
			continue
		}

		name := rel.Relation
		if mapped, ok := relationNames[name]; ok {
			name = mapped
		}

		key := relationKey{
			source:     normalizeEntityText(rel.Source.Text),
			sourceType: rel.Source.Type,
			target:     normalizeEntityText(rel.Target.Text),
			targetType: rel.Target.Type,
			relation:   name,
		}

		if existing, ok := m.relations[key]; ok {
			if rel.Weight() > existing.Weight() {
				w := rel.Weight()
				existing.Confidence = &w
			}

			continue
		}

		merged := rel
		merged.Relation = name
		m.relations[key] = &merged
		m.relationOrder = append(m.relationOrder, key)
	}
}

// finalize materializes the merged document, applying the per-type
// entity cap and dropping relations that reference capped-out
// entities.
func (m *merger) finalize(maxEntities int) *Document {
	keptOrder := m.entityOrder
	capped := false

	kept := map[entityKey]bool{}

	if maxEntities > 0 {
		capped = true

		byType := map[string][]entityKey{}
		for _, key := range m.entityOrder {
			byType[key.entityType] = append(byType[key.entityType], key)
		}

		for _, keys := range byType {
			sort.SliceStable(keys, func(i, j int) bool {
				return m.entities[keys[i]].occurrences > m.entities[keys[j]].occurrences
			})

			for i, key := range keys {
				if i >= maxEntities {
					break
				}

				kept[key] = true
			}
		}

		keptOrder = make([]entityKey, 0, len(kept))
		for _, key := range m.entityOrder {
			if kept[key] {
				keptOrder = append(keptOrder, key)
			}
		}
	}

	doc := NewDocument()
	doc.Metadata = m.metadata

	for _, key := range keptOrder {
		acc := m.entities[key]
		doc.Entities[key.entityType] = append(doc.Entities[key.entityType], Entity{
			Text:        acc.text,
			Occurrences: acc.occurrences,
		})
	}

	for _, key := range m.relationOrder {
		if capped {
			if m.droppedEndpoint(key.source, key.sourceType, kept) ||
				m.droppedEndpoint(key.target, key.targetType, kept) {
				continue
			}
		}

		doc.Relations = append(doc.Relations, *m.relations[key])
	}

	doc.Metadata.EntityCount = doc.EntityCount()
	doc.Metadata.RelationCount = len(doc.Relations)

	return doc
}

// droppedEndpoint reports whether the endpoint named a merged entity
// that the cap removed. Endpoints that never matched an entity are
// left alone; graph construction deals with those.
func (m *merger) droppedEndpoint(norm, entityType string, kept map[entityKey]bool) bool {
	key := entityKey{norm: norm, entityType: entityType}

	if _, wasEntity := m.entities[key]; !wasEntity {
		return false
	}

	return !kept[key]
}

// writeMergedEntitiesCSV exports text, type, occurrences rows with a
// UTF-8 BOM so spreadsheet tools detect the CJK content.
func writeMergedEntitiesCSV(doc *Document, path string) error {
	var rows [][]string

	for _, typ := range slices.Sorted(maps.Keys(doc.Entities)) {
		for _, entity := range doc.Entities[typ] {
			rows = append(rows, []string{entity.Text, typ, strconv.Itoa(entity.Occurrences)})
		}
	}

	return encoding.WriteCSVWithBOM(path, []string{"text", "type", "occurrences"}, rows)
}

// writeMergedRelationsCSV exports source, target, relation, weight
// rows with a UTF-8 BOM.
func writeMergedRelationsCSV(doc *Document, path string) error {
	var rows [][]string

	for _, rel := range doc.Relations {
		rows = append(rows, []string{rel.Source.Text, rel.Target.Text, rel.Relation, formatWeight(rel.Weight())})
	}

	return encoding.WriteCSVWithBOM(path, []string{"source", "target", "relation", "weight"}, rows)
}
