package kg

import (
	"os"
	"path/filepath"
	"testing"

	"github.com/litkg/kgctl/internal/encoding"
	"github.com/stretchr/testify/require"
)

func writeGraphFile(t *testing.T, path string, doc *Document) string {
	t.Helper()
	require.NoError(t, encoding.SaveJSON(path, doc))

	return path
}

func TestNormalizeEntityText(t *testing.T) {
	tests := []struct {
		in   string
		want string
	}{
		{"The TNF-α Protein", "tnf-α"},
		{"  EGFR   gene ", "egfr"},
		{"Silica  Dust", "silica dust"},
		{"矽肺病", "矽肺病"},
		// CJK text keeps its case, so the English prefixes survive too.
		{"The 矽肺病", "The 矽肺病"},
		{"", ""},
		{"   ", ""},
	}

	for _, tt := range tests {
		require.Equal(t, tt.want, normalizeEntityText(tt.in), "input %q", tt.in)
	}
}

func TestMergeCombinesDocuments(t *testing.T) {
	dir := t.TempDir()

	first := writeGraphFile(t, filepath.Join(dir, "run1", "knowledge_graph.json"), &Document{
		Entities: map[string][]Entity{
			"蛋白质": {{Text: "TNF-α", Occurrences: 3}},
			"疾病":  {{Text: "矽肺病", Occurrences: 7}},
		},
		Relations: []Relation{
			{
				Source:     Endpoint{Text: "TNF-α", Type: "蛋白质"},
				Target:     Endpoint{Text: "矽肺病", Type: "疾病"},
				Relation:   "inhibits",
				Confidence: confidence(0.6),
			},
		},
		Metadata: Metadata{SourceCount: 2, Sources: []string{"batch_1.json", "batch_2.json"}},
	})

	second := writeGraphFile(t, filepath.Join(dir, "run2", "knowledge_graph.json"), &Document{
		Entities: map[string][]Entity{
			"蛋白质": {{Text: "The TNF-α Protein", Occurrences: 2}},
		},
		Relations: []Relation{
			{
				Source:     Endpoint{Text: "The TNF-α Protein", Type: "蛋白质"},
				Target:     Endpoint{Text: "矽肺病", Type: "疾病"},
				Relation:   "抑制",
				Confidence: confidence(0.9),
			},
		},
	})

	output := filepath.Join(dir, "merged_knowledge_graph.json")

	merged, res, err := Merge(MergeOptions{Inputs: []string{first, second}, Output: output})
	require.NoError(t, err)

	require.Equal(t, 2, res.Files)
	require.Equal(t, 2, res.Entities)
	require.Equal(t, 1, res.Relations)

	// Different spellings of the same entity merge, keeping the first
	// spelling and summing occurrences.
	require.Len(t, merged.Entities["蛋白质"], 1)
	require.Equal(t, "TNF-α", merged.Entities["蛋白质"][0].Text)
	require.Equal(t, 5, merged.Entities["蛋白质"][0].Occurrences)

	// The English relation name maps onto the Chinese one, the two
	// relations collapse, and the higher confidence wins.
	require.Len(t, merged.Relations, 1)
	require.Equal(t, "抑制", merged.Relations[0].Relation)
	require.InDelta(t, 0.9, merged.Relations[0].Weight(), 1e-9)
	require.Equal(t, "TNF-α", merged.Relations[0].Source.Text)

	require.Equal(t, 3, merged.Metadata.SourceCount, "2 from the first file plus 1 for the second")
	require.Equal(t, []string{"batch_1.json", "batch_2.json"}, merged.Metadata.Sources)
	require.Equal(t, 2, merged.Metadata.EntityCount)
	require.Equal(t, 1, merged.Metadata.RelationCount)

	// The merged document and both CSV exports land on disk, the CSVs
	// with a UTF-8 BOM.
	reloaded, err := LoadDocument(output)
	require.NoError(t, err)
	require.Equal(t, 2, reloaded.Metadata.EntityCount)

	entitiesCSV, err := os.ReadFile(res.EntitiesCSV)
	require.NoError(t, err)
	require.Equal(t, []byte{0xEF, 0xBB, 0xBF}, entitiesCSV[:3])
	require.Contains(t, string(entitiesCSV), "TNF-α,蛋白质,5")

	relationsCSV, err := os.ReadFile(res.RelationsCSV)
	require.NoError(t, err)
	require.Contains(t, string(relationsCSV), "TNF-α,矽肺病,抑制,0.9")
}

func TestMergeKeepsSameTextUnderDifferentTypes(t *testing.T) {
	dir := t.TempDir()

	input := writeGraphFile(t, filepath.Join(dir, "knowledge_graph.json"), &Document{
		Entities: map[string][]Entity{
			"药物": {{Text: "TNF-α", Occurrences: 2}},
			"靶点": {{Text: "TNF-α", Occurrences: 6}},
		},
	})

	merged, res, err := Merge(MergeOptions{
		Inputs: []string{input},
		Output: filepath.Join(dir, "merged_knowledge_graph.json"),
	})
	require.NoError(t, err)

	// The same surface form under two types stays two entities; only
	// same-type duplicates sum.
	require.Equal(t, 2, res.Entities)
	require.Len(t, merged.Entities["药物"], 1)
	require.Equal(t, 2, merged.Entities["药物"][0].Occurrences)
	require.Len(t, merged.Entities["靶点"], 1)
	require.Equal(t, 6, merged.Entities["靶点"][0].Occurrences)
}

func TestMergeDiscovery(t *testing.T) {
	dir := t.TempDir()

	doc := &Document{Entities: map[string][]Entity{"疾病": {{Text: "矽肺病"}}}}

	writeGraphFile(t, filepath.Join(dir, "knowledge_graph.json"), doc)
	writeGraphFile(t, filepath.Join(dir, "extraction_graph.json"), doc)
	writeGraphFile(t, filepath.Join(dir, "nested", "knowledge_graph.json"), doc)
	require.NoError(t, os.WriteFile(filepath.Join(dir, "notes.txt"), []byte("not a graph"), 0644))
	require.NoError(t, os.WriteFile(filepath.Join(dir, "other.json"), []byte("{}"), 0644))

	flat, err := FindGraphFiles(dir, false)
	require.NoError(t, err)
	require.Len(t, flat, 2)

	deep, err := FindGraphFiles(dir, true)
	require.NoError(t, err)
	require.Len(t, deep, 3)

	// An explicit file path is taken as-is.
	direct, err := FindGraphFiles(filepath.Join(dir, "other.json"), false)
	require.NoError(t, err)
	require.Equal(t, []string{filepath.Join(dir, "other.json")}, direct)
}

func TestMergeEntityRelationPair(t *testing.T) {
	dir := t.TempDir()

	require.NoError(t, encoding.SaveJSON(filepath.Join(dir, "entities.json"), map[string][]Entity{
		"药物": {{Text: "汉防己甲素", Occurrences: 4}},
		"疾病": {{Text: "矽肺病", Occurrences: 9}},
	}))
	require.NoError(t, encoding.SaveJSON(filepath.Join(dir, "relations.json"), []Relation{
		{
			Source:     Endpoint{Text: "汉防己甲素", Type: "药物"},
			Target:     Endpoint{Text: "矽肺病", Type: "疾病"},
			Relation:   "treats",
			Confidence: confidence(0.8),
		},
	}))

	output := filepath.Join(dir, "merged_knowledge_graph.json")

	merged, res, err := Merge(MergeOptions{Inputs: []string{dir}, Output: output})
	require.NoError(t, err)

	require.Equal(t, 2, res.Files)
	require.Equal(t, 2, merged.Metadata.EntityCount)
	require.Equal(t, 1, merged.Metadata.SourceCount)

	require.Len(t, merged.Relations, 1)
	require.Equal(t, "治疗", merged.Relations[0].Relation)
}

func TestMergeMinConfidence(t *testing.T) {
	dir := t.TempDir()

	input := writeGraphFile(t, filepath.Join(dir, "knowledge_graph.json"), &Document{
		Entities: map[string][]Entity{
			"药物": {{Text: "A"}, {Text: "B"}, {Text: "C"}},
		},
		Relations: []Relation{
			{Source: Endpoint{Text: "A"}, Target: Endpoint{Text: "B"}, Relation: "结合", Confidence: confidence(0.3)},
			{Source: Endpoint{Text: "B"}, Target: Endpoint{Text: "C"}, Relation: "结合", Confidence: confidence(0.7)},
			// Missing confidence counts as 0.5.
			{Source: Endpoint{Text: "A"}, Target: Endpoint{Text: "C"}, Relation: "结合"},
		},
	})

	merged, _, err := Merge(MergeOptions{
		Inputs:        []string{input},
		Output:        filepath.Join(dir, "merged_knowledge_graph.json"),
		MinConfidence: 0.5,
	})
	require.NoError(t, err)

	require.Len(t, merged.Relations, 2)
	for _, rel := range merged.Relations {
		require.GreaterOrEqual(t, rel.Weight(), 0.5)
	}
}

func TestMergeMaxEntities(t *testing.T) {
	dir := t.TempDir()

	input := writeGraphFile(t, filepath.Join(dir, "knowledge_graph.json"), &Document{
		Entities: map[string][]Entity{
			"疾病": {
				{Text: "矽肺病", Occurrences: 9},
				{Text: "肺结核", Occurrences: 5},
				{Text: "尘肺", Occurrences: 1},
			},
		},
		Relations: []Relation{
			{Source: Endpoint{Text: "肺结核", Type: "疾病"}, Target: Endpoint{Text: "矽肺病", Type: "疾病"}, Relation: "相关", Confidence: confidence(0.8)},
			{Source: Endpoint{Text: "尘肺", Type: "疾病"}, Target: Endpoint{Text: "矽肺病", Type: "疾病"}, Relation: "相关", Confidence: confidence(0.9)},
			// SiO2 was never extracted as an entity; the cap leaves it
			// for graph construction to drop.
			{Source: Endpoint{Text: "SiO2"}, Target: Endpoint{Text: "矽肺病", Type: "疾病"}, Relation: "引起", Confidence: confidence(0.7)},
		},
	})

	merged, _, err := Merge(MergeOptions{
		Inputs:      []string{input},
		Output:      filepath.Join(dir, "merged_knowledge_graph.json"),
		MaxEntities: 2,
	})
	require.NoError(t, err)

	require.Len(t, merged.Entities["疾病"], 2)
	for _, entity := range merged.Entities["疾病"] {
		require.NotEqual(t, "尘肺", entity.Text, "the least frequent entity is capped out")
	}

	require.Len(t, merged.Relations, 2)
	for _, rel := range merged.Relations {
		require.NotEqual(t, "尘肺", rel.Source.Text, "relations referencing capped-out entities are dropped")
	}
}

func TestMergeEntityTypeFilter(t *testing.T) {
	dir := t.TempDir()

	input := writeGraphFile(t, filepath.Join(dir, "knowledge_graph.json"), &Document{
		Entities: map[string][]Entity{
			"疾病":  {{Text: "矽肺病", Occurrences: 3}},
			"蛋白质": {{Text: "TNF-α", Occurrences: 2}},
		},
		Relations: []Relation{
			{Source: Endpoint{Text: "TNF-α", Type: "蛋白质"}, Target: Endpoint{Text: "矽肺病", Type: "疾病"}, Relation: "相关", Confidence: confidence(0.9)},
			{Source: Endpoint{Text: "矽肺病", Type: "疾病"}, Target: Endpoint{Text: "矽肺病", Type: "疾病"}, Relation: "相关", Confidence: confidence(0.4)},
		},
	})

	merged, _, err := Merge(MergeOptions{
		Inputs:      []string{input},
		Output:      filepath.Join(dir, "merged_knowledge_graph.json"),
		EntityTypes: []string{"疾病"},
	})
	require.NoError(t, err)

	require.Len(t, merged.Entities, 1)
	require.Contains(t, merged.Entities, "疾病")

	// Relations with an out-of-filter endpoint type are dropped too.
	require.Len(t, merged.Relations, 1)
	require.Equal(t, "矽肺病", merged.Relations[0].Source.Text)
}

func TestMergeRequiresInputs(t *testing.T) {
	_, _, err := Merge(MergeOptions{})
	require.ErrorContains(t, err, "at least one input")
}

func TestMergeNoFilesFound(t *testing.T) {
	dir := t.TempDir()

	_, _, err := Merge(MergeOptions{Inputs: []string{dir}})
	require.ErrorContains(t, err, "no knowledge graph files found")
}
