// Package kg models knowledge-graph documents produced by the external
// entity extractor and turns them into shareable artifacts.
//
// A document is the extractor's JSON shape: entities grouped by type,
// relations between entity texts, and provenance metadata. The package
// builds a directed multigraph from a document and exports it as CSV,
// GraphML, an interactive vis-network HTML page, a static SVG, and a
// statistics report. It also merges documents from several extraction
// runs into one, normalizing entity spellings and relation names along
// the way.
//
// # Design Principles
//
//   - Artifacts stay compatible with the Python toolchain that consumes
//     them: file names, CSV columns, and the statistics JSON keys match
//     what the extractor ecosystem already expects.
//   - Exports are deterministic. Entity types iterate in sorted order,
//     graph nodes keep insertion order, and the SVG layout is seeded, so
//     the same document always produces byte-identical artifacts.
//   - The graph never invents data: relations whose endpoints were not
//     extracted as entities are dropped and counted, not synthesized.
package kg
