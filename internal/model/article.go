package model

import "time"

// Article is one PubMed record as fetched by the crawler and stored in
// the catalog. Field order matches the CSV column order of exports.
type Article struct {
	// PMID is the PubMed identifier and the catalog primary key
	PMID string `json:"pmid"`

	// Title is the article title (TI)
	Title string `json:"title"`

	// Abstract is the article abstract (AB), empty when none is available
	Abstract string `json:"abstract"`

	// Authors is the author list (AU) joined with "; "
	Authors string `json:"authors"`

	// Journal is the full journal title (JT)
	Journal string `json:"journal"`

	// PublicationDate is the raw publication date (DP), e.g. "2023 Jan 15"
	PublicationDate string `json:"publication_date"`

	// PublicationType is the publication type list (PT) joined with "; "
	PublicationType string `json:"publication_type"`

	// MeshTerms holds MeSH headings and other keywords (MH, OT) joined with "; "
	MeshTerms string `json:"mesh_terms"`

	// Chemicals is the substance list (RN, NM) joined with "; "
	Chemicals string `json:"chemicals"`

	// Language is the language list (LA) joined with "; "
	Language string `json:"language"`

	// DOI is the digital object identifier extracted from LID/AID
	DOI string `json:"doi"`

	// SearchTerm is the query that fetched this article
	SearchTerm string `json:"search_term,omitempty"`

	// FetchedAt is when the crawler stored the article
	FetchedAt time.Time `json:"fetched_at,omitempty"`
}

// Year returns the publication year, the first token of the raw date,
// or an empty string when no date is present.
func (a *Article) Year() string {
	if len(a.PublicationDate) >= 4 {
		year := a.PublicationDate[:4]

		for _, r := range year {
			if r < '0' || r > '9' {
				return ""
			}
		}

		return year
	}

	return ""
}

// HasAbstract reports whether the article carries an abstract.
func (a *Article) HasAbstract() bool {
	return a.Abstract != ""
}
