package pubmed

import (
	"bufio"
	"io"
	"regexp"
	"strings"
	"time"

	"github.com/litkg/kgctl/internal/model"
)

// Record is one parsed MEDLINE record. Values keep the order they
// appeared in; repeatable tags like AU accumulate.
type Record map[string][]string

// First returns the first value for a tag, or an empty string.
func (r Record) First(tag string) string {
	if vals := r[tag]; len(vals) > 0 {
		return vals[0]
	}

	return ""
}

// All returns every value for a tag.
func (r Record) All(tag string) []string {
	return r[tag]
}

// ParseMedline reads efetch rettype=medline output. Lines follow the
// `TAG - value` layout with the tag padded to four columns; continuation
// lines are indented six spaces; a blank line ends a record.
func ParseMedline(r io.Reader) ([]Record, error) {
	scanner := bufio.NewScanner(r)

	// Abstracts routinely exceed the default token size.
	scanner.Buffer(make([]byte, 0, 64*1024), 1024*1024)

	var (
		records []Record
		current Record
		lastTag string
	)

	flush := func() {
		if len(current) > 0 {
			records = append(records, current)
		}

		current = nil
		lastTag = ""
	}

	for scanner.Scan() {
		line := scanner.Text()

		if strings.TrimSpace(line) == "" {
			flush()
			continue
		}

		if strings.HasPrefix(line, "      ") && lastTag != "" {
			vals := current[lastTag]
			vals[len(vals)-1] += " " + strings.TrimSpace(line)

			continue
		}

		if len(line) < 5 || line[4] != '-' {
			continue
		}

		tag := strings.TrimSpace(line[:4])
		if tag == "" {
			continue
		}

		var value string
		if len(line) > 6 {
			value = strings.TrimSpace(line[6:])
		}

		if current == nil {
			current = Record{}
		}

		current[tag] = append(current[tag], value)
		lastTag = tag
	}

	if err := scanner.Err(); err != nil {
		return nil, err
	}

	flush()

	return records, nil
}

// ToArticle maps a MEDLINE record onto the catalog article shape.
func (r Record) ToArticle() model.Article {
	return model.Article{
		PMID:            r.First("PMID"),
		Title:           r.First("TI"),
		Abstract:        r.First("AB"),
		Authors:         strings.Join(r.All("AU"), "; "),
		Journal:         r.First("JT"),
		PublicationDate: r.First("DP"),
		PublicationType: strings.Join(r.All("PT"), "; "),
		MeshTerms:       joinFields(r, "MH", "OT"),
		Chemicals:       chemicals(r),
		Language:        strings.Join(r.All("LA"), "; "),
		DOI:             extractDOI(r),
	}
}

// Articles converts every record, stamping the search term and fetch
// time used by the catalog.
func Articles(records []Record, term string, fetchedAt time.Time) []model.Article {
	articles := make([]model.Article, 0, len(records))

	for _, rec := range records {
		a := rec.ToArticle()
		a.SearchTerm = term
		a.FetchedAt = fetchedAt

		articles = append(articles, a)
	}

	return articles
}

func joinFields(r Record, tags ...string) string {
	var vals []string

	for _, tag := range tags {
		vals = append(vals, r.All(tag)...)
	}

	return strings.Join(vals, "; ")
}

// chemNameRe matches RN values such as "0 (Silicon Dioxide)" or
// "EC 1.14.13.39 (Nitric Oxide Synthase Type II)".
var chemNameRe = regexp.MustCompile(`^[^()]*\((.+)\)$`)

// chemicals merges the RN and NM substance tags, stripping the registry
// number prefix RN values carry.
func chemicals(r Record) string {
	var vals []string

	for _, raw := range r.All("RN") {
		if m := chemNameRe.FindStringSubmatch(raw); m != nil {
			vals = append(vals, m[1])
			continue
		}

		vals = append(vals, raw)
	}

	vals = append(vals, r.All("NM")...)

	return strings.Join(vals, "; ")
}

// extractDOI prefers a LID value tagged [doi], then an AID value tagged
// [doi], then falls back to the raw LID.
func extractDOI(r Record) string {
	for _, tag := range []string{"LID", "AID"} {
		for _, v := range r.All(tag) {
			if strings.HasSuffix(v, " [doi]") {
				return strings.TrimSuffix(v, " [doi]")
			}
		}
	}

	return r.First("LID")
}
