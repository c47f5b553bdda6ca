// Package pubmed crawls PubMed through the NCBI E-utilities API.
//
// The package has three layers:
//
//   - [Client] wraps the two E-utilities endpoints the toolkit needs,
//     esearch and efetch, with NCBI rate limiting and retries
//   - [ParseMedline] turns efetch's MEDLINE text into records and
//     [Record.ToArticle] maps them onto the catalog article shape
//   - [Crawler] orchestrates a full search: batched fetching, per-batch
//     result files, catalog deduplication, and combined exports
//
// NCBI allows 3 requests per second without an API key and 10 with one;
// the client enforces that limit across all calls.
package pubmed
