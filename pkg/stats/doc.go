// Package stats turns raw team payloads from the sports data source into
// per-side statistic records.
//
// A payload carries a "matchUpStats" array. Every usable match yields two
// records, visitor side first and home side second:
//
//	ext, err := stats.Extract(payload, stats.ExtractOptions{})
//	if errors.Is(err, stats.ErrMalformedPayload) {
//		// no match array at all - the whole payload is unusable
//	}
//	for _, r := range ext.Records {
//		fmt.Println(r.Name, r.Score, r.Date)
//	}
//
// Individual matches with an unparseable date or a missing side field are
// skipped and counted in Extraction.Skipped; they never abort the batch.
//
// ExtractOptions.Year restricts the output to matches played in one
// calendar year. Zero disables the filter.
//
// Dedupe collapses records sharing a (team code, date) pair, keeping the
// first one in input order. Summarize folds records into per-team season
// totals.
package stats
