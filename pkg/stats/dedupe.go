package stats

// Dedupe keeps the first record for every (team code, date) pair.
// Input order decides which record survives, so callers that need a
// deterministic result must pass records in a deterministic order.
func Dedupe(records []StatRecord) []StatRecord {
	seen := make(map[string]struct{}, len(records))
	out := make([]StatRecord, 0, len(records))

	for _, r := range records {
		k := r.key()
		if _, dup := seen[k]; dup {
			continue
		}
		seen[k] = struct{}{}
		out = append(out, r)
	}

	return out
}
