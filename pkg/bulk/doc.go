// Package bulk fetches every team in a configured range concurrently and
// merges the records into one deduplicated season list.
//
// Example usage:
//
//	config := bulk.DefaultConfig()
//	processor, err := bulk.NewProcessor(sourceClient, config)
//	records, err := processor.ProcessAll(ctx)
//
// The processor:
//   - Starts one fetch+extract branch per team (optionally bounded by MaxConcurrency)
//   - Keeps only matches played in TargetYear
//   - Logs and skips teams whose fetch or parse fails (partial results are normal)
//   - Merges branch results in ascending team order after all branches finish
//   - Keeps the first record per (team code, date) in that order
//
// Results are returned to the caller only; nothing is written to the result cache.
package bulk
