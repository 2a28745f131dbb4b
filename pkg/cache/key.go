package cache

import (
	"strings"
)

// DefaultNamespace prefixes every key written by this module.
const DefaultNamespace = "teamstats"

// ResultKey identifies a cached result by its correlation token.
type ResultKey struct {
	// Namespace separates deployments sharing one Redis (default "teamstats")
	Namespace string

	// CorrelationID is the token handed to the caller at enqueue time
	CorrelationID string
}

// String generates a deterministic cache key string.
// Format: namespace:result:correlation-id
//
// Example:
//
//	teamstats:result:6f1c0c4e-9a57-4d55-9d0c-6a8b1d2f7e10
func (k ResultKey) String() string {
	ns := strings.Trim(k.Namespace, ":")
	if ns == "" {
		ns = DefaultNamespace
	}
	return strings.Join([]string{ns, "result", strings.TrimSpace(k.CorrelationID)}, ":")
}
