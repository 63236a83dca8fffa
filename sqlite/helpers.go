package sqlite

import (
	"fmt"
	"strings"
	"time"
)

// parseRFC3339 converts a stored timestamp column back to time.Time. The
// field name is included in the error so a corrupt row is easy to locate.
func parseRFC3339(value, field string) (time.Time, error) {
	t, err := time.Parse(time.RFC3339, value)
	if err != nil {
		return time.Time{}, fmt.Errorf("failed to parse %s: %w", field, err)
	}
	return t, nil
}

// appendPagination adds LIMIT/OFFSET clauses for positive filter values.
func appendPagination(query *strings.Builder, args *[]any, limit, offset int) {
	if limit > 0 {
		query.WriteString(" LIMIT ?")
		*args = append(*args, limit)
	}
	if offset > 0 {
		query.WriteString(" OFFSET ?")
		*args = append(*args, offset)
	}
}
