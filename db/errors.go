package db

import "fmt"

// AmbiguousAggregationError reports a projection mixing aggregate and
// plain columns without a matching GROUP BY.
type AmbiguousAggregationError struct {
	Column string
}

func (e AmbiguousAggregationError) Error() string {
	return fmt.Sprintf("column %q must appear in GROUP BY or be wrapped in an aggregate", e.Column)
}
