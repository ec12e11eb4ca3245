package services

import (
	"errors"
	"fmt"
	"strings"
	"time"

	"gorm.io/gorm/clause"
)

var zeroTime time.Time

// orderColumn sorts by the reserved-word "order" column, quoted per dialect.
var orderColumn = clause.OrderByColumn{Column: clause.Column{Name: "order"}}

// set copies *src into *dst when src is non-nil.
func set[T any](dst *T, src *T) {
	if src != nil {
		*dst = *src
	}
}

func normalizeKey(id string) string {
	return strings.ToLower(strings.TrimSpace(id))
}

// wrap annotates unexpected errors and passes domain errors through so
// their kind and message survive.
func wrap(err error, msg string) error {
	var domain *Error
	if errors.As(err, &domain) {
		return err
	}
	return fmt.Errorf("%s: %w", msg, err)
}
