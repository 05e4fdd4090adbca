package postgres

import (
	"fmt"
	"strings"

	"gorm.io/gorm"
)

// SharedHelpers holds query helpers common to the gorm repositories.
type SharedHelpers struct {
	db *gorm.DB
}

func NewSharedHelpers(db *gorm.DB) *SharedHelpers {
	return &SharedHelpers{db: db}
}

// ApplyPaginationAndSort orders by sortBy when it is one of allowed, defaulting to the
// first allowed column, descending.
func (h *SharedHelpers) ApplyPaginationAndSort(query *gorm.DB, sortBy, sortOrder string, limit, offset int, allowed ...string) *gorm.DB {
	column := ""
	for _, a := range allowed {
		if a == sortBy {
			column = a
			break
		}
	}
	if column == "" && len(allowed) > 0 {
		column = allowed[0]
	}

	order := "DESC"
	if strings.EqualFold(sortOrder, "asc") {
		order = "ASC"
	}
	if column != "" {
		query = query.Order(fmt.Sprintf("%s %s", column, order)).Order("id " + order)
	}

	if limit > 0 {
		query = query.Limit(limit)
	}
	if offset > 0 {
		query = query.Offset(offset)
	}
	return query
}
