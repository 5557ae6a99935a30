package postgres

import (
	"strings"

	"github.com/examhub/exam-service/internal/repositories"
	"gorm.io/gorm"
	"gorm.io/gorm/clause"
)

// getDB returns tx when the caller passed one, otherwise the repository's own handle
func getDB(db, tx *gorm.DB) *gorm.DB {
	if tx != nil {
		return tx
	}
	return db
}

// applyExamFilters applies exam list filters
func applyExamFilters(query *gorm.DB, filters repositories.ExamFilters) *gorm.DB {
	if filters.FolderID != nil {
		query = query.Where("folder_id = ?", *filters.FolderID)
	}
	if filters.IsPublished != nil {
		query = query.Where("is_published = ?", *filters.IsPublished)
	}
	if search := strings.TrimSpace(filters.Search); search != "" {
		query = query.Where("title ILIKE ?", "%"+escapeLike(search)+"%")
	}
	return query
}

// applyPaginationAndSort applies pagination and sorting with a column whitelist
func applyPaginationAndSort(query *gorm.DB, sortBy, sortOrder string, limit, offset int) *gorm.DB {
	allowedSortColumns := map[string]bool{
		"created_at": true,
		"updated_at": true,
		"id":         true,
		"title":      true,
		"name":       true,
	}

	if sortBy == "" || !allowedSortColumns[sortBy] {
		sortBy = "id"
	}

	query = query.Order(clause.OrderByColumn{
		Column: clause.Column{Name: sortBy},
		Desc:   strings.EqualFold(sortOrder, "desc"),
	})

	return applyPagination(query, limit, offset)
}

func applyPagination(query *gorm.DB, limit, offset int) *gorm.DB {
	if limit > 0 {
		query = query.Limit(limit)
	}
	if offset > 0 {
		query = query.Offset(offset)
	}
	return query
}

// orderByPosition orders questions by their "order" column, then by id
func orderByPosition(db *gorm.DB) *gorm.DB {
	return db.Order(clause.OrderByColumn{Column: clause.Column{Name: "order"}}).
		Order(clause.OrderByColumn{Column: clause.Column{Name: "id"}})
}

func escapeLike(s string) string {
	return strings.NewReplacer(`\`, `\\`, `%`, `\%`, `_`, `\_`).Replace(s)
}
