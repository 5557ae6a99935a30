package postgres

import (
	"strings"
	"testing"

	"gorm.io/driver/postgres"
	"gorm.io/gorm"
	"gorm.io/gorm/clause"

	"github.com/examhub/exam-service/internal/models"
	"github.com/examhub/exam-service/internal/repositories"
)

// newDryRunDB builds a gorm handle that renders SQL without connecting
func newDryRunDB(t *testing.T) *gorm.DB {
	t.Helper()
	db, err := gorm.Open(postgres.New(postgres.Config{
		DSN: "host=localhost user=test dbname=test sslmode=disable",
	}), &gorm.Config{DryRun: true, DisableAutomaticPing: true})
	if err != nil {
		t.Fatalf("failed to open dry-run db: %v", err)
	}
	return db
}

func TestApplyExamFilters(t *testing.T) {
	db := newDryRunDB(t)
	folderID := uint(3)
	published := true

	tests := []struct {
		name    string
		filters repositories.ExamFilters
		want    []string
		notWant []string
	}{
		{
			name:    "no filters",
			filters: repositories.ExamFilters{},
			notWant: []string{"WHERE"},
		},
		{
			name:    "folder and published",
			filters: repositories.ExamFilters{FolderID: &folderID, IsPublished: &published},
			want:    []string{"folder_id = 3", "is_published = true"},
		},
		{
			name:    "search escapes wildcards",
			filters: repositories.ExamFilters{Search: " 100%_done "},
			want:    []string{`title ILIKE '%100\%\_done%'`},
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			sql := db.ToSQL(func(tx *gorm.DB) *gorm.DB {
				var exams []models.Exam
				return applyExamFilters(tx.Model(&models.Exam{}), tt.filters).Find(&exams)
			})
			for _, w := range tt.want {
				if !strings.Contains(sql, w) {
					t.Errorf("SQL %q does not contain %q", sql, w)
				}
			}
			for _, w := range tt.notWant {
				if strings.Contains(sql, w) {
					t.Errorf("SQL %q should not contain %q", sql, w)
				}
			}
		})
	}
}

func TestApplyPaginationAndSort(t *testing.T) {
	db := newDryRunDB(t)

	tests := []struct {
		name      string
		sortBy    string
		sortOrder string
		limit     int
		offset    int
		want      []string
	}{
		{
			name:   "defaults to id ascending",
			limit:  10,
			want:   []string{`ORDER BY "id"`, "LIMIT 10"},
		},
		{
			name:      "descending title with offset",
			sortBy:    "title",
			sortOrder: "DESC",
			limit:     5,
			offset:    20,
			want:      []string{`ORDER BY "title" DESC`, "LIMIT 5", "OFFSET 20"},
		},
		{
			name:   "unknown column falls back to id",
			sortBy: "password; DROP TABLE exams",
			want:   []string{`ORDER BY "id"`},
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			sql := db.ToSQL(func(tx *gorm.DB) *gorm.DB {
				var exams []models.Exam
				return applyPaginationAndSort(tx.Model(&models.Exam{}), tt.sortBy, tt.sortOrder, tt.limit, tt.offset).Find(&exams)
			})
			for _, w := range tt.want {
				if !strings.Contains(sql, w) {
					t.Errorf("SQL %q does not contain %q", sql, w)
				}
			}
			if strings.Contains(sql, "DROP") {
				t.Errorf("SQL %q contains unsanitized sort column", sql)
			}
		})
	}
}

func TestOrderByPositionQuotesReservedColumn(t *testing.T) {
	db := newDryRunDB(t)
	sql := db.ToSQL(func(tx *gorm.DB) *gorm.DB {
		var questions []models.Question
		return orderByPosition(tx.Where("exam_id = ?", 1)).Find(&questions)
	})
	if !strings.Contains(sql, `ORDER BY "order","id"`) {
		t.Errorf("SQL %q should order by quoted order column then id", sql)
	}
}

func TestRowLockClause(t *testing.T) {
	db := newDryRunDB(t)
	sql := db.ToSQL(func(tx *gorm.DB) *gorm.DB {
		var exam models.Exam
		return tx.Clauses(clause.Locking{Strength: "UPDATE"}).First(&exam, 1)
	})
	if !strings.Contains(sql, "FOR UPDATE") {
		t.Errorf("SQL %q should lock the row", sql)
	}
}
