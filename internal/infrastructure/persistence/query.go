package persistence

import (
	"context"
	"strconv"
	"strings"
	"time"

	"github.com/google/uuid"
	"github.com/iwaqasmaqbool/gms-sub002/internal/domain/shared"
	"github.com/shopspring/decimal"
	"gorm.io/gorm"
	"gorm.io/gorm/clause"
)

// applyDateRange restricts column to the filter's inclusive calendar range
func applyDateRange(q *gorm.DB, column string, f shared.Filter) *gorm.DB {
	if f.DateFrom != nil {
		from := time.Date(f.DateFrom.Year(), f.DateFrom.Month(), f.DateFrom.Day(), 0, 0, 0, 0, f.DateFrom.Location())
		q = q.Where(column+" >= ?", from)
	}
	if end := f.DateToExclusive(); end != nil {
		q = q.Where(column+" < ?", *end)
	}
	return q
}

// applyEquals adds column = value when the filter key is set
func applyEquals(q *gorm.DB, column string, f shared.Filter, key string) *gorm.DB {
	if v := f.String(key); v != "" {
		q = q.Where(column+" = ?", v)
	}
	return q
}

// applySearch matches term case-insensitively against any of the columns
func applySearch(q *gorm.DB, term string, columns ...string) *gorm.DB {
	term = strings.TrimSpace(term)
	if term == "" || len(columns) == 0 {
		return q
	}
	like := "%" + strings.ToLower(term) + "%"
	clauses := make([]string, len(columns))
	args := make([]any, len(columns))
	for i, c := range columns {
		clauses[i] = "LOWER(" + c + ") LIKE ?"
		args[i] = like
	}
	return q.Where("("+strings.Join(clauses, " OR ")+")", args...)
}

// applyOrder sorts by a whitelisted column of table
func applyOrder(q *gorm.DB, f shared.Filter, table string, allowed map[string]bool, defaultField string) *gorm.DB {
	field := ValidateSortField(f.OrderBy, allowed, defaultField)
	return q.Order(qualify(table, field) + " " + ValidateSortOrder(f.OrderDir))
}

// forUpdate locks the selected rows until the transaction ends. SQLite has no
// row locks and drops the clause.
func forUpdate(q *gorm.DB) *gorm.DB {
	return q.Clauses(clause.Locking{Strength: "UPDATE"})
}

// updateVersioned writes values only while the row is still at version and
// bumps the version in the same statement. model must be a zero value of the
// table's type.
func updateVersioned(ctx context.Context, db *gorm.DB, model any, id uuid.UUID, version int, values map[string]any, what string) error {
	values["version"] = version + 1
	result := db.WithContext(ctx).Model(model).
		Where("id = ? AND version = ?", id, version).
		Updates(values)
	if result.Error != nil {
		return result.Error
	}
	if result.RowsAffected > 0 {
		return nil
	}

	var count int64
	if err := db.WithContext(ctx).Model(model).Where("id = ?", id).Count(&count).Error; err != nil {
		return err
	}
	if count == 0 {
		return shared.ErrNotFound
	}
	return shared.NewStaleWriteError(what)
}

// nextSequence parses the digits after prefix in each number and returns the
// highest plus one. Suffixes that are not plain numbers are skipped.
func nextSequence(numbers []string, prefix string) int64 {
	var highest int64
	for _, n := range numbers {
		suffix, ok := strings.CutPrefix(n, prefix)
		if !ok {
			continue
		}
		seq, err := strconv.ParseInt(suffix, 10, 64)
		if err != nil || seq < 0 {
			continue
		}
		highest = max(highest, seq)
	}
	return highest + 1
}

// paginate applies offset and limit for the filter's page
func paginate(q *gorm.DB, f shared.Filter) *gorm.DB {
	return q.Offset(f.Offset()).Limit(f.Limit())
}

// sumResult receives a single COALESCE(SUM(...), 0) column
type sumResult struct {
	Total decimal.Decimal
}

// sum runs q with a "COALESCE(SUM(expr), 0) AS total" projection
func sum(q *gorm.DB, expr string) (decimal.Decimal, error) {
	var res sumResult
	if err := q.Select("COALESCE(SUM(" + expr + "), 0) AS total").Scan(&res).Error; err != nil {
		return decimal.Zero, err
	}
	return res.Total, nil
}

// monthExpr formats a timestamp column as YYYY-MM for the active dialect
func monthExpr(db *gorm.DB, column string) string {
	if db.Dialector.Name() == "sqlite" {
		return "strftime('%Y-%m', " + column + ")"
	}
	return "to_char(" + column + ", 'YYYY-MM')"
}
