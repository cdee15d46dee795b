package handler

import (
	"strconv"
	"strings"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/google/uuid"
	"github.com/iwaqasmaqbool/gms-sub002/internal/domain/shared"
	"github.com/iwaqasmaqbool/gms-sub002/internal/interfaces/http/middleware"
	"github.com/shopspring/decimal"
)

// filterKeys are the query parameters copied into shared.Filter.Filters.
// Repositories ignore keys they do not use.
var filterKeys = []string{
	"user_id", "action", "module", "category", "material_id", "location",
	"product_id", "from", "to", "status", "role", "active", "low_stock", "unread",
}

// uuidKeys must hold a valid id when present
var uuidKeys = map[string]bool{"user_id": true, "material_id": true, "product_id": true}

// ParseFilter reads the list filters every page and export accepts:
// page, page_size, order_by, order_dir, search, date_from, date_to and the
// whitelisted equality filters.
func ParseFilter(c *gin.Context) (shared.Filter, error) {
	f := shared.DefaultFilter()
	q := middleware.StripFlash(c.Request.URL.Query())

	if v := q.Get("page"); v != "" {
		n, err := strconv.Atoi(v)
		if err != nil {
			return f, shared.NewDomainError(shared.CodeInvalidInput, "Page must be a number")
		}
		f.Page = n
	}
	if v := q.Get("page_size"); v != "" {
		n, err := strconv.Atoi(v)
		if err != nil {
			return f, shared.NewDomainError(shared.CodeInvalidInput, "Page size must be a number")
		}
		f.PageSize = n
	}
	if v := q.Get("order_by"); v != "" {
		f.OrderBy = v
	}
	if v := q.Get("order_dir"); v != "" {
		f.OrderDir = strings.ToLower(v)
	}
	f.Search = strings.TrimSpace(q.Get("search"))

	var err error
	if f.DateFrom, err = optionalDate(q.Get("date_from"), "Start date"); err != nil {
		return f, err
	}
	if f.DateTo, err = optionalDate(q.Get("date_to"), "End date"); err != nil {
		return f, err
	}
	if f.DateFrom != nil && f.DateTo != nil && f.DateTo.Before(*f.DateFrom) {
		return f, shared.NewDomainError(shared.CodeInvalidInput, "End date must not be before the start date")
	}

	for _, key := range filterKeys {
		v := strings.TrimSpace(q.Get(key))
		if v == "" {
			continue
		}
		if uuidKeys[key] {
			if _, err := uuid.Parse(v); err != nil {
				return f, shared.Errorf(shared.CodeInvalidInput, "Invalid %s", strings.ReplaceAll(key, "_", " "))
			}
		}
		f.Filters[key] = v
	}
	return f.Normalize(), nil
}

func optionalDate(v, label string) (*time.Time, error) {
	if v == "" {
		return nil, nil
	}
	t, err := time.Parse(middleware.DateLayout, v)
	if err != nil {
		return nil, shared.Errorf(shared.CodeInvalidInput, "%s must be a date (YYYY-MM-DD)", label)
	}
	return &t, nil
}

// dateOr parses a validated form date, falling back to today
func dateOr(v string, now time.Time) time.Time {
	if t, err := time.Parse(middleware.DateLayout, v); err == nil {
		return t
	}
	return now
}

// decimalOr parses a validated form decimal, zero when blank
func decimalOr(v string) decimal.Decimal {
	d, err := decimal.NewFromString(strings.TrimSpace(v))
	if err != nil {
		return decimal.Zero
	}
	return d
}

// pathID parses the :id route parameter
func pathID(c *gin.Context) (uuid.UUID, error) {
	id, err := uuid.Parse(c.Param("id"))
	if err != nil {
		return uuid.Nil, shared.NewDomainError(shared.CodeNotFound, "Record not found")
	}
	return id, nil
}

func today() string {
	return time.Now().Format(middleware.DateLayout)
}
