package middleware

import (
	"errors"
	"net/http"
	"reflect"
	"strings"
	"sync"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/gin-gonic/gin/binding"
	"github.com/go-playground/validator/v10"
	"github.com/iwaqasmaqbool/gms-sub002/internal/domain/catalog"
	"github.com/iwaqasmaqbool/gms-sub002/internal/domain/identity"
	"github.com/iwaqasmaqbool/gms-sub002/internal/domain/inventory"
	"github.com/iwaqasmaqbool/gms-sub002/internal/domain/manufacturing"
	"github.com/iwaqasmaqbool/gms-sub002/internal/domain/sales"
	"github.com/iwaqasmaqbool/gms-sub002/internal/interfaces/http/dto"
	"github.com/shopspring/decimal"
)

// DateLayout is the format of every date input and query filter
const DateLayout = "2006-01-02"

var setupOnce sync.Once

// SetupValidator configures gin's validator: field names come from the
// form/json tags and the domain enums get their own tags.
func SetupValidator() {
	setupOnce.Do(func() {
		v, ok := binding.Validator.Engine().(*validator.Validate)
		if !ok {
			return
		}
		v.RegisterTagNameFunc(func(fld reflect.StructField) string {
			name := strings.SplitN(fld.Tag.Get("form"), ",", 2)[0]
			if name == "" {
				name = strings.SplitN(fld.Tag.Get("json"), ",", 2)[0]
			}
			if name == "-" {
				return ""
			}
			return name
		})
		for tag, fn := range customValidators {
			_ = v.RegisterValidation(tag, fn)
		}
	})
}

var customValidators = map[string]validator.Func{
	"location": func(fl validator.FieldLevel) bool {
		return inventory.Location(fl.Field().String()).IsValid()
	},
	"batch_status": func(fl validator.FieldLevel) bool {
		return manufacturing.BatchStatus(fl.Field().String()).IsValid()
	},
	"cost_type": func(fl validator.FieldLevel) bool {
		return manufacturing.CostType(fl.Field().String()).IsValid()
	},
	"payment_method": func(fl validator.FieldLevel) bool {
		return sales.PaymentMethod(fl.Field().String()).IsValid()
	},
	"role": func(fl validator.FieldLevel) bool {
		return identity.Role(fl.Field().String()).IsValid()
	},
	"unit": func(fl validator.FieldLevel) bool {
		return catalog.Unit(fl.Field().String()).IsValid()
	},
	"decimal": func(fl validator.FieldLevel) bool {
		_, err := decimal.NewFromString(fl.Field().String())
		return err == nil
	},
	"positive": func(fl validator.FieldLevel) bool {
		d, err := decimal.NewFromString(fl.Field().String())
		return err == nil && d.IsPositive()
	},
	"date": func(fl validator.FieldLevel) bool {
		_, err := time.Parse(DateLayout, fl.Field().String())
		return err == nil
	},
}

// FormatValidationErrors lists the failing fields of a binding error
func FormatValidationErrors(err error) []dto.ValidationDetail {
	var details []dto.ValidationDetail
	var validationErrors validator.ValidationErrors
	if errors.As(err, &validationErrors) {
		for _, e := range validationErrors {
			details = append(details, dto.ValidationDetail{
				Field:   e.Field(),
				Message: getValidationMessage(e),
			})
		}
	}
	return details
}

// ValidationMessage renders a binding error as one line for a page flash
func ValidationMessage(err error) string {
	details := FormatValidationErrors(err)
	if len(details) == 0 {
		return "The submitted form is invalid"
	}
	parts := make([]string, 0, len(details))
	for _, d := range details {
		parts = append(parts, humanize(d.Field)+": "+d.Message)
	}
	return strings.Join(parts, "; ")
}

// HandleValidationError writes the 400 validation envelope
func HandleValidationError(c *gin.Context, err error) {
	c.JSON(http.StatusBadRequest, dto.NewValidationErrorResponse(
		"Request validation failed",
		GetRequestID(c),
		FormatValidationErrors(err),
	))
}

func humanize(field string) string {
	field = strings.ReplaceAll(field, "_", " ")
	if field == "" {
		return field
	}
	return strings.ToUpper(field[:1]) + field[1:]
}

// getValidationMessage returns a human-readable validation message
func getValidationMessage(e validator.FieldError) string {
	switch e.Tag() {
	case "required":
		return "This field is required"
	case "email":
		return "Invalid email format"
	case "min":
		if e.Type().Kind() == reflect.String {
			return "Must be at least " + e.Param() + " characters"
		}
		return "Must be at least " + e.Param()
	case "max":
		if e.Type().Kind() == reflect.String {
			return "Must be at most " + e.Param() + " characters"
		}
		return "Must be at most " + e.Param()
	case "uuid":
		return "Invalid selection"
	case "oneof":
		return "Must be one of: " + e.Param()
	case "location":
		return "Unknown inventory location"
	case "batch_status":
		return "Unknown batch status"
	case "cost_type":
		return "Unknown cost type"
	case "payment_method":
		return "Unknown payment method"
	case "role":
		return "Unknown role"
	case "unit":
		return "Unknown unit"
	case "decimal":
		return "Must be a number"
	case "positive":
		return "Must be greater than 0"
	case "date":
		return "Must be a date (YYYY-MM-DD)"
	case "eqfield":
		return "Does not match"
	case "nefield":
		return "Must differ from " + humanize(e.Param())
	default:
		return "Invalid value"
	}
}
