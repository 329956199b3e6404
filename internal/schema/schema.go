package schema

import (
	"math"
	"net/url"
	"reflect"
	"regexp"
	"strconv"
	"strings"

	"mercado-storefront/internal/domain"

	"github.com/go-playground/validator/v10"
)

// FieldViolation describes a single schema rule broken by a product record.
// Path uses JSON field names, e.g. "images[2]" or "price.amount".
type FieldViolation struct {
	Path    string `json:"path"`
	Message string `json:"message"`
}

var idPattern = regexp.MustCompile(`^[a-z0-9_-]+$`)

var validate *validator.Validate

func init() {
	validate = validator.New()

	// Report paths using JSON field names rather than Go struct names
	validate.RegisterTagNameFunc(func(fld reflect.StructField) string {
		name := strings.SplitN(fld.Tag.Get("json"), ",", 2)[0]
		if name == "-" {
			return ""
		}
		return name
	})

	validate.RegisterValidation("catalog_id", validCatalogID)
	validate.RegisterValidation("https_url", validHTTPSURL)
	validate.RegisterValidation("price_precision", validPricePrecision)
	validate.RegisterValidation("rating_step", validRatingStep)
}

// validCatalogID checks the shared ID format used by products and sellers.
// Length bounds are enforced separately via min/max tags.
func validCatalogID(fl validator.FieldLevel) bool {
	return idPattern.MatchString(fl.Field().String())
}

// validHTTPSURL accepts only syntactically valid URLs with an https scheme.
func validHTTPSURL(fl validator.FieldLevel) bool {
	raw := fl.Field().String()
	if !strings.HasPrefix(raw, "https://") {
		return false
	}
	u, err := url.Parse(raw)
	if err != nil {
		return false
	}
	return u.Host != ""
}

// validPricePrecision rejects amounts that change when rounded to two
// decimal places (e.g. 99.999).
func validPricePrecision(fl validator.FieldLevel) bool {
	v := fl.Field().Float()
	rounded, err := strconv.ParseFloat(strconv.FormatFloat(v, 'f', 2, 64), 64)
	if err != nil {
		return false
	}
	return rounded == v
}

// validRatingStep rejects averages that are not on a 0.1 grid (e.g. 4.53).
func validRatingStep(fl validator.FieldLevel) bool {
	v := fl.Field().Float()
	return math.Round(v*10)/10 == v
}

// ValidateProduct checks a product against the catalog schema. It returns
// nil when the record conforms, or an ordered, non-empty list of field
// violations. It never panics, for any input.
func ValidateProduct(p *domain.Product) []FieldViolation {
	if p == nil {
		return []FieldViolation{{Path: "", Message: "product record is missing"}}
	}

	err := validate.Struct(p)
	if err == nil {
		return nil
	}

	validationErrors, ok := err.(validator.ValidationErrors)
	if !ok {
		// Invalid use of the validator itself; surface as a single violation
		// rather than panicking.
		return []FieldViolation{{Path: "", Message: err.Error()}}
	}

	violations := make([]FieldViolation, 0, len(validationErrors))
	for _, e := range validationErrors {
		violations = append(violations, FieldViolation{
			Path:    fieldPath(e),
			Message: violationMessage(e),
		})
	}
	return violations
}

// fieldPath strips the root struct name from the validator namespace,
// leaving "price.amount", "images[2]" and the like.
func fieldPath(e validator.FieldError) string {
	ns := e.Namespace()
	if i := strings.Index(ns, "."); i >= 0 {
		return ns[i+1:]
	}
	return ns
}

func violationMessage(e validator.FieldError) string {
	switch e.Tag() {
	case "required":
		return e.Field() + " is required"
	case "catalog_id":
		return "ID must contain only lowercase letters, numbers, underscores, and hyphens"
	case "https_url":
		return "Image must be a valid HTTPS URL"
	case "price_precision":
		return "Price must have at most 2 decimal places"
	case "rating_step":
		return "Rating average must be in 0.1 steps"
	case "oneof":
		return "Currency must be one of MXN, USD"
	case "min":
		return minMessage(e)
	case "max":
		return maxMessage(e)
	case "gt":
		return "Price amount must be positive"
	case "gte":
		return e.Field() + " must be at least " + e.Param()
	case "lte":
		return e.Field() + " must not exceed " + e.Param()
	default:
		return "Invalid value for " + e.Field()
	}
}

// minMessage and maxMessage distinguish array bound violations from string
// length violations so tests can assert on the exact reason.
func minMessage(e validator.FieldError) string {
	if e.Kind() == reflect.Slice {
		switch e.Field() {
		case "images":
			return "At least one image is required"
		case "paymentMethods":
			return "At least one payment method is required"
		}
		return e.Field() + " must contain at least " + e.Param() + " entries"
	}
	return e.Field() + " must be at least " + e.Param() + " characters"
}

func maxMessage(e validator.FieldError) string {
	if e.Kind() == reflect.Slice {
		if e.Field() == "images" {
			return "Maximum 10 images allowed"
		}
		return e.Field() + " must contain at most " + e.Param() + " entries"
	}
	return e.Field() + " must not exceed " + e.Param() + " characters"
}
