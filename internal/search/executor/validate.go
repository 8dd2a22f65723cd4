package executor

import (
	"fmt"
	"regexp"
	"strings"

	"github.com/go-playground/validator/v10"
)

// BadRequestError reports every violation found in a query, never a partial
// list. It surfaces before any I/O happens.
type BadRequestError struct {
	Violations []string
}

func (e *BadRequestError) Error() string {
	return "invalid search query: " + strings.Join(e.Violations, "; ")
}

var (
	romeCodePattern        = regexp.MustCompile(`^[A-N]\d{4}$`)
	appellationCodePattern = regexp.MustCompile(`^\d{5,6}$`)
)

var queryValidator = newQueryValidator()

func newQueryValidator() *validator.Validate {
	v := validator.New()
	// Registration only fails for empty tags or nil funcs.
	_ = v.RegisterValidation("rome_code", func(fl validator.FieldLevel) bool {
		return romeCodePattern.MatchString(fl.Field().String())
	})
	_ = v.RegisterValidation("appellation_code", func(fl validator.FieldLevel) bool {
		return appellationCodePattern.MatchString(fl.Field().String())
	})
	return v
}

type queryPayload struct {
	Latitude         float64  `validate:"gte=-90,lte=90"`
	Longitude        float64  `validate:"gte=-180,lte=180"`
	DistanceKm       float64  `validate:"gt=0"`
	AppellationCodes []string `validate:"dive,appellation_code"`
	RomeCode         string   `validate:"omitempty,rome_code"`
	SortedBy         string   `validate:"omitempty,oneof=distance date"`
	SearchableBy     string   `validate:"omitempty,oneof=students jobSeekers"`
}

// validateQuery checks coordinate bounds, radius, and code formats, and
// returns a BadRequestError listing all violations.
func validateQuery(query Query) error {
	payload := queryPayload{
		Latitude:         query.Latitude,
		Longitude:        query.Longitude,
		DistanceKm:       query.DistanceKm,
		AppellationCodes: query.AppellationCodes,
		RomeCode:         query.RomeCode,
		SortedBy:         string(query.SortedBy),
		SearchableBy:     string(query.SearchableBy),
	}

	err := queryValidator.Struct(payload)
	if err == nil {
		return nil
	}
	validationErrors, ok := err.(validator.ValidationErrors)
	if !ok {
		return err
	}

	violations := make([]string, 0, len(validationErrors))
	for _, fieldError := range validationErrors {
		violations = append(violations, describeViolation(fieldError))
	}
	return &BadRequestError{Violations: violations}
}

func describeViolation(fieldError validator.FieldError) string {
	switch fieldError.Field() {
	case "Latitude":
		return "latitude must be between -90 and 90"
	case "Longitude":
		return "longitude must be between -180 and 180"
	case "DistanceKm":
		return "distanceKm must be greater than 0"
	case "RomeCode":
		return fmt.Sprintf("romeCode %q is not a valid rome code", fieldError.Value())
	case "SortedBy":
		return fmt.Sprintf("sortedBy %q must be distance or date", fieldError.Value())
	case "SearchableBy":
		return fmt.Sprintf("establishmentSearchableBy %q must be students or jobSeekers", fieldError.Value())
	default:
		if fieldError.Tag() == "appellation_code" {
			return fmt.Sprintf("appellationCode %q is not a valid appellation code", fieldError.Value())
		}
		return fieldError.Error()
	}
}
