package query

import (
	"fmt"

	"github.com/go-playground/validator/v10"
	"github.com/labstack/echo/v4"
)

// Define a single validator to do all of the validations for us.
var v = validator.New()

// ValidatedQueryParam extracts a query parameter and validates it.
func ValidatedQueryParam(ctx echo.Context, name, validationTag string) (string, error) {
	value := ctx.QueryParam(name)

	// Validate the value.
	if err := v.Var(value, validationTag); err != nil {
		return "", fmt.Errorf("invalid query parameter: %s", name)
	}

	return value, nil
}

// OptionalQueryParam extracts a query parameter, falling back to a default when
// the parameter is absent or blank.
func OptionalQueryParam(ctx echo.Context, name, defaultValue string) string {
	value := ctx.QueryParam(name)
	if value == "" {
		return defaultValue
	}
	return value
}
