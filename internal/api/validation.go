package api

import (
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"regexp"
	"strings"

	"github.com/go-playground/validator/v10"
)

var requestValidator = validator.New()

// birthdayPattern enforces the YYYY-MM-DD form. Format only: calendar
// validity is not checked, matching the login contract.
var birthdayPattern = regexp.MustCompile(`^\d{4}-\d{2}-\d{2}$`)

// decodeAndValidate decodes a single JSON document into dst and runs the
// struct validation tags. Unknown fields are ignored so older or chattier
// clients keep working; trailing garbage after the document is still
// rejected.
func decodeAndValidate(body io.Reader, dst any) error {
	decoder := json.NewDecoder(body)

	if err := decoder.Decode(dst); err != nil {
		return fmt.Errorf("invalid JSON body")
	}

	if err := decoder.Decode(&struct{}{}); !errors.Is(err, io.EOF) {
		return fmt.Errorf("invalid JSON body")
	}

	if err := requestValidator.Struct(dst); err != nil {
		var validationErrors validator.ValidationErrors
		if errors.As(err, &validationErrors) && len(validationErrors) > 0 {
			first := validationErrors[0]
			field := strings.ToLower(first.Field())
			switch first.Tag() {
			case "required":
				return fmt.Errorf("%s is required", field)
			case "max":
				return fmt.Errorf("%s is too long", field)
			default:
				return fmt.Errorf("invalid %s", field)
			}
		}

		return fmt.Errorf("invalid request payload")
	}

	return nil
}
