package accounts

import (
	"errors"

	validation "github.com/go-ozzo/ozzo-validation"
	"github.com/nyaruka/phonenumbers"
)

// FormatValidationErrorToMap flattens ozzo validation errors into a
// field=>message map suitable for JSON responses.
func FormatValidationErrorToMap(err error) map[string]string {
	out := map[string]string{}
	if err == nil {
		return out
	}

	var verrs validation.Errors
	if errors.As(err, &verrs) {
		for field, ferr := range verrs {
			if ferr != nil {
				out[field] = ferr.Error()
			}
		}
		return out
	}

	out["error"] = err.Error()
	return out
}

// ValidateStringEquals will check that both values match
func ValidateStringEquals(str string) validation.RuleFunc {
	return func(value interface{}) error {
		s, _ := value.(string)
		if s != str {
			return errors.New("values must match")
		}
		return nil
	}
}

// ValidatePhoneNumber parses the value as a phone number in the given
// default region and rejects numbers that fail carrier validation.
// Empty values pass; combine with validation.Required when mandatory.
func ValidatePhoneNumber(region string) validation.RuleFunc {
	return func(value interface{}) error {
		s, _ := value.(string)
		if s == "" {
			return nil
		}

		num, err := phonenumbers.Parse(s, region)
		if err != nil {
			return errors.New("must be a valid phone number")
		}

		if !phonenumbers.IsValidNumber(num) {
			return errors.New("must be a valid phone number")
		}

		return nil
	}
}
