package utils

import (
	"fmt"
	"reflect"
	"strings"
	"sync"

	"github.com/go-playground/validator/v10"
	"github.com/pkg/errors"
)

var (
	flagValidator     *validator.Validate
	flagValidatorOnce sync.Once
)

func getFlagValidator() *validator.Validate {
	flagValidatorOnce.Do(func() {
		v := validator.New(validator.WithRequiredStructEnabled())
		_ = v.RegisterValidation("month", func(fl validator.FieldLevel) bool {
			return IsValidMonthFormat(fl.Field().String())
		})
		v.RegisterTagNameFunc(func(f reflect.StructField) string {
			name, _, _ := strings.Cut(f.Tag.Get("flag"), ",")
			if name == "" {
				return f.Name
			}
			return name
		})
		flagValidator = v
	})
	return flagValidator
}

// ValidateFlags checks a struct of command line options against its `validate`
// tags. The first failure is returned as a ValidationError named after the
// `flag` tag of the field.
func ValidateFlags(opts any) error {
	err := getFlagValidator().Struct(opts)
	if err == nil {
		return nil
	}
	var verrs validator.ValidationErrors
	if !errors.As(err, &verrs) || len(verrs) == 0 {
		return errors.Wrap(err, "validate flags")
	}
	fe := verrs[0]
	return NewValidationError(fe.Field(), fmt.Sprint(fe.Value()), flagMessage(fe))
}

func flagMessage(fe validator.FieldError) string {
	switch fe.Tag() {
	case "required":
		return fmt.Sprintf("--%s is required", fe.Field())
	case "uuid", "uuid4":
		return "expected a uuid"
	case "month":
		return "expected format YYYY-MM"
	case "oneof":
		return "expected one of " + strings.ReplaceAll(fe.Param(), " ", ", ")
	default:
		return fmt.Sprintf("failed %s check", fe.Tag())
	}
}
