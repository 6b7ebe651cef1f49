package validation

import (
	stderrors "errors"
	"reflect"
	"strings"
	"sync"

	"github.com/go-playground/validator/v10"

	"github.com/kbukum/restkit/errors"
)

var (
	validate *validator.Validate
	once     sync.Once
)

// FieldError is one failed field.
type FieldError struct {
	Field   string `json:"field"`
	Message string `json:"message"`
}

func get() *validator.Validate {
	once.Do(func() {
		validate = validator.New(validator.WithRequiredStructEnabled())
		validate.RegisterTagNameFunc(fieldName)
	})
	return validate
}

// fieldName names fields by their mapstructure key, then json key, so
// errors point at what the user wrote in the config file.
func fieldName(fld reflect.StructField) string {
	for _, tag := range []string{"mapstructure", "json"} {
		name, _, _ := strings.Cut(fld.Tag.Get(tag), ",")
		if name == "-" {
			return ""
		}
		if name != "" {
			return name
		}
	}
	return toSnakeCase(fld.Name)
}

// Struct validates s by its validate tags. Failures are returned as an
// INVALID_REQUEST AppError whose "fields" detail lists every FieldError.
func Struct(s any) error {
	err := get().Struct(s)
	if err == nil {
		return nil
	}

	var verrs validator.ValidationErrors
	if !stderrors.As(err, &verrs) {
		return errors.InvalidRequest("validation failed", err)
	}

	fields := make([]FieldError, 0, len(verrs))
	messages := make([]string, 0, len(verrs))
	for _, e := range verrs {
		path := namespace(e)
		msg := message(e)
		fields = append(fields, FieldError{Field: path, Message: msg})
		messages = append(messages, path+" "+msg)
	}
	return errors.InvalidRequest(strings.Join(messages, "; "), nil).WithDetail("fields", fields)
}

// namespace drops the root struct name: "Config.redis.db" becomes "redis.db".
func namespace(e validator.FieldError) string {
	ns := e.Namespace()
	if _, rest, ok := strings.Cut(ns, "."); ok {
		return rest
	}
	return ns
}

func message(e validator.FieldError) string {
	switch e.Tag() {
	case "required":
		return "is required"
	case "url":
		return "must be a valid URL"
	case "oneof":
		return "must be one of: " + e.Param()
	case "gte":
		return "must be at least " + e.Param()
	case "lte":
		return "must be at most " + e.Param()
	default:
		return "is invalid"
	}
}

func toSnakeCase(s string) string {
	var b strings.Builder
	for i, r := range s {
		if r >= 'A' && r <= 'Z' {
			if i > 0 {
				b.WriteByte('_')
			}
			r += 'a' - 'A'
		}
		b.WriteRune(r)
	}
	return b.String()
}
