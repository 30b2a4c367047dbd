package validator

import (
	"errors"
	"fmt"
	"reflect"
	"strings"
	"sync"

	v10 "github.com/go-playground/validator/v10"
	"github.com/go-playground/validator/v10/non-standard/validators"
)

// Singleton validator dari go-playground
var (
	once sync.Once
	v    *v10.Validate
)

// New mengembalikan instance validator yang sama (thread-safe).
func New() *v10.Validate {
	once.Do(func() {
		v = v10.New(v10.WithRequiredStructEnabled())
		v.RegisterTagNameFunc(fieldName)
		_ = v.RegisterValidation("notblank", validators.NotBlank)
	})
	return v
}

// fieldName reports violations under the name the caller sent: the json
// key for bodies, the query key for query strings.
func fieldName(f reflect.StructField) string {
	for _, tag := range []string{"json", "query"} {
		name := strings.SplitN(f.Tag.Get(tag), ",", 2)[0]
		if name == "-" {
			return ""
		}
		if name != "" {
			return name
		}
	}
	return f.Name
}

// ValidateStruct memvalidasi struct dan merapikan error menjadi map[field]message.
// Every violated field is reported, not only the first one.
func ValidateStruct(s any) (map[string]string, error) {
	err := New().Struct(s)
	if err == nil {
		return nil, nil
	}
	var ve v10.ValidationErrors
	if !errors.As(err, &ve) {
		// bukan error validasi terstruktur
		return map[string]string{"_": err.Error()}, err
	}
	fields := make(map[string]string, len(ve))
	for _, fe := range ve {
		fields[fe.Field()] = msgForTag(fe)
	}
	return fields, err
}

// msgForTag bikin pesan ringkas per rule
func msgForTag(fe v10.FieldError) string {
	switch fe.Tag() {
	case "required":
		return "field is required"
	case "notblank":
		return "must not be blank"
	case "email":
		return "must be a valid email"
	case "min":
		if fe.Kind() == reflect.String {
			return fmt.Sprintf("must be at least %s characters", fe.Param())
		}
		return fmt.Sprintf("must be at least %s", fe.Param())
	case "max":
		if fe.Kind() == reflect.String {
			return fmt.Sprintf("must be at most %s characters", fe.Param())
		}
		return fmt.Sprintf("must be at most %s", fe.Param())
	case "numeric":
		return "must be numeric"
	case "number":
		return "must contain digits only"
	default:
		return fe.Error() // fallback detail bawaan
	}
}
