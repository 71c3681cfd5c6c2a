package validation

import (
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"reflect"
	"strings"
	"unicode"

	"github.com/gin-gonic/gin/binding"
	"github.com/go-playground/validator/v10"
)

// Init makes Gin's binding validator report JSON field names and know the
// tags shared with Validate.
func Init() {
	if v, ok := binding.Validator.Engine().(*validator.Validate); ok {
		configure(v)
	}
}

func configure(v *validator.Validate) {
	v.RegisterTagNameFunc(func(fld reflect.StructField) string {
		name := strings.SplitN(fld.Tag.Get("json"), ",", 2)[0]
		if name == "-" {
			return ""
		}
		return name
	})
	if err := v.RegisterValidation("nospaces", noSpaces); err != nil {
		panic(fmt.Sprintf("validation: register nospaces: %v", err))
	}
	if err := v.RegisterValidation("bcryptlen", bcryptLen); err != nil {
		panic(fmt.Sprintf("validation: register bcryptlen: %v", err))
	}
	v.RegisterAlias("pwd", "min=6,bcryptlen")
}

// bcryptLen bounds the byte length, not the rune count, since bcrypt
// rejects inputs over MaxPasswordBytes.
func bcryptLen(fl validator.FieldLevel) bool {
	return len(fl.Field().String()) <= MaxPasswordBytes
}

func noSpaces(fl validator.FieldLevel) bool {
	return !strings.ContainsFunc(fl.Field().String(), unicode.IsSpace)
}

// ToDetails maps a binding error to field -> message for the error envelope.
// Decoding errors collapse into a single "payload" entry.
func ToDetails(err error) map[string]string {
	if err == nil {
		return nil
	}

	var verrs validator.ValidationErrors
	if errors.As(err, &verrs) {
		out := make(map[string]string, len(verrs))
		for _, fe := range verrs {
			out[fe.Field()] = describe(fe)
		}
		return out
	}

	var (
		syntaxErr *json.SyntaxError
		typeErr   *json.UnmarshalTypeError
	)
	if errors.As(err, &syntaxErr) || errors.As(err, &typeErr) || errors.Is(err, io.EOF) {
		return map[string]string{"payload": "invalid json"}
	}
	return map[string]string{"payload": "invalid payload"}
}

// tagMessages holds the fixed messages; parameterised tags are handled in describe.
var tagMessages = map[string]string{
	"required": "is required",
	"email":    "must be a valid email",
	"url":      "must be a valid URL",
	"uuid":     "must be a valid UUID",
	"uuid4":    "must be a valid UUID",
	"pwd":      "must be at least 6 characters and at most 72 bytes long",
	"nospaces": "must not contain spaces",
}

func describe(fe validator.FieldError) string {
	if msg, ok := tagMessages[fe.Tag()]; ok {
		return msg
	}
	param := fe.Param()
	switch fe.Tag() {
	case "min":
		return "must be at least " + param + " characters long"
	case "max":
		return "must be at most " + param + " characters long"
	case "oneof":
		return "must be one of: " + strings.Join(strings.Fields(param), ", ")
	case "eqfield":
		return "must match " + param
	}
	if param != "" {
		return fmt.Sprintf("failed %s=%s", fe.Tag(), param)
	}
	return "failed " + fe.Tag()
}
