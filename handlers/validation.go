package handlers

import (
	"errors"
	"fmt"
	"reflect"
	"strconv"
	"strings"
	"unicode/utf16"

	"notes-api/apperr"

	"github.com/go-playground/validator/v10"
)

// messages maps "<json field>.<tag>" to the text returned to clients.
var messages = map[string]string{
	"username.required": "username missing",
	"password.required": "password must be at least 3 characters long",
	"password.utf16min": "password must be at least 3 characters long",
	"content.required":  "content missing",
}

func newValidator() *validator.Validate {
	v := validator.New()
	v.RegisterTagNameFunc(func(f reflect.StructField) string {
		name, _, _ := strings.Cut(f.Tag.Get("json"), ",")
		if name == "-" {
			return ""
		}
		return name
	})
	_ = v.RegisterValidation("utf16min", utf16Min)
	return v
}

// utf16Min compares the length in UTF-16 code units, the unit browsers use
// for string length.
func utf16Min(fl validator.FieldLevel) bool {
	want, err := strconv.Atoi(fl.Param())
	if err != nil {
		return false
	}
	n := 0
	for _, r := range fl.Field().String() {
		n += utf16.RuneLen(r)
	}
	return n >= want
}

// check validates v and reports the first failing field as a ValidationError.
func (h *Handler) check(v any) error {
	err := h.validate.Struct(v)
	if err == nil {
		return nil
	}
	var fields validator.ValidationErrors
	if !errors.As(err, &fields) || len(fields) == 0 {
		return err
	}
	f := fields[0]
	if msg, ok := messages[f.Field()+"."+f.Tag()]; ok {
		return apperr.Validation(msg)
	}
	return apperr.Validation(fmt.Sprintf("%s is invalid", f.Field()))
}
