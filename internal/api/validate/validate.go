package validate

import (
	"errors"
	"fmt"
	"reflect"
	"strings"

	"github.com/go-playground/validator/v10"
)

var v = newValidator()

func newValidator() *validator.Validate {
	val := validator.New(validator.WithRequiredStructEnabled())
	// report JSON names so error fields match the request body
	val.RegisterTagNameFunc(func(f reflect.StructField) string {
		name := strings.SplitN(f.Tag.Get("json"), ",", 2)[0]
		if name == "-" {
			return ""
		}
		if name == "" {
			return f.Name
		}
		return name
	})
	return val
}

type ErrField struct {
	Field string `json:"field"`
	Msg   string `json:"msg"`
}

type Errs []ErrField

func (e Errs) Error() string {
	var b strings.Builder
	for i, ef := range e {
		if i > 0 {
			b.WriteString("; ")
		}
		b.WriteString(ef.Field + ": " + ef.Msg)
	}
	return b.String()
}

// Struct validates s against its `validate` tags. It returns Errs for
// field failures and any other error unchanged.
func Struct(s any) error {
	err := v.Struct(s)
	if err == nil {
		return nil
	}
	var verrs validator.ValidationErrors
	if !errors.As(err, &verrs) {
		return err
	}
	out := make(Errs, 0, len(verrs))
	for _, fe := range verrs {
		out = append(out, ErrField{Field: fieldPath(fe), Msg: message(fe)})
	}
	return out
}

// Slice validates every element and prefixes field names with the index.
func Slice[T any](items []T) error {
	var out Errs
	for i := range items {
		err := Struct(items[i])
		if err == nil {
			continue
		}
		var errs Errs
		if !errors.As(err, &errs) {
			return err
		}
		for _, ef := range errs {
			ef.Field = fmt.Sprintf("[%d].%s", i, ef.Field)
			out = append(out, ef)
		}
	}
	if len(out) == 0 {
		return nil
	}
	return out
}

// Bulk checks a bulk request size against the configured maximum.
func Bulk(n, max int) error {
	switch {
	case n == 0:
		return Errs{{Field: "items", Msg: "must not be empty"}}
	case max > 0 && n > max:
		return Errs{{Field: "items", Msg: fmt.Sprintf("at most %d items per request", max)}}
	}
	return nil
}

// fieldPath drops the top-level struct name from the namespace.
func fieldPath(fe validator.FieldError) string {
	ns := fe.Namespace()
	if i := strings.Index(ns, "."); i >= 0 {
		return ns[i+1:]
	}
	return fe.Field()
}

func message(fe validator.FieldError) string {
	switch fe.Tag() {
	case "required":
		return "required"
	case "oneof":
		return "must be one of " + fe.Param()
	case "len":
		return "length must be " + fe.Param()
	case "min":
		return "must be at least " + fe.Param()
	case "max":
		return "must be at most " + fe.Param()
	case "gt":
		return "must be greater than " + fe.Param()
	case "email":
		return "must be a valid email"
	case "url":
		return "must be a valid URL"
	case "startswith":
		return "must start with " + fe.Param()
	}
	return "failed " + fe.Tag()
}
