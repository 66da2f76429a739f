package stepform

import (
	"context"
	"errors"
	"fmt"
	"mime/multipart"
	"os"
	"slices"
	"strings"
	"sync"

	"github.com/go-playground/validator/v10"
)

var (
	validate     *validator.Validate
	validateOnce sync.Once
)

func validatorInstance() *validator.Validate {
	validateOnce.Do(func() {
		validate = validator.New()
	})
	return validate
}

// FieldErrors maps a form key to a user-facing message. It wraps ErrRejected.
type FieldErrors map[string]string

func (fe FieldErrors) Error() string {
	keys := make([]string, 0, len(fe))
	for k := range fe {
		keys = append(keys, k)
	}
	slices.Sort(keys)

	parts := make([]string, 0, len(keys))
	for _, k := range keys {
		parts = append(parts, k+" "+fe[k])
	}
	return strings.Join(parts, "; ")
}

// Is makes errors.Is(fe, ErrRejected) true.
func (fe FieldErrors) Is(target error) bool {
	return target == ErrRejected
}

// CheckRule reports whether tag is a rule the validator understands.
// Unknown tags make the validator panic, so definitions are checked up front.
func CheckRule(tag string) (err error) {
	if tag == "" {
		return nil
	}
	defer func() {
		if r := recover(); r != nil {
			err = fmt.Errorf("invalid rule %q: %v", tag, r)
		}
	}()
	_ = validatorInstance().Var("", tag)
	return nil
}

// FieldRules validates form keys against validator tags such as
// "required,email" or "omitempty,min=3". Missing keys validate as nil.
func FieldRules(rules map[string]string) ValidateFunc {
	return func(ctx context.Context, data Data) error {
		v := validatorInstance()
		errs := FieldErrors{}
		for key, tag := range rules {
			if tag == "" {
				continue
			}
			err := v.VarCtx(ctx, ruleValue(data[key]), tag)
			if err == nil {
				continue
			}
			var verrs validator.ValidationErrors
			if !errors.As(err, &verrs) || len(verrs) == 0 {
				return fmt.Errorf("validating %s: %w", key, err)
			}
			errs[key] = describe(verrs[0])
		}
		if len(errs) > 0 {
			return errs
		}
		return nil
	}
}

// Required fails for keys that are missing, nil or blank strings.
func Required(keys ...string) ValidateFunc {
	return func(ctx context.Context, data Data) error {
		errs := FieldErrors{}
		for _, k := range keys {
			v, ok := data[k]
			if !ok || v == nil {
				errs[k] = "is required"
				continue
			}
			if s, isString := v.(string); isString && strings.TrimSpace(s) == "" {
				errs[k] = "is required"
			}
		}
		if len(errs) > 0 {
			return errs
		}
		return nil
	}
}

// All runs validators in order and merges their field errors. A non-field
// error stops the chain.
func All(validators ...ValidateFunc) ValidateFunc {
	return func(ctx context.Context, data Data) error {
		merged := FieldErrors{}
		for _, fn := range validators {
			if fn == nil {
				continue
			}
			err := fn(ctx, data)
			if err == nil {
				continue
			}
			var fe FieldErrors
			if !errors.As(err, &fe) {
				return err
			}
			for k, msg := range fe {
				if _, seen := merged[k]; !seen {
					merged[k] = msg
				}
			}
		}
		if len(merged) > 0 {
			return merged
		}
		return nil
	}
}

// ruleValue stands in a file's name for the handle, so rules like
// "required" apply to uploads the way they do to text.
func ruleValue(v any) any {
	switch f := v.(type) {
	case File:
		return f.Name()
	case *os.File:
		return f.Name()
	case *multipart.FileHeader:
		return f.Filename
	case []*multipart.FileHeader:
		if len(f) == 0 {
			return nil
		}
		return f[0].Filename
	}
	return v
}

func describe(fe validator.FieldError) string {
	switch fe.Tag() {
	case "required":
		return "is required"
	case "email":
		return "must be a valid email address"
	case "url", "http_url":
		return "must be a valid URL"
	case "min":
		return "must be at least " + fe.Param()
	case "max":
		return "must be at most " + fe.Param()
	case "len":
		return "must have length " + fe.Param()
	case "oneof":
		return "must be one of " + strings.ReplaceAll(fe.Param(), " ", ", ")
	case "numeric", "number":
		return "must be a number"
	case "gte":
		return "must be greater than or equal to " + fe.Param()
	case "lte":
		return "must be less than or equal to " + fe.Param()
	case "e164":
		return "must be a phone number in international format"
	case "hexadecimal":
		return "must be hexadecimal"
	default:
		if fe.Param() != "" {
			return fmt.Sprintf("failed %s=%s", fe.Tag(), fe.Param())
		}
		return "failed " + fe.Tag()
	}
}
