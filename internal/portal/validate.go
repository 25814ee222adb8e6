package portal

import (
	"reflect"
	"strings"

	"github.com/go-playground/validator/v10"

	"github.com/Spok95/college-portal/internal/apperr"
)

var validate = newValidator()

func newValidator() *validator.Validate {
	v := validator.New()
	// в ошибках: имена из json-тегов
	v.RegisterTagNameFunc(func(fld reflect.StructField) string {
		name := strings.SplitN(fld.Tag.Get("json"), ",", 2)[0]
		if name == "-" {
			return ""
		}
		return name
	})
	_ = v.RegisterValidation("notblank", func(fl validator.FieldLevel) bool {
		s, ok := fl.Field().Interface().(string)
		return ok && strings.TrimSpace(s) != ""
	})
	return v
}

func check(op string, in any) error {
	if err := validate.Struct(in); err != nil {
		return apperr.FromValidator(op, err)
	}
	return nil
}
