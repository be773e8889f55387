// Package validate adapts go-playground/validator to echo and reports
// failures as field-level validation errors.
package validate

import (
	"errors"
	"reflect"
	"strings"

	"github.com/go-playground/locales/en"
	ut "github.com/go-playground/universal-translator"
	"github.com/go-playground/validator/v10"
	enTranslations "github.com/go-playground/validator/v10/translations/en"

	"github.com/xsidious/constructionmanagment-sub000/internal/apperr"
)

// Validator implements echo.Validator
type Validator struct {
	v     *validator.Validate
	trans ut.Translator
}

// New builds a validator that names fields by their json tag and renders
// English messages.
func New() *Validator {
	v := validator.New(validator.WithRequiredStructEnabled())
	enT := en.New()
	uni := ut.New(enT, enT)
	trans, _ := uni.GetTranslator("en")
	if err := enTranslations.RegisterDefaultTranslations(v, trans); err != nil {
		panic("validator translations: " + err.Error())
	}
	v.RegisterTagNameFunc(func(fld reflect.StructField) string {
		name := strings.SplitN(fld.Tag.Get("json"), ",", 2)[0]
		if name == "-" {
			return ""
		}
		return name
	})
	return &Validator{v: v, trans: trans}
}

// Validate checks struct tags and returns *apperr.ValidationError on failure
func (cv *Validator) Validate(i interface{}) error {
	err := cv.v.Struct(i)
	if err == nil {
		return nil
	}

	var errs validator.ValidationErrors
	if !errors.As(err, &errs) {
		return err
	}

	verr := &apperr.ValidationError{}
	for _, fe := range errs {
		verr.Add(fieldPath(fe.Namespace()), fe.Translate(cv.trans))
	}
	return verr
}

// fieldPath drops the root struct name: createQuoteRequest.items[0].description -> items[0].description
func fieldPath(namespace string) string {
	if i := strings.IndexByte(namespace, '.'); i >= 0 {
		return namespace[i+1:]
	}
	return namespace
}
