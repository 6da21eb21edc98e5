package handler

import (
	"strings"

	"github.com/go-playground/locales/en"
	ut "github.com/go-playground/universal-translator"
	"github.com/go-playground/validator/v10"
	entranslations "github.com/go-playground/validator/v10/translations/en"
)

// requestValidator wraps a validator instance with English translations
// so handlers can turn validation failures into readable 400 messages.
type requestValidator struct {
	validate   *validator.Validate
	translator ut.Translator
}

func newRequestValidator() *requestValidator {
	enLocale := en.New()
	uni := ut.New(enLocale, enLocale)
	translator, _ := uni.GetTranslator("en")

	validate := validator.New(validator.WithRequiredStructEnabled())
	_ = entranslations.RegisterDefaultTranslations(validate, translator)

	return &requestValidator{
		validate:   validate,
		translator: translator,
	}
}

// check validates the payload and returns a joined, human-readable
// message for the first batch of failures, or "" when the payload is valid.
func (v *requestValidator) check(payload any) string {
	err := v.validate.Struct(payload)
	if err == nil {
		return ""
	}

	validationErrs, ok := err.(validator.ValidationErrors)
	if !ok {
		return "invalid request body"
	}

	messages := make([]string, 0, len(validationErrs))
	for _, fieldErr := range validationErrs {
		messages = append(messages, fieldErr.Translate(v.translator))
	}

	return strings.Join(messages, "; ")
}
