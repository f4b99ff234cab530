// Package i18n localizes error messages and validation failures.
//
// HOW A MESSAGE GETS LOCALIZED:
//  1. The Locale middleware matches Accept-Language against the supported
//     locales (golang.org/x/text/language) and stores a ut.Translator in
//     the request context.
//  2. Services return *apperror.AppError values carrying a catalogue Key
//     and positional Params, never localized text.
//  3. The response writer looks the Key up in the request's translator and
//     falls back to the English AppError.Message when the key is unknown.
//
// Struct validation goes through the same translators: the validator's
// built-in en/ru messages are registered on each of them, and field names
// are reported by their json tag.
package i18n

import (
	"context"
	"fmt"
	"reflect"
	"regexp"
	"strconv"
	"strings"

	"github.com/go-playground/locales"
	"github.com/go-playground/locales/en"
	"github.com/go-playground/locales/ru"
	ut "github.com/go-playground/universal-translator"
	"github.com/go-playground/validator/v10"
	en_translations "github.com/go-playground/validator/v10/translations/en"
	ru_translations "github.com/go-playground/validator/v10/translations/ru"
	"golang.org/x/text/language"

	"github.com/sakif/todo-api/internal/apperror"
)

// DefaultLocale is used when Accept-Language is absent or names no
// supported language.
const DefaultLocale = "en"

// supported lists the locales in matcher order; the first is the default.
var supported = []struct {
	tag    language.Tag
	locale locales.Translator
	// registers the validator's built-in messages for this locale
	validation func(v *validator.Validate, trans ut.Translator) error
}{
	{language.English, en.New(), en_translations.RegisterDefaultTranslations},
	{language.Russian, ru.New(), ru_translations.RegisterDefaultTranslations},
}

var placeholderRE = regexp.MustCompile(`\{(\d+)\}`)

// Bundle holds the translators for every supported locale and the
// validator whose messages they translate.
type Bundle struct {
	uni      *ut.UniversalTranslator
	matcher  language.Matcher
	validate *validator.Validate
	// arity is the number of positional parameters each key expects.
	arity map[string]int
}

// New loads the message catalogues and registers validation translations.
func New() (*Bundle, error) {
	tags := make([]language.Tag, len(supported))
	locs := make([]locales.Translator, len(supported))
	for i, s := range supported {
		tags[i] = s.tag
		locs[i] = s.locale
	}

	b := &Bundle{
		uni:      ut.New(locs[0], locs...),
		matcher:  language.NewMatcher(tags),
		validate: validator.New(validator.WithRequiredStructEnabled()),
		arity:    make(map[string]int),
	}

	// Report fields by their json name ("avatar_url", not "AvatarURL").
	b.validate.RegisterTagNameFunc(func(f reflect.StructField) string {
		name, _, _ := strings.Cut(f.Tag.Get("json"), ",")
		if name == "-" {
			return ""
		}
		if name == "" {
			return f.Name
		}
		return name
	})

	for _, s := range supported {
		trans, _ := b.uni.GetTranslator(s.locale.Locale())

		msgs, ok := catalogs[s.locale.Locale()]
		if !ok {
			return nil, fmt.Errorf("i18n: no catalogue for locale %q", s.locale.Locale())
		}
		for key, text := range msgs {
			if err := trans.Add(key, text, false); err != nil {
				return nil, fmt.Errorf("i18n: adding %s/%s: %w", s.locale.Locale(), key, err)
			}
			for _, m := range placeholderRE.FindAllStringSubmatch(text, -1) {
				n, _ := strconv.Atoi(m[1])
				b.arity[key] = max(b.arity[key], n+1)
			}
		}

		if err := s.validation(b.validate, trans); err != nil {
			return nil, fmt.Errorf("i18n: registering %s validation messages: %w", s.locale.Locale(), err)
		}
	}

	return b, nil
}

// Validator returns the validator whose messages this bundle translates.
func (b *Bundle) Validator() *validator.Validate {
	return b.validate
}

// Match picks the translator for an Accept-Language header value.
// Unparsable or unsupported values yield the default locale.
func (b *Bundle) Match(acceptLanguage string) ut.Translator {
	tags, _, err := language.ParseAcceptLanguage(acceptLanguage)
	if err != nil {
		tags = nil
	}
	_, idx, _ := b.matcher.Match(tags...)
	trans, _ := b.uni.GetTranslator(supported[idx].locale.Locale())
	return trans
}

// Translator returns the translator for a locale name such as "ru".
func (b *Bundle) Translator(locale string) ut.Translator {
	trans, _ := b.uni.GetTranslator(locale)
	return trans
}

// Message renders key with params in trans's locale. fallback is returned
// when trans is nil or does not know the key.
func (b *Bundle) Message(trans ut.Translator, key string, params []string, fallback string) string {
	if trans == nil || key == "" {
		return fallback
	}
	// ut.Translator.T indexes params positionally; pad so a short list
	// renders blanks instead of panicking.
	if n := b.arity[key]; len(params) < n {
		padded := make([]string, n)
		copy(padded, params)
		params = padded
	}
	msg, err := trans.T(key, params...)
	if err != nil {
		return fallback
	}
	return msg
}

// Localize renders an AppError's message in trans's locale.
func (b *Bundle) Localize(trans ut.Translator, e *apperror.AppError) string {
	return b.Message(trans, e.Key, e.Params, e.Message)
}

// ValidationFields converts validator errors into field errors with
// messages in trans's locale.
func (b *Bundle) ValidationFields(trans ut.Translator, errs validator.ValidationErrors) []apperror.FieldError {
	fields := make([]apperror.FieldError, 0, len(errs))
	for _, fe := range errs {
		msg := fe.Error()
		if trans != nil {
			msg = fe.Translate(trans)
		}
		fields = append(fields, apperror.FieldError{Field: fieldPath(fe), Message: msg})
	}
	return fields
}

// fieldPath drops the top-level struct name: "createTodoRequest.tag_ids[0]"
// becomes "tag_ids[0]".
func fieldPath(fe validator.FieldError) string {
	ns := fe.Namespace()
	if _, rest, ok := strings.Cut(ns, "."); ok {
		return rest
	}
	return fe.Field()
}

// ===== CONTEXT =====

type contextKey struct{}

type localizer struct {
	bundle *Bundle
	trans  ut.Translator
}

// WithTranslator returns a copy of ctx that localizes with trans.
func (b *Bundle) WithTranslator(ctx context.Context, trans ut.Translator) context.Context {
	return context.WithValue(ctx, contextKey{}, localizer{bundle: b, trans: trans})
}

// FromContext returns the request's translator, or nil.
func FromContext(ctx context.Context) ut.Translator {
	l, _ := ctx.Value(contextKey{}).(localizer)
	return l.trans
}

// Localize renders e in the request's locale, or returns e.Message when
// ctx carries no translator.
func Localize(ctx context.Context, e *apperror.AppError) string {
	l, ok := ctx.Value(contextKey{}).(localizer)
	if !ok {
		return e.Message
	}
	return l.bundle.Localize(l.trans, e)
}
