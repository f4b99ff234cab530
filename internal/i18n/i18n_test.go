package i18n

import (
	"context"
	"testing"

	"github.com/go-playground/validator/v10"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/sakif/todo-api/internal/apperror"
)

func newTestBundle(t *testing.T) *Bundle {
	t.Helper()
	b, err := New()
	require.NoError(t, err)
	return b
}

// ===== CATALOGUES =====

func TestCatalogs_SameKeysInEveryLocale(t *testing.T) {
	for key := range catalogs[DefaultLocale] {
		for locale, msgs := range catalogs {
			_, ok := msgs[key]
			assert.True(t, ok, "locale %s is missing %s", locale, key)
		}
	}
	for locale, msgs := range catalogs {
		assert.Len(t, msgs, len(catalogs[DefaultLocale]), "locale %s", locale)
	}
}

// ===== LOCALE MATCHING =====

func TestMatch(t *testing.T) {
	b := newTestBundle(t)

	cases := []struct {
		header string
		want   string
	}{
		{"", "en"},
		{"ru", "ru"},
		{"ru-RU,ru;q=0.9,en;q=0.8", "ru"},
		{"en-GB", "en"},
		{"de-DE", "en"},
		{"fr;q=0.9, ru;q=0.5", "ru"},
		{";;garbage", "en"},
	}

	for _, tc := range cases {
		t.Run(tc.header, func(t *testing.T) {
			assert.Equal(t, tc.want, b.Match(tc.header).Locale())
		})
	}
}

// ===== MESSAGES =====

func TestLocalize(t *testing.T) {
	b := newTestBundle(t)
	err := apperror.NotFound("todo", "abc")

	assert.Equal(t, "Todo not found with id abc", b.Localize(b.Translator("en"), err))
	assert.Equal(t, "Задача с id abc не найдена", b.Localize(b.Translator("ru"), err))
}

func TestMessage_Fallbacks(t *testing.T) {
	b := newTestBundle(t)
	en := b.Translator("en")

	assert.Equal(t, "fallback", b.Message(nil, "errors.app.general", nil, "fallback"))
	assert.Equal(t, "fallback", b.Message(en, "errors.no.such_key", nil, "fallback"))
	assert.Equal(t, "fallback", b.Message(en, "", nil, "fallback"))
}

func TestMessage_MissingParamsDoNotPanic(t *testing.T) {
	b := newTestBundle(t)

	assert.NotPanics(t, func() {
		msg := b.Message(b.Translator("en"), "errors.validation.field", []string{"title"}, "x")
		assert.Equal(t, "Invalid value for title: ", msg)
	})
}

// ===== VALIDATION =====

type sampleRequest struct {
	Title     string `json:"title" validate:"required"`
	AvatarURL string `json:"avatar_url,omitempty" validate:"omitempty,url"`
}

func TestValidationFields(t *testing.T) {
	b := newTestBundle(t)

	err := b.Validator().Struct(sampleRequest{AvatarURL: "not a url"})
	var verrs validator.ValidationErrors
	require.ErrorAs(t, err, &verrs)

	fields := b.ValidationFields(b.Translator("en"), verrs)
	require.Len(t, fields, 2)
	assert.Equal(t, "title", fields[0].Field)
	assert.Equal(t, "title is a required field", fields[0].Message)
	assert.Equal(t, "avatar_url", fields[1].Field)

	ru := b.ValidationFields(b.Translator("ru"), verrs)
	assert.NotEqual(t, fields[0].Message, ru[0].Message)
}

// ===== CONTEXT =====

func TestContext(t *testing.T) {
	b := newTestBundle(t)
	err := apperror.NotFound("tag", "t1")

	assert.Nil(t, FromContext(context.Background()))
	assert.Equal(t, err.Message, Localize(context.Background(), err))

	ctx := b.WithTranslator(context.Background(), b.Translator("ru"))
	require.NotNil(t, FromContext(ctx))
	assert.Equal(t, "ru", FromContext(ctx).Locale())
	assert.Equal(t, "Тег с id t1 не найден", Localize(ctx, err))
}
