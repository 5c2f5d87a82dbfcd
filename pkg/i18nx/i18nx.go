// Package i18nx resolves abstract message keys into localized user-facing
// text. Handlers never embed English strings directly; they pass a message
// key plus the request's negotiated language.
package i18nx

import (
	"golang.org/x/text/language"
)

// Translator resolves a message key for a language tag. Implemented here by
// Catalog and injectable anywhere error text is produced.
type Translator interface {
	Translate(key, lang string) string
}

const DefaultLanguage = "en"

var supported = []language.Tag{
	language.English, // en, also the fallback
	language.Persian, // fa
}

var matcher = language.NewMatcher(supported)

// Negotiate picks the response language from an explicit ?lang= override and
// the Accept-Language header, in that order. Unknown languages fall back to
// English.
func Negotiate(langParam, acceptLanguage string) string {
	_, idx := language.MatchStrings(matcher, langParam, acceptLanguage)
	base, _ := supported[idx].Base()
	return base.String()
}

// Catalog is an in-memory Translator with per-language message tables.
type Catalog struct {
	messages map[string]map[string]string
}

// NewCatalog returns the built-in message catalog.
func NewCatalog() *Catalog {
	return &Catalog{messages: builtinMessages}
}

// Translate resolves key in lang. Missing languages fall back to English;
// missing keys resolve to the key itself so a gap is visible, not a panic.
func (c *Catalog) Translate(key, lang string) string {
	if table, ok := c.messages[lang]; ok {
		if msg, ok := table[key]; ok {
			return msg
		}
	}
	if msg, ok := c.messages[DefaultLanguage][key]; ok {
		return msg
	}
	return key
}

var builtinMessages = map[string]map[string]string{
	"en": {
		"expense_not_found":   "Expense not found",
		"unauthenticated":     "Could not validate credentials",
		"invalid_credentials": "Incorrect username or password",
		"username_taken":      "Username already registered",
		"invalid_request":     "Invalid request body",
		"internal_error":      "Internal server error",
		"logged_out":          "Logged out successfully",
	},
	"fa": {
		"expense_not_found":   "هزینه یافت نشد",
		"unauthenticated":     "اعتبارنامه قابل تایید نیست",
		"invalid_credentials": "نام کاربری یا رمز عبور اشتباه است",
		"username_taken":      "این نام کاربری قبلا ثبت شده است",
		"invalid_request":     "درخواست نامعتبر است",
		"internal_error":      "خطای داخلی سرور",
		"logged_out":          "با موفقیت خارج شدید",
	},
}
