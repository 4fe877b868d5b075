package services

import (
	"fmt"
	"strings"

	"github.com/go-playground/locales"
	"github.com/go-playground/locales/en"
	"github.com/go-playground/locales/en_US"
	"github.com/go-playground/locales/ru"
	"github.com/go-playground/locales/ru_RU"
)

var supportedLocales = map[string]func() locales.Translator{
	"en":    en.New,
	"en_us": en_US.New,
	"ru":    ru.New,
	"ru_ru": ru_RU.New,
}

// LocaleByName accepts both "ru_RU" and "ru-RU" spellings.
func LocaleByName(name string) (locales.Translator, error) {
	key := strings.ToLower(strings.ReplaceAll(name, "-", "_"))
	newLocale, ok := supportedLocales[key]
	if !ok {
		return nil, fmt.Errorf("%w: unsupported locale %q", ErrInvalidArgument, name)
	}
	return newLocale(), nil
}
