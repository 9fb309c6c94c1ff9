package config

import (
	"github.com/spf13/pflag"

	"github.com/alexanderramin/mediasheet/internal/domain"
)

// LanguageValue is a pflag.Value accepting FR or EN. The zero value means
// no override.
type LanguageValue domain.Language

var _ pflag.Value = (*LanguageValue)(nil)

func (l *LanguageValue) String() string { return string(*l) }

func (l *LanguageValue) Set(s string) error {
	lang, err := domain.ParseLanguage(s)
	if err != nil {
		return err
	}
	*l = LanguageValue(lang)
	return nil
}

func (l *LanguageValue) Type() string { return "FR|EN" }

// Language returns the parsed value, empty when the flag was not given.
func (l *LanguageValue) Language() domain.Language { return domain.Language(*l) }
