package domain

type Shortcode struct {
	ID            string
	Code          string
	DisplayNameFR string
	DisplayNameEN string
}

// DisplayName returns the label for lang. English falls back to French when
// no English label is stored.
func (s Shortcode) DisplayName(lang Language) string {
	if lang == LanguageEN && s.DisplayNameEN != "" {
		return s.DisplayNameEN
	}
	return s.DisplayNameFR
}
