package domain

// CoalesceStr returns the first non-empty string from vals.
func CoalesceStr(vals ...string) string {
	for _, v := range vals {
		if v != "" {
			return v
		}
	}
	return ""
}

// CoalesceLanguage returns the first non-empty language from vals, or FR.
func CoalesceLanguage(vals ...Language) Language {
	for _, v := range vals {
		if v != "" {
			return v
		}
	}
	return LanguageFR
}
