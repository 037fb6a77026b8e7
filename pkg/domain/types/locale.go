package types

// Locale is a BCP 47 language tag used for user-facing content
type Locale string

// DefaultLocale applies when identity metadata carries no locale
const DefaultLocale Locale = "fr"

func (l Locale) Normalize() Locale {
	if l == "" {
		return DefaultLocale
	}
	return l
}

func (l Locale) String() string {
	return string(l)
}
