package formlingo

import "strings"

// Languages is the catalog of supported translation targets.
// The first entry is the default target.
var Languages = []Language{
	// Languages of India
	{Value: "hi", Label: "Hindi (हिन्दी)"},
	{Value: "bn", Label: "Bengali (বাংলা)"},
	{Value: "te", Label: "Telugu (తెలుగు)"},
	{Value: "mr", Label: "Marathi (मराठी)"},
	{Value: "ta", Label: "Tamil (தமிழ்)"},
	{Value: "ur", Label: "Urdu (اردو)"},
	{Value: "gu", Label: "Gujarati (ગુજરાતી)"},
	{Value: "kn", Label: "Kannada (ಕನ್ನಡ)"},
	{Value: "or", Label: "Odia (ଓଡ଼ିଆ)"},
	{Value: "ml", Label: "Malayalam (മലയാളം)"},
	{Value: "pa", Label: "Punjabi (ਪੰਜਾਬੀ)"},
	{Value: "as", Label: "Assamese (অসমীয়া)"},
	{Value: "ne", Label: "Nepali (नेपाली)"},

	// Other languages
	{Value: "en", Label: "English"},
	{Value: "es", Label: "Spanish (Español)"},
	{Value: "fr", Label: "French (Français)"},
	{Value: "de", Label: "German (Deutsch)"},
	{Value: "ar", Label: "Arabic (العربية)"},
	{Value: "zh", Label: "Chinese (中文)"},
	{Value: "ja", Label: "Japanese (日本語)"},
	{Value: "ko", Label: "Korean (한국어)"},
	{Value: "pt", Label: "Portuguese (Português)"},
	{Value: "ru", Label: "Russian (Русский)"},
	{Value: "vi", Label: "Vietnamese (Tiếng Việt)"},
}

// RTLLanguages contains language codes that use right-to-left text direction.
var RTLLanguages = map[string]bool{
	"ar": true, // Arabic
	"he": true, // Hebrew
	"fa": true, // Persian/Farsi
	"ur": true, // Urdu
	"ps": true, // Pashto
	"sd": true, // Sindhi
	"ug": true, // Uyghur
}

// DefaultLanguage returns the code of the first catalog entry.
func DefaultLanguage() string {
	return Languages[0].Value
}

// IsSupportedLanguage reports whether code is in the catalog.
func IsSupportedLanguage(code string) bool {
	_, ok := lookupLanguage(code)
	return ok
}

// LanguageLabel returns the display label for a language code.
// Falls back to "Select Language" if the code is not in the catalog.
func LanguageLabel(code string) string {
	if lang, ok := lookupLanguage(code); ok {
		return lang.Label
	}
	return "Select Language"
}

// SearchLanguages filters the catalog by a case-insensitive match on label or value.
// An empty term returns the whole catalog.
func SearchLanguages(term string) []Language {
	term = strings.ToLower(strings.TrimSpace(term))
	if term == "" {
		out := make([]Language, len(Languages))
		copy(out, Languages)
		return out
	}

	var out []Language
	for _, lang := range Languages {
		if strings.Contains(strings.ToLower(lang.Label), term) ||
			strings.Contains(strings.ToLower(lang.Value), term) {
			out = append(out, lang)
		}
	}
	return out
}

// GetDirection returns "rtl" for right-to-left languages, "ltr" otherwise.
func GetDirection(langCode string) string {
	// Extract base language code (e.g., "ar" from "ar_SA" or "ar-SA")
	base := strings.ToLower(NormalizeLocale(langCode))
	base = strings.Split(base, "_")[0]

	if RTLLanguages[base] {
		return "rtl"
	}
	return "ltr"
}

// IsRTL returns true if the language uses right-to-left text direction.
func IsRTL(langCode string) bool {
	return GetDirection(langCode) == "rtl"
}

// NormalizeLocale converts a language code to the underscore format (e.g., "es-ES" → "es_ES").
func NormalizeLocale(langCode string) string {
	return strings.ReplaceAll(langCode, "-", "_")
}

// ToHTMLLang converts a locale code to HTML lang attribute format (e.g., "es_ES" → "es-ES").
func ToHTMLLang(langCode string) string {
	return strings.ReplaceAll(langCode, "_", "-")
}

func lookupLanguage(code string) (Language, bool) {
	for _, lang := range Languages {
		if lang.Value == code {
			return lang, true
		}
	}
	return Language{}, false
}
