package language

import (
	"fmt"
	"strings"

	"golang.org/x/text/language"
	"golang.org/x/text/language/display"
)

// Recognizable lists the ISO 639-1 codes the speech model can be told to
// expect. Names of these languages are accepted wherever a code is.
var Recognizable = []string{
	"af", "am", "ar", "as", "az", "ba", "be", "bg", "bn", "bo", "br", "bs",
	"ca", "cs", "cy", "da", "de", "el", "en", "es", "et", "eu", "fa", "fi",
	"fo", "fr", "gl", "gu", "ha", "he", "hi", "hr", "ht", "hu", "hy", "id",
	"is", "it", "ja", "jv", "ka", "kk", "km", "kn", "ko", "la", "lb", "ln",
	"lo", "lt", "lv", "mg", "mi", "mk", "ml", "mn", "mr", "ms", "mt", "my",
	"ne", "nl", "nn", "no", "oc", "pa", "pl", "ps", "pt", "ro", "ru", "sa",
	"sd", "si", "sk", "sl", "sn", "so", "sq", "sr", "su", "sv", "sw", "ta",
	"te", "tg", "th", "tk", "tl", "tr", "tt", "uk", "ur", "uz", "vi", "yi",
	"yo", "zh",
}

var byName map[string]language.Tag

func init() {
	names := display.English.Languages()
	byName = make(map[string]language.Tag, len(Recognizable))
	for _, code := range Recognizable {
		tag := language.MustParse(code)
		if name := names.Name(tag); name != "" {
			byName[strings.ToLower(name)] = tag
		}
	}
}

// Parse resolves a BCP 47 tag, an ISO 639-2 code, or an English language
// name ("german") to a tag.
func Parse(value string) (language.Tag, error) {
	cleaned := strings.TrimSpace(value)
	if cleaned == "" {
		return language.Und, fmt.Errorf("language: empty value")
	}
	if tag, ok := byName[strings.ToLower(cleaned)]; ok {
		return tag, nil
	}
	tag, err := language.Parse(strings.ReplaceAll(cleaned, "_", "-"))
	if err != nil {
		return language.Und, fmt.Errorf("language: unknown %q", value)
	}
	if tag == language.Und {
		return language.Und, fmt.Errorf("language: unknown %q", value)
	}
	return tag, nil
}

// ToISO2 converts any recognized code or name to ISO 639-1. It returns an
// empty string when the input has no two-letter form.
func ToISO2(code string) string {
	tag, err := Parse(code)
	if err != nil {
		return ""
	}
	base, _ := tag.Base()
	if s := base.String(); len(s) == 2 {
		return s
	}
	return ""
}

// ToISO3 converts any recognized code or name to ISO 639-2, or "und".
func ToISO3(code string) string {
	tag, err := Parse(code)
	if err != nil {
		return "und"
	}
	base, _ := tag.Base()
	return base.ISO3()
}

// DisplayName returns the English name of a language code. Empty input
// yields "Unknown" and unrecognized input the uppercased value.
func DisplayName(code string) string {
	if strings.TrimSpace(code) == "" {
		return "Unknown"
	}
	tag, err := Parse(code)
	if err != nil {
		return strings.ToUpper(strings.TrimSpace(code))
	}
	if name := display.English.Tags().Name(tag); name != "" {
		return name
	}
	return strings.ToUpper(strings.TrimSpace(code))
}

// IsRecognizable reports whether the speech model accepts code as a
// source-language hint.
func IsRecognizable(code string) bool {
	iso2 := ToISO2(code)
	for _, known := range Recognizable {
		if known == iso2 {
			return true
		}
	}
	return false
}

// NormalizeList deduplicates and normalizes a list of language codes to ISO 639-1.
func NormalizeList(languages []string) []string {
	if len(languages) == 0 {
		return nil
	}
	normalized := make([]string, 0, len(languages))
	seen := make(map[string]struct{}, len(languages))
	for _, lang := range languages {
		trimmed := strings.ToLower(strings.TrimSpace(lang))
		if trimmed == "" {
			continue
		}
		if mapped := ToISO2(trimmed); mapped != "" {
			trimmed = mapped
		}
		if _, ok := seen[trimmed]; ok {
			continue
		}
		seen[trimmed] = struct{}{}
		normalized = append(normalized, trimmed)
	}
	return normalized
}
