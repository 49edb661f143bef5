// Package langmeta provides a small language metadata registry (English
// and native names) used to build translation prompts and CLI output.
package langmeta

import "strings"

// Meta describes language display metadata.
type Meta struct {
	Name   string
	Native string
}

// Registry contains canonical language metadata.
// Locale variants are resolved in Resolve() via normalization and base fallback.
var Registry = map[string]Meta{
	"ar":      {Name: "Arabic", Native: "العربية"},
	"de":      {Name: "German", Native: "Deutsch"},
	"en":      {Name: "English", Native: "English"},
	"en-GB":   {Name: "English (UK)", Native: "English (UK)"},
	"en-US":   {Name: "English (US)", Native: "English (US)"},
	"es":      {Name: "Spanish", Native: "Español"},
	"fr":      {Name: "French", Native: "Français"},
	"hi":      {Name: "Hindi", Native: "हिन्दी"},
	"id":      {Name: "Indonesian", Native: "Bahasa Indonesia"},
	"it":      {Name: "Italian", Native: "Italiano"},
	"ja":      {Name: "Japanese", Native: "日本語"},
	"ko":      {Name: "Korean", Native: "한국어"},
	"nl":      {Name: "Dutch", Native: "Nederlands"},
	"pl":      {Name: "Polish", Native: "Polski"},
	"pt":      {Name: "Portuguese", Native: "Português"},
	"pt-BR":   {Name: "Portuguese (Brazil)", Native: "Português (Brasil)"},
	"ru":      {Name: "Russian", Native: "Русский"},
	"th":      {Name: "Thai", Native: "ไทย"},
	"tr":      {Name: "Turkish", Native: "Türkçe"},
	"uk":      {Name: "Ukrainian", Native: "Українська"},
	"vi":      {Name: "Vietnamese", Native: "Tiếng Việt"},
	"zh-CN":   {Name: "Chinese (Simplified)", Native: "简体中文"},
	"zh-Hans": {Name: "Chinese (Simplified)", Native: "简体中文"},
	"zh-Hant": {Name: "Chinese (Traditional)", Native: "繁體中文"},
	"zh-TW":   {Name: "Chinese (Traditional)", Native: "繁體中文"},
}

// Normalize converts ko_KR / ko-kr / KO to the registry form (ko-KR, ko).
func Normalize(code string) string {
	code = strings.TrimSpace(strings.ReplaceAll(code, "_", "-"))
	if code == "" {
		return ""
	}
	parts := strings.Split(code, "-")
	parts[0] = strings.ToLower(parts[0])
	for i := 1; i < len(parts); i++ {
		switch len(parts[i]) {
		case 2:
			parts[i] = strings.ToUpper(parts[i])
		case 4:
			parts[i] = strings.ToUpper(parts[i][:1]) + strings.ToLower(parts[i][1:])
		}
	}
	return strings.Join(parts, "-")
}

// Resolve returns metadata for code, falling back to the base language.
func Resolve(code string) (Meta, bool) {
	norm := Normalize(code)
	if m, ok := Registry[norm]; ok {
		return m, true
	}
	if i := strings.IndexByte(norm, '-'); i > 0 {
		if m, ok := Registry[norm[:i]]; ok {
			return m, true
		}
	}
	return Meta{}, false
}

// Name returns the English language name, or the code itself if unknown.
func Name(code string) string {
	if m, ok := Resolve(code); ok {
		return m.Name
	}
	return code
}

// Base returns the primary language subtag ("ko" for "ko-KR").
func Base(code string) string {
	norm := Normalize(code)
	if i := strings.IndexByte(norm, '-'); i > 0 {
		return norm[:i]
	}
	return norm
}
