package util

import (
	"html"
	"path/filepath"
	"strings"
	"unicode"

	"github.com/microcosm-cc/bluemonday"
)

var strictPolicy = bluemonday.StrictPolicy()

// SanitizeText remove qualquer marcação HTML de texto livre vindo do usuário.
func SanitizeText(raw string) string {
	cleaned := strictPolicy.Sanitize(raw)
	// StrictPolicy escapa entidades; o texto é guardado cru e escapado na saída.
	return strings.TrimSpace(html.UnescapeString(cleaned))
}

// SanitizeFileName reduz o nome do arquivo a letras, dígitos, ponto, hífen e sublinhado.
func SanitizeFileName(name string) string {
	name = filepath.Base(strings.ReplaceAll(name, "\\", "/"))
	var b strings.Builder
	for _, r := range name {
		switch {
		case r < unicode.MaxASCII && (unicode.IsLetter(r) || unicode.IsDigit(r)):
			b.WriteRune(r)
		case r == '.' || r == '-' || r == '_':
			b.WriteRune(r)
		default:
			b.WriteRune('_')
		}
	}
	out := strings.Trim(b.String(), "._")
	if out == "" {
		return "arquivo"
	}
	if len(out) > 120 {
		out = out[len(out)-120:]
	}
	return out
}
