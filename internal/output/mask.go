package output

import (
	"strings"

	"github.com/mazurov/brow-cli/internal/models"
)

const (
	// DefaultMaskChar replaces hidden characters
	DefaultMaskChar = '*'
	// DefaultShowChars is the number of characters left visible at each end
	DefaultShowChars = 4
)

// Mask hides the middle of a value, keeping showChars visible at each end.
// Values too short to keep anything hidden are masked entirely.
func Mask(value string, maskChar rune, showChars int) string {
	runes := []rune(value)
	if len(runes) <= showChars*2 {
		return strings.Repeat(string(maskChar), len(runes))
	}

	middle := len(runes) - showChars*2
	return string(runes[:showChars]) + strings.Repeat(string(maskChar), middle) + string(runes[len(runes)-showChars:])
}

// MaskCredentials returns a copy of creds with every value masked
func MaskCredentials(creds models.Credentials) models.Credentials {
	return models.Credentials{
		JSESSIONID: Mask(creds.JSESSIONID, DefaultMaskChar, DefaultShowChars),
		Token:      Mask(creds.Token, DefaultMaskChar, DefaultShowChars),
	}
}
