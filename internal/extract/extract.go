// Package extract turns raw cookies into session credentials.
package extract

import (
	"strings"

	"github.com/mazurov/brow-cli/internal/models"
)

// FromCookies picks the JSESSIONID and token cookies out of a cookie list.
// Names are matched case-sensitively; a repeated name keeps the last value.
func FromCookies(cookies []models.Cookie) models.Credentials {
	var creds models.Credentials
	for _, c := range cookies {
		switch c.Name {
		case models.CookieJSESSIONID:
			creds.JSESSIONID = c.Value
		case models.CookieToken:
			creds.Token = c.Value
		}
	}
	return creds
}

// ParseCookies parses a Cookie header such as "name1=value1; name2=value2".
// Only the first '=' of each pair separates name from value.
func ParseCookies(header string) []models.Cookie {
	cookies := []models.Cookie{}
	if header == "" {
		return cookies
	}

	for _, part := range strings.Split(header, ";") {
		part = strings.TrimSpace(part)
		name, value, ok := strings.Cut(part, "=")
		if !ok {
			continue
		}
		cookies = append(cookies, models.Cookie{
			Name:  strings.TrimSpace(name),
			Value: strings.TrimSpace(value),
		})
	}

	return cookies
}

// HasAll reports whether every named cookie is present in the list
func HasAll(cookies []models.Cookie, names ...string) bool {
	seen := make(map[string]bool, len(cookies))
	for _, c := range cookies {
		seen[c.Name] = true
	}
	for _, name := range names {
		if !seen[name] {
			return false
		}
	}
	return true
}
