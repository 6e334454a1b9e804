package output

import (
	"encoding/json"
	"fmt"
	"strings"

	"github.com/mazurov/brow-cli/internal/models"
)

// Output formats
const (
	FormatPlain = "plain"
	FormatJSON  = "json"
)

// NoTokensMessage is printed in plain mode when nothing was captured
const NoTokensMessage = "No tokens extracted"

// TokensJSON is the JSON shape of extracted tokens; absent values are null
type TokensJSON struct {
	JSESSIONID  *string `json:"jsessionid"`
	Token       *string `json:"token"`
	XSignavioID *string `json:"x-signavio-id"`
}

// Format renders credentials as plain text or JSON
func Format(creds models.Credentials, format string) (string, error) {
	switch strings.ToLower(format) {
	case FormatJSON:
		return formatJSON(creds)
	case FormatPlain, "":
		return formatPlain(creds), nil
	default:
		return "", fmt.Errorf("unsupported output format %q", format)
	}
}

func formatJSON(creds models.Credentials) (string, error) {
	data, err := json.MarshalIndent(TokensJSON{
		JSESSIONID:  optional(creds.JSESSIONID),
		Token:       optional(creds.Token),
		XSignavioID: optional(creds.SignavioID()),
	}, "", "  ")
	if err != nil {
		return "", fmt.Errorf("failed to marshal tokens: %w", err)
	}
	return string(data), nil
}

func formatPlain(creds models.Credentials) string {
	var lines []string
	if creds.JSESSIONID != "" {
		lines = append(lines, "JSESSIONID: "+creds.JSESSIONID)
	}
	if creds.Token != "" {
		lines = append(lines, "TOKEN: "+creds.Token)
		lines = append(lines, "X-SIGNAVIO-ID: "+creds.SignavioID())
	}

	if creds.Complete() {
		lines = append(lines, "", ExportStatement(creds))
	}

	if len(lines) == 0 {
		return NoTokensMessage
	}
	return strings.Join(lines, "\n")
}

// ExportStatement renders a shell line exporting the credentials
func ExportStatement(creds models.Credentials) string {
	return fmt.Sprintf("export SIGNAVIO_COOKIE=\"%s\" X_SIGNAVIO_ID=%s", creds.CookieHeader(), creds.SignavioID())
}

func optional(v string) *string {
	if v == "" {
		return nil
	}
	return &v
}
