package models

import "fmt"

// Cookie names that make up the extracted credential
const (
	CookieJSESSIONID = "JSESSIONID"
	CookieToken      = "token"
)

// Cookie represents a browser cookie
type Cookie struct {
	Name     string `json:"name"`
	Value    string `json:"value"`
	Domain   string `json:"domain,omitempty"`
	Path     string `json:"path,omitempty"`
	Secure   bool   `json:"secure,omitempty"`
	HTTPOnly bool   `json:"http_only,omitempty"`
}

// Credentials holds the session values captured after SSO login
type Credentials struct {
	JSESSIONID string `json:"jsessionid" yaml:"jsessionid"`
	Token      string `json:"token" yaml:"token"`
}

// SignavioID returns the value sent as the x-signavio-id header (always the token)
func (c Credentials) SignavioID() string {
	return c.Token
}

// Complete reports whether both session values are present
func (c Credentials) Complete() bool {
	return c.JSESSIONID != "" && c.Token != ""
}

// Empty reports whether no session value was captured
func (c Credentials) Empty() bool {
	return c.JSESSIONID == "" && c.Token == ""
}

// CookieHeader renders the Cookie header value expected by the API
func (c Credentials) CookieHeader() string {
	return fmt.Sprintf("JSESSIONID=%s; token=%s;", c.JSESSIONID, c.Token)
}
