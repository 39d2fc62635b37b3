// Package redirect decides which redirect targets a login or logout may send
// a browser to.
package redirect

import (
	"net/url"
	"strings"

	"github.com/Abraxas-365/authcore/pkg/errx"
)

var ErrRegistry = errx.NewRegistry("REDIRECT")

var CodeInvalidTarget = ErrRegistry.Register("INVALID_TARGET", errx.TypeValidation, 0, "invalid redirect target")

// Validator accepts relative paths, the site origin, allow-listed origins
// and, in dev mode, localhost.
type Validator struct {
	siteOrigin string
	allowed    map[string]struct{}
	devMode    bool
}

func NewValidator(siteURL string, allowList []string, devMode bool) *Validator {
	v := &Validator{
		allowed: make(map[string]struct{}, len(allowList)),
		devMode: devMode,
	}
	if u, err := url.Parse(siteURL); err == nil && u.Host != "" {
		v.siteOrigin = origin(u)
	}
	for _, entry := range allowList {
		if u, err := url.Parse(strings.TrimSpace(entry)); err == nil && u.Host != "" {
			v.allowed[origin(u)] = struct{}{}
		}
	}
	return v
}

// Validate checks candidates in order. Every non-empty candidate must pass;
// the first one is returned. With no candidate the result is nil, nil.
func (v *Validator) Validate(candidates ...*string) (*string, error) {
	var first *string
	for _, c := range candidates {
		if c == nil || *c == "" {
			continue
		}
		if !v.Allowed(*c) {
			return nil, ErrRegistry.New(CodeInvalidTarget).WithDetail("redirect_to", *c)
		}
		if first == nil {
			first = c
		}
	}
	return first, nil
}

// Allowed reports whether target is a permitted redirect.
func (v *Validator) Allowed(target string) bool {
	if strings.ContainsAny(target, "\\\r\n\t") {
		return false
	}

	if strings.HasPrefix(target, "/") {
		if strings.HasPrefix(target, "//") {
			return false
		}
		u, err := url.Parse(target)
		return err == nil && u.Scheme == "" && u.Host == ""
	}

	u, err := url.Parse(target)
	if err != nil || u.Host == "" || u.User != nil {
		return false
	}
	if u.Scheme != "http" && u.Scheme != "https" {
		return false
	}

	o := origin(u)
	if v.siteOrigin != "" && o == v.siteOrigin {
		return true
	}
	if _, ok := v.allowed[o]; ok {
		return true
	}
	return v.devMode && isLocalhost(u.Hostname())
}

// origin renders scheme://host[:port] with the scheme's default port dropped.
func origin(u *url.URL) string {
	scheme := strings.ToLower(u.Scheme)
	host := strings.ToLower(u.Hostname())
	if strings.Contains(host, ":") {
		host = "[" + host + "]"
	}
	switch port := u.Port(); {
	case port == "", scheme == "https" && port == "443", scheme == "http" && port == "80":
		return scheme + "://" + host
	default:
		return scheme + "://" + host + ":" + port
	}
}

func isLocalhost(host string) bool {
	switch strings.ToLower(host) {
	case "localhost", "127.0.0.1", "::1":
		return true
	}
	return false
}
