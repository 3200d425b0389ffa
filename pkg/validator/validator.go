package validator

import (
	"errors"
	"fmt"
	"net/url"
	"regexp"
	"strings"
)

var (
	DomainPropertyValidator = regexp.MustCompile(`^sc-domain:[a-zA-Z0-9.-]+\.[a-zA-Z]{2,}$`)
	ErrInvalidInput         = errors.New("invalid input")
	ErrMissingField         = errors.New("missing required field")
)

const maxFilterLength = 1024

// ValidateSiteURL accepts a URL-prefix property (http or https with a host)
// or a domain property of the form "sc-domain:example.com".
func ValidateSiteURL(siteURL string) error {
	if siteURL == "" {
		return fmt.Errorf("%w: site_url", ErrMissingField)
	}
	if strings.HasPrefix(siteURL, "sc-domain:") {
		if !DomainPropertyValidator.MatchString(siteURL) {
			return fmt.Errorf("%w: site_url", ErrInvalidInput)
		}
		return nil
	}
	if !isAbsoluteHTTP(siteURL) {
		return fmt.Errorf("%w: site_url", ErrInvalidInput)
	}
	return nil
}

// ValidatePageURL requires an absolute http(s) URL, as Search Console
// reports pages that way.
func ValidatePageURL(pageURL string) error {
	if pageURL == "" {
		return fmt.Errorf("%w: page_url", ErrMissingField)
	}
	if !isAbsoluteHTTP(pageURL) {
		return fmt.Errorf("%w: page_url", ErrInvalidInput)
	}
	return nil
}

// ValidatePageFilter allows an empty filter.
func ValidatePageFilter(filter string) error {
	if len(filter) > maxFilterLength {
		return fmt.Errorf("%w: page_filter longer than %d", ErrInvalidInput, maxFilterLength)
	}
	return nil
}

func SanitizeString(s string) string {
	return strings.TrimSpace(s)
}

func isAbsoluteHTTP(raw string) bool {
	u, err := url.Parse(raw)
	if err != nil {
		return false
	}
	return (u.Scheme == "http" || u.Scheme == "https") && u.Host != ""
}
