package config

import (
	"log"
	"net/url"
)

func MustNonEmpty(value, envName string) {
	if value == "" {
		log.Fatalf("missing required env %s", envName)
	}
}

func MustNonEmptyBytes(value []byte, envName string) {
	if len(value) == 0 {
		log.Fatalf("missing required env %s", envName)
	}
}

// MustURL fails unless value is an absolute http(s) URL.
func MustURL(value, envName string) {
	MustNonEmpty(value, envName)
	if !IsHTTPURL(value) {
		log.Fatalf("env %s must be an absolute http(s) url, got %q", envName, value)
	}
}

func IsHTTPURL(value string) bool {
	u, err := url.Parse(value)
	if err != nil {
		return false
	}
	return (u.Scheme == "http" || u.Scheme == "https") && u.Host != ""
}
