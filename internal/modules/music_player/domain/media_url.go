package domain

import (
	"errors"
	"net/url"
	"strings"
)

var (
	// ErrMissingURL is returned when no URL was given.
	ErrMissingURL = errors.New("a url is required")

	// ErrInvalidURL is returned when the input is not an absolute http(s) URL.
	ErrInvalidURL = errors.New("not an http(s) url")
)

// ParseMediaURL normalizes user input into an absolute http(s) URL that is
// safe to hand to the metadata resolver as a positional argument.
// A bare "www." prefix is accepted and given an https scheme.
func ParseMediaURL(input string) (string, error) {
	input = strings.TrimSpace(input)
	if input == "" {
		return "", ErrMissingURL
	}

	if strings.HasPrefix(input, "www.") {
		input = "https://" + input
	}

	u, err := url.Parse(input)
	if err != nil {
		return "", ErrInvalidURL
	}
	if u.Scheme != "http" && u.Scheme != "https" {
		return "", ErrInvalidURL
	}
	if u.Host == "" {
		return "", ErrInvalidURL
	}

	return input, nil
}
