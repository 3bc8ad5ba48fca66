// Package narrative turns an analytics summary into prose by calling an
// OpenAI-compatible chat-completions endpoint.
package narrative

import "errors"

var (
	// ErrNotConfigured indicates no language-model endpoint or key is set
	ErrNotConfigured = errors.New("narrative generator not configured")

	// ErrUpstream indicates the language-model call failed or returned garbage
	ErrUpstream = errors.New("narrative generator request failed")
)
