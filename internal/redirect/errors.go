package redirect

import "fmt"

// InvalidRedirect is implemented by all redirect validation errors so callers
// can match the whole family with errors.As.
type InvalidRedirect interface {
	error
	invalidRedirect()
}

// SelfRedirectError reports a source URL equal to its own target's URL.
type SelfRedirectError struct {
	Source string
	Target string // target page URL path
}

func (e *SelfRedirectError) Error() string {
	return fmt.Sprintf("%q => %q: redirect to self", e.Source, e.Target)
}

func (e *SelfRedirectError) invalidRedirect() {}

// ShadowError reports a redirect source that matches the URL of an existing
// page or attachment.
type ShadowError struct {
	Source   string
	Target   string // target page URL path
	Existing string // relative path of the shadowed content file
}

func (e *ShadowError) Error() string {
	return fmt.Sprintf("%q => %q: redirect url conflicts with existing content %q", e.Source, e.Target, e.Existing)
}

func (e *ShadowError) invalidRedirect() {}

// ConflictError reports two pages declaring the same redirect source.
type ConflictError struct {
	Source   string
	Target   string // target page URL path
	Conflict string // the other claimant's URL path
}

func (e *ConflictError) Error() string {
	return fmt.Sprintf("%q => %q: conflicts with redirect %q => %q", e.Source, e.Target, e.Source, e.Conflict)
}

func (e *ConflictError) invalidRedirect() {}
