// Package htmlsanitize strips markup from user-supplied text fields.
//
// Bucket titles are entered by one user and rendered to every collaborator,
// so they are treated as plain text: all HTML is removed before storage.
package htmlsanitize

import "github.com/microcosm-cc/bluemonday"

var strict = bluemonday.StrictPolicy()

// Strip removes all HTML from s, returning plain text.
func Strip(s string) string {
	return strict.Sanitize(s)
}
