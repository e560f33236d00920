// Package namespace implements slug validation and the slug__tool naming
// scheme used to disambiguate tools across providers in a Registry.
package namespace

import (
	"fmt"
	"regexp"
	"strings"
)

// Separator joins a provider slug and an original tool name into a
// namespaced tool name. It must never appear inside a valid slug, which is
// what makes Split unambiguous.
const Separator = "__"

// DescriptionPrefixFormat is applied to every namespaced tool's description.
const DescriptionPrefixFormat = "[via %s] "

var slugPattern = regexp.MustCompile(`^[A-Za-z0-9-]+$`)

// InvalidSlugError reports why a candidate slug was rejected.
type InvalidSlugError struct {
	Slug   string
	Reason string
}

func (e *InvalidSlugError) Error() string {
	return fmt.Sprintf("invalid slug %q: %s", e.Slug, e.Reason)
}

// MalformedNameError is returned by Split when a namespaced name does not
// contain the separator and therefore cannot be decomposed.
type MalformedNameError struct {
	Name string
}

func (e *MalformedNameError) Error() string {
	return fmt.Sprintf("malformed namespaced tool name %q: missing %q separator", e.Name, Separator)
}

// ValidateSlug reports whether s is a legal provider slug: non-empty,
// matching [A-Za-z0-9-]+, and never containing the __ separator sequence
// (which would make Split ambiguous).
func ValidateSlug(s string) error {
	if s == "" {
		return &InvalidSlugError{Slug: s, Reason: "slug must not be empty"}
	}
	if strings.Contains(s, Separator) {
		return &InvalidSlugError{Slug: s, Reason: fmt.Sprintf("slug must not contain %q", Separator)}
	}
	if !slugPattern.MatchString(s) {
		return &InvalidSlugError{Slug: s, Reason: "slug must match [A-Za-z0-9-]+"}
	}
	return nil
}

// Namespaced joins slug and tool with Separator, producing the name a
// Registry exposes to MCP clients. Callers should validate slug with
// ValidateSlug beforehand; Namespaced does not revalidate it.
func Namespaced(slug, tool string) string {
	return slug + Separator + tool
}

// Describe prefixes an original tool description with the provider slug,
// per the "[via slug] " convention.
func Describe(slug, description string) string {
	return fmt.Sprintf(DescriptionPrefixFormat, slug) + description
}

// Split decomposes a namespaced tool name into its slug and original tool
// name, splitting at the first occurrence of Separator. It fails with
// *MalformedNameError if name contains no separator.
func Split(name string) (slug, tool string, err error) {
	idx := strings.Index(name, Separator)
	if idx < 0 {
		return "", "", &MalformedNameError{Name: name}
	}
	return name[:idx], name[idx+len(Separator):], nil
}
