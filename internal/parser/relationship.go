package parser

import (
	"fmt"
	"strings"

	"github.com/ralt/rpm-builder/internal/models"
)

const whitespace = " \t\r\n\f\v"

// isIdentifierChar reports whether c may appear in a package name
func isIdentifierChar(c byte) bool {
	return (c >= 'a' && c <= 'z') ||
		(c >= 'A' && c <= 'Z') ||
		(c >= '0' && c <= '9') ||
		c == '-' || c == '.' || c == '_'
}

// ParseRelationship parses a relationship of the form
// <name>[ <comparator> <version>] where comparator is one of >=, >, =, <=, <.
// A bare name yields a dependency on any version.
func ParseRelationship(raw string) (models.Dependency, error) {
	malformed := func(reason string) (models.Dependency, error) {
		return models.Dependency{}, models.NewError(models.ErrMalformedRelationship, raw,
			fmt.Errorf("%s, expected '<name> [>|>=|=|<=|< version]'", reason))
	}

	i := 0
	for i < len(raw) && isIdentifierChar(raw[i]) {
		i++
	}
	if i == 0 {
		return malformed("missing package name")
	}
	name := raw[:i]

	rest := raw[i:]
	if rest == "" {
		return models.AnyVersion(name), nil
	}

	rest = strings.TrimLeft(rest, whitespace)
	op, ok := matchComparator(rest)
	if !ok {
		return malformed("invalid character after package name")
	}

	version := strings.TrimLeft(rest[len(op.String()):], whitespace)
	if version == "" {
		return malformed(fmt.Sprintf("missing version after %q", op))
	}

	return models.Constrained(name, op, version), nil
}

// matchComparator returns the comparator that prefixes s. Two character
// operators are tried first so ">=" is never read as ">".
func matchComparator(s string) (models.Comparator, bool) {
	for _, c := range models.Comparators {
		if strings.HasPrefix(s, c.String()) {
			return c, true
		}
	}
	return 0, false
}

// ValidateName checks that name is a non-empty package identifier
func ValidateName(name string) error {
	if name == "" {
		return fmt.Errorf("package name must not be empty")
	}
	for i := 0; i < len(name); i++ {
		if !isIdentifierChar(name[i]) {
			return fmt.Errorf("invalid character %q in package name, allowed are letters, digits, '-', '.' and '_'", name[i])
		}
	}
	return nil
}
