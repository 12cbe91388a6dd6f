package models

import "fmt"

// Comparator is a version comparison operator in a relationship
type Comparator int

const (
	Less Comparator = iota
	LessEqual
	Equal
	GreaterEqual
	Greater
)

// Comparators lists the operators in matching order: two-character forms
// come before their one-character prefixes.
var Comparators = []Comparator{GreaterEqual, Greater, Equal, LessEqual, Less}

// String returns the operator as written on the command line
func (c Comparator) String() string {
	switch c {
	case Less:
		return "<"
	case LessEqual:
		return "<="
	case Equal:
		return "="
	case GreaterEqual:
		return ">="
	case Greater:
		return ">"
	default:
		return "?"
	}
}

// Constraint is a version restriction. A nil *Constraint means any version.
type Constraint struct {
	Comparator Comparator
	Version    string
}

// Dependency is one requires/provides/conflicts/obsoletes relationship
type Dependency struct {
	Name       string
	Constraint *Constraint
}

// AnyVersion creates an unconstrained dependency
func AnyVersion(name string) Dependency {
	return Dependency{Name: name}
}

// Constrained creates a dependency with a version constraint
func Constrained(name string, c Comparator, version string) Dependency {
	return Dependency{Name: name, Constraint: &Constraint{Comparator: c, Version: version}}
}

// IsConstrained reports whether the dependency restricts the version
func (d Dependency) IsConstrained() bool {
	return d.Constraint != nil
}

// String renders the dependency in the command line form
func (d Dependency) String() string {
	if d.Constraint == nil {
		return d.Name
	}
	return fmt.Sprintf("%s %s %s", d.Name, d.Constraint.Comparator, d.Constraint.Version)
}
