package connpager

import (
	"fmt"
	"regexp"
)

// _associationReference matches "$associationName.associationField$".
var _associationReference = regexp.MustCompile(`^\$([^.]+)\.(.+)\$$`)

// Field is a resolved field reference. A plain reference has an empty
// Association. An association-qualified reference, written as
// "$association.field$", targets a column of a joined relation.
type Field struct {
	Association string
	Name        string
}

// ParseField resolves a field reference once. Anything that is not of the
// "$association.field$" form is treated as a plain field name.
func ParseField(ref string) Field {
	match := _associationReference.FindStringSubmatch(ref)
	if match == nil {
		return Field{Name: ref}
	}

	return Field{Association: match[1], Name: match[2]}
}

// IsAssociation returns true if the field belongs to a joined relation.
func (f Field) IsAssociation() bool {
	return f.Association != ""
}

// String returns the reference in the form accepted by ParseField.
func (f Field) String() string {
	if f.IsAssociation() {
		return fmt.Sprintf("$%s.%s$", f.Association, f.Name)
	}

	return f.Name
}

// column returns the dotted column expression used by raw SQL renderers.
//
// Example:
//
//	Field{Association: "author", Name: "name"}.column() == "author.name"
func (f Field) column() string {
	if f.IsAssociation() {
		return f.Association + "." + f.Name
	}

	return f.Name
}
