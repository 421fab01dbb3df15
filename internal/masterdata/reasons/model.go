package reasons

import "strings"

// Type tags the direction a reason applies to. The zero value means untagged.
type Type string

const (
	TypeIn   Type = "In"
	TypeOut  Type = "Out"
	TypeBoth Type = "Both"
)

// Reason classifies why stock moved. Movements keep the id even after the
// reason is deleted.
type Reason struct {
	ID          string `db:"id"`
	Name        string `db:"name"`
	Description string `db:"description"`
	Type        Type   `db:"type"`
}

// AppliesTo reports whether the reason is offered for dir.
func (r Reason) AppliesTo(dir Type) bool {
	return r.Type == "" || r.Type == TypeBoth || r.Type == dir
}

// Input carries the editable fields of a reason.
type Input struct {
	Name        string
	Description string
	Type        string
}

func (in Input) trimmed() Input {
	return Input{
		Name:        strings.TrimSpace(in.Name),
		Description: strings.TrimSpace(in.Description),
		Type:        strings.TrimSpace(in.Type),
	}
}

// ParseType accepts In, Out, Both or empty, ignoring case.
func ParseType(raw string) (Type, bool) {
	switch {
	case raw == "":
		return "", true
	case strings.EqualFold(raw, string(TypeIn)):
		return TypeIn, true
	case strings.EqualFold(raw, string(TypeOut)):
		return TypeOut, true
	case strings.EqualFold(raw, string(TypeBoth)):
		return TypeBoth, true
	}
	return "", false
}
