package schema

import "strings"

// Shape is the basic structural type of an output field.
type Shape int

const (
	Scalar Shape = iota
	ListOfScalar
	Record
	ListOfRecord
)

func (s Shape) String() string {
	switch s {
	case Scalar:
		return "scalar"
	case ListOfScalar:
		return "list_of_scalar"
	case Record:
		return "record"
	case ListOfRecord:
		return "list_of_record"
	default:
		return "unknown"
	}
}

// IsList reports whether an absent field of this shape defaults to [].
func (s Shape) IsList() bool {
	return s == ListOfScalar || s == ListOfRecord
}

// FieldShape describes one output field. Fields lists the sub-field names
// of Record and ListOfRecord shapes.
type FieldShape struct {
	Shape  Shape
	Fields []string
}

// Field is a named output field with the description shown to the model.
type Field struct {
	Name        string
	Description string
	FieldShape
}

// Group is a required input satisfied by any one of its alternatives.
type Group []string

func (g Group) String() string {
	return strings.Join(g, "|")
}

func scalar(name, desc string) Field {
	return Field{Name: name, Description: desc, FieldShape: FieldShape{Shape: Scalar}}
}

func scalars(name, desc string) Field {
	return Field{Name: name, Description: desc, FieldShape: FieldShape{Shape: ListOfScalar}}
}

func record(name, desc string, fields ...string) Field {
	return Field{Name: name, Description: desc, FieldShape: FieldShape{Shape: Record, Fields: fields}}
}

func records(name, desc string, fields ...string) Field {
	return Field{Name: name, Description: desc, FieldShape: FieldShape{Shape: ListOfRecord, Fields: fields}}
}

func one(name string) Group { return Group{name} }

func anyOf(names ...string) Group { return Group(names) }
