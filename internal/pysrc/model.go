package pysrc

import (
	"strings"

	"github.com/kode4food/airdraw/pkg/api"
)

type (
	// File is the class model of one parsed source file
	File struct {
		Classes []*Class
	}

	// Class is a class definition. Init is nil when the class body does not
	// define __init__
	Class struct {
		Init *Function
		Name string
		Doc  string
		Line int
	}

	// Function is a function definition with its formal parameters, the
	// receiver and variadic collectors excluded
	Function struct {
		Name   string
		Params []*Param
	}

	// Param is one formal parameter. Type and Default hold source text;
	// Type is empty when unannotated and Default is nil when absent
	Param struct {
		Default *string
		Name    string
		Type    string
		Kind    ParamKind
	}

	// ParamKind identifies how a parameter may be passed
	ParamKind int
)

const (
	PositionalOrKeyword ParamKind = iota
	PositionalOnly
	KeywordOnly
)

const (
	// OperatorMarker must appear in a class name for it to be an operator
	OperatorMarker = "Operator"

	// AbstractPrefix marks abstract operator bases, which are never listed
	AbstractPrefix = "Base"
)

// IsOperatorName reports whether a class name denotes a concrete operator
func IsOperatorName(name string) bool {
	return strings.Contains(name, OperatorMarker) &&
		!strings.HasPrefix(name, AbstractPrefix)
}

// OperatorClasses returns the names of operator classes in source order
func (f *File) OperatorClasses() []string {
	res := []string{}
	for _, c := range f.Classes {
		if IsOperatorName(c.Name) {
			res = append(res, c.Name)
		}
	}
	return res
}

// Class returns the first class definition with the given name
func (f *File) Class(name string) (*Class, bool) {
	for _, c := range f.Classes {
		if c.Name == name {
			return c, true
		}
	}
	return nil, false
}

// Parameters splits the initializer parameters into the required group (no
// default) and the optional group (has default), in declaration order.
// Both groups are empty when the class defines no initializer
func (c *Class) Parameters() (required, optional api.ParameterSet) {
	required = api.ParameterSet{}
	optional = api.ParameterSet{}
	if c == nil || c.Init == nil {
		return required, optional
	}

	for _, p := range c.Init.Params {
		typ := p.Type
		if typ == "" {
			typ = api.AnyType
		}
		if p.Default == nil {
			required = append(required, &api.Parameter{
				Name:     p.Name,
				Type:     typ,
				Required: true,
			})
			continue
		}
		def := *p.Default
		optional = append(optional, &api.Parameter{
			Name:    p.Name,
			Type:    typ,
			Default: &def,
		})
	}
	return required, optional
}
