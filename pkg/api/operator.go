package api

import (
	"bytes"
	"encoding/json"
	"errors"
	"fmt"
)

type (
	// Catalog maps a module identifier to the operator class names found in
	// it, in file order
	Catalog map[string][]string

	// DiscoveryError describes why a module could not be scanned or yielded
	// no operators
	DiscoveryError struct {
		Module string `json:"module"`
		Error  string `json:"error"`
	}

	// Parameter describes one constructor parameter of an operator
	Parameter struct {
		Default  *string `json:"default,omitempty"`
		Name     string  `json:"name"`
		Type     string  `json:"type"`
		Required bool    `json:"required"`
	}

	// ParameterSet is an ordered group of parameters. It is encoded as a
	// JSON object keyed by parameter name, in declaration order
	ParameterSet []*Parameter

	// Signature describes the constructor of an operator class
	Signature struct {
		ClassName string       `json:"class_name"`
		Module    string       `json:"module_path"`
		Doc       string       `json:"doc,omitempty"`
		Required  ParameterSet `json:"params_without_defaults"`
		Optional  ParameterSet `json:"params_with_defaults"`
	}

	requiredEntry struct {
		Type     string `json:"type"`
		Required bool   `json:"required"`
	}

	optionalEntry struct {
		Default  *string `json:"default"`
		Type     string  `json:"type"`
		Required bool    `json:"required"`
	}
)

// AnyType is the type recorded for parameters without an annotation
const AnyType = "Any"

var ErrParameterSetObject = errors.New("parameter set must be a JSON object")

// OperatorCount returns the number of operator classes across all modules
func (c Catalog) OperatorCount() int {
	res := 0
	for _, ops := range c {
		res += len(ops)
	}
	return res
}

// Get returns the named parameter, if present
func (s ParameterSet) Get(name string) (*Parameter, bool) {
	for _, p := range s {
		if p.Name == name {
			return p, true
		}
	}
	return nil, false
}

// Names returns the parameter names in declaration order
func (s ParameterSet) Names() []string {
	res := make([]string, len(s))
	for i, p := range s {
		res[i] = p.Name
	}
	return res
}

// MarshalJSON encodes the set as an object preserving declaration order
func (s ParameterSet) MarshalJSON() ([]byte, error) {
	var buf bytes.Buffer
	buf.WriteByte('{')
	for i, p := range s {
		if i > 0 {
			buf.WriteByte(',')
		}
		key, err := json.Marshal(p.Name)
		if err != nil {
			return nil, err
		}
		val, err := json.Marshal(p.entry())
		if err != nil {
			return nil, err
		}
		buf.Write(key)
		buf.WriteByte(':')
		buf.Write(val)
	}
	buf.WriteByte('}')
	return buf.Bytes(), nil
}

// UnmarshalJSON decodes an object produced by MarshalJSON, keeping the
// order in which the keys appear
func (s *ParameterSet) UnmarshalJSON(data []byte) error {
	dec := json.NewDecoder(bytes.NewReader(data))
	tok, err := dec.Token()
	if err != nil {
		return err
	}
	if tok == nil {
		*s = nil
		return nil
	}
	if d, ok := tok.(json.Delim); !ok || d != '{' {
		return ErrParameterSetObject
	}

	res := ParameterSet{}
	for dec.More() {
		tok, err := dec.Token()
		if err != nil {
			return err
		}
		name, ok := tok.(string)
		if !ok {
			return fmt.Errorf("%w: unexpected key %v", ErrParameterSetObject, tok)
		}
		var e optionalEntry
		if err := dec.Decode(&e); err != nil {
			return err
		}
		res = append(res, &Parameter{
			Name:     name,
			Type:     e.Type,
			Required: e.Required,
			Default:  e.Default,
		})
	}
	if _, err := dec.Token(); err != nil {
		return err
	}
	*s = res
	return nil
}

// IsEmpty returns true when neither parameter group has entries
func (s *Signature) IsEmpty() bool {
	return len(s.Required) == 0 && len(s.Optional) == 0
}

func (p *Parameter) entry() any {
	if p.Required {
		return requiredEntry{Type: p.Type, Required: true}
	}
	return optionalEntry{Type: p.Type, Default: p.Default}
}
