package operator

import (
	"context"
	_ "embed"
	"encoding/json"
	"errors"
	"fmt"

	"github.com/kode4food/airdraw/internal/python"
	"github.com/kode4food/airdraw/pkg/api"
)

type (
	// Live describes operators by importing their module in a Python
	// interpreter and inspecting the class signature, which accounts for
	// inherited constructors. Importing runs the module's top-level code
	Live struct {
		py *python.Interpreter
	}

	reflection struct {
		Doc    string           `json:"doc"`
		Params []reflectedParam `json:"params"`
	}

	reflectedParam struct {
		Default    *string `json:"default"`
		Name       string  `json:"name"`
		Type       string  `json:"type"`
		HasDefault bool    `json:"has_default"`
	}
)

// Exit statuses of the reflection script
const (
	exitImportFailed    = 10
	exitClassNotFound   = 11
	exitSignatureFailed = 12
)

var (
	ErrImportFailed  = errors.New("module import failed")
	ErrSignature     = errors.New("signature inspection failed")
	ErrReflectFailed = errors.New("reflection failed")
)

//go:embed reflect.py
var reflectScript string

var _ Describer = (*Live)(nil)

// NewLive creates a Live describer that runs the given interpreter
func NewLive(py *python.Interpreter) *Live {
	return &Live{py: py}
}

// Describe imports module and reports the constructor signature of class.
// It blocks until the interpreter exits or ctx is done
func (l *Live) Describe(
	ctx context.Context, module, class string,
) (*api.Signature, error) {
	if module == "" || class == "" {
		return nil, fmt.Errorf("%w: %s.%s", ErrClassNotFound, module, class)
	}

	out, err := l.py.Run(ctx, reflectScript, module, class)
	if err != nil {
		return nil, liveError(module, class, err)
	}

	var res reflection
	if err := json.Unmarshal(out, &res); err != nil {
		return nil, fmt.Errorf("%w: %w", ErrReflectFailed, err)
	}

	sig := newSignature(module, class, res.Doc)
	for _, p := range res.Params {
		param := &api.Parameter{Name: p.Name, Type: p.Type}
		if p.HasDefault {
			param.Default = p.Default
			sig.Optional = append(sig.Optional, param)
			continue
		}
		param.Required = true
		sig.Required = append(sig.Required, param)
	}
	return sig, nil
}

func liveError(module, class string, err error) error {
	var exit *python.ExitError
	if !errors.As(err, &exit) {
		return fmt.Errorf("%w: %w", ErrReflectFailed, err)
	}
	switch exit.Code {
	case exitImportFailed:
		return fmt.Errorf("%w: %s: %w", ErrImportFailed, module, err)
	case exitClassNotFound:
		return fmt.Errorf("%w: %s.%s: %w", ErrClassNotFound, module, class, err)
	case exitSignatureFailed:
		return fmt.Errorf("%w: %s.%s: %w", ErrSignature, module, class, err)
	default:
		return fmt.Errorf("%w: %w", ErrReflectFailed, err)
	}
}
