package operator

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"time"

	"github.com/kode4food/airdraw/internal/metrics"
	"github.com/kode4food/airdraw/pkg/api"
	"github.com/kode4food/airdraw/pkg/log"
)

type (
	// Describer describes the constructor parameters of class in module
	Describer interface {
		Describe(ctx context.Context, module, class string) (*api.Signature, error)
	}

	// Strategy names a way of describing operators
	Strategy string

	// Fallback tries each Describer in turn until one succeeds
	Fallback []Describer

	// Describers holds one Describer per Strategy
	Describers struct {
		byStrategy map[Strategy]Describer
		metrics    *metrics.Metrics
	}
)

const (
	StrategyStatic     Strategy = "static"
	StrategyLive       Strategy = "live"
	StrategyStaticLive Strategy = "static-live"
	StrategyLiveStatic Strategy = "live-static"

	DefaultStrategy = StrategyLive
)

var (
	ErrUnknownStrategy = errors.New("unknown describe strategy")
	ErrClassNotFound   = errors.New("class not found")
	ErrNoDescribers    = errors.New("no describers configured")
)

// Strategies lists every supported Strategy
var Strategies = []Strategy{
	StrategyStatic, StrategyLive, StrategyStaticLive, StrategyLiveStatic,
}

// ParseStrategy maps a strategy name onto a Strategy. An empty name selects
// DefaultStrategy
func ParseStrategy(name string) (Strategy, error) {
	if name == "" {
		return DefaultStrategy, nil
	}
	for _, s := range Strategies {
		if string(s) == name {
			return s, nil
		}
	}
	return "", fmt.Errorf("%w: %s", ErrUnknownStrategy, name)
}

// Describe asks each Describer in turn, returning the first success. When
// every one fails, the errors are joined
func (f Fallback) Describe(
	ctx context.Context, module, class string,
) (*api.Signature, error) {
	if len(f) == 0 {
		return nil, ErrNoDescribers
	}
	var errs []error
	for _, d := range f {
		sig, err := d.Describe(ctx, module, class)
		if err == nil {
			return sig, nil
		}
		if ctx.Err() != nil {
			return nil, err
		}
		errs = append(errs, err)
	}
	return nil, errors.Join(errs...)
}

// NewDescribers wires the static and live describers into every Strategy
func NewDescribers(
	static *Static, live *Live, m *metrics.Metrics,
) *Describers {
	return &Describers{
		byStrategy: map[Strategy]Describer{
			StrategyStatic:     static,
			StrategyLive:       live,
			StrategyStaticLive: Fallback{static, live},
			StrategyLiveStatic: Fallback{live, static},
		},
		metrics: m,
	}
}

// Get returns the Describer for a Strategy
func (d *Describers) Get(s Strategy) (Describer, error) {
	if res, ok := d.byStrategy[s]; ok {
		return res, nil
	}
	return nil, fmt.Errorf("%w: %s", ErrUnknownStrategy, s)
}

// Describe resolves the signature of class in module with the given
// Strategy. Failures are logged and produce an empty Signature, so callers
// only need to test Signature.IsEmpty
func (d *Describers) Describe(
	ctx context.Context, s Strategy, module, class string,
) *api.Signature {
	empty := newSignature(module, class, "")

	desc, err := d.Get(s)
	if err != nil {
		slog.Warn("Unknown describe strategy",
			log.Strategy(s),
			log.Error(err))
		return empty
	}

	start := time.Now()
	sig, err := desc.Describe(ctx, module, class)
	d.metrics.RecordDescribe(string(s), time.Since(start), err)
	if err != nil {
		slog.Error("Operator not found",
			log.Module(module),
			log.Operator(class),
			log.Strategy(s),
			log.Error(err))
		return empty
	}
	return sig
}

func newSignature(module, class, doc string) *api.Signature {
	return &api.Signature{
		ClassName: class,
		Module:    module,
		Doc:       doc,
		Required:  api.ParameterSet{},
		Optional:  api.ParameterSet{},
	}
}
