package operator

import (
	"context"
	"fmt"
	"os"
	"time"

	"github.com/kode4food/airdraw/internal/pysrc"
	"github.com/kode4food/airdraw/internal/util"
	"github.com/kode4food/airdraw/pkg/api"
)

type (
	// ModuleFinder maps a dotted module name to its source file
	ModuleFinder interface {
		FindModule(name string) (string, error)
	}

	// Static describes operators by parsing their source files. Parsed
	// files are memoized until the file changes on disk
	Static struct {
		finder ModuleFinder
		files  *util.LRUCache[fileKey, *pysrc.File]
	}

	fileKey struct {
		modTime time.Time
		path    string
		size    int64
	}
)

var _ Describer = (*Static)(nil)

// NewStatic creates a Static describer that memoizes up to cacheSize parsed
// files
func NewStatic(finder ModuleFinder, cacheSize int) *Static {
	return &Static{
		finder: finder,
		files:  util.NewLRUCache[fileKey, *pysrc.File](cacheSize),
	}
}

// Describe parses the module's source and reads the initializer of class.
// Only parameters declared directly on the class are reported; inherited
// ones are not resolved
func (s *Static) Describe(
	ctx context.Context, module, class string,
) (*api.Signature, error) {
	path, err := s.finder.FindModule(module)
	if err != nil {
		return nil, err
	}

	f, err := s.parse(ctx, path)
	if err != nil {
		return nil, err
	}

	c, ok := f.Class(class)
	if !ok {
		return nil, fmt.Errorf("%w: %s.%s", ErrClassNotFound, module, class)
	}

	sig := newSignature(module, class, c.Doc)
	sig.Required, sig.Optional = c.Parameters()
	return sig, nil
}

// Purge drops every memoized file
func (s *Static) Purge() {
	s.files.Purge()
}

func (s *Static) parse(ctx context.Context, path string) (*pysrc.File, error) {
	info, err := os.Stat(path)
	if err != nil {
		return nil, fmt.Errorf("%w: %w", pysrc.ErrReadSource, err)
	}
	key := fileKey{
		path:    path,
		size:    info.Size(),
		modTime: info.ModTime(),
	}
	return s.files.Get(key, func() (*pysrc.File, error) {
		return pysrc.ParseFile(ctx, path)
	})
}
