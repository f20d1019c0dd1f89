package scan

import (
	"errors"
	"fmt"
	"iter"
	"log/slog"
	"os"
	"path/filepath"
	"slices"
	"strings"

	"github.com/kode4food/airdraw/internal/util"
	"github.com/kode4food/airdraw/pkg/log"
)

type (
	// Scanner locates the portions of a namespace package under a search
	// path and walks the modules beneath them
	Scanner struct {
		namespace  string
		searchPath []string
	}

	// Module is a module discovered under the namespace
	Module struct {
		Name      string
		Path      string
		IsPackage bool
	}

	// ModuleError records why a discovered module could not be resolved
	ModuleError struct {
		Err    error
		Module string
	}
)

// ModuleMarker must appear in a module's dotted name for it to be scanned
// for operators
const ModuleMarker = "operators"

const initModule = "__init__"

var (
	ErrNamespaceNotFound = errors.New("namespace not installed")
	ErrModuleNotFound    = errors.New("module not found")
	ErrFileNotFound      = errors.New("File not found")
	ErrNotRegularFile    = errors.New("module path is not a regular file")
)

var (
	sourceSuffixes   = []string{".py"}
	compiledSuffixes = []string{".so", ".pyd"}
)

// New creates a Scanner for the dotted namespace under the given search
// path roots
func New(namespace string, searchPath []string) *Scanner {
	return &Scanner{
		namespace:  namespace,
		searchPath: searchPath,
	}
}

// Namespace returns the dotted namespace being scanned
func (s *Scanner) Namespace() string {
	return s.namespace
}

// Locate returns every directory that holds a portion of the namespace, in
// search path order
func (s *Scanner) Locate() ([]string, error) {
	rel := filepath.FromSlash(strings.ReplaceAll(s.namespace, ".", "/"))
	seen := util.Set[string]{}

	var res []string
	for _, root := range s.searchPath {
		if root == "" {
			continue
		}
		dir, err := filepath.Abs(filepath.Join(root, rel))
		if err != nil || !seen.Add(dir) {
			continue
		}
		if info, err := os.Stat(dir); err == nil && info.IsDir() {
			res = append(res, dir)
		}
	}
	if len(res) == 0 {
		return nil, fmt.Errorf("%w: %s", ErrNamespaceNotFound, s.namespace)
	}
	return res, nil
}

// Walk locates the namespace and returns a lazy sequence of its operator
// modules: non-package modules whose dotted name contains ModuleMarker.
// Each module is paired with a *ModuleError when its file cannot be
// resolved. A missing namespace fails immediately
func (s *Scanner) Walk() (iter.Seq2[*Module, error], error) {
	portions, err := s.Locate()
	if err != nil {
		return nil, err
	}

	return func(yield func(*Module, error) bool) {
		for m := range Modules(s.namespace, portions) {
			if m.IsPackage || !strings.Contains(m.Name, ModuleMarker) {
				continue
			}
			if err := Resolve(m); err != nil {
				if !yield(m, &ModuleError{Module: m.Name, Err: err}) {
					return
				}
				continue
			}
			if !yield(m, nil) {
				return
			}
		}
	}, nil
}

// Modules lazily walks every importable module beneath the namespace
// portions, depth first. A directory is a package only when it contains an
// __init__ module; entries are visited in name order, and the first
// occurrence of a dotted name hides later ones
func Modules(namespace string, portions []string) iter.Seq[*Module] {
	return func(yield func(*Module) bool) {
		walkDirs(namespace+".", portions, yield)
	}
}

// Resolve verifies that a module's backing file exists and is a regular
// file
func Resolve(m *Module) error {
	info, err := os.Stat(m.Path)
	if err != nil {
		if errors.Is(err, os.ErrNotExist) {
			return ErrFileNotFound
		}
		return err
	}
	if !info.Mode().IsRegular() {
		return fmt.Errorf("%w: %s", ErrNotRegularFile, m.Path)
	}
	return nil
}

// FindModule maps a dotted module name to its file on the search path
func (s *Scanner) FindModule(name string) (string, error) {
	if name == "" || strings.Contains(name, "..") ||
		strings.ContainsAny(name, `/\`) {
		return "", fmt.Errorf("%w: %s", ErrModuleNotFound, name)
	}
	rel := filepath.FromSlash(strings.ReplaceAll(name, ".", "/"))

	for _, root := range s.searchPath {
		if root == "" {
			continue
		}
		base := filepath.Join(root, rel)
		candidates := []string{filepath.Join(base, initModule+".py")}
		for _, suffix := range sourceSuffixes {
			candidates = append(candidates, base+suffix)
		}
		for _, suffix := range compiledSuffixes {
			matches, _ := filepath.Glob(base + ".*" + suffix)
			candidates = append(candidates, base+suffix)
			candidates = append(candidates, matches...)
		}
		for _, c := range candidates {
			if info, err := os.Stat(c); err == nil && info.Mode().IsRegular() {
				return c, nil
			}
		}
	}
	return "", fmt.Errorf("%w: %s", ErrModuleNotFound, name)
}

// Error implements the error interface
func (e *ModuleError) Error() string {
	return e.Err.Error()
}

// Unwrap returns the underlying resolution error
func (e *ModuleError) Unwrap() error {
	return e.Err
}

func walkDirs(prefix string, dirs []string, yield func(*Module) bool) bool {
	seen := util.Set[string]{}
	for _, dir := range dirs {
		entries, err := os.ReadDir(dir)
		if err != nil {
			slog.Warn("Failed to list package directory",
				log.Path(dir),
				log.Error(err))
			continue
		}
		slices.SortFunc(entries, func(a, b os.DirEntry) int {
			return strings.Compare(a.Name(), b.Name())
		})

		for _, entry := range entries {
			m := moduleFor(dir, entry)
			if m == nil || !seen.Add(m.Name) {
				continue
			}
			m.Name = prefix + m.Name
			if !yield(m) {
				return false
			}
			if m.IsPackage {
				sub := filepath.Join(dir, entry.Name())
				if !walkDirs(m.Name+".", []string{sub}, yield) {
					return false
				}
			}
		}
	}
	return true
}

func moduleFor(dir string, entry os.DirEntry) *Module {
	name := entry.Name()
	path := filepath.Join(dir, name)

	if isDir(entry, path) {
		if strings.Contains(name, ".") {
			return nil
		}
		init := filepath.Join(path, initModule+".py")
		if _, err := os.Stat(init); err != nil {
			return nil
		}
		return &Module{Name: name, Path: init, IsPackage: true}
	}

	modName, ok := moduleName(name)
	if !ok || modName == initModule {
		return nil
	}
	return &Module{Name: modName, Path: path}
}

func moduleName(file string) (string, bool) {
	for _, suffix := range sourceSuffixes {
		if base, ok := strings.CutSuffix(file, suffix); ok {
			return base, base != "" && !strings.Contains(base, ".")
		}
	}
	for _, suffix := range compiledSuffixes {
		if strings.HasSuffix(file, suffix) {
			base, _, _ := strings.Cut(file, ".")
			return base, base != ""
		}
	}
	return "", false
}

func isDir(entry os.DirEntry, path string) bool {
	if entry.IsDir() {
		return true
	}
	if entry.Type()&os.ModeSymlink != 0 {
		info, err := os.Stat(path)
		return err == nil && info.IsDir()
	}
	return false
}
