// Package pysrc reads Python source files without executing them
//
// Files are parsed with tree-sitter's Python grammar into a small model of
// their class definitions, docstrings, and initializer parameters. The
// annotation and default of each parameter are kept as source text
package pysrc
