// Package scan walks a Python package namespace on disk and yields the
// modules that carry operators, resolving each to its backing file without
// importing any code
package scan
