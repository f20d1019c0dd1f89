// Package server implements the HTTP API of the AirDraw server
//
// This package provides REST endpoints for browsing the discovered operator
// catalog, describing operator parameters, and saving the DAGs drawn in the
// editor
package server
