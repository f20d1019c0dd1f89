// Package api defines the wire types shared by the AirDraw server, its CLI,
// and its clients
//
// This package contains the operator catalog and discovery error records,
// constructor parameter descriptors, DAG identifiers, and the HTTP request
// and response messages
package api
