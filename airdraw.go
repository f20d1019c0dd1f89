// Package airdraw exposes the identity of the AirDraw server build
package airdraw

const (
	// Name is the service name reported in logs and health responses
	Name = "airdraw-server"

	// Version is the service version reported in logs and health responses
	Version = "0.3.0"
)
