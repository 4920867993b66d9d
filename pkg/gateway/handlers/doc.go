// Package handlers implements the gateway's HTTP endpoints: analysis,
// usage reporting, and health.
package handlers
