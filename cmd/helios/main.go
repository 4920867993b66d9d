// Helios is a resilient gateway for AI inference traffic.
//
// It fronts one or more inference providers with per-client rate limiting,
// retry with exponential backoff, and ordered provider fallback.
//
// Usage:
//
//	# Start the gateway with the default configuration file
//	helios run
//
//	# Start with a custom configuration file
//	helios run --config /etc/helios/config.yaml
//
//	# Validate a configuration file without starting
//	helios validate
//
//	# Show version information
//	helios version
package main

func main() {
	Execute()
}
