// Package anthropic implements the provider adapter for Anthropic's
// Messages API.
package anthropic
