// Package openai implements the provider adapter for OpenAI's Chat
// Completions API and OpenAI-compatible endpoints.
package openai
