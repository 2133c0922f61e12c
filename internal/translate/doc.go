// Package translate turns a transcript into another language through an
// OpenAI-compatible chat completion endpoint (OpenRouter by default).
//
// # Entry Points
//
// NewClient: construct the HTTP client from Config.
// Client.CompleteJSON: send system/user prompts, receive a JSON payload.
// Client.HealthCheck: verify the API key and model are usable.
// NewTranslator / Translator.Translate: translate segment texts in batches
// while keeping their timings.
//
// # Retry Behaviour
//
// Requests are retried on HTTP 408/429/5xx, empty completions, and network
// timeouts with exponential backoff (base 1s, max 10s, 5 attempts by
// default). A Retry-After header replaces the computed delay. Context
// cancellation stops retrying at once.
//
// # Alignment
//
// Every batch must come back with exactly as many lines as were sent, keyed
// by their ids. Anything else is an error rather than a shifted subtitle
// track.
package translate
