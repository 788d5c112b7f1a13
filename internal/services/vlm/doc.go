// Package vlm provides an OpenAI-compatible chat client for vision-language
// clip classification.
//
// The client posts a short video clip (as a file:// video_url content part)
// plus a structured prompt to a local inference server such as vLLM, and
// parses the JSON verdict the model returns: whether a rally is in progress
// and what kind of shot the camera shows.
//
// # Entry Points
//
// NewClient: construct client from Config.
// Client.ClassifyClip: classify a single extracted clip file.
// Client.HealthCheck: verify the server and model are reachable.
//
// # Retry Behaviour
//
// The client retries on HTTP 408/429/5xx errors and network timeouts with
// exponential backoff (base 1s, max 10s, up to 5 attempts by default).
// Context cancellation aborts retries immediately.
//
// # Fallback
//
// Models occasionally wrap the JSON in markdown fences or prose; DecodeJSON
// strips those before giving up. A payload that still fails to parse is the
// caller's decision: the detection pipeline treats it as non-gameplay unless
// strict mode is enabled.
package vlm
