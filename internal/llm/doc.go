// Package llm wraps the language model backends used by the research and
// debate flows behind a single [Provider] interface.
//
// Backends:
//   - [OpenAI]: any OpenAI-compatible chat completions endpoint (OpenAI, Ollama, OpenRouter)
//   - [Anthropic]: the Anthropic Messages API
//   - [Gemini]: Google AI Studio through generative-ai-go
//   - [Vertex]: Gemini models on Vertex AI
//
// Decorators add cross-cutting behavior without touching the backends:
// [Recorder] writes each call to a [CallLog] and [Traced] reports each call
// to Langfuse under the trace carried by the context. [WithModel] re-targets
// a decorated provider at another model on the same backend.
package llm
