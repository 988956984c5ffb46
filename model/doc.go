// Package model defines the provider‑agnostic chat service abstraction the
// kernel binds semantic functions to, plus helpers shared by every provider.
//
// Core goals:
//   - Unify streaming + non‑streaming generation behind a single interface
//   - Normalize tool / function call representation (ToolDefinition, core.FunctionCall)
//   - Carry completion settings (max tokens, temperature, top_p, function_call mode)
//   - Facilitate lightweight mocking for tests and offline runs (MockModel)
//
// Providers (OpenAI / Azure OpenAI, Anthropic) implement the Model interface
// in sub-packages so the kernel and skills remain decoupled from vendor SDKs.
package model
