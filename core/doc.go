// Package core provides the foundational value types shared by the kernel,
// skills, templates and model adapters:
//
//   - Variables (case-insensitive string variables with a main "input" value)
//   - Context (the mutable execution scope a function runs against, including
//     error state and an object bag for non-string results such as function calls)
//   - Content / Part (role-based chat content with text and function call parts)
//   - FunctionCall (a model's request to invoke a named function with JSON arguments)
//   - CallLimiter (bounds the number of model calls in a single run)
//
// The package keeps implementation concerns (model transport, template parsing,
// skill loading) out of scope so that higher layers can depend on it freely.
package core
