package logging

import "time"

// FunctionCall records one skill function invocation. A nil err logs
// "function.call.completed" at info level, anything else logs
// "function.call.failed" at error level. Extra args are appended as given.
func FunctionCall(l Logger, skill, function string, dur time.Duration, err error, args ...any) {
	attrs := append([]any{"skill", skill, "function", function, "duration", dur}, args...)
	outcome(l, "function.call", err, attrs)
}

// ModelCall records one chat model call with its token usage.
func ModelCall(l Logger, model string, tokens int, dur time.Duration, err error, args ...any) {
	attrs := append([]any{"model", model, "total_tokens", tokens, "duration", dur}, args...)
	outcome(l, "model.call", err, attrs)
}

func outcome(l Logger, event string, err error, attrs []any) {
	if err != nil {
		l.Error(event+".failed", append(attrs, "error", err.Error())...)
		return
	}
	l.Info(event+".completed", attrs...)
}

// StartTimer returns a func that logs the time elapsed since StartTimer at
// debug level.
func StartTimer(l Logger, op string, args ...any) func() {
	start := time.Now()
	return func() {
		l.Debug("operation.completed", append([]any{"operation", op, "duration", time.Since(start)}, args...)...)
	}
}
