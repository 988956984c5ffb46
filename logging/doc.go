// Package logging defines the Logger interface shared by the kernel, skills
// and model adapters, plus its backends: KernelLogger on log/slog (json or
// text), ZerologAdapter for console output, and NoOpLogger.
//
// FunctionCall and ModelCall emit the records the kernel writes around each
// function invocation and chat model call, on any Logger.
//
//	logger := logging.NewLogger(&logging.LoggerConfig{Level: logging.LogLevelDebug, Component: "kernel"})
//	kernel := semkernel.New(func(o *semkernel.Options) { o.Logger = logger })
package logging
