package core

import "github.com/hupe1980/semkernel/logging"

// Logger returns the logger bound to c.
func (c *Context) Logger() logging.Logger { return c.logger }

// LogDebug logs msg tagged with the context ID.
func (c *Context) LogDebug(msg string, args ...any) { c.logger.Debug(msg, c.tagged(args)...) }

// LogInfo logs msg tagged with the context ID.
func (c *Context) LogInfo(msg string, args ...any) { c.logger.Info(msg, c.tagged(args)...) }

// LogWarn logs msg tagged with the context ID.
func (c *Context) LogWarn(msg string, args ...any) { c.logger.Warn(msg, c.tagged(args)...) }

// LogError logs msg tagged with the context ID.
func (c *Context) LogError(msg string, args ...any) { c.logger.Error(msg, c.tagged(args)...) }

func (c *Context) tagged(args []any) []any {
	out := make([]any, 0, len(args)+2)
	out = append(out, "context_id", c.ID)
	return append(out, args...)
}

// Log returns a logging.Logger that tags every record with the context ID.
func (c *Context) Log() logging.Logger { return contextLogger{c} }

type contextLogger struct{ c *Context }

func (l contextLogger) Debug(msg string, args ...any) { l.c.LogDebug(msg, args...) }
func (l contextLogger) Info(msg string, args ...any)  { l.c.LogInfo(msg, args...) }
func (l contextLogger) Warn(msg string, args ...any)  { l.c.LogWarn(msg, args...) }
func (l contextLogger) Error(msg string, args ...any) { l.c.LogError(msg, args...) }
