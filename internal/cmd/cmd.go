package cmd

import (
	"context"
	"os"
	"os/signal"
	"syscall"

	"github.com/spf13/pflag"
)

// HasFlags reports whether any flag in flags was set on the command line.
func HasFlags(flags *pflag.FlagSet) bool {
	has := false
	flags.Visit(func(*pflag.Flag) { has = true })
	return has
}

// SignalContext returns a context that is cancelled on SIGINT or SIGTERM.
func SignalContext(parent context.Context) (context.Context, context.CancelFunc) {
	return signal.NotifyContext(parent, os.Interrupt, syscall.SIGTERM)
}

// FirstNonEmpty returns the first non-empty value.
func FirstNonEmpty(values ...string) string {
	for _, v := range values {
		if v != "" {
			return v
		}
	}
	return ""
}

// FirstPositive returns the first value greater than zero, or zero.
func FirstPositive(values ...int) int {
	for _, v := range values {
		if v > 0 {
			return v
		}
	}
	return 0
}
