package providers

import (
	"fmt"
	"io"

	"go.uber.org/zap"

	"github.com/michaelcolletti/venue-research-agent/pkg/logger"
)

// Diagnostics writes validation messages for a person at the terminal and
// mirrors problems into the log.
type Diagnostics struct {
	out io.Writer
	log *logger.Logger
}

// NewDiagnostics creates diagnostics from deps.
func NewDiagnostics(deps Deps) *Diagnostics {
	deps = deps.WithDefaults()
	return &Diagnostics{out: deps.Out, log: deps.Log}
}

// Problem reports a failed check.
func (d *Diagnostics) Problem(format string, args ...interface{}) {
	msg := fmt.Sprintf(format, args...)
	fmt.Fprintf(d.out, "Error: %s\n", msg)
	d.log.Warn("Provider validation failed", zap.String("reason", msg))
}

// Warn reports something that was adjusted rather than rejected.
func (d *Diagnostics) Warn(format string, args ...interface{}) {
	msg := fmt.Sprintf(format, args...)
	fmt.Fprintf(d.out, "Warning: %s\n", msg)
	d.log.Warn(msg)
}

// Info reports a passed check.
func (d *Diagnostics) Info(format string, args ...interface{}) {
	msg := fmt.Sprintf(format, args...)
	fmt.Fprintln(d.out, msg)
	d.log.Debug(msg)
}

// Hint prints follow-up instructions, one per line.
func (d *Diagnostics) Hint(lines ...string) {
	for _, line := range lines {
		fmt.Fprintf(d.out, "  %s\n", line)
	}
}

// RequireEnv reports every key missing from env. It returns false when any
// key is missing.
func (d *Diagnostics) RequireEnv(env EnvSource, keys ...string) bool {
	missing := MissingEnv(env, keys)
	for _, key := range missing {
		d.Problem("%s environment variable not set", key)
	}
	return len(missing) == 0
}
