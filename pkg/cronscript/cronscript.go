// Package cronscript generates the shell script that runs the daily search
// from cron. Nothing is scheduled in-process.
package cronscript

import (
	"bytes"
	"fmt"
	"path/filepath"
	"strings"
	"text/template"
	"time"

	"github.com/robfig/cron/v3"

	"github.com/michaelcolletti/venue-research-agent/pkg/config"
	"github.com/michaelcolletti/venue-research-agent/pkg/fileutil"
)

// ScriptName is the generated file name.
const ScriptName = "run_daily.sh"

// Options describes the script to generate.
type Options struct {
	// Dir is where the script is written; it is also the working
	// directory the script changes into.
	Dir string
	// Binary is the venuescout executable.
	Binary string
	// ConfigPath is passed with --config when set.
	ConfigPath string
	// Schedule is a standard five-field cron expression.
	Schedule string
}

// Result describes a generated script.
type Result struct {
	Path     string
	Schedule string
	Crontab  string
	Next     time.Time
}

const scriptTemplate = `#!/bin/bash
# Venue Scout daily run
# Cron: {{.Schedule}} {{.Path}}

SCRIPT_DIR="$(cd "$(dirname "${BASH_SOURCE[0]}")" && pwd)"
mkdir -p "$SCRIPT_DIR/logs"
LOG_FILE="$SCRIPT_DIR/logs/daily_$(date +%Y%m%d).log"

echo "=== Venue Scout Daily Run ===" >> "$LOG_FILE"
echo "Started: $(date)" >> "$LOG_FILE"

cd "$SCRIPT_DIR"
{{.Command}} search >> "$LOG_FILE" 2>&1

# Weekly report on Sundays
if [ "$(date +%u)" -eq 7 ]; then
    echo "Generating weekly report..." >> "$LOG_FILE"
    {{.Command}} report >> "$LOG_FILE" 2>&1
fi

echo "Completed: $(date)" >> "$LOG_FILE"
echo "" >> "$LOG_FILE"
`

var tmpl = template.Must(template.New("run_daily").Parse(scriptTemplate))

// Parse validates a standard cron expression.
func Parse(schedule string) (cron.Schedule, error) {
	sched, err := cron.ParseStandard(strings.TrimSpace(schedule))
	if err != nil {
		return nil, fmt.Errorf("invalid cron schedule %q: %w", schedule, err)
	}
	return sched, nil
}

// Render returns the script text for opts.
func Render(opts Options) (string, error) {
	opts = withDefaults(opts)
	if _, err := Parse(opts.Schedule); err != nil {
		return "", err
	}

	command := shellQuote(opts.Binary)
	if opts.ConfigPath != "" {
		command += " --config " + shellQuote(opts.ConfigPath)
	}

	var buf bytes.Buffer
	err := tmpl.Execute(&buf, map[string]string{
		"Schedule": opts.Schedule,
		"Path":     filepath.Join(opts.Dir, ScriptName),
		"Command":  command,
	})
	if err != nil {
		return "", fmt.Errorf("rendering script: %w", err)
	}
	return buf.String(), nil
}

// Generate writes the executable script into opts.Dir and reports the
// crontab line and the next activation after now.
func Generate(opts Options, now time.Time) (*Result, error) {
	opts = withDefaults(opts)
	sched, err := Parse(opts.Schedule)
	if err != nil {
		return nil, err
	}
	script, err := Render(opts)
	if err != nil {
		return nil, err
	}

	path := filepath.Join(opts.Dir, ScriptName)
	if err := fileutil.WriteFileAtomic(path, []byte(script), 0o755); err != nil {
		return nil, fmt.Errorf("writing %s: %w", ScriptName, err)
	}

	return &Result{
		Path:     path,
		Schedule: opts.Schedule,
		Crontab:  opts.Schedule + " " + path,
		Next:     sched.Next(now),
	}, nil
}

func withDefaults(opts Options) Options {
	opts.Schedule = strings.TrimSpace(opts.Schedule)
	if opts.Schedule == "" {
		opts.Schedule = config.DefaultCronSchedule
	}
	if opts.Dir == "" {
		opts.Dir = "."
	}
	if opts.Binary == "" {
		opts.Binary = "venuescout"
	}
	return opts
}

func shellQuote(s string) string {
	if s != "" && strings.IndexFunc(s, needsQuote) < 0 {
		return s
	}
	return "'" + strings.ReplaceAll(s, "'", `'\''`) + "'"
}

func needsQuote(r rune) bool {
	switch {
	case r >= 'a' && r <= 'z', r >= 'A' && r <= 'Z', r >= '0' && r <= '9':
		return false
	}
	return !strings.ContainsRune("/._-+=:,@", r)
}
