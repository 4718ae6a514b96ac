package cronscript

import (
	"os"
	"path/filepath"
	"strings"
	"testing"
	"time"
)

func TestParse(t *testing.T) {
	valid := []string{"0 6 * * *", "*/15 * * * 1-5", "@daily", " 30 7 * * 0 "}
	for _, s := range valid {
		if _, err := Parse(s); err != nil {
			t.Errorf("Parse(%q): %v", s, err)
		}
	}

	invalid := []string{"", "every morning", "0 6 * *", "61 * * * *", "0 0 6 * * *"}
	for _, s := range invalid {
		if _, err := Parse(s); err == nil {
			t.Errorf("Parse(%q) should fail", s)
		}
	}
}

func TestRender(t *testing.T) {
	script, err := Render(Options{
		Dir:        "/opt/scout",
		Binary:     "/usr/local/bin/venuescout",
		ConfigPath: "config/my venues.toml",
	})
	if err != nil {
		t.Fatal(err)
	}

	for _, want := range []string{
		"#!/bin/bash\n",
		"# Cron: 0 6 * * * /opt/scout/run_daily.sh",
		`LOG_FILE="$SCRIPT_DIR/logs/daily_$(date +%Y%m%d).log"`,
		`/usr/local/bin/venuescout --config 'config/my venues.toml' search >> "$LOG_FILE" 2>&1`,
		`if [ "$(date +%u)" -eq 7 ]; then`,
		`/usr/local/bin/venuescout --config 'config/my venues.toml' report >> "$LOG_FILE" 2>&1`,
	} {
		if !strings.Contains(script, want) {
			t.Errorf("script missing %q", want)
		}
	}
}

func TestRenderRejectsBadSchedule(t *testing.T) {
	if _, err := Render(Options{Schedule: "nope"}); err == nil {
		t.Fatal("expected error")
	}
}

func TestGenerate(t *testing.T) {
	dir := t.TempDir()
	now := time.Date(2026, 10, 18, 12, 0, 0, 0, time.Local)

	res, err := Generate(Options{Dir: dir, Schedule: "0 6 * * *"}, now)
	if err != nil {
		t.Fatalf("Generate: %v", err)
	}
	if res.Path != filepath.Join(dir, ScriptName) {
		t.Fatalf("Path = %s", res.Path)
	}
	if res.Crontab != "0 6 * * * "+res.Path {
		t.Errorf("Crontab = %q", res.Crontab)
	}
	if want := time.Date(2026, 10, 19, 6, 0, 0, 0, time.Local); !res.Next.Equal(want) {
		t.Errorf("Next = %v, want %v", res.Next, want)
	}

	info, err := os.Stat(res.Path)
	if err != nil {
		t.Fatal(err)
	}
	if info.Mode().Perm()&0o100 == 0 {
		t.Errorf("script not executable: %v", info.Mode())
	}
	body, _ := os.ReadFile(res.Path)
	if !strings.Contains(string(body), "venuescout search") {
		t.Errorf("default binary missing: %s", body)
	}
}
