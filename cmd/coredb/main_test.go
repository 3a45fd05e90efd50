package main

import (
	"os"
	"path/filepath"
	"testing"
)

func TestRunMissingScriptExitsNonZero(t *testing.T) {
	dir := t.TempDir()
	old, _ := os.Getwd()
	defer os.Chdir(old)
	os.Chdir(dir)

	code := run([]string{filepath.Join(dir, "missing.sql")})
	if code == 0 {
		t.Fatal("expected non-zero exit code for a missing script path")
	}
}

func TestRunScriptExecutesStatements(t *testing.T) {
	dir := t.TempDir()
	old, _ := os.Getwd()
	defer os.Chdir(old)
	os.Chdir(dir)

	script := filepath.Join(dir, "script.sql")
	if err := os.WriteFile(script, []byte("CREATE TABLE t (id INT); INSERT INTO t (id) VALUES (1);"), 0o644); err != nil {
		t.Fatalf("write script: %v", err)
	}

	code := run([]string{script})
	if code != 0 {
		t.Fatalf("expected exit code 0, got %d", code)
	}
}
