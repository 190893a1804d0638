package cmd

import (
	"os"
	"path/filepath"
	"strings"
	"testing"
)

func TestProfileBatch_WritesReports(t *testing.T) {
	home := withHome(t)
	dataDir := filepath.Join(home, "data")
	if err := os.MkdirAll(dataDir, 0o755); err != nil {
		t.Fatal(err)
	}
	writeCustomers(t, dataDir)
	if err := os.WriteFile(filepath.Join(dataDir, "b.csv"), []byte("x,y\n1,a\n2,b\n3,a\n"), 0o644); err != nil {
		t.Fatal(err)
	}
	outDir := filepath.Join(home, "profiles")

	out := runCmd(t, "profile-batch", filepath.Join(dataDir, "*.csv"), "--out-dir", outDir)
	if !strings.Contains(out, "[1/2] Processing") || !strings.Contains(out, "[2/2] Processing") {
		t.Fatalf("missing progress lines:\n%s", out)
	}
	for _, name := range []string{"customers.profile.json", "b.profile.json"} {
		if _, err := os.Stat(filepath.Join(outDir, name)); err != nil {
			t.Fatalf("expected %s: %v", name, err)
		}
	}

	// A second run must not overwrite the first reports.
	runCmd(t, "profile-batch", filepath.Join(dataDir, "b.csv"), "--out-dir", outDir, "--quiet")
	if _, err := os.Stat(filepath.Join(outDir, "b__2.profile.json")); err != nil {
		t.Fatalf("expected unique second report: %v", err)
	}
}

func TestProfileBatch_ReportsFailures(t *testing.T) {
	home := withHome(t)
	bad := filepath.Join(home, "bad.csv")
	if err := os.WriteFile(bad, nil, 0o644); err != nil {
		t.Fatal(err)
	}
	out, err := execute(t, "profile-batch", bad, "--out-dir", filepath.Join(home, "p"))
	if err == nil {
		t.Fatalf("expected batch error, got output:\n%s", out)
	}
	if !strings.Contains(out, "✗") {
		t.Fatalf("expected failure line:\n%s", out)
	}
}
