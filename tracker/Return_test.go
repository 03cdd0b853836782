package tracker

import (
	"os"
	"path/filepath"
	"strconv"
	"strings"
	"testing"
)

func TestReturnWritesOneLinePerEpoch(t *testing.T) {
	filename := filepath.Join(t.TempDir(), "rewards.log")

	track, err := NewReturn(filename)
	if err != nil {
		t.Fatal(err)
	}

	want := []float64{-200.125, 0, 3.5, 187.25}
	for _, r := range want {
		if err := track.Track(r); err != nil {
			t.Fatal(err)
		}
	}
	if err := track.Close(); err != nil {
		t.Fatal(err)
	}

	data, err := os.ReadFile(filename)
	if err != nil {
		t.Fatal(err)
	}
	if len(data) == 0 || data[len(data)-1] != '\n' {
		t.Fatal("expected file to end with a newline")
	}

	lines := strings.Split(strings.TrimRight(string(data), "\n"), "\n")
	if len(lines) != len(want) {
		t.Fatalf("expected %d lines but got %d", len(want), len(lines))
	}
	for i, line := range lines {
		got, err := strconv.ParseFloat(line, 64)
		if err != nil {
			t.Fatalf("line %d: could not parse %q: %v", i, line, err)
		}
		if got != want[i] {
			t.Errorf("line %d: expected %v but got %v", i, want[i], got)
		}
	}
}

func TestReturnSurvivesWithoutClose(t *testing.T) {
	filename := filepath.Join(t.TempDir(), "rewards.log")

	track, err := NewReturn(filename)
	if err != nil {
		t.Fatal(err)
	}
	if err := track.Track(42.5); err != nil {
		t.Fatal(err)
	}

	// Track flushes each line, so a crashed run loses nothing
	data, err := os.ReadFile(filename)
	if err != nil {
		t.Fatal(err)
	}
	if string(data) != "42.5\n" {
		t.Errorf("expected %q but got %q", "42.5\n", string(data))
	}

	if err := track.Close(); err != nil {
		t.Fatal(err)
	}
}
