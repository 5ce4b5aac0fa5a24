package main

import (
	"bytes"
	"encoding/json"
	"os"
	"strings"
	"testing"

	"github.com/fatih/color"

	"github.com/joshuapare/overlaykit/internal/testutil"
	"github.com/joshuapare/overlaykit/pkg/types"
)

// resetFlags restores every global flag to its default.
func resetFlags() {
	verbose = false
	quiet = false
	jsonOut = false
	logDir = ""
	manifestName = types.DefaultManifestName
	maxPayload = ""
	strict = false
	regionsCoverage = false
	readImage = ""
	readImageBase = "0"
	readAs = ""
	noColor = true
	color.NoColor = true
}

// writeDump builds a dump directory with two good segments and one whose
// payload is missing.
func writeDump(t *testing.T) string {
	t.Helper()
	dir := t.TempDir()
	testutil.WritePayload(t, dir, "stack.bin", []byte("ABC"))
	testutil.WritePayload(t, dir, "heap.bin", []byte{1, 2, 3, 4, 5, 6, 7, 8})
	testutil.WriteManifest(t, dir, []testutil.Segment{
		{Start: "0x102", ContentFile: "stack.bin", Name: "stack"},
		{Start: "0x2000", ContentFile: "gone.bin", Name: "libc"},
		{Start: 8196, ContentFile: "heap.bin", Name: "heap"},
	})
	return dir
}

// captureOutput captures stdout while running a function
func captureOutput(t *testing.T, fn func() error) (string, error) {
	t.Helper()

	origStdout := os.Stdout
	r, w, err := os.Pipe()
	if err != nil {
		t.Fatalf("failed to create pipe: %v", err)
	}
	os.Stdout = w

	done := make(chan string)
	go func() {
		var buf bytes.Buffer
		_, _ = buf.ReadFrom(r)
		done <- buf.String()
	}()

	fnErr := fn()

	w.Close()
	os.Stdout = origStdout
	return <-done, fnErr
}

// assertJSON checks that output is valid JSON and decodes it into v
func assertJSON(t *testing.T, output string, v any) {
	t.Helper()
	if err := json.Unmarshal([]byte(output), v); err != nil {
		t.Fatalf("output is not valid JSON: %v\nOutput: %s", err, output)
	}
}

// assertContains checks that output contains every expected string
func assertContains(t *testing.T, output string, expected []string) {
	t.Helper()
	for _, exp := range expected {
		if !strings.Contains(output, exp) {
			t.Errorf("output does not contain %q\nOutput:\n%s", exp, output)
		}
	}
}
