// SPDX-License-Identifier: MPL-2.0

package testutil

import (
	"os"
	"path/filepath"
	"runtime"
	"testing"
)

func TestSetHomeDir(t *testing.T) {
	key := "HOME"
	if runtime.GOOS == "windows" {
		key = "USERPROFILE"
	}
	original, had := os.LookupEnv(key)

	dir := t.TempDir()
	cleanup := SetHomeDir(t, dir)
	if got := os.Getenv(key); got != dir {
		t.Errorf("%s = %q, want %q", key, got, dir)
	}

	cleanup()
	got, has := os.LookupEnv(key)
	if has != had || got != original {
		t.Errorf("after cleanup %s = %q (set %v), want %q (set %v)", key, got, has, original, had)
	}
}

func TestMustSetenvUnsetsNewKey(t *testing.T) {
	const key = "CRUX_TESTUTIL_UNSET"
	if err := os.Unsetenv(key); err != nil {
		t.Fatal(err)
	}

	cleanup := MustSetenv(t, key, "value")
	if got := os.Getenv(key); got != "value" {
		t.Errorf("%s = %q, want %q", key, got, "value")
	}
	cleanup()
	if _, ok := os.LookupEnv(key); ok {
		t.Errorf("%s still set after cleanup", key)
	}
}

func TestMustWriteFile(t *testing.T) {
	t.Parallel()

	dir := t.TempDir()
	path := MustWriteFile(t, dir, filepath.Join("nested", "script.ts"), "export {};\n")
	if want := filepath.Join(dir, "nested", "script.ts"); path != want {
		t.Errorf("path = %q, want %q", path, want)
	}
	if got := MustReadFile(t, path); got != "export {};\n" {
		t.Errorf("content = %q", got)
	}
}
