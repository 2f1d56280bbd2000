package utils

import (
	"bytes"
	"os"
	"path/filepath"
	"strings"
	"testing"
)

func TestGetPathInfo(t *testing.T) {
	full, parent, err := GetPathInfo("a/b/../c.k")
	if err != nil {
		t.Fatalf("GetPathInfo error = %v", err)
	}
	if !filepath.IsAbs(full) || filepath.Base(full) != "c.k" || filepath.Base(parent) != "a" {
		t.Errorf("GetPathInfo = %q, %q", full, parent)
	}
}

func TestReadSource(t *testing.T) {
	dir := t.TempDir()
	path := filepath.Join(dir, "main.k")
	if err := os.WriteFile(path, []byte("int main() {}"), 0o644); err != nil {
		t.Fatal(err)
	}

	name, src, err := ReadSource(path, nil)
	if err != nil {
		t.Fatalf("ReadSource(file) error = %v", err)
	}
	if name != path || string(src) != "int main() {}" {
		t.Errorf("ReadSource(file) = %q, %q", name, src)
	}

	name, src, err = ReadSource(StdinPath, strings.NewReader("x"))
	if err != nil || name != "<stdin>" || string(src) != "x" {
		t.Errorf("ReadSource(stdin) = %q, %q, %v", name, src, err)
	}

	if _, _, err := ReadSource(filepath.Join(dir, "missing.k"), nil); err == nil {
		t.Errorf("ReadSource(missing) succeeded")
	}
}

func TestWriteOutput(t *testing.T) {
	dir := t.TempDir()
	out := filepath.Join(dir, "a.bin")
	if err := WriteOutput(out, []byte{1, 2, 3}); err != nil {
		t.Fatalf("WriteOutput error = %v", err)
	}
	got, err := os.ReadFile(out)
	if err != nil || !bytes.Equal(got, []byte{1, 2, 3}) {
		t.Errorf("read back %v, %v", got, err)
	}

	if err := WriteOutput(filepath.Join(dir, "nope", "a.bin"), nil); err == nil {
		t.Errorf("WriteOutput into a missing directory succeeded")
	}
}
