package fs

import (
	"errors"
	i_fs "io/fs"
	"testing"
)

func TestMapFS(t *testing.T) {
	m := MapFS{"/app/lib/util.swf": "var x = 1;"}

	src, err := m.ReadFile("/app/lib/../lib/util.swf")
	if err != nil {
		t.Fatalf("ReadFile() failed: %v", err)
	}
	if string(src) != "var x = 1;" {
		t.Errorf("wrong content: %q", src)
	}

	info, err := m.Stat("/app/lib/util.swf")
	if err != nil {
		t.Fatalf("Stat() failed: %v", err)
	}
	if info.IsDir() || info.Size() != 10 || info.Name() != "util.swf" {
		t.Errorf("unexpected file info: dir=%v size=%d name=%s", info.IsDir(), info.Size(), info.Name())
	}

	dir, err := m.Stat("/app/lib")
	if err != nil || !dir.IsDir() {
		t.Errorf("expected /app/lib to be a directory, err=%v", err)
	}

	if _, err := m.Stat("/app/li"); !errors.Is(err, i_fs.ErrNotExist) {
		t.Errorf("expected ErrNotExist for a path prefix, got %v", err)
	}
	if _, err := m.ReadFile("/app/missing.swf"); !errors.Is(err, i_fs.ErrNotExist) {
		t.Errorf("expected ErrNotExist, got %v", err)
	}
}
