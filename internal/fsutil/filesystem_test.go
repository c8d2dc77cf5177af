package fsutil

import (
	"errors"
	"io"
	"io/fs"
	"path/filepath"
	"testing"
)

func TestOSFileSystem_Exists(t *testing.T) {
	fs := OSFileSystem{}

	if !fs.Exists("filesystem.go") {
		t.Error("expected filesystem.go to exist")
	}

	if fs.Exists("nonexistent_file_xyz.go") {
		t.Error("expected nonexistent file to not exist")
	}
}

func TestOSFileSystem_CreateSyncRead(t *testing.T) {
	osfs := OSFileSystem{}
	dir := filepath.Join(t.TempDir(), "nested", "out")
	if err := osfs.MkdirAll(dir, 0755); err != nil {
		t.Fatalf("MkdirAll failed: %v", err)
	}

	path := filepath.Join(dir, "table.tsv")
	f, err := osfs.Create(path)
	if err != nil {
		t.Fatalf("Create failed: %v", err)
	}
	if _, err := f.Write([]byte("0\t1.000000\n")); err != nil {
		t.Fatalf("Write failed: %v", err)
	}
	if err := f.Sync(); err != nil {
		t.Fatalf("Sync failed: %v", err)
	}
	if err := f.Close(); err != nil {
		t.Fatalf("Close failed: %v", err)
	}

	data, err := osfs.ReadFile(path)
	if err != nil {
		t.Fatalf("ReadFile failed: %v", err)
	}
	if string(data) != "0\t1.000000\n" {
		t.Errorf("unexpected content %q", data)
	}

	r, err := osfs.Open(path)
	if err != nil {
		t.Fatalf("Open failed: %v", err)
	}
	defer r.Close()
	got, err := io.ReadAll(r)
	if err != nil {
		t.Fatalf("ReadAll failed: %v", err)
	}
	if string(got) != string(data) {
		t.Errorf("Open content %q differs from ReadFile %q", got, data)
	}
}

func TestMemoryFileSystem_WriteAndRead(t *testing.T) {
	mfs := NewMemoryFileSystem()

	testData := []byte("hello, world")
	mfs.WriteFile("/test.txt", testData, 0644)

	data, err := mfs.ReadFile("/test.txt")
	if err != nil {
		t.Fatalf("ReadFile failed: %v", err)
	}

	if string(data) != string(testData) {
		t.Errorf("expected %q, got %q", testData, data)
	}
}

func TestMemoryFileSystem_SyncPublishesData(t *testing.T) {
	mfs := NewMemoryFileSystem()

	w, err := mfs.Create("/created.txt")
	if err != nil {
		t.Fatalf("Create failed: %v", err)
	}

	if _, err := w.Write([]byte("row one\n")); err != nil {
		t.Fatalf("Write failed: %v", err)
	}

	data, _ := mfs.ReadFile("/created.txt")
	if len(data) != 0 {
		t.Errorf("unsynced data should not be visible, got %q", data)
	}

	if err := w.Sync(); err != nil {
		t.Fatalf("Sync failed: %v", err)
	}
	data, _ = mfs.ReadFile("/created.txt")
	if string(data) != "row one\n" {
		t.Errorf("expected synced data, got %q", data)
	}
	if n := mfs.SyncCount("/created.txt"); n != 1 {
		t.Errorf("expected 1 sync, got %d", n)
	}

	if _, err := w.Write([]byte("row two\n")); err != nil {
		t.Fatalf("Write failed: %v", err)
	}
	if err := w.Close(); err != nil {
		t.Fatalf("Close failed: %v", err)
	}
	data, _ = mfs.ReadFile("/created.txt")
	if string(data) != "row one\nrow two\n" {
		t.Errorf("expected full content after close, got %q", data)
	}
	if n := mfs.SyncCount("/created.txt"); n != 1 {
		t.Errorf("close should not count as sync, got %d", n)
	}
}

func TestMemoryFileSystem_WriteAfterClose(t *testing.T) {
	mfs := NewMemoryFileSystem()
	w, err := mfs.Create("/f")
	if err != nil {
		t.Fatalf("Create failed: %v", err)
	}
	if err := w.Close(); err != nil {
		t.Fatalf("Close failed: %v", err)
	}

	if _, err := w.Write([]byte("x")); !errors.Is(err, fs.ErrClosed) {
		t.Errorf("expected ErrClosed from Write, got %v", err)
	}
	if err := w.Sync(); !errors.Is(err, fs.ErrClosed) {
		t.Errorf("expected ErrClosed from Sync, got %v", err)
	}
	if err := w.Close(); !errors.Is(err, fs.ErrClosed) {
		t.Errorf("expected ErrClosed from second Close, got %v", err)
	}
}

func TestMemoryFileSystem_CreateRequiresParent(t *testing.T) {
	mfs := NewMemoryFileSystem()

	if _, err := mfs.Create("out/table.tsv"); !errors.Is(err, fs.ErrNotExist) {
		t.Fatalf("expected ErrNotExist without parent dir, got %v", err)
	}

	if err := mfs.MkdirAll("out", 0755); err != nil {
		t.Fatalf("MkdirAll failed: %v", err)
	}
	if _, err := mfs.Create("out/table.tsv"); err != nil {
		t.Fatalf("Create failed after MkdirAll: %v", err)
	}
	if !mfs.Exists("out") || !mfs.Exists("out/table.tsv") {
		t.Error("expected directory and file to exist")
	}
}

func TestMemoryFileSystem_Open(t *testing.T) {
	mfs := NewMemoryFileSystem()

	if _, err := mfs.Open("/missing"); !errors.Is(err, fs.ErrNotExist) {
		t.Errorf("expected ErrNotExist, got %v", err)
	}

	mfs.WriteFile("/data.tsv", []byte("abc"), 0644)
	f, err := mfs.Open("/data.tsv")
	if err != nil {
		t.Fatalf("Open failed: %v", err)
	}
	defer f.Close()

	info, err := f.Stat()
	if err != nil {
		t.Fatalf("Stat failed: %v", err)
	}
	if info.Size() != 3 || info.Name() != "data.tsv" || info.IsDir() {
		t.Errorf("unexpected file info: size=%d name=%s dir=%v", info.Size(), info.Name(), info.IsDir())
	}

	got, err := io.ReadAll(f)
	if err != nil {
		t.Fatalf("ReadAll failed: %v", err)
	}
	if string(got) != "abc" {
		t.Errorf("expected abc, got %q", got)
	}
}

func TestMemoryFileSystem_MkdirAllParents(t *testing.T) {
	mfs := NewMemoryFileSystem()
	if err := mfs.MkdirAll("a/b/c", 0755); err != nil {
		t.Fatalf("MkdirAll failed: %v", err)
	}
	for _, d := range []string{"a", "a/b", "a/b/c"} {
		if !mfs.Exists(d) {
			t.Errorf("expected %s to exist", d)
		}
	}
	if mfs.Exists("a/b/c/d") {
		t.Error("unexpected directory a/b/c/d")
	}
}
