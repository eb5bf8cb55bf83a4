package quarantine

import (
	"errors"
	"os"
	"path/filepath"
	"sort"
	"testing"

	"github.com/spf13/afero"

	"github.com/Yuvraj-cyborg/deduck/internal"
)

type memLedger struct {
	records map[string]map[string]string
}

func newMemLedger() *memLedger {
	return &memLedger{records: make(map[string]map[string]string)}
}

func (l *memLedger) Record(batchID, dir, name, original string, size int64) error {
	if l.records[dir] == nil {
		l.records[dir] = make(map[string]string)
	}
	l.records[dir][name] = original
	return nil
}

func (l *memLedger) Originals(dir string) (map[string]string, error) {
	originals := make(map[string]string, len(l.records[dir]))
	for name, original := range l.records[dir] {
		originals[name] = original
	}
	return originals, nil
}

func (l *memLedger) Forget(dir, name string) error {
	delete(l.records[dir], name)
	return nil
}

func (l *memLedger) ForgetAll(dir string) error {
	delete(l.records, dir)
	return nil
}

func writeFile(t *testing.T, path, content string) {
	t.Helper()
	if err := os.MkdirAll(filepath.Dir(path), 0755); err != nil {
		t.Fatalf("Failed to create directory: %v", err)
	}
	if err := os.WriteFile(path, []byte(content), 0644); err != nil {
		t.Fatalf("Failed to create test file: %v", err)
	}
}

func exists(path string) bool {
	_, err := os.Stat(path)
	return err == nil
}

func contents(t *testing.T, dir string) map[string]string {
	t.Helper()
	entries, err := os.ReadDir(dir)
	if err != nil {
		t.Fatalf("Failed to read dir %s: %v", dir, err)
	}
	out := make(map[string]string)
	for _, e := range entries {
		if e.IsDir() {
			continue
		}
		data, err := os.ReadFile(filepath.Join(dir, e.Name()))
		if err != nil {
			t.Fatalf("Failed to read file: %v", err)
		}
		out[e.Name()] = string(data)
	}
	return out
}

func TestQuarantineAndRestore(t *testing.T) {
	tempDir := t.TempDir()
	origDir := filepath.Join(tempDir, "original")
	quarantineDir := filepath.Join(tempDir, "quarantine")
	restoreDir := filepath.Join(tempDir, "restore")

	file1 := filepath.Join(origDir, "file1.txt")
	file2 := filepath.Join(origDir, "file2.txt")
	writeFile(t, file1, "hello world")
	writeFile(t, file2, "hello go")

	m := NewManager(afero.NewOsFs(), nil)

	moved, err := m.Quarantine([]string{file1, file2}, quarantineDir)
	if err != nil {
		t.Fatalf("Quarantine() error = %v", err)
	}
	if len(moved) != 2 {
		t.Errorf("Expected 2 moved entries, got %d", len(moved))
	}

	if exists(file1) || exists(file2) {
		t.Error("Expected files to be moved out of the original directory")
	}
	if !exists(filepath.Join(quarantineDir, "file1.txt")) || !exists(filepath.Join(quarantineDir, "file2.txt")) {
		t.Error("Expected files in quarantine directory")
	}

	restored, err := m.Restore(quarantineDir, restoreDir)
	if err != nil {
		t.Fatalf("Restore() error = %v", err)
	}
	if len(restored) != 2 {
		t.Errorf("Expected 2 restored entries, got %d", len(restored))
	}

	if exists(quarantineDir) {
		t.Error("Expected quarantine directory to be removed after restore")
	}

	got := contents(t, restoreDir)
	if got["file1.txt"] != "hello world" || got["file2.txt"] != "hello go" {
		t.Errorf("Unexpected restored contents: %v", got)
	}
}

func TestQuarantineRestore_RoundTrip(t *testing.T) {
	root := t.TempDir()
	writeFile(t, filepath.Join(root, "a.txt"), "A")
	writeFile(t, filepath.Join(root, "b.pdf"), "B")
	writeFile(t, filepath.Join(root, "keep.txt"), "K")

	before := contents(t, root)

	m := NewManager(afero.NewOsFs(), nil)
	qdir := Dir(root)
	if _, err := m.Quarantine([]string{filepath.Join(root, "a.txt"), filepath.Join(root, "b.pdf")}, qdir); err != nil {
		t.Fatalf("Quarantine() error = %v", err)
	}
	if _, err := m.Restore(qdir, root); err != nil {
		t.Fatalf("Restore() error = %v", err)
	}

	after := contents(t, root)
	if len(before) != len(after) {
		t.Fatalf("Expected %v, got %v", before, after)
	}
	for name, content := range before {
		if after[name] != content {
			t.Errorf("File %s: expected %q, got %q", name, content, after[name])
		}
	}
	if exists(qdir) {
		t.Error("Expected quarantine directory to be gone")
	}
}

func TestQuarantine_CollisionGetsSuffix(t *testing.T) {
	root := t.TempDir()
	first := filepath.Join(root, "one", "same.txt")
	second := filepath.Join(root, "two", "same.txt")
	writeFile(t, first, "first")
	writeFile(t, second, "second")

	m := NewManager(afero.NewOsFs(), nil)
	qdir := Dir(root)

	if _, err := m.Quarantine([]string{first}, qdir); err != nil {
		t.Fatalf("Quarantine() error = %v", err)
	}
	moved, err := m.Quarantine([]string{second}, qdir)
	if err != nil {
		t.Fatalf("Quarantine() error = %v", err)
	}

	if moved[0].Name != "same_1.txt" {
		t.Errorf("Expected same_1.txt, got %s", moved[0].Name)
	}

	got := contents(t, qdir)
	if got["same.txt"] != "first" || got["same_1.txt"] != "second" {
		t.Errorf("Expected both files preserved, got %v", got)
	}
}

func TestRestore_LedgerRestoresOriginalName(t *testing.T) {
	root := t.TempDir()
	first := filepath.Join(root, "one", "same.txt")
	second := filepath.Join(root, "two", "same.txt")
	writeFile(t, first, "first")
	writeFile(t, second, "second")

	m := NewManager(afero.NewOsFs(), newMemLedger())
	qdir := Dir(root)
	target := filepath.Join(root, "restored")

	if _, err := m.Quarantine([]string{first, second}, qdir); err != nil {
		t.Fatalf("Quarantine() error = %v", err)
	}
	restored, err := m.Restore(qdir, target)
	if err != nil {
		t.Fatalf("Restore() error = %v", err)
	}

	var names []string
	for _, e := range restored {
		names = append(names, e.Name)
	}
	sort.Strings(names)

	// same_1.txt 恢复为原名，但目标中已有 same.txt，于是再次加后缀而不是覆盖
	if len(names) != 2 || names[0] != "same.txt" || names[1] != "same_1.txt" {
		t.Errorf("Unexpected restored names: %v", names)
	}
	got := contents(t, target)
	if len(got) != 2 {
		t.Errorf("Expected two files restored without overwrite, got %v", got)
	}
}

func TestRestore_BackIntoOriginalSubdirectories(t *testing.T) {
	root := t.TempDir()
	first := filepath.Join(root, "one", "same.txt")
	second := filepath.Join(root, "two", "deeper", "same.txt")
	writeFile(t, first, "first")
	writeFile(t, second, "second")

	ledger := newMemLedger()
	m := NewManager(afero.NewOsFs(), ledger)
	qdir := Dir(root)

	if _, err := m.Quarantine([]string{first, second}, qdir); err != nil {
		t.Fatalf("Quarantine() error = %v", err)
	}
	// 原来的子目录被清空删除后也要能恢复
	if err := os.RemoveAll(filepath.Join(root, "two")); err != nil {
		t.Fatalf("Failed to remove directory: %v", err)
	}

	restored, err := m.Restore(qdir, root)
	if err != nil {
		t.Fatalf("Restore() error = %v", err)
	}
	if len(restored) != 2 {
		t.Fatalf("Expected 2 restored entries, got %d", len(restored))
	}

	for path, want := range map[string]string{first: "first", second: "second"} {
		data, err := os.ReadFile(path)
		if err != nil {
			t.Errorf("Expected %s to be restored: %v", path, err)
			continue
		}
		if string(data) != want {
			t.Errorf("File %s: expected %q, got %q", path, want, string(data))
		}
	}
	if exists(qdir) {
		t.Error("Expected quarantine directory to be removed")
	}
	if len(ledger.records[absPath(qdir)]) != 0 {
		t.Errorf("Expected ledger entries to be forgotten, got %v", ledger.records)
	}
}

func TestRestoreDir(t *testing.T) {
	target := t.TempDir()
	tests := []struct {
		name     string
		original string
		want     string
	}{
		{"same directory", filepath.Join(target, "a.txt"), target},
		{"subdirectory", filepath.Join(target, "x", "y", "a.txt"), filepath.Join(target, "x", "y")},
		{"outside target", filepath.Join(filepath.Dir(target), "elsewhere", "a.txt"), target},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if got := restoreDir(target, tt.original); got != tt.want {
				t.Errorf("restoreDir() = %s, want %s", got, tt.want)
			}
		})
	}
}

func TestRestore_DoesNotOverwrite(t *testing.T) {
	root := t.TempDir()
	writeFile(t, filepath.Join(root, "sub", "a.txt"), "quarantined")

	m := NewManager(afero.NewOsFs(), nil)
	qdir := Dir(root)
	if _, err := m.Quarantine([]string{filepath.Join(root, "sub", "a.txt")}, qdir); err != nil {
		t.Fatalf("Quarantine() error = %v", err)
	}

	writeFile(t, filepath.Join(root, "a.txt"), "existing")

	if _, err := m.Restore(qdir, root); err != nil {
		t.Fatalf("Restore() error = %v", err)
	}

	got := contents(t, root)
	if got["a.txt"] != "existing" || got["a_1.txt"] != "quarantined" {
		t.Errorf("Expected existing file untouched, got %v", got)
	}
}

func TestRestore_NoQuarantineDir(t *testing.T) {
	m := NewManager(afero.NewOsFs(), nil)
	_, err := m.Restore(filepath.Join(t.TempDir(), "missing"), t.TempDir())
	if !errors.Is(err, internal.ErrNotFound) {
		t.Errorf("Expected ErrNotFound, got %v", err)
	}
}

func TestQuarantine_PartialFailure(t *testing.T) {
	root := t.TempDir()
	good := filepath.Join(root, "good.txt")
	writeFile(t, good, "ok")
	missing := filepath.Join(root, "missing.txt")
	after := filepath.Join(root, "after.txt")
	writeFile(t, after, "after")

	m := NewManager(afero.NewOsFs(), nil)
	qdir := Dir(root)

	moved, err := m.Quarantine([]string{good, missing, after}, qdir)
	if !errors.Is(err, internal.ErrIO) {
		t.Fatalf("Expected ErrIO, got %v", err)
	}
	if len(moved) != 1 || moved[0].Source != good {
		t.Errorf("Expected only the first file moved, got %v", moved)
	}
	if !exists(filepath.Join(qdir, "good.txt")) {
		t.Error("Moves made before the failure should not be rolled back")
	}
	if !exists(after) {
		t.Error("Files after the failure should be untouched")
	}
}

func TestPurge(t *testing.T) {
	root := t.TempDir()
	dup := filepath.Join(root, "dup.txt")
	writeFile(t, dup, "dummy content")

	m := NewManager(afero.NewOsFs(), newMemLedger())
	qdir := Dir(root)
	if _, err := m.Quarantine([]string{dup}, qdir); err != nil {
		t.Fatalf("Quarantine() error = %v", err)
	}

	purged, err := m.Purge(qdir)
	if err != nil {
		t.Fatalf("Purge() error = %v", err)
	}
	if len(purged) != 1 || purged[0].Size != int64(len("dummy content")) {
		t.Errorf("Expected one purged entry with size, got %v", purged)
	}
	if exists(qdir) || exists(dup) {
		t.Error("Expected nothing recoverable after purge")
	}

	// 第二次清除不是错误
	purged, err = m.Purge(qdir)
	if err != nil {
		t.Fatalf("Second Purge() error = %v", err)
	}
	if len(purged) != 0 {
		t.Errorf("Expected no entries on second purge, got %v", purged)
	}
}

func TestList(t *testing.T) {
	root := t.TempDir()
	qdir := Dir(root)
	writeFile(t, filepath.Join(qdir, "a.txt"), "aa")
	writeFile(t, filepath.Join(qdir, "b.txt"), "bbb")

	entries, err := NewManager(afero.NewOsFs(), nil).List(qdir)
	if err != nil {
		t.Fatalf("List() error = %v", err)
	}
	if len(entries) != 2 {
		t.Fatalf("Expected 2 entries, got %d", len(entries))
	}

	var total int64
	for _, e := range entries {
		total += e.Size
	}
	if total != 5 {
		t.Errorf("Expected total size 5, got %d", total)
	}
}
