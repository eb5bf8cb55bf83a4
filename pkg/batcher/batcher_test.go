package batcher

import (
	"os"
	"path/filepath"
	"sort"
	"testing"

	"github.com/spf13/afero"

	"github.com/Yuvraj-cyborg/deduck/internal"
	"github.com/Yuvraj-cyborg/deduck/pkg/scanner"
)

func createDummyFile(t *testing.T, path string, size int) {
	t.Helper()
	if err := os.MkdirAll(filepath.Dir(path), 0755); err != nil {
		t.Fatalf("Failed to create directory: %v", err)
	}
	if err := os.WriteFile(path, make([]byte, size), 0644); err != nil {
		t.Fatalf("Failed to create test file: %v", err)
	}
}

func TestBatch(t *testing.T) {
	tempDir := t.TempDir()

	createDummyFile(t, filepath.Join(tempDir, "report1.pdf"), 2000)
	createDummyFile(t, filepath.Join(tempDir, "report2.PDF"), 2000)
	createDummyFile(t, filepath.Join(tempDir, "image.png"), 1000)
	createDummyFile(t, filepath.Join(tempDir, "ignore.txt"), 1000)

	fs := afero.NewOsFs()
	records, err := scanner.Scan(fs, tempDir)
	if err != nil {
		t.Fatalf("Scan() error = %v", err)
	}

	result := Batch(fs, records, Options{Extensions: []string{"pdf", "png"}})

	if len(result) != 2 {
		t.Fatalf("Expected 2 batches, got %d: %v", len(result), result)
	}
	if got := len(result[Key{Ext: "pdf", Size: 2000}]); got != 2 {
		t.Errorf("Expected 2 pdf files in batch, got %d", got)
	}
	if got := len(result[Key{Ext: "png", Size: 1000}]); got != 1 {
		t.Errorf("Expected 1 png file in batch, got %d", got)
	}
	if _, ok := result[Key{Ext: "txt", Size: 1000}]; ok {
		t.Error("Expected txt files to be filtered out")
	}

	candidates := Candidates(result)
	if len(candidates) != 2 {
		t.Errorf("Expected 2 hashing candidates, got %v", candidates)
	}
}

func TestBatch_AllExtensions(t *testing.T) {
	tempDir := t.TempDir()
	createDummyFile(t, filepath.Join(tempDir, "a.go"), 10)
	createDummyFile(t, filepath.Join(tempDir, "b.go"), 10)
	createDummyFile(t, filepath.Join(tempDir, "Makefile"), 10)

	fs := afero.NewOsFs()
	records, err := scanner.Scan(fs, tempDir)
	if err != nil {
		t.Fatalf("Scan() error = %v", err)
	}

	result := Batch(fs, records, Options{AllExtensions: true})

	if got := len(result[Key{Ext: "go", Size: 10}]); got != 2 {
		t.Errorf("Expected 2 go files, got %d", got)
	}
	if got := len(result[Key{Ext: "", Size: 10}]); got != 1 {
		t.Errorf("Expected extension-less file to be batched, got %d", got)
	}
}

func TestBatch_StatFailureDropsFile(t *testing.T) {
	tempDir := t.TempDir()
	present := filepath.Join(tempDir, "present.txt")
	createDummyFile(t, present, 5)

	records := []internal.FileRecord{
		{Path: present, Size: 5, Ext: "txt"},
		{Path: filepath.Join(tempDir, "gone.txt"), Size: 5, Ext: "txt"},
	}

	result := Batch(afero.NewOsFs(), records, Options{Extensions: []string{"txt"}})

	paths := result[Key{Ext: "txt", Size: 5}]
	if len(paths) != 1 || paths[0] != present {
		t.Errorf("Expected only the present file, got %v", paths)
	}
}

// 按扩展名和大小划分的扫描结果应与 Batch 输出完全一致
func TestBatch_PartitionMatchesScan(t *testing.T) {
	tempDir := t.TempDir()
	files := map[string]int{
		"a.txt":          3,
		"b.txt":          3,
		"c.txt":          4,
		"sub/d.pdf":      3,
		"sub/deep/e.PDF": 3,
		".hidden/f.png":  7,
	}
	for name, size := range files {
		createDummyFile(t, filepath.Join(tempDir, name), size)
	}

	fs := afero.NewOsFs()
	records, err := scanner.Scan(fs, tempDir)
	if err != nil {
		t.Fatalf("Scan() error = %v", err)
	}

	expected := make(map[Key][]string)
	var exts []string
	seen := make(map[string]bool)
	for _, r := range records {
		key := Key{Ext: r.Ext, Size: r.Size}
		expected[key] = append(expected[key], r.Path)
		if !seen[r.Ext] {
			seen[r.Ext] = true
			exts = append(exts, r.Ext)
		}
	}

	result := Batch(fs, records, Options{Extensions: exts})

	if len(result) != len(expected) {
		t.Fatalf("Expected %d batches, got %d", len(expected), len(result))
	}
	for key, want := range expected {
		got := append([]string(nil), result[key]...)
		sort.Strings(got)
		sort.Strings(want)
		if len(got) != len(want) {
			t.Errorf("Batch %v: expected %v, got %v", key, want, got)
			continue
		}
		for i := range want {
			if got[i] != want[i] {
				t.Errorf("Batch %v: expected %v, got %v", key, want, got)
				break
			}
		}
	}
}
