package app

import (
	"os"
	"path/filepath"
	"testing"
)

func writeTree(t *testing.T, root string, files map[string]string) {
	t.Helper()
	for name, content := range files {
		path := filepath.Join(root, name)
		if err := os.MkdirAll(filepath.Dir(path), 0755); err != nil {
			t.Fatalf("failed to make dir for %s: %v", name, err)
		}
		if err := os.WriteFile(path, []byte(content), 0644); err != nil {
			t.Fatalf("failed to write %s: %v", name, err)
		}
	}
}

func TestCollectSourceFilesRecursive(t *testing.T) {
	root := t.TempDir()
	writeTree(t, root, map[string]string{
		"main.py":         "x = 1\n",
		"pkg/util.py":     "y = 2\n",
		"pkg/notes.txt":   "not code\n",
		"web/index.js":    "var a = 1;\n",
		"web/view.tsx":    "export {};\n",
		"docs/README.md":  "# docs\n",
	})

	h := NewFileHelper()
	files, err := h.CollectSourceFiles([]string{root}, true, nil, nil)
	if err != nil {
		t.Fatalf("collect failed: %v", err)
	}
	if len(files) != 4 {
		t.Errorf("expected 4 source files, got %d: %v", len(files), files)
	}
}

func TestCollectSourceFilesNonRecursive(t *testing.T) {
	root := t.TempDir()
	writeTree(t, root, map[string]string{
		"main.py":     "x = 1\n",
		"pkg/util.py": "y = 2\n",
	})

	h := NewFileHelper()
	files, err := h.CollectSourceFiles([]string{root}, false, nil, nil)
	if err != nil {
		t.Fatalf("collect failed: %v", err)
	}
	if len(files) != 1 {
		t.Errorf("non-recursive walks must stay at the top level, got %v", files)
	}
}

func TestCollectSourceFilesExcludesDirs(t *testing.T) {
	root := t.TempDir()
	writeTree(t, root, map[string]string{
		"main.py":            "x = 1\n",
		"vendor/dep.py":      "v = 1\n",
		"node_modules/m.js":  "var m;\n",
	})

	h := NewFileHelper()
	files, err := h.CollectSourceFiles([]string{root}, true, nil, []string{"vendor", "node_modules"})
	if err != nil {
		t.Fatalf("collect failed: %v", err)
	}
	if len(files) != 1 || filepath.Base(files[0]) != "main.py" {
		t.Errorf("excluded directories must be skipped, got %v", files)
	}
}

func TestCollectSourceFilesRespectsGitignore(t *testing.T) {
	root := t.TempDir()
	writeTree(t, root, map[string]string{
		".gitignore":   "generated.py\n",
		"main.py":      "x = 1\n",
		"generated.py": "g = 1\n",
	})

	h := NewFileHelper()
	files, err := h.CollectSourceFiles([]string{root}, true, nil, nil)
	if err != nil {
		t.Fatalf("collect failed: %v", err)
	}
	for _, f := range files {
		if filepath.Base(f) == "generated.py" {
			t.Error("gitignored files must be skipped")
		}
	}

	h.RespectGitignore = false
	files, err = h.CollectSourceFiles([]string{root}, true, nil, nil)
	if err != nil {
		t.Fatalf("collect failed: %v", err)
	}
	if len(files) != 2 {
		t.Errorf("with gitignore off both files should collect, got %v", files)
	}
}

func TestCollectSourceFilesMissingPath(t *testing.T) {
	h := NewFileHelper()
	if _, err := h.CollectSourceFiles([]string{"/nonexistent/nowhere"}, true, nil, nil); err == nil {
		t.Fatal("expected an error for a missing path")
	}
}

func TestIsSupportedFile(t *testing.T) {
	h := NewFileHelper()

	supported := []string{"a.py", "b.js", "c.ts", "d.tsx", "e.go"}
	for _, name := range supported {
		if !h.IsSupportedFile(name) {
			t.Errorf("%s should be supported", name)
		}
	}
	for _, name := range []string{"notes.txt", "Makefile", "img.png"} {
		if h.IsSupportedFile(name) {
			t.Errorf("%s should not be supported", name)
		}
	}
}

func TestFileExistsDistinguishesDirs(t *testing.T) {
	root := t.TempDir()
	path := filepath.Join(root, "a.py")
	if err := os.WriteFile(path, []byte("x = 1\n"), 0644); err != nil {
		t.Fatal(err)
	}

	h := NewFileHelper()
	if ok, _ := h.FileExists(path); !ok {
		t.Error("expected the file to exist")
	}
	if ok, _ := h.FileExists(root); ok {
		t.Error("directories are not files")
	}
	if ok, _ := h.FileExists(filepath.Join(root, "gone.py")); ok {
		t.Error("missing paths do not exist")
	}
}

func TestResolveFilePathsDirectFiles(t *testing.T) {
	root := t.TempDir()
	writeTree(t, root, map[string]string{"a.py": "x = 1\n", "b.py": "y = 2\n"})
	a := filepath.Join(root, "a.py")
	b := filepath.Join(root, "b.py")

	h := NewFileHelper()
	resolved, err := ResolveFilePaths(h, []string{a, b}, true, nil, nil)
	if err != nil {
		t.Fatalf("resolve failed: %v", err)
	}
	if len(resolved) != 2 || resolved[0] != a {
		t.Errorf("explicit files should pass through unchanged, got %v", resolved)
	}
}

func TestResolveFilePathsDirectory(t *testing.T) {
	root := t.TempDir()
	writeTree(t, root, map[string]string{"a.py": "x = 1\n", "sub/b.py": "y = 2\n"})

	h := NewFileHelper()
	resolved, err := ResolveFilePaths(h, []string{root}, true, nil, nil)
	if err != nil {
		t.Fatalf("resolve failed: %v", err)
	}
	if len(resolved) != 2 {
		t.Errorf("expected both files collected from the directory, got %v", resolved)
	}
}
