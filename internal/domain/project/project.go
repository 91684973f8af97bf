package project

import (
	"io/fs"
	"os"
	"path/filepath"
	"strings"
	"sync/atomic"
)

// Project wraps one project directory exposed to the porter's tools.
// File access is restricted to clean relative paths inside the directory.
// Writes flip a dirty flag that the porter consumes to decide whether a
// compile check round is due.
type Project struct {
	path  string
	dirty atomic.Bool
}

func New(path string) *Project {
	return &Project{path: path}
}

func (p *Project) Path() string { return p.path }

// DirectoryContents hasil dari ListContents
type DirectoryContents struct {
	Files []string `json:"files"`
}

type ReadResult struct {
	Error    string `json:"error,omitempty"`
	Contents string `json:"contents,omitempty"`
}

type WriteResult struct {
	Error string `json:"error,omitempty"`
}

// ListContents lists all project files as relative paths, skipping VCS and
// build directories plus housekeeping files that carry no source meaning.
func (p *Project) ListContents() DirectoryContents {
	files := []string{}
	filepath.WalkDir(p.path, func(path string, d fs.DirEntry, err error) error {
		if err != nil {
			return nil
		}
		rel, rerr := filepath.Rel(p.path, path)
		if rerr != nil || rel == "." {
			return nil
		}
		if skipPath(rel, d.IsDir()) {
			if d.IsDir() {
				return fs.SkipDir
			}
			return nil
		}
		if !d.IsDir() {
			files = append(files, filepath.ToSlash(rel))
		}
		return nil
	})
	return DirectoryContents{Files: files}
}

// ReadFile reads a file by relative path. Errors come back as data, not as
// process failures, because the result is handed to the model as tool output.
func (p *Project) ReadFile(rel string) ReadResult {
	if !validRelPath(rel) {
		return ReadResult{Error: "Invalid path."}
	}
	data, err := os.ReadFile(filepath.Join(p.path, rel))
	if err != nil {
		return ReadResult{Error: "Cannot read file."}
	}
	return ReadResult{Contents: string(data)}
}

// WriteFile writes a file by relative path, creating parent directories as
// needed, and marks the project dirty.
func (p *Project) WriteFile(rel, contents string) WriteResult {
	if !validRelPath(rel) {
		return WriteResult{Error: "Invalid path."}
	}
	path := filepath.Join(p.path, rel)
	if parent := filepath.Dir(path); parent != "" {
		if err := os.MkdirAll(parent, 0o755); err != nil {
			return WriteResult{Error: "Cannot write file."}
		}
	}
	p.dirty.Store(true)
	if err := os.WriteFile(path, []byte(contents), 0o644); err != nil {
		return WriteResult{Error: "Cannot write file."}
	}
	return WriteResult{}
}

func (p *Project) Dirty() bool { return p.dirty.Load() }

func (p *Project) ClearDirty() { p.dirty.Store(false) }

func validRelPath(rel string) bool {
	if rel == "" {
		return false
	}
	if strings.HasPrefix(rel, "/") || strings.HasPrefix(rel, ".") {
		return false
	}
	return !strings.Contains(rel, "..")
}

func skipPath(rel string, isDir bool) bool {
	if isDir {
		return rel == ".git" || rel == "target"
	}
	switch rel {
	case ".gitignore", ".env", "Cargo.lock", "LICENSE", "LICENSE.txt":
		return true
	}
	return false
}
