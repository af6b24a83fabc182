package app

import (
	"os"
	"path/filepath"
	"strings"

	gitignore "github.com/sabhiram/go-gitignore"

	"github.com/ludo-technologies/conscan/domain"
	"github.com/ludo-technologies/conscan/internal/analyzer"
)

// FileHelper implements domain.SourceFileReader: it collects analyzable
// source files honoring exclude patterns and, when present, .gitignore
// rules rooted at each walked directory.
type FileHelper struct {
	// RespectGitignore enables .gitignore filtering during collection
	RespectGitignore bool
}

// NewFileHelper creates a new FileHelper with gitignore filtering on
func NewFileHelper() *FileHelper {
	return &FileHelper{RespectGitignore: true}
}

// CollectSourceFiles collects analyzable files from the given paths
func (h *FileHelper) CollectSourceFiles(paths []string, recursive bool, includePatterns, excludePatterns []string) ([]string, error) {
	var files []string

	for _, path := range paths {
		info, err := os.Stat(path)
		if err != nil {
			return nil, domain.NewFileNotFoundError(path, err)
		}

		if !info.IsDir() {
			if h.IsSupportedFile(path) && !h.isExcluded(path, excludePatterns) {
				files = append(files, path)
			}
			continue
		}

		ignorer := h.loadGitignore(path)
		if recursive {
			err = filepath.Walk(path, func(filePath string, info os.FileInfo, err error) error {
				if err != nil {
					return err
				}
				if info.IsDir() {
					dirName := filepath.Base(filePath)
					for _, pattern := range excludePatterns {
						if pattern == dirName {
							return filepath.SkipDir
						}
						if matched, _ := filepath.Match(pattern, dirName); matched {
							return filepath.SkipDir
						}
					}
					return nil
				}
				if h.ignoredByGit(ignorer, path, filePath) {
					return nil
				}
				if h.IsSupportedFile(filePath) && !h.isExcluded(filePath, excludePatterns) {
					files = append(files, filePath)
				}
				return nil
			})
		} else {
			entries, readErr := os.ReadDir(path)
			if readErr != nil {
				return nil, readErr
			}
			for _, entry := range entries {
				if entry.IsDir() {
					continue
				}
				filePath := filepath.Join(path, entry.Name())
				if h.ignoredByGit(ignorer, path, filePath) {
					continue
				}
				if h.IsSupportedFile(filePath) && !h.isExcluded(filePath, excludePatterns) {
					files = append(files, filePath)
				}
			}
		}
		if err != nil {
			return nil, err
		}
	}

	return files, nil
}

// IsSupportedFile reports whether the dispatcher recognizes the file.
// Unknown extensions still analyze through the heuristic fallback when
// named explicitly, but directory walks skip them.
func (h *FileHelper) IsSupportedFile(path string) bool {
	return analyzer.DetectLanguage(path) != domain.LanguageUnknown
}

// FileExists checks if a file exists
func (h *FileHelper) FileExists(path string) (bool, error) {
	info, err := os.Stat(path)
	if err != nil {
		if os.IsNotExist(err) {
			return false, nil
		}
		return false, err
	}
	return !info.IsDir(), nil
}

// ReadFile reads file content
func (h *FileHelper) ReadFile(path string) ([]byte, error) {
	return os.ReadFile(path)
}

// loadGitignore parses the .gitignore at the walk root, if any
func (h *FileHelper) loadGitignore(root string) *gitignore.GitIgnore {
	if !h.RespectGitignore {
		return nil
	}
	ignorer, err := gitignore.CompileIgnoreFile(filepath.Join(root, ".gitignore"))
	if err != nil {
		return nil
	}
	return ignorer
}

func (h *FileHelper) ignoredByGit(ignorer *gitignore.GitIgnore, root, path string) bool {
	if ignorer == nil {
		return false
	}
	rel, err := filepath.Rel(root, path)
	if err != nil {
		return false
	}
	return ignorer.MatchesPath(rel)
}

// isExcluded checks if a path matches any exclude pattern
func (h *FileHelper) isExcluded(path string, excludePatterns []string) bool {
	for _, pattern := range excludePatterns {
		if matched, _ := filepath.Match(pattern, filepath.Base(path)); matched {
			return true
		}
		// Glob patterns like **/build/** reduce to a path-segment check
		trimmed := strings.TrimSuffix(strings.TrimPrefix(pattern, "**/"), "/**")
		if trimmed != pattern && trimmed != "" && strings.Contains(path, trimmed) {
			return true
		}
		if strings.Contains(path, pattern) {
			return true
		}
	}
	return false
}

// ResolveFilePaths returns existing files directly or collects files
// from directories.
func ResolveFilePaths(
	fileHelper *FileHelper,
	paths []string,
	recursive bool,
	includePatterns []string,
	excludePatterns []string,
) ([]string, error) {
	allFiles := true
	for _, path := range paths {
		exists, err := fileHelper.FileExists(path)
		if err != nil || !exists {
			allFiles = false
			break
		}
	}
	if allFiles {
		return paths, nil
	}
	return fileHelper.CollectSourceFiles(paths, recursive, includePatterns, excludePatterns)
}
