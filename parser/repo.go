package parser

import (
	"bufio"
	"context"
	"os"
	"path/filepath"
	"regexp"
	"strings"

	"github.com/viant/afs"
	"golang.org/x/mod/modfile"
)

// RepoInfo describes a detected repository root, adapted from
// inspector/repository/detector.go (kept near-verbatim: it already
// implements the root-detection and naming requirements here).
type RepoInfo struct {
	RootPath string
	Type     string // go, java, javascript, python, rust, ruby, php, git, unknown
	Name     string
}

var rootMarkers = []string{
	"go.mod", "pom.xml", "build.gradle", "package.json", "composer.json",
	"Cargo.toml", "pyproject.toml", "requirements.txt", "Gemfile", ".git",
}

// DetectRepo searches upward from path for a recognized project marker and
// returns information about the enclosing repository. If no marker is
// found, RootPath falls back to path itself.
func DetectRepo(path string) (*RepoInfo, error) {
	absPath, err := filepath.Abs(path)
	if err != nil {
		return nil, err
	}

	startDir := absPath
	if fi, statErr := os.Stat(absPath); statErr == nil && !fi.IsDir() {
		startDir = filepath.Dir(absPath)
	}

	root, marker := findRootMarker(startDir)
	info := &RepoInfo{Type: "unknown", RootPath: absPath}
	if root != "" {
		info.RootPath = root
		info.Type = typeForMarker(marker)
		info.Name = extractName(root, info.Type)
	}
	return info, nil
}

func findRootMarker(startDir string) (string, string) {
	dir := startDir
	for {
		for _, marker := range rootMarkers {
			if _, err := os.Stat(filepath.Join(dir, marker)); err == nil {
				return dir, marker
			}
		}
		parent := filepath.Dir(dir)
		if parent == dir {
			return "", ""
		}
		dir = parent
	}
}

func typeForMarker(marker string) string {
	switch marker {
	case "go.mod":
		return "go"
	case "pom.xml", "build.gradle":
		return "java"
	case "package.json":
		return "javascript"
	case "Cargo.toml":
		return "rust"
	case "pyproject.toml", "requirements.txt":
		return "python"
	case "Gemfile":
		return "ruby"
	case "composer.json":
		return "php"
	case ".git":
		return "git"
	default:
		return "unknown"
	}
}

func extractName(rootPath, projectType string) string {
	switch projectType {
	case "go":
		return extractGoModuleName(filepath.Join(rootPath, "go.mod"))
	case "javascript":
		return extractJSONName(filepath.Join(rootPath, "package.json"))
	default:
		return filepath.Base(rootPath)
	}
}

// extractGoModuleName reads go.mod through afs (the same DownloadWithURL
// call shape inspector/repository/detector.go already used) and falls back
// to a direct os.ReadFile + regex when that is unavailable.
func extractGoModuleName(goModPath string) string {
	fs := afs.New()
	if content, _ := fs.DownloadWithURL(context.Background(), goModPath); len(content) > 0 {
		if mod, err := modfile.Parse(goModPath, content, nil); err == nil && mod.Module != nil {
			return mod.Module.Mod.Path
		}
	}
	data, err := os.ReadFile(goModPath)
	if err != nil {
		return filepath.Base(filepath.Dir(goModPath))
	}
	m := regexp.MustCompile(`module\s+(\S+)`).FindSubmatch(data)
	if len(m) < 2 {
		return filepath.Base(filepath.Dir(goModPath))
	}
	return string(m[1])
}

func extractJSONName(pkgJSONPath string) string {
	data, err := os.ReadFile(pkgJSONPath)
	if err != nil {
		return filepath.Base(filepath.Dir(pkgJSONPath))
	}
	m := regexp.MustCompile(`"name"\s*:\s*"([^"]+)"`).FindSubmatch(data)
	if len(m) < 2 {
		return filepath.Base(filepath.Dir(pkgJSONPath))
	}
	return string(m[1])
}

// GitOrigin extracts the `origin` remote URL from a repo's .git/config, used
// to populate project metadata when a local clone is inspected directly.
func GitOrigin(gitRoot string) string {
	configPath := filepath.Join(gitRoot, ".git", "config")
	f, err := os.Open(configPath)
	if err != nil {
		return ""
	}
	defer f.Close()

	scanner := bufio.NewScanner(f)
	foundRemote := false
	for scanner.Scan() {
		line := strings.TrimSpace(scanner.Text())
		if strings.Contains(line, `[remote "origin"]`) {
			foundRemote = true
			continue
		}
		if foundRemote && strings.HasPrefix(line, "url = ") {
			return strings.TrimPrefix(line, "url = ")
		}
	}
	return ""
}
