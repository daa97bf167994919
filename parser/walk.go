package parser

import (
	"os"
	"path/filepath"
	"strings"

	"github.com/bmatcuk/doublestar/v4"
)

// ignoreDirs are conventional directories skipped outright, adapted from
// inspector/golang/package.go's walk plus the repository marker set in
// inspector/repository/detector.go.
var ignoreDirs = map[string]bool{
	".git":         true,
	"node_modules": true,
	"vendor":       true,
	"dist":         true,
	"build":        true,
	"target":       true,
	"__pycache__":  true,
	".venv":        true,
	"venv":         true,
	".idea":        true,
	".vscode":      true,
	"bin":          true,
	"obj":          true,
}

// defaultIgnoreGlobs are extra doublestar ignore patterns, layered on top of
// ignoreDirs (grounded on standardbeagle-lci's doublestar-based ignore
// matching).
var defaultIgnoreGlobs = []string{
	"**/*.min.js",
	"**/*_pb2.py",
	"**/generated/**",
}

// binaryExts are extensions skipped without attempting to read the file.
var binaryExts = map[string]bool{
	".png": true, ".jpg": true, ".jpeg": true, ".gif": true, ".bmp": true,
	".ico": true, ".pdf": true, ".zip": true, ".tar": true, ".gz": true,
	".so": true, ".dll": true, ".dylib": true, ".exe": true, ".bin": true,
	".class": true, ".jar": true, ".woff": true, ".woff2": true, ".ttf": true,
	".eot": true, ".mp3": true, ".mp4": true, ".mov": true, ".wasm": true,
}

// WalkOptions configures the repository walk.
type WalkOptions struct {
	IgnoreGlobs []string // additional doublestar patterns, relative to root
}

// FileVisitor is called once per candidate source file, with a root-relative
// slash-separated path.
type FileVisitor func(relpath string, absPath string) error

// Walk walks root, skipping conventional ignore directories, hidden
// dot-directories, binary extensions and any IgnoreGlobs match, and invokes
// visit for every remaining regular file.
func Walk(root string, opts WalkOptions, visit FileVisitor) error {
	globs := append(append([]string{}, defaultIgnoreGlobs...), opts.IgnoreGlobs...)

	return filepath.Walk(root, func(path string, info os.FileInfo, err error) error {
		if err != nil {
			return err
		}
		rel, relErr := filepath.Rel(root, path)
		if relErr != nil {
			return relErr
		}
		rel = filepath.ToSlash(rel)

		if info.IsDir() {
			base := filepath.Base(path)
			if rel != "." && (ignoreDirs[base] || (strings.HasPrefix(base, ".") && base != ".")) {
				return filepath.SkipDir
			}
			return nil
		}

		if binaryExts[strings.ToLower(filepath.Ext(path))] {
			return nil
		}
		base := filepath.Base(path)
		if strings.HasPrefix(base, ".") {
			return nil
		}
		for _, g := range globs {
			if ok, _ := doublestar.Match(g, rel); ok {
				return nil
			}
		}

		return visit(rel, path)
	})
}
