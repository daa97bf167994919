package parser

import (
	"fmt"
	"os"
	"path/filepath"
	"strings"

	"github.com/sirupsen/logrus"
	"github.com/viant/coderag/graphmodel"
)

// FileError records a single file's parse failure; the overall parse
// succeeds as long as at least one file succeeds.
type FileError struct {
	RelPath string
	Err     error
}

func (e *FileError) Error() string { return fmt.Sprintf("%s: %v", e.RelPath, e.Err) }

// Result is the output of ParseRepository: a complete node/edge graph plus
// any individual file failures that were logged and skipped.
type Result struct {
	Nodes      []*graphmodel.Node
	Edges      []*graphmodel.Edge
	FileErrors []*FileError

	// DecisionCounts carries each node's raw decision-construct count,
	// keyed by node id, for the Annotator to turn into cyclomatic
	// complexity. It is not part of the persisted graph schema.
	DecisionCounts map[string]int
}

// ParseRepository walks repoRoot, dispatches each file to the matching
// LanguageExtractor, and resolves call/import edges across the whole
// repository. It returns ErrNoFilesParsed if every candidate file failed.
var ErrNoFilesParsed = fmt.Errorf("parse: no files could be parsed")

func ParseRepository(factory *Factory, repoRoot string, opts WalkOptions, log *logrus.Entry) (*Result, error) {
	if log == nil {
		log = logrus.NewEntry(logrus.StandardLogger())
	}

	var allRaw []*RawNode
	var allCalls []*CallRef
	var allImports []*ImportRef
	var fileErrors []*FileError
	filesParsed := 0
	filesAttempted := 0

	walkErr := Walk(repoRoot, opts, func(relpath, absPath string) error {
		ext := strings.ToLower(filepath.Ext(absPath))
		extractor := factory.ForExt(ext)
		if extractor == nil {
			return nil // unsupported language: skipped silently
		}
		filesAttempted++

		src, err := os.ReadFile(absPath)
		if err != nil {
			fileErrors = append(fileErrors, &FileError{RelPath: relpath, Err: err})
			log.WithField("file", relpath).WithError(err).Warn("could not read file")
			return nil
		}

		result, err := extractor.Extract(relpath, src)
		if err != nil {
			fileErrors = append(fileErrors, &FileError{RelPath: relpath, Err: err})
			log.WithField("file", relpath).WithError(err).Warn("parse failed, skipping file")
			return nil
		}

		// A file-kind node is only materialized when the file actually has
		// an import to anchor: S1/S2-style single-file or import-free repos
		// must not pick up extra nodes nobody asked for.
		if len(result.Imports) > 0 {
			allRaw = append(allRaw, fileLevelNode(extractor.Language(), relpath, src))
		}
		allRaw = append(allRaw, result.Nodes...)
		allCalls = append(allCalls, result.Calls...)
		allImports = append(allImports, result.Imports...)
		filesParsed++
		return nil
	})
	if walkErr != nil {
		return nil, fmt.Errorf("walking repository: %w", walkErr)
	}
	if filesAttempted > 0 && filesParsed == 0 {
		return nil, ErrNoFilesParsed
	}

	nodes := assignIDs(allRaw)
	edges := ResolveEdges(nodes, allRaw, allCalls, allImports)

	decisions := make(map[string]int, len(nodes))
	for i, n := range nodes {
		decisions[n.ID] = allRaw[i].DecisionCount
	}

	return &Result{Nodes: nodes, Edges: edges, FileErrors: fileErrors, DecisionCounts: decisions}, nil
}

// fileLevelNode synthesizes the kind=file node representing a whole source
// file (kind ∈ {function,class,file}).
func fileLevelNode(language, relpath string, src []byte) *RawNode {
	lines := strings.Count(string(src), "\n") + 1
	name := filepath.Base(relpath)
	return &RawNode{
		Kind:     graphmodel.KindFile,
		Qualname: name,
		Name:     name,
		RelPath:  relpath,
		Start:    1,
		End:      lines,
		Code:     string(src),
		Language: language,
	}
}

// assignIDs builds the final graphmodel.Node slice, computing the canonical
// id for each raw node. Node uniqueness follows
// from the id including relpath+start_line, which is unique per file.
func assignIDs(raw []*RawNode) []*graphmodel.Node {
	nodes := make([]*graphmodel.Node, len(raw))
	for i, rn := range raw {
		nodes[i] = &graphmodel.Node{
			ID:        graphmodel.MakeID(rn.Kind, rn.Qualname, rn.RelPath, rn.Start),
			Kind:      rn.Kind,
			Name:      rn.Name,
			RelPath:   rn.RelPath,
			StartLine: rn.Start,
			EndLine:   rn.End,
			Code:      rn.Code,
			Doc:       rn.Doc,
			Language:  rn.Language,
		}
	}
	return nodes
}
