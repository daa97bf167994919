package main

import (
	"context"
	"encoding/json"
	"os"
	"time"

	"github.com/google/jsonschema-go/jsonschema"
	"github.com/modelcontextprotocol/go-sdk/mcp"

	"github.com/viant/coderag/annotate"
	"github.com/viant/coderag/embedder"
	"github.com/viant/coderag/errs"
	"github.com/viant/coderag/graphstore"
	"github.com/viant/coderag/job"
	"github.com/viant/coderag/journal"
	"github.com/viant/coderag/parser"
	"github.com/viant/coderag/parser/fetch"
	"github.com/viant/coderag/query"
)

// registerTools binds every service-surface op to an MCP tool.
func (s *Server) registerTools() {
	s.mcp.AddTool(&mcp.Tool{
		Name:        "parse",
		Description: "Parse a local or remote repository into a program graph and persist graph.json.",
		InputSchema: objectSchema(map[string]*jsonschema.Schema{
			"repo_path": stringProp("local repository path"),
			"repo_url":  stringProp("remote repository URL or owner/repo slug"),
			"branch":    stringProp("branch to fetch when repo_url is set (default main)"),
		}),
	}, s.handleParse)

	s.mcp.AddTool(&mcp.Tool{
		Name:        "index",
		Description: "Embed a parsed graph and upsert it into the vector index.",
		InputSchema: objectSchema(map[string]*jsonschema.Schema{
			"collection": stringProp("Qdrant collection name"),
			"recreate":   boolProp("drop and recreate the collection before upserting"),
		}),
	}, s.handleIndex)

	s.mcp.AddTool(&mcp.Tool{
		Name:        "parse_and_index",
		Description: "Parse a repository and index the resulting graph in one job.",
		InputSchema: objectSchema(map[string]*jsonschema.Schema{
			"repo_path":  stringProp("local repository path"),
			"repo_url":   stringProp("remote repository URL or owner/repo slug"),
			"branch":     stringProp("branch to fetch when repo_url is set (default main)"),
			"collection": stringProp("Qdrant collection name"),
			"recreate":   boolProp("drop and recreate the collection before upserting"),
		}),
	}, s.handleParseAndIndex)

	s.mcp.AddTool(&mcp.Tool{
		Name:        "search",
		Description: "Semantic search over an indexed graph.",
		InputSchema: objectSchema(map[string]*jsonschema.Schema{
			"query":      stringProp("natural-language search query"),
			"top_k":      intProp("number of results to return"),
			"collection": stringProp("Qdrant collection name"),
		}, "query"),
	}, s.handleSearch)

	s.mcp.AddTool(&mcp.Tool{
		Name:        "analyze",
		Description: "Search and assemble a minimum-hop answer path with a structured summary.",
		InputSchema: objectSchema(map[string]*jsonschema.Schema{
			"query":      stringProp("natural-language query"),
			"top_k":      intProp("number of candidate hits to consider"),
			"collection": stringProp("Qdrant collection name"),
		}, "query"),
	}, s.handleAnalyze)

	s.mcp.AddTool(&mcp.Tool{
		Name:        "status",
		Description: "Report a job's current state.",
		InputSchema: objectSchema(map[string]*jsonschema.Schema{
			"job_id": stringProp("job id returned by parse/index/parse_and_index"),
		}, "job_id"),
	}, s.handleStatus)

	s.mcp.AddTool(&mcp.Tool{
		Name:        "list_jobs",
		Description: "List every retained job, bucketed by status.",
		InputSchema: objectSchema(map[string]*jsonschema.Schema{}),
	}, s.handleListJobs)

	s.mcp.AddTool(&mcp.Tool{
		Name:        "delete_job",
		Description: "Remove a retained job record.",
		InputSchema: objectSchema(map[string]*jsonschema.Schema{
			"job_id": stringProp("job id to remove"),
		}, "job_id"),
	}, s.handleDeleteJob)

	s.mcp.AddTool(&mcp.Tool{
		Name:        "list_collections",
		Description: "List collections known to the vector index.",
		InputSchema: objectSchema(map[string]*jsonschema.Schema{}),
	}, s.handleListCollections)

	s.mcp.AddTool(&mcp.Tool{
		Name:        "health",
		Description: "Report service liveness and active job count.",
		InputSchema: objectSchema(map[string]*jsonschema.Schema{}),
	}, s.handleHealth)
}

func jsonResult(v any) (*mcp.CallToolResult, error) {
	data, err := json.Marshal(v)
	if err != nil {
		return nil, err
	}
	return &mcp.CallToolResult{Content: []mcp.Content{&mcp.TextContent{Text: string(data)}}}, nil
}

func errorResult(err error) (*mcp.CallToolResult, error) {
	kind := errs.KindOf(err)
	return jsonResult(map[string]any{
		"success": false,
		"error":   map[string]any{"kind": kind, "message": err.Error()},
	})
}

type parseArgs struct {
	RepoPath string `json:"repo_path"`
	RepoURL  string `json:"repo_url"`
	Branch   string `json:"branch"`
}

func (s *Server) handleParse(ctx context.Context, req *mcp.CallToolRequest) (*mcp.CallToolResult, error) {
	var args parseArgs
	if err := json.Unmarshal(req.Params.Arguments, &args); err != nil {
		return errorResult(errs.Wrap(errs.InvalidInput, err))
	}
	if args.Branch == "" {
		args.Branch = "main"
	}
	if args.RepoPath == "" && args.RepoURL == "" {
		return errorResult(errs.New(errs.InvalidInput, "one of repo_path or repo_url is required"))
	}

	j := s.jobs.Submit(ctx, job.KindParse, func(ctx context.Context) (any, error) {
		return s.runParsePipeline(ctx, args.RepoPath, args.RepoURL, args.Branch, s.graphPath())
	})
	return jsonResult(map[string]any{"job_id": j.ID, "status": "processing"})
}

type indexArgs struct {
	Collection string `json:"collection"`
	Recreate   bool   `json:"recreate"`
}

func (s *Server) handleIndex(ctx context.Context, req *mcp.CallToolRequest) (*mcp.CallToolResult, error) {
	var args indexArgs
	if err := json.Unmarshal(req.Params.Arguments, &args); err != nil {
		return errorResult(errs.Wrap(errs.InvalidInput, err))
	}
	collection := args.Collection
	if collection == "" {
		collection = s.cfg.QdrantCollectionName
	}

	j := s.jobs.Submit(ctx, job.KindIndex, func(ctx context.Context) (any, error) {
		return s.runIndexPipeline(ctx, collection, s.graphPath(), args.Recreate)
	})
	return jsonResult(map[string]any{"job_id": j.ID, "status": "processing"})
}

type parseAndIndexArgs struct {
	RepoPath   string `json:"repo_path"`
	RepoURL    string `json:"repo_url"`
	Branch     string `json:"branch"`
	Collection string `json:"collection"`
	Recreate   bool   `json:"recreate"`
}

func (s *Server) handleParseAndIndex(ctx context.Context, req *mcp.CallToolRequest) (*mcp.CallToolResult, error) {
	var args parseAndIndexArgs
	if err := json.Unmarshal(req.Params.Arguments, &args); err != nil {
		return errorResult(errs.Wrap(errs.InvalidInput, err))
	}
	if args.Branch == "" {
		args.Branch = "main"
	}
	if args.RepoPath == "" && args.RepoURL == "" {
		return errorResult(errs.New(errs.InvalidInput, "one of repo_path or repo_url is required"))
	}
	collection := args.Collection
	if collection == "" {
		collection = s.cfg.QdrantCollectionName
	}

	j := s.jobs.Submit(ctx, job.KindParseAndIndex, func(ctx context.Context) (any, error) {
		if _, err := s.runParsePipeline(ctx, args.RepoPath, args.RepoURL, args.Branch, s.graphPath()); err != nil {
			return nil, err
		}
		return s.runIndexPipeline(ctx, collection, s.graphPath(), args.Recreate)
	})
	return jsonResult(map[string]any{"job_id": j.ID, "status": "processing"})
}

type searchArgs struct {
	Query      string `json:"query"`
	TopK       int    `json:"top_k"`
	Collection string `json:"collection"`
}

func (s *Server) handleSearch(ctx context.Context, req *mcp.CallToolRequest) (*mcp.CallToolResult, error) {
	var args searchArgs
	if err := json.Unmarshal(req.Params.Arguments, &args); err != nil {
		return errorResult(errs.Wrap(errs.InvalidInput, err))
	}
	if args.TopK == 0 {
		args.TopK = 10
	}
	collection := args.Collection
	if collection == "" {
		collection = s.cfg.QdrantCollectionName
	}

	graph, err := graphstore.Load(s.graphPath())
	if err != nil {
		graph = graphstore.New(nil, nil)
	}
	engine := query.New(s.newEmbedder(), s.newIndexClient(), graph, nil)

	hits, err := engine.Search(ctx, args.Query, args.TopK, collection)
	if err != nil {
		return errorResult(err)
	}
	return jsonResult(map[string]any{
		"results":       hits,
		"query":         args.Query,
		"total_results": len(hits),
	})
}

type analyzeArgs struct {
	Query      string `json:"query"`
	TopK       int    `json:"top_k"`
	Collection string `json:"collection"`
}

func (s *Server) handleAnalyze(ctx context.Context, req *mcp.CallToolRequest) (*mcp.CallToolResult, error) {
	var args analyzeArgs
	if err := json.Unmarshal(req.Params.Arguments, &args); err != nil {
		return errorResult(errs.Wrap(errs.InvalidInput, err))
	}
	if args.TopK == 0 {
		args.TopK = 10
	}
	collection := args.Collection
	if collection == "" {
		collection = s.cfg.QdrantCollectionName
	}

	graph, err := graphstore.Load(s.graphPath())
	if err != nil {
		graph = graphstore.New(nil, nil)
	}

	var summarizer query.Summarizer
	if s.cfg.ModelName != "" && s.cfg.ModelName != "local-hashing-trick-v1" {
		summarizer = query.NewOpenAISummarizer(s.cfg.ModelName)
	}
	engine := query.New(s.newEmbedder(), s.newIndexClient(), graph, summarizer)

	start := time.Now()
	answer, err := engine.Analyze(ctx, args.Query, args.TopK, collection)
	elapsed := time.Since(start)
	if err != nil {
		return errorResult(err)
	}

	// processing_time is reported here at the transport boundary, not inside
	// query.Answer: wall-clock duration varies run to run, and the engine's
	// determinism guarantee covers the Answer content only. Kept consistent
	// with cmd/coderag's analyze response shape.
	resp := struct {
		*query.Answer
		ProcessingTime float64 `json:"processing_time"`
	}{Answer: answer, ProcessingTime: elapsed.Seconds()}
	return jsonResult(resp)
}

type jobIDArgs struct {
	JobID string `json:"job_id"`
}

func (s *Server) handleStatus(ctx context.Context, req *mcp.CallToolRequest) (*mcp.CallToolResult, error) {
	var args jobIDArgs
	if err := json.Unmarshal(req.Params.Arguments, &args); err != nil {
		return errorResult(errs.Wrap(errs.InvalidInput, err))
	}
	j, ok := s.jobs.Status(args.JobID)
	if !ok {
		return errorResult(errs.New(errs.NotFound, "job "+args.JobID+" not found"))
	}
	return jsonResult(j)
}

func (s *Server) handleListJobs(ctx context.Context, req *mcp.CallToolRequest) (*mcp.CallToolResult, error) {
	return jsonResult(s.jobs.List())
}

func (s *Server) handleDeleteJob(ctx context.Context, req *mcp.CallToolRequest) (*mcp.CallToolResult, error) {
	var args jobIDArgs
	if err := json.Unmarshal(req.Params.Arguments, &args); err != nil {
		return errorResult(errs.Wrap(errs.InvalidInput, err))
	}
	return jsonResult(map[string]any{"ok": s.jobs.Delete(args.JobID)})
}

func (s *Server) handleListCollections(ctx context.Context, req *mcp.CallToolRequest) (*mcp.CallToolResult, error) {
	collections, err := s.newIndexClient().ListCollections(ctx)
	if err != nil {
		return errorResult(err)
	}
	return jsonResult(map[string]any{"collections": collections})
}

func (s *Server) handleHealth(ctx context.Context, req *mcp.CallToolRequest) (*mcp.CallToolResult, error) {
	list := s.jobs.List()
	return jsonResult(map[string]any{
		"status":      "ok",
		"active_jobs": list.Active,
	})
}

// runParsePipeline mirrors cmd/coderag's parse pipeline so both transports
// share identical semantics for the same op.
func (s *Server) runParsePipeline(ctx context.Context, repoPath, repoURL, branch, outputPath string) (map[string]any, error) {
	root := repoPath
	if root == "" {
		if err := job.RunPhase(ctx, job.TimeoutFetch, func(ctx context.Context) error {
			f := fetch.New(os.Getenv("GITHUB_TOKEN"))
			local, err := f.Fetch(ctx, repoURL, branch, s.cfg.TmpDir)
			if err != nil {
				return err
			}
			root = local
			return nil
		}); err != nil {
			return nil, err
		}
	}

	factory := parser.DefaultFactory()
	result, err := parser.ParseRepository(factory, root, parser.WalkOptions{}, s.log)
	if err != nil {
		return nil, errs.Wrap(errs.ParseFailed, err)
	}
	annotate.Annotate(result.Nodes, result.Edges, result.DecisionCounts)

	graph := graphstore.New(result.Nodes, result.Edges)
	if err := graph.Save(outputPath); err != nil {
		return nil, errs.Wrap(errs.Internal, err)
	}

	return map[string]any{
		"output_path": outputPath,
		"node_count":  graph.NodeCount(),
		"edge_count":  graph.EdgeCount(),
		"file_errors": len(result.FileErrors),
	}, nil
}

// runIndexPipeline mirrors cmd/coderag's index pipeline.
func (s *Server) runIndexPipeline(ctx context.Context, collection, graphPath string, recreate bool) (map[string]any, error) {
	graph, err := graphstore.Load(graphPath)
	if err != nil {
		return nil, errs.Wrap(errs.Internal, err)
	}

	emb := s.newEmbedder()
	idx := s.newIndexClient()
	if err := idx.EnsureCollection(ctx, collection, emb.Dim(), recreate); err != nil {
		return nil, errs.Wrap(errs.IndexUnavailable, err)
	}

	nodes := graph.Nodes()
	docs := make([]string, len(nodes))
	for i, n := range nodes {
		docs[i] = embedder.MakeDocument(n)
	}

	var vectors [][]float32
	if err := job.RunPhase(ctx, job.TimeoutEmbed, func(ctx context.Context) error {
		v, err := emb.Embed(ctx, docs)
		if err != nil {
			return errs.Wrap(errs.EmbedFailed, err)
		}
		vectors = v
		return nil
	}); err != nil {
		return nil, err
	}

	points := make([]annindex.Point, len(nodes))
	pointToNode := make(map[uint64]string, len(nodes))
	for i, n := range nodes {
		id := uint64(i + 1)
		points[i] = annindex.Point{
			ID:     id,
			Vector: vectors[i],
			Payload: map[string]any{
				"node_id": n.ID, "snippet": n.Code, "doc": n.Doc,
				"file": n.RelPath, "start_line": n.StartLine,
			},
		}
		pointToNode[id] = n.ID
	}

	var upserted int
	if err := job.RunPhase(ctx, job.TimeoutUpsert, func(ctx context.Context) error {
		n, err := idx.Upsert(ctx, collection, points)
		if err != nil {
			return errs.Wrap(errs.IndexUnavailable, err)
		}
		upserted = n
		return nil
	}); err != nil {
		return nil, err
	}

	if err := journal.WritePointMap(s.pointMapPath(), pointToNode); err != nil {
		return nil, errs.Wrap(errs.Internal, err)
	}

	status := journal.Status{
		Collection: collection, Model: emb.ModelName(), VectorSize: emb.Dim(),
		Distance: "cosine", PointsCount: upserted, IndexedAt: timeNowUTC(),
		Status: journal.StatusCompleted,
	}
	if err := journal.WriteStatus(s.indexStatusPath(), status); err != nil {
		return nil, errs.Wrap(errs.Internal, err)
	}

	return map[string]any{"collection": collection, "points_count": upserted}, nil
}

func timeNowUTC() time.Time { return time.Now().UTC() }
