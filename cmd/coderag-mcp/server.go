package main

import (
	"context"
	"path/filepath"

	"github.com/google/jsonschema-go/jsonschema"
	"github.com/modelcontextprotocol/go-sdk/mcp"
	"github.com/sirupsen/logrus"

	"github.com/viant/coderag/annindex"
	"github.com/viant/coderag/config"
	"github.com/viant/coderag/embedder"
	"github.com/viant/coderag/job"
)

// Server binds the same ops cmd/coderag exposes over cobra to MCP tools, so
// a chat client can parse/index/search a repository through one running
// process instead of shelling out per call.
type Server struct {
	cfg  *config.Config
	log  *logrus.Entry
	mcp  *mcp.Server
	jobs *job.Registry
}

func newServer(cfg *config.Config, log *logrus.Entry) *Server {
	s := &Server{
		cfg:  cfg,
		log:  log,
		jobs: job.New(),
	}
	if store, err := job.OpenStore(filepath.Join(cfg.DataDir, "jobs.db")); err != nil {
		log.WithError(err).Warn("job: durable store unavailable, job history is in-memory only")
	} else if err := s.jobs.AttachStore(store); err != nil {
		log.WithError(err).Warn("job: failed to restore job history from store")
	}
	s.mcp = mcp.NewServer(&mcp.Implementation{
		Name:    "coderag-mcp",
		Version: "0.1.0",
	}, nil)
	s.registerTools()
	return s
}

func (s *Server) graphPath() string      { return filepath.Join(s.cfg.DataDir, "graph.json") }
func (s *Server) pointMapPath() string   { return filepath.Join(s.cfg.DataDir, "qdrant_map.json") }
func (s *Server) indexStatusPath() string { return filepath.Join(s.cfg.DataDir, "index_status.json") }

func (s *Server) newEmbedder() embedder.Embedder {
	if s.cfg.ModelName == "" || s.cfg.ModelName == "local-hashing-trick-v1" {
		return embedder.NewLocalEmbedder(384)
	}
	return embedder.NewOpenAIEmbedder(s.cfg.ModelName)
}

func (s *Server) newIndexClient() *annindex.Client {
	return annindex.NewClient(s.cfg.QdrantURL)
}

// Run blocks, serving MCP tool calls over stdio until ctx is cancelled.
func (s *Server) Run(ctx context.Context) error {
	return s.mcp.Run(ctx, &mcp.StdioTransport{})
}

func objectSchema(props map[string]*jsonschema.Schema, required ...string) *jsonschema.Schema {
	return &jsonschema.Schema{Type: "object", Properties: props, Required: required}
}

func stringProp(desc string) *jsonschema.Schema  { return &jsonschema.Schema{Type: "string", Description: desc} }
func intProp(desc string) *jsonschema.Schema     { return &jsonschema.Schema{Type: "integer", Description: desc} }
func boolProp(desc string) *jsonschema.Schema    { return &jsonschema.Schema{Type: "boolean", Description: desc} }
