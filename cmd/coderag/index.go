package main

import (
	"context"
	"time"

	"github.com/spf13/cobra"

	"github.com/viant/coderag/annindex"
	"github.com/viant/coderag/embedder"
	"github.com/viant/coderag/errs"
	"github.com/viant/coderag/graphstore"
	"github.com/viant/coderag/job"
	"github.com/viant/coderag/journal"
)

var (
	indexCollection string
	indexGraphPath  string
	indexRecreate   bool
	indexWait       bool
)

var indexCmd = &cobra.Command{
	Use:   "index",
	Short: "Embed a parsed graph and upsert it into the vector index (spec op: index)",
	RunE:  runIndex,
}

func init() {
	indexCmd.Flags().StringVar(&indexCollection, "collection", "", "Qdrant collection name (default: $QDRANT_COLLECTION_NAME)")
	indexCmd.Flags().StringVar(&indexGraphPath, "graph-path", "", "graph.json input path (default: $DATA_DIR/graph.json)")
	indexCmd.Flags().BoolVar(&indexRecreate, "recreate", false, "drop and recreate the collection before upserting")
	indexCmd.Flags().BoolVar(&indexWait, "wait", false, "block until the job finishes instead of returning its id immediately")
}

func runIndex(cmd *cobra.Command, args []string) error {
	collection := indexCollection
	if collection == "" {
		collection = cfg.QdrantCollectionName
	}

	j := sharedRegistry().Submit(cmd.Context(), job.KindIndex, func(ctx context.Context) (any, error) {
		return runIndexPipeline(ctx, collection, outputPathOr(indexGraphPath), indexRecreate)
	})

	if indexWait {
		return emitJobFinal(waitForJob(sharedRegistry(), j.ID))
	}
	return emitJobSubmitted(j)
}

// runIndexPipeline loads graph.json, embeds every node's document, and
// upserts the resulting points into the index, recording the point↔node
// mapping and collection status sidecars.
func runIndexPipeline(ctx context.Context, collection, graphPath string, recreate bool) (map[string]any, error) {
	graph, err := graphstore.Load(graphPath)
	if err != nil {
		return nil, errs.Wrap(errs.Internal, err)
	}

	emb := newEmbedder()
	idx := newIndexClient()

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
				"node_id":    n.ID,
				"snippet":    n.Code,
				"doc":        n.Doc,
				"file":       n.RelPath,
				"start_line": n.StartLine,
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

	if err := journal.WritePointMap(pointMapPath(), pointToNode); err != nil {
		return nil, errs.Wrap(errs.Internal, err)
	}

	status := journal.Status{
		Collection:  collection,
		Model:       emb.ModelName(),
		VectorSize:  emb.Dim(),
		Distance:    "cosine",
		PointsCount: upserted,
		IndexedAt:   now(),
		Status:      journal.StatusCompleted,
	}
	if err := journal.WriteStatus(indexStatusPath(), status); err != nil {
		return nil, errs.Wrap(errs.Internal, err)
	}

	metricsRegistry().PointsIndexed.Set(float64(upserted))

	return map[string]any{
		"collection":   collection,
		"points_count": upserted,
	}, nil
}

func now() time.Time { return time.Now().UTC() }
