package pipeline

import (
	"context"
	"fmt"
	"runtime"

	"golang.org/x/sync/errgroup"

	"github.com/banshee-data/cellcycle/internal/cellcycle/arrest"
	"github.com/banshee-data/cellcycle/internal/cellcycle/lineage"
	"github.com/banshee-data/cellcycle/internal/cellcycle/phase"
	"github.com/banshee-data/cellcycle/internal/cellcycle/phasetable"
	"github.com/banshee-data/cellcycle/internal/cellcycle/resolve"
	"github.com/banshee-data/cellcycle/internal/monitoring"
)

// Options configures one run.
type Options struct {
	Params resolve.Params
	// G2Threshold is the fixed arrest intensity cutoff. Nil selects
	// clustering.
	G2Threshold *float64
	// Workers bounds concurrent lineage resolution. Zero or less uses
	// runtime.NumCPU().
	Workers int
}

// DefaultOptions returns options with default parameters and clustering.
func DefaultOptions() Options {
	return Options{Params: resolve.DefaultParams()}
}

func (o Options) workers() int {
	if o.Workers > 0 {
		return o.Workers
	}
	return runtime.NumCPU()
}

// Result holds everything derived by a run.
type Result struct {
	// Tracks is the resolved track table ordered by (trackId, frame).
	Tracks      []phase.ResolvedRow
	Phases      []phasetable.Record
	Annotations []lineage.AnnRecord
	Diagnostics resolve.Diagnostics
	Arrest      arrest.Record
	// ImpreciseExits lists daughters whose mitosis exit fell back to their
	// first frame.
	ImpreciseExits []int
}

// Run resolves every lineage in rows and builds the phase table.
func Run(ctx context.Context, rows []phase.TrackRow, opts Options) (*Result, error) {
	classifier, err := arrest.NewClassifier(opts.G2Threshold)
	if err != nil {
		return nil, err
	}

	idx, err := lineage.Build(rows)
	if err != nil {
		return nil, fmt.Errorf("build lineage index: %w", err)
	}

	lineages, err := resolveLineages(ctx, idx, opts)
	if err != nil {
		return nil, err
	}

	var resolved []phase.ResolvedRow
	var diag resolve.Diagnostics
	for _, l := range lineages {
		resolved = append(resolved, l.Rows...)
		diag = diag.Merge(l.Diagnostics)
	}
	phase.SortResolved(resolved)
	diag.Log()

	rec, err := classifier.Classify(resolved, diag.ArrestCandidates)
	if err != nil {
		return nil, fmt.Errorf("classify arrest: %w", err)
	}
	resolved = arrest.Apply(resolved, rec)

	monitoring.Logf("resolved %d tracks in %d lineages (%d arrested)", idx.Len(), len(lineages), len(rec))

	return &Result{
		Tracks:         resolved,
		Phases:         phasetable.Build(idx, resolved, diag, opts.Params.MinTrack),
		Annotations:    idx.Annotations(),
		Diagnostics:    diag,
		Arrest:         rec,
		ImpreciseExits: idx.ImpreciseExits(),
	}, nil
}

// resolveLineages resolves each lineage root concurrently. Results keep the
// order of idx.Roots().
func resolveLineages(ctx context.Context, idx *lineage.Index, opts Options) ([]resolve.LineageResult, error) {
	roots := idx.Roots()
	out := make([]resolve.LineageResult, len(roots))
	w := resolve.NewWalker(idx, opts.Params)

	g, ctx := errgroup.WithContext(ctx)
	g.SetLimit(opts.workers())
	for i, root := range roots {
		i, root := i, root
		g.Go(func() error {
			if err := ctx.Err(); err != nil {
				return err
			}
			res, err := w.ResolveLineage(root)
			if err != nil {
				return fmt.Errorf("resolve lineage %d: %w", root, err)
			}
			out[i] = res
			return nil
		})
	}
	if err := g.Wait(); err != nil {
		return nil, err
	}
	return out, nil
}
