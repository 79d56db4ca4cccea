package report

import (
	"fmt"
	"io"
	"path/filepath"

	"gonum.org/v1/plot"
	"gonum.org/v1/plot/plotter"
	"gonum.org/v1/plot/vg"

	"github.com/banshee-data/cellcycle/internal/cellcycle/phasetable"
	"github.com/banshee-data/cellcycle/internal/fsutil"
	"github.com/banshee-data/cellcycle/internal/monitoring"
)

const histogramBins = 20

// WriteHistograms writes one PNG histogram of exact durations per phase into
// dir and returns the files written. Phases without exact durations are
// skipped.
func WriteHistograms(fsys fsutil.FileSystem, dir string, records []phasetable.Record) ([]string, error) {
	if err := fsys.MkdirAll(dir, 0o755); err != nil {
		return nil, fmt.Errorf("create plot directory: %w", err)
	}

	var written []string
	for _, ph := range Phases {
		vals, _ := Durations(records, ph)
		if len(vals) == 0 {
			continue
		}
		p, err := histogram(ph, vals)
		if err != nil {
			return written, err
		}
		wt, err := p.WriterTo(8*vg.Inch, 5*vg.Inch, "png")
		if err != nil {
			return written, fmt.Errorf("render %s histogram: %w", ph, err)
		}
		name := filepath.Join(dir, fmt.Sprintf("duration_%s.png", ph))
		if err := fsutil.WriteFile(fsys, name, func(w io.Writer) error {
			_, err := wt.WriteTo(w)
			return err
		}); err != nil {
			return written, err
		}
		written = append(written, name)
	}
	monitoring.Logf("wrote %d duration histograms to %s", len(written), dir)
	return written, nil
}

func histogram(ph string, vals []float64) (*plot.Plot, error) {
	p := plot.New()
	p.Title.Text = fmt.Sprintf("%s duration (n=%d)", ph, len(vals))
	p.X.Label.Text = "Frames"
	p.Y.Label.Text = "Tracks"

	bins := histogramBins
	if len(vals) < bins {
		bins = len(vals)
	}
	h, err := plotter.NewHist(plotter.Values(vals), bins)
	if err != nil {
		return nil, fmt.Errorf("build %s histogram: %w", ph, err)
	}
	h.LineStyle.Width = vg.Points(1)
	p.Add(h)
	return p, nil
}
