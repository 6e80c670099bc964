// Package report collects decoded messages and exports them as a table
// or a score histogram.
package report

import (
	"io"
	"math"
	"path/filepath"

	"github.com/go-gota/gota/dataframe"
	"github.com/go-gota/gota/series"
	"github.com/pkg/errors"
	"gonum.org/v1/gonum/floats"
	"gonum.org/v1/plot"
	"gonum.org/v1/plot/plotter"
	"gonum.org/v1/plot/vg"
)

// Result is a decoded message of one image.
type Result struct {
	File         string
	Message      string    // decoded bit string
	BitErrorRate float64   // NaN when expected message is unknown
	Scores       []float64 // raw decoder scores
}

// Stats summarises raw scores of all results.
type Stats struct {
	Count int
	Min   float64
	Max   float64
	Mean  float64
	// MeanBitErrorRate is NaN when no result has an expected message.
	MeanBitErrorRate float64
}

// Frame builds a dataframe with columns file, message, bit_error_rate.
func Frame(results []Result) dataframe.DataFrame {
	files := make([]string, len(results))
	msgs := make([]string, len(results))
	bers := make([]float64, len(results))
	for i, r := range results {
		files[i] = filepath.Base(r.File)
		msgs[i] = r.Message
		bers[i] = r.BitErrorRate
	}

	return dataframe.New(
		series.New(files, series.String, "file"),
		series.New(msgs, series.String, "message"),
		series.New(bers, series.Float, "bit_error_rate"),
	)
}

// WriteCSV writes results as CSV with header.
func WriteCSV(w io.Writer, results []Result) error {
	df := Frame(results)
	if df.Err != nil {
		return errors.Wrap(df.Err, "build result frame")
	}

	return errors.Wrap(df.WriteCSV(w), "write csv")
}

// Summary computes score statistics over all results.
func Summary(results []Result) Stats {
	var scores, bers []float64
	for _, r := range results {
		scores = append(scores, r.Scores...)
		if !math.IsNaN(r.BitErrorRate) {
			bers = append(bers, r.BitErrorRate)
		}
	}

	stats := Stats{
		Count:            len(results),
		Min:              math.NaN(),
		Max:              math.NaN(),
		Mean:             math.NaN(),
		MeanBitErrorRate: math.NaN(),
	}
	if len(scores) > 0 {
		stats.Min = floats.Min(scores)
		stats.Max = floats.Max(scores)
		stats.Mean = floats.Sum(scores) / float64(len(scores))
	}
	if len(bers) > 0 {
		stats.MeanBitErrorRate = floats.Sum(bers) / float64(len(bers))
	}

	return stats
}

// ScoreHistogram saves a histogram of all raw scores. Image format is
// taken from the file extension (png, svg, pdf...).
func ScoreHistogram(results []Result, bins int, file string) error {
	var v plotter.Values
	for _, r := range results {
		v = append(v, r.Scores...)
	}
	if len(v) == 0 {
		return errors.New("no scores to plot")
	}

	p, err := plot.New()
	if err != nil {
		return errors.Wrap(err, "new plot")
	}

	h, err := plotter.NewHist(v, bins)
	if err != nil {
		return errors.Wrap(err, "new histogram")
	}
	p.Title.Text = "Message Score Histogram"
	p.X.Label.Text = "score"
	p.Y.Label.Text = "count"
	p.Add(h)

	if err := p.Save(6*vg.Inch, 4*vg.Inch, file); err != nil {
		return errors.Wrapf(err, "save histogram %q", file)
	}

	return nil
}
