package main

import (
	"fmt"
	"log"
	"math"
	"os"
	"path/filepath"
	"time"

	"github.com/sugarme/gotch/ts"

	"github.com/sugarme/wmdecode/decoder"
	"github.com/sugarme/wmdecode/imageio"
	"github.com/sugarme/wmdecode/message"
	"github.com/sugarme/wmdecode/metric"
	"github.com/sugarme/wmdecode/report"
)

func runDecode() {
	start := time.Now()
	_, net := newDecoder()
	cfg := net.Config()

	var expected []float32
	if Message != "" {
		var err error
		expected, err = message.Parse(Message)
		if err != nil {
			log.Fatal(err)
		}
		if int64(len(expected)) != cfg.MessageLength {
			log.Fatalf("Expected message of %v bits. Got %v\n", cfg.MessageLength, len(expected))
		}
	}

	files, err := imageio.List(InputPath)
	if err != nil {
		log.Fatal(err)
	}

	ranges, err := batches(len(files), BatchSize)
	if err != nil {
		log.Fatal(err)
	}

	var results []report.Result
	for _, r := range ranges {
		batch, err := decodeBatch(net, files[r[0]:r[1]], expected)
		if err != nil {
			log.Fatal(err)
		}
		results = append(results, batch...)
	}

	for _, r := range results {
		if math.IsNaN(r.BitErrorRate) {
			fmt.Printf("%v\t%v\n", filepath.Base(r.File), r.Message)
			continue
		}
		fmt.Printf("%v\t%v\tBER: %0.4f\n", filepath.Base(r.File), r.Message, r.BitErrorRate)
	}

	stats := report.Summary(results)
	fmt.Printf("Decoded %v images in %0.2fs - scores min: %0.4f max: %0.4f mean: %0.4f\n",
		stats.Count, time.Since(start).Seconds(), stats.Min, stats.Max, stats.Mean)
	if !math.IsNaN(stats.MeanBitErrorRate) {
		fmt.Printf("Mean bit error rate: %0.4f\n", stats.MeanBitErrorRate)
	}

	if CSVPath != "" {
		f, err := os.Create(CSVPath)
		if err != nil {
			log.Fatal(err)
		}
		if err := report.WriteCSV(f, results); err != nil {
			log.Fatal(err)
		}
		if err := f.Close(); err != nil {
			log.Fatal(err)
		}
		fmt.Printf("Results saved to %v\n", CSVPath)
	}

	if HistPath != "" {
		if err := report.ScoreHistogram(results, 20, HistPath); err != nil {
			log.Fatal(err)
		}
		fmt.Printf("Score histogram saved to %v\n", HistPath)
	}
}

// decodeBatch decodes a batch of image files. BitErrorRate is set when
// expected message is not empty.
func decodeBatch(net *decoder.Decoder, files []string, expected []float32) ([]report.Result, error) {
	cfg := net.Config()
	image, err := imageio.Batch(files, int(cfg.ImageSize), Device)
	if err != nil {
		return nil, err
	}
	defer image.MustDrop()

	var (
		scoreVals []float64
		bitVals   []float64
		bers      []float64
	)
	ts.NoGrad(func() {
		scores := net.ForwardT(image, false)
		bits := metric.Bits(scores, Threshold)
		scoreVals = scores.Float64Values()
		bitVals = bits.Float64Values()
		bits.MustDrop()

		if len(expected) > 0 {
			target, terr := message.Tensor(message.Repeat(expected, len(files)), Device)
			if terr != nil {
				err = terr
			} else {
				bers = metric.PerSampleBitErrors(scores, target, Threshold)
				target.MustDrop()
			}
		}
		scores.MustDrop()
	})
	if err != nil {
		return nil, err
	}

	length := int(cfg.MessageLength)
	results := make([]report.Result, len(files))
	for i, f := range files {
		ber := math.NaN()
		if bers != nil {
			ber = bers[i]
		}
		results[i] = report.Result{
			File:         f,
			Message:      message.Format(bitVals[i*length : (i+1)*length]),
			BitErrorRate: ber,
			Scores:       scoreVals[i*length : (i+1)*length],
		}
	}

	return results, nil
}
