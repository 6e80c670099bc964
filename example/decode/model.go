package main

import (
	"fmt"
	"log"
	"math/rand"
	"sort"

	"github.com/sugarme/gotch"
	"github.com/sugarme/gotch/nn"
	"github.com/sugarme/gotch/ts"

	"github.com/sugarme/wmdecode/decoder"
	"github.com/sugarme/wmdecode/message"
	"github.com/sugarme/wmdecode/metric"
)

func config() decoder.Config {
	cfg := decoder.Config{
		ImageSize:     ImageSize,
		MessageLength: MessageLength,
		Channels:      Channels,
	}
	if err := cfg.Validate(); err != nil {
		log.Fatal(err)
	}
	if BatchSize < 1 {
		log.Fatalf("Batch size must be at least 1. Got %v\n", BatchSize)
	}

	return cfg
}

// batches splits n items into [start, end) ranges of at most size items.
func batches(n, size int) ([][2]int, error) {
	if size < 1 {
		return nil, fmt.Errorf("batch size must be at least 1. Got %v", size)
	}

	var ranges [][2]int
	for start := 0; start < n; start += size {
		end := start + size
		if end > n {
			end = n
		}
		ranges = append(ranges, [2]int{start, end})
	}

	return ranges, nil
}

// newDecoder builds decoder and loads weights when ModelPath is set.
func newDecoder() (*nn.VarStore, *decoder.Decoder) {
	vs := nn.NewVarStore(Device)
	net := decoder.New(vs.Root(), config())

	if ModelPath != "" {
		if err := vs.Load(ModelPath); err != nil {
			log.Fatal(err)
		}
		fmt.Printf("Decoder weights loaded from %v\n", ModelPath)
	}

	return vs, net
}

// runCheckModel forwards random images through the decoder.
func runCheckModel() {
	_, net := newDecoder()
	cfg := net.Config()
	batchSize := int64(BatchSize)

	image := ts.MustRand([]int64{batchSize, 3, cfg.ImageSize, cfg.ImageSize}, gotch.Float, Device)
	rng := rand.New(rand.NewSource(1))
	target, err := message.Tensor(message.Repeat(message.Random(int(cfg.MessageLength), rng), BatchSize), Device)
	if err != nil {
		log.Fatal(err)
	}

	ts.NoGrad(func() {
		scores := net.ForwardT(image, false)
		fmt.Printf("stride blocks: %v\n", net.StrideBlocks())
		fmt.Printf("image: %v\n", image.MustSize())
		fmt.Printf("scores: %v\n", scores.MustSize())
		fmt.Printf("bit accuracy (random weights): %0.4f\n", metric.BitAccuracy(scores, target, Threshold))
		scores.MustDrop()
	})

	image.MustDrop()
	target.MustDrop()
}

func runPrintVars() {
	vs, _ := newDecoder()
	printVars(vs)
}

// printVars print variables sorted by name
func printVars(vs *nn.VarStore) {
	vars := vs.Variables()
	names := make([]string, 0, len(vars))
	for n := range vars {
		names = append(names, n)
	}
	sort.Strings(names)
	for _, n := range names {
		x := vars[n]
		fmt.Printf("%v \t\t %v\n", n, x.MustSize())
	}
}
