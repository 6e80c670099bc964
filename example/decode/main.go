package main

import (
	"flag"
	"fmt"
	"log"
	"path/filepath"

	"github.com/sugarme/gotch"
)

// flag variables
var (
	InputPath string
	ModelPath string
	CSVPath   string
	HistPath  string
	Message   string
	Cuda      bool
	task      string
	Device    gotch.Device
)

// model parameters
var (
	ImageSize     int64   // H, side of the square input image
	MessageLength int64   // number of message bits
	Channels      int64   // hidden feature maps
	Threshold     float64 // score threshold for a '1' bit
	BatchSize     int     // images per forward pass
)

func init() {
	flag.StringVar(&InputPath, "input", "./input", "specify image file or directory of images to decode")
	flag.StringVar(&ModelPath, "model", "", "specify full path to decoder weight '.ot' file. Empty for random weights.")
	flag.StringVar(&CSVPath, "csv", "", "specify path to export decoded messages as CSV")
	flag.StringVar(&HistPath, "hist", "", "specify path to save raw score histogram (.png, .svg)")
	flag.StringVar(&Message, "message", "", "specify expected message bits to report bit error rate")
	flag.BoolVar(&Cuda, "cuda", false, "specify whether using CUDA or not.")
	flag.StringVar(&task, "task", "decode", "specify task to run: decode, model, vars")
	flag.Int64Var(&ImageSize, "size", 128, "specify input image size")
	flag.Int64Var(&MessageLength, "msglen", 64, "specify message length (perfect square)")
	flag.Int64Var(&Channels, "channels", 32, "specify decoder channels")
	flag.Float64Var(&Threshold, "threshold", 0.5, "specify score threshold for decoding bits")
	flag.IntVar(&BatchSize, "batch", 16, "specify batch size")
}

func main() {
	flag.Parse()

	InputPath = absPath(InputPath)
	if ModelPath != "" {
		ModelPath = absPath(ModelPath)
	}

	Device = gotch.CPU
	if Cuda {
		Device = gotch.CudaIfAvailable()
	}

	switch task {
	case "decode":
		runDecode()
	case "model":
		runCheckModel()
	case "vars":
		runPrintVars()
	default:
		err := fmt.Errorf("Unknown 'task' name. Please specify valid 'task' flag to run.\n")
		panic(err)
	}
}

// helper to get absolute file path
func absPath(p string) string {
	fullpath, err := filepath.Abs(p)
	if err != nil {
		log.Fatal(err)
	}
	return fullpath
}
