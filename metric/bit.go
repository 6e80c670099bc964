package metric

import (
	"github.com/sugarme/gotch"
	"github.com/sugarme/gotch/ts"
)

// DefaultThreshold rounds raw scores to the nearest of {0, 1}.
const DefaultThreshold float64 = 0.5

// Bits thresholds raw decoder scores: score > threshold => 1, otherwise 0.
// Output has the same shape as scores.
func Bits(scores *ts.Tensor, threshold float64) *ts.Tensor {
	return scores.MustGt(ts.FloatScalar(threshold), false).MustTotype(gotch.Float, true)
}

// bitErrors returns absolute difference between decoded bits and target.
func bitErrors(scores, target *ts.Tensor, threshold float64) *ts.Tensor {
	bits := Bits(scores, threshold)
	t := target.MustTotype(gotch.Float, false)
	diff := bits.MustSub(t, true).MustAbs(true)
	t.MustDrop()

	return diff
}

// BitErrorRate returns fraction of wrongly decoded bits over the whole batch.
// scores and target are [B L]; target values are in {0, 1}.
func BitErrorRate(scores, target *ts.Tensor, threshold float64) float64 {
	diff := bitErrors(scores, target, threshold)
	numel := float64(numElements(diff.MustSize()))
	errs := diff.MustSum(gotch.Double, true).Float64Values()[0]

	return errs / numel
}

// BitAccuracy returns fraction of correctly decoded bits.
func BitAccuracy(scores, target *ts.Tensor, threshold float64) float64 {
	return 1 - BitErrorRate(scores, target, threshold)
}

// PerSampleBitErrors returns bit error rate for each sample of a [B L] batch.
func PerSampleBitErrors(scores, target *ts.Tensor, threshold float64) []float64 {
	diff := bitErrors(scores, target, threshold)
	size := diff.MustSize()
	vals := diff.Float64Values()
	diff.MustDrop()

	batch := int(size[0])
	rates := make([]float64, batch)
	if batch == 0 {
		return rates
	}
	length := len(vals) / batch
	for b := 0; b < batch; b++ {
		var errs float64
		for _, v := range vals[b*length : (b+1)*length] {
			errs += v
		}
		rates[b] = errs / float64(length)
	}

	return rates
}

func numElements(size []int64) int64 {
	n := int64(1)
	for _, s := range size {
		n *= s
	}
	return n
}
