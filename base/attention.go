package base

import (
	"github.com/sugarme/gotch/nn"
	"github.com/sugarme/gotch/ts"
)

// GCNetConfig configures a GCNet block.
type GCNetConfig struct {
	// Reduction is the bottleneck factor of the channel gate.
	Reduction int64
	// PlainProjection drops the BatchNorm after the 1x1 projection.
	PlainProjection bool
}

// DefaultGCNetConfig returns reduction=4 with conv+BN projection.
func DefaultGCNetConfig() *GCNetConfig {
	return &GCNetConfig{
		Reduction:       4,
		PlainProjection: false,
	}
}

// GCNet is a global-context channel attention block.
// Ref. https://arxiv.org/abs/1904.11492
//
// A per-channel gate in [0, 1] is computed from the globally pooled
// projection of the input and applied residually: out = x + x*gate.
type GCNet struct {
	proj *nn.SequentialT
	fc   *nn.SequentialT
}

// Gate computes the channel weights: [B Cin H W] => [B Cout].
func (m *GCNet) Gate(x *ts.Tensor, train bool) *ts.Tensor {
	y := m.proj.ForwardT(x, train)
	pooled := y.MustAdaptiveAvgPool2d([]int64{1, 1}, true)
	size := pooled.MustSize()
	flat := pooled.MustView([]int64{size[0], -1}, true)
	gate := m.fc.ForwardT(flat, train)
	flat.MustDrop()

	return gate
}

// ForwardT implement ts.ModuleT for GCNet struct.
func (m *GCNet) ForwardT(x *ts.Tensor, train bool) *ts.Tensor {
	gate := m.Gate(x, train)
	size := gate.MustSize()
	w := gate.MustView([]int64{size[0], size[1], 1, 1}, true).MustExpandAs(x, true)
	xw := x.MustMul(w, false)
	w.MustDrop()
	res := x.MustAdd(xw, false)
	xw.MustDrop()

	return res
}

// NewGCNet creates new GCNet. cIn must equal cOut for the residual scaling.
func NewGCNet(p *nn.Path, cIn, cOut int64, cfgOpt ...*GCNetConfig) *GCNet {
	cfg := DefaultGCNetConfig()
	if len(cfgOpt) > 0 {
		cfg = cfgOpt[0]
	}

	proj := nn.SeqT()
	proj.Add(Conv2d(p.Sub("convolution").Sub("0"), cIn, cOut, 1, 0, 1))
	if !cfg.PlainProjection {
		proj.Add(nn.BatchNorm2D(p.Sub("convolution").Sub("1"), cOut, nn.DefaultBatchNormConfig()))
	}

	hidden := cOut / cfg.Reduction
	fc := nn.SeqT()
	fc.Add(LinearNoBias(p.Sub("fc").Sub("0"), cOut, hidden))
	fc.AddFn(nn.NewFunc(func(xs *ts.Tensor) *ts.Tensor {
		return xs.MustSilu(false)
	}))
	fc.Add(LinearNoBias(p.Sub("fc").Sub("2"), hidden, cOut))
	fc.AddFn(nn.NewFunc(func(xs *ts.Tensor) *ts.Tensor {
		return xs.MustSigmoid(false)
	}))

	return &GCNet{
		proj: proj,
		fc:   fc,
	}
}
