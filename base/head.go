package base

import (
	"github.com/sugarme/gotch/nn"
	"github.com/sugarme/gotch/ts"
)

// NewMessageHead creates new message head (nn.SequentialT):
// a zero-init ConvRelu to a single channel followed by flattening,
// i.e. [B Cin h w] => [B h*w].
func NewMessageHead(p *nn.Path, cIn int64) *nn.SequentialT {
	seq := nn.SeqT()
	seq.Add(NewConvRelu(p, cIn, 1, 1, true))
	seq.AddFn(nn.NewFunc(func(xs *ts.Tensor) *ts.Tensor {
		return xs.MustFlatten(1, -1, false)
	}))

	return seq
}
