package decoder

import (
	"fmt"

	"github.com/sugarme/gotch/nn"
	"github.com/sugarme/gotch/ts"

	"github.com/sugarme/wmdecode/base"
)

// DecodeNet is a stack of stride-2 ConvRelu layers. Each block halves the
// spatial resolution: [B Cin H W] => [B Cout H/2^blocks W/2^blocks].
type DecodeNet struct {
	layers ts.ModuleT
	blocks int64
}

// ForwardT implements ts.ModuleT for DecodeNet struct.
func (n *DecodeNet) ForwardT(x *ts.Tensor, train bool) *ts.Tensor {
	return n.layers.ForwardT(x, train)
}

// Blocks returns number of stride-2 layers.
func (n *DecodeNet) Blocks() int64 {
	return n.blocks
}

// NewDecodeNet creates DecodeNet. With zero blocks it is an identity.
func NewDecodeNet(p *nn.Path, cIn, cOut, blocks int64) *DecodeNet {
	if blocks <= 0 {
		return &DecodeNet{layers: base.NewIdentity(), blocks: 0}
	}

	path := p.Sub("layers")
	seq := nn.SeqT()
	seq.Add(base.NewConvRelu(path.Sub("0"), cIn, cOut, 2))
	for i := int64(1); i < blocks; i++ {
		seq.Add(base.NewConvRelu(path.Sub(fmt.Sprint(i)), cOut, cOut, 2))
	}

	return &DecodeNet{layers: seq, blocks: blocks}
}
