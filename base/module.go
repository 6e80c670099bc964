package base

import (
	"github.com/sugarme/gotch/nn"
	"github.com/sugarme/gotch/ts"
)

// Identity is a nn.Module placeholder.
// It forwards the input tensor as such.
type Identity struct{}

// Forward implement nn.Module for Identity struct
func (i *Identity) Forward(x *ts.Tensor) *ts.Tensor {
	return x.MustShallowClone()
}

// Forward implement nn.ModuleT for Identity struct.
func (i *Identity) ForwardT(x *ts.Tensor, train bool) *ts.Tensor {
	return x.MustShallowClone()
}

// NewIdentity creates a new Identity struct.
func NewIdentity() *Identity {
	return &Identity{}
}

// ConvRelu is a 3x3 convolution (padding=1) followed by a LeakyReLU.
//
// When created with initZero, the activation is skipped and the raw
// convolution output is returned. This is used for layers whose output
// range must stay unconstrained, e.g. the final message layer.
type ConvRelu struct {
	conv     *nn.Conv2D
	initZero bool
}

// ForwardT implements ts.ModuleT for ConvRelu struct.
func (c *ConvRelu) ForwardT(x *ts.Tensor, train bool) *ts.Tensor {
	out := c.conv.ForwardT(x, train)
	if c.initZero {
		return out
	}

	return out.MustLeakyRelu(true)
}

// Activated reports whether a LeakyReLU is applied after the convolution.
func (c *ConvRelu) Activated() bool {
	return !c.initZero
}

// NewConvRelu creates a ConvRelu layer: [B Cin H W] => [B Cout H/stride W/stride].
func NewConvRelu(p *nn.Path, cIn, cOut, stride int64, initZeroOpt ...bool) *ConvRelu {
	initZero := false
	if len(initZeroOpt) > 0 {
		initZero = initZeroOpt[0]
	}

	// NOTE. variable names follow the pytorch layout so converted
	// checkpoints load as is: `layers.0.weight` or `layers.weight`.
	convPath := p.Sub("layers")
	if !initZero {
		convPath = convPath.Sub("0")
	}

	return &ConvRelu{
		conv:     Conv2d(convPath, cIn, cOut, 3, 1, stride),
		initZero: initZero,
	}
}

// Conv2d creates Conv2D module.
func Conv2d(p *nn.Path, cIn, cOut, ksize, padding, stride int64) *nn.Conv2D {
	config := nn.DefaultConv2DConfig()
	config.Stride = []int64{stride, stride}
	config.Padding = []int64{padding, padding}

	return nn.NewConv2D(p, cIn, cOut, ksize, config)
}

// LinearNoBias creates a Linear module without bias.
func LinearNoBias(p *nn.Path, in, out int64) *nn.Linear {
	config := nn.DefaultLinearConfig()
	config.Bias = false

	return nn.NewLinear(p, in, out, config)
}
