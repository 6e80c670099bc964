package decoder

import (
	"github.com/sugarme/gotch/nn"
	"github.com/sugarme/gotch/ts"

	"github.com/sugarme/wmdecode/base"
)

// Decoder extracts a watermark message from an image.
//
// Layers (pytorch names under `message_layer`):
//
//	0 - ConvRelu     [B 3 H H]   => [B C H H]
//	1 - DecodeNet    [B C H H]   => [B C h h], h = sqrt(L)
//	2 - GCNet        [B C h h]   => [B C h h]
//	3 - ConvRelu(0)  [B C h h]   => [B 1 h h] => flatten [B L]
type Decoder struct {
	config Config
	conv   *base.ConvRelu
	down   *DecodeNet
	attn   *base.GCNet
	head   *nn.SequentialT
}

// ForwardT implements ts.ModuleT for Decoder struct.
func (d *Decoder) ForwardT(x *ts.Tensor, train bool) *ts.Tensor {
	c := d.conv.ForwardT(x, train)    // [B C H H]
	down := d.down.ForwardT(c, train) // [B C h h]
	c.MustDrop()
	attn := d.attn.ForwardT(down, train) // [B C h h]
	down.MustDrop()
	msg := d.head.ForwardT(attn, train) // [B L]
	attn.MustDrop()

	return msg
}

// Config returns the construction parameters.
func (d *Decoder) Config() Config {
	return d.config
}

// StrideBlocks returns number of stride-2 blocks of the downsample stack.
func (d *Decoder) StrideBlocks() int64 {
	return d.down.Blocks()
}

// New creates a Decoder. The configuration is not validated; see
// Config.Validate.
func New(p *nn.Path, cfg Config) *Decoder {
	root := p.Sub("message_layer")
	blocks := StrideBlocks(cfg.ImageSize, cfg.MessageLength)

	return &Decoder{
		config: cfg,
		conv:   base.NewConvRelu(root.Sub("0"), 3, cfg.Channels, 1),
		down:   NewDecodeNet(root.Sub("1"), cfg.Channels, cfg.Channels, blocks),
		attn:   base.NewGCNet(root.Sub("2"), cfg.Channels, cfg.Channels),
		head:   base.NewMessageHead(root.Sub("3"), cfg.Channels),
	}
}

// DefaultDecoder creates Decoder with default values.
func DefaultDecoder(p *nn.Path) *Decoder {
	return New(p, DefaultConfig())
}
