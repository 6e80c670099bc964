package decoder

import (
	"math"

	"github.com/pkg/errors"

	"github.com/sugarme/wmdecode/base"
)

// Config holds Decoder construction parameters.
type Config struct {
	ImageSize     int64 // H, side length of the square input image
	MessageLength int64 // L, must be a perfect square
	Channels      int64 // feature maps of the hidden layers
}

// DefaultConfig returns H=128, L=64, channels=32.
func DefaultConfig() Config {
	return Config{
		ImageSize:     128,
		MessageLength: 64,
		Channels:      32,
	}
}

// StrideBlocks returns number of stride-2 blocks that shrink a HxH image to
// sqrt(L) x sqrt(L): floor(log2(H / floor(sqrt(L)))).
//
// A non-positive L gives 0.
func StrideBlocks(imageSize, messageLength int64) int64 {
	if messageLength < 1 {
		return 0
	}
	side := int64(math.Sqrt(float64(messageLength)))
	ratio := imageSize / side
	if ratio < 1 {
		return 0
	}

	return int64(math.Log2(float64(ratio)))
}

// MessageSide returns side length of the final feature map.
func (c Config) MessageSide() int64 {
	return int64(math.Sqrt(float64(c.MessageLength)))
}

// Validate checks that the image size and message length compose into a
// valid forward pass. Decoder itself never calls it.
func (c Config) Validate() error {
	if c.MessageLength <= 0 {
		return errors.Errorf("message length must be positive. Got %v", c.MessageLength)
	}
	side := c.MessageSide()
	if side*side != c.MessageLength {
		return errors.Errorf("message length must be a perfect square. Got %v", c.MessageLength)
	}
	if c.ImageSize < side || c.ImageSize%side != 0 {
		return errors.Errorf("image size %v is not a multiple of message side %v", c.ImageSize, side)
	}
	ratio := c.ImageSize / side
	if ratio&(ratio-1) != 0 {
		return errors.Errorf("image size %v over message side %v is not a power of 2", c.ImageSize, side)
	}
	reduction := base.DefaultGCNetConfig().Reduction
	if c.Channels < reduction {
		return errors.Errorf("channels must be at least %v. Got %v", reduction, c.Channels)
	}

	return nil
}
