package decoder_test

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"github.com/sugarme/gotch"
	"github.com/sugarme/gotch/nn"
	"github.com/sugarme/gotch/ts"

	"github.com/sugarme/wmdecode/decoder"
)

func TestStrideBlocks(t *testing.T) {
	tests := []struct {
		imageSize     int64
		messageLength int64
		want          int64
	}{
		{128, 64, 4},
		{128, 256, 3},
		{256, 64, 5},
		{128, 30, 4}, // sqrt(30) floors to 5, 128/5 = 25
		{8, 64, 0},
		{4, 64, 0},
		{128, 0, 0},
		{128, -4, 0},
	}

	for _, tt := range tests {
		got := decoder.StrideBlocks(tt.imageSize, tt.messageLength)
		assert.Equalf(t, tt.want, got, "H=%v L=%v", tt.imageSize, tt.messageLength)
	}
}

func TestConfigValidate(t *testing.T) {
	assert.NoError(t, decoder.DefaultConfig().Validate())
	assert.NoError(t, decoder.Config{ImageSize: 16, MessageLength: 16, Channels: 8}.Validate())
	assert.NoError(t, decoder.Config{ImageSize: 8, MessageLength: 64, Channels: 8}.Validate())

	invalid := []decoder.Config{
		{ImageSize: 128, MessageLength: 0, Channels: 32},
		{ImageSize: 128, MessageLength: 30, Channels: 32},
		{ImageSize: 100, MessageLength: 64, Channels: 32},
		{ImageSize: 96, MessageLength: 64, Channels: 32},
		{ImageSize: 4, MessageLength: 64, Channels: 32},
		{ImageSize: 128, MessageLength: 64, Channels: 2},
	}
	for _, cfg := range invalid {
		assert.Errorf(t, cfg.Validate(), "config %+v", cfg)
	}
}

func TestDecoderForward(t *testing.T) {
	vs := nn.NewVarStore(gotch.CPU)
	net := decoder.DefaultDecoder(vs.Root())
	require.Equal(t, int64(4), net.StrideBlocks())

	batchSize := int64(2)
	image := ts.MustRand([]int64{batchSize, 3, 128, 128}, gotch.Float, gotch.CPU)
	defer image.MustDrop()

	ts.NoGrad(func() {
		msg := net.ForwardT(image, false)
		defer msg.MustDrop()
		assert.Equal(t, []int64{batchSize, 64}, msg.MustSize())
	})
}

func TestDecoderForwardNoDownsample(t *testing.T) {
	vs := nn.NewVarStore(gotch.CPU)
	cfg := decoder.Config{ImageSize: 8, MessageLength: 64, Channels: 16}
	net := decoder.New(vs.Root(), cfg)
	require.Equal(t, int64(0), net.StrideBlocks())

	image := ts.MustRand([]int64{3, 3, 8, 8}, gotch.Float, gotch.CPU)
	defer image.MustDrop()

	msg := net.ForwardT(image, false)
	defer msg.MustDrop()
	assert.Equal(t, []int64{3, 64}, msg.MustSize())
}

func TestDecoderTrainMode(t *testing.T) {
	vs := nn.NewVarStore(gotch.CPU)
	cfg := decoder.Config{ImageSize: 32, MessageLength: 16, Channels: 8}
	net := decoder.New(vs.Root(), cfg)

	image := ts.MustRand([]int64{4, 3, 32, 32}, gotch.Float, gotch.CPU)
	defer image.MustDrop()

	msg := net.ForwardT(image, true)
	defer msg.MustDrop()
	assert.Equal(t, []int64{4, 16}, msg.MustSize())
}

func TestDecoderDeterministic(t *testing.T) {
	cfg := decoder.Config{ImageSize: 32, MessageLength: 16, Channels: 8}

	vs1 := nn.NewVarStore(gotch.CPU)
	net1 := decoder.New(vs1.Root(), cfg)
	vs2 := nn.NewVarStore(gotch.CPU)
	net2 := decoder.New(vs2.Root(), cfg)
	require.NoError(t, vs2.Copy(vs1))

	image := ts.MustRand([]int64{2, 3, 32, 32}, gotch.Float, gotch.CPU)
	defer image.MustDrop()

	out1 := net1.ForwardT(image, false)
	out2 := net1.ForwardT(image, false)
	out3 := net2.ForwardT(image, false)

	v1 := out1.Float64Values()
	assert.Equal(t, v1, out2.Float64Values())
	assert.InDeltaSlice(t, v1, out3.Float64Values(), 1e-6)

	out1.MustDrop()
	out2.MustDrop()
	out3.MustDrop()
}

func TestDecoderVariables(t *testing.T) {
	vs := nn.NewVarStore(gotch.CPU)
	decoder.DefaultDecoder(vs.Root())

	vars := vs.Variables()
	for _, name := range []string{
		"message_layer.0.layers.0.weight",
		"message_layer.1.layers.0.layers.0.weight",
		"message_layer.1.layers.3.layers.0.bias",
		"message_layer.2.convolution.0.weight",
		"message_layer.2.convolution.1.running_mean",
		"message_layer.2.fc.0.weight",
		"message_layer.2.fc.2.weight",
		"message_layer.3.layers.weight",
	} {
		_, ok := vars[name]
		assert.Truef(t, ok, "missing variable %q", name)
	}

	_, ok := vars["message_layer.1.layers.4.layers.0.weight"]
	assert.False(t, ok)

	fc := vars["message_layer.2.fc.0.weight"]
	assert.Equal(t, []int64{8, 32}, fc.MustSize())
}

func TestDecodeNet(t *testing.T) {
	vs := nn.NewVarStore(gotch.CPU)
	x := ts.MustRand([]int64{2, 4, 32, 32}, gotch.Float, gotch.CPU)
	defer x.MustDrop()

	net := decoder.NewDecodeNet(vs.Root().Sub("down"), 4, 6, 3)
	assert.Equal(t, int64(3), net.Blocks())
	y := net.ForwardT(x, false)
	assert.Equal(t, []int64{2, 6, 4, 4}, y.MustSize())
	y.MustDrop()

	identity := decoder.NewDecodeNet(vs.Root().Sub("identity"), 4, 4, 0)
	assert.Equal(t, int64(0), identity.Blocks())
	z := identity.ForwardT(x, false)
	assert.Equal(t, x.MustSize(), z.MustSize())
	assert.Equal(t, x.Float64Values(), z.Float64Values())
	z.MustDrop()
}
