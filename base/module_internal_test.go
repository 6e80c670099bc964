package base

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"github.com/sugarme/gotch"
	"github.com/sugarme/gotch/nn"
	"github.com/sugarme/gotch/ts"
)

func TestConvReluInitZero(t *testing.T) {
	vs := nn.NewVarStore(gotch.CPU)
	act := NewConvRelu(vs.Root().Sub("act"), 3, 4, 1)
	// raw shares the convolution weights of act.
	raw := &ConvRelu{conv: act.conv, initZero: true}
	assert.True(t, act.Activated())
	assert.False(t, raw.Activated())

	x := ts.MustRandn([]int64{1, 3, 8, 8}, gotch.Float, gotch.CPU)
	defer x.MustDrop()

	rawTs := raw.ForwardT(x, false)
	actTs := act.ForwardT(x, false)
	rawVals := rawTs.Float64Values()
	actVals := actTs.Float64Values()
	rawTs.MustDrop()
	actTs.MustDrop()

	require.Equal(t, len(rawVals), len(actVals))
	negatives := 0
	for i, v := range rawVals {
		want := v
		if v < 0 {
			negatives++
			want = 0.01 * v
		}
		assert.InDelta(t, want, actVals[i], 1e-5)
	}
	assert.Greater(t, negatives, 0, "zero-init layer must return negative values")
}

func TestConvReluInitZeroNames(t *testing.T) {
	vs := nn.NewVarStore(gotch.CPU)
	NewConvRelu(vs.Root().Sub("raw"), 3, 4, 1, true)
	NewConvRelu(vs.Root().Sub("act"), 3, 4, 1)

	vars := vs.Variables()
	for _, name := range []string{"raw.layers.weight", "raw.layers.bias", "act.layers.0.weight", "act.layers.0.bias"} {
		_, ok := vars[name]
		assert.Truef(t, ok, "missing variable %q", name)
	}
}
