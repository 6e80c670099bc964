// Package message converts watermark messages between bit strings,
// float slices and gotch tensors.
package message

import (
	"math/rand"
	"strings"

	"github.com/pkg/errors"
	"github.com/sugarme/gotch"
	"github.com/sugarme/gotch/ts"
)

// Parse parses a bit string such as "0110 1001" into values in {0, 1}.
// Spaces and underscores are ignored.
func Parse(s string) ([]float32, error) {
	var bits []float32
	for i, r := range s {
		switch r {
		case '0':
			bits = append(bits, 0)
		case '1':
			bits = append(bits, 1)
		case ' ', '_':
			continue
		default:
			return nil, errors.Errorf("invalid bit %q at position %v", r, i)
		}
	}

	if len(bits) == 0 {
		return nil, errors.New("empty message")
	}

	return bits, nil
}

// Format formats decoded bits (values in {0, 1}) as a bit string.
func Format(bits []float64) string {
	var sb strings.Builder
	sb.Grow(len(bits))
	for _, b := range bits {
		if b > 0.5 {
			sb.WriteByte('1')
		} else {
			sb.WriteByte('0')
		}
	}

	return sb.String()
}

// Random generates a message of n random bits.
func Random(n int, rng *rand.Rand) []float32 {
	bits := make([]float32, n)
	for i := range bits {
		bits[i] = float32(rng.Intn(2))
	}

	return bits
}

// Tensor stacks messages into a [B L] float tensor.
func Tensor(msgs [][]float32, device gotch.Device) (*ts.Tensor, error) {
	if len(msgs) == 0 {
		return nil, errors.New("no messages")
	}

	length := len(msgs[0])
	data := make([]float32, 0, len(msgs)*length)
	for i, m := range msgs {
		if len(m) != length {
			return nil, errors.Errorf("message %v has %v bits, expected %v", i, len(m), length)
		}
		data = append(data, m...)
	}

	x := ts.MustOfSlice(data).MustView([]int64{int64(len(msgs)), int64(length)}, true)

	return x.MustTo(device, true), nil
}

// Repeat returns a batch of n copies of msg.
func Repeat(msg []float32, n int) [][]float32 {
	msgs := make([][]float32, n)
	for i := range msgs {
		msgs[i] = msg
	}

	return msgs
}
