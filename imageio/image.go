// Package imageio prepares watermarked images as decoder input tensors.
package imageio

import (
	"image"
	"os"
	"path/filepath"
	"sort"
	"strings"

	"github.com/chai2010/tiff"
	"github.com/disintegration/imaging"
	"github.com/nfnt/resize"
	"github.com/pkg/errors"
	"github.com/sugarme/gotch"
	"github.com/sugarme/gotch/ts"
	"golang.org/x/image/draw"
)

// Read reads image from file.
func Read(filename string) (image.Image, error) {
	ext := strings.ToLower(filepath.Ext(filename))
	switch ext {
	case ".png", ".jpg", ".jpeg", ".gif", ".bmp":
		img, err := imaging.Open(filename, imaging.AutoOrientation(true))
		if err != nil {
			return nil, errors.Wrapf(err, "read image %q", filename)
		}
		return img, nil
	case ".tiff", ".tif":
		f, err := os.Open(filename)
		if err != nil {
			return nil, errors.Wrapf(err, "read image %q", filename)
		}
		defer f.Close()

		img, err := tiff.Decode(f)
		if err != nil {
			return nil, errors.Wrapf(err, "decode tiff %q", filename)
		}
		return img, nil
	default:
		return nil, errors.Errorf("unsupported image format: %v", ext)
	}
}

// IsImage reports whether file extension is one Read can decode.
func IsImage(filename string) bool {
	switch strings.ToLower(filepath.Ext(filename)) {
	case ".png", ".jpg", ".jpeg", ".gif", ".bmp", ".tiff", ".tif":
		return true
	}
	return false
}

// List returns image files at path. A file path is returned as is;
// a directory is listed (non-recursive) in name order.
func List(path string) ([]string, error) {
	info, err := os.Stat(path)
	if err != nil {
		return nil, errors.Wrapf(err, "stat %q", path)
	}
	if !info.IsDir() {
		return []string{path}, nil
	}

	entries, err := os.ReadDir(path)
	if err != nil {
		return nil, errors.Wrapf(err, "list %q", path)
	}
	var files []string
	for _, e := range entries {
		if e.IsDir() || !IsImage(e.Name()) {
			continue
		}
		files = append(files, filepath.Join(path, e.Name()))
	}
	sort.Strings(files)

	if len(files) == 0 {
		return nil, errors.Errorf("no image found in %q", path)
	}

	return files, nil
}

// Square center-crops image to a square of its shorter side and resizes it
// to size x size.
func Square(img image.Image, size int) *image.NRGBA {
	b := img.Bounds()
	side := b.Dx()
	if b.Dy() < side {
		side = b.Dy()
	}

	var cropped image.Image = img
	if b.Dx() != b.Dy() {
		cropped = imaging.CropCenter(img, side, side)
	}

	var resized image.Image = cropped
	if side != size {
		resized = resize.Resize(uint(size), uint(size), cropped, resize.Lanczos3)
	}

	dst := image.NewNRGBA(image.Rect(0, 0, size, size))
	draw.Copy(dst, image.Point{}, resized, resized.Bounds(), draw.Src, nil)

	return dst
}

// Pixels returns RGB values in CHW order, each mapped from [0, 255] to [-1, 1].
func Pixels(img *image.NRGBA) []float32 {
	w := img.Rect.Dx()
	h := img.Rect.Dy()
	plane := w * h
	data := make([]float32, 3*plane)
	for y := 0; y < h; y++ {
		off := img.PixOffset(img.Rect.Min.X, img.Rect.Min.Y+y)
		row := img.Pix[off : off+4*w]
		for x := 0; x < w; x++ {
			for c := 0; c < 3; c++ {
				v := float32(row[4*x+c])
				data[c*plane+y*w+x] = v/127.5 - 1
			}
		}
	}

	return data
}

// Batch loads images into a [B 3 size size] float tensor.
func Batch(files []string, size int, device gotch.Device) (*ts.Tensor, error) {
	if len(files) == 0 {
		return nil, errors.New("no image files")
	}

	plane := 3 * size * size
	data := make([]float32, 0, len(files)*plane)
	for _, f := range files {
		img, err := Read(f)
		if err != nil {
			return nil, err
		}
		data = append(data, Pixels(Square(img, size))...)
	}

	s := int64(size)
	x := ts.MustOfSlice(data).MustView([]int64{int64(len(files)), 3, s, s}, true)

	return x.MustTo(device, true), nil
}
