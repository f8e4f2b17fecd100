// Copyright 2018 Fabian Wenzelmann
//
// Licensed under the Apache License, Version 2.0 (the "License");
// you may not use this file except in compliance with the License.
// You may obtain a copy of the License at
//
// http://www.apache.org/licenses/LICENSE-2.0
//
// Unless required by applicable law or agreed to in writing, software
// distributed under the License is distributed on an "AS IS" BASIS,
// WITHOUT WARRANTIES OR CONDITIONS OF ANY KIND, either express or implied.
// See the License for the specific language governing permissions and
// limitations under the License.

package quadmosaic

import (
	"fmt"
	"image"
	"strings"

	"github.com/nfnt/resize"
	"golang.org/x/image/draw"
)

// ImageResizer resizes an image to the given width and height.
// The result must have its minimum point at (0, 0).
type ImageResizer interface {
	Resize(width, height uint, img image.Image) image.Image
}

// NfntResizer uses the nfnt/resize package to resize an image.
type NfntResizer struct {
	// InterP is the interpolation function to use.
	InterP resize.InterpolationFunction
}

// NewNfntResizer returns a new resizer given the interpolation function.
func NewNfntResizer(interP resize.InterpolationFunction) NfntResizer {
	return NfntResizer{interP}
}

// Resize calls nfnt/resize methods.
func (resizer NfntResizer) Resize(width, height uint, img image.Image) image.Image {
	return resize.Resize(width, height, img, resizer.InterP)
}

// XDrawResizer resizes images with one of the interpolators from
// golang.org/x/image/draw.
type XDrawResizer struct {
	Interpolator draw.Interpolator
}

// NewXDrawResizer returns a new resizer given the interpolator.
func NewXDrawResizer(interpolator draw.Interpolator) XDrawResizer {
	return XDrawResizer{Interpolator: interpolator}
}

// Resize scales img into a new RGBA image of the given size.
func (resizer XDrawResizer) Resize(width, height uint, img image.Image) image.Image {
	dst := image.NewRGBA(image.Rect(0, 0, int(width), int(height)))
	resizer.Interpolator.Scale(dst, dst.Bounds(), img, img.Bounds(), draw.Src, nil)
	return dst
}

// GetInterP returns an interpolation function given a desired quality.
// The higher the quality the better the interpolation should be, but execution
// time is higher. Currently supported are values between 0 and 4, each
// selecting a different interpolation function. Values greater than 4 are
// treated as 5 (Lanczos3).
//
// This method assumes that the interpolation functions provided by nfnt/resize
// can be sorted according to their quality. This should be a reasonable
// assumption.
func GetInterP(quality uint) resize.InterpolationFunction {
	switch quality {
	case 0:
		return resize.NearestNeighbor
	case 1:
		return resize.Bilinear
	case 2:
		return resize.Bicubic
	case 3:
		return resize.MitchellNetravali
	case 4:
		return resize.Lanczos2
	default:
		return resize.Lanczos3
	}
}

var interpolationNames = map[string]uint{
	"nearest":  0,
	"bilinear": 1,
	"bicubic":  2,
	"mitchell": 3,
	"lanczos2": 4,
	"lanczos3": 5,
}

// ParseResizer returns the resizer for an interpolation name.
// Supported are the nfnt names "nearest", "bilinear", "bicubic", "mitchell",
// "lanczos2" and "lanczos3" and the x/image names "approx-bilinear" and
// "catmullrom". The empty string yields DefaultResizer.
func ParseResizer(name string) (ImageResizer, error) {
	name = strings.ToLower(strings.TrimSpace(name))
	if name == "" {
		return DefaultResizer, nil
	}
	if quality, has := interpolationNames[name]; has {
		return NewNfntResizer(GetInterP(quality)), nil
	}
	switch name {
	case "approx-bilinear":
		return NewXDrawResizer(draw.ApproxBiLinear), nil
	case "catmullrom":
		return NewXDrawResizer(draw.CatmullRom), nil
	default:
		return nil, fmt.Errorf("Unknown interpolation: %s", name)
	}
}

var (
	// DefaultResizer is used for the grid and the tiles if nothing else is
	// configured. Bilinear interpolation in nfnt/resize widens the filter by the
	// scale factor when shrinking, so each grid cell is an area weighted
	// average of its source region.
	DefaultResizer = NewNfntResizer(resize.Bilinear)
)
