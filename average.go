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
	"image"
)

// SumColors adds the color of each pixel of img to a new RGBSum.
func SumColors(img image.Image) RGBSum {
	var sum RGBSum
	bounds := img.Bounds()
	// don't do anything for empty images
	if bounds.Empty() {
		return sum
	}
	if nrgba, ok := img.(*image.NRGBA); ok {
		// no conversion required, read the pixel buffer directly
		for y := bounds.Min.Y; y < bounds.Max.Y; y++ {
			offset := nrgba.PixOffset(bounds.Min.X, y)
			for x := bounds.Min.X; x < bounds.Max.X; x++ {
				sum.Add(RGB{R: nrgba.Pix[offset], G: nrgba.Pix[offset+1], B: nrgba.Pix[offset+2]})
				offset += 4
			}
		}
		return sum
	}
	for y := bounds.Min.Y; y < bounds.Max.Y; y++ {
		for x := bounds.Min.X; x < bounds.Max.X; x++ {
			sum.Add(ConvertRGB(img.At(x, y)))
		}
	}
	return sum
}

// ComputeAverageColor computes the average color of an image, each component
// is rounded to the nearest integer. The average of an empty image is black.
func ComputeAverageColor(img image.Image) RGB {
	return SumColors(img).Mean()
}
