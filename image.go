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
	"image/color"
	"math"
	"reflect"
	"strings"

	colorful "github.com/lucasb-eyer/go-colorful"
)

// SupportedImageFunc is a function that takes a file extension and decides if
// this file extension is supported. Usually our library should support jpg
// and png files, but this may change depending on what image protocols are
// loaded.
//
// The extension passed to this function could be for example ".txt" or ".jpg".
// JPGAndPNG and AllSupported are implementations.
type SupportedImageFunc func(ext string) bool

// JPGAndPNG is an implementation of SupportedImageFunc accepting jpg and png
// file extensions.
func JPGAndPNG(ext string) bool {
	switch strings.ToLower(ext) {
	case ".jpg", ".jpeg", ".png":
		return true
	default:
		return false
	}
}

// AllSupported accepts all formats for which a decoder is registered by this
// package: jpg, png, gif, webp, bmp and tiff.
func AllSupported(ext string) bool {
	switch strings.ToLower(ext) {
	case ".jpg", ".jpeg", ".png", ".gif", ".webp", ".bmp", ".tif", ".tiff":
		return true
	default:
		return false
	}
}

// RGB is a color containing r, g and b components.
// The components are never premultiplied with alpha.
type RGB struct {
	R uint8 `json:"r"`
	G uint8 `json:"g"`
	B uint8 `json:"b"`
}

// NewRGB returns a new RGB color.
func NewRGB(r, g, b uint8) RGB {
	return RGB{R: r, G: g, B: b}
}

// ConvertRGB converts a generic color into the internal RGB representation.
// The alpha channel is dropped after converting to the non-premultiplied
// NRGBA model, so a half transparent red pixel is still (255, 0, 0).
func ConvertRGB(c color.Color) RGB {
	nrgba := color.NRGBAModel.Convert(c).(color.NRGBA)
	return RGB{R: nrgba.R, G: nrgba.G, B: nrgba.B}
}

// Float returns the color with float64 components.
func (c RGB) Float() FloatRGB {
	return FloatRGB{R: float64(c.R), G: float64(c.G), B: float64(c.B)}
}

// Hex returns the hex representation of the color, for example "#ff0000".
func (c RGB) Hex() string {
	return colorful.Color{
		R: float64(c.R) / 255.0,
		G: float64(c.G) / 255.0,
		B: float64(c.B) / 255.0,
	}.Hex()
}

// ParseHexColor parses a color of the form "#rrggbb" or "#rgb".
func ParseHexColor(s string) (RGB, error) {
	if !strings.HasPrefix(s, "#") {
		s = "#" + s
	}
	c, err := colorful.Hex(s)
	if err != nil {
		return RGB{}, err
	}
	r, g, b := c.RGB255()
	return NewRGB(r, g, b), nil
}

func (c RGB) String() string {
	return fmt.Sprintf("(%d, %d, %d)", c.R, c.G, c.B)
}

// FloatRGB is a color with float64 components, used whenever colors are
// averaged and the result should not be rounded (yet).
type FloatRGB struct {
	R, G, B float64
}

// Vector returns the components as a vector (r, g, b).
func (c FloatRGB) Vector() []float64 {
	return []float64{c.R, c.G, c.B}
}

// Div divides each component by s.
func (c FloatRGB) Div(s float64) FloatRGB {
	return FloatRGB{R: c.R / s, G: c.G / s, B: c.B / s}
}

// Round rounds each component to the nearest integer (halfway values are
// rounded up) and clamps it to [0, 255].
func (c FloatRGB) Round() RGB {
	return RGB{R: roundComponent(c.R), G: roundComponent(c.G), B: roundComponent(c.B)}
}

func roundComponent(v float64) uint8 {
	v = math.Floor(v + 0.5)
	switch {
	case v <= 0:
		return 0
	case v >= 255:
		return 255
	default:
		return uint8(v)
	}
}

func (c FloatRGB) String() string {
	return fmt.Sprintf("(%.1f, %.1f, %.1f)", c.R, c.G, c.B)
}

// RGBSum accumulates RGB colors, the zero value is an empty sum.
type RGBSum struct {
	R, G, B uint64
	N       uint64
}

// Add adds the color to the sum.
func (s *RGBSum) Add(c RGB) {
	s.R += uint64(c.R)
	s.G += uint64(c.G)
	s.B += uint64(c.B)
	s.N++
}

// Mean returns the mean color of all added colors, each component rounded to
// the nearest integer. The mean of an empty sum is black.
func (s RGBSum) Mean() RGB {
	if s.N == 0 {
		return RGB{}
	}
	// integer version of round half up
	half := s.N / 2
	return RGB{
		R: uint8((s.R + half) / s.N),
		G: uint8((s.G + half) / s.N),
		B: uint8((s.B + half) / s.N),
	}
}

// FloatMean returns the mean color without rounding.
func (s RGBSum) FloatMean() FloatRGB {
	if s.N == 0 {
		return FloatRGB{}
	}
	return FloatRGB{R: float64(s.R), G: float64(s.G), B: float64(s.B)}.Div(float64(s.N))
}

// ColorDistance returns the euclidean distance between two colors.
func ColorDistance(a, b RGB) float64 {
	return EuclideanDistance(a.Float().Vector(), b.Float().Vector())
}

// SubImager is a type that can produce a sub image from an original image.
type SubImager interface {
	SubImage(r image.Rectangle) image.Image
}

// SubImage returns a subimage of img given the boundaries r.
// The rectangle should be a valid area in the image. If the image type does
// not have a sub image method an error is returned.
func SubImage(img image.Image, r image.Rectangle) (image.Image, error) {
	imager, ok := img.(SubImager)
	if !ok {
		return nil, fmt.Errorf("Can't create sub image from type %v", reflect.TypeOf(img))
	}
	return imager.SubImage(r), nil
}
