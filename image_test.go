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
	"image/color"
	"math"
	"testing"
)

// uniformImage returns an opaque w x h image filled with c.
func uniformImage(w, h int, c RGB) *image.NRGBA {
	img := image.NewNRGBA(image.Rect(0, 0, w, h))
	for y := 0; y < h; y++ {
		for x := 0; x < w; x++ {
			img.SetNRGBA(x, y, color.NRGBA{R: c.R, G: c.G, B: c.B, A: 255})
		}
	}
	return img
}

func componentsClose(a, b RGB, tolerance int) bool {
	diff := func(x, y uint8) int {
		d := int(x) - int(y)
		if d < 0 {
			return -d
		}
		return d
	}
	return diff(a.R, b.R) <= tolerance && diff(a.G, b.G) <= tolerance && diff(a.B, b.B) <= tolerance
}

func TestColorDistance(t *testing.T) {
	colors := []RGB{
		NewRGB(0, 0, 0),
		NewRGB(255, 255, 255),
		NewRGB(10, 20, 30),
		NewRGB(255, 0, 128),
	}
	for _, a := range colors {
		if d := ColorDistance(a, a); d != 0 {
			t.Errorf("Expected distance 0 between %s and itself, got %f", a, d)
		}
		for _, b := range colors {
			if ColorDistance(a, b) != ColorDistance(b, a) {
				t.Errorf("Distance between %s and %s is not symmetric", a, b)
			}
		}
	}
	if d := ColorDistance(NewRGB(0, 0, 0), NewRGB(3, 4, 0)); d != 5 {
		t.Errorf("Expected distance 5, got %f", d)
	}
	white := ColorDistance(NewRGB(0, 0, 0), NewRGB(255, 255, 255))
	if math.Abs(white-255*math.Sqrt(3)) > 1e-9 {
		t.Errorf("Expected distance %f between black and white, got %f", 255*math.Sqrt(3), white)
	}
}

func TestRGBSumMean(t *testing.T) {
	tests := []struct {
		colors   []RGB
		expected RGB
	}{
		{nil, RGB{}},
		{[]RGB{NewRGB(1, 2, 3)}, NewRGB(1, 2, 3)},
		// 127.5 is rounded up
		{[]RGB{NewRGB(255, 0, 0), NewRGB(0, 0, 255)}, NewRGB(128, 0, 128)},
		// 1/3 is rounded down, 2/3 up
		{[]RGB{NewRGB(1, 2, 0), NewRGB(0, 0, 0), NewRGB(0, 0, 0)}, NewRGB(0, 1, 0)},
		{[]RGB{NewRGB(255, 255, 255), NewRGB(255, 255, 255)}, NewRGB(255, 255, 255)},
	}
	for _, tc := range tests {
		var sum RGBSum
		for _, c := range tc.colors {
			sum.Add(c)
		}
		if got := sum.Mean(); got != tc.expected {
			t.Errorf("Mean of %v: expected %s, got %s", tc.colors, tc.expected, got)
		}
	}
}

func TestFloatRGBRound(t *testing.T) {
	tests := []struct {
		in       FloatRGB
		expected RGB
	}{
		{FloatRGB{127.5, 0, 127.5}, NewRGB(128, 0, 128)},
		{FloatRGB{0.49, 254.5, 300}, NewRGB(0, 255, 255)},
		{FloatRGB{-3, 10.2, 99.9}, NewRGB(0, 10, 100)},
	}
	for _, tc := range tests {
		if got := tc.in.Round(); got != tc.expected {
			t.Errorf("Round(%s): expected %s, got %s", tc.in, tc.expected, got)
		}
	}
}

func TestHexColors(t *testing.T) {
	c := NewRGB(255, 136, 0)
	if hex := c.Hex(); hex != "#ff8800" {
		t.Errorf("Expected #ff8800, got %s", hex)
	}
	for _, s := range []string{"#ff8800", "ff8800", "#f80"} {
		parsed, err := ParseHexColor(s)
		if err != nil {
			t.Errorf("Can't parse %s: %v", s, err)
			continue
		}
		if parsed != c {
			t.Errorf("Parsing %s: expected %s, got %s", s, c, parsed)
		}
	}
	if _, err := ParseHexColor("#zzzzzz"); err == nil {
		t.Error("Expected error for invalid color")
	}
}

func TestConvertRGBIgnoresAlpha(t *testing.T) {
	// a half transparent red pixel keeps its color components
	got := ConvertRGB(color.NRGBA{R: 200, G: 100, B: 50, A: 128})
	if got != NewRGB(200, 100, 50) {
		t.Errorf("Expected (200, 100, 50), got %s", got)
	}
}
