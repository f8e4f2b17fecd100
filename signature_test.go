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
	"encoding/json"
	"errors"
	"image"
	"image/color"
	"strings"
	"testing"
)

func TestQuadrantPartition(t *testing.T) {
	sizes := []int{2, 3, 4, 5, 7, 8, 9, 17, 64, 101}
	origins := []image.Point{image.Pt(0, 0), image.Pt(-3, 5)}
	for _, origin := range origins {
		for _, w := range sizes {
			for _, h := range sizes {
				bounds := image.Rect(0, 0, w, h).Add(origin)
				div, err := divideQuadrants(bounds)
				if err != nil {
					t.Fatalf("Unexpected error for %v: %v", bounds, err)
				}
				var rects [NumQuadrants]image.Rectangle
				for key, cell := range quadrantCells {
					rects[key] = div.Get(cell.X, cell.Y)
				}
				halfW, halfH := w/2, h/2
				expectedTL := image.Rect(0, 0, halfW, halfH).Add(origin)
				if rects[TopLeft] != expectedTL {
					t.Errorf("%v: expected top left %v, got %v", bounds, expectedTL, rects[TopLeft])
				}
				area := 0
				for i, r := range rects {
					if r.Empty() {
						t.Errorf("%v: quadrant %s is empty", bounds, QuadrantKey(i))
					}
					if !r.In(bounds) {
						t.Errorf("%v: quadrant %s (%v) not inside the bounds", bounds, QuadrantKey(i), r)
					}
					area += r.Dx() * r.Dy()
					for j := i + 1; j < len(rects); j++ {
						if r.Overlaps(rects[j]) {
							t.Errorf("%v: quadrants %s and %s overlap", bounds, QuadrantKey(i), QuadrantKey(j))
						}
					}
				}
				if area != w*h {
					t.Errorf("%v: quadrants cover %d pixels, expected %d", bounds, area, w*h)
				}
			}
		}
	}
}

func TestQuadrantsDegenerate(t *testing.T) {
	for _, r := range []image.Rectangle{
		image.Rect(0, 0, 0, 0),
		image.Rect(0, 0, 1, 1),
		image.Rect(0, 0, 1, 10),
		image.Rect(0, 0, 10, 1),
	} {
		img := image.NewNRGBA(r)
		if _, err := ComputeQuadrants(img); !errors.Is(err, ErrDegenerateAsset) {
			t.Errorf("Expected ErrDegenerateAsset for %v, got %v", r, err)
		}
	}
}

func TestComputeSignatureUniform(t *testing.T) {
	c := NewRGB(12, 200, 99)
	for _, size := range [][2]int{{2, 2}, {3, 5}, {64, 64}, {33, 10}} {
		sig, err := ComputeSignature("uniform.png", uniformImage(size[0], size[1], c))
		if err != nil {
			t.Fatalf("Unexpected error: %v", err)
		}
		for _, key := range QuadrantKeys {
			if got := sig.Quadrants.Get(key); got != c {
				t.Errorf("%dx%d: expected %s for %s, got %s", size[0], size[1], c, key, got)
			}
		}
		if rep := sig.Representative(); rep != c.Float() {
			t.Errorf("Expected representative %s, got %s", c.Float(), rep)
		}
	}
}

func TestComputeSignatureRedBlue(t *testing.T) {
	img := image.NewNRGBA(image.Rect(0, 0, 2, 2))
	red := color.NRGBA{R: 255, A: 255}
	blue := color.NRGBA{B: 255, A: 255}
	img.SetNRGBA(0, 0, red)
	img.SetNRGBA(1, 0, red)
	img.SetNRGBA(0, 1, blue)
	img.SetNRGBA(1, 1, blue)
	sig, err := ComputeSignature("rb", img)
	if err != nil {
		t.Fatalf("Unexpected error: %v", err)
	}
	expected := Quadrants{NewRGB(255, 0, 0), NewRGB(255, 0, 0), NewRGB(0, 0, 255), NewRGB(0, 0, 255)}
	if sig.Quadrants != expected {
		t.Errorf("Expected quadrants %v, got %v", expected, sig.Quadrants)
	}
	if rep := sig.Representative(); rep != (FloatRGB{127.5, 0, 127.5}) {
		t.Errorf("Expected representative (127.5, 0, 127.5), got %s", rep)
	}
}

func TestComputeSignatureOddSize(t *testing.T) {
	// 3x3: the left column and the top row belong to the top left quadrant only
	// at (0, 0), everything else goes to the right / bottom quadrants.
	img := image.NewNRGBA(image.Rect(0, 0, 3, 3))
	for y := 0; y < 3; y++ {
		for x := 0; x < 3; x++ {
			img.SetNRGBA(x, y, color.NRGBA{R: uint8(x * 100), G: uint8(y * 100), A: 255})
		}
	}
	sig, err := ComputeSignature("odd", img)
	if err != nil {
		t.Fatalf("Unexpected error: %v", err)
	}
	expected := Quadrants{
		NewRGB(0, 0, 0),     // (0, 0)
		NewRGB(150, 0, 0),   // x in {1, 2}, y = 0
		NewRGB(0, 150, 0),   // x = 0, y in {1, 2}
		NewRGB(150, 150, 0), // x, y in {1, 2}
	}
	if sig.Quadrants != expected {
		t.Errorf("Expected quadrants %v, got %v", expected, sig.Quadrants)
	}
}

func TestComputeSignatureTransparent(t *testing.T) {
	img := image.NewNRGBA(image.Rect(0, 0, 4, 4))
	for y := 0; y < 4; y++ {
		for x := 0; x < 4; x++ {
			img.SetNRGBA(x, y, color.NRGBA{R: 255, A: 0})
		}
	}
	sig, err := ComputeSignature("transparent", img)
	if err != nil {
		t.Fatalf("Unexpected error: %v", err)
	}
	if got := sig.Quadrants.Get(BottomRight); got != NewRGB(255, 0, 0) {
		t.Errorf("Alpha must be ignored, expected red, got %s", got)
	}
}

func TestComputeSignatureDegenerate(t *testing.T) {
	_, err := ComputeSignature("tiny", uniformImage(1, 1, NewRGB(1, 2, 3)))
	if !errors.Is(err, ErrDegenerateAsset) {
		t.Errorf("Expected ErrDegenerateAsset, got %v", err)
	}
}

func TestQuadrantsJSON(t *testing.T) {
	sig := AssetSignature{
		Name:      "icon.png",
		Quadrants: Quadrants{NewRGB(1, 2, 3), NewRGB(4, 5, 6), NewRGB(7, 8, 9), NewRGB(10, 11, 12)},
	}
	data, err := json.Marshal(sig)
	if err != nil {
		t.Fatalf("Unexpected error: %v", err)
	}
	s := string(data)
	for _, key := range []string{`"topLeft":{"r":1,"g":2,"b":3}`, `"bottomRight":{"r":10,"g":11,"b":12}`, `"name":"icon.png"`} {
		if !strings.Contains(s, key) {
			t.Errorf("Expected %s in %s", key, s)
		}
	}
	var decoded AssetSignature
	if err := json.Unmarshal(data, &decoded); err != nil {
		t.Fatalf("Unexpected error: %v", err)
	}
	if decoded != sig {
		t.Errorf("Expected %v, got %v", sig, decoded)
	}
}

func TestQuadrantsJSONMissingKey(t *testing.T) {
	data := `{"topLeft":{"r":1,"g":2,"b":3},"topRight":{"r":1,"g":2,"b":3},"bottomLeft":{"r":1,"g":2,"b":3}}`
	var q Quadrants
	err := json.Unmarshal([]byte(data), &q)
	if err == nil || !strings.Contains(err.Error(), "bottomRight") {
		t.Errorf("Expected error about bottomRight, got %v", err)
	}
}

func TestParseQuadrantKey(t *testing.T) {
	for _, key := range QuadrantKeys {
		parsed, err := ParseQuadrantKey(key.String())
		if err != nil || parsed != key {
			t.Errorf("Parsing %s: got %v, %v", key, parsed, err)
		}
	}
	if _, err := ParseQuadrantKey("center"); err == nil {
		t.Error("Expected error for unknown quadrant")
	}
}

func TestSignatureIndexValidate(t *testing.T) {
	valid := SignatureIndex{{Name: "a"}, {Name: "b"}}
	if err := valid.Validate(); err != nil {
		t.Errorf("Unexpected error: %v", err)
	}
	if err := (SignatureIndex{{Name: "a"}, {Name: "a"}}).Validate(); err == nil {
		t.Error("Expected error for duplicate names")
	}
	if err := (SignatureIndex{{Name: ""}}).Validate(); err == nil {
		t.Error("Expected error for empty name")
	}
	if pos, ok := valid.Lookup("b"); !ok || pos != 1 {
		t.Errorf("Lookup of b: expected position 1, got %d, %v", pos, ok)
	}
	if _, ok := valid.Lookup("c"); ok {
		t.Error("Lookup of c should fail")
	}
}
