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
	"fmt"
	"image"
)

var (
	// ErrUnreadableAsset is returned if an asset can't be read or decoded.
	ErrUnreadableAsset = errors.New("Unreadable asset")

	// ErrDegenerateAsset is returned if an asset is smaller than 2x2 pixels,
	// such images can't be divided into quadrants.
	ErrDegenerateAsset = errors.New("Degenerate asset")

	// ErrInvalidInputImage is returned if the query image of a composition is
	// empty or can't be decoded.
	ErrInvalidInputImage = errors.New("Invalid input image")

	// ErrEmptyIndex signals that a signature index contains no signatures.
	// Composition with an empty index is not an error, the mosaic is just
	// blank.
	ErrEmptyIndex = errors.New("Empty signature index")
)

// QuadrantKey identifies one of the four quadrants of an image.
type QuadrantKey int

const (
	TopLeft QuadrantKey = iota
	TopRight
	BottomLeft
	BottomRight
)

// NumQuadrants is the number of quadrants of an image.
const NumQuadrants = 4

// QuadrantKeys contains all quadrant keys in their fixed order.
var QuadrantKeys = [NumQuadrants]QuadrantKey{TopLeft, TopRight, BottomLeft, BottomRight}

var quadrantNames = [NumQuadrants]string{"topLeft", "topRight", "bottomLeft", "bottomRight"}

func (key QuadrantKey) String() string {
	if key < 0 || int(key) >= NumQuadrants {
		return fmt.Sprintf("QuadrantKey(%d)", key)
	}
	return quadrantNames[key]
}

// ParseQuadrantKey parses the name of a quadrant, for example "topLeft".
func ParseQuadrantKey(s string) (QuadrantKey, error) {
	for i, name := range quadrantNames {
		if name == s {
			return QuadrantKey(i), nil
		}
	}
	return -1, fmt.Errorf("Unknown quadrant: %s", s)
}

// QuadrantDivider divides the bounds of an asset into its quadrants, two
// columns and two rows. With halfWidth = floor(width / 2) and
// halfHeight = floor(height / 2) the top left quadrant is
// [0, halfWidth) x [0, halfHeight), the quadrants on the right / bottom absorb
// the extra column / row of odd sizes.
var QuadrantDivider ImageDivider = NewFixedNumDivider(2, 2)

// quadrantCells contains the column and row of each quadrant in the division
// returned by QuadrantDivider.
var quadrantCells = [NumQuadrants]image.Point{
	TopLeft:     {0, 0},
	TopRight:    {1, 0},
	BottomLeft:  {0, 1},
	BottomRight: {1, 1},
}

// divideQuadrants returns the quadrant division of bounds, bounds smaller
// than 2x2 yield ErrDegenerateAsset.
func divideQuadrants(bounds image.Rectangle) (TileDivision, error) {
	if bounds.Dx() < 2 || bounds.Dy() < 2 {
		return nil, fmt.Errorf("%w: invalid dimensions (%dx%d)", ErrDegenerateAsset,
			bounds.Dx(), bounds.Dy())
	}
	return QuadrantDivider.Divide(bounds), nil
}

// Quadrants contains a color for each quadrant, indexed by QuadrantKey.
type Quadrants [NumQuadrants]RGB

// Get returns the color of the given quadrant.
func (q Quadrants) Get(key QuadrantKey) RGB {
	return q[key]
}

// Representative returns the mean of the four quadrant colors, not rounded.
func (q Quadrants) Representative() FloatRGB {
	var sum RGBSum
	for _, c := range q {
		sum.Add(c)
	}
	return sum.FloatMean()
}

type quadrantsJSON struct {
	TopLeft     *RGB `json:"topLeft"`
	TopRight    *RGB `json:"topRight"`
	BottomLeft  *RGB `json:"bottomLeft"`
	BottomRight *RGB `json:"bottomRight"`
}

// MarshalJSON encodes the quadrants as an object with the keys topLeft,
// topRight, bottomLeft and bottomRight.
func (q Quadrants) MarshalJSON() ([]byte, error) {
	return json.Marshal(quadrantsJSON{
		TopLeft:     &q[TopLeft],
		TopRight:    &q[TopRight],
		BottomLeft:  &q[BottomLeft],
		BottomRight: &q[BottomRight],
	})
}

// UnmarshalJSON decodes the format of MarshalJSON, all four quadrants must
// be present.
func (q *Quadrants) UnmarshalJSON(data []byte) error {
	var raw quadrantsJSON
	if err := json.Unmarshal(data, &raw); err != nil {
		return err
	}
	values := [NumQuadrants]*RGB{raw.TopLeft, raw.TopRight, raw.BottomLeft, raw.BottomRight}
	for i, c := range values {
		if c == nil {
			return fmt.Errorf("Missing quadrant %s", QuadrantKey(i))
		}
		q[i] = *c
	}
	return nil
}

// AssetSignature is the color summary of an asset: the mean color of each of
// its four quadrants.
type AssetSignature struct {
	Name      string    `json:"name"`
	Quadrants Quadrants `json:"quadrants"`
}

// Representative returns the color used to compare the asset with grid cells,
// the mean of the quadrant colors.
func (s AssetSignature) Representative() FloatRGB {
	return s.Quadrants.Representative()
}

// ComputeQuadrants computes the mean color of each quadrant of img.
func ComputeQuadrants(img image.Image) (Quadrants, error) {
	var res Quadrants
	div, divErr := divideQuadrants(img.Bounds())
	if divErr != nil {
		return res, divErr
	}
	tiles, tilesErr := DivideImage(img, div)
	if tilesErr != nil {
		return res, tilesErr
	}
	for key, cell := range quadrantCells {
		res[key] = ComputeAverageColor(tiles.Get(cell.X, cell.Y))
	}
	return res, nil
}

// ComputeSignature computes the signature of an asset image.
func ComputeSignature(name string, img image.Image) (AssetSignature, error) {
	quadrants, err := ComputeQuadrants(img)
	if err != nil {
		return AssetSignature{}, err
	}
	return AssetSignature{Name: name, Quadrants: quadrants}, nil
}

// SignatureIndex is an ordered list of signatures. The order matters when
// matching: if two signatures are equally close to a color the first one
// wins.
type SignatureIndex []AssetSignature

// Names returns the names of all signatures in index order.
func (index SignatureIndex) Names() []string {
	res := make([]string, len(index))
	for i, sig := range index {
		res[i] = sig.Name
	}
	return res
}

// Lookup returns the position of the signature with the given name.
func (index SignatureIndex) Lookup(name string) (int, bool) {
	for i, sig := range index {
		if sig.Name == name {
			return i, true
		}
	}
	return -1, false
}

// Validate checks that the index contains no duplicate or empty names.
func (index SignatureIndex) Validate() error {
	seen := make(map[string]struct{}, len(index))
	for i, sig := range index {
		if sig.Name == "" {
			return fmt.Errorf("Signature at position %d has no name", i)
		}
		if _, has := seen[sig.Name]; has {
			return fmt.Errorf("Duplicate signature for %s", sig.Name)
		}
		seen[sig.Name] = struct{}{}
	}
	return nil
}
