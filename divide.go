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
)

// TileDivision is a distribution of an image into rectangles, row by row.
// div[i][j] is the rectangle in row i and column j.
type TileDivision [][]image.Rectangle

// Get returns the rectangle in column x and row y.
func (div TileDivision) Get(x, y int) image.Rectangle {
	return div[y][x]
}

// Size returns the number of rectangles in the division.
func (div TileDivision) Size() int {
	res := 0
	for _, row := range div {
		res += len(row)
	}
	return res
}

// Tiles is a matrix of image tiles, organized the same way as TileDivision.
type Tiles [][]image.Image

// Get returns the tile in column x and row y.
func (tiles Tiles) Get(x, y int) image.Image {
	return tiles[y][x]
}

// ImageDivider divides image bounds into rectangles.
type ImageDivider interface {
	Divide(image.Rectangle) TileDivision
}

// FixedSizeDivider divides an image into tiles of a fixed width and height.
// Remaining pixels on the right and bottom that don't fill a whole tile are
// not covered. It is used to lay out the tiles of the mosaic, there the
// mosaic bounds are always a multiple of the tile size.
type FixedSizeDivider struct {
	Width, Height int
}

// NewFixedSizeDivider returns a new FixedSizeDivider.
func NewFixedSizeDivider(width, height int) FixedSizeDivider {
	return FixedSizeDivider{Width: width, Height: height}
}

// Divide implements ImageDivider.
func (divider FixedSizeDivider) Divide(bounds image.Rectangle) TileDivision {
	if bounds.Empty() || divider.Width <= 0 || divider.Height <= 0 {
		return nil
	}
	numRows := bounds.Dy() / divider.Height
	numCols := bounds.Dx() / divider.Width
	if numRows == 0 || numCols == 0 {
		return nil
	}
	res := make(TileDivision, numRows)
	for i := 0; i < numRows; i++ {
		res[i] = make([]image.Rectangle, numCols)
		for j := 0; j < numCols; j++ {
			x0 := bounds.Min.X + j*divider.Width
			y0 := bounds.Min.Y + i*divider.Height
			res[i][j] = image.Rect(x0, y0, x0+divider.Width, y0+divider.Height)
		}
	}
	return res
}

// FixedNumDivider divides an image into a fixed number of tiles, NumX columns
// and NumY rows. Each tile has width floor(width / NumX) and height
// floor(height / NumY), the last column / row is enlarged to the image bound.
// The rectangles always tile the whole image without gaps or overlap.
type FixedNumDivider struct {
	NumX, NumY int
}

// NewFixedNumDivider returns a new FixedNumDivider.
func NewFixedNumDivider(numX, numY int) *FixedNumDivider {
	return &FixedNumDivider{NumX: numX, NumY: numY}
}

func outerBound(divisionNum, index, imgBound, value int) int {
	if index+1 == divisionNum {
		return imgBound
	}
	return value
}

// Divide implements ImageDivider.
func (divider *FixedNumDivider) Divide(bounds image.Rectangle) TileDivision {
	if bounds.Empty() || divider.NumX <= 0 || divider.NumY <= 0 {
		return nil
	}
	tileWidth := bounds.Dx() / divider.NumX
	tileHeight := bounds.Dy() / divider.NumY
	// this should take care of images that are too small, if such small images
	// are used the results will be bad I guess, this is just a way to ensure
	// that some part of the image is used
	if tileWidth <= 0 {
		tileWidth = 1
	}
	if tileHeight <= 0 {
		tileHeight = 1
	}
	numRows := divider.NumY
	numCols := divider.NumX
	res := make(TileDivision, numRows)
	for i := 0; i < numRows; i++ {
		res[i] = make([]image.Rectangle, numCols)
		for j := 0; j < numCols; j++ {
			x0 := bounds.Min.X + j*tileWidth
			y0 := bounds.Min.Y + i*tileHeight
			x1 := outerBound(numCols, j, bounds.Max.X, x0+tileWidth)
			y1 := outerBound(numRows, i, bounds.Max.Y, y0+tileHeight)
			res[i][j] = image.Rect(x0, y0, x1, y1)
		}
	}
	return res
}

// DivideImage returns the sub images of img described by distribution.
// Each rectangle is intersected with the image bounds first, so the sub images
// may be empty.
func DivideImage(img image.Image, distribution TileDivision) (Tiles, error) {
	bounds := img.Bounds()
	res := make(Tiles, len(distribution))
	for i, row := range distribution {
		res[i] = make([]image.Image, len(row))
		for j, r := range row {
			subImg, subErr := SubImage(img, r.Intersect(bounds))
			if subErr != nil {
				return nil, fmt.Errorf("Creation of subimage failed: %v", subErr)
			}
			res[i][j] = subImg
		}
	}
	return res, nil
}
