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

// Grid is the downsampled query image: one color per cell, row by row.
type Grid struct {
	Columns, Rows int
	Cells         []RGB
}

// NewGrid returns a black grid of the given size.
func NewGrid(columns, rows int) *Grid {
	return &Grid{Columns: columns, Rows: rows, Cells: make([]RGB, columns*rows)}
}

// At returns the color of the cell in column col and row row.
func (g *Grid) At(col, row int) RGB {
	return g.Cells[row*g.Columns+col]
}

// Set sets the color of the cell in column col and row row.
func (g *Grid) Set(col, row int, c RGB) {
	g.Cells[row*g.Columns+col] = c
}

// Size returns the number of cells.
func (g *Grid) Size() int {
	return len(g.Cells)
}

// DownsampleGrid resizes img to exactly columns x rows pixels and returns
// the color of each pixel as grid. If resizer is nil DefaultResizer is used.
//
// An empty image or an empty grid yields ErrInvalidInputImage.
func DownsampleGrid(img image.Image, columns, rows int, resizer ImageResizer) (*Grid, error) {
	if img == nil {
		return nil, fmt.Errorf("%w: no image", ErrInvalidInputImage)
	}
	bounds := img.Bounds()
	if bounds.Empty() {
		return nil, fmt.Errorf("%w: image is empty", ErrInvalidInputImage)
	}
	if columns <= 0 || rows <= 0 {
		return nil, fmt.Errorf("%w: invalid grid dimensions %dx%d", ErrInvalidInputImage, columns, rows)
	}
	if resizer == nil {
		resizer = DefaultResizer
	}
	small := resizer.Resize(uint(columns), uint(rows), img)
	smallBounds := small.Bounds()
	if smallBounds.Dx() != columns || smallBounds.Dy() != rows {
		return nil, fmt.Errorf("Resizer returned image of size %dx%d, expected %dx%d",
			smallBounds.Dx(), smallBounds.Dy(), columns, rows)
	}
	grid := NewGrid(columns, rows)
	for row := 0; row < rows; row++ {
		for col := 0; col < columns; col++ {
			grid.Set(col, row, ConvertRGB(small.At(smallBounds.Min.X+col, smallBounds.Min.Y+row)))
		}
	}
	return grid, nil
}
