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
	"io"
	"os"

	log "github.com/sirupsen/logrus"
)

// Composer creates mosaics for query images from a fixed signature index.
// It is safe for concurrent use, each call of Compose uses its own grid,
// result and image cache.
type Composer struct {
	Config   Config
	Index    SignatureIndex
	Storage  AssetStorage
	matcher  Matcher
	resizer  ImageResizer
	strategy ResizeStrategy
}

// NewComposer returns a composer, cfg is completed with defaults.
func NewComposer(cfg Config, index SignatureIndex, storage AssetStorage) (*Composer, error) {
	cfg.Defaults()
	if err := cfg.Validate(); err != nil {
		return nil, err
	}
	resizer, resizerErr := ParseResizer(cfg.Interpolation)
	if resizerErr != nil {
		return nil, resizerErr
	}
	strategy, strategyErr := ParseResizeStrategy(cfg.TileStrategy)
	if strategyErr != nil {
		return nil, strategyErr
	}
	matcher, matcherErr := NewMatcher(index, cfg.Metric, !cfg.LinearSearch)
	if matcherErr != nil {
		return nil, matcherErr
	}
	if len(index) == 0 {
		log.WithError(ErrEmptyIndex).Warn("All mosaics will be blank")
	}
	return &Composer{
		Config:   cfg,
		Index:    index,
		Storage:  storage,
		matcher:  matcher,
		resizer:  resizer,
		strategy: strategy,
	}, nil
}

// Select downsamples the query to the grid and matches each cell.
func (c *Composer) Select(query image.Image) (*MosaicResult, error) {
	grid, gridErr := DownsampleGrid(query, c.Config.Columns, c.Config.Rows, c.resizer)
	if gridErr != nil {
		return nil, gridErr
	}
	return SelectAssets(grid, c.matcher, c.Config.NumRoutines), nil
}

// Compose creates the mosaic for the query image. Errors concerning the
// query wrap ErrInvalidInputImage, no mosaic is returned in this case.
func (c *Composer) Compose(query image.Image, progress ProgressFunc) (*image.RGBA, *MosaicResult, error) {
	result, selectErr := c.Select(query)
	if selectErr != nil {
		return nil, nil, selectErr
	}
	composition := &Composition{
		Index:       c.Index,
		Storage:     c.Storage,
		TileSize:    c.Config.TileSize,
		Resizer:     c.resizer,
		Strategy:    c.strategy,
		NumRoutines: c.Config.NumRoutines,
	}
	mosaic, composeErr := ComposeMosaic(composition, result, progress)
	if composeErr != nil {
		return nil, nil, composeErr
	}
	return mosaic, result, nil
}

// ComposeReader decodes the query from r and composes the mosaic.
func (c *Composer) ComposeReader(r io.Reader, progress ProgressFunc) (*image.RGBA, *MosaicResult, error) {
	query, _, decodeErr := image.Decode(r)
	if decodeErr != nil {
		return nil, nil, fmt.Errorf("%w: %v", ErrInvalidInputImage, decodeErr)
	}
	return c.Compose(query, progress)
}

// ComposeFile decodes the query image file and composes the mosaic.
func (c *Composer) ComposeFile(path string, progress ProgressFunc) (*image.RGBA, *MosaicResult, error) {
	r, openErr := os.Open(path)
	if openErr != nil {
		return nil, nil, fmt.Errorf("%w: %v", ErrInvalidInputImage, openErr)
	}
	defer r.Close()
	return c.ComposeReader(r, progress)
}
