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
	"sync"

	log "github.com/sirupsen/logrus"
	"golang.org/x/image/draw"
)

// ResizeStrategy scales an asset image to the size of a tile.
type ResizeStrategy func(resizer ImageResizer, tileWidth, tileHeight uint, img image.Image) image.Image

// ForceResize resizes the image to the tile size, ignoring the aspect ratio.
func ForceResize(resizer ImageResizer, tileWidth, tileHeight uint, img image.Image) image.Image {
	return resizer.Resize(tileWidth, tileHeight, img)
}

// CropResize cuts the largest centered area with the aspect ratio of the tile
// from the image and resizes it to the tile size.
func CropResize(resizer ImageResizer, tileWidth, tileHeight uint, img image.Image) image.Image {
	bounds := img.Bounds()
	if bounds.Empty() || tileWidth == 0 || tileHeight == 0 {
		return resizer.Resize(tileWidth, tileHeight, img)
	}
	w, h := bounds.Dx(), bounds.Dy()
	// compare w / h with tileWidth / tileHeight without floats
	cropW, cropH := w, h
	if w*int(tileHeight) > h*int(tileWidth) {
		cropW = IntMax(1, h*int(tileWidth)/int(tileHeight))
	} else {
		cropH = IntMax(1, w*int(tileHeight)/int(tileWidth))
	}
	x0 := bounds.Min.X + (w-cropW)/2
	y0 := bounds.Min.Y + (h-cropH)/2
	cropped, err := SubImage(img, image.Rect(x0, y0, x0+cropW, y0+cropH))
	if err != nil {
		return resizer.Resize(tileWidth, tileHeight, img)
	}
	return resizer.Resize(tileWidth, tileHeight, cropped)
}

// ParseResizeStrategy returns the strategy for "force" or "crop". The empty
// string yields ForceResize.
func ParseResizeStrategy(name string) (ResizeStrategy, error) {
	switch strings.ToLower(strings.TrimSpace(name)) {
	case "", "force":
		return ForceResize, nil
	case "crop":
		return CropResize, nil
	default:
		return nil, fmt.Errorf("Unknown tile strategy: %s", name)
	}
}

type cacheEntry struct {
	done chan struct{}
	img  image.Image
	err  error
}

// ImageCache caches the scaled asset images during the composition of one
// mosaic. Each key is loaded at most once: if several go routines request the
// same missing key only the first one loads the image, the others wait for
// the result. Errors are cached as well.
type ImageCache struct {
	m       sync.Mutex
	content map[string]*cacheEntry
}

// NewImageCache returns an empty cache.
func NewImageCache() *ImageCache {
	return &ImageCache{content: make(map[string]*cacheEntry)}
}

func (cache *ImageCache) keyFormat(name string, width, height int) string {
	return fmt.Sprintf("%s-%d-%d", name, width, height)
}

// Get returns the cached image for the asset in the given size, load is
// called if there is no entry yet.
func (cache *ImageCache) Get(name string, width, height int, load func() (image.Image, error)) (image.Image, error) {
	key := cache.keyFormat(name, width, height)
	cache.m.Lock()
	entry, has := cache.content[key]
	if has {
		cache.m.Unlock()
		<-entry.done
		return entry.img, entry.err
	}
	entry = &cacheEntry{done: make(chan struct{})}
	cache.content[key] = entry
	cache.m.Unlock()

	entry.img, entry.err = load()
	close(entry.done)
	return entry.img, entry.err
}

// Len returns the number of cached entries.
func (cache *ImageCache) Len() int {
	cache.m.Lock()
	defer cache.m.Unlock()
	return len(cache.content)
}

// Composition contains everything required to render a MosaicResult.
type Composition struct {
	Index    SignatureIndex
	Storage  AssetStorage
	TileSize int
	Resizer  ImageResizer
	Strategy ResizeStrategy
	// NumRoutines is the number of go routines drawing tiles.
	NumRoutines int
}

func (c *Composition) loadTile(cache *ImageCache, name string) (image.Image, error) {
	return cache.Get(name, c.TileSize, c.TileSize, func() (image.Image, error) {
		img, err := c.Storage.LoadImage(name)
		if err != nil {
			return nil, err
		}
		return c.Strategy(c.Resizer, uint(c.TileSize), uint(c.TileSize), img), nil
	})
}

// ComposeMosaic renders the mosaic: the asset selected for cell (col, row)
// is scaled to TileSize x TileSize and drawn at (col * TileSize,
// row * TileSize). The mosaic has size (Columns * TileSize, Rows * TileSize).
//
// Cells without a match stay transparent. An asset that can't be loaded is
// logged and its tiles stay transparent as well.
func ComposeMosaic(c *Composition, result *MosaicResult, progress ProgressFunc) (*image.RGBA, error) {
	if c.TileSize <= 0 {
		return nil, fmt.Errorf("Invalid tile size %d", c.TileSize)
	}
	// defaults are applied to a copy, c belongs to the caller
	withDefaults := *c
	if withDefaults.Resizer == nil {
		withDefaults.Resizer = DefaultResizer
	}
	if withDefaults.Strategy == nil {
		withDefaults.Strategy = ForceResize
	}
	c = &withDefaults
	numRoutines := c.NumRoutines
	if numRoutines <= 0 {
		numRoutines = 1
	}
	mosaicBounds := image.Rect(0, 0, result.Columns*c.TileSize, result.Rows*c.TileSize)
	res := image.NewRGBA(mosaicBounds)
	dist := NewFixedSizeDivider(c.TileSize, c.TileSize).Divide(mosaicBounds)
	numTiles := dist.Size()
	if numTiles == 0 {
		return res, nil
	}

	cache := NewImageCache()
	type job struct {
		col, row int
	}
	jobs := make(chan job, BufferSize)
	done := make(chan bool, BufferSize)

	for w := 0; w < numRoutines; w++ {
		go func() {
			for next := range jobs {
				sig, ok := result.Signature(c.Index, next.col, next.row)
				if !ok {
					done <- false
					continue
				}
				tile, err := c.loadTile(cache, sig.Name)
				if err != nil {
					log.WithFields(log.Fields{
						log.ErrorKey: err,
						"asset":      sig.Name,
						"tileX":      next.col,
						"tileY":      next.row,
					}).Error("Can't load asset, leaving tile blank")
					done <- false
					continue
				}
				// tiles are disjoint, no locking required
				area := dist.Get(next.col, next.row)
				if Debug && tile.Bounds().Size() != area.Size() {
					log.WithFields(log.Fields{
						"asset":    sig.Name,
						"tileSize": tile.Bounds().Size(),
						"area":     area,
					}).Warn("Scaled asset doesn't fit its tile")
				}
				draw.Draw(res, area, tile, tile.Bounds().Min, draw.Src)
				done <- true
			}
		}()
	}

	go func() {
		for row := 0; row < result.Rows; row++ {
			for col := 0; col < result.Columns; col++ {
				jobs <- job{col: col, row: row}
			}
		}
		close(jobs)
	}()

	for i := 0; i < numTiles; i++ {
		<-done
		if progress != nil {
			progress(i + 1)
		}
	}
	return res, nil
}
