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

package main

import (
	"fmt"
	"time"

	"github.com/FabianWe/quadmosaic"
	log "github.com/sirupsen/logrus"
	"github.com/spf13/cobra"
)

var (
	gridFlag  string
	indexFile string
	assetDir  string

	composeCmd = &cobra.Command{
		Use:   "compose <query-image> <output-image>",
		Short: "Create a mosaic for an image",
		Long: `Create a mosaic for the query image and store it in the output image
(.png or .jpg). Each cell of the grid is replaced by the asset whose
signature is closest to the mean color of the cell.`,
		Args: cobra.ExactArgs(2),
		RunE: runCompose,
	}
)

// addComposeFlags registers the flags of commands that compose mosaics.
func addComposeFlags(cmd *cobra.Command) {
	flags := cmd.Flags()
	flags.StringVarP(&indexFile, "index", "i", quadmosaic.DefaultIndexFile, "signature index file")
	flags.StringVarP(&assetDir, "assets", "a", ".", "directory containing the assets")
	flags.BoolVarP(&cfg.Recursive, "recursive", "r", false, "include subdirectories of the asset directory")
	flags.StringVarP(&gridFlag, "grid", "g",
		fmt.Sprintf("%dx%d", quadmosaic.DefaultColumns, quadmosaic.DefaultRows), "grid as COLUMNSxROWS")
	flags.IntVarP(&cfg.TileSize, "tile", "t", quadmosaic.DefaultTileSize, "width and height of a tile in pixels")
	flags.StringVar(&cfg.Interpolation, "interp", cfg.Interpolation, "interpolation used for resizing")
	flags.StringVar(&cfg.TileStrategy, "strategy", cfg.TileStrategy, "how assets are fit into tiles: force or crop")
	flags.StringVar(&cfg.Metric, "metric", cfg.Metric,
		fmt.Sprintf("color metric, one of %v", quadmosaic.GetMetricNames()))
	flags.BoolVar(&cfg.LinearSearch, "linear", false, "use linear search instead of a kd-tree")
}

func init() {
	addComposeFlags(composeCmd)
	composeCmd.Flags().IntVar(&cfg.JPGQuality, "jpeg-quality", quadmosaic.DefaultJPGQuality, "quality of jpg output (1-100)")
}

// newComposer reads the index and the assets given by the flags.
func newComposer() (*quadmosaic.Composer, error) {
	index, err := readIndex(indexFile)
	if err != nil {
		return nil, err
	}
	storage, err := openAssets(assetDir)
	if err != nil {
		return nil, err
	}
	if additional := index.AdditionalEntries(storage.Names()); len(additional) > 0 {
		log.WithField("count", len(additional)).Warn("Index contains assets that are not in the asset directory, these tiles stay blank")
	}
	return quadmosaic.NewComposer(cfg, index, storage)
}

func runCompose(cmd *cobra.Command, args []string) error {
	queryPath, err := expandPath(args[0])
	if err != nil {
		return err
	}
	outPath, err := expandPath(args[1])
	if err != nil {
		return err
	}
	composer, err := newComposer()
	if err != nil {
		return err
	}
	start := time.Now()
	numTiles := cfg.Columns * cfg.Rows
	progress := newProgress(cmd, "Tiles", numTiles)
	mosaic, _, err := composer.ComposeFile(queryPath, progress)
	if err != nil {
		return err
	}
	log.WithField("duration", time.Since(start)).Info("Mosaic created")
	if err := quadmosaic.SaveImage(outPath, mosaic, cfg.JPGQuality); err != nil {
		return err
	}
	bounds := mosaic.Bounds()
	fmt.Fprintf(cmd.OutOrStdout(), "wrote %dx%d mosaic to %s\n", bounds.Dx(), bounds.Dy(), outPath)
	return nil
}
