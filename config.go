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
	"os"

	homedir "github.com/mitchellh/go-homedir"
	"gopkg.in/yaml.v3"
)

const (
	// DefaultColumns is the default number of grid columns.
	DefaultColumns = 8
	// DefaultRows is the default number of grid rows.
	DefaultRows = 10
	// DefaultTileSize is the default width and height of a tile in pixels.
	DefaultTileSize = 64
	// DefaultJPGQuality is used when storing jpg images.
	DefaultJPGQuality = 100
)

// Config contains the parameters of index creation and mosaic composition.
// Zero values are replaced by the defaults, see Defaults.
type Config struct {
	// Columns and Rows are the dimensions of the grid.
	Columns int `yaml:"columns"`
	Rows    int `yaml:"rows"`

	// TileSize is width and height of a tile in the mosaic.
	TileSize int `yaml:"tile_size"`

	// NumRoutines is the number of go routines used for concurrent tasks.
	NumRoutines int `yaml:"routines"`

	// Interpolation is the name of the interpolation used for resizing, see
	// ParseResizer.
	Interpolation string `yaml:"interpolation"`

	// TileStrategy is "force" or "crop", see ParseResizeStrategy.
	TileStrategy string `yaml:"tile_strategy"`

	// Metric is the name of the color metric, see GetMetricNames.
	Metric string `yaml:"metric"`

	// LinearSearch disables the kd-tree for the euclidean metric.
	LinearSearch bool `yaml:"linear_search"`

	// JPGQuality is the quality between 1 and 100 used when storing jpg images.
	JPGQuality int `yaml:"jpeg_quality"`

	// Recursive controls if subdirectories of the asset directory are searched.
	Recursive bool `yaml:"recursive"`
}

// DefaultConfig returns a config with all defaults set.
func DefaultConfig() Config {
	var c Config
	c.Defaults()
	return c
}

// Defaults replaces all zero values by the defaults.
func (c *Config) Defaults() {
	if c.Columns <= 0 {
		c.Columns = DefaultColumns
	}
	if c.Rows <= 0 {
		c.Rows = DefaultRows
	}
	if c.TileSize <= 0 {
		c.TileSize = DefaultTileSize
	}
	if c.NumRoutines <= 0 {
		c.NumRoutines = DefaultNumRoutines()
	}
	if c.Interpolation == "" {
		c.Interpolation = "bilinear"
	}
	if c.TileStrategy == "" {
		c.TileStrategy = "force"
	}
	if c.Metric == "" {
		c.Metric = "euclid"
	}
	if c.JPGQuality <= 0 {
		c.JPGQuality = DefaultJPGQuality
	}
}

// Validate checks the values that can't be fixed by Defaults.
func (c *Config) Validate() error {
	if c.JPGQuality > 100 {
		return fmt.Errorf("JPG quality must be between 1 and 100, got %d", c.JPGQuality)
	}
	if _, err := ParseResizer(c.Interpolation); err != nil {
		return err
	}
	if _, err := ParseResizeStrategy(c.TileStrategy); err != nil {
		return err
	}
	if _, has := GetMetric(c.Metric); !has {
		return fmt.Errorf("Unknown metric: %s", c.Metric)
	}
	return nil
}

// LoadConfigFile reads a YAML config file, "~" is expanded to the home
// directory. Missing values are set to their defaults.
func LoadConfigFile(path string) (*Config, error) {
	path, pathErr := homedir.Expand(path)
	if pathErr != nil {
		return nil, pathErr
	}
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, err
	}
	cfg := &Config{}
	if err := yaml.Unmarshal(data, cfg); err != nil {
		return nil, fmt.Errorf("Invalid config file %s: %v", path, err)
	}
	cfg.Defaults()
	if err := cfg.Validate(); err != nil {
		return nil, err
	}
	return cfg, nil
}
