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
	"os"

	"github.com/FabianWe/quadmosaic"
	homedir "github.com/mitchellh/go-homedir"
	log "github.com/sirupsen/logrus"
	"github.com/spf13/cobra"
	"github.com/spf13/pflag"
)

var (
	configFile   string
	verbose      bool
	quiet        bool
	showProgress bool

	// cfg is the config file (or defaults) with command line flags applied.
	cfg = quadmosaic.DefaultConfig()

	rootCmd = &cobra.Command{
		Use:   "quadmosaic",
		Short: "Create mosaic images from a library of assets",
		Long: `quadmosaic computes color signatures for a library of asset images and
uses them to replace each cell of a query image by the asset that matches
its color best.`,
		Version:           quadmosaic.Version,
		SilenceUsage:      true,
		PersistentPreRunE: setup,
	}
)

func init() {
	rootCmd.PersistentFlags().BoolVarP(&verbose, "verbose", "v", false, "enable debug output")
	rootCmd.PersistentFlags().BoolVarP(&quiet, "quiet", "q", false, "suppress non-error output")
	rootCmd.PersistentFlags().StringVarP(&configFile, "config", "c", "", "YAML config file")
	rootCmd.PersistentFlags().BoolVar(&showProgress, "progress", false, "print progress to stderr, also with --quiet")
	rootCmd.PersistentFlags().IntVar(&cfg.NumRoutines, "routines", cfg.NumRoutines, "number of concurrent go routines")

	rootCmd.AddCommand(indexCmd)
	rootCmd.AddCommand(signatureCmd)
	rootCmd.AddCommand(composeCmd)
	rootCmd.AddCommand(serveCmd)
}

// setup configures logging and reads the config file. Flags given on the
// command line override the values from the file.
func setup(cmd *cobra.Command, args []string) error {
	quadmosaic.Debug = verbose
	switch {
	case verbose:
		log.SetLevel(log.DebugLevel)
	case quiet:
		log.SetLevel(log.ErrorLevel)
	default:
		log.SetLevel(log.InfoLevel)
	}
	flags := cmd.Flags()
	if configFile != "" {
		fileCfg, err := quadmosaic.LoadConfigFile(configFile)
		if err != nil {
			return err
		}
		flagCfg := cfg
		cfg = *fileCfg
		applyChangedFlags(flags, flagCfg)
	}
	if flags.Changed("grid") {
		columns, rows, err := quadmosaic.ParseDimensions(gridFlag)
		if err != nil {
			return err
		}
		cfg.Columns, cfg.Rows = columns, rows
	}
	cfg.Defaults()
	return cfg.Validate()
}

// applyChangedFlags copies the values of all flags given on the command line
// from flagCfg to cfg.
func applyChangedFlags(flags *pflag.FlagSet, flagCfg quadmosaic.Config) {
	if flags.Changed("routines") {
		cfg.NumRoutines = flagCfg.NumRoutines
	}
	if flags.Changed("recursive") {
		cfg.Recursive = flagCfg.Recursive
	}
	if flags.Changed("tile") {
		cfg.TileSize = flagCfg.TileSize
	}
	if flags.Changed("interp") {
		cfg.Interpolation = flagCfg.Interpolation
	}
	if flags.Changed("strategy") {
		cfg.TileStrategy = flagCfg.TileStrategy
	}
	if flags.Changed("metric") {
		cfg.Metric = flagCfg.Metric
	}
	if flags.Changed("linear") {
		cfg.LinearSearch = flagCfg.LinearSearch
	}
	if flags.Changed("jpeg-quality") {
		cfg.JPGQuality = flagCfg.JPGQuality
	}
}

// newProgress reports about every tenth of max finished steps, as plain lines
// on stderr with --progress and through the logger otherwise.
func newProgress(cmd *cobra.Command, prefix string, max int) quadmosaic.ProgressFunc {
	step := quadmosaic.IntMax(1, max/10)
	if showProgress {
		return quadmosaic.StdProgressFunc(cmd.ErrOrStderr(), prefix, max, step)
	}
	return quadmosaic.LoggerProgressFunc(prefix, max, step)
}

func expandPath(path string) (string, error) {
	expanded, err := homedir.Expand(path)
	if err != nil {
		return "", fmt.Errorf("Invalid path %s: %v", path, err)
	}
	return expanded, nil
}

// openAssets reads the names of all supported images in dir.
func openAssets(dir string) (*quadmosaic.FSAssetDB, error) {
	dir, err := expandPath(dir)
	if err != nil {
		return nil, err
	}
	return quadmosaic.GenFSDatabase(dir, cfg.Recursive, quadmosaic.AllSupported)
}

func readIndex(path string) (quadmosaic.SignatureIndex, error) {
	path, err := expandPath(path)
	if err != nil {
		return nil, err
	}
	return quadmosaic.ReadIndexFile(path)
}

func main() {
	if err := rootCmd.Execute(); err != nil {
		os.Exit(1)
	}
}
