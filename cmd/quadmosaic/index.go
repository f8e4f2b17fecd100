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
	indexOutput string

	indexCmd = &cobra.Command{
		Use:   "index",
		Short: "Create and inspect signature indexes",
	}

	indexBuildCmd = &cobra.Command{
		Use:   "build <asset-dir>",
		Short: "Compute the signatures of all assets in a directory",
		Long: `Compute the quadrant signatures of all images in the asset directory and
write them to the index file. The format is given by the extension of the
output file: .json, .gob or .db (SQLite).`,
		Args: cobra.ExactArgs(1),
		RunE: runIndexBuild,
	}

	indexShowCmd = &cobra.Command{
		Use:   "show <index-file>",
		Short: "Print the signatures of an index",
		Args:  cobra.ExactArgs(1),
		RunE:  runIndexShow,
	}

	indexCheckCmd = &cobra.Command{
		Use:   "check <index-file> <asset-dir>",
		Short: "Compare an index with the assets in a directory",
		Args:  cobra.ExactArgs(2),
		RunE:  runIndexCheck,
	}
)

func init() {
	indexBuildCmd.Flags().StringVarP(&indexOutput, "output", "o", quadmosaic.DefaultIndexFile, "index file to write")
	indexBuildCmd.Flags().BoolVarP(&cfg.Recursive, "recursive", "r", false, "include subdirectories")
	indexCheckCmd.Flags().BoolVarP(&cfg.Recursive, "recursive", "r", false, "include subdirectories")

	indexCmd.AddCommand(indexBuildCmd)
	indexCmd.AddCommand(indexShowCmd)
	indexCmd.AddCommand(indexCheckCmd)
}

func runIndexBuild(cmd *cobra.Command, args []string) error {
	storage, err := openAssets(args[0])
	if err != nil {
		return err
	}
	output, err := expandPath(indexOutput)
	if err != nil {
		return err
	}
	numAssets := len(storage.Names())
	log.WithFields(log.Fields{
		"assets":   numAssets,
		"routines": cfg.NumRoutines,
	}).Info("Computing signatures")
	start := time.Now()
	progress := newProgress(cmd, "Signatures", numAssets)
	index, report := quadmosaic.BuildIndex(storage, cfg.NumRoutines, progress)
	log.WithField("duration", time.Since(start)).Info(report.String())
	for _, status := range report.Failed() {
		fmt.Fprintf(cmd.ErrOrStderr(), "skipped %s: %v\n", status.Name, status.Err)
	}
	if err := quadmosaic.WriteIndexFile(output, index); err != nil {
		return err
	}
	fmt.Fprintf(cmd.OutOrStdout(), "wrote %d signatures to %s\n", len(index), output)
	return nil
}

func runIndexShow(cmd *cobra.Command, args []string) error {
	index, err := readIndex(args[0])
	if err != nil {
		return err
	}
	out := cmd.OutOrStdout()
	for _, sig := range index {
		fmt.Fprintf(out, "%s:", sig.Name)
		for _, key := range quadmosaic.QuadrantKeys {
			fmt.Fprintf(out, " %s=%s", key, sig.Quadrants.Get(key).Hex())
		}
		fmt.Fprintf(out, " representative=%s\n", sig.Representative())
	}
	fmt.Fprintf(out, "%d signatures\n", len(index))
	return nil
}

func runIndexCheck(cmd *cobra.Command, args []string) error {
	index, err := readIndex(args[0])
	if err != nil {
		return err
	}
	storage, err := openAssets(args[1])
	if err != nil {
		return err
	}
	names := storage.Names()
	missing := index.MissingEntries(names)
	additional := index.AdditionalEntries(names)
	out := cmd.OutOrStdout()
	for _, name := range missing {
		fmt.Fprintf(out, "missing: %s\n", name)
	}
	for _, name := range additional {
		fmt.Fprintf(out, "additional: %s\n", name)
	}
	fmt.Fprintf(out, "%d assets, %d signatures, %d missing, %d additional\n",
		len(names), len(index), len(missing), len(additional))
	if len(missing) > 0 || len(additional) > 0 {
		return fmt.Errorf("Index %s is out of date", args[0])
	}
	return nil
}
