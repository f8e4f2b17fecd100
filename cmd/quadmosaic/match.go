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

	"github.com/FabianWe/quadmosaic"
	"github.com/spf13/cobra"
)

var (
	matchCount int

	matchCmd = &cobra.Command{
		Use:   "match <index-file> <color>",
		Short: "Print the signatures closest to a color such as #ff8800",
		Args:  cobra.ExactArgs(2),
		RunE:  runMatch,
	}
)

func init() {
	matchCmd.Flags().IntVarP(&matchCount, "count", "k", 5, "number of signatures to print, 0 for all")
	matchCmd.Flags().StringVar(&cfg.Metric, "metric", cfg.Metric,
		fmt.Sprintf("color metric, one of %v", quadmosaic.GetMetricNames()))
	rootCmd.AddCommand(matchCmd)
}

func runMatch(cmd *cobra.Command, args []string) error {
	index, err := readIndex(args[0])
	if err != nil {
		return err
	}
	target, err := quadmosaic.ParseHexColor(args[1])
	if err != nil {
		return err
	}
	entries, err := quadmosaic.BestMatches(index, cfg.Metric, target, matchCount)
	if err != nil {
		return err
	}
	out := cmd.OutOrStdout()
	for _, entry := range entries {
		sig := index[entry.Position]
		fmt.Fprintf(out, "%s %s %.3f\n", sig.Name, sig.Representative(), entry.Distance)
	}
	return nil
}
