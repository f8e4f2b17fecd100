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
	"encoding/json"
	"path/filepath"

	"github.com/FabianWe/quadmosaic"
	"github.com/spf13/cobra"
)

var signatureCmd = &cobra.Command{
	Use:   "signature <image>",
	Short: "Print the quadrant signature of a single image as JSON",
	Args:  cobra.ExactArgs(1),
	RunE:  runSignature,
}

func runSignature(cmd *cobra.Command, args []string) error {
	path, err := expandPath(args[0])
	if err != nil {
		return err
	}
	img, err := quadmosaic.DecodeImageFile(path)
	if err != nil {
		return err
	}
	sig, err := quadmosaic.ComputeSignature(filepath.Base(path), img)
	if err != nil {
		return err
	}
	enc := json.NewEncoder(cmd.OutOrStdout())
	enc.SetIndent("", "  ")
	return enc.Encode(sig)
}
