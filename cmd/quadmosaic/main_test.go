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
	"bytes"
	"image"
	"image/color"
	"image/png"
	"os"
	"path/filepath"
	"strings"
	"testing"

	"github.com/FabianWe/quadmosaic"
)

func writeUniformPNG(t *testing.T, path string, c color.NRGBA) {
	t.Helper()
	img := image.NewNRGBA(image.Rect(0, 0, 6, 6))
	for y := 0; y < 6; y++ {
		for x := 0; x < 6; x++ {
			img.SetNRGBA(x, y, c)
		}
	}
	f, err := os.Create(path)
	if err != nil {
		t.Fatal(err)
	}
	defer f.Close()
	if err := png.Encode(f, img); err != nil {
		t.Fatal(err)
	}
}

func execute(t *testing.T, args ...string) (string, error) {
	t.Helper()
	var out bytes.Buffer
	rootCmd.SetOut(&out)
	rootCmd.SetErr(&out)
	rootCmd.SetArgs(args)
	err := rootCmd.Execute()
	return out.String(), err
}

func TestBuildAndCompose(t *testing.T) {
	assets := t.TempDir()
	writeUniformPNG(t, filepath.Join(assets, "red.png"), color.NRGBA{R: 255, A: 255})
	writeUniformPNG(t, filepath.Join(assets, "green.png"), color.NRGBA{G: 255, A: 255})
	work := t.TempDir()
	indexPath := filepath.Join(work, "index.json")

	out, err := execute(t, "index", "build", assets, "-o", indexPath, "-q")
	if err != nil {
		t.Fatalf("index build failed: %v\n%s", err, out)
	}
	if !strings.Contains(out, "wrote 2 signatures") {
		t.Errorf("Unexpected output: %s", out)
	}

	out, err = execute(t, "index", "check", indexPath, assets, "-q")
	if err != nil {
		t.Fatalf("index check failed: %v\n%s", err, out)
	}
	if !strings.Contains(out, "0 missing, 0 additional") {
		t.Errorf("Unexpected output: %s", out)
	}

	out, err = execute(t, "match", indexPath, "#00ee00", "-k", "1", "-q")
	if err != nil {
		t.Fatalf("match failed: %v\n%s", err, out)
	}
	if !strings.HasPrefix(out, "green.png") {
		t.Errorf("Expected green.png as best match, got %s", out)
	}
	if !strings.HasSuffix(strings.TrimSpace(out), " 17.000") {
		t.Errorf("Expected euclidean distance 17.000, got %s", out)
	}

	query := filepath.Join(work, "query.png")
	writeUniformPNG(t, query, color.NRGBA{R: 250, G: 20, A: 255})
	mosaicPath := filepath.Join(work, "mosaic.png")
	out, err = execute(t, "compose", query, mosaicPath, "--index", indexPath, "--assets", assets,
		"--grid", "3x2", "--tile", "5", "-q")
	if err != nil {
		t.Fatalf("compose failed: %v\n%s", err, out)
	}
	if !strings.Contains(out, "15x10 mosaic") {
		t.Errorf("Unexpected output: %s", out)
	}
	if _, err := os.Stat(mosaicPath); err != nil {
		t.Errorf("Mosaic not written: %v", err)
	}
}

func TestVerboseProgress(t *testing.T) {
	t.Cleanup(func() {
		verbose, showProgress = false, false
		quadmosaic.Debug = false
	})
	assets := t.TempDir()
	writeUniformPNG(t, filepath.Join(assets, "red.png"), color.NRGBA{R: 255, A: 255})
	writeUniformPNG(t, filepath.Join(assets, "blue.png"), color.NRGBA{B: 255, A: 255})
	indexPath := filepath.Join(t.TempDir(), "index.json")

	out, err := execute(t, "index", "build", assets, "-o", indexPath, "-v", "--progress")
	if err != nil {
		t.Fatalf("index build failed: %v\n%s", err, out)
	}
	if !quadmosaic.Debug {
		t.Error("Expected --verbose to enable debug mode")
	}
	if !strings.Contains(out, "Signatures: 2 of 2 (100.0%)") {
		t.Errorf("Expected progress output, got %s", out)
	}
}
