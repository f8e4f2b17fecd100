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
	"bytes"
	"errors"
	"go/format"
	"os"
	"path/filepath"
	"strings"
	"testing"
)

func TestParseDimensions(t *testing.T) {
	tests := []struct {
		in         string
		a, b       int
		shouldFail bool
	}{
		{"8x10", 8, 10, false},
		{" 1 x 2 ", 1, 2, false},
		{"8", 0, 0, true},
		{"8x", 0, 0, true},
		{"0x10", 0, 0, true},
		{"-1x10", 0, 0, true},
		{"axb", 0, 0, true},
		{"1x2x3", 0, 0, true},
	}
	for _, tc := range tests {
		a, b, err := ParseDimensions(tc.in)
		if tc.shouldFail {
			if !errors.Is(err, ErrInvalidDimensions) {
				t.Errorf("%q: expected ErrInvalidDimensions, got %v", tc.in, err)
			}
			continue
		}
		if err != nil || a != tc.a || b != tc.b {
			t.Errorf("%q: expected %d, %d, got %d, %d (%v)", tc.in, tc.a, tc.b, a, b, err)
		}
	}
}

func TestStdProgressFunc(t *testing.T) {
	var buf bytes.Buffer
	progress := StdProgressFunc(&buf, "Tiles", 10, 5)
	for i := 1; i <= 10; i++ {
		progress(i)
	}
	out := buf.String()
	if !strings.Contains(out, "Tiles") || !strings.Contains(out, "100") {
		t.Errorf("Unexpected progress output: %q", out)
	}
}

func TestMetricRegistry(t *testing.T) {
	names := GetMetricNames()
	for _, name := range []string{"chessboard", "euclid", "manhattan"} {
		if _, has := GetMetric(name); !has {
			t.Errorf("Metric %s not registered, have %v", name, names)
		}
	}
	if RegisterMetric("Euclid", EuclideanDistance) {
		t.Error("Registering an existing name must fail")
	}
	p, q := []float64{0, 0, 0}, []float64{3, 4, 1}
	if d := Manhattan(p, q); d != 8 {
		t.Errorf("Expected manhattan distance 8, got %f", d)
	}
	if d := ChessboardDistance(p, q); d != 4 {
		t.Errorf("Expected chessboard distance 4, got %f", d)
	}
	if d := SquaredEuclidean(p, q); d != 26 {
		t.Errorf("Expected squared distance 26, got %f", d)
	}
}

func TestSourcesFormatted(t *testing.T) {
	var files []string
	for _, pattern := range []string{"*.go", "web/*.go", "cmd/*/*.go"} {
		matches, err := filepath.Glob(pattern)
		if err != nil {
			t.Fatal(err)
		}
		files = append(files, matches...)
	}
	if len(files) == 0 {
		t.Fatal("No source files found")
	}
	for _, file := range files {
		src, err := os.ReadFile(file)
		if err != nil {
			t.Fatal(err)
		}
		formatted, err := format.Source(src)
		if err != nil {
			t.Errorf("%s: %v", file, err)
			continue
		}
		if !bytes.Equal(src, formatted) {
			t.Errorf("%s is not gofmt formatted", file)
		}
	}
}
