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
	"errors"
	"fmt"
	"io"
	"runtime"
	"strconv"
	"strings"

	log "github.com/sirupsen/logrus"
)

var (
	// Debug enables additional checks and log output. The executable sets it
	// with --verbose.
	Debug = false

	// BufferSize is the (default) size of buffers. Some methods create buffered
	// channels, this parameter controls how big such buffers might be.
	// Usually such buffers store no big data (ints, bools etc.).
	BufferSize = 1000

	// ErrInvalidDimensions is returned by ParseDimensions for strings not of
	// the form "AxB".
	ErrInvalidDimensions = errors.New("Invalid dimension format")
)

// DefaultNumRoutines returns the default number of go routines used for
// concurrent tasks: twice the number of CPUs.
func DefaultNumRoutines() int {
	res := runtime.NumCPU() * 2
	if res <= 0 {
		// don't know if this can happen, better safe than sorry
		res = 4
	}
	return res
}

// ProgressFunc is a function that is used to inform a caller about the
// progress of a long running task. num is the number of finished steps.
type ProgressFunc func(num int)

// ProgressIgnore does nothing.
func ProgressIgnore(num int) {}

func progressPercent(num, max int) float64 {
	percent := (float64(num) / float64(max)) * 100.0
	if percent > 100.0 {
		percent = 100.0
	}
	return percent
}

// LoggerProgressFunc returns a ProgressFunc that logs every step-th call with
// logrus. max is the total number of steps. step <= 0 logs every call.
func LoggerProgressFunc(prefix string, max, step int) ProgressFunc {
	if prefix == "" {
		prefix = "Progress"
	}
	return func(num int) {
		if max == 0 || (step > 0 && num%step != 0) {
			return
		}
		log.Infof("%s: %d of %d (%.1f%%)", prefix, num, max, progressPercent(num, max))
	}
}

// StdProgressFunc is like LoggerProgressFunc but writes to w.
func StdProgressFunc(w io.Writer, prefix string, max, step int) ProgressFunc {
	if prefix == "" {
		prefix = "Progress"
	}
	return func(num int) {
		if max == 0 || (step > 0 && num%step != 0) {
			return
		}
		fmt.Fprintf(w, "%s: %d of %d (%.1f%%)\n", prefix, num, max, progressPercent(num, max))
	}
}

// ParseDimensions parses dimensions of the form "AxB", for example "8x10".
// Both values must be positive.
func ParseDimensions(s string) (int, int, error) {
	split := strings.Split(s, "x")
	if len(split) != 2 {
		return -1, -1, fmt.Errorf("%w: %s. Expect \"AxB\"", ErrInvalidDimensions, s)
	}
	first, firstErr := strconv.Atoi(strings.TrimSpace(split[0]))
	if firstErr != nil {
		return -1, -1, fmt.Errorf("%w: %v", ErrInvalidDimensions, firstErr)
	}
	second, secondErr := strconv.Atoi(strings.TrimSpace(split[1]))
	if secondErr != nil {
		return -1, -1, fmt.Errorf("%w: %v", ErrInvalidDimensions, secondErr)
	}
	if first <= 0 || second <= 0 {
		return -1, -1, fmt.Errorf("%w: Dimensions must be positive, got %d and %d",
			ErrInvalidDimensions, first, second)
	}
	return first, second, nil
}

// IntMax returns the maximum of a and b.
func IntMax(a, b int) int {
	if a > b {
		return a
	}
	return b
}
