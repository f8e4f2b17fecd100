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
	"math"
	"sort"
	"strings"

	"gonum.org/v1/gonum/floats"
)

// VectorMetric is a function that computes the distance between two vectors
// of the same length. Colors are compared as vectors (r, g, b).
//
// Only the order of the values is relevant when searching for the closest
// color, so a metric does not have to be a "real" metric (see
// SquaredEuclidean).
type VectorMetric func(p, q []float64) float64

// EuclideanDistance returns the euclidean distance between p and q.
func EuclideanDistance(p, q []float64) float64 {
	return floats.Distance(p, q, 2)
}

// SquaredEuclidean returns the squared euclidean distance. It yields the same
// order as EuclideanDistance without computing the square root.
func SquaredEuclidean(p, q []float64) float64 {
	var sum float64
	for i, e1 := range p {
		diff := e1 - q[i]
		sum += diff * diff
	}
	return sum
}

// Manhattan returns the manhattan distance between p and q.
func Manhattan(p, q []float64) float64 {
	return floats.Distance(p, q, 1)
}

// ChessboardDistance returns the chessboard distance (maximum norm) between p
// and q.
func ChessboardDistance(p, q []float64) float64 {
	return floats.Distance(p, q, math.Inf(1))
}

var (
	vectorMetrics map[string]VectorMetric
)

// RegisterMetric registers a metric under the given name, names are case
// insensitive. It returns false if a metric with that name already exists.
func RegisterMetric(name string, metric VectorMetric) bool {
	name = strings.ToLower(name)
	if _, has := vectorMetrics[name]; has {
		return false
	}
	vectorMetrics[name] = metric
	return true
}

// GetMetricNames returns the sorted names of all registered metrics.
func GetMetricNames() []string {
	res := make([]string, 0, len(vectorMetrics))
	for key := range vectorMetrics {
		res = append(res, key)
	}
	sort.Strings(res)
	return res
}

// GetMetric returns the metric registered with the given name.
func GetMetric(name string) (VectorMetric, bool) {
	metric, has := vectorMetrics[strings.ToLower(name)]
	return metric, has
}

func init() {
	vectorMetrics = make(map[string]VectorMetric)
	RegisterMetric("euclid", SquaredEuclidean)
	RegisterMetric("manhattan", Manhattan)
	RegisterMetric("chessboard", ChessboardDistance)
}
