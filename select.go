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
	"math"
	"strings"
	"sync"

	"gonum.org/v1/gonum/spatial/kdtree"
)

// NoMatch is the position returned by a Matcher if no signature can be
// selected (empty index).
const NoMatch = -1

// Matcher selects for a color the position of the closest signature in a
// SignatureIndex. If several signatures have the same distance the one with
// the smallest position wins. If the index is empty NoMatch is returned.
//
// Implementations must be safe for concurrent use.
type Matcher interface {
	Match(target RGB) int
}

// LinearMatcher compares the target with the representative color of each
// signature.
type LinearMatcher struct {
	Metric          VectorMetric
	representatives [][]float64
}

// NewLinearMatcher returns a matcher for the index. A nil metric selects
// SquaredEuclidean.
func NewLinearMatcher(index SignatureIndex, metric VectorMetric) *LinearMatcher {
	if metric == nil {
		metric = SquaredEuclidean
	}
	reps := make([][]float64, len(index))
	for i, sig := range index {
		reps[i] = sig.Representative().Vector()
	}
	return &LinearMatcher{Metric: metric, representatives: reps}
}

// Match implements Matcher.
func (m *LinearMatcher) Match(target RGB) int {
	query := target.Float().Vector()
	best := NoMatch
	bestDist := math.Inf(1)
	for i, rep := range m.representatives {
		// strictly smaller: on ties the first one wins
		if dist := m.Metric(query, rep); dist < bestDist {
			best, bestDist = i, dist
		}
	}
	return best
}

// signaturePoint is the representative color of the signature at position
// index, as a point in a kd-tree.
type signaturePoint struct {
	pos   [3]float64
	index int
}

func newSignaturePoint(c FloatRGB, index int) signaturePoint {
	return signaturePoint{pos: [3]float64{c.R, c.G, c.B}, index: index}
}

func (p signaturePoint) Compare(c kdtree.Comparable, d kdtree.Dim) float64 {
	q := c.(signaturePoint)
	return p.pos[d] - q.pos[d]
}

func (p signaturePoint) Dims() int { return 3 }

// Distance returns the squared euclidean distance.
func (p signaturePoint) Distance(c kdtree.Comparable) float64 {
	q := c.(signaturePoint)
	return SquaredEuclidean(p.pos[:], q.pos[:])
}

type signaturePoints []signaturePoint

func (p signaturePoints) Index(i int) kdtree.Comparable { return p[i] }
func (p signaturePoints) Len() int                      { return len(p) }
func (p signaturePoints) Slice(start, end int) kdtree.Interface {
	return p[start:end]
}
func (p signaturePoints) Pivot(d kdtree.Dim) int {
	return signaturePlane{points: p, dim: d}.Pivot()
}

type signaturePlane struct {
	points signaturePoints
	dim    kdtree.Dim
}

func (p signaturePlane) Len() int { return len(p.points) }
func (p signaturePlane) Less(i, j int) bool {
	return p.points[i].pos[p.dim] < p.points[j].pos[p.dim]
}
func (p signaturePlane) Swap(i, j int) { p.points[i], p.points[j] = p.points[j], p.points[i] }
func (p signaturePlane) Slice(start, end int) kdtree.SortSlicer {
	return signaturePlane{points: p.points[start:end], dim: p.dim}
}
func (p signaturePlane) Pivot() int {
	return kdtree.Partition(p, kdtree.MedianOfMedians(p))
}

// KDTreeMatcher finds the signature with the smallest euclidean distance with
// a kd-tree. It returns the same positions as a LinearMatcher with the
// euclidean metric, including the tie-break on the smallest position.
type KDTreeMatcher struct {
	tree *kdtree.Tree
	size int
}

// NewKDTreeMatcher builds the kd-tree for the index.
func NewKDTreeMatcher(index SignatureIndex) *KDTreeMatcher {
	points := make(signaturePoints, len(index))
	for i, sig := range index {
		points[i] = newSignaturePoint(sig.Representative(), i)
	}
	return &KDTreeMatcher{tree: kdtree.New(points, false), size: len(index)}
}

// Match implements Matcher.
func (m *KDTreeMatcher) Match(target RGB) int {
	if m.size == 0 {
		return NoMatch
	}
	query := newSignaturePoint(target.Float(), NoMatch)
	nearest, dist := m.tree.Nearest(query)
	if nearest == nil {
		return NoMatch
	}
	// the tree returns any of the closest points, collect all of them to
	// find the first one in index order. The keeper radius is slightly larger
	// than dist so that no point at exactly dist is pruned.
	keeper := kdtree.NewDistKeeper(dist + dist*1e-9 + 1e-9)
	m.tree.NearestSet(keeper, query)
	best := nearest.(signaturePoint).index
	for _, candidate := range keeper.Heap {
		if candidate.Comparable == nil || candidate.Dist > dist {
			continue
		}
		if pos := candidate.Comparable.(signaturePoint).index; pos < best {
			best = pos
		}
	}
	return best
}

// NewMatcher returns a matcher for the index and the metric with the given
// name (see GetMetricNames). For the euclidean metric a KDTreeMatcher is
// used if kdTree is true.
func NewMatcher(index SignatureIndex, metricName string, kdTree bool) (Matcher, error) {
	if metricName == "" {
		metricName = "euclid"
	}
	metric, has := GetMetric(metricName)
	if !has {
		return nil, fmt.Errorf("Unknown metric %s, supported: %s", metricName,
			strings.Join(GetMetricNames(), ", "))
	}
	if kdTree && strings.ToLower(metricName) == "euclid" {
		return NewKDTreeMatcher(index), nil
	}
	return NewLinearMatcher(index, metric), nil
}

// MosaicResult contains for each grid cell the position of the selected
// signature, row by row. Cells without a match contain NoMatch.
type MosaicResult struct {
	Columns, Rows int
	Matches       []int
}

// At returns the position selected for column col and row row.
func (r *MosaicResult) At(col, row int) int {
	return r.Matches[row*r.Columns+col]
}

// Signature returns the signature selected for the cell, false if the cell
// has no match.
func (r *MosaicResult) Signature(index SignatureIndex, col, row int) (AssetSignature, bool) {
	pos := r.At(col, row)
	if pos == NoMatch || pos >= len(index) {
		return AssetSignature{}, false
	}
	return index[pos], true
}

// SelectAssets matches each cell of the grid, the cells are processed by
// numRoutines concurrent go routines.
func SelectAssets(grid *Grid, matcher Matcher, numRoutines int) *MosaicResult {
	if numRoutines <= 0 {
		numRoutines = 1
	}
	numCells := grid.Size()
	result := &MosaicResult{
		Columns: grid.Columns,
		Rows:    grid.Rows,
		Matches: make([]int, numCells),
	}

	var wg sync.WaitGroup
	wg.Add(numCells)
	jobs := make(chan int, BufferSize)

	for w := 0; w < numRoutines; w++ {
		go func() {
			for cell := range jobs {
				result.Matches[cell] = matcher.Match(grid.Cells[cell])
				wg.Done()
			}
		}()
	}

	go func() {
		for cell := 0; cell < numCells; cell++ {
			jobs <- cell
		}
		close(jobs)
	}()

	wg.Wait()
	return result
}
