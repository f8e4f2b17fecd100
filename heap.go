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
	"container/heap"
	"fmt"
	"math"
	"strings"
)

// MatchEntry is an entry stored in a match heap: the position of a signature
// in the index and its distance to the target color.
type MatchEntry struct {
	Position int
	Distance float64
}

// worse returns true if e is a worse match than other. Equal distances are
// ordered by position, so the first signature in the index wins.
func (e MatchEntry) worse(other MatchEntry) bool {
	if e.Distance != other.Distance {
		return e.Distance > other.Distance
	}
	return e.Position > other.Position
}

// matchHeapInterface implements heap.Interface, the worst match is on top.
type matchHeapInterface []MatchEntry

func (h matchHeapInterface) Len() int {
	return len(h)
}

func (h matchHeapInterface) Less(i, j int) bool {
	return h[i].worse(h[j])
}

func (h matchHeapInterface) Swap(i, j int) {
	h[i], h[j] = h[j], h[i]
}

func (h *matchHeapInterface) Push(x interface{}) {
	*h = append(*h, x.(MatchEntry))
}

func (h *matchHeapInterface) Pop() interface{} {
	old := *h
	n := len(old)
	x := old[n-1]
	*h = old[:n-1]
	return x
}

// MatchHeap keeps the best matches added to it. If bound > 0 only the bound
// best entries are kept.
type MatchHeap struct {
	interf matchHeapInterface
	bound  int
}

// NewMatchHeap returns a new heap with the given bound, bound ≤ 0 means that
// all entries are kept.
func NewMatchHeap(bound int) *MatchHeap {
	capacity := bound
	if capacity < 1 {
		capacity = 100
	}
	return &MatchHeap{
		interf: make(matchHeapInterface, 0, capacity+1),
		bound:  bound,
	}
}

// Add adds a new entry to the heap, truncating it to the bound.
func (h *MatchHeap) Add(position int, distance float64) {
	heap.Push(&h.interf, MatchEntry{Position: position, Distance: distance})
	if h.bound >= 1 {
		for h.interf.Len() > h.bound {
			heap.Pop(&h.interf)
		}
	}
}

// Len returns the number of entries in the heap.
func (h *MatchHeap) Len() int {
	return h.interf.Len()
}

// GetView returns the entries in the heap, best match first.
// The complexity is O(n * log(n)) where n is the size of the heap.
func (h *MatchHeap) GetView() []MatchEntry {
	n := h.interf.Len()
	tmp := make(matchHeapInterface, n)
	copy(tmp, h.interf)
	res := make([]MatchEntry, n)
	for i := 0; i < n; i++ {
		res[n-i-1] = heap.Pop(&tmp).(MatchEntry)
	}
	return res
}

// BestMatches returns the k signatures closest to target, best first. k ≤ 0
// returns all signatures ordered by distance. metricName selects the metric
// (see GetMetricNames), the empty string selects "euclid". The first entry is
// always the one chosen by a Matcher with the same metric.
//
// "euclid" ranks by the squared distance, the reported Distance is the
// euclidean distance.
func BestMatches(index SignatureIndex, metricName string, target RGB, k int) ([]MatchEntry, error) {
	if metricName == "" {
		metricName = "euclid"
	}
	metric, has := GetMetric(metricName)
	if !has {
		return nil, fmt.Errorf("Unknown metric %s, supported: %s", metricName,
			strings.Join(GetMetricNames(), ", "))
	}
	h := NewMatchHeap(k)
	query := target.Float().Vector()
	for i, sig := range index {
		h.Add(i, metric(query, sig.Representative().Vector()))
	}
	res := h.GetView()
	if strings.ToLower(metricName) == "euclid" {
		for i := range res {
			res[i].Distance = math.Sqrt(res[i].Distance)
		}
	}
	return res, nil
}
