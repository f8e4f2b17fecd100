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

	log "github.com/sirupsen/logrus"
)

// AssetStatus is the result of processing a single asset. Err is nil if a
// signature was created.
type AssetStatus struct {
	Name string
	Err  error
}

// OK returns true if the asset was processed successfully.
func (s AssetStatus) OK() bool {
	return s.Err == nil
}

// BuildReport contains the status of each asset of a build, in the order of
// the assets in the storage.
type BuildReport struct {
	Assets []AssetStatus
}

// Succeeded returns the number of assets with a signature.
func (r *BuildReport) Succeeded() int {
	res := 0
	for _, status := range r.Assets {
		if status.OK() {
			res++
		}
	}
	return res
}

// Failed returns the status of all skipped assets.
func (r *BuildReport) Failed() []AssetStatus {
	var res []AssetStatus
	for _, status := range r.Assets {
		if !status.OK() {
			res = append(res, status)
		}
	}
	return res
}

func (r *BuildReport) String() string {
	return fmt.Sprintf("%d of %d assets processed, %d skipped",
		r.Succeeded(), len(r.Assets), len(r.Assets)-r.Succeeded())
}

// LoadSignature loads an asset from the storage and computes its signature.
// All errors wrap either ErrUnreadableAsset or ErrDegenerateAsset.
func LoadSignature(storage AssetStorage, name string) (AssetSignature, error) {
	img, imgErr := storage.LoadImage(name)
	if imgErr != nil {
		if !errors.Is(imgErr, ErrUnreadableAsset) {
			imgErr = fmt.Errorf("%w: %s: %v", ErrUnreadableAsset, name, imgErr)
		}
		return AssetSignature{}, imgErr
	}
	sig, sigErr := ComputeSignature(name, img)
	if sigErr != nil && !errors.Is(sigErr, ErrDegenerateAsset) {
		// sub images could not be created, the decoded image is not usable
		sigErr = fmt.Errorf("%w: %s: %v", ErrUnreadableAsset, name, sigErr)
	}
	return sig, sigErr
}

// BuildIndex computes the signatures of all assets in the storage.
//
// Assets that can't be read or are too small are skipped with a warning, they
// never abort the build. The assets are processed concurrently by numRoutines
// go routines but the index always has the order of storage.Names().
//
// progress may be nil, it is called after each asset.
func BuildIndex(storage AssetStorage, numRoutines int, progress ProgressFunc) (SignatureIndex, *BuildReport) {
	if numRoutines <= 0 {
		numRoutines = 1
	}
	names := storage.Names()
	numAssets := len(names)

	signatures := make([]AssetSignature, numAssets)
	report := &BuildReport{Assets: make([]AssetStatus, numAssets)}

	jobs := make(chan int, BufferSize)
	done := make(chan int, BufferSize)

	for w := 0; w < numRoutines; w++ {
		go func() {
			for pos := range jobs {
				// each worker writes only its own positions
				sig, err := LoadSignature(storage, names[pos])
				signatures[pos] = sig
				report.Assets[pos] = AssetStatus{Name: names[pos], Err: err}
				done <- pos
			}
		}()
	}

	go func() {
		for pos := range names {
			jobs <- pos
		}
		close(jobs)
	}()

	for i := 0; i < numAssets; i++ {
		pos := <-done
		status := report.Assets[pos]
		if status.OK() {
			log.WithField("asset", status.Name).Debug("Processed asset")
		} else {
			log.WithFields(log.Fields{
				log.ErrorKey: status.Err,
				"asset":      status.Name,
			}).Warn("Skipping asset")
		}
		if progress != nil {
			progress(i + 1)
		}
	}

	index := make(SignatureIndex, 0, numAssets)
	for pos, status := range report.Assets {
		if status.OK() {
			index = append(index, signatures[pos])
		}
	}
	return index, report
}
