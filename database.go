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
	"image"
	"os"
	"path/filepath"
	"sort"
	"sync"

	// decoders for all formats accepted by AllSupported
	_ "image/gif"
	_ "image/jpeg"
	_ "image/png"

	_ "golang.org/x/image/bmp"
	_ "golang.org/x/image/tiff"
	_ "golang.org/x/image/webp"
)

// AssetStorage is used to administrate the asset library. Assets are
// identified by a unique name and are loaded into memory on demand.
//
// Implementations must be safe for concurrent use.
type AssetStorage interface {
	// Names returns the names of all assets in discovery order.
	Names() []string

	// LoadImage loads an asset into memory. Errors wrap ErrUnreadableAsset.
	LoadImage(name string) (image.Image, error)
}

// DecodeImageFile opens and decodes the image file at path.
func DecodeImageFile(path string) (image.Image, error) {
	r, openErr := os.Open(path)
	if openErr != nil {
		return nil, openErr
	}
	defer r.Close()
	img, _, decodeErr := image.Decode(r)
	return img, decodeErr
}

// FSAssetDB implements AssetStorage. It uses images stored on the filesystem
// and opens them on demand.
// The paths are stored relative to a Root directory and use slashes as
// separator, they're the names of the assets.
type FSAssetDB struct {
	Root  string
	Paths []string
	known map[string]struct{}
}

// NewFSAssetDB returns a storage containing the given paths relative to root.
func NewFSAssetDB(root string, paths []string) *FSAssetDB {
	known := make(map[string]struct{}, len(paths))
	for _, path := range paths {
		known[path] = struct{}{}
	}
	return &FSAssetDB{Root: root, Paths: paths, known: known}
}

// GetPath returns the absolute path of the asset.
func (db *FSAssetDB) GetPath(name string) string {
	return filepath.Join(db.Root, filepath.FromSlash(name))
}

// Names returns the relative paths of all assets.
func (db *FSAssetDB) Names() []string {
	res := make([]string, len(db.Paths))
	copy(res, db.Paths)
	return res
}

// LoadImage implements AssetStorage. Only names returned by Names are
// accepted.
func (db *FSAssetDB) LoadImage(name string) (image.Image, error) {
	if _, has := db.known[name]; !has {
		return nil, fmt.Errorf("%w: %s is not part of the asset library", ErrUnreadableAsset, name)
	}
	img, err := DecodeImageFile(db.GetPath(name))
	if err != nil {
		return nil, fmt.Errorf("%w: %s: %v", ErrUnreadableAsset, name, err)
	}
	return img, nil
}

// GenFSDatabase creates a storage containing all files in root accepted by
// filter (AllSupported if nil). If recursive is true all subdirectories are
// searched as well. The paths are sorted, so the order of the assets does not
// depend on the filesystem.
func GenFSDatabase(root string, recursive bool, filter SupportedImageFunc) (*FSAssetDB, error) {
	root, absErr := filepath.Abs(root)
	if absErr != nil {
		return nil, absErr
	}
	if filter == nil {
		filter = AllSupported
	}
	var paths []string
	var err error
	if recursive {
		paths, err = walkRecursive(root, filter)
	} else {
		paths, err = readNonRecursive(root, filter)
	}
	if err != nil {
		return nil, err
	}
	sort.Strings(paths)
	return NewFSAssetDB(root, paths), nil
}

func walkRecursive(root string, filter SupportedImageFunc) ([]string, error) {
	var res []string
	walkFunc := func(path string, info os.FileInfo, err error) error {
		switch {
		case err != nil:
			return err
		case !info.IsDir() && filter(filepath.Ext(path)):
			rel, relErr := filepath.Rel(root, path)
			if relErr != nil {
				return relErr
			}
			res = append(res, filepath.ToSlash(rel))
			return nil
		default:
			return nil
		}
	}
	if err := filepath.Walk(root, walkFunc); err != nil {
		return nil, err
	}
	return res, nil
}

func readNonRecursive(root string, filter SupportedImageFunc) ([]string, error) {
	entries, err := os.ReadDir(root)
	if err != nil {
		return nil, err
	}
	var res []string
	for _, entry := range entries {
		if !entry.IsDir() && filter(filepath.Ext(entry.Name())) {
			res = append(res, entry.Name())
		}
	}
	return res, nil
}

// MemoryAssetDB implements AssetStorage with images kept in memory.
type MemoryAssetDB struct {
	m      sync.RWMutex
	names  []string
	images map[string]image.Image
}

// NewMemoryAssetDB returns an empty memory storage.
func NewMemoryAssetDB() *MemoryAssetDB {
	return &MemoryAssetDB{images: make(map[string]image.Image)}
}

// Add adds an asset, an existing asset with the same name is replaced but
// keeps its position.
func (db *MemoryAssetDB) Add(name string, img image.Image) {
	db.m.Lock()
	defer db.m.Unlock()
	if _, has := db.images[name]; !has {
		db.names = append(db.names, name)
	}
	db.images[name] = img
}

// Names implements AssetStorage.
func (db *MemoryAssetDB) Names() []string {
	db.m.RLock()
	defer db.m.RUnlock()
	res := make([]string, len(db.names))
	copy(res, db.names)
	return res
}

// LoadImage implements AssetStorage. A nil image registered for a name is
// treated as unreadable.
func (db *MemoryAssetDB) LoadImage(name string) (image.Image, error) {
	db.m.RLock()
	defer db.m.RUnlock()
	img, has := db.images[name]
	if !has || img == nil {
		return nil, fmt.Errorf("%w: %s", ErrUnreadableAsset, name)
	}
	return img, nil
}
