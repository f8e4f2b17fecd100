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
	"encoding/gob"
	"encoding/json"
	"fmt"
	"io"
	"os"
	"path/filepath"
	"strings"
)

// Version is the version of this library, stored in index files.
const Version = "0.1.0"

// DefaultIndexFile is the proposed file name for a signature index.
const DefaultIndexFile = "item-colors.json"

// SignatureFile is the content of a gob encoded index file.
// JSON files contain only the list of signatures.
type SignatureFile struct {
	Version string
	Entries SignatureIndex
}

// WriteJSON writes the index as JSON array, each entry of the form
// {"name": ..., "quadrants": {"topLeft": {"r": ..., "g": ..., "b": ...}, ...}}.
func (index SignatureIndex) WriteJSON(w io.Writer) error {
	enc := json.NewEncoder(w)
	enc.SetIndent("", "  ")
	// an empty index is written as [] and not as null
	if index == nil {
		index = SignatureIndex{}
	}
	return enc.Encode(index)
}

// ReadJSONIndex reads an index written by WriteJSON. An object of the form
// {"Version": ..., "Entries": [...]} is accepted as well.
func ReadJSONIndex(r io.Reader) (SignatureIndex, error) {
	data, readErr := io.ReadAll(r)
	if readErr != nil {
		return nil, readErr
	}
	data = bytes.TrimSpace(data)
	if len(data) > 0 && data[0] == '{' {
		var file SignatureFile
		if err := json.Unmarshal(data, &file); err != nil {
			return nil, err
		}
		return file.Entries, nil
	}
	var index SignatureIndex
	if err := json.Unmarshal(data, &index); err != nil {
		return nil, err
	}
	return index, nil
}

// WriteGob writes the index gob encoded.
func (index SignatureIndex) WriteGob(w io.Writer) error {
	return gob.NewEncoder(w).Encode(SignatureFile{Version: Version, Entries: index})
}

// ReadGobIndex reads an index written by WriteGob.
func ReadGobIndex(r io.Reader) (SignatureIndex, error) {
	var file SignatureFile
	if err := gob.NewDecoder(r).Decode(&file); err != nil {
		return nil, err
	}
	return file.Entries, nil
}

func isSQLiteExt(ext string) bool {
	switch ext {
	case ".db", ".sqlite", ".sqlite3":
		return true
	default:
		return false
	}
}

// WriteIndexFile writes the index to path, the format is given by the file
// extension: ".json", ".gob" or ".db" / ".sqlite" / ".sqlite3" for SQLite.
// An existing index in the file is replaced.
func WriteIndexFile(path string, index SignatureIndex) error {
	ext := strings.ToLower(filepath.Ext(path))
	if isSQLiteExt(ext) {
		store, err := OpenSQLiteIndexStore(path)
		if err != nil {
			return err
		}
		defer store.Close()
		return store.Save(index)
	}
	var write func(w io.Writer) error
	switch ext {
	case ".json":
		write = index.WriteJSON
	case ".gob":
		write = index.WriteGob
	default:
		return fmt.Errorf("Unknown file extension for index file: %s. Should be \".json\", \".gob\" or \".db\"", ext)
	}
	return writeFileAtomic(path, write)
}

// writeFileAtomic writes to a temporary file in the directory of path and
// renames it to path once write succeeded. On error path is left untouched
// and the temporary file is removed.
func writeFileAtomic(path string, write func(w io.Writer) error) (err error) {
	f, err := os.CreateTemp(filepath.Dir(path), "."+filepath.Base(path)+".*.tmp")
	if err != nil {
		return err
	}
	tmpName := f.Name()
	defer func() {
		if err != nil {
			os.Remove(tmpName)
		}
	}()
	writeErr := write(f)
	closeErr := f.Close()
	if writeErr != nil {
		return writeErr
	}
	if closeErr != nil {
		return closeErr
	}
	return os.Rename(tmpName, path)
}

// ReadIndexFile reads an index written by WriteIndexFile and validates it.
func ReadIndexFile(path string) (SignatureIndex, error) {
	ext := strings.ToLower(filepath.Ext(path))
	var index SignatureIndex
	var err error
	switch {
	case isSQLiteExt(ext):
		// don't create a new database for a missing file
		if _, statErr := os.Stat(path); statErr != nil {
			return nil, statErr
		}
		store, openErr := OpenSQLiteIndexStore(path)
		if openErr != nil {
			return nil, openErr
		}
		defer store.Close()
		index, err = store.Load()
	case ext == ".json" || ext == ".gob":
		f, openErr := os.Open(path)
		if openErr != nil {
			return nil, openErr
		}
		defer f.Close()
		if ext == ".json" {
			index, err = ReadJSONIndex(f)
		} else {
			index, err = ReadGobIndex(f)
		}
	default:
		return nil, fmt.Errorf("Unknown file extension for index file: %s. Should be \".json\", \".gob\" or \".db\"", ext)
	}
	if err != nil {
		return nil, fmt.Errorf("Can't read index file %s: %v", path, err)
	}
	if validateErr := index.Validate(); validateErr != nil {
		return nil, fmt.Errorf("Invalid index file %s: %v", path, validateErr)
	}
	return index, nil
}

// MissingEntries returns the names that have no signature in the index, in
// the order of names. For these assets signatures must be computed.
func (index SignatureIndex) MissingEntries(names []string) []string {
	known := make(map[string]struct{}, len(index))
	for _, sig := range index {
		known[sig.Name] = struct{}{}
	}
	var res []string
	for _, name := range names {
		if _, has := known[name]; !has {
			res = append(res, name)
		}
	}
	return res
}

// AdditionalEntries returns the names of signatures in the index that are not
// in names. Usually that means that the asset has been deleted.
func (index SignatureIndex) AdditionalEntries(names []string) []string {
	present := make(map[string]struct{}, len(names))
	for _, name := range names {
		present[name] = struct{}{}
	}
	var res []string
	for _, sig := range index {
		if _, has := present[sig.Name]; !has {
			res = append(res, sig.Name)
		}
	}
	return res
}
