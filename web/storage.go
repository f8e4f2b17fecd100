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

package web

import (
	"errors"
	"image"
	"sync"
	"time"

	"github.com/FabianWe/quadmosaic"
	"github.com/google/uuid"
	log "github.com/sirupsen/logrus"
)

// CompositionID identifies a mosaic created by the server.
type CompositionID uuid.UUID

// GenCompositionID returns a new random id.
func GenCompositionID() (CompositionID, error) {
	id, idErr := uuid.NewRandom()
	return CompositionID(id), idErr
}

// ParseCompositionID parses the string representation of an id.
func ParseCompositionID(s string) (CompositionID, error) {
	id, err := uuid.Parse(s)
	return CompositionID(id), err
}

func (id CompositionID) String() string {
	return uuid.UUID(id).String()
}

// Composition is a mosaic kept by the server so that it can be fetched again.
type Composition struct {
	Created time.Time
	Mosaic  image.Image
	Result  *quadmosaic.MosaicResult
}

// NewComposition returns a composition created now.
func NewComposition(mosaic image.Image, result *quadmosaic.MosaicResult) *Composition {
	return &Composition{
		Created: time.Now().UTC(),
		Mosaic:  mosaic,
		Result:  result,
	}
}

// Expired returns true if the composition is older than maxAge.
func (c *Composition) Expired(now time.Time, maxAge time.Duration) bool {
	age := now.Sub(c.Created)
	return age >= maxAge
}

var (
	ErrCompositionNotFound = errors.New("Composition not found")
)

// CompositionStorage stores created mosaics.
type CompositionStorage interface {
	Get(id CompositionID) (*Composition, error)
	Set(id CompositionID, c *Composition) error
	Delete(id CompositionID) error
	Filter(maxAge time.Duration) error
}

// MemStorage is a CompositionStorage that keeps everything in memory.
type MemStorage struct {
	mutex *sync.RWMutex
	m     map[CompositionID]*Composition
}

func NewMemStorage() *MemStorage {
	return &MemStorage{
		mutex: new(sync.RWMutex),
		m:     make(map[CompositionID]*Composition, 100),
	}
}

func (s *MemStorage) Get(id CompositionID) (*Composition, error) {
	s.mutex.RLock()
	defer s.mutex.RUnlock()
	c, has := s.m[id]
	if has {
		return c, nil
	}
	return nil, ErrCompositionNotFound
}

func (s *MemStorage) Set(id CompositionID, c *Composition) error {
	s.mutex.Lock()
	defer s.mutex.Unlock()
	s.m[id] = c
	return nil
}

func (s *MemStorage) Delete(id CompositionID) error {
	s.mutex.Lock()
	defer s.mutex.Unlock()
	delete(s.m, id)
	return nil
}

func (s *MemStorage) Len() int {
	s.mutex.RLock()
	defer s.mutex.RUnlock()
	return len(s.m)
}

// Filter removes all compositions older than maxAge.
func (s *MemStorage) Filter(maxAge time.Duration) error {
	s.mutex.Lock()
	defer s.mutex.Unlock()
	now := time.Now().UTC()
	for id, c := range s.m {
		if c.Expired(now, maxAge) {
			delete(s.m, id)
		}
	}
	return nil
}

// RunFilter calls storage.Filter every interval until the returned channel is
// closed.
func RunFilter(storage CompositionStorage, maxAge, interval time.Duration) chan<- struct{} {
	done := make(chan struct{})
	go func() {
		ticker := time.NewTicker(interval)
		defer ticker.Stop()
		for {
			select {
			case <-done:
				return
			case <-ticker.C:
				if err := storage.Filter(maxAge); err != nil {
					log.WithError(err).Warn("Can't remove expired compositions")
				}
			}
		}
	}()
	return done
}
