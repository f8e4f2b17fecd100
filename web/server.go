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
	"encoding/json"
	"errors"
	"fmt"
	"image"
	"net/http"
	"strconv"

	"github.com/FabianWe/quadmosaic"
	"github.com/go-chi/chi/v5"
	"github.com/go-chi/chi/v5/middleware"
	log "github.com/sirupsen/logrus"
)

var (
	ErrAlreadyHandled = errors.New("Error was already handled")
)

const (
	// ImageField is the multipart form field that contains the query image.
	ImageField = "image"
	// DefaultMaxUploadSize is the default limit for query images (32 MB).
	DefaultMaxUploadSize = 32 << 20
	// IDHeader is the response header that contains the id of a composition.
	IDHeader = "X-Mosaic-ID"
)

// Context contains everything the handlers need.
type Context struct {
	Composer      *quadmosaic.Composer
	Storage       CompositionStorage
	MaxUploadSize int64
}

func NewContext(composer *quadmosaic.Composer, storage CompositionStorage) *Context {
	return &Context{
		Composer:      composer,
		Storage:       storage,
		MaxUploadSize: DefaultMaxUploadSize,
	}
}

// HandlerFunc is a handler whose result is written as JSON. If the handler
// already wrote an error response it returns ErrAlreadyHandled, any other
// error results in an internal server error.
type HandlerFunc func(context *Context, w http.ResponseWriter, r *http.Request) (interface{}, error)

func ToHTTPFunc(context *Context, handler HandlerFunc) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		if jsonData, err := handler(context, w, r); err != nil {
			if err != ErrAlreadyHandled {
				log.WithError(err).WithField("request", middleware.GetReqID(r.Context())).Error("Error in request")
				http.Error(w, "Internal Server Error", 500)
			}
		} else {
			jData, jErr := json.Marshal(jsonData)
			if jErr != nil {
				log.WithError(jErr).Error("Internal error: Can't marshal json")
				http.Error(w, "Internal Server Error", 500)
				return
			}
			w.Header().Set("Content-Type", "application/json")
			w.Write(jData)
		}
	}
}

// NewRouter returns the router with all handlers registered.
func NewRouter(context *Context) *chi.Mux {
	r := chi.NewRouter()
	r.Use(middleware.RequestID)
	r.Use(middleware.Recoverer)
	r.Post("/mosaic", ToHTTPFunc(context, ComposeHandler))
	r.Get("/mosaic/{id}", ToHTTPFunc(context, GetMosaicHandler))
	r.Get("/mosaic/{id}/matches", ToHTTPFunc(context, MatchesHandler))
	r.Get("/signatures", ToHTTPFunc(context, SignaturesHandler))
	r.Get("/match", ToHTTPFunc(context, MatchHandler))
	return r
}

// MosaicResponse is returned for a composition if JSON was requested.
type MosaicResponse struct {
	ID      string   `json:"id"`
	Columns int      `json:"columns"`
	Rows    int      `json:"rows"`
	Matches []string `json:"matches"`
	Image   string   `json:"image,omitempty"`
}

// MatchNames returns for each cell of the result the name of the selected
// asset, the empty string for cells without a match.
func MatchNames(index quadmosaic.SignatureIndex, result *quadmosaic.MosaicResult) []string {
	res := make([]string, 0, len(result.Matches))
	for row := 0; row < result.Rows; row++ {
		for col := 0; col < result.Columns; col++ {
			sig, ok := result.Signature(index, col, row)
			if ok {
				res = append(res, sig.Name)
			} else {
				res = append(res, "")
			}
		}
	}
	return res
}

func writePNG(w http.ResponseWriter, img image.Image) error {
	w.Header().Set("Content-Type", "image/png")
	if err := quadmosaic.EncodeImage(w, ".png", img, 0); err != nil {
		return err
	}
	return ErrAlreadyHandled
}

// ComposeHandler creates a mosaic for the image uploaded in the multipart
// field "image". The mosaic is returned as PNG, or as MosaicResponse with a
// base64 encoded image if the query parameter format=json is set.
func ComposeHandler(context *Context, w http.ResponseWriter, r *http.Request) (interface{}, error) {
	r.Body = http.MaxBytesReader(w, r.Body, context.MaxUploadSize)
	file, _, fileErr := r.FormFile(ImageField)
	if fileErr != nil {
		http.Error(w, fmt.Sprintf("Expected an image in form field \"%s\": %s", ImageField, fileErr.Error()), 400)
		return nil, ErrAlreadyHandled
	}
	defer file.Close()
	id, idErr := GenCompositionID()
	if idErr != nil {
		return nil, idErr
	}
	logger := log.WithField("composition", id.String())
	mosaic, result, composeErr := context.Composer.ComposeReader(file, quadmosaic.ProgressIgnore)
	if composeErr != nil {
		if errors.Is(composeErr, quadmosaic.ErrInvalidInputImage) {
			logger.WithError(composeErr).Info("Rejected query image")
			http.Error(w, composeErr.Error(), 400)
			return nil, ErrAlreadyHandled
		}
		return nil, composeErr
	}
	if err := context.Storage.Set(id, NewComposition(mosaic, result)); err != nil {
		return nil, err
	}
	logger.WithFields(log.Fields{
		"columns": result.Columns,
		"rows":    result.Rows,
	}).Info("Created mosaic")
	w.Header().Set(IDHeader, id.String())
	if r.URL.Query().Get("format") != "json" {
		return nil, writePNG(w, mosaic)
	}
	encoded, encodeErr := EncodePNG(mosaic)
	if encodeErr != nil {
		return nil, encodeErr
	}
	return MosaicResponse{
		ID:      id.String(),
		Columns: result.Columns,
		Rows:    result.Rows,
		Matches: MatchNames(context.Composer.Index, result),
		Image:   encoded,
	}, nil
}

func lookupComposition(context *Context, w http.ResponseWriter, r *http.Request) (CompositionID, *Composition, error) {
	id, parseErr := ParseCompositionID(chi.URLParam(r, "id"))
	if parseErr != nil {
		http.Error(w, fmt.Sprintf("Invalid composition id: %s", parseErr.Error()), 400)
		return id, nil, ErrAlreadyHandled
	}
	c, getErr := context.Storage.Get(id)
	if getErr == ErrCompositionNotFound {
		http.Error(w, getErr.Error(), 404)
		return id, nil, ErrAlreadyHandled
	}
	return id, c, getErr
}

// GetMosaicHandler returns a previously created mosaic as PNG.
func GetMosaicHandler(context *Context, w http.ResponseWriter, r *http.Request) (interface{}, error) {
	_, c, err := lookupComposition(context, w, r)
	if err != nil {
		return nil, err
	}
	return nil, writePNG(w, c.Mosaic)
}

// MatchesHandler returns the selected assets of a previously created mosaic.
func MatchesHandler(context *Context, w http.ResponseWriter, r *http.Request) (interface{}, error) {
	id, c, err := lookupComposition(context, w, r)
	if err != nil {
		return nil, err
	}
	return MosaicResponse{
		ID:      id.String(),
		Columns: c.Result.Columns,
		Rows:    c.Result.Rows,
		Matches: MatchNames(context.Composer.Index, c.Result),
	}, nil
}

// SignaturesHandler returns the signature index used by the server.
func SignaturesHandler(context *Context, w http.ResponseWriter, r *http.Request) (interface{}, error) {
	index := context.Composer.Index
	if index == nil {
		index = quadmosaic.SignatureIndex{}
	}
	return index, nil
}

// MatchResponse is one entry of the result of MatchHandler.
type MatchResponse struct {
	Name     string  `json:"name"`
	Color    string  `json:"color"`
	Distance float64 `json:"distance"`
}

// MatchHandler returns the signatures closest to the query parameter color
// (for example "ff8800"), at most k (default 5) entries.
func MatchHandler(context *Context, w http.ResponseWriter, r *http.Request) (interface{}, error) {
	query := r.URL.Query()
	target, colorErr := quadmosaic.ParseHexColor(query.Get("color"))
	if colorErr != nil {
		http.Error(w, fmt.Sprintf("Invalid color: %s", colorErr.Error()), 400)
		return nil, ErrAlreadyHandled
	}
	k := 5
	if kStr := query.Get("k"); kStr != "" {
		var kErr error
		k, kErr = strconv.Atoi(kStr)
		if kErr != nil || k < 0 {
			http.Error(w, fmt.Sprintf("k must be a non-negative integer, got %s", kStr), 400)
			return nil, ErrAlreadyHandled
		}
	}
	index := context.Composer.Index
	entries, matchErr := quadmosaic.BestMatches(index, context.Composer.Config.Metric, target, k)
	if matchErr != nil {
		return nil, matchErr
	}
	res := make([]MatchResponse, len(entries))
	for i, entry := range entries {
		sig := index[entry.Position]
		res[i] = MatchResponse{
			Name:     sig.Name,
			Color:    sig.Representative().Round().Hex(),
			Distance: entry.Distance,
		}
	}
	return res, nil
}
