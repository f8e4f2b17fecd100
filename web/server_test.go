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
	"bytes"
	"encoding/base64"
	"encoding/json"
	"image"
	"image/color"
	"image/png"
	"math"
	"mime/multipart"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/FabianWe/quadmosaic"
)

func uniformImage(w, h int, c color.NRGBA) *image.NRGBA {
	img := image.NewNRGBA(image.Rect(0, 0, w, h))
	for y := 0; y < h; y++ {
		for x := 0; x < w; x++ {
			img.SetNRGBA(x, y, c)
		}
	}
	return img
}

func newTestServer(t *testing.T) (*httptest.Server, *MemStorage) {
	t.Helper()
	assets := quadmosaic.NewMemoryAssetDB()
	assets.Add("red.png", uniformImage(4, 4, color.NRGBA{R: 255, A: 255}))
	assets.Add("blue.png", uniformImage(4, 4, color.NRGBA{B: 255, A: 255}))
	index, _ := quadmosaic.BuildIndex(assets, 2, nil)
	cfg := quadmosaic.Config{Columns: 2, Rows: 2, TileSize: 4, Interpolation: "nearest"}
	composer, err := quadmosaic.NewComposer(cfg, index, assets)
	if err != nil {
		t.Fatal(err)
	}
	storage := NewMemStorage()
	srv := httptest.NewServer(NewRouter(NewContext(composer, storage)))
	t.Cleanup(srv.Close)
	return srv, storage
}

func uploadBody(t *testing.T, data []byte) (*bytes.Buffer, string) {
	t.Helper()
	var body bytes.Buffer
	w := multipart.NewWriter(&body)
	part, err := w.CreateFormFile(ImageField, "query.png")
	if err != nil {
		t.Fatal(err)
	}
	part.Write(data)
	if err := w.Close(); err != nil {
		t.Fatal(err)
	}
	return &body, w.FormDataContentType()
}

func encodedQuery(t *testing.T) []byte {
	t.Helper()
	var buf bytes.Buffer
	if err := png.Encode(&buf, uniformImage(10, 10, color.NRGBA{R: 240, G: 5, A: 255})); err != nil {
		t.Fatal(err)
	}
	return buf.Bytes()
}

func TestComposePNG(t *testing.T) {
	srv, storage := newTestServer(t)
	body, contentType := uploadBody(t, encodedQuery(t))
	resp, err := http.Post(srv.URL+"/mosaic", contentType, body)
	if err != nil {
		t.Fatal(err)
	}
	defer resp.Body.Close()
	if resp.StatusCode != http.StatusOK {
		t.Fatalf("Expected status 200, got %d", resp.StatusCode)
	}
	if ct := resp.Header.Get("Content-Type"); ct != "image/png" {
		t.Errorf("Expected image/png, got %s", ct)
	}
	mosaic, err := png.Decode(resp.Body)
	if err != nil {
		t.Fatalf("Can't decode mosaic: %v", err)
	}
	if b := mosaic.Bounds(); b.Dx() != 8 || b.Dy() != 8 {
		t.Errorf("Expected 8x8 mosaic, got %v", b)
	}
	if r, _, _, _ := mosaic.At(7, 7).RGBA(); r>>8 != 255 {
		t.Errorf("Expected red tile, got %v", mosaic.At(7, 7))
	}
	id, err := ParseCompositionID(resp.Header.Get(IDHeader))
	if err != nil {
		t.Fatalf("Invalid id header: %v", err)
	}
	if _, err := storage.Get(id); err != nil {
		t.Errorf("Composition not stored: %v", err)
	}

	matchesResp, err := http.Get(srv.URL + "/mosaic/" + id.String() + "/matches")
	if err != nil {
		t.Fatal(err)
	}
	defer matchesResp.Body.Close()
	var matches MosaicResponse
	if err := json.NewDecoder(matchesResp.Body).Decode(&matches); err != nil {
		t.Fatal(err)
	}
	if len(matches.Matches) != 4 || matches.Matches[0] != "red.png" {
		t.Errorf("Unexpected matches: %v", matches.Matches)
	}

	again, err := http.Get(srv.URL + "/mosaic/" + id.String())
	if err != nil {
		t.Fatal(err)
	}
	again.Body.Close()
	if again.StatusCode != http.StatusOK || again.Header.Get("Content-Type") != "image/png" {
		t.Errorf("Can't fetch stored mosaic: %d", again.StatusCode)
	}
}

func TestComposeJSON(t *testing.T) {
	srv, _ := newTestServer(t)
	body, contentType := uploadBody(t, encodedQuery(t))
	resp, err := http.Post(srv.URL+"/mosaic?format=json", contentType, body)
	if err != nil {
		t.Fatal(err)
	}
	defer resp.Body.Close()
	var res MosaicResponse
	if err := json.NewDecoder(resp.Body).Decode(&res); err != nil {
		t.Fatal(err)
	}
	if res.Columns != 2 || res.Rows != 2 || res.ID == "" {
		t.Errorf("Unexpected response: %+v", res)
	}
	data, err := base64.StdEncoding.DecodeString(res.Image)
	if err != nil {
		t.Fatal(err)
	}
	if _, err := png.Decode(bytes.NewReader(data)); err != nil {
		t.Errorf("Image is not a valid png: %v", err)
	}
}

func TestComposeInvalidImage(t *testing.T) {
	srv, storage := newTestServer(t)
	body, contentType := uploadBody(t, []byte("no image"))
	resp, err := http.Post(srv.URL+"/mosaic", contentType, body)
	if err != nil {
		t.Fatal(err)
	}
	resp.Body.Close()
	if resp.StatusCode != http.StatusBadRequest {
		t.Errorf("Expected status 400, got %d", resp.StatusCode)
	}
	if storage.Len() != 0 {
		t.Errorf("Nothing should be stored, got %d entries", storage.Len())
	}

	resp, err = http.Post(srv.URL+"/mosaic", "text/plain", bytes.NewBufferString("x"))
	if err != nil {
		t.Fatal(err)
	}
	resp.Body.Close()
	if resp.StatusCode != http.StatusBadRequest {
		t.Errorf("Expected status 400 without form, got %d", resp.StatusCode)
	}
}

func TestGetMosaicNotFound(t *testing.T) {
	srv, _ := newTestServer(t)
	id, _ := GenCompositionID()
	tests := map[string]int{
		"/mosaic/" + id.String(): http.StatusNotFound,
		"/mosaic/not-an-id":      http.StatusBadRequest,
	}
	for path, status := range tests {
		resp, err := http.Get(srv.URL + path)
		if err != nil {
			t.Fatal(err)
		}
		resp.Body.Close()
		if resp.StatusCode != status {
			t.Errorf("%s: expected status %d, got %d", path, status, resp.StatusCode)
		}
	}
}

func TestSignatures(t *testing.T) {
	srv, _ := newTestServer(t)
	resp, err := http.Get(srv.URL + "/signatures")
	if err != nil {
		t.Fatal(err)
	}
	defer resp.Body.Close()
	index, err := quadmosaic.ReadJSONIndex(resp.Body)
	if err != nil {
		t.Fatal(err)
	}
	if len(index) != 2 || index[0].Name != "red.png" {
		t.Errorf("Unexpected index: %v", index.Names())
	}
}

func TestMatch(t *testing.T) {
	srv, _ := newTestServer(t)
	resp, err := http.Get(srv.URL + "/match?color=0000f0&k=1")
	if err != nil {
		t.Fatal(err)
	}
	defer resp.Body.Close()
	var res []MatchResponse
	if err := json.NewDecoder(resp.Body).Decode(&res); err != nil {
		t.Fatal(err)
	}
	if len(res) != 1 || res[0].Name != "blue.png" || res[0].Color != "#0000ff" {
		t.Fatalf("Unexpected result: %+v", res)
	}
	if math.Abs(res[0].Distance-15) > 1e-3 {
		t.Errorf("Expected euclidean distance 15, got %f", res[0].Distance)
	}
	bad, err := http.Get(srv.URL + "/match?color=nope")
	if err != nil {
		t.Fatal(err)
	}
	bad.Body.Close()
	if bad.StatusCode != http.StatusBadRequest {
		t.Errorf("Expected status 400, got %d", bad.StatusCode)
	}
}

func TestMemStorageFilter(t *testing.T) {
	storage := NewMemStorage()
	oldID, _ := GenCompositionID()
	newID, _ := GenCompositionID()
	old := NewComposition(nil, nil)
	old.Created = time.Now().UTC().Add(-time.Hour)
	storage.Set(oldID, old)
	storage.Set(newID, NewComposition(nil, nil))
	storage.Filter(time.Minute)
	if _, err := storage.Get(oldID); err != ErrCompositionNotFound {
		t.Errorf("Expected old composition to be removed, got %v", err)
	}
	if _, err := storage.Get(newID); err != nil {
		t.Errorf("Expected new composition to be kept, got %v", err)
	}
	storage.Delete(newID)
	if storage.Len() != 0 {
		t.Errorf("Expected empty storage, got %d entries", storage.Len())
	}
}
