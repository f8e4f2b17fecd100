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
	"image/jpeg"
	"image/png"
	"io"
	"os"
	"path/filepath"
	"strings"
)

// EncodeImage writes img to w, ext is the file extension that describes the
// format (".png", ".jpg" or ".jpeg").
func EncodeImage(w io.Writer, ext string, img image.Image, jpgQuality int) error {
	switch strings.ToLower(ext) {
	case ".png":
		return png.Encode(w, img)
	case ".jpg", ".jpeg":
		return jpeg.Encode(w, img, &jpeg.Options{Quality: jpgQuality})
	default:
		return fmt.Errorf("Unsupported file type: %s, expected .jpg or .png", ext)
	}
}

// SaveImage stores img in file, the format is given by the file extension.
func SaveImage(file string, img image.Image, jpgQuality int) error {
	ext := filepath.Ext(file)
	if !JPGAndPNG(ext) {
		return fmt.Errorf("Unsupported file type: %s, expected .jpg or .png", ext)
	}
	f, err := os.Create(file)
	if err != nil {
		return err
	}
	encErr := EncodeImage(f, ext, img, jpgQuality)
	closeErr := f.Close()
	if encErr != nil {
		return encErr
	}
	return closeErr
}
