// Package quadmosaic provides methods for generating mosaic images given a
// library of asset images (for example icons). The query image is divided
// into a grid and each cell is replaced by the asset whose colors are closest
// to the color of the cell.
//
// The colors of the assets are precomputed: each asset is divided into four
// quadrants and the mean color of each quadrant is stored in a signature.
// The signatures of all assets form a SignatureIndex that can be stored as
// JSON, gob or in an SQLite database.
//
// It ships with an executable program to build signature indexes, generate
// mosaics and serve them over HTTP.
package quadmosaic
