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
	"database/sql"
	"fmt"

	_ "modernc.org/sqlite"
)

const sqliteSchema = `
CREATE TABLE IF NOT EXISTS meta (
	key   TEXT PRIMARY KEY,
	value TEXT NOT NULL
);
CREATE TABLE IF NOT EXISTS signatures (
	position INTEGER PRIMARY KEY,
	name     TEXT NOT NULL UNIQUE,
	tl_r INTEGER NOT NULL, tl_g INTEGER NOT NULL, tl_b INTEGER NOT NULL,
	tr_r INTEGER NOT NULL, tr_g INTEGER NOT NULL, tr_b INTEGER NOT NULL,
	bl_r INTEGER NOT NULL, bl_g INTEGER NOT NULL, bl_b INTEGER NOT NULL,
	br_r INTEGER NOT NULL, br_g INTEGER NOT NULL, br_b INTEGER NOT NULL
);`

// SQLiteIndexStore stores a signature index in an SQLite database, one row
// per signature. The position column keeps the index order.
type SQLiteIndexStore struct {
	db *sql.DB
}

// OpenSQLiteIndexStore opens (or creates) the database at path and creates
// the tables if required.
func OpenSQLiteIndexStore(path string) (*SQLiteIndexStore, error) {
	db, err := sql.Open("sqlite", path)
	if err != nil {
		return nil, err
	}
	for _, pragma := range []string{"PRAGMA journal_mode = WAL", "PRAGMA busy_timeout = 10000"} {
		if _, err := db.Exec(pragma); err != nil {
			db.Close()
			return nil, fmt.Errorf("Can't apply %q: %v", pragma, err)
		}
	}
	if _, err := db.Exec(sqliteSchema); err != nil {
		db.Close()
		return nil, fmt.Errorf("Can't create index tables: %v", err)
	}
	return &SQLiteIndexStore{db: db}, nil
}

// Close closes the database.
func (s *SQLiteIndexStore) Close() error {
	return s.db.Close()
}

// Save replaces the stored index.
func (s *SQLiteIndexStore) Save(index SignatureIndex) (err error) {
	tx, err := s.db.Begin()
	if err != nil {
		return err
	}
	defer func() {
		if err != nil {
			tx.Rollback()
		}
	}()
	if _, err = tx.Exec("DELETE FROM signatures"); err != nil {
		return err
	}
	stmt, err := tx.Prepare(`INSERT INTO signatures (position, name,
		tl_r, tl_g, tl_b, tr_r, tr_g, tr_b, bl_r, bl_g, bl_b, br_r, br_g, br_b)
		VALUES (?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?)`)
	if err != nil {
		return err
	}
	defer stmt.Close()
	for pos, sig := range index {
		args := []interface{}{pos, sig.Name}
		for _, key := range QuadrantKeys {
			c := sig.Quadrants[key]
			args = append(args, int(c.R), int(c.G), int(c.B))
		}
		if _, err = stmt.Exec(args...); err != nil {
			return fmt.Errorf("Can't store signature for %s: %v", sig.Name, err)
		}
	}
	if _, err = tx.Exec(`INSERT INTO meta (key, value) VALUES ('version', ?)
		ON CONFLICT(key) DO UPDATE SET value = excluded.value`, Version); err != nil {
		return err
	}
	return tx.Commit()
}

// Load returns the stored index.
func (s *SQLiteIndexStore) Load() (SignatureIndex, error) {
	rows, err := s.db.Query(`SELECT name,
		tl_r, tl_g, tl_b, tr_r, tr_g, tr_b, bl_r, bl_g, bl_b, br_r, br_g, br_b
		FROM signatures ORDER BY position`)
	if err != nil {
		return nil, err
	}
	defer rows.Close()
	index := SignatureIndex{}
	for rows.Next() {
		var sig AssetSignature
		var values [NumQuadrants * 3]int
		dest := []interface{}{&sig.Name}
		for i := range values {
			dest = append(dest, &values[i])
		}
		if err := rows.Scan(dest...); err != nil {
			return nil, err
		}
		for _, key := range QuadrantKeys {
			c, cErr := rgbFromInts(values[3*key], values[3*key+1], values[3*key+2])
			if cErr != nil {
				return nil, fmt.Errorf("Invalid signature for %s: %v", sig.Name, cErr)
			}
			sig.Quadrants[key] = c
		}
		index = append(index, sig)
	}
	return index, rows.Err()
}

// Version returns the library version that wrote the index, empty if no
// index has been saved yet.
func (s *SQLiteIndexStore) Version() (string, error) {
	var version string
	err := s.db.QueryRow("SELECT value FROM meta WHERE key = 'version'").Scan(&version)
	if err == sql.ErrNoRows {
		return "", nil
	}
	return version, err
}

func rgbFromInts(r, g, b int) (RGB, error) {
	for _, v := range []int{r, g, b} {
		if v < 0 || v > 255 {
			return RGB{}, fmt.Errorf("Color component %d not in [0, 255]", v)
		}
	}
	return NewRGB(uint8(r), uint8(g), uint8(b)), nil
}
