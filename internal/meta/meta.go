// Package meta reads and writes the per-set sidecar metadata file.
// Each set folder may contain a meta.json describing title, tags, people
// and the other editable fields; everything else about a set is derived
// from the folder contents at scan time.
package meta

import (
	"bytes"
	"encoding/json"
	"fmt"
	"os"
	"path/filepath"

	"github.com/natefinch/atomic"
)

// Filename is the sidecar file name inside a set folder.
const Filename = "meta.json"

// Record is the persisted metadata for one set. All fields are optional.
// Keys the application does not know about survive a load/save cycle via
// the extra bag, so external tools can stash their own data in meta.json.
type Record struct {
	Title       string
	Description string
	Tags        []string
	People      []string
	Cover       string
	Type        string
	Series      string
	Issue       *float64

	extra map[string]json.RawMessage
}

// knownKeys are the JSON object keys owned by Record proper.
var knownKeys = map[string]bool{
	"title":       true,
	"description": true,
	"tags":        true,
	"people":      true,
	"cover":       true,
	"type":        true,
	"series":      true,
	"issue":       true,
}

// UnmarshalJSON decodes a meta.json document. Keys with an unexpected
// value type are skipped rather than failing the whole record; unknown
// keys are retained verbatim.
func (r *Record) UnmarshalJSON(data []byte) error {
	var raw map[string]json.RawMessage
	if err := json.Unmarshal(data, &raw); err != nil {
		return err
	}
	decode := func(key string, dst any) {
		if v, ok := raw[key]; ok {
			_ = json.Unmarshal(v, dst)
		}
	}
	decode("title", &r.Title)
	decode("description", &r.Description)
	decode("tags", &r.Tags)
	decode("people", &r.People)
	decode("cover", &r.Cover)
	decode("type", &r.Type)
	decode("series", &r.Series)
	decode("issue", &r.Issue)

	for k, v := range raw {
		if knownKeys[k] {
			continue
		}
		if r.extra == nil {
			r.extra = make(map[string]json.RawMessage)
		}
		r.extra[k] = v
	}
	return nil
}

// MarshalJSON encodes the record as a flat JSON object. Zero-valued known
// fields are omitted (except non-nil slices, which round-trip even when
// empty so a cleared tag list stays cleared on disk).
func (r Record) MarshalJSON() ([]byte, error) {
	out := make(map[string]json.RawMessage, len(r.extra)+8)
	for k, v := range r.extra {
		out[k] = v
	}
	put := func(key string, val any) error {
		b, err := json.Marshal(val)
		if err != nil {
			return err
		}
		out[key] = b
		return nil
	}
	if r.Title != "" {
		if err := put("title", r.Title); err != nil {
			return nil, err
		}
	}
	if r.Description != "" {
		if err := put("description", r.Description); err != nil {
			return nil, err
		}
	}
	if r.Tags != nil {
		if err := put("tags", r.Tags); err != nil {
			return nil, err
		}
	}
	if r.People != nil {
		if err := put("people", r.People); err != nil {
			return nil, err
		}
	}
	if r.Cover != "" {
		if err := put("cover", r.Cover); err != nil {
			return nil, err
		}
	}
	if r.Type != "" {
		if err := put("type", r.Type); err != nil {
			return nil, err
		}
	}
	if r.Series != "" {
		if err := put("series", r.Series); err != nil {
			return nil, err
		}
	}
	if r.Issue != nil {
		if err := put("issue", r.Issue); err != nil {
			return nil, err
		}
	}
	return json.Marshal(out)
}

// Extra returns the raw value of an unrecognized key, if present.
func (r Record) Extra(key string) (json.RawMessage, bool) {
	v, ok := r.extra[key]
	return v, ok
}

// SetExtra stores a raw value under an unrecognized key. Intended for tests
// and external tooling; the server never calls it.
func (r *Record) SetExtra(key string, val json.RawMessage) {
	if r.extra == nil {
		r.extra = make(map[string]json.RawMessage)
	}
	r.extra[key] = val
}

// Path returns the sidecar path for a set folder.
func Path(setDir string) string {
	return filepath.Join(setDir, Filename)
}

// Load reads the sidecar record from setDir. A missing or unparseable file
// yields an empty record and a nil error: a corrupt sidecar must never take
// a set (or the whole listing) down with it.
func Load(setDir string) Record {
	var rec Record
	data, err := os.ReadFile(Path(setDir))
	if err != nil {
		return Record{}
	}
	if err := json.Unmarshal(data, &rec); err != nil {
		return Record{}
	}
	return rec
}

// Save writes the record to setDir's sidecar, replacing the previous file
// atomically so a concurrent reader never observes a half-written document.
func Save(setDir string, rec Record) error {
	data, err := json.MarshalIndent(rec, "", "  ")
	if err != nil {
		return fmt.Errorf("marshal metadata: %w", err)
	}
	data = append(data, '\n')
	if err := atomic.WriteFile(Path(setDir), bytes.NewReader(data)); err != nil {
		return fmt.Errorf("write metadata: %w", err)
	}
	return nil
}
