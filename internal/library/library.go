// Package library builds the set catalog from a directory tree and applies
// label edits back to the per-set sidecar files. It is the only package
// that touches the sets directory; everything above it works on the
// album.Set values it produces.
//
// Every catalog build is a fresh synchronous scan: one level of
// subfolders, each merged with its meta.json sidecar. There is no cache
// to invalidate, which keeps readers and the mutation path from ever
// disagreeing for longer than one request.
package library

import (
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"sort"
	"strings"

	"github.com/gofrs/flock"

	"github.com/pa-childs/Photo-Album/internal/album"
	"github.com/pa-childs/Photo-Album/internal/meta"
)

// ErrNotFound is returned when a slug does not resolve to a set folder.
var ErrNotFound = errors.New("set not found")

// imageExtensions are the recognized image file extensions (lowercase).
var imageExtensions = map[string]bool{
	".jpg":  true,
	".jpeg": true,
	".png":  true,
	".webp": true,
}

// Field selects which label list a mutation targets.
type Field string

const (
	FieldTags   Field = "tags"
	FieldPeople Field = "people"
)

// Library is a sets directory. The zero value is not usable; use New.
type Library struct {
	root string
}

// New returns a Library rooted at dir. The directory is not required to
// exist yet; a missing root simply scans to an empty catalog.
func New(dir string) *Library {
	return &Library{root: dir}
}

// Scan walks one level of subfolders under the root and returns a Set for
// each, newest first. A missing root yields an empty catalog; a folder
// with a missing or corrupt sidecar still appears, with derived defaults.
func (l *Library) Scan() []album.Set {
	entries, err := os.ReadDir(l.root)
	if err != nil {
		return nil
	}

	var sets []album.Set
	for _, entry := range entries {
		if !entry.IsDir() {
			continue
		}
		sets = append(sets, l.buildSet(entry.Name()))
	}
	album.SortBy(sets, album.SortNewest)
	return sets
}

// Resolve returns the Set for slug, or ErrNotFound when the folder does
// not exist (or slug is not a plain folder name).
func (l *Library) Resolve(slug string) (album.Set, error) {
	dir, err := l.setDir(slug)
	if err != nil {
		return album.Set{}, err
	}
	info, err := os.Stat(dir)
	if err != nil || !info.IsDir() {
		return album.Set{}, ErrNotFound
	}
	return l.buildSet(slug), nil
}

// buildSet derives one Set from its folder listing plus sidecar record.
func (l *Library) buildSet(slug string) album.Set {
	dir := filepath.Join(l.root, slug)
	rec := meta.Load(dir)
	images := ScanImages(dir)

	s := album.Set{
		Slug:        slug,
		Title:       strings.TrimSpace(rec.Title),
		Description: rec.Description,
		Tags:        rec.Tags,
		People:      rec.People,
		Images:      images,
		Type:        strings.ToLower(rec.Type),
		Series:      rec.Series,
	}
	if s.Title == "" {
		s.Title = slug
	}
	if s.Type == "" {
		s.Type = album.TypePhoto
	}
	if rec.Issue != nil {
		s.Issue = *rec.Issue
	}

	// The declared cover must resolve to a scanned file; otherwise fall
	// back to the first image so a cover is never a dangling reference.
	if rec.Cover != "" && containsString(images, rec.Cover) {
		s.Cover = rec.Cover
	} else if len(images) > 0 {
		s.Cover = images[0]
	}

	if info, err := os.Stat(dir); err == nil {
		s.ModTime = info.ModTime()
	}
	return s
}

// ScanImages lists the recognized image files directly inside dir, sorted
// ascending. A missing folder yields an empty list, not an error.
func ScanImages(dir string) []string {
	entries, err := os.ReadDir(dir)
	if err != nil {
		return nil
	}
	var images []string
	for _, entry := range entries {
		if entry.IsDir() {
			continue
		}
		ext := strings.ToLower(filepath.Ext(entry.Name()))
		if imageExtensions[ext] {
			images = append(images, entry.Name())
		}
	}
	sort.Strings(images)
	return images
}

// AddLabel normalizes raw and appends it to the slug's tags or people
// list, unless a case-insensitive duplicate already exists or the value
// normalizes to nothing; both are silent no-ops. The sidecar is re-read
// under a per-slug lock immediately before writing.
func (l *Library) AddLabel(slug, raw string, field Field) error {
	name := album.NormalizeLabel(raw)
	if name == "" {
		return nil
	}
	return l.mutate(slug, func(rec *meta.Record) bool {
		labels := recordField(rec, field)
		if album.HasLabel(*labels, name) {
			return false
		}
		*labels = append(*labels, name)
		return true
	})
}

// RemoveLabel drops every entry of the slug's tags or people list matching
// raw (trimmed, case-insensitive) and rewrites the sidecar. Removing a
// value that is not present still rewrites the file; the write is atomic
// and the content unchanged, so this is harmless.
func (l *Library) RemoveLabel(slug, raw string, field Field) error {
	name := strings.TrimSpace(raw)
	return l.mutate(slug, func(rec *meta.Record) bool {
		labels := recordField(rec, field)
		kept := (*labels)[:0]
		for _, v := range *labels {
			if !strings.EqualFold(v, name) {
				kept = append(kept, v)
			}
		}
		*labels = kept
		return true
	})
}

// mutate runs a read-modify-write cycle on the slug's sidecar. apply
// reports whether the record should be persisted. The flock serializes
// mutators within and across processes on the same tree; a writer that
// bypasses the lock can still win a race, which is accepted.
func (l *Library) mutate(slug string, apply func(rec *meta.Record) bool) error {
	dir, err := l.setDir(slug)
	if err != nil {
		return err
	}
	info, err := os.Stat(dir)
	if err != nil || !info.IsDir() {
		return ErrNotFound
	}

	lock := flock.New(meta.Path(dir) + ".lock")
	if err := lock.Lock(); err != nil {
		return fmt.Errorf("lock metadata for %q: %w", slug, err)
	}
	defer func() { _ = lock.Unlock() }()

	rec := meta.Load(dir)
	if !apply(&rec) {
		return nil
	}
	if err := meta.Save(dir, rec); err != nil {
		return fmt.Errorf("save metadata for %q: %w", slug, err)
	}
	return nil
}

// ImagePath resolves slug/filename to a real image file inside that set's
// folder. Anything else — traversal attempts, directories, unrecognized
// extensions, missing files — reports ErrNotFound.
func (l *Library) ImagePath(slug, filename string) (string, error) {
	dir, err := l.setDir(slug)
	if err != nil {
		return "", err
	}
	if filename == "" || filename != filepath.Base(filename) {
		return "", ErrNotFound
	}
	if !imageExtensions[strings.ToLower(filepath.Ext(filename))] {
		return "", ErrNotFound
	}
	path := filepath.Join(dir, filename)
	info, err := os.Stat(path)
	if err != nil || info.IsDir() {
		return "", ErrNotFound
	}
	return path, nil
}

// setDir validates slug as a plain folder name and returns its path.
func (l *Library) setDir(slug string) (string, error) {
	if slug == "" || slug != filepath.Base(slug) || slug == "." || slug == ".." {
		return "", ErrNotFound
	}
	return filepath.Join(l.root, slug), nil
}

func recordField(rec *meta.Record, field Field) *[]string {
	if field == FieldPeople {
		return &rec.People
	}
	return &rec.Tags
}

func containsString(list []string, v string) bool {
	for _, s := range list {
		if s == v {
			return true
		}
	}
	return false
}
