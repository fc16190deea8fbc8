// Package album defines the core set entity and the in-memory operations
// (filter, sort, group) performed over a scanned catalog. It does no I/O;
// the library package builds Sets from disk and hands them here.
package album

import (
	"math/rand"
	"sort"
	"strings"
	"time"
)

// Set type values. The type field is open-ended; these are the two the
// application treats specially.
const (
	TypePhoto = "photo"
	TypeArt   = "art"
)

// Set is one folder of images plus its merged metadata. Sets are rebuilt
// from disk on every request and never persisted as a whole.
type Set struct {
	// Slug is the folder name and the set's stable identifier.
	Slug string

	Title       string
	Description string

	// Tags and People keep the sidecar's insertion order.
	Tags   []string
	People []string

	// Images holds the recognized image filenames directly inside the
	// folder, sorted ascending. Cover is empty or a member of Images.
	Images []string
	Cover  string

	// ModTime is the folder's modification time at scan time; it only
	// drives the default sort order.
	ModTime time.Time

	// Type is "photo" unless the sidecar says otherwise (lowercased).
	Type string

	// Series and Issue are meaningful for art sets only.
	Series string
	Issue  float64
}

// ImageCount returns the number of recognized images in the set.
func (s Set) ImageCount() int { return len(s.Images) }

// HasLabel reports whether name matches an entry of labels, ignoring case.
func HasLabel(labels []string, name string) bool {
	for _, l := range labels {
		if strings.EqualFold(l, name) {
			return true
		}
	}
	return false
}

// Sort criteria accepted by SortBy.
const (
	SortNewest = "newest"
	SortTitle  = "title"
	SortCount  = "count"
	SortRandom = "random"
)

// FilterByTag returns the sets carrying the given tag (case-insensitive
// exact match), preserving their relative order.
func FilterByTag(sets []Set, name string) []Set {
	return filterByLabel(sets, name, func(s Set) []string { return s.Tags })
}

// FilterByPerson is FilterByTag over the people field.
func FilterByPerson(sets []Set, name string) []Set {
	return filterByLabel(sets, name, func(s Set) []string { return s.People })
}

func filterByLabel(sets []Set, name string, labels func(Set) []string) []Set {
	var out []Set
	for _, s := range sets {
		if HasLabel(labels(s), name) {
			out = append(out, s)
		}
	}
	return out
}

// SortBy orders sets in place by the given criterion. Unrecognized values
// (and the empty string) fall back to newest-first. Random is a fresh
// uniform shuffle on every call.
func SortBy(sets []Set, criterion string) {
	switch criterion {
	case SortTitle:
		sort.SliceStable(sets, func(i, j int) bool {
			return strings.ToLower(sets[i].Title) < strings.ToLower(sets[j].Title)
		})
	case SortCount:
		sort.SliceStable(sets, func(i, j int) bool {
			return len(sets[i].Images) > len(sets[j].Images)
		})
	case SortRandom:
		rand.Shuffle(len(sets), func(i, j int) {
			sets[i], sets[j] = sets[j], sets[i]
		})
	default: // SortNewest
		sort.SliceStable(sets, func(i, j int) bool {
			return sets[i].ModTime.After(sets[j].ModTime)
		})
	}
}

// SeriesGroup is one series of art sets, ordered by issue.
type SeriesGroup struct {
	Name string
	Sets []Set
}

// GroupBySeries groups art sets by series name, using the title as the
// group key when no series is set, so every art set lands in exactly one
// group. Within a group sets are ordered ascending by issue; groups are
// ordered alphabetically by name.
func GroupBySeries(sets []Set) []SeriesGroup {
	byName := make(map[string][]Set)
	for _, s := range sets {
		if s.Type != TypeArt {
			continue
		}
		key := s.Series
		if key == "" {
			key = s.Title
		}
		byName[key] = append(byName[key], s)
	}

	groups := make([]SeriesGroup, 0, len(byName))
	for name, members := range byName {
		sort.SliceStable(members, func(i, j int) bool {
			return members[i].Issue < members[j].Issue
		})
		groups = append(groups, SeriesGroup{Name: name, Sets: members})
	}
	sort.Slice(groups, func(i, j int) bool { return groups[i].Name < groups[j].Name })
	return groups
}

// LabelCount is one distinct label and the number of sets carrying it.
type LabelCount struct {
	Name  string
	Count int
}

// LetterGroup is the directory bucket for one initial letter.
type LetterGroup struct {
	Letter string
	Labels []LabelCount
}

// GroupByFirstLetter builds a tag or people directory: it counts distinct
// labels across all sets (case-sensitively; the write path already
// normalizes), drops blank labels, buckets them by uppercased first
// character, and sorts entries and buckets alphabetically.
func GroupByFirstLetter(sets []Set, labels func(Set) []string) []LetterGroup {
	counts := make(map[string]int)
	for _, s := range sets {
		for _, l := range labels(s) {
			if strings.TrimSpace(l) == "" {
				continue
			}
			counts[l]++
		}
	}

	byLetter := make(map[string][]LabelCount)
	for name, n := range counts {
		// Bucket by the first rune after trimming, so a label with
		// stray leading whitespace in a hand-edited sidecar does not
		// end up under a blank letter.
		letter := strings.ToUpper(string([]rune(strings.TrimSpace(name))[0]))
		byLetter[letter] = append(byLetter[letter], LabelCount{Name: name, Count: n})
	}

	groups := make([]LetterGroup, 0, len(byLetter))
	for letter, entries := range byLetter {
		sort.Slice(entries, func(i, j int) bool { return entries[i].Name < entries[j].Name })
		groups = append(groups, LetterGroup{Letter: letter, Labels: entries})
	}
	sort.Slice(groups, func(i, j int) bool { return groups[i].Letter < groups[j].Letter })
	return groups
}

// Tags is a label extractor for GroupByFirstLetter.
func Tags(s Set) []string { return s.Tags }

// People is a label extractor for GroupByFirstLetter.
func People(s Set) []string { return s.People }
