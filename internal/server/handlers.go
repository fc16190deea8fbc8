package server

import (
	"encoding/json"
	"errors"
	"mime"
	"net/http"
	"net/url"
	"path/filepath"

	"github.com/gorilla/mux"

	"github.com/pa-childs/Photo-Album/internal/album"
	"github.com/pa-childs/Photo-Album/internal/library"
)

// archivePage is the template data for the archive and filtered listings.
type archivePage struct {
	Sets         []album.Set
	ActiveTag    string
	ActivePerson string
	Sort         string
	ArtMode      bool
}

// seriesPage is the template data for the art-mode series view.
type seriesPage struct {
	Groups  []album.SeriesGroup
	ArtMode bool
}

// setPage is the template data for a single set view.
type setPage struct {
	Set     album.Set
	ArtMode bool
}

// labelsPage is the template data for the tag/people directories.
type labelsPage struct {
	Kind    string // "tag" or "person"
	Title   string
	Groups  []album.LetterGroup
	ArtMode bool
}

// render executes the named page template. Template failures surface as
// 500s; they indicate a broken build, not bad input.
func (s *Server) render(w http.ResponseWriter, name string, data any) {
	w.Header().Set("Content-Type", "text/html; charset=utf-8")
	if err := s.templates.ExecuteTemplate(w, name, data); err != nil {
		s.logger.Error("render template", "template", name, "error", err)
		http.Error(w, "template error", http.StatusInternalServerError)
	}
}

// handleArchive serves the main listing. Query parameters: tag and person
// filter (tag wins when both are present), sort selects the ordering, and
// mode=art switches to the series-grouped view when art mode is enabled.
func (s *Server) handleArchive(w http.ResponseWriter, r *http.Request) {
	q := r.URL.Query()
	sets := s.lib.Scan()

	if s.opts.ArtMode && q.Get("mode") == "art" {
		s.render(w, "series.html", seriesPage{
			Groups:  album.GroupBySeries(sets),
			ArtMode: true,
		})
		return
	}

	tag := q.Get("tag")
	person := q.Get("person")
	if tag != "" {
		sets = album.FilterByTag(sets, tag)
	} else if person != "" {
		sets = album.FilterByPerson(sets, person)
	}

	sortBy := q.Get("sort")
	album.SortBy(sets, sortBy)

	s.render(w, "archive.html", archivePage{
		Sets:         sets,
		ActiveTag:    tag,
		ActivePerson: person,
		Sort:         sortBy,
		ArtMode:      s.opts.ArtMode,
	})
}

// handleSet serves a single set's detail view.
func (s *Server) handleSet(w http.ResponseWriter, r *http.Request) {
	slug := mux.Vars(r)["slug"]
	set, err := s.lib.Resolve(slug)
	if err != nil {
		http.Error(w, "set not found", http.StatusNotFound)
		return
	}
	s.render(w, "set.html", setPage{Set: set, ArtMode: s.opts.ArtMode})
}

// handleTag serves the listing filtered to one tag. The mux var is
// already percent-decoded; unescaping again would mangle labels with a
// literal "%".
func (s *Server) handleTag(w http.ResponseWriter, r *http.Request) {
	name := mux.Vars(r)["name"]
	sets := album.FilterByTag(s.lib.Scan(), name)
	s.render(w, "archive.html", archivePage{
		Sets:      sets,
		ActiveTag: name,
		ArtMode:   s.opts.ArtMode,
	})
}

// handlePerson serves the listing filtered to one person.
func (s *Server) handlePerson(w http.ResponseWriter, r *http.Request) {
	name := mux.Vars(r)["name"]
	sets := album.FilterByPerson(s.lib.Scan(), name)
	s.render(w, "archive.html", archivePage{
		Sets:         sets,
		ActivePerson: name,
		ArtMode:      s.opts.ArtMode,
	})
}

// handleTagDirectory serves the tag directory grouped by first letter.
func (s *Server) handleTagDirectory(w http.ResponseWriter, r *http.Request) {
	groups := album.GroupByFirstLetter(s.lib.Scan(), album.Tags)
	s.render(w, "labels.html", labelsPage{
		Kind:    "tag",
		Title:   "Tags",
		Groups:  groups,
		ArtMode: s.opts.ArtMode,
	})
}

// handlePeopleDirectory serves the people directory grouped by first letter.
func (s *Server) handlePeopleDirectory(w http.ResponseWriter, r *http.Request) {
	groups := album.GroupByFirstLetter(s.lib.Scan(), album.People)
	s.render(w, "labels.html", labelsPage{
		Kind:    "person",
		Title:   "People",
		Groups:  groups,
		ArtMode: s.opts.ArtMode,
	})
}

// addLabel returns a handler that attaches the posted "name" value to the
// set's tags or people and redirects back to the set view. Adding a value
// that is already present, or one that normalizes to nothing, is a no-op.
func (s *Server) addLabel(field library.Field) http.HandlerFunc {
	return s.editLabel(field, func(slug, name string, f library.Field) error {
		return s.lib.AddLabel(slug, name, f)
	})
}

// removeLabel returns a handler that removes the posted "name" value.
func (s *Server) removeLabel(field library.Field) http.HandlerFunc {
	return s.editLabel(field, func(slug, name string, f library.Field) error {
		return s.lib.RemoveLabel(slug, name, f)
	})
}

func (s *Server) editLabel(field library.Field, apply func(slug, name string, f library.Field) error) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		slug := mux.Vars(r)["slug"]
		if err := r.ParseForm(); err != nil {
			http.Error(w, "bad request", http.StatusBadRequest)
			return
		}
		err := apply(slug, r.FormValue("name"), field)
		switch {
		case errors.Is(err, library.ErrNotFound):
			http.Error(w, "set not found", http.StatusNotFound)
			return
		case err != nil:
			// A failed write must not look like success.
			s.logger.Error("label edit", "slug", slug, "field", string(field), "error", err)
			http.Error(w, "could not save metadata", http.StatusInternalServerError)
			return
		}
		http.Redirect(w, r, "/set/"+url.PathEscape(slug), http.StatusSeeOther)
	}
}

// handleImage serves one image file from a set folder. Filenames that do
// not resolve to a real image directly inside the folder are rejected.
func (s *Server) handleImage(w http.ResponseWriter, r *http.Request) {
	vars := mux.Vars(r)
	path, err := s.lib.ImagePath(vars["slug"], vars["filename"])
	if err != nil {
		http.Error(w, "image not found", http.StatusNotFound)
		return
	}
	if ct := mime.TypeByExtension(filepath.Ext(path)); ct != "" {
		w.Header().Set("Content-Type", ct)
	}
	http.ServeFile(w, r, path)
}

// setJSON is the JSON representation of a set for the API mirror.
type setJSON struct {
	ID          string   `json:"id"`
	Title       string   `json:"title"`
	Description string   `json:"description"`
	Tags        []string `json:"tags"`
	People      []string `json:"people"`
	Type        string   `json:"type"`
	Series      string   `json:"series,omitempty"`
	Issue       float64  `json:"issue,omitempty"`
	ImageCount  int      `json:"image_count"`
	Cover       string   `json:"cover,omitempty"`
	Images      []string `json:"images,omitempty"`
}

// setToJSON converts a Set, optionally including the full image URL list.
func setToJSON(s album.Set, withImages bool) setJSON {
	j := setJSON{
		ID:          s.Slug,
		Title:       s.Title,
		Description: s.Description,
		Tags:        emptyIfNil(s.Tags),
		People:      emptyIfNil(s.People),
		Type:        s.Type,
		Series:      s.Series,
		Issue:       s.Issue,
		ImageCount:  len(s.Images),
	}
	if s.Cover != "" {
		j.Cover = imageURL(s.Slug, s.Cover)
	}
	if withImages {
		j.Images = make([]string, 0, len(s.Images))
		for _, img := range s.Images {
			j.Images = append(j.Images, imageURL(s.Slug, img))
		}
	}
	return j
}

func imageURL(slug, filename string) string {
	return "/images/sets/" + url.PathEscape(slug) + "/" + url.PathEscape(filename)
}

func emptyIfNil(v []string) []string {
	if v == nil {
		return []string{}
	}
	return v
}

// handleAPISets serves the full catalog as JSON, newest first.
func (s *Server) handleAPISets(w http.ResponseWriter, r *http.Request) {
	sets := s.lib.Scan()
	out := make([]setJSON, 0, len(sets))
	for _, set := range sets {
		out = append(out, setToJSON(set, false))
	}
	w.Header().Set("Content-Type", "application/json")
	_ = json.NewEncoder(w).Encode(out)
}

// handleAPISet serves one set as JSON, including its image URLs.
func (s *Server) handleAPISet(w http.ResponseWriter, r *http.Request) {
	set, err := s.lib.Resolve(mux.Vars(r)["slug"])
	if err != nil {
		http.Error(w, "set not found", http.StatusNotFound)
		return
	}
	w.Header().Set("Content-Type", "application/json")
	_ = json.NewEncoder(w).Encode(setToJSON(set, true))
}

// handleHealth serves a simple health-check endpoint.
func (s *Server) handleHealth(w http.ResponseWriter, r *http.Request) {
	w.Header().Set("Content-Type", "application/json")
	_, _ = w.Write([]byte(`{"status":"ok"}`))
}
