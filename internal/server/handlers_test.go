package server

import (
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"os"
	"path/filepath"
	"strings"
	"testing"

	"github.com/pa-childs/Photo-Album/internal/library"
	"github.com/pa-childs/Photo-Album/web"
)

// newTestServer builds a Server over a fresh temp sets directory and
// returns both. Art mode is off unless enabled via opts.
func newTestServer(t *testing.T, opts Options) (*Server, string) {
	t.Helper()
	root := t.TempDir()
	srv, err := New(library.New(root), web.FS, opts)
	if err != nil {
		t.Fatalf("server setup: %v", err)
	}
	return srv, root
}

// makeSet creates a set folder with images and an optional sidecar.
func makeSet(t *testing.T, root, slug, sidecar string, images ...string) {
	t.Helper()
	dir := filepath.Join(root, slug)
	if err := os.MkdirAll(dir, 0755); err != nil {
		t.Fatal(err)
	}
	for _, img := range images {
		if err := os.WriteFile(filepath.Join(dir, img), []byte("img"), 0644); err != nil {
			t.Fatal(err)
		}
	}
	if sidecar != "" {
		if err := os.WriteFile(filepath.Join(dir, "meta.json"), []byte(sidecar), 0644); err != nil {
			t.Fatal(err)
		}
	}
}

func get(srv *Server, path string) *httptest.ResponseRecorder {
	req := httptest.NewRequest(http.MethodGet, path, nil)
	rr := httptest.NewRecorder()
	srv.ServeHTTP(rr, req)
	return rr
}

func postForm(srv *Server, path, name string) *httptest.ResponseRecorder {
	req := httptest.NewRequest(http.MethodPost, path, strings.NewReader("name="+name))
	req.Header.Set("Content-Type", "application/x-www-form-urlencoded")
	rr := httptest.NewRecorder()
	srv.ServeHTTP(rr, req)
	return rr
}

// ---- archive ----

func TestHandleArchive_EmptyCatalog(t *testing.T) {
	srv, _ := newTestServer(t, Options{})
	rr := get(srv, "/")
	if rr.Code != http.StatusOK {
		t.Fatalf("expected 200, got %d", rr.Code)
	}
	if !strings.Contains(rr.Body.String(), "No sets found") {
		t.Errorf("empty catalog should render the empty state")
	}
}

func TestHandleArchive_ListsSets(t *testing.T) {
	srv, root := newTestServer(t, Options{})
	makeSet(t, root, "alps", `{"title":"Alps Hike"}`, "a.jpg")
	makeSet(t, root, "city", "", "x.png")

	rr := get(srv, "/")
	if rr.Code != http.StatusOK {
		t.Fatalf("expected 200, got %d", rr.Code)
	}
	body := rr.Body.String()
	if !strings.Contains(body, "Alps Hike") {
		t.Errorf("listing should contain the sidecar title")
	}
	if !strings.Contains(body, "city") {
		t.Errorf("listing should fall back to the slug as title")
	}
	if !strings.Contains(body, "/images/sets/alps/a.jpg") {
		t.Errorf("listing should reference the cover image")
	}
}

func TestHandleArchive_TagFilter(t *testing.T) {
	srv, root := newTestServer(t, Options{})
	makeSet(t, root, "tagged", `{"tags":["Travel"]}`, "a.jpg")
	makeSet(t, root, "other", `{"tags":["Street"]}`, "b.jpg")

	rr := get(srv, "/?tag=travel")
	body := rr.Body.String()
	if !strings.Contains(body, `href="/set/tagged"`) {
		t.Errorf("filtered listing should contain the matching set")
	}
	if strings.Contains(body, `href="/set/other"`) {
		t.Errorf("filtered listing should not contain non-matching sets")
	}
}

func TestHandleArchive_PersonFilter(t *testing.T) {
	srv, root := newTestServer(t, Options{})
	makeSet(t, root, "withbob", `{"people":["Bob"]}`, "a.jpg")
	makeSet(t, root, "nobody", "", "b.jpg")

	body := get(srv, "/?person=BOB").Body.String()
	if !strings.Contains(body, `href="/set/withbob"`) {
		t.Errorf("person filter should match case-insensitively")
	}
	if strings.Contains(body, `href="/set/nobody"`) {
		t.Errorf("person filter should exclude sets without the person")
	}
}

func TestHandleArchive_ArtModeDisabled(t *testing.T) {
	srv, root := newTestServer(t, Options{})
	makeSet(t, root, "orion-1", `{"type":"art","series":"Orion","issue":1}`, "a.jpg")

	// mode=art without art mode renders the normal archive view.
	body := get(srv, "/?mode=art").Body.String()
	if strings.Contains(body, "series-group") {
		t.Errorf("series view should be gated behind art mode")
	}
}

func TestHandleArchive_ArtModeSeriesView(t *testing.T) {
	srv, root := newTestServer(t, Options{ArtMode: true})
	makeSet(t, root, "orion-2", `{"title":"Two","type":"art","series":"Orion","issue":2}`, "a.jpg")
	makeSet(t, root, "orion-1", `{"title":"One","type":"art","series":"Orion","issue":1}`, "b.jpg")

	body := get(srv, "/?mode=art").Body.String()
	if !strings.Contains(body, "Orion") {
		t.Fatalf("series view should contain the series name")
	}
	if strings.Index(body, `href="/set/orion-1"`) > strings.Index(body, `href="/set/orion-2"`) {
		t.Errorf("issues should be ordered ascending within a series")
	}
}

// ---- set detail ----

func TestHandleSet_NotFound(t *testing.T) {
	srv, _ := newTestServer(t, Options{})
	if rr := get(srv, "/set/ghost"); rr.Code != http.StatusNotFound {
		t.Errorf("expected 404, got %d", rr.Code)
	}
}

func TestHandleSet_Found(t *testing.T) {
	srv, root := newTestServer(t, Options{})
	makeSet(t, root, "alps", `{"title":"Alps","description":"Hiking","tags":["Travel"]}`, "a.jpg", "b.jpg")

	rr := get(srv, "/set/alps")
	if rr.Code != http.StatusOK {
		t.Fatalf("expected 200, got %d", rr.Code)
	}
	body := rr.Body.String()
	for _, want := range []string{"Alps", "Hiking", "Travel", "/images/sets/alps/a.jpg", "/images/sets/alps/b.jpg"} {
		if !strings.Contains(body, want) {
			t.Errorf("set view missing %q", want)
		}
	}
}

func TestHandleSet_RendersLightbox(t *testing.T) {
	srv, root := newTestServer(t, Options{})
	makeSet(t, root, "alps", "", "a.jpg")

	body := get(srv, "/set/alps").Body.String()
	for _, want := range []string{`class="gallery-image"`, `id="lightbox"`, `id="lightbox-image"`, `/static/js/gallery.js`} {
		if !strings.Contains(body, want) {
			t.Errorf("set view missing lightbox hook %q", want)
		}
	}
}

// ---- tag/person routes ----

func TestHandleTag_FiltersListing(t *testing.T) {
	srv, root := newTestServer(t, Options{})
	makeSet(t, root, "tagged", `{"tags":["Street"]}`, "a.jpg")
	makeSet(t, root, "other", "", "b.jpg")

	body := get(srv, "/tag/street").Body.String()
	if !strings.Contains(body, `href="/set/tagged"`) {
		t.Errorf("tag route should include matching sets")
	}
	if strings.Contains(body, `href="/set/other"`) {
		t.Errorf("tag route should exclude other sets")
	}
}

func TestHandleTag_PercentInLabel(t *testing.T) {
	srv, root := newTestServer(t, Options{})
	makeSet(t, root, "sale", `{"tags":["50% Off"]}`, "a.jpg")

	// mux hands the route var to the handler already decoded; decoding it
	// a second time would choke on the literal "%" and drop the filter.
	rr := get(srv, "/tag/50%25%20Off")
	if rr.Code != http.StatusOK {
		t.Fatalf("expected 200, got %d", rr.Code)
	}
	if !strings.Contains(rr.Body.String(), `href="/set/sale"`) {
		t.Errorf("tag route should match a label containing a percent sign")
	}
}

func TestHandlePerson_PercentInLabel(t *testing.T) {
	srv, root := newTestServer(t, Options{})
	makeSet(t, root, "crew", `{"people":["100% Dave"]}`, "a.jpg")

	body := get(srv, "/person/100%25%20Dave").Body.String()
	if !strings.Contains(body, `href="/set/crew"`) {
		t.Errorf("person route should match a label containing a percent sign")
	}
}

func TestHandleTagDirectory_GroupsByLetter(t *testing.T) {
	srv, root := newTestServer(t, Options{})
	makeSet(t, root, "one", `{"tags":["Street","Travel"]}`, "a.jpg")
	makeSet(t, root, "two", `{"tags":["Travel"]}`, "b.jpg")

	body := get(srv, "/tags").Body.String()
	if !strings.Contains(body, "Street") || !strings.Contains(body, "Travel") {
		t.Fatalf("tag directory should list all tags")
	}
	if !strings.Contains(body, "(2)") {
		t.Errorf("tag directory should show the occurrence count")
	}
}

func TestHandlePeopleDirectory_Empty(t *testing.T) {
	srv, _ := newTestServer(t, Options{})
	rr := get(srv, "/people")
	if rr.Code != http.StatusOK {
		t.Fatalf("expected 200, got %d", rr.Code)
	}
	if !strings.Contains(rr.Body.String(), "Nothing here yet") {
		t.Errorf("empty directory should render the empty state")
	}
}

// ---- label edits ----

func TestAddTag_RedirectsAndPersists(t *testing.T) {
	srv, root := newTestServer(t, Options{})
	makeSet(t, root, "foo", "", "a.jpg")

	rr := postForm(srv, "/set/foo/add-tag", "street")
	if rr.Code != http.StatusSeeOther {
		t.Fatalf("expected 303 redirect, got %d", rr.Code)
	}
	if loc := rr.Header().Get("Location"); loc != "/set/foo" {
		t.Errorf("redirect location: got %q, want /set/foo", loc)
	}
	if body := get(srv, "/set/foo").Body.String(); !strings.Contains(body, "Street") {
		t.Errorf("tag should be normalized and visible on the set view")
	}
}

func TestAddTag_DuplicateRedirectsUnchanged(t *testing.T) {
	srv, root := newTestServer(t, Options{})
	makeSet(t, root, "foo", `{"tags":["Street"]}`, "a.jpg")

	rr := postForm(srv, "/set/foo/add-tag", "STREET")
	if rr.Code != http.StatusSeeOther {
		t.Fatalf("expected 303 redirect, got %d", rr.Code)
	}
	if n := strings.Count(get(srv, "/set/foo").Body.String(), ">Street</a>"); n != 1 {
		t.Errorf("duplicate add should keep a single tag entry, found %d", n)
	}
}

func TestAddTag_MissingSet(t *testing.T) {
	srv, _ := newTestServer(t, Options{})
	if rr := postForm(srv, "/set/ghost/add-tag", "street"); rr.Code != http.StatusNotFound {
		t.Errorf("expected 404, got %d", rr.Code)
	}
}

func TestRemovePerson_Redirects(t *testing.T) {
	srv, root := newTestServer(t, Options{})
	makeSet(t, root, "foo", `{"people":["Alice","Bob"]}`, "a.jpg")

	rr := postForm(srv, "/set/foo/remove-person", "alice")
	if rr.Code != http.StatusSeeOther {
		t.Fatalf("expected 303 redirect, got %d", rr.Code)
	}
	body := get(srv, "/set/foo").Body.String()
	if strings.Contains(body, "Alice") {
		t.Errorf("removed person should be gone from the set view")
	}
	if !strings.Contains(body, "Bob") {
		t.Errorf("other people should remain")
	}
}

// ---- image serving ----

func TestHandleImage_Found(t *testing.T) {
	srv, root := newTestServer(t, Options{})
	makeSet(t, root, "alps", "", "a.jpg")

	rr := get(srv, "/images/sets/alps/a.jpg")
	if rr.Code != http.StatusOK {
		t.Fatalf("expected 200, got %d", rr.Code)
	}
	if ct := rr.Header().Get("Content-Type"); !strings.Contains(ct, "image/jpeg") {
		t.Errorf("unexpected Content-Type %q", ct)
	}
}

func TestHandleImage_RejectsNonImages(t *testing.T) {
	srv, root := newTestServer(t, Options{})
	makeSet(t, root, "alps", `{"title":"Alps"}`, "a.jpg")

	if rr := get(srv, "/images/sets/alps/meta.json"); rr.Code != http.StatusNotFound {
		t.Errorf("sidecar file must not be served, got %d", rr.Code)
	}
	if rr := get(srv, "/images/sets/alps/missing.jpg"); rr.Code != http.StatusNotFound {
		t.Errorf("missing image should 404, got %d", rr.Code)
	}
}

// ---- JSON API ----

func TestHandleAPISets_Empty(t *testing.T) {
	srv, _ := newTestServer(t, Options{})
	rr := get(srv, "/api/sets")
	if rr.Code != http.StatusOK {
		t.Fatalf("expected 200, got %d", rr.Code)
	}
	var sets []setJSON
	if err := json.NewDecoder(rr.Body).Decode(&sets); err != nil {
		t.Fatalf("invalid JSON: %v", err)
	}
	if len(sets) != 0 {
		t.Errorf("expected empty list, got %d entries", len(sets))
	}
}

func TestHandleAPISets_Fields(t *testing.T) {
	srv, root := newTestServer(t, Options{})
	makeSet(t, root, "alps", `{"title":"Alps","tags":["Travel"],"people":["Alice"]}`, "b.jpg", "a.jpg")

	rr := get(srv, "/api/sets")
	var sets []setJSON
	if err := json.NewDecoder(rr.Body).Decode(&sets); err != nil {
		t.Fatalf("invalid JSON: %v", err)
	}
	if len(sets) != 1 {
		t.Fatalf("expected 1 set, got %d", len(sets))
	}
	s := sets[0]
	if s.ID != "alps" || s.Title != "Alps" {
		t.Errorf("unexpected identity fields: %+v", s)
	}
	if s.ImageCount != 2 {
		t.Errorf("image_count: got %d, want 2", s.ImageCount)
	}
	if s.Cover != "/images/sets/alps/a.jpg" {
		t.Errorf("cover: got %q", s.Cover)
	}
	if len(s.Images) != 0 {
		t.Errorf("list endpoint should omit the image list")
	}
}

func TestHandleAPISet_NotFound(t *testing.T) {
	srv, _ := newTestServer(t, Options{})
	if rr := get(srv, "/api/sets/ghost"); rr.Code != http.StatusNotFound {
		t.Errorf("expected 404, got %d", rr.Code)
	}
}

func TestHandleAPISet_IncludesImages(t *testing.T) {
	srv, root := newTestServer(t, Options{})
	makeSet(t, root, "alps", "", "b.jpg", "a.jpg")

	rr := get(srv, "/api/sets/alps")
	var s setJSON
	if err := json.NewDecoder(rr.Body).Decode(&s); err != nil {
		t.Fatalf("invalid JSON: %v", err)
	}
	want := []string{"/images/sets/alps/a.jpg", "/images/sets/alps/b.jpg"}
	if len(s.Images) != 2 || s.Images[0] != want[0] || s.Images[1] != want[1] {
		t.Errorf("images: got %v, want %v", s.Images, want)
	}
}

// ---- health ----

func TestHandleHealth_ReturnsJSON(t *testing.T) {
	srv, _ := newTestServer(t, Options{})
	rr := get(srv, "/health")
	if rr.Code != http.StatusOK {
		t.Fatalf("expected 200, got %d", rr.Code)
	}
	if rr.Body.String() != `{"status":"ok"}` {
		t.Errorf("unexpected body %q", rr.Body.String())
	}
}
