// Package server implements the HTTP server and routing for the photo
// archive. It is a thin adapter over the library package: every read
// re-scans the sets directory, every edit goes through the library's
// label mutators and redirects back to the set view.
package server

import (
	"html/template"
	"io"
	"io/fs"
	"log/slog"
	"net/http"
	"time"

	"github.com/gorilla/mux"

	"github.com/pa-childs/Photo-Album/internal/library"
)

// Options holds optional configuration for the Server.
type Options struct {
	// ArtMode enables the series-grouped archive view for art sets.
	ArtMode bool

	// Logger receives request and error logs. Nil disables logging.
	Logger *slog.Logger

	// StaticFS is the filesystem containing the stylesheet and other
	// static assets, served under /static/. If nil, /static/ is not
	// registered.
	StaticFS fs.FS
}

// Server is the HTTP server for the photo archive.
type Server struct {
	router    *mux.Router
	lib       *library.Library
	templates *template.Template
	logger    *slog.Logger
	opts      Options
}

// New creates and configures a Server over the given library. tmplFS must
// contain the page templates under templates/.
func New(lib *library.Library, tmplFS fs.FS, opts Options) (*Server, error) {
	templates, err := template.ParseFS(tmplFS, "templates/*.html")
	if err != nil {
		return nil, err
	}
	logger := opts.Logger
	if logger == nil {
		logger = slog.New(slog.NewTextHandler(io.Discard, nil))
	}
	s := &Server{
		router:    mux.NewRouter(),
		lib:       lib,
		templates: templates,
		logger:    logger,
		opts:      opts,
	}
	s.registerRoutes()
	return s, nil
}

// ServeHTTP implements http.Handler, delegating to the mux router.
func (s *Server) ServeHTTP(w http.ResponseWriter, r *http.Request) {
	s.router.ServeHTTP(w, r)
}

// registerRoutes sets up all endpoint routes.
func (s *Server) registerRoutes() {
	r := s.router
	r.Use(s.logRequests)

	r.HandleFunc("/health", s.handleHealth).Methods(http.MethodGet)

	// Archive views
	r.HandleFunc("/", s.handleArchive).Methods(http.MethodGet)
	r.HandleFunc("/set/{slug}", s.handleSet).Methods(http.MethodGet)
	r.HandleFunc("/tag/{name}", s.handleTag).Methods(http.MethodGet)
	r.HandleFunc("/person/{name}", s.handlePerson).Methods(http.MethodGet)
	r.HandleFunc("/tags", s.handleTagDirectory).Methods(http.MethodGet)
	r.HandleFunc("/people", s.handlePeopleDirectory).Methods(http.MethodGet)

	// Label edits (plain form posts, redirect back to the set view)
	r.HandleFunc("/set/{slug}/add-tag", s.addLabel(library.FieldTags)).Methods(http.MethodPost)
	r.HandleFunc("/set/{slug}/remove-tag", s.removeLabel(library.FieldTags)).Methods(http.MethodPost)
	r.HandleFunc("/set/{slug}/add-person", s.addLabel(library.FieldPeople)).Methods(http.MethodPost)
	r.HandleFunc("/set/{slug}/remove-person", s.removeLabel(library.FieldPeople)).Methods(http.MethodPost)

	// Image files
	r.HandleFunc("/images/sets/{slug}/{filename}", s.handleImage).Methods(http.MethodGet)

	// JSON mirror of the catalog for scripts and external tooling
	r.HandleFunc("/api/sets", s.handleAPISets).Methods(http.MethodGet)
	r.HandleFunc("/api/sets/{slug}", s.handleAPISet).Methods(http.MethodGet)

	if s.opts.StaticFS != nil {
		r.PathPrefix("/static/").Handler(
			http.StripPrefix("/static/", http.FileServer(http.FS(s.opts.StaticFS))))
	}
}

// logRequests logs one line per request at debug level.
func (s *Server) logRequests(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		start := time.Now()
		next.ServeHTTP(w, r)
		s.logger.Debug("request",
			slog.String("method", r.Method),
			slog.String("path", r.URL.Path),
			slog.Duration("duration", time.Since(start)))
	})
}
