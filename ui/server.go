// Package ui serves a web playground for argument specifications and docstring rewriting.
package ui

import (
	"embed"
	"encoding/json"
	"errors"
	"fmt"
	"html/template"
	"io/fs"
	"net/http"
	"os"
	"strings"

	"github.com/dhamidi/checkshapes/shapes"
	"github.com/tliron/commonlog"
)

//go:embed templates
var embeddedFS embed.FS

type Server struct {
	cache      *shapes.Cache
	mux        *http.ServeMux
	templateFS fs.FS
	log        commonlog.Logger
}

// NewServer returns a playground whose parsers share cache. Templates in ui/templates
// under the working directory take precedence over the embedded ones.
func NewServer(cache *shapes.Cache) (*Server, error) {
	templateFS := overlayFS("ui/templates", mustSub(embeddedFS, "templates"))
	if _, err := template.ParseFS(templateFS, "*.html"); err != nil {
		return nil, fmt.Errorf("parse templates: %w", err)
	}

	s := &Server{
		cache:      cache,
		mux:        http.NewServeMux(),
		templateFS: templateFS,
		log:        commonlog.GetLogger("checkshapes.ui"),
	}

	s.mux.HandleFunc("POST /rewrite", s.handleRewrite)
	s.mux.HandleFunc("GET /{$}", s.handleIndex)

	return s, nil
}

func (s *Server) ServeHTTP(w http.ResponseWriter, r *http.Request) {
	s.mux.ServeHTTP(w, r)
}

func (s *Server) render(w http.ResponseWriter, name string, data any) {
	tmpl, err := template.ParseFS(s.templateFS, "*.html")
	if err != nil {
		http.Error(w, "template error: "+err.Error(), http.StatusInternalServerError)
		return
	}
	if err := tmpl.ExecuteTemplate(w, name, data); err != nil {
		s.log.Errorf("render %s: %s", name, err)
	}
}

// RewriteRequest is the JSON body of POST /rewrite.
type RewriteRequest struct {
	Specs     []string `json:"specs"`
	Docstring *string  `json:"docstring,omitempty"`
	Format    string   `json:"format,omitempty"`
}

// RewriteResponse is the JSON reply of POST /rewrite.
type RewriteResponse struct {
	Specs     []ParsedSpec `json:"specs,omitempty"`
	Docstring *string      `json:"docstring,omitempty"`
	Error     *ErrorData   `json:"error,omitempty"`
}

type ParsedSpec struct {
	Spec   string `json:"spec"`
	Sphinx string `json:"sphinx"`
}

type ErrorData struct {
	Message  string   `json:"message"`
	Input    string   `json:"input,omitempty"`
	Line     int      `json:"line,omitempty"`
	Column   int      `json:"column,omitempty"`
	Expected []string `json:"expected,omitempty"`
	Excerpt  string   `json:"excerpt,omitempty"`
}

// rewrite parses the request's specifications and rewrites its docstring. Failures to parse
// user input are reported in the response; only an unknown format is a request error.
func (s *Server) rewrite(req RewriteRequest) (RewriteResponse, error) {
	format := shapes.DocstringFormatSphinx
	if req.Format != "" {
		f, err := shapes.ParseDocstringFormat(req.Format)
		if err != nil {
			return RewriteResponse{}, err
		}
		format = f
	}
	p := shapes.NewParser(shapes.WithCache(s.cache), shapes.WithDocstringFormat(format))

	var resp RewriteResponse
	specs := make([]shapes.ArgumentSpec, 0, len(req.Specs))
	for _, text := range req.Specs {
		spec, err := p.ParseArgumentSpec(text)
		if err != nil {
			resp.Error = errorData(err)
			return resp, nil
		}
		specs = append(specs, spec)
		resp.Specs = append(resp.Specs, ParsedSpec{Spec: spec.String(), Sphinx: shapes.SphinxLine(spec)})
	}

	doc, err := p.ParseAndRewriteDocstring(req.Docstring, specs)
	if err != nil {
		resp.Error = errorData(err)
		return resp, nil
	}
	resp.Docstring = doc
	return resp, nil
}

func errorData(err error) *ErrorData {
	data := &ErrorData{Message: err.Error()}
	var pe *shapes.ParseError
	var spe *shapes.SpecificationParseError
	var dpe *shapes.DocstringParseError
	switch {
	case errors.As(err, &spe):
		pe = &spe.ParseError
	case errors.As(err, &dpe):
		pe = &dpe.ParseError
	}
	if pe != nil {
		data.Input = pe.Input
		data.Line = pe.Line
		data.Column = pe.Column
		data.Expected = pe.Expected
		data.Excerpt = pe.Excerpt()
	}
	return data
}

type indexData struct {
	Specs     string
	Docstring string
	Format    string
	Formats   []shapes.DocstringFormat
	Parsed    []ParsedSpec
	Result    string
	Error     *ErrorData
}

func (s *Server) handleIndex(w http.ResponseWriter, r *http.Request) {
	s.render(w, "index.html", indexData{
		Format:  string(shapes.DocstringFormatSphinx),
		Formats: shapes.DocstringFormats,
	})
}

func (s *Server) handleRewrite(w http.ResponseWriter, r *http.Request) {
	var req RewriteRequest

	if r.Header.Get("Content-Type") == "application/json" {
		if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
			http.Error(w, "invalid JSON: "+err.Error(), http.StatusBadRequest)
			return
		}
		resp, err := s.rewrite(req)
		if err != nil {
			http.Error(w, err.Error(), http.StatusBadRequest)
			return
		}
		w.Header().Set("Content-Type", "application/json")
		json.NewEncoder(w).Encode(resp)
		return
	}

	if err := r.ParseForm(); err != nil {
		http.Error(w, "invalid form data: "+err.Error(), http.StatusBadRequest)
		return
	}
	specsText := r.FormValue("specs")
	for _, line := range strings.Split(specsText, "\n") {
		if line = strings.TrimSpace(line); line != "" {
			req.Specs = append(req.Specs, line)
		}
	}
	docstring := strings.ReplaceAll(r.FormValue("docstring"), "\r\n", "\n")
	req.Docstring = &docstring
	req.Format = r.FormValue("format")

	resp, err := s.rewrite(req)
	if err != nil {
		http.Error(w, err.Error(), http.StatusBadRequest)
		return
	}
	data := indexData{
		Specs:     specsText,
		Docstring: docstring,
		Format:    req.Format,
		Formats:   shapes.DocstringFormats,
		Parsed:    resp.Specs,
		Error:     resp.Error,
	}
	if resp.Docstring != nil {
		data.Result = *resp.Docstring
	}
	s.render(w, "index.html", data)
}

func mustSub(fsys fs.FS, dir string) fs.FS {
	sub, err := fs.Sub(fsys, dir)
	if err != nil {
		panic(err)
	}
	return sub
}

type overlayFSType struct {
	primary   fs.FS
	secondary fs.FS
}

func overlayFS(primaryPath string, secondary fs.FS) fs.FS {
	return &overlayFSType{
		primary:   os.DirFS(primaryPath),
		secondary: secondary,
	}
}

func (o *overlayFSType) Open(name string) (fs.File, error) {
	f, err := o.primary.Open(name)
	if err == nil {
		return f, nil
	}
	return o.secondary.Open(name)
}

func (o *overlayFSType) ReadDir(name string) ([]fs.DirEntry, error) {
	entries := make(map[string]fs.DirEntry)

	if rd, ok := o.secondary.(fs.ReadDirFS); ok {
		if list, err := rd.ReadDir(name); err == nil {
			for _, e := range list {
				entries[e.Name()] = e
			}
		}
	}

	if rd, ok := o.primary.(fs.ReadDirFS); ok {
		if list, err := rd.ReadDir(name); err == nil {
			for _, e := range list {
				entries[e.Name()] = e
			}
		}
	}

	result := make([]fs.DirEntry, 0, len(entries))
	for _, e := range entries {
		result = append(result, e)
	}
	return result, nil
}
