package web

import (
	"embed"
	"html/template"
	"io/fs"
	"net/http"
	"path"
	"path/filepath"
)

const (
	stylesPath = "/assets/styles.css"
	scriptPath = "/assets/ui.js"
)

//go:embed templates/index.html assets
var uiFS embed.FS

var indexTmpl = template.Must(template.ParseFS(uiFS, "templates/index.html"))

var assetTypes = map[string]string{
	".css": "text/css; charset=utf-8",
	".js":  "application/javascript; charset=utf-8",
}

const contentSecurityPolicy = "default-src 'none'; style-src 'self'; script-src 'self'; img-src 'self'; connect-src 'self'; form-action 'self'; base-uri 'none'"

type indexData struct {
	Repo       string
	StylesPath string
	ScriptPath string
}

func (s *Server) registerUI(mux *http.ServeMux) {
	mux.HandleFunc("GET /{$}", s.indexHandler)
	mux.HandleFunc("GET /assets/{name}", assetHandler)
}

func (s *Server) indexHandler(w http.ResponseWriter, r *http.Request) {
	h := w.Header()
	h.Set("Content-Type", "text/html; charset=utf-8")
	h.Set("X-Content-Type-Options", "nosniff")
	h.Set("Referrer-Policy", "no-referrer")
	h.Set("X-Frame-Options", "DENY")
	h.Set("Content-Security-Policy", contentSecurityPolicy)
	data := indexData{StylesPath: stylesPath, ScriptPath: scriptPath}
	if abs, err := filepath.Abs(s.Defaults.RepoDir); err == nil {
		data.Repo = filepath.Base(abs)
	}
	if err := indexTmpl.Execute(w, data); err != nil {
		s.logger().Error().Err(err).Msg("index template failed")
	}
}

// assetHandler serves the embedded stylesheet and script. Anything else
// under /assets is a 404.
func assetHandler(w http.ResponseWriter, r *http.Request) {
	name := r.PathValue("name")
	ctype, ok := assetTypes[path.Ext(name)]
	if !ok {
		http.NotFound(w, r)
		return
	}
	body, err := fs.ReadFile(uiFS, "assets/"+name)
	if err != nil {
		http.NotFound(w, r)
		return
	}
	w.Header().Set("Content-Type", ctype)
	w.Header().Set("Cache-Control", "public, max-age=86400")
	w.Header().Set("X-Content-Type-Options", "nosniff")
	_, _ = w.Write(body)
}
