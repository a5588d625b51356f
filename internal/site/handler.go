package site

import (
	"encoding/json"
	"fmt"
	"net/http"
	"strings"
)

const defaultSiteOrigin = "https://myautoimport.es"

// Handler serves the small public site endpoints: the runtime config
// script the front end loads before anything else, and the PWA manifest.
type Handler struct {
	dataAPIURL string
	anonKey    string
	siteOrigin string
}

// NewHandler builds the site handler. siteOrigin falls back to the
// production origin when empty so the config script is never blank.
func NewHandler(dataAPIURL, anonKey, siteOrigin string) *Handler {
	if siteOrigin == "" {
		siteOrigin = defaultSiteOrigin
	}
	return &Handler{
		dataAPIURL: dataAPIURL,
		anonKey:    anonKey,
		siteOrigin: strings.TrimRight(siteOrigin, "/"),
	}
}

// PublicConfig handles GET /api/public-config. The response is a JS
// snippet assigning window.__APP_CONFIG__, so pages can read the data
// API endpoint and public key without a build step. Only keys safe to
// expose to browsers belong here.
func (h *Handler) PublicConfig(w http.ResponseWriter, r *http.Request) {
	body := fmt.Sprintf(`window.__APP_CONFIG__ = {
  DATA_API_URL: %s,
  DATA_API_ANON_KEY: %s,
  SITE_ORIGIN: %s
};
`, jsString(h.dataAPIURL), jsString(h.anonKey), jsString(h.siteOrigin))

	w.Header().Set("Content-Type", "application/javascript; charset=utf-8")
	w.Header().Set("Cache-Control", "no-store")
	_, _ = w.Write([]byte(body))
}

// jsString renders a value as a JS string literal. JSON string encoding
// is a strict subset of JS, so this cannot break out of the assignment.
func jsString(v string) string {
	b, _ := json.Marshal(v)
	return string(b)
}

type manifestIcon struct {
	Src   string `json:"src"`
	Sizes string `json:"sizes"`
	Type  string `json:"type"`
}

type webManifest struct {
	Name            string         `json:"name"`
	ShortName       string         `json:"short_name"`
	StartURL        string         `json:"start_url"`
	Scope           string         `json:"scope"`
	Display         string         `json:"display"`
	BackgroundColor string         `json:"background_color"`
	ThemeColor      string         `json:"theme_color"`
	Icons           []manifestIcon `json:"icons"`
}

// Manifest handles GET /api/manifest and serves the installable web app
// manifest. The document is static, so it carries a day of cache.
func (h *Handler) Manifest(w http.ResponseWriter, r *http.Request) {
	manifest := webManifest{
		Name:            "My Auto Import",
		ShortName:       "MAI",
		StartURL:        "/",
		Scope:           "/",
		Display:         "standalone",
		BackgroundColor: "#0b1220",
		ThemeColor:      "#0b1220",
		Icons: []manifestIcon{
			{Src: "/img/icon-192.png", Sizes: "192x192", Type: "image/png"},
			{Src: "/img/icon-512.png", Sizes: "512x512", Type: "image/png"},
		},
	}

	w.Header().Set("Content-Type", "application/manifest+json; charset=utf-8")
	w.Header().Set("Cache-Control", "public, max-age=86400, s-maxage=86400")
	_ = json.NewEncoder(w).Encode(manifest)
}
