package site

import (
	"encoding/json"
	"net/http"

	"folio/templates"

	g "github.com/maragudk/gomponents"
)

func (s *Server) layoutProps(r *http.Request, title, description string) templates.LayoutProps {
	props := templates.LayoutProps{
		Title:       title,
		Description: description,
		SiteName:    s.siteName,
	}
	if session := getSignedInUserOrNil(r); session != nil {
		props.CurrentUser = session.Username
	}
	return props
}

// renderPage writes a full HTML page with the given status.
func renderPage(w http.ResponseWriter, status int, page g.Node) {
	w.Header().Set("Content-Type", "text/html; charset=utf-8")
	w.WriteHeader(status)
	if err := page.Render(w); err != nil {
		logger.Errorf("page render error: %v", err)
	}
}

func (s *Server) renderError(w http.ResponseWriter, r *http.Request, status int, message string) {
	renderPage(w, status, templates.ErrorPage(s.layoutProps(r, http.StatusText(status), ""), status, message))
}

func (s *Server) internalError(w http.ResponseWriter, r *http.Request, err error, doing string) {
	logger.Errorf("%s: %v", doing, err)
	s.renderError(w, r, http.StatusInternalServerError, "Something went wrong on our side.")
}

func writeJSON(w http.ResponseWriter, status int, v any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	if err := json.NewEncoder(w).Encode(v); err != nil {
		logger.Warningf("json encode error: %v", err)
	}
}

func writeJSONError(w http.ResponseWriter, status int, message string) {
	writeJSON(w, status, map[string]string{"error": message})
}
