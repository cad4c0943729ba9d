package site

import (
	"encoding/json"
	"io"
	"net/http"

	"folio/constants"
	"folio/database"

	"github.com/go-chi/chi/v5"
	"github.com/juju/errors"
)

func (s *Server) APIPortfolio(w http.ResponseWriter, r *http.Request) {
	p, err := s.portfolio.Load(r.Context())
	if err != nil {
		logger.Errorf("loading portfolio: %v", err)
		writeJSONError(w, http.StatusInternalServerError, "Error loading portfolio")
		return
	}
	writeJSON(w, http.StatusOK, p)
}

// APIPosts lists published posts, optionally narrowed with ?tag=<slug>.
func (s *Server) APIPosts(w http.ResponseWriter, r *http.Request) {
	var (
		posts []database.BlogPost
		err   error
	)
	if tag := r.URL.Query().Get("tag"); tag != "" {
		posts, err = s.blog.GetPostsByTag(r.Context(), tag)
	} else {
		posts, err = s.blog.GetPublishedPosts(r.Context())
	}
	if err != nil {
		logger.Errorf("listing posts: %v", err)
		writeJSONError(w, http.StatusInternalServerError, "Error fetching posts")
		return
	}
	if posts == nil {
		posts = []database.BlogPost{}
	}
	writeJSON(w, http.StatusOK, posts)
}

func (s *Server) APIPost(w http.ResponseWriter, r *http.Request) {
	post, err := s.blog.GetPostBySlug(r.Context(), chi.URLParam(r, "slug"))
	if err != nil {
		logger.Errorf("loading post: %v", err)
		writeJSONError(w, http.StatusInternalServerError, "Error fetching post")
		return
	}
	if post == nil || !post.Published {
		writeJSONError(w, http.StatusNotFound, "Post not found")
		return
	}
	writeJSON(w, http.StatusOK, post)
}

func (s *Server) APITags(w http.ResponseWriter, r *http.Request) {
	tags, err := s.blog.GetAllTags(r.Context())
	if err != nil {
		logger.Errorf("listing tags: %v", err)
		writeJSONError(w, http.StatusInternalServerError, "Error fetching tags")
		return
	}
	if tags == nil {
		tags = []database.BlogTag{}
	}
	writeJSON(w, http.StatusOK, tags)
}

type terminalRequest struct {
	Command string `json:"command"`
}

func (s *Server) APITerminal(w http.ResponseWriter, r *http.Request) {
	var req terminalRequest
	if err := json.NewDecoder(io.LimitReader(r.Body, 4<<10)).Decode(&req); err != nil {
		writeJSONError(w, http.StatusBadRequest, "Invalid request body")
		return
	}

	p, err := s.portfolio.Load(r.Context())
	if err != nil {
		logger.Errorf("loading portfolio: %v", err)
		writeJSONError(w, http.StatusInternalServerError, "Error loading portfolio")
		return
	}

	result, err := s.terminal.Execute(p, req.Command)
	if errors.Is(err, errors.NotFound) {
		writeJSONError(w, http.StatusNotFound, "Portfolio has not been set up yet")
		return
	} else if err != nil {
		logger.Errorf("running %q: %v", req.Command, err)
		writeJSONError(w, http.StatusInternalServerError, "Error running command")
		return
	}
	writeJSON(w, http.StatusOK, result)
}

type chatRequest struct {
	Message string `json:"message"`
}

// APIChat streams the assistant's reply as plain text, flushing after every
// chunk. Errors that happen before the first chunk get a proper status.
func (s *Server) APIChat(w http.ResponseWriter, r *http.Request) {
	var req chatRequest
	limit := int64(constants.CHAT_MAX_MESSAGE*4 + 1024)
	if err := json.NewDecoder(io.LimitReader(r.Body, limit)).Decode(&req); err != nil {
		writeJSONError(w, http.StatusBadRequest, "Invalid request body")
		return
	}

	conversation := s.conversationID(w, r)
	flusher, _ := w.(http.Flusher)
	started := false
	emit := func(chunk string) error {
		if !started {
			w.Header().Set("Content-Type", "text/plain; charset=utf-8")
			w.Header().Set("Cache-Control", "no-cache")
			w.Header().Set("X-Content-Type-Options", "nosniff")
			w.WriteHeader(http.StatusOK)
			started = true
		}
		if _, err := io.WriteString(w, chunk); err != nil {
			return errors.Annotate(err, "writing chat chunk")
		}
		if flusher != nil {
			flusher.Flush()
		}
		return nil
	}

	err := s.chat.Send(r.Context(), conversation, req.Message, emit)
	switch {
	case err == nil:
	case started:
		logger.Warningf("chat stream for %s ended early: %v", conversation, err)
	case errors.Is(err, errors.NotValid):
		writeJSONError(w, http.StatusBadRequest, err.Error())
	default:
		logger.Errorf("chat for %s: %v", conversation, err)
		writeJSONError(w, http.StatusInternalServerError, "Error talking to the assistant")
	}
}

func (s *Server) APIClearChat(w http.ResponseWriter, r *http.Request) {
	conversation := s.conversationID(w, r)
	if err := s.chat.Clear(r.Context(), conversation); err != nil {
		logger.Errorf("clearing chat %s: %v", conversation, err)
		writeJSONError(w, http.StatusInternalServerError, "Error clearing chat")
		return
	}
	w.WriteHeader(http.StatusNoContent)
}
