package site

import (
	"fmt"
	"net/http"
	"strconv"
	"strings"
	"unicode/utf8"

	"folio/blog"
	"folio/constants"
	"folio/database"
	"folio/templates"

	"github.com/go-chi/chi/v5"
	"github.com/juju/errors"
)

func (s *Server) Home(w http.ResponseWriter, r *http.Request) {
	p, err := s.portfolio.Load(r.Context())
	if err != nil {
		s.internalError(w, r, err, "loading portfolio")
		return
	}

	title, description := "", "Portfolio and blog"
	if p.PersonalInfo != nil {
		title = p.PersonalInfo.Name
		description = p.PersonalInfo.Tagline
	}
	layout := s.layoutProps(r, title, description)
	renderPage(w, http.StatusOK, templates.HomePage(layout, templates.HomeProps{
		Portfolio:      p,
		ChatConfigured: s.chat.Configured(),
	}))
}

func (s *Server) BlogIndex(w http.ResponseWriter, r *http.Request) {
	posts, err := s.blog.GetPublishedPosts(r.Context())
	if err != nil {
		s.internalError(w, r, err, "listing posts")
		return
	}
	tags, err := s.blog.GetAllTags(r.Context())
	if err != nil {
		s.internalError(w, r, err, "listing tags")
		return
	}

	layout := s.layoutProps(r, "Blog", "Notes on software, infrastructure and whatever else")
	renderPage(w, http.StatusOK, templates.BlogIndexPage(layout, templates.BlogIndexProps{Posts: posts, Tags: tags}))
}

func (s *Server) BlogTag(w http.ResponseWriter, r *http.Request) {
	tagSlug := chi.URLParam(r, "tag")
	tag, err := s.blog.GetTagBySlug(r.Context(), tagSlug)
	if err != nil {
		s.internalError(w, r, err, "loading tag")
		return
	}
	if tag == nil {
		s.renderError(w, r, http.StatusNotFound, "No such tag.")
		return
	}

	posts, err := s.blog.GetPostsByTag(r.Context(), tag.Slug)
	if err != nil {
		s.internalError(w, r, err, "listing posts by tag")
		return
	}
	tags, err := s.blog.GetAllTags(r.Context())
	if err != nil {
		s.internalError(w, r, err, "listing tags")
		return
	}

	layout := s.layoutProps(r, "#"+tag.Name, "Posts tagged "+tag.Name)
	renderPage(w, http.StatusOK, templates.BlogIndexPage(layout, templates.BlogIndexProps{
		Posts:      posts,
		Tags:       tags,
		CurrentTag: tag,
	}))
}

// BlogPost shows a published post and counts the visit. Drafts are
// indistinguishable from missing posts.
func (s *Server) BlogPost(w http.ResponseWriter, r *http.Request) {
	post, err := s.blog.GetPostBySlug(r.Context(), chi.URLParam(r, "slug"))
	if err != nil {
		s.internalError(w, r, err, "loading post")
		return
	}
	if post == nil || !post.Published {
		s.renderError(w, r, http.StatusNotFound, "Post not found.")
		return
	}

	if err := s.blog.IncrementViews(r.Context(), post.ID); err != nil {
		logger.Warningf("counting view of post %d: %v", post.ID, err)
	} else {
		post.Views++
	}

	layout := s.layoutProps(r, post.Title, post.Description)
	renderPage(w, http.StatusOK, templates.BlogPostPage(layout, *post))
}

func (s *Server) AdminLogin(w http.ResponseWriter, r *http.Request) {
	switch r.Method {
	case http.MethodGet:
		if getSignedInUserOrNil(r) != nil {
			http.Redirect(w, r, "/admin/posts", http.StatusSeeOther)
			return
		}
		renderPage(w, http.StatusOK, templates.LoginPage(s.layoutProps(r, "Log in", ""), "", ""))

	case http.MethodPost:
		username := strings.TrimSpace(r.FormValue("username"))
		password := r.FormValue("password")
		layout := s.layoutProps(r, "Log in", "")

		if username == "" || password == "" {
			renderPage(w, http.StatusBadRequest, templates.LoginPage(layout, username, "Username and password are required"))
			return
		}

		user, err := s.auth.VerifyCredentials(r.Context(), username, password)
		if err != nil {
			s.internalError(w, r, err, "verifying credentials")
			return
		}
		if user == nil {
			logger.Infof("failed login for %q from %s", username, r.RemoteAddr)
			renderPage(w, http.StatusUnauthorized, templates.LoginPage(layout, username, "Invalid username or password"))
			return
		}

		session, err := s.auth.CreateSession(r.Context(), user.ID)
		if err != nil {
			s.internalError(w, r, err, "creating session")
			return
		}
		s.setSessionCookie(w, session)
		logger.Infof("admin %q signed in", user.Username)
		http.Redirect(w, r, "/admin/posts", http.StatusSeeOther)

	default:
		http.Error(w, "Method not allowed", http.StatusMethodNotAllowed)
	}
}

func (s *Server) AdminLogout(w http.ResponseWriter, r *http.Request) {
	if cookie, err := r.Cookie(constants.SESSION_COOKIE_NAME); err == nil && cookie.Value != "" {
		if err := s.auth.DeleteSession(r.Context(), cookie.Value); err != nil {
			logger.Errorf("deleting session: %v", err)
		}
	}
	s.clearSessionCookie(w)
	http.Redirect(w, r, "/admin/login", http.StatusSeeOther)
}

func (s *Server) AdminPostList(w http.ResponseWriter, r *http.Request) {
	posts, err := s.blog.GetAllPosts(r.Context())
	if err != nil {
		s.internalError(w, r, err, "listing posts")
		return
	}
	renderPage(w, http.StatusOK, templates.AdminPostListPage(s.layoutProps(r, "Posts", ""), posts))
}

func (s *Server) AdminCreatePost(w http.ResponseWriter, r *http.Request) {
	switch r.Method {
	case http.MethodGet:
		renderPage(w, http.StatusOK, templates.PostFormPage(s.layoutProps(r, "New post", ""), templates.PostForm{}, ""))

	case http.MethodPost:
		form := postFormFromRequest(r)
		if msg := validatePostForm(form); msg != "" {
			renderPage(w, http.StatusBadRequest, templates.PostFormPage(s.layoutProps(r, "New post", ""), form, msg))
			return
		}

		input := blog.CreatePostInput{
			Slug:        form.Slug,
			Title:       form.Title,
			Description: form.Description,
			Content:     form.Content,
			Published:   form.Published,
			Tags:        blog.ParseTagList(form.Tags),
		}
		if form.CoverImage != "" {
			input.CoverImage = &form.CoverImage
		}

		post, err := s.blog.CreatePost(r.Context(), input)
		if err != nil {
			s.postWriteError(w, r, form, "New post", err)
			return
		}
		http.Redirect(w, r, fmt.Sprintf("/admin/posts/%d/edit", post.ID), http.StatusSeeOther)

	default:
		http.Error(w, "Method not allowed", http.StatusMethodNotAllowed)
	}
}

func (s *Server) AdminEditPost(w http.ResponseWriter, r *http.Request) {
	post, ok := s.postFromURL(w, r)
	if !ok {
		return
	}

	switch r.Method {
	case http.MethodGet:
		renderPage(w, http.StatusOK, templates.PostFormPage(s.layoutProps(r, "Edit post", ""), templates.PostFormFromPost(*post), ""))

	case http.MethodPost:
		form := postFormFromRequest(r)
		form.ID = post.ID
		if msg := validatePostForm(form); msg != "" {
			renderPage(w, http.StatusBadRequest, templates.PostFormPage(s.layoutProps(r, "Edit post", ""), form, msg))
			return
		}

		tags := blog.ParseTagList(form.Tags)
		if tags == nil {
			tags = []string{}
		}
		_, err := s.blog.UpdatePost(r.Context(), blog.UpdatePostInput{
			ID:          post.ID,
			Slug:        &form.Slug,
			Title:       &form.Title,
			Description: &form.Description,
			Content:     &form.Content,
			CoverImage:  &form.CoverImage,
			Published:   &form.Published,
			Tags:        tags,
		})
		if err != nil {
			s.postWriteError(w, r, form, "Edit post", err)
			return
		}
		http.Redirect(w, r, "/admin/posts", http.StatusSeeOther)

	default:
		http.Error(w, "Method not allowed", http.StatusMethodNotAllowed)
	}
}

func (s *Server) AdminDeletePost(w http.ResponseWriter, r *http.Request) {
	post, ok := s.postFromURL(w, r)
	if !ok {
		return
	}
	if err := s.blog.DeletePost(r.Context(), post.ID); err != nil {
		s.internalError(w, r, err, "deleting post")
		return
	}
	http.Redirect(w, r, "/admin/posts", http.StatusSeeOther)
}

func (s *Server) postFromURL(w http.ResponseWriter, r *http.Request) (*database.BlogPost, bool) {
	id, err := strconv.ParseUint(chi.URLParam(r, "postID"), 10, 64)
	if err != nil {
		s.renderError(w, r, http.StatusNotFound, "Post not found.")
		return nil, false
	}
	post, err := s.blog.GetPostByID(r.Context(), uint(id))
	if err != nil {
		s.internalError(w, r, err, "loading post")
		return nil, false
	}
	if post == nil {
		s.renderError(w, r, http.StatusNotFound, "Post not found.")
		return nil, false
	}
	return post, true
}

func (s *Server) postWriteError(w http.ResponseWriter, r *http.Request, form templates.PostForm, title string, err error) {
	layout := s.layoutProps(r, title, "")
	switch {
	case errors.Is(err, errors.AlreadyExists):
		renderPage(w, http.StatusConflict, templates.PostFormPage(layout, form, "A post with the same slug already exists"))
	case errors.Is(err, errors.NotValid):
		renderPage(w, http.StatusBadRequest, templates.PostFormPage(layout, form, err.Error()))
	case errors.Is(err, errors.NotFound):
		s.renderError(w, r, http.StatusNotFound, "Post not found.")
	default:
		s.internalError(w, r, err, "saving post")
	}
}

func postFormFromRequest(r *http.Request) templates.PostForm {
	return templates.PostForm{
		Slug:        strings.TrimSpace(r.FormValue("slug")),
		Title:       strings.TrimSpace(r.FormValue("title")),
		Description: strings.TrimSpace(r.FormValue("description")),
		Content:     r.FormValue("content"),
		CoverImage:  strings.TrimSpace(r.FormValue("coverImage")),
		Published:   r.FormValue("published") != "",
		Tags:        r.FormValue("tags"),
	}
}

// validatePostForm returns a message for the first problem found, or "".
func validatePostForm(form templates.PostForm) string {
	switch {
	case form.Title == "":
		return "Title is required"
	case form.Description == "":
		return "Description is required"
	case strings.TrimSpace(form.Content) == "":
		return "Content is required"
	case form.Slug == "":
		return fmt.Sprintf("Slug is required, for example %q", blog.SuggestSlug(form.Title))
	case !blog.ValidPostSlug(form.Slug):
		return "Slug may only contain lowercase letters, digits and hyphens"
	case utf8.RuneCountInString(form.Content) > constants.MAX_POST_LENGTH:
		return fmt.Sprintf("Post body too long. It must be less than %d characters, but it is %d characters long",
			constants.MAX_POST_LENGTH, utf8.RuneCountInString(form.Content))
	}
	return ""
}
