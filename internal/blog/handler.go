package blog

import (
	"context"
	"errors"
	"fmt"
	"io"
	"net/http"

	"github.com/go-chi/chi/v5"
	"github.com/google/uuid"

	"github.com/blogora/blog-api/internal/auth"
	"github.com/blogora/blog-api/internal/httputil"
	"github.com/blogora/blog-api/internal/logging"
	"github.com/blogora/blog-api/internal/storage"
)

// image uploads are capped the same way the front end crops them
const maxImageSize = 500 * 1024 // 500KB

var allowedImageTypes = map[string]bool{
	"image/jpeg": true,
	"image/jpg":  true,
	"image/png":  true,
}

var (
	errNoImage       = errors.New("upload the blog image")
	errBadImageType  = errors.New("invalid image type, allowed types: jpeg, png, jpg")
	errImageTooLarge = errors.New("file size exceeds limit (500KB)")
)

// ImageStore abstracts the object store holding blog images
type ImageStore interface {
	Put(ctx context.Context, key, contentType string, data []byte) error
	Delete(ctx context.Context, key string) error
	PresignGet(ctx context.Context, key string) (string, error)
}

// Store is the blog persistence the handlers depend on
type Store interface {
	Create(ctx context.Context, b *Blog) (*Blog, error)
	GetByID(ctx context.Context, id uuid.UUID) (*Blog, error)
	GetAll(ctx context.Context) ([]*Blog, error)
	GetByCreator(ctx context.Context, userID uuid.UUID) ([]*Blog, error)
	GetByCategory(ctx context.Context, category string) ([]*Blog, error)
	Search(ctx context.Context, term string) ([]*Blog, error)
	Update(ctx context.Context, b *Blog) (*Blog, error)
	Delete(ctx context.Context, id uuid.UUID) error
	ToggleLike(ctx context.Context, blogID, userID uuid.UUID) (bool, error)
	GetLikers(ctx context.Context, blogID uuid.UUID) ([]Liker, error)
	IncrementViews(ctx context.Context, blogID uuid.UUID) error
}

// SavedBlogStore is the slice of the user repository the blog surface needs
type SavedBlogStore interface {
	ToggleSavedBlog(ctx context.Context, userID, blogID uuid.UUID) (bool, error)
	GetSavedBlogIDs(ctx context.Context, userID uuid.UUID) ([]uuid.UUID, error)
}

// Handler contains HTTP handlers for the blog endpoints
type Handler struct {
	store  Store
	saved  SavedBlogStore
	views  *ViewTracker
	images ImageStore
	logger *logging.Logger
}

func NewHandler(store Store, saved SavedBlogStore, views *ViewTracker, images ImageStore, logger *logging.Logger) *Handler {
	return &Handler{
		store:  store,
		saved:  saved,
		views:  views,
		images: images,
		logger: logger,
	}
}

// BlogsResponse wraps a list of blogs
type BlogsResponse struct {
	Success bool    `json:"success"`
	Blogs   []*Blog `json:"blogs"`
}

// BlogResponse wraps a single blog with a message
type BlogResponse struct {
	Success bool   `json:"success"`
	Message string `json:"message"`
	Blog    *Blog  `json:"blog"`
}

// CreateBlog handles blog creation with a multipart image upload
// @Summary      Create a blog post
// @Tags         blog
// @Accept       multipart/form-data
// @Produce      json
// @Security     BearerAuth
// @Param        title formData string true "Title"
// @Param        description formData string true "Description"
// @Param        categoryTitle formData string true "Category"
// @Param        imgUrl formData file true "Cover image (jpeg/png, max 500KB)"
// @Success      201 {object} BlogResponse
// @Failure      400 {object} httputil.ErrorResponse "Missing fields or bad image"
// @Router       /api/v1/blog/create-blog [post]
func (h *Handler) CreateBlog(w http.ResponseWriter, r *http.Request) {
	logger := logging.GetLoggerFromContext(r.Context())

	currentUser, ok := auth.GetUserFromContext(r.Context())
	if !ok {
		httputil.RespondErrorWithCode(w, "missing authentication", httputil.CodeMissingAuth, http.StatusUnauthorized)
		return
	}

	title := r.FormValue("title")
	description := r.FormValue("description")
	categoryTitle := r.FormValue("categoryTitle")

	if title == "" || description == "" || categoryTitle == "" {
		httputil.RespondErrorWithCode(w, "All fields are required", httputil.CodeValidationError, http.StatusBadRequest)
		return
	}

	data, contentType, err := readImage(r)
	if err != nil {
		logger.Warn("blog creation failed: bad image", "error", err.Error())
		httputil.RespondErrorWithCode(w, imageErrorMessage(err), httputil.CodeValidationError, http.StatusBadRequest)
		return
	}

	key := storage.NewKey()
	if err := h.images.Put(r.Context(), key, contentType, data); err != nil {
		logger.Error("blog creation failed: image upload", "error", err.Error())
		httputil.RespondErrorWithCode(w, "failed to store blog image", httputil.CodeInternalError, http.StatusInternalServerError)
		return
	}

	newBlog, err := h.store.Create(r.Context(), &Blog{
		Title:         title,
		Description:   description,
		CategoryTitle: categoryTitle,
		ImageKey:      key,
		CreatorName:   currentUser.FullName,
		CreatorEmail:  currentUser.Email,
		CreatedBy:     currentUser.ID,
	})
	if err != nil {
		logger.Error("blog creation failed: internal error", "error", err.Error())
		httputil.RespondErrorWithCode(w, "failed to create blog", httputil.CodeInternalError, http.StatusInternalServerError)
		return
	}

	h.attachImageURL(r.Context(), newBlog)

	logger.Info("blog created", "blog_id", newBlog.ID, "user_id", currentUser.ID)

	httputil.RespondJSON(w, BlogResponse{
		Success: true,
		Message: "Blog created successfully",
		Blog:    newBlog,
	}, http.StatusCreated)
}

// GetAllBlogs lists every blog
// @Summary      List all blogs
// @Tags         blog
// @Produce      json
// @Success      200 {object} BlogsResponse
// @Router       /api/v1/blog/blogs [get]
func (h *Handler) GetAllBlogs(w http.ResponseWriter, r *http.Request) {
	logger := logging.GetLoggerFromContext(r.Context())

	blogs, err := h.store.GetAll(r.Context())
	if err != nil {
		logger.Error("failed to list blogs", "error", err.Error())
		httputil.RespondErrorWithCode(w, "failed to list blogs", httputil.CodeInternalError, http.StatusInternalServerError)
		return
	}

	h.attachImageURLs(r.Context(), blogs)

	httputil.RespondJSON(w, BlogsResponse{Success: true, Blogs: blogs}, http.StatusOK)
}

// GetUserBlogs lists the caller's blogs
// @Summary      List own blogs
// @Tags         blog
// @Produce      json
// @Security     BearerAuth
// @Success      200 {object} BlogsResponse
// @Router       /api/v1/blog/user-blog [get]
func (h *Handler) GetUserBlogs(w http.ResponseWriter, r *http.Request) {
	logger := logging.GetLoggerFromContext(r.Context())

	currentUser, ok := auth.GetUserFromContext(r.Context())
	if !ok {
		httputil.RespondErrorWithCode(w, "missing authentication", httputil.CodeMissingAuth, http.StatusUnauthorized)
		return
	}

	blogs, err := h.store.GetByCreator(r.Context(), currentUser.ID)
	if err != nil {
		logger.Error("failed to list user blogs", "error", err.Error())
		httputil.RespondErrorWithCode(w, "failed to list blogs", httputil.CodeInternalError, http.StatusInternalServerError)
		return
	}

	h.attachImageURLs(r.Context(), blogs)

	httputil.RespondJSON(w, BlogsResponse{Success: true, Blogs: blogs}, http.StatusOK)
}

// UpdateBlog replaces a blog's fields and image
// @Summary      Update a blog post
// @Tags         blog
// @Accept       multipart/form-data
// @Produce      json
// @Security     BearerAuth
// @Param        id path string true "Blog id"
// @Success      200 {object} BlogResponse
// @Failure      403 {object} httputil.ErrorResponse "Not the creator"
// @Router       /api/v1/blog/user-blog/{id} [put]
func (h *Handler) UpdateBlog(w http.ResponseWriter, r *http.Request) {
	logger := logging.GetLoggerFromContext(r.Context())

	currentUser, ok := auth.GetUserFromContext(r.Context())
	if !ok {
		httputil.RespondErrorWithCode(w, "missing authentication", httputil.CodeMissingAuth, http.StatusUnauthorized)
		return
	}

	blogID, err := uuid.Parse(chi.URLParam(r, "id"))
	if err != nil {
		httputil.RespondErrorWithCode(w, "Invalid blog ID", httputil.CodeValidationError, http.StatusBadRequest)
		return
	}

	title := r.FormValue("title")
	description := r.FormValue("description")
	categoryTitle := r.FormValue("categoryTitle")

	if title == "" || description == "" || categoryTitle == "" {
		httputil.RespondErrorWithCode(w, "All fields are required", httputil.CodeValidationError, http.StatusBadRequest)
		return
	}

	data, contentType, err := readImage(r)
	if err != nil {
		logger.Warn("blog update failed: bad image", "error", err.Error())
		httputil.RespondErrorWithCode(w, imageErrorMessage(err), httputil.CodeValidationError, http.StatusBadRequest)
		return
	}

	existing, err := h.store.GetByID(r.Context(), blogID)
	if err != nil {
		if errors.Is(err, ErrNotFound) {
			httputil.RespondErrorWithCode(w, "Blog not found", httputil.CodeNotFound, http.StatusNotFound)
			return
		}
		logger.Error("blog update failed: internal error", "error", err.Error())
		httputil.RespondErrorWithCode(w, "failed to update blog", httputil.CodeInternalError, http.StatusInternalServerError)
		return
	}

	if existing.CreatedBy != currentUser.ID {
		httputil.RespondErrorWithCode(w, "User is not authorized to update this blog", httputil.CodeForbidden, http.StatusForbidden)
		return
	}

	key := storage.NewKey()
	if err := h.images.Put(r.Context(), key, contentType, data); err != nil {
		logger.Error("blog update failed: image upload", "error", err.Error())
		httputil.RespondErrorWithCode(w, "failed to store blog image", httputil.CodeInternalError, http.StatusInternalServerError)
		return
	}

	oldKey := existing.ImageKey

	updated, err := h.store.Update(r.Context(), &Blog{
		ID:            blogID,
		Title:         title,
		Description:   description,
		CategoryTitle: categoryTitle,
		ImageKey:      key,
	})
	if err != nil {
		logger.Error("blog update failed: internal error", "error", err.Error())
		httputil.RespondErrorWithCode(w, "failed to update blog", httputil.CodeInternalError, http.StatusInternalServerError)
		return
	}

	// The replaced image is garbage now; removal is best effort
	go func() {
		if err := h.images.Delete(context.Background(), oldKey); err != nil {
			h.logger.Warn("failed to delete replaced blog image", "key", oldKey, "error", err)
		}
	}()

	h.attachImageURL(r.Context(), updated)

	logger.Info("blog updated", "blog_id", blogID)

	httputil.RespondJSON(w, BlogResponse{
		Success: true,
		Message: "Blog updated successfully",
		Blog:    updated,
	}, http.StatusOK)
}

// DeleteBlog removes one of the caller's blogs
// @Summary      Delete a blog post
// @Tags         blog
// @Produce      json
// @Security     BearerAuth
// @Param        id path string true "Blog id"
// @Success      200 {object} map[string]any
// @Router       /api/v1/blog/user-blog/{id} [delete]
func (h *Handler) DeleteBlog(w http.ResponseWriter, r *http.Request) {
	logger := logging.GetLoggerFromContext(r.Context())

	currentUser, ok := auth.GetUserFromContext(r.Context())
	if !ok {
		httputil.RespondErrorWithCode(w, "missing authentication", httputil.CodeMissingAuth, http.StatusUnauthorized)
		return
	}

	blogID, err := uuid.Parse(chi.URLParam(r, "id"))
	if err != nil {
		httputil.RespondErrorWithCode(w, "Invalid blog ID", httputil.CodeValidationError, http.StatusBadRequest)
		return
	}

	existing, err := h.store.GetByID(r.Context(), blogID)
	if err != nil {
		if errors.Is(err, ErrNotFound) {
			httputil.RespondErrorWithCode(w, "Blog not found", httputil.CodeNotFound, http.StatusNotFound)
			return
		}
		logger.Error("blog deletion failed: internal error", "error", err.Error())
		httputil.RespondErrorWithCode(w, "failed to delete blog", httputil.CodeInternalError, http.StatusInternalServerError)
		return
	}

	// Non-owners get the same 404 a missing blog would, hiding its existence
	if existing.CreatedBy != currentUser.ID {
		httputil.RespondErrorWithCode(w, "User is not authorized to delete the blog", httputil.CodeNotFound, http.StatusNotFound)
		return
	}

	if err := h.store.Delete(r.Context(), blogID); err != nil {
		logger.Error("blog deletion failed: internal error", "error", err.Error())
		httputil.RespondErrorWithCode(w, "failed to delete blog", httputil.CodeInternalError, http.StatusInternalServerError)
		return
	}

	go func() {
		if err := h.images.Delete(context.Background(), existing.ImageKey); err != nil {
			h.logger.Warn("failed to delete blog image", "key", existing.ImageKey, "error", err)
		}
	}()

	logger.Info("blog deleted", "blog_id", blogID)

	httputil.RespondJSON(w, map[string]any{
		"success": true,
		"message": "Blog deleted successfully",
	}, http.StatusOK)
}

// GetByCategory lists blogs in a category
// @Summary      List blogs by category
// @Tags         blog
// @Produce      json
// @Param        category path string true "Category name, case-insensitive"
// @Success      200 {object} BlogsResponse
// @Failure      404 {object} httputil.ErrorResponse "No blog found"
// @Router       /api/v1/blog/blogs/{category} [get]
func (h *Handler) GetByCategory(w http.ResponseWriter, r *http.Request) {
	logger := logging.GetLoggerFromContext(r.Context())

	category := chi.URLParam(r, "category")

	blogs, err := h.store.GetByCategory(r.Context(), category)
	if err != nil {
		logger.Error("failed to list blogs by category", "error", err.Error())
		httputil.RespondErrorWithCode(w, "failed to list blogs", httputil.CodeInternalError, http.StatusInternalServerError)
		return
	}

	if len(blogs) == 0 {
		httputil.RespondErrorWithCode(w, "No blog found", httputil.CodeNotFound, http.StatusNotFound)
		return
	}

	h.attachImageURLs(r.Context(), blogs)

	httputil.RespondJSON(w, BlogsResponse{Success: true, Blogs: blogs}, http.StatusOK)
}

// ToggleLike likes or unlikes a blog
// @Summary      Toggle a like
// @Tags         blog
// @Produce      json
// @Security     BearerAuth
// @Param        id path string true "Blog id"
// @Success      201 {object} map[string]any
// @Router       /api/v1/blog/user-blog/like/{id} [post]
func (h *Handler) ToggleLike(w http.ResponseWriter, r *http.Request) {
	logger := logging.GetLoggerFromContext(r.Context())

	currentUser, ok := auth.GetUserFromContext(r.Context())
	if !ok {
		httputil.RespondErrorWithCode(w, "missing authentication", httputil.CodeMissingAuth, http.StatusUnauthorized)
		return
	}

	blogID, err := uuid.Parse(chi.URLParam(r, "id"))
	if err != nil {
		httputil.RespondErrorWithCode(w, "Invalid blog ID", httputil.CodeValidationError, http.StatusBadRequest)
		return
	}

	if _, err := h.store.GetByID(r.Context(), blogID); err != nil {
		if errors.Is(err, ErrNotFound) {
			httputil.RespondErrorWithCode(w, "Blog not found", httputil.CodeNotFound, http.StatusNotFound)
			return
		}
		logger.Error("like toggle failed: internal error", "error", err.Error())
		httputil.RespondErrorWithCode(w, "failed to like blog", httputil.CodeInternalError, http.StatusInternalServerError)
		return
	}

	liked, err := h.store.ToggleLike(r.Context(), blogID, currentUser.ID)
	if err != nil {
		logger.Error("like toggle failed: internal error", "error", err.Error())
		httputil.RespondErrorWithCode(w, "failed to like blog", httputil.CodeInternalError, http.StatusInternalServerError)
		return
	}

	message := "Blog has been liked"
	if !liked {
		message = "Blog has been disliked"
	}

	httputil.RespondJSON(w, map[string]any{
		"success": true,
		"message": message,
		"liked":   liked,
	}, http.StatusCreated)
}

// GetLikers lists the users who liked a blog
// @Summary      List likes
// @Tags         blog
// @Produce      json
// @Security     BearerAuth
// @Param        postId path string true "Blog id"
// @Success      200 {object} map[string]any
// @Router       /api/v1/blog/blog-likes/{postId} [get]
func (h *Handler) GetLikers(w http.ResponseWriter, r *http.Request) {
	logger := logging.GetLoggerFromContext(r.Context())

	blogID, err := uuid.Parse(chi.URLParam(r, "postId"))
	if err != nil {
		httputil.RespondErrorWithCode(w, "Invalid blog ID", httputil.CodeValidationError, http.StatusBadRequest)
		return
	}

	if _, err := h.store.GetByID(r.Context(), blogID); err != nil {
		if errors.Is(err, ErrNotFound) {
			httputil.RespondErrorWithCode(w, "Blog post not found", httputil.CodeNotFound, http.StatusNotFound)
			return
		}
		logger.Error("failed to get blog", "error", err.Error())
		httputil.RespondErrorWithCode(w, "failed to list likes", httputil.CodeInternalError, http.StatusInternalServerError)
		return
	}

	likers, err := h.store.GetLikers(r.Context(), blogID)
	if err != nil {
		logger.Error("failed to list likers", "error", err.Error())
		httputil.RespondErrorWithCode(w, "failed to list likes", httputil.CodeInternalError, http.StatusInternalServerError)
		return
	}

	httputil.RespondJSON(w, map[string]any{
		"success": true,
		"likes":   likers,
	}, http.StatusOK)
}

// RecordView counts a view for a verified reader
// @Summary      Record a blog view
// @Tags         blog
// @Produce      json
// @Security     BearerAuth
// @Param        blogId path string true "Blog id"
// @Success      200 {object} map[string]any
// @Failure      403 {object} httputil.ErrorResponse "Reader not verified"
// @Router       /api/v1/blog/blog/views/{blogId} [put]
func (h *Handler) RecordView(w http.ResponseWriter, r *http.Request) {
	logger := logging.GetLoggerFromContext(r.Context())

	currentUser, ok := auth.GetUserFromContext(r.Context())
	if !ok {
		httputil.RespondErrorWithCode(w, "missing authentication", httputil.CodeMissingAuth, http.StatusUnauthorized)
		return
	}

	blogID, err := uuid.Parse(chi.URLParam(r, "blogId"))
	if err != nil {
		httputil.RespondErrorWithCode(w, "Invalid blog ID", httputil.CodeValidationError, http.StatusBadRequest)
		return
	}

	if _, err := h.store.GetByID(r.Context(), blogID); err != nil {
		if errors.Is(err, ErrNotFound) {
			httputil.RespondErrorWithCode(w, "Blog not found", httputil.CodeNotFound, http.StatusNotFound)
			return
		}
		logger.Error("view recording failed: internal error", "error", err.Error())
		httputil.RespondErrorWithCode(w, "failed to record view", httputil.CodeInternalError, http.StatusInternalServerError)
		return
	}

	if !currentUser.IsVerified {
		httputil.RespondErrorWithCode(w, "User is not verified", httputil.CodeNotVerified, http.StatusForbidden)
		return
	}

	first, err := h.views.MarkViewed(r.Context(), blogID, currentUser.ID)
	if err != nil {
		logger.Error("view recording failed: redis error", "error", err.Error())
		httputil.RespondErrorWithCode(w, "failed to record view", httputil.CodeInternalError, http.StatusInternalServerError)
		return
	}

	if first {
		if err := h.store.IncrementViews(r.Context(), blogID); err != nil {
			logger.Error("view recording failed: internal error", "error", err.Error())
			httputil.RespondErrorWithCode(w, "failed to record view", httputil.CodeInternalError, http.StatusInternalServerError)
			return
		}
	}

	httputil.RespondJSON(w, map[string]any{
		"success": true,
		"counted": first,
	}, http.StatusOK)
}

// ToggleSave saves or unsaves a blog on the caller's reading list
// @Summary      Toggle a saved blog
// @Tags         blog
// @Produce      json
// @Security     BearerAuth
// @Param        id path string true "Blog id"
// @Success      201 {object} map[string]any
// @Router       /api/v1/blog/blog-save/{id} [post]
func (h *Handler) ToggleSave(w http.ResponseWriter, r *http.Request) {
	logger := logging.GetLoggerFromContext(r.Context())

	currentUser, ok := auth.GetUserFromContext(r.Context())
	if !ok {
		httputil.RespondErrorWithCode(w, "missing authentication", httputil.CodeMissingAuth, http.StatusUnauthorized)
		return
	}

	blogID, err := uuid.Parse(chi.URLParam(r, "id"))
	if err != nil {
		httputil.RespondErrorWithCode(w, "Invalid blog ID", httputil.CodeValidationError, http.StatusBadRequest)
		return
	}

	if _, err := h.store.GetByID(r.Context(), blogID); err != nil {
		if errors.Is(err, ErrNotFound) {
			httputil.RespondErrorWithCode(w, "Blog not found", httputil.CodeNotFound, http.StatusNotFound)
			return
		}
		logger.Error("save toggle failed: internal error", "error", err.Error())
		httputil.RespondErrorWithCode(w, "failed to save blog", httputil.CodeInternalError, http.StatusInternalServerError)
		return
	}

	saved, err := h.saved.ToggleSavedBlog(r.Context(), currentUser.ID, blogID)
	if err != nil {
		logger.Error("save toggle failed: internal error", "error", err.Error())
		httputil.RespondErrorWithCode(w, "failed to save blog", httputil.CodeInternalError, http.StatusInternalServerError)
		return
	}

	message := "Blog saved successfully"
	if !saved {
		message = "Blog unsaved"
	}

	httputil.RespondJSON(w, map[string]any{
		"success": true,
		"message": message,
		"saved":   saved,
	}, http.StatusCreated)
}

// GetSavedBlogs lists the ids on the caller's reading list
// @Summary      List saved blogs
// @Tags         blog
// @Produce      json
// @Security     BearerAuth
// @Success      200 {object} map[string]any
// @Router       /api/v1/blog/saved-blogs [get]
func (h *Handler) GetSavedBlogs(w http.ResponseWriter, r *http.Request) {
	logger := logging.GetLoggerFromContext(r.Context())

	currentUser, ok := auth.GetUserFromContext(r.Context())
	if !ok {
		httputil.RespondErrorWithCode(w, "missing authentication", httputil.CodeMissingAuth, http.StatusUnauthorized)
		return
	}

	ids, err := h.saved.GetSavedBlogIDs(r.Context(), currentUser.ID)
	if err != nil {
		logger.Error("failed to list saved blogs", "error", err.Error())
		httputil.RespondErrorWithCode(w, "failed to list saved blogs", httputil.CodeInternalError, http.StatusInternalServerError)
		return
	}

	httputil.RespondJSON(w, map[string]any{
		"success":   true,
		"saveBlogs": ids,
	}, http.StatusOK)
}

// SearchBlogs matches a term against titles, descriptions, and categories
// @Summary      Search blogs
// @Tags         blog
// @Produce      json
// @Param        search query string true "Search term"
// @Success      200 {object} BlogsResponse
// @Failure      400 {object} httputil.ErrorResponse "No results"
// @Router       /api/v1/blog/search-blogs [get]
func (h *Handler) SearchBlogs(w http.ResponseWriter, r *http.Request) {
	logger := logging.GetLoggerFromContext(r.Context())

	term := r.URL.Query().Get("search")

	blogs, err := h.store.Search(r.Context(), term)
	if err != nil {
		logger.Error("blog search failed", "error", err.Error())
		httputil.RespondErrorWithCode(w, "failed to search blogs", httputil.CodeInternalError, http.StatusInternalServerError)
		return
	}

	if len(blogs) == 0 {
		httputil.RespondErrorWithCode(w, "Make sure all words are spelled correctly, try different keywords", httputil.CodeNotFound, http.StatusBadRequest)
		return
	}

	h.attachImageURLs(r.Context(), blogs)

	httputil.RespondJSON(w, BlogsResponse{Success: true, Blogs: blogs}, http.StatusOK)
}

func (h *Handler) attachImageURL(ctx context.Context, b *Blog) {
	url, err := h.images.PresignGet(ctx, b.ImageKey)
	if err != nil {
		h.logger.Warn("failed to presign blog image", "key", b.ImageKey, "error", err)
		return
	}
	b.ImageURL = url
}

func (h *Handler) attachImageURLs(ctx context.Context, blogs []*Blog) {
	for _, b := range blogs {
		h.attachImageURL(ctx, b)
	}
}

// readImage pulls the uploaded cover image out of the multipart form and
// enforces the type and size limits.
func readImage(r *http.Request) ([]byte, string, error) {
	file, header, err := r.FormFile("imgUrl")
	if err != nil {
		return nil, "", errNoImage
	}
	defer file.Close()

	if header.Size > maxImageSize {
		return nil, "", errImageTooLarge
	}

	contentType := header.Header.Get("Content-Type")
	if !allowedImageTypes[contentType] {
		return nil, "", errBadImageType
	}

	data, err := io.ReadAll(io.LimitReader(file, maxImageSize+1))
	if err != nil {
		return nil, "", fmt.Errorf("failed to read image: %w", err)
	}
	if len(data) > maxImageSize {
		return nil, "", errImageTooLarge
	}

	return data, contentType, nil
}

func imageErrorMessage(err error) string {
	switch {
	case errors.Is(err, errNoImage):
		return "Upload the blog image"
	case errors.Is(err, errBadImageType):
		return "Invalid image type. Allowed types: jpeg, png, jpg."
	case errors.Is(err, errImageTooLarge):
		return "File size exceeds limit (500KB)"
	default:
		return "invalid image"
	}
}
