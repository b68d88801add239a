package blog

import (
	"bytes"
	"context"
	"encoding/json"
	"mime/multipart"
	"net/http"
	"net/http/httptest"
	"net/textproto"
	"sync"
	"testing"

	"github.com/go-chi/chi/v5"
	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/blogora/blog-api/internal/auth"
	"github.com/blogora/blog-api/internal/httputil"
	"github.com/blogora/blog-api/internal/logging"
	"github.com/blogora/blog-api/internal/user"
)

type fakeStore struct {
	mu      sync.Mutex
	blogs   map[uuid.UUID]*Blog
	deleted []uuid.UUID
}

func newFakeStore(blogs ...*Blog) *fakeStore {
	f := &fakeStore{blogs: make(map[uuid.UUID]*Blog)}
	for _, b := range blogs {
		f.blogs[b.ID] = b
	}
	return f
}

func (f *fakeStore) Create(ctx context.Context, b *Blog) (*Blog, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	b.ID = uuid.New()
	f.blogs[b.ID] = b
	return b, nil
}

func (f *fakeStore) GetByID(ctx context.Context, id uuid.UUID) (*Blog, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	b, ok := f.blogs[id]
	if !ok {
		return nil, ErrNotFound
	}
	return b, nil
}

func (f *fakeStore) GetAll(ctx context.Context) ([]*Blog, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	out := make([]*Blog, 0, len(f.blogs))
	for _, b := range f.blogs {
		out = append(out, b)
	}
	return out, nil
}

func (f *fakeStore) GetByCreator(ctx context.Context, userID uuid.UUID) ([]*Blog, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	var out []*Blog
	for _, b := range f.blogs {
		if b.CreatedBy == userID {
			out = append(out, b)
		}
	}
	return out, nil
}

func (f *fakeStore) GetByCategory(ctx context.Context, category string) ([]*Blog, error) {
	return nil, nil
}

func (f *fakeStore) Search(ctx context.Context, term string) ([]*Blog, error) {
	return nil, nil
}

func (f *fakeStore) Update(ctx context.Context, b *Blog) (*Blog, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.blogs[b.ID] = b
	return b, nil
}

func (f *fakeStore) Delete(ctx context.Context, id uuid.UUID) error {
	f.mu.Lock()
	defer f.mu.Unlock()
	delete(f.blogs, id)
	f.deleted = append(f.deleted, id)
	return nil
}

func (f *fakeStore) ToggleLike(ctx context.Context, blogID, userID uuid.UUID) (bool, error) {
	return true, nil
}

func (f *fakeStore) GetLikers(ctx context.Context, blogID uuid.UUID) ([]Liker, error) {
	return nil, nil
}

func (f *fakeStore) IncrementViews(ctx context.Context, blogID uuid.UUID) error {
	return nil
}

func (f *fakeStore) deleteCount() int {
	f.mu.Lock()
	defer f.mu.Unlock()
	return len(f.deleted)
}

type fakeImageStore struct {
	mu sync.Mutex
}

func (f *fakeImageStore) Put(ctx context.Context, key, contentType string, data []byte) error {
	f.mu.Lock()
	defer f.mu.Unlock()
	return nil
}

func (f *fakeImageStore) Delete(ctx context.Context, key string) error {
	f.mu.Lock()
	defer f.mu.Unlock()
	return nil
}

func (f *fakeImageStore) PresignGet(ctx context.Context, key string) (string, error) {
	return "https://images.test/" + key, nil
}

// deleteRequest builds an authenticated DELETE with the blog id bound the
// way chi would bind it.
func deleteRequest(t *testing.T, blogID uuid.UUID, caller *user.User) *http.Request {
	t.Helper()

	req := httptest.NewRequest(http.MethodDelete, "/api/v1/blog/user-blog/"+blogID.String(), nil)

	rctx := chi.NewRouteContext()
	rctx.URLParams.Add("id", blogID.String())
	ctx := context.WithValue(req.Context(), chi.RouteCtxKey, rctx)
	ctx = context.WithValue(ctx, auth.UserContextKey, caller)
	return req.WithContext(ctx)
}

func TestDeleteBlog_NotOwner(t *testing.T) {
	owner := &user.User{ID: uuid.New(), FullName: "Owner", Email: "owner@example.com", IsVerified: true}
	stranger := &user.User{ID: uuid.New(), FullName: "Stranger", Email: "stranger@example.com", IsVerified: true}

	store := newFakeStore(&Blog{ID: uuid.New(), Title: "mine", CreatedBy: owner.ID, ImageKey: "blogs/k1"})
	var blogID uuid.UUID
	for id := range store.blogs {
		blogID = id
	}

	h := NewHandler(store, nil, nil, &fakeImageStore{}, logging.NewLogger(true))

	rec := httptest.NewRecorder()
	h.DeleteBlog(rec, deleteRequest(t, blogID, stranger))

	require.Equal(t, http.StatusNotFound, rec.Code)

	var body httputil.ErrorResponse
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &body))
	assert.False(t, body.Success)
	assert.Equal(t, httputil.CodeNotFound, body.Code)
	assert.Equal(t, 0, store.deleteCount())
}

func TestDeleteBlog_Owner(t *testing.T) {
	owner := &user.User{ID: uuid.New(), FullName: "Owner", Email: "owner@example.com", IsVerified: true}

	store := newFakeStore(&Blog{ID: uuid.New(), Title: "mine", CreatedBy: owner.ID, ImageKey: "blogs/k1"})
	var blogID uuid.UUID
	for id := range store.blogs {
		blogID = id
	}

	h := NewHandler(store, nil, nil, &fakeImageStore{}, logging.NewLogger(true))

	rec := httptest.NewRecorder()
	h.DeleteBlog(rec, deleteRequest(t, blogID, owner))

	require.Equal(t, http.StatusOK, rec.Code)
	assert.Equal(t, 1, store.deleteCount())

	_, err := store.GetByID(context.Background(), blogID)
	assert.ErrorIs(t, err, ErrNotFound)
}

func TestDeleteBlog_Missing(t *testing.T) {
	caller := &user.User{ID: uuid.New(), FullName: "Caller", Email: "caller@example.com", IsVerified: true}

	h := NewHandler(newFakeStore(), nil, nil, &fakeImageStore{}, logging.NewLogger(true))

	rec := httptest.NewRecorder()
	h.DeleteBlog(rec, deleteRequest(t, uuid.New(), caller))

	require.Equal(t, http.StatusNotFound, rec.Code)

	var body httputil.ErrorResponse
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &body))
	assert.Equal(t, httputil.CodeNotFound, body.Code)
}

func multipartImageRequest(t *testing.T, fieldName, contentType string, size int) *http.Request {
	t.Helper()

	var buf bytes.Buffer
	mw := multipart.NewWriter(&buf)

	hdr := textproto.MIMEHeader{}
	hdr.Set("Content-Disposition", `form-data; name="`+fieldName+`"; filename="cover.png"`)
	hdr.Set("Content-Type", contentType)
	part, err := mw.CreatePart(hdr)
	require.NoError(t, err)
	_, err = part.Write(bytes.Repeat([]byte{0xAB}, size))
	require.NoError(t, err)
	require.NoError(t, mw.Close())

	req := httptest.NewRequest(http.MethodPost, "/api/v1/blog/create-blog", &buf)
	req.Header.Set("Content-Type", mw.FormDataContentType())
	return req
}

func TestReadImage_Accepted(t *testing.T) {
	for _, ct := range []string{"image/png", "image/jpeg", "image/jpg"} {
		req := multipartImageRequest(t, "imgUrl", ct, 1024)
		data, gotCT, err := readImage(req)
		require.NoError(t, err, ct)
		assert.Equal(t, ct, gotCT)
		assert.Len(t, data, 1024)
	}
}

func TestReadImage_MissingField(t *testing.T) {
	req := multipartImageRequest(t, "wrongField", "image/png", 64)
	_, _, err := readImage(req)
	assert.ErrorIs(t, err, errNoImage)
}

func TestReadImage_BadType(t *testing.T) {
	req := multipartImageRequest(t, "imgUrl", "image/gif", 64)
	_, _, err := readImage(req)
	assert.ErrorIs(t, err, errBadImageType)
}

func TestReadImage_TooLarge(t *testing.T) {
	req := multipartImageRequest(t, "imgUrl", "image/png", maxImageSize+1)
	_, _, err := readImage(req)
	assert.ErrorIs(t, err, errImageTooLarge)
}

func TestReadImage_AtLimit(t *testing.T) {
	req := multipartImageRequest(t, "imgUrl", "image/png", maxImageSize)
	data, _, err := readImage(req)
	require.NoError(t, err)
	assert.Len(t, data, maxImageSize)
}

func TestImageErrorMessage(t *testing.T) {
	assert.Equal(t, "Upload the blog image", imageErrorMessage(errNoImage))
	assert.Equal(t, "File size exceeds limit (500KB)", imageErrorMessage(errImageTooLarge))
	assert.Contains(t, imageErrorMessage(errBadImageType), "jpeg")
}
