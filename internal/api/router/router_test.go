package router

import (
	"net/http"
	"net/http/httptest"
	"net/url"
	"strconv"
	"strings"
	"testing"
	"time"

	"github.com/alicebob/miniredis/v2"
	"github.com/gin-gonic/gin"
	"github.com/glebarez/sqlite"
	"github.com/redis/go-redis/v9"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"
	"gorm.io/gorm"

	"github.com/plumekit/plume/internal/api/handler"
	"github.com/plumekit/plume/internal/auth"
	"github.com/plumekit/plume/internal/cache"
	"github.com/plumekit/plume/internal/model"
	"github.com/plumekit/plume/internal/repository"
	"github.com/plumekit/plume/internal/service"
	"github.com/plumekit/plume/pkg/render"
)

const indexTTL = 20 * time.Second

type testServer struct {
	engine *gin.Engine
	db     *gorm.DB
	redis  *miniredis.Miniredis
	tokens *auth.TokenManager
}

func newTestServer(t *testing.T) *testServer {
	t.Helper()
	gin.SetMode(gin.TestMode)

	gdb, err := gorm.Open(sqlite.Open(":memory:?_pragma=foreign_keys(1)"), &gorm.Config{})
	require.NoError(t, err)
	require.NoError(t, gdb.AutoMigrate(
		&model.User{}, &model.Group{}, &model.Post{}, &model.Comment{}, &model.Follow{},
	))

	mr := miniredis.RunT(t)
	rdb := redis.NewClient(&redis.Options{Addr: mr.Addr()})
	viewCache := cache.NewViewCache(rdb, indexTTL)

	tokens := auth.NewTokenManager("test-secret", time.Hour)
	renderer, err := render.New("../../../web/templates/*.html")
	require.NoError(t, err)

	users := repository.NewUserRepository(gdb)
	groups := repository.NewGroupRepository(gdb)
	posts := repository.NewPostRepository(gdb)
	comments := repository.NewCommentRepository(gdb)
	follows := repository.NewFollowRepository(gdb)

	h := handler.New(
		service.NewFeedService(posts, groups, users, comments, follows, 10),
		service.NewPostService(gdb, groups),
		service.NewCommentService(gdb),
		service.NewRelationshipService(users, follows),
		auth.NewService(users),
		tokens,
		viewCache,
		renderer,
		zap.NewNop(),
		t.TempDir(),
	)

	engine := New(Options{
		Handler:  h,
		Tokens:   tokens,
		Log:      zap.NewNop(),
		MediaDir: t.TempDir(),
	})
	return &testServer{engine: engine, db: gdb, redis: mr, tokens: tokens}
}

func (s *testServer) get(t *testing.T, path string, cookie string) *httptest.ResponseRecorder {
	t.Helper()
	req := httptest.NewRequest(http.MethodGet, path, nil)
	if cookie != "" {
		req.AddCookie(&http.Cookie{Name: auth.CookieName, Value: cookie})
	}
	w := httptest.NewRecorder()
	s.engine.ServeHTTP(w, req)
	return w
}

func (s *testServer) postForm(t *testing.T, path string, form url.Values, cookie string) *httptest.ResponseRecorder {
	t.Helper()
	req := httptest.NewRequest(http.MethodPost, path, strings.NewReader(form.Encode()))
	req.Header.Set("Content-Type", "application/x-www-form-urlencoded")
	if cookie != "" {
		req.AddCookie(&http.Cookie{Name: auth.CookieName, Value: cookie})
	}
	w := httptest.NewRecorder()
	s.engine.ServeHTTP(w, req)
	return w
}

func (s *testServer) user(t *testing.T, username string) *model.User {
	t.Helper()
	u := &model.User{Username: username}
	require.NoError(t, s.db.Create(u).Error)
	return u
}

func (s *testServer) post(t *testing.T, authorID uint, text string) *model.Post {
	t.Helper()
	p := &model.Post{Text: text, AuthorID: authorID}
	require.NoError(t, s.db.Create(p).Error)
	return p
}

func (s *testServer) session(t *testing.T, u *model.User) string {
	t.Helper()
	token, err := s.tokens.Issue(auth.Viewer{ID: u.ID, Username: u.Username})
	require.NoError(t, err)
	return token
}

func TestIndexCacheServesStaleUntilTTL(t *testing.T) {
	s := newTestServer(t)
	alice := s.user(t, "alice")
	s.post(t, alice.ID, "the first post")

	before := s.get(t, "/", "")
	require.Equal(t, http.StatusOK, before.Code)
	assert.Contains(t, before.Body.String(), "the first post")

	// A new post must NOT invalidate the cached page.
	s.post(t, alice.ID, "the second post")

	cached := s.get(t, "/", "")
	require.Equal(t, http.StatusOK, cached.Code)
	assert.Equal(t, before.Body.Bytes(), cached.Body.Bytes(),
		"within the ttl the cached payload is returned verbatim")
	assert.NotContains(t, cached.Body.String(), "the second post")

	s.redis.FastForward(indexTTL + time.Second)
	fresh := s.get(t, "/", "")
	require.Equal(t, http.StatusOK, fresh.Code)
	assert.Contains(t, fresh.Body.String(), "the second post")
}

func TestIndexPageParamIsLenient(t *testing.T) {
	s := newTestServer(t)
	alice := s.user(t, "alice")
	s.post(t, alice.ID, "only post")

	for _, q := range []string{"", "?page=abc", "?page=0", "?page=99"} {
		w := s.get(t, "/"+q, "")
		assert.Equal(t, http.StatusOK, w.Code, "query %q", q)
		assert.Contains(t, w.Body.String(), "only post", "query %q", q)
	}
}

func TestWrongUsernameRedirectsToCanonicalURL(t *testing.T) {
	s := newTestServer(t)
	alice := s.user(t, "alice")
	s.user(t, "bob")
	p := s.post(t, alice.ID, "hello")

	w := s.get(t, "/bob/"+itoa(p.ID)+"/", "")
	require.Equal(t, http.StatusFound, w.Code, "a wrong username is a redirect, not a 404")
	assert.Equal(t, "/alice/"+itoa(p.ID)+"/", w.Header().Get("Location"))
}

func TestUnknownResourcesReturn404(t *testing.T) {
	s := newTestServer(t)
	s.user(t, "alice")

	assert.Equal(t, http.StatusNotFound, s.get(t, "/ghost/", "").Code)
	assert.Equal(t, http.StatusNotFound, s.get(t, "/group/ghost/", "").Code)
	assert.Equal(t, http.StatusNotFound, s.get(t, "/alice/9999/", "").Code)
}

func TestProtectedRoutesRedirectAnonymousToLogin(t *testing.T) {
	s := newTestServer(t)

	w := s.get(t, "/new/", "")
	require.Equal(t, http.StatusFound, w.Code)
	assert.Equal(t, "/auth/login/?next="+url.QueryEscape("/new/"), w.Header().Get("Location"))

	w = s.get(t, "/follow/", "")
	require.Equal(t, http.StatusFound, w.Code)
	assert.Contains(t, w.Header().Get("Location"), "/auth/login/")
}

func TestFollowUnfollowOverHTTP(t *testing.T) {
	s := newTestServer(t)
	alice := s.user(t, "alice")
	bob := s.user(t, "bob")
	s.post(t, alice.ID, "from alice")
	session := s.session(t, bob)

	w := s.get(t, "/alice/follow/", session)
	require.Equal(t, http.StatusFound, w.Code)
	assert.Equal(t, "/alice/", w.Header().Get("Location"))

	feed := s.get(t, "/follow/", session)
	require.Equal(t, http.StatusOK, feed.Code)
	assert.Contains(t, feed.Body.String(), "from alice")

	w = s.get(t, "/alice/unfollow/", session)
	require.Equal(t, http.StatusFound, w.Code)

	feed = s.get(t, "/follow/", session)
	require.Equal(t, http.StatusOK, feed.Code)
	assert.NotContains(t, feed.Body.String(), "from alice")
}

func TestCreatePostOverHTTP(t *testing.T) {
	s := newTestServer(t)
	alice := s.user(t, "alice")
	session := s.session(t, alice)

	w := s.postForm(t, "/new/", url.Values{"text": {"posted via form"}}, session)
	require.Equal(t, http.StatusFound, w.Code)
	assert.Equal(t, "/", w.Header().Get("Location"))

	var cnt int64
	require.NoError(t, s.db.Model(&model.Post{}).Count(&cnt).Error)
	assert.EqualValues(t, 1, cnt)

	// Empty text re-renders the form and persists nothing.
	w = s.postForm(t, "/new/", url.Values{"text": {"  "}}, session)
	require.Equal(t, http.StatusOK, w.Code)
	assert.Contains(t, w.Body.String(), "Text must not be empty")
	require.NoError(t, s.db.Model(&model.Post{}).Count(&cnt).Error)
	assert.EqualValues(t, 1, cnt)
}

func TestEditByNonAuthorRedirectsToView(t *testing.T) {
	s := newTestServer(t)
	alice := s.user(t, "alice")
	bob := s.user(t, "bob")
	p := s.post(t, alice.ID, "original")
	session := s.session(t, bob)

	w := s.get(t, "/alice/"+itoa(p.ID)+"/edit/", session)
	require.Equal(t, http.StatusFound, w.Code)
	assert.Equal(t, "/alice/"+itoa(p.ID)+"/", w.Header().Get("Location"))
}

func itoa(id uint) string {
	return strconv.FormatUint(uint64(id), 10)
}
