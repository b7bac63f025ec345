package handler

import (
	"context"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/DATA-DOG/go-sqlmock"
	"github.com/gin-gonic/gin"
	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"social-blog/internal/db"
	"social-blog/internal/follow"
	"social-blog/internal/middleware"
	"social-blog/internal/post"
	"social-blog/internal/session"
	"social-blog/internal/user"
)

func init() {
	gin.SetMode(gin.TestMode)
}

func newTestRouter(t *testing.T, store session.Store) (*gin.Engine, sqlmock.Sqlmock) {
	t.Helper()

	sqlDB, mock, err := sqlmock.New()
	require.NoError(t, err)
	t.Cleanup(func() { _ = sqlDB.Close() })

	database := &db.DB{DB: sqlDB}
	pipeline := middleware.NewPipeline(store)

	h := NewHandler(
		pipeline,
		user.NewService(database),
		post.NewService(database),
		follow.NewService(database),
		"test-secret",
	)

	router := gin.New()
	router.LoadHTMLGlob("../../web/templates/*.html")

	web := router.Group("/")
	web.Use(pipeline.Attach(), pipeline.VerifyCSRF())
	h.RegisterRoutes(web)

	router.NoRoute(pipeline.Attach(), h.NotFound)

	return router, mock
}

func TestHomeGuestScreen(t *testing.T) {
	router, mock := newTestRouter(t, session.NewMemoryStore())

	w := httptest.NewRecorder()
	router.ServeHTTP(w, httptest.NewRequest(http.MethodGet, "/", nil))

	assert.Equal(t, http.StatusOK, w.Code)
	assert.Contains(t, w.Body.String(), "/register")
	assert.NoError(t, mock.ExpectationsWereMet())
}

func TestHomeDashboardShowsFeed(t *testing.T) {
	store := session.NewMemoryStore()
	visitorID := uuid.New()
	require.NoError(t, store.Save(context.Background(), &session.Session{
		SessionID: "sid-alice",
		User: &user.Summary{
			ID:        visitorID,
			Username:  "alice",
			AvatarURL: "https://gravatar.com/avatar/abc?s=128",
		},
		CSRFToken: "tok",
	}))

	router, mock := newTestRouter(t, store)

	mock.ExpectQuery("SELECT p.id, p.title, p.body").
		WithArgs(visitorID.String()).
		WillReturnRows(sqlmock.NewRows([]string{
			"id", "title", "body", "created_at", "author_id", "username", "email",
		}))

	req := httptest.NewRequest(http.MethodGet, "/", nil)
	req.AddCookie(&http.Cookie{Name: session.CookieName, Value: "sid-alice"})

	w := httptest.NewRecorder()
	router.ServeHTTP(w, req)

	assert.Equal(t, http.StatusOK, w.Code)
	assert.Contains(t, w.Body.String(), "alice")
	assert.NoError(t, mock.ExpectationsWereMet())
}

func TestCreatePostScreenRequiresLogin(t *testing.T) {
	store := session.NewMemoryStore()
	router, mock := newTestRouter(t, store)

	w := httptest.NewRecorder()
	router.ServeHTTP(w, httptest.NewRequest(http.MethodGet, "/create-post", nil))

	assert.Equal(t, http.StatusFound, w.Code)
	assert.Equal(t, "/", w.Header().Get("Location"))
	assert.NoError(t, mock.ExpectationsWereMet())

	// the redirect queued a flash explaining why
	cookies := w.Result().Cookies()
	require.NotEmpty(t, cookies)
	stored, err := store.Get(context.Background(), cookies[len(cookies)-1].Value)
	require.NoError(t, err)
	require.NotNil(t, stored)
	assert.Contains(t, stored.Flash.Errors, "You must be logged in to perform that action.")
}

func TestUnknownRouteRenders404(t *testing.T) {
	router, _ := newTestRouter(t, session.NewMemoryStore())

	w := httptest.NewRecorder()
	router.ServeHTTP(w, httptest.NewRequest(http.MethodGet, "/no-such-page", nil))

	assert.Equal(t, http.StatusNotFound, w.Code)
	assert.Contains(t, w.Body.String(), "cannot find that page")
}
