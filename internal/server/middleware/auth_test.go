package middleware

import (
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/gin-gonic/gin"
	. "github.com/smartystreets/goconvey/convey"

	"contrapunto/internal/pkg/ctxutil"
	"contrapunto/internal/pkg/jwt"
)

func authTestRouter(jwtUtil *jwt.JWT) *gin.Engine {
	gin.SetMode(gin.TestMode)
	r := gin.New()
	r.GET("/protected", Auth(jwtUtil), func(c *gin.Context) {
		userID, _ := ctxutil.GetUserID(c.Request.Context())
		c.JSON(http.StatusOK, gin.H{"user_id": userID})
	})
	return r
}

func TestAuth(t *testing.T) {
	Convey("auth middleware", t, func() {
		jwtUtil := jwt.NewJWT("test-secret")
		router := authTestRouter(jwtUtil)

		Convey("a valid bearer token passes and injects the user id", func() {
			token, err := jwtUtil.SignToken("user-1", "ana", "editor", time.Hour)
			So(err, ShouldBeNil)

			req := httptest.NewRequest(http.MethodGet, "/protected", nil)
			req.Header.Set("Authorization", "Bearer "+token)
			w := httptest.NewRecorder()
			router.ServeHTTP(w, req)

			So(w.Code, ShouldEqual, http.StatusOK)
			So(w.Body.String(), ShouldContainSubstring, `"user_id":"user-1"`)
		})

		Convey("a missing header is unauthorized", func() {
			req := httptest.NewRequest(http.MethodGet, "/protected", nil)
			w := httptest.NewRecorder()
			router.ServeHTTP(w, req)

			So(w.Code, ShouldEqual, http.StatusUnauthorized)
			So(w.Body.String(), ShouldContainSubstring, "40101")
		})

		Convey("a malformed header is unauthorized", func() {
			req := httptest.NewRequest(http.MethodGet, "/protected", nil)
			req.Header.Set("Authorization", "Token abc")
			w := httptest.NewRecorder()
			router.ServeHTTP(w, req)

			So(w.Code, ShouldEqual, http.StatusUnauthorized)
		})

		Convey("an expired token is rejected with the token code", func() {
			token, err := jwtUtil.SignToken("user-1", "ana", "editor", -time.Minute)
			So(err, ShouldBeNil)

			req := httptest.NewRequest(http.MethodGet, "/protected", nil)
			req.Header.Set("Authorization", "Bearer "+token)
			w := httptest.NewRecorder()
			router.ServeHTTP(w, req)

			So(w.Code, ShouldEqual, http.StatusUnauthorized)
			So(w.Body.String(), ShouldContainSubstring, "40102")
		})
	})
}
