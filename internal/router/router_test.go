package router

import (
	"testing"

	"github.com/labstack/echo/v4"
	"github.com/stretchr/testify/require"

	"famlink/internal/handler"
)

func TestRegisterRouteTable(t *testing.T) {
	e := echo.New()
	Register(e, Handlers{
		Auth:     &handler.AuthHandler{},
		Users:    &handler.UserHandler{},
		Families: &handler.FamilyHandler{},
		Messages: &handler.MessageHandler{},
		Posts:    &handler.PostHandler{},
		Search:   &handler.SearchHandler{},
	}, "test-secret", nil)

	routes := map[string]bool{}
	for _, r := range e.Routes() {
		routes[r.Method+" "+r.Path] = true
	}

	for _, want := range []string{
		"GET /healthz",
		"POST /api/auth/signup",
		"POST /api/auth/login",
		"POST /api/auth/refresh",
		"POST /api/auth/logout",
		"GET /api/auth/me",
		"POST /api/auth/select-family",
		"GET /api/families",
		"GET /api/family/check",
		"POST /api/family/join",
		"GET /api/family/members",
		"POST /api/family/summary",
		"POST /api/family/users/:id/summary",
		"GET /api/messages",
		"POST /api/messages",
		"GET /api/messages/unread-count",
		"GET /api/messages/:userId",
		"PUT /api/messages/:id/read",
		"GET /api/posts",
		"POST /api/posts/:id/like",
		"POST /api/posts/:id/dislike",
		"DELETE /api/posts/:id/reaction",
		"GET /api/search",
	} {
		require.True(t, routes[want], "route %s not registered", want)
	}
}
