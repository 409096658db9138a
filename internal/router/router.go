// Package router wires handlers and middleware onto the Echo instance.
package router

import (
	"github.com/labstack/echo/v4"

	"famlink/internal/handler"
	"famlink/internal/middleware"
)

// Handlers bundles everything the route table needs.
type Handlers struct {
	Auth     *handler.AuthHandler
	Users    *handler.UserHandler
	Families *handler.FamilyHandler
	Messages *handler.MessageHandler
	Posts    *handler.PostHandler
	Search   *handler.SearchHandler
}

// Register mounts the full route table. Routes split into three rings:
// public (health, signup, login, refresh, logout), authenticated (any
// valid token) and family-scoped (token must carry an active family the
// user still belongs to). Messaging is deliberately in the middle ring;
// it works without any family.
func Register(e *echo.Echo, h Handlers, jwtSecret string, families middleware.MembershipChecker, extra ...echo.MiddlewareFunc) {
	e.GET("/healthz", handler.Health)

	api := e.Group("/api")
	for _, m := range extra {
		api.Use(m)
	}

	// Public ring.
	api.POST("/auth/signup", h.Auth.Signup)
	api.POST("/auth/login", h.Auth.Login)
	api.POST("/auth/refresh", h.Auth.Refresh)
	api.POST("/auth/logout", h.Auth.Logout)

	// Authenticated ring.
	auth := api.Group("", middleware.JWTAuth(jwtSecret))
	auth.GET("/auth/me", h.Auth.Me)
	auth.POST("/auth/select-family", h.Auth.SelectFamily)
	auth.POST("/auth/logout-all", h.Auth.LogoutAll)

	auth.GET("/users", h.Users.List)
	auth.GET("/users/:id", h.Users.Get)
	auth.PUT("/users/me", h.Users.UpdateMe)

	auth.GET("/families", h.Families.ListMine)
	auth.GET("/family/check", h.Families.Check)
	auth.POST("/family/join", h.Families.Join)

	// Static message routes before the :userId parameter route.
	auth.GET("/messages", h.Messages.Conversations)
	auth.GET("/messages/unread-count", h.Messages.UnreadCount)
	auth.POST("/messages", h.Messages.Send)
	auth.GET("/messages/:userId", h.Messages.Thread)
	auth.PUT("/messages/:id/read", h.Messages.MarkRead)

	// Family-scoped ring.
	fam := auth.Group("", middleware.FamilyScope(families))
	fam.GET("/family/members", h.Families.Members)
	fam.POST("/family/summary", h.Families.Summary)
	fam.POST("/family/users/:id/summary", h.Families.MemberSummary)

	fam.GET("/posts", h.Posts.List)
	fam.POST("/posts", h.Posts.Create)
	fam.GET("/posts/:id", h.Posts.Get)
	fam.PUT("/posts/:id", h.Posts.Update)
	fam.DELETE("/posts/:id", h.Posts.Delete)
	fam.POST("/posts/:id/like", h.Posts.Like)
	fam.POST("/posts/:id/dislike", h.Posts.Dislike)
	fam.DELETE("/posts/:id/reaction", h.Posts.Unreact)
	fam.GET("/posts/:id/comments", h.Posts.Comments)
	fam.POST("/posts/:id/comments", h.Posts.CreateComment)
	fam.PUT("/comments/:commentId", h.Posts.UpdateComment)
	fam.DELETE("/comments/:commentId", h.Posts.DeleteComment)
	fam.GET("/users/:id/posts", h.Posts.ByUser)

	fam.GET("/search", h.Search.Posts)
}
