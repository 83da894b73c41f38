package routes

import (
	"net/http"

	"aurie/auth"
	"aurie/authoring"
	"aurie/comments"
	"aurie/feed"
	"aurie/livequery"
	"aurie/middleware"
	"aurie/profile"
	"aurie/ratelim"
	"aurie/session"
	"aurie/share"
	"aurie/social"
	"aurie/uploads"

	"github.com/julienschmidt/httprouter"
)

func AddStaticRoutes(router *httprouter.Router) {
	router.ServeFiles("/static/postpic/*filepath", http.Dir("static/postpic"))
}

func AddAuthRoutes(router *httprouter.Router, rl *ratelim.RateLimiter, broker *session.Broker) {
	router.POST("/api/auth/register", rl.Limit(auth.Register(broker)))
	router.POST("/api/auth/login", rl.Limit(auth.Login(broker)))
	router.POST("/api/auth/logout", auth.Logout(broker))
	router.POST("/api/auth/token/refresh", rl.Limit(auth.Refresh(broker)))
}

func AddSessionRoutes(router *httprouter.Router, watcher *session.Watcher) {
	router.GET("/api/session", session.CurrentHandler(watcher))
}

func AddPostRoutes(router *httprouter.Router, rl *ratelim.RateLimiter, store authoring.PostStore, lq *livequery.Manager) {
	router.GET("/api/posts", feed.GetHomeFeed)
	router.GET("/api/drafts", middleware.Authenticate(feed.GetDrafts))
	router.GET("/api/posts/:postid", middleware.OptionalAuth(feed.GetPost))

	router.POST("/api/posts", rl.Limit(middleware.Authenticate(authoring.SavePost(store, lq))))
	router.PUT("/api/posts/:postid", rl.Limit(middleware.Authenticate(authoring.SavePost(store, lq))))
	router.POST("/api/posts/:postid/publish", middleware.Authenticate(authoring.PublishDraft(store, lq)))
	router.DELETE("/api/posts/:postid", middleware.Authenticate(authoring.DeletePost(store, lq)))

	router.POST("/api/posts/:postid/like", middleware.Authenticate(feed.ToggleLike(lq)))
}

func AddCommentRoutes(router *httprouter.Router, rl *ratelim.RateLimiter, lq *livequery.Manager) {
	router.POST("/api/comments/:postid", rl.Limit(middleware.Authenticate(comments.CreateComment(lq))))
	router.GET("/api/comments/:postid", comments.GetComments)
}

func AddProfileRoutes(router *httprouter.Router, cache *social.RelationCache, svc *social.Service, lq *livequery.Manager) {
	router.GET("/api/profile/:username", middleware.OptionalAuth(profile.GetProfile(cache)))
	router.POST("/api/follow", middleware.Authenticate(social.ToggleFollow(svc, lq)))
	router.GET("/api/follow/:id/followers", social.GetFollowers)
	router.GET("/api/follow/:id/following", social.GetFollowing)
	router.GET("/api/follow/:id/status", middleware.Authenticate(social.DoesFollow(cache)))
}

func AddLiveRoutes(router *httprouter.Router, lq *livequery.Manager, cache *social.RelationCache) {
	router.GET("/ws/live", middleware.Authenticate(livequery.StreamHandler(lq, cache)))
}

func AddUploadRoutes(router *httprouter.Router, rl *ratelim.RateLimiter) {
	router.POST("/api/upload/image", rl.Limit(middleware.Authenticate(uploads.UploadImage)))
}

func AddShareRoutes(router *httprouter.Router, rl *ratelim.RateLimiter) {
	router.GET("/api/posts/:postid/pdf", rl.Limit(share.PrintPost))
	router.GET("/api/posts/:postid/qr", rl.Limit(share.PostQR))
}
