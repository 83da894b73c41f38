// Package profile serves the author profile pages: stories, follower and
// following tabs, and the about data.
package profile

import (
	"context"
	"net/http"
	"time"

	"aurie/db"
	"aurie/feed"
	"aurie/livequery"
	"aurie/middleware"
	"aurie/models"
	"aurie/social"
	"aurie/utils"

	"github.com/julienschmidt/httprouter"
	"go.mongodb.org/mongo-driver/bson"
	"go.mongodb.org/mongo-driver/mongo"
)

// GetProfile handles GET /api/profile/:username. The username is the local
// part of the account email. The viewer's follow state is included when a
// valid token is present.
func GetProfile(cache *social.RelationCache) httprouter.Handle {
	return func(w http.ResponseWriter, r *http.Request, ps httprouter.Params) {
		ctx, cancel := context.WithTimeout(r.Context(), 5*time.Second)
		defer cancel()

		username := ps.ByName("username")

		var user models.User
		err := db.UserCollection.FindOne(ctx, bson.M{"username": username}).Decode(&user)
		if err == mongo.ErrNoDocuments {
			utils.RespondWithError(w, http.StatusNotFound, "User not found")
			return
		}
		if err != nil {
			utils.RespondWithError(w, http.StatusInternalServerError, "Internal server error")
			return
		}

		posts, err := livequery.FetchPosts(ctx, livequery.PostQuery{
			Status: models.StatusPublished,
			Author: user.Email,
		})
		if err != nil {
			utils.RespondWithError(w, http.StatusInternalServerError, "Failed to fetch posts")
			return
		}
		for i := range posts {
			posts[i].ReadTime = feed.ReadTime(posts[i].Content)
		}

		resp := models.UserProfileResponse{
			UserID:         user.UserID,
			Username:       user.Username,
			Name:           user.Name,
			Email:          user.Email,
			Bio:            user.Bio,
			JoinedAt:       user.JoinedAt,
			FollowersCount: len(user.Followers),
			FollowingCount: len(user.Following),
			Posts:          posts,
		}

		if claims, err := middleware.ValidateJWT(r.Header.Get("Authorization")); err == nil {
			if following, ok := cache.IsFollowing(claims.UserID, user.UserID); ok {
				resp.IsFollowing = following
			} else if list, err := livequery.FetchFollowList(ctx, claims.UserID); err == nil {
				cache.Reconcile(claims.UserID, list)
				resp.IsFollowing = utils.Contains(list.Following, user.UserID)
			}
		}

		utils.RespondWithJSON(w, http.StatusOK, resp)
	}
}
