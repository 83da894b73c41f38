package social

import (
	"context"
	"encoding/json"
	"errors"
	"log"
	"net/http"
	"time"

	"aurie/db"
	"aurie/livequery"
	"aurie/middleware"
	"aurie/models"
	"aurie/rdx"
	"aurie/utils"

	"github.com/julienschmidt/httprouter"
	"go.mongodb.org/mongo-driver/bson"
)

// ToggleFollow handles POST /api/follow with {"email": target}.
func ToggleFollow(svc *Service, lq *livequery.Manager) httprouter.Handle {
	return func(w http.ResponseWriter, r *http.Request, _ httprouter.Params) {
		claims, err := middleware.ValidateJWT(r.Header.Get("Authorization"))
		if err != nil {
			utils.RespondWithError(w, http.StatusUnauthorized, "Unauthorized")
			return
		}

		var body struct {
			Email string `json:"email"`
		}
		if err := json.NewDecoder(r.Body).Decode(&body); err != nil {
			utils.RespondWithError(w, http.StatusBadRequest, "Invalid JSON")
			return
		}

		viewer := &models.User{
			UserID:   claims.UserID,
			Username: claims.Username,
			Email:    claims.Email,
		}

		following, err := svc.Toggle(r.Context(), viewer, body.Email)
		switch {
		case errors.Is(err, ErrSelfFollow):
			utils.RespondWithError(w, http.StatusBadRequest, "Cannot follow yourself")
			return
		case errors.Is(err, ErrMissingEmail):
			utils.RespondWithError(w, http.StatusBadRequest, "Target email required")
			return
		case err != nil:
			log.Printf("Error updating follow relationship: %v", err)
			utils.RespondWithError(w, http.StatusInternalServerError, "Failed to update follow relationship")
			return
		}

		// The viewer's lists changed; the target's cached copy ages out on
		// its TTL.
		for _, side := range []string{"following", "followers"} {
			if err := rdx.RdxDel("follows:" + claims.UserID + ":" + side); err != nil {
				log.Printf("follow cache invalidate: %v", err)
			}
		}

		lq.Notify(r.Context(), livequery.ColUsers)

		utils.RespondWithJSON(w, http.StatusOK, map[string]any{
			"ok":          true,
			"isFollowing": following,
		})
	}
}

// GetFollowers returns the expanded follower profiles of a user.
func GetFollowers(w http.ResponseWriter, r *http.Request, ps httprouter.Params) {
	followList(w, r, ps.ByName("id"), "followers")
}

// GetFollowing returns the expanded profiles a user follows.
func GetFollowing(w http.ResponseWriter, r *http.Request, ps httprouter.Params) {
	followList(w, r, ps.ByName("id"), "following")
}

func followList(w http.ResponseWriter, r *http.Request, userID, side string) {
	ctx, cancel := context.WithTimeout(r.Context(), 5*time.Second)
	defer cancel()

	cacheKey := "follows:" + userID + ":" + side
	if cached, err := rdx.RdxGet(cacheKey); err == nil && cached != "" {
		var users []models.User
		if err := json.Unmarshal([]byte(cached), &users); err == nil {
			utils.RespondWithJSON(w, http.StatusOK, users)
			return
		}
	}

	list, err := livequery.FetchFollowList(ctx, userID)
	if err != nil {
		utils.RespondWithError(w, http.StatusInternalServerError, "Internal server error")
		return
	}

	ids := list.Followers
	if side == "following" {
		ids = list.Following
	}
	if len(ids) == 0 {
		utils.RespondWithJSON(w, http.StatusOK, []models.User{})
		return
	}

	cursor, err := db.UserCollection.Find(ctx, bson.M{"userid": bson.M{"$in": ids}})
	if err != nil {
		utils.RespondWithError(w, http.StatusInternalServerError, "Internal server error")
		return
	}
	defer cursor.Close(ctx)

	users := []models.User{}
	if err := cursor.All(ctx, &users); err != nil {
		utils.RespondWithError(w, http.StatusInternalServerError, "Internal server error")
		return
	}

	if data, err := json.Marshal(users); err == nil {
		if err := rdx.RdxSet(cacheKey, string(data), 5*time.Minute); err != nil {
			log.Printf("follow cache: %v", err)
		}
	}

	utils.RespondWithJSON(w, http.StatusOK, users)
}

// DoesFollow reports whether the authenticated viewer follows the target id.
func DoesFollow(cache *RelationCache) httprouter.Handle {
	return func(w http.ResponseWriter, r *http.Request, ps httprouter.Params) {
		claims, err := middleware.ValidateJWT(r.Header.Get("Authorization"))
		if err != nil {
			utils.RespondWithError(w, http.StatusUnauthorized, "Unauthorized")
			return
		}

		targetID := ps.ByName("id")
		if targetID == "" {
			utils.RespondWithError(w, http.StatusBadRequest, "User ID is required")
			return
		}

		if following, ok := cache.IsFollowing(claims.UserID, targetID); ok {
			utils.RespondWithJSON(w, http.StatusOK, map[string]bool{"isFollowing": following})
			return
		}

		list, err := livequery.FetchFollowList(r.Context(), claims.UserID)
		if err != nil {
			utils.RespondWithError(w, http.StatusInternalServerError, "Internal server error")
			return
		}
		cache.Reconcile(claims.UserID, list)

		utils.RespondWithJSON(w, http.StatusOK, map[string]bool{
			"isFollowing": utils.Contains(list.Following, targetID),
		})
	}
}
