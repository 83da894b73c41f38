package feed

import (
	"context"
	"log"
	"net/http"
	"strconv"
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

// GET /api/posts?category=
func GetHomeFeed(w http.ResponseWriter, r *http.Request, _ httprouter.Params) {
	ctx := r.Context()

	posts, err := livequery.FetchPosts(ctx, livequery.PostQuery{Status: models.StatusPublished})
	if err != nil {
		utils.RespondWithError(w, http.StatusInternalServerError, "Failed to fetch posts")
		return
	}

	posts = FilterByCategory(posts, r.URL.Query().Get("category"))
	for i := range posts {
		posts[i].ReadTime = ReadTime(posts[i].Content)
	}

	utils.RespondWithJSON(w, http.StatusOK, posts)
}

// GET /api/drafts
func GetDrafts(w http.ResponseWriter, r *http.Request, _ httprouter.Params) {
	claims, err := middleware.ValidateJWT(r.Header.Get("Authorization"))
	if err != nil {
		utils.RespondWithError(w, http.StatusUnauthorized, "Unauthorized")
		return
	}

	drafts, err := livequery.FetchPosts(r.Context(), livequery.PostQuery{
		Status:   models.StatusDraft,
		AuthorID: claims.UserID,
	})
	if err != nil {
		utils.RespondWithError(w, http.StatusInternalServerError, "Failed to fetch drafts")
		return
	}

	utils.RespondWithJSON(w, http.StatusOK, drafts)
}

// GET /api/posts/:postid
func GetPost(w http.ResponseWriter, r *http.Request, ps httprouter.Params) {
	ctx, cancel := context.WithTimeout(r.Context(), 5*time.Second)
	defer cancel()

	postID := ps.ByName("postid")

	var post models.Post
	if err := db.PostsCollection.FindOne(ctx, bson.M{"postid": postID}).Decode(&post); err != nil {
		utils.RespondWithError(w, http.StatusNotFound, "Post not found")
		return
	}

	// Drafts are visible to their owner only.
	if post.Status != models.StatusPublished {
		claims, err := middleware.ValidateJWT(r.Header.Get("Authorization"))
		if err != nil || claims.UserID != post.AuthorID {
			utils.RespondWithError(w, http.StatusNotFound, "Post not found")
			return
		}
	}

	post.ReadTime = ReadTime(post.Content)
	cached, err := rdx.RdxGet(likeCountKey(postID))
	post.LikesCount = resolveLikeCount(cached, err, post.Likes)
	utils.RespondWithJSON(w, http.StatusOK, post)
}

// likeCountKey is the Redis mirror of a post's like count, written on every
// toggle and read back on the single-post path.
func likeCountKey(postID string) string {
	return "like:count:post:" + postID
}

// resolveLikeCount prefers the mirrored count and falls back to the likes
// set when the mirror is missing or garbled.
func resolveLikeCount(cached string, err error, likes []string) int {
	if err == nil {
		if n, aerr := strconv.Atoi(cached); aerr == nil && n >= 0 {
			return n
		}
	}
	return len(likes)
}

// ToggleLike flips membership of the viewer's email in the post's likes set.
func ToggleLike(lq *livequery.Manager) httprouter.Handle {
	return func(w http.ResponseWriter, r *http.Request, ps httprouter.Params) {
		claims, err := middleware.ValidateJWT(r.Header.Get("Authorization"))
		if err != nil {
			utils.RespondWithError(w, http.StatusUnauthorized, "Please login to like posts")
			return
		}

		ctx, cancel := context.WithTimeout(r.Context(), 5*time.Second)
		defer cancel()

		postID := ps.ByName("postid")

		var post models.Post
		if err := db.PostsCollection.FindOne(ctx, bson.M{"postid": postID}).Decode(&post); err != nil {
			utils.RespondWithError(w, http.StatusNotFound, "Post not found")
			return
		}

		liked := utils.Contains(post.Likes, claims.Email)
		update := bson.M{"$addToSet": bson.M{"likes": claims.Email}}
		count := len(post.Likes) + 1
		if liked {
			update = bson.M{"$pull": bson.M{"likes": claims.Email}}
			count = len(post.Likes) - 1
		}

		if _, err := db.PostsCollection.UpdateOne(ctx, bson.M{"postid": postID}, update); err != nil {
			utils.RespondWithError(w, http.StatusInternalServerError, "Failed to update likes")
			return
		}

		if err := rdx.RdxSet(likeCountKey(postID), strconv.Itoa(count), 10*time.Minute); err != nil {
			log.Printf("like count cache: %v", err)
		}

		lq.Notify(r.Context(), livequery.ColPosts)

		utils.RespondWithJSON(w, http.StatusOK, map[string]any{
			"ok":    true,
			"liked": !liked,
			"likes": count,
		})
	}
}
