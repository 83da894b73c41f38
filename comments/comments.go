// Package comments implements the append-only comment stream under a post.
package comments

import (
	"context"
	"encoding/json"
	"net/http"
	"strings"
	"time"

	"aurie/db"
	"aurie/livequery"
	"aurie/middleware"
	"aurie/models"
	"aurie/utils"

	"github.com/google/uuid"
	"github.com/julienschmidt/httprouter"
	"go.mongodb.org/mongo-driver/bson"
)

// CreateComment adds a new comment to a post.
func CreateComment(lq *livequery.Manager) httprouter.Handle {
	return func(w http.ResponseWriter, r *http.Request, ps httprouter.Params) {
		ctx, cancel := context.WithTimeout(r.Context(), 5*time.Second)
		defer cancel()

		claims, err := middleware.ValidateJWT(r.Header.Get("Authorization"))
		if err != nil {
			utils.RespondWithError(w, http.StatusUnauthorized, "Please login to comment")
			return
		}

		postID := ps.ByName("postid")

		var body struct {
			Text string `json:"text"`
		}
		if err := json.NewDecoder(r.Body).Decode(&body); err != nil {
			utils.RespondWithError(w, http.StatusBadRequest, "Invalid JSON")
			return
		}
		if strings.TrimSpace(body.Text) == "" {
			utils.RespondWithError(w, http.StatusBadRequest, "Comment cannot be empty")
			return
		}

		if err := db.PostsCollection.FindOne(ctx, bson.M{"postid": postID}).Err(); err != nil {
			utils.RespondWithError(w, http.StatusNotFound, "Post not found")
			return
		}

		comment := models.Comment{
			CommentID: "c" + uuid.NewString(),
			PostID:    postID,
			Author:    claims.Email,
			Text:      body.Text,
			CreatedAt: time.Now(),
		}

		if _, err := db.CommentsCollection.InsertOne(ctx, comment); err != nil {
			utils.RespondWithError(w, http.StatusInternalServerError, "DB insert failed")
			return
		}

		lq.Notify(r.Context(), livequery.ColComments)

		utils.RespondWithJSON(w, http.StatusCreated, comment)
	}
}

// GetComments fetches a post's comments, oldest first.
func GetComments(w http.ResponseWriter, r *http.Request, ps httprouter.Params) {
	comments, err := livequery.FetchComments(r.Context(), ps.ByName("postid"))
	if err != nil {
		utils.RespondWithError(w, http.StatusInternalServerError, "Failed to fetch comments")
		return
	}
	utils.RespondWithJSON(w, http.StatusOK, comments)
}
