package authoring

import (
	"encoding/json"
	"errors"
	"net/http"

	"aurie/livequery"
	"aurie/middleware"
	"aurie/models"
	"aurie/utils"

	"github.com/julienschmidt/httprouter"
)

type savePayload struct {
	Title    string `json:"title"`
	Content  string `json:"content"`
	Category string `json:"category,omitempty"`
	ImageURL string `json:"imageUrl,omitempty"`
	Status   string `json:"status"`
}

// SavePost handles POST /api/posts (create) and PUT /api/posts/:postid
// (edit). The response carries the route the client navigates to.
func SavePost(store PostStore, lq *livequery.Manager) httprouter.Handle {
	return func(w http.ResponseWriter, r *http.Request, ps httprouter.Params) {
		claims, err := middleware.ValidateJWT(r.Header.Get("Authorization"))
		if err != nil {
			utils.RespondWithError(w, http.StatusUnauthorized, "Unauthorized")
			return
		}

		var payload savePayload
		if err := json.NewDecoder(r.Body).Decode(&payload); err != nil {
			utils.RespondWithError(w, http.StatusBadRequest, "Invalid JSON")
			return
		}

		session := NewSession(store)
		session.Title = payload.Title
		session.Content = payload.Content
		session.Category = payload.Category
		session.ImageURL = payload.ImageURL
		session.PostID = ps.ByName("postid")

		author := &models.User{
			UserID:   claims.UserID,
			Username: claims.Username,
			Email:    claims.Email,
		}

		redirect, err := session.Save(r.Context(), author, payload.Status)
		switch {
		case errors.Is(err, ErrMissingFields) || errors.Is(err, ErrBadStatus):
			utils.RespondWithError(w, http.StatusBadRequest, err.Error())
			return
		case errors.Is(err, ErrNotFound):
			utils.RespondWithError(w, http.StatusNotFound, "Post not found")
			return
		case errors.Is(err, ErrNotOwner):
			utils.RespondWithError(w, http.StatusForbidden, "Forbidden")
			return
		case err != nil:
			utils.RespondWithError(w, http.StatusInternalServerError, "Failed to save post. Please try again.")
			return
		}

		lq.Notify(r.Context(), livequery.ColPosts)

		utils.RespondWithJSON(w, http.StatusOK, map[string]any{
			"ok":       true,
			"redirect": redirect,
		})
	}
}

// PublishDraft handles POST /api/posts/:postid/publish.
func PublishDraft(store PostStore, lq *livequery.Manager) httprouter.Handle {
	return func(w http.ResponseWriter, r *http.Request, ps httprouter.Params) {
		claims, err := middleware.ValidateJWT(r.Header.Get("Authorization"))
		if err != nil {
			utils.RespondWithError(w, http.StatusUnauthorized, "Unauthorized")
			return
		}

		post, err := store.ByID(r.Context(), ps.ByName("postid"))
		if errors.Is(err, ErrNotFound) {
			utils.RespondWithError(w, http.StatusNotFound, "Post not found")
			return
		}
		if err != nil {
			utils.RespondWithError(w, http.StatusInternalServerError, "Failed to load post")
			return
		}
		if post.AuthorID != claims.UserID {
			utils.RespondWithError(w, http.StatusForbidden, "Forbidden")
			return
		}

		session := NewSession(store)
		session.Title = post.Title
		session.Content = post.Content
		session.Category = post.Category
		session.PostID = post.PostID

		author := &models.User{UserID: claims.UserID, Username: claims.Username, Email: claims.Email}
		redirect, err := session.Save(r.Context(), author, models.StatusPublished)
		if err != nil {
			utils.RespondWithError(w, http.StatusInternalServerError, "Failed to publish post")
			return
		}

		lq.Notify(r.Context(), livequery.ColPosts)

		utils.RespondWithJSON(w, http.StatusOK, map[string]any{
			"ok":       true,
			"redirect": redirect,
		})
	}
}

// DeletePost handles DELETE /api/posts/:postid. Owner only.
func DeletePost(store PostStore, lq *livequery.Manager) httprouter.Handle {
	return func(w http.ResponseWriter, r *http.Request, ps httprouter.Params) {
		claims, err := middleware.ValidateJWT(r.Header.Get("Authorization"))
		if err != nil {
			utils.RespondWithError(w, http.StatusUnauthorized, "Unauthorized")
			return
		}

		if err := store.Delete(r.Context(), ps.ByName("postid"), claims.UserID); err != nil {
			if errors.Is(err, ErrNotFound) {
				utils.RespondWithError(w, http.StatusNotFound, "Post not found")
				return
			}
			utils.RespondWithError(w, http.StatusInternalServerError, "Failed to delete post")
			return
		}

		lq.Notify(r.Context(), livequery.ColPosts)

		utils.RespondWithJSON(w, http.StatusOK, map[string]any{"ok": true})
	}
}
