package session

import (
	"net/http"

	"aurie/models"
	"aurie/utils"

	"github.com/julienschmidt/httprouter"
)

type stateResponse struct {
	User    *models.User `json:"user"`
	Loading bool         `json:"loading"`
}

// CurrentHandler exposes the watcher state at GET /api/session.
func CurrentHandler(watcher *Watcher) httprouter.Handle {
	return func(w http.ResponseWriter, r *http.Request, _ httprouter.Params) {
		user, loading := watcher.Current()
		utils.RespondWithJSON(w, http.StatusOK, stateResponse{User: user, Loading: loading})
	}
}
