package livequery

import (
	"log"
	"net/http"

	"aurie/models"

	"github.com/gorilla/websocket"
	"github.com/julienschmidt/httprouter"
)

var upgrader = websocket.Upgrader{CheckOrigin: func(r *http.Request) bool { return true }}

// subscribeFrame is the first message a client sends after connecting.
type subscribeFrame struct {
	Stream   string `json:"stream"` // "posts", "comments", "follows"
	Status   string `json:"status,omitempty"`
	Author   string `json:"author,omitempty"`
	Category string `json:"category,omitempty"`
	Oldest   bool   `json:"oldest,omitempty"`
	Post     string `json:"post,omitempty"` // comments
	User     string `json:"user,omitempty"` // follows
}

// snapshotFrame wraps every emission sent back down the socket.
type snapshotFrame struct {
	Stream string `json:"stream"`
	Data   any    `json:"data"`
}

// FollowReconciler receives authoritative follow-list snapshots so locally
// applied optimistic state can be discarded.
type FollowReconciler interface {
	Reconcile(userID string, list models.FollowList)
}

// StreamHandler upgrades the connection and pushes snapshots until the
// client goes away. One subscription per socket.
func StreamHandler(m *Manager, rec FollowReconciler) httprouter.Handle {
	return func(w http.ResponseWriter, r *http.Request, _ httprouter.Params) {
		conn, err := upgrader.Upgrade(w, r, nil)
		if err != nil {
			log.Println("livequery upgrade:", err)
			return
		}
		defer conn.Close()

		var frame subscribeFrame
		if err := conn.ReadJSON(&frame); err != nil {
			return
		}

		switch frame.Stream {
		case ColPosts:
			ch, cancel := m.SubscribePosts(PostQuery{
				Status:   frame.Status,
				Author:   frame.Author,
				Category: frame.Category,
				Oldest:   frame.Oldest,
			})
			go cancelOnClose(conn, cancel)
			for posts := range ch {
				if err := conn.WriteJSON(snapshotFrame{Stream: ColPosts, Data: posts}); err != nil {
					cancel()
					return
				}
			}

		case ColComments:
			if frame.Post == "" {
				return
			}
			ch, cancel := m.SubscribeComments(frame.Post)
			go cancelOnClose(conn, cancel)
			for comments := range ch {
				if err := conn.WriteJSON(snapshotFrame{Stream: ColComments, Data: comments}); err != nil {
					cancel()
					return
				}
			}

		case "follows":
			if frame.User == "" {
				return
			}
			ch, cancel := m.SubscribeFollowList(frame.User)
			go cancelOnClose(conn, cancel)
			for list := range ch {
				if rec != nil {
					rec.Reconcile(frame.User, list)
				}
				if err := conn.WriteJSON(snapshotFrame{Stream: "follows", Data: list}); err != nil {
					cancel()
					return
				}
			}
		}
	}
}

// cancelOnClose tears the subscription down as soon as the peer disconnects,
// which closes the snapshot channel and ends the write loop.
func cancelOnClose(conn *websocket.Conn, cancel func()) {
	for {
		if _, _, err := conn.ReadMessage(); err != nil {
			cancel()
			return
		}
	}
}
