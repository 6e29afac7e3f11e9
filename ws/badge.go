package ws

import (
	"net/http"
	"sync"

	"github.com/gorilla/websocket"

	"github.com/the-y0gi/Go-Apply-sub000/logger"
)

// The badge hub pushes unread-notification counts so clients can update
// their indicator without refetching the list.

var (
	badgeMu        sync.Mutex
	badgeClients   = make(map[*websocket.Conn]string)
	badgeBroadcast = make(chan BadgeMessage, 50)
)

type BadgeMessage struct {
	UserID string `json:"user_id"`
	Count  int64  `json:"count"`
}

var badgeUpgrader = websocket.Upgrader{
	CheckOrigin: func(r *http.Request) bool { return true },
}

func HandleBadgeWS(w http.ResponseWriter, r *http.Request) {
	userID := r.URL.Query().Get("user_id")
	if userID == "" {
		http.Error(w, "Missing user_id", http.StatusBadRequest)
		return
	}

	conn, err := badgeUpgrader.Upgrade(w, r, nil)
	if err != nil {
		logger.Log.Warn().Err(err).Msg("badge ws upgrade error")
		return
	}
	defer conn.Close()

	badgeMu.Lock()
	badgeClients[conn] = userID
	badgeMu.Unlock()

	for {
		var tmp interface{}
		if err := conn.ReadJSON(&tmp); err != nil {
			badgeMu.Lock()
			delete(badgeClients, conn)
			badgeMu.Unlock()
			return
		}
	}
}

func HandleBadgeMessages() {
	for msg := range badgeBroadcast {
		badgeMu.Lock()
		for conn, uid := range badgeClients {
			if uid != msg.UserID {
				continue
			}
			if err := conn.WriteJSON(msg); err != nil {
				logger.Log.Warn().Err(err).Msg("badge ws send error")
				conn.Close()
				delete(badgeClients, conn)
			}
		}
		badgeMu.Unlock()
	}
}

func SendBadgeUpdate(userID string, count int64) {
	select {
	case badgeBroadcast <- BadgeMessage{UserID: userID, Count: count}:
	default:
	}
}
