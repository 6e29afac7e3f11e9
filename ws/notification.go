package ws

import (
	"net/http"
	"sync"

	"github.com/gorilla/websocket"

	"github.com/the-y0gi/Go-Apply-sub000/logger"
	"github.com/the-y0gi/Go-Apply-sub000/models"
)

var (
	notificationMu        sync.Mutex
	notificationClients   = make(map[*websocket.Conn]string) // conn -> userID
	notificationBroadcast = make(chan models.Notification, 50)
)

var notificationUpgrader = websocket.Upgrader{
	CheckOrigin: func(r *http.Request) bool { return true },
}

// HandleNotificationWS upgrades the connection and registers it under the
// user id until the peer disconnects.
func HandleNotificationWS(w http.ResponseWriter, r *http.Request) {
	userID := r.URL.Query().Get("user_id")
	if userID == "" {
		http.Error(w, "Missing user_id", http.StatusBadRequest)
		return
	}

	conn, err := notificationUpgrader.Upgrade(w, r, nil)
	if err != nil {
		logger.Log.Warn().Err(err).Msg("notification ws upgrade error")
		return
	}
	defer conn.Close()

	notificationMu.Lock()
	notificationClients[conn] = userID
	notificationMu.Unlock()
	logger.Log.Debug().Str("user_id", userID).Msg("notification ws connected")

	for {
		// Clients only send pings to keep the connection alive.
		var tmp interface{}
		if err := conn.ReadJSON(&tmp); err != nil {
			notificationMu.Lock()
			delete(notificationClients, conn)
			notificationMu.Unlock()
			return
		}
	}
}

// HandleNotificationMessages drains the broadcast channel and fans each
// notification out to the owning user's connections.
func HandleNotificationMessages() {
	for noti := range notificationBroadcast {
		notificationMu.Lock()
		for conn, userID := range notificationClients {
			if userID != noti.UserID {
				continue
			}
			if err := conn.WriteJSON(noti); err != nil {
				logger.Log.Warn().Err(err).Msg("notification ws send error")
				conn.Close()
				delete(notificationClients, conn)
			}
		}
		notificationMu.Unlock()
	}
}

// SendNotification queues a notification for delivery; it never blocks the
// caller when the hub is saturated.
func SendNotification(noti models.Notification) {
	select {
	case notificationBroadcast <- noti:
	default:
		logger.Log.Warn().Str("user_id", noti.UserID).Msg("notification broadcast buffer full, dropping")
	}
}
