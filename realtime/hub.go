package realtime

import (
	"encoding/json"
	"log"
	"sync"

	"github.com/gorilla/websocket"
	"github.com/yeremiapane/waitlist-app/models"
)

// Event types
const (
	EventWaitlistAdd      = "waitlist_add"
	EventWaitlistStatus   = "waitlist_status"
	EventWaitlistPosition = "waitlist_position"
	EventWaitlistRemove   = "waitlist_remove"
	EventWaitTimeUpdate   = "wait_time_update"
	EventPaymentUpdate    = "payment_update"
)

type Message struct {
	Event string      `json:"event"`
	Data  interface{} `json:"data"`
}

// Hub menampung dashboard client (restaurant staff, admin) yang memantau
// antrian secara real-time.
type Hub struct {
	clients map[*websocket.Conn]string // conn -> role
	mutex   sync.Mutex
}

var hub = Hub{
	clients: make(map[*websocket.Conn]string),
}

// RegisterClient -> menambahkan connection ke set dengan role
func RegisterClient(conn *websocket.Conn, role string) {
	hub.mutex.Lock()
	defer hub.mutex.Unlock()
	hub.clients[conn] = role
}

// UnregisterClient -> melepaskan connection
func UnregisterClient(conn *websocket.Conn) {
	hub.mutex.Lock()
	defer hub.mutex.Unlock()
	delete(hub.clients, conn)
	conn.Close()
}

// BroadcastEntryAdded -> entry baru masuk antrian
func BroadcastEntryAdded(entry models.WaitlistEntry) {
	broadcast(Message{Event: EventWaitlistAdd, Data: entry})
}

// BroadcastEntryStatus -> status entry berubah
func BroadcastEntryStatus(entry models.WaitlistEntry) {
	broadcast(Message{Event: EventWaitlistStatus, Data: entry})
}

// BroadcastEntryPosition -> posisi entry berubah
func BroadcastEntryPosition(entry models.WaitlistEntry) {
	broadcast(Message{Event: EventWaitlistPosition, Data: entry})
}

// BroadcastEntryRemoved -> entry dihapus dari antrian
func BroadcastEntryRemoved(entryID string) {
	broadcast(Message{
		Event: EventWaitlistRemove,
		Data:  map[string]interface{}{"entry_id": entryID},
	})
}

// BroadcastWaitTime -> advertised wait time restoran berubah
func BroadcastWaitTime(restaurant models.Restaurant) {
	broadcast(Message{Event: EventWaitTimeUpdate, Data: restaurant})
}

// BroadcastPaymentUpdate -> payment_status entry berubah
func BroadcastPaymentUpdate(entry models.WaitlistEntry) {
	broadcast(Message{Event: EventPaymentUpdate, Data: entry})
}

func broadcast(msg Message) {
	hub.mutex.Lock()
	defer hub.mutex.Unlock()

	data, err := json.Marshal(msg)
	if err != nil {
		log.Printf("Error marshaling message: %v", err)
		return
	}

	for conn := range hub.clients {
		if err := conn.WriteMessage(websocket.TextMessage, data); err != nil {
			log.Printf("Error sending message to client: %v", err)
		}
	}
}
