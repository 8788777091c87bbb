package live

import (
	"encoding/json"
	"log"
	"strconv"
	"sync"

	"github.com/restreamkit/volunteer-system/models"
)

// RosterMessage — сообщение, которое получают подписчики комнаты гонки.
type RosterMessage struct {
	Type    string      `json:"type"` // "ROSTER_UPDATED"
	RaceID  int         `json:"race_id"`
	Payload interface{} `json:"payload"`
}

// Hub держит комнаты по гонкам и рассылает изменения ростера подключённым
// панелям организаторов.
type Hub struct {
	Register   chan *Client
	Unregister chan *Client
	rooms      map[string]map[*Client]bool
	mu         sync.RWMutex
}

func NewHub() *Hub {
	return &Hub{
		Register:   make(chan *Client),
		Unregister: make(chan *Client),
		rooms:      make(map[string]map[*Client]bool),
	}
}

func (h *Hub) Run() {
	for {
		select {
		case client := <-h.Register:
			h.mu.Lock()
			if _, ok := h.rooms[client.Room]; !ok {
				h.rooms[client.Room] = make(map[*Client]bool)
			}
			h.rooms[client.Room][client] = true
			h.mu.Unlock()

		case client := <-h.Unregister:
			h.mu.Lock()
			if clients, ok := h.rooms[client.Room]; ok {
				if _, registered := clients[client]; registered {
					client.closeSend()
					delete(clients, client)
					if len(clients) == 0 {
						delete(h.rooms, client.Room)
					}
				}
			}
			h.mu.Unlock()
		}
	}
}

// BroadcastRoster реализует services.RosterBroadcaster: пушит актуальный
// список записей всем подписчикам комнаты гонки.
func (h *Hub) BroadcastRoster(raceID int, signups []*models.Signup) {
	message := RosterMessage{
		Type:    "ROSTER_UPDATED",
		RaceID:  raceID,
		Payload: signups,
	}
	messageBytes, err := json.Marshal(message)
	if err != nil {
		log.Printf("Error marshalling roster message for race %d: %v", raceID, err)
		return
	}

	h.mu.RLock()
	defer h.mu.RUnlock()

	clients, ok := h.rooms[RoomFor(raceID)]
	if !ok {
		return
	}
	for client := range clients {
		client.trySend(messageBytes)
	}
}

// RoomFor возвращает имя комнаты для гонки.
func RoomFor(raceID int) string {
	return "race_" + strconv.Itoa(raceID)
}
