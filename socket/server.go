package socket

import (
	"log"

	"duoq_server/models"

	socketio "github.com/googollee/go-socket.io"
)

// LobbyRoom receives every listing change; clients watching a single listing
// subscribe to its own room instead.
const LobbyRoom = "lobby"

// NewSocketServer initializes and returns a new Socket.IO server
func NewSocketServer() *socketio.Server {
	server := socketio.NewServer(nil)

	server.OnConnect("/", func(c socketio.Conn) error {
		log.Println("✅ Socket connected:", c.ID())
		c.Join(LobbyRoom)
		return nil
	})

	// Clients subscribe to one listing's updates
	server.OnEvent("/", "subscribe", func(c socketio.Conn, listingID string) {
		if listingID == "" {
			log.Println("❌ Invalid listingId in subscribe request")
			return
		}
		log.Printf("👥 Socket %s subscribed to listing %s\n", c.ID(), listingID)
		c.Join(listingRoom(listingID))
	})

	server.OnEvent("/", "unsubscribe", func(c socketio.Conn, listingID string) {
		c.Leave(listingRoom(listingID))
	})

	server.OnError("/", func(c socketio.Conn, err error) {
		log.Println("❌ Socket error:", err)
	})

	server.OnDisconnect("/", func(c socketio.Conn, reason string) {
		log.Println("❌ Socket disconnected:", reason)
	})

	return server
}

func listingRoom(listingID string) string {
	return "listing:" + listingID
}

// Broadcaster pushes listing change events to subscribed clients. It
// implements the coordinator's Notifier interface; delivery is fire and
// forget.
type Broadcaster struct {
	Server *socketio.Server
}

func NewBroadcaster(server *socketio.Server) *Broadcaster {
	return &Broadcaster{Server: server}
}

func (b *Broadcaster) ListingChanged(listing *models.Listing) {
	b.Server.BroadcastToRoom("/", listingRoom(listing.ListingID), "listingUpdated", listing)
	b.Server.BroadcastToRoom("/", LobbyRoom, "listingUpdated", listing)
}

func (b *Broadcaster) ListingDeleted(listingID string) {
	b.Server.BroadcastToRoom("/", listingRoom(listingID), "listingDeleted", listingID)
	b.Server.BroadcastToRoom("/", LobbyRoom, "listingDeleted", listingID)
}
