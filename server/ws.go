package server

import (
	"net/http"

	"github.com/gin-gonic/gin"
	"github.com/gorilla/websocket"

	"github.com/wasapjg/teg-engine/game"
)

var upgrader = websocket.Upgrader{
	CheckOrigin: func(r *http.Request) bool { return true },
}

// wsMessage is the envelope pushed to connected clients.
type wsMessage struct {
	Type     string        `json:"type"`
	Snapshot *game.Snapshot `json:"snapshot,omitempty"`
	Events   []game.Event  `json:"events,omitempty"`
}

// handleWS upgrades the connection and streams ordered event batches for
// one game. The client gets a full snapshot first, then every batch the
// session appends; a client that cannot keep up is disconnected and must
// resync over the snapshot endpoint.
func (s *Server) handleWS(c *gin.Context) {
	sess, ok := s.session(c)
	if !ok {
		return
	}
	conn, err := upgrader.Upgrade(c.Writer, c.Request, nil)
	if err != nil {
		s.log.Warn().Err(err).Msg("websocket upgrade failed")
		return
	}
	defer conn.Close()

	// Subscribe before snapshotting so no batch between the two is lost;
	// batches at or before the snapshot's seq are skipped below.
	subID, feed := sess.Subscribe(32)
	defer sess.Unsubscribe(subID)

	snap, err := sess.Snapshot()
	if err != nil {
		return
	}
	if err := conn.WriteJSON(wsMessage{Type: "snapshot", Snapshot: &snap}); err != nil {
		return
	}

	// Drain client reads to notice disconnects.
	closed := make(chan struct{})
	go func() {
		defer close(closed)
		for {
			if _, _, err := conn.ReadMessage(); err != nil {
				return
			}
		}
	}()

	for {
		select {
		case events, ok := <-feed:
			if !ok {
				return
			}
			fresh := events[:0:0]
			for _, ev := range events {
				if ev.Seq > snap.Seq {
					fresh = append(fresh, ev)
				}
			}
			if len(fresh) == 0 {
				continue
			}
			if err := conn.WriteJSON(wsMessage{Type: "events", Events: fresh}); err != nil {
				return
			}
		case <-closed:
			return
		}
	}
}
