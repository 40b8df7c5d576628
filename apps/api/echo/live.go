package echoapi

import (
	"encoding/json"
	"net/http"
	"sync"
	"time"

	"github.com/gorilla/websocket"
	"github.com/labstack/echo/v4"
	"github.com/labstack/echo/v4/middleware"
	"github.com/pkg/errors"

	"github.com/trezcool/stemquest/core"
	"github.com/trezcool/stemquest/core/game"
)

const (
	liveWriteWait  = 5 * time.Second
	livePongWait   = 60 * time.Second
	livePingPeriod = livePongWait * 9 / 10
	liveBuffer     = 16
)

type liveClient struct {
	gameID string
	out    chan []byte
}

// liveHub pushes every game change to the websockets watching that game.
// Slow clients miss updates rather than block the game.
type liveHub struct {
	logger   core.Logger
	upgrader websocket.Upgrader

	mu      sync.Mutex
	clients map[string]map[*liveClient]struct{} // game id -> clients
}

var _ game.Observer = (*liveHub)(nil)

func newLiveHub(logger core.Logger) *liveHub {
	return &liveHub{
		logger: logger,
		upgrader: websocket.Upgrader{
			ReadBufferSize:  1024,
			WriteBufferSize: 16 * 1024,
			CheckOrigin:     func(r *http.Request) bool { return true }, // CORS is enforced on the API
		},
		clients: make(map[string]map[*liveClient]struct{}),
	}
}

func (h *liveHub) join(gameID string) *liveClient {
	c := &liveClient{gameID: gameID, out: make(chan []byte, liveBuffer)}
	h.mu.Lock()
	defer h.mu.Unlock()
	if h.clients[gameID] == nil {
		h.clients[gameID] = make(map[*liveClient]struct{})
	}
	h.clients[gameID][c] = struct{}{}
	return c
}

func (h *liveHub) leave(c *liveClient) {
	h.mu.Lock()
	defer h.mu.Unlock()
	if _, ok := h.clients[c.gameID][c]; !ok {
		return
	}
	delete(h.clients[c.gameID], c)
	if len(h.clients[c.gameID]) == 0 {
		delete(h.clients, c.gameID)
	}
	close(c.out)
}

func (h *liveHub) watchers(gameID string) int {
	h.mu.Lock()
	defer h.mu.Unlock()
	return len(h.clients[gameID])
}

func (h *liveHub) GameChanged(v game.View) {
	h.mu.Lock()
	defer h.mu.Unlock()
	clients := h.clients[v.ID]
	if len(clients) == 0 {
		return
	}
	data, err := json.Marshal(v)
	if err != nil {
		h.logger.Error("encoding live game", errors.Wrap(err, "encoding live game"))
		return
	}
	for c := range clients {
		select {
		case c.out <- data:
		default:
		}
	}
}

// closeAll disconnects every client.
func (h *liveHub) closeAll() {
	h.mu.Lock()
	defer h.mu.Unlock()
	for id, clients := range h.clients {
		for c := range clients {
			close(c.out)
		}
		delete(h.clients, id)
	}
}

// serve pumps c's updates to conn until either side goes away.
func (h *liveHub) serve(conn *websocket.Conn, c *liveClient, first []byte) {
	defer func() { _ = conn.Close() }()

	done := make(chan struct{})
	go func() {
		defer close(done)
		defer func() { _ = conn.Close() }() // unblocks the reader
		ticker := time.NewTicker(livePingPeriod)
		defer ticker.Stop()

		write := func(typ int, data []byte) error {
			_ = conn.SetWriteDeadline(time.Now().Add(liveWriteWait))
			return conn.WriteMessage(typ, data)
		}
		if err := write(websocket.TextMessage, first); err != nil {
			return
		}
		for {
			select {
			case data, ok := <-c.out:
				if !ok {
					_ = write(websocket.CloseMessage, websocket.FormatCloseMessage(websocket.CloseGoingAway, "bye"))
					return
				}
				if err := write(websocket.TextMessage, data); err != nil {
					return
				}
			case <-ticker.C:
				if err := write(websocket.PingMessage, nil); err != nil {
					return
				}
			}
		}
	}()

	// clients only ever send control frames
	_ = conn.SetReadDeadline(time.Now().Add(livePongWait))
	conn.SetPongHandler(func(string) error {
		return conn.SetReadDeadline(time.Now().Add(livePongWait))
	})
	for {
		if _, _, err := conn.ReadMessage(); err != nil {
			break
		}
	}

	h.leave(c)
	<-done
}

// registerLiveAPI serves the websocket feed of a game. Browsers cannot set headers on websockets,
// so the JWT comes in the `token` query param.
func registerLiveAPI(g *echo.Group, conf *core.Config, svc game.ServiceInterface, hub *liveHub) {
	jwtConf := newJWTConfig(conf)
	jwtConf.TokenLookup = "query:token"

	g.GET("/games/:id/live", func(ctx echo.Context) error {
		p, err := getContextPlayer(ctx)
		if err != nil {
			return errors.Wrap(err, "getting context player")
		}
		v, err := svc.Get(ctx.Request().Context(), p, ctx.Param("id"))
		if err != nil {
			return errors.Wrap(err, "getting game")
		}
		first, err := json.Marshal(v)
		if err != nil {
			return errors.Wrap(err, "encoding game")
		}

		conn, err := hub.upgrader.Upgrade(ctx.Response(), ctx.Request(), nil)
		if err != nil {
			return nil // the upgrader already replied
		}
		hub.serve(conn, hub.join(v.ID), first)
		return nil
	}, middleware.JWTWithConfig(jwtConf))
}
