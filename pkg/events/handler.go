package events

import (
	"net/http"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/gorilla/websocket"
	"github.com/sirupsen/logrus"

	"itam/pkg/auth"
	"itam/pkg/response"
)

const (
	writeWait  = 10 * time.Second
	pongWait   = 60 * time.Second
	pingPeriod = 30 * time.Second
)

// TokenVerifier checks the access token dashboards pass in the query string.
// Browsers cannot attach an Authorization header to a websocket upgrade, so
// the bearer middleware does not cover this route.
type TokenVerifier interface {
	Verify(tokenString string) (*auth.Claims, bool)
}

var upgrader = websocket.Upgrader{
	ReadBufferSize:  1024,
	WriteBufferSize: 1024,
	CheckOrigin: func(r *http.Request) bool {
		return true
	},
}

type EventHandler struct {
	hub      *Hub
	verifier TokenVerifier
	log      *logrus.Entry
}

func NewEventHandler(hub *Hub, verifier TokenVerifier, log *logrus.Entry) *EventHandler {
	return &EventHandler{
		hub:      hub,
		verifier: verifier,
		log:      log,
	}
}

// RegisterRoutes mounts the websocket endpoint. The route authenticates
// itself through the token query parameter instead of taking the shared
// bearer middleware.
func (h *EventHandler) RegisterRoutes(router *gin.Engine) {
	router.GET("/api/events/ws", h.HandleWS)
}

// HandleWS godoc
// @Summary      Subscribe to asset lifecycle events
// @Description  Upgrades to a websocket and streams asset and repair events as they happen
// @Tags         events
// @Param        token query string true "Access token"
// @Success      101 {string} string "Switching Protocols"
// @Failure      401 {object} response.APIResponse
// @Router       /api/events/ws [get]
func (h *EventHandler) HandleWS(c *gin.Context) {
	token := c.Query("token")
	if token == "" {
		response.SendAPIResponse(c, http.StatusUnauthorized, false, "token query parameter missing", nil)
		return
	}

	claims, ok := h.verifier.Verify(token)
	if !ok {
		response.SendAPIResponse(c, http.StatusUnauthorized, false, "Invalid or expired token", nil)
		return
	}

	conn, err := upgrader.Upgrade(c.Writer, c.Request, nil)
	if err != nil {
		h.log.WithError(err).Warn("Websocket upgrade failed")
		return
	}

	cl := &client{
		conn: conn,
		send: make(chan []byte, sendBuffer),
		done: make(chan struct{}),
	}
	h.hub.add(cl)
	h.log.WithField("username", claims.Username).Info("Dashboard connected")

	go h.writeLoop(cl)
	go h.readLoop(cl, claims.Username)
}

// readLoop discards client frames; the stream is one way. It exists to
// surface pongs and to notice when the peer goes away.
func (h *EventHandler) readLoop(cl *client, username string) {
	defer func() {
		h.hub.remove(cl)
		cl.conn.Close()
		h.log.WithField("username", username).Info("Dashboard disconnected")
	}()

	cl.conn.SetReadDeadline(time.Now().Add(pongWait))
	cl.conn.SetPongHandler(func(string) error {
		cl.conn.SetReadDeadline(time.Now().Add(pongWait))
		return nil
	})

	for {
		if _, _, err := cl.conn.ReadMessage(); err != nil {
			if websocket.IsUnexpectedCloseError(err, websocket.CloseGoingAway, websocket.CloseNormalClosure) {
				h.log.WithError(err).WithField("username", username).Debug("Websocket read ended")
			}
			return
		}
	}
}

func (h *EventHandler) writeLoop(cl *client) {
	ticker := time.NewTicker(pingPeriod)
	defer func() {
		ticker.Stop()
		cl.conn.Close()
	}()

	for {
		select {
		case <-cl.done:
			cl.conn.SetWriteDeadline(time.Now().Add(writeWait))
			cl.conn.WriteMessage(websocket.CloseMessage, []byte{})
			return

		case data := <-cl.send:
			cl.conn.SetWriteDeadline(time.Now().Add(writeWait))
			if err := cl.conn.WriteMessage(websocket.TextMessage, data); err != nil {
				return
			}

		case <-ticker.C:
			cl.conn.SetWriteDeadline(time.Now().Add(writeWait))
			if err := cl.conn.WriteMessage(websocket.PingMessage, nil); err != nil {
				return
			}
		}
	}
}
