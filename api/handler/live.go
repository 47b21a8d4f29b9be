package handler

import (
	"time"

	"github.com/fasthttp/websocket"
	"github.com/valyala/fasthttp"
	"go.uber.org/zap"

	"github.com/giftwell/backend/internal/realtime"
)

const (
	actionJoin  = "join"
	actionLeave = "leave"
)

// liveFrame is the inbound message on the duplex channel.
type liveFrame struct {
	Action     string `json:"action"`
	WishlistID string `json:"wishlist_id"`
}

// LiveHandler upgrades clients to the per-connection event channel. One
// connection multiplexes every wishlist the client joins; join/leave frames
// drive room membership, and the write pump delivers whatever the bus fans
// out. A client that disconnects mid-mutation still lets the mutation finish;
// it just never sees the event and re-fetches on reconnect.
type LiveHandler struct {
	bus      *realtime.Bus
	presence *realtime.Presence
	upgrader websocket.FastHTTPUpgrader
	logger   *zap.Logger

	writeTimeout time.Duration
	pingInterval time.Duration
}

func NewLiveHandler(bus *realtime.Bus, presence *realtime.Presence, writeTimeout, pingInterval time.Duration, logger *zap.Logger) *LiveHandler {
	if logger == nil {
		logger = zap.NewNop()
	}
	if writeTimeout <= 0 {
		writeTimeout = 10 * time.Second
	}
	if pingInterval <= 0 {
		pingInterval = 30 * time.Second
	}
	return &LiveHandler{
		bus:      bus,
		presence: presence,
		logger:   logger,
		upgrader: websocket.FastHTTPUpgrader{
			CheckOrigin: func(ctx *fasthttp.RequestCtx) bool { return true },
		},
		writeTimeout: writeTimeout,
		pingInterval: pingInterval,
	}
}

// @Summary Live event channel
// @Tags live
// @Router /ws [get]
func (h *LiveHandler) Connect(ctx *fasthttp.RequestCtx) {
	err := h.upgrader.Upgrade(ctx, func(conn *websocket.Conn) {
		session := h.bus.NewSubscriber()
		done := make(chan struct{})

		go h.writePump(conn, session, done)
		h.readLoop(conn, session)

		// Disconnect before close: rooms shrink first, then the
		// subscriber detaches from its channels.
		h.presence.Disconnect(session)
		session.Close()
		close(done)
		conn.Close()
	})
	if err != nil {
		h.logger.Warn("websocket upgrade failed", zap.Error(err))
	}
}

func (h *LiveHandler) readLoop(conn *websocket.Conn, session *realtime.Subscriber) {
	for {
		var frame liveFrame
		if err := conn.ReadJSON(&frame); err != nil {
			if websocket.IsUnexpectedCloseError(err, websocket.CloseGoingAway, websocket.CloseNormalClosure) {
				h.logger.Debug("websocket read failed", zap.Error(err))
			}
			return
		}
		if frame.WishlistID == "" {
			continue
		}

		switch frame.Action {
		case actionJoin:
			// Subscribe before announcing so the joiner receives its
			// own presence update.
			session.Join(frame.WishlistID)
			h.presence.Join(session, frame.WishlistID)
		case actionLeave:
			h.presence.Leave(session, frame.WishlistID)
			session.Leave(frame.WishlistID)
		}
	}
}

func (h *LiveHandler) writePump(conn *websocket.Conn, session *realtime.Subscriber, done <-chan struct{}) {
	ticker := time.NewTicker(h.pingInterval)
	defer ticker.Stop()

	for {
		select {
		case <-done:
			return
		case event := <-session.Events():
			conn.SetWriteDeadline(time.Now().Add(h.writeTimeout))
			if err := conn.WriteJSON(event); err != nil {
				h.logger.Debug("websocket write failed", zap.Error(err))
				return
			}
		case <-ticker.C:
			conn.SetWriteDeadline(time.Now().Add(h.writeTimeout))
			if err := conn.WriteMessage(websocket.PingMessage, nil); err != nil {
				return
			}
		}
	}
}
