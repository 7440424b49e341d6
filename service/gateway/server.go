package gateway

import (
	"context"
	"net"
	"net/http"
	"sync"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/gorilla/websocket"

	"github.com/TOPBARD/Connect-Hub/logger"
	storage "github.com/TOPBARD/Connect-Hub/service/storage"
	"github.com/TOPBARD/Connect-Hub/tools/ids"
	"github.com/TOPBARD/Connect-Hub/tools/safe"
)

var upgrader = websocket.Upgrader{
	ReadBufferSize:  4096,
	WriteBufferSize: 4096,
	// Cross-origin policy is enforced by the HTTP middleware in front of /ws.
	CheckOrigin: func(r *http.Request) bool { return true },
}

// Server owns the live channel: the presence registry, the event dispatcher
// and every connected client.
type Server struct {
	reg         *Registry
	disp        *Dispatcher
	presenceTTL time.Duration

	closeOnce sync.Once
	closed    chan struct{}
}

func NewServer(presenceTTL time.Duration) *Server {
	if presenceTTL <= 0 {
		presenceTTL = 2 * time.Minute
	}
	return &Server{
		reg:         NewRegistry(),
		disp:        NewDispatcher(),
		presenceTTL: presenceTTL,
		closed:      make(chan struct{}),
	}
}

func (s *Server) Registry() *Registry { return s.reg }
func (s *Server) Disp() *Dispatcher   { return s.disp }

// HandleWS upgrades the request and runs the connection until the peer goes
// away. Handshake identity rides on the userId query param, matching the SPA.
func (s *Server) HandleWS(c *gin.Context) {
	userID := c.Query("userId")
	if userID == "" || userID == "undefined" {
		// SPA sends the literal string "undefined" before login
		c.JSON(http.StatusBadRequest, gin.H{"error": "userId query param required"})
		return
	}

	ws, err := upgrader.Upgrade(c.Writer, c.Request, nil)
	if err != nil {
		logger.Infof("[HandleWS] upgrade websocket error: %v", err)
		return
	}

	client := NewClient(ids.GenerateString(), userID, ws)
	s.attach(client)

	done := make(chan struct{})
	safe.SafeGo(func() {
		client.writePump(func() { close(done) })
	})

	s.readLoop(client)

	// ---- 退出阶段：下线、刷新在线列表、等待写协程收尾 ----
	s.detach(client)
	<-done
}

func (s *Server) attach(client *Client) {
	if displaced := s.reg.Register(client); displaced != nil {
		// Latest connection wins; shut the previous one down.
		logger.Infof("[WS] displacing old conn user=%s conn=%s", displaced.UserID, displaced.ConnID)
		displaced.Close()
	}

	ctx, cancel := context.WithTimeout(context.Background(), 2*time.Second)
	defer cancel()
	if err := storage.PresenceOnline(ctx, client.UserID, client.ConnID, s.presenceTTL); err != nil {
		logger.Warnf("[WS] presence mirror online failed user=%s err=%v", client.UserID, err)
	}

	logger.Infof("[WS] connected user=%s conn=%s online=%d", client.UserID, client.ConnID, s.reg.Count())
	s.BroadcastOnlineUsers()
}

func (s *Server) detach(client *Client) {
	client.Close()
	if !s.reg.Unregister(client.UserID, client.ConnID) {
		// A newer connection for this user already replaced us; presence and
		// the online list belong to it now.
		return
	}

	ctx, cancel := context.WithTimeout(context.Background(), 2*time.Second)
	defer cancel()
	if err := storage.PresenceOffline(ctx, client.UserID); err != nil {
		logger.Warnf("[WS] presence mirror offline failed user=%s err=%v", client.UserID, err)
	}

	logger.Infof("[WS] disconnected user=%s conn=%s online=%d", client.UserID, client.ConnID, s.reg.Count())
	s.BroadcastOnlineUsers()
}

// readLoop 只读，不写；出错即退出（写协程收尾）
func (s *Server) readLoop(client *Client) {
	ws := client.WS
	ws.SetReadLimit(maxFrameBytes)
	_ = ws.SetReadDeadline(time.Now().Add(pongWait))
	ws.SetPongHandler(func(string) error {
		_ = ws.SetReadDeadline(time.Now().Add(pongWait))
		// Pong also renews the presence mirror lease.
		ctx, cancel := context.WithTimeout(context.Background(), time.Second)
		defer cancel()
		_ = storage.PresenceOnline(ctx, client.UserID, client.ConnID, s.presenceTTL)
		return nil
	})

	for {
		mt, data, rerr := ws.ReadMessage()
		if rerr != nil {
			if websocket.IsCloseError(rerr,
				websocket.CloseNormalClosure,
				websocket.CloseGoingAway,
				websocket.CloseNoStatusReceived,
			) {
				logger.Infof("[WS] peer closed user=%s conn=%s", client.UserID, client.ConnID)
			} else if ne, ok := rerr.(net.Error); ok && ne.Timeout() {
				logger.Infof("[WS] read timeout user=%s conn=%s", client.UserID, client.ConnID)
			} else {
				logger.Infof("[WS] read err user=%s conn=%s err=%v", client.UserID, client.ConnID, rerr)
			}
			return
		}
		if mt != websocket.TextMessage && mt != websocket.BinaryMessage {
			continue
		}

		frame, perr := ParseFrameJSON(data)
		if perr != nil {
			sample := data
			if len(sample) > 256 {
				sample = sample[:256]
			}
			logger.Infof("[WS] bad frame user=%s err=%v sample=%q", client.UserID, perr, sample)
			continue
		}

		s.dispatchFrame(client, frame)

		select {
		case <-s.closed:
			return
		default:
		}
	}
}

// dispatchFrame runs one handler. Handler failures are logged only: socket
// events have no response contract, and one bad event (or a panicking
// handler) must not end the session.
func (s *Server) dispatchFrame(client *Client, frame *Frame) {
	defer safe.Recover("ws.dispatch")
	ctx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer cancel()
	if err := s.disp.Dispatch(ctx, client, frame); err != nil {
		logger.Errorf("[WS] handler err event=%s user=%s err=%v", frame.Event, client.UserID, err)
	}
}

// EmitToUser pushes one event to the user's live connection, if any. Returns
// false when the user is offline or the frame could not be queued.
func (s *Server) EmitToUser(userID, event string, payload any) bool {
	client, ok := s.reg.Lookup(userID)
	if !ok {
		return false
	}
	data, err := BuildFrame(event, payload)
	if err != nil {
		logger.Errorf("[WS] build frame err event=%s err=%v", event, err)
		return false
	}
	return client.Enqueue(data)
}

// BroadcastAll fans one event out to every connected client, dropping frames
// for clients whose queues are full.
func (s *Server) BroadcastAll(event string, payload any) {
	data, err := BuildFrame(event, payload)
	if err != nil {
		logger.Errorf("[WS] build frame err event=%s err=%v", event, err)
		return
	}
	for _, client := range s.reg.Snapshot() {
		client.Enqueue(data)
	}
}

// BroadcastOnlineUsers pushes the full online set to everyone.
func (s *Server) BroadcastOnlineUsers() {
	s.BroadcastAll(EventOnlineUsers, s.reg.ListOnline())
}

// Close shuts every live connection down; used on graceful shutdown.
func (s *Server) Close() {
	s.closeOnce.Do(func() {
		close(s.closed)
		for _, client := range s.reg.Snapshot() {
			s.reg.Unregister(client.UserID, client.ConnID)
			client.Close()
		}
	})
}
