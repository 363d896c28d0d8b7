package server

import (
	"bytes"
	"context"
	"encoding/json"
	"math/rand/v2"
	"net/http"
	"strconv"
	"strings"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/gorilla/websocket"
	"go.uber.org/zap"
	"golang.org/x/time/rate"

	"github.com/Zachkp/netfield/internal/field"
	"github.com/Zachkp/netfield/internal/logger"
)

// Stream timings, following the gorilla chat example.
const (
	writeWait      = 10 * time.Second
	pongWait       = 60 * time.Second
	pingPeriod     = 54 * time.Second
	maxMessageSize = 4096
)

// Surface size limits for streamed and rendered backdrops.
const (
	defaultWidth  = 1280
	defaultHeight = 720
	maxDimension  = 4096
	maxStillSide  = 2048
	maxStillTicks = 2000
)

// clientMessage is sent by the page.
type clientMessage struct {
	Type   string `json:"type"`
	Width  int    `json:"width,omitempty"`
	Height int    `json:"height,omitempty"`
}

// frameMessage wraps a recorded frame for the page.
type frameMessage struct {
	Type    string      `json:"type"`
	Session string      `json:"session"`
	Frame   field.Frame `json:"frame"`
}

func (s *Server) upgrader() websocket.Upgrader {
	return websocket.Upgrader{
		ReadBufferSize:  1024,
		WriteBufferSize: 16 * 1024,
		CheckOrigin:     s.checkOrigin,
	}
}

// checkOrigin accepts same-host pages, configured origins and clients that
// send no Origin header at all.
func (s *Server) checkOrigin(r *http.Request) bool {
	origin := r.Header.Get("Origin")
	if origin == "" {
		return true
	}
	if origin == "http://"+r.Host || origin == "https://"+r.Host {
		return true
	}
	for _, allowed := range s.cfg.Server.AllowedOrigins {
		if strings.HasPrefix(origin, allowed) {
			return true
		}
	}
	return false
}

// handleBackdropStream mounts a backdrop for the lifetime of one websocket.
func (s *Server) handleBackdropStream(c *gin.Context) {
	if limit := s.cfg.Backdrop.MaxSessions; limit > 0 && s.stats.active() >= limit {
		c.JSON(http.StatusServiceUnavailable, gin.H{"error": "too many backdrop sessions"})
		return
	}

	w := dimension(c.Query("w"), defaultWidth, maxDimension)
	h := dimension(c.Query("h"), defaultHeight, maxDimension)

	up := s.upgrader()
	conn, err := up.Upgrade(c.Writer, c.Request, nil)
	if err != nil {
		s.log.Debugw("websocket upgrade failed", logger.FieldError, err)
		return
	}

	cl := &streamClient{
		srv:      s,
		conn:     conn,
		viewport: field.NewViewport(w, h),
		frames:   make(chan field.Frame, 2),
		resizes:  rate.NewLimiter(rate.Every(100*time.Millisecond), 4),
	}
	cl.serve()
}

type streamClient struct {
	srv      *Server
	conn     *websocket.Conn
	viewport *field.Viewport
	frames   chan field.Frame
	resizes  *rate.Limiter
	log      *zap.SugaredLogger
	id       string
}

func (cl *streamClient) serve() {
	s := cl.srv
	rec := field.NewRecorder(0, 0, cl.offer)
	sess, err := field.Start(rec, s.backdropConfig(),
		field.WithViewport(cl.viewport),
		field.WithFPS(s.cfg.Backdrop.FPS),
		field.WithLogger(s.log),
	)
	if err != nil {
		s.log.Errorw("backdrop start failed", logger.FieldError, err)
		cl.conn.Close()
		return
	}
	cl.id = sess.ID()
	cl.log = s.log.With(logger.FieldSessionID, cl.id)

	s.stats.add(sess, cl.viewport)
	w, h := cl.viewport.Size()
	cl.log.Infow("backdrop mounted", logger.FieldWidth, w, logger.FieldHeight, h, "state", sess.State().String())

	ctx, cancel := context.WithCancel(s.ctx)
	writerDone := make(chan struct{})
	go func() {
		defer close(writerDone)
		cl.writePump(ctx)
	}()

	cl.readPump(ctx)

	cancel()
	sess.Stop()
	<-writerDone
	cl.conn.Close()
	s.stats.remove(cl.id)
	cl.log.Infow("backdrop unmounted", "ticks", sess.Ticks())
}

// offer runs on the session goroutine. A slow socket loses frames rather
// than stalling the simulation.
func (cl *streamClient) offer(f field.Frame) {
	select {
	case cl.frames <- f:
	default:
		cl.srv.stats.dropped.Add(1)
	}
}

func (cl *streamClient) readPump(ctx context.Context) {
	cl.conn.SetReadLimit(maxMessageSize)
	cl.conn.SetReadDeadline(time.Now().Add(pongWait))
	cl.conn.SetPongHandler(func(string) error {
		return cl.conn.SetReadDeadline(time.Now().Add(pongWait))
	})

	// Unblock ReadMessage when the server shuts down.
	stop := context.AfterFunc(ctx, func() {
		cl.conn.SetReadDeadline(time.Now())
	})
	defer stop()

	for {
		_, raw, err := cl.conn.ReadMessage()
		if err != nil {
			if websocket.IsUnexpectedCloseError(err,
				websocket.CloseGoingAway,
				websocket.CloseNormalClosure,
				websocket.CloseNoStatusReceived,
			) && ctx.Err() == nil {
				cl.log.Debugw("backdrop stream read error", logger.FieldError, err)
			}
			return
		}

		var msg clientMessage
		if err := json.Unmarshal(raw, &msg); err != nil {
			cl.log.Debugw("bad client message", logger.FieldError, err)
			continue
		}
		cl.route(msg)
	}
}

func (cl *streamClient) route(msg clientMessage) {
	switch msg.Type {
	case "resize":
		if msg.Width <= 0 || msg.Height <= 0 {
			return
		}
		if !cl.resizes.Allow() {
			cl.log.Debugw("resize rate limited")
			return
		}
		cl.viewport.Resize(min(msg.Width, maxDimension), min(msg.Height, maxDimension))
	case "ping":
	default:
		cl.log.Debugw("unknown message type", "type", msg.Type)
	}
}

func (cl *streamClient) writePump(ctx context.Context) {
	ticker := time.NewTicker(pingPeriod)
	defer ticker.Stop()

	for {
		select {
		case <-ctx.Done():
			cl.conn.SetWriteDeadline(time.Now().Add(writeWait))
			_ = cl.conn.WriteMessage(websocket.CloseMessage,
				websocket.FormatCloseMessage(websocket.CloseGoingAway, "backdrop stopped"))
			return
		case f := <-cl.frames:
			cl.conn.SetWriteDeadline(time.Now().Add(writeWait))
			if err := cl.conn.WriteJSON(frameMessage{Type: "frame", Session: cl.id, Frame: f}); err != nil {
				cl.log.Debugw("frame write failed", logger.FieldError, err)
				// Unblocks readPump, which tears the session down.
				cl.conn.Close()
				return
			}
			cl.srv.stats.sent.Add(1)
		case <-ticker.C:
			cl.conn.SetWriteDeadline(time.Now().Add(writeWait))
			if err := cl.conn.WriteMessage(websocket.PingMessage, nil); err != nil {
				cl.conn.Close()
				return
			}
		}
	}
}

// handleBackdropPNG renders a still of the field.
func (s *Server) handleBackdropPNG(c *gin.Context) {
	w := dimension(c.Query("w"), defaultWidth, maxStillSide)
	h := dimension(c.Query("h"), defaultHeight, maxStillSide)
	ticks := dimension(c.Query("ticks"), 120, maxStillTicks)

	var rng *rand.Rand
	if raw := c.Query("seed"); raw != "" {
		seed, err := strconv.ParseUint(raw, 10, 64)
		if err != nil {
			c.JSON(http.StatusBadRequest, gin.H{"error": "seed must be an unsigned integer"})
			return
		}
		rng = rand.New(rand.NewPCG(seed, seed^0x9e3779b97f4a7c15))
	}

	r, err := field.RenderStill(w, h, s.backdropConfig(), ticks, rng, field.DefaultStyle())
	if err != nil {
		s.log.Errorw("render still failed", logger.FieldError, err)
		c.JSON(http.StatusInternalServerError, gin.H{"error": "render failed"})
		return
	}

	var buf bytes.Buffer
	if err := r.EncodePNG(&buf); err != nil {
		s.log.Errorw("encode still failed", logger.FieldError, err)
		c.JSON(http.StatusInternalServerError, gin.H{"error": "render failed"})
		return
	}
	c.Header("Cache-Control", "no-store")
	c.Data(http.StatusOK, "image/png", buf.Bytes())
}

// dimension parses a positive integer query value, falling back to def and
// capping at limit.
func dimension(raw string, def, limit int) int {
	n, err := strconv.Atoi(raw)
	if err != nil || n <= 0 {
		return def
	}
	return min(n, limit)
}
