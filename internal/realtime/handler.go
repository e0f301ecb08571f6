package realtime

import (
	"context"
	"net/http"
	"strings"
	"sync"
	"sync/atomic"
	"time"
	"unicode/utf8"

	"github.com/gin-gonic/gin"
	"github.com/gorilla/websocket"
	"github.com/rs/zerolog/log"

	"github.com/jwalitptl/clinic-directory/internal/handler"
	"github.com/jwalitptl/clinic-directory/internal/model"
	"github.com/jwalitptl/clinic-directory/internal/service/booking"
	"github.com/jwalitptl/clinic-directory/internal/service/search"
	"github.com/jwalitptl/clinic-directory/pkg/debounce"
)

const (
	writeWait      = 10 * time.Second
	pongWait       = 60 * time.Second
	pingPeriod     = (pongWait * 9) / 10
	maxInboundSize = 1024
)

type Config struct {
	// AllowedOrigins limits the Origin header on upgrade. "*" or an empty
	// list accepts any origin.
	AllowedOrigins []string
	Debounce       time.Duration
}

type Handler struct {
	hub      *Hub
	bookings booking.BookingServicer
	search   search.SearchServicer
	cfg      Config
	upgrader websocket.Upgrader
	guard    []gin.HandlerFunc
}

// NewHandler builds the websocket endpoints. guard runs before the booking
// feed upgrade and must attach a principal.
func NewHandler(hub *Hub, bookings booking.BookingServicer, searchSvc search.SearchServicer, cfg Config, guard ...gin.HandlerFunc) *Handler {
	h := &Handler{
		hub:      hub,
		bookings: bookings,
		search:   searchSvc,
		cfg:      cfg,
		guard:    guard,
	}
	h.upgrader = websocket.Upgrader{
		ReadBufferSize:  1024,
		WriteBufferSize: 1024,
		CheckOrigin:     h.checkOrigin,
	}
	return h
}

func (h *Handler) RegisterRoutes(rg *gin.RouterGroup) {
	ws := rg.Group("/ws")
	{
		ws.GET("/bookings", handler.Chain(h.guard, h.Bookings)...)
		ws.GET("/search", h.Search)
	}
}

func (h *Handler) checkOrigin(r *http.Request) bool {
	origin := r.Header.Get("Origin")
	if origin == "" || len(h.cfg.AllowedOrigins) == 0 {
		return true
	}
	for _, allowed := range h.cfg.AllowedOrigins {
		if allowed == "*" || strings.EqualFold(allowed, origin) {
			return true
		}
	}
	return false
}

type bookingFrame struct {
	Type     string           `json:"type"`
	Op       model.BookingOp  `json:"op,omitempty"`
	Booking  *model.Booking   `json:"booking,omitempty"`
	Bookings []*model.Booking `json:"bookings,omitempty"`
}

// Bookings streams the caller's clinic bookings: one snapshot frame, then a
// change frame for every event that alters the view.
func (h *Handler) Bookings(c *gin.Context) {
	clinicID, ok := handler.ClinicScope(c)
	if !ok {
		return
	}

	// Subscribe before reading the snapshot so no change falls in between.
	// Replayed events are absorbed by the feed's last-write-wins merge.
	sub := h.hub.register(clinicID)
	defer h.hub.unregister(sub)

	page, err := h.bookings.List(c.Request.Context(), clinicID, &model.BookingFilter{
		Pagination: model.Pagination{Page: 1, PageSize: model.MaxPageSize},
	})
	if err != nil {
		handler.RespondError(c, err)
		return
	}

	conn, err := h.upgrader.Upgrade(c.Writer, c.Request, nil)
	if err != nil {
		log.Debug().Err(err).Msg("booking feed upgrade failed")
		return
	}
	defer conn.Close()

	serveBookings(conn, NewFeed(page.Items), sub)
}

func serveBookings(conn *websocket.Conn, feed *Feed, sub *subscriber) {
	closed := make(chan struct{})
	go func() {
		defer close(closed)
		conn.SetReadLimit(maxInboundSize)
		_ = conn.SetReadDeadline(time.Now().Add(pongWait))
		conn.SetPongHandler(func(string) error {
			return conn.SetReadDeadline(time.Now().Add(pongWait))
		})
		for {
			if _, _, err := conn.ReadMessage(); err != nil {
				return
			}
		}
	}()

	write := func(f bookingFrame) error {
		_ = conn.SetWriteDeadline(time.Now().Add(writeWait))
		return conn.WriteJSON(f)
	}

	if err := write(bookingFrame{Type: "snapshot", Bookings: feed.Rows()}); err != nil {
		return
	}

	ticker := time.NewTicker(pingPeriod)
	defer ticker.Stop()

	for {
		select {
		case <-closed:
			return

		case ev, ok := <-sub.events:
			if !ok {
				_ = conn.WriteControl(websocket.CloseMessage,
					websocket.FormatCloseMessage(websocket.CloseGoingAway, "feed closed"),
					time.Now().Add(writeWait))
				return
			}
			if !feed.Merge(ev) {
				continue
			}
			if err := write(bookingFrame{Type: "change", Op: ev.Op, Booking: ev.Booking}); err != nil {
				return
			}

		case <-ticker.C:
			if err := conn.WriteControl(websocket.PingMessage, nil, time.Now().Add(writeWait)); err != nil {
				return
			}
		}
	}
}

type searchRequest struct {
	Q     string `json:"q"`
	Limit int    `json:"limit"`
}

type searchFrame struct {
	Type    string                `json:"type"`
	Q       string                `json:"q"`
	Results []*model.SearchResult `json:"results"`
	Message string                `json:"message,omitempty"`
}

// Search runs a typeahead session. Every inbound {q, limit} frame supersedes
// the previous one; only the latest query that stays quiet for the debounce
// window reaches the search procedure.
func (h *Handler) Search(c *gin.Context) {
	conn, err := h.upgrader.Upgrade(c.Writer, c.Request, nil)
	if err != nil {
		log.Debug().Err(err).Msg("search session upgrade failed")
		return
	}
	defer conn.Close()

	gauge := h.hub.metrics.WebsocketClients.WithLabelValues(feedSearch)
	gauge.Inc()
	defer gauge.Dec()

	ctx, cancel := context.WithCancel(c.Request.Context())
	defer cancel()

	var mu sync.Mutex
	write := func(f searchFrame) error {
		mu.Lock()
		defer mu.Unlock()
		_ = conn.SetWriteDeadline(time.Now().Add(writeWait))
		return conn.WriteJSON(f)
	}

	var limit atomic.Int64
	minLen := h.search.MinQueryLen()

	runner := debounce.New(ctx, h.cfg.Debounce, minLen,
		func(ctx context.Context, q string) ([]*model.SearchResult, error) {
			return h.search.Search(ctx, q, int(limit.Load()))
		},
		func(q string, results []*model.SearchResult, err error) {
			frame := searchFrame{Type: "results", Q: q, Results: results}
			if err != nil {
				log.Error().Err(err).Str("q", q).Msg("search lookup failed")
				frame = searchFrame{Type: "error", Q: q, Message: "search failed"}
			}
			if werr := write(frame); werr != nil {
				cancel()
			}
		},
	)
	defer runner.Close()

	conn.SetReadLimit(maxInboundSize)
	for {
		var req searchRequest
		if err := conn.ReadJSON(&req); err != nil {
			return
		}
		limit.Store(int64(req.Limit))
		runner.Push(req.Q)

		q := strings.TrimSpace(req.Q)
		if utf8.RuneCountInString(q) < minLen {
			if err := write(searchFrame{Type: "results", Q: q, Results: []*model.SearchResult{}}); err != nil {
				return
			}
		}
	}
}
