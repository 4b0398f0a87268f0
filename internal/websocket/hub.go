package websocket

import (
	"context"
	"encoding/json"
	"errors"
	"log/slog"
	"net/http"
	"sync"
	"time"

	"github.com/gorilla/websocket"

	"github.com/Krimson/ctg-analyzer/pkg/models"
)

// Типы сообщений ленты
const (
	MessageSegment         = "segment"
	MessageReplayDone      = "replay_done"
	MessageRecordingLoaded = "recording_loaded"
	MessageError           = "error"
)

// SummarySource отдает итоги по сегментам записи
type SummarySource interface {
	TotalSegments(ctx context.Context, handle string) (int, error)
	SegmentSummary(ctx context.Context, handle string, index int) (models.SegmentSummary, error)
}

// Message - сообщение, отправляемое клиенту
type Message struct {
	Type      string                   `json:"type"`
	Handle    string                   `json:"handle,omitempty"`
	Segment   *models.SegmentSummary   `json:"segment,omitempty"`
	Recording *models.RecordingSummary `json:"recording,omitempty"`
	Error     string                   `json:"error,omitempty"`
}

// Hub управляет WebSocket соединениями
type Hub struct {
	source SummarySource
	logger *slog.Logger

	// Пауза между сегментами при воспроизведении
	replayInterval time.Duration

	// Зарегистрированные клиенты
	clients map[*Client]bool
	mu      sync.RWMutex

	register   chan *Client
	unregister chan *Client
	broadcast  chan []byte

	// Закрывается, когда Run завершился
	stopped chan struct{}
	readers sync.WaitGroup
}

// Client представляет WebSocket клиента
type Client struct {
	hub  *Hub
	conn *websocket.Conn

	// Буферизованный канал исходящих сообщений
	send chan []byte
	// Закрывается, когда writePump завершился
	done chan struct{}

	handle string
}

var upgrader = websocket.Upgrader{
	CheckOrigin: func(r *http.Request) bool {
		return true
	},
}

// NewHub создает новый Hub
func NewHub(source SummarySource, replayInterval time.Duration, logger *slog.Logger) *Hub {
	if logger == nil {
		logger = slog.Default()
	}
	return &Hub{
		source:         source,
		logger:         logger.With("component", "websocket"),
		replayInterval: replayInterval,
		clients:        make(map[*Client]bool),
		register:       make(chan *Client),
		unregister:     make(chan *Client),
		broadcast:      make(chan []byte, 64),
		stopped:        make(chan struct{}),
	}
}

// Run обслуживает регистрацию клиентов и рассылку до отмены контекста
func (h *Hub) Run(ctx context.Context) {
	defer close(h.stopped)

	for {
		select {
		case <-ctx.Done():
			h.mu.Lock()
			for client := range h.clients {
				delete(h.clients, client)
				close(client.send)
			}
			h.mu.Unlock()
			return

		case client := <-h.register:
			h.mu.Lock()
			h.clients[client] = true
			h.mu.Unlock()
			h.logger.Debug("client registered", "handle", client.handle)

		case client := <-h.unregister:
			h.mu.Lock()
			if _, ok := h.clients[client]; ok {
				delete(h.clients, client)
				close(client.send)
			}
			h.mu.Unlock()
			h.logger.Debug("client unregistered", "handle", client.handle)

		case message := <-h.broadcast:
			h.mu.Lock()
			for client := range h.clients {
				select {
				case client.send <- message:
				default:
					delete(h.clients, client)
					close(client.send)
				}
			}
			h.mu.Unlock()
		}
	}
}

// SetSource задает источник итогов; вызывается до начала обслуживания клиентов
func (h *Hub) SetSource(source SummarySource) {
	h.mu.Lock()
	defer h.mu.Unlock()
	h.source = source
}

// ClientCount возвращает число подключенных клиентов
func (h *Hub) ClientCount() int {
	h.mu.RLock()
	defer h.mu.RUnlock()
	return len(h.clients)
}

// PublishSummary рассылает сводку по новой записи всем клиентам
func (h *Hub) PublishSummary(summary models.RecordingSummary) error {
	message, err := json.Marshal(Message{
		Type:      MessageRecordingLoaded,
		Handle:    summary.Handle,
		Recording: &summary,
	})
	if err != nil {
		return err
	}

	select {
	case h.broadcast <- message:
	default:
		h.logger.Warn("broadcast channel full, dropping message", "handle", summary.Handle)
	}
	return nil
}

// Close нужен для совместимости с notify.Publisher; соединения закрывает Run
func (h *Hub) Close() error {
	return nil
}

// HandleWebSocket подключает клиента. С параметром handle клиент сначала получает
// итоги всех сегментов записи по порядку, затем подписывается на рассылку.
func (h *Hub) HandleWebSocket(w http.ResponseWriter, r *http.Request) {
	conn, err := upgrader.Upgrade(w, r, nil)
	if err != nil {
		h.logger.Error("failed to upgrade connection", "error", err)
		return
	}

	client := &Client{
		hub:    h,
		conn:   conn,
		send:   make(chan []byte, 256),
		done:   make(chan struct{}),
		handle: r.URL.Query().Get("handle"),
	}

	go client.writePump()

	if client.handle != "" {
		if err := h.replay(r.Context(), client); err != nil {
			h.logger.Warn("replay aborted", "handle", client.handle, "error", err)
			client.enqueue(Message{Type: MessageError, Handle: client.handle, Error: err.Error()})
			close(client.send)
			return
		}
	}

	select {
	case h.register <- client:
	case <-h.stopped:
		close(client.send)
		return
	}

	h.readers.Add(1)
	go client.readPump()
}

// ServeHTTP позволяет монтировать Hub как http.Handler
func (h *Hub) ServeHTTP(w http.ResponseWriter, r *http.Request) {
	h.HandleWebSocket(w, r)
}

func (h *Hub) replay(ctx context.Context, c *Client) error {
	h.mu.RLock()
	source := h.source
	h.mu.RUnlock()
	if source == nil {
		return errors.New("replay source is not configured")
	}

	total, err := source.TotalSegments(ctx, c.handle)
	if err != nil {
		return err
	}

	for i := 0; i < total; i++ {
		summary, err := source.SegmentSummary(ctx, c.handle, i)
		if err != nil {
			return err
		}
		if !c.enqueue(Message{Type: MessageSegment, Handle: c.handle, Segment: &summary}) {
			return nil
		}

		if h.replayInterval > 0 && i < total-1 {
			select {
			case <-time.After(h.replayInterval):
			case <-c.done:
				return nil
			case <-ctx.Done():
				return ctx.Err()
			}
		}
	}

	c.enqueue(Message{Type: MessageReplayDone, Handle: c.handle})
	return nil
}

// enqueue ставит сообщение в очередь клиента; false, если клиент уже отключен
func (c *Client) enqueue(msg Message) bool {
	data, err := json.Marshal(msg)
	if err != nil {
		c.hub.logger.Error("failed to marshal message", "error", err)
		return false
	}

	select {
	case c.send <- data:
		return true
	case <-c.done:
		return false
	}
}

// readPump читает входящие сообщения, чтобы заметить закрытие соединения
func (c *Client) readPump() {
	defer func() {
		select {
		case c.hub.unregister <- c:
		case <-c.hub.stopped:
		}
		c.conn.Close()
		c.hub.readers.Done()
	}()

	for {
		if _, _, err := c.conn.ReadMessage(); err != nil {
			if websocket.IsUnexpectedCloseError(err, websocket.CloseGoingAway, websocket.CloseAbnormalClosure) {
				c.hub.logger.Warn("websocket read error", "error", err)
			}
			return
		}
	}
}

// writePump отправляет сообщения клиенту
func (c *Client) writePump() {
	defer func() {
		close(c.done)
		c.conn.Close()
	}()

	for message := range c.send {
		if err := c.conn.WriteMessage(websocket.TextMessage, message); err != nil {
			c.hub.logger.Warn("failed to write message", "error", err)
			return
		}
	}
	c.conn.WriteMessage(websocket.CloseMessage, []byte{})
}
