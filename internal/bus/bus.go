package bus

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"log/slog"
	"net/url"
	"strings"
	"sync"
	"time"

	"github.com/gorilla/websocket"
)

const (
	KindUtterance = "utterance"
	KindReply     = "reply"

	// Broadcast addresses every listener.
	Broadcast = "*"
)

var ErrClosed = errors.New("bus connection closed")

type Message struct {
	From    string `json:"from"`
	To      string `json:"to"`
	Kind    string `json:"kind"`
	Content string `json:"content"`
	Status  string `json:"status,omitempty"`
}

// Bus is one websocket connection to the message bus. Writes are
// serialized; reads must come from a single goroutine.
type Bus struct {
	conn *websocket.Conn
	mu   sync.Mutex
}

func parseURL(rawURL string) (*url.URL, error) {
	u, err := url.Parse(strings.TrimSpace(rawURL))
	if err != nil {
		return nil, fmt.Errorf("invalid bus url: %w", err)
	}
	if u.Scheme != "ws" && u.Scheme != "wss" {
		return nil, fmt.Errorf("invalid bus url %q: scheme must be ws or wss", rawURL)
	}
	return u, nil
}

func Dial(ctx context.Context, rawURL string) (*Bus, error) {
	u, err := parseURL(rawURL)
	if err != nil {
		return nil, err
	}
	conn, _, err := websocket.DefaultDialer.DialContext(ctx, u.String(), nil)
	if err != nil {
		return nil, fmt.Errorf("dial bus: %w", err)
	}
	return &Bus{conn: conn}, nil
}

func (b *Bus) Read() (Message, error) {
	_, payload, err := b.conn.ReadMessage()
	if err != nil {
		if isClosed(err) {
			return Message{}, fmt.Errorf("%w: %v", ErrClosed, err)
		}
		return Message{}, err
	}
	var m Message
	if err := json.Unmarshal(payload, &m); err != nil {
		return Message{}, fmt.Errorf("decode bus message: %w", err)
	}
	return m, nil
}

func (b *Bus) Write(m Message) error {
	data, err := json.Marshal(m)
	if err != nil {
		return err
	}
	b.mu.Lock()
	defer b.mu.Unlock()
	return b.conn.WriteMessage(websocket.TextMessage, data)
}

func (b *Bus) Close() error {
	b.mu.Lock()
	defer b.mu.Unlock()
	_ = b.conn.WriteControl(websocket.CloseMessage,
		websocket.FormatCloseMessage(websocket.CloseNormalClosure, ""),
		time.Now().Add(time.Second))
	return b.conn.Close()
}

func isClosed(err error) bool {
	return websocket.IsCloseError(err,
		websocket.CloseNormalClosure,
		websocket.CloseGoingAway,
		websocket.CloseAbnormalClosure) || errors.Is(err, websocket.ErrCloseSent)
}

type Handler func(ctx context.Context, text string) (reply string, status string)

func Serve(ctx context.Context, b *Bus, name string, handle Handler, logger *slog.Logger) error {
	if logger == nil {
		logger = slog.Default()
	}
	stop := context.AfterFunc(ctx, func() { _ = b.Close() })
	defer stop()

	for {
		m, err := b.Read()
		if err != nil {
			if ctx.Err() != nil {
				return ctx.Err()
			}
			if errors.Is(err, ErrClosed) {
				return err
			}
			var syntax *json.SyntaxError
			var typeErr *json.UnmarshalTypeError
			if errors.As(err, &syntax) || errors.As(err, &typeErr) {
				logger.Warn("skipping malformed bus message", "error", err)
				continue
			}
			return err
		}
		if m.Kind != KindUtterance || !addressed(m.To, name) {
			continue
		}
		text := strings.TrimSpace(m.Content)
		if text == "" {
			continue
		}

		logger.Debug("bus utterance", "from", m.From, "text", text)
		reply, status := handle(ctx, text)
		if err := b.Write(Message{From: name, To: m.From, Kind: KindReply, Content: reply, Status: status}); err != nil {
			if ctx.Err() != nil {
				return ctx.Err()
			}
			return fmt.Errorf("write reply: %w", err)
		}
	}
}

func addressed(to, name string) bool {
	to = strings.TrimSpace(to)
	return to == "" || to == Broadcast || strings.EqualFold(to, name)
}

func Run(ctx context.Context, rawURL, name string, handle Handler, retry time.Duration, logger *slog.Logger) error {
	if logger == nil {
		logger = slog.Default()
	}
	if retry <= 0 {
		retry = 2 * time.Second
	}
	if _, err := parseURL(rawURL); err != nil {
		return err
	}
	for {
		b, err := Dial(ctx, rawURL)
		if err == nil {
			logger.Info("connected to bus", "url", rawURL, "name", name)
			err = Serve(ctx, b, name, handle, logger)
			_ = b.Close()
		}
		if ctx.Err() != nil {
			return ctx.Err()
		}
		logger.Warn("bus connection lost, retrying", "error", err, "retry", retry)

		timer := time.NewTimer(retry)
		select {
		case <-ctx.Done():
			timer.Stop()
			return ctx.Err()
		case <-timer.C:
		}
	}
}
