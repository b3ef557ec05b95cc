package transport

import (
	"context"
	"fmt"
	"time"

	"github.com/gorilla/websocket"
	"go.uber.org/zap"
)

const DefaultWebsocketURL = "ws://localhost:8080/3d-ws"

// Websocket speaks to the engine over a single connection: commands go out
// as text frames and every frame read is a snapshot.
type Websocket struct {
	url    string
	dialer *websocket.Dialer
	logger *zap.Logger
}

func NewWebsocket(url string, logger *zap.Logger) *Websocket {
	if url == "" {
		url = DefaultWebsocketURL
	}
	if logger == nil {
		logger = zap.NewNop()
	}
	return &Websocket{
		url: url,
		dialer: &websocket.Dialer{
			ReadBufferSize:   1024,
			WriteBufferSize:  1024,
			HandshakeTimeout: 10 * time.Second,
		},
		logger: logger,
	}
}

func (w *Websocket) Run(ctx context.Context, outbox <-chan string, inbox chan<- []byte) error {
	ws, _, err := w.dialer.DialContext(ctx, w.url, nil)
	if err != nil {
		if ctx.Err() != nil {
			return nil
		}
		return fmt.Errorf("transport: dial %s: %w", w.url, err)
	}
	defer ws.Close()
	w.logger.Info("connected", zap.String("url", w.url))

	readErr := make(chan error, 1)
	go func() {
		for {
			_, p, err := ws.ReadMessage()
			if err != nil {
				readErr <- err
				return
			}
			if !deliver(ctx, inbox, p) {
				readErr <- nil
				return
			}
		}
	}()

	for {
		select {
		case <-ctx.Done():
			closing := websocket.FormatCloseMessage(websocket.CloseNormalClosure, "")
			_ = ws.WriteControl(websocket.CloseMessage, closing, time.Now().Add(time.Second))
			ws.Close()
			<-readErr
			return nil

		case text, ok := <-outbox:
			if !ok {
				ws.Close()
				<-readErr
				return nil
			}
			if err := ws.WriteMessage(websocket.TextMessage, []byte(text)); err != nil {
				ws.Close()
				<-readErr
				return fmt.Errorf("transport: websocket write: %w", err)
			}

		case err := <-readErr:
			if ctx.Err() != nil || err == nil {
				return nil
			}
			return fmt.Errorf("transport: websocket read: %w", err)
		}
	}
}

func (w *Websocket) Publish(ctx context.Context, text string) error {
	ws, _, err := w.dialer.DialContext(ctx, w.url, nil)
	if err != nil {
		return fmt.Errorf("transport: dial %s: %w", w.url, err)
	}
	defer ws.Close()
	if err := ws.WriteMessage(websocket.TextMessage, []byte(text)); err != nil {
		return fmt.Errorf("transport: websocket write: %w", err)
	}
	closing := websocket.FormatCloseMessage(websocket.CloseNormalClosure, "")
	_ = ws.WriteControl(websocket.CloseMessage, closing, time.Now().Add(time.Second))
	return nil
}
