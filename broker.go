package main

import (
	"context"
	"encoding/json"
	"fmt"
	"net/http"
	"sync"

	"github.com/segmentio/ksuid"
	"go.uber.org/zap"

	"github.com/Kristof1273/3D-builder/editor"
)

// BrokerMessage is one server-sent event.
type BrokerMessage struct {
	Type     string       `json:"type"`
	ClientId string       `json:"clientId,omitempty"`
	Clients  int          `json:"clients,omitempty"`
	View     *editor.View `json:"view,omitempty"`
}

// Broker fans the latest editor view out to SSE subscribers. Publish never
// blocks the editor; bursts of views coalesce into the newest one.
type Broker struct {
	mu     sync.Mutex
	latest *editor.View

	notify         chan struct{}
	newClients     chan chan []byte
	closingClients chan chan []byte
	clients        map[chan []byte]ksuid.KSUID
	done           chan struct{}

	logger *zap.Logger
}

func NewBroker(logger *zap.Logger) *Broker {
	if logger == nil {
		logger = zap.NewNop()
	}
	return &Broker{
		notify:         make(chan struct{}, 1),
		newClients:     make(chan chan []byte),
		closingClients: make(chan chan []byte),
		clients:        make(map[chan []byte]ksuid.KSUID),
		done:           make(chan struct{}),
		logger:         logger,
	}
}

// Publish records v as the latest view and wakes the fan-out loop.
func (broker *Broker) Publish(v editor.View) {
	broker.mu.Lock()
	broker.latest = &v
	broker.mu.Unlock()

	select {
	case broker.notify <- struct{}{}:
	default:
	}
}

// Latest returns the most recent view, if any was published.
func (broker *Broker) Latest() (editor.View, bool) {
	broker.mu.Lock()
	defer broker.mu.Unlock()
	if broker.latest == nil {
		return editor.View{}, false
	}
	return *broker.latest, true
}

func (broker *Broker) marshal(m BrokerMessage) []byte {
	bytes, err := json.Marshal(m)
	if err != nil {
		broker.logger.Error("encode event", zap.String("type", m.Type), zap.Error(err))
		return nil
	}
	return bytes
}

func (broker *Broker) viewMessage() []byte {
	v, ok := broker.Latest()
	if !ok {
		return nil
	}
	return broker.marshal(BrokerMessage{Type: "view", View: &v})
}

func (broker *Broker) send(client chan []byte, bytes []byte) {
	if bytes == nil {
		return
	}
	select {
	case client <- bytes:
	default:
		broker.logger.Debug("slow subscriber, event dropped", zap.String("clientId", broker.clients[client].String()))
	}
}

// Run owns the subscriber set until ctx is cancelled.
func (broker *Broker) Run(ctx context.Context) error {
	defer close(broker.done)
	for {
		select {
		case <-ctx.Done():
			return nil

		case s := <-broker.newClients:
			clientId := ksuid.New()
			broker.clients[s] = clientId
			broker.send(s, broker.marshal(BrokerMessage{Type: "connected", ClientId: clientId.String(), Clients: len(broker.clients)}))
			broker.send(s, broker.viewMessage())
			broker.logger.Info("client added", zap.String("clientId", clientId.String()), zap.Int("clients", len(broker.clients)))

		case s := <-broker.closingClients:
			clientId := broker.clients[s]
			delete(broker.clients, s)
			broker.logger.Info("client removed", zap.String("clientId", clientId.String()), zap.Int("clients", len(broker.clients)))

		case <-broker.notify:
			bytes := broker.viewMessage()
			for clientMessageChan := range broker.clients {
				broker.send(clientMessageChan, bytes)
			}
		}
	}
}

func (broker *Broker) ServeHTTP(rw http.ResponseWriter, req *http.Request) {
	flusher, ok := rw.(http.Flusher)

	if !ok {
		http.Error(rw, "Streaming unsupported!", http.StatusInternalServerError)
		return
	}

	messageChan := make(chan []byte, 8)
	select {
	case broker.newClients <- messageChan:
	case <-broker.done:
		http.Error(rw, "Shutting down", http.StatusServiceUnavailable)
		return
	case <-req.Context().Done():
		return
	}

	defer func() {
		select {
		case broker.closingClients <- messageChan:
		case <-broker.done:
		}
	}()

	rw.Header().Set("Content-Type", "text/event-stream")
	rw.Header().Set("Cache-Control", "no-cache")
	rw.Header().Set("Connection", "keep-alive")

	for {
		select {
		case m := <-messageChan:
			fmt.Fprintf(rw, "data: %s\n\n", m)
			flusher.Flush()
		case <-req.Context().Done():
			return
		case <-broker.done:
			return
		}
	}
}
