package orderfeed

import (
	"context"
	"fmt"
	"sync"
	"time"

	json "github.com/goccy/go-json"
	"github.com/gorilla/websocket"
	"go.uber.org/zap"

	"github.com/polybridge/clob-bridge/pkg/types"
)

// Order lifecycle event types on the user channel.
const (
	EventPlacement    = "PLACEMENT"
	EventUpdate       = "UPDATE"
	EventCancellation = "CANCELLATION"
)

// OrderEvent is one order lifecycle message from the user channel.
type OrderEvent struct {
	EventType   string `json:"event_type"` // "order" or "trade"
	Type        string `json:"type"`       // PLACEMENT, UPDATE, CANCELLATION
	OrderID     string `json:"id"`
	Market      string `json:"market"`
	AssetID     string `json:"asset_id"`
	Side        string `json:"side"`
	Price       string `json:"price"`
	Status      string `json:"status"`
	SizeMatched string `json:"size_matched"`
	Timestamp   string `json:"timestamp"`
}

// Config holds user channel connection parameters.
type Config struct {
	URL         string
	Credentials types.APICredentials
	DialTimeout time.Duration
	BufferSize  int
	Logger      *zap.Logger
}

// Feed is a one-shot subscription to the venue's authenticated user channel.
// It connects, authenticates with derived API credentials, and streams order
// lifecycle events until closed. There is no reconnect: callers watching a
// single order re-dial if the connection drops.
type Feed struct {
	config Config
	logger *zap.Logger

	mu     sync.Mutex
	conn   *websocket.Conn
	events chan *OrderEvent

	ctx    context.Context
	cancel context.CancelFunc
	wg     sync.WaitGroup
}

// New creates an unconnected feed.
func New(cfg Config) *Feed {
	if cfg.DialTimeout == 0 {
		cfg.DialTimeout = 10 * time.Second
	}
	if cfg.BufferSize == 0 {
		cfg.BufferSize = 64
	}

	logger := cfg.Logger
	if logger == nil {
		logger = zap.NewNop()
	}

	ctx, cancel := context.WithCancel(context.Background())

	return &Feed{
		config: cfg,
		logger: logger,
		events: make(chan *OrderEvent, cfg.BufferSize),
		ctx:    ctx,
		cancel: cancel,
	}
}

// Connect dials the user channel, sends the authenticated subscription, and
// starts streaming events.
func (f *Feed) Connect(ctx context.Context) error {
	dialer := websocket.Dialer{HandshakeTimeout: f.config.DialTimeout}

	conn, _, err := dialer.DialContext(ctx, f.config.URL, nil)
	if err != nil {
		return fmt.Errorf("dial user channel: %w", err)
	}

	subscribeMsg := map[string]interface{}{
		"type":    "user",
		"markets": []string{},
		"auth": map[string]string{
			"apiKey":     f.config.Credentials.Key,
			"secret":     f.config.Credentials.Secret,
			"passphrase": f.config.Credentials.Passphrase,
		},
	}

	if err := conn.WriteJSON(subscribeMsg); err != nil {
		conn.Close()
		return fmt.Errorf("write user subscription: %w", err)
	}

	f.mu.Lock()
	f.conn = conn
	f.mu.Unlock()

	f.logger.Info("user-channel-connected", zap.String("url", f.config.URL))

	f.wg.Add(1)
	go f.readLoop()

	return nil
}

// Events returns the stream of order lifecycle events. The channel closes
// when the connection ends.
func (f *Feed) Events() <-chan *OrderEvent {
	return f.events
}

// WaitFor blocks until an event for orderID arrives, the stream ends, or ctx
// expires.
func (f *Feed) WaitFor(ctx context.Context, orderID string) (*OrderEvent, error) {
	for {
		select {
		case <-ctx.Done():
			return nil, ctx.Err()
		case event, ok := <-f.events:
			if !ok {
				return nil, fmt.Errorf("user channel closed before order %s was seen", orderID)
			}
			if event.OrderID == orderID {
				return event, nil
			}
		}
	}
}

func (f *Feed) readLoop() {
	defer f.wg.Done()
	defer close(f.events)

	for {
		select {
		case <-f.ctx.Done():
			return
		default:
		}

		f.mu.Lock()
		conn := f.conn
		f.mu.Unlock()

		_, message, err := conn.ReadMessage()
		if err != nil {
			f.logger.Warn("user-channel-read-error", zap.Error(err))
			return
		}

		for _, event := range parseEvents(message) {
			EventsReceivedTotal.WithLabelValues(event.Type).Inc()

			select {
			case f.events <- event:
			case <-f.ctx.Done():
				return
			}
		}
	}
}

// parseEvents extracts order events from a raw frame. The venue sends both
// single objects and arrays; anything that is not an order event (trade
// messages, heartbeats, subscription acks) is skipped.
func parseEvents(message []byte) []*OrderEvent {
	var batch []OrderEvent
	if err := json.Unmarshal(message, &batch); err != nil {
		var single OrderEvent
		if err := json.Unmarshal(message, &single); err != nil {
			return nil
		}
		batch = []OrderEvent{single}
	}

	events := make([]*OrderEvent, 0, len(batch))
	for i := range batch {
		if batch[i].EventType != "order" {
			continue
		}
		events = append(events, &batch[i])
	}
	return events
}

// Close tears down the connection and waits for the read loop to exit.
func (f *Feed) Close() error {
	f.cancel()

	f.mu.Lock()
	if f.conn != nil {
		f.conn.Close()
	}
	f.mu.Unlock()

	f.wg.Wait()
	return nil
}
