package toast

import (
	"encoding/json"
	"log/slog"
	"net/http"
	"sync"
	"time"

	"github.com/gorilla/websocket"
	"golang.org/x/net/html"
)

const (
	// DefaultHubPath is where the demo server mounts the Hub.
	DefaultHubPath = "/ws"

	// DefaultWriteTimeout bounds each frame write to one client.
	DefaultWriteTimeout = 5 * time.Second
)

// Message is the frame sent to browsers for each emitted event.
type Message struct {
	Type   string `json:"type"`
	Detail any    `json:"detail,omitempty"`
}

// Hub broadcasts toast events to connected browsers over WebSocket.
// It implements Emitter.
type Hub struct {
	clients  map[*websocket.Conn]bool
	mu       sync.RWMutex
	writeMu  sync.Mutex
	upgrader websocket.Upgrader
	logger   *slog.Logger

	writeTimeout time.Duration
}

// HubOption configures a Hub.
type HubOption func(*Hub)

// WithWriteTimeout sets how long a write to one client may block before
// that client is dropped.
func WithWriteTimeout(d time.Duration) HubOption {
	return func(h *Hub) {
		if d > 0 {
			h.writeTimeout = d
		}
	}
}

// NewHub creates a new hub. A nil logger uses slog.Default.
func NewHub(logger *slog.Logger, opts ...HubOption) *Hub {
	if logger == nil {
		logger = slog.Default()
	}
	h := &Hub{
		clients: make(map[*websocket.Conn]bool),
		upgrader: websocket.Upgrader{
			ReadBufferSize:  1024,
			WriteBufferSize: 1024,
			CheckOrigin: func(r *http.Request) bool {
				return true
			},
		},
		logger:       logger,
		writeTimeout: DefaultWriteTimeout,
	}
	for _, opt := range opts {
		opt(h)
	}
	return h
}

// ServeHTTP upgrades the connection and keeps it registered until the
// client disconnects.
func (h *Hub) ServeHTTP(w http.ResponseWriter, req *http.Request) {
	conn, err := h.upgrader.Upgrade(w, req, nil)
	if err != nil {
		h.logger.Warn("websocket upgrade failed", "error", err)
		return
	}

	h.mu.Lock()
	h.clients[conn] = true
	h.mu.Unlock()
	h.logger.Debug("toast client connected", "remote", req.RemoteAddr)

	// Inbound frames are ignored; reading detects the close.
	for {
		if _, _, err := conn.ReadMessage(); err != nil {
			break
		}
	}

	h.mu.Lock()
	delete(h.clients, conn)
	h.mu.Unlock()
	conn.Close()
}

// Emit broadcasts an event to every client.
func (h *Hub) Emit(name string, data any) {
	h.broadcast(Message{Type: name, Detail: data})
}

func (h *Hub) broadcast(msg Message) {
	data, err := json.Marshal(msg)
	if err != nil {
		h.logger.Error("toast event encode failed", "type", msg.Type, "error", err)
		return
	}

	h.mu.RLock()
	clients := make([]*websocket.Conn, 0, len(h.clients))
	for client := range h.clients {
		clients = append(clients, client)
	}
	h.mu.RUnlock()

	// gorilla/websocket allows one concurrent writer per connection. The
	// deadline keeps a stalled client from holding writeMu indefinitely.
	h.writeMu.Lock()
	defer h.writeMu.Unlock()
	for _, client := range clients {
		client.SetWriteDeadline(time.Now().Add(h.writeTimeout))
		if err := client.WriteMessage(websocket.TextMessage, data); err != nil {
			h.logger.Debug("dropping toast client", "remote", client.RemoteAddr(), "error", err)
			h.mu.Lock()
			delete(h.clients, client)
			h.mu.Unlock()
			client.Close()
		}
	}
}

// ClientCount returns the number of connected clients.
func (h *Hub) ClientCount() int {
	h.mu.RLock()
	defer h.mu.RUnlock()
	return len(h.clients)
}

// Close closes all client connections.
func (h *Hub) Close() {
	h.mu.Lock()
	defer h.mu.Unlock()

	for client := range h.clients {
		client.Close()
		delete(h.clients, client)
	}
}

// ClientScript returns the script tag that mirrors hub events as toasts in
// the browser. It connects to the hub at DefaultHubPath. Toasts go into the
// element with the given container id, which the script creates at the end
// of the document when the page does not contain it. An empty id means
// DefaultContainerID.
func ClientScript(containerID string) string {
	if containerID == "" {
		containerID = DefaultContainerID
	}
	return "\n<script data-container=\"" + html.EscapeString(containerID) + "\">" + clientScript
}

const clientScript = `
(function() {
    'use strict';

    var script = document.currentScript;
    var containerId = (script && script.getAttribute('data-container')) || 'toast-container';

    var reconnectDelay = 1000;
    var maxReconnectDelay = 30000;
    var nodes = {};

    function container() {
        var c = document.getElementById(containerId);
        if (!c) {
            c = document.createElement('div');
            c.id = containerId;
            c.className = 'toast-container';
            c.style.cssText = 'position: fixed; bottom: 1rem; right: 1rem; z-index: 1000;';
            document.documentElement.appendChild(c);
        }
        return c;
    }

    function show(t) {
        if (nodes[t.id]) {
            return;
        }
        var n = document.createElement('div');
        n.className = t.level ? 'toast toast-' + t.level : 'toast';
        n.setAttribute('role', 'status');
        n.style.cssText = 'opacity: 0; transition: opacity 300ms;';
        n.textContent = t.message || '';
        container().appendChild(n);
        nodes[t.id] = n;
        setTimeout(function() { n.style.opacity = '1'; }, 10);
    }

    function remove(t) {
        var n = nodes[t.id];
        if (!n) {
            return;
        }
        delete nodes[t.id];
        n.style.opacity = '0';
        setTimeout(function() { n.remove(); }, 300);
    }

    function connect() {
        var protocol = location.protocol === 'https:' ? 'wss:' : 'ws:';
        var ws = new WebSocket(protocol + '//' + location.host + '/ws');

        ws.onopen = function() {
            reconnectDelay = 1000;
        };

        ws.onmessage = function(e) {
            var msg;
            try {
                msg = JSON.parse(e.data);
            } catch (err) {
                return;
            }
            if (msg.type !== 'domkit:toast' || !msg.detail) {
                return;
            }
            if (msg.detail.action === 'show') {
                show(msg.detail);
            } else if (msg.detail.action === 'remove') {
                remove(msg.detail);
            }
        };

        ws.onclose = function() {
            setTimeout(function() {
                reconnectDelay = Math.min(reconnectDelay * 2, maxReconnectDelay);
                connect();
            }, reconnectDelay);
        };

        ws.onerror = function() {
            ws.close();
        };
    }

    if (document.readyState === 'loading') {
        document.addEventListener('DOMContentLoaded', connect);
    } else {
        connect();
    }
})();
</script>
`
