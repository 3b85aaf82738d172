// Package webserver pushes live standings snapshots to browser clients
// over a websocket. It is strictly a consumer of the engine: it reads
// published snapshots and the replay never waits for it.
package webserver

import (
	"context"
	"encoding/json"
	"log"
	"net/http"
	"os"
	"sync"
	"time"

	"github.com/gorilla/mux"
	"github.com/gorilla/websocket"

	"github.com/jb-gy/f1-race-replay/pkg/caster"
	"github.com/jb-gy/f1-race-replay/pkg/model"
	"github.com/jb-gy/f1-race-replay/pkg/pubsub"
	"github.com/jb-gy/f1-race-replay/pkg/replay"
)

var addr = ":8080"
var upgrader = websocket.Upgrader{} // use default options

// Meta is the static display data for one session: driver colours for the
// map view and the track status periods on the session timeline. Served
// once at connect time, it never changes during a replay.
type Meta struct {
	SessionID     string              `json:"sessionId"`
	DriverColors  map[string][3]int   `json:"driverColors"`
	TrackStatuses []model.TrackStatus `json:"trackStatuses"`
}

type Manager struct {
	r         *mux.Router
	sessionID string
	meta      Meta

	mu       sync.Mutex
	snapshot string

	verifiedLogged bool
}

func NewManager(sessionID string, pubsubMgr *pubsub.PubSub[string], meta Meta) *Manager {
	m := &Manager{
		r:         mux.NewRouter(),
		sessionID: sessionID,
		meta:      meta,
	}

	updates := pubsubMgr.Subscribe(replay.PubSubStandingsPrefix + sessionID)
	go m.updater(updates)

	m.r.HandleFunc("/standings", m.standingsHandler()).Methods(http.MethodGet)
	m.r.HandleFunc("/meta", m.metaHandler()).Methods(http.MethodGet)
	m.r.HandleFunc("/live", m.websocketHandler())
	return m
}

func (m *Manager) updater(updates <-chan string) {
	for payload := range updates {
		m.mu.Lock()
		m.snapshot = payload
		m.mu.Unlock()

		if m.verifiedLogged {
			continue
		}
		if snapshot, err := caster.DecodeSnapshot(payload); err == nil && snapshot.Reconciled {
			m.verifiedLogged = true
			log.Printf("serving verified final standings for %s", m.sessionID)
		}
	}
}

func (m *Manager) latest() string {
	m.mu.Lock()
	defer m.mu.Unlock()
	return m.snapshot
}

// standingsHandler serves the most recent snapshot as plain JSON, for
// clients that poll instead of holding a websocket open.
func (m *Manager) standingsHandler() func(w http.ResponseWriter, r *http.Request) {
	return func(w http.ResponseWriter, r *http.Request) {
		snapshot := m.latest()
		if snapshot == "" {
			http.Error(w, "no standings yet", http.StatusServiceUnavailable)
			return
		}
		w.Header().Set("Content-Type", "application/json")
		_, _ = w.Write([]byte(snapshot))
	}
}

// metaHandler serves the session's static display data.
func (m *Manager) metaHandler() func(w http.ResponseWriter, r *http.Request) {
	return func(w http.ResponseWriter, r *http.Request) {
		w.Header().Set("Content-Type", "application/json")
		if err := json.NewEncoder(w).Encode(m.meta); err != nil {
			log.Printf("error encoding session meta: %s", err.Error())
		}
	}
}

func (m *Manager) websocketHandler() func(w http.ResponseWriter, r *http.Request) {
	return func(w http.ResponseWriter, r *http.Request) {
		c, err := upgrader.Upgrade(w, r, nil)
		if err != nil {
			log.Print("upgrade:", err)
			return
		}
		defer c.Close()
		mt, message, err := c.ReadMessage()
		if err != nil {
			log.Println("read:", err)
			return
		}
		log.Printf("recv: %s (%d)", message, mt)
		t := time.NewTicker(100 * time.Millisecond)
		defer t.Stop()
		last := ""
		for {
			select {
			case <-t.C:
				snapshot := m.latest()
				if snapshot == "" || snapshot == last {
					continue
				}
				if err := c.WriteMessage(mt, []byte(snapshot)); err != nil {
					log.Println("write:", err)
					return
				}
				last = snapshot
			case <-r.Context().Done():
				log.Print("websocket closed\n")
				return
			}
		}
	}
}

// Serve runs the HTTP server until ctx is cancelled, then shuts it down
// gracefully.
func (m *Manager) Serve(ctx context.Context) {
	if os.Getenv("WEBSERVER_ADDRESS") != "" {
		addr = os.Getenv("WEBSERVER_ADDRESS")
	}
	srv := &http.Server{
		Addr: addr,
		// Good practice to set timeouts to avoid Slowloris attacks.
		WriteTimeout: time.Second * 15,
		ReadTimeout:  time.Second * 15,
		IdleTimeout:  time.Second * 60,
		Handler:      m.r,
	}

	go func() {
		log.Printf("webserver listening on %s\n", addr)
		if err := srv.ListenAndServe(); err != nil {
			log.Println(err)
		}
	}()

	<-ctx.Done()

	shutdownCtx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer cancel()
	srv.Shutdown(shutdownCtx)
	log.Println("webserver shutting down")
}
