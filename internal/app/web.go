// Copyright (c) 2026 Daniel Alarcon Rubio / Relabs Tech
// SPDX-License-Identifier: MIT
// See LICENSE file for full license text

package app

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"net/http"
	"strconv"
	"sync"
	"time"

	mqtt "github.com/eclipse/paho.mqtt.golang"
	"github.com/gorilla/websocket"
	"go.uber.org/zap"

	"github.com/relabs-tech/pose_viewer/internal/config"
	"github.com/relabs-tech/pose_viewer/internal/logging"
	"github.com/relabs-tech/pose_viewer/internal/orientation"
	"github.com/relabs-tech/pose_viewer/internal/poselog"
)

const shutdownTimeout = 5 * time.Second

var upgrader = websocket.Upgrader{
	CheckOrigin: func(r *http.Request) bool {
		return true // Allow all origins for local development
	},
}

// poseStore keeps the latest batch and fans new ones out to WebSocket clients.
type poseStore struct {
	mu    sync.RWMutex
	batch *poselog.Batch
	subs  map[chan poselog.Batch]struct{}
}

func newPoseStore() *poseStore {
	return &poseStore{subs: make(map[chan poselog.Batch]struct{})}
}

func (s *poseStore) set(b poselog.Batch) {
	s.mu.Lock()
	defer s.mu.Unlock()

	s.batch = &b
	for ch := range s.subs {
		// Each subscriber only needs the newest batch.
		select {
		case <-ch:
		default:
		}
		ch <- b
	}
}

func (s *poseStore) latest() (poselog.Batch, bool) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	if s.batch == nil {
		return poselog.Batch{}, false
	}
	return *s.batch, true
}

// subscribe registers a channel that receives every batch stored after the
// call. The returned func unregisters it.
func (s *poseStore) subscribe() (<-chan poselog.Batch, func()) {
	ch := make(chan poselog.Batch, 1)

	s.mu.Lock()
	s.subs[ch] = struct{}{}
	s.mu.Unlock()

	return ch, func() {
		s.mu.Lock()
		delete(s.subs, ch)
		s.mu.Unlock()
	}
}

// storeHandler decodes batches from MQTT into store.
func storeHandler(store *poseStore, log *zap.SugaredLogger) mqtt.MessageHandler {
	return func(_ mqtt.Client, msg mqtt.Message) {
		var b poselog.Batch
		if err := json.Unmarshal(msg.Payload(), &b); err != nil {
			log.Warnw("MQTT payload unmarshal error", "topic", msg.Topic(), "error", err)
			return
		}
		store.set(b)
		log.Debugw("stored pose batch", "id", b.ID, "records", len(b.Records))
	}
}

// Placement is the scene transform of one record.
type Placement struct {
	Index  int                 `json:"index"`
	Name   string              `json:"name"`
	Matrix orientation.Matrix4 `json:"matrix"`
}

type webServer struct {
	store     *poseStore
	scale     float64
	staticDir string
	done      <-chan struct{}
	log       *zap.SugaredLogger
}

func (s *webServer) routes() http.Handler {
	mux := http.NewServeMux()

	mux.HandleFunc("GET /api/poses", s.handlePoses)
	mux.HandleFunc("GET /api/poses/card.png", s.handleCard)
	mux.HandleFunc("GET /api/poses/{index}", s.handlePose)
	mux.HandleFunc("GET /api/placements", s.handlePlacements)
	mux.HandleFunc("GET /ws/poses", s.handleWS)

	// Static files from ./web as the root
	mux.Handle("/", http.FileServer(http.Dir(s.staticDir)))

	return mux
}

func (s *webServer) writeJSON(w http.ResponseWriter, v interface{}) {
	w.Header().Set("Content-Type", "application/json")
	if err := json.NewEncoder(w).Encode(v); err != nil {
		s.log.Warnw("json encode error", "error", err)
	}
}

func (s *webServer) handlePoses(w http.ResponseWriter, r *http.Request) {
	b, ok := s.store.latest()
	if !ok {
		http.Error(w, "no data yet", http.StatusServiceUnavailable)
		return
	}
	s.writeJSON(w, b)
}

func (s *webServer) handlePose(w http.ResponseWriter, r *http.Request) {
	b, ok := s.store.latest()
	if !ok {
		http.Error(w, "no data yet", http.StatusServiceUnavailable)
		return
	}

	idx, err := strconv.Atoi(r.PathValue("index"))
	if err != nil {
		http.Error(w, "index must be an integer", http.StatusBadRequest)
		return
	}
	if idx < 0 || idx >= len(b.Records) {
		http.Error(w, fmt.Sprintf("no record %d", idx), http.StatusNotFound)
		return
	}
	s.writeJSON(w, b.Records[idx])
}

func (s *webServer) handlePlacements(w http.ResponseWriter, r *http.Request) {
	b, ok := s.store.latest()
	if !ok {
		http.Error(w, "no data yet", http.StatusServiceUnavailable)
		return
	}

	out := make([]Placement, 0, len(b.Records))
	for i, rec := range b.Records {
		out = append(out, Placement{Index: i, Name: rec.Name, Matrix: rec.Transform(s.scale)})
	}
	s.writeJSON(w, out)
}

// handleCard renders the latest batch; before the first batch it shows a
// waiting card instead of failing.
func (s *webServer) handleCard(w http.ResponseWriter, r *http.Request) {
	var bp *poselog.Batch
	if b, ok := s.store.latest(); ok {
		bp = &b
	}

	w.Header().Set("Content-Type", "image/png")
	if err := writeCardPNG(w, bp); err != nil {
		s.log.Warnw("card render error", "error", err)
	}
}

// handleWS pushes the current batch, then every new one, until the client
// goes away or the server stops.
func (s *webServer) handleWS(w http.ResponseWriter, r *http.Request) {
	conn, err := upgrader.Upgrade(w, r, nil)
	if err != nil {
		s.log.Warnw("websocket upgrade error", "error", err)
		return
	}
	defer conn.Close()

	updates, cancel := s.store.subscribe()
	defer cancel()

	if b, ok := s.store.latest(); ok {
		if err := conn.WriteJSON(b); err != nil {
			return
		}
	}

	// Reads only serve to notice the client closing.
	closed := make(chan struct{})
	go func() {
		defer close(closed)
		for {
			if _, _, err := conn.ReadMessage(); err != nil {
				return
			}
		}
	}()

	for {
		select {
		case <-closed:
			return
		case <-s.done:
			_ = conn.WriteMessage(websocket.CloseMessage,
				websocket.FormatCloseMessage(websocket.CloseGoingAway, "server shutting down"))
			return
		case b := <-updates:
			if err := conn.WriteJSON(b); err != nil {
				s.log.Debugw("websocket write error", "error", err)
				return
			}
		}
	}
}

// RunWeb serves the latest pose batch from TOPIC_POSES over HTTP and
// WebSocket until ctx is cancelled.
func RunWeb(ctx context.Context, logger *logging.Logger) error {
	cfg := config.Get()
	log := logger.Component("web")
	store := newPoseStore()

	client, err := connectMQTT(cfg.MQTTBroker, cfg.MQTTClientIDWeb)
	if err != nil {
		return err
	}
	defer client.Disconnect(disconnectQuiesce)
	log.Infow("connected to MQTT broker", "broker", cfg.MQTTBroker)

	token := client.Subscribe(cfg.TopicPoses, 0, storeHandler(store, log))
	token.Wait()
	if token.Error() != nil {
		return fmt.Errorf("subscribe %s: %w", cfg.TopicPoses, token.Error())
	}
	log.Infow("subscribed", "topic", cfg.TopicPoses)

	ws := &webServer{
		store:     store,
		scale:     cfg.PositionScale,
		staticDir: "web",
		done:      ctx.Done(),
		log:       log,
	}
	srv := &http.Server{
		Addr:    fmt.Sprintf(":%d", cfg.WebServerPort),
		Handler: ws.routes(),
	}

	errCh := make(chan error, 1)
	go func() {
		log.Infow("web server listening", "addr", srv.Addr)
		errCh <- srv.ListenAndServe()
	}()

	select {
	case err := <-errCh:
		return fmt.Errorf("web server: %w", err)
	case <-ctx.Done():
	}

	log.Info("shutting down")
	shutdownCtx, cancel := context.WithTimeout(context.Background(), shutdownTimeout)
	defer cancel()
	if err := srv.Shutdown(shutdownCtx); err != nil {
		return fmt.Errorf("web server shutdown: %w", err)
	}
	if err := <-errCh; err != nil && !errors.Is(err, http.ErrServerClosed) {
		return fmt.Errorf("web server: %w", err)
	}
	return nil
}
