package http

import (
	"context"
	"encoding/json"
	"errors"
	"net/http"

	"github.com/gorilla/websocket"
	"go.uber.org/zap"

	"stress-quiz/internal/app"
	"stress-quiz/internal/domain"
	"stress-quiz/internal/eventloop"
)

const sendBuffer = 64

type WSHandler struct {
	service  *app.Service
	logger   *zap.Logger
	upgrader websocket.Upgrader
}

func NewWSHandler(service *app.Service, logger *zap.Logger) *WSHandler {
	if logger == nil {
		logger = zap.NewNop()
	}
	return &WSHandler{
		service: service,
		logger:  logger,
		upgrader: websocket.Upgrader{
			ReadBufferSize:  1024,
			WriteBufferSize: 1024,
			CheckOrigin:     func(r *http.Request) bool { return true },
		},
	}
}

// ServeWS upgrades the request and runs one quiz session for the connection.
// Every session call goes through the connection's event loop, so timer
// callbacks and client messages never interleave.
func (h *WSHandler) ServeWS(w http.ResponseWriter, r *http.Request) {
	mode, err := domain.ParseMode(r.URL.Query().Get("mode"))
	if err != nil {
		http.Error(w, err.Error(), http.StatusBadRequest)
		return
	}
	course := r.URL.Query().Get("course")

	conn, err := h.upgrader.Upgrade(w, r, nil)
	if err != nil {
		h.logger.Warn("ws upgrade failed", zap.Error(err))
		return
	}
	defer conn.Close()

	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()

	loop := eventloop.New(sendBuffer)
	go loop.Run(ctx)

	send := make(chan outboundMessage[any], sendBuffer)
	writerDone := make(chan struct{})

	// Single writer; gorilla connections allow one concurrent writer only.
	go func() {
		defer close(writerDone)
		defer cancel()
		for msg := range send {
			if err := conn.WriteJSON(msg); err != nil {
				h.logger.Debug("ws write error", zap.Error(err))
				return
			}
		}
	}()

	presenter := &wsPresenter{ctx: ctx, mode: mode, send: send}
	session := h.service.Open("", mode, course, loop, presenter)
	logger := h.logger.With(zap.String("session", session.ID()))
	logger.Info("session opened", zap.String("mode", string(mode)), zap.String("course", session.Course()))

	_ = loop.Call(ctx, func() error {
		presenter.emit("session", sessionPayload{ID: session.ID(), Mode: session.Mode(), Course: session.Course()})
		presenter.emit("status", session.Status())
		return nil
	})
	go func() {
		ds, err := session.Fetch(ctx)
		_ = loop.Do(func() {
			presenter.emit("status", session.Loaded(ds, err))
		})
	}()

	for {
		var inbound inboundMessage
		if err := conn.ReadJSON(&inbound); err != nil {
			break
		}
		h.service.Touch(ctx, session.ID())

		action, err := decodeAction(session, inbound)
		if err != nil {
			h.reply(ctx, send, errorMessage(err))
			continue
		}
		if err := loop.Call(ctx, action); err != nil {
			if errors.Is(err, eventloop.ErrStopped) || errors.Is(err, context.Canceled) {
				break
			}
			if !app.IsUserError(err) {
				logger.Warn("action failed", zap.String("type", inbound.Type), zap.Error(err))
			}
			h.reply(ctx, send, errorMessage(err))
		}
	}

	closeErr := loop.Call(ctx, func() error {
		h.service.Close(session.ID())
		return nil
	})
	cancel()
	<-loop.Done()
	if closeErr != nil {
		// the loop is gone, nothing else touches the session now
		h.service.Close(session.ID())
	}
	close(send)
	<-writerDone
	logger.Info("session closed")
}

func (h *WSHandler) reply(ctx context.Context, send chan<- outboundMessage[any], msg outboundMessage[any]) {
	select {
	case send <- msg:
	case <-ctx.Done():
	}
}

// decodeAction turns a client message into a session call to run on the loop.
func decodeAction(session *app.Session, inbound inboundMessage) (func() error, error) {
	switch inbound.Type {
	case "start":
		var p startPayload
		if err := unmarshal(inbound, &p); err != nil {
			return nil, err
		}
		return func() error { return session.Start(p.Difficulty) }, nil
	case "reveal":
		var p revealPayload
		if err := unmarshal(inbound, &p); err != nil {
			return nil, err
		}
		return func() error { return session.Reveal(p.Slot) }, nil
	case "answer":
		var p textPayload
		if err := unmarshal(inbound, &p); err != nil {
			return nil, err
		}
		return func() error { return session.Answer(p.Text) }, nil
	case "decide":
		var p decidePayload
		if err := unmarshal(inbound, &p); err != nil {
			return nil, err
		}
		return func() error { return session.Decide(p.Decision, p.Why) }, nil
	case "reason":
		var p textPayload
		if err := unmarshal(inbound, &p); err != nil {
			return nil, err
		}
		return func() error { return session.Reason(p.Text) }, nil
	default:
		return nil, errors.New("unsupported message type")
	}
}

func unmarshal(inbound inboundMessage, v any) error {
	if len(inbound.Payload) == 0 {
		return nil
	}
	if err := json.Unmarshal(inbound.Payload, v); err != nil {
		return errors.New("invalid " + inbound.Type + " payload")
	}
	return nil
}
