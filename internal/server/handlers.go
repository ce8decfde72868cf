package server

import (
	"encoding/json"
	"errors"
	"fmt"
	"net/http"
	"time"

	"github.com/gorilla/websocket"
	"github.com/rs/zerolog/log"

	"github.com/lacquerai/deriv/internal/algebra"
)

// writeJSON encodes body before writing the status, so a body that cannot be
// encoded becomes a 500 instead of a truncated 200.
func writeJSON(w http.ResponseWriter, status int, body any) {
	data, err := json.Marshal(body)
	if err != nil {
		log.Error().Err(err).Msg("Failed to encode response")
		status = http.StatusInternalServerError
		data, _ = json.Marshal(ErrorResponse{Error: ErrorBody{Kind: "internal", Message: "response could not be encoded"}})
	}

	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	if _, err := w.Write(append(data, '\n')); err != nil {
		log.Error().Err(err).Msg("Failed to write response")
	}
}

// writeError maps parse errors to 400 and calculation errors to 422.
func (s *Server) writeError(w http.ResponseWriter, err error) {
	resp := NewErrorResponse(err, s.config.Debug)
	status := http.StatusBadRequest
	var tooLarge *http.MaxBytesError
	switch {
	case resp.Error.Kind == "calc":
		status = http.StatusUnprocessableEntity
	case errors.As(err, &tooLarge):
		status = http.StatusRequestEntityTooLarge
	}
	writeJSON(w, status, resp)
}

func (s *Server) decode(w http.ResponseWriter, r *http.Request, v any) error {
	body := r.Body
	if s.config.MaxBodyBytes > 0 {
		body = http.MaxBytesReader(w, r.Body, s.config.MaxBodyBytes)
	}
	if err := json.NewDecoder(body).Decode(v); err != nil {
		return fmt.Errorf("invalid JSON: %w", err)
	}
	return nil
}

// parseExpression returns the canonical form and tree of an expression
func (s *Server) parseExpression(w http.ResponseWriter, r *http.Request) {
	var req ParseRequest
	if err := s.decode(w, r, &req); err != nil {
		s.writeError(w, err)
		return
	}

	e, err := s.lookup(req.Expression)
	if err != nil {
		s.writeError(w, err)
		return
	}

	writeJSON(w, http.StatusOK, NewParseResponse(req.Expression, e, true))
}

func (s *Server) derive(req DeriveRequest) (DeriveResponse, error) {
	if req.Order == 0 {
		req.Order = 1
	}
	if req.Order < 1 || req.Order > MaxOrder {
		return DeriveResponse{}, fmt.Errorf("order must be between 1 and %d", MaxOrder)
	}

	e, err := s.lookup(req.Expression)
	if err != nil {
		return DeriveResponse{}, err
	}
	return NewDeriveResponse(req.Expression, e, req.Order)
}

// deriveExpression returns successive derivatives of an expression
func (s *Server) deriveExpression(w http.ResponseWriter, r *http.Request) {
	var req DeriveRequest
	if err := s.decode(w, r, &req); err != nil {
		s.writeError(w, err)
		return
	}

	resp, err := s.derive(req)
	if err != nil {
		s.writeError(w, err)
		return
	}
	writeJSON(w, http.StatusOK, resp)
}

// evaluateExpression returns the value of an expression at x
func (s *Server) evaluateExpression(w http.ResponseWriter, r *http.Request) {
	var req EvaluateRequest
	if err := s.decode(w, r, &req); err != nil {
		s.writeError(w, err)
		return
	}

	e, err := s.lookup(req.Expression)
	if err != nil {
		s.writeError(w, err)
		return
	}

	value, err := e.Evaluate(req.X, algebra.Bindings(req.Params))
	if err != nil {
		s.writeError(w, err)
		return
	}

	resp, err := NewEvaluateResponse(req.Expression, req.X, value)
	if err != nil {
		s.writeError(w, err)
		return
	}
	writeJSON(w, http.StatusOK, resp)
}

// listFunctions returns the builtin function registry
func (s *Server) listFunctions(w http.ResponseWriter, r *http.Request) {
	writeJSON(w, http.StatusOK, NewFunctionsResponse())
}

// streamDerivatives answers every text frame with the derivative of the
// expression it carries. A frame holding a JSON object is read as a
// DeriveRequest.
func (s *Server) streamDerivatives(w http.ResponseWriter, r *http.Request) {
	conn, err := s.upgrader.Upgrade(w, r, nil)
	if err != nil {
		log.Error().Err(err).Msg("WebSocket upgrade failed")
		return
	}
	defer conn.Close()

	s.metrics.activeStreams.Inc()
	defer s.metrics.activeStreams.Dec()

	if s.config.MaxBodyBytes > 0 {
		conn.SetReadLimit(s.config.MaxBodyBytes)
	}

	for {
		kind, data, err := conn.ReadMessage()
		if err != nil {
			if websocket.IsUnexpectedCloseError(err, websocket.CloseNormalClosure, websocket.CloseGoingAway) {
				log.Warn().Err(err).Msg("Stream closed unexpectedly")
			}
			return
		}
		if kind != websocket.TextMessage {
			continue
		}

		req := DeriveRequest{Expression: string(data)}
		if len(data) > 0 && data[0] == '{' {
			if err := json.Unmarshal(data, &req); err != nil {
				req = DeriveRequest{Expression: string(data)}
			}
		}

		start := time.Now()
		var reply any
		resp, err := s.derive(req)
		if err != nil {
			reply = NewErrorResponse(err, s.config.Debug)
		} else {
			reply = resp
		}
		s.metrics.observe("/api/v1/stream", http.StatusOK, time.Since(start))

		if err := conn.WriteJSON(reply); err != nil {
			log.Error().Err(err).Msg("Failed to write stream reply")
			return
		}
	}
}

// healthCheck returns server health status
func (s *Server) healthCheck(w http.ResponseWriter, r *http.Request) {
	writeJSON(w, http.StatusOK, map[string]any{
		"status":    "healthy",
		"cached":    s.cache.Len(),
		"functions": len(algebra.Builtins().List()),
		"timestamp": time.Now(),
	})
}
