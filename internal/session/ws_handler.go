package session

import (
	"encoding/json"
	"errors"
	"fmt"
	"net/http"

	"github.com/gorilla/websocket"

	"github.com/gokatarajesh/survey-builder/internal/survey"
	httperrors "github.com/gokatarajesh/survey-builder/pkg/http/errors"
	ws "github.com/gokatarajesh/survey-builder/pkg/http/ws"
)

// HandleWebSocket upgrades GET /ws/session?token=... and streams the
// session document after every command.
func (h *HTTPHandlers) HandleWebSocket(w http.ResponseWriter, r *http.Request) {
	sess, ok := h.session(w, r, r.URL.Query().Get("token"))
	if !ok {
		return
	}

	conn, err := ws.Upgrader.Upgrade(w, r, nil)
	if err != nil {
		h.logger.Error().Err(err).Msg("WebSocket upgrade failed")
		return
	}
	h.HandleConnection(conn, sess)
}

// HandleConnection serves one upgraded connection until the peer leaves or
// the session ends.
func (h *HTTPHandlers) HandleConnection(conn *websocket.Conn, sess *Session) {
	logger := h.logger.With().Str("session_id", sess.ID.String()).Logger()
	wsConn := ws.NewConnection(conn, logger)
	detach := sess.Attach()
	h.hub.Join(sess.ID, wsConn)
	go wsConn.WritePump()

	unsubscribe := sess.Store.Subscribe(func(change survey.Change) {
		msg, err := documentMessage(change.Command.Kind(), change.Applied, change.Current)
		if err != nil {
			logger.Warn().Err(err).Msg("encode document update")
			return
		}
		if err := wsConn.Send(msg); err != nil {
			logger.Debug().Err(err).Msg("document update dropped")
		}
	})
	defer unsubscribe()

	if msg, err := documentMessage("", false, sess.Store.Snapshot()); err == nil {
		_ = wsConn.Send(msg)
	}

	wsConn.ReadPump(func(msg ws.Message) error {
		return h.handleMessage(sess, wsConn, msg)
	})

	detach()
	h.hub.Leave(sess.ID, wsConn)
}

func (h *HTTPHandlers) handleMessage(sess *Session, conn *ws.Connection, msg ws.Message) error {
	sess.Touch()
	switch msg.Type {
	case ws.TypeCommand:
		return h.handleCommand(sess, conn, msg)
	case ws.TypeRequestDocument:
		out, err := documentMessage("", false, sess.Store.Snapshot())
		if err != nil {
			return err
		}
		out.RequestID = msg.RequestID
		return conn.Send(out)
	case ws.TypePing:
		return conn.Send(ws.Message{Type: ws.TypePong, RequestID: msg.RequestID})
	default:
		return sendError(conn, msg.RequestID, ws.ErrorPayload{
			Code:    httperrors.ErrCodeUnknownMessageType,
			Message: fmt.Sprintf("Unknown message type: %s", msg.Type),
		})
	}
}

func (h *HTTPHandlers) handleCommand(sess *Session, conn *ws.Connection, msg ws.Message) error {
	var env survey.Envelope
	if err := json.Unmarshal(msg.Payload, &env); err != nil {
		return sendError(conn, msg.RequestID, ws.ErrorPayload{
			Code:    httperrors.ErrCodeInvalidPayload,
			Message: "Invalid command envelope",
		})
	}

	cmd, err := survey.Decode(env)
	if err == nil {
		err = sess.Dispatch(cmd)
	}
	if err != nil {
		return sendError(conn, msg.RequestID, commandErrorPayload(err))
	}

	ack, err := ws.NewMessage(ws.TypeCommandAck, ws.CommandAckPayload{Command: string(cmd.Kind())})
	if err != nil {
		return err
	}
	ack.RequestID = msg.RequestID
	return conn.Send(ack)
}

func commandErrorPayload(err error) ws.ErrorPayload {
	var missing *MissingRequiredError
	switch {
	case errors.As(err, &missing):
		return ws.ErrorPayload{
			Code:    httperrors.ErrCodeRequiredMissing,
			Message: "Please answer all required questions",
			Missing: missing.QuestionIDs,
		}
	case errors.Is(err, survey.ErrUnknownCommand):
		return ws.ErrorPayload{Code: httperrors.ErrCodeUnknownCommand, Message: err.Error()}
	case errors.Is(err, survey.ErrInvalidPayload):
		return ws.ErrorPayload{Code: httperrors.ErrCodeInvalidPayload, Message: err.Error()}
	default:
		return ws.ErrorPayload{Code: httperrors.ErrCodeInternalError, Message: err.Error()}
	}
}

func documentMessage(kind survey.Kind, applied bool, doc survey.Document) (ws.Message, error) {
	raw, err := json.Marshal(doc)
	if err != nil {
		return ws.Message{}, err
	}
	return ws.NewMessage(ws.TypeDocumentUpdate, ws.DocumentUpdatePayload{
		Command:  string(kind),
		Applied:  applied,
		Document: raw,
	})
}

func sendError(conn *ws.Connection, requestID string, payload ws.ErrorPayload) error {
	msg, err := ws.NewMessage(ws.TypeError, payload)
	if err != nil {
		return err
	}
	msg.RequestID = requestID
	return conn.Send(msg)
}
