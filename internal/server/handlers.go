package server

import (
	"encoding/json"
	"errors"
	"net/http"

	"github.com/gorilla/mux"

	"github.com/bobsby23/Team-Chat/internal/chat"
	"github.com/bobsby23/Team-Chat/internal/model"
	"github.com/bobsby23/Team-Chat/internal/store"
)

func writeJSON(w http.ResponseWriter, status int, v any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	_ = json.NewEncoder(w).Encode(v)
}

func writeError(w http.ResponseWriter, status int, msg string) {
	writeJSON(w, status, map[string]string{"error": msg})
}

// resolveRoom maps an invite code (empty means the public room) to a room,
// writing the error response itself on failure.
func (s *Server) resolveRoom(w http.ResponseWriter, r *http.Request, code string) (model.Room, bool) {
	if code == "" {
		code = model.PublicRoomCode
	}
	room, err := s.chat.FindRoom(r.Context(), code)
	switch {
	case errors.Is(err, store.ErrNotFound):
		writeError(w, http.StatusNotFound, "room not found")
		return model.Room{}, false
	case errors.Is(err, store.ErrRoomExpired):
		writeError(w, http.StatusGone, "room expired")
		return model.Room{}, false
	case err != nil:
		s.logger.Error("room lookup failed", "code", code, "error", err)
		writeError(w, http.StatusInternalServerError, "room lookup failed")
		return model.Room{}, false
	}
	return room, true
}

func (s *Server) handleMessagesGet(w http.ResponseWriter, r *http.Request) {
	q := r.URL.Query()
	room, ok := s.resolveRoom(w, r, q.Get("room"))
	if !ok {
		return
	}

	action := q.Get("action")
	username := q.Get("username")

	switch action {
	case "join":
		if username == "" {
			writeError(w, http.StatusBadRequest, "missing username")
			return
		}
		s.chat.Join(room.InviteCode, username)
		writeJSON(w, http.StatusOK, map[string]any{
			"success":     true,
			"onlineUsers": s.chat.Probe(room.InviteCode).OnlineUsers,
		})
	case "leave":
		if username == "" {
			writeError(w, http.StatusBadRequest, "missing username")
			return
		}
		s.chat.Leave(room.InviteCode, username)
		writeJSON(w, http.StatusOK, map[string]any{
			"success":     true,
			"onlineUsers": s.chat.Probe(room.InviteCode).OnlineUsers,
		})
	case "typing":
		writeJSON(w, http.StatusOK, s.chat.Probe(room.InviteCode))
	case "":
		snap, err := s.chat.Snapshot(r.Context(), room)
		if err != nil {
			s.logger.Error("snapshot failed", "room", room.InviteCode, "error", err)
			writeError(w, http.StatusInternalServerError, "snapshot failed")
			return
		}
		writeJSON(w, http.StatusOK, snap)
	default:
		writeError(w, http.StatusBadRequest, "unknown action")
	}
}

type messageRequest struct {
	Room      string `json:"room"`
	Action    string `json:"action"`
	Sender    string `json:"sender"`
	Content   string `json:"content"`
	MessageID string `json:"messageId"`
	Emoji     string `json:"emoji"`
}

func (s *Server) handleMessagesPost(w http.ResponseWriter, r *http.Request) {
	var req messageRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		writeError(w, http.StatusBadRequest, "invalid json")
		return
	}
	room, ok := s.resolveRoom(w, r, req.Room)
	if !ok {
		return
	}

	switch req.Action {
	case "typing":
		if req.Sender == "" {
			writeError(w, http.StatusBadRequest, "missing sender")
			return
		}
		s.chat.Typing(room.InviteCode, req.Sender)
		writeJSON(w, http.StatusOK, map[string]bool{"success": true})
	case "reaction":
		if req.Sender == "" || req.MessageID == "" || req.Emoji == "" {
			writeError(w, http.StatusBadRequest, "missing sender, messageId or emoji")
			return
		}
		msg, err := s.chat.ToggleReaction(r.Context(), room, req.MessageID, req.Emoji, req.Sender)
		if errors.Is(err, store.ErrNotFound) {
			writeError(w, http.StatusNotFound, "message not found")
			return
		}
		if err != nil {
			s.logger.Error("reaction toggle failed", "message", req.MessageID, "error", err)
			writeError(w, http.StatusInternalServerError, "reaction toggle failed")
			return
		}
		writeJSON(w, http.StatusOK, map[string]model.Message{"message": msg})
	case "":
		if req.Sender == "" || req.Content == "" {
			writeError(w, http.StatusBadRequest, "missing sender or content")
			return
		}
		msg, err := s.chat.Send(r.Context(), room, req.Sender, req.Content)
		if err != nil {
			s.logger.Error("send failed", "room", room.InviteCode, "error", err)
			writeError(w, http.StatusInternalServerError, "send failed")
			return
		}
		writeJSON(w, http.StatusOK, map[string]model.Message{"message": msg})
	default:
		writeError(w, http.StatusBadRequest, "unknown action")
	}
}

func (s *Server) handleMessagesDelete(w http.ResponseWriter, r *http.Request) {
	deleted, err := s.chat.PurgeExpired(r.Context())
	if err != nil {
		s.logger.Error("purge failed", "error", err)
		writeError(w, http.StatusInternalServerError, "purge failed")
		return
	}
	writeJSON(w, http.StatusOK, map[string]int{"deletedCount": deleted})
}

type roomResponse struct {
	model.Room
	// The content key is returned once at creation and never again.
	EncryptionKey string `json:"encryptionKey,omitempty"`
}

func (s *Server) handleRoomCreate(w http.ResponseWriter, r *http.Request) {
	var opts chat.CreateRoomOptions
	if err := json.NewDecoder(r.Body).Decode(&opts); err != nil {
		writeError(w, http.StatusBadRequest, "invalid json")
		return
	}
	if opts.Name == "" {
		writeError(w, http.StatusBadRequest, "missing room name")
		return
	}
	if opts.Type != model.RoomTypePublic && opts.Type != model.RoomTypePrivate {
		writeError(w, http.StatusBadRequest, "invalid room type")
		return
	}

	room, err := s.chat.CreateRoom(r.Context(), opts)
	if errors.Is(err, store.ErrCodeExists) {
		writeError(w, http.StatusConflict, "invite code already exists")
		return
	}
	if err != nil {
		s.logger.Error("room create failed", "name", opts.Name, "error", err)
		writeError(w, http.StatusInternalServerError, "room create failed")
		return
	}
	writeJSON(w, http.StatusCreated, roomResponse{Room: room, EncryptionKey: room.EncryptionKey})
}

func (s *Server) handleRoomLookup(w http.ResponseWriter, r *http.Request) {
	code := mux.Vars(r)["inviteCode"]
	room, ok := s.resolveRoom(w, r, code)
	if !ok {
		return
	}
	writeJSON(w, http.StatusOK, room)
}
