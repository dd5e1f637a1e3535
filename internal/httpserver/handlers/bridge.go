package handlers

import (
	"encoding/json"
	"fmt"
	"net/http"

	"github.com/go-chi/chi/v5"
	"github.com/google/uuid"

	"github.com/MrSnakeDoc/wirelink/internal/command"
	"github.com/MrSnakeDoc/wirelink/internal/domain"
	"github.com/MrSnakeDoc/wirelink/internal/httpserver/deps"
	"github.com/MrSnakeDoc/wirelink/internal/logger"
)

const maxBridgeBody = 64 << 10

type positionPayload struct {
	X int `json:"x"`
	Y int `json:"y"`
	Z int `json:"z"`
}

func (p positionPayload) position() domain.Position {
	return domain.Position{X: p.X, Y: p.Y, Z: p.Z}
}

type joinRequest struct {
	Name      string          `json:"name"`
	World     string          `json:"world"`
	Standing  positionPayload `json:"standing"`
	Inventory map[string]int  `json:"inventory,omitempty"`
}

type joinResponse struct {
	Loaded int `json:"loaded"`
}

type leaveResponse struct {
	Unloaded int `json:"unloaded"`
}

type commandRequest struct {
	World    string           `json:"world,omitempty"`
	Standing *positionPayload `json:"standing,omitempty"`
	Args     []string         `json:"args,omitempty"`
	Line     string           `json:"line,omitempty"`
}

type messagesResponse struct {
	Messages []string `json:"messages"`
}

func playerID(r *http.Request) (uuid.UUID, bool) {
	return parseID(chi.URLParam(r, "player"))
}

func decodeBody(w http.ResponseWriter, r *http.Request, v any) error {
	dec := json.NewDecoder(http.MaxBytesReader(w, r.Body, maxBridgeBody))
	dec.DisallowUnknownFields()
	if err := dec.Decode(v); err != nil {
		return fmt.Errorf("invalid request body: %w", err)
	}
	return nil
}

// BridgeJoin records a player joining and loads their endpoints. The
// player's world is added to the catalog and their inventory replaced
// when one is sent.
func BridgeJoin(d deps.Deps) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		id, ok := playerID(r)
		if !ok {
			writeJSON(w, http.StatusNotFound, errorResponse{Error: bodyInvalidUUID})
			return
		}

		var req joinRequest
		if err := decodeBody(w, r, &req); err != nil {
			writeJSON(w, http.StatusBadRequest, errorResponse{Error: err.Error()})
			return
		}
		ref, err := domain.ParseWorldRef(req.World)
		if err != nil {
			writeJSON(w, http.StatusBadRequest, errorResponse{Error: err.Error()})
			return
		}

		if err := d.Worlds.Add(ref); err != nil {
			d.Logger.Error("failed to add world", logger.Stringer("world", ref), logger.Error(err))
			writeJSON(w, http.StatusInternalServerError, errorResponse{Error: http.StatusText(http.StatusInternalServerError)})
			return
		}
		if req.Inventory != nil {
			items := make(map[domain.Material]int, len(req.Inventory))
			for m, n := range req.Inventory {
				items[domain.Material(m)] = n
			}
			d.World.SetInventory(id, items)
		}

		n := d.Lifecycle.PlayerJoin(domain.Player{
			ID:       id,
			Name:     req.Name,
			World:    ref,
			Standing: req.Standing.position(),
		})
		writeJSON(w, http.StatusOK, joinResponse{Loaded: n})
	}
}

// BridgeLeave records a player leaving and unloads their endpoints.
func BridgeLeave(d deps.Deps) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		id, ok := playerID(r)
		if !ok {
			writeJSON(w, http.StatusNotFound, errorResponse{Error: bodyInvalidUUID})
			return
		}
		writeJSON(w, http.StatusOK, leaveResponse{Unloaded: d.Lifecycle.PlayerDisconnect(id)})
	}
}

// BridgeCommand runs /redstone for an online player. A position in the
// body overrides the one reported at join.
func BridgeCommand(d deps.Deps) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		id, ok := playerID(r)
		if !ok {
			writeJSON(w, http.StatusNotFound, errorResponse{Error: bodyInvalidUUID})
			return
		}

		var req commandRequest
		if err := decodeBody(w, r, &req); err != nil {
			writeJSON(w, http.StatusBadRequest, errorResponse{Error: err.Error()})
			return
		}

		player, online := d.Lifecycle.Online(id)
		if !online {
			writeJSON(w, http.StatusConflict, errorResponse{Error: "player is not online"})
			return
		}
		if req.World != "" {
			ref, err := domain.ParseWorldRef(req.World)
			if err != nil {
				writeJSON(w, http.StatusBadRequest, errorResponse{Error: err.Error()})
				return
			}
			if err := d.Worlds.Add(ref); err != nil {
				d.Logger.Error("failed to add world", logger.Stringer("world", ref), logger.Error(err))
				writeJSON(w, http.StatusInternalServerError, errorResponse{Error: http.StatusText(http.StatusInternalServerError)})
				return
			}
			player.World = ref
		}
		if req.Standing != nil {
			player.Standing = req.Standing.position()
		}

		var reply command.Reply
		if req.Args != nil {
			reply = d.Commands.Execute(player, req.Args)
		} else {
			reply = d.Commands.ExecuteLine(player, req.Line)
		}

		d.Logger.Info("command executed",
			logger.Stringer("player", id),
			logger.Bool("ok", reply.OK),
			logger.String("reply", reply.Message))
		writeJSON(w, http.StatusOK, reply)
	}
}

// BridgeMessages hands over the chat messages queued for a player.
func BridgeMessages(d deps.Deps) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		id, ok := playerID(r)
		if !ok {
			writeJSON(w, http.StatusNotFound, errorResponse{Error: bodyInvalidUUID})
			return
		}
		msgs := d.World.DrainMessages(id)
		if msgs == nil {
			msgs = []string{}
		}
		writeJSON(w, http.StatusOK, messagesResponse{Messages: msgs})
	}
}
