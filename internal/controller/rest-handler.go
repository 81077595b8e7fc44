package controller

import (
	"errors"
	"fmt"
	"net/http"

	"github.com/go-chi/chi/v5"

	"github.com/sharetube/roomy/internal/auth"
	"github.com/sharetube/roomy/internal/service/room"
	"github.com/sharetube/roomy/pkg/rest"
	"github.com/sharetube/roomy/pkg/validator"
)

func (c controller) writeError(w http.ResponseWriter, r *http.Request, err error) {
	var validationErrors validator.ValidationErrors
	switch {
	case errors.As(err, &validationErrors):
		rest.WriteJSON(w, http.StatusBadRequest, rest.Envelope{"errors": validationErrors})
	case errors.Is(err, room.ErrRoomNotFound), errors.Is(err, room.ErrPlaybackStateNotFound):
		rest.WriteJSON(w, http.StatusNotFound, rest.Envelope{"error": err.Error()})
	default:
		c.logger.ErrorContext(r.Context(), "request failed", "error", err)
		rest.WriteJSON(w, http.StatusInternalServerError, rest.Envelope{"error": "internal server error"})
	}
}

func (c controller) listRooms(w http.ResponseWriter, r *http.Request) {
	rooms, err := c.roomService.ListActiveRooms(r.Context())
	if err != nil {
		c.writeError(w, r, err)
		return
	}

	rest.WriteJSON(w, http.StatusOK, rest.Envelope{"data": rooms})
}

type createRoomRequest struct {
	Name            string `json:"name" validate:"required,min=3,max=64"`
	MediaURL        string `json:"mediaUrl" validate:"omitempty,url,max=2048"`
	MediaType       string `json:"mediaType" validate:"max=64"`
	IsPlaying       bool   `json:"isPlaying"`
	IsPublic        *bool  `json:"isPublic"`
	MaxParticipants *int   `json:"maxParticipants" validate:"omitnil,min=2,max=50"`
}

func (c controller) createRoom(w http.ResponseWriter, r *http.Request) {
	var req createRoomRequest
	if err := rest.ReadJSON(r, &req); err != nil {
		c.logger.InfoContext(r.Context(), "failed to read json", "error", err)
		rest.WriteJSON(w, http.StatusBadRequest, rest.Envelope{"error": err.Error()})
		return
	}

	if err := c.validate.Validate(req); err != nil {
		c.logger.InfoContext(r.Context(), "invalid create room request", "error", err)
		c.writeError(w, r, err)
		return
	}

	if req.MaxParticipants != nil && *req.MaxParticipants > c.membersLimit {
		c.writeError(w, r, validator.ValidationErrors{{
			Field:   "maxParticipants",
			Code:    "MAX",
			Message: fmt.Sprintf("maxParticipants must not exceed %d", c.membersLimit),
		}})
		return
	}

	createdRoom, err := c.roomService.CreateRoom(r.Context(), &room.CreateRoomParams{
		HostID:          auth.UserIDFromCtx(r.Context()),
		Name:            req.Name,
		MediaURL:        req.MediaURL,
		MediaType:       req.MediaType,
		IsPlaying:       req.IsPlaying,
		IsPublic:        req.IsPublic,
		MaxParticipants: req.MaxParticipants,
	})
	if err != nil {
		c.writeError(w, r, err)
		return
	}

	rest.WriteJSON(w, http.StatusCreated, rest.Envelope{"data": createdRoom})
}

func (c controller) getRoom(w http.ResponseWriter, r *http.Request) {
	details, err := c.roomService.GetRoomDetails(r.Context(), chi.URLParam(r, "room-id"))
	if err != nil {
		c.writeError(w, r, err)
		return
	}

	rest.WriteJSON(w, http.StatusOK, rest.Envelope{"data": details})
}

func (c controller) getPlayback(w http.ResponseWriter, r *http.Request) {
	state, err := c.roomService.GetPlaybackState(r.Context(), chi.URLParam(r, "room-id"))
	if err != nil {
		c.writeError(w, r, err)
		return
	}

	rest.WriteJSON(w, http.StatusOK, rest.Envelope{"data": state})
}
