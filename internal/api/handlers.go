package api

import (
	"encoding/json"
	"errors"
	"fmt"
	"net/http"
	"strconv"

	"github.com/npezzotti/go-roomreg/internal/activity"
	"github.com/npezzotti/go-roomreg/internal/auth"
	"github.com/npezzotti/go-roomreg/internal/registry"
	"github.com/npezzotti/go-roomreg/internal/stats"
	"go.uber.org/zap"
)

const (
	msgLoggedIn          = "You have successfully logged in!"
	msgInvalidDomain     = "Only university emails are allowed!"
	msgLoggedOut         = "You have been logged out."
	msgRoomAdded         = "Room added successfully!"
	msgRoomExists        = "You have already created a room. Edit it if you want to make changes."
	msgRoomNumberTaken   = "A room with this number already exists."
	msgRoomFieldsMissing = "All fields are required."
	msgRoomDeleted       = "Room deleted."
)

var msgRoomNumberTooLong = fmt.Sprintf("Room number must be at most %d characters.", registry.MaxRoomNumberLength)

type FormPage struct {
	Form    string   `json:"form"`
	Action  string   `json:"action"`
	Fields  []string `json:"fields"`
	Hint    string   `json:"hint,omitempty"`
	Flashes []string `json:"flashes"`
}

type HomePage struct {
	Identity string          `json:"identity"`
	IsAdmin  bool            `json:"is_admin"`
	Rooms    []registry.Room `json:"rooms"`
	Flashes  []string        `json:"flashes"`
}

func (s *RoomRegApp) writeJson(w http.ResponseWriter, statusCode int, v interface{}) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(statusCode)
	if v == nil {
		return
	}

	if err := json.NewEncoder(w).Encode(v); err != nil {
		s.log.Error("json encode", zap.Error(err))
	}
}

func (s *RoomRegApp) redirectWithFlash(w http.ResponseWriter, r *http.Request, location, msg string) {
	s.addFlash(w, r, msg)
	http.Redirect(w, r, location, http.StatusSeeOther)
}

func (s *RoomRegApp) healthCheck(w http.ResponseWriter, r *http.Request) {
	if err := s.db.Ping(r.Context()); err != nil {
		s.log.Error("health check", zap.Error(err))
		errResp := NewInternalServerError(err)
		s.writeJson(w, errResp.StatusCode, errResp)
		return
	}

	w.WriteHeader(http.StatusOK)
	w.Write([]byte("OK"))
}

func (s *RoomRegApp) loginForm(w http.ResponseWriter, r *http.Request) {
	s.writeJson(w, http.StatusOK, FormPage{
		Form:    "login",
		Action:  "/login",
		Fields:  []string{"email"},
		Hint:    "use your " + s.gate.AllowedDomain() + " address",
		Flashes: s.popFlashes(w, r),
	})
}

func (s *RoomRegApp) login(w http.ResponseWriter, r *http.Request) {
	identity, err := s.gate.Login(r.FormValue("email"))
	if err != nil {
		s.stats.Incr(stats.LoginsRejected)
		s.redirectWithFlash(w, r, "/login", msgInvalidDomain)
		return
	}

	if err := s.sessions.Save(r.Context(), w, identity); err != nil {
		s.log.Error("save session", zap.Error(err))
		errResp := NewInternalServerError(err)
		s.writeJson(w, errResp.StatusCode, errResp)
		return
	}

	s.stats.Incr(stats.LoginsSucceeded)
	s.redirectWithFlash(w, r, "/", msgLoggedIn)
}

func (s *RoomRegApp) logout(w http.ResponseWriter, r *http.Request) {
	if err := s.sessions.Clear(r.Context(), w, r); err != nil {
		s.log.Warn("clear session", zap.Error(err))
	}

	s.redirectWithFlash(w, r, "/login", msgLoggedOut)
}

func (s *RoomRegApp) home(w http.ResponseWriter, r *http.Request) {
	identity, _ := auth.Identity(r.Context())

	rooms, err := s.rooms.ListRooms(r.Context())
	if err != nil {
		s.log.Error("list rooms", zap.Error(err))
		errResp := NewInternalServerError(err)
		s.writeJson(w, errResp.StatusCode, errResp)
		return
	}

	s.writeJson(w, http.StatusOK, HomePage{
		Identity: identity,
		IsAdmin:  s.policy.IsAdmin(identity),
		Rooms:    rooms,
		Flashes:  s.popFlashes(w, r),
	})
}

func (s *RoomRegApp) addRoomForm(w http.ResponseWriter, r *http.Request) {
	identity, _ := auth.Identity(r.Context())

	owned, err := s.rooms.HasRoom(r.Context(), identity)
	if err != nil {
		s.log.Error("check room owner", zap.Error(err))
		errResp := NewInternalServerError(err)
		s.writeJson(w, errResp.StatusCode, errResp)
		return
	}
	if owned {
		s.redirectWithFlash(w, r, "/", msgRoomExists)
		return
	}

	s.writeJson(w, http.StatusOK, FormPage{
		Form:    "add_room",
		Action:  "/add_room",
		Fields:  []string{"room_number", "description"},
		Flashes: s.popFlashes(w, r),
	})
}

func (s *RoomRegApp) addRoom(w http.ResponseWriter, r *http.Request) {
	identity, _ := auth.Identity(r.Context())

	_, err := s.rooms.AddRoom(r.Context(), identity, r.FormValue("room_number"), r.FormValue("description"))
	switch {
	case err == nil:
		s.stats.Incr(stats.RoomsCreated)
		s.redirectWithFlash(w, r, "/", msgRoomAdded)
	case errors.Is(err, registry.ErrInvalidRoom):
		s.redirectWithFlash(w, r, "/add_room", msgRoomFieldsMissing)
	case errors.Is(err, registry.ErrDuplicateOwner):
		s.redirectWithFlash(w, r, "/", msgRoomExists)
	case errors.Is(err, registry.ErrDuplicateRoomNumber):
		s.redirectWithFlash(w, r, "/add_room", msgRoomNumberTaken)
	case errors.Is(err, registry.ErrRoomNumberTooLong):
		s.redirectWithFlash(w, r, "/add_room", msgRoomNumberTooLong)
	default:
		s.log.Error("add room", zap.Error(err))
		errResp := NewInternalServerError(err)
		s.writeJson(w, errResp.StatusCode, errResp)
	}
}

func (s *RoomRegApp) deleteRoom(w http.ResponseWriter, r *http.Request) {
	identity, _ := auth.Identity(r.Context())

	roomId, err := strconv.Atoi(r.PathValue("room_id"))
	if err != nil {
		errResp := NewBadRequestError()
		s.writeJson(w, errResp.StatusCode, errResp)
		return
	}

	err = s.rooms.DeleteRoom(r.Context(), identity, roomId)
	switch {
	case err == nil:
		s.stats.Incr(stats.RoomsDeleted)
		s.redirectWithFlash(w, r, "/admin/view_rooms", msgRoomDeleted)
	case errors.Is(err, registry.ErrForbidden):
		writeForbidden(w)
	case errors.Is(err, registry.ErrNotFound):
		errResp := NewNotFoundError()
		s.writeJson(w, errResp.StatusCode, errResp)
	default:
		s.log.Error("delete room", zap.Error(err), zap.Int("room_id", roomId))
		errResp := NewInternalServerError(err)
		s.writeJson(w, errResp.StatusCode, errResp)
	}
}

func (s *RoomRegApp) adminActivity(w http.ResponseWriter, r *http.Request) {
	if s.activity == nil {
		errResp := NewInternalServerError(errors.New("activity recorder not configured"))
		s.writeJson(w, errResp.StatusCode, errResp)
		return
	}

	identity, _ := auth.Identity(r.Context())

	records, err := s.activity.List(r.Context(), identity)
	if err != nil {
		if errors.Is(err, auth.ErrForbidden) {
			writeForbidden(w)
			return
		}
		s.log.Error("list activity", zap.Error(err))
		errResp := NewInternalServerError(err)
		s.writeJson(w, errResp.StatusCode, errResp)
		return
	}

	if records == nil {
		records = make([]activity.Record, 0)
	}
	s.writeJson(w, http.StatusOK, records)
}

func (s *RoomRegApp) adminRooms(w http.ResponseWriter, r *http.Request) {
	identity, _ := auth.Identity(r.Context())

	rooms, err := s.rooms.AdminRooms(r.Context(), identity)
	if err != nil {
		if errors.Is(err, registry.ErrForbidden) {
			writeForbidden(w)
			return
		}
		s.log.Error("list rooms", zap.Error(err))
		errResp := NewInternalServerError(err)
		s.writeJson(w, errResp.StatusCode, errResp)
		return
	}

	s.writeJson(w, http.StatusOK, rooms)
}
