package server

import (
	"errors"
	"net/http"

	"studyrooms/internal/storage"
)

// home handles GET "/": the global newest-first room listing.
func (h *handler) home(w http.ResponseWriter, r *http.Request) {
	if r.URL.Path != "/" {
		http.NotFound(w, r)
		return
	}

	listing, err := h.rooms.Rooms(r.Context(), queryPage(r))
	if err != nil {
		h.serverError(w, err)
		return
	}

	user, err := h.currentUser(r)
	if err != nil {
		h.serverError(w, err)
		return
	}

	h.render(w, "home.html", &templateData{
		Title:   "Home",
		User:    user,
		Flash:   popFlash(w, r),
		Listing: &listing,
	})
}

func (h *handler) about(w http.ResponseWriter, r *http.Request) {
	user, err := h.currentUser(r)
	if err != nil {
		h.serverError(w, err)
		return
	}

	h.render(w, "about.html", &templateData{
		Title: "About",
		User:  user,
		Flash: popFlash(w, r),
	})
}

// room handles GET "/room/{id}".
func (h *handler) room(w http.ResponseWriter, r *http.Request, user storage.User) {
	id, ok := pathID(r.URL.Path, "/room/")
	if !ok {
		http.NotFound(w, r)
		return
	}

	room, err := h.rooms.RoomByID(r.Context(), id)
	if err != nil {
		if errors.Is(err, storage.ErrRoomNotExist) {
			http.NotFound(w, r)
			return
		}
		h.serverError(w, err)
		return
	}

	owner, err := h.users.ByID(r.Context(), room.OwnerID)
	if err != nil {
		h.serverError(w, err)
		return
	}

	h.render(w, "room.html", &templateData{
		Title: room.Topic,
		User:  &user,
		Flash: popFlash(w, r),
		Room:  &room,
		Owner: &owner,
	})
}

// createRoom handles GET/POST "/create_room".
func (h *handler) createRoom(w http.ResponseWriter, r *http.Request, user storage.User) {
	if r.Method != http.MethodPost {
		h.render(w, "create_room.html", &templateData{
			Title: "Create Room",
			User:  &user,
			Flash: popFlash(w, r),
		})
		return
	}

	form := parseRoomForm(r)
	errs := form.validate()

	if errs.ok() {
		room, err := h.rooms.CreateRoom(r.Context(), user.ID, form.Topic, form.Description)
		if err != nil {
			h.serverError(w, err)
			return
		}
		h.logger.Debugf("user %d created room %d", user.ID, room.ID)

		setFlash(w, "Room Created!", "success")
		http.Redirect(w, r, "/", http.StatusFound)
		return
	}

	h.render(w, "create_room.html", &templateData{
		Title: "Create Room",
		User:  &user,
		Form: map[string]string{
			"topic":       form.Topic,
			"description": form.Description,
		},
		Errors: errs,
	})
}

// updateRoom handles GET/POST "/update_room/{id}". Only the owner may edit.
func (h *handler) updateRoom(w http.ResponseWriter, r *http.Request, user storage.User) {
	id, ok := pathID(r.URL.Path, "/update_room/")
	if !ok {
		http.NotFound(w, r)
		return
	}

	room, err := h.rooms.RoomByID(r.Context(), id)
	if err != nil {
		if errors.Is(err, storage.ErrRoomNotExist) {
			http.NotFound(w, r)
			return
		}
		h.serverError(w, err)
		return
	}

	if room.OwnerID != user.ID {
		h.forbidden(w)
		return
	}

	if r.Method != http.MethodPost {
		h.render(w, "create_room.html", &templateData{
			Title: "Update Room",
			User:  &user,
			Flash: popFlash(w, r),
			Form: map[string]string{
				"topic":       room.Topic,
				"description": room.Description,
			},
		})
		return
	}

	form := parseRoomForm(r)
	errs := form.validate()

	if errs.ok() {
		if _, err := h.rooms.UpdateRoom(r.Context(), id, form.Topic, form.Description); err != nil {
			h.serverError(w, err)
			return
		}

		setFlash(w, "Room Updated!", "success")
		http.Redirect(w, r, "/", http.StatusFound)
		return
	}

	h.render(w, "create_room.html", &templateData{
		Title: "Update Room",
		User:  &user,
		Form: map[string]string{
			"topic":       form.Topic,
			"description": form.Description,
		},
		Errors: errs,
	})
}

// deleteRoom handles POST "/delete_room/{id}". Only the owner may delete.
func (h *handler) deleteRoom(w http.ResponseWriter, r *http.Request, user storage.User) {
	if r.Method != http.MethodPost {
		w.Header().Set("Allow", http.MethodPost)
		http.Error(w, http.StatusText(http.StatusMethodNotAllowed), http.StatusMethodNotAllowed)
		return
	}

	id, ok := pathID(r.URL.Path, "/delete_room/")
	if !ok {
		http.NotFound(w, r)
		return
	}

	room, err := h.rooms.RoomByID(r.Context(), id)
	if err != nil {
		if errors.Is(err, storage.ErrRoomNotExist) {
			http.NotFound(w, r)
			return
		}
		h.serverError(w, err)
		return
	}

	if room.OwnerID != user.ID {
		h.forbidden(w)
		return
	}

	if err := h.rooms.DeleteRoom(r.Context(), id); err != nil && !errors.Is(err, storage.ErrRoomNotExist) {
		h.serverError(w, err)
		return
	}

	setFlash(w, "Room deleted!", "success")
	http.Redirect(w, r, "/", http.StatusFound)
}
