package server

import (
	"errors"
	"io/ioutil"
	"net/http"
	"path/filepath"

	"studyrooms/internal/storage"
	"studyrooms/internal/users"
)

// register handles GET/POST "/register". Syntactic validation runs first, then
// the directory's uniqueness checks; a request already carrying a session is
// sent home.
func (h *handler) register(w http.ResponseWriter, r *http.Request) {
	user, err := h.currentUser(r)
	if err != nil {
		h.serverError(w, err)
		return
	}
	if user != nil {
		http.Redirect(w, r, "/", http.StatusFound)
		return
	}

	if r.Method != http.MethodPost {
		h.render(w, "register.html", &templateData{
			Title: "Register",
			Flash: popFlash(w, r),
		})
		return
	}

	form := parseRegistrationForm(r)
	errs := form.validate()

	if errs.ok() {
		_, err := h.users.Register(r.Context(), users.Registration{
			Name:     form.Name,
			Username: form.Username,
			Email:    form.Email,
			Password: form.Password,
		})
		switch {
		case err == nil:
			setFlash(w, "Successfully registered!", "success")
			http.Redirect(w, r, "/login", http.StatusFound)
			return
		case errors.Is(err, storage.ErrUsernameTaken):
			errs.add("username", "Username already taken. Please choose another one.")
		case errors.Is(err, storage.ErrEmailTaken):
			errs.add("email", "Email already taken. Please choose another one.")
		default:
			h.serverError(w, err)
			return
		}
	}

	h.render(w, "register.html", &templateData{
		Title: "Register",
		Form: map[string]string{
			"name":     form.Name,
			"username": form.Username,
			"email":    form.Email,
		},
		Errors: errs,
	})
}

// login handles GET/POST "/login". A safe "next" continuation survives the
// round trip through the form and is honored after success.
func (h *handler) login(w http.ResponseWriter, r *http.Request) {
	user, err := h.currentUser(r)
	if err != nil {
		h.serverError(w, err)
		return
	}
	if user != nil {
		http.Redirect(w, r, "/", http.StatusFound)
		return
	}

	next := safeNext(r.URL.Query().Get("next"))

	if r.Method != http.MethodPost {
		h.render(w, "login.html", &templateData{
			Title: "Login",
			Flash: popFlash(w, r),
			Next:  next,
		})
		return
	}

	if next == "" {
		next = safeNext(r.FormValue("next"))
	}

	username := r.FormValue("username")
	password := r.FormValue("password")

	authed, err := h.users.Authenticate(r.Context(), username, password)
	if err != nil {
		if errors.Is(err, users.ErrInvalidCredentials) {
			h.render(w, "login.html", &templateData{
				Title: "Login",
				Flash: &Flash{Message: "Incorrect username and password!", Category: "danger"},
				Form:  map[string]string{"username": username},
				Next:  next,
			})
			return
		}
		h.serverError(w, err)
		return
	}

	token, err := h.sessions.Start(r.Context(), authed)
	if err != nil {
		h.serverError(w, err)
		return
	}

	http.SetCookie(w, &http.Cookie{
		Name:     sessionCookie,
		Value:    token,
		Path:     "/",
		HttpOnly: true,
	})

	if next == "" {
		next = "/"
	}
	http.Redirect(w, r, next, http.StatusFound)
}

// logout ends the session. Logging out twice, or without a session, is fine.
func (h *handler) logout(w http.ResponseWriter, r *http.Request) {
	if c, err := r.Cookie(sessionCookie); err == nil {
		if err := h.sessions.End(r.Context(), c.Value); err != nil {
			h.serverError(w, err)
			return
		}
	}

	http.SetCookie(w, &http.Cookie{
		Name:     sessionCookie,
		Value:    "",
		Path:     "/",
		MaxAge:   -1,
		HttpOnly: true,
	})

	setFlash(w, "Logged out! See you next time.", "success")
	http.Redirect(w, r, "/", http.StatusFound)
}

// account handles GET/POST "/account": profile update with an optional picture
// upload. The form comes back pre-filled with the stored values on GET.
func (h *handler) account(w http.ResponseWriter, r *http.Request, user storage.User) {
	if r.Method != http.MethodPost {
		h.render(w, "account.html", &templateData{
			Title: "Account",
			User:  &user,
			Flash: popFlash(w, r),
			Form: map[string]string{
				"name":     user.Name,
				"username": user.Username,
				"email":    user.Email,
			},
		})
		return
	}

	if err := r.ParseMultipartForm(maxUploadBytes); err != nil && err != http.ErrNotMultipart {
		http.Error(w, "Can not parse form", http.StatusBadRequest)
		return
	}

	form := parseAccountForm(r)
	errs := form.validate()

	var picture *users.PictureUpload
	if errs.ok() {
		var err error
		picture, err = formPicture(r)
		if err != nil {
			errs.add("picture", "Only jpg and png pictures are allowed.")
		}
	}

	if errs.ok() {
		_, err := h.users.UpdateProfile(r.Context(), users.ProfileUpdate{
			UserID:   user.ID,
			Name:     form.Name,
			Username: form.Username,
			Email:    form.Email,
			Picture:  picture,
		})
		switch {
		case err == nil:
			setFlash(w, "Account Updated!", "success")
			http.Redirect(w, r, "/account", http.StatusFound)
			return
		case errors.Is(err, storage.ErrUsernameTaken):
			errs.add("username", "Username already taken. Please choose another one.")
		case errors.Is(err, storage.ErrEmailTaken):
			errs.add("email", "Email already taken. Please choose another one.")
		case errors.Is(err, users.ErrUnsupportedPicture):
			errs.add("picture", "Only jpg and png pictures are allowed.")
		default:
			h.serverError(w, err)
			return
		}
	}

	h.render(w, "account.html", &templateData{
		Title: "Account",
		User:  &user,
		Form: map[string]string{
			"name":     form.Name,
			"username": form.Username,
			"email":    form.Email,
		},
		Errors: errs,
	})
}

// formPicture reads the optional "picture" multipart field. No file means
// (nil, nil); the format itself is judged by the picture store.
func formPicture(r *http.Request) (*users.PictureUpload, error) {
	if r.MultipartForm == nil {
		return nil, nil
	}

	file, header, err := r.FormFile("picture")
	if err != nil {
		if err == http.ErrMissingFile {
			return nil, nil
		}
		return nil, err
	}
	defer file.Close()

	data, err := ioutil.ReadAll(file)
	if err != nil {
		return nil, err
	}

	return &users.PictureUpload{
		Data: data,
		Ext:  filepath.Ext(header.Filename),
	}, nil
}

// profile handles GET "/profile/{username}".
func (h *handler) profile(w http.ResponseWriter, r *http.Request, user storage.User) {
	username, ok := pathName(r.URL.Path, "/profile/")
	if !ok {
		http.NotFound(w, r)
		return
	}

	found, err := h.users.ByUsername(r.Context(), username)
	if err != nil {
		if errors.Is(err, storage.ErrUserNotExist) {
			http.NotFound(w, r)
			return
		}
		h.serverError(w, err)
		return
	}

	h.render(w, "profile.html", &templateData{
		Title:   "Profile",
		User:    &user,
		Flash:   popFlash(w, r),
		Profile: &found,
	})
}

// userRooms handles GET "/user_rooms/{username}": the public per-user room
// listing, same page contract as the global one.
func (h *handler) userRooms(w http.ResponseWriter, r *http.Request) {
	username, ok := pathName(r.URL.Path, "/user_rooms/")
	if !ok {
		http.NotFound(w, r)
		return
	}

	owner, err := h.users.ByUsername(r.Context(), username)
	if err != nil {
		if errors.Is(err, storage.ErrUserNotExist) {
			http.NotFound(w, r)
			return
		}
		h.serverError(w, err)
		return
	}

	listing, err := h.rooms.RoomsByOwner(r.Context(), owner.ID, queryPage(r))
	if err != nil {
		h.serverError(w, err)
		return
	}

	user, err := h.currentUser(r)
	if err != nil {
		h.serverError(w, err)
		return
	}

	h.render(w, "user_rooms.html", &templateData{
		Title:   "Rooms",
		User:    user,
		Flash:   popFlash(w, r),
		Profile: &owner,
		Listing: &listing,
	})
}
