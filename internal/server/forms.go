package server

import (
	"net/http"
	"net/mail"
	"strings"
	"unicode/utf8"
)

// fieldErrors maps form field names to user-correctable messages. Only the
// first error per field is kept, matching top-down validation order.
type fieldErrors map[string]string

func (e fieldErrors) add(field, message string) {
	if _, ok := e[field]; !ok {
		e[field] = message
	}
}

func (e fieldErrors) ok() bool { return len(e) == 0 }

// The rules below are purely syntactic. Uniqueness of username and email is a
// business check owned by the user directory and runs after these pass.

func validateName(errs fieldErrors, name string) {
	if name == "" {
		errs.add("name", "Name is required.")
	} else if utf8.RuneCountInString(name) > 20 {
		errs.add("name", "Name must be at most 20 characters long.")
	}
}

func validateUsername(errs fieldErrors, username string) {
	if n := utf8.RuneCountInString(username); n < 5 || n > 10 {
		errs.add("username", "Username must be between 5 and 10 characters long.")
	}
}

func validateEmail(errs fieldErrors, email string) {
	addr, err := mail.ParseAddress(email)
	if err != nil || addr.Address != email {
		errs.add("email", "Enter a valid email address.")
	}
}

type registrationForm struct {
	Name     string
	Username string
	Email    string
	Password string
	Confirm  string
}

func parseRegistrationForm(r *http.Request) registrationForm {
	return registrationForm{
		Name:     strings.TrimSpace(r.FormValue("name")),
		Username: strings.TrimSpace(r.FormValue("username")),
		Email:    strings.TrimSpace(r.FormValue("email")),
		Password: r.FormValue("password"),
		Confirm:  r.FormValue("confirm_password"),
	}
}

func (f registrationForm) validate() fieldErrors {
	errs := fieldErrors{}
	validateName(errs, f.Name)
	validateUsername(errs, f.Username)
	validateEmail(errs, f.Email)
	if f.Password == "" {
		errs.add("password", "Password is required.")
	}
	if f.Confirm != f.Password {
		errs.add("confirm_password", "Passwords must match.")
	}
	return errs
}

type accountForm struct {
	Name     string
	Username string
	Email    string
}

func parseAccountForm(r *http.Request) accountForm {
	return accountForm{
		Name:     strings.TrimSpace(r.FormValue("name")),
		Username: strings.TrimSpace(r.FormValue("username")),
		Email:    strings.TrimSpace(r.FormValue("email")),
	}
}

func (f accountForm) validate() fieldErrors {
	errs := fieldErrors{}
	validateName(errs, f.Name)
	validateUsername(errs, f.Username)
	validateEmail(errs, f.Email)
	return errs
}

type roomForm struct {
	Topic       string
	Description string
}

func parseRoomForm(r *http.Request) roomForm {
	return roomForm{
		Topic:       strings.TrimSpace(r.FormValue("topic")),
		Description: strings.TrimSpace(r.FormValue("description")),
	}
}

func (f roomForm) validate() fieldErrors {
	errs := fieldErrors{}
	if f.Topic == "" {
		errs.add("topic", "Topic is required.")
	} else if utf8.RuneCountInString(f.Topic) > 20 {
		errs.add("topic", "Topic must be at most 20 characters long.")
	}
	if f.Description == "" {
		errs.add("description", "Description is required.")
	} else if utf8.RuneCountInString(f.Description) > 100 {
		errs.add("description", "Description must be at most 100 characters long.")
	}
	return errs
}

// safeNext accepts only same-site continuation paths, rejecting anything that
// could redirect off-site after login.
func safeNext(next string) string {
	if strings.HasPrefix(next, "/") && !strings.HasPrefix(next, "//") && !strings.ContainsAny(next, "\\\r\n") {
		return next
	}
	return ""
}
