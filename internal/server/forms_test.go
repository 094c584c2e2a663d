package server

import (
	"net/http"
	"net/url"
	"strings"
	"testing"

	"github.com/stretchr/testify/require"
)

func formRequest(t *testing.T, form url.Values) *http.Request {
	t.Helper()
	r, err := http.NewRequest(http.MethodPost, "/", strings.NewReader(form.Encode()))
	require.NoError(t, err)
	r.Header.Set("Content-Type", "application/x-www-form-urlencoded")
	return r
}

func TestRegistrationFormValid(t *testing.T) {
	t.Parallel()

	r := formRequest(t, url.Values{
		"name":             {"  Alice "},
		"username":         {"alice01"},
		"email":            {"a@x.com"},
		"password":         {"pass-123"},
		"confirm_password": {"pass-123"},
	})

	form := parseRegistrationForm(r)
	require.Equal(t, "Alice", form.Name)
	require.True(t, form.validate().ok())
}

func TestRegistrationFormRules(t *testing.T) {
	t.Parallel()

	valid := func() registrationForm {
		return registrationForm{
			Name:     "Alice",
			Username: "alice01",
			Email:    "a@x.com",
			Password: "pass-123",
			Confirm:  "pass-123",
		}
	}

	tests := []struct {
		name   string
		mutate func(f *registrationForm)
		field  string
	}{
		{"empty name", func(f *registrationForm) { f.Name = "" }, "name"},
		{"long name", func(f *registrationForm) { f.Name = strings.Repeat("a", 21) }, "name"},
		{"short username", func(f *registrationForm) { f.Username = "abcd" }, "username"},
		{"long username", func(f *registrationForm) { f.Username = "abcdefghijk" }, "username"},
		{"bad email", func(f *registrationForm) { f.Email = "nope" }, "email"},
		{"display-name email", func(f *registrationForm) { f.Email = "Alice <a@x.com>" }, "email"},
		{"empty password", func(f *registrationForm) { f.Password, f.Confirm = "", "" }, "password"},
		{"mismatch", func(f *registrationForm) { f.Confirm = "other" }, "confirm_password"},
	}

	for _, tt := range tests {
		tt := tt
		t.Run(tt.name, func(t *testing.T) {
			t.Parallel()
			f := valid()
			tt.mutate(&f)
			errs := f.validate()
			require.Contains(t, errs, tt.field)
		})
	}
}

func TestFieldErrorsKeepFirst(t *testing.T) {
	t.Parallel()

	errs := fieldErrors{}
	errs.add("name", "first")
	errs.add("name", "second")
	require.Equal(t, "first", errs["name"])
	require.False(t, errs.ok())
}

func TestRoomFormRules(t *testing.T) {
	t.Parallel()

	f := roomForm{Topic: "Algebra", Description: "study group"}
	require.True(t, f.validate().ok())

	f = roomForm{Topic: strings.Repeat("x", 21), Description: strings.Repeat("y", 101)}
	errs := f.validate()
	require.Contains(t, errs, "topic")
	require.Contains(t, errs, "description")

	// boundary lengths pass
	f = roomForm{Topic: strings.Repeat("x", 20), Description: strings.Repeat("y", 100)}
	require.True(t, f.validate().ok())
}

func TestSafeNext(t *testing.T) {
	t.Parallel()

	require.Equal(t, "/create_room", safeNext("/create_room"))
	require.Equal(t, "/room/3?page=2", safeNext("/room/3?page=2"))

	for _, bad := range []string{"", "https://evil.example", "//evil.example", "/\\evil", "relative", "/a\r\nSet-Cookie:x"} {
		require.Empty(t, safeNext(bad), bad)
	}
}
