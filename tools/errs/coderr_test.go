package errs

import (
	"fmt"
	"net/http"
	"strings"
	"testing"
)

func TestCodeSurvivesWrapping(t *testing.T) {
	err := ErrRecordNotFound.WrapMsg("conversation missing", "id", "abc")
	if Code(err) != RecordNotFoundError {
		t.Fatalf("Code = %d", Code(err))
	}
	// Another wrap layer on top must not lose the code.
	err = fmt.Errorf("handler: %w", err)
	if Code(err) != RecordNotFoundError {
		t.Fatalf("Code after rewrap = %d", Code(err))
	}
}

func TestCodeDefaultsToInternal(t *testing.T) {
	if Code(New("plain")) != ServerInternalError {
		t.Fatalf("plain error must map to internal, got %d", Code(New("plain")))
	}
}

func TestHTTPStatusMapping(t *testing.T) {
	cases := []struct {
		err  error
		want int
	}{
		{ErrArgs.WrapMsg("x"), http.StatusBadRequest},
		{ErrRecordNotFound.WrapMsg("x"), http.StatusNotFound},
		{ErrTokenInvalid.WrapMsg("x"), http.StatusUnauthorized},
		{ErrTokenExpired.WrapMsg("x"), http.StatusUnauthorized},
		{ErrStorage.WrapMsg("x"), http.StatusInternalServerError},
		{New("plain"), http.StatusInternalServerError},
	}
	for _, tc := range cases {
		if got := HTTPStatus(tc.err); got != tc.want {
			t.Errorf("HTTPStatus(%v) = %d, want %d", tc.err, got, tc.want)
		}
	}
}

func TestMessageHidesInternals(t *testing.T) {
	err := ErrStorage.WrapMsg("dial tcp 10.0.0.5:27017 refused")
	if msg := Message(err); strings.Contains(msg, "10.0.0.5") {
		t.Fatalf("internal detail leaked: %q", msg)
	}
	if msg := Message(New("mongo blew up")); msg != "internal server error" {
		t.Fatalf("plain error leaked: %q", msg)
	}
}

func TestMessageShowsClientDetail(t *testing.T) {
	err := ErrArgs.WrapMsg("text exceeds max length")
	msg := Message(err)
	if !strings.Contains(msg, "text exceeds max length") {
		t.Fatalf("client-facing detail missing: %q", msg)
	}
}

func TestErrPanicCarriesValue(t *testing.T) {
	err := ErrPanic("boom")
	if Code(err) != ServerInternalError {
		t.Fatalf("Code = %d", Code(err))
	}
	if !strings.Contains(err.Error(), "boom") {
		t.Fatalf("panic value missing from error: %v", err)
	}
	if ErrPanic(nil) != nil {
		t.Fatal("nil recover value must yield nil error")
	}
}

func TestWithDetailAccumulates(t *testing.T) {
	e := ErrArgs.WithDetail("first").WithDetail("second")
	if e.Detail != "first, second" {
		t.Fatalf("Detail = %q", e.Detail)
	}
	if ErrArgs.Detail != "" {
		t.Fatal("WithDetail must not mutate the shared sentinel")
	}
}
