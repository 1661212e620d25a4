package restauth

import (
	"context"
	"encoding/json"
	"errors"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/MarkoPoloResearchLab/staybook/pkg/booking"
)

func TestAuthenticateReturnsIssuedSubject(test *testing.T) {
	test.Parallel()
	server := httptest.NewServer(http.HandlerFunc(func(writer http.ResponseWriter, request *http.Request) {
		if request.URL.Path != "/sessions" || request.Method != http.MethodPost {
			test.Errorf("unexpected request %s %s", request.Method, request.URL.Path)
		}
		var payload struct {
			Email    string `json:"email"`
			Password string `json:"password"`
		}
		if err := json.NewDecoder(request.Body).Decode(&payload); err != nil {
			test.Errorf("decode request: %v", err)
		}
		if payload.Email != "ada@example.com" {
			test.Errorf("unexpected email %q", payload.Email)
		}
		_ = json.NewEncoder(writer).Encode(map[string]string{"subject_id": "subject-7"})
	}))
	defer server.Close()

	client := New(server.URL, time.Second, nil)
	subject, err := client.Authenticate(context.Background(), mustEmail(test, "ada@example.com"), mustPassword(test, "secret-password"))
	if err != nil {
		test.Fatalf("authenticate: %v", err)
	}
	if subject.String() != "subject-7" {
		test.Fatalf("expected subject-7, got %s", subject.String())
	}
}

func TestAuthenticateUnauthorizedMapsToBadCredentials(test *testing.T) {
	test.Parallel()
	server := httptest.NewServer(http.HandlerFunc(func(writer http.ResponseWriter, request *http.Request) {
		writer.WriteHeader(http.StatusUnauthorized)
	}))
	defer server.Close()

	client := New(server.URL, time.Second, nil)
	_, err := client.Authenticate(context.Background(), mustEmail(test, "ada@example.com"), mustPassword(test, "wrong-password"))
	if !errors.Is(err, booking.ErrBadCredentials) {
		test.Fatalf("expected ErrBadCredentials, got %v", err)
	}
}

func TestCreateSubjectSurfacesProviderReason(test *testing.T) {
	test.Parallel()
	server := httptest.NewServer(http.HandlerFunc(func(writer http.ResponseWriter, request *http.Request) {
		writer.WriteHeader(http.StatusConflict)
		_ = json.NewEncoder(writer).Encode(map[string]string{"reason": "email-taken", "message": "already registered"})
	}))
	defer server.Close()

	client := New(server.URL, time.Second, nil)
	_, err := client.CreateSubject(context.Background(), mustEmail(test, "ada@example.com"), mustPassword(test, "secret-password"))
	if err == nil {
		test.Fatalf("expected error")
	}
	if got := err.Error(); got != "auth call /subjects: email-taken" {
		test.Fatalf("unexpected error message: %s", got)
	}
}

func TestDeleteSubjectUsesSubjectPath(test *testing.T) {
	test.Parallel()
	var seenPath string
	server := httptest.NewServer(http.HandlerFunc(func(writer http.ResponseWriter, request *http.Request) {
		seenPath = request.Method + " " + request.URL.Path
		writer.WriteHeader(http.StatusNoContent)
	}))
	defer server.Close()

	client := New(server.URL, time.Second, nil)
	subject, err := booking.NewAuthSubject("subject-7")
	if err != nil {
		test.Fatalf("auth subject: %v", err)
	}
	if err := client.DeleteSubject(context.Background(), subject); err != nil {
		test.Fatalf("delete subject: %v", err)
	}
	if seenPath != "DELETE /subjects/subject-7" {
		test.Fatalf("unexpected request: %s", seenPath)
	}
}

func mustEmail(test *testing.T, raw string) booking.EmailAddress {
	test.Helper()
	email, err := booking.NewEmailAddress(raw)
	if err != nil {
		test.Fatalf("email: %v", err)
	}
	return email
}

func mustPassword(test *testing.T, raw string) booking.Password {
	test.Helper()
	password, err := booking.NewPassword(raw)
	if err != nil {
		test.Fatalf("password: %v", err)
	}
	return password
}
