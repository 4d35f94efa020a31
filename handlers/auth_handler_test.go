package handlers

import (
	"net/http/httptest"
	"strings"
	"testing"

	"github.com/gofiber/fiber/v2"
)

func registerApp() *fiber.App {
	app := fiber.New()
	app.Post("/auth/register", Register)
	return app
}

func postJSON(t *testing.T, app *fiber.App, path, body string) int {
	t.Helper()
	req := httptest.NewRequest("POST", path, strings.NewReader(body))
	req.Header.Set("Content-Type", "application/json")
	resp, err := app.Test(req)
	if err != nil {
		t.Fatalf("request failed: %v", err)
	}
	defer resp.Body.Close()
	return resp.StatusCode
}

func TestRegisterValidation(t *testing.T) {
	app := registerApp()

	tests := []struct {
		name string
		body string
		want int
	}{
		{"malformed body", `{`, fiber.StatusBadRequest},
		{"missing fields", `{"email":"a@b.com"}`, fiber.StatusBadRequest},
		{
			"admin role not self-assignable",
			`{"username":"eve","email":"eve@example.com","password":"secret","role":"admin"}`,
			fiber.StatusBadRequest,
		},
		{
			"unknown role",
			`{"username":"bob","email":"bob@example.com","password":"secret","role":"announcer"}`,
			fiber.StatusBadRequest,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if got := postJSON(t, app, "/auth/register", tt.body); got != tt.want {
				t.Errorf("status = %d, want %d", got, tt.want)
			}
		})
	}
}
