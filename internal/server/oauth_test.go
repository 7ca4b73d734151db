package server

import (
	"net/http"
	"net/http/httptest"
	"testing"

	"golang.org/x/oauth2"
)

func TestOAuthHandler(t *testing.T) {
	config := &oauth2.Config{
		ClientID:     "id",
		ClientSecret: "secret",
		Endpoint:     oauth2.Endpoint{TokenURL: "http://127.0.0.1:0/token"},
	}

	t.Run("Rejects Invalid State", func(t *testing.T) {
		handler := NewOAuthHandler(config, "good-state")

		req := httptest.NewRequest("GET", "/callback?code=abc&state=bad-state", nil)
		w := httptest.NewRecorder()
		handler.ServeHTTP(w, req)

		if w.Code != http.StatusBadRequest {
			t.Errorf("expected 400, got %d", w.Code)
		}

		result := <-handler.Result()
		if result.Error() == nil {
			t.Error("expected error result")
		}
	})

	t.Run("Reports Provider Denial", func(t *testing.T) {
		handler := NewOAuthHandler(config, "state")

		req := httptest.NewRequest("GET", "/callback?state=state&error=access_denied&error_description=nope", nil)
		w := httptest.NewRecorder()
		handler.ServeHTTP(w, req)

		if w.Code != http.StatusBadRequest {
			t.Errorf("expected 400, got %d", w.Code)
		}

		result := <-handler.Result()
		if result.Error() == nil {
			t.Error("expected error result")
		}
	})

	t.Run("Processes Only First Callback", func(t *testing.T) {
		handler := NewOAuthHandler(config, "state")

		first := httptest.NewRequest("GET", "/callback?state=wrong", nil)
		w1 := httptest.NewRecorder()
		handler.ServeHTTP(w1, first)

		second := httptest.NewRequest("GET", "/callback?state=wrong", nil)
		w2 := httptest.NewRecorder()
		handler.ServeHTTP(w2, second)

		if w2.Code != http.StatusBadRequest {
			t.Errorf("expected 400 on replay, got %d", w2.Code)
		}

		// Channel carries exactly one result and is then closed.
		<-handler.Result()
		if _, ok := <-handler.Result(); ok {
			t.Error("expected result channel closed after first result")
		}
	})

	t.Run("Routes", func(t *testing.T) {
		handler := NewOAuthHandler(config, "state")
		routes := handler.Routes()
		if len(routes) != 1 || routes[0] != "GET /callback" {
			t.Errorf("unexpected routes %v", routes)
		}
	})
}

func TestBasicRouter(t *testing.T) {
	t.Run("Method Mismatch Gets 405", func(t *testing.T) {
		router := NewBasicRouter()
		router.HandleFunc("POST", "/thing", func(w http.ResponseWriter, r *http.Request) {
			w.WriteHeader(http.StatusOK)
		})

		req := httptest.NewRequest("GET", "/thing", nil)
		w := httptest.NewRecorder()
		router.ServeHTTP(w, req)

		if w.Code != http.StatusMethodNotAllowed {
			t.Errorf("expected 405, got %d", w.Code)
		}
	})

	t.Run("Middleware Applies In Order", func(t *testing.T) {
		router := NewBasicRouter()

		var order []string
		mw := func(name string) Middleware {
			return func(next http.Handler) http.Handler {
				return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
					order = append(order, name)
					next.ServeHTTP(w, r)
				})
			}
		}

		router.Use(mw("outer"), mw("inner"))
		router.HandleFunc("GET", "/thing", func(w http.ResponseWriter, r *http.Request) {
			order = append(order, "handler")
		})

		req := httptest.NewRequest("GET", "/thing", nil)
		router.ServeHTTP(httptest.NewRecorder(), req)

		if len(order) != 3 || order[0] != "outer" || order[1] != "inner" || order[2] != "handler" {
			t.Errorf("unexpected middleware order %v", order)
		}
	})
}
