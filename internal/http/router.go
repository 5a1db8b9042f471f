package http

import (
	"net/http"
	"strings"
	"todo-server/internal/http/handler"
)

func NewRouter(todoHandler *handler.TodoHandler) http.Handler {
	mux := http.NewServeMux()

	// /todos (create, list)
	mux.HandleFunc("/todos", func(w http.ResponseWriter, r *http.Request) {
		w.Header().Set("Content-Type", handler.ContentTypeJSON)
		switch r.Method {
		case http.MethodGet:
			todoHandler.List(w, r)
		case http.MethodPost:
			todoHandler.Create(w, r)
		default:
			w.WriteHeader(http.StatusMethodNotAllowed)
		}
	})

	mux.HandleFunc("/health", func(w http.ResponseWriter, r *http.Request) {
		if r.Method != http.MethodGet {
			w.WriteHeader(http.StatusMethodNotAllowed)
			return
		}
		todoHandler.Health(w, r)
	})

	// Unknown routes get a bare 404 like every other error reply.
	mux.HandleFunc("/", func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusNotFound)
	})

	// /todos/{id} (get, update, delete, create)
	item := func(w http.ResponseWriter, r *http.Request) {
		id, ok := handler.ItemID(r.URL.Path)
		if !ok {
			w.WriteHeader(http.StatusNotFound)
			return
		}

		switch r.Method {
		case http.MethodGet:
			todoHandler.Get(w, r, id)
		case http.MethodPut:
			todoHandler.Update(w, r, id)
		case http.MethodDelete:
			todoHandler.Delete(w, r, id)
		case http.MethodPost:
			todoHandler.CreateAtItem(w, r, id)
		default:
			w.WriteHeader(http.StatusMethodNotAllowed)
		}
	}

	// Item paths bypass the mux: it would clean /todos//{id} and
	// /todos/./{id} into a redirect to the real record instead of a 404.
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		if strings.HasPrefix(r.URL.Path, "/todos/") {
			item(w, r)
			return
		}
		mux.ServeHTTP(w, r)
	})
}
