package routes

import (
	"net/http"
	"strings"

	"github.com/go-chi/chi/v5"

	"github.com/angelmondragon/halcart/api/responses"
)

var knownMethods = []string{
	http.MethodGet,
	http.MethodHead,
	http.MethodPost,
	http.MethodPut,
	http.MethodPatch,
	http.MethodDelete,
	http.MethodOptions,
}

// allowedMethods lists the methods mux routes for path, in a stable order.
func allowedMethods(mux *chi.Mux, path string) []string {
	allowed := make([]string, 0, len(knownMethods))
	for _, method := range knownMethods {
		if mux.Match(chi.NewRouteContext(), method, path) {
			allowed = append(allowed, method)
		}
	}
	return allowed
}

// methodNotAllowed answers 405 with an Allow header naming what the path does support.
func methodNotAllowed(mux *chi.Mux) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		w.Header().Set("Allow", strings.Join(allowedMethods(mux, r.URL.Path), ", "))
		responses.WriteEmpty(w, http.StatusMethodNotAllowed)
	}
}

// options answers OPTIONS on any routed path with its Allow header.
func options(mux *chi.Mux) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		w.Header().Set("Allow", strings.Join(allowedMethods(mux, r.URL.Path), ", "))
		responses.WriteEmpty(w, http.StatusNoContent)
	}
}

func notFound(w http.ResponseWriter, _ *http.Request) {
	responses.WriteEmpty(w, http.StatusNotFound)
}
