package http

import (
	"net/http"

	"github.com/quietloops/tally/pkg/httpx"
	"github.com/quietloops/tally/pkg/i18nx"
)

// errorResponse is the wire shape of every failure.
type errorResponse struct {
	Detail string `json:"detail"`
}

type messageResponse struct {
	Message string `json:"message"`
}

// requestLanguage negotiates the response language from an explicit ?lang=
// override and the Accept-Language header.
func requestLanguage(r *http.Request) string {
	return i18nx.Negotiate(r.URL.Query().Get("lang"), r.Header.Get("Accept-Language"))
}

// writeError resolves the message key through the translator in the request's
// negotiated language and writes it with the given status.
func writeError(w http.ResponseWriter, r *http.Request, t i18nx.Translator, status int, key string) {
	httpx.WriteJSON(w, status, errorResponse{Detail: t.Translate(key, requestLanguage(r))})
}
