package common

import (
	"encoding/json"
	"errors"
	"net/http"

	"associados_api/internal/platform/config"
)

// ErrorEnvelope is the uniform shape every failure is reported in.
type ErrorEnvelope struct {
	Path    string              `json:"path"`
	Method  string              `json:"method"`
	Status  int                 `json:"status"`
	Message string              `json:"message"`
	Errors  map[string][]string `json:"errors,omitempty"`
}

func RespondWithJSON(w http.ResponseWriter, code int, payload interface{}) {
	response, err := json.Marshal(payload)
	if err != nil {
		w.Header().Set("Content-Type", "application/json")
		w.WriteHeader(http.StatusInternalServerError)
		w.Write([]byte(`{"error": "Failed to marshal JSON response"}`))
		return
	}
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(code)
	w.Write(response)
}

// RespondError translates any failure surfaced during request handling
// into the uniform envelope. Branches are checked in priority order:
// validation, authentication, not-found, self-declared status, 500.
func RespondError(w http.ResponseWriter, r *http.Request, err error) {
	env := ErrorEnvelope{
		Path:   r.URL.Path,
		Method: r.Method,
	}

	var vErr *ValidationError
	var aErr *AuthError
	var nfErr *NotFoundError
	var sc StatusCoder

	switch {
	case errors.As(err, &vErr):
		env.Status = http.StatusUnprocessableEntity
		env.Message = MsgInvalidInput
		env.Errors = vErr.Fields

	case errors.As(err, &aErr):
		env.Status = http.StatusUnauthorized
		env.Message = aErr.Message

	case errors.Is(err, ErrUnauthorized):
		env.Status = http.StatusUnauthorized
		env.Message = MsgNotAuthorized

	case errors.As(err, &nfErr):
		env.Status = http.StatusNotFound
		env.Message = nfErr.Message

	case errors.Is(err, ErrNotFound):
		env.Status = http.StatusNotFound
		env.Message = MsgResourceNotFound

	case errors.As(err, &sc):
		env.Status = sc.StatusCode()
		env.Message = err.Error()

	default:
		env.Status = http.StatusInternalServerError
		env.Message = err.Error()
	}

	if env.Status == http.StatusInternalServerError &&
		config.AppConfig != nil && config.AppConfig.IsProduction() {
		env.Message = MsgInternalError
	}

	RespondWithJSON(w, env.Status, env)
}
