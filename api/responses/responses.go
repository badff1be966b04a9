package responses

import (
	"context"
	"encoding/json"
	"errors"
	"log"
	"net/http"

	"github.com/angelmondragon/halcart/api/hal"
	pkgerrors "github.com/angelmondragon/halcart/pkg/errors"
	"github.com/angelmondragon/halcart/pkg/logger"
)

const (
	contentTypeJSON  = "application/json"
	contentTypePlain = "text/plain; charset=utf-8"
)

func WriteSuccess(w http.ResponseWriter, data any) {
	WriteSuccessStatus(w, http.StatusOK, data)
}

func WriteSuccessStatus(w http.ResponseWriter, status int, data any) {
	writeJSON(w, contentTypeJSON, status, SuccessEnvelope{Data: data})
}

// WriteHAL writes a HAL representation with its entity tag and cache policy.
func WriteHAL(w http.ResponseWriter, status int, etag, cacheControl string, doc any) {
	setValidators(w, etag, cacheControl)
	writeJSON(w, hal.ContentType, status, doc)
}

// WriteHead answers a HEAD probe with the headers a GET would carry.
func WriteHead(w http.ResponseWriter, etag, cacheControl string) {
	setValidators(w, etag, cacheControl)
	w.Header().Set("Content-Type", hal.ContentType)
	w.WriteHeader(http.StatusOK)
}

func WriteNotModified(w http.ResponseWriter, etag string) {
	if etag != "" {
		w.Header().Set("ETag", etag)
	}
	WriteEmpty(w, http.StatusNotModified)
}

// WriteEmpty writes a bodyless plain-text response.
func WriteEmpty(w http.ResponseWriter, status int) {
	w.Header().Set("Content-Type", contentTypePlain)
	w.WriteHeader(status)
}

func setValidators(w http.ResponseWriter, etag, cacheControl string) {
	if etag != "" {
		w.Header().Set("ETag", etag)
	}
	if cacheControl != "" {
		w.Header().Set("Cache-Control", cacheControl)
	}
}

func WriteError(ctx context.Context, logg *logger.Logger, w http.ResponseWriter, err error) {
	if err == nil {
		err = errors.New("unknown error")
	}

	typed := pkgerrors.As(err)
	if typed == nil {
		typed = pkgerrors.Wrap(pkgerrors.CodeInternal, err, "unexpected error")
	}

	meta := pkgerrors.MetadataFor(typed.Code())

	if logg != nil && meta.HTTPStatus >= http.StatusInternalServerError {
		ctx = logg.WithFields(ctx, map[string]any{
			"error_code":  string(typed.Code()),
			"error_chain": pkgerrors.Chain(err),
		})
		logg.Error(ctx, "request.error", err)
	}

	if meta.EmptyBody {
		WriteEmpty(w, meta.HTTPStatus)
		return
	}

	msg := meta.PublicMessage
	switch typed.Code() {
	case pkgerrors.CodeValidation,
		pkgerrors.CodeUnprocessable,
		pkgerrors.CodeIdempotency:
		if m := typed.Message(); m != "" {
			msg = m
		}
	}

	payload := ErrorEnvelope{
		Error: APIError{
			Code:    string(typed.Code()),
			Message: msg,
		},
	}

	if meta.DetailsAllowed {
		if details := typed.Details(); details != nil {
			payload.Error.Details = details
		}
	}

	writeJSON(w, contentTypeJSON, meta.HTTPStatus, payload)
}

func writeJSON(w http.ResponseWriter, contentType string, status int, payload any) {
	w.Header().Set("Content-Type", contentType)
	w.WriteHeader(status)
	if err := json.NewEncoder(w).Encode(payload); err != nil {
		log.Printf(`{"level":"error","msg":"failed to encode response","err":"%v"}`, err)
	}
}
