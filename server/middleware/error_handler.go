// Copyright 2025, the aCisDsec contributors
// SPDX-License-Identifier: AGPL-3.0-only

package middleware

import (
	"encoding/json"
	"errors"
	"maps"
	"net/http"
	"net/http/httptest"

	"github.com/rs/zerolog/log"

	"github.com/Dhousefe/aCisDsec/core/audit"
	"github.com/Dhousefe/aCisDsec/i18n"
	"github.com/Dhousefe/aCisDsec/server/request_context"
	"github.com/Dhousefe/aCisDsec/server/routes"
)

// errorBody is the JSON document written for a failed request.
type errorBody struct {
	Error     string `json:"error"`
	RequestID string `json:"request_id,omitempty"`
}

// CatchError wraps HTTP handlers that return an error, providing centralized
// error handling, response buffering, and request logging.
//
// The handler's output is buffered in an httptest.ResponseRecorder. When it
// returns an error, the buffered output is discarded and a JSON error body is
// written instead:
//   - a [*routes.StatusError] keeps its status code and message;
//   - an [*i18n.UserError] is a 400 with its localized message;
//   - any other error is a 500 with a generic message.
//
// Otherwise the buffered response is written to the client. The request is
// logged through an audit span either way.
func CatchError(handler FallibleHandler) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		ctx := request_context.FromRequest(r)

		span := audit.Span{
			Destination: audit.ToAdmin,
			RequestID:   ctx.RequestID,
			Method:      r.Method,
			URL:         r.URL.String(),
		}

		r = r.WithContext(span.Begin(r.Context()))
		defer span.End()

		recorder := httptest.NewRecorder()

		err := handler(recorder, r)

		ctx.RequestError = err

		var (
			statusErr *routes.StatusError
			userErr   *i18n.UserError
		)

		switch {
		case err == nil:
			if recorder.Code == 0 {
				recorder.Code = http.StatusOK
			}

			ctx.StatusCode = recorder.Code
			span.Size = recorder.Body.Len()

			maps.Copy(w.Header(), recorder.Header())
			w.WriteHeader(recorder.Code)

			if _, err := recorder.Body.WriteTo(w); err != nil {
				log.Err(err).Msg("Failed to write response body")
			}

		case errors.As(err, &statusErr):
			maps.Copy(w.Header(), recorder.Header())
			ctx.StatusCode = statusErr.Code
			span.Size = writeError(w, ctx, statusErr.Code, statusErr.Message())

		case errors.As(err, &userErr):
			ctx.StatusCode = http.StatusBadRequest
			span.Size = writeError(w, ctx, http.StatusBadRequest, userErr.Error())

		default:
			ctx.StatusCode = http.StatusInternalServerError
			span.Size = writeError(w, ctx, http.StatusInternalServerError, http.StatusText(http.StatusInternalServerError))
		}

		span.End()

		span.StatusCode = ctx.StatusCode
		span.Error = ctx.RequestError
		span.Actor = ctx.Actor

		span.Log()
	}
}

func writeError(w http.ResponseWriter, ctx *request_context.RequestContext, code int, msg string) int {
	body, err := json.Marshal(errorBody{Error: msg, RequestID: ctx.RequestID})
	if err != nil {
		body = []byte(`{"error":"internal error"}`)
	}

	w.Header().Set("Content-Type", "application/json; charset=utf-8")
	w.WriteHeader(code)

	n, err := w.Write(body)
	if err != nil {
		log.Err(err).Msg("Failed to write error body")
	}

	return n
}
