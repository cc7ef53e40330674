package server

import (
	"encoding/json"
	"errors"
	"net/http"

	"github.com/go-chi/chi/v5"

	ferrors "github.com/vango-dev/formstate/internal/errors"
	"github.com/vango-dev/formstate/pkg/form"
)

// maxBodyBytes caps request bodies.
const maxBodyBytes = 1 << 20

// FieldView is the body of GET /fields/{key}.
type FieldView struct {
	Key    string      `json:"key"`
	Value  any         `json:"value"`
	Status form.Status `json:"status"`
	Manual form.Status `json:"manual"`
	Error  string      `json:"error,omitempty"`
}

type errorBody struct {
	Code  string `json:"code,omitempty"`
	Error string `json:"error"`
}

func (s *Server) handleValues(w http.ResponseWriter, r *http.Request) {
	var values map[string]any
	if !s.run(w, r, func() { values = s.form.ReadAll() }) {
		return
	}
	writeJSON(w, http.StatusOK, values)
}

func (s *Server) handleNestedValues(w http.ResponseWriter, r *http.Request) {
	var values map[string]any
	if !s.run(w, r, func() { values = s.form.ReadNested() }) {
		return
	}
	writeJSON(w, http.StatusOK, values)
}

func (s *Server) handleWriteMany(w http.ResponseWriter, r *http.Request) {
	var body map[string]any
	if !decode(w, r, &body) {
		return
	}

	var values map[string]any
	if !s.run(w, r, func() {
		s.form.WriteMany(body)
		values = s.form.ReadAll()
	}) {
		return
	}
	writeJSON(w, http.StatusOK, values)
}

func (s *Server) handleField(w http.ResponseWriter, r *http.Request) {
	key := chi.URLParam(r, "key")

	var (
		view FieldView
		ok   bool
	)
	if !s.run(w, r, func() {
		c, found := s.form.Control(key)
		if !found {
			return
		}
		ok = true
		st, err := c.Validate()
		view = FieldView{
			Key:    key,
			Value:  c.Read(),
			Status: st,
			Manual: c.ManualError(),
		}
		if err != nil {
			view.Error = err.Error()
		}
	}) {
		return
	}
	if !ok {
		writeError(w, notFound(key))
		return
	}
	writeJSON(w, http.StatusOK, view)
}

func (s *Server) handleSetField(w http.ResponseWriter, r *http.Request) {
	key := chi.URLParam(r, "key")

	var body struct {
		Value any `json:"value"`
	}
	if !decode(w, r, &body) {
		return
	}

	var err error
	if !s.run(w, r, func() { err = s.form.SetFieldValue(key, body.Value) }) {
		return
	}
	if err != nil {
		writeError(w, err)
		return
	}
	w.WriteHeader(http.StatusNoContent)
}

func (s *Server) handleSetFieldError(w http.ResponseWriter, r *http.Request) {
	key := chi.URLParam(r, "key")

	var st form.Status
	if !decode(w, r, &st) {
		return
	}

	found := false
	if !s.run(w, r, func() {
		if _, found = s.form.Control(key); found {
			s.form.SetFieldError(key, st)
		}
	}) {
		return
	}
	if !found {
		writeError(w, notFound(key))
		return
	}
	w.WriteHeader(http.StatusNoContent)
}

func (s *Server) handleErrors(w http.ResponseWriter, r *http.Request) {
	var errs form.Errors
	if !s.run(w, r, func() { errs = s.controls.Current() }) {
		return
	}
	writeJSON(w, http.StatusOK, errs)
}

func (s *Server) handleGlobalErrors(w http.ResponseWriter, r *http.Request) {
	var errs form.Errors
	if !s.run(w, r, func() { errs = s.global.Current() }) {
		return
	}
	writeJSON(w, http.StatusOK, errs)
}

func (s *Server) handleValidity(w http.ResponseWriter, r *http.Request) {
	var snap Snapshot
	if !s.run(w, r, func() { snap = s.snapshot }) {
		return
	}
	writeJSON(w, http.StatusOK, snap.Valid)
}

// run executes fn on the loop. It writes an error response and returns false
// if the request ended first.
func (s *Server) run(w http.ResponseWriter, r *http.Request, fn func()) bool {
	if err := s.call(r.Context(), fn); err != nil {
		s.logger.Warn("request abandoned before the form answered",
			"path", r.URL.Path,
			"error", err)
		writeJSON(w, http.StatusServiceUnavailable, errorBody{Error: err.Error()})
		return false
	}
	return true
}

func notFound(key string) error {
	return ferrors.New(ferrors.CodeFieldNotFound).WithKey(key)
}

func decode(w http.ResponseWriter, r *http.Request, v any) bool {
	dec := json.NewDecoder(http.MaxBytesReader(w, r.Body, maxBodyBytes))
	if err := dec.Decode(v); err != nil {
		writeJSON(w, http.StatusBadRequest, errorBody{Error: "invalid JSON body: " + err.Error()})
		return false
	}
	return true
}

func writeJSON(w http.ResponseWriter, status int, v any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	_ = json.NewEncoder(w).Encode(v)
}

// statusFor maps a form error to an HTTP status.
func statusFor(err error) int {
	var fe *ferrors.FormError
	if !errors.As(err, &fe) {
		return http.StatusInternalServerError
	}
	switch fe.Code {
	case ferrors.CodeControlNotRegistered, ferrors.CodeFieldNotFound:
		return http.StatusNotFound
	case ferrors.CodeInvalidConfig:
		return http.StatusBadRequest
	default:
		return http.StatusInternalServerError
	}
}

func writeError(w http.ResponseWriter, err error) {
	writeJSON(w, statusFor(err), errorBody{
		Code:  ferrors.CodeOf(err),
		Error: err.Error(),
	})
}
