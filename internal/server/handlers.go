package server

import (
	"bytes"
	"compress/gzip"
	"encoding/base64"
	"encoding/json"
	"io"
	"net/http"
	"time"

	"github.com/go-chi/chi/v5"

	"github.com/pedigree-app/pedigree/pkg/errors"
	"github.com/pedigree-app/pedigree/pkg/person"
	"github.com/pedigree-app/pedigree/pkg/session"
	"github.com/pedigree-app/pedigree/pkg/store"
)

// maxBodyBytes caps request bodies; a full family graph is small.
const maxBodyBytes = 4 << 20

// Wire shapes, mirrored by pkg/syncq on the client side.

type loginRequest struct {
	GoogleSub string `json:"google_sub,omitempty"`
	Email     string `json:"email,omitempty"`
	Name      string `json:"name,omitempty"`
	PhotoURL  string `json:"photo_url,omitempty"`
}

type loginResponse struct {
	GoogleSub string    `json:"google_sub"`
	Email     string    `json:"email"`
	Name      string    `json:"name,omitempty"`
	PhotoURL  string    `json:"photo_url,omitempty"`
	SessionID string    `json:"session_id,omitempty"`
	CreatedAt time.Time `json:"created_at"`
	UpdatedAt time.Time `json:"updated_at"`
}

type snapshotResponse struct {
	GoogleSub string       `json:"google_sub"`
	People    person.Graph `json:"people_by_id"`
	UpdatedAt time.Time    `json:"updated_at"`
}

type putRequest struct {
	People person.Graph `json:"people_by_id"`
}

type patchRequest struct {
	Upserts    person.Graph `json:"upserts,omitempty"`
	Deletes    []string     `json:"deletes,omitempty"`
	Compressed bool         `json:"compressed,omitempty"`
	PayloadB64 string       `json:"payload_b64,omitempty"`
}

type errorResponse struct {
	Error string      `json:"error"`
	Code  errors.Code `json:"code,omitempty"`
}

func (s *Server) handleHealth(w http.ResponseWriter, _ *http.Request) {
	writeJSON(w, http.StatusOK, map[string]string{"status": "ok"})
}

// handleGoogleLogin upserts the account for the caller's identity and
// mints a session. The identity comes from the bearer token when the
// verifier accepts it, otherwise from the posted profile fields, which
// is how local clients without a Google token sign in.
func (s *Server) handleGoogleLogin(w http.ResponseWriter, r *http.Request) {
	var req loginRequest
	if err := decodeJSON(r, &req); err != nil {
		writeError(w, http.StatusBadRequest, err)
		return
	}

	id := s.identity(r)
	if id == nil {
		id = &session.Identity{
			GoogleSub: req.GoogleSub,
			Email:     req.Email,
			Name:      req.Name,
			PhotoURL:  req.PhotoURL,
		}
	}
	if id.GoogleSub == "" || id.Email == "" {
		writeError(w, http.StatusBadRequest,
			errors.New(errors.ErrCodeInvalidInput, "google_sub and email are required"))
		return
	}

	user, err := s.store.UpsertUser(r.Context(), store.User{
		GoogleSub: id.GoogleSub,
		Email:     id.Email,
		Name:      id.Name,
		PhotoURL:  id.PhotoURL,
	})
	if err != nil {
		s.logger.Error("login upsert failed", "google_sub", id.GoogleSub, "error", err)
		writeError(w, http.StatusInternalServerError, err)
		return
	}

	resp := loginResponse{
		GoogleSub: user.GoogleSub,
		Email:     user.Email,
		Name:      user.Name,
		PhotoURL:  user.PhotoURL,
		CreatedAt: user.CreatedAt,
		UpdatedAt: user.UpdatedAt,
	}
	if s.sessions != nil {
		sess, err := session.New(*id, session.DefaultTTL)
		if err == nil {
			err = s.sessions.Set(r.Context(), sess)
		}
		if err != nil {
			s.logger.Warn("session not persisted", "google_sub", id.GoogleSub, "error", err)
		} else {
			resp.SessionID = sess.ID
		}
	}
	writeJSON(w, http.StatusOK, resp)
}

func (s *Server) handleGetPedigree(w http.ResponseWriter, r *http.Request) {
	sub, ok := s.authorize(w, r)
	if !ok {
		return
	}

	snap, err := s.store.GetSnapshot(r.Context(), sub)
	if errors.Is(err, errors.ErrCodeSnapshotNotFound) {
		// A signed-in user with nothing saved yet gets an empty graph.
		writeJSON(w, http.StatusOK, snapshotResponse{GoogleSub: sub, People: person.Graph{}})
		return
	}
	if err != nil {
		writeError(w, http.StatusInternalServerError, err)
		return
	}
	writeSnapshot(w, snap)
}

func (s *Server) handlePutPedigree(w http.ResponseWriter, r *http.Request) {
	sub, ok := s.authorize(w, r)
	if !ok {
		return
	}

	var req putRequest
	if err := decodeJSON(r, &req); err != nil {
		writeError(w, http.StatusBadRequest, err)
		return
	}
	people := req.People
	if people == nil {
		people = person.Graph{}
	}
	people.Normalize()

	snap, err := s.store.PutSnapshot(r.Context(), sub, people)
	if err != nil {
		writeError(w, http.StatusInternalServerError, err)
		return
	}
	writeSnapshot(w, snap)
}

func (s *Server) handlePatchPedigree(w http.ResponseWriter, r *http.Request) {
	sub, ok := s.authorize(w, r)
	if !ok {
		return
	}

	var req patchRequest
	if err := decodeJSON(r, &req); err != nil {
		writeError(w, http.StatusBadRequest, err)
		return
	}
	if req.Compressed {
		if err := req.inflate(); err != nil {
			writeError(w, http.StatusBadRequest, err)
			return
		}
	}

	snap, err := s.store.PatchSnapshot(r.Context(), sub, req.Upserts, req.Deletes)
	if err != nil {
		writeError(w, http.StatusInternalServerError, err)
		return
	}
	writeSnapshot(w, snap)
}

func (s *Server) handleDeletePedigree(w http.ResponseWriter, r *http.Request) {
	sub, ok := s.authorize(w, r)
	if !ok {
		return
	}

	existed, err := s.store.DeleteSnapshot(r.Context(), sub)
	if err != nil {
		writeError(w, http.StatusInternalServerError, err)
		return
	}
	if !existed {
		writeError(w, http.StatusNotFound,
			errors.New(errors.ErrCodeSnapshotNotFound, "no pedigree for google subject %q", sub))
		return
	}
	writeJSON(w, http.StatusOK, map[string]bool{"deleted": true})
}

// authorize resolves the caller's identity, checks it matches the
// {googleSub} path segment and that the account exists. It writes the
// error response itself and reports whether the handler may proceed.
func (s *Server) authorize(w http.ResponseWriter, r *http.Request) (string, bool) {
	sub := chi.URLParam(r, "googleSub")

	id := s.identity(r)
	if id == nil {
		writeError(w, http.StatusUnauthorized,
			errors.New(errors.ErrCodeUnauthorized, "missing or invalid bearer token"))
		return "", false
	}
	if id.GoogleSub != sub {
		writeError(w, http.StatusForbidden,
			errors.New(errors.ErrCodeForbidden, "token subject does not match requested pedigree"))
		return "", false
	}

	if _, err := s.store.GetUser(r.Context(), sub); err != nil {
		if errors.Is(err, errors.ErrCodeUserNotFound) {
			writeError(w, http.StatusNotFound, err)
		} else {
			writeError(w, http.StatusInternalServerError, err)
		}
		return "", false
	}
	return sub, true
}

// inflate replaces the patch's upserts and deletes with the ones
// carried in the gzip+base64 payload.
func (p *patchRequest) inflate() error {
	raw, err := base64.StdEncoding.DecodeString(p.PayloadB64)
	if err != nil {
		return errors.Wrap(errors.ErrCodeInvalidPatch, err, "patch payload is not valid base64")
	}
	zr, err := gzip.NewReader(bytes.NewReader(raw))
	if err != nil {
		return errors.Wrap(errors.ErrCodeInvalidPatch, err, "patch payload is not valid gzip")
	}
	defer zr.Close()

	var inner struct {
		Upserts person.Graph `json:"upserts,omitempty"`
		Deletes []string     `json:"deletes,omitempty"`
	}
	if err := json.NewDecoder(zr).Decode(&inner); err != nil {
		return errors.Wrap(errors.ErrCodeInvalidPatch, err, "compressed patch is not valid JSON")
	}
	p.Upserts = inner.Upserts
	p.Deletes = inner.Deletes
	return nil
}

func decodeJSON(r *http.Request, v any) error {
	body := http.MaxBytesReader(nil, r.Body, maxBodyBytes)
	defer io.Copy(io.Discard, body)

	dec := json.NewDecoder(body)
	if err := dec.Decode(v); err != nil {
		return errors.Wrap(errors.ErrCodeInvalidInput, err, "request body is not valid JSON")
	}
	return nil
}

func writeJSON(w http.ResponseWriter, status int, v any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	_ = json.NewEncoder(w).Encode(v)
}

func writeSnapshot(w http.ResponseWriter, snap *store.Snapshot) {
	writeJSON(w, http.StatusOK, snapshotResponse{
		GoogleSub: snap.GoogleSub,
		People:    snap.People,
		UpdatedAt: snap.UpdatedAt,
	})
}

func writeError(w http.ResponseWriter, status int, err error) {
	writeJSON(w, status, errorResponse{
		Error: errors.UserMessage(err),
		Code:  errors.GetCode(err),
	})
}
