package services

import (
	"context"
	"encoding/json"
	"io"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"

	"github.com/go-chi/chi/v5"

	"github.com/talentgrid/backend/models"
	"github.com/talentgrid/backend/repository"
)

func newTestRouter(t *testing.T, repo *repository.GORMRepository) chi.Router {
	t.Helper()

	stageService := NewStageService(repo, nil)
	gloryService := NewGloryService(repo, nil)
	endpoints := NewCandidateEndpoints(repo, stageService, gloryService)

	r := chi.NewRouter()
	endpoints.RegisterRoutes(r)
	return r
}

func doRequest(t *testing.T, router chi.Router, user *models.User, method, path string, body io.Reader) (*httptest.ResponseRecorder, Envelope) {
	t.Helper()

	req := httptest.NewRequest(method, path, body)
	req = req.WithContext(context.WithValue(req.Context(), "user", user))

	rec := httptest.NewRecorder()
	router.ServeHTTP(rec, req)

	var envelope Envelope
	if err := json.Unmarshal(rec.Body.Bytes(), &envelope); err != nil {
		t.Fatalf("response is not an envelope: %v (%s)", err, rec.Body.String())
	}
	return rec, envelope
}

// chunkedReader hides its length so httptest leaves ContentLength at -1,
// the same as a chunked transfer-encoded request.
type chunkedReader struct{ r io.Reader }

func (c chunkedReader) Read(p []byte) (int, error) { return c.r.Read(p) }

func TestStatusHandlerReadsChunkedBody(t *testing.T) {
	repo := newTestRepo(t)
	router := newTestRouter(t, repo)

	hr := newTestUser(t, repo, "hr@test.dev", models.RoleHR)
	candidate := newTestCandidate(t, repo, "chunked@example.com")

	body := chunkedReader{strings.NewReader(`{"reason":"position closed"}`)}
	rec, envelope := doRequest(t, router, hr, http.MethodPatch, "/candidates/"+candidate.ID+"/reject", body)

	if rec.Code != http.StatusOK {
		t.Fatalf("expected 200 for reject with chunked body, got %d (%s)", rec.Code, envelope.Message)
	}

	reloaded, _ := repo.GetCandidate(context.Background(), candidate.ID)
	if reloaded.Status != models.StatusRejected {
		t.Errorf("expected candidate rejected, got %q", reloaded.Status)
	}
	if reloaded.StatusReason != "position closed" {
		t.Errorf("expected the chunked reason stored, got %q", reloaded.StatusReason)
	}
}

func TestStatusHandlerEmptyBodyTolerated(t *testing.T) {
	repo := newTestRepo(t)
	router := newTestRouter(t, repo)

	hr := newTestUser(t, repo, "hr@test.dev", models.RoleHR)
	candidate := newTestCandidate(t, repo, "nobody@example.com")

	// Hold needs no reason, so a bodyless request succeeds
	rec, _ := doRequest(t, router, hr, http.MethodPatch, "/candidates/"+candidate.ID+"/hold", nil)
	if rec.Code != http.StatusOK {
		t.Errorf("expected 200 for bodyless hold, got %d", rec.Code)
	}

	// Reject without a body still fails on the missing reason, not on parsing
	rec, envelope := doRequest(t, router, hr, http.MethodPatch, "/candidates/"+candidate.ID+"/reject", nil)
	if rec.Code != http.StatusBadRequest {
		t.Errorf("expected 400 for bodyless reject, got %d", rec.Code)
	}
	if envelope.Success {
		t.Error("expected failure envelope")
	}
}

func TestDomainErrorEnvelopes(t *testing.T) {
	repo := newTestRepo(t)
	router := newTestRouter(t, repo)

	hr := newTestUser(t, repo, "hr@test.dev", models.RoleHR)
	candidate := newTestCandidate(t, repo, "envelopes@example.com")

	rejectBody := func() io.Reader { return strings.NewReader(`{"reason":"not a fit"}`) }
	if rec, _ := doRequest(t, router, hr, http.MethodPatch, "/candidates/"+candidate.ID+"/reject", rejectBody()); rec.Code != http.StatusOK {
		t.Fatalf("setup reject failed with %d", rec.Code)
	}

	tests := []struct {
		name       string
		method     string
		path       string
		body       string
		wantStatus int
	}{
		{
			"terminal status conflicts",
			http.MethodPatch, "/candidates/" + candidate.ID + "/hire", `{"reason":"late offer"}`,
			http.StatusConflict,
		},
		{
			"transition on rejected candidate conflicts",
			http.MethodPatch, "/candidates/" + candidate.ID + "/stage", `{"stage":"hr","internal_feedback":"ok"}`,
			http.StatusConflict,
		},
		{
			"unknown candidate",
			http.MethodPatch, "/candidates/no-such-id/hold", ``,
			http.StatusNotFound,
		},
		{
			"unknown stage",
			http.MethodPatch, "/candidates/" + candidate.ID + "/stage", `{"stage":"limbo","internal_feedback":"ok"}`,
			http.StatusBadRequest,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			var body io.Reader
			if tt.body != "" {
				body = strings.NewReader(tt.body)
			}
			rec, envelope := doRequest(t, router, hr, tt.method, tt.path, body)
			if rec.Code != tt.wantStatus {
				t.Errorf("expected %d, got %d (%s)", tt.wantStatus, rec.Code, envelope.Message)
			}
			if envelope.Success {
				t.Error("expected failure envelope")
			}
			if envelope.Message == "" {
				t.Error("expected a message in the failure envelope")
			}
		})
	}
}

func TestGloryGateEnvelope(t *testing.T) {
	repo := newTestRepo(t)
	router := newTestRouter(t, repo)

	hr := newTestUser(t, repo, "hr@test.dev", models.RoleHR)
	candidate := newTestCandidate(t, repo, "gate-envelope@example.com")

	body := strings.NewReader(`{"stage":"hr","internal_feedback":"ready to move"}`)
	rec, envelope := doRequest(t, router, hr, http.MethodPatch, "/candidates/"+candidate.ID+"/stage", body)

	if rec.Code != http.StatusBadRequest {
		t.Fatalf("expected 400 for an ungraded transition, got %d", rec.Code)
	}
	if envelope.Message != "Glory Required To Stage Update" {
		t.Errorf("unexpected envelope message %q", envelope.Message)
	}
}
