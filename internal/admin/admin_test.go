package admin

import (
	"context"
	"encoding/json"
	"io"
	"log/slog"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/go-chi/chi/v5"
	"github.com/stretchr/testify/suite"

	"seatswap/internal/audit"
	"seatswap/internal/jwtauth"
	"seatswap/internal/verification"
	"seatswap/internal/verification/configstore"
)

type AdminHandlerSuite struct {
	suite.Suite

	router chi.Router
	store  *configstore.InMemoryStore
	trail  *audit.InMemoryStore
	jwtSvc *jwtauth.Service
}

func TestAdminHandlerSuite(t *testing.T) {
	suite.Run(t, new(AdminHandlerSuite))
}

func (s *AdminHandlerSuite) SetupTest() {
	logger := slog.New(slog.NewTextHandler(io.Discard, nil))
	s.store = configstore.NewInMemoryStore()
	s.trail = audit.NewInMemoryStore()
	s.jwtSvc = jwtauth.NewService("test-signing-key", "seatswap-test")

	s.router = chi.NewRouter()
	New(s.store, s.trail, s.jwtSvc, logger).Register(s.router)
}

func (s *AdminHandlerSuite) get(path, token string) *httptest.ResponseRecorder {
	req := httptest.NewRequest(http.MethodGet, path, nil)
	if token != "" {
		req.Header.Set("Authorization", "Bearer "+token)
	}
	w := httptest.NewRecorder()
	s.router.ServeHTTP(w, req)
	return w
}

func (s *AdminHandlerSuite) token() string {
	token, err := s.jwtSvc.GenerateToken("operator-1", time.Hour)
	s.Require().NoError(err)
	return token
}

func (s *AdminHandlerSuite) TestGetConfig() {
	s.Require().NoError(s.store.SetConfig(context.Background(), "cfg-1", verification.VerificationConfig{
		MinimumAge:        18,
		ExcludedCountries: []string{"IRN"},
		OFACCheck:         true,
	}))

	s.Run("returns the stored config", func() {
		w := s.get("/admin/configs/cfg-1", s.token())

		s.Equal(http.StatusOK, w.Code)
		var cfg verification.VerificationConfig
		s.Require().NoError(json.Unmarshal(w.Body.Bytes(), &cfg))
		s.Equal("cfg-1", cfg.ConfigID)
		s.Equal(18, cfg.MinimumAge)
	})

	s.Run("unknown id is 404", func() {
		w := s.get("/admin/configs/nope", s.token())
		s.Equal(http.StatusNotFound, w.Code)
	})

	s.Run("missing token is 401", func() {
		w := s.get("/admin/configs/cfg-1", "")
		s.Equal(http.StatusUnauthorized, w.Code)
	})

	s.Run("garbage token is 401", func() {
		w := s.get("/admin/configs/cfg-1", "not-a-jwt")
		s.Equal(http.StatusUnauthorized, w.Code)
	})
}

func (s *AdminHandlerSuite) TestListAudit() {
	s.Require().NoError(s.trail.Append(context.Background(), audit.Event{
		Action:    audit.ActionVerificationAccepted,
		RequestID: "req-1",
	}))

	w := s.get("/admin/audit", s.token())

	s.Equal(http.StatusOK, w.Code)
	var resp struct {
		Events []audit.Event `json:"events"`
		Total  int           `json:"total"`
	}
	s.Require().NoError(json.Unmarshal(w.Body.Bytes(), &resp))
	s.Equal(1, resp.Total)
	s.Equal(audit.ActionVerificationAccepted, resp.Events[0].Action)
}
