package httptransport

import (
	"bytes"
	"encoding/json"
	"fmt"
	"io"
	"log/slog"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/stretchr/testify/suite"

	"ctfbot/internal/assignment"
	"ctfbot/internal/challenge"
	"ctfbot/internal/event"
	"ctfbot/internal/gateway"
	"ctfbot/internal/leaderboard"
	"ctfbot/internal/ledger"
	"ctfbot/internal/ratelimit"
	"ctfbot/internal/scoring"
	"ctfbot/internal/team"
	"ctfbot/pkg/platform/tx"
)

const adminToken = "test-admin-token"

// RouterSuite runs the full HTTP surface against in-memory services; only
// the stores are substituted relative to production wiring.
type RouterSuite struct {
	suite.Suite
	server *httptest.Server
}

func TestRouterSuite(t *testing.T) {
	suite.Run(t, new(RouterSuite))
}

func (s *RouterSuite) SetupTest() {
	logger := slog.New(slog.NewTextHandler(io.Discard, nil))

	teamStore := team.NewMemoryStore()
	challengeStore := challenge.NewMemoryStore()
	ledgerStore := ledger.NewMemoryStore()
	scoreStore := scoring.NewMemoryScoreStore()

	teamSvc := team.New(teamStore, "test-signing-key", team.WithLogger(logger))
	challengeSvc := challenge.New(challengeStore, challenge.WithLogger(logger))
	eventSvc := event.New(event.NewMemoryStore(), event.WithLogger(logger))
	assignmentSvc := assignment.New(assignment.NewMemoryStore(), assignment.WithLogger(logger))
	limiter := ratelimit.New(ratelimit.NewInMemoryBucketStore(), 3, time.Minute, ratelimit.WithLogger(logger))
	board := leaderboard.New(scoreStore, teamStore, leaderboard.WithLogger(logger))
	engine := scoring.NewEngine(scoreStore, tx.NoopRunner{},
		scoring.WithLogger(logger),
		scoring.WithSolveRecorder(gateway.NewSolveRecorder(ledgerStore)),
		scoring.WithDeltaSink(board),
	)
	gatewaySvc := gateway.New(teamStore, challengeStore, limiter, engine, ledgerStore,
		gateway.WithLogger(logger),
	)

	handler := NewHandler(logger,
		gatewaySvc, teamSvc, challengeSvc, eventSvc, assignmentSvc,
		board, ledgerStore, limiter,
	)
	router := NewRouter(handler, teamSvc, Config{AdminToken: adminToken})
	s.server = httptest.NewServer(router)
	s.T().Cleanup(s.server.Close)
}

func (s *RouterSuite) do(method, path, token string, body any) (*http.Response, map[string]any) {
	var payload io.Reader
	if body != nil {
		raw, err := json.Marshal(body)
		s.Require().NoError(err)
		payload = bytes.NewReader(raw)
	}
	req, err := http.NewRequest(method, s.server.URL+path, payload)
	s.Require().NoError(err)
	if token != "" {
		req.Header.Set("Authorization", "Bearer "+token)
	}

	resp, err := s.server.Client().Do(req)
	s.Require().NoError(err)
	defer resp.Body.Close()

	var decoded map[string]any
	raw, err := io.ReadAll(resp.Body)
	s.Require().NoError(err)
	if len(raw) > 0 {
		s.Require().NoError(json.Unmarshal(raw, &decoded), "body: %s", raw)
	}
	return resp, decoded
}

func (s *RouterSuite) registerTeam(name string) (teamID, token string) {
	resp, body := s.do(http.MethodPost, "/admin/teams", adminToken, map[string]any{"name": name})
	s.Require().Equal(http.StatusCreated, resp.StatusCode)
	return body["team_id"].(string), body["token"].(string)
}

func (s *RouterSuite) loadChallenge(name, flag string, points int) string {
	resp, body := s.do(http.MethodPost, "/admin/challenges", adminToken, map[string]any{
		"name":     name,
		"category": "pwn",
		"points":   points,
		"flag":     flag,
	})
	s.Require().Equal(http.StatusCreated, resp.StatusCode)
	return body["id"].(string)
}

func (s *RouterSuite) TestSubmissionFlow() {
	_, token := s.registerTeam("flow-team")
	challengeID := s.loadChallenge("pwn-101", "flag{x}", 500)

	s.Run("wrong flag", func() {
		resp, body := s.do(http.MethodPost, "/submissions", token, map[string]any{
			"challenge_id": challengeID,
			"flag":         "flag{nope}",
		})
		s.Equal(http.StatusOK, resp.StatusCode)
		s.Equal("incorrect", body["outcome"])
	})

	s.Run("correct flag scores", func() {
		resp, body := s.do(http.MethodPost, "/submissions", token, map[string]any{
			"challenge_id": challengeID,
			"flag":         "flag{x}",
		})
		s.Equal(http.StatusOK, resp.StatusCode)
		s.Equal("correct_first", body["outcome"])
		s.Equal(float64(500), body["points"])
	})

	s.Run("resubmission is a duplicate", func() {
		resp, body := s.do(http.MethodPost, "/submissions", token, map[string]any{
			"challenge_id": challengeID,
			"flag":         "flag{x}",
		})
		s.Equal(http.StatusOK, resp.StatusCode)
		s.Equal("correct_duplicate", body["outcome"])
	})

	s.Run("attempt history lists all three", func() {
		resp, body := s.do(http.MethodGet, "/submissions", token, nil)
		s.Equal(http.StatusOK, resp.StatusCode)
		s.Len(body["submissions"], 3)
	})

	s.Run("leaderboard reflects the solve", func() {
		resp, body := s.do(http.MethodGet, "/leaderboard", "", nil)
		s.Equal(http.StatusOK, resp.StatusCode)
		standings := body["standings"].([]any)
		s.Require().Len(standings, 1)
		top := standings[0].(map[string]any)
		s.Equal("flow-team", top["team_name"])
		s.Equal(float64(500), top["score"])
		s.Equal(float64(1), top["rank"])
	})
}

func (s *RouterSuite) TestRateLimitExhaustion() {
	_, token := s.registerTeam("spammy")
	challengeID := s.loadChallenge("rev-303", "flag{y}", 100)

	// Limit is 3 per window; the limiter consumes one slot per attempt.
	for i := range 3 {
		resp, _ := s.do(http.MethodPost, "/submissions", token, map[string]any{
			"challenge_id": challengeID,
			"flag":         fmt.Sprintf("flag{wrong-%d}", i),
		})
		s.Require().Equal(http.StatusOK, resp.StatusCode)
	}

	resp, body := s.do(http.MethodPost, "/submissions", token, map[string]any{
		"challenge_id": challengeID,
		"flag":         "flag{y}",
	})
	s.Equal(http.StatusTooManyRequests, resp.StatusCode)
	s.Equal("rate_limited", body["outcome"])
	s.NotEmpty(resp.Header.Get("Retry-After"))
}

func (s *RouterSuite) TestSubmitRequiresAuth() {
	resp, body := s.do(http.MethodPost, "/submissions", "", map[string]any{
		"challenge_id": "ignored",
		"flag":         "flag{x}",
	})
	s.Equal(http.StatusUnauthorized, resp.StatusCode)
	s.Equal("unauthorized", body["error"])

	resp, _ = s.do(http.MethodPost, "/submissions", "not-a-token", map[string]any{
		"challenge_id": "ignored",
		"flag":         "flag{x}",
	})
	s.Equal(http.StatusUnauthorized, resp.StatusCode)
}

func (s *RouterSuite) TestAdminRequiresToken() {
	resp, body := s.do(http.MethodPost, "/admin/teams", "", map[string]any{"name": "x"})
	s.Equal(http.StatusForbidden, resp.StatusCode)
	s.Equal("forbidden", body["error"])

	resp, _ = s.do(http.MethodPost, "/admin/teams", "wrong-token", map[string]any{"name": "x"})
	s.Equal(http.StatusForbidden, resp.StatusCode)
}

func (s *RouterSuite) TestUnknownChallengeSubmission() {
	_, token := s.registerTeam("lost")

	resp, body := s.do(http.MethodPost, "/submissions", token, map[string]any{
		"challenge_id": "8b8f2706-8c9b-4431-a2ae-3632524c8a78",
		"flag":         "flag{x}",
	})
	s.Equal(http.StatusNotFound, resp.StatusCode)
	s.Equal("unknown_challenge", body["outcome"])
}

func (s *RouterSuite) TestMalformedSubmission() {
	_, token := s.registerTeam("sloppy")

	resp, body := s.do(http.MethodPost, "/submissions", token, map[string]any{
		"challenge_id": "not-a-uuid",
		"flag":         "flag{x}",
	})
	s.Equal(http.StatusBadRequest, resp.StatusCode)
	s.NotEmpty(body["error"])
}

func (s *RouterSuite) TestChallengeImportEndpoint() {
	doc := map[string]any{"challenges": []map[string]any{
		{"name": "crypto-1", "category": "crypto", "value": 300, "flag": "flag{a}"},
		{"name": "web-1", "category": "web", "value": 200, "flag": "flag{b}"},
	}}
	resp, body := s.do(http.MethodPost, "/admin/challenges/import", adminToken, doc)
	s.Equal(http.StatusOK, resp.StatusCode)
	s.Equal(float64(2), body["loaded"])

	resp, body = s.do(http.MethodGet, "/challenges", "", nil)
	s.Equal(http.StatusOK, resp.StatusCode)
	list := body["challenges"].([]any)
	s.Len(list, 2)
	// Flag material never appears in the public view.
	for _, item := range list {
		entry := item.(map[string]any)
		s.NotContains(entry, "flag_hash")
		s.NotContains(entry, "flag_salt")
	}
}

func (s *RouterSuite) TestEventLifecycle() {
	starts := time.Date(2026, 9, 1, 9, 0, 0, 0, time.UTC)
	resp, body := s.do(http.MethodPost, "/admin/events", adminToken, map[string]any{
		"name":      "autumn-ctf",
		"url":       "https://ctf.example.org",
		"team_mode": true,
		"starts_at": starts,
		"ends_at":   starts.Add(48 * time.Hour),
	})
	s.Require().Equal(http.StatusCreated, resp.StatusCode)
	eventID := body["id"].(string)

	resp, _ = s.do(http.MethodPut, "/admin/events/"+eventID+"/credentials", adminToken, map[string]any{
		"username": "shared-login",
		"password": "hunter2",
	})
	s.Equal(http.StatusOK, resp.StatusCode)

	// Convert to solo play.
	resp, body = s.do(http.MethodPut, "/admin/events/"+eventID+"/mode", adminToken, map[string]any{
		"team_mode": false,
	})
	s.Equal(http.StatusOK, resp.StatusCode)
	s.Equal(false, body["team_mode"])

	// The public view excludes credentials.
	resp, body = s.do(http.MethodGet, "/events/"+eventID, "", nil)
	s.Equal(http.StatusOK, resp.StatusCode)
	s.Equal("autumn-ctf", body["name"])
	s.Equal(false, body["team_mode"])
	s.NotContains(body, "username")
	s.NotContains(body, "password")
}

func (s *RouterSuite) TestAssignmentEndpoints() {
	_, token := s.registerTeam("claimers")
	challengeID := s.loadChallenge("misc-1", "flag{z}", 50)

	resp, body := s.do(http.MethodPost, "/assignments", token, map[string]any{
		"challenge_id": challengeID,
		"member":       "alice",
	})
	s.Equal(http.StatusCreated, resp.StatusCode)
	s.Equal("alice", body["member"])

	resp, _ = s.do(http.MethodPost, "/assignments", token, map[string]any{
		"challenge_id": challengeID,
		"member":       "alice",
	})
	s.Equal(http.StatusConflict, resp.StatusCode)

	resp, body = s.do(http.MethodGet, "/assignments?challenge_id="+challengeID, token, nil)
	s.Equal(http.StatusOK, resp.StatusCode)
	s.Len(body["assignments"], 1)

	resp, _ = s.do(http.MethodDelete, "/assignments", token, map[string]any{
		"challenge_id": challengeID,
		"member":       "alice",
	})
	s.Equal(http.StatusNoContent, resp.StatusCode)
}

func (s *RouterSuite) TestHealthz() {
	resp, body := s.do(http.MethodGet, "/healthz", "", nil)
	s.Equal(http.StatusOK, resp.StatusCode)
	s.Equal("OK", body["status"])
}
