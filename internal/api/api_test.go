package api

import (
	"bufio"
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"net/http"
	"net/http/cookiejar"
	"net/http/httptest"
	"net/url"
	"strings"
	"testing"
	"time"

	"github.com/gorilla/websocket"
	"github.com/sirupsen/logrus"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/yourusername/betting-tracker/internal/analytics"
	"github.com/yourusername/betting-tracker/internal/auth"
	"github.com/yourusername/betting-tracker/internal/config"
	"github.com/yourusername/betting-tracker/internal/logger"
	"github.com/yourusername/betting-tracker/internal/models"
	"github.com/yourusername/betting-tracker/internal/narrative"
	"github.com/yourusername/betting-tracker/internal/repository"
	"github.com/yourusername/betting-tracker/internal/service"
)

type stubGenerator struct {
	reply *narrative.Reply
	err   error
	last  narrative.Request
}

func (g *stubGenerator) Analyze(_ context.Context, req narrative.Request) (*narrative.Reply, error) {
	g.last = req
	return g.reply, g.err
}

type testEnv struct {
	server *httptest.Server
	repos  *repository.Repositories
}

func newTestEnv(t *testing.T, generator narrative.Generator) *testEnv {
	t.Helper()
	log := logrus.New()
	log.SetOutput(io.Discard)

	repos := repository.NewMemoryRepositories()
	tokens := auth.NewTokenManager("api-test-signing-secret", time.Hour)
	authSvc := auth.NewService(repos.User, tokens, auth.NewMemoryLimiter(3, time.Minute), logger.NewAuditLogger(log), true)

	srv := NewServer(Deps{
		Auth:     authSvc,
		Ledger:   service.NewLedgerService(repos.Bet, logger.NewAuditLogger(log)),
		Analysis: service.NewAnalysisService(repos.Bet, generator, logger.NewAnalyticsLogger(log), logger.NewNarrativeLogger(log)),
		Profiles: service.NewProfileService(repos.User, repos.Bet, generator != nil),
		Logger:   log,
	}, config.ServerConfig{ReadTimeoutSeconds: 5, ShutdownTimeoutSeconds: 5}, config.AuthConfig{})

	ts := httptest.NewServer(srv.Router())
	t.Cleanup(ts.Close)
	return &testEnv{server: ts, repos: repos}
}

func (e *testEnv) cookies(t *testing.T, c *http.Client) []*http.Cookie {
	t.Helper()
	u, err := url.Parse(e.server.URL)
	require.NoError(t, err)
	return c.Jar.Cookies(u)
}

func (e *testEnv) client(t *testing.T) *http.Client {
	t.Helper()
	jar, err := cookiejar.New(nil)
	require.NoError(t, err)
	return &http.Client{Jar: jar}
}

func (e *testEnv) do(t *testing.T, c *http.Client, method, path string, body interface{}) *http.Response {
	t.Helper()
	var reader io.Reader
	if body != nil {
		raw, err := json.Marshal(body)
		require.NoError(t, err)
		reader = bytes.NewReader(raw)
	}
	req, err := http.NewRequest(method, e.server.URL+path, reader)
	require.NoError(t, err)
	req.Header.Set("Content-Type", "application/json")
	resp, err := c.Do(req)
	require.NoError(t, err)
	t.Cleanup(func() { resp.Body.Close() })
	return resp
}

func decode(t *testing.T, resp *http.Response, v interface{}) {
	t.Helper()
	require.NoError(t, json.NewDecoder(resp.Body).Decode(v))
}

func (e *testEnv) register(t *testing.T, username, role string) *http.Client {
	t.Helper()
	c := e.client(t)
	resp := e.do(t, c, http.MethodPost, "/api/auth/register", map[string]string{"username": username, "password": "pa55word", "role": role})
	require.Equal(t, http.StatusCreated, resp.StatusCode)
	return c
}

func f(v float64) *float64 { return &v }

func (e *testEnv) seed(t *testing.T, c *http.Client) {
	t.Helper()
	bets := []models.BetInput{
		{Date: "2024-01-01", Sport: "NBA", BetType: "Moneyline", Odds: "+150", ClosingOdds: "+120", Stake: f(10), Payout: f(25), Outcome: models.OutcomeWin},
		{Date: "2024-01-08", Sport: "NFL", BetType: "Spread", Odds: "-110", Stake: f(11), Payout: f(0), Outcome: models.OutcomeLoss},
		{Date: "2024-02-01", Sport: "NBA", BetType: "Spread", Odds: "-110", Stake: f(11), Payout: f(21), Outcome: models.OutcomeWin},
		{Date: "2024-02-03", Sport: "NHL", BetType: "Moneyline", Odds: "+200", Stake: f(5), Outcome: models.OutcomePending},
	}
	for _, b := range bets {
		resp := e.do(t, c, http.MethodPost, "/api/bets", b)
		require.Equal(t, http.StatusCreated, resp.StatusCode)
	}
}

func TestAuthFlow(t *testing.T) {
	env := newTestEnv(t, nil)
	c := env.register(t, "casey", "")

	resp := env.do(t, c, http.MethodGet, "/api/auth/me", nil)
	require.Equal(t, http.StatusOK, resp.StatusCode)
	var me UserView
	decode(t, resp, &me)
	assert.Equal(t, UserView{Username: "casey", Role: models.RoleUser}, me)

	resp = env.do(t, env.client(t), http.MethodPost, "/api/auth/register", map[string]string{"username": "casey", "password": "x"})
	assert.Equal(t, http.StatusConflict, resp.StatusCode)

	resp = env.do(t, env.client(t), http.MethodPost, "/api/auth/register", map[string]string{"username": "ab", "password": "x"})
	assert.Equal(t, http.StatusBadRequest, resp.StatusCode)

	resp = env.do(t, c, http.MethodPost, "/api/auth/logout", nil)
	assert.Equal(t, http.StatusNoContent, resp.StatusCode)
	resp = env.do(t, c, http.MethodGet, "/api/auth/me", nil)
	assert.Equal(t, http.StatusUnauthorized, resp.StatusCode)

	resp = env.do(t, c, http.MethodPost, "/api/auth/login", map[string]string{"username": "casey", "password": "pa55word"})
	require.Equal(t, http.StatusOK, resp.StatusCode)
	resp = env.do(t, c, http.MethodGet, "/api/auth/me", nil)
	assert.Equal(t, http.StatusOK, resp.StatusCode)
}

func TestBearerTokenAndRejections(t *testing.T) {
	env := newTestEnv(t, nil)
	c := env.register(t, "casey", "")

	var token string
	for _, cookie := range env.cookies(t, c) {
		if cookie.Name == cookieName {
			token = cookie.Value
		}
	}
	require.NotEmpty(t, token)

	req, _ := http.NewRequest(http.MethodGet, env.server.URL+"/api/bets", nil)
	req.Header.Set("Authorization", "Bearer "+token)
	resp, err := http.DefaultClient.Do(req)
	require.NoError(t, err)
	resp.Body.Close()
	assert.Equal(t, http.StatusOK, resp.StatusCode)

	req.Header.Set("Authorization", "Bearer "+token+"x")
	resp, err = http.DefaultClient.Do(req)
	require.NoError(t, err)
	resp.Body.Close()
	assert.Equal(t, http.StatusUnauthorized, resp.StatusCode)

	resp = env.do(t, env.client(t), http.MethodGet, "/api/bets", nil)
	assert.Equal(t, http.StatusUnauthorized, resp.StatusCode)
}

func TestLoginThrottling(t *testing.T) {
	env := newTestEnv(t, nil)
	env.register(t, "casey", "")
	c := env.client(t)

	for i := 0; i < 3; i++ {
		resp := env.do(t, c, http.MethodPost, "/api/auth/login", map[string]string{"username": "casey", "password": "nope"})
		assert.Equal(t, http.StatusUnauthorized, resp.StatusCode)
	}
	resp := env.do(t, c, http.MethodPost, "/api/auth/login", map[string]string{"username": "casey", "password": "pa55word"})
	assert.Equal(t, http.StatusTooManyRequests, resp.StatusCode)
}

func TestBetCRUD(t *testing.T) {
	env := newTestEnv(t, nil)
	c := env.register(t, "casey", "")
	other := env.register(t, "jordan", "")

	resp := env.do(t, c, http.MethodPost, "/api/bets", models.BetInput{Sport: "NBA", Stake: f(10), Outcome: models.OutcomePending})
	require.Equal(t, http.StatusCreated, resp.StatusCode)
	var created models.RawBet
	decode(t, resp, &created)
	assert.NotEmpty(t, created.ID)

	resp = env.do(t, c, http.MethodPost, "/api/bets", models.BetInput{Outcome: "Void"})
	assert.Equal(t, http.StatusBadRequest, resp.StatusCode)
	var errBody ErrorResponse
	decode(t, resp, &errBody)
	assert.NotEmpty(t, errBody.Problems)

	resp = env.do(t, c, http.MethodPut, "/api/bets/"+created.ID, models.BetInput{Sport: "NBA", Stake: f(10), Payout: f(19), Outcome: models.OutcomeWin})
	require.Equal(t, http.StatusOK, resp.StatusCode)

	resp = env.do(t, other, http.MethodPut, "/api/bets/"+created.ID, models.BetInput{Outcome: models.OutcomeLoss})
	assert.Equal(t, http.StatusNotFound, resp.StatusCode, "other users cannot see the bet")
	resp = env.do(t, c, http.MethodDelete, "/api/bets/not-a-uuid", nil)
	assert.Equal(t, http.StatusBadRequest, resp.StatusCode)

	resp = env.do(t, c, http.MethodGet, "/api/bets", nil)
	var bets []models.RawBet
	decode(t, resp, &bets)
	require.Len(t, bets, 1)
	assert.Equal(t, models.OutcomeWin, bets[0].Outcome)

	resp = env.do(t, other, http.MethodGet, "/api/bets", nil)
	decode(t, resp, &bets)
	assert.Empty(t, bets)

	resp = env.do(t, c, http.MethodDelete, "/api/bets/"+created.ID, nil)
	assert.Equal(t, http.StatusOK, resp.StatusCode)

	env.seed(t, c)
	resp = env.do(t, c, http.MethodDelete, "/api/bets", nil)
	require.Equal(t, http.StatusOK, resp.StatusCode)
	var cleared map[string]interface{}
	decode(t, resp, &cleared)
	assert.Equal(t, float64(4), cleared["deleted"])
}

func TestUsersEndpoints(t *testing.T) {
	env := newTestEnv(t, nil)
	c := env.register(t, "casey", "")
	admin := env.register(t, "root_admin", "admin")
	env.register(t, "jordan", "")
	env.seed(t, c)

	resp := env.do(t, c, http.MethodGet, "/api/users/me", nil)
	require.Equal(t, http.StatusOK, resp.StatusCode)
	var profile service.Profile
	decode(t, resp, &profile)
	assert.Equal(t, 4, profile.Stats.TotalBets)
	assert.Equal(t, "NBA", profile.Stats.MostProfitable)
	assert.False(t, profile.NarrativeConfigured)

	resp = env.do(t, c, http.MethodGet, "/api/users", nil)
	assert.Equal(t, http.StatusForbidden, resp.StatusCode)

	resp = env.do(t, admin, http.MethodGet, "/api/users", nil)
	require.Equal(t, http.StatusOK, resp.StatusCode)
	var listing []service.UserListing
	decode(t, resp, &listing)
	assert.Len(t, listing, 3)

	resp = env.do(t, c, http.MethodPatch, "/api/users/me/username", map[string]string{"username": "jordan"})
	assert.Equal(t, http.StatusConflict, resp.StatusCode)

	resp = env.do(t, c, http.MethodPatch, "/api/users/me/username", map[string]string{"username": "casey_k"})
	require.Equal(t, http.StatusOK, resp.StatusCode)
	resp = env.do(t, c, http.MethodGet, "/api/auth/me", nil)
	var me UserView
	decode(t, resp, &me)
	assert.Equal(t, "casey_k", me.Username, "the reissued cookie carries the new name")
}

func TestAIContextAndFacets(t *testing.T) {
	env := newTestEnv(t, nil)
	c := env.register(t, "casey", "")
	env.seed(t, c)

	resp := env.do(t, c, http.MethodGet, "/api/ai/context?sports=NBA,NHL&betTypes=Spread", nil)
	require.Equal(t, http.StatusOK, resp.StatusCode)
	var view service.ContextView
	decode(t, resp, &view)
	assert.Equal(t, analytics.ScopeFiltered, view.Scope)
	assert.Equal(t, 1, view.Metrics.TotalBets)
	assert.Equal(t, []string{"NBA", "NHL"}, view.Filters.Sports)
	assert.Equal(t, 4, view.GlobalStats.TotalBets)
	assert.Equal(t, []string{"NBA", "NFL", "NHL"}, view.AvailableFilters.Sports)

	resp = env.do(t, c, http.MethodGet, "/api/ai/context", nil)
	decode(t, resp, &view)
	assert.Equal(t, analytics.ScopeAll, view.Scope)
	assert.True(t, view.HasClosingOdds)
	assert.NotNil(t, view.Drawdown)

	resp = env.do(t, c, http.MethodGet, "/api/ai/context?startDate=garbage", nil)
	assert.Equal(t, http.StatusBadRequest, resp.StatusCode)

	resp = env.do(t, c, http.MethodGet, "/api/ai/facets", nil)
	require.Equal(t, http.StatusOK, resp.StatusCode)
	var facets analytics.FilterFacets
	decode(t, resp, &facets)
	assert.Equal(t, []string{"Loss", "Pending", "Win"}, facets.Outcomes)
}

type sseEvent struct {
	name string
	data string
}

func readEvents(t *testing.T, body io.Reader) []sseEvent {
	t.Helper()
	var events []sseEvent
	var current sseEvent
	scanner := bufio.NewScanner(body)
	scanner.Buffer(make([]byte, 0, 64<<10), 1<<20)
	for scanner.Scan() {
		line := scanner.Text()
		switch {
		case strings.HasPrefix(line, "event: "):
			current.name = strings.TrimPrefix(line, "event: ")
		case strings.HasPrefix(line, "data: "):
			current.data = strings.TrimPrefix(line, "data: ")
		case line == "":
			events = append(events, current)
			current = sseEvent{}
		}
	}
	require.NoError(t, scanner.Err())
	return events
}

func TestAnalyzeStreamsEvents(t *testing.T) {
	gen := &stubGenerator{reply: &narrative.Reply{Answer: "Up 25.\nKeep going", FollowUps: []string{"Why NFL?"}}}
	env := newTestEnv(t, gen)
	c := env.register(t, "casey", "")
	env.seed(t, c)

	resp := env.do(t, c, http.MethodPost, "/api/ai/analyze", service.AnalyzeInput{
		Message: "How am I doing?",
		History: []narrative.Message{{Role: "user", Content: "hi"}, {Role: "assistant", Content: "hello"}},
	})
	require.Equal(t, http.StatusOK, resp.StatusCode)
	assert.Equal(t, "text/event-stream", resp.Header.Get("Content-Type"))

	events := readEvents(t, resp.Body)
	require.GreaterOrEqual(t, len(events), 3)

	var answer strings.Builder
	for _, e := range events[:len(events)-2] {
		require.Equal(t, eventToken, e.name)
		var token string
		require.NoError(t, json.Unmarshal([]byte(e.data), &token))
		answer.WriteString(token)
	}
	assert.Equal(t, "Up 25.\nKeep going", answer.String())

	payloadEvent := events[len(events)-2]
	require.Equal(t, eventPayload, payloadEvent.name)
	var payload narrative.Payload
	require.NoError(t, json.Unmarshal([]byte(payloadEvent.data), &payload))
	assert.Equal(t, 4, payload.Metrics.TotalBets)
	assert.Equal(t, []string{"Why NFL?"}, payload.FollowUps)
	assert.NotEmpty(t, payload.Chart)

	assert.Equal(t, sseEvent{name: eventEnd, data: `"done"`}, events[len(events)-1])
	assert.Len(t, gen.last.History, 2)
}

func TestAnalyzeErrors(t *testing.T) {
	env := newTestEnv(t, nil)
	c := env.register(t, "casey", "")
	resp := env.do(t, c, http.MethodPost, "/api/ai/analyze", service.AnalyzeInput{Message: "hi"})
	assert.Equal(t, http.StatusServiceUnavailable, resp.StatusCode)

	gen := &stubGenerator{err: fmt.Errorf("%w: status 500", narrative.ErrUpstream)}
	env = newTestEnv(t, gen)
	c = env.register(t, "casey", "")

	resp = env.do(t, c, http.MethodPost, "/api/ai/analyze", service.AnalyzeInput{})
	assert.Equal(t, http.StatusBadRequest, resp.StatusCode)

	resp = env.do(t, c, http.MethodPost, "/api/ai/analyze", service.AnalyzeInput{Message: "anything"})
	assert.Equal(t, http.StatusBadRequest, resp.StatusCode, "no bets in scope")

	env.seed(t, c)
	resp = env.do(t, c, http.MethodPost, "/api/ai/analyze", service.AnalyzeInput{Message: "anything"})
	assert.Equal(t, http.StatusBadGateway, resp.StatusCode)
}

func TestAnalyzeWebSocket(t *testing.T) {
	gen := &stubGenerator{reply: &narrative.Reply{Answer: "Two words"}}
	env := newTestEnv(t, gen)
	c := env.register(t, "casey", "")
	env.seed(t, c)

	header := http.Header{}
	for _, cookie := range env.cookies(t, c) {
		header.Add("Cookie", cookie.String())
	}

	wsURL := "ws" + strings.TrimPrefix(env.server.URL, "http") + "/api/ai/ws"
	conn, _, err := websocket.DefaultDialer.Dial(wsURL, header)
	require.NoError(t, err)
	defer conn.Close()

	require.NoError(t, conn.WriteJSON(service.AnalyzeInput{Message: "Summary?"}))
	var types []string
	for {
		var msg wsMessage
		require.NoError(t, conn.ReadJSON(&msg))
		types = append(types, msg.Type)
		if msg.Type == eventEnd {
			break
		}
	}
	assert.Equal(t, []string{eventToken, eventToken, eventToken, eventPayload, eventEnd}, types)

	require.NoError(t, conn.WriteMessage(websocket.TextMessage, []byte("{not json")))
	var msg wsMessage
	require.NoError(t, conn.ReadJSON(&msg))
	assert.Equal(t, eventError, msg.Type)
	assert.Equal(t, http.StatusBadRequest, msg.Status)

	require.NoError(t, conn.WriteJSON(service.AnalyzeInput{Message: ""}))
	require.NoError(t, conn.ReadJSON(&msg))
	assert.Equal(t, eventError, msg.Type, "the connection survives a rejected question")

	_, _, err = websocket.DefaultDialer.Dial(wsURL, nil)
	assert.Error(t, err, "an unauthenticated upgrade is refused")
}

func TestDemoSummary(t *testing.T) {
	env := newTestEnv(t, nil)
	c := env.client(t)

	resp := env.do(t, c, http.MethodPost, "/api/demo/summary", service.DemoInput{
		Bets: []models.RawBet{
			{ID: "a", Date: "2024-01-01", Sport: "NBA", Stake: f(10), Payout: f(20), Outcome: models.OutcomeWin},
			{ID: "b", Date: "2024-01-02", Sport: "NBA", Stake: f(10), Payout: f(0), Outcome: models.OutcomeLoss},
		},
	})
	require.Equal(t, http.StatusOK, resp.StatusCode)
	var summary analytics.Summary
	decode(t, resp, &summary)
	assert.Equal(t, 2, summary.Metrics.TotalBets)
	assert.Equal(t, 0.0, summary.Metrics.NetProfit)
	assert.Equal(t, 2, summary.SampleSize)

	resp = env.do(t, c, http.MethodPost, "/api/demo/summary", map[string]string{"scope": "sideways"})
	assert.Equal(t, http.StatusBadRequest, resp.StatusCode)
}

func TestStatusFor(t *testing.T) {
	tests := []struct {
		err    error
		status int
	}{
		{&auth.ValidationError{Message: "bad"}, http.StatusBadRequest},
		{&service.ValidationError{Problems: []string{"x"}}, http.StatusBadRequest},
		{fmt.Errorf("wrap: %w", analytics.ErrInvalidInput), http.StatusBadRequest},
		{models.ErrNotFound, http.StatusNotFound},
		{models.ErrDuplicateKey, http.StatusConflict},
		{auth.ErrThrottled, http.StatusTooManyRequests},
		{auth.ErrInvalidToken, http.StatusUnauthorized},
		{auth.ErrRegistrationClosed, http.StatusForbidden},
		{narrative.ErrUpstream, http.StatusBadGateway},
		{errors.New("boom"), http.StatusInternalServerError},
	}
	for _, tt := range tests {
		status, body := statusFor(tt.err)
		assert.Equal(t, tt.status, status, tt.err.Error())
		assert.NotEmpty(t, body.Error)
	}
	_, body := statusFor(errors.New("secret detail"))
	assert.NotContains(t, body.Error, "secret")
}
