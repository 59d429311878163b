package rest

import (
	"bytes"
	"context"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"os"
	"path/filepath"
	"strings"
	"testing"
	"time"

	"github.com/gorilla/websocket"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	_ "syntexapply/docs"
	"syntexapply/internal/cache"
	"syntexapply/internal/model"
	"syntexapply/internal/notify"
	"syntexapply/internal/repository"
	"syntexapply/internal/service"
	"syntexapply/internal/transport/rest/middleware"
	"syntexapply/internal/transport/ws"
)

func testQuestionnaire() *model.Questionnaire {
	return &model.Questionnaire{
		ID:    "test",
		Title: "Apply",
		Questions: []model.Question{
			{Key: "fullName", Prompt: "Name?", Kind: model.InputShortText},
			{Key: "unity", Prompt: "Unity?", Kind: model.InputSingleChoice, Choices: []string{"Yes", "No"}},
		},
	}
}

type testServer struct {
	handler http.Handler
	logPath string
	hub     *ws.Hub
}

func newTestServer(t *testing.T, logPath string, notifiers ...notify.Notifier) *testServer {
	t.Helper()
	submissions := service.NewSubmissionService(
		[]service.Recorder{repository.NewFileSubmissionLog(logPath)},
		notifiers,
	)
	app, err := service.NewApplicationService(
		testQuestionnaire(),
		cache.NewMemorySessionCache(time.Hour),
		service.NewAuthService("secret", time.Hour),
		service.NewLocalSubmitter(submissions),
	)
	require.NoError(t, err)

	hub := ws.NewHub()
	t.Cleanup(hub.Close)
	app.SetBroadcaster(hub)

	return &testServer{
		handler: NewRouter(&Container{
			ApplicationService: app,
			SubmissionService:  submissions,
			RateLimiter:        middleware.NewRateLimiter(100),
			WSHub:              hub,
			AllowedOrigins:     "*",
		}),
		logPath: logPath,
		hub:     hub,
	}
}

func (s *testServer) do(t *testing.T, method, path string, body interface{}) *httptest.ResponseRecorder {
	t.Helper()
	var reader *bytes.Reader
	switch b := body.(type) {
	case nil:
		reader = bytes.NewReader(nil)
	case string:
		reader = bytes.NewReader([]byte(b))
	default:
		data, err := json.Marshal(b)
		require.NoError(t, err)
		reader = bytes.NewReader(data)
	}
	req := httptest.NewRequest(method, path, reader)
	req.Header.Set("Content-Type", "application/json")
	rec := httptest.NewRecorder()
	s.handler.ServeHTTP(rec, req)
	return rec
}

func decode[T any](t *testing.T, rec *httptest.ResponseRecorder) T {
	t.Helper()
	var v T
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &v), rec.Body.String())
	return v
}

func (s *testServer) start(t *testing.T) string {
	t.Helper()
	rec := s.do(t, http.MethodPost, "/v1/sessions", nil)
	require.Equal(t, http.StatusCreated, rec.Code)
	resp := decode[model.StartSessionResponse](t, rec)
	require.NotEmpty(t, resp.Token)
	return resp.Token
}

func (s *testServer) walkToReview(t *testing.T, token string) {
	t.Helper()
	base := "/v1/sessions/" + token
	require.Equal(t, http.StatusOK, s.do(t, http.MethodPut, base+"/answers/fullName", map[string]string{"value": "Ada"}).Code)
	require.Equal(t, http.StatusOK, s.do(t, http.MethodPost, base+"/advance", nil).Code)
	require.Equal(t, http.StatusOK, s.do(t, http.MethodPut, base+"/answers/unity", map[string]string{"value": "Yes"}).Code)
	rec := s.do(t, http.MethodPost, base+"/advance", nil)
	require.Equal(t, http.StatusOK, rec.Code)
	require.True(t, decode[model.FlowView](t, rec).Review)
}

func readLog(t *testing.T, path string) []map[string]string {
	t.Helper()
	data, err := os.ReadFile(path)
	require.NoError(t, err)
	var records []map[string]string
	require.NoError(t, json.Unmarshal(data, &records))
	return records
}

func TestQuestionnaireEndpoint(t *testing.T) {
	s := newTestServer(t, filepath.Join(t.TempDir(), "submissions.json"))
	rec := s.do(t, http.MethodGet, "/v1/questionnaire", nil)
	require.Equal(t, http.StatusOK, rec.Code)
	q := decode[model.Questionnaire](t, rec)
	require.Len(t, q.Questions, 2)
	assert.Equal(t, "fullName", q.Questions[0].Key)
}

func TestSessionFlowOverREST(t *testing.T) {
	s := newTestServer(t, filepath.Join(t.TempDir(), "submissions.json"))
	token := s.start(t)
	base := "/v1/sessions/" + token

	rec := s.do(t, http.MethodPost, base+"/advance", nil)
	assert.Equal(t, http.StatusConflict, rec.Code)
	assert.Contains(t, decode[handlerError](t, rec).Error, "answer is required")

	rec = s.do(t, http.MethodPut, base+"/answers/unknown", map[string]string{"value": "x"})
	assert.Equal(t, http.StatusBadRequest, rec.Code)

	rec = s.do(t, http.MethodPut, base+"/answers/fullName", `{"nope":1}`)
	assert.Equal(t, http.StatusBadRequest, rec.Code)

	rec = s.do(t, http.MethodPost, base+"/submit", nil)
	assert.Equal(t, http.StatusConflict, rec.Code)

	s.walkToReview(t, token)

	rec = s.do(t, http.MethodGet, base, nil)
	require.Equal(t, http.StatusOK, rec.Code)
	view := decode[model.FlowView](t, rec)
	assert.True(t, view.CanSubmit)
	assert.Equal(t, model.Progress{Step: 3, Total: 3, Fraction: 1}, view.Progress)

	rec = s.do(t, http.MethodPost, base+"/submit", nil)
	require.Equal(t, http.StatusOK, rec.Code)
	view = decode[model.FlowView](t, rec)
	assert.Equal(t, model.StatusSubmitted, view.SubmissionStatus)
	assert.Equal(t, 0, view.CurrentStep)
	assert.Empty(t, view.Answers)

	records := readLog(t, s.logPath)
	require.Len(t, records, 1)
	assert.Equal(t, "Ada", records[0]["fullName"])
	assert.Equal(t, "Yes", records[0]["unity"])
	assert.NotEmpty(t, records[0][model.SubmittedAtField])
}

func TestSessionRetreatAndRestart(t *testing.T) {
	s := newTestServer(t, filepath.Join(t.TempDir(), "submissions.json"))
	token := s.start(t)
	base := "/v1/sessions/" + token
	s.walkToReview(t, token)

	rec := s.do(t, http.MethodPost, base+"/retreat", nil)
	require.Equal(t, http.StatusOK, rec.Code)
	assert.Equal(t, 1, decode[model.FlowView](t, rec).CurrentStep)

	rec = s.do(t, http.MethodPost, base+"/restart", nil)
	require.Equal(t, http.StatusOK, rec.Code)
	view := decode[model.FlowView](t, rec)
	assert.Equal(t, 0, view.CurrentStep)
	assert.Empty(t, view.Answers)
}

func TestSessionSubmitFailureReturnsState(t *testing.T) {
	// The log path is a directory, so the only sink fails.
	dir := t.TempDir()
	s := newTestServer(t, dir)
	token := s.start(t)
	s.walkToReview(t, token)

	rec := s.do(t, http.MethodPost, "/v1/sessions/"+token+"/submit", nil)
	require.Equal(t, http.StatusBadGateway, rec.Code)
	body := decode[handlerError](t, rec)
	require.NotNil(t, body.State)
	assert.Equal(t, model.StatusFailed, body.State.SubmissionStatus)
	assert.Equal(t, "Ada", body.State.Answers["fullName"])
	assert.Equal(t, service.ErrNotAccepted.Error(), body.State.LastError)
}

func TestInvalidSessionToken(t *testing.T) {
	s := newTestServer(t, filepath.Join(t.TempDir(), "submissions.json"))
	rec := s.do(t, http.MethodGet, "/v1/sessions/not-a-token", nil)
	assert.Equal(t, http.StatusUnauthorized, rec.Code)

	other := service.NewAuthService("secret", time.Hour)
	token, err := other.GenerateSessionToken("never-started")
	require.NoError(t, err)
	rec = s.do(t, http.MethodGet, "/v1/sessions/"+token, nil)
	assert.Equal(t, http.StatusNotFound, rec.Code)
}

func TestApplyEndpoint(t *testing.T) {
	s := newTestServer(t, filepath.Join(t.TempDir(), "submissions.json"))

	rec := s.do(t, http.MethodPost, "/v1/apply", map[string]string{"fullName": "Grace", "location": ""})
	require.Equal(t, http.StatusOK, rec.Code)
	receipt := decode[model.SubmissionReceipt](t, rec)
	assert.True(t, receipt.Success)
	assert.NotEmpty(t, receipt.ID)
	assert.False(t, receipt.SubmittedAt.IsZero())

	records := readLog(t, s.logPath)
	require.Len(t, records, 1)
	assert.Equal(t, "Grace", records[0]["fullName"])
	assert.Equal(t, "", records[0]["location"])

	for _, body := range []string{"", "not json", `["a"]`, `{"a":1}`, "null"} {
		rec = s.do(t, http.MethodPost, "/v1/apply", body)
		assert.Equal(t, http.StatusBadRequest, rec.Code, body)
		assert.False(t, decode[model.SubmissionReceipt](t, rec).Success)
	}
}

func TestApplyEndpointNotAccepted(t *testing.T) {
	s := newTestServer(t, t.TempDir())
	rec := s.do(t, http.MethodPost, "/v1/apply", map[string]string{"fullName": "Grace"})
	require.Equal(t, http.StatusInternalServerError, rec.Code)
	receipt := decode[model.SubmissionReceipt](t, rec)
	assert.False(t, receipt.Success)
	assert.Equal(t, service.ErrNotAccepted.Error(), receipt.Error)
	assert.NotContains(t, rec.Body.String(), "submittedAt")
}

type okNotifier struct{}

func (okNotifier) Name() string { return "ok" }

func (okNotifier) Notify(context.Context, *model.Submission) error { return nil }

func TestApplyEndpointNotifierOnly(t *testing.T) {
	s := newTestServer(t, t.TempDir(), okNotifier{})
	rec := s.do(t, http.MethodPost, "/v1/apply", map[string]string{"fullName": "Grace"})
	assert.Equal(t, http.StatusOK, rec.Code)
}

func TestOperationalEndpoints(t *testing.T) {
	s := newTestServer(t, filepath.Join(t.TempDir(), "submissions.json"))

	rec := s.do(t, http.MethodGet, "/health", nil)
	assert.Equal(t, http.StatusOK, rec.Code)
	assert.JSONEq(t, `{"status":"ok"}`, rec.Body.String())

	s.start(t)
	rec = s.do(t, http.MethodGet, "/metrics", nil)
	assert.Equal(t, http.StatusOK, rec.Code)
	assert.Contains(t, rec.Body.String(), "applications_sessions_started_total")
	assert.Contains(t, rec.Body.String(), `path="/v1/sessions"`)

	rec = s.do(t, http.MethodGet, "/swagger/doc.json", nil)
	require.Equal(t, http.StatusOK, rec.Code)
	var doc map[string]interface{}
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &doc))
	assert.Contains(t, doc["paths"], "/v1/apply")
}

func TestCORSPreflight(t *testing.T) {
	s := newTestServer(t, filepath.Join(t.TempDir(), "submissions.json"))
	req := httptest.NewRequest(http.MethodOptions, "/v1/apply", nil)
	req.Header.Set("Origin", "https://syntex.example")
	rec := httptest.NewRecorder()
	s.handler.ServeHTTP(rec, req)
	assert.Equal(t, http.StatusOK, rec.Code)
	assert.Equal(t, "*", rec.Header().Get("Access-Control-Allow-Origin"))
	assert.Contains(t, rec.Header().Get("Access-Control-Allow-Methods"), "POST")
}

func TestCORSAllowList(t *testing.T) {
	mw := corsMiddleware("https://a.example, https://b.example")
	h := mw(http.HandlerFunc(func(w http.ResponseWriter, _ *http.Request) {}))

	req := httptest.NewRequest(http.MethodGet, "/", nil)
	req.Header.Set("Origin", "https://b.example")
	rec := httptest.NewRecorder()
	h.ServeHTTP(rec, req)
	assert.Equal(t, "https://b.example", rec.Header().Get("Access-Control-Allow-Origin"))

	req.Header.Set("Origin", "https://evil.example")
	rec = httptest.NewRecorder()
	h.ServeHTTP(rec, req)
	assert.Empty(t, rec.Header().Get("Access-Control-Allow-Origin"))
}

func readMessage(t *testing.T, conn *websocket.Conn) ws.Message {
	t.Helper()
	require.NoError(t, conn.SetReadDeadline(time.Now().Add(5*time.Second)))
	var msg ws.Message
	require.NoError(t, conn.ReadJSON(&msg))
	return msg
}

// readUntil skips messages until one of type want arrives
func readUntil(t *testing.T, conn *websocket.Conn, want ws.MessageType) ws.Message {
	t.Helper()
	for i := 0; i < 10; i++ {
		msg := readMessage(t, conn)
		if msg.Type == want {
			return msg
		}
	}
	t.Fatalf("no %s message received", want)
	return ws.Message{}
}

func TestSessionWebSocket(t *testing.T) {
	s := newTestServer(t, filepath.Join(t.TempDir(), "submissions.json"))
	srv := httptest.NewServer(s.handler)
	defer srv.Close()

	token := s.start(t)
	url := "ws" + strings.TrimPrefix(srv.URL, "http") + "/v1/ws/sessions/" + token
	conn, _, err := websocket.DefaultDialer.Dial(url, nil)
	require.NoError(t, err)
	defer conn.Close()

	msg := readMessage(t, conn)
	require.Equal(t, ws.MsgState, msg.Type)

	require.NoError(t, conn.WriteJSON(ws.ClientEvent{Type: ws.EventAdvance}))
	msg = readUntil(t, conn, ws.MsgError)
	var errPayload ws.ErrorPayload
	require.NoError(t, json.Unmarshal(msg.Payload, &errPayload))
	assert.Equal(t, "advance", errPayload.Event)

	require.NoError(t, conn.WriteJSON(ws.ClientEvent{Type: ws.EventSetAnswer, Key: "fullName", Value: "Ada"}))
	msg = readUntil(t, conn, ws.MsgState)
	var view model.FlowView
	require.NoError(t, json.Unmarshal(msg.Payload, &view))
	assert.Equal(t, "Ada", view.Answers["fullName"])
	assert.True(t, view.CanAdvance)

	// Changes made over REST reach the socket too.
	rec := s.do(t, http.MethodPost, "/v1/sessions/"+token+"/advance", nil)
	require.Equal(t, http.StatusOK, rec.Code)
	msg = readUntil(t, conn, ws.MsgState)
	require.NoError(t, json.Unmarshal(msg.Payload, &view))
	assert.Equal(t, 1, view.CurrentStep)

	require.NoError(t, conn.WriteJSON(ws.ClientEvent{Type: ws.EventSetAnswer, Key: "unity", Value: "No"}))
	readUntil(t, conn, ws.MsgState)
	require.NoError(t, conn.WriteJSON(ws.ClientEvent{Type: ws.EventAdvance}))
	readUntil(t, conn, ws.MsgState)
	require.NoError(t, conn.WriteJSON(ws.ClientEvent{Type: ws.EventSubmit}))

	msg = readUntil(t, conn, ws.MsgSubmissionResult)
	var result service.SubmissionResult
	require.NoError(t, json.Unmarshal(msg.Payload, &result))
	assert.True(t, result.Success)
	assert.Len(t, readLog(t, s.logPath), 1)
}

func TestSessionWebSocketRejectsBadToken(t *testing.T) {
	s := newTestServer(t, filepath.Join(t.TempDir(), "submissions.json"))
	srv := httptest.NewServer(s.handler)
	defer srv.Close()

	url := "ws" + strings.TrimPrefix(srv.URL, "http") + "/v1/ws/sessions/bogus"
	_, resp, err := websocket.DefaultDialer.Dial(url, nil)
	require.Error(t, err)
	require.NotNil(t, resp)
	assert.Equal(t, http.StatusUnauthorized, resp.StatusCode)
}

type handlerError struct {
	Error string          `json:"error"`
	State *model.FlowView `json:"state"`
}
