package handler

import (
	"bytes"
	"context"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"
	"time"

	"github.com/gorilla/websocket"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"alumnilink/internal/app/ai"
	"alumnilink/internal/app/chat"
	"alumnilink/internal/app/db"
	"alumnilink/internal/app/directory"
	"alumnilink/internal/app/entity"
	"alumnilink/internal/app/store"
	"alumnilink/internal/configs"
	"alumnilink/internal/pkg/errs"
	"alumnilink/internal/pkg/metrics"
)

type stubGenerator struct {
	reply string
	calls int
}

func (g *stubGenerator) Name() string { return "stub" }

func (g *stubGenerator) Generate(context.Context, ai.Request) (string, error) {
	g.calls++
	return g.reply, nil
}

type envelope struct {
	Code    int               `json:"code"`
	Message string            `json:"message"`
	Data    json.RawMessage   `json:"data"`
	Fields  map[string]string `json:"fields"`
}

type harness struct {
	t      *testing.T
	deps   *AppDeps
	router http.Handler
	gen    *stubGenerator
}

func newHarness(t *testing.T, aiBurst int) *harness {
	t.Helper()

	cfg := &configs.AppConfig{
		Environment:  "development",
		JWTSecret:    "test-secret",
		AdminEmails:  []string{"admin@alumnilink.com"},
		AIRatePerSec: 0.001,
		AIBurst:      aiBurst,
	}

	st := store.New(db.NewMemory())
	dir := directory.NewService(st)

	hub := chat.NewHub(nil)
	go hub.Run()
	t.Cleanup(hub.Shutdown)

	gen := &stubGenerator{}
	deps := &AppDeps{
		Config:    cfg,
		Store:     st,
		Directory: dir,
		Messaging: chat.NewService(chat.NewIndex(st), dir, hub),
		Hub:       hub,
		AI:        ai.NewService(gen, nil),
		Metrics:   metrics.NewCollector(),
	}

	limiters := NewLimiters(cfg.AIRatePerSec, cfg.AIBurst)
	t.Cleanup(limiters.Close)

	return &harness{t: t, deps: deps, router: Router(deps, limiters), gen: gen}
}

func (h *harness) do(method, path, token string, body any) (int, envelope) {
	h.t.Helper()

	var reader *bytes.Reader
	if body != nil {
		data, err := json.Marshal(body)
		require.NoError(h.t, err)
		reader = bytes.NewReader(data)
	} else {
		reader = bytes.NewReader(nil)
	}

	req := httptest.NewRequest(method, path, reader)
	if body != nil {
		req.Header.Set("Content-Type", "application/json")
	}
	if token != "" {
		req.Header.Set("Authorization", "Bearer "+token)
	}

	rec := httptest.NewRecorder()
	h.router.ServeHTTP(rec, req)

	var env envelope
	if strings.HasPrefix(rec.Header().Get("Content-Type"), "application/json") {
		require.NoError(h.t, json.Unmarshal(rec.Body.Bytes(), &env))
	}
	return rec.Code, env
}

func (h *harness) login(kind, email string) string {
	h.t.Helper()

	status, env := h.do(http.MethodPost, "/api/auth/login/"+kind, "", map[string]string{"email": email})
	require.Equal(h.t, http.StatusOK, status, env.Message)

	var session Session
	require.NoError(h.t, json.Unmarshal(env.Data, &session))
	require.NotEmpty(h.t, session.Token)
	return session.Token
}

func TestHealthAndMetrics(t *testing.T) {
	h := newHarness(t, 5)

	status, env := h.do(http.MethodGet, "/health", "", nil)
	assert.Equal(t, http.StatusOK, status)
	assert.JSONEq(t, `{"status":"ok","service":"AlumniLink Server","store":"ok"}`, string(env.Data))

	rec := httptest.NewRecorder()
	h.router.ServeHTTP(rec, httptest.NewRequest(http.MethodGet, "/metrics", nil))
	assert.Equal(t, http.StatusOK, rec.Code)
	assert.Contains(t, rec.Body.String(), "go_goroutines")
}

func TestLogin(t *testing.T) {
	h := newHarness(t, 5)

	token := h.login("student", "ALEX.J@university.edu")
	status, env := h.do(http.MethodGet, "/api/auth/me", token, nil)
	require.Equal(t, http.StatusOK, status)

	var me struct {
		User    struct{ ID, Role string } `json:"user"`
		Profile entity.Student            `json:"profile"`
	}
	require.NoError(t, json.Unmarshal(env.Data, &me))
	assert.Equal(t, "student-1", me.User.ID)
	assert.Equal(t, "student", me.User.Role)
	assert.Equal(t, "Computer Science", me.Profile.Major)

	status, env = h.do(http.MethodPost, "/api/auth/login/alumni", "", map[string]string{"email": "nobody@example.com"})
	assert.Equal(t, http.StatusNotFound, status)
	assert.Equal(t, errs.ErrAccountNotFound, env.Code)

	status, env = h.do(http.MethodPost, "/api/auth/login/admin", "", map[string]string{"email": "evelyn.reed@example.com"})
	assert.Equal(t, http.StatusForbidden, status)
	assert.Equal(t, errs.ErrForbidden, env.Code)

	status, env = h.do(http.MethodPost, "/api/auth/login/student", "", map[string]string{"email": "not-an-email"})
	assert.Equal(t, http.StatusUnprocessableEntity, status)
	assert.Contains(t, env.Fields, "email")

	status, _ = h.do(http.MethodGet, "/api/auth/me", "", nil)
	assert.Equal(t, http.StatusUnauthorized, status)
}

func TestSignUpAlumni(t *testing.T) {
	h := newHarness(t, 5)

	status, env := h.do(http.MethodPost, "/api/auth/signup/alumni", "", map[string]string{"name": "Jo Park", "email": "jo@example.com"})
	require.Equal(t, http.StatusCreated, status)

	var session Session
	require.NoError(t, json.Unmarshal(env.Data, &session))
	assert.Equal(t, "alumni", session.User.Role)
	assert.Equal(t, "Newly Joined", session.User.Subtitle)

	status, env = h.do(http.MethodPost, "/api/auth/signup/alumni", "", map[string]string{"name": "Jo", "email": "JO@example.com"})
	assert.Equal(t, http.StatusConflict, status)
	assert.Equal(t, errs.ErrEmailTaken, env.Code)

	status, _ = h.do(http.MethodGet, "/api/alumni/"+session.User.ID, session.Token, nil)
	assert.Equal(t, http.StatusOK, status)
}

func TestDirectoryPermissions(t *testing.T) {
	h := newHarness(t, 5)
	student := h.login("student", "alex.j@university.edu")
	admin := h.login("admin", "admin@alumnilink.com")

	status, _ := h.do(http.MethodGet, "/api/alumni", "", nil)
	assert.Equal(t, http.StatusUnauthorized, status)

	status, env := h.do(http.MethodGet, "/api/alumni?q=spotify", student, nil)
	require.Equal(t, http.StatusOK, status)
	var found []entity.Alumni
	require.NoError(t, json.Unmarshal(env.Data, &found))
	require.Len(t, found, 1)
	assert.Equal(t, "2", found[0].ID)

	newAlumni := entity.Alumni{Name: "Kai", Email: "kai@example.com", GraduationYear: 2016, CurrentRole: "SRE"}
	status, _ = h.do(http.MethodPost, "/api/alumni", student, newAlumni)
	assert.Equal(t, http.StatusForbidden, status)

	status, env = h.do(http.MethodPost, "/api/alumni", admin, newAlumni)
	require.Equal(t, http.StatusCreated, status)

	status, env = h.do(http.MethodPost, "/api/alumni", admin, entity.Alumni{Name: "Bad"})
	assert.Equal(t, http.StatusUnprocessableEntity, status)
	assert.Contains(t, env.Fields, "email")

	self := entity.Student{Name: "Alex Johnson", Email: "alex.j@university.edu", Major: "Data Science", ExpectedGraduationYear: h.deps.Directory.Now().Year() + 1}
	status, env = h.do(http.MethodPut, "/api/students/student-1", student, self)
	require.Equal(t, http.StatusOK, status, env.Fields)

	status, _ = h.do(http.MethodPut, "/api/students/student-2", student, self)
	assert.Equal(t, http.StatusForbidden, status)

	status, _ = h.do(http.MethodDelete, "/api/students/student-2", admin, nil)
	assert.Equal(t, http.StatusOK, status)
	status, env = h.do(http.MethodGet, "/api/students/student-2", admin, nil)
	assert.Equal(t, http.StatusNotFound, status)
	assert.Equal(t, errs.ErrStudentNotFound, env.Code)
}

func TestEventsAndRSVP(t *testing.T) {
	h := newHarness(t, 5)
	student := h.login("student", "alex.j@university.edu")
	admin := h.login("admin", "admin@alumnilink.com")

	status, env := h.do(http.MethodPost, "/api/events/2/rsvp", student, nil)
	require.Equal(t, http.StatusOK, status)

	var view struct {
		RSVPs     int  `json:"rsvps"`
		Attending bool `json:"attending"`
	}
	require.NoError(t, json.Unmarshal(env.Data, &view))
	assert.Equal(t, 251, view.RSVPs)
	assert.True(t, view.Attending)

	status, env = h.do(http.MethodPost, "/api/events/2/rsvp", student, nil)
	assert.Equal(t, http.StatusConflict, status)
	assert.Equal(t, errs.ErrAlreadyRSVPd, env.Code)

	status, _ = h.do(http.MethodPost, "/api/events", student, entity.Event{Title: "x"})
	assert.Equal(t, http.StatusForbidden, status)

	status, env = h.do(http.MethodGet, "/api/admin/overview", admin, nil)
	require.Equal(t, http.StatusOK, status)
	var overview directory.Overview
	require.NoError(t, json.Unmarshal(env.Data, &overview))
	assert.Equal(t, 3, overview.TotalEvents)
	assert.Equal(t, 128+251+75, overview.TotalRSVPs)

	status, _ = h.do(http.MethodGet, "/api/admin/overview", student, nil)
	assert.Equal(t, http.StatusForbidden, status)
}

func TestMessaging(t *testing.T) {
	h := newHarness(t, 5)
	student := h.login("student", "alex.j@university.edu")
	alumni := h.login("alumni", "evelyn.reed@example.com")
	admin := h.login("admin", "admin@alumnilink.com")

	status, env := h.do(http.MethodPost, "/api/messages/conversations/1", student, SendMessageInput{Text: "Hello!"})
	require.Equal(t, http.StatusCreated, status)
	var sent entity.Message
	require.NoError(t, json.Unmarshal(env.Data, &sent))
	assert.Equal(t, "student-1", sent.SenderID)

	status, env = h.do(http.MethodPost, "/api/messages/conversations/1", student, SendMessageInput{Text: "   "})
	assert.Equal(t, http.StatusBadRequest, status)
	assert.Equal(t, errs.ErrMessageEmpty, env.Code)

	status, env = h.do(http.MethodPost, "/api/messages/conversations/ghost", student, SendMessageInput{Text: "hi"})
	assert.Equal(t, http.StatusNotFound, status)
	assert.Equal(t, errs.ErrRecipientNotFound, env.Code)

	status, env = h.do(http.MethodGet, "/api/messages/conversations", alumni, nil)
	require.Equal(t, http.StatusOK, status)
	var list []chat.Summary
	require.NoError(t, json.Unmarshal(env.Data, &list))
	require.Len(t, list, 1)
	assert.Equal(t, "student-1", list[0].Partner.ID)
	assert.Equal(t, "Hello!", list[0].LastMessage.Text)

	status, env = h.do(http.MethodGet, "/api/messages/conversations/student-1", alumni, nil)
	require.Equal(t, http.StatusOK, status)
	var msgs []entity.Message
	require.NoError(t, json.Unmarshal(env.Data, &msgs))
	require.Len(t, msgs, 1)
	assert.Equal(t, sent.ID, msgs[0].ID)

	status, _ = h.do(http.MethodGet, "/api/messages/conversations", admin, nil)
	assert.Equal(t, http.StatusForbidden, status)
}

func TestFindMentorsMergesIntoDirectory(t *testing.T) {
	h := newHarness(t, 5)
	h.gen.reply = `{"mentorMatches":[{"name":"Gen One","email":"g1@example.com","graduationYear":2010,"currentRole":"CTO","skills":["Go"],"matchScore":88}]}`
	student := h.login("student", "alex.j@university.edu")

	status, env := h.do(http.MethodPost, "/api/ai/mentors", student, MentorsInput{SkillsAndInterests: "backend systems and Go"})
	require.Equal(t, http.StatusOK, status, env.Message)

	var result MentorsResult
	require.NoError(t, json.Unmarshal(env.Data, &result))
	require.Len(t, result.Mentors, 1)
	assert.Equal(t, 1, result.Added)
	assert.True(t, strings.HasPrefix(result.Mentors[0].ID, "mentor-"))

	assert.Len(t, h.deps.Directory.ListAlumni(context.Background(), ""), 6)

	status, env = h.do(http.MethodPost, "/api/ai/mentors", student, MentorsInput{SkillsAndInterests: "go"})
	assert.Equal(t, http.StatusUnprocessableEntity, status)
	assert.Equal(t, "Please describe your skills and interests.", env.Fields["skillsAndInterests"])
	assert.Equal(t, 1, h.gen.calls)
}

func TestAIRequiresAdminForInvitations(t *testing.T) {
	h := newHarness(t, 5)
	h.gen.reply = `{"emailInvitation":"Dear alumni"}`
	student := h.login("student", "alex.j@university.edu")
	admin := h.login("admin", "admin@alumnilink.com")

	status, _ := h.do(http.MethodPost, "/api/ai/invitation", student, InvitationInput{EventDetails: "Gala on Friday night"})
	assert.Equal(t, http.StatusForbidden, status)

	status, env := h.do(http.MethodPost, "/api/ai/invitation", admin, InvitationInput{EventDetails: "Gala on Friday night"})
	require.Equal(t, http.StatusOK, status)
	assert.JSONEq(t, `{"emailInvitation":"Dear alumni"}`, string(env.Data))
}

func TestAIRateLimited(t *testing.T) {
	h := newHarness(t, 1)
	h.gen.reply = `{"name":"Jane","education":"MIT","skills":["Go"],"bio":"Hi"}`
	alumni := h.login("alumni", "evelyn.reed@example.com")

	status, _ := h.do(http.MethodPost, "/api/ai/enrich", alumni, EnrichInput{LinkedinURL: "https://www.linkedin.com/in/jane"})
	assert.Equal(t, http.StatusOK, status)

	status, env := h.do(http.MethodPost, "/api/ai/enrich", alumni, EnrichInput{LinkedinURL: "https://www.linkedin.com/in/jane"})
	assert.Equal(t, http.StatusTooManyRequests, status)
	assert.Equal(t, errs.ErrRateLimitExceeded, env.Code)
}

func TestAvatarUploadsDisabled(t *testing.T) {
	h := newHarness(t, 5)
	student := h.login("student", "alex.j@university.edu")

	status, env := h.do(http.MethodPost, "/api/files/avatar/presign", student, map[string]any{"fileName": "me.png", "mimeType": "image/png", "fileSize": 10})
	assert.Equal(t, http.StatusServiceUnavailable, status)
	assert.Equal(t, errs.ErrUploadsDisabled, env.Code)
}

func TestWebSocketReceivesNewMessages(t *testing.T) {
	h := newHarness(t, 5)
	srv := httptest.NewServer(h.router)
	defer srv.Close()

	alumni := h.login("alumni", "evelyn.reed@example.com")
	student := h.login("student", "alex.j@university.edu")

	wsURL := "ws" + strings.TrimPrefix(srv.URL, "http") + "/ws?token=" + alumni
	conn, _, err := websocket.DefaultDialer.Dial(wsURL, nil)
	require.NoError(t, err)
	defer conn.Close()

	require.NoError(t, conn.SetReadDeadline(time.Now().Add(2*time.Second)))

	var ready chat.Frame
	require.NoError(t, conn.ReadJSON(&ready))
	assert.Equal(t, chat.TypeReady, ready.Type)

	status, _ := h.do(http.MethodPost, "/api/messages/conversations/1", student, SendMessageInput{Text: "Are you free on Monday?"})
	require.Equal(t, http.StatusCreated, status)

	var frame chat.Frame
	require.NoError(t, conn.ReadJSON(&frame))
	require.Equal(t, chat.TypeNewMessage, frame.Type)

	var payload chat.NewMessagePayload
	require.NoError(t, json.Unmarshal(frame.Payload, &payload))
	assert.Equal(t, "1--student-1", payload.ConversationID)
	assert.Equal(t, "Are you free on Monday?", payload.Message.Text)

	require.NoError(t, conn.WriteJSON(map[string]any{
		"type":    chat.TypeSendMessage,
		"tempId":  "t-1",
		"payload": chat.SendMessagePayload{RecipientID: "student-1", Text: "Yes, 10am works."},
	}))

	seen := map[chat.FrameType]bool{}
	for len(seen) < 2 {
		var f chat.Frame
		require.NoError(t, conn.ReadJSON(&f))
		seen[f.Type] = true
	}
	assert.True(t, seen[chat.TypeNewMessage])
	assert.True(t, seen[chat.TypeConfirm])
}

func TestWebSocketRejectsAnonymous(t *testing.T) {
	h := newHarness(t, 5)
	srv := httptest.NewServer(h.router)
	defer srv.Close()

	_, res, err := websocket.DefaultDialer.Dial("ws"+strings.TrimPrefix(srv.URL, "http")+"/ws", nil)
	require.Error(t, err)
	require.NotNil(t, res)
	assert.Equal(t, http.StatusUnauthorized, res.StatusCode)
}
