package httpapi

import (
	"bufio"
	"bytes"
	"context"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"
	"time"

	"github.com/yuqie6/dsatrack/internal/auth"
	"github.com/yuqie6/dsatrack/internal/bootstrap"
	"github.com/yuqie6/dsatrack/internal/dto"
	"github.com/yuqie6/dsatrack/internal/eventbus"
	"github.com/yuqie6/dsatrack/internal/pkg/config"
	"github.com/yuqie6/dsatrack/internal/testutil"
)

const testSecret = "test-secret"

func newTestCore(t *testing.T, devUser string) *bootstrap.Core {
	t.Helper()
	cfg := config.Default()
	cfg.Auth.JWTSecret = testSecret
	cfg.Auth.DevUser = devUser
	cfg.Search.RelatedEnabled = false

	repos := bootstrap.SQLiteRepos(testutil.OpenTestDB(t))
	hub := eventbus.NewHub()
	svcs, err := bootstrap.NewServices(cfg, repos, hub)
	if err != nil {
		t.Fatalf("NewServices: %v", err)
	}
	return &bootstrap.Core{
		Cfg:      cfg,
		Hub:      hub,
		Tokens:   auth.NewIssuer(testSecret, time.Hour),
		Repos:    repos,
		Services: *svcs,
	}
}

type client struct {
	t     *testing.T
	h     http.Handler
	token string
}

func (c *client) do(method, target string, body any) *httptest.ResponseRecorder {
	c.t.Helper()
	var buf bytes.Buffer
	if body != nil {
		if err := json.NewEncoder(&buf).Encode(body); err != nil {
			c.t.Fatalf("encode body: %v", err)
		}
	}
	req := httptest.NewRequest(method, target, &buf)
	if c.token != "" {
		req.Header.Set("Authorization", "Bearer "+c.token)
	}
	rec := httptest.NewRecorder()
	c.h.ServeHTTP(rec, req)
	return rec
}

func decode[T any](t *testing.T, rec *httptest.ResponseRecorder) T {
	t.Helper()
	var out T
	if err := json.Unmarshal(rec.Body.Bytes(), &out); err != nil {
		t.Fatalf("decode %T: %v body=%s", out, err, rec.Body.String())
	}
	return out
}

func expectCode(t *testing.T, rec *httptest.ResponseRecorder, want int) {
	t.Helper()
	if rec.Code != want {
		t.Fatalf("code=%d, want %d body=%s", rec.Code, want, rec.Body.String())
	}
}

func tokenFor(t *testing.T, core *bootstrap.Core, userID string) string {
	t.Helper()
	tok, err := core.Tokens.Issue(userID)
	if err != nil {
		t.Fatalf("Issue: %v", err)
	}
	return tok
}

func TestHealthWithoutAuth(t *testing.T) {
	core := newTestCore(t, "")
	c := &client{t: t, h: NewHandler(core)}

	rec := c.do(http.MethodGet, "/health", nil)
	expectCode(t, rec, http.StatusOK)
	got := decode[dto.HealthDTO](t, rec)
	if !got.OK || got.Name != "dsatrack" || got.Storage.Driver != config.DriverSQLite {
		t.Fatalf("health=%+v", got)
	}

	expectCode(t, c.do(http.MethodPost, "/health", nil), http.StatusMethodNotAllowed)
}

func TestAPIRequiresToken(t *testing.T) {
	core := newTestCore(t, "")
	c := &client{t: t, h: NewHandler(core)}

	expectCode(t, c.do(http.MethodGet, "/api/streak", nil), http.StatusUnauthorized)

	c.token = "garbage"
	expectCode(t, c.do(http.MethodGet, "/api/streak", nil), http.StatusUnauthorized)

	c.token = tokenFor(t, core, "alice")
	rec := c.do(http.MethodGet, "/api/streak", nil)
	expectCode(t, rec, http.StatusOK)
	got := decode[dto.StreakDTO](t, rec)
	if got.CurrentStreak != 0 || got.MaxStreak != 0 || got.LastActivityDate != "" || got.LastActive != "" {
		t.Fatalf("fresh streak=%+v", got)
	}
}

func TestQuestionFlow(t *testing.T) {
	core := newTestCore(t, "")
	c := &client{t: t, h: NewHandler(core), token: tokenFor(t, core, "alice")}

	rec := c.do(http.MethodPost, "/api/topics", dto.AddTopicRequest{Name: "Arrays"})
	expectCode(t, rec, http.StatusCreated)
	topic := decode[dto.TopicDTO](t, rec)

	expectCode(t, c.do(http.MethodPost, "/api/topics", dto.AddTopicRequest{Name: "arrays"}), http.StatusConflict)

	rec = c.do(http.MethodPost, "/api/questions", dto.AddQuestionRequest{
		Title:      "Two Sum",
		Difficulty: "Easy",
		Platform:   "LeetCode",
		TopicName:  "Arrays",
	})
	expectCode(t, rec, http.StatusCreated)
	q := decode[dto.QuestionDTO](t, rec)
	if q.ID == "" || q.Completed {
		t.Fatalf("question=%+v", q)
	}

	// 新增题目即记录当天打卡
	streak := decode[dto.StreakDTO](t, c.do(http.MethodGet, "/api/streak", nil))
	if streak.CurrentStreak != 1 || streak.MaxStreak != 1 || streak.LastActive == "" {
		t.Fatalf("streak after add=%+v", streak)
	}

	rec = c.do(http.MethodPost, "/api/questions/completion", dto.ToggleCompletionRequest{QuestionID: q.ID, Completed: true})
	expectCode(t, rec, http.StatusOK)
	if got := decode[dto.QuestionDTO](t, rec); !got.Completed {
		t.Fatalf("toggle result=%+v", got)
	}

	list := decode[[]dto.QuestionDTO](t, c.do(http.MethodGet, "/api/questions?difficulty=All&platform=LeetCode", nil))
	if len(list) != 1 || !list[0].Completed {
		t.Fatalf("list=%+v", list)
	}

	detail := decode[dto.TopicDetailDTO](t, c.do(http.MethodGet, "/api/topics/detail?id="+topic.ID, nil))
	if detail.Topic.QuestionCount != 1 || len(detail.Questions) != 1 {
		t.Fatalf("detail=%+v", detail)
	}

	search := decode[[]dto.QuestionDTO](t, c.do(http.MethodGet, "/api/questions/search?q=sum", nil))
	if len(search) != 1 || search[0].ID != q.ID {
		t.Fatalf("search=%+v", search)
	}

	dash := decode[dto.DashboardDTO](t, c.do(http.MethodGet, "/api/dashboard", nil))
	if dash.TotalSolved != 1 || dash.Streak.CurrentStreak != 1 || len(dash.ByDifficulty) != 3 || len(dash.ByPlatform) != 5 {
		t.Fatalf("dashboard=%+v", dash)
	}

	cells := decode[[]dto.HeatmapCellDTO](t, c.do(http.MethodGet, "/api/heatmap", nil))
	if len(cells) != 1 || cells[0].Count != 1 || cells[0].Level != 1 {
		t.Fatalf("heatmap=%+v", cells)
	}
}

func TestQuestionErrors(t *testing.T) {
	core := newTestCore(t, "dev")
	c := &client{t: t, h: NewHandler(core)}

	rec := c.do(http.MethodPost, "/api/questions", dto.AddQuestionRequest{Title: "ab", Difficulty: "Easy", Platform: "LeetCode", TopicName: "x"})
	expectCode(t, rec, http.StatusBadRequest)

	req := httptest.NewRequest(http.MethodPost, "/api/questions", strings.NewReader(`{"unknown":1}`))
	rec = httptest.NewRecorder()
	c.h.ServeHTTP(rec, req)
	expectCode(t, rec, http.StatusBadRequest)

	rec = c.do(http.MethodPost, "/api/questions/completion", dto.ToggleCompletionRequest{QuestionID: "missing", Completed: true})
	expectCode(t, rec, http.StatusNotFound)

	expectCode(t, c.do(http.MethodGet, "/api/questions?difficulty=Impossible", nil), http.StatusBadRequest)
	expectCode(t, c.do(http.MethodGet, "/api/questions/search?q=a&limit=-1", nil), http.StatusBadRequest)
	expectCode(t, c.do(http.MethodGet, "/api/topics/detail?id=nope", nil), http.StatusNotFound)
	expectCode(t, c.do(http.MethodDelete, "/api/questions", nil), http.StatusMethodNotAllowed)
	expectCode(t, c.do(http.MethodGet, "/api/streak/activity", nil), http.StatusMethodNotAllowed)
}

func TestUsersAreIsolated(t *testing.T) {
	core := newTestCore(t, "")
	alice := &client{t: t, h: NewHandler(core), token: tokenFor(t, core, "alice")}
	bob := &client{t: t, h: NewHandler(core), token: tokenFor(t, core, "bob")}

	rec := alice.do(http.MethodPost, "/api/questions", dto.AddQuestionRequest{Title: "Two Sum", Difficulty: "Easy", Platform: "LeetCode", TopicName: "Arrays"})
	expectCode(t, rec, http.StatusCreated)
	q := decode[dto.QuestionDTO](t, rec)

	if list := decode[[]dto.QuestionDTO](t, bob.do(http.MethodGet, "/api/questions", nil)); len(list) != 0 {
		t.Fatalf("bob sees %d questions", len(list))
	}
	expectCode(t, bob.do(http.MethodPost, "/api/questions/completion", dto.ToggleCompletionRequest{QuestionID: q.ID, Completed: true}), http.StatusNotFound)
	if s := decode[dto.StreakDTO](t, bob.do(http.MethodGet, "/api/streak", nil)); s.CurrentStreak != 0 {
		t.Fatalf("bob streak=%+v", s)
	}
}

func TestRecordActivityIdempotentSameDay(t *testing.T) {
	core := newTestCore(t, "dev")
	c := &client{t: t, h: NewHandler(core)}

	for i := 0; i < 3; i++ {
		rec := c.do(http.MethodPost, "/api/streak/activity", nil)
		expectCode(t, rec, http.StatusOK)
		got := decode[dto.StreakDTO](t, rec)
		if got.CurrentStreak != 1 || got.MaxStreak != 1 || got.UserID != "dev" {
			t.Fatalf("call %d streak=%+v", i, got)
		}
	}
}

func TestContests(t *testing.T) {
	core := newTestCore(t, "dev")
	c := &client{t: t, h: NewHandler(core)}

	today := time.Now().Format("2006-01-02")
	rec := c.do(http.MethodPost, "/api/contests", dto.AddContestRequest{
		Title: "Weekly 400", Platform: "LeetCode", Date: today, StartTime: "08:00", EndTime: "09:30",
	})
	expectCode(t, rec, http.StatusCreated)
	if got := decode[dto.ContestDTO](t, rec); got.Window == "" {
		t.Fatalf("contest=%+v", got)
	}

	expectCode(t, c.do(http.MethodPost, "/api/contests", dto.AddContestRequest{
		Title: "Bad", Platform: "LeetCode", Date: today, StartTime: "25:00", EndTime: "09:30",
	}), http.StatusBadRequest)

	if list := decode[[]dto.ContestDTO](t, c.do(http.MethodGet, "/api/contests", nil)); len(list) != 1 {
		t.Fatalf("contests=%+v", list)
	}
	if n := decode[dto.CountDTO](t, c.do(http.MethodGet, "/api/contests/upcoming", nil)); n.Count != 1 {
		t.Fatalf("upcoming=%+v", n)
	}
}

func TestMetricsEndpoint(t *testing.T) {
	core := newTestCore(t, "dev")
	c := &client{t: t, h: NewHandler(core)}
	expectCode(t, c.do(http.MethodGet, "/api/streak", nil), http.StatusOK)

	rec := c.do(http.MethodGet, "/metrics", nil)
	expectCode(t, rec, http.StatusOK)
	if !strings.Contains(rec.Body.String(), "dsatrack_http_requests_total") {
		t.Fatalf("metrics output missing http counter")
	}
}

func TestSSEDeliversOwnEvents(t *testing.T) {
	core := newTestCore(t, "")
	srv := httptest.NewServer(NewHandler(core))
	defer srv.Close()

	ctx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
	defer cancel()

	req, _ := http.NewRequestWithContext(ctx, http.MethodGet, srv.URL+"/api/events?access_token="+tokenFor(t, core, "alice"), nil)
	resp, err := http.DefaultClient.Do(req)
	if err != nil {
		t.Fatalf("sse connect: %v", err)
	}
	defer resp.Body.Close()
	if resp.StatusCode != http.StatusOK {
		t.Fatalf("sse status=%d", resp.StatusCode)
	}

	reader := bufio.NewReader(resp.Body)
	readEvent := func() string {
		for {
			line, err := reader.ReadString('\n')
			if err != nil {
				t.Fatalf("read sse: %v", err)
			}
			if strings.HasPrefix(line, "event: ") {
				return strings.TrimSpace(strings.TrimPrefix(line, "event: "))
			}
		}
	}
	if ev := readEvent(); ev != "ready" {
		t.Fatalf("first event=%q", ev)
	}

	// bob 的事件不应推给 alice
	core.Hub.Publish(eventbus.Event{Type: eventbus.TypeTopicAdded, UserID: "bob"})
	core.Hub.Publish(eventbus.Event{Type: eventbus.TypeQuestionAdded, UserID: "alice"})

	if ev := readEvent(); ev != eventbus.TypeQuestionAdded {
		t.Fatalf("event=%q, want %s", ev, eventbus.TypeQuestionAdded)
	}
}
