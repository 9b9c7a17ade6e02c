package httpapi

import (
	"context"
	"net/http"
	"strings"

	"github.com/yuqie6/dsatrack/internal/auth"
	"github.com/yuqie6/dsatrack/internal/dto"
	"github.com/yuqie6/dsatrack/internal/repository"
	"github.com/yuqie6/dsatrack/internal/service"
)

func (a *apiServer) registerJSONRoutes(mux *http.ServeMux) {
	a.handle(mux, "/api/streak", a.wrapGET(a.getStreak))
	a.handle(mux, "/api/streak/activity", a.wrapPOST(a.recordActivity))

	a.handle(mux, "/api/dashboard", a.wrapGET(a.getDashboard))
	a.handle(mux, "/api/heatmap", a.wrapGET(a.getHeatmap))

	a.handle(mux, "/api/questions", a.wrapAny(a.questions))
	a.handle(mux, "/api/questions/completion", a.wrapPOST(a.toggleCompletion))
	a.handle(mux, "/api/questions/search", a.wrapGET(a.searchQuestions))
	a.handle(mux, "/api/questions/related", a.wrapGET(a.relatedQuestions))

	a.handle(mux, "/api/topics", a.wrapAny(a.topics))
	a.handle(mux, "/api/topics/detail", a.wrapGET(a.getTopicDetail))

	a.handle(mux, "/api/contests", a.wrapAny(a.contests))
	a.handle(mux, "/api/contests/upcoming", a.wrapGET(a.getUpcomingContests))
}

func (a *apiServer) handle(mux *http.ServeMux, route string, h http.HandlerFunc) {
	mux.Handle(route, instrument(route, h))
}

func (a *apiServer) wrapGET(fn func(http.ResponseWriter, *http.Request)) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		if r.Method != http.MethodGet {
			writeError(w, http.StatusMethodNotAllowed, "method not allowed")
			return
		}
		fn(w, r)
	}
}

func (a *apiServer) wrapPOST(fn func(http.ResponseWriter, *http.Request)) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		if r.Method != http.MethodPost {
			writeError(w, http.StatusMethodNotAllowed, "method not allowed")
			return
		}
		fn(w, r)
	}
}

func (a *apiServer) wrapAny(fn func(http.ResponseWriter, *http.Request)) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) { fn(w, r) }
}

// requestContext 带超时的请求上下文与当前用户
func (a *apiServer) requestContext(r *http.Request) (context.Context, context.CancelFunc, string) {
	ctx, cancel := context.WithTimeout(r.Context(), a.timeout)
	return ctx, cancel, auth.ForContext(r.Context())
}

// ========== streak ==========

func (a *apiServer) getStreak(w http.ResponseWriter, r *http.Request) {
	ctx, cancel, userID := a.requestContext(r)
	defer cancel()

	rec, err := a.core.Services.Streaks.GetStreak(ctx, userID)
	if err != nil {
		writeServiceError(w, r, err)
		return
	}
	writeJSON(w, http.StatusOK, toStreakDTO(rec))
}

func (a *apiServer) recordActivity(w http.ResponseWriter, r *http.Request) {
	ctx, cancel, userID := a.requestContext(r)
	defer cancel()

	rec, err := a.core.Services.Streaks.RecordActivity(ctx, userID, a.now())
	if err != nil {
		writeServiceError(w, r, err)
		return
	}
	writeJSON(w, http.StatusOK, toStreakDTO(rec))
}

// ========== stats ==========

func (a *apiServer) getDashboard(w http.ResponseWriter, r *http.Request) {
	ctx, cancel, userID := a.requestContext(r)
	defer cancel()

	d, err := a.core.Services.Stats.Dashboard(ctx, userID, a.now())
	if err != nil {
		writeServiceError(w, r, err)
		return
	}
	writeJSON(w, http.StatusOK, dto.DashboardDTO{
		TotalSolved:      d.TotalSolved,
		UpcomingContests: d.UpcomingContests,
		Streak:           toStreakDTO(d.Streak),
		ByDifficulty:     toChartDTOs(d.ByDifficulty),
		ByPlatform:       toChartDTOs(d.ByPlatform),
		ByTopic:          toChartDTOs(d.ByTopic),
	})
}

func (a *apiServer) getHeatmap(w http.ResponseWriter, r *http.Request) {
	ctx, cancel, userID := a.requestContext(r)
	defer cancel()

	cells, err := a.core.Services.Stats.Heatmap(ctx, userID, a.now())
	if err != nil {
		writeServiceError(w, r, err)
		return
	}
	out := make([]dto.HeatmapCellDTO, 0, len(cells))
	for _, c := range cells {
		out = append(out, dto.HeatmapCellDTO{Date: c.Date, Count: c.Count, Level: c.Level})
	}
	writeJSON(w, http.StatusOK, out)
}

// ========== questions ==========

func (a *apiServer) questions(w http.ResponseWriter, r *http.Request) {
	switch r.Method {
	case http.MethodGet:
		a.listQuestions(w, r)
	case http.MethodPost:
		a.addQuestion(w, r)
	default:
		writeError(w, http.StatusMethodNotAllowed, "method not allowed")
	}
}

func (a *apiServer) listQuestions(w http.ResponseWriter, r *http.Request) {
	ctx, cancel, userID := a.requestContext(r)
	defer cancel()

	q := r.URL.Query()
	items, err := a.core.Services.Questions.List(ctx, userID, repository.QuestionFilter{
		Difficulty: strings.TrimSpace(q.Get("difficulty")),
		Platform:   strings.TrimSpace(q.Get("platform")),
		TopicName:  strings.TrimSpace(q.Get("topic")),
	})
	if err != nil {
		writeServiceError(w, r, err)
		return
	}
	writeJSON(w, http.StatusOK, toQuestionDTOs(items))
}

func (a *apiServer) addQuestion(w http.ResponseWriter, r *http.Request) {
	var req dto.AddQuestionRequest
	if err := readJSON(r, &req); err != nil {
		writeError(w, http.StatusBadRequest, "invalid json")
		return
	}
	ctx, cancel, userID := a.requestContext(r)
	defer cancel()

	q, err := a.core.Services.Questions.Add(ctx, userID, service.QuestionInput{
		Title:       req.Title,
		Link:        req.Link,
		Description: req.Description,
		Difficulty:  req.Difficulty,
		Platform:    req.Platform,
		TopicName:   req.TopicName,
		Comments:    req.Comments,
	})
	if err != nil {
		writeServiceError(w, r, err)
		return
	}
	writeJSON(w, http.StatusCreated, toQuestionDTO(q))
}

func (a *apiServer) toggleCompletion(w http.ResponseWriter, r *http.Request) {
	var req dto.ToggleCompletionRequest
	if err := readJSON(r, &req); err != nil {
		writeError(w, http.StatusBadRequest, "invalid json")
		return
	}
	ctx, cancel, userID := a.requestContext(r)
	defer cancel()

	q, err := a.core.Services.Questions.ToggleCompletion(ctx, userID, req.QuestionID, req.Completed)
	if err != nil {
		writeServiceError(w, r, err)
		return
	}
	writeJSON(w, http.StatusOK, toQuestionDTO(q))
}

func (a *apiServer) searchQuestions(w http.ResponseWriter, r *http.Request) {
	limit, err := parseLimitParam(r.URL.Query().Get("limit"))
	if err != nil {
		writeError(w, http.StatusBadRequest, err.Error())
		return
	}
	ctx, cancel, userID := a.requestContext(r)
	defer cancel()

	items, err := a.core.Services.Questions.Search(ctx, userID, r.URL.Query().Get("q"), limit)
	if err != nil {
		writeServiceError(w, r, err)
		return
	}
	writeJSON(w, http.StatusOK, toQuestionDTOs(items))
}

func (a *apiServer) relatedQuestions(w http.ResponseWriter, r *http.Request) {
	id := strings.TrimSpace(r.URL.Query().Get("id"))
	if id == "" {
		writeError(w, http.StatusBadRequest, "id 不能为空")
		return
	}
	limit, err := parseLimitParam(r.URL.Query().Get("limit"))
	if err != nil {
		writeError(w, http.StatusBadRequest, err.Error())
		return
	}
	ctx, cancel, userID := a.requestContext(r)
	defer cancel()

	items, err := a.core.Services.Questions.Related(ctx, userID, id, limit)
	if err != nil {
		writeServiceError(w, r, err)
		return
	}
	out := make([]dto.RelatedQuestionDTO, 0, len(items))
	for _, it := range items {
		out = append(out, dto.RelatedQuestionDTO{
			ID:         it.ID,
			Title:      it.Title,
			TopicName:  it.TopicName,
			Similarity: it.Similarity,
		})
	}
	writeJSON(w, http.StatusOK, out)
}

// ========== topics ==========

func (a *apiServer) topics(w http.ResponseWriter, r *http.Request) {
	switch r.Method {
	case http.MethodGet:
		a.listTopics(w, r)
	case http.MethodPost:
		a.addTopic(w, r)
	default:
		writeError(w, http.StatusMethodNotAllowed, "method not allowed")
	}
}

func (a *apiServer) listTopics(w http.ResponseWriter, r *http.Request) {
	ctx, cancel, userID := a.requestContext(r)
	defer cancel()

	items, err := a.core.Services.Topics.List(ctx, userID)
	if err != nil {
		writeServiceError(w, r, err)
		return
	}
	out := make([]dto.TopicDTO, 0, len(items))
	for i := range items {
		out = append(out, toTopicDTO(&items[i]))
	}
	writeJSON(w, http.StatusOK, out)
}

func (a *apiServer) addTopic(w http.ResponseWriter, r *http.Request) {
	var req dto.AddTopicRequest
	if err := readJSON(r, &req); err != nil {
		writeError(w, http.StatusBadRequest, "invalid json")
		return
	}
	ctx, cancel, userID := a.requestContext(r)
	defer cancel()

	t, err := a.core.Services.Topics.Add(ctx, userID, service.TopicInput{Name: req.Name})
	if err != nil {
		writeServiceError(w, r, err)
		return
	}
	writeJSON(w, http.StatusCreated, toTopicDTO(t))
}

func (a *apiServer) getTopicDetail(w http.ResponseWriter, r *http.Request) {
	id := strings.TrimSpace(r.URL.Query().Get("id"))
	if id == "" {
		writeError(w, http.StatusBadRequest, "id 不能为空")
		return
	}
	ctx, cancel, userID := a.requestContext(r)
	defer cancel()

	t, err := a.core.Services.Topics.Get(ctx, userID, id)
	if err != nil {
		writeServiceError(w, r, err)
		return
	}
	qs, err := a.core.Services.Questions.ListByTopic(ctx, userID, t.Name)
	if err != nil {
		writeServiceError(w, r, err)
		return
	}
	writeJSON(w, http.StatusOK, dto.TopicDetailDTO{
		Topic:     toTopicDTO(t),
		Questions: toQuestionDTOs(qs),
	})
}

// ========== contests ==========

func (a *apiServer) contests(w http.ResponseWriter, r *http.Request) {
	switch r.Method {
	case http.MethodGet:
		a.listContests(w, r)
	case http.MethodPost:
		a.addContest(w, r)
	default:
		writeError(w, http.StatusMethodNotAllowed, "method not allowed")
	}
}

func (a *apiServer) listContests(w http.ResponseWriter, r *http.Request) {
	ctx, cancel, userID := a.requestContext(r)
	defer cancel()

	items, err := a.core.Services.Contests.List(ctx, userID)
	if err != nil {
		writeServiceError(w, r, err)
		return
	}
	out := make([]dto.ContestDTO, 0, len(items))
	for i := range items {
		out = append(out, toContestDTO(&items[i]))
	}
	writeJSON(w, http.StatusOK, out)
}

func (a *apiServer) addContest(w http.ResponseWriter, r *http.Request) {
	var req dto.AddContestRequest
	if err := readJSON(r, &req); err != nil {
		writeError(w, http.StatusBadRequest, "invalid json")
		return
	}
	ctx, cancel, userID := a.requestContext(r)
	defer cancel()

	c, err := a.core.Services.Contests.Add(ctx, userID, service.ContestInput{
		Title:     req.Title,
		Platform:  req.Platform,
		Date:      req.Date,
		StartTime: req.StartTime,
		EndTime:   req.EndTime,
	})
	if err != nil {
		writeServiceError(w, r, err)
		return
	}
	writeJSON(w, http.StatusCreated, toContestDTO(c))
}

func (a *apiServer) getUpcomingContests(w http.ResponseWriter, r *http.Request) {
	ctx, cancel, userID := a.requestContext(r)
	defer cancel()

	n, err := a.core.Services.Contests.UpcomingCount(ctx, userID, a.now())
	if err != nil {
		writeServiceError(w, r, err)
		return
	}
	writeJSON(w, http.StatusOK, dto.CountDTO{Count: n})
}
