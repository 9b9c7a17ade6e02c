package dto

// 注意：本包承载 HTTP API 的对外契约 DTO。
// 不要在这里放 GORM/持久化细节；持久化 schema 见 internal/schema，业务逻辑在 internal/service。

type StreakDTO struct {
	UserID           string `json:"user_id"`
	CurrentStreak    int    `json:"current_streak"`
	MaxStreak        int    `json:"max_streak"`
	LastActivityDate string `json:"last_activity_date"`
	LastActive       string `json:"last_active"` // "Jun 3"，从未活跃为空
}

type QuestionDTO struct {
	ID          string `json:"id"`
	Title       string `json:"title"`
	Link        string `json:"link,omitempty"`
	Description string `json:"description,omitempty"`
	Difficulty  string `json:"difficulty"`
	Platform    string `json:"platform"`
	TopicName   string `json:"topic_name"`
	Comments    string `json:"comments,omitempty"`
	Completed   bool   `json:"completed"`
	CreatedAt   int64  `json:"created_at"` // unix ms
	UpdatedAt   int64  `json:"updated_at"`
}

type RelatedQuestionDTO struct {
	ID         string  `json:"id"`
	Title      string  `json:"title"`
	TopicName  string  `json:"topic_name"`
	Similarity float32 `json:"similarity"`
}

type TopicDTO struct {
	ID            string `json:"id"`
	Name          string `json:"name"`
	QuestionCount int    `json:"question_count"`
	CreatedAt     int64  `json:"created_at"`
}

type TopicDetailDTO struct {
	Topic     TopicDTO      `json:"topic"`
	Questions []QuestionDTO `json:"questions"`
}

type ContestDTO struct {
	ID        string `json:"id"`
	Title     string `json:"title"`
	Platform  string `json:"platform"`
	Date      string `json:"date"`
	StartTime string `json:"start_time"`
	EndTime   string `json:"end_time"`
	Window    string `json:"window"`
	CreatedAt int64  `json:"created_at"`
}

type ChartItemDTO struct {
	Name  string `json:"name"`
	Value int    `json:"value"`
	Fill  string `json:"fill"`
}

type DashboardDTO struct {
	TotalSolved      int            `json:"total_solved"`
	UpcomingContests int64          `json:"upcoming_contests"`
	Streak           StreakDTO      `json:"streak"`
	ByDifficulty     []ChartItemDTO `json:"by_difficulty"`
	ByPlatform       []ChartItemDTO `json:"by_platform"`
	ByTopic          []ChartItemDTO `json:"by_topic"`
}

type HeatmapCellDTO struct {
	Date  string `json:"date"`
	Count int    `json:"count"`
	Level int    `json:"level"`
}

type CountDTO struct {
	Count int64 `json:"count"`
}

// ========== 请求体 ==========

type AddQuestionRequest struct {
	Title       string `json:"title"`
	Link        string `json:"link"`
	Description string `json:"description"`
	Difficulty  string `json:"difficulty"`
	Platform    string `json:"platform"`
	TopicName   string `json:"topic_name"`
	Comments    string `json:"comments"`
}

type ToggleCompletionRequest struct {
	QuestionID string `json:"question_id"`
	Completed  bool   `json:"completed"`
}

type AddTopicRequest struct {
	Name string `json:"name"`
}

type AddContestRequest struct {
	Title     string `json:"title"`
	Platform  string `json:"platform"`
	Date      string `json:"date"`
	StartTime string `json:"start_time"`
	EndTime   string `json:"end_time"`
}
