package httpapi

import (
	"github.com/yuqie6/dsatrack/internal/dto"
	"github.com/yuqie6/dsatrack/internal/schema"
	"github.com/yuqie6/dsatrack/internal/service"
)

func toStreakDTO(rec *schema.StreakRecord) dto.StreakDTO {
	if rec == nil {
		return dto.StreakDTO{}
	}
	return dto.StreakDTO{
		UserID:           rec.UserID,
		CurrentStreak:    rec.CurrentStreak,
		MaxStreak:        rec.MaxStreak,
		LastActivityDate: rec.LastActivityDate,
		LastActive:       service.FormatLastActive(rec),
	}
}

func toQuestionDTO(q *schema.Question) dto.QuestionDTO {
	return dto.QuestionDTO{
		ID:          q.ID,
		Title:       q.Title,
		Link:        q.Link,
		Description: q.Description,
		Difficulty:  q.Difficulty,
		Platform:    q.Platform,
		TopicName:   q.TopicName,
		Comments:    q.Comments,
		Completed:   q.Completed,
		CreatedAt:   q.CreatedAt.UnixMilli(),
		UpdatedAt:   q.UpdatedAt.UnixMilli(),
	}
}

func toQuestionDTOs(qs []schema.Question) []dto.QuestionDTO {
	out := make([]dto.QuestionDTO, 0, len(qs))
	for i := range qs {
		out = append(out, toQuestionDTO(&qs[i]))
	}
	return out
}

func toTopicDTO(t *schema.Topic) dto.TopicDTO {
	return dto.TopicDTO{
		ID:            t.ID,
		Name:          t.Name,
		QuestionCount: t.QuestionCount,
		CreatedAt:     t.CreatedAt.UnixMilli(),
	}
}

func toContestDTO(c *schema.Contest) dto.ContestDTO {
	return dto.ContestDTO{
		ID:        c.ID,
		Title:     c.Title,
		Platform:  c.Platform,
		Date:      c.Date,
		StartTime: c.StartTime,
		EndTime:   c.EndTime,
		Window:    service.FormatContestWindow(c),
		CreatedAt: c.CreatedAt.UnixMilli(),
	}
}

func toChartDTOs(items []service.ChartItem) []dto.ChartItemDTO {
	out := make([]dto.ChartItemDTO, 0, len(items))
	for _, it := range items {
		out = append(out, dto.ChartItemDTO{Name: it.Name, Value: it.Value, Fill: it.Fill})
	}
	return out
}
