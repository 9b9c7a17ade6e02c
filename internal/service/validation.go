package service

import (
	"errors"
	"fmt"
	"regexp"
	"strings"

	"github.com/go-playground/validator/v10"
	"github.com/yuqie6/dsatrack/internal/schema"
)

var hhmmPattern = regexp.MustCompile(`^([01]\d|2[0-3]):([0-5]\d)$`)

var validate *validator.Validate

func init() {
	validate = validator.New()
	_ = validate.RegisterValidation("difficulty", func(fl validator.FieldLevel) bool {
		return schema.IsDifficulty(fl.Field().String())
	})
	_ = validate.RegisterValidation("platform", func(fl validator.FieldLevel) bool {
		return schema.IsPlatform(fl.Field().String())
	})
	_ = validate.RegisterValidation("hhmm", func(fl validator.FieldLevel) bool {
		return hhmmPattern.MatchString(fl.Field().String())
	})
}

// QuestionInput 新增题目输入
type QuestionInput struct {
	Title       string `json:"title" validate:"required,min=3,max=200"`
	Link        string `json:"link" validate:"omitempty,url"`
	Description string `json:"description" validate:"max=500"`
	Difficulty  string `json:"difficulty" validate:"required,difficulty"`
	Platform    string `json:"platform" validate:"required,platform"`
	TopicName   string `json:"topic_name" validate:"required,min=1,max=100"`
	Comments    string `json:"comments" validate:"max=500"`
}

func (in *QuestionInput) normalize() {
	in.Title = strings.TrimSpace(in.Title)
	in.Link = strings.TrimSpace(in.Link)
	in.TopicName = strings.TrimSpace(in.TopicName)
}

// TopicInput 新增分类输入
type TopicInput struct {
	Name string `json:"name" validate:"required,min=1,max=100"`
}

// ContestInput 新增比赛输入
type ContestInput struct {
	Title     string `json:"title" validate:"required,min=3,max=200"`
	Platform  string `json:"platform" validate:"required,platform"`
	Date      string `json:"date" validate:"required,datetime=2006-01-02"`
	StartTime string `json:"start_time" validate:"required,hhmm"`
	EndTime   string `json:"end_time" validate:"required,hhmm"`
}

// validateInput 校验失败统一包装为 ErrInvalidArgument
func validateInput(v any) error {
	err := validate.Struct(v)
	if err == nil {
		return nil
	}
	var verrs validator.ValidationErrors
	if errors.As(err, &verrs) {
		parts := make([]string, 0, len(verrs))
		for _, fe := range verrs {
			parts = append(parts, fmt.Sprintf("%s(%s)", fe.Field(), fe.Tag()))
		}
		return invalidArg("字段校验失败: %s", strings.Join(parts, ", "))
	}
	return invalidArg("%v", err)
}

func requireUser(userID string) (string, error) {
	userID = strings.TrimSpace(userID)
	if userID == "" {
		return "", invalidArg("用户 ID 不能为空")
	}
	return userID, nil
}
