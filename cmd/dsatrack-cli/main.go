package main

import (
	"context"
	"fmt"
	"log/slog"
	"os"
	"strings"
	"time"

	"github.com/spf13/cobra"
	"github.com/yuqie6/dsatrack/internal/bootstrap"
	"github.com/yuqie6/dsatrack/internal/pkg/buildinfo"
	"github.com/yuqie6/dsatrack/internal/pkg/dayutil"
	"github.com/yuqie6/dsatrack/internal/repository"
	"github.com/yuqie6/dsatrack/internal/schema"
	"github.com/yuqie6/dsatrack/internal/service"
)

var (
	cfgFile string
	userID  string
	core    *bootstrap.Core
)

func main() {
	rootCmd := &cobra.Command{
		Use:     "dsatrack",
		Short:   "dsatrack - 刷题进度与连续打卡记录",
		Version: buildinfo.String(),
		PersistentPreRun: func(cmd *cobra.Command, args []string) {
			var err error
			core, err = bootstrap.NewCore(context.Background(), cfgFile)
			if err != nil {
				slog.Error("初始化失败", "error", err)
				os.Exit(1)
			}
			if strings.TrimSpace(userID) == "" {
				userID = core.Cfg.Auth.DevUser
			}
		},
		PersistentPostRun: func(cmd *cobra.Command, args []string) {
			if core != nil {
				_ = core.Close()
			}
		},
	}

	rootCmd.PersistentFlags().StringVarP(&cfgFile, "config", "c", "", "配置文件路径")
	rootCmd.PersistentFlags().StringVarP(&userID, "user", "u", os.Getenv("DSATRACK_USER"), "用户 ID（默认 auth.dev_user）")

	rootCmd.AddCommand(streakCmd())
	rootCmd.AddCommand(recordCmd())
	rootCmd.AddCommand(statsCmd())
	rootCmd.AddCommand(heatmapCmd())
	rootCmd.AddCommand(questionsCmd())
	rootCmd.AddCommand(addQuestionCmd())
	rootCmd.AddCommand(completeCmd())
	rootCmd.AddCommand(searchCmd())
	rootCmd.AddCommand(topicsCmd())
	rootCmd.AddCommand(addTopicCmd())
	rootCmd.AddCommand(contestsCmd())
	rootCmd.AddCommand(addContestCmd())
	rootCmd.AddCommand(tokenCmd())

	if err := rootCmd.Execute(); err != nil {
		os.Exit(1)
	}
}

func fail(format string, args ...any) {
	fmt.Printf("❌ "+format+"\n", args...)
	os.Exit(1)
}

// streakCmd 查看连续打卡
func streakCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "streak",
		Short: "查看连续打卡",
		Run: func(cmd *cobra.Command, args []string) {
			rec, err := core.Services.Streaks.GetStreak(context.Background(), userID)
			if err != nil {
				fail("查询失败: %v", err)
			}
			printStreak(rec)
		},
	}
}

func printStreak(rec *schema.StreakRecord) {
	fmt.Printf("🔥 当前连续: %d 天\n", rec.CurrentStreak)
	fmt.Printf("🏆 最长连续: %d 天\n", rec.MaxStreak)
	if last := service.FormatLastActive(rec); last != "" {
		fmt.Printf("📅 最近活跃: %s (%s)\n", last, rec.LastActivityDate)
	} else {
		fmt.Println("📅 还没有打卡记录")
	}
}

// recordCmd 手动打卡
func recordCmd() *cobra.Command {
	var date string

	cmd := &cobra.Command{
		Use:   "record",
		Short: "记录一次打卡（默认今天）",
		Run: func(cmd *cobra.Command, args []string) {
			ctx := context.Background()
			day := time.Now()
			if date != "" {
				parsed, err := dayutil.ParseDay(date)
				if err != nil {
					fail("日期格式错误: %v", err)
				}
				day = parsed
			}
			rec, err := core.Services.Streaks.RecordActivity(ctx, userID, day)
			if err != nil {
				fail("打卡失败: %v", err)
			}
			fmt.Println("✅ 已打卡")
			printStreak(rec)
		},
	}
	cmd.Flags().StringVar(&date, "date", "", "指定日期 (YYYY-MM-DD)")
	return cmd
}

// statsCmd 统计面板
func statsCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "stats",
		Short: "查看统计面板",
		Run: func(cmd *cobra.Command, args []string) {
			d, err := core.Services.Stats.Dashboard(context.Background(), userID, time.Now())
			if err != nil {
				fail("统计失败: %v", err)
			}

			fmt.Println("📊 刷题统计")
			fmt.Println("═══════════════════════════════════════")
			fmt.Printf("\n✅ 已解决: %d 题\n", d.TotalSolved)
			fmt.Printf("🗓  待参加比赛: %d 场\n", d.UpcomingContests)
			fmt.Printf("🔥 连续打卡: %d 天 (最长 %d)\n", d.Streak.CurrentStreak, d.Streak.MaxStreak)

			printChart("难度", d.ByDifficulty)
			printChart("平台", d.ByPlatform)
			printChart("分类", d.ByTopic)
			fmt.Println("\n═══════════════════════════════════════")
		},
	}
}

func printChart(title string, items []service.ChartItem) {
	if len(items) == 0 {
		return
	}
	fmt.Printf("\n📈 按%s\n", title)
	for _, it := range items {
		fmt.Printf("  • %s: %d\n", it.Name, it.Value)
	}
}

// heatmapCmd 近一年活跃日
func heatmapCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "heatmap",
		Short: "查看近一年每日新增题目",
		Run: func(cmd *cobra.Command, args []string) {
			cells, err := core.Services.Stats.Heatmap(context.Background(), userID, time.Now())
			if err != nil {
				fail("查询失败: %v", err)
			}
			if len(cells) == 0 {
				fmt.Println("📚 近一年还没有记录")
				return
			}
			for _, c := range cells {
				fmt.Printf("  %s %s %d\n", c.Date, strings.Repeat("■", c.Level), c.Count)
			}
		},
	}
}

// questionsCmd 题目列表
func questionsCmd() *cobra.Command {
	var difficulty, platform, topic string

	cmd := &cobra.Command{
		Use:   "questions",
		Short: "列出题目",
		Run: func(cmd *cobra.Command, args []string) {
			items, err := core.Services.Questions.List(context.Background(), userID, repository.QuestionFilter{
				Difficulty: difficulty,
				Platform:   platform,
				TopicName:  topic,
			})
			if err != nil {
				fail("查询失败: %v", err)
			}
			printQuestions(items)
		},
	}
	cmd.Flags().StringVar(&difficulty, "difficulty", schema.FilterAll, "Easy/Medium/Hard/All")
	cmd.Flags().StringVar(&platform, "platform", schema.FilterAll, "平台或 All")
	cmd.Flags().StringVar(&topic, "topic", "", "分类名")
	return cmd
}

func printQuestions(items []schema.Question) {
	if len(items) == 0 {
		fmt.Println("📚 没有题目")
		return
	}
	for _, q := range items {
		mark := "  "
		if q.Completed {
			mark = "✅"
		}
		fmt.Printf("%s %s  [%s/%s/%s]  %s\n", mark, truncateString(q.Title, 40), q.Difficulty, q.Platform, q.TopicName, q.ID)
	}
}

// addQuestionCmd 新增题目
func addQuestionCmd() *cobra.Command {
	var in service.QuestionInput

	cmd := &cobra.Command{
		Use:   "add-question <title>",
		Short: "新增题目",
		Args:  cobra.ExactArgs(1),
		Run: func(cmd *cobra.Command, args []string) {
			in.Title = args[0]
			q, err := core.Services.Questions.Add(context.Background(), userID, in)
			if err != nil {
				fail("新增失败: %v", err)
			}
			fmt.Printf("✅ 已新增 %s (%s)\n", q.Title, q.ID)
		},
	}
	cmd.Flags().StringVar(&in.Difficulty, "difficulty", schema.DifficultyEasy, "Easy/Medium/Hard")
	cmd.Flags().StringVar(&in.Platform, "platform", schema.PlatformLeetCode, "LeetCode/CSES/CodeChef/Codeforces/Other")
	cmd.Flags().StringVar(&in.TopicName, "topic", "", "分类名")
	cmd.Flags().StringVar(&in.Link, "link", "", "题目链接")
	cmd.Flags().StringVar(&in.Description, "desc", "", "描述")
	cmd.Flags().StringVar(&in.Comments, "comments", "", "备注")
	return cmd
}

// completeCmd 标记完成
func completeCmd() *cobra.Command {
	var undo bool

	cmd := &cobra.Command{
		Use:   "complete <question-id>",
		Short: "标记题目完成（--undo 取消）",
		Args:  cobra.ExactArgs(1),
		Run: func(cmd *cobra.Command, args []string) {
			q, err := core.Services.Questions.ToggleCompletion(context.Background(), userID, args[0], !undo)
			if err != nil {
				fail("操作失败: %v", err)
			}
			if q.Completed {
				fmt.Printf("✅ %s 已完成\n", q.Title)
			} else {
				fmt.Printf("↩️  %s 已取消完成\n", q.Title)
			}
		},
	}
	cmd.Flags().BoolVar(&undo, "undo", false, "取消完成")
	return cmd
}

// searchCmd 模糊搜索 / 相似题目
func searchCmd() *cobra.Command {
	var limit int
	var related bool

	cmd := &cobra.Command{
		Use:   "search <query|question-id>",
		Short: "按标题模糊搜索；--related 时按题目 ID 查相似题",
		Args:  cobra.ExactArgs(1),
		Run: func(cmd *cobra.Command, args []string) {
			ctx := context.Background()
			if related {
				items, err := core.Services.Questions.Related(ctx, userID, args[0], limit)
				if err != nil {
					fail("查询失败: %v", err)
				}
				if len(items) == 0 {
					fmt.Println("📚 没有相似题目")
					return
				}
				for _, it := range items {
					fmt.Printf("  • %s [%s] %.2f\n", it.Title, it.TopicName, it.Similarity)
				}
				return
			}
			items, err := core.Services.Questions.Search(ctx, userID, args[0], limit)
			if err != nil {
				fail("搜索失败: %v", err)
			}
			printQuestions(items)
		},
	}
	cmd.Flags().IntVarP(&limit, "limit", "n", 10, "最大数量")
	cmd.Flags().BoolVar(&related, "related", false, "查相似题目")
	return cmd
}

// topicsCmd 分类列表
func topicsCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "topics",
		Short: "列出分类",
		Run: func(cmd *cobra.Command, args []string) {
			items, err := core.Services.Topics.List(context.Background(), userID)
			if err != nil {
				fail("查询失败: %v", err)
			}
			if len(items) == 0 {
				fmt.Println("📚 没有分类")
				return
			}
			for _, t := range items {
				fmt.Printf("  • %s (%d 题)\n", t.Name, t.QuestionCount)
			}
		},
	}
}

func addTopicCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "add-topic <name>",
		Short: "新增分类",
		Args:  cobra.ExactArgs(1),
		Run: func(cmd *cobra.Command, args []string) {
			t, err := core.Services.Topics.Add(context.Background(), userID, service.TopicInput{Name: args[0]})
			if err != nil {
				fail("新增失败: %v", err)
			}
			fmt.Printf("✅ 已新增分类 %s\n", t.Name)
		},
	}
}

// contestsCmd 比赛列表
func contestsCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "contests",
		Short: "列出比赛",
		Run: func(cmd *cobra.Command, args []string) {
			ctx := context.Background()
			items, err := core.Services.Contests.List(ctx, userID)
			if err != nil {
				fail("查询失败: %v", err)
			}
			upcoming, err := core.Services.Contests.UpcomingCount(ctx, userID, time.Now())
			if err != nil {
				fail("查询失败: %v", err)
			}
			fmt.Printf("🗓  共 %d 场，待参加 %d 场\n", len(items), upcoming)
			for i := range items {
				fmt.Printf("  • %s [%s] %s\n", items[i].Title, items[i].Platform, service.FormatContestWindow(&items[i]))
			}
		},
	}
}

func addContestCmd() *cobra.Command {
	var in service.ContestInput

	cmd := &cobra.Command{
		Use:   "add-contest <title>",
		Short: "新增比赛",
		Args:  cobra.ExactArgs(1),
		Run: func(cmd *cobra.Command, args []string) {
			in.Title = args[0]
			c, err := core.Services.Contests.Add(context.Background(), userID, in)
			if err != nil {
				fail("新增失败: %v", err)
			}
			fmt.Printf("✅ 已新增比赛 %s\n", service.FormatContestWindow(c))
		},
	}
	cmd.Flags().StringVar(&in.Platform, "platform", schema.PlatformLeetCode, "平台")
	cmd.Flags().StringVar(&in.Date, "date", "", "日期 (YYYY-MM-DD)")
	cmd.Flags().StringVar(&in.StartTime, "start", "", "开始时间 (HH:MM)")
	cmd.Flags().StringVar(&in.EndTime, "end", "", "结束时间 (HH:MM)")
	return cmd
}

// tokenCmd 签发 bearer token，供调用 HTTP API
func tokenCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "token",
		Short: "为 --user 签发 API token",
		Run: func(cmd *cobra.Command, args []string) {
			tok, err := core.Tokens.Issue(userID)
			if err != nil {
				fail("签发失败: %v", err)
			}
			fmt.Println(tok)
		},
	}
}

// truncateString 截断字符串
func truncateString(s string, maxLen int) string {
	runes := []rune(s)
	if len(runes) <= maxLen {
		return s
	}
	return string(runes[:maxLen]) + "..."
}
