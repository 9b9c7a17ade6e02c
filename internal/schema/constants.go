package schema

// 难度
const (
	DifficultyEasy   = "Easy"
	DifficultyMedium = "Medium"
	DifficultyHard   = "Hard"
)

// 刷题平台
const (
	PlatformLeetCode   = "LeetCode"
	PlatformCSES       = "CSES"
	PlatformCodeChef   = "CodeChef"
	PlatformCodeforces = "Codeforces"
	PlatformOther      = "Other"
)

// FilterAll 列表筛选时表示不过滤
const FilterAll = "All"

// Difficulties 固定顺序，统计图表按此顺序输出
var Difficulties = []string{DifficultyEasy, DifficultyMedium, DifficultyHard}

// Platforms 固定顺序
var Platforms = []string{PlatformLeetCode, PlatformCSES, PlatformCodeChef, PlatformCodeforces, PlatformOther}

// IsDifficulty 是否为合法难度
func IsDifficulty(s string) bool {
	return contains(Difficulties, s)
}

// IsPlatform 是否为合法平台
func IsPlatform(s string) bool {
	return contains(Platforms, s)
}

func contains(list []string, s string) bool {
	for _, v := range list {
		if v == s {
			return true
		}
	}
	return false
}
