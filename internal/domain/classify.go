package domain

import (
	"strings"
	"time"
)

// developerKeywords covers programming terms in English and Korean.
// Matching any of them in an article's text re-files it under the
// developer category regardless of what the source reported.
var developerKeywords = []string{
	"programming",
	"developer",
	"software engineer",
	"open source",
	"github",
	"javascript",
	"typescript",
	"python",
	"golang",
	"kubernetes",
	"frontend",
	"backend",
	"devops",
	"컴파일러",
	"개발자",
	"프로그래밍",
	"코딩",
	"오픈소스",
	"소프트웨어 개발",
	"프레임워크",
	"백엔드",
	"프론트엔드",
}

// IsDeveloperTopic scans title, description and content for the fixed
// bilingual keyword set.
func IsDeveloperTopic(title, description, content string) bool {
	text := strings.ToLower(title + " " + description + " " + content)
	for _, kw := range developerKeywords {
		if strings.Contains(text, kw) {
			return true
		}
	}
	return false
}

// ReclassifyDeveloper applies the developer override and reprices the
// article when its category changed. The input value is left untouched.
func ReclassifyDeveloper(a Article, now time.Time) Article {
	if a.Category == CategoryDeveloper {
		return a
	}
	if !IsDeveloperTopic(a.Title, a.Description, a.Content) {
		return a
	}
	a.Category = CategoryDeveloper
	a.Priority = a.ComputePriority(now)
	return a
}
