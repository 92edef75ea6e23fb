package scrape

import (
	"regexp"
	"sort"
	"strings"

	"github.com/PuerkitoBio/goquery"

	"tutorwatch/internal/domain"
)

var (
	// teacherHistoryPattern matches "HH:MM:SS-HH:MM:SS Teacher Name" entries
	// in the raw list-history markup.
	teacherHistoryPattern = regexp.MustCompile(`\d{2}:\d{2}:\d{2}-\d{2}:\d{2}:\d{2}\s+([^<(]+?)(?:\s*\(|<br|$)`)
	historyTimePattern    = regexp.MustCompile(`\d{2}:\d{2}:\d{2}`)
	entryTimePattern      = regexp.MustCompile(`^\d{2}:\d{2}`)
)

const noRecentActivity = "No recent activity"

// ListDetails parses a list detail page: the course, the other teachers seen
// in the help history, and a short summary of the most recent activity.
func ListDetails(body, listID string) (domain.ListDetail, error) {
	doc, err := document(body)
	if err != nil {
		return domain.ListDetail{}, err
	}

	detail := domain.ListDetail{
		ListID:         listID,
		Course:         courseFromTables(doc),
		OtherTeachers:  teachersFromHistory(body),
		RecentActivity: recentActivity(doc),
	}

	return detail, nil
}

func courseFromTables(doc *goquery.Document) string {
	course := ""
	doc.Find("table tr").EachWithBreak(func(_ int, row *goquery.Selection) bool {
		cells := row.Find("td")
		if cells.Length() < 2 {
			return true
		}
		header := cells.Eq(0).Text()
		if strings.Contains(header, "Kurskod") || strings.Contains(header, "Kursnamn") {
			course = strings.TrimSpace(cells.Eq(1).Text())
			return false
		}
		return true
	})
	return course
}

func teachersFromHistory(body string) []string {
	seen := map[string]struct{}{}
	for _, match := range teacherHistoryPattern.FindAllStringSubmatch(body, -1) {
		name := strings.TrimSpace(match[1])
		if name != "" {
			seen[name] = struct{}{}
		}
	}

	teachers := make([]string, 0, len(seen))
	for name := range seen {
		teachers = append(teachers, name)
	}
	sort.Strings(teachers)
	return teachers
}

// recentActivity summarizes the last three rows of the first table carrying
// timestamps.
func recentActivity(doc *goquery.Document) string {
	var history *goquery.Selection
	doc.Find("table").EachWithBreak(func(_ int, table *goquery.Selection) bool {
		if historyTimePattern.MatchString(table.Text()) {
			history = table
			return false
		}
		return true
	})
	if history == nil {
		return noRecentActivity
	}

	rows := history.Find("tr")
	start := rows.Length() - 3
	if start < 0 {
		start = 0
	}

	var lines []string
	rows.Each(func(i int, row *goquery.Selection) {
		if i < start {
			return
		}
		cells := row.Find("td")
		if cells.Length() < 2 {
			return
		}
		timestamp := strings.TrimSpace(cells.Eq(0).Text())
		student := strings.TrimSpace(cells.Eq(1).Text())
		if timestamp == "" || student == "" || !entryTimePattern.MatchString(timestamp) {
			return
		}
		lines = append(lines, timestamp+" - "+student)
	})

	if len(lines) == 0 {
		return noRecentActivity
	}
	return strings.Join(lines, "; ")
}
