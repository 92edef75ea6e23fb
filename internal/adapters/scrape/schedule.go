package scrape

import (
	"regexp"
	"strconv"
	"strings"
	"time"

	"github.com/PuerkitoBio/goquery"

	"tutorwatch/internal/domain"
)

var (
	timeRangePattern = regexp.MustCompile(`(\d{1,2}):(\d{2})\s*-\s*(\d{1,2}):(\d{2})`)
	datePattern      = regexp.MustCompile(`^\d{4}-\d{2}-\d{2}`)
	listIDPattern    = regexp.MustCompile(`listid=(\d+)`)
	coursePattern    = regexp.MustCompile(`\[\s*([^\]]+?)\s*\]`)
)

// ownTimesMarker labels the cell listing the time ranges the operator is
// personally scheduled for ("Mina tider"). When present, schedule rows
// outside those ranges belong to other teachers and are skipped.
const ownTimesMarker = "Mina tider"

type timeRange struct {
	startHour, startMin, endHour, endMin string
}

// PlannedSchedules parses the teacher start page into schedule entries,
// keeping only sessions inside the operator's own time ranges and
// deduplicating repeated rows.
func PlannedSchedules(body string) ([]domain.ScheduleEntry, error) {
	doc, err := document(body)
	if err != nil {
		return nil, err
	}

	ownTimes := collectOwnTimes(doc)

	var entries []domain.ScheduleEntry
	seen := map[string]struct{}{}

	doc.Find("table").Each(func(_ int, table *goquery.Selection) {
		rows := table.Find("tr")
		if rows.Length() == 0 {
			return
		}

		headerText := rows.First().Text()
		if !strings.Contains(headerText, "Datum") || !strings.Contains(headerText, "Tid") {
			return
		}

		rows.Each(func(i int, row *goquery.Selection) {
			if i == 0 {
				return
			}
			entry, ok := parseScheduleRow(row, ownTimes)
			if !ok {
				return
			}

			key := entry.ListID + "|" + entry.Start.Format(time.RFC3339) + "|" + entry.End.Format(time.RFC3339)
			if _, dup := seen[key]; dup {
				return
			}
			seen[key] = struct{}{}
			entries = append(entries, entry)
		})
	})

	return entries, nil
}

func collectOwnTimes(doc *goquery.Document) map[timeRange]struct{} {
	ownTimes := map[timeRange]struct{}{}
	doc.Find("td[colspan]").Each(func(_ int, cell *goquery.Selection) {
		text := cell.Text()
		marker := strings.Index(text, ownTimesMarker)
		if marker < 0 {
			return
		}
		for _, match := range timeRangePattern.FindAllStringSubmatch(text[marker:], -1) {
			ownTimes[timeRange{match[1], match[2], match[3], match[4]}] = struct{}{}
		}
	})
	return ownTimes
}

func parseScheduleRow(row *goquery.Selection, ownTimes map[timeRange]struct{}) (domain.ScheduleEntry, bool) {
	cells := row.Find("td")
	if cells.Length() < 4 {
		return domain.ScheduleEntry{}, false
	}

	listType := strings.TrimSpace(cells.Eq(0).Text())

	dateText := strings.TrimSpace(cells.Eq(1).Text())
	if !datePattern.MatchString(dateText) {
		return domain.ScheduleEntry{}, false
	}
	day, err := time.ParseInLocation("2006-01-02", dateText[:10], time.Local)
	if err != nil {
		return domain.ScheduleEntry{}, false
	}

	timeMatch := timeRangePattern.FindStringSubmatch(cells.Eq(2).Text())
	if timeMatch == nil {
		return domain.ScheduleEntry{}, false
	}
	if len(ownTimes) > 0 {
		if _, ok := ownTimes[timeRange{timeMatch[1], timeMatch[2], timeMatch[3], timeMatch[4]}]; !ok {
			return domain.ScheduleEntry{}, false
		}
	}

	label := listType
	if codes := coursePattern.FindAllStringSubmatch(cells.Eq(3).Text(), -1); len(codes) > 0 {
		parts := make([]string, 0, len(codes))
		for _, code := range codes {
			parts = append(parts, code[1])
		}
		label = strings.Join(parts, ", ")
	}

	listID := ""
	cells.EachWithBreak(func(_ int, cell *goquery.Selection) bool {
		if id := listIDFromLinks(cell); id != "" {
			listID = id
			return false
		}
		return true
	})

	return domain.ScheduleEntry{
		Start:  day.Add(clockOffset(timeMatch[1], timeMatch[2])),
		End:    day.Add(clockOffset(timeMatch[3], timeMatch[4])),
		Label:  label,
		ListID: listID,
	}, true
}

func clockOffset(hour, minute string) time.Duration {
	h, _ := strconv.Atoi(hour)
	m, _ := strconv.Atoi(minute)
	return time.Duration(h)*time.Hour + time.Duration(m)*time.Minute
}
