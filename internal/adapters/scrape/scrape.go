// Package scrape converts the target services' HTML pages into typed
// records. The pages have no structured export; every function here walks
// the same table layouts the browser renders and degrades to empty results
// on markup it does not recognize.
package scrape

import (
	"fmt"
	"strings"

	"github.com/PuerkitoBio/goquery"

	"tutorwatch/internal/domain"
)

const activationServletPath = "SetListTeacherActiveServlet"

func document(body string) (*goquery.Document, error) {
	doc, err := goquery.NewDocumentFromReader(strings.NewReader(body))
	if err != nil {
		return nil, fmt.Errorf("parse page: %w", err)
	}
	return doc, nil
}

// Students parses a directory search result page. Results live in the
// striped table ("randig"); the first row is the header.
func Students(body string) ([]domain.Student, error) {
	doc, err := document(body)
	if err != nil {
		return nil, err
	}

	var students []domain.Student
	doc.Find("table.randig").First().Find("tr").Each(func(i int, row *goquery.Selection) {
		if i == 0 {
			return
		}
		cells := row.Find("td")
		if cells.Length() < 5 {
			return
		}

		student := domain.Student{
			ProfileURL:  cells.Eq(0).Find("a").AttrOr("href", ""),
			ScheduleURL: cells.Eq(1).Find("a").AttrOr("href", ""),
			LastName:    strings.TrimSpace(cells.Eq(2).Text()),
			FirstName:   strings.TrimSpace(cells.Eq(3).Text()),
			Email:       strings.TrimSpace(cells.Eq(4).Text()),
		}
		if student.LastName == "" && student.FirstName == "" {
			return
		}
		students = append(students, student)
	})

	return students, nil
}

// ActivationLinks collects the hrefs of the "Aktivera" anchors on the list
// overview page. Each one re-activates a single inactive list.
func ActivationLinks(body string) ([]string, error) {
	doc, err := document(body)
	if err != nil {
		return nil, err
	}

	var links []string
	doc.Find("a").Each(func(_ int, anchor *goquery.Selection) {
		href := anchor.AttrOr("href", "")
		if strings.Contains(anchor.Text(), "Aktivera") && strings.Contains(href, activationServletPath) {
			links = append(links, href)
		}
	})

	return links, nil
}

// FindStudentList locates the list a queued student is waiting on by
// scanning the teacher start page for the student's queue text. It returns
// the list id plus the cleaned name/location when the row carries them.
func FindStudentList(body, rawText string) (listID, studentName, location string, ok bool) {
	doc, err := document(body)
	if err != nil {
		return "", "", "", false
	}

	doc.Find("table").EachWithBreak(func(_ int, table *goquery.Selection) bool {
		if !strings.Contains(table.Text(), rawText) {
			return true
		}

		table.Find("tr").EachWithBreak(func(_ int, row *goquery.Selection) bool {
			if !strings.Contains(row.Text(), rawText) {
				return true
			}
			row.Find("td").EachWithBreak(func(_ int, cell *goquery.Selection) bool {
				cellText := strings.TrimSpace(cell.Text())
				if name, loc := domain.SplitNameLocation(cellText); loc != "" {
					studentName, location = name, loc
					return false
				}
				if strings.Contains(cellText, rawText) {
					studentName = cellText
					return false
				}
				return true
			})
			return studentName == ""
		})

		id := listIDFromLinks(table)
		if id == "" {
			if parent := table.ParentsFiltered("td, tr").First(); parent.Length() > 0 {
				id = listIDFromLinks(parent)
			}
		}
		if id != "" {
			listID = id
			ok = true
			return false
		}
		return true
	})

	return listID, studentName, location, ok
}

func listIDFromLinks(sel *goquery.Selection) string {
	id := ""
	sel.Find("a").EachWithBreak(func(_ int, anchor *goquery.Selection) bool {
		if match := listIDPattern.FindStringSubmatch(anchor.AttrOr("href", "")); match != nil {
			id = match[1]
			return false
		}
		return true
	})
	return id
}
