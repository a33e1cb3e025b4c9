package directory

import (
	"context"
	"slices"
	"strconv"
	"time"

	"alumnilink/internal/app/entity"
)

// YearCount is one bar of the alumni by graduation year chart.
type YearCount struct {
	Year  string `json:"year"`
	Total int    `json:"total"`
}

// Overview is the admin dashboard summary.
type Overview struct {
	TotalAlumni    int         `json:"totalAlumni"`
	TotalStudents  int         `json:"totalStudents"`
	TotalEvents    int         `json:"totalEvents"`
	UpcomingEvents int         `json:"upcomingEvents"`
	TotalRSVPs     int         `json:"totalRsvps"`
	AlumniByYear   []YearCount `json:"alumniByYear"`
}

// Overview computes the admin dashboard totals.
func (s *Service) Overview(ctx context.Context) Overview {
	alumni := s.alumni.List(ctx)
	students := s.students.List(ctx)
	events := s.events.List(ctx)
	now := s.now()
	today := time.Date(now.Year(), now.Month(), now.Day(), 0, 0, 0, 0, now.Location())

	o := Overview{
		TotalAlumni:   len(alumni),
		TotalStudents: len(students),
		TotalEvents:   len(events),
		AlumniByYear:  []YearCount{},
	}

	for _, e := range events {
		o.TotalRSVPs += e.RSVPs
		if date, ok := entity.ParseEventDate(e.Date); ok && !date.Before(today) {
			o.UpcomingEvents++
		}
	}

	byYear := map[int]int{}
	for _, a := range alumni {
		byYear[a.GraduationYear]++
	}

	years := make([]int, 0, len(byYear))
	for y := range byYear {
		years = append(years, y)
	}
	slices.Sort(years)

	for _, y := range years {
		o.AlumniByYear = append(o.AlumniByYear, YearCount{Year: strconv.Itoa(y), Total: byYear[y]})
	}

	return o
}
