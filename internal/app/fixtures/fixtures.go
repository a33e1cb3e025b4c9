/*
Package fixtures provides the seed collections written to an empty entity store:
five alumni, two students and three upcoming events. The data is embedded YAML;
event dates are computed relative to the time of seeding.
*/
package fixtures

import (
	_ "embed"
	"fmt"
	"sync"
	"time"

	"gopkg.in/yaml.v3"

	"alumnilink/internal/app/entity"
)

//go:embed seed.yaml
var seedYAML []byte

type seedEvent struct {
	entity.Event `yaml:",inline"`
	MonthOffset  int `yaml:"monthOffset"`
	Day          int `yaml:"day"`
}

type seedFile struct {
	Alumni   []entity.Alumni  `yaml:"alumni"`
	Students []entity.Student `yaml:"students"`
	Events   []seedEvent      `yaml:"events"`
}

var (
	parsed   seedFile
	parseErr error
	once     sync.Once
)

func load() (seedFile, error) {
	once.Do(func() {
		if err := yaml.Unmarshal(seedYAML, &parsed); err != nil {
			parseErr = fmt.Errorf("failed to parse seed fixtures: %w", err)
		}
	})
	return parsed, parseErr
}

// Set holds one copy of every seed collection.
type Set struct {
	Alumni   []entity.Alumni
	Students []entity.Student
	Events   []entity.Event
}

// Load returns fresh copies of the seed collections with event dates relative to now.
func Load(now time.Time) (Set, error) {
	file, err := load()
	if err != nil {
		return Set{}, err
	}

	set := Set{
		Alumni:   make([]entity.Alumni, len(file.Alumni)),
		Students: make([]entity.Student, len(file.Students)),
		Events:   make([]entity.Event, 0, len(file.Events)),
	}

	for i, a := range file.Alumni {
		a.Skills = append([]string{}, a.Skills...)
		set.Alumni[i] = a
	}

	for i, s := range file.Students {
		s.Interests = append([]string{}, s.Interests...)
		set.Students[i] = s
	}

	for _, e := range file.Events {
		event := e.Event
		event.Date = EventDate(now, e.MonthOffset, e.Day).Format(time.RFC3339)
		set.Events = append(set.Events, event)
	}

	return set, nil
}

// MustLoad is Load for callers that treat broken fixtures as a programming error.
func MustLoad(now time.Time) Set {
	set, err := Load(now)
	if err != nil {
		panic(err)
	}
	return set
}

// EventDate returns midnight UTC of day in the month monthOffset months after now.
func EventDate(now time.Time, monthOffset, day int) time.Time {
	now = now.UTC()
	return time.Date(now.Year(), now.Month()+time.Month(monthOffset), day, 0, 0, 0, 0, time.UTC)
}
