// Package schedule models the weekly departure and return days of a truck.
package schedule

import (
	"context"
	"encoding/json"
	"strings"
	"time"

	"github.com/truckledger/service-logistics/internal/platform/apperror"
	"golang.org/x/text/cases"
	"golang.org/x/text/language"
)

// Day is a Spanish weekday name as shown to drivers.
type Day string

const (
	Lunes     Day = "Lunes"
	Martes    Day = "Martes"
	Miercoles Day = "Miércoles"
	Jueves    Day = "Jueves"
	Viernes   Day = "Viernes"
	Sabado    Day = "Sábado"
	Domingo   Day = "Domingo"
)

// Week lists the days Monday first.
var Week = []Day{Lunes, Martes, Miercoles, Jueves, Viernes, Sabado, Domingo}

var dayIndex = map[Day]int{
	Lunes: 0, Martes: 1, Miercoles: 2, Jueves: 3, Viernes: 4, Sabado: 5, Domingo: 6,
}

// unaccented spellings drivers type on keyboards without dead keys.
var aliases = map[string]Day{
	"Miercoles": Miercoles,
	"Sabado":    Sabado,
}

// ParseDay accepts a weekday name in any case, with or without accents.
func ParseDay(s string) (Day, bool) {
	// A Caser keeps state between calls, so each call gets its own.
	d := Day(cases.Title(language.Spanish).String(strings.TrimSpace(s)))
	if _, ok := dayIndex[d]; ok {
		return d, true
	}
	if a, ok := aliases[string(d)]; ok {
		return a, true
	}
	return "", false
}

// DayOf returns the weekday of t in its own location.
func DayOf(t time.Time) Day {
	// time.Sunday is 0.
	return Week[(int(t.Weekday())+6)%7]
}

// Schedule holds the outbound and return days of one plate.
type Schedule struct {
	Plate     string    `json:"plate"`
	Outbound  []Day     `json:"outbound"`
	Return    []Day     `json:"return"`
	UpdatedAt time.Time `json:"updatedAt"`
}

// Days is the normalized pair of day lists without a plate.
type Days struct {
	Outbound []Day `json:"outbound"`
	Return   []Day `json:"return"`
}

// Normalize drops unknown names and duplicates and orders days Monday first.
// The result is never nil.
func Normalize(days []string) []Day {
	seen := make(map[Day]bool, len(days))
	for _, s := range days {
		if d, ok := ParseDay(s); ok {
			seen[d] = true
		}
	}
	out := make([]Day, 0, len(seen))
	for _, d := range Week {
		if seen[d] {
			out = append(out, d)
		}
	}
	return out
}

// NormalizeJSON reads a stored schedule value. A bare array is treated as outbound days
// and anything unreadable yields empty lists.
func NormalizeJSON(raw []byte) Days {
	var list []string
	if err := json.Unmarshal(raw, &list); err == nil {
		return Days{Outbound: Normalize(list), Return: []Day{}}
	}
	var obj struct {
		Outbound []string `json:"outbound"`
		Return   []string `json:"return"`
		Ida      []string `json:"ida"`
		Regreso  []string `json:"regreso"`
	}
	if err := json.Unmarshal(raw, &obj); err != nil {
		return Days{Outbound: []Day{}, Return: []Day{}}
	}
	return Days{
		Outbound: Normalize(append(obj.Outbound, obj.Ida...)),
		Return:   Normalize(append(obj.Return, obj.Regreso...)),
	}
}

// New builds a normalized schedule.
func New(plate string, outbound, ret []string) (*Schedule, error) {
	plate = strings.ToUpper(strings.TrimSpace(plate))
	if plate == "" {
		return nil, apperror.NewValidationError("plate is required")
	}
	return &Schedule{
		Plate:     plate,
		Outbound:  Normalize(outbound),
		Return:    Normalize(ret),
		UpdatedAt: time.Now().UTC(),
	}, nil
}

// Days returns the day lists of s.
func (s *Schedule) Days() Days {
	return Days{Outbound: s.Outbound, Return: s.Return}
}

// Empty reports whether no day is selected.
func (s *Schedule) Empty() bool {
	return len(s.Outbound) == 0 && len(s.Return) == 0
}

// DepartsOn reports whether d is an outbound day.
func (s *Schedule) DepartsOn(d Day) bool { return contains(s.Outbound, d) }

// ReturnsOn reports whether d is a return day.
func (s *Schedule) ReturnsOn(d Day) bool { return contains(s.Return, d) }

func contains(days []Day, d Day) bool {
	for _, x := range days {
		if x == d {
			return true
		}
	}
	return false
}

// Due is a reminder for one plate on one day.
type Due struct {
	Plate   string `json:"plate"`
	Day     Day    `json:"day"`
	Departs bool   `json:"departs"`
	Returns bool   `json:"returns"`
}

// DueOn lists the schedules with a departure or return on d, in input order.
func DueOn(schedules []*Schedule, d Day) []Due {
	out := make([]Due, 0)
	for _, s := range schedules {
		dep, ret := s.DepartsOn(d), s.ReturnsOn(d)
		if dep || ret {
			out = append(out, Due{Plate: s.Plate, Day: d, Departs: dep, Returns: ret})
		}
	}
	return out
}

// Repository stores one schedule per plate.
type Repository interface {
	FindAll(ctx context.Context) ([]*Schedule, error)
	FindByPlate(ctx context.Context, plate string) (*Schedule, error)
	// Upsert replaces the plate's schedule.
	Upsert(ctx context.Context, s *Schedule) error
}
