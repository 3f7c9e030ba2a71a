package naming

import (
	"strconv"
	"time"
)

// Plan - относительный путь для сохранения записи (без расширения).
type Plan struct {
	DayFolder string
	BaseName  string
}

type Generator struct {
	schedule     Schedule
	folderPrefix string
	dayNames     [7]string
}

// New создаёт генератор имён. dayNames индексируются по time.Weekday (с воскресенья).
func New(schedule Schedule, folderPrefix string, dayNames []string) *Generator {
	g := &Generator{
		schedule:     schedule,
		folderPrefix: folderPrefix,
	}
	copy(g.dayNames[:], dayNames)
	return g
}

// Plan вычисляет имя для записи, которая скачивается в момент now.
//
// Выбирается последний слот, чей порог (время + задержка) уже прошёл. Если не прошёл
// ни один порог, берётся последний слот предыдущего дня. Ровно на пороге слот
// считается прошедшим.
//
// Пример для расписания [1030+30m 1400+30m]:
//
//	10:45 -> вчерашний "1400"
//	11:00 -> сегодняшний "1030"
//	23:59 -> сегодняшний "1400"
func (g *Generator) Plan(now time.Time) Plan {
	minutes := now.Hour()*60 + now.Minute()

	label := g.schedule[len(g.schedule)-1].Label
	day := now
	for i, slot := range g.schedule {
		if minutes >= slot.Minutes() {
			continue
		}
		if i > 0 {
			label = g.schedule[i-1].Label
		} else {
			day = now.AddDate(0, 0, -1)
		}
		break
	}

	weekday := day.Weekday()
	dayName := g.dayNames[weekday]

	return Plan{
		DayFolder: g.folderPrefix + strconv.Itoa(int(weekday)) + " " + dayName,
		BaseName:  abbrev(dayName, 3) + " " + label,
	}
}

func abbrev(s string, n int) string {
	r := []rune(s)
	if len(r) > n {
		r = r[:n]
	}
	return string(r)
}
