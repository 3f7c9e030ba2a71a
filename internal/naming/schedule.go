package naming

import (
	"errors"
	"fmt"
	"strconv"
	"strings"
	"time"
)

// Slot - время записи по расписанию и задержка, после которой запись считается завершённой.
type Slot struct {
	Label string // "HHMM"
	Delay time.Duration
}

// Minutes возвращает порог слота в минутах от полуночи (время слота + задержка).
func (s Slot) Minutes() int {
	h, _ := strconv.Atoi(s.Label[:2])
	m, _ := strconv.Atoi(s.Label[2:])
	return h*60 + m + int(s.Delay/time.Minute)
}

// Schedule - упорядоченный по времени список слотов.
type Schedule []Slot

var ErrInvalidSchedule = errors.New("invalid schedule")

// ParseSchedule разбирает строку вида "1030 1400+45m 2200".
//
// Каждый токен - это HHMM с необязательной задержкой после '+'. Если задержка
// не указана, используется defaultDelay. Слоты должны идти по возрастанию.
func ParseSchedule(s string, defaultDelay time.Duration) (Schedule, error) {
	fields := strings.Fields(s)
	if len(fields) == 0 {
		return nil, fmt.Errorf("%w: empty", ErrInvalidSchedule)
	}

	sched := make(Schedule, 0, len(fields))
	prev := -1
	for _, f := range fields {
		label, delayStr, hasDelay := strings.Cut(f, "+")

		if !validLabel(label) {
			return nil, fmt.Errorf("%w: bad time %q", ErrInvalidSchedule, label)
		}

		delay := defaultDelay
		if hasDelay {
			var err error
			delay, err = time.ParseDuration(delayStr)
			if err != nil {
				return nil, fmt.Errorf("%w: bad delay in %q: %v", ErrInvalidSchedule, f, err)
			}
			if delay < 0 {
				return nil, fmt.Errorf("%w: negative delay in %q", ErrInvalidSchedule, f)
			}
		}

		slot := Slot{Label: label, Delay: delay}
		t := slot.Minutes() - int(delay/time.Minute)
		if t <= prev {
			return nil, fmt.Errorf("%w: %q is out of order", ErrInvalidSchedule, label)
		}
		prev = t

		sched = append(sched, slot)
	}

	return sched, nil
}

func validLabel(s string) bool {
	if len(s) != 4 {
		return false
	}
	for i := 0; i < len(s); i++ {
		if s[i] < '0' || s[i] > '9' {
			return false
		}
	}
	h, _ := strconv.Atoi(s[:2])
	m, _ := strconv.Atoi(s[2:])
	return h < 24 && m < 60
}
