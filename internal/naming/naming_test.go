package naming

import (
	"os"
	"path/filepath"
	"testing"
	"time"

	"github.com/nalgeon/be"
)

var dayNames = []string{"Söndag", "Måndag", "Tisdag", "Onsdag", "Torsdag", "Fredag", "Lördag"}

func mustSchedule(t *testing.T, s string) Schedule {
	t.Helper()
	sched, err := ParseSchedule(s, 30*time.Minute)
	be.Err(t, err, nil)
	return sched
}

func TestGeneratorPlan(t *testing.T) {
	full := mustSchedule(t, "1030 1400 1530 1830 2200")
	short := mustSchedule(t, "1030 1400")

	// 2024-07-01 - понедельник
	at := func(day, hour, min int) time.Time {
		return time.Date(2024, 7, day, hour, min, 0, 0, time.UTC)
	}
	sunday := time.Date(2024, 6, 30, 0, 10, 0, 0, time.UTC)

	tests := []struct {
		name  string
		sched Schedule
		now   time.Time
		want  Plan
	}{
		{
			name:  "before_first_threshold_rolls_back",
			sched: short,
			now:   at(1, 10, 45),
			want:  Plan{DayFolder: "20240700 Söndag", BaseName: "Sön 1400"},
		},
		{
			name:  "one_minute_before_threshold",
			sched: short,
			now:   at(1, 10, 59),
			want:  Plan{DayFolder: "20240700 Söndag", BaseName: "Sön 1400"},
		},
		{
			name:  "exactly_at_threshold",
			sched: short,
			now:   at(1, 11, 0),
			want:  Plan{DayFolder: "20240701 Måndag", BaseName: "Mån 1030"},
		},
		{
			name:  "after_all_thresholds",
			sched: short,
			now:   at(1, 23, 59),
			want:  Plan{DayFolder: "20240701 Måndag", BaseName: "Mån 1400"},
		},
		{
			name:  "middle_slot_boundary",
			sched: full,
			now:   at(1, 16, 0),
			want:  Plan{DayFolder: "20240701 Måndag", BaseName: "Mån 1530"},
		},
		{
			name:  "middle_slot_before_boundary",
			sched: full,
			now:   at(1, 15, 59),
			want:  Plan{DayFolder: "20240701 Måndag", BaseName: "Mån 1400"},
		},
		{
			name:  "last_slot_threshold",
			sched: full,
			now:   at(3, 22, 30),
			want:  Plan{DayFolder: "20240703 Onsdag", BaseName: "Ons 2200"},
		},
		{
			name:  "sunday_rolls_back_to_saturday",
			sched: full,
			now:   sunday,
			want:  Plan{DayFolder: "20240706 Lördag", BaseName: "Lör 2200"},
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			g := New(tt.sched, "2024070", dayNames)
			got := g.Plan(tt.now)
			be.Equal(t, got, tt.want)
			// повторный вызов с тем же временем даёт тот же результат
			be.Equal(t, g.Plan(tt.now), got)
		})
	}
}

func TestParseSchedule(t *testing.T) {
	sched, err := ParseSchedule("1030 1400+45m 2200+0s", 30*time.Minute)
	be.Err(t, err, nil)
	be.Equal(t, sched, Schedule{
		{Label: "1030", Delay: 30 * time.Minute},
		{Label: "1400", Delay: 45 * time.Minute},
		{Label: "2200", Delay: 0},
	})
	be.Equal(t, sched[1].Minutes(), 14*60+45)

	for _, bad := range []string{
		"",
		"   ",
		"10:30",
		"2400",
		"1060",
		"abcd",
		"1400 1030",
		"1030 1030",
		"1030+xx",
		"1030+-5m",
	} {
		t.Run(bad, func(t *testing.T) {
			_, err := ParseSchedule(bad, 30*time.Minute)
			be.Err(t, err, ErrInvalidSchedule)
		})
	}
}

func TestResolve(t *testing.T) {
	touch := func(t *testing.T, path string) {
		t.Helper()
		be.Err(t, os.WriteFile(path, nil, 0644), nil)
	}

	t.Run("no_collision", func(t *testing.T) {
		dir := t.TempDir()
		got, err := Resolve(dir, "Mån 1030", ".mp4")
		be.Err(t, err, nil)
		be.Equal(t, got, filepath.Join(dir, "Mån 1030.mp4"))
	})

	t.Run("three_collisions", func(t *testing.T) {
		dir := t.TempDir()
		touch(t, filepath.Join(dir, "base.mp4"))
		touch(t, filepath.Join(dir, "base 1.mp4"))
		touch(t, filepath.Join(dir, "base 2.mp4"))

		got, err := Resolve(dir, "base", ".mp4")
		be.Err(t, err, nil)
		be.Equal(t, got, filepath.Join(dir, "base 3.mp4"))
	})

	t.Run("other_extension_is_not_collision", func(t *testing.T) {
		dir := t.TempDir()
		touch(t, filepath.Join(dir, "base.mov"))

		got, err := Resolve(dir, "base", ".mp4")
		be.Err(t, err, nil)
		be.Equal(t, got, filepath.Join(dir, "base.mp4"))
	})

	t.Run("gap_is_reused", func(t *testing.T) {
		dir := t.TempDir()
		touch(t, filepath.Join(dir, "base.mp4"))
		touch(t, filepath.Join(dir, "base 2.mp4"))

		got, err := Resolve(dir, "base", ".mp4")
		be.Err(t, err, nil)
		be.Equal(t, got, filepath.Join(dir, "base 1.mp4"))
	})

	t.Run("stat_error", func(t *testing.T) {
		dir := t.TempDir()
		notDir := filepath.Join(dir, "file")
		touch(t, notDir)

		_, err := Resolve(notDir, "base", ".mp4")
		be.Err(t, err)
	})
}
