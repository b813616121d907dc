package service

import (
	"fmt"
	"strconv"
	"strings"
)

const (
	// dayOpensAt is 13:00 expressed in minutes since midnight.
	dayOpensAt = 13 * 60

	lessonSlotMinutes = 70
	maxLessonSlot     = 6

	boardRowMinutes = 10
)

// parseClock accepts H:MM, HH:MM or HH:MM:SS and returns minutes since midnight.
func parseClock(raw string) (int, error) {
	parts := strings.Split(strings.TrimSpace(raw), ":")
	if len(parts) < 2 || len(parts) > 3 {
		return 0, fmt.Errorf("invalid time %q", raw)
	}
	hour, err := strconv.Atoi(parts[0])
	if err != nil || hour < 0 || hour > 23 {
		return 0, fmt.Errorf("invalid hour in %q", raw)
	}
	minute, err := strconv.Atoi(parts[1])
	if err != nil || minute < 0 || minute > 59 || len(parts[1]) != 2 {
		return 0, fmt.Errorf("invalid minute in %q", raw)
	}
	if len(parts) == 3 {
		second, err := strconv.Atoi(parts[2])
		if err != nil || second < 0 || second > 59 {
			return 0, fmt.Errorf("invalid second in %q", raw)
		}
	}
	return hour*60 + minute, nil
}

// normalizeClock renders a clock value as HH:MM:SS.
func normalizeClock(raw string) (string, error) {
	parts := strings.Split(strings.TrimSpace(raw), ":")
	minutes, err := parseClock(raw)
	if err != nil {
		return "", err
	}
	seconds := 0
	if len(parts) == 3 {
		seconds, _ = strconv.Atoi(parts[2])
	}
	return fmt.Sprintf("%02d:%02d:%02d", minutes/60, minutes%60, seconds), nil
}

// LessonSlotNumber maps a lesson start time onto the 70-minute weekly snapshot
// grid anchored at 13:00. Results are clamped to [1, 6]; an unparseable time
// lands in slot 1.
func LessonSlotNumber(start string) int {
	minutes, err := parseClock(start)
	if err != nil {
		return 1
	}
	offset := minutes - dayOpensAt
	slot := 1
	if offset > 0 {
		slot = offset/lessonSlotMinutes + 1
	}
	if slot < 1 {
		return 1
	}
	if slot > maxLessonSlot {
		return maxLessonSlot
	}
	return slot
}

// BoardRow maps a start time onto the live board's 10-minute grid starting at
// 13:00 (row 1). It is a different grid from LessonSlotNumber.
func BoardRow(start string) int {
	minutes, err := parseClock(start)
	if err != nil {
		return 1
	}
	offset := minutes - dayOpensAt
	if offset < 0 {
		return 1
	}
	return offset/boardRowMinutes + 1
}

// BoardRowSpan returns how many 10-minute rows a lesson occupies.
func BoardRowSpan(start, end string) int {
	from, err := parseClock(start)
	if err != nil {
		return 1
	}
	to, err := parseClock(end)
	if err != nil || to <= from {
		return 1
	}
	return (to - from + boardRowMinutes - 1) / boardRowMinutes
}
