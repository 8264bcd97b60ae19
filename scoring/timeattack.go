package scoring

import (
	"math"
	"regexp"
	"sort"
	"strconv"
	"time"

	"github.com/Rouva01/competition-system/models"
)

// Course times are submitted formatted as "M:SS.mmm", e.g. "1:23.456".
var timePattern = regexp.MustCompile(`^(\d+):([0-5]\d)\.(\d{3})$`)

// ParseTime converts a formatted course time to a duration. The second
// return value is false for an empty or malformed string.
func ParseTime(formatted string) (time.Duration, bool) {
	parts := timePattern.FindStringSubmatch(formatted)
	if parts == nil {
		return 0, false
	}
	minutes, _ := strconv.Atoi(parts[1])
	seconds, _ := strconv.Atoi(parts[2])
	millis, _ := strconv.Atoi(parts[3])
	return time.Duration(minutes)*time.Minute +
		time.Duration(seconds)*time.Second +
		time.Duration(millis)*time.Millisecond, true
}

// ScoreTable generates the linear point table for n ranked entries: rank 1
// receives 50 points, rank n receives 0, ranks between are interpolated.
// A single entry receives the full 50.
func ScoreTable(n int) []float64 {
	if n <= 0 {
		return nil
	}
	if n == 1 {
		return []float64{50}
	}
	table := make([]float64, n)
	for r := 0; r < n; r++ {
		table[r] = 50 * float64(n-1-r) / float64(n-1)
	}
	return table
}

// CourseScores scores one course across all entries, keyed by player id.
// Entries with a valid time are ranked ascending; entries that tie on the
// exact time share the average of the point values their rank range spans.
// An entry with no time for the course scores 0, never a missing value.
func CourseScores(entries []*models.Entry, course string) map[int]float64 {
	scores := make(map[int]float64, len(entries))

	type timed struct {
		playerID int
		duration time.Duration
	}
	valid := make([]timed, 0, len(entries))
	for _, entry := range entries {
		scores[entry.PlayerID] = 0
		if duration, ok := ParseTime(entry.Times[course]); ok {
			valid = append(valid, timed{playerID: entry.PlayerID, duration: duration})
		}
	}
	if len(valid) == 0 {
		return scores
	}

	sort.SliceStable(valid, func(i, j int) bool {
		if valid[i].duration != valid[j].duration {
			return valid[i].duration < valid[j].duration
		}
		return valid[i].playerID < valid[j].playerID
	})

	table := ScoreTable(len(valid))

	// Walk tie groups of exactly equal times; each member receives the
	// average over the group's rank range, not the best rank's value.
	for start := 0; start < len(valid); {
		end := start + 1
		for end < len(valid) && valid[end].duration == valid[start].duration {
			end++
		}
		sum := 0.0
		for r := start; r < end; r++ {
			sum += table[r]
		}
		share := sum / float64(end-start)
		for r := start; r < end; r++ {
			scores[valid[r].playerID] = share
		}
		start = end
	}
	return scores
}

// AllCourseScores scores every course independently and sums each player's
// per-course scores, flooring once on the total so rounding error does not
// compound per course.
func AllCourseScores(entries []*models.Entry, courses []string) map[int]int {
	totals := make(map[int]float64, len(entries))
	for _, entry := range entries {
		totals[entry.PlayerID] = 0
	}
	for _, course := range courses {
		for playerID, score := range CourseScores(entries, course) {
			totals[playerID] += score
		}
	}

	floored := make(map[int]int, len(totals))
	for playerID, total := range totals {
		floored[playerID] = int(math.Floor(total))
	}
	return floored
}

// TotalTimeMS sums an entry's parsed course times in milliseconds. Courses
// without a valid time contribute nothing.
func TotalTimeMS(entry *models.Entry, courses []string) int64 {
	var total time.Duration
	for _, course := range courses {
		if duration, ok := ParseTime(entry.Times[course]); ok {
			total += duration
		}
	}
	return total.Milliseconds()
}

// RankEntries recomputes qualification points, total times and ranks for a
// time-attack tournament in place. Order is points descending with total
// time ascending as the tiebreaker.
func RankEntries(entries []*models.Entry, courses []string) {
	points := AllCourseScores(entries, courses)
	for _, entry := range entries {
		entry.QualificationPoints = points[entry.PlayerID]
		entry.TotalTimeMS = TotalTimeMS(entry, courses)
	}

	sort.SliceStable(entries, func(i, j int) bool {
		if entries[i].QualificationPoints != entries[j].QualificationPoints {
			return entries[i].QualificationPoints > entries[j].QualificationPoints
		}
		if entries[i].TotalTimeMS != entries[j].TotalTimeMS {
			return entries[i].TotalTimeMS < entries[j].TotalTimeMS
		}
		return entries[i].PlayerID < entries[j].PlayerID
	})

	for i, entry := range entries {
		rank := i + 1
		entry.Rank = &rank
	}
}
