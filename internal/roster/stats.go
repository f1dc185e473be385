package roster

import "github.com/aanand-mishra/alumnos-api/internal/types"

// Aggregate summarises students. Course and level buckets keep the order
// in which each label is first seen; labels are grouped exactly, so
// "Historia" and "historia" are two buckets.
func Aggregate(students []types.Student) types.Statistics {
	stats := types.Statistics{
		Total:    len(students),
		ByCourse: make([]types.CourseCount, 0),
		ByLevel:  make([]types.LevelCount, 0),
	}

	courseIdx := make(map[string]int)
	levelIdx := make(map[string]int)

	for _, s := range students {
		if s.Active {
			stats.Active++
		} else {
			stats.Inactive++
		}

		if i, ok := courseIdx[s.Course]; ok {
			stats.ByCourse[i].Count++
		} else {
			courseIdx[s.Course] = len(stats.ByCourse)
			stats.ByCourse = append(stats.ByCourse, types.CourseCount{Course: s.Course, Count: 1})
		}

		if i, ok := levelIdx[s.Level]; ok {
			stats.ByLevel[i].Count++
		} else {
			levelIdx[s.Level] = len(stats.ByLevel)
			stats.ByLevel = append(stats.ByLevel, types.LevelCount{Level: s.Level, Count: 1})
		}
	}

	return stats
}
