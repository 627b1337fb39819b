package gamification

import "sort"

// LevelThreshold describes what a student needs to reach a specialization level.
type LevelThreshold struct {
	Level     int    `json:"level"`
	MinPoints int64  `json:"min_points"`
	MinSkills int    `json:"min_skills"`
	Title     string `json:"title"`
}

// SortLevels orders thresholds by level, in place.
func SortLevels(levels []LevelThreshold) {
	sort.SliceStable(levels, func(i, j int) bool { return levels[i].Level < levels[j].Level })
}

// NextLevel returns the threshold for current+1 when the student satisfies it.
// Levels advance one at a time, so a student far past several thresholds climbs
// one level per evaluation.
func NextLevel(current int, points int64, skills int, levels []LevelThreshold) (LevelThreshold, bool) {
	for _, threshold := range levels {
		if threshold.Level != current+1 {
			continue
		}
		if points >= threshold.MinPoints && skills >= threshold.MinSkills {
			return threshold, true
		}
		return LevelThreshold{}, false
	}
	return LevelThreshold{}, false
}

// MaxLevel reports the highest configured level, or 1 when none are configured.
func MaxLevel(levels []LevelThreshold) int {
	maxLevel := 1
	for _, threshold := range levels {
		if threshold.Level > maxLevel {
			maxLevel = threshold.Level
		}
	}
	return maxLevel
}
