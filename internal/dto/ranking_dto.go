package dto

import "time"

// RankingRequest selects a leaderboard.
type RankingRequest struct {
	Scope uint `query:"scope"`
	Limit int  `query:"limit" validate:"omitempty,min=1,max=100"`
}

// RankingEntry is one leaderboard line.
type RankingEntry struct {
	Position    int    `json:"position"`
	StudentID   uint   `json:"student_id"`
	Name        string `json:"name"`
	TotalPoints int64  `json:"total_points"`
	CurrentBelt string `json:"current_belt"`
	BeltLevel   int    `json:"belt_level"`
	StreakDays  int    `json:"streak_days"`
	Medal       string `json:"medal,omitempty"`
}

// RankingResponse wraps a leaderboard.
type RankingResponse struct {
	Scope    uint           `json:"scope"`
	Entries  []RankingEntry `json:"entries"`
	CacheHit bool           `json:"cache_hit"`
}

// RankingStats summarises a scope. All fields are zero for an empty scope.
type RankingStats struct {
	TotalStudents int64   `json:"total_students"`
	AvgPoints     float64 `json:"avg_points"`
	MaxPoints     int64   `json:"max_points"`
	MinPoints     int64   `json:"min_points"`
}

// StudentPosition locates a student in a scope. Position is 0 and
// StudentData nil when the student is not ranked there.
type StudentPosition struct {
	Position      int64         `json:"position"`
	TotalStudents int64         `json:"total_students"`
	StudentData   *RankingEntry `json:"student_data"`
}

// RankHistoryPoint is the cumulative total at the end of one activity date.
type RankHistoryPoint struct {
	Date             time.Time `json:"date"`
	PointsEarned     int64     `json:"points_earned"`
	CumulativePoints int64     `json:"cumulative_points"`
}
