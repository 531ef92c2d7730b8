package model

// LeaderboardLimit caps the number of leaderboard rows.
const LeaderboardLimit = 20

type LeaderboardEntry struct {
	Rank  int    `json:"rank"`
	Email string `json:"email"`
	Name  string `json:"name"`
	Photo string `json:"photo"`
	Wins  int    `json:"wins"`
}

type ProfileSummary struct {
	User          *User `json:"user"`
	Participated  int   `json:"participated"`
	Wins          int   `json:"wins"`
	WinPercentage int   `json:"win_percentage"`
}
