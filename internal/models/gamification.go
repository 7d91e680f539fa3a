package models

import "time"

// Achievement is a catalog entry merged with the student's unlock state.
type Achievement struct {
	ID           string     `json:"id"`
	Title        string     `json:"title"`
	Description  string     `json:"description"`
	UnlockedAt   *time.Time `json:"unlockedAt"`
	CoinsReward  int        `json:"coinsReward"`
	StreakReward int        `json:"streakReward"`
}

type Streak struct {
	Current       int    `json:"current"`
	Longest       int    `json:"longest"`
	LastActiveDay string `json:"lastActiveDay,omitempty"`
}

type Experience struct {
	XP    int `json:"xp"`
	Level int `json:"level"`
}

// GamificationState is everything the rewards panel renders.
type GamificationState struct {
	Achievements []Achievement `json:"achievements"`
	Coins        int           `json:"coins"`
	Streak       Streak        `json:"streak"`
	Experience   Experience    `json:"experience"`
}
