// Package ladder is the fixed fifteen-step prize table.
package ladder

import (
	"strconv"

	"millionaire-service/internal/domain"
)

const (
	// Levels is the number of questions between the first question and the top prize.
	Levels = 15
	// FirstLevel is where every game starts.
	FirstLevel = 1
)

// Level is one immutable rung of the ladder.
type Level struct {
	Level  int  `json:"level"`
	Amount int  `json:"amount"`
	Safe   bool `json:"safe"`
}

// The amounts and safe flags are part of the game economics; keep them literal.
var table = [Levels]Level{
	{Level: 1, Amount: 100},
	{Level: 2, Amount: 200},
	{Level: 3, Amount: 300},
	{Level: 4, Amount: 500},
	{Level: 5, Amount: 1000, Safe: true},
	{Level: 6, Amount: 2000},
	{Level: 7, Amount: 4000},
	{Level: 8, Amount: 8000},
	{Level: 9, Amount: 16000},
	{Level: 10, Amount: 32000, Safe: true},
	{Level: 11, Amount: 64000},
	{Level: 12, Amount: 125000},
	{Level: 13, Amount: 250000},
	{Level: 14, Amount: 500000},
	{Level: 15, Amount: 1000000},
}

// Valid reports whether level is on the ladder.
func Valid(level int) bool {
	return level >= FirstLevel && level <= Levels
}

// All returns a copy of the table in ladder order.
func All() []Level {
	out := make([]Level, Levels)
	copy(out, table[:])
	return out
}

// AmountFor returns the prize for answering level correctly, or 0 off the ladder.
func AmountFor(level int) int {
	if !Valid(level) {
		return 0
	}
	return table[level-1].Amount
}

// IsSafe reports whether level guarantees its amount once answered.
func IsSafe(level int) bool {
	if !Valid(level) {
		return false
	}
	return table[level-1].Safe
}

// FloorAmount is the amount of the highest safe level strictly below level, or 0.
// It is what a player keeps after a wrong answer or a timeout on level.
func FloorAmount(level int) int {
	if level > Levels+1 {
		level = Levels + 1
	}
	for l := level - 1; l >= FirstLevel; l-- {
		if table[l-1].Safe {
			return table[l-1].Amount
		}
	}
	return 0
}

// BankedAmount is the amount of the last level answered correctly before level, or 0.
// It is what a player takes when walking away from level.
func BankedAmount(level int) int {
	return AmountFor(level - 1)
}

// DifficultyFor maps a level to its difficulty band.
func DifficultyFor(level int) domain.Difficulty {
	switch {
	case level <= 5:
		return domain.DifficultyEasy
	case level <= 9:
		return domain.DifficultyMedium
	case level <= 12:
		return domain.DifficultyHard
	}
	return domain.DifficultyExpert
}

// Label formats an amount as dollars with thousands separators, e.g. $125,000.
func Label(amount int) string {
	if amount < 0 {
		return "-" + Label(-amount)
	}
	digits := strconv.Itoa(amount)
	out := make([]byte, 0, len(digits)+len(digits)/3+1)
	out = append(out, '$')
	for i := range digits {
		if i > 0 && (len(digits)-i)%3 == 0 {
			out = append(out, ',')
		}
		out = append(out, digits[i])
	}
	return string(out)
}
