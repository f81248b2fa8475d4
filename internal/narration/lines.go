// Package narration turns game events into host dialogue and, optionally, speech.
package narration

import (
	"fmt"
	"strings"

	"millionaire-service/internal/domain"
	"millionaire-service/internal/event"
	"millionaire-service/internal/game"
	"millionaire-service/internal/ladder"
)

// Line kinds, used by clients to style the host bubble.
const (
	KindIntro         = "intro"
	KindMilestone     = "milestone"
	KindDramatic      = "dramatic"
	KindCorrect       = "correct"
	KindWrong         = "wrong"
	KindHint          = "hint"
	KindEncouragement = "encouragement"
)

// Lines are templates; %[1]s is the player name, %[2]s the amount at stake.
var (
	welcomeLines = []string{
		"Welcome, welcome, %[1]s! I'm absolutely DELIGHTED to have you here on Who Wants to be a Buildonaire!",
		"%[1]s, my friend, are you ready to test your building science knowledge and maybe, just MAYBE, become a millionaire?",
		"Ladies and gentlemen, we have %[1]s in the hot seat! Let's see if those construction smarts can build a path to a MILLION DOLLARS!",
	}

	introLines = map[domain.Difficulty][]string{
		domain.DifficultyEasy: {
			"Alright %[1]s, let's start building your fortune! For %[2]s, here's your foundation question...",
			"%[1]s, we're laying the groundwork here. For %[2]s, let's see what you know...",
			"This question should be solid as concrete, %[1]s. For %[2]s...",
		},
		domain.DifficultyMedium: {
			"Now we're getting into the STRUCTURE of the game, %[1]s! For %[2]s, this one might require some engineering thinking...",
			"%[1]s, we're building momentum! For %[2]s, let's see if your knowledge is up to code...",
			"The stakes are rising like a well-designed building, %[1]s! For %[2]s...",
		},
		domain.DifficultyHard: {
			"OH MY! We're in the penthouse now, %[1]s! For %[2]s, this question could make or break your fortune...",
			"%[1]s, we've reached the structural steel level of difficulty! For %[2]s, you'll need ALL your expertise...",
			"This is where the REAL building scientists separate from the apprentices, %[1]s! For %[2]s...",
		},
		domain.DifficultyExpert: {
			"%[1]s, we are at the very top of the tower now. For %[2]s, only research-level expertise will do...",
			"Half the audience has stopped breathing, %[1]s! For %[2]s...",
		},
	}

	milestoneLines = []string{
		"%[1]s, this is a GUARANTEED level! Answer it and you cannot fall below %[2]s!",
		"FANTASTIC! %[1]s, get this one right and you walk away with at least %[2]s! Let's make that foundation SOLID!",
		"%[1]s, %[2]s is on the line, and it comes with a safety net!",
	}

	millionLines = []string{
		"%[1]s... %[1]s... This is it. The question that could make you a MILLIONAIRE! Are you ready for ONE MILLION DOLLARS?",
		"OH MY GOODNESS, %[1]s! Fourteen questions have led us here... to ONE... MILLION... DOLLARS!",
		"%[1]s, my friend, everything you've learned about building science has brought you to THIS moment!",
	}

	selectionLines = []string{
		"Interesting choice, %[1]s!",
		"%[1]s, you're considering that option... trust your building science instincts!",
		"That's your selection, %[1]s. Take your time to be sure!",
	}

	finalAnswerLines = []string{
		"%[1]s... is that your FINAL answer?",
		"Are you absolutely, positively CERTAIN, %[1]s? Is that your final answer?",
		"%[1]s, my friend, you need to be sure. Is that... your... FINAL answer?",
		"Think carefully, %[1]s. Is that the answer you want to lock in?",
	}

	retractLines = []string{
		"Changing your mind, %[1]s? The clock is running again!",
		"Back to the drawing board, %[1]s! Take another look.",
	}

	correctLow = []string{
		"That's RIGHT! Excellent work, %[1]s! You're building nicely!",
		"YES! Beautiful answer! You know your stuff, %[1]s!",
		"CORRECT! You just laid another brick in your path to riches, %[1]s!",
		"That's it! Solid as a foundation, %[1]s! Well done!",
	}
	correctMedium = []string{
		"THAT'S RIGHT! Outstanding, %[1]s! Your knowledge is structurally sound!",
		"YES! MAGNIFICENT! %[1]s, you're building something SPECIAL here!",
		"CORRECT! %[1]s, that answer was engineered to PERFECTION!",
		"FANTASTIC! You just passed another inspection, %[1]s!",
	}
	correctHigh = []string{
		"THAT'S RIGHT! OH MY GOODNESS! %[1]s, you are INCREDIBLE!",
		"YES! YES! YES! %[1]s, that was MASTERFUL! You're in the penthouse now!",
		"CORRECT! %[1]s, I am watching a MASTER BUILDER at work!",
		"UNBELIEVABLE! %[1]s, your building science knowledge is LEGENDARY!",
	}
	correctMillion = []string{
		"THAT'S... THAT'S... THAT'S RIGHT! %[1]s, YOU'VE DONE IT! YOU ARE A MILLIONAIRE!",
		"YES! OH MY STARS! %[1]s, YOU'VE BUILT YOURSELF A MILLION-DOLLAR EMPIRE!",
	}

	// [answer] is replaced with the correct option.
	wrongLines = []string{
		"Oh no, %[1]s! I'm afraid that's not quite right. The correct answer was [answer]. But hey, you've built something wonderful here!",
		"Ooh, not this time, %[1]s. The answer we were looking for was [answer]. But what a TREMENDOUS effort you've made!",
		"%[1]s, that's not the answer, my friend. It was [answer]. But you should be PROUD of how far you've come!",
		"I'm sorry, %[1]s, but that's incorrect. The right answer was [answer]. You've played BEAUTIFULLY though!",
	}

	timeUpLines = []string{
		"Oh my, %[1]s! Time's up! I'm afraid we have to take that as your final answer.",
		"%[1]s, the clock has run out! In building, timing is everything, and time is UP!",
		"Time's expired, %[1]s! Just like a building permit, we can't extend the deadline!",
	}

	walkAwayLines = []string{
		"%[1]s, you've built yourself a WONDERFUL prize with %[2]s! Sometimes knowing when to stop construction is the smartest move!",
		"That's a wise decision, %[1]s! You're walking away with %[2]s, and that's fantastic!",
		"%[1]s, you've constructed beautiful winnings of %[2]s! The best builders know when the structure is complete!",
	}

	fiftyFiftyLines = []string{
		"Alright %[1]s, let's eliminate some wrong answers and clear the blueprint!",
		"Smart move, %[1]s! Let's remove some of those faulty options!",
		"Good strategy! %[1]s, let's clean up these choices!",
	}
	phoneLines = []string{
		"%[1]s, let's call in a building expert! Someone who knows their thermal dynamics from their air barriers!",
		"Time to phone a friend, %[1]s! Hopefully they've got some solid construction knowledge!",
		"Let's get some backup, %[1]s! Every good project needs a consultant!",
	}
	audienceLines = []string{
		"%[1]s, let's see what our fantastic audience of building professionals thinks!",
		"Our audience is full of architects, engineers, and contractors, %[1]s! Let's hear from them!",
		"The collective wisdom of the building science community, %[1]s! Audience, vote now!",
	}
)

const (
	fiftyFiftyTail   = " Computer, please remove two wrong answers."
	audienceTail     = " Audience, please vote now! Show us your building science expertise!"
	audienceResults  = "The results are in! Our building science experts have spoken!"
	defaultPhoneHint = "I think you should trust your building science instincts on this one. The fundamentals are your foundation!"
)

// Host picks dialogue for game events.
type Host struct {
	rnd game.Random
}

func NewHost(rnd game.Random) *Host {
	if rnd == nil {
		rnd = game.NewRandom(1)
	}
	return &Host{rnd: rnd}
}

// Line returns the host's reaction to e. ok is false for events the host stays quiet on.
func (h *Host) Line(name string, e event.Event) (kind, text string, ok bool) {
	if name == "" {
		name = "my friend"
	}
	switch ev := e.(type) {
	case domain.EventGameStarted:
		return KindIntro, h.pick(welcomeLines, name, ""), true

	case domain.EventQuestionLoaded:
		stake := ladder.Label(ev.Amount)
		switch {
		case ev.Level == ladder.Levels:
			return KindDramatic, h.pick(millionLines, name, stake), true
		case ev.Safe:
			return KindMilestone, h.pick(milestoneLines, name, stake), true
		}
		return KindIntro, h.pick(introLines[ladder.DifficultyFor(ev.Level)], name, stake), true

	case domain.EventAnswerSelected:
		return KindEncouragement, h.pick(selectionLines, name, ""), true

	case domain.EventAnswerLocked:
		return KindDramatic, h.pick(finalAnswerLines, name, ""), true

	case domain.EventAnswerRetracted:
		return KindEncouragement, h.pick(retractLines, name, ""), true

	case domain.EventResolved:
		if ev.Result.TimedOut {
			return "", "", false
		}
		if !ev.Correct {
			line := h.pick(wrongLines, name, "")
			return KindWrong, strings.ReplaceAll(line, "[answer]", ev.CorrectAnswer), true
		}
		return KindCorrect, h.pick(correctLinesFor(ev.Level), name, ""), true

	case domain.EventTimeUp:
		return KindWrong, h.pick(timeUpLines, name, ""), true

	case domain.EventWalkAway:
		return KindEncouragement, h.pick(walkAwayLines, name, ladder.Label(ev.Amount)), true

	case domain.EventLifelineUsed:
		switch ev.Kind {
		case domain.LifelineFiftyFifty:
			return KindIntro, h.pick(fiftyFiftyLines, name, "") + fiftyFiftyTail, true
		case domain.LifelinePhoneAFriend:
			hint := ev.Hint
			if hint == "" {
				hint = defaultPhoneHint
			}
			return KindHint, fmt.Sprintf("%s ... Your friend says: %q", h.pick(phoneLines, name, ""), hint), true
		case domain.LifelineAskAudience:
			return KindIntro, h.pick(audienceLines, name, "") + audienceTail, true
		}

	case domain.EventAudienceRevealed:
		return KindIntro, audienceResults, true
	}
	return "", "", false
}

func correctLinesFor(level int) []string {
	switch {
	case level >= ladder.Levels:
		return correctMillion
	case level >= 10:
		return correctHigh
	case level >= 5:
		return correctMedium
	}
	return correctLow
}

func (h *Host) pick(lines []string, name, stake string) string {
	if len(lines) == 0 {
		return ""
	}
	line := lines[h.rnd.Intn(len(lines))]
	if !strings.Contains(line, "%[2]s") {
		return fmt.Sprintf(line, name)
	}
	return fmt.Sprintf(line, name, stake)
}
