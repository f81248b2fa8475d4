package game

import (
	"fmt"

	"millionaire-service/internal/domain"
)

const (
	correctShareMin  = 50
	correctShareSpan = 31 // 50..80
	wrongShareMin    = 5
	wrongShareSpan   = 21 // 5..25
)

// fiftyFifty picks up to two incorrect, not yet eliminated options to remove. The result keeps
// option order.
func fiftyFifty(q domain.Question, eliminated []string, rnd Random) []string {
	gone := toSet(eliminated)
	candidates := make([]string, 0, len(q.Options))
	for _, opt := range q.Options {
		if opt == q.CorrectAnswer {
			continue
		}
		if _, ok := gone[opt]; ok {
			continue
		}
		candidates = append(candidates, opt)
	}

	want := 2
	if len(candidates) < want {
		want = len(candidates)
	}
	for i := 0; i < want; i++ {
		j := i + rnd.Intn(len(candidates)-i)
		candidates[i], candidates[j] = candidates[j], candidates[i]
	}
	picked := toSet(candidates[:want])

	out := make([]string, 0, want)
	for _, opt := range q.Options {
		if _, ok := picked[opt]; ok {
			out = append(out, opt)
		}
	}
	return out
}

// audiencePoll draws a share per option, the correct one from a higher band, and normalises the
// shares to integers summing to exactly 100. Eliminated options get 0.
func audiencePoll(q domain.Question, eliminated []string, rnd Random) []domain.AudienceShare {
	gone := toSet(eliminated)
	raw := make([]int, len(q.Options))
	total := 0
	for i, opt := range q.Options {
		if _, ok := gone[opt]; ok {
			continue
		}
		if opt == q.CorrectAnswer {
			raw[i] = correctShareMin + rnd.Intn(correctShareSpan)
		} else {
			raw[i] = wrongShareMin + rnd.Intn(wrongShareSpan)
		}
		total += raw[i]
	}

	poll := make([]domain.AudienceShare, len(q.Options))
	if total == 0 {
		for i, opt := range q.Options {
			poll[i] = domain.AudienceShare{Option: opt}
		}
		return poll
	}

	// Largest remainder: floor every share, then hand the leftover points to the biggest
	// remainders, earlier options first on ties.
	remainders := make([]int, len(q.Options))
	assigned := 0
	for i, opt := range q.Options {
		scaled := raw[i] * 100
		poll[i] = domain.AudienceShare{Option: opt, Percent: scaled / total}
		remainders[i] = scaled % total
		assigned += poll[i].Percent
	}
	for left := 100 - assigned; left > 0; left-- {
		best := -1
		for i := range remainders {
			if raw[i] == 0 {
				continue
			}
			if best < 0 || remainders[i] > remainders[best] {
				best = i
			}
		}
		poll[best].Percent++
		remainders[best] = -1
	}
	return poll
}

var friendHints = []func(q domain.Question) string{
	func(q domain.Question) string {
		return fmt.Sprintf("I think it might be related to %s...", prefix(q.CorrectAnswer, 3))
	},
	func(domain.Question) string {
		return "I think you should trust your building science instincts on this one. The fundamentals are your foundation!"
	},
}

// phoneHint prefers the hint shipped with the question.
func phoneHint(q domain.Question, rnd Random) string {
	if q.HostHint != "" {
		return q.HostHint
	}
	return friendHints[rnd.Intn(len(friendHints))](q)
}

func prefix(s string, n int) string {
	r := []rune(s)
	if len(r) <= n {
		return s
	}
	return string(r[:n])
}

func toSet(values []string) map[string]struct{} {
	set := make(map[string]struct{}, len(values))
	for _, v := range values {
		set[v] = struct{}{}
	}
	return set
}
