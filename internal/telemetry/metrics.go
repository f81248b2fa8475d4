package telemetry

import (
	"context"

	"github.com/prometheus/client_golang/prometheus"

	"millionaire-service/internal/domain"
	"millionaire-service/internal/event"
)

// Metrics counts game activity from the event bus.
type Metrics struct {
	started   prometheus.Counter
	ended     *prometheus.CounterVec
	answers   *prometheus.CounterVec
	lifelines *prometheus.CounterVec
	fallbacks prometheus.Counter
	hostLines *prometheus.CounterVec
}

// NewMetrics registers the game collectors on reg. active reports the number of games in play.
func NewMetrics(reg prometheus.Registerer, active func() int) (*Metrics, error) {
	m := &Metrics{
		started: prometheus.NewCounter(prometheus.CounterOpts{
			Namespace: "millionaire",
			Name:      "games_started_total",
			Help:      "Games started.",
		}),
		ended: prometheus.NewCounterVec(prometheus.CounterOpts{
			Namespace: "millionaire",
			Name:      "games_ended_total",
			Help:      "Games ended, by final status.",
		}, []string{"status"}),
		answers: prometheus.NewCounterVec(prometheus.CounterOpts{
			Namespace: "millionaire",
			Name:      "answers_total",
			Help:      "Resolved questions, by outcome.",
		}, []string{"outcome"}),
		lifelines: prometheus.NewCounterVec(prometheus.CounterOpts{
			Namespace: "millionaire",
			Name:      "lifelines_used_total",
			Help:      "Lifelines used, by kind.",
		}, []string{"kind"}),
		fallbacks: prometheus.NewCounter(prometheus.CounterOpts{
			Namespace: "millionaire",
			Name:      "fallback_questions_total",
			Help:      "Questions served from the built-in fallback set.",
		}),
		hostLines: prometheus.NewCounterVec(prometheus.CounterOpts{
			Namespace: "millionaire",
			Name:      "host_lines_total",
			Help:      "Host lines spoken, by kind.",
		}, []string{"kind"}),
	}

	collectors := []prometheus.Collector{m.started, m.ended, m.answers, m.lifelines, m.fallbacks, m.hostLines}
	if active != nil {
		collectors = append(collectors, prometheus.NewGaugeFunc(prometheus.GaugeOpts{
			Namespace: "millionaire",
			Name:      "games_active",
			Help:      "Games currently in play on this instance.",
		}, func() float64 { return float64(active()) }))
	}
	for _, c := range collectors {
		if err := reg.Register(c); err != nil {
			return nil, err
		}
	}
	return m, nil
}

func (m *Metrics) Register(bus *event.Bus) {
	bus.SubscribeMany([]string{
		domain.EventNameGameStarted,
		domain.EventNameQuestionLoaded,
		domain.EventNameResolved,
		domain.EventNameLifelineUsed,
		domain.EventNameGameEnded,
		domain.EventNameHostLine,
	}, m.Handle)
}

func (m *Metrics) Handle(_ context.Context, e event.Event) error {
	switch ev := e.(type) {
	case domain.EventGameStarted:
		m.started.Inc()
	case domain.EventQuestionLoaded:
		if ev.Fallback {
			m.fallbacks.Inc()
		}
	case domain.EventResolved:
		m.answers.WithLabelValues(outcome(ev)).Inc()
	case domain.EventLifelineUsed:
		m.lifelines.WithLabelValues(string(ev.Kind)).Inc()
	case domain.EventGameEnded:
		m.ended.WithLabelValues(string(ev.Record.Status)).Inc()
	case domain.EventHostLine:
		m.hostLines.WithLabelValues(ev.Kind).Inc()
	}
	return nil
}

func outcome(ev domain.EventResolved) string {
	switch {
	case ev.Result.TimedOut:
		return "timeout"
	case ev.Correct:
		return "correct"
	}
	return "wrong"
}
