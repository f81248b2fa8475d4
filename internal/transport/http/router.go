package http

import (
	"net/http"

	"github.com/gin-contrib/pprof"
	"github.com/gin-gonic/gin"
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promhttp"
)

type RouterConfig struct {
	API *API
	WS  *WSHandler
	// Gatherer backs /metrics. Nil disables the endpoint.
	Gatherer prometheus.Gatherer
	// AudioDir is served under /audio/ when set.
	AudioDir string
	Profile  bool
}

func NewRouter(c RouterConfig) *gin.Engine {
	e := gin.New()
	e.Use(gin.Recovery())

	e.GET("/healthz", func(c *gin.Context) {
		c.String(http.StatusOK, "ok")
	})
	if c.Gatherer != nil {
		e.GET("/metrics", gin.WrapH(promhttp.HandlerFor(c.Gatherer, promhttp.HandlerOpts{})))
	}
	if c.Profile {
		pprof.Register(e, "/debug/pprof")
	}
	if c.AudioDir != "" {
		e.Static("/audio", c.AudioDir)
	}
	if c.API != nil {
		c.API.Register(e)
	}
	if c.WS != nil {
		e.GET("/ws", gin.WrapF(c.WS.ServeGame))
		e.GET("/ws/leaderboard", gin.WrapF(c.WS.ServeLeaderboard))
	}
	return e
}
