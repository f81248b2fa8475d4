package http

import (
	"fmt"
	"log/slog"
	"net/http"
	"strconv"
	"strings"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/skip2/go-qrcode"
	"golang.org/x/crypto/bcrypt"

	"millionaire-service/internal/app"
	"millionaire-service/internal/domain"
	"millionaire-service/internal/game"
)

const qrSize = 320

// API serves the JSON endpoints of the game.
type API struct {
	players     *app.PlayerService
	games       *app.GameService
	leaderboard *app.LeaderboardService
	prizes      *app.PrizeService
	admin       *app.AdminService
	adminHash   []byte
	baseURL     string
}

type APIConfig struct {
	Players     *app.PlayerService
	Games       *app.GameService
	Leaderboard *app.LeaderboardService
	Prizes      *app.PrizeService
	Admin       *app.AdminService
	// AdminPasswordHash is a bcrypt hash. Admin routes are closed when it is empty.
	AdminPasswordHash string
	BaseURL           string
}

func NewAPI(c APIConfig) *API {
	return &API{
		players:     c.Players,
		games:       c.Games,
		leaderboard: c.Leaderboard,
		prizes:      c.Prizes,
		admin:       c.Admin,
		adminHash:   []byte(c.AdminPasswordHash),
		baseURL:     strings.TrimSuffix(c.BaseURL, "/"),
	}
}

func (a *API) Register(r gin.IRouter) {
	api := r.Group("/api")
	api.POST("/players/register", a.registerPlayer)
	api.POST("/games/start", a.startGame)
	api.GET("/games/:id", a.getGame)
	api.POST("/games/:id/actions", a.act)
	api.GET("/leaderboard", a.getLeaderboard)
	api.POST("/prizes/check", a.checkPrize)
	api.GET("/share/qr", a.shareQR)

	admin := api.Group("/admin", a.requireAdmin)
	admin.GET("/stats", a.adminStats)
	admin.GET("/export-leads", a.exportLeads)
}

func (a *API) registerPlayer(c *gin.Context) {
	var req domain.Registration
	if err := c.ShouldBindJSON(&req); err != nil {
		badRequest(c, "invalid registration payload")
		return
	}
	player, err := a.players.Register(c.Request.Context(), req)
	if err != nil {
		abort(c, err)
		return
	}
	c.JSON(http.StatusOK, gin.H{"success": true, "player": player})
}

type startRequest struct {
	PlayerID string `json:"playerId"`
}

type gameResponse struct {
	Game    game.Snapshot `json:"game"`
	Applied *bool         `json:"applied,omitempty"`
	Resumed bool          `json:"resumed,omitempty"`
}

func (a *API) startGame(c *gin.Context) {
	var req startRequest
	if err := c.ShouldBindJSON(&req); err != nil || req.PlayerID == "" {
		badRequest(c, "playerId is required")
		return
	}
	snap, resumed, err := a.games.Start(c.Request.Context(), req.PlayerID)
	if err != nil {
		abort(c, err)
		return
	}
	c.JSON(http.StatusOK, gameResponse{Game: snap, Resumed: resumed})
}

func (a *API) getGame(c *gin.Context) {
	snap, err := a.games.Snapshot(c.Request.Context(), c.Param("id"))
	if err != nil {
		abort(c, err)
		return
	}
	c.JSON(http.StatusOK, gameResponse{Game: snap})
}

func (a *API) act(c *gin.Context) {
	var action game.Action
	if err := c.ShouldBindJSON(&action); err != nil {
		badRequest(c, "invalid action payload")
		return
	}
	snap, applied, err := a.games.Act(c.Request.Context(), c.Param("id"), action)
	if err != nil {
		abort(c, err)
		return
	}
	c.JSON(http.StatusOK, gameResponse{Game: snap, Applied: &applied})
}

func (a *API) getLeaderboard(c *gin.Context) {
	period := domain.ParsePeriod(c.Query("type"))
	limit, _ := strconv.Atoi(c.Query("limit"))
	board, err := a.leaderboard.Get(c.Request.Context(), period, limit)
	if err != nil {
		abort(c, err)
		return
	}
	c.JSON(http.StatusOK, board)
}

type prizeRequest struct {
	GameID   string `json:"gameId"`
	PlayerID string `json:"playerId"`
}

func (a *API) checkPrize(c *gin.Context) {
	var req prizeRequest
	if err := c.ShouldBindJSON(&req); err != nil || req.GameID == "" || req.PlayerID == "" {
		badRequest(c, "gameId and playerId are required")
		return
	}
	res, err := a.prizes.Check(c.Request.Context(), req.GameID, req.PlayerID)
	if err != nil {
		abort(c, err)
		return
	}
	c.JSON(http.StatusOK, res)
}

func (a *API) shareQR(c *gin.Context) {
	base := a.baseURL
	if base == "" {
		scheme := "http"
		if c.Request.TLS != nil {
			scheme = "https"
		}
		if proto := c.GetHeader("X-Forwarded-Proto"); proto != "" {
			scheme = proto
		}
		base = scheme + "://" + c.Request.Host
	}
	png, err := qrcode.Encode(base+"/welcome", qrcode.Medium, qrSize)
	if err != nil {
		abort(c, fmt.Errorf("qr: %w", err))
		return
	}
	c.Data(http.StatusOK, "image/png", png)
}

func (a *API) requireAdmin(c *gin.Context) {
	password := c.GetHeader("X-Admin-Password")
	if len(a.adminHash) == 0 || password == "" || bcrypt.CompareHashAndPassword(a.adminHash, []byte(password)) != nil {
		abort(c, domain.ErrUnauthorized)
		return
	}
	c.Next()
}

func (a *API) adminStats(c *gin.Context) {
	stats, err := a.admin.Stats(c.Request.Context())
	if err != nil {
		abort(c, err)
		return
	}
	c.JSON(http.StatusOK, stats)
}

func (a *API) exportLeads(c *gin.Context) {
	filename := fmt.Sprintf("leads-%s.csv", time.Now().Format("2006-01-02"))
	c.Header("Content-Type", "text/csv")
	c.Header("Content-Disposition", fmt.Sprintf("attachment; filename=%q", filename))
	c.Status(http.StatusOK)
	if err := a.admin.ExportLeads(c.Request.Context(), c.Writer); err != nil {
		slog.ErrorContext(c.Request.Context(), "export leads", "error", err)
	}
}
