package httpapi

import (
	"errors"
	"strconv"
	"strings"

	"github.com/gin-gonic/gin"
	"github.com/google/uuid"

	"mahjong/internal/ai"
	"mahjong/internal/authn"
	"mahjong/internal/dispatcher"
	"mahjong/internal/mahjong"
	"mahjong/internal/mahjong/text"
	"mahjong/internal/store"
	"mahjong/internal/transport"
)

// Server bundles the gin engine with the collaborators every handler
// needs.
type Server struct {
	engine *gin.Engine
	disp   *dispatcher.Dispatcher
	st     store.Store
	hub    *transport.Hub
	auth   *authn.Verifier
}

func NewServer(disp *dispatcher.Dispatcher, st store.Store, hub *transport.Hub, auth *authn.Verifier) *Server {
	s := &Server{engine: gin.New(), disp: disp, st: st, hub: hub, auth: auth}
	s.engine.Use(corsMiddleware(), loggerMiddleware(), gin.Recovery())
	s.routes()
	s.mountDebug()
	return s
}

func (s *Server) Engine() *gin.Engine { return s.engine }

func (s *Server) routes() {
	s.engine.GET("/health", s.handleHealth)
	s.engine.GET("/api/v1/deck", s.handleDeck)
	s.engine.GET("/api/v1/ws", s.hub.ServeWS)

	v1 := s.engine.Group("/api/v1")
	v1.POST("/user", s.handleLoginOrRegister)
	v1.POST("/user/anonymous", s.handleAnonymous)

	user := v1.Group("/user", authMiddleware(s.auth))
	user.GET("/info/:id", s.handleGetUserInfo)
	user.PATCH("/info/:id", s.handlePatchUserInfo)
	user.GET("/dashboard", s.handleDashboard)
	user.GET("/game", s.handleListGames)
	user.POST("/game", s.handleCreateGame)
	user.GET("/game/:id", s.handleGetGame)
	user.POST("/game/:id/join", s.handleJoinGame)
	user.POST("/game/:id/draw-tile", s.handleDrawTile)
	user.POST("/game/:id/discard-tile", s.handleDiscardTile)
	user.POST("/game/:id/claim-tile", s.handleClaimTile)
	user.POST("/game/:id/create-meld", s.handleCreateMeld)
	user.POST("/game/:id/break-meld", s.handleBreakMeld)
	user.POST("/game/:id/sort-hand", s.handleSortHand)
	user.POST("/game/:id/move-player", s.handleMovePlayer)
	user.POST("/game/:id/pass-round", s.handlePassRound)
	user.POST("/game/:id/say-mahjong", s.handleSayMahjong)
	user.POST("/game/:id/ai-continue", s.handleAIContinue)
	user.POST("/game/:id/settings", s.handleSettings)

	admin := v1.Group("/admin", authMiddleware(s.auth), requireAdmin())
	admin.GET("/game", s.handleListGames)
	admin.POST("/game", s.handleCreateGame)
	admin.POST("/game/:id/draw-tile", s.handleDrawTile)
	admin.POST("/game/:id/discard-tile", s.handleDiscardTile)
	admin.POST("/game/:id/claim-tile", s.handleClaimTile)
	admin.POST("/game/:id/create-meld", s.handleCreateMeld)
	admin.POST("/game/:id/break-meld", s.handleBreakMeld)
	admin.POST("/game/:id/sort-hand", s.handleSortHand)
	admin.POST("/game/:id/move-player", s.handleMovePlayer)
	admin.POST("/game/:id/pass-round", s.handlePassRound)
	admin.POST("/game/:id/say-mahjong", s.handleSayMahjong)
	admin.POST("/game/:id/ai-continue", s.handleAIContinue)
	admin.POST("/game/:id/settings", s.handleSettings)
	admin.POST("/game/:id/draw-wall-swap-tiles", s.handleAdminSwapWallTiles)
}

func requireAdmin() gin.HandlerFunc {
	return func(c *gin.Context) {
		if !strings.HasPrefix(c.GetString("player_id"), "admin:") {
			unauthorized(c, "admin role required")
			c.Abort()
			return
		}
		c.Next()
	}
}

func (s *Server) handleHealth(c *gin.Context) {
	success(c, gin.H{"status": "ok"})
}

func (s *Server) handleDeck(c *gin.Context) {
	tiles := make([]string, mahjong.TileCount)
	for i := range tiles {
		tiles[i] = text.TileGlyph(mahjong.TileByID(mahjong.TileID(i)))
	}
	success(c, tiles)
}

type loginRequest struct {
	Lookup   string `json:"lookup" binding:"required"`
	PlayerID string `json:"player_id"`
}

func (s *Server) handleLoginOrRegister(c *gin.Context) {
	var req loginRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		badRequest(c, err.Error())
		return
	}

	info, err := s.st.GetAuthInfo(c.Request.Context(), req.Lookup)
	if errors.Is(err, store.ErrNotFound) {
		playerID := req.PlayerID
		if playerID == "" {
			playerID = uuid.NewString()
		}
		token, tokenErr := s.auth.Issue(playerID)
		if tokenErr != nil {
			serverError(c, tokenErr.Error())
			return
		}
		info = &store.AuthInfo{Lookup: req.Lookup, PlayerID: playerID, Token: token}
		if saveErr := s.st.SaveAuthInfo(c.Request.Context(), info); saveErr != nil {
			serverError(c, saveErr.Error())
			return
		}
		success(c, gin.H{"player_id": playerID, "token": token})
		return
	}
	if err != nil {
		serverError(c, err.Error())
		return
	}
	success(c, gin.H{"player_id": info.PlayerID, "token": info.Token})
}

func (s *Server) handleAnonymous(c *gin.Context) {
	playerID := "anon:" + uuid.NewString()
	token, err := s.auth.Issue(playerID)
	if err != nil {
		serverError(c, err.Error())
		return
	}
	success(c, gin.H{"player_id": playerID, "token": token})
}

func (s *Server) handleGetUserInfo(c *gin.Context) {
	p, err := s.st.GetPlayer(c.Request.Context(), c.Param("id"))
	if errors.Is(err, store.ErrNotFound) {
		notFound(c, "player not found")
		return
	}
	if err != nil {
		serverError(c, err.Error())
		return
	}
	success(c, p)
}

type patchUserRequest struct {
	Name string `json:"name"`
}

func (s *Server) handlePatchUserInfo(c *gin.Context) {
	var req patchUserRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		badRequest(c, err.Error())
		return
	}
	p := &store.Player{ID: c.Param("id"), Name: req.Name}
	if err := s.st.SavePlayer(c.Request.Context(), p); err != nil {
		serverError(c, err.Error())
		return
	}
	success(c, p)
}

func (s *Server) handleDashboard(c *gin.Context) {
	games, err := s.st.GetPlayerGames(c.Request.Context(), c.GetString("player_id"))
	if err != nil {
		serverError(c, err.Error())
		return
	}
	success(c, gin.H{"game_count": len(games)})
}

func (s *Server) handleListGames(c *gin.Context) {
	games, err := s.disp.GetPlayerGames(c.Request.Context(), c.GetString("player_id"))
	if err != nil {
		serverError(c, err.Error())
		return
	}
	summaries := make([]dispatcher.GameSummary, len(games))
	for i, g := range games {
		summaries[i] = dispatcher.BuildSummary(g.Game, g.Game.SeatOf(c.GetString("player_id")))
	}
	success(c, summaries)
}

type createGameRequest struct {
	Name string `json:"name"`
}

func (s *Server) handleCreateGame(c *gin.Context) {
	var req createGameRequest
	_ = c.ShouldBindJSON(&req)
	id := uuid.NewString()
	sg, err := s.disp.CreateGame(c.Request.Context(), id, req.Name, defaultAIConfig())
	if err != nil {
		serverError(c, err.Error())
		return
	}
	success(c, dispatcher.BuildSummary(sg.Game, -1))
}

func defaultAIConfig() ai.Config {
	return ai.Config{
		AIPlayerIDs:            map[string]bool{},
		ClaimAutoStopPlayerIDs: map[string]bool{},
		CanPassTurn:            true,
		CanDrawRound:           true,
		SortOnDraw:             true,
		WithDeadWall:           true,
	}
}

func (s *Server) handleGetGame(c *gin.Context) {
	sg, err := s.disp.GetGame(c.Request.Context(), c.Param("id"))
	if errors.Is(err, store.ErrNotFound) {
		notFound(c, "game not found")
		return
	}
	if err != nil {
		serverError(c, err.Error())
		return
	}
	seat := sg.Game.SeatOf(c.GetString("player_id"))
	success(c, dispatcher.BuildSummary(sg.Game, seat))
}

func (s *Server) handleJoinGame(c *gin.Context) {
	sg, err := s.disp.JoinGame(c.Request.Context(), c.Param("id"), c.GetString("player_id"))
	if err != nil {
		badRequest(c, err.Error())
		return
	}
	success(c, dispatcher.BuildSummary(sg.Game, sg.Game.SeatOf(c.GetString("player_id"))))
}

func (s *Server) version(c *gin.Context) string { return c.GetHeader("X-Game-Version") }

func (s *Server) handleDrawTile(c *gin.Context) {
	sg, err := s.disp.DrawTile(c.Request.Context(), c.Param("id"), c.GetString("player_id"), s.version(c))
	s.respondGame(c, sg, err)
}

type tileRequest struct {
	TileID int `json:"tile_id"`
}

func (s *Server) handleDiscardTile(c *gin.Context) {
	var req tileRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		badRequest(c, err.Error())
		return
	}
	sg, err := s.disp.DiscardTile(c.Request.Context(), c.Param("id"), c.GetString("player_id"), s.version(c), mahjong.TileID(req.TileID))
	s.respondGame(c, sg, err)
}

func (s *Server) handleClaimTile(c *gin.Context) {
	sg, err := s.disp.ClaimTile(c.Request.Context(), c.Param("id"), c.GetString("player_id"), s.version(c))
	s.respondGame(c, sg, err)
}

type meldRequest struct {
	TileIDs     []int `json:"tile_ids"`
	IsUpgrade   bool  `json:"is_upgrade"`
	IsConcealed bool  `json:"is_concealed"`
}

func (s *Server) handleCreateMeld(c *gin.Context) {
	var req meldRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		badRequest(c, err.Error())
		return
	}
	ids := make([]mahjong.TileID, len(req.TileIDs))
	for i, v := range req.TileIDs {
		ids[i] = mahjong.TileID(v)
	}
	sg, err := s.disp.CreateMeld(c.Request.Context(), c.Param("id"), c.GetString("player_id"), s.version(c), ids, req.IsUpgrade, req.IsConcealed)
	s.respondGame(c, sg, err)
}

type breakMeldRequest struct {
	SetID string `json:"set_id"`
}

func (s *Server) handleBreakMeld(c *gin.Context) {
	var req breakMeldRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		badRequest(c, err.Error())
		return
	}
	sg, err := s.disp.BreakMeld(c.Request.Context(), c.Param("id"), c.GetString("player_id"), s.version(c), req.SetID)
	s.respondGame(c, sg, err)
}

func (s *Server) handleSortHand(c *gin.Context) {
	sg, err := s.disp.SortHand(c.Request.Context(), c.Param("id"), c.GetString("player_id"), s.version(c))
	s.respondGame(c, sg, err)
}

func (s *Server) handleMovePlayer(c *gin.Context) {
	// Seat reassignment is an admin/lobby concern layered over the engine;
	// the engine itself has no notion of "move", only AddPlayer at table
	// formation, so this is a no-op placeholder returning current state.
	sg, err := s.disp.GetGame(c.Request.Context(), c.Param("id"))
	s.respondGame(c, sg, err)
}

func (s *Server) handlePassRound(c *gin.Context) {
	sg, err := s.disp.PassRound(c.Request.Context(), c.Param("id"), c.GetString("player_id"), s.version(c))
	s.respondGame(c, sg, err)
}

func (s *Server) handleSayMahjong(c *gin.Context) {
	sg, result, err := s.disp.SayMahjong(c.Request.Context(), c.Param("id"), c.GetString("player_id"), s.version(c))
	if err != nil {
		badRequest(c, err.Error())
		return
	}
	summary := dispatcher.BuildSummary(sg.Game, sg.Game.SeatOf(c.GetString("player_id")))
	success(c, gin.H{"summary": summary, "result": result})
}

func (s *Server) handleAIContinue(c *gin.Context) {
	sg, result, err := s.disp.AIContinue(c.Request.Context(), c.Param("id"))
	if err != nil {
		badRequest(c, err.Error())
		return
	}
	summary := dispatcher.BuildSummary(sg.Game, -1)
	success(c, gin.H{"summary": summary, "result": result})
}

type settingsRequest struct {
	AIPlayerIDs            []string `json:"ai_player_ids"`
	ClaimAutoStopPlayerIDs []string `json:"claim_auto_stop_player_ids"`
	CanPassTurn            bool     `json:"can_pass_turn"`
	CanDrawRound           bool     `json:"can_draw_round"`
	DrawTileForRealPlayer  bool     `json:"draw_tile_for_real_player"`
	SortOnDraw             bool     `json:"sort_on_draw"`
	WithDeadWall           bool     `json:"with_dead_wall"`
}

func (s *Server) handleSettings(c *gin.Context) {
	var req settingsRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		badRequest(c, err.Error())
		return
	}
	cfg := ai.Config{
		AIPlayerIDs:            toSet(req.AIPlayerIDs),
		ClaimAutoStopPlayerIDs: toSet(req.ClaimAutoStopPlayerIDs),
		CanPassTurn:            req.CanPassTurn,
		CanDrawRound:           req.CanDrawRound,
		DrawTileForRealPlayer:  req.DrawTileForRealPlayer,
		SortOnDraw:             req.SortOnDraw,
		WithDeadWall:           req.WithDeadWall,
	}
	sg, err := s.disp.UpdateSettings(c.Request.Context(), c.Param("id"), cfg)
	s.respondGame(c, sg, err)
}

func toSet(ids []string) map[string]bool {
	m := make(map[string]bool, len(ids))
	for _, id := range ids {
		m[id] = true
	}
	return m
}

func (s *Server) handleAdminSwapWallTiles(c *gin.Context) {
	a, errA := strconv.Atoi(c.Query("a"))
	b, errB := strconv.Atoi(c.Query("b"))
	if errA != nil || errB != nil {
		badRequest(c, "a and b query params must be tile ids")
		return
	}
	sg, err := s.disp.DrawWallSwapTiles(c.Request.Context(), c.Param("id"), mahjong.TileID(a), mahjong.TileID(b))
	s.respondGame(c, sg, err)
}

func (s *Server) respondGame(c *gin.Context, sg *store.ServiceGame, err error) {
	if errors.Is(err, dispatcher.ErrVersionMismatch) {
		c.JSON(409, Response{Code: CodeError, Message: "version mismatch"})
		return
	}
	if err != nil {
		badRequest(c, err.Error())
		return
	}
	seat := sg.Game.SeatOf(c.GetString("player_id"))
	success(c, dispatcher.BuildSummary(sg.Game, seat))
}
