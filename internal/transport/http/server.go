package http

import (
	"github.com/gin-gonic/gin"

	"ai-chat-studio/internal/bootstrap"
	"ai-chat-studio/internal/transport/http/handler"
	"ai-chat-studio/internal/transport/http/middleware"
)

func NewRouter(app *bootstrap.App) *gin.Engine {
	gin.SetMode(app.Config.App.GinMode)
	router := gin.New()
	router.Use(gin.Logger(), gin.Recovery())

	healthHandler := handler.NewHealthHandler(app)
	router.GET("/healthz", healthHandler.Check)

	authHandler := handler.NewAuthHandler(app.AuthService)
	oauthHandler := handler.NewOAuthHandler(app.OAuthService)
	chatHandler := handler.NewChatHandler(app.ChatService)
	voiceHandler := handler.NewVoiceHandler(app.Voice)
	ttsHandler := handler.NewTTSHandler(app.TTSClient)

	requireSession := middleware.AuthSession(app.AuthService)

	v1 := router.Group("/api/v1")

	authGroup := v1.Group("/auth")
	authGroup.POST("/register", authHandler.Register)
	authGroup.POST("/login", authHandler.Login)
	authGroup.POST("/logout", authHandler.Logout)
	authGroup.GET("/me", requireSession, authHandler.Me)

	oauthGroup := v1.Group("/oauth")
	oauthGroup.GET("/login-url", oauthHandler.LoginURL)
	oauthGroup.GET("/callback", oauthHandler.Callback)
	oauthGroup.GET("/providers", oauthHandler.Configured)

	chatGroup := v1.Group("/chat")
	chatGroup.Use(requireSession)
	chatGroup.POST("/messages", chatHandler.SendMessage)
	chatGroup.GET("/conversations", chatHandler.ListConversations)
	chatGroup.GET("/conversations/:id", chatHandler.GetConversation)
	chatGroup.GET("/conversations/recent", chatHandler.RecentForModel)
	chatGroup.GET("/models", chatHandler.ListModels)

	voiceGroup := v1.Group("/voice")
	voiceGroup.Use(requireSession)
	voiceGroup.POST("/command", voiceHandler.Command)

	v1.POST("/tts", requireSession, ttsHandler.Synthesize)

	return router
}
