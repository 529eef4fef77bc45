package main

import (
	"context"
	"errors"
	"log"
	"math/rand"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/gin-contrib/cors"
	"github.com/gin-gonic/gin"

	"github.com/Sixtor24/Spanish-Blitz-sub001/internal/config"
	"github.com/Sixtor24/Spanish-Blitz-sub001/internal/handler"
	"github.com/Sixtor24/Spanish-Blitz-sub001/internal/middleware"
	pgRepo "github.com/Sixtor24/Spanish-Blitz-sub001/internal/repository/postgres"
	redisRepo "github.com/Sixtor24/Spanish-Blitz-sub001/internal/repository/redis"
	"github.com/Sixtor24/Spanish-Blitz-sub001/internal/service"
	ws "github.com/Sixtor24/Spanish-Blitz-sub001/internal/websocket"
	"github.com/Sixtor24/Spanish-Blitz-sub001/pkg/auth"
	"github.com/Sixtor24/Spanish-Blitz-sub001/pkg/database"
)

func main() {
	// Загружаем конфигурацию
	configPath := os.Getenv("CONFIG_PATH")
	if configPath == "" {
		configPath = "config/config.yaml"
	}
	log.Printf("Загрузка конфигурации из %s", configPath)

	cfg, err := config.Load(configPath)
	if err != nil {
		log.Printf("Failed to load config: %v", err)
		os.Exit(1)
	}

	// Инициализируем подключение к PostgreSQL
	db, err := database.NewPostgresDB(cfg.Database.PostgresConnectionString())
	if err != nil {
		log.Printf("Failed to connect to database: %v", err)
		os.Exit(1)
	}

	// Применяем миграции
	if err := database.MigrateDB(db, cfg.Database.MigrationsPath); err != nil {
		log.Printf("Failed to migrate database: %v", err)
		os.Exit(1)
	}

	// Инициализируем подключение к Redis с использованием унифицированной конфигурации
	redisClient, err := database.NewUniversalRedisClient(cfg.Redis)
	if err != nil {
		log.Printf("Failed to connect to Redis: %v", err)
		os.Exit(1)
	}
	log.Println("Successfully connected to Redis")

	// Инициализируем репозитории
	sessionRepo := pgRepo.NewSessionRepo(db)
	playerRepo := pgRepo.NewPlayerRepo(db)
	questionRepo := pgRepo.NewQuestionRepo(db)
	answerRepo := pgRepo.NewAnswerRepo(db)
	deckRepo := pgRepo.NewDeckRepo(db)

	cacheRepo, err := redisRepo.NewCacheRepo(redisClient)
	if err != nil {
		log.Printf("Failed to initialize CacheRepo: %v", err)
		os.Exit(1)
	}

	// Инициализируем JWTService
	jwtService, err := auth.NewJWTService(cfg.JWT.Secret, cfg.JWT.WSTicketExpirySec)
	if err != nil {
		log.Printf("Failed to initialize JWTService: %v", err)
		os.Exit(1)
	}

	// Инициализация WebSocket Hub
	hub := ws.NewHub()

	// Инициализируем сервисы
	questionGen := service.NewQuestionSetGenerator(
		deckRepo,
		questionRepo,
		rand.New(rand.NewSource(time.Now().UnixNano())),
	)
	sessionService := service.NewSessionService(
		db, sessionRepo, playerRepo, questionRepo, answerRepo, cacheRepo, questionGen, hub,
	)
	scoringService := service.NewScoringService(
		sessionRepo, playerRepo, questionRepo, answerRepo, sessionService, hub,
	)

	// CORS и WebSocket используют общий список origins
	allowedOrigins := cfg.WebSocket.AllowedOrigins
	if len(allowedOrigins) == 0 {
		allowedOrigins = []string{"http://localhost:5173", "http://localhost:3000"}
	}

	// Инициализируем обработчики
	sessionHandler := handler.NewSessionHandler(sessionService, scoringService)
	wsHandler := handler.NewWSHandler(hub, jwtService, allowedOrigins)

	// Инициализируем middleware
	authMiddleware := middleware.NewAuthMiddleware(jwtService)
	rateLimiter := middleware.NewRateLimiter(redisClient)

	joinLimitCfg := middleware.JoinRateLimitConfig()
	if cfg.RateLimit.JoinRequestsPerMinute > 0 {
		joinLimitCfg.MaxRequests = cfg.RateLimit.JoinRequestsPerMinute
	}

	// Инициализируем роутер Gin
	router := gin.Default()

	isProduction := gin.Mode() == gin.ReleaseMode

	// Настройка доверенных прокси для корректной работы c.ClientIP()
	// В production (GIN_MODE=release): не доверяем прокси (защита от IP spoofing)
	// При деплое за load balancer добавьте IP балансировщика в список
	if isProduction {
		if err := router.SetTrustedProxies(nil); err != nil {
			log.Printf("Warning: failed to set trusted proxies: %v", err)
		}
	} else {
		if err := router.SetTrustedProxies([]string{"127.0.0.1", "::1"}); err != nil {
			log.Printf("Warning: failed to set trusted proxies: %v", err)
		}
	}

	// Настройка CORS
	router.Use(cors.New(cors.Config{
		AllowOrigins:     allowedOrigins,
		AllowMethods:     []string{"GET", "POST", "PUT", "PATCH", "DELETE", "OPTIONS"},
		AllowHeaders:     []string{"Origin", "Content-Type", "Accept", "Authorization"},
		ExposeHeaders:    []string{"Content-Length"},
		AllowCredentials: true,
		MaxAge:           12 * time.Hour,
	}))

	// Настраиваем маршруты API
	api := router.Group("/api")
	api.Use(rateLimiter.LimitByIP(middleware.DefaultAPIRateLimitConfig()))
	{
		sessions := api.Group("/sessions")
		sessions.Use(authMiddleware.RequireAuth())
		{
			sessions.POST("", sessionHandler.CreateSession)

			// Отдельный, более строгий лимит против перебора join-кодов
			sessions.POST("/join", rateLimiter.Limit(joinLimitCfg), sessionHandler.JoinSession)

			// Группа маршрутов, требующих sessionID
			sessionWithID := sessions.Group("/:id")
			sessionWithID.Use(middleware.ExtractUintParam("id", "sessionID"))
			{
				sessionWithID.GET("", sessionHandler.GetState)
				sessionWithID.POST("/start", sessionHandler.StartSession)
				sessionWithID.POST("/answers", sessionHandler.SubmitAnswer)
				sessionWithID.DELETE("", sessionHandler.CancelSession)

				playerWithID := sessionWithID.Group("/players/:playerID")
				playerWithID.Use(middleware.ExtractUintParam("playerID", "playerID"))
				{
					playerWithID.DELETE("", sessionHandler.KickPlayer)
				}
			}
		}

		// Тикет для подключения к WebSocket
		wsGroup := api.Group("/ws")
		wsGroup.Use(authMiddleware.RequireAuth())
		{
			wsGroup.POST("/ticket", wsHandler.GenerateTicket)
		}
	}

	// WebSocket маршрут (аутентификация тикетом в query)
	router.GET("/ws", wsHandler.HandleConnection)

	// Настраиваем HTTP сервер с тайм-аутами для защиты от slow client attacks
	srv := &http.Server{
		Addr:         ":" + cfg.Server.Port,
		Handler:      router,
		ReadTimeout:  time.Duration(cfg.Server.ReadTimeout) * time.Second,
		WriteTimeout: time.Duration(cfg.Server.WriteTimeout) * time.Second,
	}

	// Запускаем сервер в горутине
	go func() {
		log.Printf("Starting server on port %s", cfg.Server.Port)
		if err := srv.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			log.Printf("Failed to start server: %v", err)
		}
	}()

	log.Printf("Server started on port %s", cfg.Server.Port)

	// Ожидаем сигнал остановки
	quit := make(chan os.Signal, 1)
	signal.Notify(quit, syscall.SIGINT, syscall.SIGTERM)
	<-quit
	log.Println("Shutting down server...")

	// Создаем контекст с таймаутом для graceful shutdown сервера
	shutdownCtx, shutdownCancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer shutdownCancel()

	if err := srv.Shutdown(shutdownCtx); err != nil {
		log.Printf("Server forced to shutdown: %v", err)
		os.Exit(1)
	}

	if err := redisClient.Close(); err != nil {
		log.Printf("Error closing Redis client: %v", err)
	}

	log.Println("Server exited properly")
}
