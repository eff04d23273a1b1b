package main

import (
	"log"

	"github.com/gin-gonic/gin"
	"github.com/prometheus/client_golang/prometheus/promhttp"

	"room-chat-service/internal/auth"
	"room-chat-service/internal/config"
	"room-chat-service/internal/db"
	"room-chat-service/internal/handlers"
	"room-chat-service/internal/middleware"
	"room-chat-service/internal/observability"
	"room-chat-service/internal/rabbitmq"
	"room-chat-service/internal/repositories"
	"room-chat-service/internal/telemetry"
	"room-chat-service/internal/ws"
)

func main() {
	cfg, err := config.Load()
	if err != nil {
		log.Fatalf("failed to load config: %v", err)
	}

	database, err := db.Connect(cfg.Database.DSN)
	if err != nil {
		log.Fatalf("failed to connect to db: %v", err)
	}

	publisher := rabbitmq.NewPublisher(cfg.AMQP.URL, cfg.AMQP.Exchange)
	defer publisher.Close()
	log.Printf("event publisher mode=%s", rabbitmq.PublisherMode(publisher))
	if reason := rabbitmq.PublisherNoopReason(publisher); reason != "" {
		log.Printf("event publisher noop reason: %s", reason)
	}
	audit := telemetry.NewAuditEmitter(publisher, "audit_log.room_chat", cfg.Server.Name, cfg.Environment)

	if eventPublisher, err := observability.NewAMQPPublisher(cfg.AMQP.URL, cfg.AMQP.Exchange); err == nil {
		observability.SetPublisher(eventPublisher)
		defer eventPublisher.Close()
	} else {
		log.Printf("ws event publishing disabled: %v", err)
	}

	tokens := auth.NewTokenService(cfg.Auth.JWTSecret, cfg.Auth.TokenExpiry)

	userRepo := repositories.NewUserRepo(database)
	roomRepo := repositories.NewRoomRepo(database)
	directoryRepo := repositories.NewDirectoryRepo(database)
	messageRepo := repositories.NewMessageRepo(database)
	readStatusRepo := repositories.NewReadStatusRepo(database)
	reactionRepo := repositories.NewReactionRepo(database)

	hub := ws.NewHub()

	authHandler := handlers.NewAuthHandler(userRepo, tokens, audit)
	roomHandler := handlers.NewRoomHandler(roomRepo, directoryRepo, readStatusRepo, audit)
	messageHandler := handlers.NewMessageHandler(directoryRepo, messageRepo, readStatusRepo, reactionRepo, hub, audit)
	roomWS := ws.NewRoomWebSocketHandler(hub, directoryRepo, tokens)

	router := gin.Default()

	// middlewares
	router.Use(gin.Recovery())
	router.Use(observability.HTTPMetricsMiddleware())

	router.POST("/auth/signup", authHandler.Signup)
	router.POST("/auth/login", authHandler.Login)

	authMiddleware := middleware.AuthMiddleware(tokens)

	router.GET("/rooms", authMiddleware, roomHandler.ListRooms)
	router.POST("/rooms", authMiddleware, roomHandler.CreateRoom)
	router.GET("/rooms/:room_name/messages", authMiddleware, messageHandler.GetRoomMessages)
	router.POST("/rooms/:room_name/messages", authMiddleware, messageHandler.PostRoomMessage)
	router.POST("/rooms/:room_name/read", authMiddleware, messageHandler.MarkRoomRead)
	router.POST("/rooms/:room_name/messages/:message_id/reactions", authMiddleware, messageHandler.React)
	router.POST("/rooms/:room_name/invite", authMiddleware, roomHandler.InviteUsers)
	router.GET("/rooms/:room_name/members", authMiddleware, roomHandler.ListMembers)
	router.GET("/rooms/:room_name/invitable", authMiddleware, roomHandler.ListInvitable)
	router.GET("/emojis", authMiddleware, messageHandler.ListEmojis)
	router.GET("/users", authMiddleware, authHandler.ListUsers)

	router.GET("/ws/rooms/:room_name", roomWS.Handle)

	router.GET("/metrics", gin.WrapH(promhttp.Handler()))
	handlers.RegisterDebugRoutes(router, audit, cfg.DebugRoutes)

	if err := router.Run(":" + cfg.Server.Port); err != nil {
		log.Fatalf("server error: %v", err)
	}
}
