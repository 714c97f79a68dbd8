package main

import (
	"context"
	"log"
	"os"

	"cloud.google.com/go/firestore"
	"github.com/labstack/echo/v4"
	"github.com/labstack/echo/v4/middleware"
	"google.golang.org/api/option"

	fbapp "firebase.google.com/go/v4"

	"campusfind/internal/adapter/api"
	"campusfind/internal/adapter/api/handler"
	apimiddleware "campusfind/internal/adapter/api/middleware"
	"campusfind/internal/adapter/api/router"
	"campusfind/internal/adapter/repository"
	"campusfind/internal/domain/service"
	"campusfind/internal/infrastructure/firebase"
	"campusfind/internal/infrastructure/media"
	"campusfind/internal/infrastructure/storage"
	"campusfind/internal/infrastructure/websocket"
	"campusfind/internal/usecase"
	"campusfind/pkg/config"
)

func main() {
	cfg, err := config.Load()
	if err != nil {
		log.Fatalf("Failed to load configuration: %v", err)
	}

	ctx := context.Background()

	var opt option.ClientOption
	if cfg.ServiceAccountJSON != "" {
		log.Printf("Using Firebase service account from environment variable")
		opt = option.WithCredentialsJSON([]byte(cfg.ServiceAccountJSON))
	} else {
		serviceAccountPath := cfg.ServiceAccountPath
		if serviceAccountPath == "" {
			serviceAccountPath = "./service-account.json"
		}
		if _, err := os.Stat(serviceAccountPath); os.IsNotExist(err) {
			log.Fatalf("Service account file does not exist: %s", serviceAccountPath)
		}
		log.Printf("Using Firebase service account from file: %s", serviceAccountPath)
		opt = option.WithCredentialsFile(serviceAccountPath)
	}

	firebaseApp, err := fbapp.NewApp(ctx, &fbapp.Config{ProjectID: cfg.FirebaseProject}, opt)
	if err != nil {
		log.Fatalf("Failed to initialize Firebase: %v", err)
	}

	authClient, err := firebaseApp.Auth(ctx)
	if err != nil {
		log.Fatalf("Failed to initialize Firebase Auth: %v", err)
	}

	firestoreClient, err := firestore.NewClient(ctx, cfg.FirebaseProject, opt)
	if err != nil {
		log.Fatalf("Failed to create Firestore client: %v", err)
	}
	defer firestoreClient.Close()

	var fileService service.FileUploadService
	if cfg.CloudinaryCloudName != "" {
		fileService = media.NewCloudinaryClient(cfg.CloudinaryCloudName, cfg.CloudinaryUploadPreset)
	} else {
		fileService, err = storage.NewCloudStorageClient(ctx, cfg.StorageBucket, cfg.ServiceAccountPath)
		if err != nil {
			log.Fatalf("Failed to initialize Cloud Storage: %v", err)
		}
	}
	defer fileService.Close()

	userRepo := repository.NewFirestoreUserRepository(firestoreClient)
	itemRepo := repository.NewFirestoreItemRepository(firestoreClient)
	chatRepo := repository.NewFirestoreChatRepository(firestoreClient)

	firebaseAuthClient := firebase.NewFirebaseAuthClient(authClient, cfg.FirebaseApiKey)

	authUseCase := usecase.NewAuthUseCase(userRepo, firebaseAuthClient)
	userUseCase := usecase.NewUserUseCase(userRepo, firebaseAuthClient)
	itemUseCase := usecase.NewItemUseCase(itemRepo, userRepo)
	chatUseCase := usecase.NewChatUseCase(chatRepo, userRepo, itemRepo)

	handler.Setup(authUseCase, userUseCase, itemUseCase, chatUseCase)
	handler.SetupFileHandler(fileService)
	handler.SetupHealthHandler(firebaseAuthClient)

	wsManager := websocket.NewManager()
	wsManager.Start(ctx)
	subscriptions := websocket.NewSubscriptionHandler(itemUseCase, chatUseCase)
	wsHandler := handler.NewWebSocketHandler(wsManager, subscriptions)

	e := echo.New()
	e.Use(middleware.Logger())
	e.Use(middleware.Recover())
	e.Use(middleware.CORS())
	e.Validator = api.NewValidator()

	authMiddleware := apimiddleware.NewAuthMiddleware(authClient)
	securityMiddleware := apimiddleware.NewSecurityMiddleware(userRepo)

	router.Setup(e, authMiddleware, securityMiddleware)
	router.SetupWebSocketRouter(e, wsHandler, authMiddleware)

	log.Printf("Starting server on port %s (%s)", cfg.ServerPort, cfg.Environment)
	if err := e.Start(":" + cfg.ServerPort); err != nil {
		log.Fatalf("Server stopped: %v", err)
	}
}
