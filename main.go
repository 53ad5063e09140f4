package main

import (
	"context"
	"encoding/json"
	"fmt"
	"log"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"duoq_server/routes"
	"duoq_server/services"
	"duoq_server/socket"

	"github.com/gorilla/mux"
	"github.com/joho/godotenv"
	"github.com/rs/cors"
)

func main() {
	// Load .env in development; missing file is fine
	_ = godotenv.Load()

	// Listings and the friend graph live in DynamoDB by default; STORE=memory
	// keeps everything in process for local development.
	var listingStore services.ListingStore
	var friendStore services.FriendStore
	if os.Getenv("STORE") == "memory" {
		log.Println("Using in-memory stores")
		listingStore = services.NewMemoryListingStore()
		friendStore = services.NewMemoryFriendStore()
	} else {
		log.Println("Initializing DynamoDB client...")
		dynamoService := &services.DynamoService{Client: services.InitializeDynamoDBClient()}
		listingStore = services.NewDynamoListingStore(dynamoService)
		friendStore = services.NewDynamoFriendStore(dynamoService)
		log.Println("DynamoDB client initialized.")
	}

	// Real-time hub
	socketServer := socket.NewSocketServer()
	go func() {
		if err := socketServer.Serve(); err != nil {
			log.Printf("Socket server error: %v", err)
		}
	}()
	defer socketServer.Close()

	// Initialize Services
	queueService := services.NewQueueService()
	friendService := &services.FriendService{Store: friendStore}
	listingService := &services.ListingService{
		Store:    listingStore,
		Friends:  friendService,
		Notifier: socket.NewBroadcaster(socketServer),
	}

	// Background expiry sweeper
	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	sweepInterval := services.DefaultSweepInterval
	if raw := os.Getenv("SWEEP_INTERVAL"); raw != "" {
		parsed, err := time.ParseDuration(raw)
		if err != nil {
			log.Fatalf("Invalid SWEEP_INTERVAL %q: %v", raw, err)
		}
		sweepInterval = parsed
	}
	sweeper := services.NewSweeperService(queueService, sweepInterval)
	go sweeper.Run(ctx)

	// Set up the server port
	port := os.Getenv("PORT")
	if port == "" {
		port = "8080"
	}
	log.Printf("Using server port: %s\n", port)

	// Initialize the router
	r := mux.NewRouter()

	// Register a welcome route
	r.HandleFunc("/", func(w http.ResponseWriter, r *http.Request) {
		fmt.Fprintln(w, "Welcome to DuoQ")
	}).Methods("GET")

	// Register a health check endpoint
	r.HandleFunc("/health", func(w http.ResponseWriter, r *http.Request) {
		w.Header().Set("Content-Type", "application/json")
		response := map[string]string{"status": "healthy"}
		json.NewEncoder(w).Encode(response)
	}).Methods("GET")

	// Register routes
	routes.RegisterQueueRoutes(r, queueService)
	routes.RegisterListingRoutes(r, listingService)
	r.Handle("/socket.io/", socketServer)

	// Add CORS middleware
	corsHandler := cors.New(cors.Options{
		AllowedOrigins:   []string{"*"}, // Adjust for specific domains if needed
		AllowedMethods:   []string{"GET", "POST", "PUT", "PATCH", "DELETE", "OPTIONS"},
		AllowedHeaders:   []string{"Content-Type", "Authorization"},
		AllowCredentials: true,
	}).Handler(r)

	server := &http.Server{Addr: ":" + port, Handler: corsHandler}

	go func() {
		<-ctx.Done()
		shutdownCtx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
		defer cancel()
		if err := server.Shutdown(shutdownCtx); err != nil {
			log.Printf("Server shutdown error: %v", err)
		}
	}()

	// Start the HTTP server
	log.Printf("Starting server on port %s...\n", port)
	if err := server.ListenAndServe(); err != nil && err != http.ErrServerClosed {
		log.Fatal(err)
	}
}
