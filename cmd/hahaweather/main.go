package main

import (
	"fmt"
	"log"
	"net/http"
	"os"

	"github.com/gorilla/mux"
	"github.com/joho/godotenv"

	"github.com/Elfbjorn/HaHaWeather/internal/db"
	"github.com/Elfbjorn/HaHaWeather/internal/handlers"
	"github.com/Elfbjorn/HaHaWeather/internal/weather"
)

func main() {
	if err := godotenv.Load(); err != nil {
		log.Println("No .env file found, using system environment")
	}

	port := os.Getenv("PORT")
	if port == "" {
		port = "8080"
	}

	// Initialize database connection
	database, err := db.NewDB()
	if err != nil {
		log.Printf("Warning: Database connection failed: %v", err)
		log.Println("Continuing without cache or session storage...")
		database = nil
	} else {
		defer database.Close()
		log.Println("Database connected successfully")
	}

	wService := weather.NewService(database)

	// Setup routes
	r := mux.NewRouter()

	// Serve static files
	fs := http.FileServer(http.Dir("static"))
	r.PathPrefix("/static/").Handler(http.StripPrefix("/static/", fs))

	var store handlers.Database
	if database != nil {
		store = database
	}
	h := handlers.New(store, wService)
	h.Register(r)

	// Start server
	addr := fmt.Sprintf(":%s", port)
	log.Printf("Server starting on http://localhost%s", addr)
	if err := http.ListenAndServe(addr, r); err != nil {
		log.Fatal(err)
	}
}
