package main

import (
	"fmt"
	"log"
	"net/http"

	"github.com/joho/godotenv"
	"go.uber.org/zap"

	"github.com/ceylonara/ceylonara-api/api/handlers"
	"github.com/ceylonara/ceylonara-api/config"
)

func main() {
	// a missing .env is fine, config falls back to the process environment
	_ = godotenv.Load()

	a := handlers.App{}
	a.Config = *config.New()

	if err := a.Initialize(); err != nil {
		log.Fatal(err)
	}

	zap.S().Infow("ceylonara-api is up and running",
		"port", a.Config.Port,
		"url", a.Config.BaseURL,
	)
	log.Fatal(http.ListenAndServe(fmt.Sprintf(":%v", a.Config.Port), a.Router))
}
