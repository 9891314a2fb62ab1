package main

import (
	_ "github.com/joho/godotenv/autoload" // Autoload .env file.

	"github.com/vuctf/vuctf-api/cmd/app"
)

// @title          VU CTF API
// @version        1.0
// @description    Challenges, flag submissions, leaderboard and wallet of the VU CTF platform.
//
// @contact.name   VU CTF
//
// @securityDefinitions.apikey BearerAuth
// @in header
// @name Authorization
// @description Bearer token
//
// @BasePath /api/v1
func main() {
	if err := app.Start(); err != nil {
		panic(err)
	}
}
