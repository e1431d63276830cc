package main

import (
	_ "maibpay/docs"
	"maibpay/internal/adapter/http/routes"

	_ "github.com/joho/godotenv/autoload"
)

// @title           MAIB Payment Gateway API
// @version         1.0
// @description     Payment gateway driver service for the MAIB ECOMM system (transactions, reconciliation, reversals, day close).

// @contact.name   API Support

// @license.name  Apache 2.0
// @license.url   http://www.apache.org/licenses/LICENSE-2.0.html

// @host localhost:8080

// @BasePath  /v1

func main() {
	routes.Run()
}
