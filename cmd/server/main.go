package main

import (
	"log"

	"authbot/internal/app"
)

// @title       authbot API
// @version     1.0
// @description Регистрация, вход и привязка Telegram по одноразовому коду.
// @BasePath    /
// @securityDefinitions.apikey BearerAuth
// @in          header
// @name        Authorization
func main() {
	if err := app.Run(); err != nil {
		log.Fatal(err)
	}
}
