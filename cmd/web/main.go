// @title           TaskHub API
// @version         1.0
// @description     Task and project management backend.
// @host            localhost:4000
// @BasePath        /api/v1
// @securityDefinitions.apikey BearerAuth
// @in header
// @name Authorization

package main

import "taskhub_backend/internal/app"

func main() {
	app.Run()
}
