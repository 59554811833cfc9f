// cmd/main.go
package main

import (
	"go-auth-api/app"

	_ "go-auth-api/docs"
)

// @title           User Authentication API
// @version         1.0
// @description     JWT-based user authentication and admin user management API.

// @contact.name   API Support
// @contact.email  support@example.com

// @license.name   MIT
// @license.url    https://opensource.org/licenses/MIT

// @host      localhost:8080
// @BasePath  /
// @securityDefinitions.apikey BearerAuth
// @in header
// @name Authorization
func main() {
	app.Run()
}
