// @title Event Registration API
// @version 1.0
// @description Accounts with roles, bearer sessions, role-gated events and email notifications.
// @BasePath /
// @securityDefinitions.apikey BearerAuth
// @in header
// @name Authorization
// @description Type "Bearer" followed by a space and the token from /users/signin.
package main

import "eventregistration/cmd/server/cmd"

func main() {
	cmd.Execute()
}
