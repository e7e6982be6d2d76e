package main

import (
	"os"

	"cogniverse/cmd"
)

// @title          CogniVerse API
// @version        1.0
// @description    Multi-conversation chat, file ingestion and image analysis backed by an LLM gateway.
// @BasePath       /
// @securityDefinitions.apikey  SessionToken
// @in                          header
// @name                        X-Session-Token
func main() {
	if err := cmd.Execute(); err != nil {
		os.Exit(1)
	}
}
