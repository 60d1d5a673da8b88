package main

import (
	"github.com/joho/godotenv"

	"github.com/Juggy247/Security-Scanner-Project/cmd"
)

func main() {
	_ = godotenv.Load()
	cmd.Execute()
}
