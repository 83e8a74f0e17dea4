package main

import "github.com/joho/godotenv"

func main() {
	// .env is optional; CLUSTERVIEW_* variables may come from the shell instead
	_ = godotenv.Load()
	Execute()
}
