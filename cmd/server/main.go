package main

import "ptohub/internal/app/server"

func main() {
	server.Run()
}
