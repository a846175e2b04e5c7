package main

import "hackathon-platform/cmd/server"

func main() {
	server.Init()
	server.Run()
}
