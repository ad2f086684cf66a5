package main

// version переопределяется при сборке:
//
//	go build -ldflags "-X main.version=v1.2.3"
var version = "dev"
