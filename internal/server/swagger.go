package server

//go:generate swag init -g internal/server/swagger.go -o docs/swagger

// @title phishscan API
// @version 0.1
// @description Phishing URL scoring service.
// @contact.name phishscan Maintainers
// @contact.url https://github.com/raysh454/phishscan
// @BasePath /
