// Command fiber_server serves the same routes as the root server using
// the Fiber framework, as a third point of comparison above net/http.
package main

import (
	"flag"
	"os"

	"github.com/gofiber/fiber/v2"
	"github.com/rs/zerolog"
)

const greeting = "Hello, World!"

var (
	port = flag.String("port", "8082", "port number")
	dir  = flag.String("dir", "./public", "directory served under /static/")
)

func main() {
	flag.Parse()

	logger := zerolog.New(os.Stderr).With().Timestamp().Logger()

	if err := os.MkdirAll(*dir, 0o755); err != nil {
		logger.Fatal().Err(err).Msg("failed to create static root")
	}

	app := fiber.New(fiber.Config{
		DisableStartupMessage: true,
	})

	app.Get("/", func(c *fiber.Ctx) error {
		c.Set("Content-Type", "text/plain")
		return c.SendString(greeting)
	})

	app.Static("/static", *dir)

	addr := ":" + *port
	logger.Info().Str("addr", addr).Str("root", *dir).Msg("listening")
	if err := app.Listen(addr); err != nil {
		logger.Fatal().Err(err).Msg("server failed")
	}
}
