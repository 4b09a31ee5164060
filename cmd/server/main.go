package main

import (
	"log"
	"os"

	"github.com/arodri-go/events/internal/app"
)

func main() {
	if err := app.Run(); err != nil {
		log.Println(err)
		os.Exit(1)
	}
}
