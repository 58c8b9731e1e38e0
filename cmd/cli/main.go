package main

import (
	"context"
	"log"
	"os"

	"github.com/dmitrijs2005/conduit/internal/admincli"
)

func main() {

	ctx := context.Background()
	cfg := admincli.LoadConfig()
	app, err := admincli.NewApp(cfg)

	if err != nil {
		log.Fatalf("%v", err)
		return
	}

	if err := app.Run(ctx, os.Args[1:]); err != nil {
		log.Fatalf("%v", err)
	}

}
