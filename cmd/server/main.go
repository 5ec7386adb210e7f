package main

import (
	"context"
	"fmt"
	"log"
	"os"

	"github.com/dmitrijs2005/accessconsole/internal/buildinfo"
	"github.com/dmitrijs2005/accessconsole/internal/server"
	"github.com/dmitrijs2005/accessconsole/internal/server/auth"
	"github.com/dmitrijs2005/accessconsole/internal/server/config"
)

func main() {

	ctx := context.Background()
	cfg := config.LoadConfig()

	if cfg.MintToken != "" {
		if cfg.SecretKey == "" {
			log.Fatal("-mint needs a secret key (-s)")
		}
		token, err := auth.GenerateToken(cfg.MintToken, []byte(cfg.SecretKey), cfg.TokenValidityDuration)
		if err != nil {
			log.Fatalf("%v", err)
		}
		fmt.Println(token)
		return
	}

	buildinfo.PrintBuildData(os.Stdout)

	app, err := server.NewApp(ctx, cfg)

	if err != nil {
		log.Printf("%v", err)
		return
	}

	app.Run(ctx)

}
