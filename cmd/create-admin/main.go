package main

import (
	"context"
	"flag"
	"fmt"
	"os"
	"time"

	"github.com/fatih/color"
	"github.com/suPer8Hu/chat-dashboard/internal/config"
	"github.com/suPer8Hu/chat-dashboard/internal/db"
	"github.com/suPer8Hu/chat-dashboard/internal/logging"
	"github.com/suPer8Hu/chat-dashboard/internal/users"
)

// create-admin deletes any account with the given username and recreates it
// as an admin.
func main() {
	username := flag.String("username", "admin", "admin username")
	password := flag.String("password", config.DefaultAdminPassword, "admin password")
	name := flag.String("name", "Administrator", "display name")
	flag.Parse()

	if err := run(*username, *password, *name); err != nil {
		color.New(color.FgRed, color.Bold).Fprintf(os.Stderr, "create-admin: %v\n", err)
		os.Exit(1)
	}
}

func run(username, password, name string) error {
	cfg, err := config.Load()
	if err != nil {
		return err
	}
	logging.Setup("warn", cfg.LogFormat)

	gdb, err := db.Connect(cfg.DBDriver, cfg.DBDSN)
	if err != nil {
		return err
	}
	if sqlDB, err := gdb.DB(); err == nil {
		defer sqlDB.Close()
	}
	if err := db.Migrate(gdb); err != nil {
		return err
	}

	ctx, cancel := context.WithTimeout(context.Background(), 30*time.Second)
	defer cancel()

	svc := users.NewService(users.NewRepo(gdb))
	u, err := svc.ReplaceAdmin(ctx, username, password, name)
	if err != nil {
		return err
	}

	color.Green("Admin user created successfully")
	fmt.Printf("%s %s (id %d)\n", color.HiBlackString("Username:"), u.Username, u.ID)
	if password == config.DefaultAdminPassword {
		color.Yellow("Password is the default %q, change it after logging in", password)
	}
	return nil
}
