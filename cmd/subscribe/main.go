// Command subscribe registers the relay's webhook as an event destination on
// HikCentral. Run it once per controller.
package main

import (
	"context"
	"encoding/json"
	"log"
	"os"
	"time"

	"github.com/PratikDhanave/badge-clock-relay/internal/config"
	"github.com/PratikDhanave/badge-clock-relay/internal/hikcentral"
)

func main() {
	cfg, err := config.LoadSubscription()
	if err != nil {
		log.Fatal(err)
	}

	log.Printf("subscribing %s to event types %v", cfg.WebhookURL, hikcentral.DefaultEventTypes)
	log.Printf("HikCentral: %s%s", cfg.Host, hikcentral.SubscribePath)

	ctx, cancel := context.WithTimeout(context.Background(), 30*time.Second)
	defer cancel()

	client := hikcentral.NewClient(cfg.Host, cfg.AppKey, cfg.AppSecret, cfg.InsecureTLS)
	resp, err := client.Subscribe(ctx, cfg.WebhookURL, hikcentral.DefaultEventTypes)

	out, _ := json.MarshalIndent(resp, "", "  ")
	log.Printf("response:\n%s", out)

	if err != nil {
		log.Printf("subscription failed: %v", err)
		os.Exit(1)
	}
	log.Println("subscription successful")
}
