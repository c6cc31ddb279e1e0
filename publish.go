package main

import (
	"context"
	"fmt"
	"strings"
	"time"

	"github.com/samber/oops"
	"github.com/spf13/cobra"

	"github.com/go-plume/go-plume/lib/config"
	"github.com/go-plume/go-plume/lib/event"
	"github.com/go-plume/go-plume/lib/relay"
	"github.com/go-plume/go-plume/lib/util/clock"
)

var (
	publishContent string
	publishKind    int
	publishTags    []string
	publishRelays  []string
	publishWait    time.Duration
)

var publishCmd = &cobra.Command{
	Use:   "publish",
	Short: "Sign an event and publish it to the pool",
	RunE: func(cmd *cobra.Command, args []string) error {
		cfg := config.Load()
		sk, err := loadIdentity(cfg)
		if err != nil {
			return err
		}

		clk := clock.New()
		if cfg.NTPServer != "" {
			if err := clk.SyncNTP(cfg.NTPServer); err != nil {
				log.WithError(err).Warn("continuing with uncorrected system clock")
			}
		}

		tags, err := parseTags(publishTags)
		if err != nil {
			return err
		}
		signer := event.NewLocalSigner(sk)
		signed, err := signer.SignEvent(context.Background(), event.Event{
			CreatedAt: clk.Now(),
			Kind:      publishKind,
			Tags:      tags,
			Content:   publishContent,
		})
		if err != nil {
			return err
		}

		relays := cfg.Pool.Relays
		if len(publishRelays) > 0 {
			relays = publishRelays
		}
		if len(relays) == 0 {
			return oops.Errorf("no relays configured: set pool.relays or pass --relay")
		}

		pool := relay.NewPoolWithOptions(relays, relay.Options{
			VerifyEvents:      cfg.Pool.VerifyEvents,
			KeepaliveInterval: cfg.Pool.KeepaliveInterval,
		})
		defer pool.Close()

		pool.OnOK(func(relayURL, eventID string, accepted bool, message string) {
			if accepted {
				fmt.Printf("%s accepted %s\n", relayURL, eventID)
			} else {
				fmt.Printf("%s rejected %s: %s\n", relayURL, eventID, message)
			}
		})
		pool.OnConnect(func(relayURL string) {
			pool.Publish(signed, relayURL)
		})

		fmt.Printf("event id: %s\n", signed.ID)
		time.Sleep(publishWait)
		return nil
	},
}

// parseTags turns "name:value" flags into protocol tags.
func parseTags(specs []string) ([][]string, error) {
	tags := make([][]string, 0, len(specs))
	for _, spec := range specs {
		name, value, ok := strings.Cut(spec, ":")
		if !ok || name == "" {
			return nil, oops.Errorf("malformed tag %q: want name:value", spec)
		}
		tags = append(tags, []string{name, value})
	}
	return tags, nil
}

func init() {
	publishCmd.Flags().StringVar(&publishContent, "content", "", "event content")
	publishCmd.Flags().IntVar(&publishKind, "kind", 1, "event kind")
	publishCmd.Flags().StringArrayVar(&publishTags, "tag", nil, "tag as name:value, repeatable")
	publishCmd.Flags().StringArrayVar(&publishRelays, "relay", nil, "relay URL, repeatable, overrides config")
	publishCmd.Flags().DurationVar(&publishWait, "wait", 3*time.Second, "how long to wait for acknowledgements")
	rootCmd.AddCommand(publishCmd)
}
