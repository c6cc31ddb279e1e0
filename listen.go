package main

import (
	"encoding/json"
	"fmt"

	"github.com/samber/oops"
	"github.com/spf13/cobra"

	"github.com/go-plume/go-plume/lib/config"
	"github.com/go-plume/go-plume/lib/event"
	"github.com/go-plume/go-plume/lib/filter"
	"github.com/go-plume/go-plume/lib/relay"
	"github.com/go-plume/go-plume/lib/util/signals"
)

var (
	listenKinds   []int
	listenAuthors []string
	listenLimit   int
	listenSubID   string
	listenRelays  []string
)

var listenCmd = &cobra.Command{
	Use:   "listen",
	Short: "Subscribe to the pool and print matching events",
	RunE: func(cmd *cobra.Command, args []string) error {
		cfg := config.Load()

		relays := cfg.Pool.Relays
		if len(listenRelays) > 0 {
			relays = listenRelays
		}
		if len(relays) == 0 {
			return oops.Errorf("no relays configured: set pool.relays or pass --relay")
		}

		f := filter.Filter{
			Kinds:   listenKinds,
			Authors: listenAuthors,
			Limit:   listenLimit,
		}

		pool := relay.NewPoolWithOptions(relays, relay.Options{
			VerifyEvents:      cfg.Pool.VerifyEvents,
			KeepaliveInterval: cfg.Pool.KeepaliveInterval,
		})

		pool.OnConnect(func(relayURL string) {
			pool.Subscribe(listenSubID, []filter.Filter{f}, relayURL)
			if err := pool.StartKeepalive(relayURL); err != nil {
				log.WithError(err).WithField("url", relayURL).Warn("keepalive not started")
			}
		})
		pool.OnEvent(func(relayURL, subID string, ev event.Event) {
			line, err := json.Marshal(ev)
			if err != nil {
				return
			}
			fmt.Println(string(line))
		})
		pool.OnEOSE(func(relayURL, subID string) {
			log.WithField("url", relayURL).Debug("end of stored events")
		})
		pool.OnNotice(func(relayURL, text string) {
			fmt.Printf("notice from %s: %s\n", relayURL, text)
		})

		done := make(chan struct{})
		signals.RegisterInterruptHandler(func() {
			pool.Close()
			close(done)
		})
		go signals.Handle()
		<-done
		return nil
	},
}

func init() {
	listenCmd.Flags().IntSliceVar(&listenKinds, "kind", nil, "event kind to match, repeatable")
	listenCmd.Flags().StringArrayVar(&listenAuthors, "author", nil, "author public key (hex), repeatable")
	listenCmd.Flags().IntVar(&listenLimit, "limit", 0, "per-relay backlog limit")
	listenCmd.Flags().StringVar(&listenSubID, "sub", "plume-listen", "subscription id")
	listenCmd.Flags().StringArrayVar(&listenRelays, "relay", nil, "relay URL, repeatable, overrides config")
	rootCmd.AddCommand(listenCmd)
}
