package main

import (
	"context"
	"flag"
	"fmt"
	"os"
	"strconv"
	"strings"
	"time"

	"github.com/google/uuid"

	"github.com/noah-isme/cartsync/internal/app"
	"github.com/noah-isme/cartsync/internal/cart"
	"github.com/noah-isme/cartsync/internal/config"
	"github.com/noah-isme/cartsync/internal/obs"
	"github.com/noah-isme/cartsync/internal/store"
)

// itemsFlag collects Title=quantity pairs. A zero quantity removes the title.
type itemsFlag map[string]int

func (f itemsFlag) String() string {
	parts := make([]string, 0, len(f))
	for title, qty := range f {
		parts = append(parts, fmt.Sprintf("%s=%d", title, qty))
	}
	return strings.Join(parts, ",")
}

func (f itemsFlag) Set(value string) error {
	title, qty, ok := strings.Cut(value, "=")
	if !ok {
		return fmt.Errorf("item %q must look like Title=quantity", value)
	}
	n, err := strconv.Atoi(strings.TrimSpace(qty))
	if err != nil || n < 0 || n > cart.MaxQuantity {
		return fmt.Errorf("item %q: quantity must be an integer between 0 and %d", value, cart.MaxQuantity)
	}
	f[strings.TrimSpace(title)] = n
	return nil
}

func main() {
	items := itemsFlag{}
	session := flag.String("session", "", "session id to seed (a new one is generated when empty)")
	replace := flag.Bool("replace", false, "overwrite the stored cart instead of merging into it")
	flag.Var(items, "item", "cart entry as Title=quantity, repeatable")
	flag.Parse()

	cfg, err := config.Load()
	if err != nil {
		fmt.Fprintln(os.Stderr, err)
		os.Exit(1)
	}
	logger := obs.NewLogger(cfg.LogFormat, cfg.LogLevel)

	id := strings.TrimSpace(*session)
	if id == "" {
		id = uuid.NewString()
	} else if _, err := uuid.Parse(id); err != nil {
		logger.Fatal().Err(err).Str("session", id).Msg("session must be a UUID")
	}
	if len(items) == 0 {
		logger.Fatal().Msg("at least one -item is required")
	}

	ctx, cancel := context.WithTimeout(context.Background(), 30*time.Second)
	defer cancel()

	deps, err := app.Open(ctx, cfg, logger)
	if err != nil {
		logger.Fatal().Err(err).Str("store", cfg.StoreDriver).Msg("open cart store")
	}
	defer deps.Close()

	slot := store.Scoped{Backend: deps.Store, Prefix: id}
	merged := cart.Cart{}
	if !*replace {
		merged, err = cart.LoadCart(ctx, slot, cfg.StorageKey)
		if err != nil {
			logger.Fatal().Err(err).Msg("read existing cart")
		}
	}
	for title, qty := range items {
		merged.Put(title, qty)
	}
	if err := cart.SaveCart(ctx, slot, cfg.StorageKey, merged); err != nil {
		logger.Fatal().Err(err).Msg("write cart")
	}

	logger.Info().
		Str("session", id).
		Str("key", slot.Key(cfg.StorageKey)).
		Interface("cart", merged).
		Msg("cart seeded")
	if cfg.StoreDriver == config.StoreMemory {
		logger.Warn().Msg("memory store is not shared with the server; use redis or postgres to seed a running host")
	}
}
