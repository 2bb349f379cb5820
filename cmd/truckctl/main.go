// Command truckctl is the driver-side client: it keeps a local copy of the driver's
// state in SQLite and mirrors it to the logistics API when the API is reachable.
package main

import (
	"context"
	"encoding/json"
	"fmt"
	"os"
	"path/filepath"
	"strings"
	"time"

	"github.com/spf13/cobra"
	"github.com/spf13/viper"
	"github.com/truckledger/service-logistics/internal/client"
	"github.com/truckledger/service-logistics/internal/domain/kv"
	"github.com/truckledger/service-logistics/internal/domain/session"
	"github.com/truckledger/service-logistics/internal/localstore"
	"github.com/truckledger/service-logistics/internal/platform/logger"
	"go.uber.org/zap"
)

var cfg = viper.New()

// app holds what a command needs. It is built before each command runs and torn down after.
type app struct {
	client  *client.Client
	store   *localstore.SQLiteStore
	mirror  *localstore.Mirror
	log     *zap.Logger
	timeout time.Duration
}

var current *app

var rootCmd = &cobra.Command{
	Use:           "truckctl",
	Short:         "Local-first client for the truck logistics API",
	SilenceUsage:  true,
	SilenceErrors: true,
	PersistentPreRunE: func(cmd *cobra.Command, args []string) error {
		a, err := newApp()
		if err != nil {
			return err
		}
		current = a
		return nil
	},
}

func init() {
	cobra.OnFinalize(func() {
		if err := current.close(); err != nil {
			fmt.Fprintln(os.Stderr, "closing local store:", err)
		}
		current = nil
	})

	flags := rootCmd.PersistentFlags()
	flags.String("api", "http://localhost:8080/api", "Base URL of the logistics API")
	flags.String("db", defaultDBPath(), "Path of the local SQLite store")
	flags.Duration("timeout", client.DefaultTimeout, "Timeout of each remote call")
	flags.String("token", "", "Session token (default: the stored driver login)")
	flags.BoolP("verbose", "v", false, "Log remote sync activity")

	for _, name := range []string{"api", "db", "timeout", "token", "verbose"} {
		_ = cfg.BindPFlag(name, flags.Lookup(name))
	}
	cfg.SetEnvPrefix("TRUCKCTL")
	cfg.SetEnvKeyReplacer(strings.NewReplacer("-", "_"))
	cfg.AutomaticEnv()

	rootCmd.AddCommand(loginCmd)
	rootCmd.AddCommand(preloadCmd)
	rootCmd.AddCommand(kvCmd)
	rootCmd.AddCommand(ledgerCmd)
	rootCmd.AddCommand(searchCmd)
}

func defaultDBPath() string {
	home, err := os.UserHomeDir()
	if err != nil {
		return filepath.Join(".truckctl", "state.db")
	}
	return filepath.Join(home, ".truckctl", "state.db")
}

func newApp() (*app, error) {
	log := zap.NewNop()
	if cfg.GetBool("verbose") {
		l, err := logger.New("development")
		if err != nil {
			return nil, fmt.Errorf("create logger: %w", err)
		}
		log = l
	}

	store, err := localstore.OpenSQLite(cfg.GetString("db"))
	if err != nil {
		return nil, err
	}

	timeout := cfg.GetDuration("timeout")
	c := client.New(client.Options{
		BaseURL: cfg.GetString("api"),
		Token:   cfg.GetString("token"),
		Timeout: timeout,
	})

	a := &app{
		client:  c,
		store:   store,
		mirror:  localstore.NewMirror(store, localstore.NewRemoteKV(c, 3, log), log),
		log:     log,
		timeout: timeout,
	}
	if c.Token() == "" {
		if sess, ok := a.storedSession(context.Background()); ok {
			c.SetToken(sess.Token)
		}
	}
	return a, nil
}

// storedSession reads the driver login kept under driverAuth.
func (a *app) storedSession(ctx context.Context) (*session.Session, bool) {
	raw, ok, err := a.mirror.Get(ctx, kv.KeyDriverAuth)
	if err != nil || !ok {
		return nil, false
	}
	var sess session.Session
	if err := json.Unmarshal(raw, &sess); err != nil || sess.Token == "" {
		return nil, false
	}
	return &sess, true
}

// close waits for background syncs, bounded by one remote timeout, then closes the store.
func (a *app) close() error {
	if a == nil {
		return nil
	}
	ctx, cancel := context.WithTimeout(context.Background(), a.timeout+time.Second)
	defer cancel()
	if err := a.mirror.Flush(ctx); err != nil {
		a.log.Warn("remote sync still in flight at exit", zap.Error(err))
	}
	a.client.Close()
	_ = a.log.Sync()
	return a.store.Close()
}

func main() {
	if err := rootCmd.Execute(); err != nil {
		fmt.Fprintln(os.Stderr, "Error:", err)
		os.Exit(1)
	}
}
