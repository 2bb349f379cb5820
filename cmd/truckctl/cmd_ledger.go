package main

import (
	"context"
	"encoding/json"
	"fmt"
	"strings"
	"time"

	"github.com/spf13/cobra"
	"github.com/truckledger/service-logistics/internal/application"
	"github.com/truckledger/service-logistics/internal/domain/kv"
	"github.com/truckledger/service-logistics/internal/domain/ledger"
)

var ledgerCmd = &cobra.Command{
	Use:   "ledger",
	Short: "Manage the truck's ledger",
}

var ledgerAddCmd = &cobra.Command{
	Use:   "add",
	Short: "Record an income or expense",
	Long: `Record an income or expense for a plate.

The entry is added to the local ledger first and sent to the server.
If the server rejects it or cannot be reached, the local ledger is restored.`,
	RunE: runLedgerAdd,
}

func init() {
	f := ledgerAddCmd.Flags()
	f.String("plate", "", "Vehicle plate (default: the logged-in plate)")
	f.String("kind", "", "income or expense (ingreso / gasto)")
	f.Int64("amount", 0, "Amount in pesos")
	f.String("date", "", "Entry date YYYY-MM-DD (default: today)")
	f.String("note", "", "Free-text note")
	_ = ledgerAddCmd.MarkFlagRequired("kind")
	_ = ledgerAddCmd.MarkFlagRequired("amount")

	ledgerCmd.AddCommand(ledgerAddCmd)
}

func runLedgerAdd(cmd *cobra.Command, args []string) error {
	f := cmd.Flags()
	plate, _ := f.GetString("plate")
	kind, _ := f.GetString("kind")
	amount, _ := f.GetInt64("amount")
	date, _ := f.GetString("date")
	note, _ := f.GetString("note")

	ctx := cmd.Context()
	if plate == "" {
		sess, ok := current.storedSession(ctx)
		if !ok || sess.Plate == "" {
			return fmt.Errorf("--plate is required when not logged in")
		}
		plate = sess.Plate
	}
	plate = strings.ToUpper(strings.TrimSpace(plate))
	if date == "" {
		date = time.Now().Format(ledger.DateLayout)
	}

	req := application.LedgerEntryRequest{Plate: plate, Kind: kind, Amount: amount, Date: date, Note: note}
	key := kv.PrefixDriverLedger + plate
	next, err := appendEntry(ctx, key, req)
	if err != nil {
		return err
	}

	var created *application.LedgerEntryDTO
	err = current.mirror.Commit(ctx, key, next, func(ctx context.Context) error {
		dto, err := current.client.AddLedgerEntry(ctx, req)
		created = dto
		return err
	})
	if err != nil {
		return fmt.Errorf("ledger entry not saved: %w", err)
	}
	fmt.Fprintf(cmd.OutOrStdout(), "recorded %s %d for %s on %s (%s)\n",
		created.Kind, created.Amount, created.Plate, created.Date, created.ID)
	return nil
}

// appendEntry returns the local ledger under key with req appended.
func appendEntry(ctx context.Context, key string, req application.LedgerEntryRequest) ([]byte, error) {
	entries := []json.RawMessage{}
	raw, ok, err := current.mirror.Get(ctx, key)
	if err != nil {
		return nil, err
	}
	if ok {
		if err := json.Unmarshal(raw, &entries); err != nil {
			return nil, fmt.Errorf("local ledger %s is corrupt: %w", key, err)
		}
	}
	entry, err := json.Marshal(req)
	if err != nil {
		return nil, err
	}
	return json.Marshal(append(entries, entry))
}
