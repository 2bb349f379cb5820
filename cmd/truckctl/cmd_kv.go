package main

import (
	"encoding/json"
	"fmt"

	"github.com/spf13/cobra"
	"github.com/truckledger/service-logistics/internal/application"
	"github.com/truckledger/service-logistics/internal/domain/kv"
	"go.uber.org/zap"
)

var loginCmd = &cobra.Command{
	Use:   "login",
	Short: "Log in as the driver of a plate and remember the session",
	RunE: func(cmd *cobra.Command, args []string) error {
		name, _ := cmd.Flags().GetString("name")
		plate, _ := cmd.Flags().GetString("plate")
		phone, _ := cmd.Flags().GetString("phone")

		ctx := cmd.Context()
		sess, err := current.client.LoginDriver(ctx, application.DriverLoginRequest{Name: name, Plate: plate, Phone: phone})
		if err != nil {
			return err
		}
		raw, err := json.Marshal(sess)
		if err != nil {
			return err
		}
		if err := current.mirror.Write(ctx, kv.KeyDriverAuth, string(raw)); err != nil {
			return err
		}
		fmt.Fprintf(cmd.OutOrStdout(), "logged in as %s (%s)\n", sess.Name, sess.Plate)
		return nil
	},
}

var preloadCmd = &cobra.Command{
	Use:   "preload",
	Short: "Copy the server's mirrored state over the local store",
	RunE: func(cmd *cobra.Command, args []string) error {
		n, err := current.mirror.Preload(cmd.Context())
		if err != nil {
			current.log.Warn("preload failed, keeping local state", zap.Error(err))
			fmt.Fprintln(cmd.OutOrStdout(), "server unreachable, working from local state")
			return nil
		}
		fmt.Fprintf(cmd.OutOrStdout(), "preloaded %d keys\n", n)
		return nil
	},
}

var kvCmd = &cobra.Command{
	Use:   "kv",
	Short: "Read and write local state",
}

var kvGetCmd = &cobra.Command{
	Use:   "get KEY",
	Short: "Print the local value of KEY",
	Args:  cobra.ExactArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		value, ok, err := current.mirror.Get(cmd.Context(), args[0])
		if err != nil {
			return err
		}
		if !ok {
			return fmt.Errorf("key %q not found", args[0])
		}
		fmt.Fprintln(cmd.OutOrStdout(), string(value))
		return nil
	},
}

var kvSetCmd = &cobra.Command{
	Use:   "set KEY VALUE",
	Short: "Store VALUE under KEY and mirror it when KEY is synced",
	Args:  cobra.ExactArgs(2),
	RunE: func(cmd *cobra.Command, args []string) error {
		return current.mirror.Write(cmd.Context(), args[0], args[1])
	},
}

var kvRmCmd = &cobra.Command{
	Use:   "rm KEY",
	Short: "Remove KEY locally and from the server when KEY is synced",
	Args:  cobra.ExactArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		return current.mirror.Remove(cmd.Context(), args[0])
	},
}

func init() {
	loginCmd.Flags().String("name", "", "Driver name")
	loginCmd.Flags().String("plate", "", "Vehicle plate")
	loginCmd.Flags().String("phone", "", "Phone number")
	_ = loginCmd.MarkFlagRequired("name")
	_ = loginCmd.MarkFlagRequired("plate")

	kvCmd.AddCommand(kvGetCmd)
	kvCmd.AddCommand(kvSetCmd)
	kvCmd.AddCommand(kvRmCmd)
}
