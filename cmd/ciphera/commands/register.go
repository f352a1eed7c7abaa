package commands

import (
	"fmt"

	"github.com/spf13/cobra"

	domaintypes "ciphera/internal/domain/types"
)

// registerCmd publishes this identity's long-term X25519 public key to the
// relay under --handle's handle_hash, then records the relay's observed
// canary locally for future tampering checks.
func registerCmd() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "register",
		Short: "Publish your handle_hash and public key to the relay",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			if handle == "" {
				return fmt.Errorf("--handle required")
			}

			id, err := appCtx.IdentityService.LoadIdentity(passphrase)
			if err != nil {
				return fmt.Errorf("loading identity: %w", err)
			}

			h := domaintypes.Handle(handle)
			if err := appCtx.RelayClient.RegisterHandle(cmd.Context(), h.Hash(), id.XPub); err != nil {
				return fmt.Errorf("registering with relay: %w", err)
			}

			canary, err := appCtx.RelayClient.FetchAccountCanary(cmd.Context(), h.Hash())
			if err != nil {
				return fmt.Errorf("fetching account canary: %w", err)
			}
			profile := domaintypes.RelayProfile{ServerURL: relayURL, Handle: h, Canary: canary}
			if err := appCtx.AccountStore.SaveRelayProfile(profile); err != nil {
				return fmt.Errorf("saving relay profile: %w", err)
			}

			fmt.Println("Registered with relay.")
			return nil
		},
	}
	return cmd
}
