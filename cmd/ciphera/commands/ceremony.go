package commands

import (
	"fmt"

	"github.com/spf13/cobra"

	domaintypes "ciphera/internal/domain/types"
)

// ceremonyStartCmd begins a CLUTCH ceremony against one or more peer
// handles and publishes this party's Offer to each of them.
func ceremonyStartCmd() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "ceremony-start <peer> [peer...]",
		Short: "Start a CLUTCH ceremony with one or more peers",
		Args:  cobra.MinimumNArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			if handle == "" {
				return fmt.Errorf("--handle required")
			}
			peers := make([]domaintypes.Handle, len(args))
			for i, a := range args {
				peers[i] = domaintypes.Handle(a)
			}

			id, err := appCtx.CeremonyService.StartCeremony(cmd.Context(), passphrase, peers)
			if err != nil {
				return fmt.Errorf("starting ceremony: %w", err)
			}

			fmt.Printf("Ceremony started: %s\n", id)
			fmt.Println("Run ceremony-advance to poll for peers' offers/responses.")
			return nil
		},
	}
	return cmd
}

// ceremonyAdvanceCmd polls the relay for queued ceremony messages and
// advances every in-flight ceremony this handle is party to, reporting the
// first one that reaches Established.
func ceremonyAdvanceCmd() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "ceremony-advance",
		Short: "Poll for ceremony messages and advance in-flight ceremonies",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			if handle == "" {
				return fmt.Errorf("--handle required")
			}
			selfHash := domaintypes.Handle(handle).Hash()

			chains, established, err := appCtx.CeremonyService.AdvanceCeremony(cmd.Context(), passphrase, selfHash)
			if err != nil {
				return fmt.Errorf("advancing ceremony: %w", err)
			}
			if !established {
				fmt.Println("No ceremony reached a terminal state yet.")
				return nil
			}

			fmt.Printf("Friendship established: %s\n", chains.FriendshipID)
			for _, hh := range chains.HandleHashes {
				if h, ok := chains.Handles[hh.String()]; ok {
					fmt.Printf("  participant: %s\n", h)
				}
			}
			return nil
		},
	}
	return cmd
}
