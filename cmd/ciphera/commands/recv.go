package commands

import (
	"fmt"

	"github.com/spf13/cobra"
)

// recvCmd fetches and decrypts queued messages for an established friendship.
func recvCmd() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "recv <friendship-id>",
		Short: "Fetch and decrypt your queued messages for a friendship",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			if passphrase == "" {
				return fmt.Errorf("passphrase required (-p)")
			}
			if handle == "" {
				return fmt.Errorf("--handle required")
			}
			friendshipID, err := parseFriendshipID(args[0])
			if err != nil {
				return err
			}

			msgs, err := appCtx.ChainService.ReceiveMessages(cmd.Context(), passphrase, friendshipID, 0)
			if err != nil {
				return err
			}
			for _, m := range msgs {
				fmt.Printf("[%s] %s\n", m.From, string(m.Plaintext))
			}
			return nil
		},
	}
	return cmd
}
