package commands

import (
	"encoding/hex"
	"fmt"

	"github.com/spf13/cobra"

	domaintypes "ciphera/internal/domain/types"
)

// sendCmd encrypts and sends a message to a peer over an established friendship.
func sendCmd() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "send <friendship-id> <peer> <message>",
		Short: "Encrypt and send a message over an established friendship",
		Args:  cobra.ExactArgs(3),
		RunE: func(cmd *cobra.Command, args []string) error {
			if handle == "" {
				return fmt.Errorf("--handle required")
			}
			friendshipID, err := parseFriendshipID(args[0])
			if err != nil {
				return err
			}
			peer := domaintypes.Handle(args[1])
			message := []byte(args[2])

			if err := appCtx.ChainService.SendMessage(cmd.Context(), passphrase, friendshipID, peer, message); err != nil {
				return fmt.Errorf("sending message to %q: %w", peer, err)
			}

			fmt.Println("Message sent")
			return nil
		},
	}
	return cmd
}

func parseFriendshipID(s string) (domaintypes.FriendshipID, error) {
	var id domaintypes.FriendshipID
	b, err := hex.DecodeString(s)
	if err != nil {
		return id, fmt.Errorf("invalid friendship id %q: %w", s, err)
	}
	if len(b) != len(id) {
		return id, fmt.Errorf("friendship id %q must be %d bytes, got %d", s, len(id), len(b))
	}
	copy(id[:], b)
	return id, nil
}
