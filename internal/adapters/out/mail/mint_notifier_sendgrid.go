// internal/adapters/out/mail/mint_notifier_sendgrid.go
package mail

import (
	"context"
	"fmt"
	"strings"
)

// MintNotifier sends the batch-completion mail through an EmailClient.
// Callers treat failures as best-effort; this adapter only reports them.
type MintNotifier struct {
	client EmailClient
	from   string
}

func NewMintNotifier(client EmailClient, from string) *MintNotifier {
	return &MintNotifier{
		client: client,
		from:   strings.TrimSpace(from),
	}
}

func (n *MintNotifier) BatchMinted(ctx context.Context, recipientEmail, collectionName string, minted int, signatures []string) error {
	to := strings.TrimSpace(recipientEmail)
	if to == "" {
		return fmt.Errorf("mint notifier: recipient email is empty")
	}

	subject := fmt.Sprintf("Minting complete: %s", collectionName)

	var b strings.Builder
	fmt.Fprintf(&b, "Your batch for %q finished: %d items minted.\n\n", collectionName, minted)
	b.WriteString("Transaction signatures:\n")
	for i, sig := range signatures {
		fmt.Fprintf(&b, "  %d. %s\n", i+1, sig)
	}

	return n.client.Send(ctx, n.from, to, subject, b.String())
}
