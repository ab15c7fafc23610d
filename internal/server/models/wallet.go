package models

import "time"

// WalletKind classifies how a wallet came to exist.
type WalletKind string

const (
	// WalletMain is the custodial wallet created at first provisioning.
	// A user has at most one.
	WalletMain WalletKind = "main"
	// WalletOther is any additional wallet created later.
	WalletOther WalletKind = "other"
	// WalletImport is a wallet imported from an external secret key.
	WalletImport WalletKind = "import"
)

// Wallet is a custodial keypair record. PrivateKey holds the encrypted
// secret key material and must never leave the server.
type Wallet struct {
	ID         int64
	UserID     int64
	SolAddress string
	Name       string
	PrivateKey string
	Kind       WalletKind
	CreatedAt  time.Time
}
