package main

import (
	"encoding/hex"
	"encoding/json"
	"fmt"
	"os"

	"github.com/pranshurastogi/specter/pkg/crypto"
	"github.com/pranshurastogi/specter/pkg/stealth"
)

// walletFile is the on-disk wallet format: two 64-byte key seeds, hex
// encoded. Seeds regenerate the full key pairs deterministically, keeping
// the file small. It holds secret material; the CLI writes it 0600.
type walletFile struct {
	Version      int    `json:"version"`
	SpendingSeed string `json:"spending_seed"`
	ViewingSeed  string `json:"viewing_seed"`
	MetaAddress  string `json:"meta_address"`
}

const walletFileVersion = 1

// saveWallet generates fresh seeds, writes the wallet file, and returns
// the reconstructed wallet.
func saveWallet(path string) (*stealth.Wallet, error) {
	spendingSeed, err := crypto.SecureRandomBytes(64)
	if err != nil {
		return nil, err
	}
	viewingSeed, err := crypto.SecureRandomBytes(64)
	if err != nil {
		return nil, err
	}
	defer crypto.ZeroizeAll(spendingSeed, viewingSeed)

	wallet, err := stealth.WalletFromSeeds(spendingSeed, viewingSeed)
	if err != nil {
		return nil, err
	}

	wf := walletFile{
		Version:      walletFileVersion,
		SpendingSeed: hex.EncodeToString(spendingSeed),
		ViewingSeed:  hex.EncodeToString(viewingSeed),
		MetaAddress:  wallet.MetaAddress().ToHex(),
	}
	data, err := json.MarshalIndent(wf, "", "  ")
	if err != nil {
		return nil, err
	}
	if err := os.WriteFile(path, data, 0o600); err != nil {
		return nil, err
	}
	return wallet, nil
}

// loadWallet reconstructs a wallet from a wallet file.
func loadWallet(path string) (*stealth.Wallet, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, err
	}
	var wf walletFile
	if err := json.Unmarshal(data, &wf); err != nil {
		return nil, fmt.Errorf("malformed wallet file: %w", err)
	}
	if wf.Version != walletFileVersion {
		return nil, fmt.Errorf("unsupported wallet file version %d", wf.Version)
	}

	spendingSeed, err := hex.DecodeString(wf.SpendingSeed)
	if err != nil {
		return nil, fmt.Errorf("malformed spending seed: %w", err)
	}
	viewingSeed, err := hex.DecodeString(wf.ViewingSeed)
	if err != nil {
		return nil, fmt.Errorf("malformed viewing seed: %w", err)
	}
	defer crypto.ZeroizeAll(spendingSeed, viewingSeed)

	return stealth.WalletFromSeeds(spendingSeed, viewingSeed)
}
