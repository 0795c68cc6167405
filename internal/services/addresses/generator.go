package addresses

import (
	"fmt"

	"moonex/internal/models"

	"github.com/btcsuite/btcd/btcec/v2"
	"github.com/btcsuite/btcd/btcutil"
	"github.com/btcsuite/btcd/chaincfg"
	"github.com/ethereum/go-ethereum/crypto"
	"github.com/gagliardetto/solana-go"
)

// Generator produces a deposit address for an asset's network. Stateless
// from the ledger's point of view: the same asset may yield a different
// address each call, uniqueness per (user, currency) is the provisioner's
// job.
type Generator interface {
	Generate(asset models.Asset) (string, error)
}

type keyGenerator struct {
	btcParams *chaincfg.Params
}

// NewGenerator returns a Generator backed by fresh keypairs on each
// chain's native curve. Private keys are discarded; this is a paper
// platform and only the address string is ever used.
func NewGenerator() Generator {
	return &keyGenerator{btcParams: &chaincfg.MainNetParams}
}

func (g *keyGenerator) Generate(asset models.Asset) (string, error) {
	switch asset.Network {
	case models.NetworkBitcoin:
		return g.bitcoinAddress()
	case models.NetworkEthereum:
		return g.ethereumAddress()
	case models.NetworkSolana:
		return g.solanaAddress()
	default:
		return "", fmt.Errorf("unsupported network %q", asset.Network)
	}
}

// bitcoinAddress derives a bech32 P2WPKH address from a fresh secp256k1 key.
func (g *keyGenerator) bitcoinAddress() (string, error) {
	priv, err := btcec.NewPrivateKey()
	if err != nil {
		return "", fmt.Errorf("failed to generate bitcoin key: %w", err)
	}
	pubKeyHash := btcutil.Hash160(priv.PubKey().SerializeCompressed())
	addr, err := btcutil.NewAddressWitnessPubKeyHash(pubKeyHash, g.btcParams)
	if err != nil {
		return "", fmt.Errorf("failed to derive bitcoin address: %w", err)
	}
	return addr.EncodeAddress(), nil
}

// ethereumAddress derives a checksummed hex address; also used for
// ERC-20 assets such as USDT.
func (g *keyGenerator) ethereumAddress() (string, error) {
	key, err := crypto.GenerateKey()
	if err != nil {
		return "", fmt.Errorf("failed to generate ethereum key: %w", err)
	}
	return crypto.PubkeyToAddress(key.PublicKey).Hex(), nil
}

// solanaAddress derives a base58 address from a fresh ed25519 keypair.
func (g *keyGenerator) solanaAddress() (string, error) {
	wallet := solana.NewWallet()
	return wallet.PublicKey().String(), nil
}
