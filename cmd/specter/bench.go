package main

import (
	"flag"
	"fmt"
	"time"

	"github.com/pranshurastogi/specter/pkg/crypto"
	"github.com/pranshurastogi/specter/pkg/protocol"
	"github.com/pranshurastogi/specter/pkg/registry"
	"github.com/pranshurastogi/specter/pkg/stealth"
)

// benchCommand times the cryptographic core (key generation, encapsulation,
// decapsulation, payment creation, discovery) and registry publishing.
func benchCommand(args []string) error {
	fs := flag.NewFlagSet("bench", flag.ExitOnError)
	count := fs.Int("count", 100, "Iterations per operation")
	if err := fs.Parse(args); err != nil {
		return err
	}
	n := *count
	if n <= 0 {
		return fmt.Errorf("count must be positive")
	}

	fmt.Printf("SPECTER benchmark, %d iterations per operation\n\n", n)

	// Key generation
	start := time.Now()
	var kp *crypto.KeyPair
	for i := 0; i < n; i++ {
		var err error
		kp, err = crypto.GenerateKeyPair()
		if err != nil {
			return err
		}
	}
	report("keygen", start, n)

	// Encapsulation
	start = time.Now()
	var ct *crypto.KyberCiphertext
	for i := 0; i < n; i++ {
		var ss *crypto.SharedSecret
		var err error
		ct, ss, err = crypto.Encapsulate(kp.Public)
		if err != nil {
			return err
		}
		ss.Wipe()
	}
	report("encapsulate", start, n)

	// Decapsulation
	start = time.Now()
	for i := 0; i < n; i++ {
		ss, err := crypto.Decapsulate(ct, kp.Secret)
		if err != nil {
			return err
		}
		ss.Wipe()
	}
	report("decapsulate", start, n)

	// Full payment creation
	wallet, err := stealth.GenerateWallet()
	if err != nil {
		return err
	}
	defer wallet.Wipe()

	start = time.Now()
	var payment *stealth.Payment
	for i := 0; i < n; i++ {
		payment, err = stealth.CreatePayment(wallet.MetaAddress())
		if err != nil {
			return err
		}
	}
	report("create payment", start, n)

	// Per-announcement scan (tag match path)
	start = time.Now()
	for i := 0; i < n; i++ {
		found, err := wallet.TryDiscover(payment.Result.EphemeralCiphertext, payment.Result.ViewTag)
		if err != nil {
			return err
		}
		found.Wipe()
	}
	report("discover (match)", start, n)

	// Registry publish
	reg := registry.NewMemoryRegistry()
	anns := make([]*protocol.Announcement, n)
	for i := range anns {
		p, err := stealth.CreatePayment(wallet.MetaAddress())
		if err != nil {
			return err
		}
		anns[i] = p.Announcement
	}
	start = time.Now()
	for _, ann := range anns {
		if _, err := reg.Publish(ann); err != nil {
			return err
		}
	}
	report("registry publish", start, n)

	return nil
}

func report(name string, start time.Time, n int) {
	elapsed := time.Since(start)
	perOp := elapsed / time.Duration(n)
	fmt.Printf("%-18s %8d ops in %10v  (%v/op, %.0f ops/s)\n",
		name, n, elapsed.Round(time.Millisecond), perOp, float64(n)/elapsed.Seconds())
}
