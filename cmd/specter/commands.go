package main

import (
	"context"
	"encoding/json"
	"flag"
	"fmt"
	"os"

	"github.com/pranshurastogi/specter/pkg/metrics"
	"github.com/pranshurastogi/specter/pkg/protocol"
	"github.com/pranshurastogi/specter/pkg/registry"
	"github.com/pranshurastogi/specter/pkg/resolver"
	"github.com/pranshurastogi/specter/pkg/scanner"
	"github.com/pranshurastogi/specter/pkg/stealth"
)

func generateCommand(args []string) error {
	fs := flag.NewFlagSet("generate", flag.ExitOnError)
	out := fs.String("out", "wallet.json", "Wallet file to write")
	if err := fs.Parse(args); err != nil {
		return err
	}

	wallet, err := saveWallet(*out)
	if err != nil {
		return err
	}
	defer wallet.Wipe()

	fmt.Printf("wallet written to %s\n", *out)
	fmt.Printf("meta-address: %s\n", wallet.MetaAddress().ToHex())
	return nil
}

func resolveCommand(args []string) error {
	fs := flag.NewFlagSet("resolve", flag.ExitOnError)
	namesPath := fs.String("names", "names.json", "JSON file mapping names to meta-address hex")
	if err := fs.Parse(args); err != nil {
		return err
	}
	if fs.NArg() < 1 {
		return fmt.Errorf("usage: specter resolve [--names file] <name>")
	}
	name := fs.Arg(0)

	res, err := loadStaticResolver(*namesPath)
	if err != nil {
		return err
	}

	cfg := resolver.ConfigFromEnv()
	ctx, cancel := context.WithTimeout(context.Background(), cfg.RequestTimeout)
	defer cancel()

	meta, err := res.Resolve(ctx, name)
	if err != nil {
		return err
	}
	fmt.Println(meta.ToHex())
	return nil
}

// loadStaticResolver builds a resolver from a name → meta-hex JSON file.
func loadStaticResolver(path string) (*resolver.StaticResolver, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, err
	}
	var records map[string]string
	if err := json.Unmarshal(data, &records); err != nil {
		return nil, fmt.Errorf("malformed names file: %w", err)
	}

	res := resolver.NewStaticResolver()
	for name, metaHex := range records {
		meta, err := protocol.MetaAddressFromHex(metaHex)
		if err != nil {
			return nil, fmt.Errorf("record %q: %w", name, err)
		}
		if err := res.Register(name, meta); err != nil {
			return nil, fmt.Errorf("record %q: %w", name, err)
		}
	}
	return res, nil
}

func createCommand(args []string) error {
	fs := flag.NewFlagSet("create", flag.ExitOnError)
	registryPath := fs.String("registry", "", "Registry file to publish the announcement to")
	memo := fs.String("memo", "", "Payment memo (kept off-wire)")
	if err := fs.Parse(args); err != nil {
		return err
	}
	if fs.NArg() < 1 {
		return fmt.Errorf("usage: specter create [--registry file] <meta-address-hex>")
	}

	meta, err := protocol.MetaAddressFromHex(fs.Arg(0))
	if err != nil {
		return err
	}

	payment, err := stealth.NewPaymentBuilder().Recipient(meta).Memo(*memo).Build()
	if err != nil {
		return err
	}

	fmt.Printf("stealth address: %s\n", payment.Result.Address.Hex())
	fmt.Printf("view tag: 0x%02x\n", payment.Result.ViewTag)

	if *registryPath != "" {
		reg, err := registry.NewFileRegistry(*registryPath)
		if err != nil {
			return err
		}
		id, err := reg.Publish(payment.Announcement)
		if err != nil {
			return err
		}
		if err := reg.Flush(); err != nil {
			return err
		}
		fmt.Printf("announcement published with id %d\n", id)
	}
	return nil
}

func scanCommand(args []string) error {
	fs := flag.NewFlagSet("scan", flag.ExitOnError)
	keysPath := fs.String("keys", "", "Wallet file (required)")
	registryPath := fs.String("registry", "registry.bin", "Registry file to scan")
	logLevel := fs.String("log-level", "warn", "Log level: debug, info, warn, error, silent")
	tracing := fs.String("tracing", "none", "Tracing mode: none or otel (requires -tags otel)")
	if err := fs.Parse(args); err != nil {
		return err
	}
	if *keysPath == "" {
		return fmt.Errorf("usage: specter scan --keys <file> [--registry <file>]")
	}

	wallet, err := loadWallet(*keysPath)
	if err != nil {
		return err
	}
	defer wallet.Wipe()

	reg, err := registry.NewFileRegistry(*registryPath)
	if err != nil {
		return err
	}

	log := metrics.NewLogger(metrics.WithLevel(metrics.ParseLevel(*logLevel)))
	sc := scanner.New(wallet)
	sc.SetLogger(log.Named("scanner"))
	if *tracing == "otel" {
		sc.SetTracer(metrics.NewOTelTracer("specter"))
	}

	discoveries, err := sc.Scan(context.Background(), reg, scanner.DefaultConfig(), func(p scanner.Progress) {
		fmt.Printf("\rscanned %d/%d (%.1f%%) discoveries=%d", p.Scanned, p.Total, p.Percent, p.Discoveries)
	})
	fmt.Println()
	if err != nil {
		return err
	}

	summary := sc.Summary()
	fmt.Printf("scanned %d announcements in %dms (%.0f/s), filter efficiency %.2f%%\n",
		summary.TotalScanned, summary.DurationMillis, summary.Rate, summary.FilterEfficiency)
	for _, d := range discoveries {
		fmt.Printf("discovered %s (announcement %d)\n", d.Address.Hex(), d.AnnouncementID)
		d.Wipe()
	}
	if len(discoveries) == 0 {
		fmt.Println("no payments found")
	}
	return nil
}
