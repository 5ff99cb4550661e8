package main

import (
	"context"
	"fmt"
	"os"

	"go.uber.org/zap"

	"github.com/waterfutures/scadasim/internal/config"
	"github.com/waterfutures/scadasim/pkg/archive"
	"github.com/waterfutures/scadasim/pkg/scada"
	"github.com/waterfutures/scadasim/pkg/serialize"
)

const version = "0.1.0"

func main() {
	if len(os.Args) < 2 {
		usage()
		os.Exit(2)
	}

	cfg := config.DefaultConfig()
	if err := cfg.Validate(); err != nil {
		fmt.Fprintf(os.Stderr, "invalid configuration: %v\n", err)
		os.Exit(1)
	}

	logger, err := newLogger(cfg.LogLevel)
	if err != nil {
		fmt.Fprintf(os.Stderr, "failed to create logger: %v\n", err)
		os.Exit(1)
	}
	defer logger.Sync()

	if err := run(os.Args[1], os.Args[2:], cfg, logger); err != nil {
		fmt.Fprintf(os.Stderr, "error: %v\n", err)
		os.Exit(1)
	}
}

func run(cmd string, args []string, cfg *config.Config, logger *zap.Logger) error {
	ctx := context.Background()

	switch cmd {
	case "version":
		fmt.Printf("scadasim v%s\n", version)
		return nil

	case "inspect":
		if len(args) != 1 {
			return fmt.Errorf("usage: scadasim inspect <file>")
		}
		obj, err := serialize.LoadFromFile(args[0])
		if err != nil {
			return err
		}
		return inspect(obj)

	case "list":
		arc, err := openArchive(cfg, logger)
		if err != nil {
			return err
		}
		defer arc.Close()

		names, err := arc.List(ctx)
		if err != nil {
			return err
		}
		for _, name := range names {
			fmt.Println(name)
		}
		return nil

	case "import":
		if len(args) < 1 || len(args) > 2 {
			return fmt.Errorf("usage: scadasim import <file> [name]")
		}
		obj, err := serialize.LoadFromFile(args[0])
		if err != nil {
			return err
		}

		arc, err := openArchive(cfg, logger)
		if err != nil {
			return err
		}
		defer arc.Close()

		name := ""
		if len(args) == 2 {
			name = args[1]
		}
		stored, err := arc.Store(ctx, name, obj)
		if err != nil {
			return err
		}
		logger.Info("imported", zap.String("name", stored))
		return nil

	case "export":
		if len(args) != 2 {
			return fmt.Errorf("usage: scadasim export <name> <file>")
		}
		arc, err := openArchive(cfg, logger)
		if err != nil {
			return err
		}
		defer arc.Close()

		obj, err := arc.Fetch(ctx, args[0])
		if err != nil {
			return err
		}
		return serialize.SaveToFile(obj, args[1])

	case "delete":
		if len(args) != 1 {
			return fmt.Errorf("usage: scadasim delete <name>")
		}
		arc, err := openArchive(cfg, logger)
		if err != nil {
			return err
		}
		defer arc.Close()

		return arc.Delete(ctx, args[0])

	default:
		usage()
		return fmt.Errorf("unknown command %q", cmd)
	}
}

func inspect(obj serialize.Serializable) error {
	fmt.Printf("type tag: %d\n", obj.TypeTag())

	data, ok := obj.(*scada.Data)
	if !ok {
		for _, f := range obj.Describe() {
			fmt.Printf("  %s: %v\n", f.Name, f.Value)
		}
		return nil
	}

	times := data.Times()
	fmt.Printf("time steps: %d\n", len(times))
	if len(times) > 0 {
		fmt.Printf("time range: %d .. %d seconds\n", times[0], times[len(times)-1])
	}
	fmt.Printf("seed: %d\n", data.Seed())
	fmt.Printf("frozen: %v\n", data.Frozen())

	cfg := data.SensorConfig()
	fmt.Printf("sensors: %d\n", cfg.TotalReadings())
	for _, target := range cfg.Targets() {
		fmt.Printf("  %s @ %s\n", target.Quantity, target.ElementID)
	}
	fmt.Printf("reading events: %d\n", len(data.ReadingEvents()))
	return nil
}

func openArchive(cfg *config.Config, logger *zap.Logger) (*archive.Archive, error) {
	logger.Debug("opening archive", zap.String("path", cfg.Archive.Path))
	return archive.Open(cfg.ToArchiveConfig())
}

func newLogger(level string) (*zap.Logger, error) {
	lvl, err := zap.ParseAtomicLevel(level)
	if err != nil {
		return nil, err
	}
	zcfg := zap.NewDevelopmentConfig()
	zcfg.Level = lvl
	return zcfg.Build()
}

func usage() {
	fmt.Fprintln(os.Stderr, `usage: scadasim <command> [args]

commands:
  inspect <file>         print a summary of a serialized object
  list                   list objects stored in the archive
  import <file> [name]   store a serialized object in the archive
  export <name> <file>   write an archived object to a file
  delete <name>          remove an object from the archive
  version                print the version`)
}
