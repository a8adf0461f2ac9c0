package main

import (
	"encoding/binary"
	"encoding/hex"
	"flag"
	"fmt"
	"io"
	"os"
	"strings"

	"go.uber.org/zap"

	"xdao.co/solframe/bank"
	"xdao.co/solframe/internal/counter"
	"xdao.co/solframe/program"
	"xdao.co/solframe/pubkey"
)

func main() {
	os.Exit(run(os.Args[1:], os.Stdout, os.Stderr))
}

func run(args []string, out io.Writer, errOut io.Writer) int {
	if len(args) == 0 {
		printUsage(errOut)
		return 2
	}

	switch args[0] {
	case "demo":
		return cmdDemo(args[1:], out, errOut)
	case "derive":
		return cmdDerive(args[1:], out, errOut)
	case "rent":
		return cmdRent(args[1:], out, errOut)
	case "help", "-h", "--help":
		printUsage(out)
		return 0
	default:
		fmt.Fprintf(errOut, "unknown command: %s\n\n", args[0])
		printUsage(errOut)
		return 2
	}
}

func printUsage(w io.Writer) {
	fmt.Fprintln(w, "solframe: in-process program framework playground")
	fmt.Fprintln(w)
	fmt.Fprintln(w, "Usage:")
	fmt.Fprintln(w, "  solframe demo [--config <genesis.toml>] [--increments <n>] [--memo <text>] [--verbose]")
	fmt.Fprintln(w, "  solframe derive --program <base58> <seed> [<seed> ...]")
	fmt.Fprintln(w, "  solframe rent --bytes <n>")
	fmt.Fprintln(w)
	fmt.Fprintln(w, "Notes:")
	fmt.Fprintln(w, "  - demo runs the counter program against a fresh bank and prints the final ledger CID")
	fmt.Fprintln(w, "  - derive seeds are UTF-8 strings; prefix with hex: for raw bytes")
	fmt.Fprintln(w, "  - rent prints the rent-exempt minimum for an account of the given data length")
}

func cmdDemo(args []string, out io.Writer, errOut io.Writer) int {
	fs := flag.NewFlagSet("demo", flag.ContinueOnError)
	fs.SetOutput(errOut)
	configPath := fs.String("config", "", "genesis config (TOML)")
	increments := fs.Int("increments", 3, "number of increment transactions")
	memo := fs.String("memo", "", "memo attached to each increment")
	verbose := fs.Bool("verbose", false, "log every transaction")
	if err := fs.Parse(args); err != nil {
		return 2
	}

	var cfg bank.Config
	if *configPath != "" {
		loaded, err := bank.LoadConfig(*configPath)
		if err != nil {
			fmt.Fprintf(errOut, "load config: %v\n", err)
			return 1
		}
		cfg = loaded
	}

	log := zap.NewNop()
	if *verbose {
		dev, err := zap.NewDevelopment()
		if err != nil {
			fmt.Fprintf(errOut, "logger: %v\n", err)
			return 1
		}
		defer func() { _ = dev.Sync() }()
		log = dev
	}

	b, err := bank.New(cfg, log)
	if err != nil {
		fmt.Fprintf(errOut, "bank: %v\n", err)
		return 1
	}
	b.RegisterProgram(counter.ID, counter.Entrypoint())

	payer := pubkey.NewUnique()
	b.Airdrop(payer, 1_000_000_000)

	init, err := counter.InitializeInstruction(payer, payer)
	if err != nil {
		fmt.Fprintf(errOut, "build initialize: %v\n", err)
		return 1
	}
	if err := b.ProcessInstruction(init); err != nil {
		fmt.Fprintf(errOut, "initialize: %v\n", err)
		return 1
	}

	var count uint64
	for i := 0; i < *increments; i++ {
		inc, err := counter.IncrementInstruction(payer, 1, *memo)
		if err != nil {
			fmt.Fprintf(errOut, "build increment: %v\n", err)
			return 1
		}
		if err := b.ProcessInstruction(inc); err != nil {
			fmt.Fprintf(errOut, "increment: %v\n", err)
			return 1
		}
		_, ret := b.ReturnData()
		count = binary.LittleEndian.Uint64(ret)
	}

	addr, bump, err := counter.Address(payer)
	if err != nil {
		fmt.Fprintf(errOut, "derive counter: %v\n", err)
		return 1
	}
	cid, err := b.SnapshotCID()
	if err != nil {
		fmt.Fprintf(errOut, "snapshot: %v\n", err)
		return 1
	}
	fmt.Fprintf(out, "payer    %s\n", payer)
	fmt.Fprintf(out, "counter  %s (bump %d)\n", addr, bump)
	fmt.Fprintf(out, "count    %d\n", count)
	fmt.Fprintf(out, "ledger   %s\n", cid)
	return 0
}

func cmdDerive(args []string, out io.Writer, errOut io.Writer) int {
	fs := flag.NewFlagSet("derive", flag.ContinueOnError)
	fs.SetOutput(errOut)
	programArg := fs.String("program", "", "deriving program id (base58)")
	if err := fs.Parse(args); err != nil {
		return 2
	}
	if *programArg == "" || fs.NArg() == 0 {
		fmt.Fprintln(errOut, "usage: solframe derive --program <base58> <seed> [<seed> ...]")
		return 2
	}
	programID, err := pubkey.FromBase58(*programArg)
	if err != nil {
		fmt.Fprintf(errOut, "program id: %v\n", err)
		return 1
	}
	seeds := make([][]byte, 0, fs.NArg())
	for _, s := range fs.Args() {
		if raw, ok := strings.CutPrefix(s, "hex:"); ok {
			b, err := hex.DecodeString(raw)
			if err != nil {
				fmt.Fprintf(errOut, "seed %q: %v\n", s, err)
				return 1
			}
			seeds = append(seeds, b)
			continue
		}
		seeds = append(seeds, []byte(s))
	}
	addr, bump, err := pubkey.FindProgramAddress(seeds, programID)
	if err != nil {
		fmt.Fprintf(errOut, "derive: %v\n", err)
		return 1
	}
	fmt.Fprintf(out, "%s %d\n", addr, bump)
	return 0
}

func cmdRent(args []string, out io.Writer, errOut io.Writer) int {
	fs := flag.NewFlagSet("rent", flag.ContinueOnError)
	fs.SetOutput(errOut)
	bytes := fs.Int("bytes", 0, "account data length")
	if err := fs.Parse(args); err != nil {
		return 2
	}
	if *bytes < 0 {
		fmt.Fprintln(errOut, "usage: solframe rent --bytes <n>")
		return 2
	}
	fmt.Fprintln(out, program.DefaultRent().MinimumBalance(*bytes))
	return 0
}
