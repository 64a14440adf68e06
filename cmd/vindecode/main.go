// vindecode validates a VIN and looks it up against the public decode API.
// Usage: vindecode [-no-remote] VIN
package main

import (
	"context"
	"encoding/json"
	"flag"
	"fmt"
	"log/slog"
	"os"
	"time"

	"github.com/joseph-ayodele/vintrade/internal/common"
	"github.com/joseph-ayodele/vintrade/internal/decode"
	"github.com/joseph-ayodele/vintrade/internal/vin"
)

func main() {
	noRemote := flag.Bool("no-remote", false, "only validate the check digit, skip the decode lookup")
	flag.Parse()

	if flag.NArg() != 1 {
		fmt.Fprintln(os.Stderr, "usage: vindecode [-no-remote] VIN")
		os.Exit(2)
	}

	logger := slog.New(slog.NewTextHandler(os.Stderr, &slog.HandlerOptions{
		Level: slog.LevelWarn,
	}))

	v, err := vin.Validate(flag.Arg(0))
	if err != nil {
		fmt.Fprintf(os.Stderr, "invalid VIN: %v\n", err)
		os.Exit(1)
	}
	fmt.Printf("VIN %s: structure OK, check digit %s\n", v.Value, checkWord(v.CheckOK))

	if *noRemote {
		return
	}

	cfg := common.LoadConfig()
	client := decode.NewClient(logger,
		decode.WithBaseURL(cfg.Decode.BaseURL),
		decode.WithTimeout(cfg.Decode.Timeout))

	ctx, cancel := context.WithTimeout(context.Background(), 15*time.Second)
	defer cancel()

	res, err := client.Decode(ctx, v)
	if err != nil {
		fmt.Fprintf(os.Stderr, "decode failed: %v\n", err)
		os.Exit(1)
	}

	out, err := json.MarshalIndent(res, "", "  ")
	if err != nil {
		fmt.Fprintf(os.Stderr, "format result: %v\n", err)
		os.Exit(1)
	}
	fmt.Println(string(out))
}

func checkWord(ok bool) string {
	if ok {
		return "valid"
	}
	return "mismatch"
}
