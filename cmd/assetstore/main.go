package main

import (
	"context"
	"encoding/json"
	"flag"
	"fmt"
	"os"

	"github.com/suparena/assetstore"
	"github.com/suparena/assetstore/storagemodels"
)

var (
	versionFlag = flag.Bool("version", false, "Show version information")
	vFlag       = flag.Bool("v", false, "Show version information (short)")

	configFlag   = flag.String("config", "assetstore.yaml", "Path to the registry config file")
	resourceFlag = flag.String("resource", "", "Print the resource document for a uid")
	historyFlag  = flag.String("history", "", "Print the update history for a resource uid")
	datumsFlag   = flag.String("datums", "", "Print the datums recorded under a resource uid")
	filesFlag    = flag.String("files", "", "Print the payload files behind a resource uid")
)

func main() {
	// Parse flags early to catch version flag
	flag.Parse()

	// Handle version flag
	if *versionFlag || *vFlag {
		info := assetstore.GetVersionInfo()
		fmt.Printf("AssetStore version %s\n", info.Version)
		fmt.Printf("Git commit: %s\n", info.GitCommit)
		fmt.Printf("Build date: %s\n", info.BuildDate)
		fmt.Printf("Go version: %s\n", info.GoVersion)
		os.Exit(0)
	}

	if *resourceFlag == "" && *historyFlag == "" && *datumsFlag == "" && *filesFlag == "" {
		fmt.Fprintln(os.Stderr, "nothing to do: pass -resource, -history, -datums, or -files")
		flag.Usage()
		os.Exit(2)
	}

	if err := run(); err != nil {
		fmt.Fprintf(os.Stderr, "assetstore: %v\n", err)
		os.Exit(1)
	}
}

func run() error {
	ctx := context.Background()

	cfg, err := assetstore.LoadConfig(*configFlag)
	if err != nil {
		return err
	}
	// Inspection needs no spec handlers; retrieval stays with the library.
	reg, err := assetstore.Open(cfg, nil)
	if err != nil {
		return err
	}
	defer reg.Close()

	if *resourceFlag != "" {
		res, err := reg.ResourceGivenUID(ctx, *resourceFlag)
		if err != nil {
			return err
		}
		if err := printJSON(res); err != nil {
			return err
		}
	}

	if *historyFlag != "" {
		history, err := reg.GetResourceHistory(ctx, *historyFlag)
		if err != nil {
			return err
		}
		if err := printJSON(history); err != nil {
			return err
		}
	}

	if *datumsFlag != "" {
		datums, err := collectDatums(ctx, reg, *datumsFlag)
		if err != nil {
			return err
		}
		if err := printJSON(datums); err != nil {
			return err
		}
	}

	if *filesFlag != "" {
		files, err := reg.GetFileList(ctx, *filesFlag)
		if err != nil {
			return err
		}
		if err := printJSON(files); err != nil {
			return err
		}
	}

	return nil
}

func collectDatums(ctx context.Context, reg *assetstore.Registry, uid string) ([]storagemodels.Datum, error) {
	out, errc := reg.DatumsByResource(ctx, uid)
	datums := make([]storagemodels.Datum, 0)
	for d := range out {
		datums = append(datums, d)
	}
	if err := <-errc; err != nil {
		return nil, err
	}
	return datums, nil
}

func printJSON(v any) error {
	out, err := json.MarshalIndent(v, "", "  ")
	if err != nil {
		return err
	}
	fmt.Println(string(out))
	return nil
}
