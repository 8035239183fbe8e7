package main

import (
	"context"
	_ "embed"
	"fmt"
	"log/slog"
	"os"
	"os/signal"
	"strings"
	"syscall"

	"github.com/peterbourgon/ff/v4"
	"github.com/peterbourgon/ff/v4/ffhelp"
	"github.com/zombor/receipt-analyzer/internal/analysis"
	"github.com/zombor/receipt-analyzer/internal/export"
	"github.com/zombor/receipt-analyzer/internal/session"
	"github.com/zombor/receipt-analyzer/internal/upload"
	"github.com/zombor/receipt-analyzer/internal/web"
)

//go:embed VERSION.txt
var versionFile string

var version = strings.TrimSpace(versionFile)

func main() {
	fs := ff.NewFlagSet("receipt-analyzer")
	var (
		port        = fs.IntLong("port", 8080, "HTTP server port")
		serviceURL  = fs.StringLong("service-url", "http://127.0.0.1:5000", "Base URL of the receipt analysis service")
		dropDir     = fs.StringLong("drop-dir", "", "Directory to watch for dropped receipt images (disabled when empty)")
		exportDir   = fs.StringLong("export-dir", "./exports", "Directory for exports from drop-dir analyses")
		showVersion = fs.BoolLong("version", "Show version information")
	)

	if err := ff.Parse(fs, os.Args[1:],
		ff.WithEnvVarPrefix("RECEIPT_ANALYZER"),
	); err != nil {
		fmt.Fprintf(os.Stderr, "%s\n", ffhelp.Flags(fs))
		fmt.Fprintf(os.Stderr, "error: %v\n", err)
		os.Exit(1)
	}

	if *showVersion {
		fmt.Println(version)
		os.Exit(0)
	}

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	// The service base address is resolved here, once, and injected into the
	// client. Nothing else consults the environment for it.
	client := analysis.NewClient(*serviceURL)
	store := session.NewStore()
	gate := upload.NewGate(upload.DefaultConfig())
	service := session.NewService(gate, client, store)
	exporter := export.NewExporter()

	if *dropDir != "" {
		storage, err := export.NewLocalStorage(*exportDir)
		if err != nil {
			slog.Error("Failed to open export directory", "dir", *exportDir, "error", err)
			os.Exit(1)
		}
		watcher, err := upload.NewWatcher(*dropDir, dropHandler(service, exporter, storage))
		if err != nil {
			slog.Error("Failed to watch drop directory", "dir", *dropDir, "error", err)
			os.Exit(1)
		}
		defer watcher.Close()
		go watcher.Run(ctx)
		slog.Info("Watching drop directory", "dir", *dropDir)
	}

	server := web.NewServer(service, exporter)

	addr := fmt.Sprintf(":%d", *port)
	go func() {
		if err := server.Start(addr); err != nil {
			slog.Error("Server error", "error", err)
			os.Exit(1)
		}
	}()

	slog.Info("Server started", "address", fmt.Sprintf("http://localhost%s", addr), "service_url", *serviceURL, "version", version)

	<-ctx.Done()
	slog.Info("Shutting down...")
}

// dropHandler analyzes files arriving in the drop directory and lands the
// export on disk, the headless counterpart of the download button.
func dropHandler(service *session.Service, exporter *export.Exporter, storage export.Storage) upload.Handler {
	return func(ctx context.Context, file upload.File) {
		snapshot, err := service.Submit(ctx, []upload.File{file})
		if err != nil {
			slog.Warn("Skipping dropped file", "filename", file.Name, "error", err)
			return
		}
		if snapshot.Result == nil || !snapshot.Result.Success {
			return
		}

		exported, err := exporter.Export(snapshot.Result)
		if err != nil {
			slog.Error("Failed to export result", "error", err)
			return
		}
		path, err := storage.Save(exported)
		if err != nil {
			slog.Error("Failed to save export", "error", err)
			return
		}
		slog.Info("Saved analysis export", "filename", file.Name, "path", path)
	}
}
