package main

import (
	"context"
	"fmt"
	"log"
	"net"
	"net/http"
	"os"
	"os/signal"
	"path/filepath"
	"syscall"
	"time"

	"github.com/spf13/cobra"

	"colorslide/api"
	"colorslide/assets"
	"colorslide/catalog"
	"colorslide/config"
	"colorslide/export"
	"colorslide/model"
	"colorslide/palette"
	"colorslide/scheduler"
	"colorslide/storage"
)

var (
	dataDir     string
	listen      string
	listenPort  int
	assetsDir   string
	assetsURL   string
	paletteFile string
	outDir      string
	appVersion  = "0.1.0"
)

var rootCmd = &cobra.Command{
	Use:   "colorslide",
	Short: "colorslide – presentation theme recolouring service",
	Long:  "ColorSlide serves a deck catalog, live recoloured previews and .pptx exports carrying a custom theme palette.",
	Run:   run,
}

var configCmd = &cobra.Command{
	Use:   "config",
	Short: "Configuration management",
	Long:  "Manage colorslide configuration files.",
}

var configGenerateCmd = &cobra.Command{
	Use:   "generate",
	Short: "Generate a default configuration file",
	Long:  "Generate a default colorslide.config file in the specified data directory (or current directory if not specified).",
	Run:   runConfigGenerate,
}

var exportCmd = &cobra.Command{
	Use:   "export <deck-slug>",
	Short: "Export a deck as a .pptx file",
	Long:  "Build the deck from its template (or synthesize it) and write the presentation with the palette applied.",
	Args:  cobra.ExactArgs(1),
	Run:   runExport,
}

var themeCmd = &cobra.Command{
	Use:   "theme <deck-slug>",
	Short: "Export only the theme part of a deck",
	Args:  cobra.ExactArgs(1),
	Run:   runTheme,
}

func init() {
	wd, _ := os.Getwd()
	rootCmd.Version = appVersion
	rootCmd.PersistentFlags().StringVar(&dataDir, "data-dir", wd, "Data directory (default: current directory)")
	rootCmd.PersistentFlags().StringVar(&assetsDir, "assets-dir", "", "Directory holding deck palettes, previews and templates")
	rootCmd.PersistentFlags().StringVar(&assetsURL, "assets-url", "", "Base URL to fetch deck assets from (overrides --assets-dir)")
	rootCmd.Flags().StringVar(&listen, "listen", "all", "IP address to listen on (default: all)")
	rootCmd.Flags().IntVar(&listenPort, "listen-port", 8080, "Port to listen on (default: 8080)")

	for _, c := range []*cobra.Command{exportCmd, themeCmd} {
		c.Flags().StringVar(&paletteFile, "palette", "", "Palette JSON file (default: the deck's own palette)")
		c.Flags().StringVar(&outDir, "out", ".", "Output directory")
	}

	configCmd.AddCommand(configGenerateCmd)
	rootCmd.AddCommand(configCmd, exportCmd, themeCmd)
}

// loadConfig reads the config file and applies flags that were set explicitly.
func loadConfig(cmd *cobra.Command) config.Config {
	cfg, err := config.Load(dataDir)
	if err != nil {
		log.Fatalf("load config: %v", err)
	}

	if cmd.Flags().Changed("data-dir") {
		cfg.DataDir = dataDir
	} else if cfg.DataDir == "" || cfg.DataDir == "." {
		cfg.DataDir = dataDir
	}

	if cmd.Flags().Changed("listen") || cmd.Flags().Changed("listen-port") {
		if listen != "" && listen != "all" {
			cfg.ListenAddr = fmt.Sprintf("%s:%d", listen, listenPort)
		} else {
			cfg.ListenAddr = fmt.Sprintf(":%d", listenPort)
		}
	}
	if cmd.Flags().Changed("assets-dir") {
		cfg.AssetsDir = assetsDir
		cfg.AssetsURL = ""
	}
	if cmd.Flags().Changed("assets-url") {
		cfg.AssetsURL = assetsURL
	}

	dataDirAbs, err := filepath.Abs(cfg.DataDir)
	if err != nil {
		log.Fatalf("resolve data dir: %v", err)
	}
	cfg.DataDir = dataDirAbs
	return cfg
}

// assetSource picks the remote source when a URL is configured, else the
// local directory resolved against the data directory.
func assetSource(cfg config.Config) assets.Source {
	if cfg.AssetsURL != "" {
		src, err := assets.NewHTTP(cfg.AssetsURL, cfg.FetchTimeout.Std())
		if err != nil {
			log.Fatalf("assets: %v", err)
		}
		log.Printf("[assets] fetching from %s", cfg.AssetsURL)
		return src
	}
	dir := assetsRoot(cfg)
	log.Printf("[assets] reading from %s", dir)
	return assets.NewDir(dir)
}

func assetsRoot(cfg config.Config) string {
	if filepath.IsAbs(cfg.AssetsDir) {
		return cfg.AssetsDir
	}
	return filepath.Join(cfg.DataDir, cfg.AssetsDir)
}

func run(cmd *cobra.Command, args []string) {
	cfg := loadConfig(cmd)

	store := storage.New(cfg.DataDir)
	if err := store.EnsureDirs(); err != nil {
		log.Fatalf("ensure data dir: %v", err)
	}

	cat, err := catalog.Load()
	if err != nil {
		log.Fatalf("load catalog: %v", err)
	}
	src := assetSource(cfg)
	exporter := export.New(src, cfg.ProductName)

	ctx, cancel := signal.NotifyContext(context.Background(), syscall.SIGINT, syscall.SIGTERM)
	defer cancel()

	tasks := map[string]scheduler.Task{
		config.PruneExportsID: func(ctx context.Context) error {
			n, err := store.PruneExports(time.Now().Add(-cfg.ExportRetention.Std()))
			if err != nil {
				return err
			}
			if n > 0 {
				log.Printf("[scheduler] pruned %d export records older than %s", n, cfg.ExportRetention.Std())
			}
			return nil
		},
	}
	sched := scheduler.New(tasks, cfg.Schedules, cfg.LastRun)

	// Persist last-run times so retention survives restarts.
	sched.SetOnUpdate(func() {
		cfg.Schedules = sched.Schedules()
		cfg.LastRun = sched.LastRun()
		if err := config.Save(cfg); err != nil {
			log.Printf("failed to save config: %v", err)
		}
	})

	mux := http.NewServeMux()
	apiServer := api.NewServer(cat, src, exporter, store)
	apiServer.Register(mux)
	if cfg.AssetsURL == "" {
		mux.Handle("GET /assets/", http.StripPrefix("/assets/", http.FileServer(http.Dir(assetsRoot(cfg)))))
	}

	sched.Start(ctx)

	srv := &http.Server{
		Addr:    cfg.ListenAddr,
		Handler: mux,
	}

	printListeningAddresses(cfg.ListenAddr)

	go func() {
		if err := srv.ListenAndServe(); err != nil && err != http.ErrServerClosed {
			log.Fatalf("http server: %v", err)
		}
	}()

	<-ctx.Done()
	log.Println("shutting down...")

	shutdownCtx, shutdownCancel := context.WithTimeout(context.Background(), 5*time.Second)
	defer shutdownCancel()
	if err := srv.Shutdown(shutdownCtx); err != nil {
		log.Printf("server shutdown: %v", err)
	}
}

func runConfigGenerate(cmd *cobra.Command, args []string) {
	dataDirAbs, err := filepath.Abs(dataDir)
	if err != nil {
		log.Fatalf("resolve data dir: %v", err)
	}

	cfg := config.Default()
	cfg.DataDir = dataDirAbs

	cfgPath := filepath.Join(dataDirAbs, config.FileName)
	if _, err := os.Stat(cfgPath); err == nil {
		log.Fatalf("config file already exists: %s", cfgPath)
	}

	if err := config.Save(cfg); err != nil {
		log.Fatalf("failed to save config: %v", err)
	}

	fmt.Printf("Generated default config file: %s\n", cfgPath)
}

// deckAndPalette resolves the command's deck and the palette to apply.
func deckAndPalette(ctx context.Context, slug string, src assets.Source) (model.Deck, model.ThemeColors) {
	cat, err := catalog.Load()
	if err != nil {
		log.Fatalf("load catalog: %v", err)
	}
	deck, err := cat.Get(slug)
	if err != nil {
		log.Fatalf("%v", err)
	}

	if paletteFile == "" {
		return deck, palette.NewLoader(src).Load(ctx, deck.Slug)
	}
	data, err := os.ReadFile(paletteFile)
	if err != nil {
		log.Fatalf("read palette: %v", err)
	}
	colors, err := model.ParseThemeColors(data)
	if err != nil {
		log.Fatalf("palette %s: %v", paletteFile, err)
	}
	return deck, colors
}

func writeArtifact(art *export.Artifact) {
	if err := os.MkdirAll(outDir, 0o755); err != nil {
		log.Fatalf("create output dir: %v", err)
	}
	path := filepath.Join(outDir, art.Filename)
	if err := os.WriteFile(path, art.Data, 0o644); err != nil {
		log.Fatalf("write %s: %v", path, err)
	}
	fmt.Printf("Wrote %s (%d bytes, %s)\n", path, len(art.Data), art.Path)
}

func runExport(cmd *cobra.Command, args []string) {
	cfg := loadConfig(cmd)
	ctx, cancel := signal.NotifyContext(context.Background(), syscall.SIGINT, syscall.SIGTERM)
	defer cancel()

	src := assetSource(cfg)
	deck, colors := deckAndPalette(ctx, args[0], src)

	art, err := export.New(src, cfg.ProductName).Export(ctx, deck, colors)
	if err != nil {
		log.Fatalf("export: %v", err)
	}
	writeArtifact(art)
}

func runTheme(cmd *cobra.Command, args []string) {
	cfg := loadConfig(cmd)
	src := assetSource(cfg)
	deck, colors := deckAndPalette(context.Background(), args[0], src)

	art, err := export.New(src, cfg.ProductName).ExportTheme(deck, colors)
	if err != nil {
		log.Fatalf("export theme: %v", err)
	}
	writeArtifact(art)
}

func printListeningAddresses(addr string) {
	host, port, err := net.SplitHostPort(addr)
	if err != nil {
		log.Printf("listening on http://%s", addr)
		return
	}

	if host == "" || host == "0.0.0.0" || host == "::" {
		addrs, err := net.InterfaceAddrs()
		if err == nil {
			log.Println("listening on:")
			for _, a := range addrs {
				if ipnet, ok := a.(*net.IPNet); ok && !ipnet.IP.IsLoopback() {
					if ipnet.IP.To4() != nil {
						log.Printf("  http://%s:%s", ipnet.IP.String(), port)
					}
				}
			}
			log.Printf("  http://localhost:%s", port)
			log.Printf("  http://127.0.0.1:%s", port)
		} else {
			log.Printf("listening on http://0.0.0.0:%s", port)
		}
	} else {
		log.Printf("listening on http://%s:%s", host, port)
	}
}

func main() {
	if err := rootCmd.Execute(); err != nil {
		fmt.Fprintf(os.Stderr, "error: %v\n", err)
		os.Exit(1)
	}
}
