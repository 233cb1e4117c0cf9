package main

import (
	"context"
	"errors"
	"fmt"
	"os"
	"os/signal"
	"path/filepath"
	"sort"
	"strings"
	"syscall"
	"time"

	tea "github.com/charmbracelet/bubbletea"
	"github.com/charmbracelet/log"
	"github.com/spf13/cobra"

	"github.com/wcatz/chiclet-slicer/internal/config"
	errs "github.com/wcatz/chiclet-slicer/internal/errors"
	"github.com/wcatz/chiclet-slicer/internal/observability"
	"github.com/wcatz/chiclet-slicer/internal/persist"
	"github.com/wcatz/chiclet-slicer/internal/render"
	"github.com/wcatz/chiclet-slicer/internal/server"
	"github.com/wcatz/chiclet-slicer/internal/slicer"
	"github.com/wcatz/chiclet-slicer/internal/source"
)

var (
	cfgFile       string
	dataFile      string
	outputFile    string
	overrides     []string
	dryRun        bool
	verbose       bool
	viewWidth     float64
	viewHeight    float64
	termWidth     int
	servePort     int
	backend       string
	instance      string
	storeDir      string
	redisAddr     string
	redisPassword string
	redisDB       int
	redisTTL      time.Duration
)

func main() {
	ctx, cancel := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer cancel()

	if err := newRootCmd().ExecuteContext(ctx); err != nil {
		if errors.Is(err, context.Canceled) {
			os.Exit(130)
		}
		fmt.Fprintln(os.Stderr, errs.UserMessage(err))
		os.Exit(1)
	}
}

func newRootCmd() *cobra.Command {
	rootCmd := &cobra.Command{
		Use:           "chiclet-slicer",
		Short:         "tile-based category slicer",
		SilenceUsage:  true,
		SilenceErrors: true,
		PersistentPreRun: func(cmd *cobra.Command, args []string) {
			level := log.InfoLevel
			if verbose {
				level = log.DebugLevel
			}
			logger := newLogger(os.Stderr, level)
			hooks := observability.NewLogHooks(logger)
			observability.SetSlicerHooks(hooks)
			observability.SetStoreHooks(hooks)
			cmd.SetContext(withLogger(cmd.Context(), logger))
		},
	}
	rootCmd.PersistentFlags().BoolVarP(&verbose, "verbose", "v", false, "enable verbose logging")

	layoutCmd := &cobra.Command{
		Use:   "layout",
		Short: "lay out a data file and write the tiles as JSON",
		RunE:  runLayout,
	}
	addInputFlags(layoutCmd)
	layoutCmd.Flags().StringVar(&outputFile, "output", "layout.json", "layout JSON output file")
	layoutCmd.Flags().BoolVar(&dryRun, "dry-run", false, "lay out in memory only")
	layoutCmd.Flags().Float64Var(&viewWidth, "width", 0, "viewport width")
	layoutCmd.Flags().Float64Var(&viewHeight, "height", 0, "viewport height")

	renderCmd := &cobra.Command{
		Use:   "render",
		Short: "draw the tiles of a data file in the terminal",
		RunE:  runRender,
	}
	addInputFlags(renderCmd)
	renderCmd.Flags().IntVar(&termWidth, "width", render.DefaultTermWidth, "terminal width in cells")

	browseCmd := &cobra.Command{
		Use:   "browse",
		Short: "select tiles of a data file interactively",
		RunE:  runBrowse,
	}
	addInputFlags(browseCmd)

	serveCmd := &cobra.Command{
		Use:   "serve",
		Short: "start the HTTP API and preview",
		RunE:  runServe,
	}
	serveCmd.Flags().StringVar(&cfgFile, "config", "", "path to settings file (YAML or TOML)")
	serveCmd.Flags().StringVar(&dataFile, "data", "", "data file to load at startup")
	serveCmd.Flags().IntVar(&servePort, "port", 8080, "HTTP server port")
	addStoreFlags(serveCmd)

	configCmd := &cobra.Command{
		Use:   "config",
		Short: "read and edit the settings file",
	}
	configSetCmd := &cobra.Command{
		Use:   "set KEY VALUE",
		Short: "set one setting, keeping comments and layout",
		Args:  cobra.ExactArgs(2),
		RunE:  runConfigSet,
	}
	configGetCmd := &cobra.Command{
		Use:   "get KEY",
		Short: "print one setting",
		Args:  cobra.ExactArgs(1),
		RunE:  runConfigGet,
	}
	configKeysCmd := &cobra.Command{
		Use:   "keys",
		Short: "list the setting keys",
		RunE: func(cmd *cobra.Command, args []string) error {
			for _, k := range config.Keys() {
				fmt.Fprintln(cmd.OutOrStdout(), k)
			}
			return nil
		},
	}
	for _, c := range []*cobra.Command{configSetCmd, configGetCmd} {
		c.Flags().StringVar(&cfgFile, "config", "", "path to settings file (required)")
		c.MarkFlagRequired("config")
	}
	configCmd.AddCommand(configSetCmd, configGetCmd, configKeysCmd)

	selectionCmd := &cobra.Command{
		Use:   "selection",
		Short: "inspect the saved selection",
	}
	selectionShowCmd := &cobra.Command{
		Use:   "show",
		Short: "print the saved selection",
		RunE:  runSelectionShow,
	}
	selectionClearCmd := &cobra.Command{
		Use:   "clear",
		Short: "remove the saved selection",
		RunE:  runSelectionClear,
	}
	for _, c := range []*cobra.Command{selectionShowCmd, selectionClearCmd} {
		c.Flags().StringVar(&cfgFile, "config", "", "path to settings file")
		addStoreFlags(c)
	}
	selectionCmd.AddCommand(selectionShowCmd, selectionClearCmd)

	rootCmd.AddCommand(layoutCmd, renderCmd, browseCmd, serveCmd, configCmd, selectionCmd)
	return rootCmd
}

func addInputFlags(cmd *cobra.Command) {
	cmd.Flags().StringVar(&dataFile, "data", "", "data file (JSON, YAML or TOML) (required)")
	cmd.Flags().StringVar(&cfgFile, "config", "", "path to settings file (YAML or TOML)")
	cmd.Flags().StringArrayVar(&overrides, "set", nil, "override a setting, as section.key=value")
	cmd.MarkFlagRequired("data")
	addStoreFlags(cmd)
}

func addStoreFlags(cmd *cobra.Command) {
	cmd.Flags().StringVar(&backend, "backend", persist.BackendMemory, "selection store: memory, file, config or redis")
	cmd.Flags().StringVar(&instance, "instance", persist.DefaultInstance, "slicer instance name")
	cmd.Flags().StringVar(&storeDir, "store-dir", "", "file store directory (default ~/.config/chiclet-slicer/selections)")
	cmd.Flags().StringVar(&redisAddr, "redis-addr", "localhost:6379", "redis address")
	cmd.Flags().StringVar(&redisPassword, "redis-password", "", "redis password")
	cmd.Flags().IntVar(&redisDB, "redis-db", 0, "redis database")
	cmd.Flags().DurationVar(&redisTTL, "redis-ttl", 0, "redis key expiry (0 keeps forever)")
}

func parseOverrides(pairs []string) (map[string]string, error) {
	out := make(map[string]string, len(pairs))
	for _, p := range pairs {
		k, v, ok := strings.Cut(p, "=")
		if !ok || strings.TrimSpace(k) == "" {
			return nil, errs.New(errs.ErrCodeInvalidInput, "override '%s' is not section.key=value", p)
		}
		out[strings.TrimSpace(k)] = v
	}
	return out, nil
}

func loadConfig(logger *log.Logger) (*config.Config, error) {
	sets, err := parseOverrides(overrides)
	if err != nil {
		return nil, err
	}
	var cfg *config.Config
	if cfgFile != "" {
		cfg, err = config.Load(cfgFile, sets)
		if err != nil {
			return nil, err
		}
	} else {
		cfg = config.Default()
		keys := make([]string, 0, len(sets))
		for k := range sets {
			keys = append(keys, k)
		}
		sort.Strings(keys)
		for _, k := range keys {
			if err := cfg.Set(k, sets[k]); err != nil {
				return nil, err
			}
		}
	}
	if err := cfg.Validate(); err != nil {
		logger.Warn("settings out of range, clamping", "err", errs.UserMessage(err))
	}
	return cfg, nil
}

func openStore(ctx context.Context) (persist.Store, error) {
	return persist.Open(ctx, persist.Options{
		Backend:       backend,
		Instance:      instance,
		Dir:           storeDir,
		ConfigPath:    cfgFile,
		RedisAddr:     redisAddr,
		RedisPassword: redisPassword,
		RedisDB:       redisDB,
		TTL:           redisTTL,
	})
}

// loadSlicer builds a slicer from the settings and data flags. A data file
// without categories yields a slicer in the no data state.
func loadSlicer(ctx context.Context) (*slicer.Slicer, *config.Config, persist.Store, error) {
	logger := loggerFromContext(ctx)
	cfg, err := loadConfig(logger)
	if err != nil {
		return nil, nil, nil, err
	}
	dv, err := source.Load(dataFile)
	if err != nil {
		return nil, nil, nil, err
	}
	store, err := openStore(ctx)
	if err != nil {
		return nil, nil, nil, err
	}

	s := slicer.New(slicer.Options{
		Settings:    cfg.Settings(),
		Persistence: store,
		Minter:      slicer.NewUUIDMinter(persist.InstanceName(instance)),
		Logger:      logger,
	})
	res, err := s.Update(ctx, dv)
	if err != nil && !errs.Is(err, errs.ErrCodeNoData) {
		store.Close()
		return nil, nil, nil, err
	}
	if res.NoData {
		logger.Warn("no data", "file", dataFile, "reason", errs.UserMessage(err))
	} else {
		logger.Debug("loaded", "file", dataFile, "items", res.Items, "groups", res.Groups)
	}
	return s, cfg, store, nil
}

func runLayout(cmd *cobra.Command, args []string) error {
	ctx := cmd.Context()
	s, cfg, store, err := loadSlicer(ctx)
	if err != nil {
		return err
	}
	defer store.Close()

	if viewWidth > 0 || viewHeight > 0 {
		s.Resize(ctx, viewWidth, viewHeight)
	}
	doc := render.BuildDocument(s.State(), cfg)

	out := outputFile
	if !dryRun {
		if err := os.MkdirAll(filepath.Dir(out), 0755); err != nil {
			return err
		}
	}
	w := cmd.OutOrStdout()
	fmt.Fprintln(w, "chiclet slicer layout:")
	if _, err := render.WriteLayout(doc, out, dryRun, w); err != nil {
		return err
	}
	fmt.Fprintf(w, "\n  total: %d rows x %d columns, %d selected\n",
		doc.ComputedRows, doc.ComputedColumns, len(doc.Selection.Keys))
	return nil
}

func runRender(cmd *cobra.Command, args []string) error {
	s, cfg, store, err := loadSlicer(cmd.Context())
	if err != nil {
		return err
	}
	defer store.Close()

	term := render.NewTerminal(cfg, termWidth)
	fmt.Fprintln(cmd.OutOrStdout(), term.Render(s.State()))
	return nil
}

func runBrowse(cmd *cobra.Command, args []string) error {
	ctx := cmd.Context()
	s, cfg, store, err := loadSlicer(ctx)
	if err != nil {
		return err
	}
	defer store.Close()

	p := tea.NewProgram(render.NewBrowser(ctx, s, cfg), tea.WithAltScreen(), tea.WithContext(ctx))
	if _, err := p.Run(); err != nil {
		return err
	}
	n := s.Selection().Len()
	loggerFromContext(ctx).Info("selection", "selected", n, "store", store.Name())
	return nil
}

func runServe(cmd *cobra.Command, args []string) error {
	ctx := cmd.Context()
	logger := loggerFromContext(ctx)
	store, err := openStore(ctx)
	if err != nil {
		return err
	}
	defer store.Close()

	srv, err := server.New(cfgFile, instance, store, logger)
	if err != nil {
		return err
	}
	if dataFile != "" {
		if err := srv.LoadData(ctx, dataFile); err != nil {
			return err
		}
	}
	addr := fmt.Sprintf(":%d", servePort)
	return srv.ListenAndServe(ctx, addr)
}

func runConfigSet(cmd *cobra.Command, args []string) error {
	if args[0] == config.SavedSelectionKey {
		return errs.New(errs.ErrCodeInvalidInput, "'%s' is managed by the selection store", args[0])
	}
	if err := config.SetSetting(cfgFile, args[0], args[1]); err != nil {
		return err
	}
	loggerFromContext(cmd.Context()).Info("setting updated", "key", args[0], "file", cfgFile)
	return nil
}

func runConfigGet(cmd *cobra.Command, args []string) error {
	cfg, err := config.Load(cfgFile, nil)
	if err != nil {
		return err
	}
	v, ok := cfg.Get(args[0])
	if !ok {
		return errs.New(errs.ErrCodeNotFound, "unknown setting '%s'", args[0])
	}
	fmt.Fprintln(cmd.OutOrStdout(), v)
	return nil
}

func runSelectionShow(cmd *cobra.Command, args []string) error {
	ctx := cmd.Context()
	store, err := openStore(ctx)
	if err != nil {
		return err
	}
	defer store.Close()

	snap, err := store.LoadSelection(ctx)
	if err != nil {
		return err
	}
	w := cmd.OutOrStdout()
	if snap.Empty() {
		fmt.Fprintf(w, "%s: no saved selection\n", store.Name())
		return nil
	}
	fmt.Fprintf(w, "%s: %d selected (inverted: %v)\n", store.Name(), len(snap.Keys), snap.Inverted)
	for _, k := range snap.Keys {
		fmt.Fprintf(w, "  %s\n", k)
	}
	return nil
}

func runSelectionClear(cmd *cobra.Command, args []string) error {
	ctx := cmd.Context()
	store, err := openStore(ctx)
	if err != nil {
		return err
	}
	defer store.Close()

	if err := store.Clear(ctx); err != nil {
		return err
	}
	loggerFromContext(ctx).Info("selection cleared", "store", store.Name())
	return nil
}
