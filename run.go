package pokedex

import (
	"context"
	"errors"
	"flag"
	"fmt"
	"os"
	"os/signal"
	"path/filepath"
	"strings"
)

// minCacheDiskSpace is how much free space the data dir needs before the
// cache is used at all.
const minCacheDiskSpace int64 = 50 << 20

// Run parses commandline options (if any) and starts one of the program
// modes: a single lookup, the cache prefetch, the local HTTP interface, or
// the GUI.
//
// Commandline parameters are:
//
//	-name      // Look up a single Pokémon and print its card
//	-json      // With -name: print the raw API response instead
//	-prefetch  // Fetch the first N Pokémon into the cache
//	-history   // Print recent lookups
//	-serve     // Start the local HTTP interface
//	-open      // With -serve: open the browser on the bound address
//	-launcher  // Create a desktop launcher entry and exit
//	-lang      // Choose display language. This also affects the GUI mode.
//	-no-cache  // Don't read or write the on-disk cache
//
// Giving any mode parameter triggers commandline mode; without one the GUI
// is started. -lang also sets the GUI language.
func Run() int {
	openBoxes()
	config, err := NewConfig()
	if err != nil {
		fmt.Println(err)
		return 1
	}
	dataDir, err := config.ResolveDataDir()
	if err != nil {
		fmt.Println(err)
		return 1
	}
	logfile := startLogging(filepath.Join(dataDir, logFilename), config)
	defer logfile.Close()

	if binary, err := os.Executable(); err == nil {
		config.Variables["binary"] = binary
	} else {
		config.Variables["binary"] = os.Args[0]
	}
	translator := NewTranslatorVar(config.Variables)
	if config.Language != "" {
		if err := translator.SetLanguage(config.Language); err != nil {
			logger.Warn().Str("lang", config.Language).Msg("configured language not available")
		}
	}

	name := flag.String("name", "", translator.Get("cli_help_name"))
	jsonOut := flag.Bool("json", false, translator.Get("cli_help_json"))
	prefetchCount := flag.Int("prefetch", 0, translator.Get("cli_help_prefetch"))
	history := flag.Bool("history", false, translator.Get("cli_help_history"))
	serve := flag.Bool("serve", false, translator.Get("cli_help_serve"))
	openBrowser := flag.Bool("open", false, translator.Get("cli_help_open"))
	launcher := flag.Bool("launcher", false, translator.Get("cli_help_launcher"))
	noCache := flag.Bool("no-cache", false, translator.Get("cli_help_nocache"))
	lang := flag.String("lang", "", translator.Get("cli_help_lang")+" "+strings.Join(translator.GetLanguages(), ", "))
	flag.Parse()

	if len(*lang) > 0 {
		if err := translator.SetLanguage(*lang); err != nil {
			fmt.Printf("Language '%s' not available\n", *lang)
		}
	}
	if *noCache {
		config.NoCache = true
	}
	if space := osDiskSpace(dataDir); space >= 0 && space < minCacheDiskSpace {
		logger.Warn().Int64("bytes", space).Msg("low disk space, disabling cache")
		config.NoCache = true
	}

	var cache *Cache
	if !config.NoCache {
		cache, err = OpenCache(filepath.Join(dataDir, "cache"), config.CacheTTL())
		if err != nil {
			logger.Warn().Err(err).Msg("unable to open cache, continuing without")
			cache = nil
		} else {
			defer cache.Close()
		}
	}
	client := NewClient(config.APIBase, config.Timeout(), config.RatePerSecond, cache)

	switch {
	case *launcher:
		path, err := osCreateLauncherEntry(config.Variables)
		if err != nil {
			logger.Error().Err(err).Msg("unable to create launcher entry")
			fmt.Println(translator.Get("err_launcher_failed"))
			return 1
		}
		fmt.Println(translator.Get("launcher_created"), path)
		return 0
	case *history:
		names := cache.Recent(config.HistoryLimit)
		if len(names) == 0 {
			fmt.Println(translator.Get("history_empty"))
			return 0
		}
		for _, n := range names {
			fmt.Println(n)
		}
		return 0
	case *prefetchCount > 0:
		return RunPrefetch(client, translator, *prefetchCount)
	case len(*name) > 0:
		return RunLookup(client, translator, config, *name, *jsonOut)
	case *serve:
		return NewServer(client, translator).Serve(config.ListenAddr, *openBrowser)
	}
	return RunGui(client, translator, config)
}

// RunLookup fetches a single Pokémon and prints its card (or the raw JSON)
// to stdout.
func RunLookup(client *Client, translator *Translator, config *Config, rawName string, jsonOut bool) int {
	name, err := SanitizeName(rawName)
	if err != nil {
		logger.Debug().Err(err).Msg("rejected name")
		fmt.Println(translator.Get("err_invalid_name"))
		return 1
	}
	ctx, cancel := context.WithTimeout(context.Background(), 2*config.Timeout())
	defer cancel()
	p, raw, err := client.Lookup(ctx, name)
	if err != nil {
		if errors.Is(err, ErrNotFound) {
			fmt.Printf("%s: %s\n", translator.Get("err_not_found"), name)
		} else {
			logger.Error().Err(err).Str("name", name).Msg("lookup failed")
			fmt.Println(translator.Get("err_network"))
		}
		return 1
	}
	if jsonOut {
		os.Stdout.Write(raw)
		fmt.Println()
	} else {
		RenderCard(os.Stdout, p, translator)
	}
	return 0
}

// RunPrefetch bulk-fetches the first count Pokémon into the cache, with a
// single-line progress display and rollback on Ctrl+C.
func RunPrefetch(client *Client, translator *Translator, count int) int {
	prefetcher := NewPrefetcher(client, count)
	cancelChannel := make(chan os.Signal, 1)
	signal.Notify(cancelChannel, os.Interrupt)
	prefetcher.SetProgressFunction(func(status PrefetchStatus) {
		if entry := prefetcher.NextEntry(); entry != nil {
			fmt.Print(progressLine(entry.Name))
		}
	})
	fmt.Println(translator.Get("prefetch_start"))
	prefetcher.Start(context.Background())
	go func() {
		for range cancelChannel {
			if !prefetcher.Done() {
				prefetcher.Rollback()
			}
		}
	}()
	aborted := prefetcher.WaitForDone()
	if aborted {
		fmt.Println(clearLineVT100 + translator.Get("prefetch_aborted"))
		return 1
	}
	if prefetcher.Error() != nil {
		logger.Error().Err(prefetcher.Error()).Msg("prefetch failed")
		fmt.Println(clearLineVT100 + translator.Get("prefetch_failed"))
		return 1
	}
	fetched, failed := prefetcher.Counts()
	fmt.Printf(clearLineVT100+"%s (%d/%d)\n", translator.Get("prefetch_done"), fetched, fetched+failed)
	return 0
}

// RunGui unpacks the GUI definition and starts the GTK interface.
//
// When the GUI fails to load it will log the error and print usage help to
// the command line. (Which of course, will only be visible if started via
// command-line and not via double-click.)
func RunGui(client *Client, translator *Translator, config *Config) int {
	tempPath := filepath.Join(os.TempDir(), "pokedex")
	defer os.RemoveAll(tempPath)
	if err := UnpackResourceDir("gui", tempPath); err != nil {
		handleGuiErr(translator.Get("err_gui_startup_failed"), err)
		return 4
	}
	gui, err := NewGui(tempPath, client, translator, config)
	if err != nil {
		handleGuiErr(translator.Get("err_gui_startup_failed"), err)
		return 4
	}
	gui.run()
	return 0
}

// handleGuiErr prints and logs GUI startup errors, and prints the
// commandline usage.
func handleGuiErr(msg string, errs ...error) {
	for _, err := range errs {
		if err != nil {
			logger.Error().Err(err).Msg("unable to load GUI")
		}
	}
	if len(msg) > 0 {
		fmt.Println(msg)
	}
	flag.PrintDefaults()
}
