package main

import (
	"context"
	"flag"
	"fmt"
	"log"
	"os"
	"path/filepath"
	"time"

	"github.com/ivlev/textclip/internal/config"
	"github.com/ivlev/textclip/internal/controller"
	"github.com/ivlev/textclip/internal/pipeline"
	"github.com/ivlev/textclip/internal/style"
	"github.com/ivlev/textclip/internal/system"
)

// Flag defaults, also used by merge to tell "left alone" from "set".
const (
	defaultDuration = 8
	defaultWidth    = 1280
	defaultHeight   = 720
	defaultFPS      = 30
)

func main() {
	system.InitResourceLimits()

	scriptPtr := flag.String("script", "", "Script text (newline-delimited)")
	scriptFilePtr := flag.String("script-file", "", "Path to a script text file (overrides -script)")
	outputPtr := flag.String("output", "", "Output path (default: output/clip_<timestamp>.<ext>)")
	durationPtr := flag.Float64("duration", defaultDuration, "Clip duration in whole seconds (recommended 4-14)")
	stylePtr := flag.String("style", "", "Style preset id (default: first catalog entry)")
	catalogPtr := flag.String("styles", "", "Optional YAML style catalog")
	linkPtr := flag.String("link", "", "Optional share link rendered as a QR badge in the outro")
	fpsPtr := flag.Int("fps", defaultFPS, "Frames per second")
	widthPtr := flag.Int("width", defaultWidth, "Width")
	heightPtr := flag.Int("height", defaultHeight, "Height")
	qualityPtr := flag.Int("quality", 0, "Encoder CRF (0 = per-encoder default)")
	configPtr := flag.String("config", "", "Optional YAML config file (flags override)")
	statsPtr := flag.Bool("stats", false, "Print a performance report")

	flag.Parse()

	cfg := &config.Config{
		Script:       *scriptPtr,
		ScriptFile:   *scriptFilePtr,
		Output:       *outputPtr,
		Duration:     *durationPtr,
		Width:        *widthPtr,
		Height:       *heightPtr,
		FPS:          *fpsPtr,
		Quality:      *qualityPtr,
		StyleID:      *stylePtr,
		StyleCatalog: *catalogPtr,
		ShareLink:    *linkPtr,
		ShowStats:    *statsPtr,
	}

	if *configPtr != "" {
		fileCfg, err := config.Load(*configPtr)
		if err != nil {
			log.Fatalf("[-] Config error: %v", err)
		}
		merge(cfg, fileCfg)
	}

	if cfg.ScriptFile != "" {
		data, err := os.ReadFile(cfg.ScriptFile)
		if err != nil {
			log.Fatalf("[-] Script file error: %v", err)
		}
		cfg.Script = string(data)
	}

	if err := cfg.Validate(); err != nil {
		log.Fatalf("[-] Invalid parameters: %v", err)
	}
	if cfg.Duration < config.MinDuration || cfg.Duration > config.MaxDuration {
		fmt.Printf("[!] Duration %.0fs is outside the recommended %d-%ds range\n",
			cfg.Duration, config.MinDuration, config.MaxDuration)
	}

	catalog := style.Catalog()
	if cfg.StyleCatalog != "" {
		loaded, err := style.LoadCatalog(cfg.StyleCatalog)
		if err != nil {
			log.Fatalf("[-] Style catalog error: %v", err)
		}
		catalog = loaded
	}
	preset := style.LookupIn(catalog, cfg.StyleID)

	ctl, err := controller.New(controller.Options{
		Width:   cfg.Width,
		Height:  cfg.Height,
		FPS:     cfg.FPS,
		Quality: cfg.Quality,
	})
	if err != nil {
		log.Fatalf("[-] Setup error: %v", err)
	}

	capability, err := ctl.Capability(context.Background())
	if err != nil {
		log.Fatalf("[-] No supported container/codec pair. Is ffmpeg installed?")
	}
	fmt.Printf("[*] Negotiated %s (%s)\n", capability.Name, capability.MIME)
	fmt.Printf("[*] Style: %s | Duration: %.0fs | %dx%d @ %d FPS\n",
		preset.Name, cfg.Duration, cfg.Width, cfg.Height, cfg.FPS)

	startTime := time.Now()
	err = ctl.Start(pipeline.Request{
		Script:    cfg.Script,
		Duration:  time.Duration(cfg.Duration * float64(time.Second)),
		Style:     preset,
		ShareLink: cfg.ShareLink,
	})
	if err != nil {
		log.Fatalf("[-] Start error: %v", err)
	}

	poll := time.NewTicker(500 * time.Millisecond)
	defer poll.Stop()
	go func() {
		for range poll.C {
			st := ctl.Status()
			if st.State == controller.StateIdle {
				return
			}
			fmt.Printf("[>] %s %d%%\n", st.State, st.Progress)
		}
	}()

	ctl.Wait()

	st := ctl.Status()
	if st.Err != nil {
		log.Fatalf("[-] Generation failed: %v", st.Err)
	}

	outPath := cfg.Output
	if outPath == "" {
		os.MkdirAll("output", 0755)
		timestamp := time.Now().Format("2006-01-02_15-04-05")
		outPath = filepath.Join("output", fmt.Sprintf("clip_%s%s", timestamp, st.Artifact.Ext))
	}
	if err := os.WriteFile(outPath, st.Artifact.Data, 0644); err != nil {
		log.Fatalf("[-] Write error: %v", err)
	}

	if cfg.ShowStats {
		total := time.Since(startTime)
		fmt.Printf(
			"--- [PERFORMANCE REPORT] ---\n"+
				"Total Time: %.2fs\n"+
				"Clip Duration: %.2fs\n"+
				"Artifact Size: %d KiB\n"+
				"Realtime Factor: %.2fx\n"+
				"----------------------------\n",
			total.Seconds(), cfg.Duration, len(st.Artifact.Data)/1024, cfg.Duration/total.Seconds(),
		)
	}

	fmt.Printf("[+++] Done! Result: %s (%s)\n", outPath, st.Artifact.MIME)
}

func merge(dst, file *config.Config) {
	if dst.Script == "" {
		dst.Script = file.Script
	}
	if dst.ScriptFile == "" {
		dst.ScriptFile = file.ScriptFile
	}
	if dst.Output == "" {
		dst.Output = file.Output
	}
	if dst.StyleID == "" {
		dst.StyleID = file.StyleID
	}
	if dst.StyleCatalog == "" {
		dst.StyleCatalog = file.StyleCatalog
	}
	if dst.ShareLink == "" {
		dst.ShareLink = file.ShareLink
	}
	if file.Duration > 0 && dst.Duration == defaultDuration {
		dst.Duration = file.Duration
	}
	if file.Width > 0 && dst.Width == defaultWidth {
		dst.Width = file.Width
	}
	if file.Height > 0 && dst.Height == defaultHeight {
		dst.Height = file.Height
	}
	if file.FPS > 0 && dst.FPS == defaultFPS {
		dst.FPS = file.FPS
	}
	if file.Quality > 0 && dst.Quality == 0 {
		dst.Quality = file.Quality
	}
	if file.ShowStats {
		dst.ShowStats = true
	}
}
