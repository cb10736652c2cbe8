package main

import (
	"flag"
	"fmt"
	"log"
	"os"
	"path/filepath"

	"github.com/rs/zerolog"

	"gmosmask/internal/models"
	"gmosmask/pkg/config"
	"gmosmask/pkg/cutout"
	"gmosmask/pkg/edgefind"
	"gmosmask/pkg/geometry"
	"gmosmask/pkg/visualization"
)

func main() {
	// Parse command line arguments
	configPath := flag.String("config", "gmosmask.yaml", "Instrument configuration file (YAML)")
	writeConfig := flag.Bool("write-config", false, "Write the default configuration file and exit")
	naxis1 := flag.Int("naxis1", 2048, "Detector width in pixels")
	naxis2 := flag.Int("naxis2", 2048, "Detector height in pixels")
	previewDir := flag.String("preview-dir", "", "Directory for cutout preview images (overrides config)")
	flag.Parse()

	if *writeConfig {
		if err := config.CreateDefaultConfigFile(*configPath); err != nil {
			log.Fatalf("Failed to write config: %v", err)
		}
		fmt.Printf("Default configuration written to %s\n", *configPath)
		return
	}

	cfg, err := config.LoadConfig(*configPath)
	if err != nil {
		log.Fatalf("Failed to load config: %v", err)
	}

	level := zerolog.InfoLevel
	if cfg.Output.Verbose {
		level = zerolog.DebugLevel
	}
	logger := zerolog.New(zerolog.ConsoleWriter{Out: os.Stderr}).
		Level(level).
		With().Timestamp().Logger()

	optics, err := cfg.Optics()
	if err != nil {
		log.Fatalf("Invalid instrument configuration: %v", err)
	}

	// Demonstration mask: a short strip of slits across the mask center.
	table := &models.MaskTable{
		Slits: []models.Slit{
			{ID: 1, PosMX: 0, PosMY: -40, SizeMX: 0.5, SizeMY: 5},
			{ID: 2, PosMX: 10, PosMY: -10, SizeMX: 0.5, SizeMY: 5},
			{ID: 3, PosMX: -15, PosMY: 20, SizeMX: 0.5, SizeMY: 5},
			{ID: 4, PosMX: 5, PosMY: 50, SizeMX: 0.5, SizeMY: 5},
		},
	}

	fmt.Println("Step 1: Computing slit sections...")
	mapper, err := geometry.NewMapper(optics, logger)
	if err != nil {
		log.Fatalf("Failed to create mapper: %v", err)
	}
	prepared, err := mapper.Prepare(table, *naxis1, *naxis2)
	if err != nil {
		log.Fatalf("Geometry mapping failed: %v", err)
	}
	for i, sec := range prepared.Sections {
		fmt.Printf("  slit %d: x=[%d,%d) y=[%d,%d) refpix=%.2f\n",
			prepared.Slits[i].ID, sec.SecX1, sec.SecX2, sec.SecY1, sec.SecY2, sec.RefPix1)
	}

	fmt.Println("Step 2: Building synthetic flat with the computed sections...")
	flat := models.NewFrame(*naxis1, *naxis2)
	for _, sec := range prepared.Sections {
		flat.Fill(sec.SecX1, sec.SecX2, sec.SecY1, sec.SecY2, 1000)
	}

	fmt.Println("Step 3: Locating mask edges on the flat...")
	finder := edgefind.New(cfg.EdgeParams(), logger)
	edges, err := finder.Find(flat)
	if err != nil {
		log.Fatalf("Edge search failed: %v", err)
	}
	fmt.Printf("  found %d lower and %d upper edges\n", len(edges.LowerEdges), len(edges.UpperEdges))
	for i := range edges.LowerEdges {
		fmt.Printf("  lower edge at row %.2f\n", edges.LowerEdges[i])
	}
	for i := range edges.UpperEdges {
		fmt.Printf("  upper edge at row %.2f\n", edges.UpperEdges[i])
	}

	fmt.Println("Step 4: Cutting slits...")
	bundle, annotated, err := cutout.Cut(flat, prepared, cutout.Options{ReturnCutImage: true})
	if err != nil {
		log.Fatalf("Cutting failed: %v", err)
	}
	for _, c := range bundle.Cutouts {
		fmt.Printf("  %s: %dx%d pixels\n", c.Name, c.Data.Width, c.Data.Height)
	}

	dir := cfg.Output.PreviewDir
	if *previewDir != "" {
		dir = *previewDir
	}
	if dir != "" {
		fmt.Printf("Step 5: Writing previews to %s...\n", dir)
		if err := visualization.SaveBundle(bundle, dir); err != nil {
			log.Fatalf("Failed to save previews: %v", err)
		}
		if err := visualization.SavePNG(annotated, filepath.Join(dir, "annotated.png")); err != nil {
			log.Fatalf("Failed to save annotated frame: %v", err)
		}
	}

	fmt.Println("Done.")
}
