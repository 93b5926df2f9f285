package main

import (
	"context"
	"flag"
	"fmt"
	"os"
	"time"

	"github.com/joseph-ayodele/bill-scanner/internal/app"
	"github.com/joseph-ayodele/bill-scanner/internal/common"
)

func main() {
	var (
		engine  = flag.String("engine", "", "override OCR_ENGINE (tesseract|azure)")
		enhance = flag.Bool("enhance", false, "enhance rendered pages before recognition")
		timeout = flag.Duration("timeout", 2*time.Minute, "overall deadline")
	)
	flag.Parse()

	cfg := common.LoadConfig()
	logger := app.NewLogger(cfg.Debug, os.Stderr)

	if flag.NArg() != 1 {
		logger.Error("usage", "cmd", "runocr [-engine tesseract|azure] [-enhance] <bill.pdf>")
		os.Exit(2)
	}
	path := flag.Arg(0)
	if *engine != "" {
		cfg.OCR.Engine = *engine
	}
	if *enhance {
		cfg.OCR.Enhance = true
	}

	ctx, cancel := context.WithTimeout(context.Background(), *timeout)
	defer cancel()

	tx := app.NewTextExtractor(cfg.OCR, logger)

	start := time.Now()
	res, err := tx.Extract(ctx, path)
	dur := time.Since(start)
	if err != nil {
		logger.Error("text extraction failed", "path", path, "error", err, "duration_ms", dur.Milliseconds())
		os.Exit(1)
	}

	logger.Info("text extraction OK",
		"path", path,
		"method", res.Method,
		"pages", res.Pages,
		"confidence", res.Confidence,
		"bytes", len(res.Text),
		"warnings", len(res.Warnings),
		"duration_ms", dur.Milliseconds(),
	)
	fmt.Println(res.Text)
}
