package main

import (
	"context"
	"encoding/json"
	"errors"
	"flag"
	"fmt"
	"mime"
	"os"
	"os/signal"
	"path/filepath"
	"strings"
	"syscall"
	"time"

	"github.com/joho/godotenv"

	"github.com/fasion-image-generator-project/FashionFusion/internal/domain"
	"github.com/fasion-image-generator-project/FashionFusion/internal/infra"
	"github.com/fasion-image-generator-project/FashionFusion/internal/remote"
	"github.com/fasion-image-generator-project/FashionFusion/internal/stylemix"
)

func main() {
	var (
		imageFlag    string
		outFlag      string
		paramsFlag   string
		seedsFlag    int
		intervalFlag time.Duration
		timeoutFlag  time.Duration
		zipFlag      bool
	)

	flag.StringVar(&imageFlag, "image", "", "image file to vary (png, jpeg, webp)")
	flag.StringVar(&outFlag, "out", "style_mix", "directory receiving the generated images")
	flag.StringVar(&paramsFlag, "params", "", `JSON style mixing parameters, e.g. {"layer_cutoff":6,"seed_range":[0,500]}`)
	flag.IntVar(&seedsFlag, "seeds", 0, "number of variations (overrides -params)")
	flag.DurationVar(&intervalFlag, "interval", stylemix.DefaultPollInterval, "delay between status polls")
	flag.DurationVar(&timeoutFlag, "timeout", 10*time.Minute, "give up after this long")
	flag.BoolVar(&zipFlag, "zip", false, "keep the downloaded archive instead of extracting it")
	flag.Parse()

	_ = godotenv.Load()

	if strings.TrimSpace(imageFlag) == "" {
		exitWithError(errors.New("-image is required"))
	}
	var params domain.StyleMixingParams
	if paramsFlag != "" {
		if err := json.Unmarshal([]byte(paramsFlag), &params); err != nil {
			exitWithError(fmt.Errorf("invalid -params: %w", err))
		}
	}
	if seedsFlag > 0 {
		params.NumSeeds = seedsFlag
	}

	data, err := os.ReadFile(imageFlag)
	if err != nil {
		exitWithError(fmt.Errorf("read image: %w", err))
	}
	image := domain.ImageFromBytes(data, mime.TypeByExtension(strings.ToLower(filepath.Ext(imageFlag))))
	if !strings.HasPrefix(image.MIMEType, "image/") {
		exitWithError(fmt.Errorf("%s is not an image (%s)", imageFlag, image.MIMEType))
	}

	cfg, err := infra.LoadConfig()
	if err != nil {
		exitWithError(err)
	}
	logger := infra.NewLogger(cfg.AppEnv, "stylemix").With().Str("cmd", "stylemix").Logger()
	client := remote.New(cfg.Remote, &logger, nil)
	runner := stylemix.NewRunner(client, &logger)

	ctx, cancel := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer cancel()
	ctx, cancelTimeout := context.WithTimeout(ctx, timeoutFlag)
	defer cancelTimeout()

	sub, err := runner.Start(ctx, image, params)
	if err != nil {
		exitWithError(err)
	}
	fmt.Printf("job %s submitted (%d seeds)\n", sub.JobID, sub.NumSeeds)

	_, err = runner.Wait(ctx, sub.JobID, intervalFlag, func(st domain.JobState) {
		fmt.Printf("  %-10s %3.0f%% %s\n", st.Status, st.Progress*100, st.Message)
	})
	if err != nil {
		exitWithError(err)
	}

	archive, err := runner.Download(ctx, sub.JobID)
	if err != nil {
		exitWithError(err)
	}
	if err := os.MkdirAll(outFlag, 0o755); err != nil {
		exitWithError(fmt.Errorf("create output dir: %w", err))
	}

	if zipFlag {
		path := filepath.Join(outFlag, "style_mix_"+sub.JobID+".zip")
		if err := os.WriteFile(path, archive, 0o644); err != nil {
			exitWithError(fmt.Errorf("write archive: %w", err))
		}
		fmt.Println(path)
		return
	}

	assets, err := stylemix.Extract(archive)
	if err != nil {
		exitWithError(err)
	}
	for _, asset := range assets {
		content, err := asset.Image.Bytes()
		if err != nil {
			exitWithError(fmt.Errorf("decode %s: %w", asset.Filename, err))
		}
		path := filepath.Join(outFlag, asset.Filename)
		if err := os.WriteFile(path, content, 0o644); err != nil {
			exitWithError(fmt.Errorf("write %s: %w", path, err))
		}
		fmt.Println(path)
	}
	logger.Info().Str("job_id", sub.JobID).Int("images", len(assets)).Msg("style mixing finished")
}

func exitWithError(err error) {
	fmt.Fprintln(os.Stderr, err)
	os.Exit(1)
}
