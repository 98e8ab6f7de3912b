package main

import (
	"context"
	"errors"
	"fmt"
	"io"
	"log/slog"
	"net/http"
	"os"
	"os/signal"
	"strings"
	"syscall"
	"time"

	"github.com/carlmjohnson/versioninfo"
	_ "github.com/joho/godotenv/autoload"
	cli "github.com/urfave/cli/v2"
)

func main() {
	if err := run(os.Args); err != nil {
		slog.Error("exiting", "err", err)
		os.Exit(-1)
	}
}

func run(args []string) error {

	app := cli.App{
		Name:    "arbiter",
		Usage:   "moderation oracle for civic reports (decides what gets on the record)",
		Version: versioninfo.Short(),
	}

	app.Flags = []cli.Flag{
		&cli.StringFlag{
			Name:    "log-level",
			Usage:   "log verbosity level (eg: warn, info, debug)",
			EnvVars: []string{"ARBITER_LOG_LEVEL", "GO_LOG_LEVEL", "LOG_LEVEL"},
		},
	}

	app.Commands = []*cli.Command{
		runCmd,
		checkCmd,
	}

	return app.Run(args)
}

var runCmd = &cli.Command{
	Name:  "run",
	Usage: "run the moderation service",
	Flags: []cli.Flag{
		&cli.StringFlag{
			Name:    "bind",
			Usage:   "IP or address, and port, to listen on for the moderation API",
			Value:   ":8700",
			EnvVars: []string{"ARBITER_BIND"},
		},
		&cli.StringFlag{
			Name:    "metrics-listen",
			Usage:   "IP or address, and port, to listen on for metrics APIs",
			Value:   ":8701",
			EnvVars: []string{"ARBITER_METRICS_LISTEN"},
		},
		&cli.StringFlag{
			Name:    "inference-host",
			Usage:   "base URL of the hosted-inference API for all classifier models",
			Value:   "https://api-inference.huggingface.co",
			EnvVars: []string{"ARBITER_INFERENCE_HOST"},
		},
		&cli.StringFlag{
			Name:    "inference-api-token",
			Usage:   "bearer token for the hosted-inference API",
			EnvVars: []string{"ARBITER_INFERENCE_API_TOKEN"},
		},
		&cli.StringFlag{
			Name:    "toxicity-model",
			Value:   "unitary/toxic-bert",
			EnvVars: []string{"ARBITER_TOXICITY_MODEL"},
		},
		&cli.StringFlag{
			Name:    "spam-model",
			Value:   "mrm8488/bert-tiny-finetuned-sms-spam-detection",
			EnvVars: []string{"ARBITER_SPAM_MODEL"},
		},
		&cli.StringFlag{
			Name:    "image-safety-model",
			Value:   "Falconsai/nsfw_image_detection",
			EnvVars: []string{"ARBITER_IMAGE_SAFETY_MODEL"},
		},
		&cli.StringFlag{
			Name:    "relevance-model",
			Value:   "openai/clip-vit-base-patch32",
			EnvVars: []string{"ARBITER_RELEVANCE_MODEL"},
		},
		&cli.StringFlag{
			Name:    "face-detector-host",
			Usage:   "base URL of the face detection sidecar; empty disables face anonymization and video privacy checks",
			EnvVars: []string{"ARBITER_FACE_DETECTOR_HOST"},
		},
		&cli.StringFlag{
			Name:    "plate-detector-host",
			Usage:   "base URL of the legacy license plate detection sidecar; empty disables plate blurring",
			EnvVars: []string{"ARBITER_PLATE_DETECTOR_HOST"},
		},
		&cli.StringFlag{
			Name:    "signing-key",
			Usage:   "hex-encoded secp256k1 private key for attestation signing",
			EnvVars: []string{"ARBITER_SIGNING_KEY", "ORACLE_PRIVATE_KEY"},
		},
	},
	Action: func(cctx *cli.Context) error {
		logger := configLogger(cctx, os.Stdout)

		srv, err := NewServer(Config{
			Logger:            logger,
			InferenceHost:     cctx.String("inference-host"),
			InferenceAPIToken: cctx.String("inference-api-token"),
			ToxicityModel:     cctx.String("toxicity-model"),
			SpamModel:         cctx.String("spam-model"),
			ImageSafetyModel:  cctx.String("image-safety-model"),
			RelevanceModel:    cctx.String("relevance-model"),
			FaceDetectorHost:  cctx.String("face-detector-host"),
			PlateDetectorHost: cctx.String("plate-detector-host"),
			SigningKeyHex:     cctx.String("signing-key"),
		})
		if err != nil {
			return err
		}

		go func() {
			if err := srv.RunMetrics(cctx.String("metrics-listen")); err != nil {
				slog.Error("failed to start metrics endpoint", "error", err)
				panic(fmt.Errorf("failed to start metrics endpoint: %w", err))
			}
		}()

		errCh := make(chan error, 1)
		go func() {
			if err := srv.RunAPI(cctx.String("bind")); err != nil && !errors.Is(err, http.ErrServerClosed) {
				errCh <- err
			}
		}()

		quit := make(chan os.Signal, 1)
		signal.Notify(quit, syscall.SIGINT, syscall.SIGTERM)
		select {
		case err := <-errCh:
			return fmt.Errorf("failed to run moderation service: %w", err)
		case sig := <-quit:
			logger.Info("shutting down", "signal", sig.String())
		}

		ctx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
		defer cancel()
		return srv.Shutdown(ctx)
	},
}

func configLogger(cctx *cli.Context, writer io.Writer) *slog.Logger {
	var level slog.Level
	switch strings.ToLower(cctx.String("log-level")) {
	case "error":
		level = slog.LevelError
	case "warn":
		level = slog.LevelWarn
	case "info":
		level = slog.LevelInfo
	case "debug":
		level = slog.LevelDebug
	default:
		level = slog.LevelInfo
	}
	logger := slog.New(slog.NewJSONHandler(writer, &slog.HandlerOptions{
		Level: level,
	}))
	slog.SetDefault(logger)
	return logger
}
