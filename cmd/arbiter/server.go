package main

import (
	"context"
	"log/slog"
	"net/http"
	"os"
	"time"

	"github.com/civicsignal/arbiter/media"
	"github.com/civicsignal/arbiter/moderation"
	"github.com/civicsignal/arbiter/moderation/classifier"
	"github.com/civicsignal/arbiter/moderation/detector"
	"github.com/civicsignal/arbiter/oracle"

	"github.com/labstack/echo/v4"
	"github.com/labstack/echo/v4/middleware"
	"github.com/prometheus/client_golang/prometheus/promhttp"
	slogecho "github.com/samber/slog-echo"
)

type Server struct {
	logger         *slog.Logger
	engine         *moderation.Engine
	echo           *echo.Echo
	requestTimeout time.Duration
}

type Config struct {
	Logger            *slog.Logger
	InferenceHost     string
	InferenceAPIToken string
	ToxicityModel     string
	SpamModel         string
	ImageSafetyModel  string
	RelevanceModel    string
	FaceDetectorHost  string
	PlateDetectorHost string
	SigningKeyHex     string
}

func NewServer(config Config) (*Server, error) {
	logger := config.Logger
	if logger == nil {
		logger = slog.New(slog.NewJSONHandler(os.Stdout, &slog.HandlerOptions{
			Level: slog.LevelInfo,
		}))
	}

	toxicity := classifier.NewInferenceClient(config.InferenceHost, config.InferenceAPIToken, config.ToxicityModel)
	spam := classifier.NewInferenceClient(config.InferenceHost, config.InferenceAPIToken, config.SpamModel)
	imageSafety := classifier.NewInferenceClient(config.InferenceHost, config.InferenceAPIToken, config.ImageSafetyModel)
	relevance := classifier.NewInferenceClient(config.InferenceHost, config.InferenceAPIToken, config.RelevanceModel)

	var faces detector.Detector
	if config.FaceDetectorHost != "" {
		c := detector.NewClient(config.FaceDetectorHost, "face")
		faces = &c
	} else {
		logger.Warn("no face detector configured; face anonymization and video privacy checks are disabled")
	}
	var plates detector.Detector
	if config.PlateDetectorHost != "" {
		c := detector.NewClient(config.PlateDetectorHost, "plate")
		plates = &c
	}

	var signer oracle.Signer
	if config.SigningKeyHex != "" {
		k256, err := oracle.NewK256Signer(config.SigningKeyHex)
		if err != nil {
			return nil, err
		}
		signer = k256
		logger.Info("oracle signer configured", "address", k256.Address())
	} else {
		// the service still starts: rejections remain useful, and /_health
		// reports the degradation; approvals will fail until a key arrives
		logger.Warn("oracle signing key not configured; approvals will fail with a configuration error")
	}

	engine := &moderation.Engine{
		Logger:      logger,
		Toxicity:    &toxicity,
		Spam:        &spam,
		ImageSafety: &imageSafety,
		Relevance:   &relevance,
		Faces:       faces,
		Plates:      plates,
		Signer:      signer,
		Video:       media.NewFFmpegSource(),
	}

	return &Server{
		logger:         logger,
		engine:         engine,
		requestTimeout: 2 * time.Minute,
	}, nil
}

func (srv *Server) RunAPI(listen string) error {

	e := echo.New()
	e.HideBanner = true

	e.Use(slogecho.New(srv.logger))
	e.Use(middleware.Recover())
	e.Use(middleware.CORS())
	// media cap is 10MB; leave headroom for multipart framing and the text field
	e.Use(middleware.BodyLimit("12M"))
	e.HTTPErrorHandler = srv.errorHandler

	e.GET("/_health", srv.handleHealthCheck)
	e.POST("/moderate", srv.handleModerate)
	srv.echo = e

	srv.logger.Info("starting moderation API daemon", "bind", listen)
	return e.Start(listen)
}

func (srv *Server) RunMetrics(listen string) error {
	mux := http.NewServeMux()
	mux.Handle("/metrics", promhttp.Handler())
	return http.ListenAndServe(listen, mux)
}

func (srv *Server) Shutdown(ctx context.Context) error {
	if srv.echo == nil {
		return nil
	}
	return srv.echo.Shutdown(ctx)
}
