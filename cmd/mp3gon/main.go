// Command mp3gon turns a WAV file into a spectral tube mesh and, optionally,
// a time-warped copy of the audio.
//
// Usage:
//
//	mp3gon -in song.wav [-obj tube.obj] [-wav out.wav -warp reverse] [flags]
//
// Examples:
//
//	mp3gon -in song.wav -obj tube.obj
//	mp3gon -in song.wav -wav backwards.wav -warp reverse
//	mp3gon -in song.wav -profile profile.json
//	mp3gon -in song.wav -obj tube.obj -config tube.json -log-format json -v
//	mp3gon -list-warps
package main

import (
	"context"
	"encoding/json"
	"flag"
	"fmt"
	"os"
	"os/signal"
	"strings"

	"github.com/RyanBlaney/mp3gon/geometry"
	"github.com/RyanBlaney/mp3gon/logging"
	"github.com/RyanBlaney/mp3gon/playagon"
	"github.com/RyanBlaney/mp3gon/transcode"
	"github.com/RyanBlaney/mp3gon/transform"
)

func main() {
	in := flag.String("in", "", "input WAV file")
	objPath := flag.String("obj", "", "write the tube mesh as Wavefront OBJ")
	wavPath := flag.String("wav", "", "write the time-warped audio as WAV")
	profilePath := flag.String("profile", "", "write per-frame centroid, rolloff and flux as JSON")
	warpName := flag.String("warp", "identity", "warp preset for -wav (see -list-warps)")
	bitDepth := flag.Int("bits", transcode.DefaultEncoderConfig().BitDepth, "bit depth of the -wav output (16, 24 or 32)")
	configPath := flag.String("config", "", "JSON synthesis config; omitted fields keep their defaults")
	logFormat := flag.String("log-format", "text", "log output: text or json")
	verbose := flag.Bool("v", false, "debug logging")
	listWarps := flag.Bool("list-warps", false, "list warp presets and exit")
	flag.Usage = func() {
		fmt.Fprintf(os.Stderr, "Usage: mp3gon -in file.wav [flags]\n\n")
		fmt.Fprintf(os.Stderr, "Builds a 3D tube from the evolving spectrum of a WAV file.\n\n")
		flag.PrintDefaults()
	}
	flag.Parse()

	if *listWarps {
		fmt.Println(strings.Join(playagon.Names(), "\n"))
		return
	}
	if *in == "" || (*objPath == "" && *wavPath == "" && *profilePath == "") {
		flag.Usage()
		os.Exit(2)
	}

	logger, err := newLogger(*logFormat, *verbose)
	if err != nil {
		fmt.Fprintln(os.Stderr, err)
		os.Exit(2)
	}
	logging.SetGlobalLogger(logger)
	if z, ok := logger.(*logging.ZapLogger); ok {
		defer z.Sync()
	}

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt)
	defer stop()

	opts := options{
		input:      *in,
		objPath:    *objPath,
		wavPath:    *wavPath,
		profile:    *profilePath,
		warpName:   *warpName,
		bitDepth:   *bitDepth,
		configPath: *configPath,
	}
	if err := run(ctx, opts, logger); err != nil {
		logger.Error(err, "mp3gon failed", logging.Fields{"input": *in})
		stop()
		os.Exit(1)
	}
}

type options struct {
	input      string
	objPath    string
	wavPath    string
	profile    string
	warpName   string
	bitDepth   int
	configPath string
}

func newLogger(format string, verbose bool) (logging.Logger, error) {
	var logger logging.Logger
	switch format {
	case "text":
		logger = logging.NewDefaultLogger()
	case "json":
		logger = logging.NewZapLogger(os.Stderr, true)
	default:
		return nil, fmt.Errorf("unknown log format %q", format)
	}
	if verbose {
		logger.SetLevel(logging.DebugLevel)
	}
	return logger, nil
}

func run(ctx context.Context, opts options, logger logging.Logger) error {
	cfg := transform.DefaultConfig()
	if opts.configPath != "" {
		var err error
		if cfg, err = transform.LoadConfig(opts.configPath); err != nil {
			return err
		}
	}

	sig, err := readWAV(opts.input)
	if err != nil {
		return err
	}
	logger.Info("Loaded audio", logging.Fields{
		"input":       opts.input,
		"channels":    sig.NumChannels(),
		"sample_rate": sig.SampleRate(),
		"duration":    sig.Duration().String(),
	})

	if opts.objPath != "" {
		if err := writeMesh(ctx, sig, cfg, opts.objPath, logger); err != nil {
			return err
		}
	}
	if opts.profile != "" {
		if err := writeProfile(ctx, sig, cfg, opts.profile, logger); err != nil {
			return err
		}
	}
	if opts.wavPath != "" {
		if err := writeWarped(ctx, sig, opts, logger); err != nil {
			return err
		}
	}
	return nil
}

func readWAV(path string) (*transcode.Signal, error) {
	f, err := os.Open(path)
	if err != nil {
		return nil, err
	}
	defer f.Close()

	return transcode.DecodeWAV(f)
}

func writeMesh(ctx context.Context, sig *transcode.Signal, cfg transform.Config, path string, logger logging.Logger) error {
	mesh, err := transform.SynthesizeGeometry(ctx, sig, cfg)
	if err != nil {
		return err
	}

	f, err := os.Create(path)
	if err != nil {
		return err
	}
	if err := geometry.WriteOBJ(f, mesh); err != nil {
		f.Close()
		return err
	}
	if err := f.Close(); err != nil {
		return err
	}

	stats := mesh.Stats()
	eye := geometry.SuggestedCamera(cfg.TotalLength)
	logger.Info("Wrote tube mesh", logging.Fields{
		"output":      path,
		"frames":      mesh.Frames,
		"freq_bins":   mesh.FreqBins,
		"vertices":    mesh.VertexCount(),
		"triangles":   mesh.TriangleCount(),
		"radius_max":  stats.Radius.Max,
		"radius_mean": stats.Radius.Mean,
		"camera":      fmt.Sprintf("%.2f,%.2f,%.2f", eye.X(), eye.Y(), eye.Z()),
	})
	return nil
}

func writeProfile(ctx context.Context, sig *transcode.Signal, cfg transform.Config, path string, logger logging.Logger) error {
	s, err := transform.NewSynthesizer(cfg, nil)
	if err != nil {
		return err
	}
	d, err := s.Describe(ctx, sig)
	if err != nil {
		return err
	}

	data, err := json.MarshalIndent(d, "", "  ")
	if err != nil {
		return err
	}
	if err := os.WriteFile(path, data, 0o644); err != nil {
		return err
	}

	logger.Info("Wrote spectral profile", logging.Fields{
		"output": path,
		"frames": len(d.Centroid),
	})
	return nil
}

func writeWarped(ctx context.Context, sig *transcode.Signal, opts options, logger logging.Logger) error {
	warp, err := playagon.ByName(opts.warpName)
	if err != nil {
		return err
	}
	enc, err := transcode.NewWAVEncoder(transcode.EncoderConfig{BitDepth: opts.bitDepth})
	if err != nil {
		return err
	}

	warped, err := transform.TimeWarp(ctx, sig, warp)
	if err != nil {
		return err
	}

	f, err := os.Create(opts.wavPath)
	if err != nil {
		return err
	}
	if err := enc.EncodeTo(f, warped); err != nil {
		f.Close()
		return fmt.Errorf("%w: %w", transform.ErrEncodeFailed, err)
	}
	if err := f.Close(); err != nil {
		return err
	}

	logger.Info("Wrote warped audio", logging.Fields{
		"output": opts.wavPath,
		"warp":   opts.warpName,
		"bits":   opts.bitDepth,
	})
	return nil
}
