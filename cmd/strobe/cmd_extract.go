package main

import (
	"fmt"
	"log/slog"
	"os"

	"github.com/spf13/cobra"
	"gopkg.in/yaml.v3"

	"github.com/strobe-audio/strobe"
	"github.com/strobe-audio/strobe/algorithms"
	"github.com/strobe-audio/strobe/pkg/log"
)

var (
	extractProfile string
	extractOutput  string
	extractVerbose bool
)

var extractCmd = &cobra.Command{
	Use:   "extract [flags] INPUT...",
	Short: "Extract descriptors from pre-decoded sample files",
	Long: "Extract runs the configured descriptor sets over each input file.\n" +
		"Inputs are raw little-endian float32 samples (.f32, .raw, .pcm) or a\n" +
		"JSON array of numbers (.json). Results are written as YAML, one\n" +
		"document per input.",
	Args: cobra.MinimumNArgs(1),
	RunE: runExtract,
}

func init() {
	extractCmd.Flags().StringVarP(&extractProfile, "profile", "p", "", "YAML extraction profile")
	extractCmd.Flags().StringVarP(&extractOutput, "output", "o", "-", "output file (- for stdout)")
	extractCmd.Flags().BoolVarP(&extractVerbose, "verbose", "v", false, "log scheduler progress")
}

func runExtract(cmd *cobra.Command, args []string) error {
	logger := log.New()

	profile, err := loadProfile(extractProfile)
	if err != nil {
		return err
	}

	factory := strobe.NewFactory()
	if err := algorithms.RegisterAll(factory); err != nil {
		return err
	}

	sets, err := profile.descriptorSets()
	if err != nil {
		return err
	}

	opts := []strobe.Option{
		strobe.WithWorkers(profile.Workers),
		strobe.WithChunkSize(profile.ChunkSize),
	}
	if extractVerbose {
		opts = append(opts, strobe.WithLog(slog.New(slog.NewTextHandler(os.Stderr, &slog.HandlerOptions{
			Level: slog.LevelDebug,
		}))))
	}

	extractor, err := strobe.NewExtractor(factory, sets, opts...)
	if err != nil {
		return err
	}

	inputs := make(map[string][]float32, len(args))
	for _, path := range args {
		samples, err := readSamples(path)
		if err != nil {
			return fmt.Errorf("read %s: %w", path, err)
		}
		logger.Info().Str("input", path).Int("samples", len(samples)).Msg("loaded input")
		inputs[path] = samples
	}

	pools, err := extractor.RunAll(cmd.Context(), inputs)
	if err != nil {
		return err
	}

	out := os.Stdout
	if extractOutput != "-" {
		f, err := os.Create(extractOutput)
		if err != nil {
			return err
		}
		defer f.Close()
		out = f
	}

	enc := yaml.NewEncoder(out)
	defer enc.Close()
	for _, path := range args {
		pool, found := pools[path]
		if !found {
			continue
		}
		if err := enc.Encode(poolDocument(path, pool)); err != nil {
			return err
		}
		logger.Info().Str("input", path).Int("descriptors", pool.Len()).Msg("extracted")
	}
	return nil
}

// poolDocument flattens a pool into a YAML-friendly mapping.
func poolDocument(input string, pool *strobe.Pool) map[string]any {
	values := make(map[string]any, pool.Len())
	for _, key := range pool.Keys() {
		v, err := pool.Get(key)
		if err != nil {
			continue
		}
		values[key] = v
	}
	return map[string]any{
		"input":       input,
		"descriptors": values,
	}
}
