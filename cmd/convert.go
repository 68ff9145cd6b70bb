package cmd

import (
	"encoding/json"
	"fmt"
	"os"

	"github.com/snapscore/melodex/config"
	"github.com/snapscore/melodex/midi"
	"github.com/snapscore/melodex/model"
	"github.com/snapscore/melodex/pipeline"
	"github.com/spf13/cobra"
)

var convertConfigPath string
var convertTempo float64

func init() {
	convertCmd.Flags().StringVar(&convertConfigPath, "config", "", "path to a YAML config file")
	convertCmd.Flags().Float64Var(&convertTempo, "tempo", 0, "tempo override in BPM")
	rootCmd.AddCommand(convertCmd)
}

var convertCmd = &cobra.Command{
	Use:   "convert <detections.json> <out.mid>",
	Short: "Converts a detections file to MIDI",
	Long:  `Converts a JSON file of pitch detections to a voice-separated MIDI file.`,
	Args:  cobra.ExactArgs(2),
	Run: func(cmd *cobra.Command, args []string) {
		if err := convert(args[0], args[1]); err != nil {
			fmt.Fprintf(os.Stderr, "convert failed: %v\n", err)
			os.Exit(1)
		}
	},
}

func convert(inPath string, outPath string) error {
	cfg, err := config.Load(convertConfigPath)
	if err != nil {
		return err
	}
	if convertTempo > 0 {
		cfg.TempoBPM = convertTempo
	}

	dat, err := os.ReadFile(inPath)
	if err != nil {
		return fmt.Errorf("error reading detections file: %w", err)
	}
	var detections []model.RawDetection
	if err := json.Unmarshal(dat, &detections); err != nil {
		return fmt.Errorf("error parsing detections file: %w", err)
	}

	seq, stats, err := pipeline.ConvertDetections(cfg, detections)
	if err != nil {
		return err
	}

	data, err := midi.Encode(seq, cfg.TicksPerBeat)
	if err != nil {
		return err
	}
	if err := os.WriteFile(outPath, data, 0666); err != nil {
		return fmt.Errorf("error writing midi file: %w", err)
	}

	fmt.Printf("Converted %v of %v detections\n", stats.AboveThreshold, stats.Received)
	fmt.Printf("Mean confidence: %.3f\n", stats.MeanConfidence)
	fmt.Printf("Wrote %v events (%.2f beats) to %v\n", len(seq.Events), seq.TotalDuration, outPath)
	return nil
}
