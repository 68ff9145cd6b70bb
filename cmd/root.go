package cmd

import (
	"github.com/spf13/cobra"
)

var rootCmd = &cobra.Command{
	Use:   "melodex",
	Short: "Sheet-music detections to MIDI",
	Long:  `Converts pitch detections from a scanned score into a voice-separated MIDI file.`,
}

func Execute() {
	cobra.CheckErr(rootCmd.Execute())
}
