package cmd

import (
	"fmt"

	"github.com/snapscore/melodex/midi"
	"github.com/spf13/cobra"
)

func init() {
	rootCmd.AddCommand(inspectCmd)
}

var inspectCmd = &cobra.Command{
	Use:   "inspect <file.mid>",
	Short: "Inspects a MIDI file",
	Long:  `Inspects a MIDI file`,
	Args:  cobra.ExactArgs(1),
	Run: func(cmd *cobra.Command, args []string) {
		inspect(args[0])
	},
}

func inspect(path string) {
	parsed, err := midi.ReadMidiFile(path)
	if err != nil {
		panic("Could not read midi file: " + err.Error())
	}

	fmt.Printf("timeFormat: %v\n", parsed.TimeFormat)
	fmt.Printf("numTracks: %v\n", len(parsed.Tracks))

	for ti, track := range parsed.Tracks {
		var absTicks int64
		for _, event := range track {
			absTicks += int64(event.Delta)
			var channel uint8
			var key uint8
			var velocity uint8
			var bpm float64
			switch {
			case event.Message.GetMetaTempo(&bpm):
				fmt.Printf("track %v tick %v: tempo %v bpm\n", ti, absTicks, bpm)
			case event.Message.GetNoteOn(&channel, &key, &velocity):
				fmt.Printf("track %v tick %v: on  ch=%v key=%v vel=%v\n", ti, absTicks, channel, key, velocity)
			case event.Message.GetNoteOff(&channel, &key, &velocity):
				fmt.Printf("track %v tick %v: off ch=%v key=%v\n", ti, absTicks, channel, key)
			}
		}
	}
}
