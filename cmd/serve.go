package cmd

import (
	"encoding/base64"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"log"
	"net/http"

	"github.com/gorilla/mux"
	"github.com/rs/cors"
	"github.com/snapscore/melodex/config"
	"github.com/snapscore/melodex/constants"
	"github.com/snapscore/melodex/midi"
	"github.com/snapscore/melodex/model"
	"github.com/snapscore/melodex/pipeline"
	"github.com/spf13/cobra"
)

var serveConfigPath string
var serveCfg = config.Default()

func init() {
	serveCmd.Flags().StringVar(&serveConfigPath, "config", "", "path to a YAML config file")
	rootCmd.AddCommand(serveCmd)
}

var serveCmd = &cobra.Command{
	Use:   "serve",
	Short: "Serves the conversion API",
	Long:  `Serves the conversion API`,
	Run: func(cmd *cobra.Command, args []string) {
		serve()
	},
}

func writeError(w http.ResponseWriter, status int, msg string) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	json.NewEncoder(w).Encode(model.ErrorResponse{Error: msg})
}

// HandleConvert converts a posted batch of detections into a MIDI file,
// returned base64-encoded alongside conversion statistics.
func HandleConvert(w http.ResponseWriter, r *http.Request) {
	reqBody, err := io.ReadAll(r.Body)
	if err != nil {
		writeError(w, http.StatusBadRequest, "could not read request body")
		return
	}

	var input model.ConvertRequestBody
	if err := json.Unmarshal(reqBody, &input); err != nil {
		writeError(w, http.StatusBadRequest, "could not parse request body: "+err.Error())
		return
	}

	cfg := serveCfg
	if input.TempoBPM != 0 {
		if input.TempoBPM < 0 {
			writeError(w, http.StatusBadRequest, fmt.Sprintf("tempo_bpm must be positive, got %v", input.TempoBPM))
			return
		}
		cfg.TempoBPM = input.TempoBPM
	}

	seq, stats, err := pipeline.ConvertDetections(cfg, input.Detections)
	if err != nil {
		writeError(w, http.StatusBadRequest, err.Error())
		return
	}

	data, err := midi.Encode(seq, cfg.TicksPerBeat)
	if err != nil {
		var cv *model.ContractViolationError
		if errors.As(err, &cv) {
			writeError(w, http.StatusInternalServerError, err.Error())
			return
		}
		writeError(w, http.StatusInternalServerError, "encoding failed")
		return
	}

	res := model.ConvertResponse{
		MidiBase64:         base64.StdEncoding.EncodeToString(data),
		TotalDurationBeats: seq.TotalDuration,
		NumEvents:          len(seq.Events),
		Stats:              stats,
	}
	w.Header().Set("Content-Type", "application/json")
	json.NewEncoder(w).Encode(res)
}

func serve() {
	cfg, err := config.Load(serveConfigPath)
	if err != nil {
		panic("Could not load config: " + err.Error())
	}
	serveCfg = cfg

	router := mux.NewRouter().StrictSlash(true)
	router.HandleFunc("/convert", HandleConvert).Methods("POST")

	handler := cors.Default().Handler(router)
	addr := constants.GetListenAddr()
	fmt.Printf("Listening on %v\n", addr)
	log.Fatal(http.ListenAndServe(addr, handler))
}
