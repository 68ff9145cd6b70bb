package model

type ConvertRequestBody struct {
	Detections []RawDetection `json:"detections"`
	TempoBPM   float64        `json:"tempo_bpm,omitempty"`
}

type ConvertStats struct {
	Received       int     `json:"received"`
	AboveThreshold int     `json:"above_threshold"`
	MeanConfidence float32 `json:"mean_confidence"`
}

type ConvertResponse struct {
	MidiBase64         string       `json:"midi_base64"`
	TotalDurationBeats float64      `json:"total_duration_beats"`
	NumEvents          int          `json:"num_events"`
	Stats              ConvertStats `json:"stats"`
}

type ErrorResponse struct {
	Error string `json:"detail"`
}
