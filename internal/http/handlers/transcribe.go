package handlers

import (
	"net/http"
	"time"

	"echomail/internal/domain"
	"echomail/internal/providers/transcribe"
)

const maxAudioUpload = 25 << 20 // provider limit

// Transcribe converts an uploaded voice memo into text. Gated like
// generation: an expired trial answers 402 before any audio is read.
func (a *App) Transcribe(w http.ResponseWriter, r *http.Request) {
	deviceID := a.requireDevice(w, r)
	if deviceID == "" {
		return
	}
	apiKey, gate := a.resolveAPIKey(r.Context(), deviceID)
	if gate != domain.GateOK {
		a.error(w, http.StatusPaymentRequired, string(gate), "trial expired: upgrade or add your own api key")
		return
	}

	r.Body = http.MaxBytesReader(w, r.Body, maxAudioUpload)
	if err := r.ParseMultipartForm(maxAudioUpload); err != nil {
		a.error(w, http.StatusBadRequest, "bad_request", "expected multipart form with an audio file")
		return
	}
	file, header, err := r.FormFile("audio")
	if err != nil {
		a.error(w, http.StatusBadRequest, "bad_request", "audio file required")
		return
	}
	defer file.Close()

	ctx, cancel := a.opTimeout(r.Context(), 90*time.Second)
	defer cancel()
	text, err := a.Transcriber.Transcribe(ctx, transcribe.Request{
		APIKey:   apiKey,
		FileName: header.Filename,
		Audio:    file,
	})
	if err != nil {
		a.Logger.Error().Err(err).Msg("transcription failed")
		a.error(w, http.StatusBadGateway, "provider_error", "failed to transcribe audio")
		return
	}
	a.json(w, http.StatusOK, map[string]string{"text": text})
}
