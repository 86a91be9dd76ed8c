package handlers

import (
	"context"
	"errors"
	"io"
	"net/http"
	"os"
	"path/filepath"

	"github.com/Werneck0live/personal-controller/internal/importer"
	"github.com/Werneck0live/personal-controller/internal/utils"
)

const maxUploadBytes = 32 << 20

// Import recebe multipart com o campo "file" e, opcionalmente, "type"
// (auto|freight|timesheet|route|photo|pdf).
func (h *API) Import(w http.ResponseWriter, r *http.Request) {
	if r.Method != http.MethodPost {
		w.WriteHeader(http.StatusMethodNotAllowed)
		return
	}
	if h.Ingest == nil {
		unavailable(w, "import")
		return
	}

	r.Body = http.MaxBytesReader(w, r.Body, maxUploadBytes)
	if err := r.ParseMultipartForm(maxUploadBytes); err != nil {
		utils.BadRequest(w, "invalid multipart form: "+err.Error())
		return
	}
	kind, err := importer.ParseKind(r.FormValue("type"))
	if err != nil {
		utils.BadRequest(w, err.Error())
		return
	}
	file, header, err := r.FormFile("file")
	if err != nil {
		utils.BadRequest(w, "file is required")
		return
	}
	defer file.Close()

	// o nome original é usado na detecção do tipo
	dir, err := os.MkdirTemp("", "pc-import-")
	if err != nil {
		utils.WriteJSON(w, http.StatusInternalServerError, map[string]string{"error": err.Error()})
		return
	}
	defer os.RemoveAll(dir)

	path := filepath.Join(dir, filepath.Base(header.Filename))
	if err := saveUpload(path, file); err != nil {
		utils.WriteJSON(w, http.StatusInternalServerError, map[string]string{"error": err.Error()})
		return
	}

	ctx, cancel := context.WithTimeout(r.Context(), importTimeout)
	defer cancel()
	sum, err := h.Ingest.ImportFile(ctx, kind, path)
	if err != nil {
		if errors.Is(err, importer.ErrImport) {
			utils.WriteJSON(w, http.StatusUnprocessableEntity, map[string]string{"error": err.Error()})
			return
		}
		writeStoreErr(w, err)
		return
	}
	utils.WriteJSON(w, http.StatusOK, sum)
}

func saveUpload(path string, src io.Reader) error {
	dst, err := os.Create(path)
	if err != nil {
		return err
	}
	if _, err := io.Copy(dst, src); err != nil {
		_ = dst.Close()
		return err
	}
	return dst.Close()
}
