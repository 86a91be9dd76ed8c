package utils

import (
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"net/http"
	"strings"
)

// ErrTrailingJSON indica conteúdo depois do objeto decodificado.
var ErrTrailingJSON = errors.New("unexpected additional JSON content")

func WriteJSON(w http.ResponseWriter, code int, v any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(code)
	_ = json.NewEncoder(w).Encode(v)
}

// DecodeStrict aceita exatamente um objeto JSON e rejeita campos fora de dst.
func DecodeStrict(r io.Reader, dst any) error {
	dec := json.NewDecoder(r)
	dec.DisallowUnknownFields()
	if err := dec.Decode(dst); err != nil {
		return err
	}
	if dec.More() {
		return ErrTrailingJSON
	}
	return nil
}

func BadRequest(w http.ResponseWriter, msg string) {
	WriteJSON(w, http.StatusBadRequest, map[string]string{"error": msg})
}

const unknownFieldPrefix = "json: unknown field "

// FormatUnknownFieldError traduz os erros de DecodeStrict para a mensagem
// devolvida ao cliente.
func FormatUnknownFieldError(err error) string {
	var (
		syntax *json.SyntaxError
		typ    *json.UnmarshalTypeError
	)
	msg := err.Error()
	switch {
	case strings.HasPrefix(msg, unknownFieldPrefix):
		return "campo desconhecido: " + strings.Trim(strings.TrimPrefix(msg, unknownFieldPrefix), `"`)
	case errors.Is(err, io.EOF):
		return "corpo vazio"
	case errors.Is(err, ErrTrailingJSON):
		return "conteúdo extra após o objeto JSON"
	case errors.As(err, &syntax):
		return fmt.Sprintf("JSON inválido na posição %d", syntax.Offset)
	case errors.As(err, &typ):
		return fmt.Sprintf("tipo inválido no campo %s", typ.Field)
	}
	return msg
}
