package utils

/*

go test -run 'TestDecodeStrict|TestFormatUnknownFieldError' -v ./internal/utils -count=1

*/

import (
	"errors"
	"strings"
	"testing"
)

type payload struct {
	Nome  string `json:"nome"`
	Idade int    `json:"idade"`
}

func TestDecodeStrict(t *testing.T) {
	var p payload
	if err := DecodeStrict(strings.NewReader(`{"nome":"Ana","idade":3}`), &p); err != nil {
		t.Fatalf("objeto válido rejeitado: %v", err)
	}
	if p.Nome != "Ana" || p.Idade != 3 {
		t.Fatalf("decodificação inesperada: %+v", p)
	}
	if err := DecodeStrict(strings.NewReader(`{"nome":"Ana"} {"nome":"Bia"}`), &p); !errors.Is(err, ErrTrailingJSON) {
		t.Fatalf("esperado ErrTrailingJSON, obtido %v", err)
	}
}

func TestFormatUnknownFieldError(t *testing.T) {
	cases := []struct {
		body string
		want string
	}{
		{`{"nome":"Ana","cpf":"1"}`, "campo desconhecido: cpf"},
		{``, "corpo vazio"},
		{`{"nome":"Ana"}[]`, "conteúdo extra após o objeto JSON"},
		{`{"idade":"tres"}`, "tipo inválido no campo idade"},
		{`{"nome":}`, "JSON inválido na posição "},
	}
	for _, tc := range cases {
		var p payload
		err := DecodeStrict(strings.NewReader(tc.body), &p)
		if err == nil {
			t.Fatalf("%q: esperado erro", tc.body)
		}
		if got := FormatUnknownFieldError(err); !strings.HasPrefix(got, tc.want) {
			t.Fatalf("%q: esperado %q, obtido %q", tc.body, tc.want, got)
		}
	}
}
