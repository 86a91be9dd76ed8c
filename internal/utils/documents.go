package utils

import (
	"strings"
	"unicode"
)

// remove qualquer coisa que não seja dígito
func OnlyDigits(s string) string {
	out := make([]rune, 0, len(s))
	for _, r := range s {
		if unicode.IsDigit(r) {
			out = append(out, r)
		}
	}
	return string(out)
}

// SanitizeCNPJ mantém só os dígitos (formato armazenado).
func SanitizeCNPJ(s string) string { return OnlyDigits(s) }

func allEqual(d string) bool {
	for i := 1; i < len(d); i++ {
		if d[i] != d[0] {
			return false
		}
	}
	return true
}

// Validação só de tamanho (14) e rejeição de dígitos todos iguais; sem DV.
func ValidateCNPJ(cnpj string) bool {
	d := OnlyDigits(cnpj)
	return len(d) == 14 && !allEqual(d)
}

func ValidateCPF(cpf string) bool {
	d := OnlyDigits(cpf)
	return len(d) == 11 && !allEqual(d)
}

func ValidateCEP(cep string) bool {
	return len(OnlyDigits(cep)) == 8
}

// Telefone com DDD: 10 (fixo) ou 11 (celular) dígitos.
func ValidatePhone(tel string) bool {
	n := len(OnlyDigits(tel))
	return n == 10 || n == 11
}

func ValidateEmail(email string) bool {
	at := strings.Index(email, "@")
	return at > 0 && strings.Contains(email[at:], ".")
}
