package rag

import (
	"errors"
	"fmt"
	"strings"
)

const (
	preamble       = "Você é a Personal-Controller-LLM, uma IA especializada da Ávila Transportes.\n\n"
	simplePreamble = "Você é a Personal-Controller-LLM da Ávila Transportes.\n\n"
)

// BuildPrompt renders the full prompt with the retrieved context.
func BuildPrompt(query string, docs []Document) string {
	var b strings.Builder
	b.WriteString(preamble)
	if len(docs) > 0 {
		b.WriteString("# Contexto Relevante\n\n")
		for i, d := range docs {
			fmt.Fprintf(&b, "Documento %d (relevância: %.2f%%):\n%s\n\n", i+1, d.Score*100, d.Content)
		}
	}
	fmt.Fprintf(&b, "# Pergunta do Usuário\n%s\n\n", query)
	b.WriteString("# Instruções\n")
	b.WriteString("- Responda em português claro e objetivo\n")
	b.WriteString("- Use os documentos fornecidos como contexto\n")
	b.WriteString("- Se não tiver certeza, diga que não sabe\n")
	b.WriteString("- Cite as fontes quando relevante\n\n")
	b.WriteString("Resposta:")
	return b.String()
}

// BuildSimplePrompt is used when there is no context to show.
func BuildSimplePrompt(query string) string {
	return simplePreamble + "Pergunta: " + query + "\n\nResposta:"
}

var ErrInvalidChunking = errors.New("invalid chunking parameters")

// ChunkText splits text into windows of chunkSize words, each starting
// chunkSize-overlap words after the previous one. The last chunk may be
// shorter.
func ChunkText(text string, chunkSize, overlap int) ([]string, error) {
	if chunkSize <= 0 || overlap < 0 || overlap >= chunkSize {
		return nil, fmt.Errorf("%w: size=%d overlap=%d", ErrInvalidChunking, chunkSize, overlap)
	}
	words := strings.Fields(text)
	chunks := []string{}
	for start := 0; start < len(words); start += chunkSize - overlap {
		end := min(start+chunkSize, len(words))
		chunks = append(chunks, strings.Join(words[start:end], " "))
		if end == len(words) {
			break
		}
	}
	return chunks, nil
}
