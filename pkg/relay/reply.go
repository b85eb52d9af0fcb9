package relay

import (
	"strings"

	"github.com/tidwall/gjson"
)

// Shape identifica qual formato de resposta do serviço de IA foi reconhecido
type Shape string

const (
	ShapeMessage      Shape = "message"
	ShapeFinalMessage Shape = "final_message"
	ShapeRaw          Shape = "raw"
)

// replyShapes é a ordem de tentativa dos campos de resposta
var replyShapes = []Shape{ShapeMessage, ShapeFinalMessage}

// Reply é a resposta extraída do serviço de IA
type Reply struct {
	Text  string `json:"message"`
	Shape Shape  `json:"source"`
}

// ParseReply extrai o texto da resposta seguindo a lista ordenada de formatos
// aceitos; sem campo conhecido, devolve o payload bruto.
func ParseReply(body []byte) Reply {
	if gjson.ValidBytes(body) {
		parsed := gjson.ParseBytes(body)
		if parsed.IsObject() {
			for _, shape := range replyShapes {
				field := parsed.Get(string(shape))
				if field.Type == gjson.String && field.Str != "" {
					return Reply{Text: field.Str, Shape: shape}
				}
			}
		}
	}

	return Reply{Text: strings.TrimSpace(string(body)), Shape: ShapeRaw}
}

// parseUpstreamError extrai o campo "error" de um corpo de erro, se existir
func parseUpstreamError(body []byte) (string, bool) {
	if !gjson.ValidBytes(body) {
		return "", false
	}
	field := gjson.GetBytes(body, "error")
	switch {
	case field.Type == gjson.String && field.Str != "":
		return field.Str, true
	case field.IsObject():
		// alguns backends devolvem {"error": {"message": "..."}}
		if msg := field.Get("message"); msg.Type == gjson.String && msg.Str != "" {
			return msg.Str, true
		}
	}
	return "", false
}
