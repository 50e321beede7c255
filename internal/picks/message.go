package picks

import (
	"strconv"
	"strings"
)

const comboPreview = 2

// FormatMessage renders the WhatsApp text for a generation run.
func FormatMessage(r Result) string {
	var lines []string
	lines = append(lines, "⚽ *Palpites.IA | análise completa*", "")

	for _, p := range r.All() {
		lines = append(lines, "🔹 *"+p.Description+"* (Odd "+FormatOdd(p.Odd)+")", p.Analysis, "")
	}

	if len(r.Strategic) > 0 {
		lines = append(lines, "🎯 *BINGO ESTRATÉGICO* (Odds 2.0 - 4.0)")
		for _, p := range head(r.Strategic, comboPreview) {
			lines = append(lines, "💡 *"+p.Description+"* (Odd "+FormatOdd(p.Odd)+")", p.Analysis, "")
		}
	}

	if len(r.Bold) > 0 {
		lines = append(lines, "🔥 *BINGO CORAJOSO* (Odds 4.0 - 10.0)")
		for _, p := range head(r.Bold, comboPreview) {
			lines = append(lines, "💥 *"+p.Description+"* (Odd "+FormatOdd(p.Odd)+")", p.Analysis, "")
		}
	}

	lines = append(lines,
		"⚠️ *Utilize sempre a gestão de banca para ser o mais lucrativo a longo prazo, e escolha os palpites que fizerem mais sentido para você.*",
		"Nem todos precisam ser combinados. Foque na consistência e disciplina.",
		"",
		"💬 *A IA Palpites.IA analisou mais de 200 estatísticas oficiais antes de gerar esses palpites.*",
	)
	return strings.Join(lines, "\n")
}

// FormatOdd prints an odd without trailing zeros.
func FormatOdd(odd float64) string {
	return strconv.FormatFloat(odd, 'f', -1, 64)
}

func head(p []Pick, n int) []Pick {
	if len(p) > n {
		return p[:n]
	}
	return p
}
