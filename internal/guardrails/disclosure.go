package guardrails

import "strings"

// Disclaimer is attached to every set of recommendations
const Disclaimer = "This content is for educational purposes only and does not constitute " +
	"financial advice. Please consult with a qualified financial professional " +
	"before making financial decisions."

// AppendDisclosure adds the disclaimer to text unless it is already present
func AppendDisclosure(text string) string {
	if strings.Contains(text, Disclaimer) {
		return text
	}
	text = strings.TrimRight(text, " \n")
	if text == "" {
		return Disclaimer
	}
	return text + "\n\n" + Disclaimer
}
