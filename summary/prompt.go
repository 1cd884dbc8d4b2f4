package summary

import "fmt"

// disclosureFormat asks the model to close the article with a visible note naming the
// generating model. It is always appended, whatever the custom prompt says.
const disclosureFormat = "またその最後には、「この記事は %s により自動生成されています」と目立つように注記してください。"

// BuildPrompt assembles the request text: the custom prompt, the disclosure instruction,
// a blank line, then the transcript.
func BuildPrompt(customPrompt, model, transcript string) string {
	return customPrompt + Disclosure(model) + "\n\n" + transcript
}

// Disclosure is the instruction sentence for model.
func Disclosure(model string) string {
	return fmt.Sprintf(disclosureFormat, model)
}
