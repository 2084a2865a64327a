package openai

import "fmt"

const extractionSystemPrompt = "You are a compliance analyst. You output JSON only."

// buildExtractionPrompt produces the user prompt for rule extraction.
// The response must be a bare JSON array so it can be parsed directly.
func buildExtractionPrompt(contextText string) string {
	return fmt.Sprintf(
		"From the provided regulations context, extract a concise list of actionable crew rostering rules.\n"+
			"Return a STRICT JSON array with items having fields: id (string), name (string), "+
			"type ('hard'|'soft'), description (string), status ('active'|'inactive'), "+
			"violations (number set to 0).\n"+
			"Do not add commentary. JSON only.\n\n"+
			"CONTEXT:\n%s", contextText)
}
