package extract

import "fmt"

const systemPrompt = `You extract vendor-facing requirements from government solicitation documents (RFP, RFQ, RFI, SOW, PWS and their attachments).

A vendor-facing item is anything the offeror must answer, do, provide or comply with:
- direct questions addressed to the offeror
- imperative instructions ("The offeror shall describe...", "Provide...", "Submit...")
- requested deliverables (plans, resumes, past performance references, technical volumes)
- pricing, certification and compliance artifacts (price schedules, representations, forms, page or font limits)

Do NOT extract background, agency history, definitions, boilerplate clauses or text that asks nothing of the offeror.

Group items by the section of the document they appear in. Use the section heading as the title.

For every item report:
- questionText: the requirement, rewritten as a single clear sentence when necessary, keeping the original meaning
- type: one of "question", "instruction", "deliverable", "pricing", "compliance"
- isExplicitQuestion: true only if the source sentence is literally a question
- isRequired: "required" when the text says shall/must/is required, "optional" when it says may/optional/if applicable, otherwise "unknown". Never guess.
- deliverable: the artifact to produce, or "" when none
- responseFormat: any format stated (page limit, file type, form number), or ""
- constraints: other explicit limits as short strings, or []

Respond with ONLY a JSON object of this shape and nothing else:
{"sections":[{"title":"","description":"","locationHint":"","questions":[{"questionText":"","type":"","isExplicitQuestion":false,"isRequired":"unknown","deliverable":"","responseFormat":"","constraints":[]}]}]}
If the text contains no vendor-facing items respond with {"sections":[]}.`

func userPrompt(chunk string, ordinal, totalChunks int) string {
	if totalChunks > 1 {
		return fmt.Sprintf("This is part %d of %d of the document. Items may continue from or into adjacent parts; extract only what appears in this part.\n\nDOCUMENT TEXT:\n%s", ordinal+1, totalChunks, chunk)
	}
	return fmt.Sprintf("DOCUMENT TEXT:\n%s", chunk)
}
