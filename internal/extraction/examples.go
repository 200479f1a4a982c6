package extraction

import (
	"encoding/json"

	"github.com/jonathan/claimhound/internal/llm"
	"github.com/jonathan/claimhound/internal/prompts"
)

// Attribute keys the instruction asks the backend for.
const (
	AttrLocation      = "location"
	AttrPrediction    = "prediction"
	AttrJustification = "justification"
)

// DefaultInstruction returns the claim extraction instruction.
func DefaultInstruction() string {
	return prompts.MustGet(prompts.ExtractionFile, "claim-instruction")
}

// DefaultExamples returns the worked examples sent with every call.
func DefaultExamples() []Example {
	return []Example{
		{
			Text: "By 2030, electric vehicles will comprise 50% of all new car sales globally. The infrastructure is rapidly expanding.",
			Extractions: []ExampleExtraction{
				{
					Class: "business",
					Text:  "electric vehicles",
					Attributes: map[string]any{
						AttrLocation:      "global",
						AttrPrediction:    "Electric vehicles will comprise 50% of all new car sales globally by 2030",
						AttrJustification: "The infrastructure is rapidly expanding",
					},
				},
			},
		},
		{
			Text: "💥Nations are reversing the two bucket theory which kept the dollar going. This will change everything.",
			Extractions: []ExampleExtraction{
				{
					Class: "other",
					Text:  "two bucket theory",
					Attributes: map[string]any{
						AttrLocation:      "global",
						AttrPrediction:    "Two bucket theory will reverse",
						AttrJustification: "Nations are reversing",
					},
				},
				{
					Class: "economics",
					Text:  "dollar",
					Attributes: map[string]any{
						AttrLocation:      "global",
						AttrPrediction:    "Dollar going because of two bucket theory",
						AttrJustification: "Nations are reversing",
					},
				},
			},
		},
	}
}

// ClaimSchema describes the item shape requested from the backend.
func ClaimSchema(instruction string) llm.ExtractionSchema {
	return llm.ExtractionSchema{
		Name:        "Claims",
		Description: instruction,
		Fields: []llm.SchemaField{
			{Name: "extraction_class", Type: "string", Description: "category label", Required: true},
			{Name: "extraction_text", Type: "string", Description: "exact text copied from the input", Required: true},
			{Name: "attributes", Type: "map[string]string", Description: "location, prediction, justification"},
		},
	}
}

// promptExamples renders examples as input/output pairs for the prompt.
func promptExamples(examples []Example) ([]llm.PromptExample, error) {
	out := make([]llm.PromptExample, 0, len(examples))
	for _, ex := range examples {
		extractions := ex.Extractions
		if extractions == nil {
			extractions = []ExampleExtraction{}
		}
		b, err := json.MarshalIndent(map[string]any{"extractions": extractions}, "", "  ")
		if err != nil {
			return nil, err
		}
		out = append(out, llm.PromptExample{Input: ex.Text, Output: string(b)})
	}
	return out, nil
}
