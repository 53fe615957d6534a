package driven

// TokenCounter estimates how many model tokens a text costs. The context
// assembler uses it to keep assembled prompts within the token budget.
type TokenCounter interface {
	// Count returns the estimated token count for the text.
	Count(text string) int
}
