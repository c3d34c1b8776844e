package tally

// Submission field bags are not schema-fixed: forms label the same logical
// field differently. Each logical field has an ordered list of alias
// candidates tried in priority order.
var (
	EmailAliases     = []string{"email", "Email"}
	InstagramAliases = []string{"instagram", "Instagram", "Instagram Handle"}
	PortfolioAliases = []string{"portfolio", "Portfolio", "Portfolio Links"}
	ProposalAliases  = []string{"proposal", "Content Proposal"}
)

// ExtractField probes a field bag for the first alias holding a non-empty
// string and defaults to empty string when none match.
func ExtractField(fields map[string]interface{}, aliases ...string) string {
	for _, alias := range aliases {
		if value, ok := fields[alias]; ok {
			if s, ok := value.(string); ok && s != "" {
				return s
			}
		}
	}
	return ""
}
