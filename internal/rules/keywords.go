package rules

// Keyword tables for the layered rule evaluation. Matching is
// case-insensitive substring containment over the combined task and result
// text.

// explicitMarkers are phrases that always request executive sign-off.
var explicitMarkers = []string{
	"requires executive approval",
	"needs executive approval",
	"requires executive sign-off",
	"executive decision required",
}

// riskKeywords indicate legal, security, or compliance exposure.
var riskKeywords = []string{
	"legal liability",
	"compliance violation",
	"security incident",
	"data breach",
	"lawsuit",
	"acquisition",
	"regulatory risk",
}

// strategicKeywords indicate company-direction decisions.
var strategicKeywords = []string{
	"strategic direction",
	"new market",
	"product pivot",
	"fundraising",
	"company restructuring",
}

// criticalIndicators elevate a verdict's resolved priority to critical when
// they appear in any matched reason.
var criticalIndicators = []string{
	"security",
	"breach",
	"legal",
	"compliance",
	"liability",
	"urgent",
}
