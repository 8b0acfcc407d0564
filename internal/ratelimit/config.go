package ratelimit

// Config is the static quota for one gated operation.
type Config struct {
	Operation    string `json:"operation"`
	LimitPerHour int    `json:"limitPerHour"`
	LimitPerDay  int    `json:"limitPerDay"`
	CostCredits  int    `json:"costCredits"` // informational, not enforced
}

// Operations enumerates every gated action and its quota. Changing a limit
// means redeploying; there is no dynamic configuration.
var Operations = map[string]Config{
	"generate-notes": {
		Operation:    "generate-notes",
		LimitPerHour: 10,
		LimitPerDay:  50,
		CostCredits:  5,
	},
	"find-video": {
		Operation:    "find-video",
		LimitPerHour: 20,
		LimitPerDay:  100,
		CostCredits:  1,
	},
	"generate-quiz": {
		Operation:    "generate-quiz",
		LimitPerHour: 10,
		LimitPerDay:  40,
		CostCredits:  3,
	},
	"explain-concept": {
		Operation:    "explain-concept",
		LimitPerHour: 30,
		LimitPerDay:  150,
		CostCredits:  1,
	},
}

// ConfigFor looks up the quota for an operation.
func ConfigFor(operation string) (Config, bool) {
	cfg, ok := Operations[operation]
	return cfg, ok
}
