package scoring

// Bracket is one step of a decreasing step function. Values up to and
// including UpTo earn Score; values beyond the last bracket earn zero.
type Bracket struct {
	UpTo  int
	Score int
}

// Criteria holds the weights and step tables of the heuristic model.
type Criteria struct {
	FollowerBrackets []Bracket
	AgeBrackets      []Bracket
	KeywordScore     int
	DiscordScore     int
	TelegramScore    int
	WebsiteScore     int
	Keywords         []string
}

// Default weights for the link and keyword components.
const (
	defaultKeywordScore  = 50
	defaultDiscordScore  = 80
	defaultTelegramScore = 10
	defaultWebsiteScore  = 40
)

// DefaultCriteria returns the production scoring configuration. Small, young
// accounts score highest: the model rewards projects that are not yet widely
// discovered.
func DefaultCriteria() Criteria {
	return Criteria{
		FollowerBrackets: []Bracket{
			{200, 200}, {400, 150}, {600, 100}, {800, 60}, {1000, 55},
			{1200, 50}, {1600, 45}, {2000, 40}, {2600, 35}, {3200, 30},
			{4000, 25}, {5000, 20}, {6000, 15}, {7000, 10}, {8000, 5},
			{10000, 2},
		},
		AgeBrackets: []Bracket{
			{2, 200}, {4, 150}, {6, 100}, {8, 60}, {10, 55},
			{12, 50}, {14, 45}, {16, 40}, {18, 35}, {20, 30},
			{24, 25}, {28, 20}, {32, 15}, {36, 10}, {40, 5}, {52, 2},
		},
		KeywordScore:  defaultKeywordScore,
		DiscordScore:  defaultDiscordScore,
		TelegramScore: defaultTelegramScore,
		WebsiteScore:  defaultWebsiteScore,
		Keywords:      defaultKeywords(),
	}
}

// defaultKeywords returns the crypto vocabulary matched against bios.
func defaultKeywords() []string {
	return []string{
		"nft", "cross-chain", "multi-chain", "data", "analytics", "aggregator",
		"trading", "protocol", "tokenized", "amm", "dex", "optimisation",
		"solution", "liquidity", "terra", "solana", "ethereum", "celo",
		"dao", "perpetuals", "decentralized", "exchange", "derivatives",
		"capital-efficient", "metaverse", "game", "gaming", "gamified",
		"community", "art", "index", "insurance", "platform",
		"layer 2", "web 3", "web3", "borrowing", "lending", "loans",
		"staking", "collectibles", "marketplace", "risk", "api",
		"virtual", "wallet", "payments", "prediction", "options", "privacy",
		"smart contract", "infrastructure", "stablecoin",
		"algorithmic", "farming", "synthetic", "yield", "arweave", "cosmos",
		"defi", "credential", "souldbound", "layer", "collateralized",
		"application", "dapp", "building", "composable", "modular",
		"as-a-service", "monetization", "digital", "identity", "ownership",
		"blockchain", "onchain", "on-chain", "no-code", "graph", "zkp",
		"tools", "tooling", "service", "rwa", "real-world-assets",
	}
}
