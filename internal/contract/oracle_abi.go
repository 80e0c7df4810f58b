package contract

// rateOracle quotes how many wei one base unit of a token is worth.
func init() {
	RegisterBuiltin(BuiltinKind{
		ID:          RateOracle,
		Name:        "Token Rate Oracle",
		Description: "rate(token) in wei per token base unit; zero means unpriced.",
		ABI:         rateOracleABI,
	})
}

// RateOracle is the builtin ID of the price oracle ABI.
const RateOracle = "rate-oracle"

var rateOracleABI = []ABIEntry{
	{
		Name: "rate", Type: "function",
		Inputs:          []ABIParam{{Name: "token", Type: "address"}},
		Outputs:         []ABIParam{{Name: "", Type: "uint256"}},
		StateMutability: "view",
	},
}
