package contract

// erc20 is the subset of the ERC-20 interface (EIP-20) the vault uses.
//
// Function selectors:
//
//	decimals()          → 0x313ce567
//	symbol()            → 0x95d89b41
//	balanceOf(address)  → 0x70a08231
//	transfer(a,u256)    → 0xa9059cbb
func init() {
	RegisterBuiltin(BuiltinKind{
		ID:          ERC20,
		Name:        "ERC-20 Standard Token",
		Description: "Balance reads and transfers of vault-held tokens.",
		ABI:         erc20ABI,
	})
}

// ERC20 is the builtin ID of the ERC-20 ABI.
const ERC20 = "erc20"

var erc20ABI = []ABIEntry{
	{
		Name: "symbol", Type: "function",
		Inputs: nil, Outputs: []ABIParam{{Name: "", Type: "string"}},
		StateMutability: "view",
	},
	{
		Name: "decimals", Type: "function",
		Inputs: nil, Outputs: []ABIParam{{Name: "", Type: "uint8"}},
		StateMutability: "view",
	},
	{
		Name: "balanceOf", Type: "function",
		Inputs:          []ABIParam{{Name: "account", Type: "address"}},
		Outputs:         []ABIParam{{Name: "", Type: "uint256"}},
		StateMutability: "view",
	},
	{
		Name: "transfer", Type: "function",
		Inputs:          []ABIParam{{Name: "to", Type: "address"}, {Name: "value", Type: "uint256"}},
		Outputs:         []ABIParam{{Name: "", Type: "bool"}},
		StateMutability: "nonpayable",
	},
	{
		Name: "Transfer", Type: "event",
		Inputs: []ABIParam{
			{Name: "from", Type: "address", Indexed: true},
			{Name: "to", Type: "address", Indexed: true},
			{Name: "value", Type: "uint256"},
		},
	},
}
