package cli

var (
	Version   = ""
	CommitSHA = ""
)

// Globals defines global flags available to all commands.
type Globals struct {
	Telemetry bool   `help:"Show timing telemetry for operations."`
	Yes       bool   `help:"Answer yes to every confirmation." short:"y"`
	DB        string `help:"Rate database (overrides KASBOEK_RATES_DB)." type:"path" placeholder:"FILE"`
}

type Commands struct {
	Globals

	Rate       RateCmd       `cmd:"" help:"Manage exchange rates."`
	Convert    ConvertCmd    `cmd:"" help:"Convert an amount to another currency."`
	Eval       EvalCmd       `cmd:"" help:"Parse an amount or an arithmetic expression."`
	Currencies CurrenciesCmd `cmd:"" help:"List the registered currencies."`
	Balance    BalanceCmd    `cmd:"" help:"Report account balances of a transactions file."`
}
