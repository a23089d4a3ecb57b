package entity

// FXTrade syncs FX spot/forward trades.
var FXTrade = Spec{
	Tag:         "fx_trade",
	SourceTable: "tblFXTrade",
	TargetTable: "gzc_fx_trade",
	SourceKey:   "TradeId",
	TargetKey:   "trade_id",
	Fields: []Field{
		{"TradeId", "trade_id"},
		{"ExternalTradeId", "external_trade_id"},
		{"TradeDate", "trade_date"},
		{"MaturityDate", "maturity_date"},
		{"EffectiveDate", "effective_date"},
		{"Quantity", "quantity"},
		{"Price", "price"},
		{"TradeCurrency", "trade_currency"},
		{"SettlementCurrency", "settlement_currency"},
		{"Position", "position"},
		{"CounterPartyCode", "counter_party_code"},
		{"GiveUpCounterPartyCode", "give_up_counter_party_code"},
		{"NDF", "ndf"},
		{"StrategyFolderId", "strategy_folder_id"},
		{"Note", "note"},
		{"Active", "active"},
		{"FundId", "fund_id"},
		{"Trader", "trader"},
		{"DecisionTimestamp", "decision_timestamp"},
		{"Location", "location"},
		{"IsValidated", "is_validated"},
		{"Validator", "validator"},
		{"ModUser", "mod_user"},
		{"ModTimestamp", "mod_timestamp"},
	},
}

// FXOptionTrade syncs FX option trades.
var FXOptionTrade = Spec{
	Tag:         "fx_option_trade",
	SourceTable: "tblFXOptionTrade",
	TargetTable: "gzc_fx_option_trade",
	SourceKey:   "TradeId",
	TargetKey:   "trade_id",
	Fields: []Field{
		{"TradeId", "trade_id"},
		{"ExternalTradeId", "external_trade_id"},
		{"TradeDate", "trade_date"},
		{"MaturityDate", "maturity_date"},
		{"EffectiveDate", "effective_date"},
		{"PremiumPaymentDate", "premium_payment_date"},
		{"UnderlyingTradeCurrency", "underlying_trade_currency"},
		{"UnderlyingSettlementCurrency", "underlying_settlement_currency"},
		{"Strike", "strike"},
		{"Quantity", "quantity"},
		{"Premium", "premium"},
		{"CashAmount", "cash_amount"},
		{"Position", "position"},
		{"StrikeCurrency", "strike_currency"},
		{"SettlementCurrency", "settlement_currency"},
		{"OptionStyle", "option_style"},
		{"OptionType", "option_type"},
		{"Cut", "cut"},
		{"isCashSettled", "is_cash_settled"},
		{"CounterPartyCode", "counter_party_code"},
		{"GiveUpCounterPartyCode", "give_up_counter_party_code"},
		{"StrategyFolderId", "strategy_folder_id"},
		{"Active", "active"},
		{"FundId", "fund_id"},
		{"Note", "note"},
		{"Trader", "trader"},
		{"DecisionTimestamp", "decision_timestamp"},
		{"Location", "location"},
		{"IsValidated", "is_validated"},
		{"Validator", "validator"},
		{"ModUser", "mod_user"},
		{"ModTimestamp", "mod_timestamp"},
	},
}

// CashTransaction syncs cash movements. Off unless optional entities are enabled.
var CashTransaction = Spec{
	Tag:         "cash_transaction",
	SourceTable: "tblCashTransaction",
	TargetTable: "gzc_cash_transactions",
	SourceKey:   "TransactionId",
	TargetKey:   "transaction_id",
	Optional:    true,
	Fields: []Field{
		{"TransactionId", "transaction_id"},
		{"ExternalTransactionId", "external_transaction_id"},
		{"TransactionDate", "transaction_date"},
		{"ValueDate", "value_date"},
		{"TransactionType", "transaction_type"},
		{"Amount", "amount"},
		{"Currency", "currency"},
		{"CounterPartyCode", "counter_party_code"},
		{"StrategyFolderId", "strategy_folder_id"},
		{"FundId", "fund_id"},
		{"Note", "note"},
		{"Active", "active"},
		{"ModUser", "mod_user"},
		{"ModTimestamp", "mod_timestamp"},
	},
}
