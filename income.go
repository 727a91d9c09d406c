package simbooks

// IncomeInputs are the figures the income statement is built from.
type IncomeInputs struct {
	Sums             Sums
	COGS             float64 // negative
	FreightOut       float64 // negative
	PatentConversion float64

	// ValuationDelta is the change of the valuation allowance. It enters
	// other comprehensive income with the opposite sign: a growing allowance
	// is a loss.
	ValuationDelta float64
}

// IncomeFigures are the subtotals of an income statement.
type IncomeFigures struct {
	GrossProfit        float64
	OperatingExpenses  float64
	OperatingIncome    float64
	OtherIncome        float64
	NetIncome          float64
	OtherComprehensive float64
	TotalComprehensive float64
}

// Figures computes the income statement subtotals.
//
// An increase of the valuation allowance reduces the inventory carrying value,
// so it enters other comprehensive income with the opposite sign.
func (in IncomeInputs) Figures() IncomeFigures {
	s := in.Sums
	var f IncomeFigures
	f.GrossProfit = s.Get(Sales) + in.COGS + in.FreightOut
	f.OperatingExpenses = s.Get(Construction) + s.Get(Fees) + s.Get(Salaries) + s.Get(Training) + s.Get(Poaching)
	f.OperatingIncome = f.GrossProfit + f.OperatingExpenses
	f.OtherIncome = s.Get(GameIncome) + s.Get(ExecRoyalties) + s.Get(GainOnSale) + in.PatentConversion +
		s.Get(AccountingOverhead) + s.Get(Donations) + s.Get(InterestIncome) + s.Get(InterestExpense) +
		s.Get(WriteOffs) + s.Get(Defaults)
	f.NetIncome = f.OperatingIncome + f.OtherIncome
	f.OtherComprehensive = -in.ValuationDelta
	f.TotalComprehensive = f.NetIncome + f.OtherComprehensive
	return f
}

// BuildIncome lays out the income statement.
func BuildIncome(in IncomeInputs) Statement {
	s := in.Sums
	f := in.Figures()
	var b builder

	b.section("Gross Profit")
	b.item("Sales", s.Get(Sales))
	b.item("Cost of Goods Sold", in.COGS)
	b.item("Freight-Out", in.FreightOut)
	b.thin()
	b.total("Gross Profit", f.GrossProfit)

	b.section("Operating Expenses")
	b.item("Construction", s.Get(Construction))
	b.item("Fees", s.Get(Fees))
	b.item("Salaries", s.Get(Salaries))
	b.item("Executive Training", s.Get(Training))
	b.item("Executive Poaching", s.Get(Poaching))
	b.thin()
	b.total("Total Operating Expenses", f.OperatingExpenses)
	b.total("Operating Income", f.OperatingIncome)

	b.section("Other Income/Loss")
	b.item("Game Income", s.Get(GameIncome))
	b.item("Executive Royalties", s.Get(ExecRoyalties))
	b.item("Gain on Sale", s.Get(GainOnSale))
	b.item("Patent Conversion", in.PatentConversion)
	b.item("Accounting Overhead", s.Get(AccountingOverhead))
	b.item("Donations", s.Get(Donations))
	b.item("Interest Income", s.Get(InterestIncome))
	b.item("Interest Expense", s.Get(InterestExpense))
	b.item("Write-offs", s.Get(WriteOffs))
	b.item("Defaults", s.Get(Defaults))
	b.thin()
	b.total("Total Other Income/Loss", f.OtherIncome)

	b.double()
	b.section("Net Income")
	b.total("Net Income", f.NetIncome)

	b.section("Other Comprehensive Income")
	b.item("Inventory Valuation Adjustment", f.OtherComprehensive)
	b.double()
	b.total("Total Comprehensive Income", f.TotalComprehensive)

	return b.lines
}
