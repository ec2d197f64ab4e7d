package pricing

// SensitivityPoint is one sale price for a candidate profit rate.
type SensitivityPoint struct {
	ProfitPercent int
	SalePrice     float64
}

// AnnualSensitivity recalculates the annual sale price for profit rates in
// [base-delta, base+delta] whole percent steps. Combinations that fail
// validation (e.g. profit plus tax reaching 100%) are skipped.
func AnnualSensitivity(in Input, profitDelta int) []SensitivityPoint {
	in.SaleType = SaleAnnual
	basePercent := int(in.ProfitRate * 100)

	points := make([]SensitivityPoint, 0, 2*profitDelta+1)
	for p := basePercent - profitDelta; p <= basePercent+profitDelta; p++ {
		candidate := in
		candidate.ProfitRate = float64(p) / 100

		result, err := Calculate(candidate)
		if err != nil {
			continue
		}
		points = append(points, SensitivityPoint{ProfitPercent: p, SalePrice: result.SalePrice})
	}

	return points
}

// GridCell is one monthly sale price in the sensitivity grid. Invalid
// combinations stay with Valid=false so the table keeps its shape.
type GridCell struct {
	SalePrice float64
	Valid     bool
}

// SensitivityGrid holds monthly sale prices over profit rate (rows) and
// interest rate (columns) variations around the submitted input, which sits
// at (CenterRow, CenterCol).
type SensitivityGrid struct {
	ProfitPercents   []float64
	InterestPercents []float64
	Cells            [][]GridCell
	CenterRow        int
	CenterCol        int
}

// MonthlySensitivity builds the monthly price grid for profit rates in
// [base-profitDelta, base+profitDelta] and interest rates in
// [base-interestDelta, base+interestDelta], one percent steps.
func MonthlySensitivity(in Input, profitDelta, interestDelta int) SensitivityGrid {
	in.SaleType = SaleMonthly
	baseProfit := in.ProfitRate * 100
	baseInterest := in.InterestRate * 100

	grid := SensitivityGrid{}
	for p := baseProfit - float64(profitDelta); p <= baseProfit+float64(profitDelta); p++ {
		grid.ProfitPercents = append(grid.ProfitPercents, p)
	}
	for i := baseInterest - float64(interestDelta); i <= baseInterest+float64(interestDelta); i++ {
		grid.InterestPercents = append(grid.InterestPercents, i)
	}

	grid.Cells = make([][]GridCell, len(grid.ProfitPercents))
	for row, p := range grid.ProfitPercents {
		grid.Cells[row] = make([]GridCell, len(grid.InterestPercents))
		for col, i := range grid.InterestPercents {
			candidate := in
			candidate.ProfitRate = p / 100
			candidate.InterestRate = i / 100

			result, err := Calculate(candidate)
			if err != nil {
				continue
			}
			grid.Cells[row][col] = GridCell{SalePrice: result.SalePrice, Valid: true}
		}
	}

	grid.CenterRow = len(grid.ProfitPercents) / 2
	grid.CenterCol = len(grid.InterestPercents) / 2

	return grid
}
